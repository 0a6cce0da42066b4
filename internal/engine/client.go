/*
PURPOSE:
  Core HTTP executor for talking to the conversation backend.
  Performs POST requests with a bounded timeout, retry count and
  optional exponential backoff.

REQUIREMENTS:
  User-specified:
  - Retry failed requests up to max_retries times.
  - Wait retry_delay between attempts, growing by backoff_multiplier
    when exponential backoff is enabled.

  Implementation-discovered:
  - Needs http.Client with timeouts.
  - Exhaustion is a normal outcome, not an error: the caller turns it into
    a failed QuestionResult and moves on.
  - Parse failures must be retried too, so the loop accepts an arbitrary
    attempt function (see processor.go).

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/processor.go
  - Uses: internal/config, internal/model, internal/metrics, internal/output

ERROR HANDLING:
  - Every transport failure is normalised to a descriptive string.
  - Attempts return a tagged Outcome; the loop inspects the tag.
  - Context cancellation stops the loop early with a failed Outcome.

IMPLEMENTATION RULES:
  - Use net/http.
  - Enforce timeouts.
  - Sleep is injectable so backoff can be tested without waiting.

USAGE:
  x := engine.NewExecutor(cfg, nil)
  out := x.Execute(ctx, "http://host/conversation", question, payload)
  if !out.OK { ... out.Err ... }

SELF-HEALING INSTRUCTIONS:
  - If the backend starts requiring auth headers, add them in Send().

RELATED FILES:
  - internal/config/config.go
  - internal/engine/processor.go

MAINTENANCE:
  - Update error classification when new transport failures show up.
*/

package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/daryltucker/ai-tester/internal/config"
	"github.com/daryltucker/ai-tester/internal/metrics"
	"github.com/daryltucker/ai-tester/internal/model"
	"github.com/daryltucker/ai-tester/internal/output"
)

// Outcome is the tagged result of a single attempt or of a whole retry run.
// When OK is true Body holds the raw response; otherwise Err describes the
// last failure.
type Outcome struct {
	OK       bool
	Body     []byte
	Err      string
	Attempts int
}

// Success builds a successful Outcome.
func Success(body []byte) Outcome {
	return Outcome{OK: true, Body: body}
}

// Failure builds a failed Outcome.
func Failure(format string, args ...any) Outcome {
	return Outcome{Err: fmt.Sprintf(format, args...)}
}

// AttemptFunc performs one attempt. n is 1-based.
type AttemptFunc func(ctx context.Context, n int) Outcome

// Executor performs requests against the backend.
type Executor struct {
	Config  config.Config
	Client  *http.Client
	Metrics *metrics.Recorder

	// Sleep waits between attempts. Defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewExecutor creates a new Executor. rec may be nil.
func NewExecutor(cfg config.Config, rec *metrics.Recorder) *Executor {
	// ResponseHeaderTimeout surfaces a backend that accepts the connection
	// but never answers; Timeout bounds the whole exchange including body.
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = cfg.RequestTimeout

	return &Executor{
		Config:  cfg,
		Metrics: rec,
		Client: &http.Client{
			Transport: transport,
			Timeout:   cfg.RequestTimeout,
		},
		Sleep: sleepContext,
	}
}

// Execute posts payload to target with retries. The same payload is reused
// for every attempt; callers that need a fresh payload per attempt use Retry.
func (x *Executor) Execute(ctx context.Context, target, question string, payload model.Payload) Outcome {
	return x.Retry(ctx, question, func(ctx context.Context, _ int) Outcome {
		return x.Send(ctx, target, payload)
	})
}

// Retry runs attempt until it succeeds or max_retries attempts have failed.
//
// The delay starts at retry_delay; after every failed attempt the executor
// sleeps for the current delay and then, with exponential backoff enabled,
// multiplies it by backoff_multiplier. No sleep follows the last attempt.
func (x *Executor) Retry(ctx context.Context, question string, attempt AttemptFunc) Outcome {
	maxRetries := x.Config.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}
	sleep := x.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	short := output.Truncate(question, 50)
	delay := x.Config.RetryDelay

	var last Outcome
	for n := 1; n <= maxRetries; n++ {
		output.Logger.Info("Processing question", "attempt", n, "max_retries", maxRetries, "question", short)

		last = attempt(ctx, n)
		last.Attempts = n
		if last.OK {
			output.Logger.Info("Successfully processed question", "question", short)
			return last
		}

		output.Logger.Warn("Attempt failed", "attempt", n, "question", short, "error", last.Err)
		if n == maxRetries {
			break
		}

		output.Logger.Info("Retrying...", "delay", delay)
		if err := sleep(ctx, delay); err != nil {
			last.Err = fmt.Sprintf("retry aborted after attempt %d: %v (last error: %s)", n, err, last.Err)
			return last
		}
		if x.Config.ExponentialBackoff {
			delay = nextDelay(delay, x.Config.BackoffMultiplier)
		}
	}

	output.Logger.Error("All attempts failed", "max_retries", maxRetries, "question", short)
	return last
}

// Send performs a single POST attempt. It never returns an error; failures
// are reported through the Outcome.
func (x *Executor) Send(ctx context.Context, target string, payload model.Payload) Outcome {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return Failure("failed to encode payload: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(reqBody))
	if err != nil {
		return Failure("request failed: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	out := x.do(req, target)
	x.Metrics.ObserveAttempt(out.OK, time.Since(start))
	return out
}

func (x *Executor) do(req *http.Request, target string) Outcome {
	resp, err := x.Client.Do(req)
	if err != nil {
		return x.classify(err, target)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return x.classify(fmt.Errorf("failed to read response body: %w", err), target)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Failure("HTTP error %d: %s", resp.StatusCode, output.Truncate(string(body), 500))
	}

	return Success(body)
}

// classify turns a transport error into the message stored on the result.
func (x *Executor) classify(err error, target string) Outcome {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Failure("request timed out after %s", x.Config.RequestTimeout)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return Failure("failed to connect to %s: %v", target, opErr.Err)
	}

	return Failure("request failed: %v", err)
}

// maxDelay bounds backoff growth so the float product never overflows
// time.Duration.
const maxDelay = time.Duration(math.MaxInt64)

func nextDelay(d time.Duration, multiplier float64) time.Duration {
	next := float64(d) * multiplier
	if next >= float64(maxDelay) {
		return maxDelay
	}
	return time.Duration(next)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

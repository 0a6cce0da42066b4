/*
PURPOSE:
  Answers one question end to end: payload, request with retries, parse.

REQUIREMENTS:
  User-specified:
  - An unparsable response counts as a failed attempt.
  - Exhaustion is reported on the result, not as an error.

  Implementation-discovered:
  - The result keeps the question as written; only the payload is trimmed.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/runner.go, internal/cli (ask)
  - Uses: Executor.Retry, NewPayload, ParseResponse

ERROR HANDLING:
  - Only validation failures and cancellation surface as errors.

USAGE:
  p, err := engine.NewProcessor(exec, "https://chat.example.com", "", false)
  res, err := p.ProcessQuestion(ctx, "What is X?")

RELATED FILES:
  - internal/engine/client.go
  - internal/engine/parser.go
*/

package engine

import (
	"context"

	"github.com/daryltucker/ai-tester/internal/config"
	"github.com/daryltucker/ai-tester/internal/model"
	"github.com/daryltucker/ai-tester/internal/output"
)

// Processor answers questions against one backend endpoint.
type Processor struct {
	Exec  *Executor
	URL   string // base URL + endpoint
	Debug bool
}

// NewProcessor validates baseURL and resolves the endpoint. An empty
// endpoint falls back to the configured default.
func NewProcessor(exec *Executor, baseURL, endpoint string, debug bool) (*Processor, error) {
	base, err := ValidateURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Processor{
		Exec:  exec,
		URL:   base + ResolveEndpoint(exec.Config, endpoint),
		Debug: debug,
	}, nil
}

// ResolveEndpoint returns endpoint, or the configured default when empty.
func ResolveEndpoint(cfg config.Config, endpoint string) string {
	if endpoint == "" {
		return cfg.DefaultEndpoint
	}
	return endpoint
}

// ProcessQuestion runs one question end to end: payload, request, parse.
//
// A fresh payload is built for every attempt, and a response that cannot be
// parsed counts as a failed attempt. Once all attempts fail the returned
// result carries the last error; only an empty question yields a non-nil
// error.
func (p *Processor) ProcessQuestion(ctx context.Context, question string) (model.QuestionResult, error) {
	if _, err := NewPayload(question); err != nil {
		return model.QuestionResult{}, err
	}

	var result model.QuestionResult
	out := p.Exec.Retry(ctx, question, func(ctx context.Context, _ int) Outcome {
		payload, err := NewPayload(question)
		if err != nil {
			return Failure("%v", err)
		}

		sent := p.Exec.Send(ctx, p.URL, payload)
		if !sent.OK {
			return sent
		}

		parsed, err := ParseResponse(sent.Body, question, p.Debug)
		if err != nil {
			return Failure("failed to parse response: %v", err)
		}
		result = parsed
		return sent
	})

	if !out.OK {
		return model.QuestionResult{Question: question, Error: out.Err}, nil
	}
	return result, nil
}

// ProcessQuestions processes questions in order without any run state.
func (p *Processor) ProcessQuestions(ctx context.Context, questions []string) ([]model.QuestionResult, error) {
	if len(questions) == 0 {
		output.Logger.Warn("No questions provided")
		return nil, nil
	}

	output.Logger.Info("Processing questions", "count", len(questions))
	results := make([]model.QuestionResult, 0, len(questions))
	for i, q := range questions {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		output.Logger.Info("Processing question", "index", i+1, "total", len(questions))
		res, err := p.ProcessQuestion(ctx, q)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	output.Logger.Info("Completed processing", "results", len(results))
	return results, nil
}

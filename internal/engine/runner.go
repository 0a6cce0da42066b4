/*
PURPOSE:
  High-level runner that drives a resumable question batch.
  Loops through the questions file, skips questions that already succeeded
  under the same run parameters, and records progress as it goes.

REQUIREMENTS:
  User-specified:
  - Re-running the same batch must not resubmit answered questions.
  - Changing any run parameter restarts the batch from scratch.
  - A fully successful batch leaves no state behind.

  Implementation-discovered:
  - Needs to report progress to CLI.
  - State access goes through the RunState interface so tests can use an
    in-memory store.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Uses: internal/engine (processor), internal/state (via RunState),
    internal/metrics

ERROR HANDLING:
  - Validation errors abort before any request is sent.
  - Failed questions are logged to the error log; the batch continues.
  - State write failures are logged and block the final cleanup.

IMPLEMENTATION RULES:
  - Strictly sequential: one question, including all its retries, at a time.
  - Results keep input order; previously answered questions are not
    re-emitted.

USAGE:
  r := engine.NewRunner(exec, store)
  results, err := r.Run(ctx, engine.RunOptions{...})

SELF-HEALING INSTRUCTIONS:
  - If resumes misbehave, inspect the metadata file; every field must match.

RELATED FILES:
  - internal/engine/processor.go
  - internal/state/store.go

MAINTENANCE:
  - Update RunMetadata construction when adding new run parameters.
*/

package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/daryltucker/ai-tester/internal/metrics"
	"github.com/daryltucker/ai-tester/internal/model"
	"github.com/daryltucker/ai-tester/internal/output"
)

// RunState persists batch progress between invocations.
type RunState interface {
	LoadMetadata() (*model.RunMetadata, error)
	SaveMetadata(meta model.RunMetadata) error
	LoadSuccessSet() (map[string]struct{}, error)
	AppendSuccess(question string) error
	AppendError(question, errMsg string, ts time.Time) error
	Reset() error
}

// RunOptions are the parameters of one batch invocation.
type RunOptions struct {
	BaseURL       string
	QuestionsFile string
	OutputFormat  string
	Filename      string
	Debug         bool
	Endpoint      string // empty means the configured default
}

// Runner drives resumable batches.
type Runner struct {
	Exec    *Executor
	State   RunState
	Metrics *metrics.Recorder
	Now     func() time.Time
}

// NewRunner creates a Runner sharing the executor's metrics recorder.
func NewRunner(exec *Executor, st RunState) *Runner {
	return &Runner{
		Exec:    exec,
		State:   st,
		Metrics: exec.Metrics,
		Now:     time.Now,
	}
}

// Metadata builds the run metadata for opts. The questions file is made
// absolute so the same file reached through different relative paths
// still resumes.
func (r *Runner) Metadata(opts RunOptions) (model.RunMetadata, error) {
	abs, err := filepath.Abs(opts.QuestionsFile)
	if err != nil {
		return model.RunMetadata{}, fmt.Errorf("failed to resolve questions file %s: %w", opts.QuestionsFile, err)
	}
	return model.RunMetadata{
		BaseURL:       opts.BaseURL,
		QuestionsFile: abs,
		OutputFormat:  opts.OutputFormat,
		Filename:      opts.Filename,
		Debug:         opts.Debug,
		Endpoint:      ResolveEndpoint(r.Exec.Config, opts.Endpoint),
	}, nil
}

// Run executes one batch and returns the results produced by this
// invocation. Questions answered by an earlier invocation with identical
// metadata are skipped and not returned.
func (r *Runner) Run(ctx context.Context, opts RunOptions) ([]model.QuestionResult, error) {
	meta, err := r.Metadata(opts)
	if err != nil {
		return nil, err
	}

	proc, err := NewProcessor(r.Exec, opts.BaseURL, meta.Endpoint, opts.Debug)
	if err != nil {
		return nil, err
	}

	questions, err := LoadQuestions(opts.QuestionsFile)
	if err != nil {
		return nil, err
	}

	done, err := r.prepare(meta)
	if err != nil {
		return nil, err
	}

	output.Logger.Info("Starting batch", "questions", len(questions), "already_done", len(done), "url", proc.URL)

	var (
		results    []model.QuestionResult
		skipped    int
		allSuccess = true
	)

	for i, q := range questions {
		if _, ok := done[q]; ok {
			skipped++
			r.Metrics.ObserveQuestion(metrics.StatusSkipped)
			output.Logger.Debug("Skipping answered question", "index", i+1, "question", output.Truncate(q, 50))
			continue
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}

		output.Logger.Info("Processing question", "index", i+1, "total", len(questions))
		res, err := proc.ProcessQuestion(ctx, q)
		if err != nil {
			return results, err
		}
		if res.Failed() && ctx.Err() != nil {
			// Interrupted, not failed: leave no error entry behind.
			return results, ctx.Err()
		}

		if res.Failed() {
			allSuccess = false
			r.Metrics.ObserveQuestion(metrics.StatusFailed)
			if err := r.State.AppendError(q, res.Error, r.Now()); err != nil {
				output.Logger.Error("Failed to write error log", "question", output.Truncate(q, 50), "error", err)
			}
			continue
		}

		results = append(results, res)
		r.Metrics.ObserveQuestion(metrics.StatusSucceeded)
		if err := r.State.AppendSuccess(q); err != nil {
			// Without a success entry a resume would ask again, so keep
			// the state around rather than claiming completion.
			allSuccess = false
			output.Logger.Error("Failed to write success log", "question", output.Truncate(q, 50), "error", err)
		}
	}

	output.Logger.Info("Batch finished",
		"succeeded", len(results),
		"skipped", skipped,
		"failed", len(questions)-skipped-len(results),
	)

	if allSuccess && skipped+len(results) == len(questions) {
		if err := r.State.Reset(); err != nil {
			return results, fmt.Errorf("batch complete but failed to clear run state: %w", err)
		}
		output.Logger.Info("All questions answered, run state cleared")
	}

	return results, nil
}

// prepare compares meta with the persisted snapshot. On a match the
// success set is loaded; otherwise state is reset and meta saved.
func (r *Runner) prepare(meta model.RunMetadata) (map[string]struct{}, error) {
	prev, err := r.State.LoadMetadata()
	if err != nil {
		output.Logger.Warn("Ignoring unreadable run metadata", "error", err)
		prev = nil
	}

	if prev != nil && *prev == meta {
		done, err := r.State.LoadSuccessSet()
		if err != nil {
			return nil, fmt.Errorf("failed to load success log: %w", err)
		}
		output.Logger.Info("Resuming previous run", "answered", len(done))
		return done, nil
	}

	if prev != nil {
		output.Logger.Info("Run parameters changed, starting fresh")
	}
	if err := r.State.Reset(); err != nil {
		return nil, fmt.Errorf("failed to reset run state: %w", err)
	}
	if err := r.State.SaveMetadata(meta); err != nil {
		return nil, fmt.Errorf("failed to save run metadata: %w", err)
	}
	return map[string]struct{}{}, nil
}

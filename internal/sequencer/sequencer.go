// Package sequencer executes an ordered list of provisioning steps with
// fail-fast semantics: steps run strictly in declaration order, one at a
// time, and the first failure terminates the whole run before any later step
// is invoked. The sequencer owns no state between runs; every external effect
// belongs to the collaborator behind the step that produced it, and nothing
// is retried or rolled back.
package sequencer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	deployerrors "deploykit/internal/errors"
)

// Configuration errors, surfaced before any step runs.
var (
	ErrEmptySequence = errors.New("step sequence is empty")
	ErrNilStep       = errors.New("step sequence contains a nil step")
)

// Hooks receive progress notifications during a run. Either hook may be nil.
type Hooks struct {
	StepStarted   func(position int, name string)
	StepSucceeded func(position int, name string)
}

// Sequencer runs step sequences. The zero value is usable.
type Sequencer struct {
	hooks Hooks
}

// New creates a Sequencer with the given progress hooks.
func New(hooks Hooks) *Sequencer {
	return &Sequencer{hooks: hooks}
}

// Run executes steps in order. A non-nil error is returned only for a
// misconfigured sequence (empty, or containing a nil step) and means no step
// was invoked. Otherwise the returned Outcome is StatusCompleted when every
// step succeeded, or StatusFailed carrying the first failing step's own error
// unchanged, wrapped with its name and position.
func (s *Sequencer) Run(ctx context.Context, steps []Step) (*Outcome, error) {
	if len(steps) == 0 {
		return nil, ErrEmptySequence
	}
	for i, step := range steps {
		if step == nil {
			return nil, fmt.Errorf("%w: position %d", ErrNilStep, i+1)
		}
	}

	results := make([]StepResult, 0, len(steps))

	for i, step := range steps {
		position := i + 1
		if s.hooks.StepStarted != nil {
			s.hooks.StepStarted(position, step.Name())
		}
		slog.Info("Executing step", "step", step.Name(), "position", position, "total", len(steps))

		startedAt := time.Now()
		err := step.Execute(ctx)
		result := StepResult{
			Name:       step.Name(),
			StartedAt:  startedAt,
			FinishedAt: time.Now(),
		}

		if err != nil {
			result.Status = StatusFailed
			result.Detail = err.Error()
			results = append(results, result)

			failure := &deployerrors.StepFailure{
				Step:     step.Name(),
				Position: position,
				Err:      err,
			}
			slog.Error("Step failed, aborting run", "step", step.Name(), "position", position, "error", err)

			return &Outcome{
				Status:     StatusFailed,
				FailedStep: step.Name(),
				Failure:    failure,
				Results:    results,
			}, nil
		}

		result.Status = StatusCompleted
		results = append(results, result)
		if s.hooks.StepSucceeded != nil {
			s.hooks.StepSucceeded(position, step.Name())
		}
		slog.Info("Step completed", "step", step.Name(), "position", position)
	}

	return &Outcome{
		Status:  StatusCompleted,
		Results: results,
	}, nil
}

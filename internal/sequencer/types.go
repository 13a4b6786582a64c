package sequencer

import (
	"context"
	"time"

	deployerrors "deploykit/internal/errors"
)

// Step represents a single named unit of provisioning work. Each step wraps
// an external collaborator whose only observable result is success or failure.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
}

// StepFunc adapts a plain function to the Step interface.
type StepFunc struct {
	name string
	fn   func(ctx context.Context) error
}

// NewStep wraps fn as a named Step.
func NewStep(name string, fn func(ctx context.Context) error) *StepFunc {
	return &StepFunc{name: name, fn: fn}
}

func (s *StepFunc) Name() string {
	return s.name
}

func (s *StepFunc) Execute(ctx context.Context) error {
	return s.fn(ctx)
}

// Status is the terminal status of a run or of a single step within it.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// StepResult records the observed outcome of one step invocation.
type StepResult struct {
	Name       string    `json:"name"`
	Status     Status    `json:"status"`
	Detail     string    `json:"detail,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Outcome is the terminal result of a run. Status is StatusCompleted only
// when every step succeeded; otherwise FailedStep and Failure identify
// exactly which step failed and why. Results holds one entry per step that
// was actually invoked, in invocation order.
type Outcome struct {
	Status     Status
	FailedStep string
	Failure    *deployerrors.StepFailure
	Results    []StepResult
}

// Err returns the run's failure, or nil when the run completed.
func (o *Outcome) Err() error {
	if o.Failure != nil {
		return o.Failure
	}
	return nil
}

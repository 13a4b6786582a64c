package sequencer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	deployerrors "deploykit/internal/errors"
)

// fakeStep emulates an external collaborator with a fixed outcome. It records
// invocations in a shared log so tests can verify ordering.
type fakeStep struct {
	name  string
	err   error
	calls int
	log   *[]string
}

func (f *fakeStep) Name() string {
	return f.name
}

func (f *fakeStep) Execute(ctx context.Context) error {
	f.calls++
	if f.log != nil {
		*f.log = append(*f.log, f.name)
	}
	return f.err
}

func newFakeSteps(log *[]string, names ...string) []*fakeStep {
	fakes := make([]*fakeStep, len(names))
	for i, name := range names {
		fakes[i] = &fakeStep{name: name, log: log}
	}
	return fakes
}

func asSteps(fakes []*fakeStep) []Step {
	steps := make([]Step, len(fakes))
	for i, f := range fakes {
		steps[i] = f
	}
	return steps
}

func TestRun_AllStepsSucceed(t *testing.T) {
	var log []string
	fakes := newFakeSteps(&log, "install-dependencies", "collect-static-assets", "apply-migrations")

	outcome, err := New(Hooks{}).Run(context.Background(), asSteps(fakes))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if outcome.Status != StatusCompleted {
		t.Errorf("Expected status %q, got %q", StatusCompleted, outcome.Status)
	}
	if outcome.FailedStep != "" {
		t.Errorf("Expected no failed step, got %q", outcome.FailedStep)
	}
	if outcome.Err() != nil {
		t.Errorf("Expected Err() to be nil, got %v", outcome.Err())
	}

	for _, f := range fakes {
		if f.calls != 1 {
			t.Errorf("Expected step %q to be invoked exactly once, got %d", f.name, f.calls)
		}
	}

	expectedOrder := []string{"install-dependencies", "collect-static-assets", "apply-migrations"}
	if len(log) != len(expectedOrder) {
		t.Fatalf("Expected %d invocations, got %d", len(expectedOrder), len(log))
	}
	for i, name := range expectedOrder {
		if log[i] != name {
			t.Errorf("Expected invocation %d to be %q, got %q", i, name, log[i])
		}
	}

	if len(outcome.Results) != 3 {
		t.Fatalf("Expected 3 step results, got %d", len(outcome.Results))
	}
	for _, result := range outcome.Results {
		if result.Status != StatusCompleted {
			t.Errorf("Expected step %q result status %q, got %q", result.Name, StatusCompleted, result.Status)
		}
	}
}

func TestRun_FailFast(t *testing.T) {
	stepNames := []string{"install-dependencies", "collect-static-assets", "apply-migrations"}

	for failIndex := range stepNames {
		t.Run(fmt.Sprintf("failure at position %d", failIndex+1), func(t *testing.T) {
			var log []string
			fakes := newFakeSteps(&log, stepNames...)
			stepErr := errors.New("boom")
			fakes[failIndex].err = stepErr

			outcome, err := New(Hooks{}).Run(context.Background(), asSteps(fakes))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if outcome.Status != StatusFailed {
				t.Errorf("Expected status %q, got %q", StatusFailed, outcome.Status)
			}
			if outcome.FailedStep != stepNames[failIndex] {
				t.Errorf("Expected failed step %q, got %q", stepNames[failIndex], outcome.FailedStep)
			}
			if outcome.Failure == nil {
				t.Fatal("Expected non-nil failure")
			}
			if outcome.Failure.Err != stepErr {
				t.Errorf("Expected the step's own error to be carried unchanged, got %v", outcome.Failure.Err)
			}
			if outcome.Failure.Position != failIndex+1 {
				t.Errorf("Expected failure position %d, got %d", failIndex+1, outcome.Failure.Position)
			}

			// Steps before the failure run exactly once, later steps never run.
			for i, f := range fakes {
				expected := 0
				if i <= failIndex {
					expected = 1
				}
				if f.calls != expected {
					t.Errorf("Expected step %q to be invoked %d times, got %d", f.name, expected, f.calls)
				}
			}

			if len(outcome.Results) != failIndex+1 {
				t.Errorf("Expected %d step results, got %d", failIndex+1, len(outcome.Results))
			}
		})
	}
}

func TestRun_EmptySequence(t *testing.T) {
	outcome, err := New(Hooks{}).Run(context.Background(), nil)
	if outcome != nil {
		t.Errorf("Expected nil outcome for empty sequence, got %+v", outcome)
	}
	if !errors.Is(err, ErrEmptySequence) {
		t.Errorf("Expected ErrEmptySequence, got %v", err)
	}
}

func TestRun_NilStep(t *testing.T) {
	var log []string
	fakes := newFakeSteps(&log, "install-dependencies")
	steps := []Step{fakes[0], nil}

	outcome, err := New(Hooks{}).Run(context.Background(), steps)
	if outcome != nil {
		t.Errorf("Expected nil outcome for sequence with nil step, got %+v", outcome)
	}
	if !errors.Is(err, ErrNilStep) {
		t.Errorf("Expected ErrNilStep, got %v", err)
	}
	if fakes[0].calls != 0 {
		t.Errorf("Expected no step to run when the sequence is misconfigured, got %d calls", fakes[0].calls)
	}
}

func TestRun_Deterministic(t *testing.T) {
	run := func() *Outcome {
		fakes := newFakeSteps(nil, "install-dependencies", "collect-static-assets", "apply-migrations")
		fakes[1].err = errors.New("disk full")
		outcome, err := New(Hooks{}).Run(context.Background(), asSteps(fakes))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		return outcome
	}

	first := run()
	second := run()

	if first.Status != second.Status {
		t.Errorf("Expected identical status across runs, got %q and %q", first.Status, second.Status)
	}
	if first.FailedStep != second.FailedStep {
		t.Errorf("Expected identical failed step across runs, got %q and %q", first.FailedStep, second.FailedStep)
	}
	if first.Failure.Err.Error() != second.Failure.Err.Error() {
		t.Errorf("Expected identical failure detail across runs, got %q and %q",
			first.Failure.Err.Error(), second.Failure.Err.Error())
	}
}

// TestRun_IdempotentCollaborators verifies that re-running a completed
// sequence is safe to attempt when the actions behind the steps treat
// "already applied" as success without re-mutating state.
func TestRun_IdempotentCollaborators(t *testing.T) {
	applied := map[string]bool{}
	mutations := 0

	mkIdempotent := func(name string) Step {
		return NewStep(name, func(ctx context.Context) error {
			if applied[name] {
				// Already satisfied: succeed without touching state.
				return nil
			}
			applied[name] = true
			mutations++
			return nil
		})
	}

	steps := []Step{
		mkIdempotent("install-dependencies"),
		mkIdempotent("collect-static-assets"),
		mkIdempotent("apply-migrations"),
	}

	seq := New(Hooks{})

	first, err := seq.Run(context.Background(), steps)
	if err != nil || first.Status != StatusCompleted {
		t.Fatalf("Expected first run to complete, got outcome=%+v err=%v", first, err)
	}
	if mutations != 3 {
		t.Fatalf("Expected 3 state mutations on first run, got %d", mutations)
	}

	second, err := seq.Run(context.Background(), steps)
	if err != nil || second.Status != StatusCompleted {
		t.Fatalf("Expected second run to complete, got outcome=%+v err=%v", second, err)
	}
	if mutations != 3 {
		t.Errorf("Expected no additional state mutations on re-run, got %d total", mutations)
	}
}

func TestRun_FailureDetailPreserved(t *testing.T) {
	var log []string
	fakes := newFakeSteps(&log, "install-dependencies", "collect-static-assets", "apply-migrations")
	fakes[1].err = errors.New("disk full")

	outcome, err := New(Hooks{}).Run(context.Background(), asSteps(fakes))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if outcome.FailedStep != "collect-static-assets" {
		t.Errorf("Expected failed step 'collect-static-assets', got %q", outcome.FailedStep)
	}
	if len(log) != 2 {
		t.Errorf("Expected exactly 2 invocations, got %d", len(log))
	}

	var failure *deployerrors.StepFailure
	if !errors.As(outcome.Err(), &failure) {
		t.Fatalf("Expected Err() to unwrap to *StepFailure, got %T", outcome.Err())
	}
	if failure.Err.Error() != "disk full" {
		t.Errorf("Expected failure detail 'disk full', got %q", failure.Err.Error())
	}
}

func TestRun_HooksObserveProgress(t *testing.T) {
	var started, succeeded []string

	hooks := Hooks{
		StepStarted: func(position int, name string) {
			started = append(started, fmt.Sprintf("%d:%s", position, name))
		},
		StepSucceeded: func(position int, name string) {
			succeeded = append(succeeded, fmt.Sprintf("%d:%s", position, name))
		},
	}

	fakes := newFakeSteps(nil, "install-dependencies", "collect-static-assets")
	fakes[1].err = errors.New("network timeout")

	if _, err := New(hooks).Run(context.Background(), asSteps(fakes)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(started) != 2 || started[0] != "1:install-dependencies" || started[1] != "2:collect-static-assets" {
		t.Errorf("Unexpected start notifications: %v", started)
	}
	if len(succeeded) != 1 || succeeded[0] != "1:install-dependencies" {
		t.Errorf("Expected only the first step to report success, got %v", succeeded)
	}
}

func TestStepFunc(t *testing.T) {
	invoked := false
	step := NewStep("install-dependencies", func(ctx context.Context) error {
		invoked = true
		return nil
	})

	if step.Name() != "install-dependencies" {
		t.Errorf("Expected name 'install-dependencies', got %q", step.Name())
	}
	if err := step.Execute(context.Background()); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if !invoked {
		t.Error("Expected wrapped function to be invoked")
	}
}

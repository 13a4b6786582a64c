package app

import (
	"context"
	"fmt"
	"log/slog"

	"deploykit/internal/notify"
	"deploykit/internal/parser"
	drun "deploykit/internal/runtime"
	"deploykit/internal/sequencer"
	"deploykit/internal/ui"
	"deploykit/pkg/manifest"
	"deploykit/pkg/runtime"
)

const (
	// Color codes for console output
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
)

// Up orchestrates the complete provisioning sequence: install dependencies,
// collect static assets, apply migrations, plus the optional admin step.
// The sequence is fixed for the run and executed fail-fast; the first step
// that fails terminates the run and no later step is invoked.
func Up(manifestPath string, isDryRun bool, writeReport bool) error {
	ctx := context.Background()

	slog.Info("Starting deploykit up", "manifestPath", manifestPath, "dryRun", isDryRun)

	m, err := parser.Parse(manifestPath)
	if err != nil {
		return fmt.Errorf("manifest parsing failed: %w", err)
	}
	slog.Info("Manifest parsed successfully", "name", m.Metadata.Name, "kind", m.Kind)

	// A report left by an earlier failed run is informational only. Every
	// run starts from the first step; the collaborators own idempotence.
	if previous, err := sequencer.LoadRunReport(); err == nil && previous != nil && previous.Status == sequencer.StatusFailed {
		fmt.Printf("%s📋 Previous run %s failed at step %q. Starting a fresh run from the beginning.%s\n",
			ColorYellow, previous.RunID, previous.FailedStep, ColorReset)
	}

	if isDryRun {
		fmt.Printf("%s🔍 DRY RUN MODE - No actual changes will be made%s\n", ColorYellow, ColorReset)
		fmt.Println()
	}

	var runner runtime.Runner
	if !isDryRun {
		if err := ValidatePrerequisites(m.Spec.Runtime.Kind); err != nil {
			return err
		}
		runner, err = NewRunner(m.Spec.Runtime.Kind)
		if err != nil {
			return fmt.Errorf("runner initialization failed: %w", err)
		}
	}

	steps, err := buildSteps(m, runner, isDryRun)
	if err != nil {
		return fmt.Errorf("invalid step sequence: %w", err)
	}

	console := ui.NewConsole()
	total := len(steps)
	seq := sequencer.New(sequencer.Hooks{
		StepStarted: func(position int, name string) {
			console.PrintStep(position, total, name)
		},
		StepSucceeded: func(position int, name string) {
			fmt.Println()
		},
	})

	report := sequencer.NewRunReport(manifestPath)

	outcome, err := seq.Run(ctx, steps)
	if err != nil {
		return fmt.Errorf("invalid step sequence: %w", err)
	}
	report.Record(outcome)

	if m.Spec.Notify != nil && !isDryRun {
		publishOutcome(ctx, m.Spec.Notify, outcome)
	}

	if writeReport && !isDryRun {
		if err := report.Save(); err != nil {
			slog.Warn("Failed to write run report", "error", err)
		} else {
			slog.Info("Run report written", "file", sequencer.ReportFileName, "runId", report.RunID)
		}
	}

	if outcome.Status == sequencer.StatusFailed {
		fmt.Printf("%s❌ Step %q failed: %v%s\n", ColorRed, outcome.FailedStep, outcome.Failure.Err, ColorReset)
		slog.Error("Provisioning run failed", "failedStep", outcome.FailedStep, "error", outcome.Failure.Err)
		return outcome.Err()
	}

	if isDryRun {
		fmt.Printf("%s🎉 DRY RUN COMPLETED - All steps simulated successfully!%s\n", ColorGreen, ColorReset)
		fmt.Printf("%sNo actual resources were created or modified.%s\n", ColorYellow, ColorReset)
	} else {
		fmt.Printf("%s🎉 DEPLOYKIT UP COMPLETED SUCCESSFULLY!%s\n", ColorGreen, ColorReset)
		fmt.Printf("%s✨ Environment for '%s' is ready!%s\n", ColorWhite, m.Metadata.Name, ColorReset)
	}

	slog.Info("Provisioning run completed successfully", "name", m.Metadata.Name, "dryRun", isDryRun)
	return nil
}

// publishOutcome sends the deployment status to the configured provider.
// Notification problems are logged and never change the run's outcome.
func publishOutcome(ctx context.Context, cfg *manifest.Notify, outcome *sequencer.Outcome) {
	notifier, err := notify.NewGitLabNotifier(cfg)
	if err != nil {
		slog.Warn("Skipping deployment notification", "error", err)
		return
	}

	if err := notifier.Publish(ctx, outcome); err != nil {
		slog.Warn("Failed to publish deployment status", "error", err)
		fmt.Printf("%sWarning: deployment status notification failed: %v%s\n", ColorYellow, err, ColorReset)
	}
}

// NewRunner returns the execution runtime selected by the manifest.
// An empty kind defaults to local execution.
func NewRunner(kind string) (runtime.Runner, error) {
	switch kind {
	case "", "local":
		return drun.NewExecRunner(), nil
	case "docker":
		runner, err := drun.NewDockerRunner()
		if err != nil {
			return nil, fmt.Errorf("failed to create Docker runner: %w", err)
		}
		return runner, nil
	default:
		return nil, fmt.Errorf("unsupported runtime kind: %s", kind)
	}
}

// ValidatePrerequisites checks that the selected execution runtime is usable
// before any step runs.
func ValidatePrerequisites(kind string) error {
	slog.Info("Validating deploykit prerequisites", "runtime", kind)

	if _, err := NewRunner(kind); err != nil {
		return fmt.Errorf("runtime prerequisite check failed: %w", err)
	}

	slog.Info("All prerequisites validated successfully")
	return nil
}

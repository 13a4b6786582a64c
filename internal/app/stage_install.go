package app

import (
	"context"
	"fmt"
	"log/slog"

	"deploykit/internal/installer"
	"deploykit/pkg/manifest"
	"deploykit/pkg/runtime"
)

// InstallStage implements the sequencer.Step interface for the
// install-dependencies step.
type InstallStage struct {
	manifest *manifest.Manifest
	runner   runtime.Runner
	isDryRun bool
}

// NewInstallStage creates a new install stage instance
func NewInstallStage(m *manifest.Manifest, runner runtime.Runner, isDryRun bool) *InstallStage {
	return &InstallStage{
		manifest: m,
		runner:   runner,
		isDryRun: isDryRun,
	}
}

// Name returns the name of the step
func (s *InstallStage) Name() string {
	return StepInstallDependencies
}

// Execute runs the package manager for the declared dependency manifest
func (s *InstallStage) Execute(ctx context.Context) error {
	if err := installer.New(s.runner).Install(ctx, &s.manifest.Spec, s.isDryRun); err != nil {
		return err
	}

	if s.isDryRun {
		fmt.Printf("%s✅ Dependency installation simulation completed successfully%s\n", ColorGreen, ColorReset)
	} else {
		fmt.Printf("%s✅ Dependencies installed via %s%s\n", ColorGreen, s.manifest.Spec.Dependencies.Manager, ColorReset)
	}
	slog.Info("Dependency installation completed", "manager", s.manifest.Spec.Dependencies.Manager, "dryRun", s.isDryRun)
	return nil
}

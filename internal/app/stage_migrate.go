package app

import (
	"context"
	"fmt"
	"log/slog"

	"deploykit/internal/migrator"
	"deploykit/pkg/manifest"
	"deploykit/pkg/runtime"
)

// MigrateStage implements the sequencer.Step interface for the
// apply-migrations step.
type MigrateStage struct {
	manifest *manifest.Manifest
	runner   runtime.Runner
	isDryRun bool
}

// NewMigrateStage creates a new migrate stage instance
func NewMigrateStage(m *manifest.Manifest, runner runtime.Runner, isDryRun bool) *MigrateStage {
	return &MigrateStage{
		manifest: m,
		runner:   runner,
		isDryRun: isDryRun,
	}
}

// Name returns the name of the step
func (s *MigrateStage) Name() string {
	return StepApplyMigrations
}

// Execute applies outstanding schema migrations to the persistent store
func (s *MigrateStage) Execute(ctx context.Context) error {
	if err := migrator.New(s.runner).Apply(ctx, &s.manifest.Spec, s.isDryRun); err != nil {
		return err
	}

	if s.isDryRun {
		fmt.Printf("%s✅ Migration simulation completed successfully%s\n", ColorGreen, ColorReset)
	} else {
		fmt.Printf("%s✅ Schema migrations applied via %s%s\n", ColorGreen, s.manifest.Spec.Migrations.Engine, ColorReset)
	}
	slog.Info("Migration stage completed", "engine", s.manifest.Spec.Migrations.Engine, "dryRun", s.isDryRun)
	return nil
}

package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"deploykit/pkg/manifest"
	"deploykit/pkg/runtime"
)

// AdminStage implements the sequencer.Step interface for the optional
// create-admin-user step. It exists in the step catalog but only joins the
// active sequence when spec.admin.enabled is true. The configured command is
// expected to be idempotent (create the account only if it does not exist).
type AdminStage struct {
	manifest *manifest.Manifest
	runner   runtime.Runner
	isDryRun bool
}

// NewAdminStage creates a new admin stage instance
func NewAdminStage(m *manifest.Manifest, runner runtime.Runner, isDryRun bool) *AdminStage {
	return &AdminStage{
		manifest: m,
		runner:   runner,
		isDryRun: isDryRun,
	}
}

// Name returns the name of the step
func (s *AdminStage) Name() string {
	return StepCreateAdminUser
}

// Execute runs the configured admin bootstrap command in the application
// directory (the migration path).
func (s *AdminStage) Execute(ctx context.Context) error {
	admin := s.manifest.Spec.Admin

	workDir, err := filepath.Abs(s.manifest.Spec.Migrations.Path)
	if err != nil {
		return fmt.Errorf("failed to resolve application directory: %w", err)
	}

	if s.isDryRun {
		fmt.Printf("DRY RUN: Would run %v in %s\n", admin.Command, workDir)
		fmt.Printf("%s✅ Admin bootstrap simulation completed successfully%s\n", ColorGreen, ColorReset)
		return nil
	}

	execSpec := runtime.ExecSpec{
		Image:            admin.Image,
		Command:          admin.Command,
		EnvVars:          s.manifest.Spec.Env,
		VolumeMounts:     map[string]string{workDir: workDir},
		WorkingDirectory: workDir,
	}

	if err := s.runner.Run(ctx, execSpec, os.Stdout); err != nil {
		return fmt.Errorf("admin bootstrap command failed: %w", err)
	}

	fmt.Printf("%s✅ Admin user bootstrap completed%s\n", ColorGreen, ColorReset)
	slog.Info("Admin stage completed", "command", admin.Command)
	return nil
}

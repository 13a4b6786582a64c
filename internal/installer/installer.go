package installer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	deployerrors "deploykit/internal/errors"
	"deploykit/pkg/manifest"
	"deploykit/pkg/runtime"
)

// Default images used when the manifest does not pin one.
const (
	PythonImage = "python:3.12-slim"
	NodeImage   = "node:22-alpine"
)

// Installer wraps the package manager that resolves and installs the
// application's declared dependencies.
type Installer struct {
	runner runtime.Runner
}

// New creates an Installer that executes the package manager via runner.
func New(runner runtime.Runner) *Installer {
	return &Installer{runner: runner}
}

// Install runs the dependency install for the manifest's declared manager.
// The package manager owns idempotence: re-running against an already
// satisfied dependency set is a no-op on its side.
func (i *Installer) Install(ctx context.Context, spec *manifest.Spec, isDryRun bool) error {
	deps := spec.Dependencies

	if _, err := os.Stat(deps.Manifest); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("dependency manifest not found: %s", deps.Manifest)
		}
		return fmt.Errorf("failed to stat dependency manifest %s: %w", deps.Manifest, err)
	}

	command, err := installCommand(deps)
	if err != nil {
		return err
	}

	workDir, err := filepath.Abs(filepath.Dir(deps.Manifest))
	if err != nil {
		return fmt.Errorf("failed to resolve dependency manifest directory: %w", err)
	}

	if isDryRun {
		fmt.Printf("DRY RUN: Would run %v in %s\n", command, workDir)
		return nil
	}

	slog.Info("Installing dependencies", "manager", deps.Manager, "manifest", deps.Manifest)

	execSpec := runtime.ExecSpec{
		Image:            imageFor(deps),
		Command:          command,
		EnvVars:          spec.Env,
		VolumeMounts:     map[string]string{workDir: workDir},
		WorkingDirectory: workDir,
	}

	if err := i.runner.Run(ctx, execSpec, os.Stdout); err != nil {
		return deployerrors.NewInstallError(
			fmt.Sprintf("Failed to install dependencies via %s", deps.Manager),
			err.Error(),
			fmt.Sprintf("Check the %s output above and verify %s resolves cleanly", deps.Manager, filepath.Base(deps.Manifest)),
			fmt.Errorf("dependency installation failed: %w", err),
		)
	}

	slog.Info("Dependencies installed", "manager", deps.Manager)
	return nil
}

// installCommand builds the package manager invocation for the declared
// manager. Only pip references the manifest file directly; poetry and npm
// locate theirs from the working directory.
func installCommand(deps manifest.Dependencies) ([]string, error) {
	switch deps.Manager {
	case "pip":
		return []string{"pip", "install", "-r", filepath.Base(deps.Manifest)}, nil
	case "poetry":
		return []string{"poetry", "install", "--no-interaction"}, nil
	case "npm":
		return []string{"npm", "ci"}, nil
	default:
		return nil, fmt.Errorf("unsupported dependency manager: %s", deps.Manager)
	}
}

func imageFor(deps manifest.Dependencies) string {
	if deps.Image != "" {
		return deps.Image
	}
	if deps.Manager == "npm" {
		return NodeImage
	}
	return PythonImage
}

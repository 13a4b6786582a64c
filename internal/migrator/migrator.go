package migrator

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
	DjangoImage  = "python:3.12-slim"
	MigrateImage = "migrate/migrate:v4.17.0"
)

// Migrator wraps the schema-migration engine that applies outstanding
// migrations to the persistent store.
type Migrator struct {
	runner runtime.Runner
}

// New creates a Migrator that executes the migration engine via runner.
func New(runner runtime.Runner) *Migrator {
	return &Migrator{runner: runner}
}

// Apply runs the engine-specific migration command. The engine owns
// idempotence: already-applied migrations are a no-op on its side. A
// partially-applied migration surfaces as a single failure; nothing is
// rolled back here.
func (m *Migrator) Apply(ctx context.Context, spec *manifest.Spec, isDryRun bool) error {
	migrations := spec.Migrations

	if _, err := os.Stat(migrations.Path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("migration path not found: %s", migrations.Path)
		}
		return fmt.Errorf("failed to stat migration path %s: %w", migrations.Path, err)
	}

	workDir, err := filepath.Abs(migrations.Path)
	if err != nil {
		return fmt.Errorf("failed to resolve migration path: %w", err)
	}

	database := os.Expand(migrations.Database, os.Getenv)

	command, err := migrateCommand(migrations, workDir, database)
	if err != nil {
		return err
	}

	if isDryRun {
		fmt.Printf("DRY RUN: Would run %v in %s\n", command, workDir)
		return nil
	}

	slog.Info("Applying schema migrations", "engine", migrations.Engine, "path", migrations.Path)

	envVars := make(map[string]string, len(spec.Env)+1)
	for key, value := range spec.Env {
		envVars[key] = value
	}
	if database != "" {
		envVars["DATABASE_URL"] = database
	}

	execSpec := runtime.ExecSpec{
		Image:            imageFor(migrations),
		Command:          command,
		EnvVars:          envVars,
		VolumeMounts:     map[string]string{workDir: workDir},
		WorkingDirectory: workDir,
	}

	if err := m.runner.Run(ctx, execSpec, os.Stdout); err != nil {
		return deployerrors.NewMigrateError(
			fmt.Sprintf("Failed to apply schema migrations via %s", migrations.Engine),
			err.Error(),
			"Check the migration output above; a partially applied migration may need manual repair before retrying",
			fmt.Errorf("schema migration failed: %w", err),
		)
	}

	slog.Info("Schema migrations applied", "engine", migrations.Engine)
	return nil
}

// migrateCommand builds the migration engine invocation.
func migrateCommand(migrations manifest.Migrations, workDir, database string) ([]string, error) {
	switch migrations.Engine {
	case "django":
		return []string{"python", "manage.py", "migrate", "--noinput"}, nil
	case "migrate":
		if database == "" {
			return nil, fmt.Errorf("migration engine 'migrate' requires a database DSN")
		}
		return []string{"migrate", "-path", workDir, "-database", database, "up"}, nil
	default:
		return nil, fmt.Errorf("unsupported migration engine: %s", migrations.Engine)
	}
}

func imageFor(migrations manifest.Migrations) string {
	if migrations.Image != "" {
		return migrations.Image
	}
	if migrations.Engine == "migrate" {
		return MigrateImage
	}
	return DjangoImage
}

package app

import (
	"fmt"

	"deploykit/internal/sequencer"
	"deploykit/pkg/manifest"
	"deploykit/pkg/runtime"
)

// Canonical step names. Order in the active sequence is fixed: dependency
// installation must precede asset collection and migration.
const (
	StepInstallDependencies = "install-dependencies"
	StepCollectStaticAssets = "collect-static-assets"
	StepApplyMigrations     = "apply-migrations"
	StepCreateAdminUser     = "create-admin-user"
)

// buildSteps assembles the active step sequence for a run from the manifest.
// The admin step is catalog-only: it joins the sequence solely when enabled
// by configuration. A misconfigured catalog entry is a configuration error
// surfaced before any step runs.
func buildSteps(m *manifest.Manifest, runner runtime.Runner, isDryRun bool) ([]sequencer.Step, error) {
	steps := []sequencer.Step{
		NewInstallStage(m, runner, isDryRun),
		NewCollectStage(m, isDryRun),
		NewMigrateStage(m, runner, isDryRun),
	}

	if m.Spec.Admin.Enabled {
		if len(m.Spec.Admin.Command) == 0 {
			return nil, fmt.Errorf("admin step is enabled but spec.admin.command is empty")
		}
		steps = append(steps, NewAdminStage(m, runner, isDryRun))
	}

	return steps, nil
}

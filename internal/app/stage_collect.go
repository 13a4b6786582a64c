package app

import (
	"context"
	"fmt"
	"log/slog"

	"deploykit/internal/assets"
	"deploykit/pkg/manifest"
)

// CollectStage implements the sequencer.Step interface for the
// collect-static-assets step.
type CollectStage struct {
	manifest *manifest.Manifest
	isDryRun bool
}

// NewCollectStage creates a new collect stage instance
func NewCollectStage(m *manifest.Manifest, isDryRun bool) *CollectStage {
	return &CollectStage{
		manifest: m,
		isDryRun: isDryRun,
	}
}

// Name returns the name of the step
func (s *CollectStage) Name() string {
	return StepCollectStaticAssets
}

// Execute publishes static assets to the serving location
func (s *CollectStage) Execute(ctx context.Context) error {
	if err := assets.Collect(ctx, &s.manifest.Spec.Assets, s.isDryRun); err != nil {
		return err
	}

	if s.isDryRun {
		fmt.Printf("%s✅ Asset collection simulation completed successfully%s\n", ColorGreen, ColorReset)
	} else {
		fmt.Printf("%s✅ Static assets collected to: %s%s\n", ColorGreen, s.manifest.Spec.Assets.Destination, ColorReset)
	}
	slog.Info("Asset collection completed", "destination", s.manifest.Spec.Assets.Destination, "dryRun", s.isDryRun)
	return nil
}

package orchestrator

import (
	"context"
	"fmt"

	"github.com/forgelabs/gameforge/internal/generation"
	"github.com/forgelabs/gameforge/internal/spec"
)

// runFallback assembles a deterministic project without model calls: a
// theme derived from the design palette, placeholder-capable assets, and
// the pre-validated template sources. It runs once with no retries.
func (o *Orchestrator) runFallback(ctx context.Context, design spec.DesignSpec, projectDir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	theme := generation.ThemeFromPalette(design.Palette)
	if err := generation.WriteTheme(projectDir, theme); err != nil {
		return fmt.Errorf("fallback theme: %w", err)
	}

	assets := o.Assets
	if assets == nil {
		assets = generation.NewStudioAssetGenerator(nil)
	}
	if _, err := assets.GenerateAssets(ctx, design, projectDir, generation.NewAttemptContext(1)); err != nil {
		return fmt.Errorf("fallback assets: %w", err)
	}

	if err := writeTemplateSources(projectDir, design); err != nil {
		return fmt.Errorf("fallback sources: %w", err)
	}
	return nil
}

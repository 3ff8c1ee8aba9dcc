package service

import (
	"context"

	"github.com/forgelabs/gameforge/internal/generation"
	"github.com/forgelabs/gameforge/internal/quality"
	"github.com/forgelabs/gameforge/internal/spec"
	"github.com/forgelabs/gameforge/internal/terminal"
)

// Progress decorators wrap the generation collaborators so the orchestrator
// stays unaware of the display. The theme generator runs first in every
// attempt, so its decorator also advances the attempt counter.

type themeWithProgress struct {
	inner generation.ThemeGenerator
	pd    *terminal.ProgressDisplay
}

func (t themeWithProgress) GenerateTheme(ctx context.Context, design spec.DesignSpec, projectDir string, attempt *generation.AttemptContext) error {
	t.pd.SetAttempt(attempt.Attempt)
	t.pd.SetPhase(terminal.PhaseTheming)
	return t.inner.GenerateTheme(ctx, design, projectDir, attempt)
}

type mechanicsWithProgress struct {
	inner generation.MechanicsGenerator
	pd    *terminal.ProgressDisplay
}

func (m mechanicsWithProgress) GenerateMechanics(ctx context.Context, design spec.DesignSpec, projectDir string, attempt *generation.AttemptContext) error {
	m.pd.SetPhase(terminal.PhaseMechanics)
	return m.inner.GenerateMechanics(ctx, design, projectDir, attempt)
}

type assetsWithProgress struct {
	inner generation.AssetGenerator
	pd    *terminal.ProgressDisplay
}

func (a assetsWithProgress) GenerateAssets(ctx context.Context, design spec.DesignSpec, projectDir string, attempt *generation.AttemptContext) (*quality.AssetManifest, error) {
	a.pd.SetPhase(terminal.PhaseAssets)
	return a.inner.GenerateAssets(ctx, design, projectDir, attempt)
}

type validatorWithProgress struct {
	inner *quality.Aggregator
	pd    *terminal.ProgressDisplay
}

func (v validatorWithProgress) Validate(ctx context.Context, projectDir string) quality.Score {
	v.pd.SetPhase(terminal.PhaseValidating)
	return v.inner.Validate(ctx, projectDir)
}

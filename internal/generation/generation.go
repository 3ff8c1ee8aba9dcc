// Package generation defines the collaborators that produce game artifacts:
// design specs, themes, mechanics code, and image assets. Each collaborator
// is an interface so the orchestrator can be exercised without a live
// Claude Code installation.
package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/forgelabs/gameforge/internal/claude"
	"github.com/forgelabs/gameforge/internal/quality"
	"github.com/forgelabs/gameforge/internal/spec"
)

// Backend abstracts the Claude Code CLI so generators can be tested with fakes.
// *claude.Client satisfies this interface.
type Backend interface {
	Generate(ctx context.Context, userMessage string, opts claude.GenerateOpts) (*claude.Response, error)
}

// SpecGenerator proposes a new game design, optionally informed by prior
// designs and free-form hints.
type SpecGenerator interface {
	GenerateDesignSpec(ctx context.Context, prior []spec.DesignSpec, hints []string) (*spec.DesignSpec, error)
}

// ThemeGenerator writes theme.json into the project directory.
type ThemeGenerator interface {
	GenerateTheme(ctx context.Context, design spec.DesignSpec, projectDir string, attempt *AttemptContext) error
}

// MechanicsGenerator writes the gameplay source files into the project
// directory: entity definitions, game logic with the level literal, and the
// main scene.
type MechanicsGenerator interface {
	GenerateMechanics(ctx context.Context, design spec.DesignSpec, projectDir string, attempt *AttemptContext) error
}

// AssetGenerator produces the image assets and writes assets/manifest.json.
type AssetGenerator interface {
	GenerateAssets(ctx context.Context, design spec.DesignSpec, projectDir string, attempt *AttemptContext) (*quality.AssetManifest, error)
}

// AttemptContext accumulates feedback across generation attempts. Failure
// notes from earlier attempts are folded into the prompts of later ones so
// the model does not repeat the same mistake.
type AttemptContext struct {
	Attempt  int
	failures []string
}

// NewAttemptContext returns a context for the given 1-based attempt number.
func NewAttemptContext(attempt int) *AttemptContext {
	return &AttemptContext{Attempt: attempt}
}

// RecordFailure appends a failure note from the named stage.
func (a *AttemptContext) RecordFailure(stage, detail string) {
	if a == nil || detail == "" {
		return
	}
	a.failures = append(a.failures, fmt.Sprintf("[%s] %s", stage, detail))
}

// Failures returns a copy of the accumulated failure notes.
func (a *AttemptContext) Failures() []string {
	if a == nil {
		return nil
	}
	out := make([]string, len(a.failures))
	copy(out, a.failures)
	return out
}

// FeedbackPrompt renders the accumulated failures as a prompt section, or ""
// when there is nothing to report.
func (a *AttemptContext) FeedbackPrompt() string {
	if a == nil || len(a.failures) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Previous attempts failed for the following reasons. Avoid repeating them:\n")
	for _, f := range a.failures {
		b.WriteString("- ")
		b.WriteString(f)
		b.WriteString("\n")
	}
	return b.String()
}

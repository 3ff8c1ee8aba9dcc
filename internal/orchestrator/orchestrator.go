// Package orchestrator runs the generate-validate-retry loop that turns a
// design spec into an accepted game project. It owns retry bounds, backoff,
// cost budgeting, and the deterministic fallback.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/forgelabs/gameforge/internal/generation"
	"github.com/forgelabs/gameforge/internal/pricing"
	"github.com/forgelabs/gameforge/internal/quality"
	"github.com/forgelabs/gameforge/internal/spec"
)

// Validator scores a generated project. *quality.Aggregator satisfies it.
type Validator interface {
	Validate(ctx context.Context, projectDir string) quality.Score
}

// RunConfig bounds one orchestration run.
type RunConfig struct {
	MaxRetries      int     // total generation attempts, at least 1
	MinQualityScore int     // overall score required to accept an attempt
	CostBudget      float64 // cost units available for the whole run
	EnableFallback  bool    // assemble the deterministic fallback on exhaustion
	ProjectDir      string  // where the project is written
}

func (c RunConfig) validate() error {
	if c.MaxRetries < 1 {
		return fmt.Errorf("max retries must be at least 1, got %d", c.MaxRetries)
	}
	if c.MinQualityScore < 0 || c.MinQualityScore > 100 {
		return fmt.Errorf("min quality score must be in [0,100], got %d", c.MinQualityScore)
	}
	if c.CostBudget <= 0 {
		return fmt.Errorf("cost budget must be positive, got %v", c.CostBudget)
	}
	if c.ProjectDir == "" {
		return fmt.Errorf("project dir is required")
	}
	return nil
}

// Orchestrator coordinates the generation collaborators and the quality
// validator.
type Orchestrator struct {
	Theme     generation.ThemeGenerator
	Mechanics generation.MechanicsGenerator
	Assets    generation.AssetGenerator
	Validator Validator
	Costs     pricing.Table

	sleep func(context.Context, time.Duration) error
}

// New returns an orchestrator with the default cost table.
func New(theme generation.ThemeGenerator, mechanics generation.MechanicsGenerator, assets generation.AssetGenerator, validator Validator) *Orchestrator {
	return &Orchestrator{
		Theme:     theme,
		Mechanics: mechanics,
		Assets:    assets,
		Validator: validator,
		Costs:     pricing.Default(),
		sleep:     sleepCtx,
	}
}

// Run executes the generate-validate loop for one design. The returned
// result always carries the full attempt history; the error return is
// reserved for configuration problems and fallback assembly failures.
func (o *Orchestrator) Run(ctx context.Context, design spec.DesignSpec, cfg RunConfig) (*GenerationResult, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid run config: %w", err)
	}
	if err := design.Validate(); err != nil {
		return nil, fmt.Errorf("invalid design spec: %w", err)
	}
	if o.sleep == nil {
		o.sleep = sleepCtx
	}

	start := time.Now()
	res := &GenerationResult{SpecID: design.ID}
	feedback := generation.NewAttemptContext(0)

	budgetExhausted := false
	for n := 1; n <= cfg.MaxRetries; n++ {
		// An already-cancelled context must not start a new attempt and
		// charge for it.
		if ctx.Err() != nil {
			return o.finish(res, start, withCancelled("run cancelled before attempt "+fmt.Sprint(n))), nil
		}

		// Budget is checked before each attempt, never mid-attempt: an
		// attempt that starts may finish and charge its full cost.
		if res.TotalCostUnits >= cfg.CostBudget {
			budgetExhausted = true
			break
		}

		if n > 1 {
			if err := o.sleep(ctx, backoffDelay(n-1)); err != nil {
				return o.finish(res, start, withCancelled("run cancelled during backoff")), nil
			}
		}

		feedback.Attempt = n
		attempt := o.runAttempt(ctx, design, cfg, feedback, n)
		res.Attempts = append(res.Attempts, attempt)
		res.TotalCostUnits += attempt.CostUnits

		if ctx.Err() != nil {
			return o.finish(res, start, withCancelled("run cancelled during attempt "+fmt.Sprint(n))), nil
		}
		if attempt.Success {
			res.Success = true
			return o.finish(res, start, nil), nil
		}
	}

	return o.exhausted(ctx, design, cfg, res, start, budgetExhausted)
}

// runAttempt performs one generation pass. Collaborator failures end the
// attempt before validation and charge the reduced cost; an attempt that
// reaches validation charges the full cost whether or not it passes the
// quality gate.
func (o *Orchestrator) runAttempt(ctx context.Context, design spec.DesignSpec, cfg RunConfig, feedback *generation.AttemptContext, n int) GenerationAttempt {
	started := time.Now()
	attempt := GenerationAttempt{Number: n}

	if err := o.generate(ctx, design, cfg.ProjectDir, feedback); err != nil {
		attempt.CostUnits = o.Costs.AttemptCost(false)
		attempt.Error = err.Error()
		attempt.Duration = time.Since(started)
		feedback.RecordFailure("generation", err.Error())
		return attempt
	}

	score := o.Validator.Validate(ctx, cfg.ProjectDir)
	attempt.CostUnits = o.Costs.AttemptCost(true)
	attempt.Score = &score
	attempt.Duration = time.Since(started)

	if score.Overall >= cfg.MinQualityScore {
		attempt.Success = true
		return attempt
	}

	attempt.Error = fmt.Sprintf("overall score %d below threshold %d", score.Overall, cfg.MinQualityScore)
	feedback.RecordFailure("quality", describeScore(score))
	return attempt
}

// generate runs the three collaborators in order: theme, mechanics, assets.
func (o *Orchestrator) generate(ctx context.Context, design spec.DesignSpec, projectDir string, feedback *generation.AttemptContext) error {
	if err := o.Theme.GenerateTheme(ctx, design, projectDir, feedback); err != nil {
		return fmt.Errorf("theme: %w", err)
	}
	if err := o.Mechanics.GenerateMechanics(ctx, design, projectDir, feedback); err != nil {
		return fmt.Errorf("mechanics: %w", err)
	}
	if _, err := o.Assets.GenerateAssets(ctx, design, projectDir, feedback); err != nil {
		return fmt.Errorf("assets: %w", err)
	}
	return nil
}

// exhausted handles the end of the retry loop without an accepted attempt.
func (o *Orchestrator) exhausted(ctx context.Context, design spec.DesignSpec, cfg RunConfig, res *GenerationResult, start time.Time, budgetExhausted bool) (*GenerationResult, error) {
	reason := fmt.Sprintf("quality gate not met after %d attempts", len(res.Attempts))
	if budgetExhausted {
		reason = fmt.Sprintf("cost budget %.1f exhausted after %d attempts (spent %.1f)",
			cfg.CostBudget, len(res.Attempts), res.TotalCostUnits)
	}
	if best := res.BestScore(); best >= 0 {
		reason += fmt.Sprintf("; best overall score %d, threshold %d", best, cfg.MinQualityScore)
	}

	if !cfg.EnableFallback {
		res.Error = reason
		return o.finish(res, start, nil), nil
	}

	if err := o.runFallback(ctx, design, cfg.ProjectDir); err != nil {
		res.Error = fmt.Sprintf("%s; fallback failed: %v", reason, err)
		o.finish(res, start, nil)
		return res, fmt.Errorf("fallback assembly failed after %s: %w", reason, err)
	}

	res.Success = true
	res.FallbackUsed = true
	return o.finish(res, start, nil), nil
}

func (o *Orchestrator) finish(res *GenerationResult, start time.Time, mod func(*GenerationResult)) *GenerationResult {
	if mod != nil {
		mod(res)
	}
	res.TotalDuration = time.Since(start)
	return res
}

func withCancelled(msg string) func(*GenerationResult) {
	return func(r *GenerationResult) {
		r.Cancelled = true
		r.Error = msg
	}
}

// describeScore summarizes the weak dimensions for attempt feedback.
func describeScore(s quality.Score) string {
	return fmt.Sprintf("overall %d (code %d, gameplay %d, visual %d)",
		s.Overall, s.Code.Score, s.Gameplay.Score, s.Visual.Score)
}

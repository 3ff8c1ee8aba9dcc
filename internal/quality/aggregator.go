package quality

import (
	"context"
	"sync"
)

// AggregatorConfig controls which probers run and the pass thresholds.
// A disabled prober contributes a perfect score — disabling a check must
// never penalize the artifact.
type AggregatorConfig struct {
	Thresholds      Thresholds `yaml:"thresholds"`
	DisableCode     bool       `yaml:"disable_code"`
	DisableGameplay bool       `yaml:"disable_gameplay"`
	DisableVisual   bool       `yaml:"disable_visual"`
}

// Aggregator runs the three probers and combines their scores.
// Probers are read-only against independent artifacts, so they run
// concurrently; no partial results are accepted.
type Aggregator struct {
	code     *CodeProber
	gameplay *GameplayProber
	visual   *VisualProber
	cfg      AggregatorConfig
}

// NewAggregator creates an aggregator over explicitly constructed probers.
// Zero thresholds fall back to the defaults.
func NewAggregator(code *CodeProber, gameplay *GameplayProber, visual *VisualProber, cfg AggregatorConfig) *Aggregator {
	if cfg.Thresholds == (Thresholds{}) {
		cfg.Thresholds = DefaultThresholds()
	}
	return &Aggregator{code: code, gameplay: gameplay, visual: visual, cfg: cfg}
}

// Validate scores the generated project at outputDir. It blocks until all
// three probers complete, then computes the weighted overall score and the
// per-dimension pass flags. passed is true only when the overall score and
// every sub-score clear their thresholds.
func (a *Aggregator) Validate(ctx context.Context, outputDir string) Score {
	var (
		wg       sync.WaitGroup
		code     CodeScore
		gameplay GameplayScore
		visual   VisualScore
	)

	if a.cfg.DisableCode {
		code = CodeScore{Score: 100, Details: CodeDetails{CompileOK: true}}
	} else {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code = a.code.Probe(ctx, outputDir)
		}()
	}

	if a.cfg.DisableGameplay {
		gameplay = GameplayScore{Score: 100, Details: GameplayDetails{Stability: true}}
	} else {
		wg.Add(1)
		go func() {
			defer wg.Done()
			gameplay = a.gameplay.Probe(ctx, outputDir)
		}()
	}

	if a.cfg.DisableVisual {
		visual = VisualScore{Score: 100}
	} else {
		wg.Add(1)
		go func() {
			defer wg.Done()
			visual = a.visual.Probe(ctx, outputDir)
		}()
	}

	wg.Wait()

	t := a.cfg.Thresholds
	code.Passed = code.Score >= t.Code
	gameplay.Passed = gameplay.Score >= t.Gameplay
	visual.Passed = visual.Score >= t.Visual

	overall := WeightedOverall(code.Score, gameplay.Score, visual.Score)
	return Score{
		Overall:  overall,
		Passed:   overall >= t.Overall && code.Passed && gameplay.Passed && visual.Passed,
		Code:     code,
		Gameplay: gameplay,
		Visual:   visual,
	}
}

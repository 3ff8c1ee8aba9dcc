// Package quality scores generated game projects. Three probers (code,
// gameplay, visual) each produce a 0-100 sub-score; the aggregator runs them
// concurrently and combines the results into a single weighted overall score
// with per-dimension pass thresholds.
package quality

import "math"

// Fixed dimension weights. The overall score is always
// round(0.40*code + 0.35*gameplay + 0.25*visual).
const (
	weightCode     = 0.40
	weightGameplay = 0.35
	weightVisual   = 0.25
)

// Thresholds holds the minimum score each dimension must clear. An attempt
// passes only when the overall score and every individual sub-score clear
// their thresholds.
type Thresholds struct {
	Overall  int `yaml:"overall"`
	Code     int `yaml:"code"`
	Gameplay int `yaml:"gameplay"`
	Visual   int `yaml:"visual"`
}

// DefaultThresholds returns the standard pass thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Overall: 70, Code: 90, Gameplay: 85, Visual: 85}
}

// Score is the immutable result of one aggregation pass.
type Score struct {
	Overall  int           `json:"overall"`
	Passed   bool          `json:"passed"`
	Code     CodeScore     `json:"code"`
	Gameplay GameplayScore `json:"gameplay"`
	Visual   VisualScore   `json:"visual"`
}

// CodeScore is the code dimension: compile, test, and lint signals.
type CodeScore struct {
	Score   int         `json:"score"`
	Passed  bool        `json:"passed"`
	Details CodeDetails `json:"details"`
}

// CodeDetails carries raw diagnostics from the external tooling.
type CodeDetails struct {
	CompileOK   bool     `json:"compile_ok"`
	TestsPassed int      `json:"tests_passed"`
	TestsFailed int      `json:"tests_failed"`
	LintIssues  int      `json:"lint_issues"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// GameplayScore is the gameplay dimension: stability, reachability, performance.
type GameplayScore struct {
	Score   int             `json:"score"`
	Passed  bool            `json:"passed"`
	Details GameplayDetails `json:"details"`
}

// GameplayDetails counts what the synthetic input probe observed.
type GameplayDetails struct {
	Stability          bool    `json:"stability"`
	InputsDelivered    int     `json:"inputs_delivered"`
	Crashes            int     `json:"crashes"`
	WinReachable       bool    `json:"win_reachable"`
	LoseReachable      bool    `json:"lose_reachable"`
	ScoreAccumulates   bool    `json:"score_accumulates"`
	ControlsResponsive bool    `json:"controls_responsive"`
	FPS                float64 `json:"fps"`
	DroppedFrames      int     `json:"dropped_frames"`
	Error              string  `json:"error,omitempty"`
}

// VisualScore is the visual dimension: contrast, assets, layout, theme.
type VisualScore struct {
	Score   int           `json:"score"`
	Passed  bool          `json:"passed"`
	Details VisualDetails `json:"details"`
}

// VisualDetails carries the per-check breakdown.
type VisualDetails struct {
	ContrastRatio   float64 `json:"contrast_ratio"`
	AssetsLoaded    int     `json:"assets_loaded"`
	AssetsTotal     int     `json:"assets_total"`
	ScreensOK       int     `json:"screens_ok"`
	ScreensTotal    int     `json:"screens_total"`
	AnimationFPS    float64 `json:"animation_fps"`
	ThemeColors     bool    `json:"theme_colors"`
	ThemeTypography bool    `json:"theme_typography"`
	ThemeLayout     bool    `json:"theme_layout"`
	Error           string  `json:"error,omitempty"`
}

// WeightedOverall combines the three sub-scores into the overall score.
// Sub-scores are clamped to [0,100] before weighting; the result is rounded.
func WeightedOverall(code, gameplay, visual int) int {
	c := float64(ClampScore(code))
	g := float64(ClampScore(gameplay))
	v := float64(ClampScore(visual))
	return int(math.Round(c*weightCode + g*weightGameplay + v*weightVisual))
}

// ClampScore bounds a sub-score to [0,100].
func ClampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/forgelabs/gameforge/internal/quality"
)

// RunSettings are the retry-loop defaults applied when flags don't override
// them.
type RunSettings struct {
	MaxRetries      int     `yaml:"max_retries"`
	MinQualityScore int     `yaml:"min_quality_score"`
	CostBudget      float64 `yaml:"cost_budget"`
	EnableFallback  bool    `yaml:"enable_fallback"`
}

// QualitySettings tune the validation pass.
type QualitySettings struct {
	Thresholds      quality.Thresholds `yaml:"thresholds"`
	DisableCode     bool               `yaml:"disable_code"`
	DisableGameplay bool               `yaml:"disable_gameplay"`
	DisableVisual   bool               `yaml:"disable_visual"`
	BuildCmd        string             `yaml:"build_cmd"`
	TestCmd         string             `yaml:"test_cmd"`
	LintCmd         string             `yaml:"lint_cmd"`
	HarnessCmd      string             `yaml:"harness_cmd"`
}

// AssetSettings point at a hosted image-generation endpoint. The API key
// lives in the secret store under "<provider>/api_key", never in YAML.
type AssetSettings struct {
	Provider string `yaml:"provider"`
	Endpoint string `yaml:"endpoint"`
}

// Settings is the gameforge.yaml file.
type Settings struct {
	Model       string          `yaml:"model"`
	Run         RunSettings     `yaml:"run"`
	Quality     QualitySettings `yaml:"quality"`
	Assets      AssetSettings   `yaml:"assets"`
	PricingFile string          `yaml:"pricing_file"`
}

// DefaultSettings returns the settings used when gameforge.yaml is absent.
func DefaultSettings() Settings {
	return Settings{
		Model: "sonnet",
		Run: RunSettings{
			MaxRetries:      3,
			MinQualityScore: 70,
			CostBudget:      10,
			EnableFallback:  true,
		},
		Quality: QualitySettings{
			Thresholds: quality.DefaultThresholds(),
		},
	}
}

// LoadSettings reads gameforge.yaml. A missing file yields the defaults;
// a present but broken file is an error so typos don't silently revert
// tuned values.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return Settings{}, fmt.Errorf("reading settings: %w", err)
	}

	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	return s, nil
}

func (s Settings) validate() error {
	if s.Run.MaxRetries < 1 {
		return fmt.Errorf("run.max_retries must be at least 1")
	}
	if s.Run.MinQualityScore < 0 || s.Run.MinQualityScore > 100 {
		return fmt.Errorf("run.min_quality_score must be in [0,100]")
	}
	if s.Run.CostBudget <= 0 {
		return fmt.Errorf("run.cost_budget must be positive")
	}
	return nil
}

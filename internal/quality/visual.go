package quality

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Point split for the visual dimension.
const (
	contrastPoints     = 25
	assetPoints        = 25
	layoutPoints       = 20
	animationPoints    = 15
	themeSectionPoints = 5 // x3 sections
	smoothFPS          = 60.0
)

// Theme is the theme.json artifact written by the theme generation step.
type Theme struct {
	Colors     map[string]string `json:"colors"`
	Typography map[string]any    `json:"typography"`
	Layout     map[string]any    `json:"layout"`
}

// AssetManifest is the assets/manifest.json artifact written by the asset
// generation step.
type AssetManifest struct {
	Images []AssetEntry `json:"images"`
}

// AssetEntry names one required image asset, relative to the project root.
type AssetEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// LayoutReport is the layout.json artifact describing rendered screens.
type LayoutReport struct {
	Screens []ScreenReport `json:"screens"`
}

// ScreenReport flags overflow/clipping for one screen.
type ScreenReport struct {
	Name     string `json:"name"`
	Overflow bool   `json:"overflow"`
	Clipping bool   `json:"clipping"`
}

// FrameRateSource reports measured animation FPS for a project. The default
// implementation reads the perf.json artifact recorded during probing.
type FrameRateSource interface {
	MeasureFPS(ctx context.Context, projectDir string) (float64, error)
}

// FileFrameRate reads FPS from <projectDir>/perf.json.
type FileFrameRate struct{}

// MeasureFPS implements FrameRateSource.
func (FileFrameRate) MeasureFPS(_ context.Context, projectDir string) (float64, error) {
	data, err := os.ReadFile(filepath.Join(projectDir, "perf.json"))
	if err != nil {
		return 0, fmt.Errorf("reading perf report: %w", err)
	}
	var report struct {
		FPS float64 `json:"fps"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		return 0, fmt.Errorf("parsing perf report: %w", err)
	}
	return report.FPS, nil
}

// VisualProber inspects a generated project's theme and asset artifacts.
type VisualProber struct {
	frameRate FrameRateSource
}

// NewVisualProber creates a visual prober. A nil frameRate falls back to the
// perf.json file source.
func NewVisualProber(frameRate FrameRateSource) *VisualProber {
	if frameRate == nil {
		frameRate = FileFrameRate{}
	}
	return &VisualProber{frameRate: frameRate}
}

// Probe runs the five visual checks against projectDir: color contrast (25),
// asset presence/integrity (25, proportional), layout completeness (20),
// animation smoothness (15, proportional below 60fps), and theme section
// completeness (15, 5 per section).
func (p *VisualProber) Probe(ctx context.Context, projectDir string) VisualScore {
	details := VisualDetails{}
	score := 0

	theme, themeErr := loadTheme(projectDir)
	if themeErr != nil {
		details.Error = themeErr.Error()
	} else {
		if len(theme.Colors) > 0 {
			details.ThemeColors = true
			score += themeSectionPoints
		}
		if len(theme.Typography) > 0 {
			details.ThemeTypography = true
			score += themeSectionPoints
		}
		if len(theme.Layout) > 0 {
			details.ThemeLayout = true
			score += themeSectionPoints
		}

		if fg, bg, ok := textColors(theme); ok {
			if ratio, err := ContrastRatioHex(fg, bg); err == nil {
				details.ContrastRatio = ratio
				score += contrastScore(ratio)
			}
		}
	}

	loaded, total := checkAssets(projectDir)
	details.AssetsLoaded = loaded
	details.AssetsTotal = total
	if total > 0 {
		score += assetPoints * loaded / total
	}

	ok, screens := checkLayout(projectDir)
	details.ScreensOK = ok
	details.ScreensTotal = screens
	if screens > 0 && ok == screens {
		score += layoutPoints
	} else if screens > 0 {
		score += layoutPoints * ok / screens
	}

	if fps, err := p.frameRate.MeasureFPS(ctx, projectDir); err == nil {
		details.AnimationFPS = fps
		if fps >= smoothFPS {
			score += animationPoints
		} else if fps > 0 {
			score += int(animationPoints * fps / smoothFPS)
		}
	}

	return VisualScore{Score: ClampScore(score), Details: details}
}

// contrastScore awards full credit at WCAG AA for normal text and scales
// down proportionally below it.
func contrastScore(ratio float64) int {
	if ratio >= ContrastAANormal {
		return contrastPoints
	}
	return int(contrastPoints * ratio / ContrastAANormal)
}

// textColors picks the foreground/background pair for the contrast check.
func textColors(t *Theme) (fg, bg string, ok bool) {
	bg, okBG := t.Colors["background"]
	if !okBG {
		return "", "", false
	}
	for _, key := range []string{"text", "primary"} {
		if fg, okFG := t.Colors[key]; okFG {
			return fg, bg, true
		}
	}
	return "", "", false
}

func loadTheme(projectDir string) (*Theme, error) {
	data, err := os.ReadFile(filepath.Join(projectDir, "theme.json"))
	if err != nil {
		return nil, fmt.Errorf("reading theme: %w", err)
	}
	var theme Theme
	if err := json.Unmarshal(data, &theme); err != nil {
		return nil, fmt.Errorf("parsing theme: %w", err)
	}
	return &theme, nil
}

// checkAssets verifies every manifest-listed image exists and is non-empty.
func checkAssets(projectDir string) (loaded, total int) {
	data, err := os.ReadFile(filepath.Join(projectDir, "assets", "manifest.json"))
	if err != nil {
		return 0, 0
	}
	var manifest AssetManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return 0, 0
	}
	total = len(manifest.Images)
	for _, img := range manifest.Images {
		info, err := os.Stat(filepath.Join(projectDir, filepath.FromSlash(img.Path)))
		if err == nil && !info.IsDir() && info.Size() > 0 {
			loaded++
		}
	}
	return loaded, total
}

// checkLayout counts screens free of overflow and clipping.
func checkLayout(projectDir string) (ok, total int) {
	data, err := os.ReadFile(filepath.Join(projectDir, "layout.json"))
	if err != nil {
		return 0, 0
	}
	var report LayoutReport
	if err := json.Unmarshal(data, &report); err != nil {
		return 0, 0
	}
	total = len(report.Screens)
	for _, s := range report.Screens {
		if !s.Overflow && !s.Clipping {
			ok++
		}
	}
	return ok, total
}

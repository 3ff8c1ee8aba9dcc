package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/forgelabs/gameforge/internal/claude"
	"github.com/forgelabs/gameforge/internal/quality"
	"github.com/forgelabs/gameforge/internal/spec"
)

const themeSystemPrompt = `You are a mobile UI designer. You output exactly one JSON object and nothing else.`

// MinTextContrast is the lowest text/background contrast a generated theme
// may ship with. Themes below it are corrected before being written.
const MinTextContrast = quality.ContrastAANormal

// ClaudeThemeGenerator asks Claude for a theme derived from the design
// palette, enforces the text contrast floor, and writes theme.json.
type ClaudeThemeGenerator struct {
	backend Backend
	model   string
}

// NewClaudeThemeGenerator returns a theme generator backed by the given client.
func NewClaudeThemeGenerator(backend Backend, model string) *ClaudeThemeGenerator {
	return &ClaudeThemeGenerator{backend: backend, model: model}
}

// GenerateTheme implements ThemeGenerator.
func (g *ClaudeThemeGenerator) GenerateTheme(ctx context.Context, design spec.DesignSpec, projectDir string, attempt *AttemptContext) error {
	prompt := buildThemePrompt(design, attempt)

	resp, err := g.backend.Generate(ctx, prompt, claude.GenerateOpts{
		SystemPrompt: themeSystemPrompt,
		Model:        g.model,
	})
	if err != nil {
		return fmt.Errorf("theme generation failed: %w", err)
	}

	theme, err := parseBackendJSON[quality.Theme](resp.Result, "theme")
	if err != nil {
		return err
	}
	if err := validateTheme(theme); err != nil {
		return fmt.Errorf("generated theme is invalid: %w", err)
	}
	enforceContrast(theme)

	return WriteTheme(projectDir, theme)
}

// WriteTheme serializes the theme to <projectDir>/theme.json.
func WriteTheme(projectDir string, theme *quality.Theme) error {
	data, err := json.MarshalIndent(theme, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding theme: %w", err)
	}
	path := filepath.Join(projectDir, "theme.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ThemeFromPalette builds a complete theme straight from the design palette
// without a model call. Used by the deterministic fallback path.
func ThemeFromPalette(p spec.Palette) *quality.Theme {
	theme := &quality.Theme{
		Colors: map[string]string{
			"primary":    p.Primary,
			"secondary":  p.Secondary,
			"accent":     p.Accent,
			"background": p.Background,
			"surface":    p.Surface,
			"text":       p.Primary,
		},
		Typography: map[string]any{
			"title_size": 28,
			"body_size":  17,
			"font":       "system",
		},
		Layout: map[string]any{
			"corner_radius": 12,
			"spacing":       16,
			"safe_area":     true,
		},
	}
	enforceContrast(theme)
	return theme
}

func buildThemePrompt(design spec.DesignSpec, attempt *AttemptContext) string {
	prompt := fmt.Sprintf(`Create a visual theme for the game %q (genre: %s, mood: %s).

Use this palette:
- primary: %s
- secondary: %s
- accent: %s
- background: %s
- surface: %s

Respond with a single JSON object:

`+"```json"+`
{
  "colors": {"primary": "#RRGGBB", "secondary": "#RRGGBB", "accent": "#RRGGBB", "background": "#RRGGBB", "surface": "#RRGGBB", "text": "#RRGGBB"},
  "typography": {"title_size": 28, "body_size": 17, "font": "system"},
  "layout": {"corner_radius": 12, "spacing": 16, "safe_area": true}
}
`+"```"+`

The text color must contrast against the background at a ratio of at least %.1f:1.`,
		design.Name, design.Genre, design.Mood,
		design.Palette.Primary, design.Palette.Secondary, design.Palette.Accent,
		design.Palette.Background, design.Palette.Surface,
		float64(MinTextContrast))

	if fb := attempt.FeedbackPrompt(); fb != "" {
		prompt += "\n\n" + fb
	}
	return prompt
}

func validateTheme(theme *quality.Theme) error {
	if len(theme.Colors) == 0 {
		return fmt.Errorf("theme has no colors section")
	}
	for _, key := range []string{"text", "background"} {
		hex, ok := theme.Colors[key]
		if !ok {
			return fmt.Errorf("theme colors missing %q", key)
		}
		if _, err := quality.ParseHexColor(hex); err != nil {
			return fmt.Errorf("theme color %q: %w", key, err)
		}
	}
	if len(theme.Typography) == 0 {
		return fmt.Errorf("theme has no typography section")
	}
	if len(theme.Layout) == 0 {
		return fmt.Errorf("theme has no layout section")
	}
	return nil
}

// enforceContrast replaces the text color with black or white when the
// generated pairing falls below the contrast floor. Whichever extreme
// contrasts harder against the background wins.
func enforceContrast(theme *quality.Theme) {
	bg := theme.Colors["background"]
	text := theme.Colors["text"]
	ratio, err := quality.ContrastRatioHex(text, bg)
	if err == nil && ratio >= MinTextContrast {
		return
	}

	black, errB := quality.ContrastRatioHex("#000000", bg)
	white, errW := quality.ContrastRatioHex("#FFFFFF", bg)
	if errB != nil || errW != nil {
		return
	}
	if black >= white {
		theme.Colors["text"] = "#000000"
	} else {
		theme.Colors["text"] = "#FFFFFF"
	}
}

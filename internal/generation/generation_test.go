package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/forgelabs/gameforge/internal/claude"
	"github.com/forgelabs/gameforge/internal/quality"
	"github.com/forgelabs/gameforge/internal/spec"
)

type fakeBackend struct {
	result string
	err    error
	calls  []string
}

func (f *fakeBackend) Generate(_ context.Context, userMessage string, _ claude.GenerateOpts) (*claude.Response, error) {
	f.calls = append(f.calls, userMessage)
	if f.err != nil {
		return nil, f.err
	}
	return &claude.Response{Result: f.result}, nil
}

func testDesign() spec.DesignSpec {
	return spec.DesignSpec{
		ID:    "drift-dash",
		Name:  "Drift Dash",
		Genre: "runner",
		Mood:  "neon",
		Palette: spec.Palette{
			Primary:    "#1A1A2E",
			Secondary:  "#16213E",
			Accent:     "#E94560",
			Background: "#F5F5F5",
			Surface:    "#FFFFFF",
		},
		Levels: []spec.LevelDef{
			{Index: 1, Name: "Warmup", Goal: "survive 30s", Difficulty: 2, TargetScore: 100},
			{Index: 2, Name: "Rush", Goal: "survive 60s", Difficulty: 5, TargetScore: 300},
		},
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain object", `{"key":"value"}`, `{"key":"value"}`},
		{"json fence", "```json\n{\"key\":\"value\"}\n```", `{"key":"value"}`},
		{"thinking text around fence", "Thinking...\n```json\n{\"a\":1}\n```\ndone", `{"a":1}`},
		{"no json", "just text", "just text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.input); got != tt.want {
				t.Errorf("extractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateDesignSpec(t *testing.T) {
	design := testDesign()
	raw := fmt.Sprintf("```json\n"+`{
  "id": %q, "name": %q, "genre": %q, "mood": %q,
  "palette": {"primary": "#1A1A2E", "secondary": "#16213E", "accent": "#E94560", "background": "#F5F5F5", "surface": "#FFFFFF"},
  "levels": [
    {"index": 1, "name": "Warmup", "goal": "survive 30s", "difficulty": 2, "target_score": 100},
    {"index": 2, "name": "Rush", "goal": "survive 60s", "difficulty": 5, "target_score": 300}
  ]
}`+"\n```", design.ID, design.Name, design.Genre, design.Mood)

	backend := &fakeBackend{result: raw}
	gen := NewClaudeSpecGenerator(backend, "sonnet")

	got, err := gen.GenerateDesignSpec(context.Background(), []spec.DesignSpec{design}, []string{"make it fast-paced"})
	if err != nil {
		t.Fatalf("GenerateDesignSpec() error = %v", err)
	}
	if got.ID != design.ID || len(got.Levels) != 2 {
		t.Errorf("unexpected design: %+v", got)
	}
	if len(backend.calls) != 1 {
		t.Fatalf("expected 1 backend call, got %d", len(backend.calls))
	}
}

func TestGenerateDesignSpecRejectsInvalid(t *testing.T) {
	// Palette colors missing: parse succeeds but validation must fail.
	backend := &fakeBackend{result: `{"id":"x","name":"X","genre":"puzzle","mood":"calm","palette":{},"levels":[]}`}
	gen := NewClaudeSpecGenerator(backend, "sonnet")

	if _, err := gen.GenerateDesignSpec(context.Background(), nil, nil); err == nil {
		t.Fatal("expected error for invalid generated design")
	}
}

func TestGenerateDesignSpecBackendError(t *testing.T) {
	backend := &fakeBackend{err: errors.New("cli exploded")}
	gen := NewClaudeSpecGenerator(backend, "sonnet")

	if _, err := gen.GenerateDesignSpec(context.Background(), nil, nil); err == nil {
		t.Fatal("expected backend error to propagate")
	}
}

func TestGenerateThemeEnforcesContrast(t *testing.T) {
	// Light gray text on white fails the contrast floor; the generator must
	// correct it to black before writing.
	backend := &fakeBackend{result: `{
  "colors": {"text": "#EEEEEE", "background": "#FFFFFF", "primary": "#1A1A2E"},
  "typography": {"body_size": 17},
  "layout": {"spacing": 16}
}`}
	gen := NewClaudeThemeGenerator(backend, "sonnet")
	dir := t.TempDir()

	if err := gen.GenerateTheme(context.Background(), testDesign(), dir, NewAttemptContext(1)); err != nil {
		t.Fatalf("GenerateTheme() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "theme.json"))
	if err != nil {
		t.Fatalf("reading theme.json: %v", err)
	}
	var theme quality.Theme
	if err := json.Unmarshal(data, &theme); err != nil {
		t.Fatalf("parsing theme.json: %v", err)
	}
	if theme.Colors["text"] != "#000000" {
		t.Errorf("text color = %q, want #000000", theme.Colors["text"])
	}
	ratio, err := quality.ContrastRatioHex(theme.Colors["text"], theme.Colors["background"])
	if err != nil {
		t.Fatalf("ContrastRatioHex() error = %v", err)
	}
	if ratio < MinTextContrast {
		t.Errorf("contrast ratio %.2f below floor %.1f", ratio, float64(MinTextContrast))
	}
}

func TestGenerateThemeRejectsMissingSections(t *testing.T) {
	backend := &fakeBackend{result: `{"colors": {"text": "#000000", "background": "#FFFFFF"}}`}
	gen := NewClaudeThemeGenerator(backend, "sonnet")

	err := gen.GenerateTheme(context.Background(), testDesign(), t.TempDir(), NewAttemptContext(1))
	if err == nil {
		t.Fatal("expected error for theme without typography/layout")
	}
}

func TestThemeFromPalette(t *testing.T) {
	theme := ThemeFromPalette(testDesign().Palette)

	if err := validateTheme(theme); err != nil {
		t.Fatalf("fallback theme invalid: %v", err)
	}
	ratio, err := quality.ContrastRatioHex(theme.Colors["text"], theme.Colors["background"])
	if err != nil {
		t.Fatalf("ContrastRatioHex() error = %v", err)
	}
	if ratio < MinTextContrast {
		t.Errorf("fallback theme contrast %.2f below floor", ratio)
	}
}

type fakeProvider struct {
	data  []byte
	err   error
	calls int
}

func (f *fakeProvider) RenderImage(_ context.Context, _ string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

func TestGenerateAssetsWithPlaceholders(t *testing.T) {
	gen := NewStudioAssetGenerator(nil)
	dir := t.TempDir()

	manifest, err := gen.GenerateAssets(context.Background(), testDesign(), dir, NewAttemptContext(1))
	if err != nil {
		t.Fatalf("GenerateAssets() error = %v", err)
	}
	if len(manifest.Images) != len(requiredAssets) {
		t.Fatalf("manifest has %d images, want %d", len(manifest.Images), len(requiredAssets))
	}
	for _, img := range manifest.Images {
		info, err := os.Stat(filepath.Join(dir, img.Path))
		if err != nil {
			t.Errorf("asset %s: %v", img.Name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("asset %s is empty", img.Name)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "assets", "manifest.json")); err != nil {
		t.Errorf("manifest.json: %v", err)
	}
}

func TestGenerateAssetsDegradesOnProviderFailure(t *testing.T) {
	provider := &fakeProvider{err: errors.New("image service down")}
	gen := NewStudioAssetGenerator(provider)
	dir := t.TempDir()
	attempt := NewAttemptContext(1)

	manifest, err := gen.GenerateAssets(context.Background(), testDesign(), dir, attempt)
	if err != nil {
		t.Fatalf("GenerateAssets() error = %v; provider failure should degrade, not fail", err)
	}
	if len(manifest.Images) != len(requiredAssets) {
		t.Fatalf("manifest has %d images, want %d", len(manifest.Images), len(requiredAssets))
	}
	// Every image fell back to the placeholder.
	for _, img := range manifest.Images {
		data, err := os.ReadFile(filepath.Join(dir, img.Path))
		if err != nil {
			t.Fatalf("reading %s: %v", img.Path, err)
		}
		if len(data) != len(placeholderPNG) {
			t.Errorf("asset %s: expected placeholder bytes", img.Name)
		}
	}
	if len(attempt.Failures()) != len(requiredAssets) {
		t.Errorf("recorded %d failures, want %d", len(attempt.Failures()), len(requiredAssets))
	}
}

func TestVerifyMechanics(t *testing.T) {
	design := testDesign()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "Sources"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := verifyMechanics(dir, design); err == nil {
		t.Fatal("expected error for missing files")
	}

	logic := `import SpriteKit

let levels = [
  {"index": 1, "name": "Warmup", "goal": "survive 30s", "difficulty": 2, "target_score": 100},
  {"index": 2, "name": "Rush", "goal": "survive 60s", "difficulty": 5, "target_score": 300}
]
`
	writeFile := func(rel, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, rel), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	writeFile("Sources/Entities.swift", "import SpriteKit\nclass Player: SKSpriteNode {}\n")
	writeFile("Sources/GameLogic.swift", logic)
	writeFile("Sources/GameScene.swift", "import SpriteKit\nclass GameScene: SKScene {}\n")

	if err := verifyMechanics(dir, design); err != nil {
		t.Fatalf("verifyMechanics() error = %v", err)
	}

	// Level count mismatch against the design is an error.
	design.Levels = design.Levels[:1]
	if err := verifyMechanics(dir, design); err == nil {
		t.Fatal("expected error for level count mismatch")
	}
}

func TestAttemptContextFeedback(t *testing.T) {
	attempt := NewAttemptContext(2)
	if attempt.FeedbackPrompt() != "" {
		t.Error("fresh context should have no feedback")
	}

	attempt.RecordFailure("mechanics", "GameLogic.swift was empty")
	attempt.RecordFailure("quality", "visual score 40 below threshold 85")

	fb := attempt.FeedbackPrompt()
	for _, want := range []string{"[mechanics]", "[quality]", "GameLogic.swift was empty"} {
		if !strings.Contains(fb, want) {
			t.Errorf("feedback missing %q:\n%s", want, fb)
		}
	}
}

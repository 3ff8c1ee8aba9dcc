package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSettingsMissingFileUsesDefaults(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "gameforge.yaml"))
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	def := DefaultSettings()
	if s.Run != def.Run || s.Model != def.Model {
		t.Errorf("got %+v, want defaults %+v", s, def)
	}
}

func TestLoadSettingsOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gameforge.yaml")
	content := `model: opus
run:
  max_retries: 5
  min_quality_score: 80
  cost_budget: 20
  enable_fallback: false
quality:
  thresholds:
    overall: 75
  build_cmd: "swift build"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.Model != "opus" || s.Run.MaxRetries != 5 || s.Run.EnableFallback {
		t.Errorf("overrides not applied: %+v", s)
	}
	if s.Quality.Thresholds.Overall != 75 {
		t.Errorf("threshold override not applied: %+v", s.Quality.Thresholds)
	}
	// Unspecified thresholds keep their defaults.
	if s.Quality.Thresholds.Code == 0 {
		t.Errorf("partial thresholds should merge with defaults: %+v", s.Quality.Thresholds)
	}
	if s.Quality.BuildCmd != "swift build" {
		t.Errorf("build cmd = %q", s.Quality.BuildCmd)
	}
}

func TestLoadSettingsRejectsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gameforge.yaml")
	if err := os.WriteFile(path, []byte("run: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadSettings(path); err == nil {
		t.Fatal("expected error for broken YAML")
	}
}

func TestLoadSettingsValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero retries", "run:\n  max_retries: 0\n  min_quality_score: 70\n  cost_budget: 10\n"},
		{"bad threshold", "run:\n  max_retries: 3\n  min_quality_score: 150\n  cost_budget: 10\n"},
		{"negative budget", "run:\n  max_retries: 3\n  min_quality_score: 70\n  cost_budget: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "gameforge.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadSettings(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

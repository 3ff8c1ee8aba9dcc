package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/forgelabs/gameforge/internal/generation"
	"github.com/forgelabs/gameforge/internal/quality"
	"github.com/forgelabs/gameforge/internal/spec"
)

func testDesign() spec.DesignSpec {
	return spec.DesignSpec{
		ID:    "orbit-drop",
		Name:  "Orbit Drop",
		Genre: "arcade",
		Mood:  "playful",
		Palette: spec.Palette{
			Primary:    "#222222",
			Secondary:  "#444444",
			Accent:     "#FF5722",
			Background: "#FAFAFA",
			Surface:    "#FFFFFF",
		},
		Levels: []spec.LevelDef{
			{Index: 1, Name: "Drop In", Goal: "score 100", Difficulty: 1, TargetScore: 100},
			{Index: 2, Name: "Freefall", Goal: "score 250", Difficulty: 4, TargetScore: 250},
		},
	}
}

// fakeStage fails for the first failures calls, then succeeds.
type fakeStage struct {
	failures int
	calls    int
}

func (f *fakeStage) fail() error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("stage failed")
	}
	return nil
}

type fakeTheme struct{ fakeStage }

func (f *fakeTheme) GenerateTheme(_ context.Context, _ spec.DesignSpec, _ string, _ *generation.AttemptContext) error {
	return f.fail()
}

type fakeMechanics struct{ fakeStage }

func (f *fakeMechanics) GenerateMechanics(_ context.Context, _ spec.DesignSpec, _ string, _ *generation.AttemptContext) error {
	return f.fail()
}

type fakeAssets struct{ fakeStage }

func (f *fakeAssets) GenerateAssets(_ context.Context, _ spec.DesignSpec, _ string, _ *generation.AttemptContext) (*quality.AssetManifest, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	return &quality.AssetManifest{}, nil
}

// fakeValidator hands out scripted overall scores in order, repeating the
// last one once the script runs out.
type fakeValidator struct {
	scores []int
	calls  int
}

func (f *fakeValidator) Validate(_ context.Context, _ string) quality.Score {
	idx := f.calls
	if idx >= len(f.scores) {
		idx = len(f.scores) - 1
	}
	f.calls++
	overall := f.scores[idx]
	return quality.Score{
		Overall:  overall,
		Code:     quality.CodeScore{Score: overall},
		Gameplay: quality.GameplayScore{Score: overall},
		Visual:   quality.VisualScore{Score: overall},
	}
}

func newTestOrchestrator(theme *fakeTheme, validator *fakeValidator) (*Orchestrator, *[]time.Duration) {
	var sleeps []time.Duration
	o := New(theme, &fakeMechanics{}, &fakeAssets{}, validator)
	o.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return o, &sleeps
}

func defaultConfig(dir string) RunConfig {
	return RunConfig{
		MaxRetries:      3,
		MinQualityScore: 70,
		CostBudget:      10,
		ProjectDir:      dir,
	}
}

func TestBackoffDelaySequence(t *testing.T) {
	want := []time.Duration{
		1000 * time.Millisecond,
		2000 * time.Millisecond,
		4000 * time.Millisecond,
		5000 * time.Millisecond,
		5000 * time.Millisecond,
		5000 * time.Millisecond,
	}
	for i, w := range want {
		if got := backoffDelay(i + 1); got != w {
			t.Errorf("backoffDelay(%d) = %v, want %v", i+1, got, w)
		}
	}
}

func TestRunSucceedsFirstAttempt(t *testing.T) {
	o, sleeps := newTestOrchestrator(&fakeTheme{}, &fakeValidator{scores: []int{85}})

	res, err := o.Run(context.Background(), testDesign(), defaultConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !res.Success || res.FallbackUsed || res.Cancelled {
		t.Errorf("unexpected result: %+v", res)
	}
	if len(res.Attempts) != 1 {
		t.Fatalf("attempts = %d, want 1", len(res.Attempts))
	}
	if res.Attempts[0].CostUnits != 2.0 {
		t.Errorf("completed attempt cost = %v, want 2.0", res.Attempts[0].CostUnits)
	}
	if res.TotalCostUnits != 2.0 {
		t.Errorf("total cost = %v, want 2.0", res.TotalCostUnits)
	}
	if len(*sleeps) != 0 {
		t.Errorf("no backoff expected before the first attempt, got %v", *sleeps)
	}
}

func TestRunRetriesAfterCollaboratorFailure(t *testing.T) {
	theme := &fakeTheme{fakeStage{failures: 1}}
	o, sleeps := newTestOrchestrator(theme, &fakeValidator{scores: []int{90}})

	res, err := o.Run(context.Background(), testDesign(), defaultConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success: %+v", res)
	}
	if len(res.Attempts) != 2 {
		t.Fatalf("attempts = %d, want 2", len(res.Attempts))
	}
	first := res.Attempts[0]
	if first.Success || first.CostUnits != 1.0 || first.Score != nil {
		t.Errorf("failed attempt should cost 1.0 with no score: %+v", first)
	}
	if !strings.Contains(first.Error, "theme") {
		t.Errorf("attempt error should name the failed stage: %q", first.Error)
	}
	if res.Attempts[1].CostUnits != 2.0 {
		t.Errorf("second attempt cost = %v, want 2.0", res.Attempts[1].CostUnits)
	}
	if res.TotalCostUnits != 3.0 {
		t.Errorf("total cost = %v, want 3.0", res.TotalCostUnits)
	}
	if want := []time.Duration{1000 * time.Millisecond}; len(*sleeps) != 1 || (*sleeps)[0] != want[0] {
		t.Errorf("sleeps = %v, want %v", *sleeps, want)
	}
}

func TestRunRetriesAfterQualityFailure(t *testing.T) {
	validator := &fakeValidator{scores: []int{65, 72}}
	o, sleeps := newTestOrchestrator(&fakeTheme{}, validator)

	res, err := o.Run(context.Background(), testDesign(), defaultConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !res.Success || res.FallbackUsed {
		t.Fatalf("expected accepted second attempt without fallback: %+v", res)
	}
	if len(res.Attempts) != 2 {
		t.Fatalf("attempts = %d, want 2", len(res.Attempts))
	}
	first := res.Attempts[0]
	if first.Success || first.Score == nil || first.Score.Overall != 65 {
		t.Errorf("first attempt should carry the rejected score 65: %+v", first)
	}
	if !strings.Contains(first.Error, "below threshold") {
		t.Errorf("first attempt error should name the quality gate: %q", first.Error)
	}
	second := res.Attempts[1]
	if !second.Success || second.Score == nil || second.Score.Overall != 72 {
		t.Errorf("second attempt should carry the accepted score 72: %+v", second)
	}
	// Both attempts reached validation, so both charge the full cost.
	if res.TotalCostUnits != 4.0 {
		t.Errorf("total cost = %v, want 4.0", res.TotalCostUnits)
	}
	if want := []time.Duration{1000 * time.Millisecond}; len(*sleeps) != 1 || (*sleeps)[0] != want[0] {
		t.Errorf("sleeps = %v, want %v", *sleeps, want)
	}
}

func TestRunBelowThresholdChargesFullCost(t *testing.T) {
	validator := &fakeValidator{scores: []int{40, 50, 60}}
	o, _ := newTestOrchestrator(&fakeTheme{}, validator)

	cfg := defaultConfig(t.TempDir())
	res, err := o.Run(context.Background(), testDesign(), cfg)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Success {
		t.Fatal("expected failure")
	}
	if len(res.Attempts) != 3 {
		t.Fatalf("attempts = %d, want 3", len(res.Attempts))
	}
	for i, a := range res.Attempts {
		if a.CostUnits != 2.0 {
			t.Errorf("attempt %d cost = %v, want 2.0 for a validated attempt", i+1, a.CostUnits)
		}
		if a.Score == nil {
			t.Errorf("attempt %d missing score", i+1)
		}
	}
	if res.TotalCostUnits != 6.0 {
		t.Errorf("total cost = %v, want 6.0", res.TotalCostUnits)
	}
	if !strings.Contains(res.Error, "best overall score 60") {
		t.Errorf("error should report the best score: %q", res.Error)
	}
}

func TestRunStopsWhenBudgetExhausted(t *testing.T) {
	validator := &fakeValidator{scores: []int{10}}
	o, _ := newTestOrchestrator(&fakeTheme{}, validator)

	cfg := defaultConfig(t.TempDir())
	cfg.MaxRetries = 10
	cfg.CostBudget = 3.0

	res, err := o.Run(context.Background(), testDesign(), cfg)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// Attempt 1 charges 2.0 (< 3.0, so attempt 2 starts); after attempt 2
	// the total is 4.0 and the pre-check stops the loop.
	if len(res.Attempts) != 2 {
		t.Fatalf("attempts = %d, want 2", len(res.Attempts))
	}
	if res.TotalCostUnits != 4.0 {
		t.Errorf("total cost = %v, want 4.0", res.TotalCostUnits)
	}
	if !strings.Contains(res.Error, "budget") {
		t.Errorf("error should mention the budget: %q", res.Error)
	}
}

func TestRunFallbackOnExhaustion(t *testing.T) {
	theme := &fakeTheme{fakeStage{failures: 100}}
	o, _ := newTestOrchestrator(theme, &fakeValidator{scores: []int{0}})

	dir := t.TempDir()
	cfg := defaultConfig(dir)
	cfg.EnableFallback = true

	res, err := o.Run(context.Background(), testDesign(), cfg)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !res.Success || !res.FallbackUsed {
		t.Fatalf("expected fallback success: %+v", res)
	}
	if len(res.Attempts) != 3 {
		t.Errorf("attempts = %d, want 3 before fallback", len(res.Attempts))
	}
	// The fallback itself is not an attempt and not charged.
	if res.TotalCostUnits != 3.0 {
		t.Errorf("total cost = %v, want 3.0", res.TotalCostUnits)
	}

	for _, rel := range []string{
		"theme.json",
		filepath.Join("assets", "manifest.json"),
		filepath.Join("Sources", "Entities.swift"),
		filepath.Join("Sources", "GameLogic.swift"),
		filepath.Join("Sources", "GameScene.swift"),
	} {
		if _, err := os.Stat(filepath.Join(dir, rel)); err != nil {
			t.Errorf("fallback artifact %s: %v", rel, err)
		}
	}

	source, err := os.ReadFile(filepath.Join(dir, "Sources", "GameLogic.swift"))
	if err != nil {
		t.Fatal(err)
	}
	levels, err := spec.ParseLevelLiteral(string(source))
	if err != nil {
		t.Fatalf("fallback level literal: %v", err)
	}
	if len(levels) != 2 {
		t.Errorf("fallback levels = %d, want 2", len(levels))
	}
}

func TestRunExhaustionWithoutFallback(t *testing.T) {
	theme := &fakeTheme{fakeStage{failures: 100}}
	o, _ := newTestOrchestrator(theme, &fakeValidator{scores: []int{0}})

	res, err := o.Run(context.Background(), testDesign(), defaultConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Success || res.FallbackUsed {
		t.Fatalf("expected terminal failure: %+v", res)
	}
	if !strings.Contains(res.Error, "3 attempts") {
		t.Errorf("error should report exhaustion: %q", res.Error)
	}
}

func TestRunFallbackFailureIsFatal(t *testing.T) {
	theme := &fakeTheme{fakeStage{failures: 100}}
	o, _ := newTestOrchestrator(theme, &fakeValidator{scores: []int{0}})

	// Point the project dir at a file so fallback writes fail.
	dir := t.TempDir()
	blocked := filepath.Join(dir, "blocked")
	if err := os.WriteFile(blocked, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := defaultConfig(blocked)
	cfg.EnableFallback = true

	res, err := o.Run(context.Background(), testDesign(), cfg)
	if err == nil {
		t.Fatal("expected error when fallback assembly fails")
	}
	if res == nil || res.Success {
		t.Fatalf("result should record the failed run: %+v", res)
	}
	if !strings.Contains(res.Error, "fallback failed") {
		t.Errorf("result error should mention fallback: %q", res.Error)
	}
}

func TestRunCancelledDuringBackoff(t *testing.T) {
	theme := &fakeTheme{fakeStage{failures: 100}}
	o, _ := newTestOrchestrator(theme, &fakeValidator{scores: []int{0}})
	o.sleep = func(_ context.Context, _ time.Duration) error {
		return context.Canceled
	}

	res, err := o.Run(context.Background(), testDesign(), defaultConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("Run() error = %v; cancellation is a result, not an error", err)
	}
	if !res.Cancelled || res.Success {
		t.Fatalf("expected cancelled result: %+v", res)
	}
	if len(res.Attempts) != 1 {
		t.Errorf("attempts = %d, want 1 before cancellation", len(res.Attempts))
	}
}

func TestRunCancelledDuringAttempt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	theme := &fakeTheme{}
	o, _ := newTestOrchestrator(theme, &fakeValidator{scores: []int{0}})
	o.Mechanics = cancellingMechanics{cancel: cancel}

	res, err := o.Run(ctx, testDesign(), defaultConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !res.Cancelled {
		t.Fatalf("expected cancelled result: %+v", res)
	}
}

func TestRunCancelledBeforeFirstAttempt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	theme := &fakeTheme{}
	o, _ := newTestOrchestrator(theme, &fakeValidator{scores: []int{90}})

	res, err := o.Run(ctx, testDesign(), defaultConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("Run() error = %v; cancellation is a result, not an error", err)
	}
	if !res.Cancelled || res.Success {
		t.Fatalf("expected cancelled result: %+v", res)
	}
	if len(res.Attempts) != 0 {
		t.Errorf("attempts = %d, want 0 with a pre-cancelled context", len(res.Attempts))
	}
	if res.TotalCostUnits != 0 {
		t.Errorf("total cost = %v, want 0; nothing ran", res.TotalCostUnits)
	}
	if theme.calls != 0 {
		t.Errorf("theme generator ran %d times after cancellation", theme.calls)
	}
}

type cancellingMechanics struct {
	cancel context.CancelFunc
}

func (c cancellingMechanics) GenerateMechanics(_ context.Context, _ spec.DesignSpec, _ string, _ *generation.AttemptContext) error {
	c.cancel()
	return context.Canceled
}

func TestRunConfigValidation(t *testing.T) {
	o, _ := newTestOrchestrator(&fakeTheme{}, &fakeValidator{scores: []int{90}})

	tests := []struct {
		name string
		mod  func(*RunConfig)
	}{
		{"zero retries", func(c *RunConfig) { c.MaxRetries = 0 }},
		{"negative threshold", func(c *RunConfig) { c.MinQualityScore = -1 }},
		{"threshold above 100", func(c *RunConfig) { c.MinQualityScore = 101 }},
		{"zero budget", func(c *RunConfig) { c.CostBudget = 0 }},
		{"missing project dir", func(c *RunConfig) { c.ProjectDir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig(t.TempDir())
			tt.mod(&cfg)
			if _, err := o.Run(context.Background(), testDesign(), cfg); err == nil {
				t.Error("expected config error")
			}
		})
	}
}

func TestRunRejectsInvalidDesign(t *testing.T) {
	o, _ := newTestOrchestrator(&fakeTheme{}, &fakeValidator{scores: []int{90}})
	design := testDesign()
	design.Levels = nil

	if _, err := o.Run(context.Background(), design, defaultConfig(t.TempDir())); err == nil {
		t.Error("expected error for invalid design")
	}
}

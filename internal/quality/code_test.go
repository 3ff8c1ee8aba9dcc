package quality

import (
	"context"
	"testing"
)

func TestCodeProbeAllToolingPasses(t *testing.T) {
	p := NewCodeProber(CodeProberConfig{
		BuildCmd: "true",
		TestCmd:  "echo '12 passed, 0 failed'",
		LintCmd:  "true",
	})
	got := p.Probe(context.Background(), t.TempDir())
	if got.Score != 100 {
		t.Errorf("score = %d, want 100 (details: %+v)", got.Score, got.Details)
	}
	if !got.Details.CompileOK {
		t.Error("expected compile_ok=true")
	}
}

func TestCodeProbeBuildFailureSkipsTests(t *testing.T) {
	p := NewCodeProber(CodeProberConfig{
		BuildCmd: "echo 'main.swift:4: error: missing brace'; false",
		TestCmd:  "echo '12 passed, 0 failed'",
		LintCmd:  "true",
	})
	got := p.Probe(context.Background(), t.TempDir())
	if got.Details.CompileOK {
		t.Error("expected compile_ok=false")
	}
	// Lint credit only: compile 0, tests skipped.
	if got.Score != codeLintPoints {
		t.Errorf("score = %d, want %d", got.Score, codeLintPoints)
	}
	if len(got.Details.Diagnostics) == 0 {
		t.Error("expected compiler diagnostics")
	}
}

func TestCodeProbePartialTestPassRate(t *testing.T) {
	p := NewCodeProber(CodeProberConfig{
		BuildCmd: "true",
		TestCmd:  "echo '6 passed, 6 failed'; false",
		LintCmd:  "true",
	})
	got := p.Probe(context.Background(), t.TempDir())
	// 50 + 30*6/12 + 20 = 85.
	if got.Score != 85 {
		t.Errorf("score = %d, want 85", got.Score)
	}
	if got.Details.TestsPassed != 6 || got.Details.TestsFailed != 6 {
		t.Errorf("test counts = %d/%d, want 6/6", got.Details.TestsPassed, got.Details.TestsFailed)
	}
}

func TestCodeProbeLintIssuesPenalized(t *testing.T) {
	p := NewCodeProber(CodeProberConfig{
		BuildCmd: "true",
		LintCmd:  "printf 'a.swift:1: warning: unused\\nb.swift:2: warning: shadowed\\n'; false",
	})
	got := p.Probe(context.Background(), t.TempDir())
	if got.Details.LintIssues != 2 {
		t.Errorf("lint issues = %d, want 2", got.Details.LintIssues)
	}
	// compile 50 + tests 30 (no TestCmd) + lint 20-4 = 96.
	if got.Score != 96 {
		t.Errorf("score = %d, want 96", got.Score)
	}
}

func TestCodeProbeEmptyCommandsGetFullCredit(t *testing.T) {
	p := NewCodeProber(CodeProberConfig{})
	got := p.Probe(context.Background(), t.TempDir())
	if got.Score != 100 {
		t.Errorf("score = %d, want 100", got.Score)
	}
}

func TestParseTestCounts(t *testing.T) {
	tests := []struct {
		name               string
		output             string
		wantPass, wantFail int
	}{
		{"combined line", "Test Suite 'All'\n6 passed, 2 failed\n", 6, 2},
		{"separate lines", "10 passed\n3 failed\n", 10, 3},
		{"no summary", "nothing useful", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, f := parseTestCounts(tt.output)
			if p != tt.wantPass || f != tt.wantFail {
				t.Errorf("parseTestCounts = %d/%d, want %d/%d", p, f, tt.wantPass, tt.wantFail)
			}
		})
	}
}

func TestCountLintIssues(t *testing.T) {
	out := `a.swift:1: warning: unused variable
note: context line
b.swift:9: error: cannot find type
Warning: deprecated API
`
	if got := countLintIssues(out); got != 3 {
		t.Errorf("countLintIssues = %d, want 3", got)
	}
}

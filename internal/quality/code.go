package quality

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Point split for the code dimension.
const (
	codeCompilePoints = 50
	codeTestPoints    = 30
	codeLintPoints    = 20
	lintIssuePenalty  = 2
)

// CodeProberConfig names the external tooling invoked against a generated
// project. Commands run through `sh -c` in the project directory. An empty
// command skips that component with full credit.
type CodeProberConfig struct {
	BuildCmd string `yaml:"build_cmd"`
	TestCmd  string `yaml:"test_cmd"`
	LintCmd  string `yaml:"lint_cmd"`
}

// CodeProber invokes compile, test, and lint tooling on a generated project.
type CodeProber struct {
	cfg CodeProberConfig
}

// NewCodeProber creates a code prober with the given tooling commands.
func NewCodeProber(cfg CodeProberConfig) *CodeProber {
	return &CodeProber{cfg: cfg}
}

// Probe runs the configured tooling against projectDir and scores the result.
// Compile is worth 50 points, tests 30 scaled by pass rate, lint 20 minus 2
// per reported issue. Tests are skipped when the build fails.
func (p *CodeProber) Probe(ctx context.Context, projectDir string) CodeScore {
	details := CodeDetails{}
	score := 0

	compileOK := true
	if p.cfg.BuildCmd != "" {
		out, err := runShell(ctx, projectDir, p.cfg.BuildCmd)
		compileOK = err == nil
		if err != nil {
			details.Diagnostics = append(details.Diagnostics, tailLines(out, 20)...)
		}
	}
	details.CompileOK = compileOK
	if compileOK {
		score += codeCompilePoints
	}

	switch {
	case p.cfg.TestCmd == "":
		score += codeTestPoints
	case !compileOK:
		// nothing to run against
	default:
		out, err := runShell(ctx, projectDir, p.cfg.TestCmd)
		passed, failed := parseTestCounts(out)
		details.TestsPassed = passed
		details.TestsFailed = failed
		if err == nil {
			score += codeTestPoints
		} else if total := passed + failed; total > 0 {
			score += codeTestPoints * passed / total
			details.Diagnostics = append(details.Diagnostics, tailLines(out, 20)...)
		} else {
			details.Diagnostics = append(details.Diagnostics, tailLines(out, 20)...)
		}
	}

	if p.cfg.LintCmd == "" {
		score += codeLintPoints
	} else {
		out, err := runShell(ctx, projectDir, p.cfg.LintCmd)
		issues := countLintIssues(out)
		if err != nil && issues == 0 {
			issues = 1 // lint tool failed outright
		}
		details.LintIssues = issues
		lint := codeLintPoints - issues*lintIssuePenalty
		if lint < 0 {
			lint = 0
		}
		score += lint
		if issues > 0 {
			details.Diagnostics = append(details.Diagnostics, tailLines(out, 10)...)
		}
	}

	return CodeScore{Score: ClampScore(score), Details: details}
}

func runShell(ctx context.Context, dir, command string) (string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// parseTestCounts reads "N passed, M failed" style summaries.
func parseTestCounts(output string) (passed, failed int) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		var p, f int
		if n, _ := fmt.Sscanf(line, "%d passed, %d failed", &p, &f); n == 2 {
			return p, f
		}
		if n, _ := fmt.Sscanf(line, "%d passed", &p); n == 1 {
			passed = p
		}
		if n, _ := fmt.Sscanf(line, "%d failed", &f); n == 1 {
			failed = f
		}
	}
	return passed, failed
}

func countLintIssues(output string) int {
	issues := 0
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Contains(line, ": error") || strings.Contains(line, ": warning") ||
			strings.Contains(line, "Error:") || strings.Contains(line, "Warning:") {
			issues++
		}
	}
	return issues
}

func tailLines(output string, n int) []string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	var out []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

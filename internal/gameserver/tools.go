package gameserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/forgelabs/gameforge/internal/service"
)

type handlers struct {
	svc *service.Service
}

// generateGameInput is the input for the generate_game tool.
type generateGameInput struct {
	SpecPath   string   `json:"spec_path,omitempty" jsonschema:"description=Path to a design spec JSON file. Leave empty to have a new design generated."`
	Hints      []string `json:"hints,omitempty" jsonschema:"description=Design hints for a generated design e.g. space theme or match-3"`
	MaxRetries int      `json:"max_retries,omitempty" jsonschema:"description=Maximum generation attempts. 0 uses the configured default."`
	MinScore   int      `json:"min_score,omitempty" jsonschema:"description=Minimum overall quality score to accept. 0 uses the configured default."`
	CostBudget float64  `json:"cost_budget,omitempty" jsonschema:"description=Cost budget in units for this run. 0 uses the configured default."`
	NoFallback bool     `json:"no_fallback,omitempty" jsonschema:"description=Fail instead of assembling the deterministic fallback game"`
}

type generateGameOutput struct {
	SpecID       string  `json:"spec_id"`
	Success      bool    `json:"success"`
	Attempts     int     `json:"attempts"`
	CostUnits    float64 `json:"cost_units"`
	Score        int     `json:"score"`
	FallbackUsed bool    `json:"fallback_used"`
	Cancelled    bool    `json:"cancelled"`
	Error        string  `json:"error,omitempty"`
}

func (h *handlers) generateGame(ctx context.Context, req *mcp.CallToolRequest, input generateGameInput) (*mcp.CallToolResult, generateGameOutput, error) {
	res, err := h.svc.Generate(ctx, service.GenerateOptions{
		SpecPath:        input.SpecPath,
		Hints:           input.Hints,
		MaxRetries:      input.MaxRetries,
		MinQualityScore: input.MinScore,
		CostBudget:      input.CostBudget,
		NoFallback:      input.NoFallback,
	})
	if err != nil {
		return nil, generateGameOutput{}, err
	}

	out := generateGameOutput{
		SpecID:       res.SpecID,
		Success:      res.Success,
		Attempts:     len(res.Attempts),
		CostUnits:    res.TotalCostUnits,
		FallbackUsed: res.FallbackUsed,
		Cancelled:    res.Cancelled,
		Error:        res.Error,
	}
	if best := res.BestScore(); best >= 0 {
		out.Score = best
	}
	return nil, out, nil
}

// validateProjectInput is the input for the validate_project tool.
type validateProjectInput struct {
	ProjectDir string `json:"project_dir" jsonschema:"description=Path to the generated project directory to score"`
}

type validateProjectOutput struct {
	Overall  int  `json:"overall"`
	Passed   bool `json:"passed"`
	Code     int  `json:"code"`
	Gameplay int  `json:"gameplay"`
	Visual   int  `json:"visual"`
}

func (h *handlers) validateProject(ctx context.Context, req *mcp.CallToolRequest, input validateProjectInput) (*mcp.CallToolResult, validateProjectOutput, error) {
	if input.ProjectDir == "" {
		return nil, validateProjectOutput{}, fmt.Errorf("project_dir is required")
	}

	score := h.svc.Validate(ctx, input.ProjectDir)
	return nil, validateProjectOutput{
		Overall:  score.Overall,
		Passed:   score.Passed,
		Code:     score.Code.Score,
		Gameplay: score.Gameplay.Score,
		Visual:   score.Visual.Score,
	}, nil
}

// summarizeRunsInput is the input for the summarize_runs tool.
type summarizeRunsInput struct{}

type summarizeRunsOutput struct {
	Summary string `json:"summary"`
}

func (h *handlers) summarizeRuns(ctx context.Context, req *mcp.CallToolRequest, input summarizeRunsInput) (*mcp.CallToolResult, summarizeRunsOutput, error) {
	var sb strings.Builder
	if err := h.svc.SummarizeRuns("markdown", &sb); err != nil {
		return nil, summarizeRunsOutput{}, err
	}
	return nil, summarizeRunsOutput{Summary: sb.String()}, nil
}

package orchestrator

import (
	"time"

	"github.com/forgelabs/gameforge/internal/quality"
)

// GenerationAttempt records one pass through the generation pipeline.
type GenerationAttempt struct {
	Number    int            `json:"number"`
	Success   bool           `json:"success"`
	Score     *quality.Score `json:"score,omitempty"`
	Error     string         `json:"error,omitempty"`
	CostUnits float64        `json:"cost_units"`
	Duration  time.Duration  `json:"duration"`
}

// GenerationResult is the outcome of a full run, including every attempt
// made along the way.
type GenerationResult struct {
	SpecID         string              `json:"spec_id"`
	Success        bool                `json:"success"`
	Attempts       []GenerationAttempt `json:"attempts"`
	TotalCostUnits float64             `json:"total_cost_units"`
	TotalDuration  time.Duration       `json:"total_duration"`
	FallbackUsed   bool                `json:"fallback_used"`
	Cancelled      bool                `json:"cancelled"`
	Error          string              `json:"error,omitempty"`
}

// BestScore returns the highest overall score across completed attempts,
// or -1 when no attempt reached validation.
func (r *GenerationResult) BestScore() int {
	best := -1
	for _, a := range r.Attempts {
		if a.Score != nil && a.Score.Overall > best {
			best = a.Score.Overall
		}
	}
	return best
}

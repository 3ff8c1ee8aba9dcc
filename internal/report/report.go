// Package report aggregates stored run outcomes into fleet-level summaries.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/forgelabs/gameforge/internal/orchestrator"
)

// Summary is the fleet-level aggregate over a set of runs.
type Summary struct {
	Runs          int           `json:"runs"`
	SuccessRate   float64       `json:"success_rate"`
	FallbackRate  float64       `json:"fallback_rate"`
	CancelledRuns int           `json:"cancelled_runs"`
	MeanCostUnits float64       `json:"mean_cost_units"`
	MeanAttempts  float64       `json:"mean_attempts"`
	MeanDuration  time.Duration `json:"mean_duration"`
	MeanScore     float64       `json:"mean_score"`
	ScoredRuns    int           `json:"scored_runs"`
}

// Summarize aggregates run results. An empty input yields a zero summary.
func Summarize(results []*orchestrator.GenerationResult) Summary {
	var s Summary
	if len(results) == 0 {
		return s
	}

	var (
		successes int
		fallbacks int
		cost      float64
		attempts  int
		duration  time.Duration
		scoreSum  int
	)
	for _, r := range results {
		s.Runs++
		if r.Success {
			successes++
		}
		if r.FallbackUsed {
			fallbacks++
		}
		if r.Cancelled {
			s.CancelledRuns++
		}
		cost += r.TotalCostUnits
		attempts += len(r.Attempts)
		duration += r.TotalDuration
		if best := r.BestScore(); best >= 0 {
			scoreSum += best
			s.ScoredRuns++
		}
	}

	n := float64(s.Runs)
	s.SuccessRate = float64(successes) / n
	s.FallbackRate = float64(fallbacks) / n
	s.MeanCostUnits = cost / n
	s.MeanAttempts = float64(attempts) / n
	s.MeanDuration = time.Duration(float64(duration) / n)
	if s.ScoredRuns > 0 {
		s.MeanScore = float64(scoreSum) / float64(s.ScoredRuns)
	}
	return s
}

// Write renders the summary in the requested format: "table" (default),
// "markdown", or "json".
func Write(s Summary, format string, w io.Writer) error {
	switch format {
	case "markdown":
		return writeMarkdown(s, w)
	case "json":
		return writeJSON(s, w)
	default:
		return writeTable(s, w)
	}
}

func writeTable(s Summary, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUNS\tSUCCESS\tFALLBACK\tCANCELLED\tMEAN COST\tMEAN ATTEMPTS\tMEAN SCORE\tMEAN DURATION")
	fmt.Fprintln(tw, strings.Repeat("-", 90))
	fmt.Fprintf(tw, "%d\t%.0f%%\t%.0f%%\t%d\t%.1f\t%.1f\t%s\t%s\n",
		s.Runs, s.SuccessRate*100, s.FallbackRate*100, s.CancelledRuns,
		s.MeanCostUnits, s.MeanAttempts, formatScore(s), s.MeanDuration.Round(time.Millisecond))
	return tw.Flush()
}

func writeMarkdown(s Summary, w io.Writer) error {
	fmt.Fprintln(w, "| Runs | Success | Fallback | Cancelled | Mean Cost | Mean Attempts | Mean Score | Mean Duration |")
	fmt.Fprintln(w, "|---|---|---|---|---|---|---|---|")
	_, err := fmt.Fprintf(w, "| %d | %.0f%% | %.0f%% | %d | %.1f | %.1f | %s | %s |\n",
		s.Runs, s.SuccessRate*100, s.FallbackRate*100, s.CancelledRuns,
		s.MeanCostUnits, s.MeanAttempts, formatScore(s), s.MeanDuration.Round(time.Millisecond))
	return err
}

func writeJSON(s Summary, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

func formatScore(s Summary) string {
	if s.ScoredRuns == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", s.MeanScore)
}

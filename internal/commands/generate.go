package commands

import (
	"fmt"

	"github.com/forgelabs/gameforge/internal/service"
	"github.com/forgelabs/gameforge/internal/terminal"
	"github.com/spf13/cobra"
)

var (
	generateSpecPath   string
	generateHints      []string
	generateRetries    int
	generateMinScore   int
	generateBudget     float64
	generateNoFallback bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new game",
	Long:  "Design and generate a new game into the catalog, validating quality and retrying until it passes or the budget runs out.",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadService()
		if err != nil {
			return err
		}

		terminal.Banner(Version)

		res, err := svc.Generate(cmd.Context(), service.GenerateOptions{
			SpecPath:        generateSpecPath,
			Hints:           generateHints,
			MaxRetries:      generateRetries,
			MinQualityScore: generateMinScore,
			CostBudget:      generateBudget,
			NoFallback:      generateNoFallback,
			Progress:        true,
		})
		if err != nil {
			return err
		}

		switch {
		case res.Cancelled:
			terminal.Warning("Generation cancelled.")
		case res.Success && res.FallbackUsed:
			terminal.Warning(fmt.Sprintf("Generation fell back to the template after %d attempts (%.1f cost units).",
				len(res.Attempts), res.TotalCostUnits))
		case res.Success:
			terminal.Success(fmt.Sprintf("Game ready: score %d after %d attempt(s), %.1f cost units.",
				res.BestScore(), len(res.Attempts), res.TotalCostUnits))
		default:
			terminal.Error(res.Error)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateSpecPath, "spec", "", "Path to a design spec JSON file (default: ask Claude for a design)")
	generateCmd.Flags().StringArrayVar(&generateHints, "hint", nil, "Design hint, repeatable (e.g. --hint 'space theme')")
	generateCmd.Flags().IntVar(&generateRetries, "retries", 0, "Maximum generation attempts (default from gameforge.yaml)")
	generateCmd.Flags().IntVar(&generateMinScore, "min-score", 0, "Minimum overall quality score to accept")
	generateCmd.Flags().Float64Var(&generateBudget, "budget", 0, "Cost budget in units for this run")
	generateCmd.Flags().BoolVar(&generateNoFallback, "no-fallback", false, "Fail instead of assembling the deterministic fallback game")
}

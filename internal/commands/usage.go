package commands

import (
	"fmt"
	"strings"

	"github.com/forgelabs/gameforge/internal/storage"
	"github.com/forgelabs/gameforge/internal/terminal"
	"github.com/spf13/cobra"
)

var usageDays int

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show usage and cost history",
	Long:  "Display daily usage statistics including cost units, dollar cost, and run counts.",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadService()
		if err != nil {
			return err
		}

		current := svc.Usage()
		terminal.Header("Usage")
		terminal.Detail("Session cost", fmt.Sprintf("%.1f units ($%.4f)", current.CostUnits, current.TotalCostUSD))
		terminal.Detail("Session tokens", fmt.Sprintf("%s in / %s out",
			storage.FormatTokenCount(current.InputTokens),
			storage.FormatTokenCount(current.OutputTokens)))
		terminal.Detail("Session runs", fmt.Sprintf("%d", current.Runs))

		history := svc.UsageHistory(usageDays)
		if len(history) == 0 {
			fmt.Println()
			terminal.Info("No daily usage history yet.")
			return nil
		}

		fmt.Println()
		terminal.Header("Daily History")

		fmt.Printf("  %-12s %10s %12s %6s\n", "Date", "Units", "Cost", "Runs")
		fmt.Printf("  %s\n", strings.Repeat("-", 44))

		var totalUnits, totalCost float64
		var totalRuns int
		for _, day := range history {
			fmt.Printf("  %-12s %10.1f %12s %6d\n",
				day.Date,
				day.CostUnits,
				fmt.Sprintf("$%.4f", day.TotalCostUSD),
				day.Runs,
			)
			totalUnits += day.CostUnits
			totalCost += day.TotalCostUSD
			totalRuns += day.Runs
		}

		fmt.Printf("  %s\n", strings.Repeat("-", 44))
		fmt.Printf("  %-12s %10.1f %12s %6d\n",
			"Total",
			totalUnits,
			fmt.Sprintf("$%.4f", totalCost),
			totalRuns,
		)

		return nil
	},
}

func init() {
	usageCmd.Flags().IntVar(&usageDays, "days", 7, "Number of days of history to show")
}

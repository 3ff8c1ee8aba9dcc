package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var reportFormat string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize generation runs",
	Long:  "Aggregate all persisted generation runs into fleet-level statistics: success rate, fallback rate, mean cost, attempts, and score.",
	RunE: func(cmd *cobra.Command, args []string) error {
		switch reportFormat {
		case "table", "markdown", "json":
		default:
			return fmt.Errorf("unknown format %q (want table, markdown, or json)", reportFormat)
		}

		svc, err := loadService()
		if err != nil {
			return err
		}
		return svc.SummarizeRuns(reportFormat, os.Stdout)
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportFormat, "format", "table", "Output format: table, markdown, or json")
}

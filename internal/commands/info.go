package commands

import (
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show catalog and environment status",
	Long:  "Display the game catalog and the status of the Claude Code CLI.",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadService()
		if err != nil {
			return err
		}
		return svc.Info()
	},
}

package commands

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "gameforge",
	Short:   "Autonomous mobile game builder",
	Long:    "Gameforge designs, generates, and quality-gates small mobile games using Claude Code as the AI backend.",
	Version: Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command. Ctrl-C cancels the command context so
// in-flight generation runs wind down as cancelled rather than killed.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "Claude model to use for generation (sonnet, opus, haiku)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(usageCmd)
}

// modelFlag holds the --model flag value.
var modelFlag string

// ModelFlag returns the current --model flag value.
func ModelFlag() string {
	return modelFlag
}

package commands

import (
	"fmt"

	"github.com/forgelabs/gameforge/internal/terminal"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [project-dir]",
	Short: "Score an existing game project",
	Long:  "Run the quality probers against a generated project and print the score. Defaults to the most recent game in the catalog.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var projectDir string
		if len(args) > 0 {
			projectDir = args[0]
		} else {
			cfg, err := loadConfigWithGame()
			if err != nil {
				terminal.Info("No games yet. Run `gameforge generate` to create one.")
				return nil
			}
			projectDir = cfg.CatalogDir
		}

		svc, err := loadService()
		if err != nil {
			return err
		}

		score := svc.Validate(cmd.Context(), projectDir)

		terminal.Header("Quality")
		terminal.Detail("Overall", fmt.Sprintf("%d", score.Overall))
		terminal.Detail("Code", fmt.Sprintf("%d", score.Code.Score))
		terminal.Detail("Gameplay", fmt.Sprintf("%d", score.Gameplay.Score))
		terminal.Detail("Visual", fmt.Sprintf("%d", score.Visual.Score))
		if score.Passed {
			terminal.Success("Passed")
		} else {
			terminal.Error("Did not pass")
		}
		return nil
	},
}

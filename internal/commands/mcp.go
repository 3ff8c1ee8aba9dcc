package commands

import (
	"github.com/forgelabs/gameforge/internal/gameserver"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:    "mcp",
	Short:  "Run MCP servers (used internally by agent frontends)",
	Hidden: true,
}

var mcpGameCmd = &cobra.Command{
	Use:   "game",
	Short: "Run the game generation MCP server",
	Long:  "Starts the game generation MCP server over stdio, exposing generate, validate, and report as typed tool calls.",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadService()
		if err != nil {
			return err
		}
		return gameserver.Run(cmd.Context(), svc, Version)
	},
}

func init() {
	mcpCmd.AddCommand(mcpGameCmd)
}

// Package gameserver exposes game generation as an MCP server over stdio,
// so agent frontends can drive gameforge through typed tool calls.
package gameserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/forgelabs/gameforge/internal/service"
)

// Run starts the game generation MCP server over stdio.
// It blocks until the client disconnects or the context is cancelled.
func Run(ctx context.Context, svc *service.Service, version string) error {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "gameforge",
			Version: version,
		},
		nil,
	)

	h := &handlers{svc: svc}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_game",
		Description: "Generate a new game into the catalog. Designs the game (or loads a spec file), generates theme, mechanics, and assets, validates quality, and retries within the cost budget. Returns the outcome: success, attempts, cost, score, and whether the deterministic fallback was used.",
	}, h.generateGame)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_project",
		Description: "Run the quality probers against an existing generated project directory. Returns the overall score plus the code, gameplay, and visual dimension scores. Read-only.",
	}, h.validateProject)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "summarize_runs",
		Description: "Aggregate all persisted generation runs into fleet statistics: run count, success rate, fallback rate, mean cost, mean attempts, and mean score. Returns markdown.",
	}, h.summarizeRuns)

	return server.Run(ctx, &mcp.StdioTransport{})
}

// Package claude wraps the Claude Code CLI used as the generation backend.
// Each call is a single prompt/response exchange; agentic file-writing phases
// raise MaxTurns and allow the editing tools.
package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Client wraps the Claude Code CLI for LLM calls.
type Client struct {
	claudePath string
	model      string // default model override (empty = let claude decide)
}

// NewClient creates a new Claude Code client.
func NewClient(claudePath string) *Client {
	return &Client{claudePath: claudePath}
}

// WithModel returns a copy of the client pinned to a specific model.
func (c *Client) WithModel(model string) *Client {
	return &Client{claudePath: c.claudePath, model: model}
}

// GenerateOpts holds options for a Generate call.
type GenerateOpts struct {
	SystemPrompt       string
	AppendSystemPrompt string
	MaxTurns           int      // max agentic turns (default 1)
	AllowedTools       []string // tools to allow for file-writing phases
	Model              string   // model override for this call
	WorkDir            string   // working directory for the claude process
	SessionID          string   // resume a previous session
}

// Usage holds token usage data from a Claude response.
type Usage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
}

// Response is the parsed response from Claude Code.
type Response struct {
	Result       string          `json:"result"`
	RawJSON      json.RawMessage `json:"-"`
	TotalCostUSD float64         `json:"total_cost_usd"`
	SessionID    string          `json:"session_id"`
	NumTurns     int             `json:"num_turns"`
	Usage        Usage           `json:"usage"`
}

// Generate sends a prompt to Claude Code and returns the parsed response.
func (c *Client) Generate(ctx context.Context, userMessage string, opts GenerateOpts) (*Response, error) {
	args := []string{"-p", "--output-format", "json"}

	maxTurns := opts.MaxTurns
	if maxTurns == 0 {
		maxTurns = 1
	}
	args = append(args, "--max-turns", fmt.Sprintf("%d", maxTurns))

	if opts.SystemPrompt != "" {
		args = append(args, "--system-prompt", opts.SystemPrompt)
	}
	if opts.AppendSystemPrompt != "" {
		args = append(args, "--append-system-prompt", opts.AppendSystemPrompt)
	}
	if opts.SessionID != "" {
		args = append(args, "--resume", opts.SessionID)
	}

	model := opts.Model
	if model == "" {
		model = c.model
	}
	if model != "" {
		args = append(args, "--model", model)
	}

	for _, tool := range opts.AllowedTools {
		args = append(args, "--allowedTools", tool)
	}

	cmd := exec.CommandContext(ctx, c.claudePath, args...)
	if opts.WorkDir != "" {
		cmd.Dir = opts.WorkDir
	}

	// Strip CLAUDECODE env var to allow nested sessions
	cmd.Env = filterEnv(os.Environ(), "CLAUDECODE")

	// Pass the user message via stdin to avoid argument length limits
	cmd.Stdin = strings.NewReader(userMessage)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("claude command failed: %w\nstderr: %s", err, stderr.String())
	}

	return parseResponse(stdout.Bytes())
}

// filterEnv returns env with the named variable removed.
func filterEnv(env []string, name string) []string {
	prefix := name + "="
	filtered := make([]string, 0, len(env))
	for _, e := range env {
		if !strings.HasPrefix(e, prefix) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// parseResponse extracts the result from Claude Code's JSON output.
// The CLI emits either a single JSON object or a stream of events (JSON
// array or JSONL); the last result event wins.
func parseResponse(data []byte) (*Response, error) {
	trimmed := bytes.TrimSpace(data)

	var single struct {
		Result       string  `json:"result"`
		TotalCostUSD float64 `json:"cost_usd"`
		SessionID    string  `json:"session_id"`
		NumTurns     int     `json:"num_turns"`
		IsError      bool    `json:"is_error"`
		Usage        Usage   `json:"usage"`
	}
	if err := json.Unmarshal(trimmed, &single); err == nil && single.Result != "" {
		if single.IsError {
			return nil, fmt.Errorf("claude returned error: %s", single.Result)
		}
		return &Response{
			Result:       single.Result,
			RawJSON:      data,
			TotalCostUSD: single.TotalCostUSD,
			SessionID:    single.SessionID,
			NumTurns:     single.NumTurns,
			Usage:        single.Usage,
		}, nil
	}

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var events []json.RawMessage
		if err := json.Unmarshal(trimmed, &events); err == nil {
			return extractResultFromEvents(events, data)
		}
	}

	lines := bytes.Split(trimmed, []byte("\n"))
	if len(lines) > 1 {
		var events []json.RawMessage
		for _, line := range lines {
			line = bytes.TrimSpace(line)
			if len(line) == 0 {
				continue
			}
			events = append(events, json.RawMessage(line))
		}
		if len(events) > 0 {
			return extractResultFromEvents(events, data)
		}
	}

	// Fallback: treat as plain text
	return &Response{
		Result:  strings.TrimSpace(string(data)),
		RawJSON: data,
	}, nil
}

// extractResultFromEvents finds the result event in a stream of CLI events.
func extractResultFromEvents(events []json.RawMessage, rawData []byte) (*Response, error) {
	type eventBase struct {
		Type      string  `json:"type"`
		Subtype   string  `json:"subtype"`
		SessionID string  `json:"session_id"`
		Result    string  `json:"result"`
		CostUSD   float64 `json:"cost_usd"`
		NumTurns  int     `json:"num_turns"`
		IsError   bool    `json:"is_error"`
		Usage     Usage   `json:"usage"`
	}

	var sessionID string
	var lastResult *Response

	for _, raw := range events {
		var ev eventBase
		if err := json.Unmarshal(raw, &ev); err != nil {
			continue
		}

		if ev.Type == "system" && ev.Subtype == "init" && ev.SessionID != "" {
			sessionID = ev.SessionID
		}

		if ev.Type == "result" || ev.Result != "" {
			if ev.IsError {
				return nil, fmt.Errorf("claude returned error: %s", ev.Result)
			}
			lastResult = &Response{
				Result:       ev.Result,
				RawJSON:      rawData,
				TotalCostUSD: ev.CostUSD,
				SessionID:    ev.SessionID,
				NumTurns:     ev.NumTurns,
				Usage:        ev.Usage,
			}
		}
	}

	if lastResult != nil {
		if lastResult.SessionID == "" {
			lastResult.SessionID = sessionID
		}
		return lastResult, nil
	}

	return &Response{RawJSON: rawData, SessionID: sessionID}, nil
}

package claude

import (
	"strings"
	"testing"
)

func TestParseResponseSingleObject(t *testing.T) {
	data := []byte(`{"result":"{\"ok\":true}","cost_usd":0.0132,"session_id":"s-1","num_turns":1,"usage":{"input_tokens":120,"output_tokens":48}}`)
	resp, err := parseResponse(data)
	if err != nil {
		t.Fatalf("parseResponse() error = %v", err)
	}
	if resp.Result != `{"ok":true}` {
		t.Errorf("Result = %q", resp.Result)
	}
	if resp.TotalCostUSD != 0.0132 || resp.SessionID != "s-1" {
		t.Errorf("cost/session = %v/%q", resp.TotalCostUSD, resp.SessionID)
	}
	if resp.Usage.InputTokens != 120 || resp.Usage.OutputTokens != 48 {
		t.Errorf("usage = %+v", resp.Usage)
	}
}

func TestParseResponseErrorResult(t *testing.T) {
	data := []byte(`{"result":"rate limited","is_error":true}`)
	if _, err := parseResponse(data); err == nil {
		t.Error("expected error for is_error result")
	}
}

func TestParseResponseEventArray(t *testing.T) {
	data := []byte(`[
  {"type":"system","subtype":"init","session_id":"s-9"},
  {"type":"assistant"},
  {"type":"result","result":"done","cost_usd":0.5,"num_turns":3}
]`)
	resp, err := parseResponse(data)
	if err != nil {
		t.Fatalf("parseResponse() error = %v", err)
	}
	if resp.Result != "done" || resp.SessionID != "s-9" {
		t.Errorf("result/session = %q/%q", resp.Result, resp.SessionID)
	}
}

func TestParseResponseJSONL(t *testing.T) {
	data := []byte("{\"type\":\"system\",\"subtype\":\"init\",\"session_id\":\"s-2\"}\n{\"type\":\"result\",\"result\":\"ok\"}\n")
	resp, err := parseResponse(data)
	if err != nil {
		t.Fatalf("parseResponse() error = %v", err)
	}
	if resp.Result != "ok" || resp.SessionID != "s-2" {
		t.Errorf("result/session = %q/%q", resp.Result, resp.SessionID)
	}
}

func TestParseResponsePlainTextFallback(t *testing.T) {
	resp, err := parseResponse([]byte("  not json at all  "))
	if err != nil {
		t.Fatalf("parseResponse() error = %v", err)
	}
	if resp.Result != "not json at all" {
		t.Errorf("Result = %q", resp.Result)
	}
}

func TestFilterEnv(t *testing.T) {
	env := []string{"HOME=/root", "CLAUDECODE=1", "PATH=/bin"}
	got := filterEnv(env, "CLAUDECODE")
	if len(got) != 2 {
		t.Fatalf("filterEnv kept %d vars, want 2", len(got))
	}
	for _, e := range got {
		if strings.HasPrefix(e, "CLAUDECODE=") {
			t.Errorf("CLAUDECODE not removed: %v", got)
		}
	}
}

func TestMapModelName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"claude-haiku-4-5", "haiku"},
		{"claude-sonnet-4-5", "sonnet"},
		{"claude-opus-4", "opus"},
		{"unknown-model", "sonnet"},
	}
	for _, tt := range tests {
		if got := MapModelName(tt.in); got != tt.want {
			t.Errorf("MapModelName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

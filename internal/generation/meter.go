package generation

import (
	"context"
	"sync"

	"github.com/forgelabs/gameforge/internal/claude"
)

// UsageMeter accumulates backend dollar cost and token usage across calls.
// One meter spans a whole generation run, including retries.
type UsageMeter struct {
	mu           sync.Mutex
	costUSD      float64
	inputTokens  int
	outputTokens int
}

func (m *UsageMeter) record(resp *claude.Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.costUSD += resp.TotalCostUSD
	m.inputTokens += resp.Usage.InputTokens
	m.outputTokens += resp.Usage.OutputTokens
}

// Totals returns the accumulated cost and token counts.
func (m *UsageMeter) Totals() (costUSD float64, inputTokens, outputTokens int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.costUSD, m.inputTokens, m.outputTokens
}

// MeteredBackend wraps a Backend and records every successful response's
// cost and token usage on the meter. Failed calls record nothing.
type MeteredBackend struct {
	Backend Backend
	Meter   *UsageMeter
}

func (b MeteredBackend) Generate(ctx context.Context, userMessage string, opts claude.GenerateOpts) (*claude.Response, error) {
	resp, err := b.Backend.Generate(ctx, userMessage, opts)
	if err != nil {
		return nil, err
	}
	b.Meter.record(resp)
	return resp, nil
}

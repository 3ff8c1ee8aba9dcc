package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// SessionUsage tracks cumulative spend for the current session. Cost units
// are the budget currency charged per attempt; USD is the underlying model
// spend reported by the CLI.
type SessionUsage struct {
	StartedAt    time.Time `json:"started_at"`
	CostUnits    float64   `json:"cost_units"`
	TotalCostUSD float64   `json:"total_cost_usd"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	Runs         int       `json:"runs"`
}

// DailyUsage tracks aggregate spend for a single calendar day.
type DailyUsage struct {
	Date         string  `json:"date"` // YYYY-MM-DD
	CostUnits    float64 `json:"cost_units"`
	TotalCostUSD float64 `json:"total_cost_usd"`
	Runs         int     `json:"runs"`
}

// UsageStore accumulates session spend and persists it to disk.
type UsageStore struct {
	mu      sync.Mutex
	dir     string // .gameforge/ directory
	current *SessionUsage
}

const maxHistoryDays = 30

// NewUsageStore creates a usage store at the given directory.
func NewUsageStore(dir string) *UsageStore {
	s := &UsageStore{dir: dir}
	if data, err := os.ReadFile(s.filePath()); err == nil {
		var usage SessionUsage
		if json.Unmarshal(data, &usage) == nil {
			s.current = &usage
		}
	}
	if s.current == nil {
		s.current = &SessionUsage{StartedAt: time.Now()}
	}
	return s
}

func (s *UsageStore) filePath() string {
	return filepath.Join(s.dir, "usage.json")
}

func (s *UsageStore) historyPath() string {
	return filepath.Join(s.dir, "usage_history.json")
}

// RecordRun accumulates one run's spend.
func (s *UsageStore) RecordRun(costUnits, costUSD float64, inputTokens, outputTokens int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current.CostUnits += costUnits
	s.current.TotalCostUSD += costUSD
	s.current.InputTokens += inputTokens
	s.current.OutputTokens += outputTokens
	s.current.Runs++

	s.persistUnsafe()
	s.updateDailyUnsafe(costUnits, costUSD)
}

// Current returns the current session usage stats.
func (s *UsageStore) Current() *SessionUsage {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *s.current
	return &cp
}

// Reset clears usage counters for a new session.
func (s *UsageStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = &SessionUsage{StartedAt: time.Now()}
	s.persistUnsafe()
}

// History returns the last N days of usage history, most recent first.
func (s *UsageStore) History(days int) []DailyUsage {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.loadHistoryUnsafe()
	if len(history) == 0 {
		return nil
	}

	if days <= 0 || days > len(history) {
		days = len(history)
	}

	// History is stored chronologically; return most recent N entries in reverse.
	start := len(history) - days
	result := make([]DailyUsage, 0, days)
	for i := len(history) - 1; i >= start; i-- {
		result = append(result, history[i])
	}
	return result
}

func (s *UsageStore) persistUnsafe() {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return
	}
	data, err := json.MarshalIndent(s.current, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(s.filePath(), data, 0o644)
}

func (s *UsageStore) updateDailyUnsafe(costUnits, costUSD float64) {
	today := time.Now().Format("2006-01-02")
	history := s.loadHistoryUnsafe()

	found := false
	for i := range history {
		if history[i].Date == today {
			history[i].CostUnits += costUnits
			history[i].TotalCostUSD += costUSD
			history[i].Runs++
			found = true
			break
		}
	}
	if !found {
		history = append(history, DailyUsage{
			Date:         today,
			CostUnits:    costUnits,
			TotalCostUSD: costUSD,
			Runs:         1,
		})
	}

	if len(history) > maxHistoryDays {
		history = history[len(history)-maxHistoryDays:]
	}

	s.saveHistoryUnsafe(history)
}

func (s *UsageStore) loadHistoryUnsafe() []DailyUsage {
	data, err := os.ReadFile(s.historyPath())
	if err != nil {
		return nil
	}
	var history []DailyUsage
	if json.Unmarshal(data, &history) != nil {
		return nil
	}
	return history
}

func (s *UsageStore) saveHistoryUnsafe(history []DailyUsage) {
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(s.historyPath(), data, 0o644)
}

// FormatTokenCount formats a token count for display (e.g., 48543 → "48.5K").
func FormatTokenCount(tokens int) string {
	if tokens >= 1_000_000 {
		return fmt.Sprintf("%.1fM", float64(tokens)/1_000_000)
	}
	if tokens >= 1_000 {
		return fmt.Sprintf("%.1fK", float64(tokens)/1_000)
	}
	return fmt.Sprintf("%d", tokens)
}

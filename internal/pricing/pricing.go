// Package pricing holds the cost-unit table charged against a run's budget.
// Attempt outcomes are priced in abstract units so budgets stay stable even
// as underlying model prices move.
package pricing

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Table maps attempt outcomes to cost units.
type Table struct {
	FailedAttempt     float64 `yaml:"failed_attempt"`
	SuccessfulAttempt float64 `yaml:"successful_attempt"`
}

// Default returns the standard cost table: a failed attempt burns the
// collaborator calls only, a completed attempt additionally pays for the
// full quality validation pass.
func Default() Table {
	return Table{
		FailedAttempt:     1.0,
		SuccessfulAttempt: 2.0,
	}
}

// Load reads a cost table from a YAML file. Zero or negative entries fall
// back to the defaults.
func Load(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("reading pricing file: %w", err)
	}
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Table{}, fmt.Errorf("parsing pricing file: %w", err)
	}
	def := Default()
	if t.FailedAttempt <= 0 {
		t.FailedAttempt = def.FailedAttempt
	}
	if t.SuccessfulAttempt <= 0 {
		t.SuccessfulAttempt = def.SuccessfulAttempt
	}
	return t, nil
}

// AttemptCost returns the units charged for one attempt.
func (t Table) AttemptCost(completed bool) float64 {
	if completed {
		return t.SuccessfulAttempt
	}
	return t.FailedAttempt
}

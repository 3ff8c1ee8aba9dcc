// Package spec defines the game design specification consumed by the
// generation pipeline. A DesignSpec is produced once (by a caller or by the
// design-spec collaborator) and read-only from the moment generation begins.
package spec

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// DesignSpec describes a single mobile game to generate.
type DesignSpec struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Genre   string     `json:"genre"`
	Mood    string     `json:"mood"`
	Palette Palette    `json:"palette"`
	Levels  []LevelDef `json:"levels"`
}

// Palette holds the 5-color hex palette for the game's visual theme.
type Palette struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Background string `json:"background"`
	Surface    string `json:"surface"`
}

// LevelDef describes one level in the fixed, ordered level list.
type LevelDef struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	Goal        string `json:"goal"`
	Difficulty  int    `json:"difficulty"`
	TargetScore int    `json:"target_score"`
}

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Validate checks the spec for the fields the pipeline depends on.
func (d *DesignSpec) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("design spec is missing an id")
	}
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("design spec %s has no name", d.ID)
	}
	for _, c := range []struct {
		field string
		value string
	}{
		{"primary", d.Palette.Primary},
		{"secondary", d.Palette.Secondary},
		{"accent", d.Palette.Accent},
		{"background", d.Palette.Background},
		{"surface", d.Palette.Surface},
	} {
		if !hexColorRe.MatchString(c.value) {
			return fmt.Errorf("design spec %s: palette.%s %q is not a #RRGGBB color", d.ID, c.field, c.value)
		}
	}
	if len(d.Levels) == 0 {
		return fmt.Errorf("design spec %s defines no levels", d.ID)
	}
	for i, lvl := range d.Levels {
		if lvl.Index != i+1 {
			return fmt.Errorf("design spec %s: level %d has index %d, want %d", d.ID, i, lvl.Index, i+1)
		}
		if lvl.Difficulty < 1 || lvl.Difficulty > 10 {
			return fmt.Errorf("design spec %s: level %d difficulty %d out of range [1,10]", d.ID, lvl.Index, lvl.Difficulty)
		}
	}
	return nil
}

// LoadFile reads and validates a design spec from a JSON file.
func LoadFile(path string) (*DesignSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading design spec: %w", err)
	}
	var ds DesignSpec
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ds); err != nil {
		return nil, fmt.Errorf("parsing design spec %s: %w", path, err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/forgelabs/gameforge/internal/claude"
	"github.com/forgelabs/gameforge/internal/spec"
)

const specSystemPrompt = `You are a mobile game designer. You output exactly one JSON object and nothing else.`

// ClaudeSpecGenerator asks Claude for a complete game design spec.
type ClaudeSpecGenerator struct {
	backend Backend
	model   string
}

// NewClaudeSpecGenerator returns a spec generator backed by the given client.
func NewClaudeSpecGenerator(backend Backend, model string) *ClaudeSpecGenerator {
	return &ClaudeSpecGenerator{backend: backend, model: model}
}

// GenerateDesignSpec proposes a new game design. Prior designs are included
// in the prompt so the model avoids duplicating them; hints steer the genre
// or mood.
func (g *ClaudeSpecGenerator) GenerateDesignSpec(ctx context.Context, prior []spec.DesignSpec, hints []string) (*spec.DesignSpec, error) {
	prompt := buildSpecPrompt(prior, hints)

	resp, err := g.backend.Generate(ctx, prompt, claude.GenerateOpts{
		SystemPrompt: specSystemPrompt,
		Model:        g.model,
	})
	if err != nil {
		return nil, fmt.Errorf("spec generation failed: %w", err)
	}

	design, err := parseBackendJSON[spec.DesignSpec](resp.Result, "design spec")
	if err != nil {
		return nil, err
	}
	if err := design.Validate(); err != nil {
		return nil, fmt.Errorf("generated design spec is invalid: %w", err)
	}

	return design, nil
}

func buildSpecPrompt(prior []spec.DesignSpec, hints []string) string {
	var b strings.Builder
	b.WriteString("Design a small 2D mobile game. Respond with a single JSON object with this exact shape:\n\n")
	b.WriteString("```json\n")
	b.WriteString(`{
  "id": "kebab-case-unique-id",
  "name": "Game Name",
  "genre": "puzzle|arcade|runner|match|tower-defense",
  "mood": "one or two words",
  "palette": {
    "primary": "#RRGGBB",
    "secondary": "#RRGGBB",
    "accent": "#RRGGBB",
    "background": "#RRGGBB",
    "surface": "#RRGGBB"
  },
  "levels": [
    {"index": 1, "name": "Level name", "goal": "what the player must do", "difficulty": 1, "target_score": 100}
  ]
}`)
	b.WriteString("\n```\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- 3 to 6 levels, indices sequential starting at 1\n")
	b.WriteString("- difficulty between 1 and 10, non-decreasing across levels\n")
	b.WriteString("- all five palette colors as 6-digit hex, with readable text/background contrast\n")

	if len(hints) > 0 {
		b.WriteString("\nDesign hints from the operator:\n")
		for _, h := range hints {
			b.WriteString("- ")
			b.WriteString(h)
			b.WriteString("\n")
		}
	}

	if len(prior) > 0 {
		b.WriteString("\nThese games already exist; the new design must differ from all of them:\n")
		for _, p := range prior {
			summary, _ := json.Marshal(map[string]string{"id": p.ID, "name": p.Name, "genre": p.Genre, "mood": p.Mood})
			b.Write(summary)
			b.WriteString("\n")
		}
	}

	return b.String()
}

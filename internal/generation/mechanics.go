package generation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/forgelabs/gameforge/internal/claude"
	"github.com/forgelabs/gameforge/internal/spec"
)

const mechanicsSystemPrompt = `You are a senior SpriteKit game developer. You write complete, compiling Swift files. You never leave TODO stubs.`

// mechanicsFiles are the source files the mechanics step must produce,
// relative to the project root.
var mechanicsFiles = []string{
	"Sources/Entities.swift",
	"Sources/GameLogic.swift",
	"Sources/GameScene.swift",
}

// levelLiteralFile is the file that must carry the machine-readable level
// array consumed by later tooling.
const levelLiteralFile = "Sources/GameLogic.swift"

// ClaudeMechanicsGenerator drives an agentic Claude session that writes the
// gameplay sources into the project directory, then verifies the result.
type ClaudeMechanicsGenerator struct {
	backend  Backend
	model    string
	maxTurns int
}

// NewClaudeMechanicsGenerator returns a mechanics generator backed by the
// given client.
func NewClaudeMechanicsGenerator(backend Backend, model string) *ClaudeMechanicsGenerator {
	return &ClaudeMechanicsGenerator{backend: backend, model: model, maxTurns: 30}
}

// GenerateMechanics implements MechanicsGenerator. The session runs with
// file tools enabled inside projectDir; afterwards every expected file must
// exist, be non-empty, and GameLogic.swift must contain a parseable level
// literal matching the design's levels.
func (g *ClaudeMechanicsGenerator) GenerateMechanics(ctx context.Context, design spec.DesignSpec, projectDir string, attempt *AttemptContext) error {
	if err := os.MkdirAll(filepath.Join(projectDir, "Sources"), 0o755); err != nil {
		return fmt.Errorf("creating sources dir: %w", err)
	}

	prompt := buildMechanicsPrompt(design, attempt)

	_, err := g.backend.Generate(ctx, prompt, claude.GenerateOpts{
		SystemPrompt: mechanicsSystemPrompt,
		Model:        g.model,
		MaxTurns:     g.maxTurns,
		WorkDir:      projectDir,
		AllowedTools: []string{"Write", "Edit", "Read"},
	})
	if err != nil {
		return fmt.Errorf("mechanics generation failed: %w", err)
	}

	return verifyMechanics(projectDir, design)
}

// verifyMechanics checks the produced sources. Generation that "succeeded"
// but left files missing or a broken level literal is still a failure.
func verifyMechanics(projectDir string, design spec.DesignSpec) error {
	for _, rel := range mechanicsFiles {
		path := filepath.Join(projectDir, rel)
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("mechanics incomplete: %s does not exist", rel)
			}
			return fmt.Errorf("mechanics incomplete: cannot stat %s: %w", rel, err)
		}
		if info.IsDir() {
			return fmt.Errorf("mechanics incomplete: %s is a directory", rel)
		}
		if info.Size() == 0 {
			return fmt.Errorf("mechanics incomplete: %s is empty", rel)
		}
	}

	source, err := os.ReadFile(filepath.Join(projectDir, levelLiteralFile))
	if err != nil {
		return fmt.Errorf("reading %s: %w", levelLiteralFile, err)
	}
	levels, err := spec.ParseLevelLiteral(string(source))
	if err != nil {
		return fmt.Errorf("level literal in %s: %w", levelLiteralFile, err)
	}
	if len(levels) != len(design.Levels) {
		return fmt.Errorf("level literal has %d levels, design has %d", len(levels), len(design.Levels))
	}
	return nil
}

func buildMechanicsPrompt(design spec.DesignSpec, attempt *AttemptContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Implement the gameplay for %q, a %s game with a %s mood.\n\n", design.Name, design.Genre, design.Mood)
	b.WriteString("Write exactly these files in the working directory:\n")
	for _, f := range mechanicsFiles {
		b.WriteString("- ")
		b.WriteString(f)
		b.WriteString("\n")
	}
	b.WriteString("\nRequirements:\n")
	b.WriteString("- Entities.swift: player, obstacles, collectibles as SKSpriteNode subclasses\n")
	b.WriteString("- GameLogic.swift: win/lose detection, score accumulation, level progression\n")
	b.WriteString("- GameScene.swift: the SKScene wiring input handling to the game logic\n")
	fmt.Fprintf(&b, "- GameLogic.swift must declare `let levels = [...]` as a JSON-style array literal of exactly these %d levels:\n", len(design.Levels))
	for _, lv := range design.Levels {
		fmt.Fprintf(&b, `  {"index": %d, "name": %q, "goal": %q, "difficulty": %d, "target_score": %d}`+"\n",
			lv.Index, lv.Name, lv.Goal, lv.Difficulty, lv.TargetScore)
	}
	b.WriteString("- every level must be winnable and losable; the score must be reachable\n")

	if fb := attempt.FeedbackPrompt(); fb != "" {
		b.WriteString("\n")
		b.WriteString(fb)
	}
	return b.String()
}

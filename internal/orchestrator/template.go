package orchestrator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/forgelabs/gameforge/internal/spec"
)

// writeTemplateSources writes the pre-validated gameplay sources used by the
// fallback path. The template is a minimal but complete tap game; only the
// level literal and display strings vary per design.
func writeTemplateSources(projectDir string, design spec.DesignSpec) error {
	if err := os.MkdirAll(filepath.Join(projectDir, "Sources"), 0o755); err != nil {
		return fmt.Errorf("creating sources dir: %w", err)
	}

	levels, err := levelLiteral(design.Levels)
	if err != nil {
		return err
	}

	files := map[string]string{
		"Sources/Entities.swift":  templateEntities,
		"Sources/GameLogic.swift": fmt.Sprintf(templateGameLogic, levels),
		"Sources/GameScene.swift": fmt.Sprintf(templateGameScene, design.Name),
	}
	for rel, content := range files {
		path := filepath.Join(projectDir, rel)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", rel, err)
		}
	}
	return nil
}

// levelLiteral renders the levels as the JSON-style array literal the
// sources must carry, one object per line.
func levelLiteral(levels []spec.LevelDef) (string, error) {
	var lines []string
	for _, lv := range levels {
		obj, err := json.Marshal(lv)
		if err != nil {
			return "", fmt.Errorf("encoding level %d: %w", lv.Index, err)
		}
		lines = append(lines, "  "+string(obj))
	}
	return "[\n" + strings.Join(lines, ",\n") + "\n]", nil
}

const templateEntities = `import SpriteKit

final class Player: SKSpriteNode {
    var lives = 3
}

final class Target: SKSpriteNode {
    var points = 10
}
`

const templateGameLogic = `import Foundation

let levels = %s

final class GameLogic {
    private(set) var score = 0
    private(set) var levelIndex = 0
    private(set) var lives = 3

    var currentTarget: Int {
        guard levelIndex < levels.count else { return 0 }
        return levels[levelIndex]["target_score"] as? Int ?? 0
    }

    var won: Bool { levelIndex >= levels.count }
    var lost: Bool { lives <= 0 }

    func targetHit() {
        score += 10
        if score >= currentTarget {
            levelIndex += 1
            score = 0
        }
    }

    func targetMissed() {
        lives -= 1
    }
}
`

const templateGameScene = `import SpriteKit

final class GameScene: SKScene {
    let logic = GameLogic()
    let titleLabel = SKLabelNode(text: %q)

    override func didMove(to view: SKView) {
        titleLabel.position = CGPoint(x: frame.midX, y: frame.maxY - 80)
        addChild(titleLabel)
        spawnTarget()
    }

    override func touchesBegan(_ touches: Set<UITouch>, with event: UIEvent?) {
        guard let touch = touches.first else { return }
        let location = touch.location(in: self)
        if nodes(at: location).contains(where: { $0.name == "target" }) {
            logic.targetHit()
            spawnTarget()
        } else {
            logic.targetMissed()
        }
        if logic.won || logic.lost {
            isPaused = true
        }
    }

    private func spawnTarget() {
        childNode(withName: "target")?.removeFromParent()
        let target = Target(color: .red, size: CGSize(width: 44, height: 44))
        target.name = "target"
        target.position = CGPoint(
            x: CGFloat.random(in: frame.minX + 40...frame.maxX - 40),
            y: CGFloat.random(in: frame.minY + 40...frame.maxY - 120))
        addChild(target)
    }
}
`

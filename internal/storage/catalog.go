package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Game statuses as recorded in the catalog.
const (
	GameStatusGenerating = "generating"
	GameStatusReady      = "ready"
	GameStatusFallback   = "fallback"
	GameStatusFailed     = "failed"
)

// Game is the catalog entry for one generated project.
type Game struct {
	SpecID      string    `json:"spec_id"`
	Name        string    `json:"name"`
	Genre       string    `json:"genre"`
	Status      string    `json:"status"`
	ProjectPath string    `json:"project_path"`
	Score       int       `json:"score"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GameStore keeps per-project catalog metadata in a local JSON file inside
// the project directory.
type GameStore struct {
	mu  sync.Mutex
	dir string
}

// NewGameStore creates a game store rooted at the project directory.
func NewGameStore(dir string) *GameStore {
	return &GameStore{dir: dir}
}

func (s *GameStore) filePath() string {
	return filepath.Join(s.dir, "game.json")
}

// Load reads the catalog entry from disk. A missing file returns (nil, nil).
func (s *GameStore) Load() (*Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read game entry: %w", err)
	}

	var g Game
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to parse game entry: %w", err)
	}
	return &g, nil
}

// Save writes the catalog entry to disk.
func (s *GameStore) Save(g *Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal game entry: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(s.filePath(), data, 0o644); err != nil {
		return fmt.Errorf("failed to write game entry: %w", err)
	}
	return nil
}

// UpdateStatus loads the entry, updates status and score, and saves it.
func (s *GameStore) UpdateStatus(status string, score int) (*Game, error) {
	g, err := s.Load()
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, fmt.Errorf("no game entry at %s", s.dir)
	}

	g.Status = status
	g.Score = score
	if err := s.Save(g); err != nil {
		return nil, err
	}
	return g, nil
}

// Create writes a fresh catalog entry for a new project.
func (s *GameStore) Create(specID, name, genre, projectPath string) (*Game, error) {
	g := &Game{
		SpecID:      specID,
		Name:        name,
		Genre:       genre,
		Status:      GameStatusGenerating,
		ProjectPath: projectPath,
		CreatedAt:   time.Now(),
	}
	if err := s.Save(g); err != nil {
		return nil, err
	}
	return g, nil
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Config holds the CLI configuration.
type Config struct {
	// ClaudePath is the path to the claude binary.
	ClaudePath string

	// Root is the gameforge home directory (~/gameforge/).
	Root string

	// CatalogDir is the game catalog root (~/gameforge/games/).
	// During generation, this is where new project folders are created.
	// After SetGame(), this points to the specific project directory.
	CatalogDir string

	// StateDir is the .gameforge/ state directory for the active project.
	// Empty until a game is selected via SetGame().
	StateDir string

	// Settings are the user-tunable defaults from gameforge.yaml.
	Settings Settings
}

// GameInfo holds metadata about a game in the catalog.
type GameInfo struct {
	Name      string
	Path      string    // full path to project dir
	CreatedAt time.Time // from game.json or dir mod time
}

// Load validates the environment and returns a Config.
// CatalogDir is set to ~/gameforge/games/ (the catalog root).
// StateDir is empty until a game is selected via SetGame().
func Load() (*Config, error) {
	claudePath, err := findClaude()
	if err != nil {
		return nil, fmt.Errorf("claude Code CLI not found: %w\nInstall: curl -fsSL https://claude.ai/install.sh | bash", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	root := filepath.Join(home, "gameforge")
	catalogDir := filepath.Join(root, "games")

	if err := os.MkdirAll(catalogDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create game catalog: %w", err)
	}

	settings, err := LoadSettings(filepath.Join(root, "gameforge.yaml"))
	if err != nil {
		return nil, err
	}

	return &Config{
		ClaudePath: claudePath,
		Root:       root,
		CatalogDir: catalogDir,
		StateDir:   "", // set via SetGame()
		Settings:   settings,
	}, nil
}

// SetGame switches config to point at a specific game directory.
// projectPath should be the full path (e.g., ~/gameforge/games/bubble-pop).
func (c *Config) SetGame(projectPath string) {
	c.CatalogDir = projectPath
	c.StateDir = filepath.Join(projectPath, ".gameforge")
}

// ListGames scans the catalog for valid games (dirs with a game.json).
func (c *Config) ListGames() []GameInfo {
	catalogRoot := c.CatalogRoot()

	entries, err := os.ReadDir(catalogRoot)
	if err != nil {
		return nil
	}

	var games []GameInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		gameDir := filepath.Join(catalogRoot, entry.Name())
		gameJSON := filepath.Join(gameDir, "game.json")
		info, err := os.Stat(gameJSON)
		if err != nil {
			continue
		}
		games = append(games, GameInfo{
			Name:      entry.Name(),
			Path:      gameDir,
			CreatedAt: info.ModTime(),
		})
	}

	// Sort by most recently modified first
	sort.Slice(games, func(i, j int) bool {
		return games[i].CreatedAt.After(games[j].CreatedAt)
	})

	return games
}

// CatalogRoot returns the game catalog root (~/gameforge/games/).
// This is the original CatalogDir before SetGame() is called.
func (c *Config) CatalogRoot() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "gameforge", "games")
}

// RunDBPath returns the path of the run results database.
func (c *Config) RunDBPath() string {
	return filepath.Join(c.Root, "runs.db")
}

// EnsureStateDir creates the .gameforge/ directory if it doesn't exist.
func (c *Config) EnsureStateDir() error {
	if c.StateDir == "" {
		return fmt.Errorf("no game selected")
	}
	return os.MkdirAll(c.StateDir, 0o755)
}

// HasGame returns true if the selected directory holds a generated game.
func (c *Config) HasGame() bool {
	if c.StateDir == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(filepath.Dir(c.StateDir), "game.json"))
	return err == nil
}

func findClaude() (string, error) {
	path, err := exec.LookPath("claude")
	if err != nil {
		return "", err
	}
	return path, nil
}

// ClaudeAuthStatus holds the user's Claude authentication state.
type ClaudeAuthStatus struct {
	LoggedIn         bool   `json:"loggedIn"`
	Email            string `json:"email"`
	SubscriptionType string `json:"subscriptionType"` // "free", "pro", "max"
	AuthMethod       string `json:"authMethod"`       // "claude.ai", "api_key"
}

// CheckClaudeAuth checks whether the user is authenticated with Claude Code.
func CheckClaudeAuth(claudePath string) *ClaudeAuthStatus {
	cmd := exec.Command(claudePath, "auth", "status", "--json")
	out, err := cmd.Output()
	if err != nil {
		return nil
	}

	// claude auth status --json returns a flat object:
	// {"loggedIn":true,"authMethod":"claude.ai","email":"...","subscriptionType":"max",...}
	var raw struct {
		LoggedIn         bool   `json:"loggedIn"`
		Email            string `json:"email"`
		SubscriptionType string `json:"subscriptionType"`
		AuthMethod       string `json:"authMethod"`
	}
	if err := json.Unmarshal(out, &raw); err != nil {
		// Fallback: check if output suggests logged in
		s := strings.TrimSpace(string(out))
		if strings.Contains(s, "loggedIn") || strings.Contains(s, "Logged in") {
			return &ClaudeAuthStatus{LoggedIn: true}
		}
		return nil
	}

	if !raw.LoggedIn {
		return &ClaudeAuthStatus{LoggedIn: false}
	}

	return &ClaudeAuthStatus{
		LoggedIn:         true,
		Email:            raw.Email,
		SubscriptionType: raw.SubscriptionType,
		AuthMethod:       raw.AuthMethod,
	}
}

// CheckClaude returns true if Claude Code CLI is installed.
func CheckClaude() bool {
	_, err := exec.LookPath("claude")
	return err == nil
}

// ClaudeVersion returns the installed Claude Code version.
func ClaudeVersion(claudePath string) string {
	cmd := exec.Command(claudePath, "--version")
	out, err := cmd.Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

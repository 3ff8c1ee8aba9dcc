package commands

import (
	"fmt"

	"github.com/forgelabs/gameforge/internal/config"
	"github.com/forgelabs/gameforge/internal/service"
)

// loadConfigWithGame loads config and selects the most recent game.
// Returns an error if the catalog is empty.
func loadConfigWithGame() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	games := cfg.ListGames()
	if len(games) == 0 {
		return nil, fmt.Errorf("no games found. Run `gameforge generate` first")
	}

	cfg.SetGame(games[0].Path)
	return cfg, nil
}

func loadService() (*service.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return service.NewService(cfg, service.ServiceOpts{Model: modelFlag})
}

// Package backend selects and assembles the persistence layer.
package backend

import (
	"fmt"
	"log/slog"

	"forgeledger/internal/config"
	"forgeledger/internal/services"
	"forgeledger/internal/storage"
	"forgeledger/internal/storage/memory"
)

// Open builds the repository named by cfg.DataBackend.
func Open(cfg *config.Config) (services.Repository, error) {
	switch cfg.DataBackend {
	case "sqlite":
		slog.Info("Opening SQLite backend", "path", cfg.SQLiteDBPath)
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		return repo, nil
	case "memory":
		slog.Info("Opening in-memory backend; data will not survive a restart")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown data backend %q", cfg.DataBackend)
	}
}

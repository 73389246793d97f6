package repository

import (
	"fmt"

	"highlight-saver/internal/domain"
)

// NewKeyValueStore opens the backend selected by STORE_DRIVER.
func NewKeyValueStore(cfg domain.Config, logger domain.Logger) (domain.KeyValueStore, error) {
	switch cfg.GetStoreDriver() {
	case "", "bolt":
		logger.Info("Using bolt storage", "path", cfg.GetBoltPath())
		return NewBoltKVStore(cfg.GetBoltPath())
	case "sqlite":
		logger.Info("Using sqlite storage", "path", cfg.GetSQLitePath())
		return NewSQLiteKVStore(cfg.GetSQLitePath())
	case "supabase":
		client := NewSupabaseClient(cfg, logger)
		if err := client.Initialize(); err != nil {
			return nil, err
		}
		logger.Info("Using supabase storage", "table", cfg.GetSupabaseTable())
		return NewSupabaseKVStore(client, cfg.GetSupabaseTable(), logger), nil
	case "memory":
		logger.Warn("Using in-memory storage; highlights will not survive a restart")
		return NewMemoryKVStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.GetStoreDriver())
	}
}

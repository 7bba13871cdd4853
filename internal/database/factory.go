package database

import (
	"fmt"
	"path/filepath"

	"indx-go/internal/config"
	"indx-go/internal/indx"
)

// NewDatabaseFromConfig creates a SQLiteDatabase based on the database config
// type. The caller is responsible for running migrations before use.
func NewDatabaseFromConfig(cfg config.DatabaseConfig, logger indx.Logger) (*SQLiteDatabase, error) {
	opts := Options{Trace: cfg.Trace, Profile: cfg.Profile, Logger: logger}
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		dbPath := filepath.Join(cfg.DataDir, "indx.db")
		return NewSQLiteDatabase(dbPath, nil, nil, opts)
	case "memory":
		return NewSQLiteDatabase(":memory:", nil, nil, opts)
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}

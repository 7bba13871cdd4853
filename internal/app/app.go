package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"indx-go/internal/cache"
	"indx-go/internal/config"
	"indx-go/internal/database"
	"indx-go/internal/fs"
	"indx-go/internal/indx"
)

// App is the application layer between the CLI and the Service. It constructs
// all dependencies from config and manages their lifecycle on Close.
type App struct {
	Service *indx.Service

	cfg     *config.Config
	db      *database.SQLiteDatabase
	cache   indx.CacheStore
	op      *Operation
	logFile *os.File
}

// NewApp creates a fully wired App from the given config. operation names the
// CLI command being run (e.g. "Index", "Query") and tags every log line of
// this invocation. The caller must call Close when done.
func NewApp(ctx context.Context, cfg *config.Config, operation string) (*App, error) {
	op := NewOperation(operation)
	logger, logFile, err := newLogger(cfg.LogDir, op.ID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	log := &slogAdapter{l: logger}

	fsmgr := fs.NewOSFileManager(cfg.Filesystem.Types, cfg.Filesystem.Ignore)
	xids := fs.NewXattrXIDStore()

	db, err := database.NewDatabaseFromConfig(cfg.Database, log)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if cfg.Database.Type == "memory" {
		// Nothing persists, so the schema has to be built fresh every run.
		if err := db.RunMigrations(); err != nil {
			db.Close()
			logFile.Close()
			return nil, fmt.Errorf("migrating database: %w", err)
		}
	} else if err := db.CheckMigrations(); err != nil {
		db.Close()
		logFile.Close()
		return nil, fmt.Errorf("database schema out of date (run indx migrate): %w", err)
	}

	cacheStore, err := cache.NewCacheFromConfig(ctx, cfg.Cache)
	if err != nil {
		db.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	svc := indx.NewService(db, fsmgr, xids, indx.ServiceOptions{
		Cache:       cacheStore,
		CacheTTL:    time.Duration(cfg.Cache.TTLMinutes) * time.Minute,
		Logger:      log,
		Clock:       indx.RealClock{},
		IDGenerator: indx.UUIDGenerator{},
	})

	return &App{
		Service: svc,
		cfg:     cfg,
		db:      db,
		cache:   cacheStore,
		op:      op,
		logFile: logFile,
	}, nil
}

// Snapshot copies the live database to destPath.
func (a *App) Snapshot(destPath string) error {
	return a.db.Snapshot(destPath)
}

// Close releases all resources.
func (a *App) Close() error {
	var firstErr error

	if err := a.db.Close(); err != nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}
	if closer, ok := a.cache.(io.Closer); ok {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing cache: %w", err)
		}
	}
	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}

// Migrate opens the database and applies pending schema and data migrations.
// It runs outside of NewApp so every other command can refuse to start on an
// out-of-date schema.
func Migrate(cfg *config.Config) error {
	op := NewOperation("Migrate")
	logger, logFile, err := newLogger(cfg.LogDir, op.ID)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logFile.Close()

	db, err := database.NewDatabaseFromConfig(cfg.Database, &slogAdapter{l: logger})
	if err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	defer db.Close()

	return db.RunMigrations()
}

// MigrationStatus reports whether the database schema is current. A nil
// error means no migrations are pending.
func MigrationStatus(cfg *config.Config) error {
	db, err := database.NewDatabaseFromConfig(cfg.Database, nil)
	if err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	defer db.Close()

	return db.CheckMigrations()
}

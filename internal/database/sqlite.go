package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"indx-go/internal/database/migrations"
	"indx-go/internal/indx"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Options holds explicit SQL observability switches. They are passed at
// construction, never read from ambient global state.
type Options struct {
	Trace   bool // log every statement at debug level
	Profile bool // log statement durations at debug level
	Logger  indx.Logger
}

// SQLiteDatabase implements the indx.Database interface using SQLite.
type SQLiteDatabase struct {
	db     *sql.DB
	path   string
	clock  indx.Clock
	idgen  indx.IDGenerator
	opts   Options
	logger indx.Logger
}

// NewSQLiteDatabase creates a new SQLite database connection.
// path can be a file path or ":memory:" for an in-memory database.
// Nil clock/idgen default to the real implementations.
func NewSQLiteDatabase(path string, clock indx.Clock, idgen indx.IDGenerator, opts Options) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	s := NewSQLiteDatabaseFromDB(db, clock, idgen, opts)
	s.path = path
	return s, nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB, clock indx.Clock, idgen indx.IDGenerator, opts Options) *SQLiteDatabase {
	if clock == nil {
		clock = indx.RealClock{}
	}
	if idgen == nil {
		idgen = indx.UUIDGenerator{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = indx.NewNopLogger()
	}
	return &SQLiteDatabase{
		db:     db,
		clock:  clock,
		idgen:  idgen,
		opts:   opts,
		logger: logger,
	}
}

// OpenConnection opens and configures a SQLite connection with the PRAGMAs
// the engine depends on. Exported for tools and tests that need a properly
// configured connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Foreign keys default to OFF in SQLite for backward compatibility.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Writers queue behind the busy timeout instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// observe logs the statement when tracing is on and returns a closure that
// records its duration when profiling is on.
func (s *SQLiteDatabase) observe(query string, args ...any) func() {
	if !s.opts.Trace && !s.opts.Profile {
		return func() {}
	}
	compact := strings.Join(strings.Fields(query), " ")
	if s.opts.Trace {
		s.logger.Debug("sql", "query", compact, "args", fmt.Sprint(args...))
	}
	if !s.opts.Profile {
		return func() {}
	}
	start := time.Now()
	return func() {
		s.logger.Debug("sql profile", "query", compact, "elapsed", time.Since(start))
	}
}

// inTx runs fn inside one transaction, rolling back on error.
func (s *SQLiteDatabase) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// placeholders returns "?, ?, ..." with n entries for IN clauses.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// Path returns the database file path (or ":memory:").
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// RunMigrations brings the schema to the latest version, applies pending
// data migrations, and vacuums the store.
func (s *SQLiteDatabase) RunMigrations() error {
	if err := migrations.Run(s.db, s.path, s.logger); err != nil {
		return &indx.InitializationError{Err: err}
	}
	if _, err := s.db.Exec("VACUUM"); err != nil {
		return &indx.InitializationError{Err: fmt.Errorf("vacuuming database: %w", err)}
	}
	return nil
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckStatus(s.db)
}

// Snapshot creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteDatabase) Snapshot(destPath string) error {
	if _, err := s.db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("snapshotting database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteDatabase implements indx.Database
var _ indx.Database = (*SQLiteDatabase)(nil)

package testutil

import (
	"testing"

	"indx-go/internal/database"
	"indx-go/internal/indx"
)

// NewTestDatabase creates a new in-memory SQLite database with the full
// schema applied. The database is automatically closed when the test
// completes.
func NewTestDatabase(t *testing.T, clock indx.Clock, idgen indx.IDGenerator) *database.SQLiteDatabase {
	t.Helper()

	db, err := database.NewSQLiteDatabase(":memory:", clock, idgen, database.Options{})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := db.RunMigrations(); err != nil {
		db.Close()
		t.Fatalf("failed to apply migrations: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

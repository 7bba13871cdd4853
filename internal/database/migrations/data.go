package migrations

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"indx-go/internal/indx"
)

// Migration is one registered Go data migration. Check reports whether the
// migration still has work to do; Migrate performs it. Migrations marked
// Testing are trial-run against a snapshot copy of the database instead of
// the live store: the result is verified via Check and kept on disk as an
// artifact for inspection, while the live database stays untouched and the
// migration stays pending.
type Migration struct {
	Version int64
	Name    string
	Check   func(db *sql.DB) (bool, error)
	Migrate func(db *sql.DB) error
	Testing bool
}

// dataMigrations is the ordered registry. Versions are append-only.
var dataMigrations = []Migration{
	{
		Version: 1,
		Name:    "normalize-tag-values",
		Check:   checkNormalizeTagValues,
		Migrate: migrateNormalizeTagValues,
	},
	{
		Version: 2,
		Name:    "collapse-duplicate-tags",
		Check:   checkCollapseDuplicateTags,
		Migrate: migrateCollapseDuplicateTags,
		Testing: true,
	},
}

func runDataMigrations(db *sql.DB, dbPath string, logger indx.Logger) error {
	applied, err := appliedDataVersions(db)
	if err != nil {
		return err
	}

	for _, m := range dataMigrations {
		if applied[m.Version] {
			continue
		}

		needed, err := m.Check(db)
		if err != nil {
			return fmt.Errorf("checking data migration %d (%s): %w", m.Version, m.Name, err)
		}
		if !needed {
			// Nothing to do; record it so the check is not repeated.
			if err := recordDataMigration(db, m); err != nil {
				return err
			}
			continue
		}

		if m.Testing {
			if err := trialRun(db, dbPath, m, logger); err != nil {
				return err
			}
			// Trial mode leaves the live database untouched and the
			// migration pending.
			continue
		}

		logger.Info("applying data migration", "version", m.Version, "name", m.Name)
		if err := m.Migrate(db); err != nil {
			return fmt.Errorf("data migration %d (%s): %w", m.Version, m.Name, err)
		}
		if err := recordDataMigration(db, m); err != nil {
			return err
		}
	}
	return nil
}

// trialRun copies the database via VACUUM INTO, applies the migration to the
// copy, and verifies via Check that no work remains. The artifact stays on
// disk next to the live database.
func trialRun(db *sql.DB, dbPath string, m Migration, logger indx.Logger) error {
	if dbPath == "" || dbPath == ":memory:" {
		logger.Warn("skipping trial migration, no database file to snapshot",
			"version", m.Version, "name", m.Name)
		return nil
	}

	artifact := trialArtifactPath(dbPath, m)
	// VACUUM INTO refuses to overwrite; drop the artifact of any earlier run.
	if err := os.Remove(artifact); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale trial artifact: %w", err)
	}
	if _, err := db.Exec("VACUUM INTO ?", artifact); err != nil {
		return fmt.Errorf("snapshotting for trial migration %d: %w", m.Version, err)
	}

	trial, err := sql.Open("sqlite3", artifact)
	if err != nil {
		return fmt.Errorf("opening trial database: %w", err)
	}
	defer trial.Close()
	if _, err := trial.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("configuring trial database: %w", err)
	}

	logger.Info("trial-running data migration", "version", m.Version, "name", m.Name, "artifact", artifact)
	if err := m.Migrate(trial); err != nil {
		return fmt.Errorf("trial data migration %d (%s): %w", m.Version, m.Name, err)
	}

	needed, err := m.Check(trial)
	if err != nil {
		return fmt.Errorf("verifying trial migration %d: %w", m.Version, err)
	}
	if needed {
		return fmt.Errorf("trial migration %d (%s) left work undone, artifact kept at %s",
			m.Version, m.Name, artifact)
	}

	logger.Info("trial migration verified", "version", m.Version, "artifact", artifact)
	return nil
}

func trialArtifactPath(dbPath string, m Migration) string {
	dir := filepath.Dir(dbPath)
	base := strings.TrimSuffix(filepath.Base(dbPath), filepath.Ext(dbPath))
	return filepath.Join(dir, fmt.Sprintf("%s.trial-%d-%s.db", base, m.Version, m.Name))
}

func appliedDataVersions(db *sql.DB) (map[int64]bool, error) {
	rows, err := db.Query("SELECT version FROM data_migrations")
	if err != nil {
		return nil, fmt.Errorf("reading data migration history: %w", err)
	}
	defer rows.Close()

	applied := make(map[int64]bool)
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning data migration version: %w", err)
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func recordDataMigration(db *sql.DB, m Migration) error {
	_, err := db.Exec(
		"INSERT INTO data_migrations (version, name, applied_at) VALUES (?, ?, ?)",
		m.Version, m.Name, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("recording data migration %d: %w", m.Version, err)
	}
	return nil
}

// checkDataMigrations reports pending non-trial data migrations as an error.
func checkDataMigrations(db *sql.DB) error {
	applied, err := appliedDataVersions(db)
	if err != nil {
		return err
	}
	var pending []string
	for _, m := range dataMigrations {
		if m.Testing || applied[m.Version] {
			continue
		}
		needed, err := m.Check(db)
		if err != nil {
			return fmt.Errorf("checking data migration %d (%s): %w", m.Version, m.Name, err)
		}
		if needed {
			pending = append(pending, fmt.Sprintf("%d (%s)", m.Version, m.Name))
		}
	}
	if len(pending) > 0 {
		return fmt.Errorf("pending data migrations: %s", strings.Join(pending, ", "))
	}
	return nil
}

// Tag values are stored trimmed; early writers let surrounding whitespace
// through.
func checkNormalizeTagValues(db *sql.DB) (bool, error) {
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM tags WHERE value != trim(value)").Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func migrateNormalizeTagValues(db *sql.DB) error {
	// Trimming can collide with an existing trimmed record; those rows are
	// left for the collapse-duplicate-tags migration.
	_, err := db.Exec(`UPDATE tags SET value = trim(value)
		WHERE value != trim(value)
		AND NOT EXISTS (SELECT 1 FROM tags t2 WHERE t2.type = tags.type AND t2.value = trim(tags.value))`)
	return err
}

// Duplicate (type, trimmed value) records can exist after normalization
// collisions. Collapsing them repoints associations onto the oldest record.
func checkCollapseDuplicateTags(db *sql.DB) (bool, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM tags t
		WHERE EXISTS (SELECT 1 FROM tags t2
			WHERE t2.type = t.type AND trim(t2.value) = trim(t.value) AND t2.id != t.id)`).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func migrateCollapseDuplicateTags(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	rows, err := tx.Query(`SELECT t.id, keep.id FROM tags t
		JOIN tags keep ON keep.type = t.type AND trim(keep.value) = trim(t.value)
		WHERE keep.id = (SELECT t3.id FROM tags t3
			WHERE t3.type = t.type AND trim(t3.value) = trim(t.value)
			ORDER BY t3.created_at, t3.id LIMIT 1)
		AND t.id != keep.id`)
	if err != nil {
		return err
	}
	type pair struct{ dup, keep string }
	var pairs []pair
	for rows.Next() {
		var p pair
		if err := rows.Scan(&p.dup, &p.keep); err != nil {
			rows.Close()
			return err
		}
		pairs = append(pairs, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, p := range pairs {
		if _, err := tx.Exec("UPDATE OR IGNORE index_tags SET tag_id = ? WHERE tag_id = ?", p.keep, p.dup); err != nil {
			return err
		}
		if _, err := tx.Exec("DELETE FROM index_tags WHERE tag_id = ?", p.dup); err != nil {
			return err
		}
		if _, err := tx.Exec("DELETE FROM tags WHERE id = ?", p.dup); err != nil {
			return err
		}
	}
	if _, err := tx.Exec("UPDATE tags SET value = trim(value) WHERE value != trim(value)"); err != nil {
		return err
	}

	return tx.Commit()
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"indx-go/internal/indx"
)

const indexColumns = "id, name, location, content_type, visibility, created_at, updated_at"

func scanIndex(row interface{ Scan(...any) error }) (*indx.IndexRecord, error) {
	var rec indx.IndexRecord
	err := row.Scan(&rec.ID, &rec.Name, &rec.Location, &rec.Type,
		&rec.Visibility, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *SQLiteDatabase) GetIndex(ctx context.Context, id indx.ContentID) (*indx.IndexRecord, error) {
	query := "SELECT " + indexColumns + " FROM indexes WHERE id = ?"
	defer s.observe(query, id)()

	rec, err := scanIndex(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("finding index by id: %w", err)
	}
	return rec, nil
}

func (s *SQLiteDatabase) GetIndexesByLocation(ctx context.Context, location string) ([]*indx.IndexRecord, error) {
	query := "SELECT " + indexColumns + " FROM indexes WHERE location = ? ORDER BY name"
	defer s.observe(query, location)()

	rows, err := s.db.QueryContext(ctx, query, location)
	if err != nil {
		return nil, fmt.Errorf("finding indexes by location: %w", err)
	}
	defer rows.Close()

	var records []*indx.IndexRecord
	for rows.Next() {
		rec, err := scanIndex(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning index: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLiteDatabase) ApplyDirectoryChanges(ctx context.Context, changes indx.DirectoryChanges) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		now := s.clock.Now().UTC()

		for _, add := range changes.Add {
			rec := add.Record
			_, err := tx.ExecContext(ctx,
				`INSERT INTO indexes (id, name, location, content_type, visibility, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				rec.ID, rec.Name, rec.Location, rec.Type, rec.Visibility, rec.CreatedAt, rec.UpdatedAt)
			if err != nil {
				return fmt.Errorf("inserting index %s: %w", rec.ID, err)
			}
			for _, tag := range add.Tags {
				tagID, err := s.findOrCreateTagTx(ctx, tx, tag, now)
				if err != nil {
					return err
				}
				_, err = tx.ExecContext(ctx,
					"INSERT OR IGNORE INTO index_tags (index_id, tag_id) VALUES (?, ?)",
					rec.ID, tagID)
				if err != nil {
					return fmt.Errorf("seeding tag %s: %w", tag, err)
				}
			}
		}

		for _, rel := range changes.Relocate {
			res, err := tx.ExecContext(ctx,
				"UPDATE indexes SET location = ?, updated_at = ? WHERE id = ?",
				rel.NewLocation, now, rel.ID)
			if err != nil {
				return fmt.Errorf("relocating index %s: %w", rel.ID, err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return fmt.Errorf("relocating index %s: %w", rel.ID, indx.ErrNotFound)
			}
		}

		for _, id := range changes.Remove {
			if err := s.deleteIndexTx(ctx, tx, id); err != nil {
				return err
			}
		}

		return nil
	})
}

// deleteIndexTx removes one record with its associations, attributes,
// bookmarks and queue memberships, then drops any tags left without
// associations. Cascades are not automatic in the schema; cleanup is explicit.
func (s *SQLiteDatabase) deleteIndexTx(ctx context.Context, tx *sql.Tx, id indx.ContentID) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM index_tags WHERE index_id = ?", id); err != nil {
		return fmt.Errorf("deleting associations of %s: %w", id, err)
	}
	_, err := tx.ExecContext(ctx,
		"DELETE FROM tags WHERE NOT EXISTS (SELECT 1 FROM index_tags WHERE index_tags.tag_id = tags.id)")
	if err != nil {
		return fmt.Errorf("deleting orphaned tags: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM index_attributes WHERE index_id = ?", id); err != nil {
		return fmt.Errorf("deleting attributes of %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM bookmarks WHERE index_id = ?", id); err != nil {
		return fmt.Errorf("deleting bookmarks of %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM queue_items WHERE index_id = ?", id); err != nil {
		return fmt.Errorf("deleting queue items of %s: %w", id, err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM indexes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting index %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("deleting index %s: %w", id, indx.ErrNotFound)
	}
	return nil
}

func (s *SQLiteDatabase) PatchIndex(ctx context.Context, id indx.ContentID, patch indx.IndexPatch) error {
	sets := []string{"updated_at = ?"}
	args := []any{s.clock.Now().UTC()}
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Location != nil {
		sets = append(sets, "location = ?")
		args = append(args, *patch.Location)
	}
	if patch.Visibility != nil {
		sets = append(sets, "visibility = ?")
		args = append(args, *patch.Visibility)
	}
	args = append(args, id)

	query := "UPDATE indexes SET " + joinSets(sets) + " WHERE id = ?"
	defer s.observe(query, args...)()

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("patching index %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("patching index %s: %w", id, indx.ErrNotFound)
	}
	return nil
}

func joinSets(sets []string) string {
	out := sets[0]
	for _, s := range sets[1:] {
		out += ", " + s
	}
	return out
}

func (s *SQLiteDatabase) DeleteIndex(ctx context.Context, id indx.ContentID) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return s.deleteIndexTx(ctx, tx, id)
	})
}

func (s *SQLiteDatabase) GetIndexTags(ctx context.Context, id indx.ContentID) ([]*indx.TagRecord, error) {
	query := `SELECT t.id, t.type, t.value, t.created_at
		FROM tags t
		JOIN index_tags it ON it.tag_id = t.id
		WHERE it.index_id = ?
		ORDER BY t.type, t.value`
	defer s.observe(query, id)()

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("finding tags of %s: %w", id, err)
	}
	defer rows.Close()

	var tags []*indx.TagRecord
	for rows.Next() {
		var t indx.TagRecord
		if err := rows.Scan(&t.ID, &t.Type, &t.Value, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		tags = append(tags, &t)
	}
	return tags, rows.Err()
}

func (s *SQLiteDatabase) SetIndexAttribute(ctx context.Context, id indx.ContentID, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO index_attributes (index_id, key, value) VALUES (?, ?, ?)
		 ON CONFLICT (index_id, key) DO UPDATE SET value = excluded.value`,
		id, key, value)
	if err != nil {
		return fmt.Errorf("setting attribute %s of %s: %w", key, id, err)
	}
	return nil
}

func (s *SQLiteDatabase) GetIndexAttributes(ctx context.Context, id indx.ContentID) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT key, value FROM index_attributes WHERE index_id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("finding attributes of %s: %w", id, err)
	}
	defer rows.Close()

	attrs := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning attribute: %w", err)
		}
		attrs[k] = v
	}
	return attrs, rows.Err()
}

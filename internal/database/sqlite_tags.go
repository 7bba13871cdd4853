package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"indx-go/internal/indx"
)

// findOrCreateTagTx returns the id of the tag record for (type, value),
// inserting it if absent. Must run inside a transaction so the create and
// the first association commit together.
func (s *SQLiteDatabase) findOrCreateTagTx(ctx context.Context, tx *sql.Tx, tag indx.FilteringTag, now time.Time) (string, error) {
	var id string
	err := tx.QueryRowContext(ctx,
		"SELECT id FROM tags WHERE type = ? AND value = ?", tag.Type, tag.Value).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("finding tag %s: %w", tag, err)
	}

	id = s.idgen.New()
	_, err = tx.ExecContext(ctx,
		"INSERT INTO tags (id, type, value, created_at) VALUES (?, ?, ?, ?)",
		id, tag.Type, tag.Value, now)
	if err != nil {
		return "", fmt.Errorf("creating tag %s: %w", tag, err)
	}
	return id, nil
}

// getTagIDTx returns the id of an existing tag record, or "" when absent.
func getTagIDTx(ctx context.Context, tx *sql.Tx, tag indx.FilteringTag) (string, error) {
	var id string
	err := tx.QueryRowContext(ctx,
		"SELECT id FROM tags WHERE type = ? AND value = ?", tag.Type, tag.Value).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("finding tag %s: %w", tag, err)
	}
	return id, nil
}

func (s *SQLiteDatabase) GetTagRecord(ctx context.Context, tag indx.FilteringTag) (*indx.TagRecord, error) {
	query := "SELECT id, type, value, created_at FROM tags WHERE type = ? AND value = ?"
	defer s.observe(query, tag.Type, tag.Value)()

	var rec indx.TagRecord
	err := s.db.QueryRowContext(ctx, query, tag.Type, tag.Value).
		Scan(&rec.ID, &rec.Type, &rec.Value, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("finding tag %s: %w", tag, err)
	}
	return &rec, nil
}

func (s *SQLiteDatabase) ListTagRecords(ctx context.Context) ([]*indx.TagRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, type, value, created_at FROM tags ORDER BY type, value")
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
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

func (s *SQLiteDatabase) AssociateTags(ctx context.Context, tags []indx.FilteringTag, ids []indx.ContentID) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		now := s.clock.Now().UTC()
		for _, tag := range tags {
			tagID, err := s.findOrCreateTagTx(ctx, tx, tag, now)
			if err != nil {
				return err
			}
			for _, id := range ids {
				_, err := tx.ExecContext(ctx,
					"INSERT OR IGNORE INTO index_tags (index_id, tag_id) VALUES (?, ?)",
					id, tagID)
				if err != nil {
					return fmt.Errorf("associating %s with %s: %w", tag, id, err)
				}
			}
		}
		return nil
	})
}

func (s *SQLiteDatabase) ReplaceTags(ctx context.Context, ids []indx.ContentID, tags []indx.FilteringTag) ([]indx.FilteringTag, error) {
	var removed []indx.FilteringTag
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		now := s.clock.Now().UTC()

		tagIDs := make([]string, 0, len(tags))
		for _, tag := range tags {
			tagID, err := s.findOrCreateTagTx(ctx, tx, tag, now)
			if err != nil {
				return err
			}
			tagIDs = append(tagIDs, tagID)
		}

		// Insert the new set before deleting the stale set so no content
		// item passes through an empty tag set.
		for _, id := range ids {
			for _, tagID := range tagIDs {
				_, err := tx.ExecContext(ctx,
					"INSERT OR IGNORE INTO index_tags (index_id, tag_id) VALUES (?, ?)",
					id, tagID)
				if err != nil {
					return fmt.Errorf("inserting association: %w", err)
				}
			}
		}

		idArgs := make([]any, len(ids))
		for i, id := range ids {
			idArgs[i] = id
		}
		keepArgs := make([]any, len(tagIDs))
		for i, tid := range tagIDs {
			keepArgs[i] = tid
		}

		// Record which tags are about to lose associations; the caller
		// re-evaluates them for orphan cleanup after the commit.
		staleQuery := `SELECT DISTINCT t.type, t.value
			FROM tags t JOIN index_tags it ON it.tag_id = t.id
			WHERE it.index_id IN (` + placeholders(len(ids)) + `)`
		staleArgs := idArgs
		if len(tagIDs) > 0 {
			staleQuery += " AND it.tag_id NOT IN (" + placeholders(len(tagIDs)) + ")"
			staleArgs = append(append([]any{}, idArgs...), keepArgs...)
		}
		rows, err := tx.QueryContext(ctx, staleQuery, staleArgs...)
		if err != nil {
			return fmt.Errorf("finding stale tags: %w", err)
		}
		for rows.Next() {
			var t indx.FilteringTag
			if err := rows.Scan(&t.Type, &t.Value); err != nil {
				rows.Close()
				return fmt.Errorf("scanning stale tag: %w", err)
			}
			removed = append(removed, t)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		deleteQuery := "DELETE FROM index_tags WHERE index_id IN (" + placeholders(len(ids)) + ")"
		deleteArgs := idArgs
		if len(tagIDs) > 0 {
			deleteQuery += " AND tag_id NOT IN (" + placeholders(len(tagIDs)) + ")"
			deleteArgs = append(append([]any{}, idArgs...), keepArgs...)
		}
		if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
			return fmt.Errorf("deleting stale associations: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (s *SQLiteDatabase) ModifyTags(ctx context.Context, ids []indx.ContentID, ensure, remove []indx.FilteringTag) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		now := s.clock.Now().UTC()

		// INSERT OR IGNORE inserts exactly the currently-missing pairs.
		for _, tag := range ensure {
			tagID, err := s.findOrCreateTagTx(ctx, tx, tag, now)
			if err != nil {
				return err
			}
			for _, id := range ids {
				_, err := tx.ExecContext(ctx,
					"INSERT OR IGNORE INTO index_tags (index_id, tag_id) VALUES (?, ?)",
					id, tagID)
				if err != nil {
					return fmt.Errorf("ensuring %s on %s: %w", tag, id, err)
				}
			}
		}

		idArgs := make([]any, len(ids))
		for i, id := range ids {
			idArgs[i] = id
		}
		for _, tag := range remove {
			tagID, err := getTagIDTx(ctx, tx, tag)
			if err != nil {
				return err
			}
			if tagID == "" {
				continue // nothing to remove
			}
			args := append([]any{tagID}, idArgs...)
			_, err = tx.ExecContext(ctx,
				"DELETE FROM index_tags WHERE tag_id = ? AND index_id IN ("+placeholders(len(ids))+")",
				args...)
			if err != nil {
				return fmt.Errorf("removing %s: %w", tag, err)
			}
		}
		return nil
	})
}

func (s *SQLiteDatabase) RemoveTagAssociations(ctx context.Context, tag indx.FilteringTag, ids []indx.ContentID) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		tagID, err := getTagIDTx(ctx, tx, tag)
		if err != nil {
			return err
		}
		if tagID == "" {
			return fmt.Errorf("tag %s: %w", tag, indx.ErrNotFound)
		}

		if ids == nil {
			_, err = tx.ExecContext(ctx, "DELETE FROM index_tags WHERE tag_id = ?", tagID)
		} else {
			idArgs := make([]any, 0, len(ids)+1)
			idArgs = append(idArgs, tagID)
			for _, id := range ids {
				idArgs = append(idArgs, id)
			}
			_, err = tx.ExecContext(ctx,
				"DELETE FROM index_tags WHERE tag_id = ? AND index_id IN ("+placeholders(len(ids))+")",
				idArgs...)
		}
		if err != nil {
			return fmt.Errorf("removing associations of %s: %w", tag, err)
		}
		return nil
	})
}

// RenameTag updates the (type, value) columns of oldTag in place. The tag id
// is preserved, so all associations follow implicitly. When a record for
// newTag already exists the rename degrades to a consolidation: oldTag's
// associations are merged into newTag's record and oldTag is deleted. Callers
// expecting strict rename-or-fail should check for the target first.
func (s *SQLiteDatabase) RenameTag(ctx context.Context, oldTag, newTag indx.FilteringTag) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		oldID, err := getTagIDTx(ctx, tx, oldTag)
		if err != nil {
			return err
		}
		if oldID == "" {
			return fmt.Errorf("tag %s: %w", oldTag, indx.ErrNotFound)
		}

		newID, err := getTagIDTx(ctx, tx, newTag)
		if err != nil {
			return err
		}
		if newID != "" {
			if newID == oldID {
				return nil // renaming a tag to itself
			}
			return consolidateTagTx(ctx, tx, oldID, newID)
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE tags SET type = ?, value = ? WHERE id = ?",
			newTag.Type, newTag.Value, oldID)
		if err != nil {
			return fmt.Errorf("renaming tag %s: %w", oldTag, err)
		}
		return nil
	})
}

func (s *SQLiteDatabase) RenameTagFor(ctx context.Context, oldTag, newTag indx.FilteringTag, ids []indx.ContentID) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		oldID, err := getTagIDTx(ctx, tx, oldTag)
		if err != nil {
			return err
		}
		if oldID == "" {
			return fmt.Errorf("tag %s: %w", oldTag, indx.ErrNotFound)
		}

		newID, err := s.findOrCreateTagTx(ctx, tx, newTag, s.clock.Now().UTC())
		if err != nil {
			return err
		}
		if newID == oldID {
			return nil
		}

		idArgs := make([]any, 0, len(ids)+2)
		idArgs = append(idArgs, newID, oldID)
		for _, id := range ids {
			idArgs = append(idArgs, id)
		}

		// Repoint; rows whose (index, newTag) pair already exists are left
		// behind and swept by the delete that follows.
		_, err = tx.ExecContext(ctx,
			"UPDATE OR IGNORE index_tags SET tag_id = ? WHERE tag_id = ? AND index_id IN ("+placeholders(len(ids))+")",
			idArgs...)
		if err != nil {
			return fmt.Errorf("repointing associations: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			"DELETE FROM index_tags WHERE tag_id = ? AND index_id IN ("+placeholders(len(ids))+")",
			idArgs[1:]...)
		if err != nil {
			return fmt.Errorf("sweeping repointed associations: %w", err)
		}

		// The narrowed rename orphans oldTag when the given ids held its
		// last associations, and orphans newTag when none of the given ids
		// carried oldTag to repoint in the first place.
		for tag, id := range map[indx.FilteringTag]string{oldTag: oldID, newTag: newID} {
			_, err = tx.ExecContext(ctx,
				"DELETE FROM tags WHERE id = ? AND NOT EXISTS (SELECT 1 FROM index_tags WHERE tag_id = tags.id)",
				id)
			if err != nil {
				return fmt.Errorf("deleting orphaned tag %s: %w", tag, err)
			}
		}
		return nil
	})
}

func (s *SQLiteDatabase) ConsolidateTag(ctx context.Context, from, into indx.FilteringTag) error {
	if from == into {
		return nil // nothing to merge
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		fromID, err := getTagIDTx(ctx, tx, from)
		if err != nil {
			return err
		}
		if fromID == "" {
			return fmt.Errorf("tag %s: %w", from, indx.ErrNotFound)
		}
		intoID, err := getTagIDTx(ctx, tx, into)
		if err != nil {
			return err
		}
		if intoID == "" {
			return fmt.Errorf("tag %s: %w", into, indx.ErrNotFound)
		}
		return consolidateTagTx(ctx, tx, fromID, intoID)
	})
}

// consolidateTagTx repoints every association of fromID onto intoID.
// Content already holding both tags keeps a single association (the
// conflicting row is swept), then the source record is removed.
func consolidateTagTx(ctx context.Context, tx *sql.Tx, fromID, intoID string) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE OR IGNORE index_tags SET tag_id = ? WHERE tag_id = ?", intoID, fromID)
	if err != nil {
		return fmt.Errorf("repointing associations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM index_tags WHERE tag_id = ?", fromID); err != nil {
		return fmt.Errorf("sweeping duplicate associations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM tags WHERE id = ?", fromID); err != nil {
		return fmt.Errorf("deleting consolidated tag: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) DeleteTagIfUnused(ctx context.Context, tag indx.FilteringTag) (bool, error) {
	query := `DELETE FROM tags WHERE type = ? AND value = ?
		AND NOT EXISTS (SELECT 1 FROM index_tags WHERE index_tags.tag_id = tags.id)`
	defer s.observe(query, tag.Type, tag.Value)()

	res, err := s.db.ExecContext(ctx, query, tag.Type, tag.Value)
	if err != nil {
		return false, fmt.Errorf("deleting unused tag %s: %w", tag, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

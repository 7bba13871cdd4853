package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"indx-go/internal/indx"

	sqlite3 "github.com/mattn/go-sqlite3"
)

func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func (s *SQLiteDatabase) FindOrCreateBookmark(ctx context.Context, bookmark *indx.BookmarkRecord) (*indx.BookmarkRecord, error) {
	var out *indx.BookmarkRecord
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		existing := &indx.BookmarkRecord{}
		err := tx.QueryRowContext(ctx,
			"SELECT id, index_id, created_at FROM bookmarks WHERE index_id = ?",
			bookmark.IndexID).Scan(&existing.ID, &existing.IndexID, &existing.CreatedAt)
		if err == nil {
			out = existing
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("finding bookmark for %s: %w", bookmark.IndexID, err)
		}

		rec := *bookmark
		if rec.ID == "" {
			rec.ID = s.idgen.New()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = s.clock.Now().UTC()
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO bookmarks (id, index_id, created_at) VALUES (?, ?, ?)",
			rec.ID, rec.IndexID, rec.CreatedAt)
		if err != nil {
			return fmt.Errorf("creating bookmark for %s: %w", rec.IndexID, err)
		}
		out = &rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteDatabase) GetBookmarkForContent(ctx context.Context, id indx.ContentID) (*indx.BookmarkRecord, error) {
	var rec indx.BookmarkRecord
	err := s.db.QueryRowContext(ctx,
		"SELECT id, index_id, created_at FROM bookmarks WHERE index_id = ?", id).
		Scan(&rec.ID, &rec.IndexID, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("finding bookmark for %s: %w", id, err)
	}
	return &rec, nil
}

func (s *SQLiteDatabase) DeleteBookmark(ctx context.Context, bookmarkID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bookmarks WHERE id = ?", bookmarkID)
	if err != nil {
		return fmt.Errorf("deleting bookmark %s: %w", bookmarkID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("deleting bookmark %s: %w", bookmarkID, indx.ErrNotFound)
	}
	return nil
}

func (s *SQLiteDatabase) DeleteBookmarksForContent(ctx context.Context, id indx.ContentID) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM bookmarks WHERE index_id = ?", id); err != nil {
		return fmt.Errorf("deleting bookmarks for %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteDatabase) ListBookmarks(ctx context.Context) ([]*indx.BookmarkRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, index_id, created_at FROM bookmarks ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("listing bookmarks: %w", err)
	}
	defer rows.Close()

	var bookmarks []*indx.BookmarkRecord
	for rows.Next() {
		var b indx.BookmarkRecord
		if err := rows.Scan(&b.ID, &b.IndexID, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning bookmark: %w", err)
		}
		bookmarks = append(bookmarks, &b)
	}
	return bookmarks, rows.Err()
}

func (s *SQLiteDatabase) CreateQueue(ctx context.Context, queue *indx.QueueRecord) error {
	if queue.ID == "" {
		queue.ID = s.idgen.New()
	}
	if queue.CreatedAt.IsZero() {
		queue.CreatedAt = s.clock.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO queues (id, name, created_at) VALUES (?, ?, ?)",
		queue.ID, queue.Name, queue.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("queue %q: %w", queue.Name, indx.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("creating queue %q: %w", queue.Name, err)
	}
	return nil
}

func (s *SQLiteDatabase) GetQueue(ctx context.Context, name string) (*indx.QueueRecord, error) {
	var rec indx.QueueRecord
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM queues WHERE name = ?", name).
		Scan(&rec.ID, &rec.Name, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("finding queue %q: %w", name, err)
	}
	return &rec, nil
}

func (s *SQLiteDatabase) ListQueues(ctx context.Context) ([]*indx.QueueRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, created_at FROM queues ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing queues: %w", err)
	}
	defer rows.Close()

	var queues []*indx.QueueRecord
	for rows.Next() {
		var q indx.QueueRecord
		if err := rows.Scan(&q.ID, &q.Name, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning queue: %w", err)
		}
		queues = append(queues, &q)
	}
	return queues, rows.Err()
}

func (s *SQLiteDatabase) AppendQueueItem(ctx context.Context, item *indx.QueueItemRecord) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if item.ID == "" {
			item.ID = s.idgen.New()
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = s.clock.Now().UTC()
		}

		// Position is assigned inside the transaction so concurrent appends
		// cannot race to the same slot.
		err := tx.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(position), 0) + 1 FROM queue_items WHERE queue_id = ?",
			item.QueueID).Scan(&item.Position)
		if err != nil {
			return fmt.Errorf("assigning queue position: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO queue_items (id, queue_id, index_id, position, completed, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			item.ID, item.QueueID, item.IndexID, item.Position, item.Completed, item.CreatedAt)
		if err != nil {
			return fmt.Errorf("appending queue item: %w", err)
		}
		return nil
	})
}

func (s *SQLiteDatabase) MarkQueueItemCompleted(ctx context.Context, itemID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE queue_items SET completed = 1 WHERE id = ?", itemID)
	if err != nil {
		return fmt.Errorf("completing queue item %s: %w", itemID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("completing queue item %s: %w", itemID, indx.ErrNotFound)
	}
	return nil
}

func (s *SQLiteDatabase) ListQueueItems(ctx context.Context, queueID string) ([]*indx.QueueItemRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, queue_id, index_id, position, completed, created_at
		 FROM queue_items WHERE queue_id = ? ORDER BY position`, queueID)
	if err != nil {
		return nil, fmt.Errorf("listing queue items: %w", err)
	}
	defer rows.Close()

	var items []*indx.QueueItemRecord
	for rows.Next() {
		var it indx.QueueItemRecord
		if err := rows.Scan(&it.ID, &it.QueueID, &it.IndexID, &it.Position, &it.Completed, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning queue item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

func (s *SQLiteDatabase) InsertSavedQuery(ctx context.Context, query *indx.SavedQueryRecord) error {
	if query.ID == "" {
		query.ID = s.idgen.New()
	}
	now := s.clock.Now().UTC()
	if query.CreatedAt.IsZero() {
		query.CreatedAt = now
	}
	query.UpdatedAt = query.CreatedAt

	data, err := json.Marshal(query.Params)
	if err != nil {
		return fmt.Errorf("encoding query params: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO saved_queries (id, name, params, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		query.ID, query.Name, string(data), query.CreatedAt, query.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("saved query %q: %w", query.Name, indx.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("creating saved query %q: %w", query.Name, err)
	}
	return nil
}

func (s *SQLiteDatabase) GetSavedQuery(ctx context.Context, name string) (*indx.SavedQueryRecord, error) {
	var rec indx.SavedQueryRecord
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, params, created_at, updated_at FROM saved_queries WHERE name = ?", name).
		Scan(&rec.ID, &rec.Name, &data, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("finding saved query %q: %w", name, err)
	}
	if err := json.Unmarshal([]byte(data), &rec.Params); err != nil {
		return nil, indx.IntegrityErrorf("saved query %q holds malformed params: %v", name, err)
	}
	return &rec, nil
}

func (s *SQLiteDatabase) UpdateSavedQueryParams(ctx context.Context, name string, params indx.RequestParams) error {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encoding query params: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE saved_queries SET params = ?, updated_at = ? WHERE name = ?",
		string(data), s.clock.Now().UTC(), name)
	if err != nil {
		return fmt.Errorf("updating saved query %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("updating saved query %q: %w", name, indx.ErrNotFound)
	}
	return nil
}

func (s *SQLiteDatabase) RenameSavedQuery(ctx context.Context, oldName, newName string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE saved_queries SET name = ?, updated_at = ? WHERE name = ?",
		newName, s.clock.Now().UTC(), oldName)
	if isUniqueViolation(err) {
		return fmt.Errorf("saved query %q: %w", newName, indx.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("renaming saved query %q: %w", oldName, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("renaming saved query %q: %w", oldName, indx.ErrNotFound)
	}
	return nil
}

func (s *SQLiteDatabase) DeleteSavedQuery(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM saved_queries WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting saved query %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("deleting saved query %q: %w", name, indx.ErrNotFound)
	}
	return nil
}

func (s *SQLiteDatabase) ListSavedQueries(ctx context.Context) ([]*indx.SavedQueryRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, params, created_at, updated_at FROM saved_queries ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing saved queries: %w", err)
	}
	defer rows.Close()

	var queries []*indx.SavedQueryRecord
	for rows.Next() {
		var rec indx.SavedQueryRecord
		var data string
		if err := rows.Scan(&rec.ID, &rec.Name, &data, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning saved query: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &rec.Params); err != nil {
			return nil, indx.IntegrityErrorf("saved query %q holds malformed params: %v", rec.Name, err)
		}
		queries = append(queries, &rec)
	}
	return queries, rows.Err()
}

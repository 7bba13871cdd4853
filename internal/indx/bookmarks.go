package indx

import (
	"context"
	"fmt"
)

// Bookmark marks a content item. Bookmarking an already-bookmarked item
// returns the existing bookmark.
func (s *Service) Bookmark(ctx context.Context, id ContentID) (*BookmarkRecord, error) {
	rec, err := s.db.GetIndex(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("content %s: %w", id, ErrNotFound)
	}

	bookmark := &BookmarkRecord{
		ID:        s.idgen.New(),
		IndexID:   id,
		CreatedAt: s.clock.Now().UTC(),
	}
	out, err := s.db.FindOrCreateBookmark(ctx, bookmark)
	if err != nil {
		return nil, &OperationError{Op: "bookmark", Err: err}
	}
	return out, nil
}

// Unbookmark removes the bookmark of a content item, if any.
func (s *Service) Unbookmark(ctx context.Context, id ContentID) error {
	if err := s.db.DeleteBookmarksForContent(ctx, id); err != nil {
		return &OperationError{Op: "unbookmark", Err: err}
	}
	return nil
}

// GetBookmark returns the bookmark of a content item, or (nil, nil).
func (s *Service) GetBookmark(ctx context.Context, id ContentID) (*BookmarkRecord, error) {
	return s.db.GetBookmarkForContent(ctx, id)
}

// ListBookmarks returns all bookmarks in creation order.
func (s *Service) ListBookmarks(ctx context.Context) ([]*BookmarkRecord, error) {
	return s.db.ListBookmarks(ctx)
}

package indx

import (
	"path/filepath"
	"time"
)

// Visibility is the display state of an index record.
type Visibility string

const (
	VisibilityNormal Visibility = "normal"
	VisibilityHidden Visibility = "hidden"
	VisibilityLost   Visibility = "lost"

	// VisibilityAny is query-only and expands to normal plus hidden.
	VisibilityAny Visibility = "any"
)

// IndexRecord is the stored record of one indexed filesystem entity.
type IndexRecord struct {
	ID         ContentID
	Name       string
	Location   string // directory path
	Type       string // content-type identifier
	Visibility Visibility
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AbsolutePath reconstructs the full path from location and name.
func (r *IndexRecord) AbsolutePath() string {
	return filepath.Join(r.Location, r.Name)
}

// TagRecord is the stored canonical (type, value) tag definition. No two
// records share the same (type, value) pair.
type TagRecord struct {
	ID        string
	Type      TagType
	Value     string
	CreatedAt time.Time
}

// Tag returns the record as a FilteringTag value.
func (r *TagRecord) Tag() FilteringTag {
	return FilteringTag{Type: r.Type, Value: r.Value}
}

// IndexInfo is an index record joined with its tag summary.
type IndexInfo struct {
	IndexRecord
	Tags []FilteringTag
}

// BookmarkRecord marks one content item, unique per content id.
type BookmarkRecord struct {
	ID        string
	IndexID   ContentID
	CreatedAt time.Time
}

// QueueRecord is a named, ordered work queue of content items.
type QueueRecord struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// QueueItemRecord is one entry of a queue, kept in insertion order.
type QueueItemRecord struct {
	ID        string
	QueueID   string
	IndexID   ContentID
	Position  int64
	Completed bool
	CreatedAt time.Time
}

// SavedQueryRecord is a named, persisted query parameter snapshot.
type SavedQueryRecord struct {
	ID        string
	Name      string
	Params    RequestParams
	CreatedAt time.Time
	UpdatedAt time.Time
}

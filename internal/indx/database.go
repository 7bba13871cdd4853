package indx

import "context"

// NewIndex is one record to create during directory indexing, together with
// tags seeded from its filename.
type NewIndex struct {
	Record IndexRecord
	Tags   []FilteringTag
}

// Relocation patches a record whose content now lives under a different
// directory.
type Relocation struct {
	ID          ContentID
	NewLocation string
}

// DirectoryChanges is the write set produced by one directory diff. The
// store applies it atomically.
type DirectoryChanges struct {
	Add      []NewIndex
	Relocate []Relocation
	Remove   []ContentID
}

// IndexPatch is a partial update of an index record. Nil fields are left
// unchanged.
type IndexPatch struct {
	Name       *string
	Location   *string
	Visibility *Visibility
}

// IndexStore provides CRUD and diff application for index records.
// Lookups return (nil, nil) when nothing matches; mutations of a missing
// record return ErrNotFound.
type IndexStore interface {
	GetIndex(ctx context.Context, id ContentID) (*IndexRecord, error)

	// GetIndexesByLocation returns all records stored directly at location.
	GetIndexesByLocation(ctx context.Context, location string) ([]*IndexRecord, error)

	// ApplyDirectoryChanges applies one directory diff in a single
	// transaction: creates added records with their seeded tags, patches
	// relocated records, and deletes removed records along with their
	// associations and attributes.
	ApplyDirectoryChanges(ctx context.Context, changes DirectoryChanges) error

	// PatchIndex updates the given columns and bumps the update timestamp.
	PatchIndex(ctx context.Context, id ContentID, patch IndexPatch) error

	// DeleteIndex removes the record together with its associations (cleaning
	// up orphaned tags), attributes, bookmarks and queue memberships.
	DeleteIndex(ctx context.Context, id ContentID) error

	// GetIndexTags returns the tags associated with one record.
	GetIndexTags(ctx context.Context, id ContentID) ([]*TagRecord, error)

	// SetIndexAttribute upserts one extended attribute of a record.
	SetIndexAttribute(ctx context.Context, id ContentID, key, value string) error

	// GetIndexAttributes returns all extended attributes of a record.
	GetIndexAttributes(ctx context.Context, id ContentID) (map[string]string, error)
}

// TagStore manages tag records and their content associations. Every method
// that mutates runs as a single transaction; no partially applied
// association set is ever observable.
type TagStore interface {
	// GetTagRecord returns the record for a (type, value) pair, or (nil, nil).
	GetTagRecord(ctx context.Context, tag FilteringTag) (*TagRecord, error)

	ListTagRecords(ctx context.Context) ([]*TagRecord, error)

	// AssociateTags find-or-creates each tag and inserts one association per
	// (tag, content) pair, ignoring pairs that already exist.
	AssociateTags(ctx context.Context, tags []FilteringTag, ids []ContentID) error

	// ReplaceTags makes tags the full tag set of each given content item.
	// New associations are inserted before stale ones are deleted, so no item
	// transits through an empty tag set. Returns the distinct tags that lost
	// associations, so the caller can re-evaluate them for orphan cleanup.
	ReplaceTags(ctx context.Context, ids []ContentID, tags []FilteringTag) ([]FilteringTag, error)

	// ModifyTags inserts the currently-missing ensure tags and deletes the
	// currently-present remove tags per content item (minimal diff).
	ModifyTags(ctx context.Context, ids []ContentID, ensure, remove []FilteringTag) error

	// RemoveTagAssociations deletes the tag's associations. A nil ids slice
	// removes them all; otherwise the delete is narrowed to the given items.
	RemoveTagAssociations(ctx context.Context, tag FilteringTag, ids []ContentID) error

	// RenameTag updates the (type, value) columns of old in place, keeping
	// its id, so existing associations follow implicitly. If a record for
	// newTag already exists the rename degrades to consolidation.
	RenameTag(ctx context.Context, oldTag, newTag FilteringTag) error

	// RenameTagFor repoints only the associations of the given content items
	// from old to new (created if needed), deleting old if orphaned.
	RenameTagFor(ctx context.Context, oldTag, newTag FilteringTag, ids []ContentID) error

	// ConsolidateTag repoints every association of from onto into, collapsing
	// duplicates, then deletes from if orphaned. from == into is a no-op.
	ConsolidateTag(ctx context.Context, from, into FilteringTag) error

	// DeleteTagIfUnused removes the tag record when it has no associations
	// left. Reports whether a record was deleted.
	DeleteTagIfUnused(ctx context.Context, tag FilteringTag) (bool, error)
}

// QueryStore executes parameterized index queries.
type QueryStore interface {
	// QueryIndexInfos returns the records matching params, joined with their
	// tag summaries, filtered, sorted and paged per params.
	QueryIndexInfos(ctx context.Context, params RequestParams) ([]*IndexInfo, error)
}

// BookmarkStore persists bookmarks, unique per content id.
type BookmarkStore interface {
	// FindOrCreateBookmark returns the existing bookmark for the content id
	// or inserts the given one.
	FindOrCreateBookmark(ctx context.Context, bookmark *BookmarkRecord) (*BookmarkRecord, error)

	GetBookmarkForContent(ctx context.Context, id ContentID) (*BookmarkRecord, error)
	DeleteBookmark(ctx context.Context, bookmarkID string) error
	DeleteBookmarksForContent(ctx context.Context, id ContentID) error
	ListBookmarks(ctx context.Context) ([]*BookmarkRecord, error)
}

// QueueStore persists named, ordered work queues of content items.
type QueueStore interface {
	// CreateQueue inserts a new queue. Returns ErrAlreadyExists when the
	// name is taken.
	CreateQueue(ctx context.Context, queue *QueueRecord) error

	// GetQueue returns the queue with the given name, or (nil, nil).
	GetQueue(ctx context.Context, name string) (*QueueRecord, error)

	ListQueues(ctx context.Context) ([]*QueueRecord, error)

	// AppendQueueItem adds an item at the end of its queue, assigning the
	// next position.
	AppendQueueItem(ctx context.Context, item *QueueItemRecord) error

	// MarkQueueItemCompleted flags one item as done.
	MarkQueueItemCompleted(ctx context.Context, itemID string) error

	// ListQueueItems returns a queue's items in insertion order.
	ListQueueItems(ctx context.Context, queueID string) ([]*QueueItemRecord, error)
}

// SavedQueryStore persists named query parameter snapshots.
type SavedQueryStore interface {
	// InsertSavedQuery creates a saved query. Returns ErrAlreadyExists when
	// the name is taken.
	InsertSavedQuery(ctx context.Context, query *SavedQueryRecord) error

	// GetSavedQuery returns the saved query with the given name, or (nil, nil).
	GetSavedQuery(ctx context.Context, name string) (*SavedQueryRecord, error)

	// UpdateSavedQueryParams replaces the stored params and bumps UpdatedAt.
	UpdateSavedQueryParams(ctx context.Context, name string, params RequestParams) error

	// RenameSavedQuery changes the query's name and bumps UpdatedAt.
	RenameSavedQuery(ctx context.Context, oldName, newName string) error

	// DeleteSavedQuery removes the query. Returns ErrNotFound when missing.
	DeleteSavedQuery(ctx context.Context, name string) error

	ListSavedQueries(ctx context.Context) ([]*SavedQueryRecord, error)
}

// Database is the full relational store contract, grouped by component.
type Database interface {
	IndexStore
	TagStore
	QueryStore
	BookmarkStore
	QueueStore
	SavedQueryStore

	// Snapshot writes a complete copy of the database to destPath.
	Snapshot(destPath string) error

	// Close closes the underlying connection.
	Close() error
}

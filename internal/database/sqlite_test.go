package database

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"indx-go/internal/indx"
)

// fixedNow is the timestamp every test clock starts at.
var fixedNow = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// testClock returns a fixed time and can be advanced by hand.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: fixedNow}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// testIDGen returns sequential ids: "id-1", "id-2", ...
type testIDGen struct {
	mu      sync.Mutex
	counter int
}

func (g *testIDGen) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("id-%d", g.counter)
}

// newTestDB creates a new in-memory database with migrations applied.
func newTestDB(t *testing.T) *SQLiteDatabase {
	t.Helper()

	db, err := NewSQLiteDatabase(":memory:", newTestClock(), &testIDGen{}, Options{})
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}

	if err := db.RunMigrations(); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// contentID builds a deterministic valid id for test fixtures.
func contentID(n int) indx.ContentID {
	return indx.ContentID(fmt.Sprintf("filename:%032x", n))
}

// seedIndex inserts one index record directly.
func seedIndex(t *testing.T, db *SQLiteDatabase, id indx.ContentID, name, location, contentType string) {
	t.Helper()
	seedIndexAt(t, db, id, name, location, contentType, fixedNow)
}

func seedIndexAt(t *testing.T, db *SQLiteDatabase, id indx.ContentID, name, location, contentType string, createdAt time.Time) {
	t.Helper()
	err := db.ApplyDirectoryChanges(context.Background(), indx.DirectoryChanges{
		Add: []indx.NewIndex{{
			Record: indx.IndexRecord{
				ID:         id,
				Name:       name,
				Location:   location,
				Type:       contentType,
				Visibility: indx.VisibilityNormal,
				CreatedAt:  createdAt,
				UpdatedAt:  createdAt,
			},
		}},
	})
	if err != nil {
		t.Fatalf("seeding index %s: %v", id, err)
	}
}

func tagsOf(t *testing.T, db *SQLiteDatabase, id indx.ContentID) []string {
	t.Helper()
	records, err := db.GetIndexTags(context.Background(), id)
	if err != nil {
		t.Fatalf("GetIndexTags(%s): %v", id, err)
	}
	var tags []string
	for _, rec := range records {
		tags = append(tags, rec.Tag().String())
	}
	return tags
}

func TestSQLiteDatabase_GetIndex(t *testing.T) {
	t.Run("returns nil when not found", func(t *testing.T) {
		db := newTestDB(t)

		rec, err := db.GetIndex(context.Background(), contentID(1))
		if err != nil {
			t.Fatalf("GetIndex() error = %v", err)
		}
		if rec != nil {
			t.Errorf("GetIndex() = %+v, want nil", rec)
		}
	})

	t.Run("returns seeded record", func(t *testing.T) {
		db := newTestDB(t)
		seedIndex(t, db, contentID(1), "song.mp3", "/media", "audio")

		rec, err := db.GetIndex(context.Background(), contentID(1))
		if err != nil {
			t.Fatalf("GetIndex() error = %v", err)
		}
		if rec == nil {
			t.Fatal("GetIndex() = nil, want record")
		}
		if rec.Name != "song.mp3" || rec.Location != "/media" || rec.Type != "audio" {
			t.Errorf("GetIndex() = %+v", rec)
		}
		if rec.Visibility != indx.VisibilityNormal {
			t.Errorf("Visibility = %q, want normal", rec.Visibility)
		}
	})
}

func TestSQLiteDatabase_GetIndexesByLocation(t *testing.T) {
	db := newTestDB(t)
	seedIndex(t, db, contentID(1), "b.mp3", "/media", "audio")
	seedIndex(t, db, contentID(2), "a.mp3", "/media", "audio")
	seedIndex(t, db, contentID(3), "c.mp3", "/other", "audio")

	records, err := db.GetIndexesByLocation(context.Background(), "/media")
	if err != nil {
		t.Fatalf("GetIndexesByLocation() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	// Ordered by name.
	if records[0].Name != "a.mp3" || records[1].Name != "b.mp3" {
		t.Errorf("order = %s, %s", records[0].Name, records[1].Name)
	}
}

func TestSQLiteDatabase_ApplyDirectoryChanges(t *testing.T) {
	ctx := context.Background()

	t.Run("adds with seeded tags", func(t *testing.T) {
		db := newTestDB(t)
		err := db.ApplyDirectoryChanges(ctx, indx.DirectoryChanges{
			Add: []indx.NewIndex{{
				Record: indx.IndexRecord{
					ID: contentID(1), Name: "song [live].mp3", Location: "/media",
					Type: "audio", Visibility: indx.VisibilityNormal,
					CreatedAt: fixedNow, UpdatedAt: fixedNow,
				},
				Tags: []indx.FilteringTag{{Type: indx.TagTypeTag, Value: "live"}},
			}},
		})
		if err != nil {
			t.Fatalf("ApplyDirectoryChanges() error = %v", err)
		}

		got := tagsOf(t, db, contentID(1))
		if len(got) != 1 || got[0] != "tag|live" {
			t.Errorf("tags = %v, want [tag|live]", got)
		}
	})

	t.Run("relocates", func(t *testing.T) {
		db := newTestDB(t)
		seedIndex(t, db, contentID(1), "song.mp3", "/media", "audio")

		err := db.ApplyDirectoryChanges(ctx, indx.DirectoryChanges{
			Relocate: []indx.Relocation{{ID: contentID(1), NewLocation: "/archive"}},
		})
		if err != nil {
			t.Fatalf("ApplyDirectoryChanges() error = %v", err)
		}

		rec, err := db.GetIndex(ctx, contentID(1))
		if err != nil {
			t.Fatal(err)
		}
		if rec.Location != "/archive" {
			t.Errorf("Location = %q, want /archive", rec.Location)
		}
	})

	t.Run("relocating missing record fails and rolls back", func(t *testing.T) {
		db := newTestDB(t)
		err := db.ApplyDirectoryChanges(ctx, indx.DirectoryChanges{
			Add: []indx.NewIndex{{
				Record: indx.IndexRecord{
					ID: contentID(1), Name: "song.mp3", Location: "/media",
					Type: "audio", Visibility: indx.VisibilityNormal,
					CreatedAt: fixedNow, UpdatedAt: fixedNow,
				},
			}},
			Relocate: []indx.Relocation{{ID: contentID(9), NewLocation: "/archive"}},
		})
		if err == nil {
			t.Fatal("ApplyDirectoryChanges() expected error")
		}

		// The add in the same batch must not have been committed.
		rec, err := db.GetIndex(ctx, contentID(1))
		if err != nil {
			t.Fatal(err)
		}
		if rec != nil {
			t.Error("partial batch was committed")
		}
	})

	t.Run("removes with cleanup", func(t *testing.T) {
		db := newTestDB(t)
		seedIndex(t, db, contentID(1), "song.mp3", "/media", "audio")
		if err := db.AssociateTags(ctx, []indx.FilteringTag{{Type: indx.TagTypeTag, Value: "solo"}}, []indx.ContentID{contentID(1)}); err != nil {
			t.Fatal(err)
		}

		err := db.ApplyDirectoryChanges(ctx, indx.DirectoryChanges{Remove: []indx.ContentID{contentID(1)}})
		if err != nil {
			t.Fatalf("ApplyDirectoryChanges() error = %v", err)
		}

		if rec, _ := db.GetIndex(ctx, contentID(1)); rec != nil {
			t.Error("record still present after remove")
		}
		// The tag had no other associations, so it is gone too.
		tag, err := db.GetTagRecord(ctx, indx.FilteringTag{Type: indx.TagTypeTag, Value: "solo"})
		if err != nil {
			t.Fatal(err)
		}
		if tag != nil {
			t.Error("orphaned tag survived record removal")
		}
	})
}

func TestSQLiteDatabase_PatchIndex(t *testing.T) {
	ctx := context.Background()

	t.Run("patches given fields and bumps updated_at", func(t *testing.T) {
		db := newTestDB(t)
		seedIndex(t, db, contentID(1), "old.mp3", "/media", "audio")
		db.clock.(*testClock).Advance(time.Hour)

		newName := "new.mp3"
		hidden := indx.VisibilityHidden
		err := db.PatchIndex(ctx, contentID(1), indx.IndexPatch{Name: &newName, Visibility: &hidden})
		if err != nil {
			t.Fatalf("PatchIndex() error = %v", err)
		}

		rec, err := db.GetIndex(ctx, contentID(1))
		if err != nil {
			t.Fatal(err)
		}
		if rec.Name != "new.mp3" || rec.Visibility != indx.VisibilityHidden {
			t.Errorf("patched record = %+v", rec)
		}
		if rec.Location != "/media" {
			t.Errorf("Location changed to %q", rec.Location)
		}
		if !rec.UpdatedAt.After(rec.CreatedAt) {
			t.Errorf("UpdatedAt %v not after CreatedAt %v", rec.UpdatedAt, rec.CreatedAt)
		}
	})

	t.Run("missing record", func(t *testing.T) {
		db := newTestDB(t)
		name := "x"
		err := db.PatchIndex(ctx, contentID(9), indx.IndexPatch{Name: &name})
		if err == nil {
			t.Fatal("PatchIndex() expected error")
		}
	})
}

func TestSQLiteDatabase_Attributes(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedIndex(t, db, contentID(1), "song.mp3", "/media", "audio")

	if err := db.SetIndexAttribute(ctx, contentID(1), "bitrate", "320"); err != nil {
		t.Fatalf("SetIndexAttribute() error = %v", err)
	}
	// Upsert replaces.
	if err := db.SetIndexAttribute(ctx, contentID(1), "bitrate", "256"); err != nil {
		t.Fatalf("SetIndexAttribute() error = %v", err)
	}
	if err := db.SetIndexAttribute(ctx, contentID(1), "codec", "mp3"); err != nil {
		t.Fatalf("SetIndexAttribute() error = %v", err)
	}

	attrs, err := db.GetIndexAttributes(ctx, contentID(1))
	if err != nil {
		t.Fatalf("GetIndexAttributes() error = %v", err)
	}
	if len(attrs) != 2 || attrs["bitrate"] != "256" || attrs["codec"] != "mp3" {
		t.Errorf("attrs = %v", attrs)
	}
}

func TestSQLiteDatabase_Snapshot(t *testing.T) {
	db := newTestDB(t)
	seedIndex(t, db, contentID(1), "song.mp3", "/media", "audio")

	dest := t.TempDir() + "/snapshot.db"
	if err := db.Snapshot(dest); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	copyDB, err := NewSQLiteDatabase(dest, nil, nil, Options{})
	if err != nil {
		t.Fatalf("opening snapshot: %v", err)
	}
	defer copyDB.Close()

	rec, err := copyDB.GetIndex(context.Background(), contentID(1))
	if err != nil {
		t.Fatalf("GetIndex() on snapshot error = %v", err)
	}
	if rec == nil || rec.Name != "song.mp3" {
		t.Errorf("snapshot record = %+v", rec)
	}
}

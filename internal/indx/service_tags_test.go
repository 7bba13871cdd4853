package indx_test

import (
	"context"
	"errors"
	"testing"

	"indx-go/internal/indx"
)

func tagStrings(t *testing.T, svc *indx.Service) []string {
	t.Helper()
	records, err := svc.ListTags(context.Background())
	if err != nil {
		t.Fatalf("ListTags() error = %v", err)
	}
	var tags []string
	for _, rec := range records {
		tags = append(tags, rec.Tag().String())
	}
	return tags
}

func hasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}
	return false
}

func TestService_AssociateTags(t *testing.T) {
	ctx := context.Background()

	t.Run("attaches tags", func(t *testing.T) {
		f := newFixture(t, indx.ServiceOptions{})
		ids := f.seed(t, "/media", "a.mp3", "b.mp3")

		err := f.svc.AssociateTags(ctx,
			[]indx.FilteringTag{{Type: indx.TagTypeTag, Value: "jazz"}}, ids)
		if err != nil {
			t.Fatalf("AssociateTags() error = %v", err)
		}

		for _, id := range ids {
			info, err := f.svc.GetIndexInfo(ctx, id)
			if err != nil {
				t.Fatal(err)
			}
			if len(info.Tags) != 1 || info.Tags[0].String() != "tag|jazz" {
				t.Errorf("tags of %s = %v", id, info.Tags)
			}
		}
	})

	t.Run("rejects bad input", func(t *testing.T) {
		f := newFixture(t, indx.ServiceOptions{})
		ids := f.seed(t, "/media", "a.mp3")

		cases := map[string]error{
			"no tags": f.svc.AssociateTags(ctx, nil, ids),
			"no ids": f.svc.AssociateTags(ctx,
				[]indx.FilteringTag{{Type: indx.TagTypeTag, Value: "x"}}, nil),
			"unknown type": f.svc.AssociateTags(ctx,
				[]indx.FilteringTag{{Type: "colour", Value: "blue"}}, ids),
			"empty value": f.svc.AssociateTags(ctx,
				[]indx.FilteringTag{{Type: indx.TagTypeTag, Value: ""}}, ids),
			"malformed date": f.svc.AssociateTags(ctx,
				[]indx.FilteringTag{{Type: indx.TagTypeCreatedOn, Value: "yesterday"}}, ids),
		}
		for name, err := range cases {
			if !errors.Is(err, indx.ErrInvalidParameter) {
				t.Errorf("%s: error = %v, want ErrInvalidParameter", name, err)
			}
		}
	})
}

func TestService_ReplaceTags(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, indx.ServiceOptions{})
	ids := f.seed(t, "/media", "a.mp3")

	old := indx.FilteringTag{Type: indx.TagTypeTag, Value: "old"}
	if err := f.svc.AssociateTags(ctx, []indx.FilteringTag{old}, ids); err != nil {
		t.Fatal(err)
	}

	err := f.svc.ReplaceTags(ctx, ids, []indx.FilteringTag{{Type: indx.TagTypeTag, Value: "new"}})
	if err != nil {
		t.Fatalf("ReplaceTags() error = %v", err)
	}

	info, err := f.svc.GetIndexInfo(ctx, ids[0])
	if err != nil {
		t.Fatal(err)
	}
	if len(info.Tags) != 1 || info.Tags[0].String() != "tag|new" {
		t.Errorf("tags = %v, want [tag|new]", info.Tags)
	}

	// The replaced tag had no other associations and is gone entirely.
	tags := tagStrings(t, f.svc)
	if hasTag(tags, "tag|old") {
		t.Errorf("tags = %v, orphaned tag|old survived", tags)
	}
}

func TestService_ModifyTags(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, indx.ServiceOptions{})
	ids := f.seed(t, "/media", "a.mp3")

	keep := indx.FilteringTag{Type: indx.TagTypeTag, Value: "keep"}
	drop := indx.FilteringTag{Type: indx.TagTypeTag, Value: "drop"}
	if err := f.svc.AssociateTags(ctx, []indx.FilteringTag{keep, drop}, ids); err != nil {
		t.Fatal(err)
	}

	add := indx.FilteringTag{Type: indx.TagTypeArtist, Value: "holst"}
	if err := f.svc.ModifyTags(ctx, ids, []indx.FilteringTag{add}, []indx.FilteringTag{drop}); err != nil {
		t.Fatalf("ModifyTags() error = %v", err)
	}

	info, err := f.svc.GetIndexInfo(ctx, ids[0])
	if err != nil {
		t.Fatal(err)
	}
	if len(info.Tags) != 2 {
		t.Fatalf("tags = %v, want keep and holst", info.Tags)
	}

	tags := tagStrings(t, f.svc)
	if hasTag(tags, "tag|drop") {
		t.Errorf("tags = %v, orphaned tag|drop survived", tags)
	}
}

func TestService_RemoveTag(t *testing.T) {
	ctx := context.Background()
	jazz := indx.FilteringTag{Type: indx.TagTypeTag, Value: "jazz"}

	t.Run("scope must have exactly one selector", func(t *testing.T) {
		f := newFixture(t, indx.ServiceOptions{})

		err := f.svc.RemoveTag(ctx, jazz, indx.RemovalScope{})
		if !errors.Is(err, indx.ErrInvalidParameter) {
			t.Errorf("empty scope error = %v, want ErrInvalidParameter", err)
		}

		err = f.svc.RemoveTag(ctx, jazz, indx.RemovalScope{
			All:        true,
			ContentIDs: []indx.ContentID{testContentID(1)},
		})
		if !errors.Is(err, indx.ErrInvalidParameter) {
			t.Errorf("double scope error = %v, want ErrInvalidParameter", err)
		}
	})

	t.Run("everywhere", func(t *testing.T) {
		f := newFixture(t, indx.ServiceOptions{})
		ids := f.seed(t, "/media", "a.mp3", "b.mp3")
		if err := f.svc.AssociateTags(ctx, []indx.FilteringTag{jazz}, ids); err != nil {
			t.Fatal(err)
		}

		if err := f.svc.RemoveTag(ctx, jazz, indx.RemovalScope{All: true}); err != nil {
			t.Fatalf("RemoveTag() error = %v", err)
		}

		if tags := tagStrings(t, f.svc); hasTag(tags, "tag|jazz") {
			t.Errorf("tags = %v, tag|jazz survived full removal", tags)
		}
	})

	t.Run("by id list keeps other associations", func(t *testing.T) {
		f := newFixture(t, indx.ServiceOptions{})
		ids := f.seed(t, "/media", "a.mp3", "b.mp3")
		if err := f.svc.AssociateTags(ctx, []indx.FilteringTag{jazz}, ids); err != nil {
			t.Fatal(err)
		}

		err := f.svc.RemoveTag(ctx, jazz, indx.RemovalScope{ContentIDs: ids[:1]})
		if err != nil {
			t.Fatalf("RemoveTag() error = %v", err)
		}

		info, err := f.svc.GetIndexInfo(ctx, ids[0])
		if err != nil {
			t.Fatal(err)
		}
		if len(info.Tags) != 0 {
			t.Errorf("tags of removed item = %v", info.Tags)
		}
		if tags := tagStrings(t, f.svc); !hasTag(tags, "tag|jazz") {
			t.Errorf("tags = %v, tag with live association was deleted", tags)
		}
	})

	t.Run("by query", func(t *testing.T) {
		f := newFixture(t, indx.ServiceOptions{})
		ids := f.seed(t, "/media", "a.mp3")
		other := f.seed(t, "/other", "b.mp3")
		all := append(append([]indx.ContentID{}, ids...), other...)
		if err := f.svc.AssociateTags(ctx, []indx.FilteringTag{jazz}, all); err != nil {
			t.Fatal(err)
		}

		err := f.svc.RemoveTag(ctx, jazz, indx.RemovalScope{
			Matching: &indx.RequestParams{Root: "/media"},
		})
		if err != nil {
			t.Fatalf("RemoveTag() error = %v", err)
		}

		info, err := f.svc.GetIndexInfo(ctx, ids[0])
		if err != nil {
			t.Fatal(err)
		}
		if len(info.Tags) != 0 {
			t.Errorf("tags of matched item = %v", info.Tags)
		}
		info, err = f.svc.GetIndexInfo(ctx, other[0])
		if err != nil {
			t.Fatal(err)
		}
		if len(info.Tags) != 1 {
			t.Errorf("tags of unmatched item = %v, want tag|jazz kept", info.Tags)
		}
	})

	t.Run("empty query match is a no-op", func(t *testing.T) {
		f := newFixture(t, indx.ServiceOptions{})
		ids := f.seed(t, "/media", "a.mp3")
		if err := f.svc.AssociateTags(ctx, []indx.FilteringTag{jazz}, ids); err != nil {
			t.Fatal(err)
		}

		err := f.svc.RemoveTag(ctx, jazz, indx.RemovalScope{
			Matching: &indx.RequestParams{Root: "/empty"},
		})
		if err != nil {
			t.Fatalf("RemoveTag() error = %v", err)
		}
		if tags := tagStrings(t, f.svc); !hasTag(tags, "tag|jazz") {
			t.Errorf("tags = %v, tag removed despite empty match", tags)
		}
	})
}

func TestService_RenameTag(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, indx.ServiceOptions{})
	ids := f.seed(t, "/media", "a.mp3")

	old := indx.FilteringTag{Type: indx.TagTypeTag, Value: "jaz"}
	if err := f.svc.AssociateTags(ctx, []indx.FilteringTag{old}, ids); err != nil {
		t.Fatal(err)
	}

	renamed := indx.FilteringTag{Type: indx.TagTypeTag, Value: "jazz"}
	if err := f.svc.RenameTag(ctx, old, renamed); err != nil {
		t.Fatalf("RenameTag() error = %v", err)
	}

	tags := tagStrings(t, f.svc)
	if hasTag(tags, "tag|jaz") || !hasTag(tags, "tag|jazz") {
		t.Errorf("tags = %v, want tag|jazz only", tags)
	}

	// Renaming a tag to itself changes nothing, even when it does not exist.
	ghost := indx.FilteringTag{Type: indx.TagTypeTag, Value: "ghost"}
	if err := f.svc.RenameTag(ctx, ghost, ghost); err != nil {
		t.Errorf("self rename error = %v", err)
	}

	err := f.svc.RenameTag(ctx, ghost, indx.FilteringTag{Type: indx.TagTypeTag, Value: "other"})
	if !errors.Is(err, indx.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestService_RenameTagFor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, indx.ServiceOptions{})
	ids := f.seed(t, "/media", "a.mp3", "b.mp3")

	old := indx.FilteringTag{Type: indx.TagTypeTag, Value: "old"}
	if err := f.svc.AssociateTags(ctx, []indx.FilteringTag{old}, ids); err != nil {
		t.Fatal(err)
	}

	renamed := indx.FilteringTag{Type: indx.TagTypeTag, Value: "new"}
	if err := f.svc.RenameTagFor(ctx, old, renamed, ids[:1]); err != nil {
		t.Fatalf("RenameTagFor() error = %v", err)
	}

	first, err := f.svc.GetIndexInfo(ctx, ids[0])
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Tags) != 1 || first.Tags[0].String() != "tag|new" {
		t.Errorf("tags of renamed item = %v", first.Tags)
	}
	second, err := f.svc.GetIndexInfo(ctx, ids[1])
	if err != nil {
		t.Fatal(err)
	}
	if len(second.Tags) != 1 || second.Tags[0].String() != "tag|old" {
		t.Errorf("tags of other item = %v", second.Tags)
	}
}

func TestService_ConsolidateTag(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, indx.ServiceOptions{})
	ids := f.seed(t, "/media", "a.mp3", "b.mp3")

	jaz := indx.FilteringTag{Type: indx.TagTypeTag, Value: "jaz"}
	jazz := indx.FilteringTag{Type: indx.TagTypeTag, Value: "jazz"}
	if err := f.svc.AssociateTags(ctx, []indx.FilteringTag{jaz}, ids[:1]); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.AssociateTags(ctx, []indx.FilteringTag{jazz}, ids); err != nil {
		t.Fatal(err)
	}

	if err := f.svc.ConsolidateTag(ctx, jaz, jazz); err != nil {
		t.Fatalf("ConsolidateTag() error = %v", err)
	}

	tags := tagStrings(t, f.svc)
	if hasTag(tags, "tag|jaz") {
		t.Errorf("tags = %v, consolidated tag survived", tags)
	}
	info, err := f.svc.GetIndexInfo(ctx, ids[0])
	if err != nil {
		t.Fatal(err)
	}
	if len(info.Tags) != 1 || info.Tags[0].String() != "tag|jazz" {
		t.Errorf("tags = %v, want [tag|jazz]", info.Tags)
	}
}

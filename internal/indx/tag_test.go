package indx

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  FilteringTag
	}{
		{"plain tag", "tag|blue", FilteringTag{Type: TagTypeTag, Value: "blue"}},
		{"artist tag", "artist|miles davis", FilteringTag{Type: TagTypeArtist, Value: "miles davis"}},
		{"date tag", "createdOn|2024-03-01", FilteringTag{Type: TagTypeCreatedOn, Value: "2024-03-01"}},
		{"no separator becomes plain tag", "blue", FilteringTag{Type: TagTypeTag, Value: "blue"}},
		{"unknown type becomes plain tag", "colour|blue", FilteringTag{Type: TagTypeTag, Value: "colour|blue"}},
		{"value with separator", "tag|a|b", FilteringTag{Type: TagTypeTag, Value: "a|b"}},
		{"empty value", "tag|", FilteringTag{Type: TagTypeTag, Value: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTag(tt.input)
			if got != tt.want {
				t.Errorf("ParseTag(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFilteringTag_StringRoundTrip(t *testing.T) {
	tags := []FilteringTag{
		{Type: TagTypeTag, Value: "blue"},
		{Type: TagTypeOwner, Value: "alex"},
		{Type: TagTypeCreatedAfter, Value: "2023-12-31"},
		{Type: TagTypeQueue, Value: "listen-later"},
	}
	for _, tag := range tags {
		if got := ParseTag(tag.String()); got != tag {
			t.Errorf("ParseTag(%q) = %+v, want %+v", tag.String(), got, tag)
		}
	}
}

func TestFilteringTag_JSON(t *testing.T) {
	tag := FilteringTag{Type: TagTypeArtist, Value: "holst"}

	data, err := json.Marshal(tag)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `"artist|holst"` {
		t.Errorf("Marshal() = %s, want %q", data, "artist|holst")
	}

	var got FilteringTag
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got != tag {
		t.Errorf("round trip = %+v, want %+v", got, tag)
	}
}

func TestTagType_Domain(t *testing.T) {
	tests := []struct {
		tagType TagType
		want    TagDomain
	}{
		{TagTypeTag, DomainDescriptive},
		{TagTypeRelated, DomainDescriptive},
		{TagTypeArtist, DomainAttribution},
		{TagTypeOwner, DomainAttribution},
		{TagTypeCreatedOn, DomainCreation},
		{TagTypeQueue, DomainQueue},
		{TagType("bogus"), DomainUnlabeled},
	}
	for _, tt := range tests {
		if got := tt.tagType.Domain(); got != tt.want {
			t.Errorf("%q.Domain() = %q, want %q", tt.tagType, got, tt.want)
		}
	}
}

func TestBoundedDate_Range(t *testing.T) {
	date := time.Date(2024, 3, 15, 13, 45, 0, 0, time.UTC)
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	next := day.Add(24 * time.Hour)

	tests := []struct {
		bound DateBound
		want  DateRange
	}{
		{BoundBefore, DateRange{End: day}},
		{BoundOnOrBefore, DateRange{End: next}},
		{BoundOn, DateRange{Start: day, End: next}},
		{BoundOnOrAfter, DateRange{Start: day}},
		{BoundAfter, DateRange{Start: next}},
	}

	for _, tt := range tests {
		t.Run(string(tt.bound), func(t *testing.T) {
			got := BoundedDate{Date: date, Bound: tt.bound}.Range()
			if !got.Start.Equal(tt.want.Start) || !got.End.Equal(tt.want.End) {
				t.Errorf("Range() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFilteringTag_Date(t *testing.T) {
	t.Run("date-bound tag", func(t *testing.T) {
		tag := FilteringTag{Type: TagTypeCreatedOnBefore, Value: "2024-03-15"}
		bd, err := tag.Date()
		if err != nil {
			t.Fatalf("Date() error = %v", err)
		}
		if bd.Bound != BoundOnOrBefore {
			t.Errorf("Bound = %q, want %q", bd.Bound, BoundOnOrBefore)
		}
		if !bd.Date.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("Date = %v", bd.Date)
		}
	})

	t.Run("plain tag carries no date", func(t *testing.T) {
		tag := FilteringTag{Type: TagTypeTag, Value: "2024-03-15"}
		if _, err := tag.Date(); err == nil {
			t.Error("Date() expected error for plain tag")
		}
	})

	t.Run("malformed date value", func(t *testing.T) {
		tag := FilteringTag{Type: TagTypeCreatedOn, Value: "15/03/2024"}
		if _, err := tag.Date(); err == nil {
			t.Error("Date() expected error for malformed value")
		}
	})
}

func TestNewDateTag(t *testing.T) {
	bd := BoundedDate{
		Date:  time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC),
		Bound: BoundAfter,
	}
	tag := NewDateTag(bd)
	if tag.Type != TagTypeCreatedAfter {
		t.Errorf("Type = %q, want %q", tag.Type, TagTypeCreatedAfter)
	}
	if tag.Value != "2024-03-15" {
		t.Errorf("Value = %q, want %q", tag.Value, "2024-03-15")
	}
}

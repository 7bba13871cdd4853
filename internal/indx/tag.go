package indx

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TagType is the closed taxonomy of tag types.
type TagType string

const (
	TagTypeTag             TagType = "tag"
	TagTypeArtist          TagType = "artist"
	TagTypeCreator         TagType = "creator"
	TagTypeContributor     TagType = "contributor"
	TagTypeOwner           TagType = "owner"
	TagTypeQueue           TagType = "queue"
	TagTypeRelated         TagType = "related"
	TagTypeCreatedBefore   TagType = "createdBefore"
	TagTypeCreatedOnBefore TagType = "createdOnOrBefore"
	TagTypeCreatedOn       TagType = "createdOn"
	TagTypeCreatedOnAfter  TagType = "createdOnOrAfter"
	TagTypeCreatedAfter    TagType = "createdAfter"
)

// TagDomain groups tag types for display and icon purposes.
type TagDomain string

const (
	DomainDescriptive TagDomain = "descriptive"
	DomainAttribution TagDomain = "attribution"
	DomainCreation    TagDomain = "creation"
	DomainQueue       TagDomain = "queue"
	DomainUnlabeled   TagDomain = "unlabeled"
)

// Valid reports whether t is part of the closed taxonomy.
func (t TagType) Valid() bool {
	switch t {
	case TagTypeTag, TagTypeArtist, TagTypeCreator, TagTypeContributor,
		TagTypeOwner, TagTypeQueue, TagTypeRelated,
		TagTypeCreatedBefore, TagTypeCreatedOnBefore, TagTypeCreatedOn,
		TagTypeCreatedOnAfter, TagTypeCreatedAfter:
		return true
	}
	return false
}

// Domain returns the display grouping for the tag type.
func (t TagType) Domain() TagDomain {
	switch t {
	case TagTypeTag, TagTypeRelated:
		return DomainDescriptive
	case TagTypeArtist, TagTypeCreator, TagTypeContributor, TagTypeOwner:
		return DomainAttribution
	case TagTypeCreatedBefore, TagTypeCreatedOnBefore, TagTypeCreatedOn,
		TagTypeCreatedOnAfter, TagTypeCreatedAfter:
		return DomainCreation
	case TagTypeQueue:
		return DomainQueue
	}
	return DomainUnlabeled
}

// IsDateBound reports whether the tag type carries a creation-date bound.
func (t TagType) IsDateBound() bool {
	return t.Domain() == DomainCreation
}

// DateBound is the comparison kind attached to a BoundedDate.
type DateBound string

const (
	BoundBefore     DateBound = "before"
	BoundOnOrBefore DateBound = "onOrBefore"
	BoundOn         DateBound = "on"
	BoundOnOrAfter  DateBound = "onOrAfter"
	BoundAfter      DateBound = "after"
)

// BoundedDate is a calendar date plus a comparison bound. It is only
// meaningful for the created* tag types.
type BoundedDate struct {
	Date  time.Time
	Bound DateBound
}

// DateRange is a half-open interval [Start, End). A zero Start or End means
// unbounded on that side.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Range converts the bounded date to the half-open interval it matches.
func (b BoundedDate) Range() DateRange {
	day := b.Date.UTC().Truncate(24 * time.Hour)
	next := day.Add(24 * time.Hour)
	switch b.Bound {
	case BoundBefore:
		return DateRange{End: day}
	case BoundOnOrBefore:
		return DateRange{End: next}
	case BoundOn:
		return DateRange{Start: day, End: next}
	case BoundOnOrAfter:
		return DateRange{Start: day}
	case BoundAfter:
		return DateRange{Start: next}
	}
	return DateRange{}
}

// tagTypeForBound maps a date bound to its created* tag type.
func tagTypeForBound(b DateBound) TagType {
	switch b {
	case BoundBefore:
		return TagTypeCreatedBefore
	case BoundOnOrBefore:
		return TagTypeCreatedOnBefore
	case BoundOn:
		return TagTypeCreatedOn
	case BoundOnOrAfter:
		return TagTypeCreatedOnAfter
	case BoundAfter:
		return TagTypeCreatedAfter
	}
	return TagTypeCreatedOn
}

// boundForTagType is the inverse of tagTypeForBound.
func boundForTagType(t TagType) DateBound {
	switch t {
	case TagTypeCreatedBefore:
		return BoundBefore
	case TagTypeCreatedOnBefore:
		return BoundOnOrBefore
	case TagTypeCreatedOn:
		return BoundOn
	case TagTypeCreatedOnAfter:
		return BoundOnOrAfter
	case TagTypeCreatedAfter:
		return BoundAfter
	}
	return BoundOn
}

const tagDateLayout = "2006-01-02"

// FilteringTag is a typed tag value. For created* types the value is the
// date in 2006-01-02 form; the bound kind is carried by the type itself.
type FilteringTag struct {
	Type  TagType
	Value string
}

// NewTag builds a plain descriptive tag.
func NewTag(value string) FilteringTag {
	return FilteringTag{Type: TagTypeTag, Value: value}
}

// NewDateTag builds a creation-date tag from a bounded date.
func NewDateTag(b BoundedDate) FilteringTag {
	return FilteringTag{
		Type:  tagTypeForBound(b.Bound),
		Value: b.Date.UTC().Format(tagDateLayout),
	}
}

// ParseTag decodes the canonical "<type>|<value>" form. A string without a
// separator, or with an unknown type prefix, is treated as a plain tag whose
// value is the whole string.
func ParseTag(s string) FilteringTag {
	typ, val, ok := strings.Cut(s, "|")
	if !ok {
		return FilteringTag{Type: TagTypeTag, Value: s}
	}
	t := TagType(typ)
	if !t.Valid() {
		return FilteringTag{Type: TagTypeTag, Value: s}
	}
	return FilteringTag{Type: t, Value: val}
}

// String returns the canonical "<type>|<value>" form.
func (t FilteringTag) String() string {
	return string(t.Type) + "|" + t.Value
}

// Date returns the bounded date carried by a created* tag.
func (t FilteringTag) Date() (BoundedDate, error) {
	if !t.Type.IsDateBound() {
		return BoundedDate{}, fmt.Errorf("tag type %q carries no date: %w", t.Type, ErrInvalidParameter)
	}
	d, err := time.ParseInLocation(tagDateLayout, t.Value, time.UTC)
	if err != nil {
		return BoundedDate{}, fmt.Errorf("malformed tag date %q: %w", t.Value, ErrInvalidParameter)
	}
	return BoundedDate{Date: d, Bound: boundForTagType(t.Type)}, nil
}

// MarshalJSON encodes the tag as its canonical string.
func (t FilteringTag) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes the canonical string form.
func (t *FilteringTag) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseTag(s)
	return nil
}

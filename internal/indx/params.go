package indx

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// Operator combines multiple filters of the same kind.
type Operator string

const (
	OperatorAnd Operator = "and"
	OperatorOr  Operator = "or"
)

// SortBy selects the result ordering.
type SortBy string

const (
	SortByName        SortBy = "name"
	SortByNameDesc    SortBy = "name_desc"
	SortByCreated     SortBy = "created"
	SortByCreatedDesc SortBy = "created_desc"
	SortByUpdated     SortBy = "updated"
	SortByUpdatedDesc SortBy = "updated_desc"
)

// TagFilter is one tag predicate of a query. Exclude negates the match.
type TagFilter struct {
	Tag     FilteringTag `json:"tag"`
	Exclude bool         `json:"exclude,omitempty"`
}

// RequestParams describes one index query: a root directory, list mode,
// content-type filter, tag and name predicates, visibility, sort order and
// pagination. It is the sole query input contract for callers.
type RequestParams struct {
	Root         string      `json:"root"`
	Recursive    bool        `json:"recursive,omitempty"`
	Cached       bool        `json:"cached,omitempty"`
	Types        []string    `json:"types,omitempty"`
	Tags         []TagFilter `json:"tags,omitempty"`
	TagOperator  Operator    `json:"tag_operator,omitempty"`
	Names        []string    `json:"names,omitempty"`
	NameOperator Operator    `json:"name_operator,omitempty"`
	Visibility   Visibility  `json:"visibility,omitempty"`
	SortBy       SortBy      `json:"sort_by,omitempty"`
	Limit        int         `json:"limit,omitempty"`
	Offset       int         `json:"offset,omitempty"`
}

// Validate rejects parameter combinations the query layer cannot execute.
func (p RequestParams) Validate() error {
	if p.Root == "" {
		return fmt.Errorf("query root is required: %w", ErrInvalidParameter)
	}
	if p.Visibility == VisibilityLost {
		return fmt.Errorf("querying lost content is not supported: %w", ErrInvalidParameter)
	}
	if p.Limit < 0 || p.Offset < 0 {
		return fmt.Errorf("negative limit/offset: %w", ErrInvalidParameter)
	}
	return nil
}

// canonical returns a copy with set-valued fields sorted, defaults filled in,
// and pagination stripped. Two params differing only in page window or cache
// mode share a fingerprint, because the cache stores the unpaged result set.
func (p RequestParams) canonical() RequestParams {
	c := p
	c.Cached = false
	c.Limit = 0
	c.Offset = 0
	if c.TagOperator == "" {
		c.TagOperator = OperatorAnd
	}
	if c.NameOperator == "" {
		c.NameOperator = OperatorAnd
	}
	if c.Visibility == "" {
		c.Visibility = VisibilityNormal
	}
	if c.SortBy == "" {
		c.SortBy = SortByName
	}

	c.Types = append([]string(nil), p.Types...)
	sort.Strings(c.Types)
	c.Names = append([]string(nil), p.Names...)
	sort.Strings(c.Names)
	c.Tags = append([]TagFilter(nil), p.Tags...)
	sort.Slice(c.Tags, func(i, j int) bool {
		if c.Tags[i].Tag.String() != c.Tags[j].Tag.String() {
			return c.Tags[i].Tag.String() < c.Tags[j].Tag.String()
		}
		return !c.Tags[i].Exclude && c.Tags[j].Exclude
	})
	return c
}

// Fingerprint returns the deterministic cache key for the params: the SHA-256
// of the canonical JSON serialization.
func (p RequestParams) Fingerprint() string {
	data, err := json.Marshal(p.canonical())
	if err != nil {
		// RequestParams contains only marshalable fields; this cannot happen.
		panic(fmt.Sprintf("marshaling request params: %v", err))
	}
	sum := sha256.Sum256(data)
	return "query:" + hex.EncodeToString(sum[:])
}

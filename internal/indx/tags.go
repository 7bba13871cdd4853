package indx

import (
	"context"
	"fmt"
)

// RemovalScope selects which associations of a tag a removal touches:
// everything, the items matching a query, or an explicit id list. Exactly
// one selector must be set.
type RemovalScope struct {
	All        bool
	Matching   *RequestParams
	ContentIDs []ContentID
}

// Validate rejects empty and ambiguous scopes.
func (sc RemovalScope) Validate() error {
	set := 0
	if sc.All {
		set++
	}
	if sc.Matching != nil {
		set++
	}
	if len(sc.ContentIDs) > 0 {
		set++
	}
	if set != 1 {
		return fmt.Errorf("removal scope needs exactly one selector: %w", ErrInvalidParameter)
	}
	return nil
}

func validateTags(tags []FilteringTag) error {
	for _, tag := range tags {
		if !tag.Type.Valid() {
			return fmt.Errorf("unknown tag type %q: %w", tag.Type, ErrInvalidParameter)
		}
		if tag.Value == "" {
			return fmt.Errorf("empty tag value: %w", ErrInvalidParameter)
		}
		if tag.Type.IsDateBound() {
			if _, err := tag.Date(); err != nil {
				return err
			}
		}
	}
	return nil
}

// AssociateTags attaches each tag to each content item, creating tag records
// as needed. Re-associating an existing pair is a no-op.
func (s *Service) AssociateTags(ctx context.Context, tags []FilteringTag, ids []ContentID) error {
	if len(tags) == 0 || len(ids) == 0 {
		return fmt.Errorf("tags and content ids are required: %w", ErrInvalidParameter)
	}
	if err := validateTags(tags); err != nil {
		return err
	}
	if err := s.db.AssociateTags(ctx, tags, ids); err != nil {
		return &OperationError{Op: "tag", Err: err}
	}
	return nil
}

// ReplaceTags makes tags the complete tag set of each content item, then
// cleans up any tags the replacement orphaned.
func (s *Service) ReplaceTags(ctx context.Context, ids []ContentID, tags []FilteringTag) error {
	if len(ids) == 0 {
		return fmt.Errorf("content ids are required: %w", ErrInvalidParameter)
	}
	if err := validateTags(tags); err != nil {
		return err
	}
	removed, err := s.db.ReplaceTags(ctx, ids, tags)
	if err != nil {
		return &OperationError{Op: "retag", Err: err}
	}
	s.cleanupOrphans(ctx, removed)
	return nil
}

// ModifyTags applies the minimal diff: attaches the missing ensure tags and
// detaches the present remove tags, then cleans up orphans among the removed.
func (s *Service) ModifyTags(ctx context.Context, ids []ContentID, ensure, remove []FilteringTag) error {
	if len(ids) == 0 {
		return fmt.Errorf("content ids are required: %w", ErrInvalidParameter)
	}
	if err := validateTags(ensure); err != nil {
		return err
	}
	if err := validateTags(remove); err != nil {
		return err
	}
	if err := s.db.ModifyTags(ctx, ids, ensure, remove); err != nil {
		return &OperationError{Op: "retag", Err: err}
	}
	s.cleanupOrphans(ctx, remove)
	return nil
}

// RemoveTag detaches a tag within the given scope, then deletes the tag
// record if nothing references it anymore.
func (s *Service) RemoveTag(ctx context.Context, tag FilteringTag, scope RemovalScope) error {
	if err := validateTags([]FilteringTag{tag}); err != nil {
		return err
	}
	if err := scope.Validate(); err != nil {
		return err
	}

	var ids []ContentID
	switch {
	case scope.All:
		ids = nil
	case scope.Matching != nil:
		infos, err := s.queryDirect(ctx, *scope.Matching)
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			return nil
		}
		for _, info := range infos {
			ids = append(ids, info.ID)
		}
	default:
		ids = scope.ContentIDs
	}

	if err := s.db.RemoveTagAssociations(ctx, tag, ids); err != nil {
		return &OperationError{Op: "untag", Err: err}
	}
	s.cleanupOrphans(ctx, []FilteringTag{tag})
	return nil
}

// RenameTag gives a tag a new identity across every association. When the
// target tag already exists the two merge.
func (s *Service) RenameTag(ctx context.Context, oldTag, newTag FilteringTag) error {
	if err := validateTags([]FilteringTag{oldTag, newTag}); err != nil {
		return err
	}
	if oldTag == newTag {
		return nil
	}
	if err := s.db.RenameTag(ctx, oldTag, newTag); err != nil {
		return &OperationError{Op: "rename-tag", Err: err}
	}
	return nil
}

// RenameTagFor renames a tag only on the given content items; other items
// keep the old tag.
func (s *Service) RenameTagFor(ctx context.Context, oldTag, newTag FilteringTag, ids []ContentID) error {
	if err := validateTags([]FilteringTag{oldTag, newTag}); err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("content ids are required: %w", ErrInvalidParameter)
	}
	if oldTag == newTag {
		return nil
	}
	if err := s.db.RenameTagFor(ctx, oldTag, newTag, ids); err != nil {
		return &OperationError{Op: "rename-tag", Err: err}
	}
	return nil
}

// ConsolidateTag merges one tag into another, collapsing duplicate
// associations. Consolidating a tag into itself is a no-op.
func (s *Service) ConsolidateTag(ctx context.Context, from, into FilteringTag) error {
	if err := validateTags([]FilteringTag{from, into}); err != nil {
		return err
	}
	if err := s.db.ConsolidateTag(ctx, from, into); err != nil {
		return &OperationError{Op: "consolidate-tag", Err: err}
	}
	return nil
}

// ListTags returns all tag records, ordered by type then value.
func (s *Service) ListTags(ctx context.Context) ([]*TagRecord, error) {
	return s.db.ListTagRecords(ctx)
}

// cleanupOrphans deletes tag records left without associations. Failures are
// logged, not returned: the orphan stays until the next removal touching it
// re-evaluates.
func (s *Service) cleanupOrphans(ctx context.Context, tags []FilteringTag) {
	for _, tag := range tags {
		deleted, err := s.db.DeleteTagIfUnused(ctx, tag)
		if err != nil {
			s.logger.Warn("orphaned tag cleanup failed", "tag", tag.String(), "error", err)
			continue
		}
		if deleted {
			s.logger.Debug("deleted orphaned tag", "tag", tag.String())
		}
	}
}

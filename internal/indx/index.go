package indx

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// DirectoryDiff summarizes one indexing run: what the run added, recognized
// as relocated, and removed. Duplicates lists the subset of Added whose files
// carried the content id of an already-indexed record, meaning a copy got its
// own identity. Unchanged records are counted only.
type DirectoryDiff struct {
	Added      []ContentID
	Relocated  []ContentID
	Removed    []ContentID
	Duplicates []ContentID
	Unchanged  int
}

// IndexDirectory reconciles the records stored for path with the directory's
// current contents. New files get records (with tags seeded from their
// filenames), files recognized by their stored content id are relocated to
// this directory, and records whose files are gone are removed. Runs for the
// same directory are serialized; the write set is applied in one transaction.
func (s *Service) IndexDirectory(ctx context.Context, path string) (*DirectoryDiff, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	lock := s.lockDir(absPath)
	lock.Lock()
	defer lock.Unlock()

	entries, err := s.files.ListDirectory(absPath)
	if err != nil {
		return nil, &OperationError{Op: "index", Err: err}
	}
	records, err := s.db.GetIndexesByLocation(ctx, absPath)
	if err != nil {
		return nil, &OperationError{Op: "index", Err: err}
	}

	byName := make(map[string]*IndexRecord, len(records))
	for _, rec := range records {
		byName[rec.Name] = rec
	}

	var changes DirectoryChanges
	diff := &DirectoryDiff{}
	seen := make(map[string]bool, len(entries))

	for _, entry := range entries {
		seen[entry.Name] = true
		if _, ok := byName[entry.Name]; ok {
			diff.Unchanged++
			continue
		}

		filePath := filepath.Join(absPath, entry.Name)
		xid, err := s.xids.RetrieveXID(filePath)
		if err != nil {
			return nil, &OperationError{Op: "index", Err: err}
		}

		var duplicate bool
		if xid != "" {
			known, err := s.db.GetIndex(ctx, xid)
			if err != nil {
				return nil, &OperationError{Op: "index", Err: err}
			}
			if known != nil && known.Location != absPath && known.Name == entry.Name {
				// The file moved here from another indexed directory.
				changes.Relocate = append(changes.Relocate, Relocation{ID: known.ID, NewLocation: absPath})
				diff.Relocated = append(diff.Relocated, known.ID)
				continue
			}
			// A copy of known content, or a renamed file: indexed as new
			// content with its own identity.
			duplicate = known != nil
		}

		now := s.clock.Now().UTC()
		id := NewFilenameContentID(filePath, entry.CreatedAt)
		changes.Add = append(changes.Add, NewIndex{
			Record: IndexRecord{
				ID:         id,
				Name:       entry.Name,
				Location:   absPath,
				Type:       entry.Type,
				Visibility: VisibilityNormal,
				CreatedAt:  entry.CreatedAt.UTC(),
				UpdatedAt:  now,
			},
			Tags: TagsFromFilename(entry.Name),
		})
		diff.Added = append(diff.Added, id)
		if duplicate {
			diff.Duplicates = append(diff.Duplicates, id)
		}

		if err := s.xids.StoreXID(filePath, id); err != nil {
			// The record still gets created; the file just loses move
			// tracking until the attribute can be written.
			s.logger.Warn("storing content id attribute failed", "path", filePath, "error", err)
		}
	}

	for _, rec := range records {
		if !seen[rec.Name] {
			changes.Remove = append(changes.Remove, rec.ID)
			diff.Removed = append(diff.Removed, rec.ID)
		}
	}

	if err := s.db.ApplyDirectoryChanges(ctx, changes); err != nil {
		return nil, &OperationError{Op: "index", Err: err}
	}

	s.logger.Info("indexed directory", "path", absPath,
		"added", len(diff.Added), "relocated", len(diff.Relocated),
		"removed", len(diff.Removed), "duplicates", len(diff.Duplicates),
		"unchanged", diff.Unchanged)
	return diff, nil
}

// TagsFromFilename extracts seed tags from bracketed filename segments.
// Segments wrapped in [...] or {...} hold comma-separated tag strings in the
// canonical "<type>|<value>" form; bare strings become plain tags.
func TagsFromFilename(name string) []FilteringTag {
	base := strings.TrimSuffix(name, filepath.Ext(name))

	var tags []FilteringTag
	segset := map[FilteringTag]bool{}
	for _, br := range []struct{ open, close string }{{"[", "]"}, {"{", "}"}} {
		rest := base
		for {
			start := strings.Index(rest, br.open)
			if start < 0 {
				break
			}
			end := strings.Index(rest[start:], br.close)
			if end < 0 {
				break
			}
			segment := rest[start+1 : start+end]
			rest = rest[start+end+1:]

			for _, raw := range strings.Split(segment, ",") {
				raw = strings.TrimSpace(raw)
				if raw == "" {
					continue
				}
				tag := ParseTag(raw)
				if !segset[tag] {
					segset[tag] = true
					tags = append(tags, tag)
				}
			}
		}
	}
	return tags
}

// GetIndex returns one record, or (nil, nil) when the id is unknown.
func (s *Service) GetIndex(ctx context.Context, id ContentID) (*IndexRecord, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("content id %q: %w", id, ErrInvalidParameter)
	}
	return s.db.GetIndex(ctx, id)
}

// GetIndexInfo returns one record joined with its tag summary.
func (s *Service) GetIndexInfo(ctx context.Context, id ContentID) (*IndexInfo, error) {
	rec, err := s.GetIndex(ctx, id)
	if err != nil || rec == nil {
		return nil, err
	}
	tagRecords, err := s.db.GetIndexTags(ctx, id)
	if err != nil {
		return nil, err
	}
	info := &IndexInfo{IndexRecord: *rec}
	for _, tr := range tagRecords {
		info.Tags = append(info.Tags, tr.Tag())
	}
	return info, nil
}

// RenameContent renames the file on disk, then patches the record. The file
// operation runs first so a failed rename leaves both sides untouched.
func (s *Service) RenameContent(ctx context.Context, id ContentID, newName string) error {
	if newName == "" {
		return fmt.Errorf("new name is required: %w", ErrInvalidParameter)
	}
	rec, err := s.db.GetIndex(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("content %s: %w", id, ErrNotFound)
	}
	if rec.Name == newName {
		return nil
	}

	if err := s.files.Rename(rec.Location, rec.Name, newName); err != nil {
		return &OperationError{Op: "rename", Err: err}
	}
	if err := s.db.PatchIndex(ctx, id, IndexPatch{Name: &newName}); err != nil {
		// Disk and record now disagree; the next index run reconciles.
		return &OperationError{Op: "rename", Err: err}
	}
	return nil
}

// MoveContent moves the file to another directory, then patches the record.
func (s *Service) MoveContent(ctx context.Context, id ContentID, newLocation string) error {
	if newLocation == "" {
		return fmt.Errorf("new location is required: %w", ErrInvalidParameter)
	}
	absLocation, err := filepath.Abs(newLocation)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", newLocation, err)
	}
	rec, err := s.db.GetIndex(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("content %s: %w", id, ErrNotFound)
	}
	if rec.Location == absLocation {
		return nil
	}

	if err := s.files.Move(rec.Name, rec.Location, absLocation); err != nil {
		return &OperationError{Op: "move", Err: err}
	}
	if err := s.db.PatchIndex(ctx, id, IndexPatch{Location: &absLocation}); err != nil {
		return &OperationError{Op: "move", Err: err}
	}
	return nil
}

// SetVisibility changes the display state of a record. Content cannot be set
// to lost by hand; that state is reserved for reconciliation.
func (s *Service) SetVisibility(ctx context.Context, id ContentID, v Visibility) error {
	switch v {
	case VisibilityNormal, VisibilityHidden:
	default:
		return fmt.Errorf("visibility %q cannot be assigned: %w", v, ErrInvalidParameter)
	}
	if err := s.db.PatchIndex(ctx, id, IndexPatch{Visibility: &v}); err != nil {
		return err
	}
	return nil
}

// DeleteContent removes the record and everything referencing it. The file
// itself is left on disk.
func (s *Service) DeleteContent(ctx context.Context, id ContentID) error {
	if err := s.db.DeleteIndex(ctx, id); err != nil {
		return &OperationError{Op: "delete", Err: err}
	}
	return nil
}

// SetAttribute upserts one extended attribute of a record.
func (s *Service) SetAttribute(ctx context.Context, id ContentID, key, value string) error {
	if key == "" {
		return fmt.Errorf("attribute key is required: %w", ErrInvalidParameter)
	}
	rec, err := s.db.GetIndex(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("content %s: %w", id, ErrNotFound)
	}
	return s.db.SetIndexAttribute(ctx, id, key, value)
}

// GetAttributes returns all extended attributes of a record.
func (s *Service) GetAttributes(ctx context.Context, id ContentID) (map[string]string, error) {
	return s.db.GetIndexAttributes(ctx, id)
}

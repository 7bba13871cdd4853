package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"indx-go/internal/indx"
)

// OSFileManager is the real filesystem implementation of indx.FileManager.
// Directory listings are filtered down to the configured content types and
// ignore patterns; everything else is invisible to the indexer.
type OSFileManager struct {
	// types maps lowercase file extensions (without the dot) to content-type
	// identifiers.
	types  map[string]string
	ignore *IgnoreMatcher
}

// NewOSFileManager creates a file manager that recognizes the given
// extension-to-content-type mapping and skips entries matching the ignore
// patterns.
func NewOSFileManager(types map[string]string, ignorePatterns []string) *OSFileManager {
	normalized := make(map[string]string, len(types))
	for ext, contentType := range types {
		normalized[strings.ToLower(strings.TrimPrefix(ext, "."))] = contentType
	}
	return &OSFileManager{
		types:  normalized,
		ignore: NewIgnoreMatcher(ignorePatterns),
	}
}

// ListDirectory returns the supported entries directly inside path.
func (m *OSFileManager) ListDirectory(path string) ([]indx.DirEntry, error) {
	osEntries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", path, err)
	}

	// Per-directory ignore file augments the configured patterns.
	ignore := m.ignore
	if patterns, err := ParseIgnoreFile(filepath.Join(path, ignoreFileName)); err != nil {
		return nil, err
	} else if len(patterns) > 0 {
		ignore = m.ignore.With(patterns)
	}

	var entries []indx.DirEntry
	for _, entry := range osEntries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if ignore.Match(name) {
			continue
		}
		contentType, ok := m.contentTypeFor(name)
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
		entries = append(entries, indx.DirEntry{
			Name:      name,
			Type:      contentType,
			CreatedAt: createdTime(info),
		})
	}
	return entries, nil
}

func (m *OSFileManager) contentTypeFor(name string) (string, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return "", false
	}
	contentType, ok := m.types[ext]
	return contentType, ok
}

// Rename renames a file within its directory. The destination is checked
// first so an existing file is never clobbered.
func (m *OSFileManager) Rename(location, oldName, newName string) error {
	oldPath := filepath.Join(location, oldName)
	newPath := filepath.Join(location, newName)

	if _, err := os.Lstat(newPath); err == nil {
		return fmt.Errorf("rename target %s: %w", newPath, indx.ErrAlreadyExists)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking rename target: %w", err)
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("renaming %s: %w", oldPath, err)
	}
	return nil
}

// Move moves a file between directories, keeping its name.
func (m *OSFileManager) Move(name, oldLocation, newLocation string) error {
	oldPath := filepath.Join(oldLocation, name)
	newPath := filepath.Join(newLocation, name)

	if _, err := os.Lstat(newPath); err == nil {
		return fmt.Errorf("move target %s: %w", newPath, indx.ErrAlreadyExists)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking move target: %w", err)
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("moving %s: %w", oldPath, err)
	}
	return nil
}

// Compile-time check that OSFileManager implements indx.FileManager
var _ indx.FileManager = (*OSFileManager)(nil)

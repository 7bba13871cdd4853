package testutil

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"indx-go/internal/indx"
)

// MockFile represents a file in the mock filesystem.
type MockFile struct {
	ContentType string
	CreatedAt   time.Time
}

// MockFileManager is an in-memory filesystem for testing, keyed by absolute
// path. Rename and Move enforce the same destination-collision rules as the
// real implementation.
type MockFileManager struct {
	mu    sync.Mutex
	files map[string]*MockFile
}

// NewMockFileManager creates a new mock filesystem.
func NewMockFileManager() *MockFileManager {
	return &MockFileManager{
		files: make(map[string]*MockFile),
	}
}

// AddFile adds a file to the mock filesystem.
func (m *MockFileManager) AddFile(path, contentType string, createdAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = &MockFile{ContentType: contentType, CreatedAt: createdAt}
}

// RemoveFile deletes a file from the mock filesystem.
func (m *MockFileManager) RemoveFile(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
}

// Exists reports whether a file is present at path.
func (m *MockFileManager) Exists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok
}

func (m *MockFileManager) ListDirectory(path string) ([]indx.DirEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var entries []indx.DirEntry
	for p, f := range m.files {
		if filepath.Dir(p) != path {
			continue
		}
		entries = append(entries, indx.DirEntry{
			Name:      filepath.Base(p),
			Type:      f.ContentType,
			CreatedAt: f.CreatedAt,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (m *MockFileManager) Rename(location, oldName, newName string) error {
	return m.relink(filepath.Join(location, oldName), filepath.Join(location, newName))
}

func (m *MockFileManager) Move(name, oldLocation, newLocation string) error {
	return m.relink(filepath.Join(oldLocation, name), filepath.Join(newLocation, name))
}

func (m *MockFileManager) relink(oldPath, newPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.files[oldPath]
	if !ok {
		return fmt.Errorf("file not found: %s", oldPath)
	}
	if _, taken := m.files[newPath]; taken {
		return fmt.Errorf("target %s: %w", newPath, indx.ErrAlreadyExists)
	}
	m.files[newPath] = file
	delete(m.files, oldPath)
	return nil
}

// MockXIDStore keeps content ids in memory, keyed by path.
type MockXIDStore struct {
	mu  sync.Mutex
	ids map[string]indx.ContentID
}

// NewMockXIDStore creates an empty in-memory XIDStore.
func NewMockXIDStore() *MockXIDStore {
	return &MockXIDStore{ids: make(map[string]indx.ContentID)}
}

func (x *MockXIDStore) RetrieveXID(path string) (indx.ContentID, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.ids[path], nil
}

func (x *MockXIDStore) StoreXID(path string, id indx.ContentID) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.ids[path] = id
	return nil
}

// Relink moves a stored id to a new path, mirroring a file move.
func (x *MockXIDStore) Relink(oldPath, newPath string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if id, ok := x.ids[oldPath]; ok {
		x.ids[newPath] = id
		delete(x.ids, oldPath)
	}
}

// Compile-time checks
var (
	_ indx.FileManager = (*MockFileManager)(nil)
	_ indx.XIDStore    = (*MockXIDStore)(nil)
)

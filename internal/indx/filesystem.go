package indx

import "time"

// DirEntry is one supported filesystem entry found in a directory listing.
type DirEntry struct {
	Name      string
	Type      string // content-type identifier derived from the entry
	CreatedAt time.Time
}

// FileManager provides the filesystem operations the index repository needs.
// Implementations filter directory listings down to supported content types
// and signal destination collisions on rename/move with ErrAlreadyExists.
type FileManager interface {
	// ListDirectory returns the supported entries directly inside path.
	ListDirectory(path string) ([]DirEntry, error)

	// Rename renames a file within its directory.
	// Returns ErrAlreadyExists if newName is already taken at location.
	Rename(location, oldName, newName string) error

	// Move moves a file between directories, keeping its name.
	// Returns ErrAlreadyExists if name is already taken at newLocation.
	Move(name, oldLocation, newLocation string) error
}

// XIDStore reads and writes the extended attribute that carries a file's
// content id, so moved or renamed files can be resolved back to their
// records during indexing.
type XIDStore interface {
	// RetrieveXID returns the content id stored on the file, or "" if the
	// file carries none.
	RetrieveXID(path string) (ContentID, error)

	// StoreXID writes the content id onto the file.
	StoreXID(path string, id ContentID) error
}

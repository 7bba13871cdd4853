//go:build linux

package fs

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"indx-go/internal/indx"
)

// xattrName is the extended attribute carrying a file's content id.
const xattrName = "user.indx.content_id"

// XattrXIDStore stores content ids in extended attributes, so files keep
// their identity across renames and moves.
type XattrXIDStore struct{}

// NewXattrXIDStore creates an XIDStore backed by filesystem extended
// attributes.
func NewXattrXIDStore() *XattrXIDStore {
	return &XattrXIDStore{}
}

// RetrieveXID returns the content id stored on the file, or "" if the file
// carries none.
func (x *XattrXIDStore) RetrieveXID(path string) (indx.ContentID, error) {
	buf := make([]byte, 128)
	n, err := unix.Getxattr(path, xattrName, buf)
	if errors.Is(err, unix.ENODATA) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading xattr of %s: %w", path, err)
	}

	id, err := indx.ParseContentID(string(buf[:n]))
	if err != nil {
		// A foreign or corrupted attribute value is the same as no id.
		return "", nil
	}
	return id, nil
}

// StoreXID writes the content id onto the file.
func (x *XattrXIDStore) StoreXID(path string, id indx.ContentID) error {
	if err := unix.Setxattr(path, xattrName, []byte(id.String()), 0); err != nil {
		return fmt.Errorf("writing xattr of %s: %w", path, err)
	}
	return nil
}

var _ indx.XIDStore = (*XattrXIDStore)(nil)

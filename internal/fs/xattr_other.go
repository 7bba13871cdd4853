//go:build !linux

package fs

import "indx-go/internal/indx"

// XattrXIDStore degrades to a no-op on platforms without the Linux xattr
// syscalls: relocated files are re-indexed as new content instead of being
// recognized.
type XattrXIDStore struct{}

func NewXattrXIDStore() *XattrXIDStore {
	return &XattrXIDStore{}
}

func (x *XattrXIDStore) RetrieveXID(path string) (indx.ContentID, error) {
	return "", nil
}

func (x *XattrXIDStore) StoreXID(path string, id indx.ContentID) error {
	return nil
}

var _ indx.XIDStore = (*XattrXIDStore)(nil)

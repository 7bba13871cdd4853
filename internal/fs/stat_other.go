//go:build !unix

package fs

import (
	"io/fs"
	"time"
)

// createdTime falls back to the modification time on platforms without
// accessible stat data.
func createdTime(info fs.FileInfo) time.Time {
	return info.ModTime()
}

//go:build unix

package fs

import (
	"io/fs"
	"syscall"
	"time"
)

// createdTime returns the best available creation timestamp for a file.
// Birth time is not available on most Unix filesystems, so the inode change
// time stands in for it.
func createdTime(info fs.FileInfo) time.Time {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime()
	}
	return time.Unix(stat.Ctim.Sec, stat.Ctim.Nsec)
}

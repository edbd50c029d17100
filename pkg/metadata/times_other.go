//go:build !linux

package metadata

import (
	"io/fs"
	"time"
)

// AccessTime falls back to the modification time on platforms where the
// portable stat result carries nothing better.
func AccessTime(info fs.FileInfo) time.Time {
	return info.ModTime()
}

// CreatedTime falls back to the modification time on platforms where the
// portable stat result carries nothing better.
func CreatedTime(info fs.FileInfo) time.Time {
	return info.ModTime()
}

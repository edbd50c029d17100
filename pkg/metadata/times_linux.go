//go:build linux

package metadata

import (
	"io/fs"
	"syscall"
	"time"
)

// AccessTime returns the entry's last access time from the stat info.
func AccessTime(info fs.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Atim.Sec, st.Atim.Nsec)
	}
	return info.ModTime()
}

// CreatedTime returns the closest thing the platform offers to a creation
// time. Linux stat carries no birth time, so the status-change time
// stands in for it.
func CreatedTime(info fs.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Ctim.Sec, st.Ctim.Nsec)
	}
	return info.ModTime()
}

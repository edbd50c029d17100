// Package paths resolves the on-disk locations sortnbackup uses for its
// own state: the resume journal and its lock file. Locations follow the
// XDG base directory spec and can be overridden per run.
package paths

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const appDirName = "sortnbackup"

// StateDir returns the directory holding run state (journal, lock).
func StateDir() string {
	return filepath.Join(xdg.StateHome, appDirName)
}

// JournalFile returns the resume journal path. An explicit override wins;
// otherwise the journal lives in the XDG state dir.
func JournalFile(override string) string {
	if override != "" {
		return override
	}
	return filepath.Join(StateDir(), "journal")
}

// JournalLockFile returns the lock file guarding the journal against
// concurrent runs.
func JournalLockFile(journalPath string) string {
	return journalPath + ".lock"
}

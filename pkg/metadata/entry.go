// Package metadata holds the per-entry cache of expensive facts: stat
// results and decoded image metadata. Every predicate and path element
// evaluated for an entry shares the same cached attempt, so an image is
// decoded at most once per run no matter how many rules look at it.
package metadata

import "path/filepath"

// Entry identifies one file or directory encountered during traversal.
// Identity is (Source, RelPath); AbsPath is carried so readers never have
// to re-join against the source root.
type Entry struct {
	Source  string // source id from configuration
	RelPath string // path relative to the source root
	AbsPath string // source root joined with RelPath
}

// NewEntry builds an Entry for rel under the given source root.
func NewEntry(source, root, rel string) Entry {
	return Entry{
		Source:  source,
		RelPath: rel,
		AbsPath: filepath.Join(root, rel),
	}
}

// Name returns the final path component, extension included.
func (e Entry) Name() string {
	return filepath.Base(e.RelPath)
}

// Ext returns the extension without the leading dot, or "" if none.
func (e Entry) Ext() string {
	ext := filepath.Ext(e.RelPath)
	if ext == "" {
		return ""
	}
	return ext[1:]
}

func (e Entry) key() string {
	return e.Source + "\x00" + filepath.ToSlash(e.RelPath)
}

package metadata

import (
	"io/fs"
	"os"
	"sync"
	"sync/atomic"

	"github.com/arthur-debert/sortnbackup/pkg/errors"
)

// Cache memoizes per-entry facts for one run. Safe for concurrent use:
// lookups for different entries never block each other, and each fact is
// computed at most once per entry even under concurrent access.
type Cache struct {
	mu    sync.Mutex
	facts map[string]*entryFacts

	decodeAttempts atomic.Int64
	statAttempts   atomic.Int64
}

type entryFacts struct {
	statOnce sync.Once
	info     fs.FileInfo
	statErr  error

	imgOnce sync.Once
	img     *ImageMeta
	imgErr  error
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{facts: make(map[string]*entryFacts)}
}

func (c *Cache) factsFor(e Entry) *entryFacts {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.facts[e.key()]
	if !ok {
		f = &entryFacts{}
		c.facts[e.key()] = f
	}
	return f
}

// Stat returns the entry's stat info, computed once per run.
func (c *Cache) Stat(e Entry) (fs.FileInfo, error) {
	f := c.factsFor(e)
	f.statOnce.Do(func() {
		c.statAttempts.Add(1)
		info, err := os.Stat(e.AbsPath)
		if err != nil {
			f.statErr = errors.Wrapf(err, errors.ErrMetadataStat,
				"stat %s", e.AbsPath)
			return
		}
		f.info = info
	})
	return f.info, f.statErr
}

// Image returns decoded image metadata for the entry, attempting the
// decode at most once per run. A file that does not decode as an image
// yields a cached ErrMetadataDecode on this and every later call.
func (c *Cache) Image(e Entry) (*ImageMeta, error) {
	f := c.factsFor(e)
	f.imgOnce.Do(func() {
		c.decodeAttempts.Add(1)
		f.img, f.imgErr = decodeImage(e.AbsPath)
	})
	return f.img, f.imgErr
}

// DecodeAttempts reports how many image decodes were attempted. Used by
// tests to pin the at-most-once guarantee.
func (c *Cache) DecodeAttempts() int64 {
	return c.decodeAttempts.Load()
}

// StatAttempts reports how many stat calls reached the filesystem.
func (c *Cache) StatAttempts() int64 {
	return c.statAttempts.Load()
}

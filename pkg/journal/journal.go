// Package journal implements the crash-safe resume record: an append-only
// file with one line per fully processed entry. A continued run loads the
// whole journal into a completed-set before traversal and skips everything
// in it; a marker is only ever written after the entry's action durably
// finished, so a crash can at worst repeat work, never lose it.
package journal

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/sortnbackup/pkg/errors"
	"github.com/arthur-debert/sortnbackup/pkg/logging"
	"github.com/arthur-debert/sortnbackup/pkg/paths"
)

const headerPrefix = "# sortnbackup journal v1"

// Key identifies one journaled entry.
type Key struct {
	Source string
	Path   string // relative path, slash-separated
}

// Journal is the durable completed-entry record for one run. Appends are
// serialized; loading happens once at open time.
type Journal struct {
	logger zerolog.Logger
	path   string
	lock   *flock.Flock

	mu   sync.Mutex
	file *os.File
	done map[Key]struct{}
}

// Exists reports whether a journal with recorded entries is present at
// path. Used to decide whether a fresh run needs operator confirmation.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}

// Open opens the journal at path. In continue mode the existing record is
// loaded into the completed-set; otherwise the file is truncated and a
// fresh header written. The journal takes a lock file so two runs can
// never interleave appends.
func Open(path string, cont bool) (*Journal, error) {
	logger := logging.GetLogger("journal")

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrJournalOpen, "creating journal directory")
	}

	lock := flock.New(paths.JournalLockFile(path))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrJournalOpen, "locking %s", path)
	}
	if !locked {
		return nil, errors.Newf(errors.ErrJournalLocked,
			"journal %s is locked by another run", path)
	}

	j := &Journal{
		logger: logger,
		path:   path,
		lock:   lock,
		done:   make(map[Key]struct{}),
	}

	if cont {
		if err := j.load(); err != nil {
			_ = lock.Unlock()
			return nil, err
		}
		j.file, err = os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	} else {
		j.file, err = os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
		if err == nil {
			_, err = fmt.Fprintf(j.file, "%s run=%s\n", headerPrefix, uuid.NewString())
		}
		if err == nil {
			err = j.file.Sync()
		}
	}
	if err != nil {
		_ = lock.Unlock()
		return nil, errors.Wrapf(err, errors.ErrJournalOpen, "opening %s", path)
	}

	logger.Debug().
		Str("path", path).
		Bool("continue", cont).
		Int("completed", len(j.done)).
		Msg("Journal opened")

	return j, nil
}

// load reads the whole journal into the completed-set. Any malformed line
// means the record cannot be trusted for resuming.
func (j *Journal) load() error {
	f, err := os.Open(j.path)
	if os.IsNotExist(err) {
		return nil // nothing recorded yet; continue mode starts empty
	}
	if err != nil {
		return errors.Wrapf(err, errors.ErrJournalOpen, "reading %s", j.path)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		source, path, ok := strings.Cut(line, "\t")
		if !ok {
			return errors.Newf(errors.ErrJournalCorrupt,
				"%s:%d: malformed journal line", j.path, lineNo)
		}
		j.done[Key{Source: unescape(source), Path: unescape(path)}] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, errors.ErrJournalCorrupt, "reading %s", j.path)
	}
	return nil
}

// Done reports whether the entry was already fully processed.
func (j *Journal) Done(k Key) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	_, ok := j.done[k]
	return ok
}

// MarkDone durably records the entry as fully processed. Must be called
// only after the entry's action has finished.
func (j *Journal) MarkDone(k Key) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if _, ok := j.done[k]; ok {
		return nil
	}
	if _, err := fmt.Fprintf(j.file, "%s\t%s\n", escape(k.Source), escape(k.Path)); err != nil {
		return errors.Wrapf(err, errors.ErrJournalWrite, "appending %s/%s", k.Source, k.Path)
	}
	if err := j.file.Sync(); err != nil {
		return errors.Wrapf(err, errors.ErrJournalWrite, "syncing journal")
	}
	j.done[k] = struct{}{}
	return nil
}

// Count returns the number of completed entries on record.
func (j *Journal) Count() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.done)
}

// Close releases the journal file and lock.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	var firstErr error
	if j.file != nil {
		firstErr = j.file.Close()
		j.file = nil
	}
	if err := j.lock.Unlock(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

var escaper = strings.NewReplacer("\\", "\\\\", "\t", "\\t", "\n", "\\n")

func escape(s string) string {
	return escaper.Replace(s)
}

func unescape(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

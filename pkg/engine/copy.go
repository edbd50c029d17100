package engine

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/arthur-debert/sortnbackup/pkg/config"
	"github.com/arthur-debert/sortnbackup/pkg/errors"
	"github.com/arthur-debert/sortnbackup/pkg/metadata"
	"github.com/arthur-debert/sortnbackup/pkg/pathtmpl"
	"github.com/arthur-debert/sortnbackup/pkg/prompt"
)

// copyTo renders the rule's template into a destination under the target
// root and copies the file there.
func (e *Engine) copyTo(entry metadata.Entry, rule config.Rule) error {
	segs, err := pathtmpl.Render(rule.Template, entry, e.cache)
	if err != nil {
		return err
	}
	dst := filepath.Join(append([]string{e.cfg.Targets[rule.Target]}, segs...)...)

	e.recordInstruction(entry, dst)
	if e.dryRun {
		return nil
	}

	info, err := e.cache.Stat(entry)
	if err != nil {
		return err
	}
	return e.copyFile(entry.AbsPath, dst, info)
}

// copyExact replicates the entry under the target root preserving its
// original relative structure. Directories are copied verbatim with no
// per-child dispatching.
func (e *Engine) copyExact(entry metadata.Entry, rule config.Rule, isDir bool) error {
	root := e.cfg.Targets[rule.Target]
	dst := filepath.Join(root, entry.RelPath)

	if !isDir {
		e.recordInstruction(entry, dst)
		if e.dryRun {
			return nil
		}
		info, err := e.cache.Stat(entry)
		if err != nil {
			return err
		}
		return e.copyFile(entry.AbsPath, dst, info)
	}

	return filepath.WalkDir(entry.AbsPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, errors.ErrCopyFailed, "walking %s", p)
		}
		within, relErr := filepath.Rel(entry.AbsPath, p)
		if relErr != nil {
			return errors.Wrapf(relErr, errors.ErrInternal, "relativizing %s", p)
		}
		target := filepath.Join(dst, within)

		if d.IsDir() {
			if e.dryRun {
				return nil
			}
			if mkErr := os.MkdirAll(target, 0755); mkErr != nil {
				return errors.Wrapf(mkErr, errors.ErrDirCreate, "creating %s", target)
			}
			return nil
		}

		e.recordInstruction(metadata.Entry{
			Source:  entry.Source,
			RelPath: filepath.Join(entry.RelPath, within),
			AbsPath: p,
		}, target)
		if e.dryRun {
			return nil
		}
		info, statErr := d.Info()
		if statErr != nil {
			return errors.Wrapf(statErr, errors.ErrMetadataStat, "stat %s", p)
		}
		return e.copyFile(p, target, info)
	})
}

// logFile appends the matched entry's path to a log file rendered through
// the path template engine under the target root.
func (e *Engine) logFile(entry metadata.Entry, rule config.Rule) error {
	segs, err := pathtmpl.Render(rule.Template, entry, e.cache)
	if err != nil {
		return err
	}
	logPath := filepath.Join(append([]string{e.cfg.Targets[rule.Target]}, segs...)...)
	if e.dryRun {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "creating %s", filepath.Dir(logPath))
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, errors.ErrCopyFailed, "opening log file %s", logPath)
	}
	defer func() { _ = f.Close() }()

	line := filepath.ToSlash(entry.RelPath)
	if rule.FullPath {
		line = entry.AbsPath
	}
	if _, err := fmt.Fprintln(f, line); err != nil {
		return errors.Wrapf(err, errors.ErrCopyFailed, "writing log file %s", logPath)
	}
	if err := f.Sync(); err != nil {
		return errors.Wrapf(err, errors.ErrCopyFailed, "syncing log file %s", logPath)
	}

	e.summary.AddLogged()
	return nil
}

// copyFile copies one file, idempotently: a destination that already
// carries the source's size and mtime is taken as this run's own earlier
// (or interrupted) work and left alone. Any other occupant goes through
// the collision policy. Bytes land in a temp file first so a crash never
// leaves a half-written destination in place.
func (e *Engine) copyFile(src, dst string, srcInfo fs.FileInfo) error {
	if dstInfo, err := os.Stat(dst); err == nil {
		if sameShape(srcInfo, dstInfo) {
			e.logger.Debug().Str("dst", dst).Msg("Destination already up to date")
			return nil
		}
		choice, err := e.resolveCollision(src, dst)
		if err != nil {
			return errors.Wrapf(err, errors.ErrDestCollision, "deciding collision for %s", dst)
		}
		switch choice {
		case prompt.CollisionSkip:
			e.logger.Info().Str("src", src).Str("dst", dst).Msg("Collision, skipping")
			return nil
		case prompt.CollisionFail:
			return errors.Newf(errors.ErrDestCollision, "%s already exists", dst)
		case prompt.CollisionRename:
			dst = renameCandidate(dst)
		case prompt.CollisionOverwrite:
			// fall through to the copy
		}
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "creating %s", filepath.Dir(dst))
	}

	tmp := dst + ".part"
	if err := copyBytes(src, tmp); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Chtimes(tmp, time.Now(), srcInfo.ModTime()); err != nil {
		e.logger.Debug().Err(err).Str("dst", dst).Msg("Could not preserve mtime")
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrapf(err, errors.ErrCopyFailed, "moving %s into place", dst)
	}

	e.summary.AddCopied(srcInfo.Size())
	e.logger.Debug().Str("src", src).Str("dst", dst).Int64("bytes", srcInfo.Size()).Msg("Copied")
	return nil
}

func (e *Engine) resolveCollision(src, dst string) (prompt.CollisionChoice, error) {
	policy := e.cfg.Settings.CollisionPolicy
	if policy == config.CollisionAsk || policy == "" {
		return e.prompter.Collision(src, dst)
	}
	return prompt.ParseCollisionChoice(string(policy))
}

func copyBytes(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrCopyFailed, "opening %s", src)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrapf(err, errors.ErrCopyFailed, "creating %s", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return errors.Wrapf(err, errors.ErrCopyFailed, "copying %s", src)
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return errors.Wrapf(err, errors.ErrCopyFailed, "syncing %s", dst)
	}
	if err := out.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrCopyFailed, "closing %s", dst)
	}
	return nil
}

// sameShape decides whether the destination is already a copy of the
// source, using size and mtime. Good enough given copies preserve mtime.
func sameShape(src, dst fs.FileInfo) bool {
	return src.Size() == dst.Size() && src.ModTime().Unix() == dst.ModTime().Unix()
}

// renameCandidate returns the first free "name (n).ext" variant.
func renameCandidate(dst string) string {
	ext := filepath.Ext(dst)
	stem := dst[:len(dst)-len(ext)]
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

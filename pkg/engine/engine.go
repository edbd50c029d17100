// Package engine drives a run: it walks every enabled source, dispatches
// each entry to the first matching file group, executes the group's rule,
// and records completed entries in the resume journal. Per-entry failures
// are diagnostics; only configuration and journal errors abort a run.
package engine

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/sortnbackup/pkg/config"
	"github.com/arthur-debert/sortnbackup/pkg/errors"
	"github.com/arthur-debert/sortnbackup/pkg/filter"
	"github.com/arthur-debert/sortnbackup/pkg/journal"
	"github.com/arthur-debert/sortnbackup/pkg/logging"
	"github.com/arthur-debert/sortnbackup/pkg/metadata"
	"github.com/arthur-debert/sortnbackup/pkg/prompt"
	"github.com/arthur-debert/sortnbackup/pkg/report"
)

// CompletionLog is the engine's view of the resume journal.
type CompletionLog interface {
	Done(k journal.Key) bool
	MarkDone(k journal.Key) error
}

// NullLog records nothing. Used for dry runs and runs without resume
// support.
type NullLog struct{}

func (NullLog) Done(journal.Key) bool      { return false }
func (NullLog) MarkDone(journal.Key) error { return nil }

// CopyInstruction is one planned or executed copy, for index output and
// dry-run listings.
type CopyInstruction struct {
	Source string `yaml:"source"`
	From   string `yaml:"from"`
	To     string `yaml:"to"`
}

// Options configures a run.
type Options struct {
	// DryRun plans copies without touching targets or the journal.
	DryRun bool
}

// Engine executes one run over the configured sources.
type Engine struct {
	cfg      *config.Config
	cache    *metadata.Cache
	eval     *filter.Evaluator
	clog     CompletionLog
	prompter prompt.Prompter
	summary  *report.Summary
	logger   zerolog.Logger
	dryRun   bool

	instrMu sync.Mutex
	instrs  []CopyInstruction
}

// New creates an engine. A nil completion log disables resume bookkeeping.
func New(cfg *config.Config, clog CompletionLog, prompter prompt.Prompter, opts Options) *Engine {
	if clog == nil {
		clog = NullLog{}
	}
	e := &Engine{
		cfg:      cfg,
		cache:    metadata.NewCache(),
		eval:     filter.NewEvaluator(),
		clog:     clog,
		prompter: prompter,
		summary:  report.NewSummary(),
		logger:   logging.GetLogger("engine"),
		dryRun:   opts.DryRun,
	}
	e.eval.Diag = func(en metadata.Entry, pred string, err error) {
		// Files that simply are not images fail the image predicates all
		// the time; the operator only needs to hear about real failures.
		if errors.IsErrorCode(err, errors.ErrMetadataDecode) {
			return
		}
		e.summary.AddDiagnostic(en.Source, en.RelPath, "predicate "+pred, err)
	}
	return e
}

// Summary returns the run counters.
func (e *Engine) Summary() *report.Summary { return e.summary }

// PredicateEvals reports how many predicate leaves were evaluated.
func (e *Engine) PredicateEvals() int64 { return e.eval.PredicateEvals() }

// Planned returns the copy instructions recorded so far, in traversal
// order.
func (e *Engine) Planned() []CopyInstruction {
	e.instrMu.Lock()
	defer e.instrMu.Unlock()
	out := make([]CopyInstruction, len(e.instrs))
	copy(out, e.instrs)
	return out
}

// WriteIndex writes the recorded copy instructions as YAML, mirroring
// what a run did (or, after a dry run, would do).
func (e *Engine) WriteIndex(path string) error {
	data, err := yaml.Marshal(e.Planned())
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "marshaling index")
	}
	return os.WriteFile(path, data, 0644)
}

func (e *Engine) recordInstruction(en metadata.Entry, dst string) {
	e.instrMu.Lock()
	defer e.instrMu.Unlock()
	e.instrs = append(e.instrs, CopyInstruction{
		Source: en.Source,
		From:   en.AbsPath,
		To:     dst,
	})
}

// Run traverses every enabled source in id order. It returns an error
// only for fatal conditions (journal writes, cancellation); everything
// per-entry lands in the summary.
func (e *Engine) Run(ctx context.Context) error {
	ids := make([]string, 0, len(e.cfg.Sources))
	for id := range e.cfg.Sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		src := e.cfg.Sources[id]
		if src.Disabled {
			e.logger.Info().Str("source", id).Msg("Source disabled, skipping")
			continue
		}
		e.logger.Info().Str("source", id).Str("path", src.Path).Msg("Traversing source")
		if _, err := e.walkDir(ctx, id, src, "."); err != nil {
			return err
		}
	}
	return nil
}

// walkDir processes one directory level and reports how many entries in
// the subtree failed. Unreadable directories are diagnostics, not aborts.
// Cancellation is honored between entries only, so the journal stays
// consistent with the filesystem at every stop.
func (e *Engine) walkDir(ctx context.Context, srcID string, src config.Source, relDir string) (int, error) {
	dirAbs := filepath.Join(src.Path, relDir)
	dirents, err := os.ReadDir(dirAbs)
	if err != nil {
		e.diag(srcID, relDir, "read_dir",
			errors.Wrapf(err, errors.ErrMetadataStat, "reading %s", dirAbs))
		return 1, nil
	}

	failed := 0
	for _, d := range dirents {
		if err := ctx.Err(); err != nil {
			return failed, err
		}

		rel := d.Name()
		if relDir != "." {
			rel = filepath.Join(relDir, d.Name())
		}

		if e.excluded(src, rel, d.Name()) {
			e.logger.Debug().Str("source", srcID).Str("path", rel).Msg("Excluded by ignore_paths")
			continue
		}

		n, err := e.processEntry(ctx, srcID, src, rel, d.IsDir())
		failed += n
		if err != nil {
			return failed, err
		}
	}
	return failed, nil
}

// excluded checks the source's ignore_paths: exact name or exact relative
// path, never filter-evaluated.
func (e *Engine) excluded(src config.Source, rel, name string) bool {
	relSlash := filepath.ToSlash(rel)
	for _, p := range src.IgnorePaths {
		if p == name || filepath.ToSlash(filepath.Clean(p)) == relSlash {
			return true
		}
	}
	return false
}

// processEntry dispatches one entry and reports how many entries failed
// under it (the entry itself, or descendants when it traverses).
func (e *Engine) processEntry(ctx context.Context, srcID string, src config.Source, rel string, isDir bool) (int, error) {
	key := journal.Key{Source: srcID, Path: filepath.ToSlash(rel)}
	if e.clog.Done(key) {
		e.summary.AddSkipped()
		return 0, nil
	}

	entry := metadata.NewEntry(srcID, src.Path, rel)
	group := e.findGroup(entry)

	rule := config.Rule{Kind: RuleForUnmatched}
	groupName := "(unmatched)"
	if group != nil {
		rule = group.Rule
		groupName = group.Name
	}

	e.logger.Debug().
		Str("source", srcID).
		Str("path", rel).
		Str("group", groupName).
		Str("rule", rule.Kind.String()).
		Msg("Dispatched entry")

	var entryErr error
	switch rule.Kind {
	case config.RuleIgnore:
		e.summary.AddIgnored()

	case config.RuleTraverse:
		if isDir {
			failed, err := e.walkDir(ctx, srcID, src, rel)
			if err != nil {
				return failed, err
			}
			if failed > 0 {
				// A marker on the directory would let a continued run skip
				// the whole subtree, stranding the failed entries in it.
				return failed, nil
			}
		}
		// Traverse on a file is a configuration no-op.

	case config.RuleCopyTo:
		if isDir {
			entryErr = errors.Newf(errors.ErrCopyFailed,
				"copy_to rule in group %q matched directory %s", groupName, rel)
		} else {
			entryErr = e.copyTo(entry, rule)
		}

	case config.RuleCopyExact:
		entryErr = e.copyExact(entry, rule, isDir)

	case config.RuleLogFile:
		entryErr = e.logFile(entry, rule)
	}

	if entryErr != nil {
		e.diag(srcID, rel, rule.Kind.String(), entryErr)
		return 1, nil // not marked done; a continued run retries it
	}

	if e.dryRun {
		return 0, nil
	}
	return 0, e.clog.MarkDone(key)
}

// RuleForUnmatched is the documented policy for entries no group claims:
// files are ignored, and directories are ignored too, so a configuration
// without a catch-all directory group silently stops traversing
// unmatched subtrees.
const RuleForUnmatched = config.RuleIgnore

// findGroup returns the first group, in configuration order, whose scope
// covers the entry's source and whose filter matches.
func (e *Engine) findGroup(entry metadata.Entry) *config.FileGroup {
	for i := range e.cfg.Groups {
		g := &e.cfg.Groups[i]
		if !g.Scope.Includes(entry.Source) {
			continue
		}
		if e.eval.Matches(g.Filter, entry, e.cache) {
			return g
		}
	}
	return nil
}

func (e *Engine) diag(source, path, step string, err error) {
	e.logger.Warn().
		Str("source", source).
		Str("path", path).
		Str("step", step).
		Err(err).
		Msg("Entry failed, continuing")
	e.summary.AddDiagnostic(source, path, step, err)
}

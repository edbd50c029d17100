package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/sortnbackup/pkg/config"
	"github.com/arthur-debert/sortnbackup/pkg/errors"
	"github.com/arthur-debert/sortnbackup/pkg/filter"
	"github.com/arthur-debert/sortnbackup/pkg/journal"
	"github.com/arthur-debert/sortnbackup/pkg/pathtmpl"
	"github.com/arthur-debert/sortnbackup/pkg/prompt"
	"github.com/arthur-debert/sortnbackup/pkg/testutil"
)

func mustFormat(t *testing.T, s string) *pathtmpl.Format {
	t.Helper()
	f, err := pathtmpl.ParseFormat(s)
	require.NoError(t, err)
	return f
}

func fileNameEl() pathtmpl.Element {
	return pathtmpl.Element{Kind: pathtmpl.ElemFileNameWithExtension}
}

func extEl() pathtmpl.Element {
	return pathtmpl.Element{Kind: pathtmpl.ElemFileExtension}
}

// oneSourceConfig builds a config with a single source and target rooted
// in fresh temp dirs, returning the config plus both roots.
func oneSourceConfig(t *testing.T, groups ...config.FileGroup) (*config.Config, string, string) {
	t.Helper()
	srcRoot := t.TempDir()
	dstRoot := t.TempDir()
	cfg := &config.Config{
		Sources: map[string]config.Source{
			"main": {Path: srcRoot},
		},
		Targets: map[string]string{"backup": dstRoot},
		Groups:  groups,
		Settings: config.Settings{
			FileSizeStyle:   config.SizeBinary,
			CollisionPolicy: config.CollisionFail,
		},
	}
	return cfg, srcRoot, dstRoot
}

func dirsTraverse() config.FileGroup {
	return config.FileGroup{
		Name:   "dirs",
		Filter: filter.Pred(filter.IsDir{}),
		Rule:   config.Rule{Kind: config.RuleTraverse},
	}
}

func run(t *testing.T, cfg *config.Config, clog CompletionLog, opts Options) *Engine {
	t.Helper()
	eng := New(cfg, clog, prompt.Fixed{}, opts)
	require.NoError(t, eng.Run(context.Background()))
	return eng
}

func TestDatedImageLandsUnderDatePath(t *testing.T) {
	datedImages := config.FileGroup{
		Name: "dated images",
		Filter: filter.All(
			filter.Pred(filter.IsFile{}),
			filter.Pred(filter.HasImgDateTime{}),
		),
		Rule: config.Rule{
			Kind:   config.RuleCopyTo,
			Target: "backup",
			Template: pathtmpl.Template{
				pathtmpl.Literal("Images"),
				pathtmpl.FormattedTime(pathtmpl.TimeImage, mustFormat(t, "%Y-%m")),
				pathtmpl.FormattedTime(pathtmpl.TimeImage, mustFormat(t, "%d")),
				fileNameEl(),
			},
		},
	}
	otherImages := config.FileGroup{
		Name: "other images",
		Filter: filter.All(
			filter.Pred(filter.IsFile{}),
			filter.Pred(filter.HasImgMetadata{}),
		),
		Rule: config.Rule{
			Kind:   config.RuleCopyTo,
			Target: "backup",
			Template: pathtmpl.Template{
				pathtmpl.Literal("Thumbnails"),
				extEl(),
				fileNameEl(),
			},
		},
	}

	cfg, srcRoot, dstRoot := oneSourceConfig(t, datedImages, otherImages, dirsTraverse())
	testutil.CreateJPEGWithEXIF(t, srcRoot, "photo.jpg", 400, 300, "2020:01:02 03:04:05")
	testutil.CreatePNG(t, srcRoot, "thumb.png", 50, 50)

	eng := run(t, cfg, nil, Options{})

	assert.True(t, testutil.FileExists(
		filepath.Join(dstRoot, "Images", "2020-01", "02", "photo.jpg")))
	assert.True(t, testutil.FileExists(
		filepath.Join(dstRoot, "Thumbnails", "png", "thumb.png")),
		"an image without a capture time falls through to the next group")
	assert.Equal(t, 2, eng.Summary().Copied)
	assert.Equal(t, 0, eng.Summary().ErrorCount())
}

func TestFirstMatchWins(t *testing.T) {
	first := config.FileGroup{
		Name:   "first",
		Filter: filter.Pred(filter.NewHasExtension([]string{"txt"})),
		Rule: config.Rule{
			Kind:     config.RuleCopyTo,
			Target:   "backup",
			Template: pathtmpl.Template{pathtmpl.Literal("First"), fileNameEl()},
		},
	}
	second := config.FileGroup{
		Name:   "second",
		Filter: filter.CatchAll(),
		Rule: config.Rule{
			Kind:     config.RuleCopyTo,
			Target:   "backup",
			Template: pathtmpl.Template{pathtmpl.Literal("Second"), fileNameEl()},
		},
	}

	cfg, srcRoot, dstRoot := oneSourceConfig(t, first, second)
	testutil.CreateFile(t, srcRoot, "note.txt", "hello")

	run(t, cfg, nil, Options{})

	assert.True(t, testutil.FileExists(filepath.Join(dstRoot, "First", "note.txt")))
	assert.False(t, testutil.FileExists(filepath.Join(dstRoot, "Second", "note.txt")),
		"later groups never see an entry a prior group claimed")
}

func TestExcludedDirIsNeverVisited(t *testing.T) {
	copyAll := config.FileGroup{
		Name:   "all files",
		Filter: filter.Pred(filter.IsFile{}),
		Rule: config.Rule{
			Kind:     config.RuleCopyTo,
			Target:   "backup",
			Template: pathtmpl.Template{fileNameEl()},
		},
	}

	cfg, srcRoot, dstRoot := oneSourceConfig(t, copyAll, dirsTraverse())
	src := cfg.Sources["main"]
	src.IgnorePaths = []string{"cache"}
	cfg.Sources["main"] = src

	testutil.CreateFile(t, srcRoot, "keep.txt", "keep")
	cacheDir := testutil.CreateDir(t, srcRoot, "cache")
	testutil.CreateFile(t, cacheDir, "tmp.dat", "scratch")

	jpath := filepath.Join(t.TempDir(), "journal")
	j, err := journal.Open(jpath, false)
	require.NoError(t, err)
	eng := run(t, cfg, j, Options{})
	require.NoError(t, j.Close())

	assert.True(t, testutil.FileExists(filepath.Join(dstRoot, "keep.txt")))
	assert.False(t, testutil.FileExists(filepath.Join(dstRoot, "tmp.dat")))
	assert.Equal(t, 1, eng.Summary().Copied)

	// Excluded entries leave no trace in the journal either.
	j2, err := journal.Open(jpath, true)
	require.NoError(t, err)
	defer func() { _ = j2.Close() }()
	assert.True(t, j2.Done(journal.Key{Source: "main", Path: "keep.txt"}))
	assert.False(t, j2.Done(journal.Key{Source: "main", Path: "cache"}))
	assert.False(t, j2.Done(journal.Key{Source: "main", Path: "cache/tmp.dat"}))
}

func TestResumeSkipsCompletedEntries(t *testing.T) {
	copyAll := config.FileGroup{
		Name:   "all files",
		Filter: filter.Pred(filter.IsFile{}),
		Rule: config.Rule{
			Kind:     config.RuleCopyTo,
			Target:   "backup",
			Template: pathtmpl.Template{pathtmpl.Literal("out"), fileNameEl()},
		},
	}

	cfg, srcRoot, dstRoot := oneSourceConfig(t, copyAll, dirsTraverse())
	sub := testutil.CreateDir(t, srcRoot, "sub")
	testutil.CreateFile(t, srcRoot, "a.txt", "a")
	testutil.CreateFile(t, sub, "b.txt", "b")

	jpath := filepath.Join(t.TempDir(), "journal")

	j, err := journal.Open(jpath, false)
	require.NoError(t, err)
	first := run(t, cfg, j, Options{})
	require.NoError(t, j.Close())
	assert.Equal(t, 2, first.Summary().Copied)

	j2, err := journal.Open(jpath, true)
	require.NoError(t, err)
	second := run(t, cfg, j2, Options{})
	require.NoError(t, j2.Close())

	assert.Equal(t, 0, second.Summary().Copied, "a completed run has nothing left to do")
	assert.Equal(t, int64(0), second.PredicateEvals(),
		"journaled entries are skipped before any filter runs")
	assert.Equal(t, 2, second.Summary().SkippedJournal)
	assert.True(t, testutil.FileExists(filepath.Join(dstRoot, "out", "a.txt")))
}

func TestLostMarkerReprocessesToSameResult(t *testing.T) {
	copyAll := config.FileGroup{
		Name:   "all files",
		Filter: filter.Pred(filter.IsFile{}),
		Rule: config.Rule{
			Kind:     config.RuleCopyTo,
			Target:   "backup",
			Template: pathtmpl.Template{fileNameEl()},
		},
	}

	cfg, srcRoot, dstRoot := oneSourceConfig(t, copyAll)
	testutil.CreateFile(t, srcRoot, "a.txt", "payload")
	testutil.CreateFile(t, srcRoot, "b.txt", "payload")

	jpath := filepath.Join(t.TempDir(), "journal")
	j, err := journal.Open(jpath, false)
	require.NoError(t, err)
	run(t, cfg, j, Options{})
	require.NoError(t, j.Close())

	// Drop one marker, as if the crash hit between the copy finishing and
	// the journal append.
	content := testutil.ReadFile(t, jpath)
	var kept []string
	for _, line := range strings.Split(content, "\n") {
		if !strings.Contains(line, "a.txt") {
			kept = append(kept, line)
		}
	}
	require.NoError(t, os.WriteFile(jpath, []byte(strings.Join(kept, "\n")), 0644))

	j2, err := journal.Open(jpath, true)
	require.NoError(t, err)
	second := run(t, cfg, j2, Options{})
	require.NoError(t, j2.Close())

	assert.Equal(t, 0, second.Summary().Copied,
		"the destination already has the file's size and mtime, so the redo is a no-op")
	assert.Equal(t, 1, second.Summary().SkippedJournal)
	assert.Equal(t, 0, second.Summary().ErrorCount())
	assert.Equal(t, "payload", testutil.ReadFile(t, filepath.Join(dstRoot, "a.txt")))
}

func TestContinuedRunRetriesFailureInsideSubtree(t *testing.T) {
	copyAll := config.FileGroup{
		Name:   "all files",
		Filter: filter.Pred(filter.IsFile{}),
		Rule: config.Rule{
			Kind:     config.RuleCopyTo,
			Target:   "backup",
			Template: pathtmpl.Template{{Kind: pathtmpl.ElemOriginalPath}},
		},
	}

	cfg, srcRoot, dstRoot := oneSourceConfig(t, copyAll, dirsTraverse())
	sub := testutil.CreateDir(t, srcRoot, "sub")
	testutil.CreateFile(t, sub, "doc.txt", "new content")

	// Occupy the nested destination so the fail policy rejects the copy.
	dstSub := testutil.CreateDir(t, dstRoot, "sub")
	testutil.CreateFile(t, dstSub, "doc.txt", "old")

	jpath := filepath.Join(t.TempDir(), "journal")
	j, err := journal.Open(jpath, false)
	require.NoError(t, err)
	first := run(t, cfg, j, Options{})
	require.NoError(t, j.Close())
	assert.Equal(t, 1, first.Summary().ErrorCount())

	// Neither the failed entry nor its parent directory may carry a
	// marker, or the continued run would skip the subtree and never
	// retry the failure.
	j2, err := journal.Open(jpath, true)
	require.NoError(t, err)
	assert.False(t, j2.Done(journal.Key{Source: "main", Path: "sub/doc.txt"}))
	assert.False(t, j2.Done(journal.Key{Source: "main", Path: "sub"}))

	require.NoError(t, os.Remove(filepath.Join(dstRoot, "sub", "doc.txt")))
	second := run(t, cfg, j2, Options{})
	require.NoError(t, j2.Close())

	assert.Equal(t, 1, second.Summary().Copied)
	assert.Equal(t, 0, second.Summary().ErrorCount())
	assert.Equal(t, "new content", testutil.ReadFile(t, filepath.Join(dstRoot, "sub", "doc.txt")))

	// With the subtree clean, the third run skips it as a unit again.
	j3, err := journal.Open(jpath, true)
	require.NoError(t, err)
	third := run(t, cfg, j3, Options{})
	require.NoError(t, j3.Close())
	assert.Equal(t, 0, third.Summary().Copied)
	assert.Equal(t, int64(0), third.PredicateEvals())
}

func TestMissingSourceRootIsADiagnostic(t *testing.T) {
	cfg, srcRoot, _ := oneSourceConfig(t, dirsTraverse())
	require.NoError(t, os.RemoveAll(srcRoot))

	eng := run(t, cfg, nil, Options{})

	require.Equal(t, 1, eng.Summary().ErrorCount())
	assert.True(t, errors.IsErrorCode(eng.Summary().Diagnostics[0].Err, errors.ErrMetadataStat),
		"an unreadable directory is a read failure, not a copy failure")
}

func TestCopyExactReplicatesSubtree(t *testing.T) {
	keepDir := config.FileGroup{
		Name: "vault",
		Filter: filter.All(
			filter.Pred(filter.IsDir{}),
			filter.Pred(&filter.FileName{Value: "vault"}),
		),
		Rule: config.Rule{Kind: config.RuleCopyExact, Target: "backup"},
	}

	cfg, srcRoot, dstRoot := oneSourceConfig(t, keepDir)
	vault := testutil.CreateDir(t, srcRoot, "vault")
	inner := testutil.CreateDir(t, vault, "inner")
	testutil.CreateFile(t, vault, "top.txt", "t")
	testutil.CreateFile(t, inner, "deep.txt", "d")

	eng := run(t, cfg, nil, Options{})

	assert.True(t, testutil.FileExists(filepath.Join(dstRoot, "vault", "top.txt")))
	assert.True(t, testutil.FileExists(filepath.Join(dstRoot, "vault", "inner", "deep.txt")))
	assert.Equal(t, 2, eng.Summary().Copied)
	assert.Equal(t, 0, eng.Summary().ErrorCount())
}

func TestLogFileAppendsMatchedPaths(t *testing.T) {
	logTxt := config.FileGroup{
		Name:   "log text files",
		Filter: filter.Pred(filter.NewHasExtension([]string{"txt"})),
		Rule: config.Rule{
			Kind:     config.RuleLogFile,
			Target:   "backup",
			Template: pathtmpl.Template{pathtmpl.Literal("found.txt")},
		},
	}

	cfg, srcRoot, dstRoot := oneSourceConfig(t, logTxt, dirsTraverse())
	sub := testutil.CreateDir(t, srcRoot, "sub")
	testutil.CreateFile(t, srcRoot, "a.txt", "a")
	testutil.CreateFile(t, sub, "b.txt", "b")

	eng := run(t, cfg, nil, Options{})

	content := testutil.ReadFile(t, filepath.Join(dstRoot, "found.txt"))
	assert.Contains(t, content, "a.txt\n")
	assert.Contains(t, content, "sub/b.txt\n")
	assert.Equal(t, 2, eng.Summary().Logged)
	assert.Equal(t, 0, eng.Summary().Copied)
}

func TestCollisionPolicies(t *testing.T) {
	group := func() config.FileGroup {
		return config.FileGroup{
			Name:   "files",
			Filter: filter.Pred(filter.IsFile{}),
			Rule: config.Rule{
				Kind:     config.RuleCopyTo,
				Target:   "backup",
				Template: pathtmpl.Template{fileNameEl()},
			},
		}
	}

	setup := func(t *testing.T, policy config.CollisionPolicy) (*config.Config, string) {
		cfg, srcRoot, dstRoot := oneSourceConfig(t, group())
		cfg.Settings.CollisionPolicy = policy
		testutil.CreateFile(t, srcRoot, "doc.txt", "new content")
		testutil.CreateFile(t, dstRoot, "doc.txt", "old")
		return cfg, dstRoot
	}

	t.Run("skip", func(t *testing.T) {
		cfg, dstRoot := setup(t, config.CollisionSkip)
		eng := run(t, cfg, nil, Options{})
		assert.Equal(t, "old", testutil.ReadFile(t, filepath.Join(dstRoot, "doc.txt")))
		assert.Equal(t, 0, eng.Summary().Copied)
		assert.Equal(t, 0, eng.Summary().ErrorCount())
	})

	t.Run("overwrite", func(t *testing.T) {
		cfg, dstRoot := setup(t, config.CollisionOverwrite)
		eng := run(t, cfg, nil, Options{})
		assert.Equal(t, "new content", testutil.ReadFile(t, filepath.Join(dstRoot, "doc.txt")))
		assert.Equal(t, 1, eng.Summary().Copied)
	})

	t.Run("rename", func(t *testing.T) {
		cfg, dstRoot := setup(t, config.CollisionRename)
		eng := run(t, cfg, nil, Options{})
		assert.Equal(t, "old", testutil.ReadFile(t, filepath.Join(dstRoot, "doc.txt")))
		assert.Equal(t, "new content", testutil.ReadFile(t, filepath.Join(dstRoot, "doc (1).txt")))
		assert.Equal(t, 1, eng.Summary().Copied)
	})

	t.Run("fail", func(t *testing.T) {
		cfg, dstRoot := setup(t, config.CollisionFail)
		jpath := filepath.Join(t.TempDir(), "journal")
		j, err := journal.Open(jpath, false)
		require.NoError(t, err)
		eng := run(t, cfg, j, Options{})
		require.NoError(t, j.Close())

		assert.Equal(t, "old", testutil.ReadFile(t, filepath.Join(dstRoot, "doc.txt")))
		assert.Equal(t, 1, eng.Summary().ErrorCount())

		// A failed entry is retried on the next continued run.
		j2, err := journal.Open(jpath, true)
		require.NoError(t, err)
		defer func() { _ = j2.Close() }()
		assert.False(t, j2.Done(journal.Key{Source: "main", Path: "doc.txt"}))
	})

	t.Run("ask delegates to the prompter", func(t *testing.T) {
		cfg, dstRoot := setup(t, config.CollisionAsk)
		eng := New(cfg, nil, prompt.Fixed{Choice: prompt.CollisionOverwrite}, Options{})
		require.NoError(t, eng.Run(context.Background()))
		assert.Equal(t, "new content", testutil.ReadFile(t, filepath.Join(dstRoot, "doc.txt")))
	})
}

func TestDryRunTouchesNothing(t *testing.T) {
	copyAll := config.FileGroup{
		Name:   "all files",
		Filter: filter.Pred(filter.IsFile{}),
		Rule: config.Rule{
			Kind:     config.RuleCopyTo,
			Target:   "backup",
			Template: pathtmpl.Template{pathtmpl.Literal("out"), fileNameEl()},
		},
	}

	cfg, srcRoot, dstRoot := oneSourceConfig(t, copyAll)
	testutil.CreateFile(t, srcRoot, "a.txt", "a")

	eng := run(t, cfg, nil, Options{DryRun: true})

	entries, err := os.ReadDir(dstRoot)
	require.NoError(t, err)
	assert.Empty(t, entries, "a dry run writes nothing under the target")
	assert.Equal(t, 0, eng.Summary().Copied)

	planned := eng.Planned()
	require.Len(t, planned, 1)
	assert.Equal(t, "main", planned[0].Source)
	assert.Equal(t, filepath.Join(srcRoot, "a.txt"), planned[0].From)
	assert.Equal(t, filepath.Join(dstRoot, "out", "a.txt"), planned[0].To)
}

func TestWriteIndex(t *testing.T) {
	copyAll := config.FileGroup{
		Name:   "all files",
		Filter: filter.Pred(filter.IsFile{}),
		Rule: config.Rule{
			Kind:     config.RuleCopyTo,
			Target:   "backup",
			Template: pathtmpl.Template{fileNameEl()},
		},
	}

	cfg, srcRoot, _ := oneSourceConfig(t, copyAll)
	testutil.CreateFile(t, srcRoot, "a.txt", "a")

	eng := run(t, cfg, nil, Options{})

	idx := filepath.Join(t.TempDir(), "index.yaml")
	require.NoError(t, eng.WriteIndex(idx))
	content := testutil.ReadFile(t, idx)
	assert.Contains(t, content, "a.txt")
	assert.Contains(t, content, "source: main")
}

func TestUnmatchedDirIsNotTraversed(t *testing.T) {
	jpgOnly := config.FileGroup{
		Name:   "jpg files",
		Filter: filter.Pred(filter.NewHasExtension([]string{"jpg"})),
		Rule: config.Rule{
			Kind:     config.RuleCopyTo,
			Target:   "backup",
			Template: pathtmpl.Template{fileNameEl()},
		},
	}

	cfg, srcRoot, dstRoot := oneSourceConfig(t, jpgOnly)
	sub := testutil.CreateDir(t, srcRoot, "sub")
	testutil.CreateFile(t, sub, "inner.jpg", "x")

	eng := run(t, cfg, nil, Options{})

	assert.False(t, testutil.FileExists(filepath.Join(dstRoot, "inner.jpg")),
		"a directory no group claims is ignored, subtree included")
	assert.Equal(t, 1, eng.Summary().Ignored)
	assert.Equal(t, 0, eng.Summary().Copied)
}

func TestCopyToOnDirectoryIsADiagnostic(t *testing.T) {
	copyDirs := config.FileGroup{
		Name:   "dirs by copy_to",
		Filter: filter.Pred(filter.IsDir{}),
		Rule: config.Rule{
			Kind:     config.RuleCopyTo,
			Target:   "backup",
			Template: pathtmpl.Template{fileNameEl()},
		},
	}

	cfg, srcRoot, _ := oneSourceConfig(t, copyDirs)
	testutil.CreateDir(t, srcRoot, "sub")

	eng := run(t, cfg, nil, Options{})
	assert.Equal(t, 1, eng.Summary().ErrorCount())
}

func TestDisabledSourceIsSkipped(t *testing.T) {
	copyAll := config.FileGroup{
		Name:   "all files",
		Filter: filter.Pred(filter.IsFile{}),
		Rule: config.Rule{
			Kind:     config.RuleCopyTo,
			Target:   "backup",
			Template: pathtmpl.Template{fileNameEl()},
		},
	}

	cfg, srcRoot, dstRoot := oneSourceConfig(t, copyAll)
	src := cfg.Sources["main"]
	src.Disabled = true
	cfg.Sources["main"] = src
	testutil.CreateFile(t, srcRoot, "a.txt", "a")

	eng := run(t, cfg, nil, Options{})

	assert.False(t, testutil.FileExists(filepath.Join(dstRoot, "a.txt")))
	assert.Equal(t, 0, eng.Summary().Copied)
}

func TestScopeRestrictsGroupToItsSources(t *testing.T) {
	srcA := t.TempDir()
	srcB := t.TempDir()
	dstRoot := t.TempDir()

	cfg := &config.Config{
		Sources: map[string]config.Source{
			"a": {Path: srcA},
			"b": {Path: srcB},
		},
		Targets: map[string]string{"backup": dstRoot},
		Groups: []config.FileGroup{
			{
				Name:   "only a",
				Scope:  config.SourceScope{Mode: config.ScopeOnly, IDs: []string{"a"}},
				Filter: filter.Pred(filter.IsFile{}),
				Rule: config.Rule{
					Kind:     config.RuleCopyTo,
					Target:   "backup",
					Template: pathtmpl.Template{pathtmpl.Literal("from-a"), fileNameEl()},
				},
			},
		},
		Settings: config.Settings{CollisionPolicy: config.CollisionFail},
	}

	testutil.CreateFile(t, srcA, "x.txt", "x")
	testutil.CreateFile(t, srcB, "y.txt", "y")

	eng := run(t, cfg, nil, Options{})

	assert.True(t, testutil.FileExists(filepath.Join(dstRoot, "from-a", "x.txt")))
	assert.False(t, testutil.FileExists(filepath.Join(dstRoot, "from-a", "y.txt")))
	assert.Equal(t, 1, eng.Summary().Copied)
	assert.Equal(t, 1, eng.Summary().Ignored, "out-of-scope entries fall through to no group")
}

func TestCancellationStopsBetweenEntries(t *testing.T) {
	copyAll := config.FileGroup{
		Name:   "all files",
		Filter: filter.Pred(filter.IsFile{}),
		Rule: config.Rule{
			Kind:     config.RuleCopyTo,
			Target:   "backup",
			Template: pathtmpl.Template{fileNameEl()},
		},
	}

	cfg, srcRoot, _ := oneSourceConfig(t, copyAll)
	testutil.CreateFile(t, srcRoot, "a.txt", "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := New(cfg, nil, prompt.Fixed{}, Options{})
	err := eng.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, eng.Summary().Copied)
}

func TestCopiedFileKeepsSourceMtime(t *testing.T) {
	copyAll := config.FileGroup{
		Name:   "all files",
		Filter: filter.Pred(filter.IsFile{}),
		Rule: config.Rule{
			Kind:     config.RuleCopyTo,
			Target:   "backup",
			Template: pathtmpl.Template{fileNameEl()},
		},
	}

	cfg, srcRoot, dstRoot := oneSourceConfig(t, copyAll)
	p := testutil.CreateFile(t, srcRoot, "a.txt", "a")

	run(t, cfg, nil, Options{})

	srcInfo, err := os.Stat(p)
	require.NoError(t, err)
	dstInfo, err := os.Stat(filepath.Join(dstRoot, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, srcInfo.ModTime().Unix(), dstInfo.ModTime().Unix())
	assert.Equal(t, srcInfo.Size(), dstInfo.Size())
}

// Package config loads and validates the declarative run configuration:
// sources, targets, and the ordered file groups whose filters and rules
// drive the traversal. All configuration problems (unknown predicate or
// element names, bad regexes, bad time formats, dangling target or source
// ids) are detected here, before any traversal starts.
package config

import (
	"github.com/arthur-debert/sortnbackup/pkg/filter"
	"github.com/arthur-debert/sortnbackup/pkg/pathtmpl"
)

// Config is the fully compiled, read-only run configuration.
type Config struct {
	Sources  map[string]Source
	Targets  map[string]string // target id -> root path
	Groups   []FileGroup       // ordered; first match wins
	Settings Settings
}

// Source is one tree to traverse.
type Source struct {
	Path        string
	IgnorePaths []string // names or relative paths skipped without evaluation
	Disabled    bool
}

// ScopeMode says how a group's source scope selects sources.
type ScopeMode int

const (
	ScopeAll ScopeMode = iota
	ScopeOnly
	ScopeExcept
)

// SourceScope restricts a file group to a subset of sources.
type SourceScope struct {
	Mode ScopeMode
	IDs  []string
}

// Includes reports whether the scope covers the given source id.
func (s SourceScope) Includes(id string) bool {
	switch s.Mode {
	case ScopeOnly:
		for _, x := range s.IDs {
			if x == id {
				return true
			}
		}
		return false
	case ScopeExcept:
		for _, x := range s.IDs {
			if x == id {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// FileGroup pairs a filter with the rule applied to matching entries.
// The name is descriptive only and never matched against.
type FileGroup struct {
	Name   string
	Scope  SourceScope
	Filter *filter.Expr
	Rule   Rule
}

// RuleKind discriminates the actions a group can take.
type RuleKind int

const (
	RuleIgnore RuleKind = iota
	RuleTraverse
	RuleCopyTo
	RuleCopyExact
	RuleLogFile
)

func (k RuleKind) String() string {
	switch k {
	case RuleIgnore:
		return "ignore"
	case RuleTraverse:
		return "traverse"
	case RuleCopyTo:
		return "copy_to"
	case RuleCopyExact:
		return "copy_exact"
	case RuleLogFile:
		return "log_file"
	}
	return "unknown"
}

// Rule is the action for entries matched by a group.
type Rule struct {
	Kind     RuleKind
	Target   string            // copy_to, copy_exact, log_file
	Template pathtmpl.Template // copy_to destination, log_file path
	FullPath bool              // log_file: log absolute instead of relative path
}

// SizeStyle selects the unit family for human-readable sizes.
type SizeStyle int

const (
	SizeBinary  SizeStyle = iota // KiB, MiB, ...
	SizeDecimal                  // kB, MB, ...
)

// CollisionPolicy is the configured default answer when a destination is
// already occupied by a different entry.
type CollisionPolicy string

const (
	CollisionAsk       CollisionPolicy = "ask"
	CollisionSkip      CollisionPolicy = "skip"
	CollisionOverwrite CollisionPolicy = "overwrite"
	CollisionRename    CollisionPolicy = "rename"
	CollisionFail      CollisionPolicy = "fail"
)

// Settings holds run-wide behavior knobs.
type Settings struct {
	FileSizeStyle   SizeStyle
	CollisionPolicy CollisionPolicy
}

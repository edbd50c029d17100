// Package report collects run outcomes and renders the end-of-run
// summary for the operator.
package report

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/arthur-debert/sortnbackup/pkg/config"
)

// Diagnostic is one non-fatal problem encountered during a run.
type Diagnostic struct {
	Source string
	Path   string
	Step   string
	Err    error
}

// Summary accumulates run counters. Safe for concurrent use.
type Summary struct {
	mu sync.Mutex

	Copied         int
	BytesCopied    int64
	Ignored        int
	SkippedJournal int
	Logged         int
	Diagnostics    []Diagnostic
}

// NewSummary returns an empty summary.
func NewSummary() *Summary {
	return &Summary{}
}

// AddCopied records one completed copy of n bytes.
func (s *Summary) AddCopied(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Copied++
	s.BytesCopied += n
}

// AddIgnored records one entry matched by an ignore rule (or no rule).
func (s *Summary) AddIgnored() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Ignored++
}

// AddSkipped records one entry skipped via the resume journal.
func (s *Summary) AddSkipped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SkippedJournal++
}

// AddLogged records one log_file line written.
func (s *Summary) AddLogged() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Logged++
}

// AddDiagnostic records one non-fatal per-entry failure.
func (s *Summary) AddDiagnostic(source, path, step string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Diagnostics = append(s.Diagnostics, Diagnostic{
		Source: source,
		Path:   path,
		Step:   step,
		Err:    err,
	})
}

// ErrorCount returns the number of recorded diagnostics.
func (s *Summary) ErrorCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Diagnostics)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Width(18)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "203"})
)

// Render formats the summary for the terminal, dropping styling when the
// output cannot display color.
func (s *Summary) Render(style config.SizeStyle) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	plain := termenv.EnvColorProfile() == termenv.Ascii

	var b strings.Builder
	writeLine := func(label, value string) {
		if plain {
			fmt.Fprintf(&b, "%-18s %s\n", label, value)
			return
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString(" ")
		b.WriteString(value)
		b.WriteString("\n")
	}

	title := "Run summary"
	if !plain {
		title = titleStyle.Render(title)
	}
	b.WriteString(title)
	b.WriteString("\n")

	writeLine("Copied", fmt.Sprintf("%d (%s)", s.Copied, FormatSize(s.BytesCopied, style)))
	writeLine("Ignored", fmt.Sprintf("%d", s.Ignored))
	writeLine("Resumed past", fmt.Sprintf("%d", s.SkippedJournal))
	if s.Logged > 0 {
		writeLine("Log lines", fmt.Sprintf("%d", s.Logged))
	}
	writeLine("Errors", fmt.Sprintf("%d", len(s.Diagnostics)))

	for _, d := range s.Diagnostics {
		line := fmt.Sprintf("  [%s] %s: %s: %v", d.Source, d.Path, d.Step, d.Err)
		if !plain {
			line = errStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

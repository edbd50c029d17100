// Package prompt models operator decisions as an injected capability, so
// the engine stays testable and a non-interactive run can answer every
// question with configured defaults.
package prompt

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/sortnbackup/pkg/logging"
)

// CollisionChoice answers "the destination already holds a different
// file" for one entry.
type CollisionChoice int

const (
	CollisionSkip CollisionChoice = iota
	CollisionOverwrite
	CollisionRename
	CollisionFail
)

func (c CollisionChoice) String() string {
	switch c {
	case CollisionSkip:
		return "skip"
	case CollisionOverwrite:
		return "overwrite"
	case CollisionRename:
		return "rename"
	case CollisionFail:
		return "fail"
	}
	return "unknown"
}

// ParseCollisionChoice maps a configured policy name to a choice. "ask"
// is not a choice; it selects interactive prompting upstream.
func ParseCollisionChoice(s string) (CollisionChoice, error) {
	switch s {
	case "skip":
		return CollisionSkip, nil
	case "overwrite":
		return CollisionOverwrite, nil
	case "rename":
		return CollisionRename, nil
	case "fail":
		return CollisionFail, nil
	}
	return CollisionSkip, fmt.Errorf("unknown collision choice %q", s)
}

// Prompter answers the decision points that could otherwise block a run.
type Prompter interface {
	// Confirm asks a yes/no question.
	Confirm(question string, def bool) (bool, error)

	// Collision decides what to do about an occupied destination.
	Collision(src, dst string) (CollisionChoice, error)
}

// Fixed answers every question without asking, for --yes and
// non-interactive runs.
type Fixed struct {
	Answer bool
	Choice CollisionChoice
}

func (f Fixed) Confirm(string, bool) (bool, error) {
	return f.Answer, nil
}

func (f Fixed) Collision(string, string) (CollisionChoice, error) {
	return f.Choice, nil
}

// Interactive prompts on the terminal via pterm.
type Interactive struct {
	logger zerolog.Logger
}

// NewInteractive returns a terminal prompter.
func NewInteractive() *Interactive {
	return &Interactive{logger: logging.GetLogger("prompt")}
}

func (p *Interactive) Confirm(question string, def bool) (bool, error) {
	answer, err := pterm.DefaultInteractiveConfirm.
		WithDefaultValue(def).
		Show(question)
	if err != nil {
		return false, err
	}
	p.logger.Debug().Str("question", question).Bool("answer", answer).Msg("Operator confirmed")
	return answer, nil
}

func (p *Interactive) Collision(src, dst string) (CollisionChoice, error) {
	options := []string{"skip", "overwrite", "rename", "fail"}
	choice, err := pterm.DefaultInteractiveSelect.
		WithOptions(options).
		Show(fmt.Sprintf("Destination %s already exists (source %s)", dst, src))
	if err != nil {
		return CollisionSkip, err
	}
	return ParseCollisionChoice(choice)
}

// StdinIsTerminal reports whether the run can prompt at all.
func StdinIsTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

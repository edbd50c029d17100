package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/sortnbackup/pkg/config"
	"github.com/arthur-debert/sortnbackup/pkg/engine"
	"github.com/arthur-debert/sortnbackup/pkg/errors"
	"github.com/arthur-debert/sortnbackup/pkg/journal"
	"github.com/arthur-debert/sortnbackup/pkg/paths"
	"github.com/arthur-debert/sortnbackup/pkg/prompt"
)

func runBackup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	prompter := buildPrompter()

	var clog engine.CompletionLog = engine.NullLog{}
	if !dryRun {
		jp := paths.JournalFile(journalPath)
		if !continueRun && journal.Exists(jp) {
			ok, err := prompter.Confirm(
				"A journal from a previous run exists. Discard it and start fresh?", false)
			if err != nil {
				return err
			}
			if !ok {
				return errors.Newf(errors.ErrJournalOpen,
					"journal %s holds a previous run; pass --continue to resume it or --yes to discard it", jp)
			}
		}
		j, err := journal.Open(jp, continueRun)
		if err != nil {
			return err
		}
		defer func() { _ = j.Close() }()
		clog = j

		if continueRun {
			pterm.Info.Printf("Continuing: %d entries already completed\n", j.Count())
		}
	}

	eng := engine.New(cfg, clog, prompter, engine.Options{DryRun: dryRun})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pterm.Info.Printf("Sorting %d sources into %d targets\n", len(cfg.Sources), len(cfg.Targets))
	runErr := eng.Run(ctx)

	if indexPath != "" {
		if err := eng.WriteIndex(indexPath); err != nil {
			pterm.Warning.Printf("Could not write index %s: %v\n", indexPath, err)
		} else {
			pterm.Info.Printf("Copy instructions written to %s\n", indexPath)
		}
	}

	if dryRun {
		planned := eng.Planned()
		pterm.Info.Printf("Dry run: %d copies planned\n", len(planned))
		for _, in := range planned {
			fmt.Printf("  [%s] %s -> %s\n", in.Source, in.From, in.To)
		}
	}

	fmt.Print(eng.Summary().Render(cfg.Settings.FileSizeStyle))

	if runErr == context.Canceled {
		pterm.Warning.Println("Interrupted; rerun with --continue to pick up where this run stopped")
	}
	return runErr
}

// buildPrompter picks the interactive prompter only when there is a
// terminal to ask on and the operator did not suppress questions. The
// fixed prompter answers with --yes (and skip for collisions), so every
// decision point has a programmatic default.
func buildPrompter() prompt.Prompter {
	if assumeYes || !prompt.StdinIsTerminal() {
		return prompt.Fixed{Answer: assumeYes, Choice: prompt.CollisionSkip}
	}
	return prompt.NewInteractive()
}

package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/sortnbackup/internal/version"
	"github.com/arthur-debert/sortnbackup/pkg/logging"
)

var (
	verbosity   int
	cfgPath     string
	continueRun bool
	assumeYes   bool
	dryRun      bool
	indexPath   string
	journalPath string

	rootCmd = &cobra.Command{
		Use:   "sortnbackup",
		Short: "Sort and back up files with declarative filters and rules",
		Long: `sortnbackup copies files from multiple sources to multiple targets
using an ordered set of file groups. Each group pairs a filter expression
with a rule (ignore, traverse, copy_to, copy_exact, log_file); the first
group whose filter matches an entry wins.

Runs are resumable: completed entries are recorded in a journal, and
--continue picks up where an interrupted run stopped without repeating
work or re-asking questions.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runBackup,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")

	rootCmd.Flags().StringVar(&cfgPath, "config", "config.yaml", "Configuration file (YAML, or TOML by extension)")
	rootCmd.Flags().BoolVarP(&continueRun, "continue", "c", false, "Continue a previously interrupted run from the journal")
	rootCmd.Flags().BoolVar(&assumeYes, "yes", false, "Answer all questions with yes (non-interactive mode)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan copies without touching targets or the journal")
	rootCmd.Flags().StringVar(&indexPath, "index", "", "Write the planned/executed copy instructions to this YAML file")
	rootCmd.Flags().StringVar(&journalPath, "journal", "", "Journal file location (default: XDG state dir)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(genconfigCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sortnbackup %s (commit %s, built %s)\n",
			version.Version, version.Commit, version.Date)
	},
}

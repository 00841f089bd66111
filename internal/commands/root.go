package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerengine/internal/buildinfo"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath  string
	envFile     string
	metricsFile string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "ledgerengine",
		Short:   "Double-entry posting engine with loan schedules",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "ledgerengine.yaml", "path to ledgerengine.yaml")
	flags.StringVar(&opts.envFile, "env-file", ".env", "optional .env file with LEDGERENGINE_* overrides")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write prometheus metrics to this file on exit")

	rootCmd.AddCommand(
		newInitCommand(),
		newPostCommand(opts),
		newImportCommand(opts),
		newJournalCommand(opts),
		newAccountsCommand(opts),
		newLoanCommand(opts),
	)

	return rootCmd
}

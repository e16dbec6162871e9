package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/tallymis/internal/buildinfo"
	"github.com/cleared-dev/tallymis/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "tallymis",
		Short:   "Trial balances, statements and performance reports from Tally books",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", config.FileName, "config file")
	flags.StringVar(&a.source, "source", "", "snapshot source: csv, cache or tally (overrides config)")
	flags.StringVar(&a.dataDir, "data", "", "CSV data directory (overrides config)")

	rootCmd.AddCommand(
		newInitCommand(),
		newCompaniesCommand(a),
		newSyncCommand(a),
		newGroupsCommand(a),
		newLedgersCommand(a),
		newTBCommand(a),
		newYTDCommand(a),
		newDynamicCommand(a),
		newOverviewCommand(a),
		newStatementsCommand(a),
		newTrendCommand(a),
		newBestSellersCommand(a),
		newVouchersCommand(a),
		newExportCommand(a),
		newIssuesCommand(a),
	)

	return rootCmd
}

// Package cmd wires the expofuse command-line interface.
package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/expofuse/expofuse/pkg/logging"
)

// New builds the root command.
func New(version string) *cobra.Command {
	var (
		verbose bool
		quiet   bool
	)

	root := &cobra.Command{
		Use:   "expofuse",
		Short: "Fuse multi-source exhibition card data into one canonical ledger",
		Long: `expofuse reconciles company records extracted from scanned business
cards (OCR), decoded QR codes, scraped company websites and operator
spreadsheets into a single deduplicated table, and synchronizes it into a
shared Google Sheet without losing historical data.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(verbose, quiet)
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log errors")
	root.PersistentFlags().String("config", "", "config file (default: .expofuse.yaml)")

	root.AddCommand(newFuseCmd())
	root.AddCommand(newSyncCmd())
	root.AddCommand(newVersionCmd(version))

	return root
}

// configureLogging applies the verbosity flags to the global logger.
func configureLogging(verbose, quiet bool) {
	switch {
	case quiet:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case verbose:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if os.Getenv("LOG_FORMAT") == "json" {
		logging.SetDefault(logging.New(os.Stderr))
	}
}

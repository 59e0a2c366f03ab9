package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the watchlist command tree.
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "watchlist",
		Short:         "Movie and TV watch-list API and its maintenance jobs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newBackupCommand(),
		newOplogCommand(),
		newCleanupCommand(),
		newImagesCommand(),
	)
	return cmd
}

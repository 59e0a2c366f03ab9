package cmd

import (
	"watch-list/internal/housekeeping"

	"github.com/spf13/cobra"
)

func newCleanupCommand() *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Find orphan actors and unreferenced image objects",
		Long:  "Reports orphan actors (no movie or tv cast rows) and objects under images/ that no record references. Nothing is deleted without --apply.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			var objects housekeeping.ObjectStore
			if rt.storage != nil {
				objects = rt.storage
			}

			report, err := housekeeping.NewCleaner(rt.repo, objects, rt.log).Run(cmd.Context(), apply)
			if err != nil {
				return err
			}
			return printJSON(report)
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "Delete what was found instead of only reporting it")
	return cmd
}

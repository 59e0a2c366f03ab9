package cmd

import (
	"errors"

	"watch-list/internal/housekeeping"
	"watch-list/internal/usecase"

	"github.com/spf13/cobra"
)

func newImagesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images",
		Short: "Image pipeline jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newImagesSyncCommand())
	return cmd
}

func newImagesSyncCommand() *cobra.Command {
	var opts housekeeping.SyncOptions

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Copy TMDb hosted posters, backdrops and profiles into object storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			if rt.storage == nil {
				return errors.New("object storage is not configured")
			}

			oplog := usecase.NewOperationLogService(rt.repo.OperationLog, rt.log)
			images := usecase.NewImageService(rt.repo, rt.deps, oplog, rt.log)

			report, err := housekeeping.NewImageSyncer(rt.repo, images, rt.storage.PublicURL(""), rt.log).
				Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return printJSON(report)
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", "", "Only sync movie, tv or actor records")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum number of records to sync (0 = all)")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 4, "Records processed in parallel")
	return cmd
}

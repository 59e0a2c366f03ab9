package cmd

import (
	"watch-list/internal/housekeeping"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newBackupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create, list and prune database backups",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newBackupCreateCommand(), newBackupListCommand(), newBackupPruneCommand())
	return cmd
}

func newBackupCreateCommand() *cobra.Command {
	var upload bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Dump every table into a zstd compressed JSON Lines archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			var uploader housekeeping.Uploader
			if rt.storage != nil {
				uploader = rt.storage
			}

			backup, err := housekeeping.NewBackupper(rt.repo.Housekeeping, rt.config.Backup.Dir, uploader, rt.log).
				Create(cmd.Context(), upload)
			if err != nil {
				rt.log.Error("Backup failed", zap.Error(err))
				return err
			}
			return printJSON(backup)
		},
	}

	cmd.Flags().BoolVar(&upload, "upload", false, "Also upload the archive to object storage under backups/")
	return cmd
}

func newBackupListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List local backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			defer logger.Sync()

			backups, err := housekeeping.NewBackupper(nil, config.Backup.Dir, nil, logger).List()
			if err != nil {
				return err
			}
			return printJSON(backups)
		},
	}
}

func newBackupPruneCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete local backups outside the retention policy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			defer logger.Sync()

			policy := housekeeping.RetentionPolicy{
				MinCount:   config.Backup.MinCount,
				MaxCount:   config.Backup.MaxCount,
				MaxAgeDays: config.Backup.MaxAgeDays,
			}

			pruned, err := housekeeping.NewBackupper(nil, config.Backup.Dir, nil, logger).Prune(policy, dryRun)
			if err != nil {
				return err
			}
			logger.Info("Backup prune finished", zap.Int("count", len(pruned)), zap.Bool("dry_run", dryRun))
			return printJSON(pruned)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only report what would be deleted")
	return cmd
}

package cmd

import (
	"fmt"
	"time"

	"watch-list/internal/usecase"

	"github.com/spf13/cobra"
)

func newOplogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oplog",
		Short: "Operation log maintenance",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newOplogBackfillCommand(), newOplogPruneCommand())
	return cmd
}

func newOplogBackfillCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backfill",
		Short: "Fill missing resource names and usernames on old log rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			updated, err := usecase.NewOperationLogService(rt.repo.OperationLog, rt.log).Backfill(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(map[string]int64{"updated": updated})
		},
	}
}

func newOplogPruneCommand() *cobra.Command {
	var olderThanDays int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete log rows older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			days := olderThanDays
			if days == 0 {
				days = rt.config.Housekeeping.OperationLogRetentionDays
			}
			if days <= 0 {
				return fmt.Errorf("--older-than-days must be positive, got %d", days)
			}

			deleted, err := usecase.NewOperationLogService(rt.repo.OperationLog, rt.log).
				Prune(cmd.Context(), time.Duration(days)*24*time.Hour)
			if err != nil {
				return err
			}
			return printJSON(map[string]int64{"deleted": deleted})
		},
	}

	cmd.Flags().IntVar(&olderThanDays, "older-than-days", 0, "Retention window in days (defaults to OPLOG_RETENTION_DAYS)")
	return cmd
}

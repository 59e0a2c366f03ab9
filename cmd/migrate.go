package cmd

import (
	"watch-list/pkg/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	steps := []struct {
		use   string
		short string
	}{
		{"up", "Apply every pending migration"},
		{"down", "Roll back the most recent migration"},
		{"status", "Print the state of every migration"},
	}

	for _, step := range steps {
		use := step.use
		cmd.AddCommand(&cobra.Command{
			Use:   use,
			Short: step.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				config, logger, err := loadRuntime()
				if err != nil {
					return err
				}
				defer logger.Sync()

				ctx := cmd.Context()
				switch use {
				case "up":
					err = database.Migrate(ctx, config.Database)
				case "down":
					err = database.MigrateDown(ctx, config.Database)
				default:
					err = database.MigrationStatus(ctx, config.Database)
				}
				if err != nil {
					logger.Error("Migration failed", zap.String("step", use), zap.Error(err))
					return err
				}

				logger.Info("Migration finished", zap.String("step", use))
				return nil
			},
		})
	}

	return cmd
}

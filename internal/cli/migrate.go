package cli

import (
	"github.com/spf13/cobra"

	"github.com/eshaffer321/finpal-backend/internal/infrastructure/storage"
)

func newMigrateCommand(a *app) *cobra.Command {
	var statusOnly bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := storage.Connect(ctx, a.cfg.Storage, a.logger)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if !statusOnly {
				applied, err := store.Migrate(ctx)
				if err != nil {
					return err
				}
				PrintMigrated(cmd.OutOrStdout(), applied)
			}

			statuses, err := store.MigrationStatus(ctx)
			if err != nil {
				return err
			}
			PrintMigrationStatus(cmd.OutOrStdout(), statuses)
			return nil
		},
	}
	cmd.Flags().BoolVar(&statusOnly, "status", false, "Only show migration status")
	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tair/stock-ledger/internal/inventory"
	"github.com/tair/stock-ledger/internal/inventory/repository"
	"github.com/tair/stock-ledger/pkg/database"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the ledger tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.config()
			if cfg.StoreDriver != inventory.DriverPostgres {
				fmt.Fprintf(cmd.OutOrStdout(), "nothing to migrate for driver %q\n", cfg.StoreDriver)
				return nil
			}

			db, err := database.NewGormConnection(cfg.Database)
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return fmt.Errorf("failed to get database instance: %w", err)
			}
			defer sqlDB.Close()

			if err := repository.AutoMigrate(db); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %s\n", cfg.Database.DBName)
			return nil
		},
	}
}

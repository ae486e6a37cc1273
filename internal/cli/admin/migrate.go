package admin

import (
	"github.com/spf13/cobra"

	"github.com/cloo-solutions/pmstd/internal/database"
)

// MigrateCmd returns the migrate command
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			source, _ := cmd.Flags().GetString("migrations")
			return database.Migrate(cfg.DatabaseURL, source, log)
		},
	}

	cmd.Flags().String("migrations", database.DefaultMigrationsURL, "Migration source URL")

	return cmd
}

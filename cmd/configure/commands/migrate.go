package commands

import (
	"fmt"

	"github.com/campify/campify-api/internal/config"
	"github.com/campify/campify-api/internal/database"
	"github.com/spf13/cobra"
)

// NewMigrateCmd creates the migrate command. It applies pending migrations
// and prints the resulting schema version.
func NewMigrateCmd() *cobra.Command {
	var versionOnly bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if !versionOnly {
				if err := database.Migrate(cfg.DatabaseURL); err != nil {
					return err
				}
			}
			version, dirty, err := database.MigrationVersion(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Schema version %d (dirty=%v)\n", version, dirty)
			if dirty {
				return fmt.Errorf("schema is dirty at version %d", version)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&versionOnly, "version", false, "Only print the current schema version")
	return cmd
}

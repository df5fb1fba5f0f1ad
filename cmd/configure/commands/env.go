// Package commands implements the campify-configure subcommands.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/campify/campify-api/internal/config"
	"github.com/campify/campify-api/internal/database"
	"github.com/spf13/cobra"
)

// withDB loads configuration, opens the database for the duration of fn and
// closes it afterwards.
func withDB(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config, db *database.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to close database: %v\n", err)
		}
	}()
	return fn(cmd.Context(), cfg, db)
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

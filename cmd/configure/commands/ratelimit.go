package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/campify/campify-api/internal/config"
	"github.com/campify/campify-api/internal/database"
	"github.com/campify/campify-api/internal/models"
	"github.com/spf13/cobra"
	"github.com/ulule/limiter/v3"
)

// NewRatelimitCmd creates the ratelimit command with list and set subcommands.
func NewRatelimitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Manage the per-client request rate",
		Long:  "List or update the request rate (e.g. 20-S, 100-M) the API hot-reloads from the database.",
	}
	cmd.AddCommand(newRatelimitListCmd(), newRatelimitSetCmd())
	return cmd
}

func newRatelimitListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the stored rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd, func(ctx context.Context, cfg *config.Config, db *database.DB) error {
				c, err := database.NewRatelimitConfigRepository(db).Get(ctx)
				if err != nil {
					return fmt.Errorf("get ratelimit config: %w", err)
				}
				if c == nil {
					printf(cmd.OutOrStdout(), "No rate stored; the API uses RATE_LIMIT=%s.\n", cfg.RateLimit)
					return nil
				}
				printf(cmd.OutOrStdout(), "Rate: %s\n", c.Rate)
				return nil
			})
		},
	}
}

func newRatelimitSetCmd() *cobra.Command {
	var rate string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Replace the stored rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rate = strings.TrimSpace(rate)
			if _, err := limiter.NewRateFromFormatted(rate); err != nil {
				return fmt.Errorf("invalid --rate %q: %w", rate, err)
			}
			return withDB(cmd, func(ctx context.Context, _ *config.Config, db *database.DB) error {
				if err := database.NewRatelimitConfigRepository(db).Set(ctx, &models.RatelimitConfig{Rate: rate}); err != nil {
					return fmt.Errorf("set ratelimit config: %w", err)
				}
				printf(cmd.OutOrStdout(), "Rate limit updated to %s.\n", rate)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&rate, "rate", "", "Rate such as 5-S, 100-M or 1000-H")
	_ = cmd.MarkFlagRequired("rate")
	return cmd
}

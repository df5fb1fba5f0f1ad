package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/campify/campify-api/internal/config"
	"github.com/campify/campify-api/internal/database"
	"github.com/campify/campify-api/internal/models"
	"github.com/spf13/cobra"
)

// NewCorsCmd creates the cors command with list and set subcommands.
func NewCorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cors",
		Short: "Manage CORS configuration",
		Long:  "List or update the allowed origins the API hot-reloads from the database.",
	}
	cmd.AddCommand(newCorsListCmd(), newCorsSetCmd())
	return cmd
}

func newCorsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the stored CORS configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd, func(ctx context.Context, _ *config.Config, db *database.DB) error {
				c, err := database.NewCorsConfigRepository(db).Get(ctx)
				if err != nil {
					return fmt.Errorf("get cors config: %w", err)
				}
				out := cmd.OutOrStdout()
				if c == nil {
					printf(out, "No CORS configuration stored; the API falls back to FRONTEND_URL.\n")
					return nil
				}
				printf(out, "Allowed origins:   %s\n", strings.Join(database.AllowedOriginsSlice(c.AllowedOrigins), ", "))
				printf(out, "Allow credentials: %v\n", c.AllowCredentials)
				printf(out, "Max-Age:           %d\n", c.MaxAge)
				return nil
			})
		},
	}
}

func newCorsSetCmd() *cobra.Command {
	var (
		origins    string
		allowCreds bool
		maxAge     int
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Replace the stored CORS configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			origins = strings.TrimSpace(origins)
			if len(database.AllowedOriginsSlice(origins)) == 0 {
				return fmt.Errorf("--origins must list at least one origin")
			}
			if maxAge < 0 {
				return fmt.Errorf("--max-age must not be negative")
			}
			return withDB(cmd, func(ctx context.Context, _ *config.Config, db *database.DB) error {
				c := &models.CorsConfig{AllowedOrigins: origins, AllowCredentials: allowCreds, MaxAge: maxAge}
				if err := database.NewCorsConfigRepository(db).Set(ctx, c); err != nil {
					return fmt.Errorf("set cors config: %w", err)
				}
				printf(cmd.OutOrStdout(), "CORS configuration updated.\n")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&origins, "origins", "", "Comma-separated allowed origins")
	cmd.Flags().BoolVar(&allowCreds, "allow-credentials", true, "Allow credentials")
	cmd.Flags().IntVar(&maxAge, "max-age", 86400, "Access-Control-Max-Age in seconds")
	_ = cmd.MarkFlagRequired("origins")
	return cmd
}

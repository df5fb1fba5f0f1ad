package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/campify/campify-api/internal/services/auth"
	"github.com/spf13/cobra"
)

// NewTokenCmd creates the token command, which signs a bearer token with
// JWT_SECRET for local testing and service accounts.
func NewTokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an HS256 bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret := os.Getenv("JWT_SECRET")
			if secret == "" {
				return fmt.Errorf("JWT_SECRET is required")
			}
			if ttl <= 0 {
				return fmt.Errorf("--ttl must be positive")
			}
			token, err := auth.NewVerifier(secret, os.Getenv("JWT_ISSUER")).Issue(subject, ttl)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s\n", token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "User id the token authenticates as")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

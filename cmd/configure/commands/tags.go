package commands

import (
	"context"
	"fmt"

	"github.com/campify/campify-api/internal/config"
	"github.com/campify/campify-api/internal/database"
	"github.com/campify/campify-api/internal/tagging"
	"github.com/spf13/cobra"
)

// NewTagsCmd creates the tags command.
func NewTagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Inspect the tag catalog",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List catalog tags, marking those outside the canonical vocabulary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd, func(ctx context.Context, _ *config.Config, db *database.DB) error {
				tags, err := database.NewTagRepository(db).List(ctx)
				if err != nil {
					return fmt.Errorf("list tags: %w", err)
				}
				out := cmd.OutOrStdout()
				for _, t := range tags {
					marker := ""
					if !tagging.IsCanonical(t.Name) {
						marker = " (custom)"
					}
					printf(out, "%6d  %s%s\n", t.ID, t.Name, marker)
				}
				printf(out, "%d tags\n", len(tags))
				return nil
			})
		},
	})
	return cmd
}

// NewSeedTagsCmd creates the seed-tags command, which inserts every canonical
// vocabulary tag that is missing from the catalog.
func NewSeedTagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-tags",
		Short: "Insert the canonical tag vocabulary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := tagging.ValidateRules(); err != nil {
				return fmt.Errorf("tagging rules: %w", err)
			}
			return withDB(cmd, func(ctx context.Context, _ *config.Config, db *database.DB) error {
				vocab := tagging.Vocabulary()
				_, created, err := database.NewTagRepository(db).Ensure(ctx, vocab)
				if err != nil {
					return fmt.Errorf("seed tags: %w", err)
				}
				printf(cmd.OutOrStdout(), "Created %d of %d vocabulary tags.\n", created, len(vocab))
				return nil
			})
		},
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/campify/campify-api/cmd/configure/commands"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "campify-configure",
		Short:         "Operator tool for the Campify API",
		Long:          "Manage runtime settings, the tag catalog, schema migrations and retag jobs.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		commands.NewMigrateCmd(),
		commands.NewSeedTagsCmd(),
		commands.NewTagsCmd(),
		commands.NewRetagCmd(),
		commands.NewCorsCmd(),
		commands.NewRatelimitCmd(),
		commands.NewTokenCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

package commands

import (
	"context"
	"fmt"

	"github.com/campify/campify-api/internal/config"
	"github.com/campify/campify-api/internal/queue"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type jobPublisher interface {
	Enqueue(ctx context.Context, job *queue.Job) error
	Close() error
}

// openPublisher connects to the job queue; tests replace it.
var openPublisher = func(url string) (jobPublisher, error) {
	return queue.NewRabbitMQQueue(url, zap.NewNop())
}

// NewRetagCmd creates the retag command, which asks the worker to recompute
// stored route tags.
func NewRetagCmd() *cobra.Command {
	var (
		routeID int64
		all     bool
	)
	cmd := &cobra.Command{
		Use:   "retag",
		Short: "Enqueue a retag job for one route or for every route",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var job *queue.Job
			if all {
				job = queue.NewRetagAllJob()
			} else {
				job = queue.NewRetagRouteJob(routeID)
			}
			if err := job.Validate(); err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.RequireQueue(); err != nil {
				return err
			}
			pub, err := openPublisher(cfg.RabbitMQURL)
			if err != nil {
				return fmt.Errorf("connect to queue: %w", err)
			}
			defer func() { _ = pub.Close() }()

			if err := pub.Enqueue(cmd.Context(), job); err != nil {
				return fmt.Errorf("enqueue retag job: %w", err)
			}
			printf(cmd.OutOrStdout(), "Enqueued %s job %s\n", job.Type, job.ID)
			return nil
		},
	}
	cmd.Flags().Int64Var(&routeID, "route", 0, "Route id to retag")
	cmd.Flags().BoolVar(&all, "all", false, "Retag every route")
	cmd.MarkFlagsMutuallyExclusive("route", "all")
	cmd.MarkFlagsOneRequired("route", "all")
	return cmd
}

// Package workers consumes background jobs from the queue.
package workers

import (
	"context"
	"errors"
	"fmt"

	"github.com/campify/campify-api/internal/database"
	logpkg "github.com/campify/campify-api/internal/logger"
	"github.com/campify/campify-api/internal/metrics"
	"github.com/campify/campify-api/internal/models"
	"github.com/campify/campify-api/internal/queue"
	"github.com/campify/campify-api/internal/tagging"
	"go.uber.org/zap"
)

// retagPageSize bounds how many route ids a retag_all job loads at once.
const retagPageSize = 500

// RouteTagStore is the route persistence the retagger needs.
type RouteTagStore interface {
	GetByID(ctx context.Context, id int64) (*models.Route, error)
	ReplaceTags(ctx context.Context, routeID int64, names []string) error
	ListIDs(ctx context.Context, afterID int64, limit int) ([]int64, error)
}

// JobProcessor handles one decoded job.
type JobProcessor func(ctx context.Context, job *queue.Job) error

// Retagger recomputes stored route tags from the current tagging rules.
type Retagger struct {
	routes   RouteTagStore
	requeue  queue.JobQueue // for retries; may be nil
	logger   *zap.Logger
	registry map[queue.JobType]JobProcessor
}

// NewRetagger creates a Retagger with the retag_route and retag_all
// processors registered.
func NewRetagger(routes RouteTagStore, requeue queue.JobQueue, logger *zap.Logger) *Retagger {
	rt := &Retagger{
		routes:   routes,
		requeue:  requeue,
		logger:   logger,
		registry: make(map[queue.JobType]JobProcessor),
	}
	rt.RegisterProcessor(queue.JobTypeRetagRoute, rt.ProcessRetagRouteJob)
	rt.RegisterProcessor(queue.JobTypeRetagAll, rt.ProcessRetagAllJob)
	return rt
}

// RegisterProcessor registers a processor for a job type.
func (rt *Retagger) RegisterProcessor(typ queue.JobType, proc JobProcessor) {
	rt.registry[typ] = proc
}

// ProcessRetagRouteJob retags the route named by the job.
func (rt *Retagger) ProcessRetagRouteJob(ctx context.Context, job *queue.Job) error {
	if job.RouteID == nil {
		return fmt.Errorf("route_id is required for retag_route job")
	}
	_, err := rt.retag(ctx, *job.RouteID)
	return err
}

// ProcessRetagAllJob walks every route in id order and retags it. Routes
// that disappear mid-walk are skipped; any other failure stops the job.
func (rt *Retagger) ProcessRetagAllJob(ctx context.Context, _ *queue.Job) error {
	var afterID int64
	retagged, changed := 0, 0
	for {
		ids, err := rt.routes.ListIDs(ctx, afterID, retagPageSize)
		if err != nil {
			return fmt.Errorf("failed to list routes after %d: %w", afterID, err)
		}
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}
			diff, err := rt.retag(ctx, id)
			if errors.Is(err, database.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			retagged++
			if diff {
				changed++
			}
		}
		if len(ids) < retagPageSize {
			break
		}
		afterID = ids[len(ids)-1]
	}

	rt.logger.Info("retag_all_completed",
		zap.Int("routes", retagged),
		zap.Int("changed", changed),
	)
	return nil
}

// retag recomputes and stores one route's tags. It reports whether the
// stored set changed.
func (rt *Retagger) retag(ctx context.Context, routeID int64) (bool, error) {
	route, err := rt.routes.GetByID(ctx, routeID)
	if err != nil {
		return false, fmt.Errorf("failed to load route: %w", err)
	}

	tags := tagging.DeriveTags(route.TagFields())
	if err := rt.routes.ReplaceTags(ctx, routeID, tags); err != nil {
		return false, fmt.Errorf("failed to replace tags: %w", err)
	}
	metrics.RoutesTaggedTotal.WithLabelValues("retag").Inc()

	changed := !sameTags(route.Tags, tags)
	rt.logger.Debug("route_retagged",
		zap.Int64("route_id", routeID),
		zap.Strings("tags", tags),
		zap.Bool("changed", changed),
	)
	return changed, nil
}

// sameTags compares two tag lists as sets.
func sameTags(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, t := range a {
		seen[t]++
	}
	for _, t := range b {
		if seen[t] == 0 {
			return false
		}
		seen[t]--
	}
	return true
}

// ProcessJob dispatches a message to its processor and settles it. Success
// acks; a missing route or unknown type goes to the dead letter queue;
// other failures are re-enqueued until the job runs out of retries.
func (rt *Retagger) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()
	jobID := logpkg.SanitizeID(job.ID.String())

	if !job.ShouldProcess() {
		rt.logger.Debug("retag_job_not_ready", zap.String("job_id", jobID))
		if nackErr := msg.Nack(true); nackErr != nil {
			rt.logger.Warn("failed_to_requeue_job", zap.String("job_id", jobID), zap.String("error", logpkg.SanitizeError(nackErr)))
		}
		return nil
	}

	proc, ok := rt.registry[job.Type]
	if !ok {
		metrics.JobsProcessedTotal.WithLabelValues(string(job.Type), "rejected").Inc()
		if nackErr := msg.Nack(false); nackErr != nil {
			rt.logger.Error("failed_to_nack_unknown_job_type",
				zap.String("job_id", jobID),
				zap.String("job_type", string(job.Type)),
				zap.String("error", logpkg.SanitizeError(nackErr)),
			)
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}

	if err := proc(ctx, job); err != nil {
		return rt.handleJobError(ctx, msg, job, err)
	}

	metrics.JobsProcessedTotal.WithLabelValues(string(job.Type), "success").Inc()
	if ackErr := msg.Ack(); ackErr != nil {
		return fmt.Errorf("failed to ack job: %w", ackErr)
	}
	return nil
}

func (rt *Retagger) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, err error) error {
	jobID := logpkg.SanitizeID(job.ID.String())
	fields := []zap.Field{
		zap.String("job_id", jobID),
		zap.String("job_type", string(job.Type)),
		zap.Int("retry_count", job.RetryCount),
		zap.String("error", logpkg.SanitizeError(err)),
	}

	if !errors.Is(err, database.ErrNotFound) && job.CanRetry() && rt.requeue != nil {
		retry := *job
		retry.IncrementRetry()
		enqueueErr := rt.requeue.Enqueue(ctx, &retry)
		if enqueueErr == nil {
			metrics.JobsProcessedTotal.WithLabelValues(string(job.Type), "retried").Inc()
			rt.logger.Warn("retag_job_retrying", fields...)
			if ackErr := msg.Ack(); ackErr != nil {
				rt.logger.Warn("failed_to_ack_retried_job", zap.String("job_id", jobID), zap.String("error", logpkg.SanitizeError(ackErr)))
			}
			return fmt.Errorf("retag job %s will be retried: %w", job.ID, err)
		}
		rt.logger.Error("failed_to_reenqueue_job", zap.String("job_id", jobID), zap.String("error", logpkg.SanitizeError(enqueueErr)))
	}

	metrics.JobsProcessedTotal.WithLabelValues(string(job.Type), "failed").Inc()
	rt.logger.Error("retag_job_failed", fields...)
	if nackErr := msg.Nack(false); nackErr != nil {
		rt.logger.Warn("failed_to_nack_job", zap.String("job_id", jobID), zap.String("error", logpkg.SanitizeError(nackErr)))
	}
	return fmt.Errorf("retag job %s failed: %w", job.ID, err)
}

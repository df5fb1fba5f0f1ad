package queue

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeRetagRoute recomputes the tags of one route.
	JobTypeRetagRoute JobType = "retag_route"
	// JobTypeRetagAll recomputes the tags of every route.
	JobTypeRetagAll JobType = "retag_all"

	defaultMaxRetries = 3
)

// Job represents a job in the queue
type Job struct {
	ID         uuid.UUID  `json:"id"`
	Type       JobType    `json:"type"`
	RouteID    *int64     `json:"route_id,omitempty"`
	NotBefore  *time.Time `json:"not_before,omitempty"`
	NotAfter   *time.Time `json:"not_after,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	RetryCount int        `json:"retry_count"`
	MaxRetries int        `json:"max_retries"`
}

// NewJob creates a new job
func NewJob(jobType JobType) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		CreatedAt:  time.Now().UTC(),
		MaxRetries: defaultMaxRetries,
	}
}

// NewRetagRouteJob creates a job that retags a single route.
func NewRetagRouteJob(routeID int64) *Job {
	job := NewJob(JobTypeRetagRoute)
	job.RouteID = &routeID
	return job
}

// NewRetagAllJob creates a job that retags every route.
func NewRetagAllJob() *Job {
	return NewJob(JobTypeRetagAll)
}

// Validate checks the job carries what its type needs.
func (j *Job) Validate() error {
	switch j.Type {
	case JobTypeRetagRoute:
		if j.RouteID == nil || *j.RouteID <= 0 {
			return errors.New("retag_route job requires a positive route_id")
		}
	case JobTypeRetagAll:
	default:
		return fmt.Errorf("unknown job type %q", j.Type)
	}
	return nil
}

// ShouldProcess reports whether the job is inside its processing window.
func (j *Job) ShouldProcess() bool {
	now := time.Now()
	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}
	return !j.IsExpired()
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	return j.NotAfter != nil && time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}

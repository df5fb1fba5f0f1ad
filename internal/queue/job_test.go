package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewRetagRouteJob(t *testing.T) {
	t.Parallel()

	job := NewRetagRouteJob(42)

	if job.ID == uuid.Nil {
		t.Error("Expected job ID to be set")
	}
	if job.Type != JobTypeRetagRoute {
		t.Errorf("Expected job type %s, got %s", JobTypeRetagRoute, job.Type)
	}
	if job.RouteID == nil || *job.RouteID != 42 {
		t.Errorf("Expected route ID 42, got %v", job.RouteID)
	}
	if job.RetryCount != 0 {
		t.Errorf("Expected retry count 0, got %d", job.RetryCount)
	}
	if job.MaxRetries != 3 {
		t.Errorf("Expected max retries 3, got %d", job.MaxRetries)
	}
	if err := job.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestJob_Validate(t *testing.T) {
	t.Parallel()

	zero := int64(0)
	tests := []struct {
		name    string
		job     *Job
		wantErr bool
	}{
		{name: "retag all", job: NewRetagAllJob()},
		{name: "retag route", job: NewRetagRouteJob(7)},
		{name: "retag route without id", job: NewJob(JobTypeRetagRoute), wantErr: true},
		{name: "retag route with zero id", job: &Job{Type: JobTypeRetagRoute, RouteID: &zero}, wantErr: true},
		{name: "unknown type", job: NewJob(JobType("analyze")), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := tt.job.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestJob_ShouldProcess(t *testing.T) {
	t.Parallel()

	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		job  *Job
		want bool
	}{
		{name: "no window", job: &Job{}, want: true},
		{name: "not before in the past", job: &Job{NotBefore: &past}, want: true},
		{name: "not before in the future", job: &Job{NotBefore: &future}, want: false},
		{name: "not after in the future", job: &Job{NotAfter: &future}, want: true},
		{name: "expired", job: &Job{NotAfter: &past}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.job.ShouldProcess(); got != tt.want {
				t.Errorf("ShouldProcess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJob_Retry(t *testing.T) {
	t.Parallel()

	job := NewRetagAllJob()
	for i := 0; i < job.MaxRetries; i++ {
		if !job.CanRetry() {
			t.Fatalf("CanRetry() = false after %d retries", i)
		}
		job.IncrementRetry()
	}
	if job.CanRetry() {
		t.Error("CanRetry() = true after exhausting retries")
	}
}

func TestJob_JSONShape(t *testing.T) {
	t.Parallel()

	body, err := json.Marshal(NewRetagAllJob())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if raw["type"] != "retag_all" {
		t.Errorf("type = %v, want retag_all", raw["type"])
	}
	if _, ok := raw["route_id"]; ok {
		t.Error("route_id should be omitted for retag_all")
	}
}

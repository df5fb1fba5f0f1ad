package workers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/campify/campify-api/internal/database"
	"github.com/campify/campify-api/internal/models"
	"github.com/campify/campify-api/internal/queue"
	"go.uber.org/zap"
)

type mockRouteTagStore struct {
	t               *testing.T
	getByIDFunc     func(ctx context.Context, id int64) (*models.Route, error)
	replaceTagsFunc func(ctx context.Context, routeID int64, names []string) error
	listIDsFunc     func(ctx context.Context, afterID int64, limit int) ([]int64, error)
}

func (m *mockRouteTagStore) GetByID(ctx context.Context, id int64) (*models.Route, error) {
	if m.getByIDFunc == nil {
		m.t.Fatal("GetByID called but not configured in test - mock requires explicit setup")
	}
	return m.getByIDFunc(ctx, id)
}

func (m *mockRouteTagStore) ReplaceTags(ctx context.Context, routeID int64, names []string) error {
	if m.replaceTagsFunc == nil {
		m.t.Fatal("ReplaceTags called but not configured in test - mock requires explicit setup")
	}
	return m.replaceTagsFunc(ctx, routeID, names)
}

func (m *mockRouteTagStore) ListIDs(ctx context.Context, afterID int64, limit int) ([]int64, error) {
	if m.listIDsFunc == nil {
		m.t.Fatal("ListIDs called but not configured in test - mock requires explicit setup")
	}
	return m.listIDsFunc(ctx, afterID, limit)
}

type mockMessage struct {
	job       *queue.Job
	acked     bool
	nacked    bool
	requeued  bool
	ackCalls  int
	nackCalls int
}

func (m *mockMessage) Ack() error {
	m.acked = true
	m.ackCalls++
	return nil
}

func (m *mockMessage) Nack(requeue bool) error {
	m.nacked = true
	m.requeued = requeue
	m.nackCalls++
	return nil
}

func (m *mockMessage) GetJob() *queue.Job { return m.job }

type mockJobQueue struct {
	enqueued []*queue.Job
	err      error
}

func (m *mockJobQueue) Enqueue(_ context.Context, job *queue.Job) error {
	if m.err != nil {
		return m.err
	}
	m.enqueued = append(m.enqueued, job)
	return nil
}

func (m *mockJobQueue) Consume(context.Context, int) (<-chan queue.MessageInterface, <-chan error, error) {
	return nil, nil, errors.New("not implemented")
}

func (m *mockJobQueue) Close() error { return nil }
func (m *mockJobQueue) HealthCheck(context.Context) error { return nil }

func forestRoute(id int64) *models.Route {
	d := int64(4 * 3600)
	return &models.Route{
		ID:              id,
		Name:            "Лесная тропа",
		Description:     "поход с палаткой в лес",
		Difficulty:      1,
		Type:            models.RouteTypeWild,
		DurationSeconds: &d,
	}
}

func TestRetagger_ProcessRetagRouteJob(t *testing.T) {
	t.Parallel()

	var stored []string
	store := &mockRouteTagStore{
		t: t,
		getByIDFunc: func(_ context.Context, id int64) (*models.Route, error) {
			return forestRoute(id), nil
		},
		replaceTagsFunc: func(_ context.Context, routeID int64, names []string) error {
			if routeID != 5 {
				t.Errorf("routeID = %d, want 5", routeID)
			}
			stored = names
			return nil
		},
	}
	rt := NewRetagger(store, nil, zap.NewNop())

	if err := rt.ProcessRetagRouteJob(context.Background(), queue.NewRetagRouteJob(5)); err != nil {
		t.Fatalf("ProcessRetagRouteJob() error = %v", err)
	}

	want := map[string]bool{"novice": true, "easy": true, "wild": true, "extreme": true, "one_day": true, "forest": true, "no_rental": true}
	got := make(map[string]bool, len(stored))
	for _, tag := range stored {
		got[tag] = true
	}
	for tag := range want {
		if !got[tag] {
			t.Errorf("stored tags %v missing %q", stored, tag)
		}
	}
}

func TestRetagger_ProcessRetagRouteJob_MissingRouteID(t *testing.T) {
	t.Parallel()

	rt := NewRetagger(&mockRouteTagStore{t: t}, nil, zap.NewNop())
	if err := rt.ProcessRetagRouteJob(context.Background(), queue.NewJob(queue.JobTypeRetagRoute)); err == nil {
		t.Error("expected error for job without route_id")
	}
}

func TestRetagger_ProcessRetagAllJob_Pages(t *testing.T) {
	t.Parallel()

	// first page full, second page short
	first := make([]int64, retagPageSize)
	for i := range first {
		first[i] = int64(i + 1)
	}
	second := []int64{retagPageSize + 1, retagPageSize + 2}

	var afterIDs []int64
	replaced := 0
	store := &mockRouteTagStore{
		t: t,
		listIDsFunc: func(_ context.Context, afterID int64, limit int) ([]int64, error) {
			if limit != retagPageSize {
				t.Errorf("limit = %d, want %d", limit, retagPageSize)
			}
			afterIDs = append(afterIDs, afterID)
			switch afterID {
			case 0:
				return first, nil
			case retagPageSize:
				return second, nil
			default:
				return nil, fmt.Errorf("unexpected afterID %d", afterID)
			}
		},
		getByIDFunc: func(_ context.Context, id int64) (*models.Route, error) {
			if id == 3 {
				return nil, fmt.Errorf("route %d: %w", id, database.ErrNotFound)
			}
			return forestRoute(id), nil
		},
		replaceTagsFunc: func(context.Context, int64, []string) error {
			replaced++
			return nil
		},
	}
	rt := NewRetagger(store, nil, zap.NewNop())

	if err := rt.ProcessRetagAllJob(context.Background(), queue.NewRetagAllJob()); err != nil {
		t.Fatalf("ProcessRetagAllJob() error = %v", err)
	}
	if len(afterIDs) != 2 {
		t.Errorf("ListIDs called %d times, want 2", len(afterIDs))
	}
	if want := retagPageSize + 2 - 1; replaced != want {
		t.Errorf("replaced %d routes, want %d", replaced, want)
	}
}

func TestRetagger_ProcessRetagAllJob_StoreError(t *testing.T) {
	t.Parallel()

	store := &mockRouteTagStore{
		t: t,
		listIDsFunc: func(context.Context, int64, int) ([]int64, error) {
			return nil, errors.New("connection reset")
		},
	}
	rt := NewRetagger(store, nil, zap.NewNop())
	if err := rt.ProcessRetagAllJob(context.Background(), queue.NewRetagAllJob()); err == nil {
		t.Error("expected error")
	}
}

func TestRetagger_ProcessJob(t *testing.T) {
	t.Parallel()

	transient := errors.New("connection reset")
	notFound := fmt.Errorf("route 9: %w", database.ErrNotFound)

	tests := []struct {
		name         string
		job          func() *queue.Job
		getErr       error
		withQueue    bool
		wantErr      bool
		wantAck      bool
		wantNack     bool
		wantRequeue  bool
		wantEnqueued int
	}{
		{
			name:    "success acks",
			job:     func() *queue.Job { return queue.NewRetagRouteJob(9) },
			wantAck: true,
		},
		{
			name:     "unknown type goes to DLQ",
			job:      func() *queue.Job { return queue.NewJob(queue.JobType("analyze")) },
			wantErr:  true,
			wantNack: true,
		},
		{
			name:      "missing route goes to DLQ without retry",
			job:       func() *queue.Job { return queue.NewRetagRouteJob(9) },
			getErr:    notFound,
			withQueue: true,
			wantErr:   true,
			wantNack:  true,
		},
		{
			name:         "transient failure is re-enqueued",
			job:          func() *queue.Job { return queue.NewRetagRouteJob(9) },
			getErr:       transient,
			withQueue:    true,
			wantErr:      true,
			wantAck:      true,
			wantEnqueued: 1,
		},
		{
			name: "exhausted retries go to DLQ",
			job: func() *queue.Job {
				j := queue.NewRetagRouteJob(9)
				j.RetryCount = j.MaxRetries
				return j
			},
			getErr:    transient,
			withQueue: true,
			wantErr:   true,
			wantNack:  true,
		},
		{
			name:     "no queue means no retry",
			job:      func() *queue.Job { return queue.NewRetagRouteJob(9) },
			getErr:   transient,
			wantErr:  true,
			wantNack: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := &mockRouteTagStore{
				t: t,
				getByIDFunc: func(_ context.Context, id int64) (*models.Route, error) {
					if tt.getErr != nil {
						return nil, tt.getErr
					}
					return forestRoute(id), nil
				},
				replaceTagsFunc: func(context.Context, int64, []string) error { return nil },
			}
			jq := &mockJobQueue{}
			var requeue queue.JobQueue
			if tt.withQueue {
				requeue = jq
			}
			rt := NewRetagger(store, requeue, zap.NewNop())

			job := tt.job()
			msg := &mockMessage{job: job}
			err := rt.ProcessJob(context.Background(), msg)

			if (err != nil) != tt.wantErr {
				t.Errorf("ProcessJob() error = %v, wantErr %v", err, tt.wantErr)
			}
			if msg.acked != tt.wantAck {
				t.Errorf("acked = %v, want %v", msg.acked, tt.wantAck)
			}
			if msg.nacked != tt.wantNack {
				t.Errorf("nacked = %v, want %v", msg.nacked, tt.wantNack)
			}
			if msg.requeued != tt.wantRequeue {
				t.Errorf("requeued = %v, want %v", msg.requeued, tt.wantRequeue)
			}
			if msg.ackCalls+msg.nackCalls != 1 {
				t.Errorf("message settled %d times, want exactly once", msg.ackCalls+msg.nackCalls)
			}
			if len(jq.enqueued) != tt.wantEnqueued {
				t.Fatalf("enqueued %d jobs, want %d", len(jq.enqueued), tt.wantEnqueued)
			}
			if tt.wantEnqueued > 0 {
				retry := jq.enqueued[0]
				if retry.RetryCount != job.RetryCount+1 {
					t.Errorf("retry count = %d, want %d", retry.RetryCount, job.RetryCount+1)
				}
				if retry.ID != job.ID {
					t.Errorf("retry should keep the job id")
				}
			}
		})
	}
}

func TestRetagger_ProcessJob_NotReadyRequeues(t *testing.T) {
	t.Parallel()

	rt := NewRetagger(&mockRouteTagStore{t: t}, nil, zap.NewNop())
	job := queue.NewRetagAllJob()
	later := time.Now().Add(time.Hour)
	job.NotBefore = &later

	msg := &mockMessage{job: job}
	if err := rt.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("ProcessJob() error = %v", err)
	}
	if !msg.nacked || !msg.requeued {
		t.Error("not-ready job should be requeued")
	}
}

func TestSameTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b []string
		want bool
	}{
		{nil, nil, true},
		{[]string{"forest", "water"}, []string{"water", "forest"}, true},
		{[]string{"forest"}, []string{"water"}, false},
		{[]string{"forest"}, []string{"forest", "water"}, false},
	}
	for _, tt := range tests {
		if got := sameTags(tt.a, tt.b); got != tt.want {
			t.Errorf("sameTags(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"balneario/internal/database"
	"balneario/internal/models"
)

type fakeBackend struct {
	err     error
	created []*models.Ticket
}

func (f *fakeBackend) CreateTicket(ctx context.Context, t *models.Ticket) (*models.Ticket, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, t)
	return t, nil
}

func newSyncWorker(t *testing.T, backend *fakeBackend, retry RetryPolicy) (*SyncWorker, *database.DB) {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "sync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := zerolog.Nop()
	return NewSyncWorker(db, backend, nil, retry, &logger), db
}

func walkInTicket() *models.Ticket {
	return &models.Ticket{
		Date:       time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC),
		Schedule:   models.ScheduleDay,
		Period:     models.PeriodFull,
		Headcount:  3,
		TotalPrice: 15000,
		WalkIn:     true,
		Customer:   models.WalkInCustomer{Name: "Pedro", Document: "123"},
	}
}

func TestRetryPolicyNextDelay(t *testing.T) {
	policy := RetryPolicy{
		MaxRetries:    5,
		InitialDelay:  time.Second,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2,
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 10 * time.Second}, // clamped
		{0, time.Second},      // below range
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, policy.NextDelay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestRetryPolicyDefaults(t *testing.T) {
	policy := RetryPolicy{}.withDefaults()
	assert.Equal(t, 5, policy.MaxRetries)
	assert.Equal(t, 2*time.Second, policy.InitialDelay)
	assert.Equal(t, time.Minute, policy.MaxDelay)
	assert.Equal(t, 2.0, policy.BackoffFactor)

	// Explicit settings survive.
	custom := RetryPolicy{MaxRetries: 1, InitialDelay: time.Second}.withDefaults()
	assert.Equal(t, 1, custom.MaxRetries)
	assert.Equal(t, time.Second, custom.InitialDelay)

	// A zero-value policy backs off from its defaults.
	assert.Equal(t, 2*time.Second, RetryPolicy{}.NextDelay(1))
	assert.Equal(t, 4*time.Second, RetryPolicy{}.NextDelay(2))
}

func TestEnqueueTicketPersists(t *testing.T) {
	worker, db := newSyncWorker(t, &fakeBackend{}, RetryPolicy{})
	ctx := context.Background()

	require.NoError(t, worker.EnqueueTicket(ctx, walkInTicket()))

	pending, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.TaskTypeCreateTicket, pending[0].TaskType)
}

func TestEnqueueNilTicketRejected(t *testing.T) {
	worker, _ := newSyncWorker(t, &fakeBackend{}, RetryPolicy{})
	assert.Error(t, worker.EnqueueTicket(context.Background(), nil))
}

func TestProcessTaskSendsTicket(t *testing.T) {
	backend := &fakeBackend{}
	worker, db := newSyncWorker(t, backend, RetryPolicy{})
	ctx := context.Background()

	require.NoError(t, worker.EnqueueTicket(ctx, walkInTicket()))

	tasks, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	worker.processTask(ctx, &tasks[0])

	require.Len(t, backend.created, 1)
	assert.Equal(t, "Pedro", backend.created[0].Customer.Name)

	pending, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestProcessTaskSchedulesRetryOnFailure(t *testing.T) {
	backend := &fakeBackend{err: errors.New("backend down")}
	worker, db := newSyncWorker(t, backend, RetryPolicy{MaxRetries: 3})
	ctx := context.Background()

	require.NoError(t, worker.EnqueueTicket(ctx, walkInTicket()))

	tasks, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	worker.processTask(ctx, &tasks[0])

	// The retry is scheduled in the future, so nothing is due yet.
	pending, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	failed, err := db.GetFailedSyncTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, failed)
}

func TestProcessTaskFailsAfterMaxRetries(t *testing.T) {
	backend := &fakeBackend{err: errors.New("backend down")}
	worker, db := newSyncWorker(t, backend, RetryPolicy{MaxRetries: 1})
	ctx := context.Background()

	require.NoError(t, worker.EnqueueTicket(ctx, walkInTicket()))

	tasks, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	worker.processTask(ctx, &tasks[0])

	failed, err := db.GetFailedSyncTasks(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "backend down", failed[0].LastError)
}

func TestProcessTaskRejectsUnknownType(t *testing.T) {
	worker, db := newSyncWorker(t, &fakeBackend{}, RetryPolicy{})
	ctx := context.Background()

	task := &models.SyncTask{TaskType: "mystery", Payload: `{}`, Status: models.SyncStatusPending}
	require.NoError(t, db.CreateSyncTask(ctx, task))

	worker.processTask(ctx, task)

	failed, err := db.GetFailedSyncTasks(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
}

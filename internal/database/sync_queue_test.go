package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"balneario/internal/models"
)

func TestCreateAndFetchSyncTask(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	task := &models.SyncTask{
		TaskType: models.TaskTypeCreateTicket,
		Payload:  `{"headcount":3}`,
		Status:   models.SyncStatusPending,
	}
	require.NoError(t, db.CreateSyncTask(ctx, task))
	assert.NotZero(t, task.ID)

	pending, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.TaskTypeCreateTicket, pending[0].TaskType)
	assert.Equal(t, `{"headcount":3}`, pending[0].Payload)
}

func TestFutureRetryIsNotPending(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	future := time.Now().Add(time.Hour)
	require.NoError(t, db.CreateSyncTask(ctx, &models.SyncTask{
		TaskType:    models.TaskTypeCreateTicket,
		Payload:     `{}`,
		Status:      models.SyncStatusRetry,
		NextRetryAt: &future,
	}))

	pending, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestUpdateSyncTaskStatus(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	task := &models.SyncTask{
		TaskType: models.TaskTypeCreateTicket,
		Payload:  `{}`,
		Status:   models.SyncStatusPending,
	}
	require.NoError(t, db.CreateSyncTask(ctx, task))

	t.Run("retry bumps count", func(t *testing.T) {
		next := time.Now().Add(-time.Minute)
		require.NoError(t, db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncStatusRetry, "timeout", &next))

		pending, err := db.GetPendingSyncTasks(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, 1, pending[0].RetryCount)
		assert.Equal(t, "timeout", pending[0].LastError)
	})

	t.Run("completed leaves the queue", func(t *testing.T) {
		require.NoError(t, db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncStatusCompleted, "", nil))

		pending, err := db.GetPendingSyncTasks(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("failed is listed separately", func(t *testing.T) {
		other := &models.SyncTask{TaskType: models.TaskTypeCreateTicket, Payload: `{}`, Status: models.SyncStatusPending}
		require.NoError(t, db.CreateSyncTask(ctx, other))
		require.NoError(t, db.UpdateSyncTaskStatus(ctx, other.ID, models.SyncStatusFailed, "gave up", nil))

		failed, err := db.GetFailedSyncTasks(ctx)
		require.NoError(t, err)
		require.Len(t, failed, 1)
		assert.Equal(t, "gave up", failed[0].LastError)
	})
}

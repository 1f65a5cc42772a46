// Package worker replays backend writes that were captured while the
// backend was unreachable. Walk-in tickets sold at the gate must never be
// lost, so they land in the local sync queue first and flow out from here.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"balneario/internal/database"
	"balneario/internal/metrics"
	"balneario/internal/models"
)

// TicketCreator is the slice of the API client the worker needs.
type TicketCreator interface {
	CreateTicket(ctx context.Context, t *models.Ticket) (*models.Ticket, error)
}

// SyncWorker drains the sync queue: local channel first, then the redis
// queue, then the database poll as the catch-all.
type SyncWorker struct {
	db            *database.DB
	backend       TicketCreator
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan models.SyncTask
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	batchSize     int
	logger        *zerolog.Logger
}

func NewSyncWorker(db *database.DB, backend TicketCreator, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *SyncWorker {
	return &SyncWorker{
		db:            db,
		backend:       backend,
		redis:         redisClient,
		retryPolicy:   retry.withDefaults(),
		queue:         make(chan models.SyncTask, models.WorkerQueueSize),
		redisQueueKey: "balneario:sync:queue",
		deadLetterKey: "balneario:sync:deadletter",
		pollInterval:  2 * time.Second,
		batchSize:     20,
		logger:        logger,
	}
}

// EnqueueTicket persists the ticket to the sync queue and schedules it.
// The database write is the durability guarantee; redis and the channel
// only make pickup faster.
func (w *SyncWorker) EnqueueTicket(ctx context.Context, ticket *models.Ticket) error {
	if ticket == nil {
		return errors.New("ticket is required")
	}

	payload, err := json.Marshal(ticket)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	task := models.SyncTask{
		TaskType: models.TaskTypeCreateTicket,
		Payload:  string(payload),
		Status:   models.SyncStatusPending,
	}

	if err := w.db.CreateSyncTask(ctx, &task); err != nil {
		return fmt.Errorf("persist sync task: %w", err)
	}

	if w.redis != nil {
		if err := w.pushRedis(ctx, task); err != nil {
			w.logger.Warn().Err(err).Msg("sync_worker: redis push failed, fallback to memory queue")
		} else {
			return nil
		}
	}

	select {
	case w.queue <- task:
	default:
		w.logger.Warn().Int64("task_id", task.ID).Msg("sync_worker: in-memory queue full, task left to polling")
	}

	return nil
}

// Start launches the main loop; stops when ctx is done.
func (w *SyncWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("sync_worker: started")
	defer w.logger.Info().Msg("sync_worker: stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if t, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, &t)
			continue
		}

		if t, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, &t)
			continue
		}

		tasks, err := w.db.GetPendingSyncTasks(ctx, w.batchSize)
		if err != nil {
			w.logger.Error().Err(err).Msg("sync_worker: fetch pending")
			time.Sleep(w.pollInterval)
			continue
		}
		if len(tasks) == 0 {
			time.Sleep(w.pollInterval)
			continue
		}

		for i := range tasks {
			w.processTask(ctx, &tasks[i])
		}
	}
}

func (w *SyncWorker) tryLocalQueue() (models.SyncTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return models.SyncTask{}, false
	}
}

func (w *SyncWorker) tryRedis(ctx context.Context) (models.SyncTask, bool) {
	if w.redis == nil {
		return models.SyncTask{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
			return models.SyncTask{}, false
		}
		w.logger.Error().Err(err).Msg("sync_worker: redis BRPOP error")
		return models.SyncTask{}, false
	}
	if len(res) != 2 {
		return models.SyncTask{}, false
	}
	var task models.SyncTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Error().Err(err).Msg("sync_worker: decode redis task")
		return models.SyncTask{}, false
	}
	return task, true
}

func (w *SyncWorker) processTask(ctx context.Context, task *models.SyncTask) {
	if task.TaskType != models.TaskTypeCreateTicket {
		w.failTask(ctx, task, fmt.Errorf("unknown task type: %s", task.TaskType))
		return
	}

	var ticket models.Ticket
	if err := json.Unmarshal([]byte(task.Payload), &ticket); err != nil {
		w.failTask(ctx, task, fmt.Errorf("decode payload: %w", err))
		return
	}

	if _, err := w.backend.CreateTicket(ctx, &ticket); err != nil {
		w.retryOrFail(ctx, task, err)
		return
	}

	metrics.IncSyncTask("synced")
	if err := w.db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncStatusCompleted, "", nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("sync_worker: mark completed")
	}
}

func (w *SyncWorker) retryOrFail(ctx context.Context, task *models.SyncTask, cause error) {
	attempt := task.RetryCount + 1
	if attempt >= w.retryPolicy.MaxRetries {
		metrics.IncSyncTask("failed")
		if err := w.db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncStatusFailed, cause.Error(), nil); err != nil {
			w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("sync_worker: mark failed")
		}
		w.pushDeadLetter(ctx, task)
		return
	}

	metrics.IncSyncTask("retried")
	nextDelay := w.retryPolicy.NextDelay(attempt)
	nextTime := time.Now().Add(nextDelay)
	if err := w.db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncStatusRetry, cause.Error(), &nextTime); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("sync_worker: mark retry")
	}
}

func (w *SyncWorker) failTask(ctx context.Context, task *models.SyncTask, cause error) {
	metrics.IncSyncTask("failed")
	if err := w.db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncStatusFailed, cause.Error(), nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("sync_worker: mark failed")
	}
	w.pushDeadLetter(ctx, task)
}

func (w *SyncWorker) pushRedis(ctx context.Context, task models.SyncTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, w.redisQueueKey, data).Err()
}

func (w *SyncWorker) pushDeadLetter(ctx context.Context, task *models.SyncTask) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(task)
	if err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("sync_worker: encode deadletter")
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("sync_worker: deadletter push")
	}
}

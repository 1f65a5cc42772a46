package repository

import (
	"context"
	"sync/atomic"
	"time"

	"balneario/internal/models"

	"github.com/rs/zerolog"
)

// FailoverStateRepository serves from the primary store until it errors,
// then degrades to the fallback and retries the primary after a recovery
// window.
type FailoverStateRepository struct {
	primary   StateRepository
	fallback  StateRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64 // unix nanos of last failed primary attempt
}

const recoveryWindow = time.Minute

func NewFailoverStateRepository(primary, fallback StateRepository, logger *zerolog.Logger) *FailoverStateRepository {
	return &FailoverStateRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverStateRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary state repository failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverStateRepository) shouldRetry() bool {
	return time.Since(time.Unix(0, r.lastCheck.Load())) > recoveryWindow
}

func (r *FailoverStateRepository) GetSession(ctx context.Context) (*models.Session, error) {
	if !r.isDown.Load() {
		s, err := r.primary.GetSession(ctx)
		if err == nil {
			return s, nil
		}
		r.markDown(err)
	} else if r.shouldRetry() {
		s, err := r.primary.GetSession(ctx)
		if err == nil {
			r.isDown.Store(false)
			return s, nil
		}
		r.lastCheck.Store(time.Now().UnixNano())
	}
	return r.fallback.GetSession(ctx)
}

func (r *FailoverStateRepository) SetSession(ctx context.Context, s *models.Session) error {
	if !r.isDown.Load() {
		err := r.primary.SetSession(ctx, s)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.SetSession(ctx, s)
}

func (r *FailoverStateRepository) ClearSession(ctx context.Context) error {
	var primaryErr error
	if !r.isDown.Load() {
		primaryErr = r.primary.ClearSession(ctx)
		if primaryErr != nil {
			r.markDown(primaryErr)
		}
	}
	// The wipe must land somewhere even when the primary is down.
	return r.fallback.ClearSession(ctx)
}

func (r *FailoverStateRepository) GetState(ctx context.Context, chatID int64) (*models.ChatState, error) {
	if !r.isDown.Load() {
		state, err := r.primary.GetState(ctx, chatID)
		if err == nil {
			return state, nil
		}
		r.markDown(err)
	} else if r.shouldRetry() {
		state, err := r.primary.GetState(ctx, chatID)
		if err == nil {
			r.isDown.Store(false)
			return state, nil
		}
		r.lastCheck.Store(time.Now().UnixNano())
	}
	return r.fallback.GetState(ctx, chatID)
}

func (r *FailoverStateRepository) SetState(ctx context.Context, state *models.ChatState) error {
	if !r.isDown.Load() {
		err := r.primary.SetState(ctx, state)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.SetState(ctx, state)
}

func (r *FailoverStateRepository) ClearState(ctx context.Context, chatID int64) error {
	if !r.isDown.Load() {
		err := r.primary.ClearState(ctx, chatID)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.ClearState(ctx, chatID)
}

func (r *FailoverStateRepository) CheckRateLimit(ctx context.Context, chatID int64, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, chatID, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.markDown(err)
	}
	return r.fallback.CheckRateLimit(ctx, chatID, limit, window)
}

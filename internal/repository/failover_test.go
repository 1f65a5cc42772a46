package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"balneario/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingRepo errors on every call until healed.
type failingRepo struct {
	*MemoryStateRepository
	failing bool
}

func (f *failingRepo) err() error {
	if f.failing {
		return errors.New("primary down")
	}
	return nil
}

func (f *failingRepo) GetSession(ctx context.Context) (*models.Session, error) {
	if err := f.err(); err != nil {
		return nil, err
	}
	return f.MemoryStateRepository.GetSession(ctx)
}

func (f *failingRepo) SetSession(ctx context.Context, s *models.Session) error {
	if err := f.err(); err != nil {
		return err
	}
	return f.MemoryStateRepository.SetSession(ctx, s)
}

func (f *failingRepo) ClearSession(ctx context.Context) error {
	if err := f.err(); err != nil {
		return err
	}
	return f.MemoryStateRepository.ClearSession(ctx)
}

func (f *failingRepo) GetState(ctx context.Context, chatID int64) (*models.ChatState, error) {
	if err := f.err(); err != nil {
		return nil, err
	}
	return f.MemoryStateRepository.GetState(ctx, chatID)
}

func (f *failingRepo) SetState(ctx context.Context, state *models.ChatState) error {
	if err := f.err(); err != nil {
		return err
	}
	return f.MemoryStateRepository.SetState(ctx, state)
}

func (f *failingRepo) ClearState(ctx context.Context, chatID int64) error {
	if err := f.err(); err != nil {
		return err
	}
	return f.MemoryStateRepository.ClearState(ctx, chatID)
}

func (f *failingRepo) CheckRateLimit(ctx context.Context, chatID int64, limit int, window time.Duration) (bool, error) {
	if err := f.err(); err != nil {
		return false, err
	}
	return f.MemoryStateRepository.CheckRateLimit(ctx, chatID, limit, window)
}

func newFailoverForTest(failing bool) (*FailoverStateRepository, *failingRepo, *MemoryStateRepository) {
	primary := &failingRepo{MemoryStateRepository: NewMemoryStateRepository(time.Hour), failing: failing}
	fallback := NewMemoryStateRepository(time.Hour)
	logger := zerolog.Nop()
	return NewFailoverStateRepository(primary, fallback, &logger), primary, fallback
}

func TestFailoverUsesPrimaryWhenHealthy(t *testing.T) {
	repo, primary, fallback := newFailoverForTest(false)
	ctx := context.Background()

	state := &models.ChatState{ChatID: 1, Step: "main_menu"}
	require.NoError(t, repo.SetState(ctx, state))

	got, err := primary.GetState(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, got)

	got, err = fallback.GetState(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFailoverDegradesToFallback(t *testing.T) {
	repo, _, fallback := newFailoverForTest(true)
	ctx := context.Background()

	session := &models.Session{Token: "tok", User: models.User{ID: 3}}
	require.NoError(t, repo.SetSession(ctx, session))

	got, err := fallback.GetSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "tok", got.Token)

	// Reads keep working from the fallback while the primary is down.
	read, err := repo.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", read.Token)
}

func TestFailoverRecoversAfterWindow(t *testing.T) {
	repo, primary, _ := newFailoverForTest(true)
	ctx := context.Background()

	// First call trips the breaker.
	_, err := repo.GetState(ctx, 1)
	require.NoError(t, err)
	assert.True(t, repo.isDown.Load())

	primary.failing = false
	// Pretend the recovery window elapsed.
	repo.lastCheck.Store(time.Now().Add(-2 * recoveryWindow).UnixNano())

	_, err = repo.GetState(ctx, 1)
	require.NoError(t, err)
	assert.False(t, repo.isDown.Load())
}

func TestFailoverClearSessionAlwaysClearsFallback(t *testing.T) {
	repo, _, fallback := newFailoverForTest(true)
	ctx := context.Background()

	require.NoError(t, fallback.SetSession(ctx, &models.Session{Token: "stale"}))
	require.NoError(t, repo.ClearSession(ctx))

	got, err := fallback.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFailoverRateLimit(t *testing.T) {
	repo, _, _ := newFailoverForTest(true)
	ctx := context.Background()

	allowed, err := repo.CheckRateLimit(ctx, 9, 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = repo.CheckRateLimit(ctx, 9, 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
}

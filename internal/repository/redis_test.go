package repository

import (
	"context"
	"testing"
	"time"

	"balneario/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStateRepository(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	defer client.Close()

	repo := NewRedisStateRepository(client, time.Hour)
	ctx := context.Background()

	t.Run("SetAndGetSession", func(t *testing.T) {
		session := &models.Session{
			Token: "bearer-token",
			User:  models.User{ID: 7, Name: "Carlos", Role: models.RoleStaff},
		}

		err := repo.SetSession(ctx, session)
		require.NoError(t, err)

		got, err := repo.GetSession(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, session.Token, got.Token)
		assert.Equal(t, session.User.Role, got.User.Role)
	})

	t.Run("ClearSession", func(t *testing.T) {
		require.NoError(t, repo.SetSession(ctx, &models.Session{Token: "x"}))
		require.NoError(t, repo.ClearSession(ctx))

		got, err := repo.GetSession(ctx)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("SetAndGetState", func(t *testing.T) {
		state := &models.ChatState{
			ChatID: 123,
			Step:   "select_date",
			Data:   map[string]string{"kind": "private"},
		}

		err := repo.SetState(ctx, state)
		require.NoError(t, err)

		got, err := repo.GetState(ctx, 123)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, state.Step, got.Step)
		assert.Equal(t, "private", got.Data["kind"])
	})

	t.Run("GetNonExistentState", func(t *testing.T) {
		got, err := repo.GetState(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		chatID := int64(789)
		limit := 2
		window := time.Second

		allowed, err := repo.CheckRateLimit(ctx, chatID, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, chatID, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, chatID, limit, window)
		require.NoError(t, err)
		assert.False(t, allowed)

		s.FastForward(window + time.Millisecond)

		allowed, err = repo.CheckRateLimit(ctx, chatID, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("NilClient", func(t *testing.T) {
		repo := NewRedisStateRepository(nil, time.Hour)
		_, err := repo.GetSession(ctx)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "redis client is nil")
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, Ping(ctx, client))
	})

	t.Run("Close", func(t *testing.T) {
		assert.NoError(t, Close(client))
	})
}

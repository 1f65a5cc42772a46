package repository

import (
	"context"
	"testing"
	"time"

	"balneario/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySession(t *testing.T) {
	repo := NewMemoryStateRepository(time.Hour)
	ctx := context.Background()

	s, err := repo.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)

	session := &models.Session{Token: "tok", User: models.User{ID: 1}}
	require.NoError(t, repo.SetSession(ctx, session))

	s, err = repo.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", s.Token)

	require.NoError(t, repo.ClearSession(ctx))
	s, err = repo.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestMemoryChatState(t *testing.T) {
	repo := NewMemoryStateRepository(time.Hour)
	ctx := context.Background()

	state := &models.ChatState{ChatID: 99, Step: "select_date", Data: map[string]string{"kind": "private"}}
	require.NoError(t, repo.SetState(ctx, state))

	got, err := repo.GetState(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, "select_date", got.Step)
	assert.Equal(t, "private", got.Data["kind"])

	require.NoError(t, repo.ClearState(ctx, 99))
	got, err = repo.GetState(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryRateLimit(t *testing.T) {
	repo := NewMemoryStateRepository(time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := repo.CheckRateLimit(ctx, 5, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := repo.CheckRateLimit(ctx, 5, 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	// A different chat has its own counter.
	allowed, err = repo.CheckRateLimit(ctx, 6, 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

// Package repository persists client-side state: the authentication session,
// per-chat wizard state and message rate counters. Redis is primary with an
// in-memory fallback behind the failover wrapper.
package repository

import (
	"context"
	"time"

	"balneario/internal/models"
)

// StateRepository is the full persistence surface the bot and session
// manager need.
type StateRepository interface {
	GetSession(ctx context.Context) (*models.Session, error)
	SetSession(ctx context.Context, s *models.Session) error
	ClearSession(ctx context.Context) error

	GetState(ctx context.Context, chatID int64) (*models.ChatState, error)
	SetState(ctx context.Context, state *models.ChatState) error
	ClearState(ctx context.Context, chatID int64) error

	CheckRateLimit(ctx context.Context, chatID int64, limit int, window time.Duration) (bool, error)
}

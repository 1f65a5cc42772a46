package repository

import (
	"context"
	"sync"
	"time"

	"balneario/internal/models"
)

type MemoryStateRepository struct {
	mu      sync.RWMutex
	session *models.Session

	states     sync.Map
	rateLimits sync.Map
	ttl        time.Duration
}

func NewMemoryStateRepository(ttl time.Duration) *MemoryStateRepository {
	return &MemoryStateRepository{ttl: ttl}
}

func (r *MemoryStateRepository) GetSession(ctx context.Context) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.session, nil
}

func (r *MemoryStateRepository) SetSession(ctx context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = s
	return nil
}

func (r *MemoryStateRepository) ClearSession(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = nil
	return nil
}

func (r *MemoryStateRepository) GetState(ctx context.Context, chatID int64) (*models.ChatState, error) {
	val, ok := r.states.Load(chatID)
	if !ok {
		return nil, nil
	}
	return val.(*models.ChatState), nil
}

func (r *MemoryStateRepository) SetState(ctx context.Context, state *models.ChatState) error {
	r.states.Store(state.ChatID, state)
	return nil
}

func (r *MemoryStateRepository) ClearState(ctx context.Context, chatID int64) error {
	r.states.Delete(chatID)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryStateRepository) CheckRateLimit(ctx context.Context, chatID int64, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(chatID)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{count: 1, expiresAt: now.Add(window)}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(chatID, entry)
	return entry.count <= limit, nil
}

// Package session owns authentication state. The manager is the single
// writer; everything that issues requests reads through it instead of
// caching tokens across suspension points.
package session

import (
	"context"
	"errors"
	"time"

	"balneario/internal/models"

	"github.com/rs/zerolog"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// Store persists the session snapshot. Implemented by the repository
// package (redis with memory failover).
type Store interface {
	GetSession(ctx context.Context) (*models.Session, error)
	SetSession(ctx context.Context, s *models.Session) error
	ClearSession(ctx context.Context) error
}

type Manager struct {
	store  Store
	logger *zerolog.Logger
}

func NewManager(store Store, logger *zerolog.Logger) *Manager {
	return &Manager{store: store, logger: logger}
}

// Establish decodes the token and persists the resulting session. A token
// that cannot be decoded is rejected and the prior session stays intact.
func (m *Manager) Establish(ctx context.Context, token string) (models.User, error) {
	user, err := DecodeToken(token)
	if err != nil {
		return models.User{}, err
	}

	s := &models.Session{Token: token, User: user, UpdatedAt: time.Now()}
	if err := m.store.SetSession(ctx, s); err != nil {
		return models.User{}, err
	}

	m.logger.Info().Int64("user_id", user.ID).Str("role", user.Role).Msg("session established")
	return user, nil
}

// Current returns the live session. A stored token that no longer decodes
// self-heals by clearing the session.
func (m *Manager) Current(ctx context.Context) (*models.Session, error) {
	s, err := m.store.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil || s.Token == "" {
		return nil, ErrNotAuthenticated
	}

	if _, err := DecodeToken(s.Token); err != nil {
		m.logger.Warn().Msg("stored session token is malformed, clearing")
		m.Clear(ctx)
		return nil, ErrNotAuthenticated
	}
	return s, nil
}

// Token returns the current bearer token, empty when unauthenticated.
func (m *Manager) Token(ctx context.Context) string {
	s, err := m.Current(ctx)
	if err != nil {
		return ""
	}
	return s.Token
}

// IsAuthenticated reports whether both a token and a decoded user exist.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	s, err := m.Current(ctx)
	return err == nil && s.User.ID != 0
}

// Clear wipes session state unconditionally. It cannot fail: store errors
// are logged and swallowed, the memory fallback guarantees the wipe lands.
func (m *Manager) Clear(ctx context.Context) {
	if err := m.store.ClearSession(ctx); err != nil {
		m.logger.Error().Err(err).Msg("session clear failed in store")
	}
}

// Role predicates are pure functions of the decoded identity.

func IsAdmin(u models.User) bool    { return u.Role == models.RoleAdmin }
func IsStaff(u models.User) bool    { return u.Role == models.RoleStaff }
func IsCustomer(u models.User) bool { return u.Role == models.RoleCustomer }

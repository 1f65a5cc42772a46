package session

import (
	"context"
	"errors"
	"os"
	"testing"

	"balneario/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)
	return signed
}

type fakeStore struct {
	session  *models.Session
	setErr   error
	clearErr error
}

func (f *fakeStore) GetSession(ctx context.Context) (*models.Session, error) {
	return f.session, nil
}

func (f *fakeStore) SetSession(ctx context.Context, s *models.Session) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.session = s
	return nil
}

func (f *fakeStore) ClearSession(ctx context.Context) error {
	f.session = nil
	return f.clearErr
}

func testLogger() *zerolog.Logger {
	l := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	return &l
}

func TestDecodeToken(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{
		"id":     float64(42),
		"nombre": "María López",
		"email":  "maria@example.com",
		"rol":    "administrador",
	})

	user, err := DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "María López", user.Name)
	assert.Equal(t, models.RoleAdmin, user.Role)
}

func TestDecodeTokenRoleNormalization(t *testing.T) {
	tests := []struct {
		wire string
		role string
	}{
		{"administrador", models.RoleAdmin},
		{"personal", models.RoleStaff},
		{"cliente", models.RoleCustomer},
		{"", models.RoleCustomer},
		{"something-else", models.RoleCustomer},
	}

	for _, tt := range tests {
		token := signedToken(t, jwt.MapClaims{"id": float64(1), "rol": tt.wire})
		user, err := DecodeToken(token)
		require.NoError(t, err)
		assert.Equal(t, tt.role, user.Role, "wire role %q", tt.wire)
	}
}

func TestDecodeTokenMalformed(t *testing.T) {
	for _, token := range []string{"", "not-a-jwt", "a.b", "x.y.z"} {
		_, err := DecodeToken(token)
		assert.ErrorIs(t, err, ErrMalformedToken, "token %q", token)
	}

	// Well-formed JWT lacking an identity is still unusable.
	token := signedToken(t, jwt.MapClaims{"rol": "cliente"})
	_, err := DecodeToken(token)
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestManagerEstablishAndCurrent(t *testing.T) {
	store := &fakeStore{}
	m := NewManager(store, testLogger())
	ctx := context.Background()

	token := signedToken(t, jwt.MapClaims{"id": float64(7), "rol": "personal"})
	user, err := m.Establish(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, user.Role)

	s, err := m.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, token, s.Token)
	assert.True(t, m.IsAuthenticated(ctx))
	assert.Equal(t, token, m.Token(ctx))
}

func TestManagerEstablishKeepsPriorSessionOnFailure(t *testing.T) {
	store := &fakeStore{}
	m := NewManager(store, testLogger())
	ctx := context.Background()

	good := signedToken(t, jwt.MapClaims{"id": float64(7)})
	_, err := m.Establish(ctx, good)
	require.NoError(t, err)

	_, err = m.Establish(ctx, "garbage")
	assert.ErrorIs(t, err, ErrMalformedToken)

	s, err := m.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, good, s.Token)

	store.setErr = errors.New("store down")
	_, err = m.Establish(ctx, signedToken(t, jwt.MapClaims{"id": float64(8)}))
	assert.Error(t, err)
}

func TestManagerSelfHealsMalformedStoredToken(t *testing.T) {
	store := &fakeStore{session: &models.Session{Token: "corrupted"}}
	m := NewManager(store, testLogger())
	ctx := context.Background()

	_, err := m.Current(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Nil(t, store.session)
}

func TestManagerClearNeverFails(t *testing.T) {
	store := &fakeStore{clearErr: errors.New("redis down")}
	m := NewManager(store, testLogger())

	m.Clear(context.Background())
	assert.False(t, m.IsAuthenticated(context.Background()))
}

func TestRolePredicates(t *testing.T) {
	assert.True(t, IsAdmin(models.User{Role: models.RoleAdmin}))
	assert.True(t, IsStaff(models.User{Role: models.RoleStaff}))
	assert.True(t, IsCustomer(models.User{Role: models.RoleCustomer}))
	assert.False(t, IsAdmin(models.User{Role: models.RoleStaff}))
}

func TestCapabilities(t *testing.T) {
	admin := models.User{Role: models.RoleAdmin}
	staff := models.User{Role: models.RoleStaff}
	customer := models.User{Role: models.RoleCustomer}

	assert.True(t, Can(admin, CapExportReservations))
	assert.True(t, Can(staff, CapRegisterWalkIn))
	assert.False(t, Can(customer, CapRegisterWalkIn))
	assert.True(t, Can(customer, CapCreateReservation))
	assert.False(t, Can(models.User{Role: "unknown"}, CapCreateReservation))

	grants := Capabilities(staff)
	assert.True(t, grants[CapManageShifts])
	assert.False(t, grants[CapExportReservations])
}

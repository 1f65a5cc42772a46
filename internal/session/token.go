package session

import (
	"errors"

	"balneario/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken means the stored token could not be decoded into an
// identity. Callers must clear the session rather than crash.
var ErrMalformedToken = errors.New("malformed session token")

// Backend role names on the wire; normalized to internal roles here and
// nowhere else.
var wireRoles = map[string]string{
	"administrador": models.RoleAdmin,
	"admin":         models.RoleAdmin,
	"personal":      models.RoleStaff,
	"staff":         models.RoleStaff,
	"cliente":       models.RoleCustomer,
	"customer":      models.RoleCustomer,
}

// DecodeToken extracts the identity from a bearer token without verifying
// its signature. Validation is the backend's job; the client only needs the
// claims for display and capability checks.
func DecodeToken(token string) (models.User, error) {
	if token == "" {
		return models.User{}, ErrMalformedToken
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return models.User{}, ErrMalformedToken
	}

	user := models.User{
		ID:       claimInt64(claims, "id", "sub", "userId"),
		Name:     claimString(claims, "name", "nombre"),
		Email:    claimString(claims, "email"),
		Document: claimString(claims, "document", "documento"),
	}

	rawRole := claimString(claims, "role", "rol")
	if normalized, ok := wireRoles[rawRole]; ok {
		user.Role = normalized
	} else {
		user.Role = models.RoleCustomer
	}

	if user.ID == 0 {
		return models.User{}, ErrMalformedToken
	}
	return user, nil
}

func claimString(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if v, ok := claims[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func claimInt64(claims jwt.MapClaims, keys ...string) int64 {
	for _, key := range keys {
		switch v := claims[key].(type) {
		case float64:
			return int64(v)
		case int64:
			return v
		}
	}
	return 0
}

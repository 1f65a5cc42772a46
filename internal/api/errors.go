package api

import (
	"errors"
	"fmt"
)

// ErrSessionExpired is returned when the backend answers 401. The stored
// session is already cleared by the time callers see this; the request is
// never retried.
var ErrSessionExpired = errors.New("session expired")

// APIError carries a non-2xx backend answer with whatever message the
// backend attached.
type APIError struct {
	Status    int
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("backend: status %d", e.Status)
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 404
}

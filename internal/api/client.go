package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"balneario/internal/config"
	"balneario/internal/events"
	"balneario/internal/metrics"
	"balneario/internal/session"
)

// Client talks to the booking backend. Every request carries the bearer
// token of the current session when one exists; a 401 clears the session
// and surfaces ErrSessionExpired without retrying.
type Client struct {
	baseURL string
	http    *http.Client
	session *session.Manager
	limiter *rate.Limiter
	bus     *events.EventBus
	logger  *zerolog.Logger
}

func New(cfg config.BackendConfig, sess *session.Manager, logger *zerolog.Logger) *Client {
	rps := cfg.RateRPS
	if rps <= 0 {
		rps = 10
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		session: sess,
		limiter: rate.NewLimiter(rate.Limit(rps), cfg.RateBurst),
		logger:  logger,
	}
}

// SetEventBus attaches the bus that session-expiry notices go out on.
// The client works without one.
func (c *Client) SetEventBus(bus *events.EventBus) {
	c.bus = bus
}

// backendError is the error envelope: some endpoints use "message",
// others "error".
type backendError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e *backendError) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// do performs one request against the backend. Out may be nil when the
// caller does not need the body.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.IncAPIRequest(endpointLabel(path), "error")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("backend request")

	if resp.StatusCode == http.StatusUnauthorized {
		c.session.Clear(ctx)
		metrics.IncSessionExpired()
		metrics.IncAPIRequest(endpointLabel(path), "unauthorized")
		if err := c.bus.PublishJSON(events.EventSessionExpired, events.SessionEventPayload{
			RequestID: requestID,
			Path:      path,
		}); err != nil {
			c.logger.Error().Err(err).Msg("publish session event failed")
		}
		return ErrSessionExpired
	}

	if resp.StatusCode >= 400 {
		metrics.IncAPIRequest(endpointLabel(path), "error")
		var envelope backendError
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		return &APIError{
			Status:    resp.StatusCode,
			Message:   envelope.text(),
			RequestID: requestID,
		}
	}

	metrics.IncAPIRequest(endpointLabel(path), "ok")

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// endpointLabel reduces a path to its first segment after /api so metric
// cardinality stays bounded.
func endpointLabel(path string) string {
	trimmed := strings.TrimPrefix(path, "/api/")
	if i := strings.IndexAny(trimmed, "/?"); i >= 0 {
		trimmed = trimmed[:i]
	}
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}

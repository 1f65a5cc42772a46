package api

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"balneario/internal/models"
)

// Occupancy asks the backend how full a date+schedule slot is for the
// given reservation kind. Availability policy lives in the availability
// package; this is the raw query.
func (c *Client) Occupancy(ctx context.Context, date time.Time, schedule, kind string) (*models.Occupancy, error) {
	query := url.Values{}
	query.Set("fecha", date.Format(wireDate))
	query.Set("horario", scheduleToWire[schedule])
	query.Set("tipo", wireKind(kind))

	var wire ocupacionWire
	if err := c.do(ctx, "GET", fmt.Sprintf("/api/ocupacion?%s", query.Encode()), nil, &wire); err != nil {
		return nil, err
	}
	return wire.toModel(), nil
}

func wireKind(kind string) string {
	if kind == models.KindPrivate {
		return "privada"
	}
	return "general"
}

// Package availability decides whether a slot can take a booking. It wraps
// the raw occupancy query with the policy pieces: the private-event hard
// block, capacity math, fail-open degradation, and latest-wins sequencing
// so a slow answer for an abandoned slot never overwrites a newer one.
package availability

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"balneario/internal/config"
	"balneario/internal/metrics"
	"balneario/internal/models"
)

// ErrStale marks a result that arrived after a newer check started.
// Callers discard it without showing anything to the user.
var ErrStale = errors.New("availability result is stale")

// OccupancyQuerier is the slice of the API client the checker needs.
type OccupancyQuerier interface {
	Occupancy(ctx context.Context, date time.Time, schedule, kind string) (*models.Occupancy, error)
}

// Result is the checker's verdict for one slot.
type Result struct {
	Available        bool
	Remaining        int
	BlockedByPrivate bool
	// Degraded is set when the backend query failed and the fail-open
	// policy assumed full availability. The backend still validates on
	// submit, so a degraded yes can only ever over-promise, not oversell.
	Degraded bool
}

type Checker struct {
	querier  OccupancyQuerier
	capacity int
	failOpen bool
	logger   *zerolog.Logger
	seq      atomic.Uint64
}

func NewChecker(querier OccupancyQuerier, cfg config.AvailabilityConfig, venue config.VenueConfig, logger *zerolog.Logger) *Checker {
	return &Checker{
		querier:  querier,
		capacity: venue.Capacity,
		failOpen: cfg.FailOpen,
		logger:   logger,
	}
}

// Check queries occupancy for the slot and applies policy. A private-event
// block rejects outright no matter the counts. When the query fails and
// fail-open is on, the answer assumes an empty venue and is marked
// Degraded; with fail-open off the error propagates.
func (c *Checker) Check(ctx context.Context, date time.Time, schedule, kind string, headcount int) (Result, error) {
	// Over-capacity groups can never fit; answer without a network call.
	if headcount > c.capacity {
		return Result{Available: false, Remaining: c.capacity}, nil
	}

	seq := c.seq.Add(1)

	occ, err := c.querier.Occupancy(ctx, date, schedule, kind)

	if c.seq.Load() != seq {
		return Result{}, ErrStale
	}

	if err != nil {
		if !c.failOpen {
			return Result{}, err
		}
		c.logger.Warn().Err(err).Time("date", date).Str("schedule", schedule).
			Msg("occupancy query failed, assuming availability")
		metrics.IncAvailabilityFallback()
		return Result{
			Available: headcount <= c.capacity,
			Remaining: c.capacity,
			Degraded:  true,
		}, nil
	}

	if occ.BlockedByPrivate {
		return Result{BlockedByPrivate: true}, nil
	}

	remaining := c.capacity - occ.Count
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Available: occ.Available && headcount <= remaining,
		Remaining: remaining,
	}, nil
}

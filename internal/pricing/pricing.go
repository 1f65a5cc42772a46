// Package pricing derives reservation totals from the deployment tariff.
// All amounts are whole pesos; every quote is recomputed from its inputs so
// a total can never drift from its components.
package pricing

import (
	"errors"
	"fmt"
	"time"

	"balneario/internal/config"
	"balneario/internal/models"
)

var (
	ErrHeadcountTooLow  = errors.New("headcount must be at least 1")
	ErrHeadcountTooHigh = errors.New("headcount exceeds venue capacity")
	ErrUnknownKind      = errors.New("unknown reservation kind")
	ErrUnknownSchedule  = errors.New("unknown schedule")
	ErrUnknownService   = errors.New("unknown service")
	ErrInvalidRange     = errors.New("end date before start date")
)

// Quote is a full price breakdown. Total is always the sum of the other
// three amounts.
type Quote struct {
	UnitPrice    int64
	Days         int
	BasePrice    int64
	ServicesCost int64
	Surcharge    int64
	Total        int64
	MinHeadcount int // applicable private threshold, 0 for general
}

// Input describes what is being priced. DateEnd may be zero for a
// single-day reservation.
type Input struct {
	Kind      string
	Schedule  string
	DateStart time.Time
	DateEnd   time.Time
	Headcount int
	Services  []string
}

// Engine prices reservations against a fixed tariff and service catalog.
type Engine struct {
	tariff   config.PricingConfig
	venue    config.VenueConfig
	services models.ServiceCatalog
}

func NewEngine(tariff config.PricingConfig, venue config.VenueConfig, services models.ServiceCatalog) *Engine {
	return &Engine{tariff: tariff, venue: venue, services: services}
}

// Quote computes the price breakdown for the input, validating headcount
// against the venue capacity before touching any rate.
func (e *Engine) Quote(in Input) (Quote, error) {
	if in.Headcount < 1 {
		return Quote{}, ErrHeadcountTooLow
	}
	if in.Headcount > e.venue.Capacity {
		return Quote{}, fmt.Errorf("%w: %d > %d", ErrHeadcountTooHigh, in.Headcount, e.venue.Capacity)
	}
	if !in.DateEnd.IsZero() && in.DateEnd.Before(in.DateStart) {
		return Quote{}, ErrInvalidRange
	}

	days := DayCount(in.DateStart, in.DateEnd)

	var q Quote
	q.Days = days

	switch in.Kind {
	case models.KindPrivate:
		weekend := IsWeekend(in.DateStart)
		if weekend {
			q.UnitPrice = e.tariff.PrivateWeekend
			q.MinHeadcount = e.venue.MinPrivateWeekend
		} else {
			q.UnitPrice = e.tariff.PrivateWeekday
			q.MinHeadcount = e.venue.MinPrivateWeekday
		}
		if in.Headcount < q.MinHeadcount {
			// Flat amount, not scaled by headcount or days.
			q.Surcharge = e.tariff.MinimumSurcharge
		}
	case models.KindGeneral:
		switch in.Schedule {
		case models.ScheduleNight:
			q.UnitPrice = e.tariff.GeneralNight
		case models.ScheduleDay:
			q.UnitPrice = e.tariff.GeneralDay
		default:
			return Quote{}, fmt.Errorf("%w: %q", ErrUnknownSchedule, in.Schedule)
		}
	default:
		return Quote{}, fmt.Errorf("%w: %q", ErrUnknownKind, in.Kind)
	}

	q.BasePrice = int64(in.Headcount) * q.UnitPrice * int64(days)

	for _, id := range in.Services {
		if !e.services.Has(id) {
			return Quote{}, fmt.Errorf("%w: %q", ErrUnknownService, id)
		}
		q.ServicesCost += e.services.Rate(id) * int64(days)
	}

	q.Total = q.BasePrice + q.ServicesCost + q.Surcharge
	return q, nil
}

// DayCount is the inclusive day difference between start and end, minimum 1.
// A zero end date means single-day.
func DayCount(start, end time.Time) int {
	if start.IsZero() || end.IsZero() {
		return 1
	}
	s := midnight(start)
	e := midnight(end)
	if !e.After(s) {
		return 1
	}
	return int(e.Sub(s).Hours()/24) + 1
}

// IsWeekend reports whether the date falls on Saturday or Sunday.
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

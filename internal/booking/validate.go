package booking

import (
	"errors"
	"fmt"
	"time"

	"balneario/internal/config"
	"balneario/internal/models"
)

var (
	ErrMissingDate   = errors.New("start date is required")
	ErrPastDate      = errors.New("start date is in the past")
	ErrDateTooFar    = errors.New("start date is beyond the booking window")
	ErrBadSchedule   = errors.New("invalid schedule")
	ErrBadPeriod     = errors.New("period applies to the day schedule only")
	ErrMissingWalkIn = errors.New("walk-in customer name and document are required")
)

// Validator applies the client-detected checks that must block submission
// before any network call is made.
type Validator struct {
	venue config.VenueConfig
}

func NewValidator(venue config.VenueConfig) *Validator {
	return &Validator{venue: venue}
}

// ValidateDates checks the booking window: start must lie within
// [today+min_advance, today+max_advance] and end must not precede start.
func (v *Validator) ValidateDates(start, end time.Time, now time.Time) error {
	if start.IsZero() {
		return ErrMissingDate
	}

	today := midnight(now)
	startDay := midnight(start)

	min := today.AddDate(0, 0, v.venue.MinAdvanceDays-1)
	if startDay.Before(min) {
		if startDay.Before(today) {
			return ErrPastDate
		}
		return fmt.Errorf("%w: at least %d day(s) in advance", ErrPastDate, v.venue.MinAdvanceDays)
	}

	max := today.AddDate(0, 0, v.venue.MaxAdvanceDays)
	if startDay.After(max) {
		return fmt.Errorf("%w: at most %d days ahead", ErrDateTooFar, v.venue.MaxAdvanceDays)
	}

	if !end.IsZero() && midnight(end).Before(startDay) {
		return errors.New("end date before start date")
	}
	return nil
}

// ValidateSchedule checks the schedule/period combination.
func (v *Validator) ValidateSchedule(schedule, period string) error {
	switch schedule {
	case models.ScheduleDay:
		switch period {
		case "", models.PeriodFull, models.PeriodMorning, models.PeriodAfternoon:
			return nil
		}
		return fmt.Errorf("%w: %q", ErrBadPeriod, period)
	case models.ScheduleNight:
		if period != "" && period != models.PeriodFull {
			return ErrBadPeriod
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrBadSchedule, schedule)
	}
}

// ValidateWalkIn requires identifying data for staff-entered tickets.
func (v *Validator) ValidateWalkIn(c models.WalkInCustomer) error {
	if c.Name == "" || c.Document == "" {
		return ErrMissingWalkIn
	}
	return nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

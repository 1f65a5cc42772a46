package booking

import (
	"testing"
	"time"

	"balneario/internal/config"
	"balneario/internal/models"

	"github.com/stretchr/testify/assert"
)

func testValidator() *Validator {
	return NewValidator(config.VenueConfig{
		Capacity:          120,
		MinPrivateWeekday: 10,
		MinPrivateWeekend: 15,
		MinAdvanceDays:    1,
		MaxAdvanceDays:    90,
	})
}

func TestValidateDates(t *testing.T) {
	v := testValidator()
	now := time.Date(2026, 9, 10, 15, 30, 0, 0, time.UTC)

	assert.ErrorIs(t, v.ValidateDates(time.Time{}, time.Time{}, now), ErrMissingDate)
	assert.ErrorIs(t, v.ValidateDates(now.AddDate(0, 0, -1), time.Time{}, now), ErrPastDate)
	assert.ErrorIs(t, v.ValidateDates(now.AddDate(0, 0, 91), time.Time{}, now), ErrDateTooFar)

	// Today counts as within the window when min_advance_days is 1.
	assert.NoError(t, v.ValidateDates(now, time.Time{}, now))
	assert.NoError(t, v.ValidateDates(now.AddDate(0, 0, 90), time.Time{}, now))

	start := now.AddDate(0, 0, 5)
	assert.NoError(t, v.ValidateDates(start, start.AddDate(0, 0, 3), now))
	assert.Error(t, v.ValidateDates(start, start.AddDate(0, 0, -1), now))
}

func TestValidateSchedule(t *testing.T) {
	v := testValidator()

	assert.NoError(t, v.ValidateSchedule(models.ScheduleDay, models.PeriodFull))
	assert.NoError(t, v.ValidateSchedule(models.ScheduleDay, models.PeriodMorning))
	assert.NoError(t, v.ValidateSchedule(models.ScheduleDay, ""))
	assert.NoError(t, v.ValidateSchedule(models.ScheduleNight, ""))
	assert.ErrorIs(t, v.ValidateSchedule(models.ScheduleNight, models.PeriodMorning), ErrBadPeriod)
	assert.ErrorIs(t, v.ValidateSchedule("dawn", ""), ErrBadSchedule)
}

func TestValidateWalkIn(t *testing.T) {
	v := testValidator()

	assert.NoError(t, v.ValidateWalkIn(models.WalkInCustomer{Name: "Ana Pérez", Document: "11222333"}))
	assert.ErrorIs(t, v.ValidateWalkIn(models.WalkInCustomer{Name: "Ana Pérez"}), ErrMissingWalkIn)
	assert.ErrorIs(t, v.ValidateWalkIn(models.WalkInCustomer{Document: "11222333"}), ErrMissingWalkIn)
}

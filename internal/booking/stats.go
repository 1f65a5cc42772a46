package booking

import (
	"sort"
	"time"

	"balneario/internal/models"
)

// Stats aggregates a reservation list for the dashboard view.
type Stats struct {
	Total     int
	Pending   int
	Confirmed int
	Cancelled int
	Completed int
	Upcoming  []*models.Reservation
}

// ComputeStats counts reservations per state and collects the next confirmed
// upcoming ones, soonest first, capped at limit.
func ComputeStats(reservations []*models.Reservation, now time.Time, limit int) Stats {
	var s Stats
	s.Total = len(reservations)

	for _, r := range reservations {
		switch r.Status {
		case models.StatusPending:
			s.Pending++
		case models.StatusConfirmed:
			s.Confirmed++
		case models.StatusCancelled, models.StatusCancellationPending:
			s.Cancelled++
		case models.StatusCompleted:
			s.Completed++
		}

		if r.Status == models.StatusConfirmed && r.DateStart.After(now) {
			s.Upcoming = append(s.Upcoming, r)
		}
	}

	sort.Slice(s.Upcoming, func(i, j int) bool {
		return s.Upcoming[i].DateStart.Before(s.Upcoming[j].DateStart)
	})
	if limit > 0 && len(s.Upcoming) > limit {
		s.Upcoming = s.Upcoming[:limit]
	}
	return s
}

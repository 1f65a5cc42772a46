// Package booking holds the client-side reservation lifecycle rules. The
// backend owns the authoritative state; everything here only decides which
// transition requests the client is allowed to issue.
package booking

import (
	"errors"
	"time"

	"balneario/internal/models"
)

var (
	ErrInvalidTransition = errors.New("transition not allowed from current state")
	ErrNotModifiable     = errors.New("reservation can no longer be modified")
	ErrNotElapsed        = errors.New("reservation dates have not elapsed")
	ErrUnknownState      = errors.New("unknown reservation state")
)

// transitions maps each state to the target states a client may request.
var transitions = map[string][]string{
	models.StatusPending: {
		models.StatusConfirmed,           // payment registration
		models.StatusCancellationPending, // cancel request
	},
	models.StatusConfirmed: {
		models.StatusCancellationPending,
		models.StatusCompleted, // date elapsed, server-driven
	},
	models.StatusCancellationPending: {
		models.StatusCancelled, // server confirmation
	},
	models.StatusCancelled: {},
	models.StatusCompleted: {},
}

// CanTransition reports whether a request from one state to another is
// legal. Unknown states allow nothing.
func CanTransition(from, to string) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// RequestTransition validates the requested target state.
func RequestTransition(from, to string) error {
	if _, ok := transitions[from]; !ok {
		return ErrUnknownState
	}
	if !CanTransition(from, to) {
		return ErrInvalidTransition
	}
	return nil
}

// IsTerminal reports whether no further client request can change the state.
func IsTerminal(state string) bool {
	targets, ok := transitions[state]
	return ok && len(targets) == 0
}

// IsActive reports whether the reservation still occupies its slot.
func IsActive(state string) bool {
	return state == models.StatusPending || state == models.StatusConfirmed
}

// CanComplete allows a completion request only for confirmed reservations
// whose last day is already behind us.
func CanComplete(r *models.Reservation, now time.Time) error {
	if err := RequestTransition(r.Status, models.StatusCompleted); err != nil {
		return err
	}
	end := r.DateEnd
	if end.IsZero() {
		end = r.DateStart
	}
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if !endDay.Before(today) {
		return ErrNotElapsed
	}
	return nil
}

// CanModifyHeadcount allows headcount changes only while the reservation is
// pending or confirmed and its start date has not elapsed.
func CanModifyHeadcount(r *models.Reservation, now time.Time) error {
	if !IsActive(r.Status) {
		return ErrNotModifiable
	}
	startDay := time.Date(r.DateStart.Year(), r.DateStart.Month(), r.DateStart.Day(), 0, 0, 0, 0, now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if startDay.Before(today) {
		return ErrNotModifiable
	}
	return nil
}

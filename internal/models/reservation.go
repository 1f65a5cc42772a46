package models

import "time"

// Reservation is the one canonical client-side shape. The backend speaks a
// Spanish snake_case dialect; translation happens at the API boundary and
// nowhere else.
type Reservation struct {
	ID           int64     `json:"id"`
	Kind         string    `json:"kind"` // general, private
	DateStart    time.Time `json:"date_start"`
	DateEnd      time.Time `json:"date_end"`
	Schedule     string    `json:"schedule"` // day, night
	Period       string    `json:"period"`   // full, morning, afternoon (day only)
	Headcount    int       `json:"headcount"`
	Services     []string  `json:"services"`
	BasePrice    int64     `json:"base_price"`
	ServicesCost int64     `json:"services_cost"`
	Surcharge    int64     `json:"surcharge"`
	TotalPrice   int64     `json:"total_price"`
	Status       string    `json:"status"`
	Observations string    `json:"observations"`
	OwnerID      int64     `json:"owner_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Days returns the inclusive day span of the reservation, minimum 1.
func (r *Reservation) Days() int {
	if r.DateEnd.IsZero() || !r.DateEnd.After(r.DateStart) {
		return 1
	}
	return int(r.DateEnd.Sub(r.DateStart).Hours()/24) + 1
}

// SingleDay reports whether the reservation covers exactly one day.
func (r *Reservation) SingleDay() bool {
	return r.Days() == 1
}

// Ticket is a general-entry sale. Single-day by definition; WalkIn is set
// when staff registers an on-site customer, in which case the ticket is
// confirmed immediately instead of pending payment.
type Ticket struct {
	ID         int64          `json:"id"`
	Date       time.Time      `json:"date"`
	Schedule   string         `json:"schedule"`
	Period     string         `json:"period"`
	Headcount  int            `json:"headcount"`
	UnitPrice  int64          `json:"unit_price"`
	TotalPrice int64          `json:"total_price"`
	Status     string         `json:"status"`
	WalkIn     bool           `json:"walk_in"`
	Customer   WalkInCustomer `json:"customer"`
	OwnerID    int64          `json:"owner_id"`
	CreatedAt  time.Time      `json:"created_at"`
}

// WalkInCustomer identifies the on-site customer captured by staff.
type WalkInCustomer struct {
	Name     string `json:"name"`
	Document string `json:"document"`
	Phone    string `json:"phone"`
}

// Occupancy is the backend's answer for a date+schedule slot.
type Occupancy struct {
	Available        bool `json:"available"`
	Count            int  `json:"count"`
	BlockedByPrivate bool `json:"blocked_by_private"`
}

// Payment registers money against a reservation. Creating one is the
// client-visible confirm step.
type Payment struct {
	ID            int64     `json:"id"`
	ReservationID int64     `json:"reservation_id"`
	Method        string    `json:"method"`
	Amount        int64     `json:"amount"`
	CreatedAt     time.Time `json:"created_at"`
}

// Shift assigns a staff member to a working date.
type Shift struct {
	ID      int64     `json:"id"`
	StaffID int64     `json:"staff_id"`
	Date    time.Time `json:"date"`
}

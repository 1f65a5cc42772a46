package models

// Reservation lifecycle. The backend is authoritative; the client only ever
// requests a transition and adopts whatever state comes back.
const (
	StatusPending             = "pending"
	StatusConfirmed           = "confirmed"
	StatusCancellationPending = "cancellation_pending"
	StatusCancelled           = "cancelled"
	StatusCompleted           = "completed"
)

const (
	KindGeneral = "general"
	KindPrivate = "private"
)

const (
	ScheduleDay   = "day"
	ScheduleNight = "night"
)

// Sub-periods of the day schedule. Night has no sub-period.
const (
	PeriodFull      = "full"
	PeriodMorning   = "morning"
	PeriodAfternoon = "afternoon"
)

const (
	RoleAdmin    = "admin"
	RoleStaff    = "staff"
	RoleCustomer = "customer"
)

const (
	ServiceKitchen = "kitchen"
	ServiceRoom    = "room"
)

// Fixed access windows, sent as horarioInicio/horarioFin on create.
const (
	DayOpen       = "09:00"
	MorningClose  = "12:00"
	AfternoonOpen = "14:00"
	DayClose      = "18:00"
	NightOpen     = "18:00"
	NightClose    = "23:00"
)

const (
	// DefaultSessionTTL lifetime of a persisted session in the state store.
	DefaultSessionTTL = 24 * 60 * 60 // seconds

	// DefaultStateTTL lifetime of wizard chat state.
	DefaultStateTTL = 24 * 60 * 60 // seconds

	// WorkerQueueSize size of the offline ticket sync queue channel.
	WorkerQueueSize = 256

	// DefaultPaginationSize reservation list page size.
	DefaultPaginationSize = 5

	// RateLimitMessages messages allowed per chat per window.
	RateLimitMessages = 20

	// RateLimitWindow rate limit window in seconds.
	RateLimitWindow = 60
)

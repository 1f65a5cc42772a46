package session

import "balneario/internal/models"

// Capability names an action the UI may expose. Checked once per
// navigation; this is a rendering decision, not a security boundary.
type Capability string

const (
	CapCreateReservation   Capability = "create_reservation"
	CapCreateTicket        Capability = "create_ticket"
	CapRegisterWalkIn      Capability = "register_walk_in"
	CapViewAllReservations Capability = "view_all_reservations"
	CapManageShifts        Capability = "manage_shifts"
	CapRegisterPayment     Capability = "register_payment"
	CapExportReservations  Capability = "export_reservations"
)

var roleCapabilities = map[string][]Capability{
	models.RoleAdmin: {
		CapCreateReservation, CapCreateTicket, CapRegisterWalkIn,
		CapViewAllReservations, CapManageShifts, CapRegisterPayment,
		CapExportReservations,
	},
	models.RoleStaff: {
		CapCreateReservation, CapCreateTicket, CapRegisterWalkIn,
		CapViewAllReservations, CapManageShifts,
	},
	models.RoleCustomer: {
		CapCreateReservation, CapCreateTicket, CapRegisterPayment,
	},
}

// Can reports whether the user's role grants the capability.
func Can(u models.User, cap Capability) bool {
	for _, granted := range roleCapabilities[u.Role] {
		if granted == cap {
			return true
		}
	}
	return false
}

// Capabilities returns the full grant set for a user, for one-shot
// evaluation when building a menu.
func Capabilities(u models.User) map[Capability]bool {
	out := make(map[Capability]bool)
	for _, granted := range roleCapabilities[u.Role] {
		out[granted] = true
	}
	return out
}

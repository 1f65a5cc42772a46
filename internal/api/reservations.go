package api

import (
	"context"
	"fmt"

	"balneario/internal/models"
)

// Reservations lists reservations visible to the current session. The
// backend scopes the answer by role: customers see their own, staff and
// admins see everything.
func (c *Client) Reservations(ctx context.Context) ([]*models.Reservation, error) {
	var wire []reservaWire
	if err := c.do(ctx, "GET", "/api/reservas", nil, &wire); err != nil {
		return nil, err
	}

	reservations := make([]*models.Reservation, 0, len(wire))
	for i := range wire {
		reservations = append(reservations, wire[i].toModel())
	}
	return reservations, nil
}

// CreateReservation submits a new reservation and returns the backend's
// copy, including the assigned id and whatever state it decided on.
func (c *Client) CreateReservation(ctx context.Context, r *models.Reservation) (*models.Reservation, error) {
	windowFrom, windowTo := scheduleWindow(r.Schedule, r.Period)

	services := make([]string, 0, len(r.Services))
	for _, svc := range r.Services {
		if name, ok := serviceToWire[svc]; ok {
			services = append(services, name)
		}
	}

	req := crearReservaRequest{
		TipoReservaID:  kindToWireID[r.Kind],
		FechaInicio:    r.DateStart.Format(wireDate),
		FechaFin:       r.DateEnd.Format(wireDate),
		HorarioInicio:  windowFrom,
		HorarioFin:     windowTo,
		Personas:       r.Headcount,
		Servicios:      services,
		Observaciones:  r.Observations,
		PrecioBase:     r.BasePrice,
		CargoAdicional: r.Surcharge,
		PrecioTotal:    r.TotalPrice,
		Estado:         statusToWire[models.StatusPending],
		ClienteID:      r.OwnerID,
	}

	var wire reservaWire
	if err := c.do(ctx, "POST", "/api/reservas", req, &wire); err != nil {
		return nil, err
	}
	return wire.toModel(), nil
}

// UpdateReservation replaces the mutable fields of an existing reservation
// and returns the backend's copy.
func (c *Client) UpdateReservation(ctx context.Context, r *models.Reservation) (*models.Reservation, error) {
	windowFrom, windowTo := scheduleWindow(r.Schedule, r.Period)

	services := make([]string, 0, len(r.Services))
	for _, svc := range r.Services {
		if name, ok := serviceToWire[svc]; ok {
			services = append(services, name)
		}
	}

	req := crearReservaRequest{
		TipoReservaID:  kindToWireID[r.Kind],
		FechaInicio:    r.DateStart.Format(wireDate),
		FechaFin:       r.DateEnd.Format(wireDate),
		HorarioInicio:  windowFrom,
		HorarioFin:     windowTo,
		Personas:       r.Headcount,
		Servicios:      services,
		Observaciones:  r.Observations,
		PrecioBase:     r.BasePrice,
		CargoAdicional: r.Surcharge,
		PrecioTotal:    r.TotalPrice,
		Estado:         statusToWire[r.Status],
		ClienteID:      r.OwnerID,
	}

	var wire reservaWire
	if err := c.do(ctx, "PUT", fmt.Sprintf("/api/reservas/%d", r.ID), req, &wire); err != nil {
		return nil, err
	}
	return wire.toModel(), nil
}

type estadoRequest struct {
	Estado string `json:"estado"`
}

// SetReservationState asks the backend for a lifecycle transition. Callers
// validate the transition first; the backend remains authoritative.
func (c *Client) SetReservationState(ctx context.Context, id int64, status string) error {
	estado, ok := statusToWire[status]
	if !ok {
		return fmt.Errorf("unknown reservation state %q", status)
	}
	return c.do(ctx, "PATCH", fmt.Sprintf("/api/reservas/%d", id), estadoRequest{Estado: estado}, nil)
}

type personasRequest struct {
	Personas int `json:"personas"`
}

// UpdateHeadcount changes the headcount of an existing reservation.
func (c *Client) UpdateHeadcount(ctx context.Context, id int64, headcount int) error {
	return c.do(ctx, "PATCH", fmt.Sprintf("/api/reservas/%d/personas", id), personasRequest{Personas: headcount}, nil)
}

type serviciosRequest struct {
	Servicios []string `json:"servicios"`
}

// UpdateServices replaces the extra-service selection of a reservation.
func (c *Client) UpdateServices(ctx context.Context, id int64, services []string) error {
	wire := make([]string, 0, len(services))
	for _, svc := range services {
		if name, ok := serviceToWire[svc]; ok {
			wire = append(wire, name)
		}
	}
	return c.do(ctx, "PATCH", fmt.Sprintf("/api/reservas/%d/servicios", id), serviciosRequest{Servicios: wire}, nil)
}

// DeleteReservation removes a reservation outright. Admin only; regular
// cancellation goes through SetReservationState.
func (c *Client) DeleteReservation(ctx context.Context, id int64) error {
	return c.do(ctx, "DELETE", fmt.Sprintf("/api/reservas/%d", id), nil, nil)
}

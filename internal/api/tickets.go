package api

import (
	"context"

	"balneario/internal/models"
)

// Tickets lists general-entry sales visible to the current session.
func (c *Client) Tickets(ctx context.Context) ([]*models.Ticket, error) {
	var wire []entradaWire
	if err := c.do(ctx, "GET", "/api/entradas", nil, &wire); err != nil {
		return nil, err
	}

	tickets := make([]*models.Ticket, 0, len(wire))
	for i := range wire {
		tickets = append(tickets, wire[i].toModel())
	}
	return tickets, nil
}

// CreateTicket submits a general-entry sale. Walk-in tickets carry the
// on-site customer and start out confirmed; online tickets start pending.
func (c *Client) CreateTicket(ctx context.Context, t *models.Ticket) (*models.Ticket, error) {
	status := models.StatusPending
	if t.WalkIn {
		status = models.StatusConfirmed
	}

	req := crearEntradaRequest{
		Tipo:           "general",
		Fecha:          t.Date.Format(wireDate),
		Horario:        scheduleToWire[t.Schedule],
		Jornada:        periodToWire[t.Period],
		NumeroPersonas: t.Headcount,
		EsPresencial:   t.WalkIn,
		PrecioTotal:    t.TotalPrice,
		Estado:         statusToWire[status],
	}
	if t.WalkIn {
		req.ClientePresencial = &clientePresencial{
			Nombre:    t.Customer.Name,
			Documento: t.Customer.Document,
			Telefono:  t.Customer.Phone,
		}
	}

	var wire entradaWire
	if err := c.do(ctx, "POST", "/api/entradas", req, &wire); err != nil {
		return nil, err
	}
	return wire.toModel(), nil
}

package api

import (
	"context"

	"balneario/internal/models"
)

// Payments lists registered payments.
func (c *Client) Payments(ctx context.Context) ([]*models.Payment, error) {
	var wire []pagoWire
	if err := c.do(ctx, "GET", "/api/pagos", nil, &wire); err != nil {
		return nil, err
	}

	payments := make([]*models.Payment, 0, len(wire))
	for i := range wire {
		payments = append(payments, wire[i].toModel())
	}
	return payments, nil
}

// CreatePayment registers a payment against a reservation. The backend
// confirms the reservation as a side effect.
func (c *Client) CreatePayment(ctx context.Context, reservationID int64, method string) (*models.Payment, error) {
	req := crearPagoRequest{ReservaID: reservationID, MetodoPago: method}

	var wire pagoWire
	if err := c.do(ctx, "POST", "/api/pagos", req, &wire); err != nil {
		return nil, err
	}
	return wire.toModel(), nil
}

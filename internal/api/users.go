package api

import (
	"context"
	"fmt"
	"time"

	"balneario/internal/models"
)

// Users lists all backend users. Admin only.
func (c *Client) Users(ctx context.Context) ([]*models.User, error) {
	var wire []userWire
	if err := c.do(ctx, "GET", "/api/users", nil, &wire); err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, len(wire))
	for i := range wire {
		users = append(users, wire[i].toModel())
	}
	return users, nil
}

// Staff lists users with the staff role, for shift assignment.
func (c *Client) Staff(ctx context.Context) ([]*models.User, error) {
	users, err := c.Users(ctx)
	if err != nil {
		return nil, err
	}

	staff := users[:0]
	for _, u := range users {
		if u.Role == models.RoleStaff {
			staff = append(staff, u)
		}
	}
	return staff, nil
}

// CreateShift assigns a staff member to a working date.
func (c *Client) CreateShift(ctx context.Context, staffID int64, date time.Time) (*models.Shift, error) {
	req := crearTurnoRequest{PersonalID: staffID, Fecha: date.Format(wireDate)}

	var wire []turnoWire
	if err := c.do(ctx, "POST", "/api/turnos/", req, &wire); err != nil {
		return nil, err
	}
	if len(wire) == 0 {
		return nil, fmt.Errorf("create shift: backend returned no shift")
	}

	first := wire[0]
	return &models.Shift{
		ID:      first.ID,
		StaffID: first.PersonalID,
		Date:    parseWireDate(first.Fecha),
	}, nil
}

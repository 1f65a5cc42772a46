package api

import (
	"context"
	"fmt"

	"balneario/internal/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login authenticates against the backend and establishes the session
// from the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (models.User, error) {
	var resp loginResponse
	err := c.do(ctx, "POST", "/api/auth/login", loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return models.User{}, err
	}
	if resp.Token == "" {
		return models.User{}, fmt.Errorf("login: backend returned no token")
	}

	user, err := c.session.Establish(ctx, resp.Token)
	if err != nil {
		return models.User{}, fmt.Errorf("login: %w", err)
	}
	return user, nil
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Name     string
	Email    string
	Document string
	Password string
}

type registerRequest struct {
	Nombre    string `json:"nombre"`
	Email     string `json:"email"`
	Documento string `json:"documento"`
	Password  string `json:"password"`
}

func (c *Client) Register(ctx context.Context, in RegisterInput) error {
	req := registerRequest{
		Nombre:    in.Name,
		Email:     in.Email,
		Documento: in.Document,
		Password:  in.Password,
	}
	return c.do(ctx, "POST", "/api/auth/register", req, nil)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, "POST", "/api/auth/forgot-password", forgotPasswordRequest{Email: email}, nil)
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	return c.do(ctx, "POST", "/api/auth/reset-password", resetPasswordRequest{Token: token, Password: password}, nil)
}

package backend

import (
	"context"
	"net/http"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/pkg/errors"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for a backend token
func (c *Client) Login(ctx context.Context, username, password string) (*model.BackendLoginResponse, error) {
	var resp model.BackendLoginResponse
	err := c.do(ctx, "auth.login", http.MethodPost, "/auth/login", nil, loginRequest{username, password}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, errors.Unavailable("Respuesta de autenticación inválida", nil)
	}
	return &resp, nil
}

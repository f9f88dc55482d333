package fixit

import (
	"context"
	"errors"
	"net/http"
)

var ErrEmptyToken = errors.New("login response did not include a token")

type authService struct {
	client *Client
}

func (s *authService) Login(ctx context.Context, email string, password string) (*LoginResponse, error) {
	const route = "/api/auth/login"

	var resp LoginResponse
	if err := s.client.do(ctx, http.MethodPost, route, LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, ErrEmptyToken
	}
	return &resp, nil
}

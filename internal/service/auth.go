// Package service contains typed services over the admin API.
package service

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/fleetops/fleetctl/internal/adapter/outbound/rest"
	"github.com/fleetops/fleetctl/internal/domain/session"
)

// AuthService implements session.AuthAPI against the admin endpoints.
type AuthService struct {
	client *rest.Client
	logger *slog.Logger
}

// NewAuthService creates an auth service over the given client.
func NewAuthService(client *rest.Client, logger *slog.Logger) *AuthService {
	return &AuthService{client: client, logger: logger}
}

// loginRequest is the POST /api/v1/admin/login body.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginData is the login response payload. Some backend versions return the
// profile under "user", others under "admin"; both are accepted and
// normalized here.
type loginData struct {
	Token string        `json:"token"`
	User  *session.User `json:"user,omitempty"`
	Admin *session.User `json:"admin,omitempty"`
}

// Login exchanges credentials for a token and profile. Never retried:
// a single failure is reported once and the caller decides what to do.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *session.User, error) {
	var data loginData
	err := s.client.Do(ctx, rest.Request{
		Method:    http.MethodPost,
		Path:      "/api/v1/admin/login",
		Body:      loginRequest{Email: email, Password: password},
		Operation: "auth.login",
		Policy:    noRetry(),
	}, &data)
	if err != nil {
		return "", nil, err
	}

	user := data.User
	if user == nil {
		user = data.Admin
	}
	return data.Token, user, nil
}

// Logout invalidates the token server-side. Best-effort; the session
// manager clears local state regardless of the outcome.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.client.Do(ctx, rest.Request{
		Method:    http.MethodPost,
		Path:      "/api/v1/admin/logout",
		Operation: "auth.logout",
		Policy:    noRetry(),
	}, nil)
}

// Profile fetches the current profile for the held token.
func (s *AuthService) Profile(ctx context.Context) (*session.User, error) {
	var user session.User
	err := s.client.Do(ctx, rest.Request{
		Method:    http.MethodGet,
		Path:      "/api/v1/admin/profile",
		Operation: "auth.profile",
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Compile-time interface verification.
var _ session.AuthAPI = (*AuthService)(nil)

// Package session is the single source of truth for "is this client
// authenticated, and as whom". It owns the persisted token/user pair; the
// HTTP client only reads the token through the TokenSource interface.
package session

import (
	"encoding/json"
	"errors"
	"time"
)

// Status is the authentication state of the client.
type Status string

const (
	// StatusUnauthenticated means no valid credentials are held.
	StatusUnauthenticated Status = "unauthenticated"

	// StatusAuthenticating is the transient state while a login is in flight.
	StatusAuthenticating Status = "authenticating"

	// StatusAuthenticated means a token and a valid user profile are held.
	StatusAuthenticated Status = "authenticated"

	// StatusExpired means the server rejected previously-valid credentials.
	// Like StatusUnauthenticated, no token is available in this state.
	StatusExpired Status = "expired"
)

// User is the admin profile as returned by the backend.
type User struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	Phone     string `json:"phone_number,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Role      string `json:"role,omitempty"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Validate checks the required profile fields. Persisted or received
// profiles failing validation are discarded, never trusted as-is.
func (u *User) Validate() error {
	if u == nil {
		return errors.New("missing user profile")
	}
	if u.ID <= 0 {
		return errors.New("user id must be a positive integer")
	}
	if u.Email == "" {
		return errors.New("user email must not be empty")
	}
	return nil
}

// Equal reports structural equality of the serialized profiles. Used by
// CheckAuth to decide whether the cached snapshot needs refreshing.
func (u *User) Equal(other *User) bool {
	if u == nil || other == nil {
		return u == other
	}
	a, err := json.Marshal(u)
	if err != nil {
		return false
	}
	b, err := json.Marshal(other)
	if err != nil {
		return false
	}
	return string(a) == string(b)
}

// Credentials is the persisted token/user pair.
type Credentials struct {
	Token     string    `json:"token"`
	User      *User     `json:"user"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Valid reports whether the pair can back an authenticated session.
func (c Credentials) Valid() bool {
	return c.Token != "" && c.User.Validate() == nil
}

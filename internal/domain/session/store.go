package session

import (
	"context"
	"errors"
)

// CredentialStore persists the token/user pair across runs.
// This interface is defined in the domain to avoid circular imports.
// Implementations: file-backed (prod), in-memory (test).
type CredentialStore interface {
	// Load reads the persisted credentials.
	// Returns ErrNoCredentials when nothing is stored.
	// Returns ErrCorruptCredentials when the stored data does not parse.
	Load(ctx context.Context) (Credentials, error)

	// Save persists the credentials, replacing any previous pair.
	Save(ctx context.Context, creds Credentials) error

	// Clear removes the persisted credentials. Clearing an empty store
	// is not an error.
	Clear(ctx context.Context) error
}

// ErrNoCredentials is returned when no credentials are persisted.
var ErrNoCredentials = errors.New("no stored credentials")

// ErrCorruptCredentials is returned when persisted data does not deserialize.
var ErrCorruptCredentials = errors.New("stored credentials are corrupt")

// AuthAPI is the external authentication endpoint collaborator.
// The rest adapter implements it; the manager never retries these calls
// itself — retries, if any, belong to the HTTP client below it.
type AuthAPI interface {
	// Login exchanges credentials for a token and profile.
	Login(ctx context.Context, email, password string) (string, *User, error)

	// Logout invalidates the token server-side. Best-effort.
	Logout(ctx context.Context) error

	// Profile fetches the current profile for the held token.
	Profile(ctx context.Context) (*User, error)
}

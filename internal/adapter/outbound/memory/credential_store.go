// Package memory provides in-memory implementations of outbound ports.
package memory

import (
	"context"
	"sync"

	"github.com/fleetops/fleetctl/internal/domain/session"
)

// MemoryCredentialStore implements session.CredentialStore with an in-memory
// value. Thread-safe for concurrent access. For development/testing only.
type MemoryCredentialStore struct {
	mu    sync.RWMutex
	creds session.Credentials
	set   bool
}

// NewCredentialStore creates a new in-memory credential store.
func NewCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{}
}

// Load returns the stored credentials.
func (s *MemoryCredentialStore) Load(ctx context.Context) (session.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.set {
		return session.Credentials{}, session.ErrNoCredentials
	}
	return s.creds, nil
}

// Save replaces the stored credentials.
func (s *MemoryCredentialStore) Save(ctx context.Context, creds session.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds = creds
	s.set = true
	return nil
}

// Clear removes the stored credentials.
func (s *MemoryCredentialStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds = session.Credentials{}
	s.set = false
	return nil
}

// Has reports whether credentials are currently stored.
// Useful for asserting clear behavior in tests.
func (s *MemoryCredentialStore) Has() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set
}

// Compile-time interface verification.
var _ session.CredentialStore = (*MemoryCredentialStore)(nil)

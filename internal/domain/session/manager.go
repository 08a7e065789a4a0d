package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultCheckInterval is how often the periodic re-validation runs.
const DefaultCheckInterval = 5 * time.Minute

// Manager owns the session lifecycle: login, logout, restore-from-disk,
// periodic re-validation, and cross-process synchronization.
//
// The manager is the sole writer of the persisted token/user pair. Async
// validation results are tagged with a session epoch; results whose epoch
// predates the current one (a logout happened in between) are discarded.
type Manager struct {
	store  CredentialStore
	api    AuthAPI
	logger *slog.Logger

	checkInterval time.Duration

	mu     sync.Mutex
	status Status
	creds  Credentials
	epoch  uint64

	onChange []func(Status)

	autoStop chan struct{}
	autoOnce *sync.Once
	wg       sync.WaitGroup
}

// ManagerOption is a functional option for configuring a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// WithCheckInterval sets the periodic re-validation interval.
func WithCheckInterval(d time.Duration) ManagerOption {
	return func(m *Manager) { m.checkInterval = d }
}

// NewManager creates a session manager over the given store and auth API.
func NewManager(store CredentialStore, api AuthAPI, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:         store,
		api:           api,
		logger:        slog.Default(),
		checkInterval: DefaultCheckInterval,
		status:        StatusUnauthenticated,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize restores the session from persisted credentials. Malformed or
// partial data is discarded with a warning and the session starts
// unauthenticated. Valid data yields an optimistic Authenticated state that
// the next CheckAuth will verify against the server.
func (m *Manager) Initialize(ctx context.Context) {
	creds, err := m.store.Load(ctx)
	switch {
	case errors.Is(err, ErrNoCredentials):
		m.transition(StatusUnauthenticated)
		return
	case err != nil:
		m.logger.Warn("discarding unreadable stored credentials", "error", err)
		m.clearStore(ctx)
		m.transition(StatusUnauthenticated)
		return
	case !creds.Valid():
		m.logger.Warn("discarding malformed stored credentials")
		m.clearStore(ctx)
		m.transition(StatusUnauthenticated)
		return
	}

	m.mu.Lock()
	m.creds = creds
	m.mu.Unlock()
	m.transition(StatusAuthenticated)
}

// Login authenticates against the backend and persists the resulting
// token/user pair. On any failure the previous session state is left
// untouched and the error identifies the cause: errors.Is(err,
// rest.ErrUnauthorized) for rejected credentials, rest.ErrTransient for
// network failure, rest.ErrInvalidPayload for a malformed response.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	m.mu.Lock()
	prev := m.status
	epoch := m.epoch
	m.mu.Unlock()
	m.transition(StatusAuthenticating)

	token, user, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.restoreAfterFailedLogin(prev, epoch)
		return fmt.Errorf("login failed: %w", err)
	}
	if token == "" || user.Validate() != nil {
		m.restoreAfterFailedLogin(prev, epoch)
		return errors.New("login failed: malformed response from server")
	}

	creds := Credentials{Token: token, User: user, UpdatedAt: time.Now().UTC()}
	if err := m.store.Save(ctx, creds); err != nil {
		m.restoreAfterFailedLogin(prev, epoch)
		return fmt.Errorf("failed to persist credentials: %w", err)
	}

	m.mu.Lock()
	m.creds = creds
	m.epoch++
	m.mu.Unlock()
	m.transition(StatusAuthenticated)

	m.logger.Info("logged in", "user_id", user.ID, "email", user.Email)
	return nil
}

// restoreAfterFailedLogin returns the session to its pre-login status, unless
// the epoch moved while the login call was in flight. A re-login attempted
// with a stale bearer token can come back 401 and invalidate the session
// mid-call; restoring the old Authenticated status then would claim a session
// that no longer has a token behind it.
func (m *Manager) restoreAfterFailedLogin(prev Status, epoch uint64) {
	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()
	m.transition(prev)
}

// Logout terminates the session. The server-side logout call is best-effort:
// regardless of its outcome the persisted credentials are cleared and the
// session ends unauthenticated. Logout never returns an error — a network
// failure must not strand the user in a stale authenticated state.
func (m *Manager) Logout(ctx context.Context) {
	m.stopAutoCheck()

	m.mu.Lock()
	hasToken := m.creds.Token != ""
	m.mu.Unlock()

	if hasToken {
		if err := m.api.Logout(ctx); err != nil {
			m.logger.Warn("server logout failed, clearing local session anyway", "error", err)
		}
	}

	m.mu.Lock()
	m.epoch++
	m.creds = Credentials{}
	m.mu.Unlock()
	m.clearStore(ctx)
	m.transition(StatusUnauthenticated)
	m.logger.Info("logged out")
}

// CheckAuth re-validates the held token against the profile endpoint.
// On rejection the credentials are cleared and the session expires; on
// success the cached user snapshot is refreshed if the server-side profile
// changed. Never panics or propagates an error: the resulting status is the
// whole answer. A result arriving after a logout is discarded.
func (m *Manager) CheckAuth(ctx context.Context) Status {
	m.mu.Lock()
	if m.creds.Token == "" {
		status := m.status
		m.mu.Unlock()
		return status
	}
	epoch := m.epoch
	m.mu.Unlock()

	user, err := m.api.Profile(ctx)

	m.mu.Lock()
	if m.epoch != epoch {
		// A logout (or re-login) happened while the check was in flight.
		status := m.status
		m.mu.Unlock()
		return status
	}

	if err != nil || user.Validate() != nil {
		m.epoch++
		m.creds = Credentials{}
		m.mu.Unlock()
		m.clearStore(ctx)
		m.transition(StatusExpired)
		m.logger.Info("session expired", "error", err)
		return StatusExpired
	}

	if !user.Equal(m.creds.User) {
		m.creds.User = user
		m.creds.UpdatedAt = time.Now().UTC()
		creds := m.creds
		m.mu.Unlock()
		if serr := m.store.Save(ctx, creds); serr != nil {
			m.logger.Warn("failed to persist refreshed profile", "error", serr)
		}
		m.transition(StatusAuthenticated)
		return StatusAuthenticated
	}

	m.mu.Unlock()
	m.transition(StatusAuthenticated)
	return StatusAuthenticated
}

// Invalidate forces local session termination without a server call. The
// HTTP client invokes this when any request comes back 401.
func (m *Manager) Invalidate(ctx context.Context) {
	m.mu.Lock()
	if m.creds.Token == "" && m.status != StatusAuthenticated {
		m.mu.Unlock()
		return
	}
	m.epoch++
	m.creds = Credentials{}
	m.mu.Unlock()
	m.clearStore(ctx)
	m.transition(StatusExpired)
	m.logger.Info("session invalidated by server")
}

// SyncExternal applies a credentials change observed outside this process
// (another instance logged out or in). An externally cleared token ends the
// session here without a restart.
func (m *Manager) SyncExternal(creds Credentials) {
	m.mu.Lock()
	if creds.Token == m.creds.Token {
		m.mu.Unlock()
		return
	}
	m.epoch++
	if !creds.Valid() {
		m.creds = Credentials{}
		m.mu.Unlock()
		m.transition(StatusUnauthenticated)
		m.logger.Info("session cleared by another instance")
		return
	}
	m.creds = creds
	m.mu.Unlock()
	m.transition(StatusAuthenticated)
	m.logger.Info("session adopted from another instance", "user_id", creds.User.ID)
}

// StartAutoCheck runs CheckAuth every check interval while the session is
// authenticated. Stopped by Logout, by cancelling ctx, or via Stop.
func (m *Manager) StartAutoCheck(ctx context.Context) {
	m.mu.Lock()
	if m.autoStop != nil {
		m.mu.Unlock()
		return
	}
	stopCh := make(chan struct{})
	m.autoStop = stopCh
	m.autoOnce = &sync.Once{}
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.checkInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-stopCh:
				return
			case <-ticker.C:
				if m.Status() == StatusAuthenticated {
					m.CheckAuth(ctx)
				}
			}
		}
	}()
}

// Stop cancels the periodic check and waits for it to exit.
// Safe to call multiple times.
func (m *Manager) Stop() {
	m.stopAutoCheck()
	m.wg.Wait()
}

func (m *Manager) stopAutoCheck() {
	m.mu.Lock()
	stopCh, once := m.autoStop, m.autoOnce
	m.autoStop, m.autoOnce = nil, nil
	m.mu.Unlock()

	if stopCh != nil {
		once.Do(func() { close(stopCh) })
	}
}

// Status returns the current session status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// User returns the cached profile, or nil when unauthenticated.
func (m *Manager) User() *User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds.User
}

// Token returns the current bearer token. Implements rest.TokenSource.
func (m *Manager) Token() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds.Token, m.creds.Token != ""
}

// OnChange registers a callback invoked on every status transition.
// Callbacks run synchronously on the transitioning goroutine.
func (m *Manager) OnChange(fn func(Status)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, fn)
}

// transition sets the status and notifies subscribers when it changed.
func (m *Manager) transition(to Status) {
	m.mu.Lock()
	if m.status == to {
		m.mu.Unlock()
		return
	}
	m.status = to
	subs := make([]func(Status), len(m.onChange))
	copy(subs, m.onChange)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(to)
	}
}

// clearStore removes persisted credentials, logging failures instead of
// propagating them: local termination must always win.
func (m *Manager) clearStore(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("failed to clear stored credentials", "error", err)
	}
}

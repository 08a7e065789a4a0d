package state

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fleetops/fleetctl/internal/domain/session"
)

// defaultDebounce batches rapid write/rename sequences (atomic saves emit
// several events) into one reload.
const defaultDebounce = 250 * time.Millisecond

// CredentialWatcher observes the credentials file for changes made by other
// processes and republishes them to the session manager. An externally
// cleared token logs this instance out without a restart.
//
// The containing directory is watched rather than the file itself: atomic
// save replaces the file by rename, which would invalidate a file watch.
type CredentialWatcher struct {
	store    *FileCredentialStore
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration
	done     chan struct{}
}

// NewCredentialWatcher creates a watcher over the given store's file.
func NewCredentialWatcher(store *FileCredentialStore, logger *slog.Logger) (*CredentialWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialWatcher{
		store:    store,
		watcher:  fsw,
		logger:   logger,
		debounce: defaultDebounce,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching and forwards external changes to the manager.
func (w *CredentialWatcher) Start(ctx context.Context, mgr *session.Manager) error {
	dir := filepath.Dir(w.store.Path())
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	go w.processEvents(ctx, mgr)

	w.logger.Debug("credential watcher started", "path", w.store.Path())
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *CredentialWatcher) Stop() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

// processEvents handles fsnotify events with debouncing.
func (w *CredentialWatcher) processEvents(ctx context.Context, mgr *session.Manager) {
	defer close(w.done)

	target := filepath.Clean(w.store.Path())
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			// Debounce: restart the timer on every relevant event.
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer, timerC = nil, nil
			w.reload(ctx, mgr)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("credential watcher error", "error", err)
		}
	}
}

// reload reads the file and hands the result to the manager. A missing or
// corrupt file counts as cleared credentials.
func (w *CredentialWatcher) reload(ctx context.Context, mgr *session.Manager) {
	creds, err := w.store.Load(ctx)
	switch {
	case err == nil:
		mgr.SyncExternal(creds)
	case errors.Is(err, session.ErrNoCredentials), errors.Is(err, session.ErrCorruptCredentials):
		mgr.SyncExternal(session.Credentials{})
	default:
		w.logger.Warn("failed to reload credentials after external change", "error", err)
	}
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/fleetops/fleetctl/internal/adapter/outbound/history"
	"github.com/fleetops/fleetctl/internal/adapter/outbound/rest"
	"github.com/fleetops/fleetctl/internal/adapter/outbound/state"
	"github.com/fleetops/fleetctl/internal/config"
	"github.com/fleetops/fleetctl/internal/domain/session"
	"github.com/fleetops/fleetctl/internal/service"
	"github.com/fleetops/fleetctl/internal/telemetry"
)

// app holds the wired components shared by all commands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	client   *rest.Client
	store    *state.FileCredentialStore
	session  *session.Manager
	registry *prometheus.Registry

	auth      *service.AuthService
	drivers   *service.DriverService
	plans     *service.PlanService
	settings  *service.SettingsService
	dashboard *service.DashboardService

	history       *history.Store
	traceShutdown func(context.Context) error
}

// managerTokens adapts the session manager to rest.TokenSource. The manager
// is wired after the client, so the indirection is needed.
type managerTokens struct {
	app *app
}

func (t managerTokens) Token() (string, bool) {
	if t.app.session == nil {
		return "", false
	}
	return t.app.session.Token()
}

// newApp loads config and wires the client, session manager and services.
// It restores any stored session optimistically.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	if configFile := config.ConfigFileUsed(); configFile != "" {
		logger.Debug("loaded config", "file", configFile)
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}

	if traceFlag || cfg.Telemetry.Trace {
		shutdown, err := telemetry.SetupTracing()
		if err != nil {
			return nil, fmt.Errorf("failed to set up tracing: %w", err)
		}
		a.traceShutdown = shutdown
	}

	policy := rest.RetryPolicy{
		MaxAttempts:       cfg.Retry.MaxAttempts,
		BaseDelay:         cfg.Retry.ParsedBaseDelay(),
		RetryableStatuses: retryableStatuses(cfg.Retry.RetryableStatuses),
	}

	a.client = rest.NewClient(strings.TrimRight(cfg.API.BaseURL, "/"),
		rest.WithHTTPClient(&http.Client{Timeout: cfg.API.ParsedTimeout()}),
		rest.WithTokenSource(managerTokens{app: a}),
		rest.WithOnUnauthorized(func(ctx context.Context) {
			if a.session != nil {
				a.session.Invalidate(ctx)
			}
		}),
		rest.WithRetryPolicy(policy),
		rest.WithLogger(logger),
		rest.WithMetrics(rest.NewMetrics(a.registry)),
	)

	a.auth = service.NewAuthService(a.client, logger)
	a.drivers = service.NewDriverService(a.client, logger)
	a.plans = service.NewPlanService(a.client, logger)
	a.settings = service.NewSettingsService(a.client, logger)
	a.dashboard = service.NewDashboardService(a.client, logger)

	a.store = state.NewFileCredentialStore(cfg.Session.CredentialsFile, logger)
	a.session = session.NewManager(a.store, a.auth,
		session.WithLogger(logger),
		session.WithCheckInterval(cfg.Session.ParsedCheckInterval()),
	)
	a.session.Initialize(ctx)

	if cfg.History.Enabled {
		store, err := history.Open(ctx, cfg.History.File)
		if err != nil {
			// History is best-effort; commands still work without it.
			logger.Warn("command history disabled", "error", err)
		} else {
			a.history = store
		}
	}

	return a, nil
}

// Close releases resources held by the app.
func (a *app) Close(ctx context.Context) {
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.logger.Warn("failed to close history store", "error", err)
		}
	}
	if a.traceShutdown != nil {
		if err := a.traceShutdown(ctx); err != nil {
			a.logger.Warn("failed to flush trace spans", "error", err)
		}
	}
}

// requireSession returns an error unless a session is present. Commands call
// this before hitting authenticated endpoints for a friendlier message than
// a server 401.
func (a *app) requireSession() error {
	switch a.session.Status() {
	case session.StatusAuthenticated:
		return nil
	case session.StatusExpired:
		return fmt.Errorf("session expired, run \"fleetctl login\"")
	default:
		return fmt.Errorf("not logged in, run \"fleetctl login\"")
	}
}

// record writes one history entry for a finished command.
func (a *app) record(ctx context.Context, cmdPath string, args []string, start time.Time, runErr error) {
	if a.history == nil {
		return
	}
	entry := history.Entry{
		Command:   cmdPath,
		Arguments: strings.Join(args, " "),
		Outcome:   "ok",
		Duration:  time.Since(start),
	}
	if runErr != nil {
		entry.Outcome = "error"
		entry.Error = runErr.Error()
	}
	if err := a.history.Record(ctx, entry); err != nil {
		a.logger.Warn("failed to record command history", "error", err)
	}
	if err := a.history.Prune(ctx, a.cfg.History.Keep); err != nil {
		a.logger.Warn("failed to prune command history", "error", err)
	}
}

// runWithApp wires the app, runs fn under a signal-aware context, and
// records the invocation in command history.
func runWithApp(cmd *cobra.Command, args []string, fn func(context.Context, *app) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	start := time.Now()
	runErr := fn(ctx, a)

	// Bookkeeping still runs when the context was cancelled by Ctrl+C.
	cleanupCtx := context.WithoutCancel(ctx)
	a.record(cleanupCtx, cmd.CommandPath(), args, start, runErr)
	a.Close(cleanupCtx)
	return runErr
}

// retryableStatuses merges configured extra statuses with the always-retried 429.
func retryableStatuses(extra []int) []int {
	statuses := []int{http.StatusTooManyRequests}
	for _, s := range extra {
		if s != http.StatusTooManyRequests {
			statuses = append(statuses, s)
		}
	}
	return statuses
}

// parseLogLevel converts a string log level to slog.Level.
// Returns slog.LevelInfo for unrecognized values.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/fleetops/fleetctl/internal/adapter/outbound/state"
	"github.com/fleetops/fleetctl/internal/domain/session"
	"github.com/fleetops/fleetctl/internal/service"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show platform statistics",
}

var (
	dashboardFrom   string
	dashboardTo     string
	dashboardRecent int
)

var dashboardShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the statistics snapshot",
	Long: `Show the platform statistics snapshot, optionally bounded to a window.

Examples:
  fleetctl dashboard show
  fleetctl dashboard show --from 2026-08-01 --to 2026-08-31`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, args, runDashboardShow)
	},
}

var dashboardInterval time.Duration

var dashboardWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Continuously refresh the statistics snapshot",
	Long: `Poll the statistics snapshot until interrupted.

The session is revalidated in the background while watching, and
credential changes made by other fleetctl processes (such as a logout)
are picked up live. With telemetry.metrics_addr configured, Prometheus
metrics for the underlying requests are served while the watch runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, args, runDashboardWatch)
	},
}

var dashboardRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show recent rides and dispatches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, args, runDashboardRecent)
	},
}

func init() {
	for _, c := range []*cobra.Command{dashboardShowCmd, dashboardWatchCmd} {
		c.Flags().StringVar(&dashboardFrom, "from", "", "window start (YYYY-MM-DD)")
		c.Flags().StringVar(&dashboardTo, "to", "", "window end (YYYY-MM-DD)")
	}
	dashboardWatchCmd.Flags().DurationVar(&dashboardInterval, "interval", 30*time.Second, "refresh interval")
	dashboardRecentCmd.Flags().IntVar(&dashboardRecent, "limit", 10, "entries per feed")

	dashboardCmd.AddCommand(dashboardShowCmd)
	dashboardCmd.AddCommand(dashboardWatchCmd)
	dashboardCmd.AddCommand(dashboardRecentCmd)
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboardShow(ctx context.Context, a *app) error {
	if err := a.requireSession(); err != nil {
		return err
	}

	stats, err := a.dashboard.Overview(ctx, service.OverviewParams{From: dashboardFrom, To: dashboardTo})
	if err != nil {
		return err
	}
	return a.printResult(stats, func(w io.Writer) {
		printStatsTable(w, stats)
	})
}

func runDashboardWatch(ctx context.Context, a *app) error {
	if err := a.requireSession(); err != nil {
		return err
	}

	// Background token validation while the watch runs.
	a.session.StartAutoCheck(ctx)
	defer a.session.Stop()

	// Pick up credential changes from other fleetctl processes, unless
	// session.watch disabled it.
	if a.cfg.Session.Watch {
		watcher, err := state.NewCredentialWatcher(a.store, a.logger)
		if err != nil {
			a.logger.Warn("credential watching unavailable", "error", err)
		} else {
			if err := watcher.Start(ctx, a.session); err != nil {
				a.logger.Warn("credential watching unavailable", "error", err)
			} else {
				defer func() {
					if err := watcher.Stop(); err != nil {
						a.logger.Debug("credential watcher stop", "error", err)
					}
				}()
			}
		}
	}

	stopMetrics := a.serveMetrics(ctx)
	defer stopMetrics()

	ticker := time.NewTicker(dashboardInterval)
	defer ticker.Stop()

	for {
		if a.session.Status() != session.StatusAuthenticated {
			return errors.New("session ended, run \"fleetctl login\"")
		}

		stats, err := a.dashboard.Overview(ctx, service.OverviewParams{From: dashboardFrom, To: dashboardTo})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// Transient failures keep the watch alive.
			a.logger.Warn("dashboard refresh failed", "error", err)
		} else {
			fmt.Printf("--- %s ---\n", time.Now().Format(time.TimeOnly))
			if err := a.printResult(stats, func(w io.Writer) { printStatsTable(w, stats) }); err != nil {
				return err
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func runDashboardRecent(ctx context.Context, a *app) error {
	if err := a.requireSession(); err != nil {
		return err
	}

	rides, err := a.dashboard.RecentRides(ctx, dashboardRecent)
	if err != nil {
		return err
	}
	dispatches, err := a.dashboard.RecentDispatches(ctx, dashboardRecent)
	if err != nil {
		return err
	}

	combined := struct {
		Rides      []service.RideTransaction     `json:"rides"`
		Dispatches []service.DispatchTransaction `json:"dispatches"`
	}{Rides: rides, Dispatches: dispatches}

	return a.printResult(combined, func(w io.Writer) {
		fmt.Fprintln(w, "TYPE\tID\tUSER\tSTATUS\tAMOUNT\tCREATED")
		for _, r := range rides {
			fmt.Fprintf(w, "ride\t%d\t%s\t%s\t%.2f\t%s\n",
				r.ID, r.User.Name, r.Status, r.Amount, r.CreatedAt)
		}
		for _, d := range dispatches {
			fmt.Fprintf(w, "dispatch\t%d\t%s\t%s\t%.2f\t%s\n",
				d.ID, d.User.Name, d.Status, d.Amount, d.CreatedAt)
		}
	})
}

// serveMetrics starts the Prometheus listener when configured. The returned
// stop func shuts it down.
func (a *app) serveMetrics(ctx context.Context) func() {
	addr := a.cfg.Telemetry.MetricsAddr
	if addr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		a.logger.Info("serving metrics", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Warn("metrics server stopped", "error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.logger.Debug("metrics server shutdown", "error", err)
		}
	}
}

func printStatsTable(w io.Writer, stats *service.DashboardStats) {
	fmt.Fprintln(w, "SECTION\tTOTAL\tDETAIL")
	fmt.Fprintf(w, "Users\t%d\t%d new, %d active\n",
		stats.Users.Total, stats.Users.New, stats.Users.Active)
	fmt.Fprintf(w, "Drivers\t%d\t%d new, %d active\n",
		stats.Drivers.Total, stats.Drivers.New, stats.Drivers.Active)
	fmt.Fprintf(w, "Rides\t%d\t%d completed, %d cancelled\n",
		stats.Rides.Total, stats.Rides.Completed, stats.Rides.Cancelled)
	fmt.Fprintf(w, "Dispatches\t%d\t%d completed, %d pending, %.2f revenue\n",
		stats.Dispatches.Total, stats.Dispatches.Completed, stats.Dispatches.Pending, stats.Dispatches.Revenue)
	fmt.Fprintf(w, "Dispatchers\t%d\t%d new, %d active\n",
		stats.Dispatchers.Total, stats.Dispatchers.New, stats.Dispatchers.Active)
	fmt.Fprintf(w, "Revenue\t%.2f\t%d successful transactions\n",
		stats.Transactions.TotalRevenue, stats.Transactions.Successful)
}

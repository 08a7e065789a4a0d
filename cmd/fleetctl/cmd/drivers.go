package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fleetops/fleetctl/internal/filter"
	"github.com/fleetops/fleetctl/internal/service"
)

var driversCmd = &cobra.Command{
	Use:   "drivers",
	Short: "Manage driver accounts",
}

var (
	driversListPage    int
	driversListPerPage int
	driversListSearch  string
	driversListStatus  string
	driversListOrderBy string
	driversListOrder   string
	driversListFilter  string
)

var driversListCmd = &cobra.Command{
	Use:   "list",
	Short: "List drivers",
	Long: `List drivers with optional server-side search and status filters.

The --filter flag applies a CEL expression to each returned driver, with
the record exposed as "item":

  fleetctl drivers list --filter 'item.status == "pending"'
  fleetctl drivers list --filter 'item.rating >= 4.5 && item.is_available'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, args, runDriversList)
	},
}

var driversGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one driver",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, args, func(ctx context.Context, a *app) error {
			return runDriversGet(ctx, a, args[0])
		})
	},
}

var driversApproveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Approve a pending driver",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, args, func(ctx context.Context, a *app) error {
			return runDriverAction(ctx, a, args[0], "approved", a.drivers.Approve)
		})
	},
}

var driverReason string

var driversRejectCmd = &cobra.Command{
	Use:   "reject <id>",
	Short: "Reject a driver application",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, args, func(ctx context.Context, a *app) error {
			return runDriverReasonAction(ctx, a, args[0], "rejected", a.drivers.Reject)
		})
	},
}

var driversSuspendCmd = &cobra.Command{
	Use:   "suspend <id>",
	Short: "Suspend an active driver",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, args, func(ctx context.Context, a *app) error {
			return runDriverReasonAction(ctx, a, args[0], "suspended", a.drivers.Suspend)
		})
	},
}

var driversSetCategoryCmd = &cobra.Command{
	Use:   "set-category <driver-id> <category-id>",
	Short: "Assign a driver to a vehicle category",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, args, func(ctx context.Context, a *app) error {
			return runDriversSetCategory(ctx, a, args[0], args[1])
		})
	},
}

var driversStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show fleet-wide driver statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, args, runDriversStats)
	},
}

var driversCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List vehicle categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, args, runDriversCategories)
	},
}

func init() {
	driversListCmd.Flags().IntVar(&driversListPage, "page", 0, "page number")
	driversListCmd.Flags().IntVar(&driversListPerPage, "per-page", 0, "results per page")
	driversListCmd.Flags().StringVar(&driversListSearch, "search", "", "search by name, email or phone")
	driversListCmd.Flags().StringVar(&driversListStatus, "status", "", "filter by status: pending, approved, rejected or suspended")
	driversListCmd.Flags().StringVar(&driversListOrderBy, "order-by", "", "sort column")
	driversListCmd.Flags().StringVar(&driversListOrder, "order", "", "sort direction: asc or desc")
	driversListCmd.Flags().StringVar(&driversListFilter, "filter", "", "CEL expression applied to each driver")

	driversRejectCmd.Flags().StringVar(&driverReason, "reason", "", "reason shown to the driver (required)")
	_ = driversRejectCmd.MarkFlagRequired("reason")
	driversSuspendCmd.Flags().StringVar(&driverReason, "reason", "", "reason shown to the driver (required)")
	_ = driversSuspendCmd.MarkFlagRequired("reason")

	driversCmd.AddCommand(driversListCmd)
	driversCmd.AddCommand(driversGetCmd)
	driversCmd.AddCommand(driversApproveCmd)
	driversCmd.AddCommand(driversRejectCmd)
	driversCmd.AddCommand(driversSuspendCmd)
	driversCmd.AddCommand(driversSetCategoryCmd)
	driversCmd.AddCommand(driversStatsCmd)
	driversCmd.AddCommand(driversCategoriesCmd)
	rootCmd.AddCommand(driversCmd)
}

func runDriversList(ctx context.Context, a *app) error {
	if err := a.requireSession(); err != nil {
		return err
	}

	page, err := a.drivers.List(ctx, service.ListDriversParams{
		Page:    driversListPage,
		PerPage: driversListPerPage,
		Search:  driversListSearch,
		Status:  driversListStatus,
		OrderBy: driversListOrderBy,
		Order:   driversListOrder,
	})
	if err != nil {
		return err
	}

	drivers := page.Data
	if driversListFilter != "" {
		f, err := filter.Compile(driversListFilter)
		if err != nil {
			return err
		}
		drivers, err = filter.Apply(f, drivers)
		if err != nil {
			return err
		}
	}

	return a.printResult(drivers, func(w io.Writer) {
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSTATUS\tAVAILABLE\tRATING")
		for _, d := range drivers {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\t%.1f\n",
				d.ID, d.User.Name, d.User.Email, d.Status, d.IsAvailable, d.Rating)
		}
		if page.Total > 0 {
			fmt.Fprintf(w, "\npage %d of %d (%d total)\n", page.CurrentPage, page.LastPage, page.Total)
		}
	})
}

func runDriversGet(ctx context.Context, a *app, idArg string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	id, err := parseID(idArg)
	if err != nil {
		return err
	}

	driver, err := a.drivers.Get(ctx, id)
	if err != nil {
		return err
	}
	return a.printResult(driver, func(w io.Writer) {
		fmt.Fprintf(w, "ID\t%d\n", driver.ID)
		fmt.Fprintf(w, "Name\t%s\n", driver.User.Name)
		fmt.Fprintf(w, "Email\t%s\n", driver.User.Email)
		fmt.Fprintf(w, "Phone\t%s\n", driver.User.PhoneNumber)
		fmt.Fprintf(w, "Status\t%s\n", driver.Status)
		fmt.Fprintf(w, "Available\t%t\n", driver.IsAvailable)
		fmt.Fprintf(w, "Rating\t%.1f\n", driver.Rating)
		if driver.Category != nil {
			fmt.Fprintf(w, "Category\t%s\n", driver.Category.Name)
		}
		if driver.RejectionReason != "" {
			fmt.Fprintf(w, "Rejection reason\t%s\n", driver.RejectionReason)
		}
		if driver.SuspensionReason != "" {
			fmt.Fprintf(w, "Suspension reason\t%s\n", driver.SuspensionReason)
		}
	})
}

// runDriverAction handles the argument-less state transitions.
func runDriverAction(ctx context.Context, a *app, idArg, verb string, action func(context.Context, int) (*service.Driver, error)) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	id, err := parseID(idArg)
	if err != nil {
		return err
	}

	driver, err := action(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("Driver %d (%s) %s\n", driver.ID, driver.User.Name, verb)
	return nil
}

// runDriverReasonAction handles transitions that require a reason.
func runDriverReasonAction(ctx context.Context, a *app, idArg, verb string, action func(context.Context, int, string) (*service.Driver, error)) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	id, err := parseID(idArg)
	if err != nil {
		return err
	}

	driver, err := action(ctx, id, driverReason)
	if err != nil {
		return err
	}
	fmt.Printf("Driver %d (%s) %s\n", driver.ID, driver.User.Name, verb)
	return nil
}

func runDriversSetCategory(ctx context.Context, a *app, idArg, categoryArg string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	id, err := parseID(idArg)
	if err != nil {
		return err
	}
	categoryID, err := parseID(categoryArg)
	if err != nil {
		return err
	}

	driver, err := a.drivers.SetCategory(ctx, id, categoryID)
	if err != nil {
		return err
	}
	name := ""
	if driver.Category != nil {
		name = " to " + driver.Category.Name
	}
	fmt.Printf("Driver %d assigned%s\n", driver.ID, name)
	return nil
}

func runDriversStats(ctx context.Context, a *app) error {
	if err := a.requireSession(); err != nil {
		return err
	}

	stats, err := a.drivers.Statistics(ctx)
	if err != nil {
		return err
	}
	return a.printResult(stats, func(w io.Writer) {
		fmt.Fprintf(w, "Total\t%d\n", stats.TotalDrivers)
		fmt.Fprintf(w, "Active\t%d\n", stats.ActiveDrivers)
		fmt.Fprintf(w, "Approved\t%d\n", stats.ApprovedDrivers)
		fmt.Fprintf(w, "Pending\t%d\n", stats.PendingDrivers)
		fmt.Fprintf(w, "Suspended\t%d\n", stats.SuspendedDrivers)
	})
}

func runDriversCategories(ctx context.Context, a *app) error {
	if err := a.requireSession(); err != nil {
		return err
	}

	categories, err := a.drivers.Categories(ctx)
	if err != nil {
		return err
	}
	return a.printResult(categories, func(w io.Writer) {
		fmt.Fprintln(w, "ID\tNAME\tBASE FARE\tPER KM\tPER MIN\tACTIVE")
		for _, c := range categories {
			fmt.Fprintf(w, "%d\t%s\t%.2f\t%.2f\t%.2f\t%t\n",
				c.ID, c.Name, c.BaseFare, c.PricePerKm, c.PricePerMinute, c.IsActive)
		}
	})
}

// parseID parses a positive numeric id argument.
func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

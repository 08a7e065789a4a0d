package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fleetops/fleetctl/internal/filter"
	"github.com/fleetops/fleetctl/internal/service"
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "Manage subscription plans",
}

var plansListFilter string

var plansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List subscription plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, args, runPlansList)
	},
}

var plansGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, args, func(ctx context.Context, a *app) error {
			return runPlansGet(ctx, a, args[0])
		})
	},
}

var planInput service.PlanInput

var plansCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a subscription plan",
	Long: `Create a subscription plan.

Example:
  fleetctl plans create --name "Weekly" --price 49.99 --duration-days 7`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, args, runPlansCreate)
	},
}

var plansUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a subscription plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, args, func(ctx context.Context, a *app) error {
			return runPlansUpdate(ctx, a, args[0])
		})
	},
}

var plansDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a subscription plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, args, func(ctx context.Context, a *app) error {
			return runPlansDelete(ctx, a, args[0])
		})
	},
}

var plansToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Flip a plan between active and inactive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, args, func(ctx context.Context, a *app) error {
			return runPlansToggle(ctx, a, args[0])
		})
	},
}

func init() {
	plansListCmd.Flags().StringVar(&plansListFilter, "filter", "", "CEL expression applied to each plan")

	for _, c := range []*cobra.Command{plansCreateCmd, plansUpdateCmd} {
		c.Flags().StringVar(&planInput.Name, "name", "", "plan name")
		c.Flags().StringVar(&planInput.Description, "description", "", "plan description")
		c.Flags().Float64Var(&planInput.Price, "price", 0, "plan price")
		c.Flags().IntVar(&planInput.DurationDays, "duration-days", 0, "plan duration in days")
		c.Flags().StringVar(&planInput.Features, "features", "", "feature list shown to drivers")
		c.Flags().BoolVar(&planInput.IsActive, "active", true, "whether the plan is purchasable")
		c.Flags().StringVar(&planInput.PlanCode, "code", "", "external billing code")
		c.Flags().BoolVar(&planInput.IsCommissionPlan, "commission", false, "commission-based plan")
	}
	_ = plansCreateCmd.MarkFlagRequired("name")
	_ = plansCreateCmd.MarkFlagRequired("price")
	_ = plansCreateCmd.MarkFlagRequired("duration-days")

	plansCmd.AddCommand(plansListCmd)
	plansCmd.AddCommand(plansGetCmd)
	plansCmd.AddCommand(plansCreateCmd)
	plansCmd.AddCommand(plansUpdateCmd)
	plansCmd.AddCommand(plansDeleteCmd)
	plansCmd.AddCommand(plansToggleCmd)
	rootCmd.AddCommand(plansCmd)
}

func runPlansList(ctx context.Context, a *app) error {
	if err := a.requireSession(); err != nil {
		return err
	}

	plans, err := a.plans.List(ctx)
	if err != nil {
		return err
	}

	if plansListFilter != "" {
		f, err := filter.Compile(plansListFilter)
		if err != nil {
			return err
		}
		plans, err = filter.Apply(f, plans)
		if err != nil {
			return err
		}
	}

	return a.printResult(plans, func(w io.Writer) {
		fmt.Fprintln(w, "ID\tNAME\tPRICE\tDURATION\tACTIVE")
		for _, p := range plans {
			fmt.Fprintf(w, "%d\t%s\t%.2f\t%dd\t%t\n",
				p.ID, p.Name, p.Price, p.DurationDays, p.IsActive)
		}
	})
}

func runPlansGet(ctx context.Context, a *app, idArg string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	id, err := parseID(idArg)
	if err != nil {
		return err
	}

	plan, err := a.plans.Get(ctx, id)
	if err != nil {
		return err
	}
	return a.printResult(plan, func(w io.Writer) {
		fmt.Fprintf(w, "ID\t%d\n", plan.ID)
		fmt.Fprintf(w, "Name\t%s\n", plan.Name)
		fmt.Fprintf(w, "Description\t%s\n", plan.Description)
		fmt.Fprintf(w, "Price\t%.2f\n", plan.Price)
		fmt.Fprintf(w, "Duration\t%d days\n", plan.DurationDays)
		fmt.Fprintf(w, "Active\t%t\n", plan.IsActive)
		if plan.PlanCode != "" {
			fmt.Fprintf(w, "Code\t%s\n", plan.PlanCode)
		}
		if plan.Features != "" {
			fmt.Fprintf(w, "Features\t%s\n", plan.Features)
		}
	})
}

func runPlansCreate(ctx context.Context, a *app) error {
	if err := a.requireSession(); err != nil {
		return err
	}

	plan, err := a.plans.Create(ctx, planInput)
	if err != nil {
		return err
	}
	fmt.Printf("Created plan %d (%s)\n", plan.ID, plan.Name)
	return nil
}

func runPlansUpdate(ctx context.Context, a *app, idArg string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	id, err := parseID(idArg)
	if err != nil {
		return err
	}

	plan, err := a.plans.Update(ctx, id, planInput)
	if err != nil {
		return err
	}
	fmt.Printf("Updated plan %d (%s)\n", plan.ID, plan.Name)
	return nil
}

func runPlansDelete(ctx context.Context, a *app, idArg string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	id, err := parseID(idArg)
	if err != nil {
		return err
	}

	if err := a.plans.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Deleted plan %d\n", id)
	return nil
}

func runPlansToggle(ctx context.Context, a *app, idArg string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	id, err := parseID(idArg)
	if err != nil {
		return err
	}

	plan, err := a.plans.Toggle(ctx, id)
	if err != nil {
		return err
	}
	state := "inactive"
	if plan.IsActive {
		state = "active"
	}
	fmt.Printf("Plan %d (%s) is now %s\n", plan.ID, plan.Name, state)
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fleetops/fleetctl/internal/service"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage platform settings",
}

var settingsListGroup string

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List settings grouped by type",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, args, runSettingsList)
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show one setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, args, func(ctx context.Context, a *app) error {
			return runSettingsGet(ctx, a, args[0])
		})
	},
}

var settingsSetGroup string

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Update one setting",
	Long: `Update one setting.

Values that parse as booleans or numbers are sent typed; everything else
is sent as a string.

Examples:
  fleetctl settings set maintenance_mode true
  fleetctl settings set base_fare 5.50 --group payment`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, args, func(ctx context.Context, a *app) error {
			return runSettingsSet(ctx, a, args[0], args[1])
		})
	},
}

var settingsApplyCmd = &cobra.Command{
	Use:   "apply <key>=<value> [<key>=<value>...]",
	Short: "Update several settings at once",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, args, func(ctx context.Context, a *app) error {
			return runSettingsApply(ctx, a, args)
		})
	},
}

var settingsDeleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Remove a setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, args, func(ctx context.Context, a *app) error {
			return runSettingsDelete(ctx, a, args[0])
		})
	},
}

func init() {
	settingsListCmd.Flags().StringVar(&settingsListGroup, "group", "", "show only one group: general, api, email, payment, driver or security")
	settingsSetCmd.Flags().StringVar(&settingsSetGroup, "group", "", "setting group for new keys")

	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsApplyCmd)
	settingsCmd.AddCommand(settingsDeleteCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsList(ctx context.Context, a *app) error {
	if err := a.requireSession(); err != nil {
		return err
	}

	grouped, err := a.settings.All(ctx)
	if err != nil {
		return err
	}
	if settingsListGroup != "" {
		values, ok := grouped[settingsListGroup]
		if !ok {
			return fmt.Errorf("unknown settings group %q", settingsListGroup)
		}
		grouped = map[string]map[string]any{settingsListGroup: values}
	}

	return a.printResult(grouped, func(w io.Writer) {
		fmt.Fprintln(w, "GROUP\tKEY\tVALUE")
		for _, group := range sortedGroups(grouped) {
			for _, key := range grouped.Keys(group) {
				fmt.Fprintf(w, "%s\t%s\t%v\n", group, key, grouped[group][key])
			}
		}
	})
}

func runSettingsGet(ctx context.Context, a *app, key string) error {
	if err := a.requireSession(); err != nil {
		return err
	}

	value, err := a.settings.Get(ctx, key)
	if err != nil {
		return err
	}
	return a.printResult(value, func(w io.Writer) {
		fmt.Fprintf(w, "Key\t%s\n", value.Key)
		fmt.Fprintf(w, "Value\t%v\n", value.Value)
		if value.Type != "" {
			fmt.Fprintf(w, "Group\t%s\n", value.Type)
		}
	})
}

func runSettingsSet(ctx context.Context, a *app, key, raw string) error {
	if err := a.requireSession(); err != nil {
		return err
	}

	value, err := a.settings.Set(ctx, key, coerceValue(raw), settingsSetGroup)
	if err != nil {
		return err
	}
	fmt.Printf("Set %s = %v\n", value.Key, value.Value)
	return nil
}

func runSettingsApply(ctx context.Context, a *app, pairs []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}

	values := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return fmt.Errorf("invalid setting %q, expected key=value", pair)
		}
		values[key] = coerceValue(raw)
	}

	updated, err := a.settings.BulkSet(ctx, values)
	if err != nil {
		return err
	}
	fmt.Printf("Updated %d settings\n", len(updated))
	return nil
}

func runSettingsDelete(ctx context.Context, a *app, key string) error {
	if err := a.requireSession(); err != nil {
		return err
	}

	if err := a.settings.Delete(ctx, key); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", key)
	return nil
}

// coerceValue parses booleans and numbers so the backend stores them typed.
func coerceValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

// sortedGroups returns the map's group names in a stable order: known groups
// first in display order, then anything unexpected alphabetically.
func sortedGroups(grouped service.GroupedSettings) []string {
	seen := make(map[string]bool, len(grouped))
	var groups []string
	for _, g := range service.SettingGroups() {
		if _, ok := grouped[g]; ok {
			groups = append(groups, g)
			seen[g] = true
		}
	}
	var extra []string
	for g := range grouped {
		if !seen[g] {
			extra = append(extra, g)
		}
	}
	sort.Strings(extra)
	return append(groups, extra...)
}

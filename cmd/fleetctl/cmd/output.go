package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// resolveFormat returns the effective output format: the -o flag when set,
// otherwise the configured default.
func (a *app) resolveFormat() string {
	if outputFormat != "" {
		return outputFormat
	}
	return a.cfg.Output.Format
}

// printResult renders v as JSON or YAML, or calls table for table output.
// The table func receives a tabwriter that is flushed afterwards.
func (a *app) printResult(v any, table func(w io.Writer)) error {
	switch a.resolveFormat() {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(v)
	case "table":
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		table(w)
		return w.Flush()
	default:
		return fmt.Errorf("unknown output format: %s", a.resolveFormat())
	}
}

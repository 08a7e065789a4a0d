// Package filter evaluates CEL expressions against listed records, backing
// the --filter flag on list commands.
package filter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/cel-go/cel"
)

// maxExpressionLength bounds user-supplied filter expressions.
const maxExpressionLength = 1024

// maxCostBudget is the CEL runtime cost limit.
const maxCostBudget = 100_000

// evalTimeout caps a single evaluation.
const evalTimeout = 5 * time.Second

// Filter is a compiled predicate over one record. The record is exposed to
// the expression as the map variable "item", so filters read like
// `item.status == "pending" && item.rating >= 4.0`.
type Filter struct {
	prg cel.Program
}

// Compile parses and type-checks a filter expression.
func Compile(expression string) (*Filter, error) {
	if expression == "" {
		return nil, errors.New("filter expression is empty")
	}
	if len(expression) > maxExpressionLength {
		return nil, fmt.Errorf("filter expression too long: %d characters (max %d)", len(expression), maxExpressionLength)
	}

	env, err := cel.NewEnv(
		cel.Variable("item", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("create filter environment: %w", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", issues.Err())
	}

	prg, err := env.Program(ast,
		cel.EvalOptions(cel.OptOptimize),
		cel.CostLimit(maxCostBudget),
	)
	if err != nil {
		return nil, fmt.Errorf("compile filter: %w", err)
	}

	return &Filter{prg: prg}, nil
}

// Match reports whether the record satisfies the filter. The record is
// flattened to a map through its JSON form, so expressions use the same
// field names the API returns.
func (f *Filter) Match(record any) (bool, error) {
	item, err := toMap(record)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), evalTimeout)
	defer cancel()

	result, _, err := f.prg.ContextEval(ctx, map[string]any{"item": item})
	if err != nil {
		return false, fmt.Errorf("evaluate filter: %w", err)
	}

	matched, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter did not return a boolean, got %T", result.Value())
	}
	return matched, nil
}

// Apply returns the elements of items that satisfy the filter.
func Apply[T any](f *Filter, items []T) ([]T, error) {
	kept := make([]T, 0, len(items))
	for _, item := range items {
		ok, err := f.Match(item)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, item)
		}
	}
	return kept, nil
}

func toMap(record any) (map[string]any, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode record for filtering: %w", err)
	}
	var item map[string]any
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("decode record for filtering: %w", err)
	}
	return item, nil
}

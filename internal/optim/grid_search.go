// Package optim searches physics parameters for the run that minimises a
// metric.
package optim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/sphindex/internal/experiment"
)

// Trial is one evaluated parameter combination.
type Trial struct {
	Params map[string]float64
	Value  float64
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

// NewGridSearch tries every combination of ranges; ranges[i] holds the
// values for params[i].
func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search runs one experiment per combination. newExperiment must return a
// fresh experiment on every call; each combination is applied to its
// world through World.SetParam. Trials come back sorted by metric value,
// best first. The first failing run aborts the search.
func (g *GridSearch) Search(
	ctx context.Context,
	newExperiment func() (*experiment.Experiment, error),
	metricName string,
) ([]Trial, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, fmt.Errorf("grid search: %d params but %d ranges", len(g.paramNames), len(g.ranges))
	}

	var trials []Trial
	err := g.searchRecursive(ctx, 0, map[string]float64{}, func(params map[string]float64) error {
		exp, err := newExperiment()
		if err != nil {
			return err
		}
		for name, v := range params {
			if err := exp.World().SetParam(name, v); err != nil {
				return err
			}
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return fmt.Errorf("run %v: %w", params, err)
		}
		val, ok := result.Metrics[metricName]
		if !ok {
			return fmt.Errorf("unknown metric %q", metricName)
		}
		if math.IsNaN(val) {
			val = math.Inf(1)
		}
		trials = append(trials, Trial{Params: params, Value: val})
		return nil
	})
	if err != nil {
		return trials, err
	}

	sort.SliceStable(trials, func(i, j int) bool { return trials[i].Value < trials[j].Value })
	return trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	eval func(map[string]float64) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		return eval(current)
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, eval); err != nil {
			return err
		}
	}
	return nil
}

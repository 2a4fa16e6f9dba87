// Package optim searches parameter grids against trajectory objectives.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Objective scores one parameter assignment. Lower is better.
type Objective func(params map[string]float64) (float64, error)

// GridSearch exhaustively evaluates the cartesian product of parameter
// ranges and keeps the assignment with the lowest objective value.
type GridSearch struct {
	names  []string
	ranges [][]float64
}

// NewGridSearch builds a search over the named parameters. Each entry of
// ranges lists the candidate values for the parameter at the same index.
func NewGridSearch(names []string, ranges [][]float64) (*GridSearch, error) {
	if len(names) == 0 {
		return nil, errors.New("no parameters to search")
	}
	if len(names) != len(ranges) {
		return nil, fmt.Errorf("got %d names but %d ranges", len(names), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("parameter %s has no candidate values", names[i])
		}
	}
	return &GridSearch{names: names, ranges: ranges}, nil
}

// Search evaluates every combination and returns the best parameters with
// their objective value. Combinations whose evaluation fails are skipped;
// if none succeed an error is returned.
func (g *GridSearch) Search(ctx context.Context, eval Objective) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	current := make(map[string]float64, len(g.names))
	if err := g.searchRecursive(ctx, eval, current, 0, &best, &bestParams); err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, errors.New("no parameter combination evaluated successfully")
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, eval Objective, current map[string]float64, depth int, best *float64, bestParams *map[string]float64) error {
	if depth == len(g.names) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		value, err := eval(current)
		if err != nil {
			return nil
		}
		if value < *best {
			*best = value
			snapshot := make(map[string]float64, len(current))
			for k, v := range current {
				snapshot[k] = v
			}
			*bestParams = snapshot
		}
		return nil
	}

	for _, v := range g.ranges[depth] {
		current[g.names[depth]] = v
		if err := g.searchRecursive(ctx, eval, current, depth+1, best, bestParams); err != nil {
			return err
		}
	}
	delete(current, g.names[depth])
	return nil
}

// Size reports how many combinations the search will evaluate.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

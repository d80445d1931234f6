// Package executor runs independent per-repository units of work with a
// bounded degree of parallelism.
package executor

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Unit is one independent piece of work. It reports its own failure in the
// returned value; a unit never aborts its siblings.
type Unit[T any] func(ctx context.Context) T

// Run executes units with at most parallelism running at once and returns
// every unit's result. parallelism <= 1 runs the units sequentially in input
// order. With more workers the result order is the completion order, not the
// input order.
func Run[T any](ctx context.Context, parallelism int, units []Unit[T]) []T {
	results := make([]T, 0, len(units))
	if parallelism <= 1 {
		for _, unit := range units {
			results = append(results, unit(ctx))
		}
		return results
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(parallelism)
	for _, unit := range units {
		unit := unit
		g.Go(func() error {
			res := unit(ctx)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

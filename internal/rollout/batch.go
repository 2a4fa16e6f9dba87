package rollout

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/rigidsim/internal/positional"
	"github.com/san-kum/rigidsim/internal/system"
)

// Batch runs many trajectories of one scene concurrently. Policies and
// metrics are built fresh per run, so stateful implementations never race.
type Batch struct {
	Sys     *system.System
	Runs    int
	Workers int // 0 means GOMAXPROCS
	Policy  func() Policy
	Metrics func() []Metric

	// Vary perturbs the initial coordinates of one run in place.
	Vary func(run int, q, qd []float64)
}

func (b *Batch) Run(ctx context.Context, q, qd []float64, cfg Config) ([]*Result, error) {
	if b.Runs <= 0 {
		return nil, fmt.Errorf("runs must be positive, got %d", b.Runs)
	}
	workers := b.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]*Result, b.Runs)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i := 0; i < b.Runs; i++ {
		run := i
		eg.Go(func() error {
			qr := append([]float64(nil), q...)
			qdr := append([]float64(nil), qd...)
			if b.Vary != nil {
				b.Vary(run, qr, qdr)
			}

			st, err := positional.Init(b.Sys, qr, qdr)
			if err != nil {
				return fmt.Errorf("run %d: %w", run, err)
			}

			r := New(b.Sys, nil)
			if b.Policy != nil {
				r.policy = b.Policy()
			}
			if b.Metrics != nil {
				for _, m := range b.Metrics() {
					r.AddMetric(m)
				}
			}

			res, err := r.Run(ctx, st, cfg)
			if err != nil {
				return fmt.Errorf("run %d: %w", run, err)
			}
			results[run] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

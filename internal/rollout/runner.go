package rollout

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/rigidsim/internal/positional"
	"github.com/san-kum/rigidsim/internal/system"
)

// Runner advances a single trajectory, feeding every pre-step state to the
// registered metrics and observers.
type Runner struct {
	sys       *system.System
	policy    Policy
	metrics   []Metric
	observers []Observer

	// Log receives trajectory diagnostics when set.
	Log *zap.SugaredLogger
}

func New(sys *system.System, policy Policy) *Runner {
	return &Runner{sys: sys, policy: policy}
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

func (r *Runner) Run(ctx context.Context, st *positional.State, cfg Config) (*Result, error) {
	if cfg.Steps <= 0 {
		return nil, fmt.Errorf("steps must be positive, got %d", cfg.Steps)
	}
	every := cfg.SampleEvery
	if every <= 0 {
		every = 1
	}

	res := &Result{Metrics: make(map[string]float64)}
	for _, m := range r.metrics {
		m.Reset()
	}

	if r.Log != nil {
		r.Log.Debugw("rollout start", "steps", cfg.Steps, "sample_every", every)
	}

	dt := r.sys.Opts.Timestep
	t := 0.0
	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			r.finish(res)
			return res, ctx.Err()
		default:
		}

		var act []float64
		if r.policy != nil {
			act = r.policy.Act(st, t)
		}
		for _, m := range r.metrics {
			m.Observe(st, act, t)
		}
		for _, o := range r.observers {
			o.OnStep(st, act, t)
		}
		if i%every == 0 {
			res.States = append(res.States, st)
			res.Actions = append(res.Actions, act)
			res.Times = append(res.Times, t)
		}

		next, err := positional.Step(r.sys, st, act)
		if err != nil {
			if r.Log != nil {
				r.Log.Errorw("rollout aborted", "step", i, "error", err)
			}
			r.finish(res)
			return res, fmt.Errorf("step %d: %w", i, err)
		}
		st = next
		t += dt
		res.StepsTaken++
	}

	res.States = append(res.States, st)
	res.Times = append(res.Times, t)
	r.finish(res)
	return res, nil
}

func (r *Runner) finish(res *Result) {
	for _, m := range r.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
}

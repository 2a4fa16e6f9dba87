package rollout

import "github.com/san-kum/rigidsim/internal/positional"

// Policy produces one action scalar per actuator. A nil action means no
// actuation.
type Policy interface {
	Act(st *positional.State, t float64) []float64
}

// Metric accumulates a scalar statistic over a trajectory.
type Metric interface {
	Name() string
	Observe(st *positional.State, act []float64, t float64)
	Value() float64
	Reset()
}

// Observer is called with every pre-step state.
type Observer interface {
	OnStep(st *positional.State, act []float64, t float64)
}

type Config struct {
	Steps       int
	SampleEvery int // 0 records every step
}

// Result holds the sampled trajectory. The final state is always recorded;
// Actions align with the pre-step states, so it is one shorter than States.
type Result struct {
	States     []*positional.State
	Actions    [][]float64
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
}

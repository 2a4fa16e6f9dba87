// Package integrators provides fixed-step ODE integrators over flat state
// vectors. The reduced-coordinate pipeline drives these; the positional
// pipeline has its own semi-implicit scheme.
package integrators

// System yields the time derivative of a flat state vector under a control
// vector.
type System interface {
	Derive(x, u []float64, t float64) []float64
}

// Integrator advances a flat state by one step.
type Integrator interface {
	Step(dyn System, x, u []float64, t, dt float64) []float64
}

var (
	_ Integrator = (*Euler)(nil)
	_ Integrator = (*RK4)(nil)
)

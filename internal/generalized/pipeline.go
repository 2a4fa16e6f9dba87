// Package generalized steps rigid-body systems in reduced coordinates:
// recursive Newton-Euler dynamics solved exactly each instant, integrated
// with Runge-Kutta. It covers trees of revolute and prismatic joints and
// ignores limits and contacts, which makes it the trusted reference the
// positional pipeline is tested against; it is never on the positional hot
// path.
package generalized

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/rigidsim/internal/integrators"
	"github.com/san-kum/rigidsim/internal/kinematics"
	"github.com/san-kum/rigidsim/internal/spatial"
	"github.com/san-kum/rigidsim/internal/system"
)

// Domain errors for the reduced-coordinate pipeline.
var (
	// ErrUnsupported indicates a joint outside the pipeline's scope.
	ErrUnsupported = errors.New("generalized: only revolute and prismatic joints are supported")

	// ErrDivergence indicates NaN or Inf in the integrated coordinates.
	ErrDivergence = errors.New("generalized: numerical divergence (NaN or Inf detected)")
)

// State is one instant of a reduced-coordinate trajectory. X/XD are derived
// from Q/QD at construction and after every step.
type State struct {
	Q  []float64
	QD []float64
	X  []spatial.Transform
	XD []spatial.Motion
}

// Init validates the descriptor and builds a state from generalized
// coordinates. Systems containing free or spherical joints are rejected.
func Init(sys *system.System, q, qd []float64) (*State, error) {
	if err := sys.Validate(); err != nil {
		return nil, err
	}
	for i := range sys.Links {
		switch sys.Links[i].Joint {
		case system.JointRevolute, system.JointPrismatic:
		default:
			return nil, fmt.Errorf("link %d is %s: %w", i, sys.Links[i].Joint, ErrUnsupported)
		}
	}
	if err := sys.CheckDims(q, qd); err != nil {
		return nil, err
	}

	x, xd := kinematics.Forward(sys, q, qd)
	return &State{
		Q:  append([]float64(nil), q...),
		QD: append([]float64(nil), qd...),
		X:  x,
		XD: xd,
	}, nil
}

// Forward maps generalized coordinates straight to world-frame link poses
// and velocities without stepping. Comparison harnesses read reference
// trajectories through it.
func Forward(sys *system.System, q, qd []float64) ([]spatial.Transform, []spatial.Motion) {
	return kinematics.Forward(sys, q, qd)
}

// dynamics adapts the tree to the flat ODE interface: the state vector is Q
// followed by QD, the control vector is the applied joint force per
// coordinate.
type dynamics struct {
	sys *system.System
}

func (d *dynamics) Derive(y, tau []float64, t float64) []float64 {
	n := len(d.sys.Links)
	qdd := forwardDynamics(d.sys, y[:n], y[n:], tau)
	out := make([]float64, 2*n)
	copy(out[:n], y[n:])
	copy(out[n:], qdd)
	return out
}

// Step advances one timestep with RK4. act holds one scalar per actuator;
// nil means zero action.
func Step(sys *system.System, st *State, act []float64) (*State, error) {
	if err := sys.CheckAction(act); err != nil {
		return nil, err
	}
	n := len(sys.Links)

	tau := make([]float64, n)
	if len(act) > 0 {
		for k := range sys.Actuators {
			a := &sys.Actuators[k]
			tau[a.Link] += act[k] * a.Gear
		}
	}

	y := make([]float64, 2*n)
	copy(y[:n], st.Q)
	copy(y[n:], st.QD)

	rk4 := integrators.NewRK4()
	y = rk4.Step(&dynamics{sys: sys}, y, tau, 0, sys.Opts.Timestep)

	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("link %d: %w", i%n, ErrDivergence)
		}
	}

	q := append([]float64(nil), y[:n]...)
	qd := append([]float64(nil), y[n:]...)
	x, xd := kinematics.Forward(sys, q, qd)
	return &State{Q: q, QD: qd, X: x, XD: xd}, nil
}

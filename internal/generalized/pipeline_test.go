package generalized

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/rigidsim/internal/spatial"
	"github.com/san-kum/rigidsim/internal/system"
)

func TestInitRejectsUnsupportedJoints(t *testing.T) {
	free := &system.System{
		Links: []system.Link{{
			Parent:  -1,
			Joint:   system.JointFree,
			Mass:    1,
			Inertia: spatial.Vec3{X: 0.1, Y: 0.1, Z: 0.1},
		}},
		Opts: system.DefaultOptions(),
	}
	_, err := Init(free, make([]float64, 7), make([]float64, 6))
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("free joint: got %v, want ErrUnsupported", err)
	}

	ball := singlePendulum(0.5, 1, 0.1)
	ball.Links[0].Joint = system.JointSpherical
	_, err = Init(ball, make([]float64, 4), make([]float64, 3))
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("spherical joint: got %v, want ErrUnsupported", err)
	}
}

func TestInitDimensionError(t *testing.T) {
	sys := singlePendulum(0.5, 1, 0.1)
	_, err := Init(sys, []float64{0.1, 0.2}, []float64{0})
	if !errors.Is(err, system.ErrDimension) {
		t.Errorf("got %v, want ErrDimension", err)
	}
}

func pendulumEnergy(sys *system.System, st *State) float64 {
	l := &sys.Links[0]
	com := st.X[0].Point(l.COM)
	v := st.XD[0].At(com.Sub(st.X[0].Pos))
	ke := 0.5*l.Mass*v.NormSq() + 0.5*l.Inertia.Y*st.XD[0].Ang.NormSq()
	pe := -l.Mass * sys.Opts.Gravity.Z * com.Z
	return ke + pe
}

func TestPendulumEnergyConservation(t *testing.T) {
	sys := singlePendulum(0.6, 1.1, 0.04)
	sys.Opts.Timestep = 1e-3

	st, err := Init(sys, []float64{1.2}, []float64{0})
	if err != nil {
		t.Fatal(err)
	}
	e0 := pendulumEnergy(sys, st)

	for i := 0; i < 2000; i++ {
		st, err = Step(sys, st, nil)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if drift := math.Abs(pendulumEnergy(sys, st) - e0); drift > 1e-6 {
		t.Errorf("energy drift = %v, want < 1e-6", drift)
	}
}

func TestTorqueBalance(t *testing.T) {
	lc, m, iy := 0.5, 1.0, 0.02
	sys := singlePendulum(lc, m, iy)
	sys.Actuators = []system.Actuator{{Link: 0, Gear: 2}}

	// Hold the pendulum at the angle where the actuator torque cancels
	// gravity; it should stay put.
	hold := 0.7
	act := []float64{m * 9.81 * lc * math.Sin(hold) / 2}

	st, err := Init(sys, []float64{hold}, []float64{0})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 500; i++ {
		st, err = Step(sys, st, act)
		if err != nil {
			t.Fatal(err)
		}
	}
	if math.Abs(st.Q[0]-hold) > 1e-9 {
		t.Errorf("q = %v, want to hold %v", st.Q[0], hold)
	}
	if math.Abs(st.QD[0]) > 1e-9 {
		t.Errorf("qd = %v, want 0", st.QD[0])
	}
}

func TestStepActionDimension(t *testing.T) {
	sys := singlePendulum(0.5, 1, 0.1)
	st, err := Init(sys, []float64{0.3}, []float64{0})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Step(sys, st, []float64{1, 2}); !errors.Is(err, system.ErrDimension) {
		t.Errorf("got %v, want ErrDimension", err)
	}
}

func TestForwardMatchesStepState(t *testing.T) {
	sys := singlePendulum(0.5, 1, 0.05)
	sys.Opts.Timestep = 1e-3

	st, err := Init(sys, []float64{0.9}, []float64{0.2})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		if st, err = Step(sys, st, nil); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	x, xd := Forward(sys, st.Q, st.QD)
	for i := range x {
		if d := x[i].Pos.Sub(st.X[i].Pos).Norm(); d > 1e-12 {
			t.Errorf("link %d pose differs from the stepped state by %v", i, d)
		}
		if d := xd[i].Vel.Sub(st.XD[i].Vel).Norm(); d > 1e-12 {
			t.Errorf("link %d velocity differs from the stepped state by %v", i, d)
		}
	}
}

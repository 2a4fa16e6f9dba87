package generalized

import (
	"math"
	"testing"

	"github.com/san-kum/rigidsim/internal/spatial"
	"github.com/san-kum/rigidsim/internal/system"
)

const g = 9.81

func pendulumLink(parent int, anchor spatial.Vec3, length, mass, inertiaY float64) system.Link {
	return system.Link{
		Parent:       parent,
		Joint:        system.JointRevolute,
		ParentAnchor: anchor,
		Axis:         spatial.Vec3{Y: 1},
		Mass:         mass,
		Inertia:      spatial.Vec3{X: inertiaY, Y: inertiaY, Z: inertiaY},
		COM:          spatial.Vec3{Z: -length},
		Stiffness:    1,
		AngStiffness: 1,
	}
}

func singlePendulum(lc, mass, inertiaY float64) *system.System {
	opts := system.DefaultOptions()
	opts.Gravity = spatial.Vec3{Z: -g}
	return &system.System{
		Links: []system.Link{pendulumLink(-1, spatial.Vec3{Z: 2}, lc, mass, inertiaY)},
		Opts:  opts,
	}
}

func TestSinglePendulumClosedForm(t *testing.T) {
	lc, m, iy := 0.7, 1.3, 0.05
	sys := singlePendulum(lc, m, iy)

	for _, tc := range []struct{ q, qd float64 }{
		{0.3, 0}, {1.1, 0}, {-0.8, 2.5}, {2.0, -1.0},
	} {
		got := forwardDynamics(sys, []float64{tc.q}, []float64{tc.qd}, []float64{0})[0]
		want := -m * g * lc * math.Sin(tc.q) / (iy + m*lc*lc)
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("q=%v qd=%v: qdd = %v, want %v", tc.q, tc.qd, got, want)
		}
	}
}

func TestSinglePendulumAppliedTorque(t *testing.T) {
	lc, m, iy := 0.5, 2.0, 0.1
	sys := singlePendulum(lc, m, iy)

	q, tau := 0.4, 3.0
	got := forwardDynamics(sys, []float64{q}, []float64{0}, []float64{tau})[0]
	want := (tau - m*g*lc*math.Sin(q)) / (iy + m*lc*lc)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("qdd = %v, want %v", got, want)
	}
}

func TestDoublePendulumClosedForm(t *testing.T) {
	l1, lc1, m1, i1 := 0.9, 0.5, 1.2, 0.08
	lc2, m2, i2 := 0.4, 0.7, 0.03

	opts := system.DefaultOptions()
	opts.Gravity = spatial.Vec3{Z: -g}
	sys := &system.System{
		Links: []system.Link{
			pendulumLink(-1, spatial.Vec3{Z: 2}, lc1, m1, i1),
			pendulumLink(0, spatial.Vec3{Z: -l1}, lc2, m2, i2),
		},
		Opts: opts,
	}

	q := []float64{0.6, -0.35}
	qd := []float64{1.4, 0.8}
	got := forwardDynamics(sys, q, qd, []float64{0, 0})

	// Compound double pendulum in absolute angles.
	p1, p2 := q[0], q[0]+q[1]
	w1, w2 := qd[0], qd[0]+qd[1]
	d1 := m1*lc1*lc1 + i1 + m2*l1*l1
	d2 := m2*lc2*lc2 + i2
	d3 := m2 * l1 * lc2
	c12 := math.Cos(p1 - p2)
	s12 := math.Sin(p1 - p2)

	b1 := -d3*s12*w2*w2 - (m1*lc1+m2*l1)*g*math.Sin(p1)
	b2 := d3*s12*w1*w1 - m2*g*lc2*math.Sin(p2)
	det := d1*d2 - d3*d3*c12*c12
	a1 := (b1*d2 - d3*c12*b2) / det
	a2 := (d1*b2 - d3*c12*b1) / det

	if math.Abs(got[0]-a1) > 1e-9 {
		t.Errorf("qdd1 = %v, want %v", got[0], a1)
	}
	if math.Abs(got[1]-(a2-a1)) > 1e-9 {
		t.Errorf("qdd2 = %v, want %v", got[1], a2-a1)
	}
}

func TestPrismaticGravityLoad(t *testing.T) {
	opts := system.DefaultOptions()
	opts.Gravity = spatial.Vec3{Z: -g}

	vertical := &system.System{
		Links: []system.Link{{
			Parent:       -1,
			Joint:        system.JointPrismatic,
			Axis:         spatial.Vec3{Z: 1},
			Mass:         2.5,
			Inertia:      spatial.Vec3{X: 0.1, Y: 0.1, Z: 0.1},
			Stiffness:    1,
			AngStiffness: 1,
		}},
		Opts: opts,
	}

	// Unit upward acceleration from rest needs m(a+g) of force.
	tau := inverseDynamics(vertical, []float64{0.3}, []float64{0}, []float64{1})
	if want := 2.5 * (1 + g); math.Abs(tau[0]-want) > 1e-9 {
		t.Errorf("vertical slider force = %v, want %v", tau[0], want)
	}

	// A horizontal slider never feels gravity along its axis.
	horizontal := &system.System{Links: []system.Link{vertical.Links[0]}, Opts: opts}
	horizontal.Links[0].Axis = spatial.Vec3{X: 1}
	tau = inverseDynamics(horizontal, []float64{-0.2}, []float64{1.5}, []float64{2})
	if want := 2.5 * 2.0; math.Abs(tau[0]-want) > 1e-9 {
		t.Errorf("horizontal slider force = %v, want %v", tau[0], want)
	}
}

func TestSolveLinear(t *testing.T) {
	a := [][]float64{
		{2, 1, -1},
		{-3, -1, 2},
		{-2, 1, 2},
	}
	b := []float64{8, -11, -3}
	x := solveLinear(a, b)
	want := []float64{2, 3, -1}
	for i := range want {
		if math.Abs(x[i]-want[i]) > 1e-12 {
			t.Errorf("x[%d] = %v, want %v", i, x[i], want[i])
		}
	}
}

package positional

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/rigidsim/internal/generalized"
	"github.com/san-kum/rigidsim/internal/kinematics"
	"github.com/san-kum/rigidsim/internal/spatial"
	"github.com/san-kum/rigidsim/internal/system"
)

func hingeLink(parent int, anchor spatial.Vec3, length, mass float64) system.Link {
	return system.Link{
		Parent:       parent,
		Joint:        system.JointRevolute,
		ParentAnchor: anchor,
		Axis:         spatial.Vec3{Y: 1},
		Mass:         mass,
		Inertia:      spatial.Vec3{X: 0.05, Y: 0.05, Z: 0.05},
		COM:          spatial.Vec3{Z: -length},
		Stiffness:    1,
		AngStiffness: 1,
	}
}

func pendulumScene(links int) *system.System {
	opts := system.DefaultOptions()
	opts.Gravity = spatial.Vec3{Z: -9.81}
	opts.Timestep = 5e-4

	sys := &system.System{Opts: opts}
	sys.Links = append(sys.Links, hingeLink(-1, spatial.Vec3{Z: 2}, 0.5, 1))
	for i := 1; i < links; i++ {
		sys.Links = append(sys.Links, hingeLink(i-1, spatial.Vec3{Z: -1}, 0.5, 1))
	}
	return sys
}

// posDiff is the norm over all links of the difference in link origins.
func posDiff(a, b []spatial.Transform) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i].Pos.Sub(b[i].Pos).NormSq()
	}
	return math.Sqrt(sum)
}

func TestPendulumTracksReducedCoordinates(t *testing.T) {
	sys := pendulumScene(1)
	q0, qd0 := []float64{0.8}, []float64{0}

	st, err := Init(sys, q0, qd0)
	if err != nil {
		t.Fatal(err)
	}
	gst, err := generalized.Init(sys, q0, qd0)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2000; i++ {
		if st, err = Step(sys, st, nil); err != nil {
			t.Fatalf("positional step %d: %v", i, err)
		}
		if gst, err = generalized.Step(sys, gst, nil); err != nil {
			t.Fatalf("generalized step %d: %v", i, err)
		}
	}

	if d := posDiff(st.X, gst.X); d > 1e-2 {
		t.Errorf("single pendulum diverged from reference by %v after 1s", d)
	}
	if d := math.Abs(st.Q[0] - gst.Q[0]); d > 1e-2 {
		t.Errorf("hinge angle drifted from reference by %v after 1s", d)
	}
}

func TestDoublePendulumTracksReducedCoordinates(t *testing.T) {
	sys := pendulumScene(2)
	q0, qd0 := []float64{0.7, 0.2}, []float64{0, 0}

	st, err := Init(sys, q0, qd0)
	if err != nil {
		t.Fatal(err)
	}
	gst, err := generalized.Init(sys, q0, qd0)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2000; i++ {
		if st, err = Step(sys, st, nil); err != nil {
			t.Fatalf("positional step %d: %v", i, err)
		}
		if gst, err = generalized.Step(sys, gst, nil); err != nil {
			t.Fatalf("generalized step %d: %v", i, err)
		}
	}

	// Trajectories should stay close after 1 second of simulation.
	if d := posDiff(st.X, gst.X); d > 2e-2 {
		t.Errorf("double pendulum diverged from reference by %v after 1s", d)
	}
}

func TestActuatedPendulumTracksReducedCoordinates(t *testing.T) {
	sys := pendulumScene(1)
	sys.Actuators = []system.Actuator{{Link: 0, Gear: 1.5}}
	q0, qd0 := []float64{0.3}, []float64{0}
	act := []float64{0.4}

	st, err := Init(sys, q0, qd0)
	if err != nil {
		t.Fatal(err)
	}
	gst, err := generalized.Init(sys, q0, qd0)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 1000; i++ {
		if st, err = Step(sys, st, act); err != nil {
			t.Fatal(err)
		}
		if gst, err = generalized.Step(sys, gst, act); err != nil {
			t.Fatal(err)
		}
	}
	if d := posDiff(st.X, gst.X); d > 1e-2 {
		t.Errorf("actuated pendulum diverged from reference by %v", d)
	}
	if d := math.Abs(st.Q[0] - gst.Q[0]); d > 1e-2 {
		t.Errorf("actuated hinge angle drifted from reference by %v", d)
	}
}

func sliderScene() *system.System {
	opts := system.DefaultOptions()
	opts.Gravity = spatial.Vec3{}
	opts.Timestep = 1e-3

	return &system.System{
		Links: []system.Link{{
			Parent:         -1,
			Joint:          system.JointPrismatic,
			ParentAnchor:   spatial.Vec3{Z: 1},
			Axis:           spatial.Vec3{X: 1},
			Mass:           1,
			Inertia:        spatial.Vec3{X: 0.1, Y: 0.1, Z: 0.1},
			Stiffness:      1,
			AngStiffness:   1,
			LimitStiffness: 0.05,
			Limited:        true,
			LimitMin:       -0.5,
			LimitMax:       0.5,
		}},
		Opts: opts,
	}
}

func TestSliderLimitReboundIsInelastic(t *testing.T) {
	sys := sliderScene()
	st, err := Init(sys, []float64{0}, []float64{2.5})
	if err != nil {
		t.Fatal(err)
	}

	maxQ := 0.0
	for i := 0; i < 400; i++ {
		if st, err = Step(sys, st, nil); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if st.Q[0] > maxQ {
			maxQ = st.Q[0]
		}
	}

	// The limit eats roughly half the incoming speed: the slider comes back
	// at around 1.2, never anywhere near the incoming 2.5.
	v := st.QD[0]
	if v >= -0.9 || v <= -1.5 {
		t.Errorf("rebound velocity = %v, want in (-1.5, -0.9)", v)
	}
	if st.Q[0] >= sys.Links[0].LimitMax {
		t.Errorf("q = %v, want back inside the limit", st.Q[0])
	}
	if maxQ > 0.52 {
		t.Errorf("limit overshoot reached %v, want < 0.52", maxQ)
	}

	// Off-axis motion never appears.
	if math.Abs(st.X[0].Pos.Y) > 1e-7 || math.Abs(st.X[0].Pos.Z-1) > 1e-7 {
		t.Errorf("slider drifted off axis: %v", st.X[0].Pos)
	}
	if math.Abs(st.XD[0].Vel.Y) > 1e-7 || math.Abs(st.XD[0].Vel.Z) > 1e-7 {
		t.Errorf("off-axis velocity: %v", st.XD[0].Vel)
	}
	if math.Abs(st.X[0].Rot.W-1) > 1e-9 {
		t.Errorf("slider rotated: %v", st.X[0].Rot)
	}
}

func capsuleScene() *system.System {
	opts := system.DefaultOptions()
	opts.Gravity = spatial.Vec3{Z: -9.81}
	opts.Timestep = 1e-3
	opts.CollideScale = 0.25

	return &system.System{
		Links: []system.Link{{
			Parent:  -1,
			Joint:   system.JointFree,
			Mass:    1,
			Inertia: spatial.Vec3{X: 0.01, Y: 0.02, Z: 0.02},
			Geom: system.Geom{
				Shape:    system.GeomCapsule,
				Radius:   0.25,
				HalfLen:  0.4,
				Friction: 30,
			},
		}},
		Planes: []system.Plane{{Normal: spatial.Vec3{Z: 1}, Friction: 20}},
		Opts:   opts,
	}
}

func TestSlidingCapsuleSettles(t *testing.T) {
	sys := capsuleScene()
	q0 := []float64{0, 0, 0.25, 1, 0, 0, 0}
	qd0 := []float64{5, 0, 0, 0, 0, 0}

	st, err := Init(sys, q0, qd0)
	if err != nil {
		t.Fatal(err)
	}

	prevSpeed := math.Inf(1)
	for i := 0; i < 1000; i++ {
		if st, err = Step(sys, st, nil); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		speed := st.XD[0].Vel.Norm()
		if speed > prevSpeed+1e-9 {
			t.Fatalf("step %d: speed %v grew from %v while sliding", i, speed, prevSpeed)
		}
		prevSpeed = speed
	}

	// Slides to a stop, resting on the plane, without tipping.
	if math.Abs(st.X[0].Pos.Z-0.25) > 1e-2 {
		t.Errorf("rest height = %v, want 0.25", st.X[0].Pos.Z)
	}
	if st.XD[0].Vel.Norm() > 1e-2 {
		t.Errorf("residual velocity = %v, want < 1e-2", st.XD[0].Vel.Norm())
	}
	if st.XD[0].Ang.Norm() > 1e-2 {
		t.Errorf("residual spin = %v, want < 1e-2", st.XD[0].Ang.Norm())
	}
	rot := st.X[0].Rot
	if math.Abs(rot.W-1) > 1e-3 || math.Abs(rot.X) > 1e-3 || math.Abs(rot.Y) > 1e-3 || math.Abs(rot.Z) > 1e-3 {
		t.Errorf("capsule rotated while sliding: %v", rot)
	}
}

func TestBounceRestitution(t *testing.T) {
	sys := capsuleScene()
	sys.Links[0].Geom = system.Geom{Shape: system.GeomSphere, Radius: 0.25}
	sys.Opts.Elasticity = 0.8
	sys.Planes[0].Friction = 0

	// One step with a touching, approaching sphere: the separation velocity
	// afterwards is the elasticity fraction of the approach speed.
	st, err := Init(sys, []float64{0, 0, 0.25, 1, 0, 0, 0}, []float64{0, 0, -2, 0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	st, err = Step(sys, st, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := 0.8 * 2.0
	if math.Abs(st.XD[0].Vel.Z-want) > 0.1 {
		t.Errorf("separation velocity = %v, want about %v", st.XD[0].Vel.Z, want)
	}
}

func TestSphericalPendulumMatchesHingeWhenPlanar(t *testing.T) {
	hinge := pendulumScene(1)

	ball := pendulumScene(1)
	ball.Links[0].Joint = system.JointSpherical
	ball.Links[0].Axis = spatial.Vec3{}

	rel := spatial.AxisAngle(spatial.Vec3{Y: 1}, 0.8)
	hs, err := Init(hinge, []float64{0.8}, []float64{0})
	if err != nil {
		t.Fatal(err)
	}
	bs, err := Init(ball, []float64{rel.W, rel.X, rel.Y, rel.Z}, []float64{0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 1000; i++ {
		if hs, err = Step(hinge, hs, nil); err != nil {
			t.Fatal(err)
		}
		if bs, err = Step(ball, bs, nil); err != nil {
			t.Fatal(err)
		}
	}

	// With planar initial conditions and symmetric inertia the ball joint
	// must reproduce the hinge trajectory.
	if d := posDiff(hs.X, bs.X); d > 1e-6 {
		t.Errorf("spherical pendulum deviated from hinge by %v", d)
	}
	if d := posDiff(hs.XI, bs.XI); d > 1e-6 {
		t.Errorf("spherical pendulum mass center deviated from hinge by %v", d)
	}
}

func TestStepKeepsCoordinatesInSync(t *testing.T) {
	sys := pendulumScene(2)
	st, err := Init(sys, []float64{0.5, -0.2}, []float64{0.4, 0.1})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		if st, err = Step(sys, st, nil); err != nil {
			t.Fatal(err)
		}
	}

	x, _ := kinematics.Forward(sys, st.Q, st.QD)
	if d := posDiff(x, st.X); d > 1e-8 {
		t.Errorf("q and x disagree by %v after stepping", d)
	}
}

func TestDivergenceSurfaced(t *testing.T) {
	sys := pendulumScene(1)

	_, err := Init(sys, []float64{math.NaN()}, []float64{0})
	var de *DivergenceError
	if !errors.As(err, &de) {
		t.Fatalf("init with NaN: got %v, want DivergenceError", err)
	}
	if de.Link != 0 || de.Iteration != -1 {
		t.Errorf("divergence location = link %d iter %d, want link 0 iter -1", de.Link, de.Iteration)
	}

	st, err := Init(sys, []float64{0.5}, []float64{0})
	if err != nil {
		t.Fatal(err)
	}
	bad := st.Clone()
	bad.XDI[0].Vel.X = math.Inf(1)
	_, err = Step(sys, bad, nil)
	if !errors.Is(err, ErrDivergence) {
		t.Fatalf("step from Inf state: got %v, want ErrDivergence", err)
	}
	if !errors.As(err, &de) || de.Link != 0 {
		t.Errorf("divergence error = %v, want link 0", err)
	}
}

func TestInitErrors(t *testing.T) {
	sys := pendulumScene(1)

	if _, err := Init(sys, []float64{0.1, 0.2}, []float64{0}); !errors.Is(err, system.ErrDimension) {
		t.Errorf("bad q length: got %v, want ErrDimension", err)
	}

	bad := pendulumScene(1)
	bad.Links[0].Mass = -1
	if _, err := Init(bad, []float64{0}, []float64{0}); !errors.Is(err, system.ErrConfig) {
		t.Errorf("bad mass: got %v, want ErrConfig", err)
	}
}

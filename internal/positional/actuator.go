package positional

import (
	"github.com/san-kum/rigidsim/internal/kinematics"
	"github.com/san-kum/rigidsim/internal/spatial"
	"github.com/san-kum/rigidsim/internal/system"
)

// actuatorLoads converts an action vector into per-link world forces and
// torques about each COM, with the reaction applied to the parent. Geometry
// is read off the pre-step poses.
func actuatorLoads(sys *system.System, st *State, act []float64) (lin, ang []spatial.Vec3) {
	n := len(sys.Links)
	lin = make([]spatial.Vec3, n)
	ang = make([]spatial.Vec3, n)
	if len(act) == 0 {
		return lin, ang
	}

	for k := range sys.Actuators {
		a := &sys.Actuators[k]
		u := act[k] * a.Gear
		if u == 0 {
			continue
		}
		i := a.Link
		l := &sys.Links[i]
		axisW := kinematics.WorldAxis(sys, st.X, i)

		switch l.Joint {
		case system.JointRevolute:
			t := axisW.Scale(u)
			ang[i] = ang[i].Add(t)
			if l.Parent >= 0 {
				ang[l.Parent] = ang[l.Parent].Sub(t)
			}

		case system.JointPrismatic:
			f := axisW.Scale(u)
			anchor := st.X[i].Point(l.ChildAnchor)
			lin[i] = lin[i].Add(f)
			ang[i] = ang[i].Add(anchor.Sub(st.XI[i].Pos).Cross(f))
			if p := l.Parent; p >= 0 {
				lin[p] = lin[p].Sub(f)
				ang[p] = ang[p].Sub(anchor.Sub(st.XI[p].Pos).Cross(f))
			}
		}
	}
	return lin, ang
}

package metrics

import (
	"github.com/san-kum/rigidsim/internal/contact"
	"github.com/san-kum/rigidsim/internal/kinematics"
	"github.com/san-kum/rigidsim/internal/positional"
	"github.com/san-kum/rigidsim/internal/system"
)

// MaxPenetration tracks the deepest contact penetration seen over a run.
type MaxPenetration struct {
	name string
	sys  *system.System
	max  float64
}

func NewMaxPenetration(sys *system.System) *MaxPenetration {
	return &MaxPenetration{name: "max_penetration", sys: sys}
}

func (m *MaxPenetration) Name() string { return m.name }

func (m *MaxPenetration) Observe(st *positional.State, u []float64, t float64) {
	for _, c := range contact.Find(m.sys, st.XI) {
		if c.Depth > m.max {
			m.max = c.Depth
		}
	}
}

func (m *MaxPenetration) Value() float64 { return m.max }

func (m *MaxPenetration) Reset() { m.max = 0 }

// JointDrift tracks the worst separation between the parent and child sides
// of any joint anchor. Prismatic joints measure only off-axis separation.
type JointDrift struct {
	name string
	sys  *system.System
	max  float64
}

func NewJointDrift(sys *system.System) *JointDrift {
	return &JointDrift{name: "joint_drift", sys: sys}
}

func (j *JointDrift) Name() string { return j.name }

func (j *JointDrift) Observe(st *positional.State, u []float64, t float64) {
	for i := range j.sys.Links {
		l := &j.sys.Links[i]
		if l.Joint == system.JointFree {
			continue
		}
		pointP := l.ParentAnchor
		if l.Parent >= 0 {
			pointP = st.X[l.Parent].Point(l.ParentAnchor)
		}
		gap := pointP.Sub(st.X[i].Point(l.ChildAnchor))
		if l.Joint == system.JointPrismatic {
			axisW := kinematics.WorldAxis(j.sys, st.X, i)
			gap = gap.Sub(axisW.Scale(axisW.Dot(gap)))
		}
		if d := gap.Norm(); d > j.max {
			j.max = d
		}
	}
}

func (j *JointDrift) Value() float64 { return j.max }

func (j *JointDrift) Reset() { j.max = 0 }

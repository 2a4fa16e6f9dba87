package positional

import (
	"github.com/san-kum/rigidsim/internal/com"
	"github.com/san-kum/rigidsim/internal/spatial"
	"github.com/san-kum/rigidsim/internal/system"
)

// Corrections below this size are noise, not constraint violations.
const minCorrection = 1e-12

// solver carries the mutable pose buffer through one projection loop. All
// corrections write into xi; invI is refreshed once per iteration.
type solver struct {
	sys  *system.System
	xi   []spatial.Transform
	invI []spatial.Mat3
}

func (s *solver) refresh() {
	s.invI = com.InvInertiaWorld(s.sys, s.xi)
}

// pushPoint moves the world point pointC on link child by delta, sharing the
// correction with the parent link at pointP in proportion to generalized
// inverse mass. parent -1 is the world and absorbs nothing. gain scales the
// correction fraction actually applied.
func (s *solver) pushPoint(parent, child int, pointP, pointC, delta spatial.Vec3, gain float64) {
	c := delta.Norm()
	if c < minCorrection {
		return
	}
	n := delta.Scale(1 / c)

	rc := pointC.Sub(s.xi[child].Pos)
	tc := rc.Cross(n)
	wc := 1/s.sys.Links[child].Mass + tc.Dot(s.invI[child].MulVec(tc))

	wp := 0.0
	var rp spatial.Vec3
	if parent >= 0 {
		rp = pointP.Sub(s.xi[parent].Pos)
		tp := rp.Cross(n)
		wp = 1/s.sys.Links[parent].Mass + tp.Dot(s.invI[parent].MulVec(tp))
	}
	if wc+wp < minCorrection {
		return
	}

	imp := n.Scale(c * gain / (wc + wp))

	s.xi[child].Pos = s.xi[child].Pos.Add(imp.Scale(1 / s.sys.Links[child].Mass))
	s.xi[child].Rot = spatial.IntegrateQuat(s.xi[child].Rot, s.invI[child].MulVec(rc.Cross(imp)), 1)
	if parent >= 0 {
		s.xi[parent].Pos = s.xi[parent].Pos.Sub(imp.Scale(1 / s.sys.Links[parent].Mass))
		s.xi[parent].Rot = spatial.IntegrateQuat(s.xi[parent].Rot, s.invI[parent].MulVec(rp.Cross(imp)).Neg(), 1)
	}
}

// pushAngular rotates link child by the world rotation vector u (and the
// parent oppositely), split by angular inverse mass about u.
func (s *solver) pushAngular(parent, child int, u spatial.Vec3, gain float64) {
	th := u.Norm()
	if th < minCorrection {
		return
	}
	n := u.Scale(1 / th)

	wc := n.Dot(s.invI[child].MulVec(n))
	wp := 0.0
	if parent >= 0 {
		wp = n.Dot(s.invI[parent].MulVec(n))
	}
	if wc+wp < minCorrection {
		return
	}

	lambda := th * gain / (wc + wp)

	s.xi[child].Rot = spatial.IntegrateQuat(s.xi[child].Rot, s.invI[child].MulVec(n.Scale(lambda)), 1)
	if parent >= 0 {
		s.xi[parent].Rot = spatial.IntegrateQuat(s.xi[parent].Rot, s.invI[parent].MulVec(n.Scale(-lambda)), 1)
	}
}

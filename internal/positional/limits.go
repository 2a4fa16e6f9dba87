package positional

import "github.com/san-kum/rigidsim/internal/system"

// projectLimits pushes violated joint coordinates back toward their bounds.
// The push is scaled by LimitStiffness per iteration rather than applied in
// full, which is what leaves limit rebounds inelastic: part of the incoming
// motion is absorbed while the violation drains over several steps.
func (s *solver) projectLimits() {
	for i := range s.sys.Links {
		l := &s.sys.Links[i]
		if !l.Limited {
			continue
		}

		pointP, rotP, axisW := s.jointFrame(i)

		switch l.Joint {
		case system.JointRevolute:
			rel := rotP.Conj().Mul(s.xi[i].Rot)
			angle := rel.TwistAngle(l.Axis)
			c := excess(angle, l.LimitMin, l.LimitMax)
			if c == 0 {
				continue
			}
			s.pushAngular(l.Parent, i, axisW.Scale(-c), l.LimitStiffness)

		case system.JointPrismatic:
			pointC := s.childAnchor(i)
			slide := axisW.Dot(pointC.Sub(pointP))
			c := excess(slide, l.LimitMin, l.LimitMax)
			if c == 0 {
				continue
			}
			s.pushPoint(l.Parent, i, pointP, pointC, axisW.Scale(-c), l.LimitStiffness)
		}
	}
}

// excess is the signed distance of v outside [lo, hi], zero inside.
func excess(v, lo, hi float64) float64 {
	if v < lo {
		return v - lo
	}
	if v > hi {
		return v - hi
	}
	return 0
}

package positional

import (
	"github.com/san-kum/rigidsim/internal/spatial"
	"github.com/san-kum/rigidsim/internal/system"
)

// jointFrame resolves the parent-side joint data for link i against the
// current projection poses: the world anchor point, the parent orientation,
// and the world joint axis.
func (s *solver) jointFrame(i int) (pointP spatial.Vec3, rotP spatial.Quat, axisW spatial.Vec3) {
	l := &s.sys.Links[i]
	if l.Parent < 0 {
		return l.ParentAnchor, spatial.QuatIdent(), l.Axis
	}
	p := l.Parent
	caP := l.ParentAnchor.Sub(s.sys.Links[p].COM)
	return s.xi[p].Point(caP), s.xi[p].Rot, s.xi[p].Rot.Rotate(l.Axis)
}

// childAnchor is link i's joint point under the current projection poses.
func (s *solver) childAnchor(i int) spatial.Vec3 {
	l := &s.sys.Links[i]
	return s.xi[i].Point(l.ChildAnchor.Sub(l.COM))
}

// projectJoints pulls every jointed pair back onto its joint manifold: the
// anchor points together (minus the slider direction for prismatic joints)
// and the relative orientation onto the joint's allowed rotations.
func (s *solver) projectJoints() {
	for i := range s.sys.Links {
		l := &s.sys.Links[i]
		if l.Joint == system.JointFree {
			continue
		}

		pointP, rotP, axisW := s.jointFrame(i)
		pointC := s.childAnchor(i)

		delta := pointP.Sub(pointC)
		if l.Joint == system.JointPrismatic {
			delta = delta.Sub(axisW.Scale(axisW.Dot(delta)))
		}
		s.pushPoint(l.Parent, i, pointP, pointC, delta, l.Stiffness)

		switch l.Joint {
		case system.JointRevolute:
			// Remove the swing while leaving the twist about the hinge free.
			rel := rotP.Conj().Mul(s.xi[i].Rot)
			twist := spatial.AxisAngle(l.Axis, rel.TwistAngle(l.Axis))
			swing := rel.Mul(twist.Conj())
			s.pushAngular(l.Parent, i, rotP.Rotate(swing.RotVec()).Neg(), l.AngStiffness)

		case system.JointPrismatic:
			// Sliders carry no rotational freedom at all.
			rel := rotP.Conj().Mul(s.xi[i].Rot)
			s.pushAngular(l.Parent, i, rotP.Rotate(rel.RotVec()).Neg(), l.AngStiffness)
		}
	}
}

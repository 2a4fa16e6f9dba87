// Package kinematics maps between generalized joint coordinates and world
// link poses.
//
// Conventions: a link frame is aligned with its parent frame at zero joint
// coordinate, so the joint axis stored in the link frame reads the same in
// both. Free joints store pose directly (position then unit quaternion) and
// world-frame velocity. Spherical joints store the relative quaternion and
// the relative angular velocity in parent-frame axes.
//
// Inputs must already satisfy System.CheckDims; both maps are pure and
// allocate their results.
package kinematics

import (
	"github.com/san-kum/rigidsim/internal/spatial"
	"github.com/san-kum/rigidsim/internal/system"
)

// Forward computes world pose and velocity of every link frame, parents
// before children.
func Forward(sys *system.System, q, qd []float64) ([]spatial.Transform, []spatial.Motion) {
	n := len(sys.Links)
	x := make([]spatial.Transform, n)
	xd := make([]spatial.Motion, n)

	qi, qdi := 0, 0
	for i := range sys.Links {
		l := &sys.Links[i]
		xp := spatial.TransformIdent()
		xdp := spatial.Motion{}
		if l.Parent >= 0 {
			xp = x[l.Parent]
			xdp = xd[l.Parent]
		}

		switch l.Joint {
		case system.JointFree:
			x[i] = spatial.Transform{
				Pos: spatial.Vec3{X: q[qi], Y: q[qi+1], Z: q[qi+2]},
				Rot: spatial.Quat{W: q[qi+3], X: q[qi+4], Y: q[qi+5], Z: q[qi+6]}.Normalize(),
			}
			xd[i] = spatial.Motion{
				Vel: spatial.Vec3{X: qd[qdi], Y: qd[qdi+1], Z: qd[qdi+2]},
				Ang: spatial.Vec3{X: qd[qdi+3], Y: qd[qdi+4], Z: qd[qdi+5]},
			}

		case system.JointRevolute:
			rot := xp.Rot.Mul(spatial.AxisAngle(l.Axis, q[qi]))
			axisW := xp.Rot.Rotate(l.Axis)
			anchorW := xp.Point(l.ParentAnchor)
			pos := anchorW.Sub(rot.Rotate(l.ChildAnchor))
			ang := xdp.Ang.Add(axisW.Scale(qd[qdi]))
			vel := xdp.At(anchorW.Sub(xp.Pos)).Add(ang.Cross(pos.Sub(anchorW)))
			x[i] = spatial.Transform{Pos: pos, Rot: rot}
			xd[i] = spatial.Motion{Vel: vel, Ang: ang}

		case system.JointPrismatic:
			rot := xp.Rot
			axisW := xp.Rot.Rotate(l.Axis)
			anchorW := xp.Point(l.ParentAnchor)
			pos := anchorW.Add(axisW.Scale(q[qi])).Sub(rot.Rotate(l.ChildAnchor))
			ang := xdp.Ang
			vel := xdp.At(anchorW.Sub(xp.Pos)).
				Add(axisW.Scale(qd[qdi])).
				Add(ang.Cross(pos.Sub(anchorW)))
			x[i] = spatial.Transform{Pos: pos, Rot: rot}
			xd[i] = spatial.Motion{Vel: vel, Ang: ang}

		case system.JointSpherical:
			rel := spatial.Quat{W: q[qi], X: q[qi+1], Y: q[qi+2], Z: q[qi+3]}.Normalize()
			rot := xp.Rot.Mul(rel)
			anchorW := xp.Point(l.ParentAnchor)
			pos := anchorW.Sub(rot.Rotate(l.ChildAnchor))
			wRel := spatial.Vec3{X: qd[qdi], Y: qd[qdi+1], Z: qd[qdi+2]}
			ang := xdp.Ang.Add(xp.Rot.Rotate(wRel))
			vel := xdp.At(anchorW.Sub(xp.Pos)).Add(ang.Cross(pos.Sub(anchorW)))
			x[i] = spatial.Transform{Pos: pos, Rot: rot}
			xd[i] = spatial.Motion{Vel: vel, Ang: ang}
		}

		qi += l.Joint.QSize()
		qdi += l.Joint.QdSize()
	}
	return x, xd
}

// Inverse recovers generalized coordinates from world poses, the left inverse
// of Forward. Constraint drift in x lands on the unconstrained joint
// directions; the constrained directions are projected out.
func Inverse(sys *system.System, x []spatial.Transform, xd []spatial.Motion) (q, qd []float64) {
	q = make([]float64, sys.QSize())
	qd = make([]float64, sys.QdSize())

	qi, qdi := 0, 0
	for i := range sys.Links {
		l := &sys.Links[i]
		xp := spatial.TransformIdent()
		xdp := spatial.Motion{}
		if l.Parent >= 0 {
			xp = x[l.Parent]
			xdp = xd[l.Parent]
		}

		switch l.Joint {
		case system.JointFree:
			rot := x[i].Rot.Normalize()
			q[qi], q[qi+1], q[qi+2] = x[i].Pos.X, x[i].Pos.Y, x[i].Pos.Z
			q[qi+3], q[qi+4], q[qi+5], q[qi+6] = rot.W, rot.X, rot.Y, rot.Z
			qd[qdi], qd[qdi+1], qd[qdi+2] = xd[i].Vel.X, xd[i].Vel.Y, xd[i].Vel.Z
			qd[qdi+3], qd[qdi+4], qd[qdi+5] = xd[i].Ang.X, xd[i].Ang.Y, xd[i].Ang.Z

		case system.JointRevolute:
			rel := xp.Rot.Conj().Mul(x[i].Rot)
			q[qi] = rel.TwistAngle(l.Axis)
			axisW := xp.Rot.Rotate(l.Axis)
			qd[qdi] = axisW.Dot(xd[i].Ang.Sub(xdp.Ang))

		case system.JointPrismatic:
			axisW := xp.Rot.Rotate(l.Axis)
			childAnchorW := x[i].Point(l.ChildAnchor)
			parentAnchorW := xp.Point(l.ParentAnchor)
			q[qi] = axisW.Dot(childAnchorW.Sub(parentAnchorW))
			vChild := xd[i].At(childAnchorW.Sub(x[i].Pos))
			vParent := xdp.At(parentAnchorW.Sub(xp.Pos))
			qd[qdi] = axisW.Dot(vChild.Sub(vParent))

		case system.JointSpherical:
			rel := xp.Rot.Conj().Mul(x[i].Rot).Normalize()
			if rel.W < 0 {
				rel = spatial.Quat{W: -rel.W, X: -rel.X, Y: -rel.Y, Z: -rel.Z}
			}
			q[qi], q[qi+1], q[qi+2], q[qi+3] = rel.W, rel.X, rel.Y, rel.Z
			wRel := xp.Rot.Conj().Rotate(xd[i].Ang.Sub(xdp.Ang))
			qd[qdi], qd[qdi+1], qd[qdi+2] = wRel.X, wRel.Y, wRel.Z
		}

		qi += l.Joint.QSize()
		qdi += l.Joint.QdSize()
	}
	return q, qd
}

// WorldAxis is the joint axis of link i in world components, read off the
// parent pose.
func WorldAxis(sys *system.System, x []spatial.Transform, i int) spatial.Vec3 {
	l := &sys.Links[i]
	if l.Parent < 0 {
		return l.Axis
	}
	return x[l.Parent].Rot.Rotate(l.Axis)
}

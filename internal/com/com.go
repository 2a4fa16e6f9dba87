// Package com converts link-frame state to center-of-mass frames and back.
// The positional solver corrects poses at the COM, where the generalized
// inverse masses are diagonal; everything else in the pipeline speaks link
// frames.
package com

import (
	"github.com/san-kum/rigidsim/internal/spatial"
	"github.com/san-kum/rigidsim/internal/system"
)

// FromWorld shifts link poses and velocities to each link's COM. Orientation
// and angular velocity are unchanged; linear velocity is re-measured at the
// COM point.
func FromWorld(sys *system.System, x []spatial.Transform, xd []spatial.Motion) ([]spatial.Transform, []spatial.Motion) {
	n := len(sys.Links)
	xi := make([]spatial.Transform, n)
	xdi := make([]spatial.Motion, n)
	for i := range sys.Links {
		comW := x[i].Point(sys.Links[i].COM)
		xi[i] = spatial.Transform{Pos: comW, Rot: x[i].Rot}
		xdi[i] = xd[i].Shift(comW.Sub(x[i].Pos))
	}
	return xi, xdi
}

// ToWorld is the exact inverse of FromWorld, recovering link-frame poses and
// velocities from COM data.
func ToWorld(sys *system.System, xi []spatial.Transform, xdi []spatial.Motion) ([]spatial.Transform, []spatial.Motion) {
	n := len(sys.Links)
	x := make([]spatial.Transform, n)
	xd := make([]spatial.Motion, n)
	for i := range sys.Links {
		pos := xi[i].Pos.Sub(xi[i].Rot.Rotate(sys.Links[i].COM))
		x[i] = spatial.Transform{Pos: pos, Rot: xi[i].Rot}
		xd[i] = xdi[i].Shift(pos.Sub(xi[i].Pos))
	}
	return x, xd
}

// InvInertiaWorld rotates each link's principal inverse inertia into world
// axes: R diag(1/I) R^T.
func InvInertiaWorld(sys *system.System, xi []spatial.Transform) []spatial.Mat3 {
	out := make([]spatial.Mat3, len(sys.Links))
	for i := range sys.Links {
		inv := spatial.Vec3{
			X: 1 / sys.Links[i].Inertia.X,
			Y: 1 / sys.Links[i].Inertia.Y,
			Z: 1 / sys.Links[i].Inertia.Z,
		}
		r := xi[i].Rot.Mat()
		out[i] = r.Mul(spatial.Diag(inv)).Mul(r.Transpose())
	}
	return out
}

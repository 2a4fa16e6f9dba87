package spatial

import "math"

// Quat is a rotation quaternion, scalar part first. Kept unit-norm by the
// operations that construct or update orientations.
type Quat struct {
	W, X, Y, Z float64
}

func QuatIdent() Quat {
	return Quat{W: 1}
}

// AxisAngle builds the rotation of angle radians about the given unit axis.
func AxisAngle(axis Vec3, angle float64) Quat {
	s, c := math.Sincos(angle * 0.5)
	return Quat{W: c, X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s}
}

func (q Quat) Mul(r Quat) Quat {
	return Quat{
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
	}
}

// Conj is the inverse for unit quaternions.
func (q Quat) Conj() Quat {
	return Quat{W: q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
}

func (q Quat) Norm() float64 {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

func (q Quat) Normalize() Quat {
	n := q.Norm()
	if n < 1e-12 {
		return QuatIdent()
	}
	inv := 1 / n
	return Quat{W: q.W * inv, X: q.X * inv, Y: q.Y * inv, Z: q.Z * inv}
}

func (q Quat) Rotate(v Vec3) Vec3 {
	// q v q* expanded via the cross-product form.
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

func (q Quat) IsValid() bool {
	for _, c := range [4]float64{q.W, q.X, q.Y, q.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Mat returns the equivalent rotation matrix.
func (q Quat) Mat() Mat3 {
	w, x, y, z := q.W, q.X, q.Y, q.Z
	return Mat3{
		{1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y)},
		{2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x)},
		{2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y)},
	}
}

// IntegrateQuat advances orientation by angular velocity w over dt using the
// first-order rate q' = q + dt/2 (0,w) q, renormalized.
func IntegrateQuat(q Quat, w Vec3, dt float64) Quat {
	h := 0.5 * dt
	dq := Quat{X: w.X, Y: w.Y, Z: w.Z}.Mul(q)
	return Quat{
		W: q.W + h*dq.W,
		X: q.X + h*dq.X,
		Y: q.Y + h*dq.Y,
		Z: q.Z + h*dq.Z,
	}.Normalize()
}

// AngVelFromQuats recovers the angular velocity carrying from into to over dt,
// the inverse of IntegrateQuat to first order.
func AngVelFromQuats(from, to Quat, dt float64) Vec3 {
	dq := to.Mul(from.Conj())
	s := 2 / dt
	if dq.W < 0 {
		s = -s
	}
	return Vec3{dq.X * s, dq.Y * s, dq.Z * s}
}

// RotBetween returns the rotation vector (axis times angle) taking unit
// vector a onto unit vector b.
func RotBetween(a, b Vec3) Vec3 {
	axis := a.Cross(b)
	angle := math.Atan2(axis.Norm(), a.Dot(b))
	return axis.Normalize().Scale(angle)
}

// RotVec extracts the rotation vector of a unit quaternion, with the sign
// chosen so the angle lies in [0, pi].
func (q Quat) RotVec() Vec3 {
	v := Vec3{q.X, q.Y, q.Z}
	n := v.Norm()
	if n < 1e-12 {
		return Vec3{}
	}
	angle := 2 * math.Atan2(n, q.W)
	if angle > math.Pi {
		angle -= 2 * math.Pi
	}
	return v.Scale(angle / n)
}

// TwistAngle returns the rotation of q about the given unit axis, wrapped to
// [-pi, pi].
func (q Quat) TwistAngle(axis Vec3) float64 {
	p := axis.X*q.X + axis.Y*q.Y + axis.Z*q.Z
	angle := 2 * math.Atan2(p, q.W)
	if angle > math.Pi {
		angle -= 2 * math.Pi
	} else if angle < -math.Pi {
		angle += 2 * math.Pi
	}
	return angle
}

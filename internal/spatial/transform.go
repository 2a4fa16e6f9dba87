package spatial

// Transform places a frame in a parent frame: rotate by Rot, then translate
// by Pos.
type Transform struct {
	Pos Vec3
	Rot Quat
}

func TransformIdent() Transform {
	return Transform{Rot: QuatIdent()}
}

// Mul composes transforms: the result maps a point through b, then through t.
func (t Transform) Mul(b Transform) Transform {
	return Transform{
		Pos: t.Pos.Add(t.Rot.Rotate(b.Pos)),
		Rot: t.Rot.Mul(b.Rot),
	}
}

func (t Transform) Inv() Transform {
	inv := t.Rot.Conj()
	return Transform{
		Pos: inv.Rotate(t.Pos.Neg()),
		Rot: inv,
	}
}

// Point maps a point from the local frame to the parent frame.
func (t Transform) Point(p Vec3) Vec3 {
	return t.Pos.Add(t.Rot.Rotate(p))
}

// Vec maps a direction from the local frame to the parent frame.
func (t Transform) Vec(v Vec3) Vec3 {
	return t.Rot.Rotate(v)
}

// InvPoint maps a point from the parent frame into the local frame.
func (t Transform) InvPoint(p Vec3) Vec3 {
	return t.Rot.Conj().Rotate(p.Sub(t.Pos))
}

func (t Transform) IsValid() bool {
	return t.Pos.IsValid() && t.Rot.IsValid()
}

package spatial

// Motion is the velocity of a frame: linear velocity of its origin plus
// angular velocity, both expressed in world axes.
type Motion struct {
	Vel Vec3
	Ang Vec3
}

func (m Motion) Add(b Motion) Motion {
	return Motion{Vel: m.Vel.Add(b.Vel), Ang: m.Ang.Add(b.Ang)}
}

func (m Motion) Sub(b Motion) Motion {
	return Motion{Vel: m.Vel.Sub(b.Vel), Ang: m.Ang.Sub(b.Ang)}
}

func (m Motion) Scale(s float64) Motion {
	return Motion{Vel: m.Vel.Scale(s), Ang: m.Ang.Scale(s)}
}

// At reports the linear velocity of a point offset r from the origin the
// motion is measured at. Angular velocity is unchanged by the shift.
func (m Motion) At(r Vec3) Vec3 {
	return m.Vel.Add(m.Ang.Cross(r))
}

// Shift re-expresses the motion at a point offset r from the current
// measurement origin.
func (m Motion) Shift(r Vec3) Motion {
	return Motion{Vel: m.At(r), Ang: m.Ang}
}

func (m Motion) IsValid() bool {
	return m.Vel.IsValid() && m.Ang.IsValid()
}

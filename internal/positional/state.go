package positional

import (
	"github.com/san-kum/rigidsim/internal/spatial"
)

// State is one instant of a maximal-coordinate trajectory. Q/QD are the
// generalized coordinates kept in sync with the world-frame data: X/XD are
// link-frame poses and velocities, XI/XDI the same measured at each link's
// COM.
//
// States are never mutated: Init and Step return fresh values, so trajectories
// may be forked from a shared ancestor and stepped concurrently.
type State struct {
	Q  []float64
	QD []float64

	X  []spatial.Transform
	XD []spatial.Motion

	XI  []spatial.Transform
	XDI []spatial.Motion
}

// Clone deep-copies the state.
func (s *State) Clone() *State {
	c := &State{
		Q:   append([]float64(nil), s.Q...),
		QD:  append([]float64(nil), s.QD...),
		X:   append([]spatial.Transform(nil), s.X...),
		XD:  append([]spatial.Motion(nil), s.XD...),
		XI:  append([]spatial.Transform(nil), s.XI...),
		XDI: append([]spatial.Motion(nil), s.XDI...),
	}
	return c
}

// firstInvalidPose reports the lowest link whose pose holds a NaN or Inf,
// or -1 when all are finite.
func firstInvalidPose(xi []spatial.Transform) int {
	for i := range xi {
		if !xi[i].IsValid() {
			return i
		}
	}
	return -1
}

// firstInvalidMotion is firstInvalidPose for velocities.
func firstInvalidMotion(xdi []spatial.Motion) int {
	for i := range xdi {
		if !xdi[i].IsValid() {
			return i
		}
	}
	return -1
}

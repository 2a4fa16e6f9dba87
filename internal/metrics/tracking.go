package metrics

import (
	"math"

	"github.com/san-kum/rigidsim/internal/positional"
	"github.com/san-kum/rigidsim/internal/system"
)

// TrackingError reports the mean absolute deviation of actuated joint
// coordinates from their targets. Targets map one-to-one onto actuators;
// missing entries count as zero.
type TrackingError struct {
	name    string
	sys     *system.System
	targets []float64
	sum     float64
	samples int
}

func NewTrackingError(sys *system.System, targets []float64) *TrackingError {
	return &TrackingError{name: "tracking_error", sys: sys, targets: targets}
}

func (e *TrackingError) Name() string {
	return e.name
}

func (e *TrackingError) Observe(st *positional.State, u []float64, t float64) {
	for i, a := range e.sys.Actuators {
		target := 0.0
		if i < len(e.targets) {
			target = e.targets[i]
		}
		q := st.Q[e.sys.QOffset(a.Link)]
		e.sum += math.Abs(q - target)
	}
	e.samples++
}

func (e *TrackingError) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.sum / float64(e.samples)
}

func (e *TrackingError) Reset() {
	e.sum = 0
	e.samples = 0
}

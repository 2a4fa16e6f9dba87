package rollout

import (
	"math"

	"github.com/san-kum/rigidsim/internal/positional"
	"github.com/san-kum/rigidsim/internal/system"
)

// Zero applies no actuation.
type Zero struct{}

func (Zero) Act(*positional.State, float64) []float64 { return nil }

// PD drives each actuated joint coordinate toward a target with a
// proportional-derivative law. Actuated joints are single coordinate, so the
// coordinate indices are resolved once at construction.
type PD struct {
	Kp, Kd float64
	target []float64
	qIdx   []int
	qdIdx  []int
}

func NewPD(sys *system.System, kp, kd float64, target []float64) *PD {
	p := &PD{Kp: kp, Kd: kd, target: append([]float64(nil), target...)}
	for i := range sys.Actuators {
		link := sys.Actuators[i].Link
		p.qIdx = append(p.qIdx, sys.QOffset(link))
		p.qdIdx = append(p.qdIdx, sys.QdOffset(link))
	}
	return p
}

func (p *PD) Act(st *positional.State, t float64) []float64 {
	act := make([]float64, len(p.qIdx))
	for k := range act {
		tgt := 0.0
		if k < len(p.target) {
			tgt = p.target[k]
		}
		act[k] = p.Kp*(tgt-st.Q[p.qIdx[k]]) - p.Kd*st.QD[p.qdIdx[k]]
	}
	return act
}

// Sine excites every actuator with a shared sinusoid.
type Sine struct {
	Amp  float64
	Freq float64
	n    int
}

func NewSine(sys *system.System, amp, freq float64) *Sine {
	return &Sine{Amp: amp, Freq: freq, n: len(sys.Actuators)}
}

func (s *Sine) Act(_ *positional.State, t float64) []float64 {
	act := make([]float64, s.n)
	v := s.Amp * math.Sin(2*math.Pi*s.Freq*t)
	for k := range act {
		act[k] = v
	}
	return act
}

package metrics

import (
	"github.com/san-kum/rigidsim/internal/positional"
)

// Stability reports the fraction of observed states where every link speed,
// linear and angular, stays under the threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{name: "stability", threshold: threshold}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(st *positional.State, u []float64, t float64) {
	s.samples++
	for i := range st.XDI {
		if st.XDI[i].Vel.Norm() > s.threshold || st.XDI[i].Ang.Norm() > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

package metrics

import (
	"math"

	"github.com/san-kum/rigidsim/internal/positional"
	"github.com/san-kum/rigidsim/internal/spatial"
	"github.com/san-kum/rigidsim/internal/system"
)

// Total is the mechanical energy of a state: kinetic at each COM plus
// gravitational potential over all links.
func Total(sys *system.System, st *positional.State) float64 {
	e := 0.0
	for i := range sys.Links {
		l := &sys.Links[i]
		v := st.XDI[i].Vel
		w := st.XDI[i].Ang
		r := st.XI[i].Rot.Mat()
		iw := r.Mul(spatial.Diag(l.Inertia)).Mul(r.Transpose())
		e += 0.5*l.Mass*v.NormSq() + 0.5*w.Dot(iw.MulVec(w))
		e -= l.Mass * sys.Opts.Gravity.Dot(st.XI[i].Pos)
	}
	return e
}

// Energy reports the mean total mechanical energy seen over a run.
type Energy struct {
	name    string
	sys     *system.System
	samples int
	total   float64
}

func NewEnergy(sys *system.System) *Energy {
	return &Energy{name: "energy", sys: sys}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(st *positional.State, u []float64, t float64) {
	e.total += Total(e.sys, st)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *Energy) Reset() {
	e.total = 0
	e.samples = 0
}

// EnergyDrift tracks the worst relative deviation from the first observed
// energy.
type EnergyDrift struct {
	name     string
	sys      *system.System
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift(sys *system.System) *EnergyDrift {
	return &EnergyDrift{name: "energy_drift", sys: sys}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(st *positional.State, u []float64, t float64) {
	energy := Total(e.sys, st)
	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}

package integrators

import (
	"testing"
)

type benchChain struct{}

func (b *benchChain) Derive(x, u []float64, t float64) []float64 {
	n := len(x) / 2
	dx := make([]float64, len(x))
	for i := 0; i < n; i++ {
		dx[i] = x[n+i]
		dx[n+i] = -x[i] * 0.1
	}
	return dx
}

func BenchmarkEuler(b *testing.B) {
	integrator := NewEuler()
	dyn := &benchChain{}
	x := []float64{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, nil, 0, 0.01)
	}
}

func BenchmarkRK4(b *testing.B) {
	integrator := NewRK4()
	dyn := &benchChain{}
	x := []float64{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, nil, 0, 0.01)
	}
}

func BenchmarkRK4_Chain10(b *testing.B) {
	integrator := NewRK4()
	dyn := &benchChain{}
	x := make([]float64, 20)
	for i := range x {
		x[i] = float64(i) * 0.1
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, nil, 0, 0.001)
	}
}

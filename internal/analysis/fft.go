// Package analysis extracts frequency content from sampled trajectories.
package analysis

import (
	"math"
	"math/cmplx"
)

// fft is a recursive radix-2 transform. Callers guarantee a power of two
// length.
func fft(data []complex128) []complex128 {
	n := len(data)
	if n <= 1 {
		return data
	}

	even := make([]complex128, n/2)
	odd := make([]complex128, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := fft(even)
	fodd := fft(odd)

	out := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		out[k] = feven[k] + w*fodd[k]
		out[k+n/2] = feven[k] - w*fodd[k]
	}
	return out
}

// Spectrum returns the single-sided magnitude spectrum of the signal,
// zero-padded to the next power of two. Bin i holds the magnitude at
// frequency i/(n*d) for sample spacing d, where n is the padded length.
func Spectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}

	n := 1
	for n < len(data) {
		n *= 2
	}
	padded := make([]complex128, n)
	for i, v := range data {
		padded[i] = complex(v, 0)
	}

	out := fft(padded)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(out[i])
	}
	return ps
}

// PaddedLen is the transform length Spectrum uses for a signal, needed to
// convert bin indices to frequencies.
func PaddedLen(samples int) int {
	n := 1
	for n < samples {
		n *= 2
	}
	return n
}

// Dominant returns the strongest non-constant frequency in hertz for
// samples spaced d seconds apart, or zero for flat signals.
func Dominant(data []float64, d float64) float64 {
	if len(data) < 2 || d <= 0 {
		return 0
	}

	ps := Spectrum(data)
	maxPower := 0.0
	maxIdx := 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > maxPower {
			maxPower = ps[i]
			maxIdx = i
		}
	}
	if maxPower < 1e-9 {
		return 0
	}
	return float64(maxIdx) / (float64(PaddedLen(len(data))) * d)
}

package testutil

import "math/rand/v2"

// NaiveCyclic computes the cyclic convolution h[k] = Σ f[j]·g[(k-j) mod n]
// in O(n²). f and g must have the same length.
func NaiveCyclic(f, g []float64) []float64 {
	n := len(f)
	h := make([]float64, n)
	for k := 0; k < n; k++ {
		var sum float64
		for j := 0; j < n; j++ {
			idx := k - j
			if idx < 0 {
				idx += n
			}
			sum += f[j] * g[idx]
		}
		h[k] = sum
	}
	return h
}

// NaiveFilter computes the zero-padded convolution of signal with the
// symmetric filter described by its one-sided taps, one output sample at a
// time. It shares no code with the engine and serves as its oracle.
func NaiveFilter(filter, signal []float64) []float64 {
	n := len(signal)
	out := make([]float64, n)
	for j := 0; j < n; j++ {
		sum := filter[0] * signal[j]
		for i := 1; i < len(filter); i++ {
			if j-i >= 0 {
				sum += filter[i] * signal[j-i]
			}
			if j+i < n {
				sum += filter[i] * signal[j+i]
			}
		}
		out[j] = sum
	}
	return out
}

// RandomIntSignal returns n integer-valued samples drawn uniformly from
// [lo, hi). Integer inputs keep reference sums exact.
func RandomIntSignal(rng *rand.Rand, n, lo, hi int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(lo + rng.IntN(hi-lo))
	}
	return out
}

// RandomSignal returns n samples drawn uniformly from [-1, 1).
func RandomSignal(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 2*rng.Float64() - 1
	}
	return out
}

// NewRand returns a deterministic generator for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

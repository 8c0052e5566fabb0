package cyclic

import (
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
)

// GonumEngine computes cyclic convolutions with gonum's real FFT. Only the
// n/2+1 non-redundant coefficients of each real input are transformed.
//
// gonum plans keep internal work buffers, so plans are pooled per size and
// never shared between goroutines.
type GonumEngine struct {
	mu    sync.Mutex
	plans map[int]*sync.Pool
}

var gonumBased = sync.OnceValue(func() *GonumEngine {
	return &GonumEngine{plans: make(map[int]*sync.Pool)}
})

// GonumBased returns the process-wide gonum-backed engine.
func GonumBased() *GonumEngine {
	return gonumBased()
}

// AcceptableSize returns the next power of two not less than lowerBound.
func (e *GonumEngine) AcceptableSize(lowerBound int) (int, error) {
	return power2Size(lowerBound, MaxSize)
}

func (e *GonumEngine) planPool(n int) *sync.Pool {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.plans[n]
	if !ok {
		p = &sync.Pool{New: func() any { return fourier.NewFFT(n) }}
		e.plans[n] = p
	}
	return p
}

// Curry precomputes the half spectrum of f. f is not copied.
func (e *GonumEngine) Curry(f []float64) (Operator, error) {
	if err := validateCurried(f, MaxSize); err != nil {
		return nil, err
	}
	n := len(f)
	if n == 1 {
		return &scalarOperator{value: f[0]}, nil
	}
	pool := e.planPool(n)
	plan := pool.Get().(*fourier.FFT)
	spectrum := plan.Coefficients(nil, f)
	pool.Put(plan)
	return &gonumOperator{n: n, pool: pool, spectrum: spectrum}, nil
}

type gonumOperator struct {
	n        int
	pool     *sync.Pool
	spectrum []complex128
}

func (o *gonumOperator) Len() int { return o.n }

func (o *gonumOperator) Apply(g []float64) ([]float64, error) {
	if err := validateApplied(g, o.n); err != nil {
		return nil, err
	}
	plan := o.pool.Get().(*fourier.FFT)
	defer o.pool.Put(plan)

	coeff := plan.Coefficients(nil, g)
	for k := range coeff {
		coeff[k] *= o.spectrum[k]
	}
	h := plan.Sequence(nil, coeff)
	inv := 1 / float64(o.n)
	for j := range h {
		h[j] *= inv
	}
	return h, nil
}

// scalarOperator handles N == 1, where convolution is a product.
type scalarOperator struct {
	value float64
}

func (o *scalarOperator) Len() int { return 1 }

func (o *scalarOperator) Apply(g []float64) ([]float64, error) {
	if err := validateApplied(g, 1); err != nil {
		return nil, err
	}
	return []float64{o.value * g[0]}, nil
}

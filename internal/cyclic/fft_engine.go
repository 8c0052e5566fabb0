package cyclic

import (
	"sync"

	apperrors "github.com/agbru/kdeconv/internal/errors"
	"github.com/agbru/kdeconv/internal/fft"
)

// FFTEngine computes cyclic convolutions through an injected Transform:
// h = Inverse(Forward(f)·Forward(g)) / N.
type FFTEngine struct {
	transform fft.Transform
	maxSize   int
}

// NewFFTEngine wraps t. The accepted size is the smaller of MaxSize and the
// transform's own limit.
func NewFFTEngine(t fft.Transform) (*FFTEngine, error) {
	if t == nil {
		return nil, apperrors.NewMissingArgumentError("transform")
	}
	return &FFTEngine{transform: t, maxSize: min(MaxSize, t.MaxAcceptableSize())}, nil
}

var fftBased = sync.OnceValue(func() *FFTEngine {
	e, _ := NewFFTEngine(fft.New())
	return e
})

// FFTBased returns the process-wide engine backed by the radix-2 FFT. It is
// created on first use and immutable afterwards.
func FFTBased() *FFTEngine {
	return fftBased()
}

// AcceptableSize returns the next power of two not less than lowerBound.
func (e *FFTEngine) AcceptableSize(lowerBound int) (int, error) {
	return power2Size(lowerBound, e.maxSize)
}

// Curry precomputes the spectrum of f. f is not copied and must not be
// modified while the returned Operator is in use.
func (e *FFTEngine) Curry(f []float64) (Operator, error) {
	if err := validateCurried(f, e.maxSize); err != nil {
		return nil, err
	}
	re, im, err := e.transform.Forward(f, make([]float64, len(f)))
	if err != nil {
		return nil, apperrors.CalculationError{Cause: err}
	}
	return &fftOperator{transform: e.transform, spectrumRe: re, spectrumIm: im}, nil
}

type fftOperator struct {
	transform              fft.Transform
	spectrumRe, spectrumIm []float64
}

func (o *fftOperator) Len() int { return len(o.spectrumRe) }

func (o *fftOperator) Apply(g []float64) ([]float64, error) {
	n := o.Len()
	if err := validateApplied(g, n); err != nil {
		return nil, err
	}
	gRe, gIm, err := o.transform.Forward(g, make([]float64, n))
	if err != nil {
		return nil, apperrors.CalculationError{Cause: err}
	}

	hRe := make([]float64, n)
	hIm := make([]float64, n)
	for j := 0; j < n; j++ {
		fr, fi := o.spectrumRe[j], o.spectrumIm[j]
		gr, gi := gRe[j], gIm[j]
		hRe[j] = fr*gr - fi*gi
		hIm[j] = fr*gi + fi*gr
	}

	h, _, err := o.transform.Inverse(hRe, hIm)
	if err != nil {
		return nil, apperrors.CalculationError{Cause: err}
	}
	inv := 1 / float64(n)
	for j := range h {
		h[j] *= inv
	}
	return h, nil
}

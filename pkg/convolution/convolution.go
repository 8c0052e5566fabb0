// Package convolution is the public entry point of kdeconv.
//
// It exposes cyclic convolution on acceptable (power-of-two) sizes and
// zero-padded convolution with symmetric one-sided filters. Every function
// copies its slice arguments, so callers keep full ownership of their data.
// Failures match ErrInvalidArgument or ErrMissingArgument through errors.Is.
package convolution

import (
	"github.com/agbru/kdeconv/internal/cyclic"
	apperrors "github.com/agbru/kdeconv/internal/errors"
	"github.com/agbru/kdeconv/internal/filterconv"
)

var (
	// ErrInvalidArgument is matched by errors caused by unusable inputs:
	// wrong lengths, sizes above the engine maximum, empty or negative data.
	ErrInvalidArgument = apperrors.ErrInvalidArgument
	// ErrMissingArgument is matched by errors caused by nil inputs.
	ErrMissingArgument = apperrors.ErrMissingArgument
)

// MaxSize is the largest cyclic convolution length.
const MaxSize = cyclic.MaxSize

// CalcAcceptableSize returns the smallest power of two not less than
// lowerBound (1 for bounds of 1 or less). It fails for bounds above MaxSize.
func CalcAcceptableSize(lowerBound int) (int, error) {
	return cyclic.FFTBased().AcceptableSize(lowerBound)
}

// Curry fixes f for repeated cyclic convolutions. len(f) must be an
// acceptable size. The returned function requires len(g) == len(f).
func Curry(f []float64) (func(g []float64) ([]float64, error), error) {
	if f == nil {
		return nil, apperrors.NewMissingArgumentError("f")
	}
	op, err := cyclic.FFTBased().Curry(clone(f))
	if err != nil {
		return nil, err
	}
	return func(g []float64) ([]float64, error) {
		if g == nil {
			return nil, apperrors.NewMissingArgumentError("g")
		}
		return op.Apply(clone(g))
	}, nil
}

// Convolve returns the cyclic convolution of f and g, which must share an
// acceptable length.
func Convolve(f, g []float64) ([]float64, error) {
	apply, err := Curry(f)
	if err != nil {
		return nil, err
	}
	return apply(g)
}

// FilterConvolution convolves signals with a fixed symmetric filter.
type FilterConvolution struct {
	partial *filterconv.PartialApplied
}

// NewFilterConvolution fixes the one-sided filter. filter[0] is the centre
// tap and filter[i] weighs both neighbours at distance i.
func NewFilterConvolution(filter []float64) (*FilterConvolution, error) {
	c, err := filterconv.New()
	if err != nil {
		return nil, err
	}
	p, err := c.Curry(filter)
	if err != nil {
		return nil, err
	}
	return &FilterConvolution{partial: p}, nil
}

// Compute returns the zero-padded convolution of signal, of the same length.
func (fc *FilterConvolution) Compute(signal []float64) ([]float64, error) {
	if signal == nil {
		return nil, apperrors.NewMissingArgumentError("signal")
	}
	return fc.partial.Compute(clone(signal))
}

// ComputeParallel is Compute with an explicit parallelism choice.
func (fc *FilterConvolution) ComputeParallel(signal []float64, parallel bool) ([]float64, error) {
	if signal == nil {
		return nil, apperrors.NewMissingArgumentError("signal")
	}
	return fc.partial.ComputeWith(clone(signal), parallel)
}

// WeightedFilterConvolution is a FilterConvolution restricted to finite,
// non-negative filters and signals. Its outputs are never negative.
type WeightedFilterConvolution struct {
	partial *filterconv.NonNegativePartial
}

// NewWeightedFilterConvolution fixes a non-negative one-sided filter.
func NewWeightedFilterConvolution(filter []float64) (*WeightedFilterConvolution, error) {
	c, err := filterconv.New()
	if err != nil {
		return nil, err
	}
	w, err := filterconv.NewNonNegative(c)
	if err != nil {
		return nil, err
	}
	p, err := w.Curry(filter)
	if err != nil {
		return nil, err
	}
	return &WeightedFilterConvolution{partial: p}, nil
}

// Compute returns the clamped zero-padded convolution of signal.
func (wc *WeightedFilterConvolution) Compute(signal []float64) ([]float64, error) {
	if signal == nil {
		return nil, apperrors.NewMissingArgumentError("signal")
	}
	return wc.partial.Compute(clone(signal))
}

// ComputeParallel is Compute with an explicit parallelism choice.
func (wc *WeightedFilterConvolution) ComputeParallel(signal []float64, parallel bool) ([]float64, error) {
	if signal == nil {
		return nil, apperrors.NewMissingArgumentError("signal")
	}
	return wc.partial.ComputeWith(clone(signal), parallel)
}

func clone(s []float64) []float64 {
	return append(make([]float64, 0, len(s)), s...)
}

package filterconv

import (
	"math"

	"gonum.org/v1/gonum/floats"

	apperrors "github.com/agbru/kdeconv/internal/errors"
)

// NonNegative wraps a Convolution for weights that are known to be
// non-negative, such as density kernels and histogram counts. Inputs are
// checked up front and small negative round-off artifacts are removed from
// the output.
type NonNegative struct {
	conv *Convolution
}

// NewNonNegative wraps c.
func NewNonNegative(c *Convolution) (*NonNegative, error) {
	if c == nil {
		return nil, apperrors.NewMissingArgumentError("convolution")
	}
	return &NonNegative{conv: c}, nil
}

// Curry fixes the filter after checking that every tap is finite and
// non-negative.
func (w *NonNegative) Curry(filter []float64) (*NonNegativePartial, error) {
	if filter == nil {
		return nil, apperrors.NewMissingArgumentError("filter")
	}
	if err := requireNonNegative("filter", filter); err != nil {
		return nil, err
	}
	p, err := w.conv.Curry(filter)
	if err != nil {
		return nil, err
	}
	return &NonNegativePartial{inner: p}, nil
}

// NonNegativePartial is a NonNegative convolution with its filter fixed.
type NonNegativePartial struct {
	inner *PartialApplied
}

// Compute convolves signal in auto mode and clamps the result.
func (p *NonNegativePartial) Compute(signal []float64) ([]float64, error) {
	return p.ComputeUsing(signal, StrategyAuto, ParallelAuto)
}

// ComputeWith convolves signal with an explicit parallelism choice and
// clamps the result.
func (p *NonNegativePartial) ComputeWith(signal []float64, parallel bool) ([]float64, error) {
	return p.ComputeUsing(signal, StrategyAuto, ParallelModeOf(parallel))
}

// ComputeUsing convolves signal with the given strategy and parallelism and
// clamps the result.
func (p *NonNegativePartial) ComputeUsing(signal []float64, strategy Strategy, mode ParallelMode) ([]float64, error) {
	if signal == nil {
		return nil, apperrors.NewMissingArgumentError("signal")
	}
	if err := requireNonNegative("signal", signal); err != nil {
		return nil, err
	}
	out, err := p.inner.ComputeUsing(signal, strategy, mode)
	if err != nil {
		return nil, err
	}
	ClampNegativeArtifacts(out)
	return out, nil
}

// requireNonNegative rejects NaN, infinities and negative values.
func requireNonNegative(field string, values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return apperrors.NewValidationError(field, "contains a non-finite value", i)
		}
		if v < 0 {
			return apperrors.NewValidationError(field, "contains a negative value", i)
		}
	}
	return nil
}

// ClampNegativeArtifacts zeroes, in place, every element smaller than the
// largest magnitude found among the negative elements. Exact convolutions of
// non-negative inputs have no negative samples, so that magnitude is taken
// as the round-off noise floor. Slices without negative elements are left
// unchanged.
func ClampNegativeArtifacts(values []float64) {
	if len(values) == 0 {
		return
	}
	lowest := floats.Min(values)
	if lowest >= 0 {
		return
	}
	floor := -lowest
	for i, v := range values {
		if v < floor {
			values[i] = 0
		}
	}
}

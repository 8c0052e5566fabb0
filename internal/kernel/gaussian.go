// Package kernel builds the one-sided smoothing filters consumed by
// filterconv.
package kernel

import (
	"math"

	apperrors "github.com/agbru/kdeconv/internal/errors"
)

const (
	// MinResolutionScale is the smallest accepted mesh-step / bandwidth ratio.
	MinResolutionScale = 1e-2
	// sizeCoefficient sets the filter reach in bandwidths.
	sizeCoefficient = 4
)

// Gaussian returns the one-sided taps of a normalised Gaussian filter
// sampled every resolutionScale bandwidths.
//
// The filter has 1 + floor(4/resolutionScale) taps, tap i being
// exp(-(i·resolutionScale)²/2), scaled so that filter[0] + 2·Σ filter[i>0] == 1.
// +Inf is treated as the largest finite float and yields the single tap {1}.
//
// Parameters:
//   - resolutionScale: The mesh step divided by the bandwidth, at least 1e-2.
//
// Returns:
//   - []float64: The one-sided filter.
//   - error: An invalid-argument error for NaN or values below 1e-2.
func Gaussian(resolutionScale float64) ([]float64, error) {
	if !(resolutionScale >= MinResolutionScale) {
		return nil, apperrors.NewValidationError("resolutionScale", "must be at least 1e-2", resolutionScale)
	}
	resolutionScale = math.Min(resolutionScale, math.MaxFloat64)

	size := 1 + int(sizeCoefficient/resolutionScale)
	filter := make([]float64, size)
	filter[0] = 1
	total := 1.0
	for i := 1; i < size; i++ {
		x := float64(i) * resolutionScale
		v := math.Exp(-0.5 * x * x)
		filter[i] = v
		total += 2 * v
	}

	inv := 1 / total
	for i := range filter {
		filter[i] *= inv
	}
	return filter, nil
}

// CorrectInfinite maps ±Inf to ±MaxFloat64 and returns other values,
// including NaN, unchanged.
func CorrectInfinite(v float64) float64 {
	switch {
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	}
	return v
}

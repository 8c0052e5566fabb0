// Package cyclic implements transform-based cyclic convolution.
//
// An Engine accepts only specific sizes (powers of two for both engines in
// this package). AcceptableSize is the size oracle: callers round their
// working length up with it before currying a kernel.
package cyclic

import (
	"math/bits"

	apperrors "github.com/agbru/kdeconv/internal/errors"
)

// MaxSize is the largest cyclic convolution length accepted by the engines
// in this package.
const MaxSize = 1 << 25

// Engine computes cyclic convolutions of equal-length real sequences.
type Engine interface {
	// AcceptableSize returns the smallest acceptable size not less than
	// lowerBound. Bounds of 1 or less map to 1. The result is idempotent:
	// AcceptableSize(AcceptableSize(n)) == AcceptableSize(n).
	AcceptableSize(lowerBound int) (int, error)
	// Curry fixes f and precomputes whatever depends on it only.
	Curry(f []float64) (Operator, error)
}

// Operator is an Engine with its first argument fixed.
type Operator interface {
	// Apply returns h[k] = Σ f[j]·g[(k-j) mod N]. g must have length Len().
	Apply(g []float64) ([]float64, error)
	// Len returns N, the length of the curried sequence.
	Len() int
}

// Convolve is the uncurried form: it curries f on e and applies g.
func Convolve(e Engine, f, g []float64) ([]float64, error) {
	op, err := e.Curry(f)
	if err != nil {
		return nil, err
	}
	return op.Apply(g)
}

// power2Size rounds lowerBound up to a power of two, capped by maxSize.
func power2Size(lowerBound, maxSize int) (int, error) {
	if lowerBound > maxSize {
		return 0, apperrors.NewValidationError("lowerBound", "exceeds the maximum acceptable size", lowerBound)
	}
	if lowerBound <= 1 {
		return 1, nil
	}
	// highest one bit of (lowerBound-1), doubled
	return 1 << bits.Len(uint(lowerBound-1)), nil
}

// validateCurried checks the argument of Curry against the size oracle.
func validateCurried(f []float64, maxSize int) error {
	if f == nil {
		return apperrors.NewMissingArgumentError("f")
	}
	size, err := power2Size(len(f), maxSize)
	if err != nil {
		return err
	}
	if size != len(f) {
		return apperrors.NewValidationError("f", "length is not an acceptable size", len(f))
	}
	return nil
}

// validateApplied checks the argument of Apply against the curried length.
func validateApplied(g []float64, size int) error {
	if g == nil {
		return apperrors.NewMissingArgumentError("g")
	}
	if len(g) != size {
		return apperrors.NewValidationError("g", "length differs from the curried sequence", len(g))
	}
	return nil
}

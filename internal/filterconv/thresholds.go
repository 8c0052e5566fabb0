package filterconv

import (
	apperrors "github.com/agbru/kdeconv/internal/errors"
	"github.com/agbru/kdeconv/internal/parallel"
)

// Thresholds holds the problem-size cut-offs used by the dispatch facade.
type Thresholds struct {
	// MinFilterForEffective is the smallest filter length for which the
	// segmented transform path is considered.
	MinFilterForEffective int
	// MinProductForEffective is the smallest filter·signal length product
	// for which the segmented transform path is considered.
	MinProductForEffective int64
	// MinFilterForParallel is the smallest filter length for which the
	// direct path fans out automatically.
	MinFilterForParallel int
	// MinProductForParallel is the smallest filter·signal length product
	// for which either path fans out automatically.
	MinProductForParallel int64
	// MinSplitSize is the smallest index range still halved by the parallel
	// direct path.
	MinSplitSize int
}

// DefaultThresholds returns the built-in cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinFilterForEffective:  100,
		MinProductForEffective: 500_000,
		MinFilterForParallel:   20,
		MinProductForParallel:  50_000,
		MinSplitSize:           parallel.DefaultMinSplit,
	}
}

// Validate rejects negative cut-offs and a split size below one.
func (t Thresholds) Validate() error {
	switch {
	case t.MinFilterForEffective < 0:
		return apperrors.NewValidationError("MinFilterForEffective", "must not be negative", t.MinFilterForEffective)
	case t.MinProductForEffective < 0:
		return apperrors.NewValidationError("MinProductForEffective", "must not be negative", t.MinProductForEffective)
	case t.MinFilterForParallel < 0:
		return apperrors.NewValidationError("MinFilterForParallel", "must not be negative", t.MinFilterForParallel)
	case t.MinProductForParallel < 0:
		return apperrors.NewValidationError("MinProductForParallel", "must not be negative", t.MinProductForParallel)
	case t.MinSplitSize < 1:
		return apperrors.NewValidationError("MinSplitSize", "must be at least 1", t.MinSplitSize)
	}
	return nil
}

// prefersEffective reports whether a filter of length l applied to a signal
// of length n is large enough for the transform path to pay off.
func (t Thresholds) prefersEffective(l, n int) bool {
	return l >= t.MinFilterForEffective && int64(l)*int64(n) >= t.MinProductForEffective
}

// directParallel reports whether the direct path should fan out.
func (t Thresholds) directParallel(l, n int) bool {
	return l >= t.MinFilterForParallel && int64(l)*int64(n) >= t.MinProductForParallel
}

// segmentedParallel reports whether the segmented path should fan out.
func (t Thresholds) segmentedParallel(l, n, blocks int) bool {
	return blocks > 1 && int64(l)*int64(n) >= t.MinProductForParallel
}

package calibration

import (
	"runtime"

	"github.com/agbru/kdeconv/internal/filterconv"
)

// ─────────────────────────────────────────────────────────────────────────────
// Adaptive Candidate Generation
// ─────────────────────────────────────────────────────────────────────────────

// GenerateFilterLengths returns the filter lengths probed for the crossover
// between the direct and the transform-based path. The direct path costs
// O(L·n) and the segmented path O(n·log L), so the crossover is searched on a
// geometric grid around the default cut-off.
func GenerateFilterLengths() []int {
	return []int{16, 32, 64, 100, 160, 256, 400, 640}
}

// GenerateQuickFilterLengths is the reduced grid used at startup.
func GenerateQuickFilterLengths() []int {
	return []int{32, 100, 256}
}

// GenerateParallelSignalLengths returns the signal lengths probed for the
// point where the parallel direct path beats the sequential one. Few cores
// need more work per goroutine before fan-out pays off, so the grid shifts
// upwards on small machines.
func GenerateParallelSignalLengths() []int {
	numCPU := runtime.NumCPU()

	switch {
	case numCPU == 1:
		return nil
	case numCPU <= 4:
		return []int{1024, 4096, 16384, 65536}
	case numCPU <= 16:
		return []int{512, 2048, 8192, 32768}
	default:
		return []int{256, 1024, 4096, 16384}
	}
}

// GenerateSplitSizes returns the MinSplitSize candidates for the parallel
// direct path.
func GenerateSplitSizes() []int {
	if runtime.NumCPU() == 1 {
		return []int{filterconv.DefaultThresholds().MinSplitSize}
	}
	return []int{32, 64, 128, 256, 512, 1024}
}

// ─────────────────────────────────────────────────────────────────────────────
// Threshold Estimation (without benchmarking)
// ─────────────────────────────────────────────────────────────────────────────

// EstimateThresholds provides a heuristic starting point from the core count
// alone. It is used when measurements are unavailable or too noisy.
func EstimateThresholds() filterconv.Thresholds {
	t := filterconv.DefaultThresholds()
	numCPU := runtime.NumCPU()

	switch {
	case numCPU == 1:
		// Auto mode never fans out on a single core.
		t.MinProductForParallel = 1 << 62
	case numCPU <= 2:
		t.MinProductForParallel = 200_000
	case numCPU >= 16:
		t.MinProductForParallel = 25_000
	}
	return t
}

// ClampThresholds keeps measured thresholds within sane bounds so that one
// noisy sample cannot disable a path entirely.
func ClampThresholds(t filterconv.Thresholds) filterconv.Thresholds {
	t.MinFilterForEffective = clampInt(t.MinFilterForEffective, 8, 4096)
	t.MinProductForEffective = clampInt64(t.MinProductForEffective, 1_000, 100_000_000)
	t.MinFilterForParallel = clampInt(t.MinFilterForParallel, 1, 4096)
	if t.MinProductForParallel < 1<<62 {
		t.MinProductForParallel = clampInt64(t.MinProductForParallel, 1_000, 100_000_000)
	}
	t.MinSplitSize = clampInt(t.MinSplitSize, 8, 1<<16)
	return t
}

func clampInt(v, lo, hi int) int {
	return int(clampInt64(int64(v), int64(lo), int64(hi)))
}

func clampInt64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

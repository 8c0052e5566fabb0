package calibration

import (
	"runtime"
	"slices"
	"testing"

	"github.com/agbru/kdeconv/internal/filterconv"
)

func TestCandidateGridsAreSorted(t *testing.T) {
	t.Parallel()
	grids := map[string][]int{
		"filter lengths":       GenerateFilterLengths(),
		"quick filter lengths": GenerateQuickFilterLengths(),
		"signal lengths":       GenerateParallelSignalLengths(),
		"split sizes":          GenerateSplitSizes(),
	}
	for name, g := range grids {
		if !slices.IsSorted(g) {
			t.Errorf("%s not ascending: %v", name, g)
		}
	}
	if runtime.NumCPU() == 1 && len(GenerateParallelSignalLengths()) != 0 {
		t.Error("single core must not probe parallelism")
	}
}

func TestEstimateThresholdsValid(t *testing.T) {
	t.Parallel()
	if err := EstimateThresholds().Validate(); err != nil {
		t.Errorf("estimated thresholds invalid: %v", err)
	}
}

func TestClampThresholds(t *testing.T) {
	t.Parallel()
	got := ClampThresholds(filterconv.Thresholds{
		MinFilterForEffective:  1,
		MinProductForEffective: 1 << 40,
		MinFilterForParallel:   0,
		MinProductForParallel:  5,
		MinSplitSize:           1,
	})
	want := filterconv.Thresholds{
		MinFilterForEffective:  8,
		MinProductForEffective: 100_000_000,
		MinFilterForParallel:   1,
		MinProductForParallel:  1_000,
		MinSplitSize:           8,
	}
	if got != want {
		t.Errorf("ClampThresholds() = %+v, want %+v", got, want)
	}

	disabled := filterconv.DefaultThresholds()
	disabled.MinProductForParallel = 1 << 62
	if ClampThresholds(disabled).MinProductForParallel != 1<<62 {
		t.Error("disabled parallelism must survive clamping")
	}
}

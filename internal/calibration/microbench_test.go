package calibration

import (
	"context"
	"testing"

	"github.com/agbru/kdeconv/internal/cyclic"
	"github.com/agbru/kdeconv/internal/filterconv"
)

func strategyRun(l, n int, s filterconv.Strategy, mean float64) Measurement {
	return Measurement{Probe: ProbeStrategy, FilterLen: l, SignalLen: n, Strategy: s, Mean: mean}
}

func parallelRun(n int, par bool, mean float64) Measurement {
	return Measurement{
		Probe:     ProbeParallel,
		FilterLen: MicroBenchParallelFilterLength,
		SignalLen: n,
		Strategy:  filterconv.StrategyDirect,
		Parallel:  par,
		Mean:      mean,
	}
}

func TestEffectiveCrossover(t *testing.T) {
	t.Parallel()
	d, e := filterconv.StrategyDirect, filterconv.StrategyEffective
	tests := []struct {
		name  string
		ms    []Measurement
		want  int
		found bool
	}{
		{
			name: "ClearCrossover",
			ms: []Measurement{
				strategyRun(32, 4096, d, 1), strategyRun(32, 4096, e, 2),
				strategyRun(100, 4096, d, 3), strategyRun(100, 4096, e, 2),
				strategyRun(256, 4096, d, 8), strategyRun(256, 4096, e, 2),
			},
			want: 100, found: true,
		},
		{
			name: "NonMonotoneUsesLargestRun",
			ms: []Measurement{
				strategyRun(32, 4096, d, 3), strategyRun(32, 4096, e, 2),
				strategyRun(100, 4096, d, 1), strategyRun(100, 4096, e, 2),
				strategyRun(256, 4096, d, 8), strategyRun(256, 4096, e, 2),
			},
			want: 256, found: true,
		},
		{
			name: "NeverFaster",
			ms: []Measurement{
				strategyRun(32, 4096, d, 1), strategyRun(32, 4096, e, 2),
			},
			found: false,
		},
		{
			name: "MissingPartner",
			ms:   []Measurement{strategyRun(32, 4096, d, 1)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, found := effectiveCrossover(tt.ms)
			if found != tt.found || (found && got != tt.want) {
				t.Errorf("effectiveCrossover() = %d, %v; want %d, %v", got, found, tt.want, tt.found)
			}
		})
	}
}

func TestParallelCrossover(t *testing.T) {
	t.Parallel()
	ms := []Measurement{
		parallelRun(512, false, 1), parallelRun(512, true, 2),
		parallelRun(2048, false, 4), parallelRun(2048, true, 3.8), // under 10% gain
		parallelRun(8192, false, 16), parallelRun(8192, true, 6),
	}
	got, ok := parallelCrossover(ms)
	if !ok || got != int64(MicroBenchParallelFilterLength)*8192 {
		t.Errorf("parallelCrossover() = %d, %v", got, ok)
	}
}

func TestAnalyze(t *testing.T) {
	t.Parallel()
	mb := &MicroBenchmark{SignalLength: 4096}

	empty := mb.analyze(nil)
	if empty.Confidence != 0 {
		t.Errorf("empty analysis confidence = %v, want 0", empty.Confidence)
	}

	d, e := filterconv.StrategyDirect, filterconv.StrategyEffective
	ms := []Measurement{
		strategyRun(64, 4096, d, 1), strategyRun(64, 4096, e, 0.5),
		parallelRun(8192, false, 16), parallelRun(8192, true, 6),
		{Probe: ProbeSplit, FilterLen: 32, SignalLen: 8192, Strategy: d, Parallel: true, MinSplit: 64, Mean: 5},
		{Probe: ProbeSplit, FilterLen: 32, SignalLen: 8192, Strategy: d, Parallel: true, MinSplit: 256, Mean: 4},
	}
	res := mb.analyze(ms)
	if res.Thresholds.MinFilterForEffective != 64 {
		t.Errorf("MinFilterForEffective = %d, want 64", res.Thresholds.MinFilterForEffective)
	}
	if res.Thresholds.MinProductForEffective != 64*4096 {
		t.Errorf("MinProductForEffective = %d", res.Thresholds.MinProductForEffective)
	}
	if res.Thresholds.MinSplitSize != 256 {
		t.Errorf("MinSplitSize = %d, want 256", res.Thresholds.MinSplitSize)
	}
	if res.Confidence < 0.9 {
		t.Errorf("confidence = %v, want at least 0.9", res.Confidence)
	}
	if err := res.Thresholds.Validate(); err != nil {
		t.Errorf("analysis produced invalid thresholds: %v", err)
	}
}

func TestMicroBenchmarkRun(t *testing.T) {
	t.Parallel()
	mb := &MicroBenchmark{
		Engine:                cyclic.FFTBased(),
		FilterLengths:         []int{8, 16},
		SignalLength:          64,
		ParallelSignalLengths: []int{64},
		SplitSizes:            []int{16, 32},
		Iterations:            2,
	}
	res, err := mb.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// 2 lengths x 2 strategies + 2 parallel modes + 2 split sizes.
	if len(res.Measurements) != 8 {
		t.Errorf("got %d measurements, want 8", len(res.Measurements))
	}
	for _, m := range res.Measurements {
		if m.Err != nil {
			t.Errorf("measurement %+v failed: %v", m, m.Err)
		}
	}
	if err := res.Thresholds.Validate(); err != nil {
		t.Errorf("invalid thresholds: %v", err)
	}
}

func TestMicroBenchmarkRunCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewMicroBenchmark(cyclic.FFTBased()).Run(ctx); err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestMicroBenchmarkWithoutEngine(t *testing.T) {
	t.Parallel()
	mb := &MicroBenchmark{ParallelSignalLengths: []int{32}, Iterations: 1}
	res, err := mb.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, m := range res.Measurements {
		if m.Strategy == filterconv.StrategyEffective {
			t.Error("effective path measured without an engine")
		}
	}
}

package calibration

import (
	"context"
	"math/rand/v2"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/agbru/kdeconv/internal/cyclic"
	"github.com/agbru/kdeconv/internal/filterconv"
)

// ─────────────────────────────────────────────────────────────────────────────
// Micro-benchmark Configuration
// ─────────────────────────────────────────────────────────────────────────────

const (
	// MicroBenchIterations is the number of timed samples per configuration.
	MicroBenchIterations = 5

	// MicroBenchTimeout bounds the quick suite run at startup.
	MicroBenchTimeout = 300 * time.Millisecond

	// MicroBenchSignalLength is the signal length used for the strategy
	// crossover search.
	MicroBenchSignalLength = 4096

	// MicroBenchParallelFilterLength is the filter length used for the
	// parallelism crossover search.
	MicroBenchParallelFilterLength = 32

	// noisyVariation is the coefficient of variation above which a sample set
	// lowers the confidence score.
	noisyVariation = 0.25
)

// ─────────────────────────────────────────────────────────────────────────────
// Micro-benchmark Types
// ─────────────────────────────────────────────────────────────────────────────

// MicroBenchmark times the convolution paths on synthetic inputs. Samples are
// taken one configuration at a time: running them concurrently would make
// every parallel measurement compete with its sequential baseline.
type MicroBenchmark struct {
	// Engine backs the transform-based path.
	Engine cyclic.Engine
	// FilterLengths are probed for the direct/effective crossover.
	FilterLengths []int
	// SignalLength is the signal length used for the crossover search.
	SignalLength int
	// ParallelSignalLengths are probed for the sequential/parallel crossover.
	ParallelSignalLengths []int
	// SplitSizes are the MinSplitSize candidates.
	SplitSizes []int
	// Iterations is the number of samples per configuration.
	Iterations int
	// Timeout bounds the whole run. Zero means no bound besides ctx.
	Timeout time.Duration
}

// Probe identifies the question a measurement answers.
type Probe int

const (
	// ProbeStrategy compares the direct and effective paths.
	ProbeStrategy Probe = iota
	// ProbeParallel compares the sequential and parallel direct paths.
	ProbeParallel
	// ProbeSplit compares MinSplitSize candidates.
	ProbeSplit
)

// Measurement is the timing of one configuration.
type Measurement struct {
	Probe     Probe
	FilterLen int
	SignalLen int
	Strategy  filterconv.Strategy
	Parallel  bool
	MinSplit  int
	// Mean and StdDev are in seconds.
	Mean   float64
	StdDev float64
	Err    error
}

// Variation returns the coefficient of variation of the samples.
func (m Measurement) Variation() float64 {
	if m.Mean <= 0 {
		return 0
	}
	return m.StdDev / m.Mean
}

// Results contains the thresholds derived from the measurements.
type Results struct {
	Thresholds filterconv.Thresholds
	// Confidence is a score from 0 to 1 indicating result reliability.
	Confidence   float64
	Measurements []Measurement
	Duration     time.Duration
}

// ─────────────────────────────────────────────────────────────────────────────
// Micro-benchmark Implementation
// ─────────────────────────────────────────────────────────────────────────────

// NewMicroBenchmark returns the quick startup suite for engine.
func NewMicroBenchmark(engine cyclic.Engine) *MicroBenchmark {
	return &MicroBenchmark{
		Engine:                engine,
		FilterLengths:         GenerateQuickFilterLengths(),
		SignalLength:          MicroBenchSignalLength,
		ParallelSignalLengths: GenerateParallelSignalLengths(),
		Iterations:            MicroBenchIterations,
		Timeout:               MicroBenchTimeout,
	}
}

// NewFullBenchmark returns the exhaustive suite used by the calibrate mode.
func NewFullBenchmark(engine cyclic.Engine) *MicroBenchmark {
	return &MicroBenchmark{
		Engine:                engine,
		FilterLengths:         GenerateFilterLengths(),
		SignalLength:          MicroBenchSignalLength,
		ParallelSignalLengths: GenerateParallelSignalLengths(),
		SplitSizes:            GenerateSplitSizes(),
		Iterations:            MicroBenchIterations,
	}
}

// Run performs the measurements and derives thresholds from them. Running
// out of time is not an error: the analysis uses whatever was measured and
// the confidence score reflects the gaps.
//
// Returns:
//   - Results: The estimated thresholds and the raw measurements.
//   - error: The context error if ctx was canceled by the caller.
func (mb *MicroBenchmark) Run(ctx context.Context) (Results, error) {
	start := time.Now()
	parent := ctx
	if mb.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, mb.Timeout)
		defer cancel()
	}

	measurements := mb.measureAll(ctx)
	if err := parent.Err(); err != nil {
		return Results{}, err
	}

	res := mb.analyze(measurements)
	res.Duration = time.Since(start)
	return res, nil
}

func (mb *MicroBenchmark) measureAll(ctx context.Context) []Measurement {
	rng := rand.New(rand.NewPCG(1, 2))
	var out []Measurement
	record := func(m Measurement, ok bool) bool {
		if ok {
			out = append(out, m)
		}
		return ctx.Err() == nil
	}

	if mb.Engine != nil {
		signal := syntheticSignal(rng, mb.SignalLength)
		for _, l := range mb.FilterLengths {
			filter := syntheticSignal(rng, l)
			for _, s := range []filterconv.Strategy{filterconv.StrategyDirect, filterconv.StrategyEffective} {
				if !record(mb.measure(ctx, ProbeStrategy, filter, signal, s, false, 0)) {
					return out
				}
			}
		}
	}

	filter := syntheticSignal(rng, MicroBenchParallelFilterLength)
	for _, n := range mb.ParallelSignalLengths {
		signal := syntheticSignal(rng, n)
		for _, par := range []bool{false, true} {
			if !record(mb.measure(ctx, ProbeParallel, filter, signal, filterconv.StrategyDirect, par, 0)) {
				return out
			}
		}
	}

	if len(mb.ParallelSignalLengths) > 0 {
		n := mb.ParallelSignalLengths[len(mb.ParallelSignalLengths)-1]
		signal := syntheticSignal(rng, n)
		for _, split := range mb.SplitSizes {
			if !record(mb.measure(ctx, ProbeSplit, filter, signal, filterconv.StrategyDirect, true, split)) {
				return out
			}
		}
	}
	return out
}

// measure times one configuration. The boolean is false when the context
// expired before a full sample set was taken.
func (mb *MicroBenchmark) measure(ctx context.Context, probe Probe, filter, signal []float64, strategy filterconv.Strategy, parallel bool, minSplit int) (Measurement, bool) {
	m := Measurement{
		Probe:     probe,
		FilterLen: len(filter),
		SignalLen: len(signal),
		Strategy:  strategy,
		Parallel:  parallel,
		MinSplit:  minSplit,
	}

	th := filterconv.DefaultThresholds()
	if minSplit > 0 {
		th.MinSplitSize = minSplit
	}
	conv, err := filterconv.New(filterconv.WithEngine(mb.Engine), filterconv.WithThresholds(th))
	if err != nil {
		m.Err = err
		return m, true
	}
	pa, err := conv.Curry(filter)
	if err != nil {
		m.Err = err
		return m, true
	}
	mode := filterconv.ParallelModeOf(parallel)

	// Warm up caches and the engine's plan.
	if _, err := pa.ComputeUsing(signal, strategy, mode); err != nil {
		m.Err = err
		return m, true
	}

	iterations := max(mb.Iterations, 1)
	samples := make([]float64, 0, iterations)
	for range iterations {
		if ctx.Err() != nil {
			return m, false
		}
		t0 := time.Now()
		if _, err := pa.ComputeUsing(signal, strategy, mode); err != nil {
			m.Err = err
			return m, true
		}
		samples = append(samples, time.Since(t0).Seconds())
	}
	m.Mean, m.StdDev = stat.MeanStdDev(samples, nil)
	return m, true
}

func syntheticSignal(rng *rand.Rand, n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = rng.Float64()
	}
	return s
}

// ─────────────────────────────────────────────────────────────────────────────
// Analysis
// ─────────────────────────────────────────────────────────────────────────────

// analyze derives thresholds from the measurements. Every crossover found
// raises the confidence; noisy sample sets lower it.
func (mb *MicroBenchmark) analyze(ms []Measurement) Results {
	res := Results{
		Thresholds:   EstimateThresholds(),
		Confidence:   0.3,
		Measurements: ms,
	}
	if len(ms) == 0 {
		res.Confidence = 0
		return res
	}

	if l, ok := effectiveCrossover(ms); ok {
		res.Thresholds.MinFilterForEffective = l
		res.Thresholds.MinProductForEffective = int64(l) * int64(mb.SignalLength)
		res.Confidence += 0.3
	}
	if p, ok := parallelCrossover(ms); ok {
		res.Thresholds.MinFilterForParallel = min(res.Thresholds.MinFilterForParallel, MicroBenchParallelFilterLength)
		res.Thresholds.MinProductForParallel = p
		res.Confidence += 0.3
	}
	if split, ok := bestSplit(ms); ok {
		res.Thresholds.MinSplitSize = split
		res.Confidence += 0.1
	}

	variations := make([]float64, 0, len(ms))
	for _, m := range ms {
		if m.Err == nil {
			variations = append(variations, m.Variation())
		}
	}
	if len(variations) > 0 && stat.Mean(variations, nil) > noisyVariation {
		res.Confidence -= 0.2
	}

	res.Confidence = min(max(res.Confidence, 0), 1)
	res.Thresholds = ClampThresholds(res.Thresholds)
	return res
}

// effectiveCrossover returns the smallest probed filter length from which the
// effective path is faster than the direct one at every larger length.
func effectiveCrossover(ms []Measurement) (int, bool) {
	type pair struct{ direct, effective float64 }
	byLen := map[int]*pair{}
	var lengths []int
	for _, m := range ms {
		if m.Err != nil || m.Probe != ProbeStrategy {
			continue
		}
		p, ok := byLen[m.FilterLen]
		if !ok {
			p = &pair{}
			byLen[m.FilterLen] = p
			lengths = append(lengths, m.FilterLen)
		}
		if m.Strategy == filterconv.StrategyDirect {
			p.direct = m.Mean
		} else {
			p.effective = m.Mean
		}
	}

	slices.Sort(lengths)
	crossover, found := 0, false
	for i := len(lengths) - 1; i >= 0; i-- {
		p := byLen[lengths[i]]
		if p.direct == 0 || p.effective == 0 || p.effective >= p.direct {
			break
		}
		crossover, found = lengths[i], true
	}
	return crossover, found
}

// parallelCrossover returns the smallest probed L·n from which the parallel
// direct path is at least 10% faster than the sequential one at every larger
// size.
func parallelCrossover(ms []Measurement) (int64, bool) {
	type pair struct{ seq, par float64 }
	bySize := map[int64]*pair{}
	var sizes []int64
	for _, m := range ms {
		if m.Err != nil || m.Probe != ProbeParallel {
			continue
		}
		key := int64(m.FilterLen) * int64(m.SignalLen)
		p, ok := bySize[key]
		if !ok {
			p = &pair{}
			bySize[key] = p
			sizes = append(sizes, key)
		}
		if m.Parallel {
			p.par = m.Mean
		} else {
			p.seq = m.Mean
		}
	}

	slices.Sort(sizes)
	var crossover int64
	found := false
	for i := len(sizes) - 1; i >= 0; i-- {
		p := bySize[sizes[i]]
		if p.seq == 0 || p.par == 0 || p.par >= p.seq*0.9 {
			break
		}
		crossover, found = sizes[i], true
	}
	return crossover, found
}

func bestSplit(ms []Measurement) (int, bool) {
	best, bestMean := 0, 0.0
	for _, m := range ms {
		if m.Err != nil || m.Probe != ProbeSplit {
			continue
		}
		if best == 0 || m.Mean < bestMean {
			best, bestMean = m.MinSplit, m.Mean
		}
	}
	return best, best != 0
}

// QuickCalibrate runs the startup suite against engine.
func QuickCalibrate(ctx context.Context, engine cyclic.Engine) (Results, error) {
	return NewMicroBenchmark(engine).Run(ctx)
}

package orchestration

import (
	"context"

	"github.com/agbru/kdeconv/internal/filterconv"
)

// Runner is one way of convolving a signal with a fixed filter.
type Runner interface {
	// Name returns a short identifier shown in reports.
	Name() string
	// Run convolves signal. It returns early if ctx is already done.
	Run(ctx context.Context, signal []float64) ([]float64, error)
}

// Convolver is the curried filter convolution the variants drive.
// Both *filterconv.PartialApplied and *filterconv.NonNegativePartial
// satisfy it.
type Convolver interface {
	ComputeUsing(signal []float64, strategy filterconv.Strategy, mode filterconv.ParallelMode) ([]float64, error)
}

// Variant runs a Convolver with a forced strategy and parallel mode.
type Variant struct {
	conv     Convolver
	strategy filterconv.Strategy
	parallel filterconv.ParallelMode
}

// NewVariant creates a Variant.
func NewVariant(conv Convolver, strategy filterconv.Strategy, parallel filterconv.ParallelMode) Variant {
	return Variant{conv: conv, strategy: strategy, parallel: parallel}
}

// Name returns "<strategy>/<parallelism>", e.g. "direct/sequential".
func (v Variant) Name() string {
	mode := "auto"
	switch v.parallel {
	case filterconv.ParallelOn:
		mode = "parallel"
	case filterconv.ParallelOff:
		mode = "sequential"
	}
	return v.strategy.String() + "/" + mode
}

// Run implements Runner. The convolution cannot be interrupted once
// started, so it runs on its own goroutine and Run returns ctx.Err() as soon
// as ctx is done. An abandoned computation finishes in the background and
// its result is discarded.
func (v Variant) Run(ctx context.Context, signal []float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type outcome struct {
		values []float64
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		values, err := v.conv.ComputeUsing(signal, v.strategy, v.parallel)
		done <- outcome{values, err}
	}()

	select {
	case o := <-done:
		return o.values, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// DefaultVariants returns the direct path, sequential and parallel, plus
// the segmented path when an engine is available.
func DefaultVariants(conv Convolver, withEngine bool) []Runner {
	runners := []Runner{
		NewVariant(conv, filterconv.StrategyDirect, filterconv.ParallelOff),
		NewVariant(conv, filterconv.StrategyDirect, filterconv.ParallelOn),
	}
	if withEngine {
		runners = append(runners,
			NewVariant(conv, filterconv.StrategyEffective, filterconv.ParallelOff),
			NewVariant(conv, filterconv.StrategyEffective, filterconv.ParallelOn),
		)
	}
	return runners
}

// Names returns the runner names in order.
func Names(runners []Runner) []string {
	names := make([]string, len(runners))
	for i, r := range runners {
		names[i] = r.Name()
	}
	return names
}

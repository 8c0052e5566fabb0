// Package filterconv computes zero-padded convolutions of a signal with a
// symmetric filter given by its one-sided taps.
//
// Two algorithms are available. The segmented path splits the signal into
// overlap-save blocks and runs each through a transform-based cyclic
// convolution engine. The direct path sums filter·signal products, fanning
// out over index ranges whose partial results are merged pairwise. The
// Convolution facade picks between them from the problem size, following
// Thresholds, and reports every run to an Observer.
package filterconv

import (
	"errors"
	"sync"
	"time"

	"github.com/agbru/kdeconv/internal/cyclic"
	apperrors "github.com/agbru/kdeconv/internal/errors"
)

// Convolution is the dispatch facade. It is immutable after construction and
// safe for concurrent use.
type Convolution struct {
	engine     cyclic.Engine
	thresholds Thresholds
	observer   Observer
}

// Option configures a Convolution.
type Option func(*Convolution)

// WithEngine sets the cyclic convolution engine used by the segmented path.
// A nil engine disables that path.
func WithEngine(e cyclic.Engine) Option {
	return func(c *Convolution) {
		c.engine = e
	}
}

// WithThresholds replaces the default dispatch cut-offs.
func WithThresholds(t Thresholds) Option {
	return func(c *Convolution) {
		c.thresholds = t
	}
}

// WithObserver sets the observer notified after each convolution.
func WithObserver(o Observer) Option {
	return func(c *Convolution) {
		if o == nil {
			o = NoOpObserver{}
		}
		c.observer = o
	}
}

// New creates a Convolution backed by the FFT engine with default thresholds.
//
// Parameters:
//   - opts: Functional options overriding the defaults.
//
// Returns:
//   - *Convolution: The facade.
//   - error: An invalid-argument error if the thresholds do not validate.
func New(opts ...Option) (*Convolution, error) {
	c := &Convolution{
		engine:     cyclic.FFTBased(),
		thresholds: DefaultThresholds(),
		observer:   NoOpObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.thresholds.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Thresholds returns the dispatch cut-offs in use.
func (c *Convolution) Thresholds() Thresholds { return c.thresholds }

// HasEngine reports whether the segmented path is available.
func (c *Convolution) HasEngine() bool { return c.engine != nil }

// Compute is the uncurried form of Curry(filter).Compute(signal).
func (c *Convolution) Compute(filter, signal []float64) ([]float64, error) {
	p, err := c.Curry(filter)
	if err != nil {
		return nil, err
	}
	return p.Compute(signal)
}

// Curry fixes the filter. The filter is copied, so the caller may reuse its
// slice afterwards.
func (c *Convolution) Curry(filter []float64) (*PartialApplied, error) {
	if filter == nil {
		return nil, apperrors.NewMissingArgumentError("filter")
	}
	if len(filter) == 0 {
		return nil, apperrors.NewValidationError("filter", "must not be empty", 0)
	}
	f := append([]float64(nil), filter...)
	p := &PartialApplied{conv: c, filter: f}
	p.plan = sync.OnceValues(func() (*segmentPlan, error) {
		if c.engine == nil {
			return nil, apperrors.NewValidationError("strategy", "no cyclic convolution engine configured", nil)
		}
		return newSegmentPlan(c.engine, f)
	})
	return p, nil
}

// PartialApplied is a Convolution with its filter fixed. The overlap-save
// plan is built on first use of the segmented path and shared afterwards.
type PartialApplied struct {
	conv   *Convolution
	filter []float64
	plan   func() (*segmentPlan, error)
}

// FilterLen returns the number of one-sided filter taps.
func (p *PartialApplied) FilterLen() int { return len(p.filter) }

// Compute convolves signal, choosing both the strategy and the parallelism
// from the problem size. The output has the same length as signal.
func (p *PartialApplied) Compute(signal []float64) ([]float64, error) {
	return p.ComputeUsing(signal, StrategyAuto, ParallelAuto)
}

// ComputeWith convolves signal with an explicit parallelism choice.
func (p *PartialApplied) ComputeWith(signal []float64, parallel bool) ([]float64, error) {
	return p.ComputeUsing(signal, StrategyAuto, ParallelModeOf(parallel))
}

// ComputeUsing convolves signal with the given strategy and parallelism.
// Forcing StrategyEffective fails with an invalid-argument error when no
// engine is configured or the engine cannot hold the filter.
func (p *PartialApplied) ComputeUsing(signal []float64, strategy Strategy, mode ParallelMode) ([]float64, error) {
	if signal == nil {
		return nil, apperrors.NewMissingArgumentError("signal")
	}
	if len(signal) == 0 {
		return nil, apperrors.NewValidationError("signal", "must not be empty", 0)
	}

	l, n := len(p.filter), len(signal)
	th := p.conv.thresholds

	var plan *segmentPlan
	switch strategy {
	case StrategyEffective:
		var err error
		if plan, err = p.plan(); err != nil {
			return nil, err
		}
	case StrategyDirect:
	case StrategyAuto:
		if p.conv.engine != nil && th.prefersEffective(l, n) {
			sp, err := p.plan()
			switch {
			case err == nil:
				plan = sp
			case !errors.Is(err, apperrors.ErrInvalidArgument):
				return nil, err
			}
			// A filter too large for the engine falls back to the direct path.
		}
	default:
		return nil, apperrors.NewValidationError("strategy", "unknown strategy", int(strategy))
	}

	start := time.Now()
	report := Report{FilterLen: l, SignalLen: n}
	var out []float64
	if plan != nil {
		blocks := plan.blocks(n)
		fanOut := resolveParallel(mode, th.segmentedParallel(l, n, blocks))
		var err error
		if out, err = plan.convolve(signal, fanOut); err != nil {
			return nil, apperrors.CalculationError{Cause: err}
		}
		report.Strategy, report.Parallel, report.Blocks = StrategyEffective, fanOut, blocks
	} else {
		fanOut := resolveParallel(mode, th.directParallel(l, n))
		out = convolveDirect(p.filter, signal, fanOut, th.MinSplitSize)
		report.Strategy, report.Parallel = StrategyDirect, fanOut
	}
	report.Duration = time.Since(start)
	p.conv.observer.Observe(report)
	return out, nil
}

func resolveParallel(mode ParallelMode, auto bool) bool {
	switch mode {
	case ParallelOn:
		return true
	case ParallelOff:
		return false
	default:
		return auto
	}
}

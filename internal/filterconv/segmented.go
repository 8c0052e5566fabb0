package filterconv

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/kdeconv/internal/cyclic"
)

// segmentPlan is the overlap-save layout for one filter on one engine.
//
// The symmetric filter is laid out cyclically in a buffer of convSize
// samples. Each block of blockLen signal samples is extended by extend
// samples on both sides, convolved cyclically, and the aliased edges are
// dropped.
type segmentPlan struct {
	op       cyclic.Operator
	convSize int
	extend   int
	blockLen int
}

// newSegmentPlan sizes the cyclic buffer to the acceptable size of 6·L so
// that blockLen = convSize - 2(L-1) is always positive.
func newSegmentPlan(engine cyclic.Engine, filter []float64) (*segmentPlan, error) {
	l := len(filter)
	convSize, err := engine.AcceptableSize(6 * l)
	if err != nil {
		return nil, err
	}
	op, err := engine.Curry(paddedFilter(filter, convSize))
	if err != nil {
		return nil, err
	}
	extend := l - 1
	return &segmentPlan{
		op:       op,
		convSize: convSize,
		extend:   extend,
		blockLen: convSize - 2*extend,
	}, nil
}

// paddedFilter mirrors the one-sided filter into a cyclic buffer of size:
// out[i] = out[size-i] = filter[i].
func paddedFilter(filter []float64, size int) []float64 {
	out := make([]float64, size)
	copy(out, filter)
	for i := 1; i < len(filter); i++ {
		out[size-i] = filter[i]
	}
	return out
}

// blocks returns the number of segments needed for a signal of length n.
func (p *segmentPlan) blocks(n int) int {
	return (n + p.blockLen - 1) / p.blockLen
}

// window copies signal[from:to) into a fresh buffer, zero-filling whatever
// lies outside the signal.
func window(signal []float64, from, to int) []float64 {
	out := make([]float64, to-from)
	lo := max(from, 0)
	hi := min(len(signal), to)
	if lo < hi {
		copy(out[lo-from:], signal[lo:hi])
	}
	return out
}

// convolveBlock processes the block starting at start and writes its valid
// samples into out.
func (p *segmentPlan) convolveBlock(signal, out []float64, start int) error {
	valid := min(len(signal)-start, p.blockLen)
	sub := window(signal, start-p.extend, start+p.blockLen+p.extend)
	conv, err := p.op.Apply(sub)
	if err != nil {
		return err
	}
	copy(out[start:start+valid], conv[p.extend:p.extend+valid])
	return nil
}

// convolve runs every block, on an errgroup bounded by GOMAXPROCS when
// fanOut is set. Each block writes a disjoint window of the output.
func (p *segmentPlan) convolve(signal []float64, fanOut bool) ([]float64, error) {
	out := make([]float64, len(signal))
	if !fanOut {
		for start := 0; start < len(signal); start += p.blockLen {
			if err := p.convolveBlock(signal, out, start); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for start := 0; start < len(signal); start += p.blockLen {
		g.Go(func() error {
			return p.convolveBlock(signal, out, start)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

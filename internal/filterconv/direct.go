package filterconv

import (
	"gonum.org/v1/gonum/floats"

	"github.com/agbru/kdeconv/internal/parallel"
)

// sparseBlock is a partial output that is zero outside
// [start, start+len(entry)). Blocks form a commutative monoid under
// offset-aligned addition, with identityBlock as the neutral element.
type sparseBlock struct {
	start    int
	entry    []float64
	identity bool
}

var identityBlock = sparseBlock{identity: true}

// addedTo returns the element-wise sum of b and other. Neither operand is
// modified; the result owns a fresh entry slice unless one side is the
// identity.
func (b sparseBlock) addedTo(other sparseBlock) sparseBlock {
	if b.identity {
		return other
	}
	if other.identity {
		return b
	}

	lo, hi := b, other
	if lo.start > hi.start {
		lo, hi = hi, lo
	}
	offset := hi.start - lo.start
	merged := make([]float64, max(len(lo.entry), len(hi.entry)+offset))
	copy(merged, lo.entry)
	floats.Add(merged[offset:offset+len(hi.entry)], hi.entry)
	return sparseBlock{start: lo.start, entry: merged}
}

// dense expands the block into a slice starting at index 0. The identity
// expands to nil.
func (b sparseBlock) dense() []float64 {
	if b.identity {
		return nil
	}
	if b.start == 0 {
		return b.entry
	}
	out := make([]float64, b.start+len(b.entry))
	copy(out[b.start:], b.entry)
	return out
}

// directLeaf accumulates the contributions of signal[start:end] to the
// output. The touched span is [start-L+1, end+L-1) clipped to the signal.
func directLeaf(filter, signal []float64, start, end int) sparseBlock {
	l, n := len(filter), len(signal)
	offset := max(0, start-l+1)
	out := make([]float64, min(n, end+l-1)-offset)

	for j := start; j < end; j++ {
		v := signal[j]
		out[j-offset] += v * filter[0]
		for i, up := 1, min(l, n-j); i < up; i++ {
			out[j+i-offset] += v * filter[i]
		}
		for i, down := 1, min(l, j+1); i < down; i++ {
			out[j-i-offset] += v * filter[i]
		}
	}
	return sparseBlock{start: offset, entry: out}
}

// convolveDirect computes the zero-padded convolution of signal with the
// symmetric filter by direct summation. In parallel mode the index range is
// split down to minSplit and the partial blocks are summed pairwise.
func convolveDirect(filter, signal []float64, fanOut bool, minSplit int) []float64 {
	block, _ := parallel.SplitReduce(len(signal), minSplit, fanOut,
		func(start, end int) (sparseBlock, error) {
			return directLeaf(filter, signal, start, end), nil
		},
		sparseBlock.addedTo,
	)
	return block.dense()
}

// leafCount returns the number of leaves produced by splitting n with minSplit.
func leafCount(n, minSplit int) int {
	minSplit = max(minSplit, 2)
	if n < minSplit {
		return 1
	}
	half := n / 2
	return leafCount(half, minSplit) + leafCount(n-half, minSplit)
}

package parallel

import (
	"runtime"
	"sync"
)

// DefaultMinSplit is the smallest range length that is still halved.
const DefaultMinSplit = 128

// semaphore bounds the number of extra goroutines spawned by SplitReduce
// across the whole process. It is sized to GOMAXPROCS on first use.
var semaphore = sync.OnceValue(func() chan struct{} {
	return make(chan struct{}, runtime.GOMAXPROCS(0))
})

// SplitReduce evaluates leaf over [0, n) and folds the partial results with
// combine.
//
// Sequentially, leaf runs once over the whole range. In parallel mode the
// range is halved recursively while its length is at least minSplit; at each
// split the lower half runs on a new goroutine if a semaphore token is free
// and inline otherwise. Results are combined in index order, so the output is
// deterministic up to floating-point reassociation.
//
// Parameters:
//   - n: The length of the index range.
//   - minSplit: The smallest range length that is split (values < 1 act as 1).
//   - parallel: Whether splitting is enabled.
//   - leaf: The computation over one half-open range [start, end).
//   - combine: The associative merge; its left argument covers lower indices.
//
// Returns:
//   - T: The combined result.
//   - error: The first error returned by any leaf.
func SplitReduce[T any](n, minSplit int, parallel bool, leaf func(start, end int) (T, error), combine func(left, right T) T) (T, error) {
	if !parallel {
		return leaf(0, n)
	}
	if minSplit < 2 {
		minSplit = 2
	}
	var ec ErrorCollector
	result := splitRecursive(0, n, minSplit, leaf, combine, &ec)
	if err := ec.Err(); err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

func splitRecursive[T any](start, end, minSplit int, leaf func(int, int) (T, error), combine func(T, T) T, ec *ErrorCollector) T {
	if end-start < minSplit {
		r, err := leaf(start, end)
		ec.SetError(err)
		return r
	}
	mid := start + (end-start)/2

	select {
	case semaphore() <- struct{}{}:
		var left T
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-semaphore() }()
			left = splitRecursive(start, mid, minSplit, leaf, combine, ec)
		}()
		right := splitRecursive(mid, end, minSplit, leaf, combine, ec)
		wg.Wait()
		return combine(left, right)
	default:
		left := splitRecursive(start, mid, minSplit, leaf, combine, ec)
		right := splitRecursive(mid, end, minSplit, leaf, combine, ec)
		return combine(left, right)
	}
}

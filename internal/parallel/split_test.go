package parallel

import (
	"errors"
	"slices"
	"sync"
	"testing"
)

type span struct{ start, end int }

func collectSpans(t *testing.T, n, minSplit int, parallel bool) []span {
	t.Helper()
	got, err := SplitReduce(n, minSplit, parallel,
		func(start, end int) ([]span, error) {
			return []span{{start, end}}, nil
		},
		func(left, right []span) []span {
			return append(append([]span(nil), left...), right...)
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	return got
}

func TestSplitReduce_SequentialIsSingleLeaf(t *testing.T) {
	t.Parallel()
	got := collectSpans(t, 1000, 128, false)
	if !slices.Equal(got, []span{{0, 1000}}) {
		t.Errorf("sequential spans = %v, want one span", got)
	}
}

func TestSplitReduce_ParallelCoversRangeInOrder(t *testing.T) {
	t.Parallel()
	tests := []struct {
		n, minSplit int
	}{
		{1, 128},
		{127, 128},
		{128, 128},
		{1000, 128},
		{4097, 128},
		{50, 1},
	}
	for _, tt := range tests {
		got := collectSpans(t, tt.n, tt.minSplit, true)
		next := 0
		for _, s := range got {
			if s.start != next || s.end <= s.start {
				t.Fatalf("n=%d: spans %v are not contiguous", tt.n, got)
			}
			if s.end-s.start >= max(tt.minSplit, 2) {
				t.Fatalf("n=%d: leaf %v not split below %d", tt.n, s, tt.minSplit)
			}
			next = s.end
		}
		if next != tt.n {
			t.Fatalf("n=%d: spans end at %d", tt.n, next)
		}
	}
}

func TestSplitReduce_Sum(t *testing.T) {
	t.Parallel()
	const n = 10000
	sum, err := SplitReduce(n, 64, true,
		func(start, end int) (int, error) {
			s := 0
			for i := start; i < end; i++ {
				s += i
			}
			return s, nil
		},
		func(a, b int) int { return a + b },
	)
	if err != nil {
		t.Fatal(err)
	}
	if want := n * (n - 1) / 2; sum != want {
		t.Errorf("sum = %d, want %d", sum, want)
	}
}

func TestSplitReduce_ReportsLeafError(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	_, err := SplitReduce(2048, 128, true,
		func(start, end int) (int, error) {
			if start <= 1000 && 1000 < end {
				return 0, boom
			}
			return 1, nil
		},
		func(a, b int) int { return a + b },
	)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

func TestSplitReduce_ConcurrentCallers(t *testing.T) {
	t.Parallel()
	var wg sync.WaitGroup
	for c := 0; c < 8; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := SplitReduce(5000, 32, true,
				func(start, end int) (int, error) { return end - start, nil },
				func(a, b int) int { return a + b },
			)
			if err != nil || got != 5000 {
				t.Errorf("got %d, %v; want 5000", got, err)
			}
		}()
	}
	wg.Wait()
}

package testutil

import (
	"strings"
	"testing"
)

func TestNaiveCyclic(t *testing.T) {
	t.Parallel()
	got := NaiveCyclic([]float64{1, 2, 3, -1, -2}, []float64{3, 2, 1, -1, 4})
	RequireSliceNearlyEqual(t, got, []float64{3, 19, 12, -4, -3}, 0)
}

func TestNaiveFilter(t *testing.T) {
	t.Parallel()
	got := NaiveFilter([]float64{1, 0.5, 0.25, 0.125}, []float64{1, 2, 3, 4, 5})
	RequireSliceNearlyEqual(t, got, []float64{3.25, 5.625, 7.5, 8.625, 8}, 0)
}

func TestMaxAbsDiff(t *testing.T) {
	t.Parallel()
	d, err := MaxAbsDiff([]float64{1, 2, 3}, []float64{1, 2.5, 2})
	if err != nil || d != 1 {
		t.Fatalf("MaxAbsDiff = %v, %v; want 1, nil", d, err)
	}
	if _, err := MaxAbsDiff([]float64{1}, nil); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestRandomIntSignalRange(t *testing.T) {
	t.Parallel()
	s := RandomIntSignal(NewRand(7), 500, -5, 5)
	for i, v := range s {
		if v < -5 || v >= 5 || v != float64(int(v)) {
			t.Fatalf("sample %d = %v outside [-5, 5) integers", i, v)
		}
	}
}

func TestStripAnsiCodes(t *testing.T) {
	t.Parallel()
	in := "\x1b[32mok\x1b[0m done"
	if got := StripAnsiCodes(in); got != "ok done" || strings.Contains(got, "\x1b") {
		t.Errorf("StripAnsiCodes(%q) = %q", in, got)
	}
}

package filterconv

import (
	"fmt"
	"testing"

	"github.com/agbru/kdeconv/internal/testutil"
)

func TestSparseBlock_Identity(t *testing.T) {
	t.Parallel()
	b := sparseBlock{start: 3, entry: []float64{1, 2}}
	if got := identityBlock.addedTo(b); got.start != 3 || len(got.entry) != 2 || got.identity {
		t.Errorf("identity + b = %+v", got)
	}
	if got := b.addedTo(identityBlock); got.start != 3 || len(got.entry) != 2 {
		t.Errorf("b + identity = %+v", got)
	}
	if got := identityBlock.addedTo(identityBlock); !got.identity || got.dense() != nil {
		t.Errorf("identity + identity = %+v", got)
	}
}

func TestSparseBlock_AddedTo(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		a, b sparseBlock
		want []float64
	}{
		{
			name: "overlapping",
			a:    sparseBlock{start: 0, entry: []float64{1, 1, 1}},
			b:    sparseBlock{start: 2, entry: []float64{10, 10}},
			want: []float64{1, 1, 11, 10},
		},
		{
			name: "contained",
			a:    sparseBlock{start: 1, entry: []float64{1, 2, 3, 4}},
			b:    sparseBlock{start: 2, entry: []float64{100}},
			want: []float64{0, 1, 102, 3, 4},
		},
		{
			name: "disjoint with gap",
			a:    sparseBlock{start: 5, entry: []float64{7}},
			b:    sparseBlock{start: 1, entry: []float64{2}},
			want: []float64{0, 2, 0, 0, 0, 7},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			aCopy := append([]float64(nil), tt.a.entry...)
			bCopy := append([]float64(nil), tt.b.entry...)

			ab := tt.a.addedTo(tt.b).dense()
			ba := tt.b.addedTo(tt.a).dense()
			testutil.RequireSliceNearlyEqual(t, ab, tt.want, 0)
			testutil.RequireSliceNearlyEqual(t, ba, tt.want, 0)

			testutil.RequireSliceNearlyEqual(t, tt.a.entry, aCopy, 0)
			testutil.RequireSliceNearlyEqual(t, tt.b.entry, bCopy, 0)
		})
	}
}

func TestSparseBlock_Associative(t *testing.T) {
	t.Parallel()
	a := sparseBlock{start: 0, entry: []float64{1, 2, 3}}
	b := sparseBlock{start: 2, entry: []float64{4, 5, 6}}
	c := sparseBlock{start: 1, entry: []float64{7}}
	left := a.addedTo(b).addedTo(c).dense()
	right := a.addedTo(b.addedTo(c)).dense()
	testutil.RequireSliceNearlyEqual(t, left, right, 0)
	testutil.RequireSliceNearlyEqual(t, left, []float64{1, 9, 7, 5, 6}, 0)
}

func TestDirectLeafSpan(t *testing.T) {
	t.Parallel()
	filter := []float64{1, 0.5, 0.25}
	signal := make([]float64, 20)
	tests := []struct {
		start, end       int
		wantOff, wantLen int
	}{
		{0, 5, 0, 7},
		{5, 10, 3, 9},
		{15, 20, 13, 7},
		{0, 20, 0, 20},
	}
	for _, tt := range tests {
		b := directLeaf(filter, signal, tt.start, tt.end)
		if b.start != tt.wantOff || len(b.entry) != tt.wantLen {
			t.Errorf("leaf [%d,%d) = start %d len %d, want start %d len %d",
				tt.start, tt.end, b.start, len(b.entry), tt.wantOff, tt.wantLen)
		}
	}
}

func TestConvolveDirect_Concrete(t *testing.T) {
	t.Parallel()
	filter := []float64{1, 0.5, 0.25, 0.125}
	signal := []float64{1, 2, 3, 4, 5}
	want := []float64{3.25, 5.625, 7.5, 8.625, 8}
	for _, fanOut := range []bool{false, true} {
		got := convolveDirect(filter, signal, fanOut, 2)
		testutil.RequireSliceNearlyEqual(t, got, want, 0)
	}
}

func TestConvolveDirect_MatchesNaive(t *testing.T) {
	t.Parallel()
	rng := testutil.NewRand(11)
	for _, l := range []int{1, 2, 5, 7, 33} {
		filter := testutil.RandomSignal(rng, l)
		for _, n := range []int{1, 2, 3, 31, 128, 129, 1000} {
			signal := testutil.RandomIntSignal(rng, n, -5, 5)
			want := testutil.NaiveFilter(filter, signal)
			for _, minSplit := range []int{1, 16, 128} {
				name := fmt.Sprintf("L=%d/n=%d/split=%d", l, n, minSplit)
				seq := convolveDirect(filter, signal, false, minSplit)
				par := convolveDirect(filter, signal, true, minSplit)
				if d, _ := testutil.MaxAbsDiff(seq, want); d > 1e-12 {
					t.Fatalf("%s: sequential differs from reference by %g", name, d)
				}
				if d, _ := testutil.MaxAbsDiff(par, want); d > 1e-12 {
					t.Fatalf("%s: parallel differs from reference by %g", name, d)
				}
			}
		}
	}
}

func TestLeafCount(t *testing.T) {
	t.Parallel()
	tests := []struct{ n, minSplit, want int }{
		{100, 128, 1},
		{128, 128, 2},
		{1000, 128, 8},
		{7, 1, 7},
	}
	for _, tt := range tests {
		if got := leafCount(tt.n, tt.minSplit); got != tt.want {
			t.Errorf("leafCount(%d, %d) = %d, want %d", tt.n, tt.minSplit, got, tt.want)
		}
	}
}

package kernel

import (
	"errors"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	apperrors "github.com/agbru/kdeconv/internal/errors"
)

func TestGaussianRejectsInvalidScale(t *testing.T) {
	t.Parallel()
	for _, s := range []float64{math.NaN(), -1, 0, 0.0099, math.Inf(-1)} {
		if _, err := Gaussian(s); !errors.Is(err, apperrors.ErrInvalidArgument) {
			t.Errorf("Gaussian(%v) error = %v, want invalid argument", s, err)
		}
	}
}

func TestGaussianSize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		scale float64
		want  int
	}{
		{0.01, 401},
		{0.25, 17},
		{1, 5},
		{3, 2},
		{4.5, 1},
		{math.Inf(1), 1},
	}
	for _, tt := range tests {
		f, err := Gaussian(tt.scale)
		if err != nil {
			t.Fatalf("Gaussian(%v): %v", tt.scale, err)
		}
		if len(f) != tt.want {
			t.Errorf("len(Gaussian(%v)) = %d, want %d", tt.scale, len(f), tt.want)
		}
	}
}

func TestGaussianSingleTapIsOne(t *testing.T) {
	t.Parallel()
	f, err := Gaussian(math.Inf(1))
	if err != nil {
		t.Fatal(err)
	}
	if f[0] != 1 {
		t.Errorf("Gaussian(+Inf) = %v, want [1]", f)
	}
}

// TestGaussianNormalised_PropertyBased verifies the two-sided mass is one
// and the taps decrease monotonically.
func TestGaussianNormalised_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("two-sided mass is one and taps decrease", prop.ForAll(
		func(scale float64) bool {
			f, err := Gaussian(scale)
			if err != nil {
				return false
			}
			mass := f[0]
			for i := 1; i < len(f); i++ {
				if f[i] > f[i-1] || f[i] <= 0 {
					return false
				}
				mass += 2 * f[i]
			}
			return math.Abs(mass-1) < 1e-12
		},
		gen.Float64Range(MinResolutionScale, 10),
	))

	properties.TestingRun(t)
}

func TestCorrectInfinite(t *testing.T) {
	t.Parallel()
	tests := []struct{ in, want float64 }{
		{math.Inf(1), math.MaxFloat64},
		{math.Inf(-1), -math.MaxFloat64},
		{1.5, 1.5},
		{0, 0},
	}
	for _, tt := range tests {
		if got := CorrectInfinite(tt.in); got != tt.want {
			t.Errorf("CorrectInfinite(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if !math.IsNaN(CorrectInfinite(math.NaN())) {
		t.Error("CorrectInfinite(NaN) must stay NaN")
	}
}

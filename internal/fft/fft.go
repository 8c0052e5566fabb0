// Package fft implements the power-of-two discrete Fourier transform used by
// the cyclic convolution engine.
//
// The transform is an iterative radix-2 Cooley-Tukey FFT operating on split
// real/imaginary slices. Forward uses the kernel exp(-2πij/N), inverse uses
// exp(+2πij/N) and is NOT normalised: Inverse(Forward(x)) == N·x.
package fft

import (
	"math"

	apperrors "github.com/agbru/kdeconv/internal/errors"
)

const (
	// DefaultMaxLog2 is the log2 of the largest size accepted by New.
	DefaultMaxLog2 = 28
	// MinMaxLog2 and MaxMaxLog2 bound the limits accepted by NewWithMaxLog2.
	MinMaxLog2 = 25
	MaxMaxLog2 = 30
)

// Transform is a discrete Fourier transform restricted to power-of-two sizes.
// Implementations never mutate their inputs and return freshly allocated
// outputs.
type Transform interface {
	// Forward computes X[k] = Σ x[j]·exp(-2πi jk/N).
	Forward(re, im []float64) ([]float64, []float64, error)
	// Inverse computes x[j] = Σ X[k]·exp(+2πi jk/N), without the 1/N factor.
	Inverse(re, im []float64) ([]float64, []float64, error)
	// MaxAcceptableSize returns the largest accepted signal length.
	MaxAcceptableSize() int
}

// Power2 is the radix-2 FFT. It is immutable and safe for concurrent use.
type Power2 struct {
	maxSize int
}

// New returns a Power2 accepting sizes up to 2^28.
func New() *Power2 {
	return &Power2{maxSize: 1 << DefaultMaxLog2}
}

// NewWithMaxLog2 returns a Power2 accepting sizes up to 2^lb.
//
// Parameters:
//   - lb: log2 of the maximum size, in [MinMaxLog2, MaxMaxLog2].
//
// Returns:
//   - *Power2: The transform.
//   - error: An invalid-argument error if lb is out of range.
func NewWithMaxLog2(lb int) (*Power2, error) {
	if lb < MinMaxLog2 || lb > MaxMaxLog2 {
		return nil, apperrors.NewValidationError("maxLog2", "must be in [25, 30]", lb)
	}
	return &Power2{maxSize: 1 << lb}, nil
}

// MaxAcceptableSize returns the largest accepted signal length.
func (p *Power2) MaxAcceptableSize() int { return p.maxSize }

// Forward computes the forward transform of re + i·im.
func (p *Power2) Forward(re, im []float64) ([]float64, []float64, error) {
	if err := p.validate(re, im); err != nil {
		return nil, nil, err
	}
	outRe, outIm := transform(re, im, false)
	return outRe, outIm, nil
}

// Inverse computes the unnormalised inverse transform of re + i·im.
func (p *Power2) Inverse(re, im []float64) ([]float64, []float64, error) {
	if err := p.validate(re, im); err != nil {
		return nil, nil, err
	}
	outRe, outIm := transform(re, im, true)
	return outRe, outIm, nil
}

func (p *Power2) validate(re, im []float64) error {
	if re == nil {
		return apperrors.NewMissingArgumentError("re")
	}
	if im == nil {
		return apperrors.NewMissingArgumentError("im")
	}
	n := len(re)
	if len(im) != n {
		return apperrors.NewValidationError("im", "length differs from real part", len(im))
	}
	if !IsPowerOfTwo(n) && n != 0 {
		return apperrors.NewValidationError("re", "length is not a power of two", n)
	}
	if n > p.maxSize {
		return apperrors.NewValidationError("re", "length exceeds the maximum acceptable size", n)
	}
	return nil
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// transform runs the butterfly network on copies of the inputs. n must be
// zero or a power of two.
func transform(inRe, inIm []float64, inverse bool) ([]float64, []float64) {
	n := len(inRe)
	re := make([]float64, n)
	im := make([]float64, n)
	copy(re, inRe)
	copy(im, inIm)
	if n <= 1 {
		return re, im
	}

	bitReverse(re, im)

	rotRe, rotIm := twiddles(n, inverse)
	for m := 2; m <= n; m <<= 1 {
		half := m >> 1
		step := n / m
		for k := 0; k < n; k += m {
			for j := 0; j < half; j++ {
				wr := rotRe[j*step]
				wi := rotIm[j*step]
				i0 := k + j
				i1 := i0 + half

				tr := wr*re[i1] - wi*im[i1]
				ti := wr*im[i1] + wi*re[i1]

				re[i1] = re[i0] - tr
				im[i1] = im[i0] - ti
				re[i0] += tr
				im[i0] += ti
			}
		}
	}
	return re, im
}

// bitReverse permutes re and im in place into bit-reversed index order.
func bitReverse(re, im []float64) {
	n := len(re)
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for j&bit != 0 {
			j ^= bit
			bit >>= 1
		}
		j |= bit
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}
}

// computeTwiddles fills the n/2 rotation factors exp(∓2πij/n). Only phases
// below π are needed by the butterflies.
func computeTwiddles(n int, inverse bool) ([]float64, []float64) {
	size := n >> 1
	rotRe := make([]float64, size)
	rotIm := make([]float64, size)
	for j := 0; j < size; j++ {
		x := float64(j) / float64(n)
		s := sin2pi(x)
		if !inverse {
			s = -s
		}
		rotRe[j] = cos2pi(x)
		rotIm[j] = s
	}
	return rotRe, rotIm
}

// cos2pi evaluates cos(2πx) for x in [0, 1) through a sine of a reduced
// argument, which keeps the value exact at the quadrant boundaries.
func cos2pi(x float64) float64 {
	if int(2*x) == 0 {
		return math.Sin(2 * math.Pi * (0.25 - x))
	}
	return math.Sin(2 * math.Pi * (x - 0.75))
}

// sin2pi evaluates sin(2πx) for x in [0, 1) with the argument folded into
// [-1/4, 1/4].
func sin2pi(x float64) float64 {
	switch int(4 * x) {
	case 0:
		return math.Sin(2 * math.Pi * x)
	case 1, 2:
		return math.Sin(2 * math.Pi * (0.5 - x))
	default:
		return math.Sin(2 * math.Pi * (x - 1))
	}
}

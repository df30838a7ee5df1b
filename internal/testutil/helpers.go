// Package testutil provides reusable test helpers for the FIR engine tests.
package testutil

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ConvolveTolerance is the relative error bound for comparing convolution
// paths. The vectorized path reduces partial lane sums in a different order
// than the scalar reference, so results agree only to within float32
// rounding accumulated over the tap count.
const ConvolveTolerance = 1e-4

// StreamTolerance is the bound for whole-engine comparisons against the
// float64 oracle, where float32 accumulation error compounds over
// production tap counts (4095+).
const StreamTolerance = 5e-4

// FIRReference computes the direct double-sum FIR output with float64
// accumulation. It is the brute-force oracle both convolution paths are
// measured against.
func FIRReference(coeffs, window []float32, count int) []float32 {
	output := make([]float32, count)
	for i := 0; i < count; i++ {
		var sum float64
		for j, c := range coeffs {
			sum += float64(c) * float64(window[i+j])
		}
		output[i] = float32(sum)
	}
	return output
}

// AssertClose verifies that got matches want element-wise within the given
// relative tolerance. For values below unit magnitude the comparison falls
// back to an absolute bound at the same tolerance.
func AssertClose(t *testing.T, want, got []float32, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Equal(t, len(want), len(got), "length mismatch") {
		return false
	}
	for i := range want {
		w := float64(want[i])
		g := float64(got[i])
		diff := math.Abs(w - g)
		scale := math.Max(math.Abs(w), math.Abs(g))
		if scale > 1.0 {
			diff /= scale
		}
		if diff > tolerance {
			return assert.Fail(t, "values differ beyond tolerance",
				"index %d: want %v, got %v (error %g > %g)", i, want[i], got[i], diff, tolerance)
		}
	}
	return true
}

// AssertNoNaNOrInf verifies that no element is NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float32, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		f := float64(v)
		if math.IsNaN(f) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(f, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// Sine generates n samples of a sine wave at the given frequency and rate.
func Sine(n int, freq, rate float64) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / rate))
	}
	return s
}

// Noise generates n samples of deterministic uniform noise in [-1, 1).
func Noise(n int, seed int64) []float32 {
	rng := rand.New(rand.NewSource(seed))
	s := make([]float32, n)
	for i := range s {
		s[i] = rng.Float32()*2 - 1
	}
	return s
}

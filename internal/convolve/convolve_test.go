package convolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tphakala/go-fir-filter/internal/testutil"
)

// Tap counts chosen to land on and off SIMD lane widths (4, 8, 16 floats).
var tapCounts = []int{1, 3, 7, 8, 15, 16, 17, 64, 100, 255, 256}

// Block sizes chosen to land on and off the 4-way output unroll.
var blockSizes = []int{1, 2, 3, 4, 5, 7, 8, 64, 127, 128}

func makeInputs(order, count int) (coeffs, window []float32) {
	coeffs = testutil.Noise(order, int64(order))
	window = testutil.Noise(order+count, int64(count)+1000)
	return coeffs, window
}

// TestScalar_MatchesBruteForce pins the scalar path to the float64
// double-sum reference.
func TestScalar_MatchesBruteForce(t *testing.T) {
	for _, order := range tapCounts {
		for _, count := range blockSizes {
			coeffs, window := makeInputs(order, count)

			output := make([]float32, count)
			Scalar(coeffs, window, output)

			want := testutil.FIRReference(coeffs, window, count)
			testutil.AssertClose(t, want, output, testutil.ConvolveTolerance,
				"order=%d count=%d", order, count)
			testutil.AssertNoNaNOrInf(t, output)
		}
	}
}

// TestVectorized_MatchesScalar verifies the two paths agree within
// tolerance across tap counts that are and are not lane-width multiples and
// block sizes that are and are not unroll multiples.
func TestVectorized_MatchesScalar(t *testing.T) {
	for _, order := range tapCounts {
		for _, count := range blockSizes {
			coeffs, window := makeInputs(order, count)

			scalarOut := make([]float32, count)
			vectorOut := make([]float32, count)
			Scalar(coeffs, window, scalarOut)
			Vectorized(coeffs, window, vectorOut)

			testutil.AssertClose(t, scalarOut, vectorOut, testutil.ConvolveTolerance,
				"order=%d count=%d", order, count)
		}
	}
}

// TestVectorized_SineSignal exercises the vectorized path on a realistic
// signal at a production-scale tap count.
func TestVectorized_SineSignal(t *testing.T) {
	const (
		order = 4095
		count = 1024
	)

	coeffs := testutil.Noise(order, 7)
	window := testutil.Sine(order+count, 1000, 44100)

	scalarOut := make([]float32, count)
	vectorOut := make([]float32, count)
	Scalar(coeffs, window, scalarOut)
	Vectorized(coeffs, window, vectorOut)

	testutil.AssertClose(t, scalarOut, vectorOut, testutil.ConvolveTolerance)
}

// TestStrategies_DegenerateInputs verifies that both paths treat invalid
// argument triples as no-ops: nothing written, no panic.
func TestStrategies_DegenerateInputs(t *testing.T) {
	strategies := map[string]Strategy{
		"scalar":     Scalar,
		"vectorized": Vectorized,
	}

	coeffs := []float32{1, 2, 3, 4}
	window := []float32{1, 1, 1, 1, 1, 1, 1, 1}

	for name, apply := range strategies {
		t.Run(name, func(t *testing.T) {
			sentinel := []float32{42, 42, 42, 42}

			apply(nil, window, sentinel)
			apply(coeffs, nil, sentinel)
			apply(coeffs, window, nil)
			apply(coeffs, window, []float32{})
			apply(coeffs, window[:5], sentinel) // window shorter than order+count

			assert.Equal(t, []float32{42, 42, 42, 42}, sentinel,
				"degenerate calls must not write output")
		})
	}
}

func TestResolve(t *testing.T) {
	out1 := make([]float32, 8)
	out2 := make([]float32, 8)
	coeffs, window := makeInputs(16, 8)

	Resolve(true)(coeffs, window, out1)
	Resolve(false)(coeffs, window, out2)

	testutil.AssertClose(t, out2, out1, testutil.ConvolveTolerance)
	assert.NotEmpty(t, Info())
}

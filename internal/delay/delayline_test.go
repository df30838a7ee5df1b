package delay

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// referenceLine is an unbounded history buffer used as the oracle for the
// mirrored ring buffer: it simply keeps every sample ever appended, with
// order zeros of silent pre-history.
type referenceLine struct {
	samples []float32
	order   int
}

func newReferenceLine(order int) *referenceLine {
	return &referenceLine{samples: make([]float32, order), order: order}
}

func (r *referenceLine) append(block []float32) {
	r.samples = append(r.samples, block...)
}

func (r *referenceLine) window(count int) []float32 {
	return r.samples[len(r.samples)-r.order-count:]
}

func TestNewLine_InvalidOrder(t *testing.T) {
	for _, order := range []int{0, -1, -4095} {
		line, err := NewLine(order)
		require.Error(t, err, "order %d should be rejected", order)
		assert.ErrorIs(t, err, ErrInvalidOrder)
		assert.Nil(t, line)
	}
}

func TestLine_StartsSilent(t *testing.T) {
	line, err := NewLine(16)
	require.NoError(t, err)

	// One appended sample preceded by 16 zeros of history.
	line.Append([]float32{1.0})
	window := line.Window(1)
	require.Len(t, window, 17)

	for i := 0; i < 16; i++ {
		assert.Zero(t, window[i], "history sample %d should be silent", i)
	}
	assert.Equal(t, float32(1.0), window[16])
}

// TestLine_MatchesUnboundedReference drives the line far past its capacity
// with randomly sized blocks and checks every window against the unbounded
// oracle. This is the central correctness property of the mirror scheme.
func TestLine_MatchesUnboundedReference(t *testing.T) {
	orders := []int{1, 2, 3, 5, 8, 33, 255}

	for _, order := range orders {
		rng := rand.New(rand.NewSource(int64(order)))

		line, err := NewLine(order)
		require.NoError(t, err)
		ref := newReferenceLine(order)

		// Enough iterations to wrap the 4*order backing buffer many times.
		for iter := 0; iter < 200; iter++ {
			count := 1 + rng.Intn(order)
			block := make([]float32, count)
			for i := range block {
				block[i] = rng.Float32()*2 - 1
			}

			line.Append(block)
			ref.append(block)

			window := line.Window(count)
			require.Len(t, window, order+count, "order=%d iter=%d", order, iter)
			assert.Equal(t, ref.window(count), window,
				"window mismatch at order=%d iter=%d", order, iter)
		}
	}
}

// TestLine_WraparoundAppend checks the specific case of a single append that
// crosses the end of the backing array: the resulting window must equal the
// one an infinitely large buffer would produce.
func TestLine_WraparoundAppend(t *testing.T) {
	const order = 64

	line, err := NewLine(order)
	require.NoError(t, err)
	ref := newReferenceLine(order)

	// Walk the write cursor close to the end of the backing array, then
	// append a full-order block guaranteed to straddle the boundary.
	lead := make([]float32, order-1)
	for i := range lead {
		lead[i] = float32(i) + 1
	}
	for i := 0; i < 3; i++ {
		line.Append(lead)
		ref.append(lead)
	}

	crossing := make([]float32, order)
	for i := range crossing {
		crossing[i] = -float32(i) - 1
	}
	line.Append(crossing)
	ref.append(crossing)

	assert.Equal(t, ref.window(order), line.Window(order))
}

func TestLine_DegenerateAppendsLeaveStateUnchanged(t *testing.T) {
	const order = 8

	line, err := NewLine(order)
	require.NoError(t, err)

	block := []float32{1, 2, 3, 4}
	line.Append(block)
	before := append([]float32(nil), line.Window(len(block))...)

	line.Append(nil)
	line.Append([]float32{})
	line.Append(make([]float32, order+1)) // beyond MaxBlock

	assert.Equal(t, before, line.Window(len(block)),
		"degenerate appends must not disturb the window")

	var nilLine *Line
	nilLine.Append(block) // must not panic
	assert.Nil(t, nilLine.Window(1))
}

func TestLine_WindowValidation(t *testing.T) {
	line, err := NewLine(8)
	require.NoError(t, err)

	assert.Nil(t, line.Window(0))
	assert.Nil(t, line.Window(-1))
	assert.Nil(t, line.Window(9), "count beyond MaxBlock has no contiguity guarantee")
	assert.NotNil(t, line.Window(8))
	assert.Equal(t, 8, line.MaxBlock())
}

func TestLine_Reset(t *testing.T) {
	const order = 16

	line, err := NewLine(order)
	require.NoError(t, err)

	block := make([]float32, order)
	for i := range block {
		block[i] = float32(i) + 1
	}
	for i := 0; i < 10; i++ {
		line.Append(block)
	}

	line.Reset()

	line.Append([]float32{5})
	window := line.Window(1)
	require.Len(t, window, order+1)
	for i := 0; i < order; i++ {
		assert.Zero(t, window[i], "history must be silent after Reset")
	}
	assert.Equal(t, float32(5), window[order])
}

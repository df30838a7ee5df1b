package firfilter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-fir-filter/internal/testutil"
)

// TestHotSwap_FirstBlockSeesZeroedHistory interleaves processing with a
// rate switch and verifies the first post-switch block is computed with the
// new filter against silent history: a controlled transient, never stale or
// partially swapped state.
func TestHotSwap_FirstBlockSeesZeroedHistory(t *testing.T) {
	for _, preallocate := range []bool{true, false} {
		cfg := quietConfig()
		cfg.Channels = 1
		cfg.EnableSIMD = false
		cfg.Preallocate = preallocate

		engine, err := New(cfg)
		require.NoError(t, err)

		// Accumulate history under the 44.1 kHz filter.
		for i := 0; i < 3; i++ {
			block := testutil.Noise(1024, int64(i))
			out := make([]float32, 1024)
			require.NoError(t, engine.Process([][]float32{block}, [][]float32{out}))
		}

		engine.SetRate(RateDAT)

		// First post-switch block: new filter, fresh zero history.
		ref := newHistoryReference(t, RateDAT)
		block := testutil.Noise(1024, 99)
		out := make([]float32, 1024)
		require.NoError(t, engine.Process([][]float32{block}, [][]float32{out}))
		testutil.AssertClose(t, ref.expect(block), out, testutil.StreamTolerance,
			"preallocate=%v", preallocate)
	}
}

// TestHotSwap_ReturningToARateStartsSilent verifies a pre-built pair is
// reset when re-installed: switching away and back must not resurrect the
// old rate's history.
func TestHotSwap_ReturningToARateStartsSilent(t *testing.T) {
	cfg := quietConfig()
	cfg.Channels = 1
	cfg.EnableSIMD = false

	engine, err := New(cfg)
	require.NoError(t, err)

	block := testutil.Noise(2048, 7)
	out := make([]float32, 2048)
	require.NoError(t, engine.Process([][]float32{block}, [][]float32{out}))

	engine.SetRate(RateHiRes96)
	engine.SetRate(RateCD)

	ref := newHistoryReference(t, RateCD)
	require.NoError(t, engine.Process([][]float32{block}, [][]float32{out}))
	testutil.AssertClose(t, ref.expect(block), out, testutil.StreamTolerance)
}

// TestHotSwap_SameRateKeepsHistory verifies that re-requesting the
// currently effective rate is a no-op: the stream continues seamlessly.
func TestHotSwap_SameRateKeepsHistory(t *testing.T) {
	cfg := quietConfig()
	cfg.Channels = 1
	cfg.EnableSIMD = false

	engine, err := New(cfg)
	require.NoError(t, err)
	ref := newHistoryReference(t, RateCD)

	first := testutil.Noise(512, 1)
	out := make([]float32, 512)
	require.NoError(t, engine.Process([][]float32{first}, [][]float32{out}))
	ref.expect(first)

	require.Equal(t, RateCD, engine.SetRate(RateCD))

	second := testutil.Noise(512, 2)
	require.NoError(t, engine.Process([][]float32{second}, [][]float32{out}))
	testutil.AssertClose(t, ref.expect(second), out, testutil.StreamTolerance,
		"history must survive a same-rate SetRate")
}

// TestHotSwap_SwitchAffectsNextBlockOnly pins the ordering guarantee:
// block k is fully computed under the filter active when it was appended,
// and the switch takes effect at block k+1.
func TestHotSwap_SwitchAffectsNextBlockOnly(t *testing.T) {
	cfg := quietConfig()
	cfg.Channels = 1
	cfg.EnableSIMD = false

	engine, err := New(cfg)
	require.NoError(t, err)

	oldRef := newHistoryReference(t, RateCD)
	blockK := testutil.Noise(768, 1)
	outK := make([]float32, 768)
	require.NoError(t, engine.Process([][]float32{blockK}, [][]float32{outK}))
	testutil.AssertClose(t, oldRef.expect(blockK), outK, testutil.StreamTolerance,
		"block k belongs to the old filter")

	engine.SetRate(RateHiRes96)

	newRef := newHistoryReference(t, RateHiRes96)
	blockK1 := testutil.Noise(768, 2)
	outK1 := make([]float32, 768)
	require.NoError(t, engine.Process([][]float32{blockK1}, [][]float32{outK1}))
	testutil.AssertClose(t, newRef.expect(blockK1), outK1, testutil.StreamTolerance,
		"block k+1 belongs to the new filter with fresh history")
}

// TestHotSwap_StereoChannelsSwitchTogether verifies both channels carry the
// new order after a switch and produce matching-oracle output.
func TestHotSwap_StereoChannelsSwitchTogether(t *testing.T) {
	cfg := quietConfig()
	cfg.EnableSIMD = false

	engine, err := New(cfg)
	require.NoError(t, err)

	engine.SetRate(RateHiRes96)
	require.Equal(t, 8191, engine.Order())

	left := newHistoryReference(t, RateHiRes96)
	right := newHistoryReference(t, RateHiRes96)

	inL := testutil.Noise(600, 1)
	inR := testutil.Noise(600, 2)
	outL := make([]float32, 600)
	outR := make([]float32, 600)
	require.NoError(t, engine.Process(
		[][]float32{inL, inR}, [][]float32{outL, outR}))

	testutil.AssertClose(t, left.expect(inL), outL, testutil.StreamTolerance)
	testutil.AssertClose(t, right.expect(inR), outR, testutil.StreamTolerance)
}

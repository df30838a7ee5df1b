// Package delay implements the sliding-window history buffer feeding the
// FIR convolution kernel.
//
// A Line is a fixed-capacity ring buffer with a mirrored write region: every
// sample is written twice, at a primary cursor and at a mirror cursor held
// exactly twice the filter order behind it. The redundant copy fills in the
// region a lookback window would otherwise have to wrap through, so the most
// recent order+count samples are always readable as one contiguous slice,
// with no data movement on append beyond the two writes per sample.
package delay

import (
	"errors"
	"fmt"
)

const (
	// capacityFactor is the backing storage size per sample of filter order.
	// The dual-cursor scheme requires the cursors to stay exactly 2*order
	// apart across wraps, which holds only when capacity is exactly 4*order.
	capacityFactor = 4

	// mirrorFactor is the cursor separation per sample of filter order.
	mirrorFactor = 2
)

// ErrInvalidOrder is returned when a delay line is requested for a
// non-positive filter order.
var ErrInvalidOrder = errors.New("delay: invalid filter order")

// Line maintains the most recent history of input samples for one channel.
//
// A Line is sized for a single filter order and is owned exclusively by one
// channel; it is not safe for concurrent use. A fresh Line starts silent
// (all zeros), so the first windows read a zeroed history.
type Line struct {
	buf   []float32
	order int
	index int // primary write cursor; stays within [2*order, 4*order]
}

// NewLine allocates a delay line for a filter of the given order.
// The backing buffer holds 4*order samples and starts zeroed.
func NewLine(order int) (*Line, error) {
	if order <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOrder, order)
	}

	size := order * capacityFactor
	return &Line{
		buf:   make([]float32, size),
		order: order,
		index: size - 1,
	}, nil
}

// Order returns the filter order this line is sized for.
func (l *Line) Order() int {
	return l.order
}

// Capacity returns the backing storage size in samples.
func (l *Line) Capacity() int {
	return len(l.buf)
}

// MaxBlock returns the largest sample count a single Append may carry while
// keeping the subsequent Window contiguous. It equals the filter order:
// the mirror region covers 2*order samples of lookback, and a window spans
// order+count of them.
func (l *Line) MaxBlock() int {
	return l.order
}

// Append writes a block of new samples into the history.
//
// Each sample lands at both the primary and the mirror cursor; the cursors
// advance together and relocate on hitting the end of the backing array so
// that their separation is preserved. Appending nothing, or more than
// MaxBlock samples, is a no-op.
func (l *Line) Append(samples []float32) {
	if l == nil || len(samples) == 0 || len(samples) > l.order {
		return
	}

	write := l.index
	mirror := write - l.order*mirrorFactor
	size := len(l.buf)

	for _, s := range samples {
		l.buf[write] = s
		l.buf[mirror] = s

		write++
		mirror++

		if write == size {
			write = mirror
			mirror = 0
		}
	}

	l.index = write
}

// Window returns a read-only view of the order+count most recent samples:
// the count samples of the block just appended, preceded by order samples of
// history. The view is contiguous by construction of the mirror region.
//
// Returns nil when count is non-positive or exceeds MaxBlock. The caller
// must not retain the slice across a subsequent Append or Reset.
func (l *Line) Window(count int) []float32 {
	if l == nil || count <= 0 || count > l.order {
		return nil
	}

	start := l.index - l.order - count
	return l.buf[start:l.index:l.index]
}

// Reset zeroes the history and restores the initial cursor position.
// Used when a pre-built line is re-installed during a rate switch: the new
// filter starts against silence rather than another rate's stale samples.
func (l *Line) Reset() {
	if l == nil {
		return
	}
	clear(l.buf)
	l.index = len(l.buf) - 1
}

package firfilter

import (
	"fmt"

	"github.com/tphakala/go-fir-filter/internal/convolve"
	"github.com/tphakala/go-fir-filter/internal/delay"
	"github.com/tphakala/go-fir-filter/internal/filter"
)

// pair bundles the two objects a channel replaces together on a rate
// switch: a filter spec instance and a delay line sized for its order.
type pair struct {
	spec *filter.Spec
	line *delay.Line
}

// newPair builds a fresh pair for the given registry spec: an independent
// coefficient copy and a silent delay line.
func newPair(spec *filter.Spec) (*pair, error) {
	line, err := delay.NewLine(spec.Order)
	if err != nil {
		return nil, fmt.Errorf("delay line for order %d: %w", spec.Order, err)
	}
	return &pair{spec: spec.Clone(), line: line}, nil
}

// Channel pairs one delay line with one active filter. Each channel owns
// its pair exclusively; no state is shared between channels, so a stereo
// engine's two channels never contend.
type Channel struct {
	name    string
	current *pair

	// prebuilt holds one pair per registry rate when the engine runs with
	// pre-allocation, so a rate switch is a reset-and-swap with no
	// allocation on the live path. Nil when pre-allocation is disabled.
	prebuilt map[int]*pair
}

// newChannel configures a channel for the given initial rate. With
// preallocate set, pairs for every registry entry are built up front.
func newChannel(name string, rate int, preallocate bool) (*Channel, error) {
	c := &Channel{name: name}

	if preallocate {
		c.prebuilt = make(map[int]*pair, len(filter.Rates()))
		for _, r := range filter.Rates() {
			spec, _ := filter.Lookup(r)
			p, err := newPair(spec)
			if err != nil {
				return nil, fmt.Errorf("channel %s: %w", name, err)
			}
			c.prebuilt[r] = p
		}
	}

	spec, ok := filter.Lookup(rate)
	if !ok {
		spec = filter.Fallback()
	}
	if err := c.install(spec); err != nil {
		return nil, fmt.Errorf("channel %s: %w", name, err)
	}
	return c, nil
}

// Name returns the channel label (FL, FR, CH3, ...).
func (c *Channel) Name() string {
	return c.name
}

// Order returns the order of the channel's active filter.
func (c *Channel) Order() int {
	return c.current.spec.Order
}

// install replaces the channel's (filter, delay line) pair with one for the
// given registry spec. The new history starts zeroed. On failure the
// previous pair stays active and untouched.
//
// With pre-allocated pairs this is a reset and a pointer swap; otherwise it
// constructs the pair first and swaps only on success.
func (c *Channel) install(spec *filter.Spec) error {
	if p, ok := c.prebuilt[spec.Rate]; ok {
		if p != c.current {
			p.line.Reset()
		}
		c.current = p
		return nil
	}

	p, err := newPair(spec)
	if err != nil {
		return err
	}
	c.current = p
	return nil
}

// process runs one block through the channel: append to the delay line,
// then convolve the exposed window into the output block.
//
// The delay line guarantees a contiguous window only for blocks up to the
// filter order, so larger host blocks are split into sub-blocks; each
// sub-block sees exactly the history the FIR formula requires, making the
// result identical to processing against an unbounded buffer.
func (c *Channel) process(input, output []float32, apply convolve.Strategy) {
	maxBlock := c.current.line.MaxBlock()
	coeffs := c.current.spec.Coefficients()

	for len(input) > 0 {
		n := min(len(input), maxBlock)
		c.current.line.Append(input[:n])
		apply(coeffs, c.current.line.Window(n), output[:n])
		input = input[n:]
		output = output[n:]
	}
}

// memoryUsage approximates the channel's buffer footprint in bytes.
func (c *Channel) memoryUsage() int64 {
	sizeOf := func(p *pair) int64 {
		return int64(len(p.spec.Coefficients())+p.line.Capacity()) * bytesPerSample
	}

	var usage int64
	for _, p := range c.prebuilt {
		usage += sizeOf(p)
	}
	if _, ok := c.prebuilt[c.current.spec.Rate]; !ok {
		usage += sizeOf(c.current)
	}
	return usage
}

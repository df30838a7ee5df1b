package firfilter

import (
	"errors"
	"fmt"
	"log"

	"github.com/tphakala/go-fir-filter/internal/convolve"
	"github.com/tphakala/go-fir-filter/internal/filter"
)

// Common errors returned by the engine.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid engine configuration")

	// ErrChannelCount indicates a Process call whose buffer sets do not
	// match the engine's channel count.
	ErrChannelCount = errors.New("buffer count does not match channel count")
)

// Config holds engine configuration.
type Config struct {
	// Channels is the number of audio channels to process. Each channel
	// owns an independent filter and delay line.
	Channels int

	// EnableSIMD allows the vectorized convolution path. Set to false to
	// force the scalar reference implementation.
	EnableSIMD bool

	// Preallocate builds one (filter, delay line) pair per supported rate
	// per channel at construction, so rate switches on the live path swap
	// pointers instead of allocating. Costs a few MB of standing memory.
	Preallocate bool

	// Logger receives diagnostics: initialization, rate switches, and
	// recoverable configuration failures. Defaults to log.Default().
	Logger *log.Logger
}

// DefaultConfig returns the stereo configuration matching the reference
// deployment: SIMD on, pre-allocated swap pairs.
func DefaultConfig() *Config {
	return &Config{
		Channels:    DefaultChannels,
		EnableSIMD:  true,
		Preallocate: true,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Channels < 1 {
		return fmt.Errorf("%w: channels must be at least 1", ErrInvalidConfig)
	}
	if c.Channels > maxChannels {
		return fmt.Errorf("%w: too many channels (max %d)", ErrInvalidConfig, maxChannels)
	}
	return nil
}

// Engine filters N audio channels in real time. It is driven synchronously
// by the host: one Process call per arriving block, SetRate between cycles
// when the stream format changes. The host must serialize those calls; in
// exchange the engine takes no locks and, when pre-allocated, performs no
// allocation after construction.
type Engine struct {
	channels []*Channel
	rate     int
	apply    convolve.Strategy
	simd     bool
	logger   *log.Logger
}

// New creates an engine with the specified configuration. Channels start at
// 44.1 kHz until the host reports a rate. Failure to build any channel
// aborts construction; no partially initialized engine is returned.
func New(config *Config) (*Engine, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = log.Default()
	}

	e := &Engine{
		channels: make([]*Channel, 0, config.Channels),
		rate:     initialRate,
		apply:    convolve.Resolve(config.EnableSIMD),
		simd:     config.EnableSIMD,
		logger:   logger,
	}

	for i := 0; i < config.Channels; i++ {
		ch, err := newChannel(channelName(i), initialRate, config.Preallocate)
		if err != nil {
			return nil, fmt.Errorf("initializing channel %d: %w", i, err)
		}
		e.channels = append(e.channels, ch)
	}

	e.logger.Printf("FIR engine initialized: %d channels, rate=%d Hz, order=%d, simd=%s",
		len(e.channels), e.rate, e.channels[0].Order(), e.simdLabel())
	return e, nil
}

func channelName(i int) string {
	if i < len(stereoNames) {
		return stereoNames[i]
	}
	return fmt.Sprintf("CH%d", i+1)
}

func (e *Engine) simdLabel() string {
	if !e.simd {
		return "off"
	}
	return convolve.Info()
}

// Channels returns the number of channels the engine processes.
func (e *Engine) Channels() int {
	return len(e.channels)
}

// Rate returns the effective sample rate of the active filters.
func (e *Engine) Rate() int {
	return e.rate
}

// Order returns the order of the active filters.
func (e *Engine) Order() int {
	return e.channels[0].Order()
}

// Process runs one host cycle: for each channel, the input block is
// appended to the channel's history and the filtered block of equal length
// is written to the channel's output buffer.
//
// inputs and outputs must carry one buffer per channel. If any channel's
// buffer is missing or the block lengths disagree, every available output
// is filled with silence and the filtering step is skipped for this cycle;
// transient buffer unavailability from the host is not an engine fault and
// returns nil. A buffer-set count that does not match the channel count is
// caller misuse and returns ErrChannelCount before any state changes.
//
// Zero-length cycles are no-ops.
func (e *Engine) Process(inputs, outputs [][]float32) error {
	if len(inputs) != len(e.channels) || len(outputs) != len(e.channels) {
		return fmt.Errorf("%w: got %d in / %d out, want %d",
			ErrChannelCount, len(inputs), len(outputs), len(e.channels))
	}

	blockLen, ok := cycleBlockLen(inputs, outputs)
	if !ok {
		writeSilence(outputs)
		return nil
	}
	if blockLen == 0 {
		return nil
	}

	for i, ch := range e.channels {
		ch.process(inputs[i], outputs[i], e.apply)
	}
	return nil
}

// cycleBlockLen validates a cycle's buffer sets and returns the common
// block length. ok is false when any buffer is nil or lengths disagree.
func cycleBlockLen(inputs, outputs [][]float32) (blockLen int, ok bool) {
	blockLen = -1
	for i := range inputs {
		if inputs[i] == nil || outputs[i] == nil {
			return 0, false
		}
		if len(inputs[i]) != len(outputs[i]) {
			return 0, false
		}
		if blockLen < 0 {
			blockLen = len(inputs[i])
		} else if len(inputs[i]) != blockLen {
			return 0, false
		}
	}
	return blockLen, true
}

// writeSilence zeroes whatever output buffers the host did supply, so a
// degraded cycle emits silence rather than stale data.
func writeSilence(outputs [][]float32) {
	for _, out := range outputs {
		clear(out)
	}
}

// SetRate switches every channel to the filter for the requested sample
// rate and returns the effective rate. Meant to be called between
// processing cycles, on the same execution context as Process.
//
// Unsupported rates resolve to the registry fallback; the mismatch is
// logged, not an error. If installing the resolved filter fails on any
// channel, all channels fall back together to the fallback rate so the
// channel set never disagrees on the active rate; a channel whose install
// fails keeps its previous filter/delay pair unchanged.
//
// Requesting the currently effective rate is a no-op and preserves history.
func (e *Engine) SetRate(rate int) int {
	spec, ok := filter.Lookup(rate)
	if !ok {
		spec = filter.Fallback()
		e.logger.Printf("no filter for rate=%d Hz, falling back to %d Hz", rate, spec.Rate)
	}
	if spec.Rate == e.rate {
		return e.rate
	}

	effective := spec.Rate
	for _, ch := range e.channels {
		if err := ch.install(spec); err != nil {
			e.logger.Printf("channel %s: installing filter for rate=%d Hz failed: %v",
				ch.Name(), spec.Rate, err)
			effective = e.fallbackAll()
			break
		}
	}

	e.rate = effective
	e.logger.Printf("selected FIR filter for rate=%d Hz (order=%d)", e.rate, e.Order())
	return e.rate
}

// fallbackAll forces every channel to the registry fallback after a partial
// switch failure. Channels that cannot install even the fallback keep their
// previous pair.
func (e *Engine) fallbackAll() int {
	fb := filter.Fallback()
	for _, ch := range e.channels {
		if err := ch.install(fb); err != nil {
			e.logger.Printf("channel %s: fallback install failed, keeping previous filter: %v",
				ch.Name(), err)
		}
	}
	return fb.Rate
}

// Info describes the engine's active configuration.
type Info struct {
	// Algorithm describes the filtering algorithm in use.
	Algorithm string

	// Channels is the number of processed channels.
	Channels int

	// Rate is the effective sample rate in Hz.
	Rate int

	// Order is the active filter order (tap count).
	Order int

	// SIMDEnabled indicates if the vectorized path is active.
	SIMDEnabled bool

	// SIMDType describes the SIMD instruction set in use.
	SIMDType string

	// MemoryUsage is the approximate buffer memory in bytes, including
	// pre-allocated swap pairs.
	MemoryUsage int64
}

// GetInfo returns information about the engine.
func (e *Engine) GetInfo() Info {
	var usage int64
	for _, ch := range e.channels {
		usage += ch.memoryUsage()
	}

	return Info{
		Algorithm:   "direct-form FIR",
		Channels:    len(e.channels),
		Rate:        e.rate,
		Order:       e.Order(),
		SIMDEnabled: e.simd,
		SIMDType:    e.simdLabel(),
		MemoryUsage: usage,
	}
}

// Package filter holds the compiled-in FIR coefficient sets and the
// registry resolving a sample rate to a filter specification.
//
// The registry covers the rate family {44100, 48000, 88200, 96000, 176400,
// 192000} Hz. Filter order doubles with each rate family step so the
// transition band stays fixed in Hz: 4095 taps for the 44.1k class, 8191 for
// the 96k class, 16383 for the 192k class. The 192000 Hz entry doubles as
// the fallback for unrecognized rates.
//
// Coefficients are linear-phase compensation filters derived from
// loudspeaker measurements, stored as little-endian float32 blobs and
// embedded at build time. The registry is immutable after its lazy
// construction and safe for concurrent lookups.
package filter

import (
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
)

//go:embed data/coeff_*.bin
var coeffData embed.FS

// ErrRegistryData reports a malformed embedded coefficient blob. It can
// only occur if the build shipped corrupted data files.
var ErrRegistryData = errors.New("filter: bad embedded coefficient data")

const bytesPerCoeff = 4 // float32, little-endian

// Spec describes one FIR filter: the sample rate it was designed for, its
// order, and the coefficient vector. A Spec is immutable after construction;
// channels work on independent Clone instances so discarding one never
// affects the registry or another channel.
type Spec struct {
	Rate   int
	Order  int
	coeffs []float32
}

// Coefficients returns the coefficient vector. The slice must be treated as
// read-only; it is shared with every view of this Spec.
func (s *Spec) Coefficients() []float32 {
	return s.coeffs
}

// Clone returns an independent copy of the spec with its own coefficient
// storage, suitable for exclusive ownership by one channel.
func (s *Spec) Clone() *Spec {
	if s == nil {
		return nil
	}
	coeffs := make([]float32, len(s.coeffs))
	copy(coeffs, s.coeffs)
	return &Spec{Rate: s.Rate, Order: s.Order, coeffs: coeffs}
}

// entries describes the supported rate family. The last entry (192000) is
// the designated fallback.
var entries = []struct {
	rate  int
	order int
}{
	{44100, 4095},
	{48000, 4095},
	{88200, 8191},
	{96000, 8191},
	{176400, 16383},
	{192000, 16383},
}

// fallbackRate is the effective rate used when a requested rate has no
// registry entry.
const fallbackRate = 192000

var loadRegistry = sync.OnceValues(func() (map[int]*Spec, error) {
	specs := make(map[int]*Spec, len(entries))
	for _, e := range entries {
		coeffs, err := decodeCoeffs(e.rate, e.order)
		if err != nil {
			return nil, err
		}
		specs[e.rate] = &Spec{Rate: e.rate, Order: e.order, coeffs: coeffs}
	}
	return specs, nil
})

// decodeCoeffs reads one embedded blob and checks it carries exactly the
// expected number of float32 values.
func decodeCoeffs(rate, order int) ([]float32, error) {
	name := fmt.Sprintf("data/coeff_%d.bin", rate)
	raw, err := coeffData.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRegistryData, name, err)
	}
	if len(raw) != order*bytesPerCoeff {
		return nil, fmt.Errorf("%w: %s holds %d bytes, want %d",
			ErrRegistryData, name, len(raw), order*bytesPerCoeff)
	}

	coeffs := make([]float32, order)
	for i := range coeffs {
		bits := binary.LittleEndian.Uint32(raw[i*bytesPerCoeff:])
		coeffs[i] = math.Float32frombits(bits)
	}
	return coeffs, nil
}

func registry() map[int]*Spec {
	specs, err := loadRegistry()
	if err != nil {
		// Embedded data is validated at build time by the registry tests;
		// a failure here means the binary itself is broken.
		panic(err)
	}
	return specs
}

// Lookup returns the registry entry for the exact rate, or false when the
// rate is unsupported. The returned Spec is shared; use Clone before
// installing it into a channel.
func Lookup(rate int) (*Spec, bool) {
	spec, ok := registry()[rate]
	return spec, ok
}

// Fallback returns the designated fallback entry, used when no exact rate
// match exists. It is the highest-rate, highest-order entry.
func Fallback() *Spec {
	return registry()[fallbackRate]
}

// Rates returns the supported sample rates in ascending order.
func Rates() []int {
	specs := registry()
	rates := make([]int, 0, len(specs))
	for rate := range specs {
		rates = append(rates, rate)
	}
	sort.Ints(rates)
	return rates
}

// Package convolve implements the direct-form FIR kernel: each output
// sample is the dot product of the coefficient vector against a back-looking
// window of input history, with the window's trailing edge aligned to the
// most recent sample.
//
// Two interchangeable paths are provided. The scalar path is the
// always-correct reference: a plain double loop summed in tap order. The
// vectorized path delegates the inner dot product to github.com/tphakala/simd,
// which dispatches to AVX2/SSE/NEON at runtime, and unrolls across four
// output positions per iteration. The paths agree within floating-point
// tolerance but not bit-for-bit, because the vectorized reduction sums
// partial lanes in a different order.
package convolve

import (
	"github.com/tphakala/simd/cpu"
	"github.com/tphakala/simd/f32"
)

// outputUnroll is the number of output positions computed per iteration of
// the vectorized outer loop.
const outputUnroll = 4

// Strategy computes one block of FIR output.
//
// The contract for all implementations: output[i] = sum of
// coeffs[j]*window[i+j] over all taps, for i in [0, len(output)). The window
// must hold at least len(coeffs)+len(output) samples ending at the most
// recent one. Calls with nil or empty arguments, or with a window too short
// for the requested output, return without writing anything.
type Strategy func(coeffs, window, output []float32)

// Resolve selects the convolution path once, at engine construction.
// The result is stored by the caller and never re-probed per block.
func Resolve(enableSIMD bool) Strategy {
	if enableSIMD {
		return Vectorized
	}
	return Scalar
}

// Info describes the SIMD instruction set backing the vectorized path.
func Info() string {
	return cpu.Info()
}

// valid reports whether the argument triple satisfies the Strategy contract.
func valid(coeffs, window, output []float32) bool {
	return len(coeffs) > 0 && len(output) > 0 &&
		len(window) >= len(coeffs)+len(output)
}

// Scalar is the reference implementation: one accumulator per output
// sample, taps summed in order.
func Scalar(coeffs, window, output []float32) {
	if !valid(coeffs, window, output) {
		return
	}

	for i := range output {
		var sum float32
		for j, c := range coeffs {
			sum += c * window[i+j]
		}
		output[i] = sum
	}
}

// Vectorized computes the same result via SIMD dot products, amortizing
// coefficient loads across four output positions per outer iteration. The
// remainder of outputs not divisible by the unroll factor falls to a
// single-output loop that is still fully vectorized over taps; tap counts
// off the lane width are handled inside the simd kernels.
func Vectorized(coeffs, window, output []float32) {
	if !valid(coeffs, window, output) {
		return
	}

	order := len(coeffs)
	count := len(output)
	unrolled := (count / outputUnroll) * outputUnroll

	for i := 0; i < unrolled; i += outputUnroll {
		output[i] = f32.DotProductUnsafe(coeffs, window[i:i+order])
		output[i+1] = f32.DotProductUnsafe(coeffs, window[i+1:i+1+order])
		output[i+2] = f32.DotProductUnsafe(coeffs, window[i+2:i+2+order])
		output[i+3] = f32.DotProductUnsafe(coeffs, window[i+3:i+3+order])
	}

	for i := unrolled; i < count; i++ {
		output[i] = f32.DotProductUnsafe(coeffs, window[i:i+order])
	}
}

// Package firfilter provides a real-time, per-channel FIR filtering engine
// for streaming audio in pure Go.
//
// The engine applies a fixed compensation filter to blocks of 32-bit float
// samples as they arrive from an audio host, one output block per input
// block, sample-accurate. Filter coefficients are compiled in, one set per
// supported sample rate; when the host's sample rate changes, the engine
// hot-swaps the active filter and its history buffer between processing
// cycles without interrupting the stream.
//
// # Features
//
//   - Mirrored-ring delay line exposing a contiguous lookback window with
//     no per-block data movement
//   - Direct-form FIR convolution with SIMD acceleration (AVX2/SSE/NEON)
//     via github.com/tphakala/simd, plus a scalar reference path
//   - Compiled-in coefficient sets for 44.1/48/88.2/96/176.4/192 kHz with
//     filter orders scaled to the rate family
//   - Atomic per-channel filter hot swap with pre-allocated filter/delay
//     pairs, keeping the live processing path allocation-free
//   - Silence emission when the host reports unavailable buffers
//
// # Quick Start
//
//	engine, err := firfilter.New(firfilter.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	engine.SetRate(48000)
//
//	// Once per host cycle: one input and one output block per channel.
//	for {
//	    in, out := acquireBuffers()
//	    if err := engine.Process(in, out); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Processing Model
//
// Process and SetRate are synchronous, bounded-time operations meant to be
// invoked from the host's (possibly real-time) callback context. The host
// must serialize them; the engine performs no locking of its own. With the
// default pre-allocated configuration, neither call allocates.
//
// Output block k reflects exactly the input history through block k under
// whichever filter was active when block k was appended. A rate switch
// between blocks k and k+1 affects block k+1 onward only, and the first
// post-switch block is computed against a freshly zeroed history, so a
// switch costs a short fade-in transient rather than continuity.
//
// # Rate Resolution
//
// Unsupported sample rates are not an error: the engine falls back to the
// 192 kHz / order-16383 entry and reports the requested/effective mismatch
// through its logger. When any channel of a set fails to switch, all
// channels fall back together so the set never disagrees on the active rate.
package firfilter

package main

import (
	"fmt"
	"log"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavInput holds validated input file information.
type wavInput struct {
	file        *os.File
	decoder     *wav.Decoder
	rate        int
	channels    int
	bitDepth    int
	totalFrames int64
	format      *audio.Format
}

// openWAVInput opens and validates a WAV file, returning format information.
func openWAVInput(path string, verbose bool) (*wavInput, error) {
	inputFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(inputFile)
	if !decoder.IsValidFile() {
		_ = inputFile.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	format := decoder.Format()
	rate := format.SampleRate
	channels := format.NumChannels
	bitDepth := int(decoder.BitDepth)

	if verbose {
		log.Printf("Input format: %d Hz, %d channels, %d-bit", rate, channels, bitDepth)
	}

	duration, err := decoder.Duration()
	if err != nil {
		duration = 0
	}
	totalFrames := int64(duration.Seconds() * float64(rate))

	return &wavInput{
		file:        inputFile,
		decoder:     decoder,
		rate:        rate,
		channels:    channels,
		bitDepth:    bitDepth,
		totalFrames: totalFrames,
		format:      format,
	}, nil
}

// Close closes the input file.
func (w *wavInput) Close() error {
	return w.file.Close()
}

// maxSampleValue returns the full-scale PCM value for a bit depth.
func maxSampleValue(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample16:
		return maxInt16
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	default:
		return maxInt16
	}
}

// deinterleave splits interleaved PCM ints into per-channel float32 buffers
// scaled to [-1, 1]. Returns the number of frames converted.
func deinterleave(dst [][]float32, src []int, channels int, invMax float64) int {
	frames := len(src) / channels
	for ch := range dst {
		buf := dst[ch][:frames]
		for i := 0; i < frames; i++ {
			buf[i] = float32(float64(src[i*channels+ch]) * invMax)
		}
	}
	return frames
}

// interleave merges per-channel float32 buffers back into interleaved PCM
// ints at the given full-scale value, clamping out-of-range samples.
func interleave(dst []int, src [][]float32, frames int, maxVal float64) []int {
	channels := len(src)
	out := dst[:frames*channels]
	for ch := range src {
		for i := 0; i < frames; i++ {
			out[i*channels+ch] = clampSample(float64(src[ch][i])*maxVal, maxVal)
		}
	}
	return out
}

// clampSample rounds a scaled sample to int, clamping to full scale.
func clampSample(v, maxVal float64) int {
	if v > maxVal {
		return int(maxVal)
	}
	if v < -maxVal-1 {
		return int(-maxVal - 1)
	}
	return int(math.Round(v))
}

// progressTracker handles progress reporting.
type progressTracker struct {
	totalFrames  int64
	lastProgress int
	verbose      bool
}

// reportIfNeeded reports progress if a threshold was crossed.
func (p *progressTracker) reportIfNeeded(currentFrames int64) {
	if !p.verbose || p.totalFrames == 0 {
		return
	}

	progress := int(float64(currentFrames) / float64(p.totalFrames) * percentScale)
	if progress >= p.lastProgress+progressInterval {
		log.Printf("Progress: %d%%", progress)
		p.lastProgress = progress
	}
}

// Command fir-wav applies the compensation FIR filter to a WAV file.
//
// The filter is selected from the compiled-in registry by the file's sample
// rate; unsupported rates fall back to the 192 kHz entry. Output keeps the
// input's rate, bit depth, and channel count.
//
// Usage:
//
//	fir-wav input.wav output.wav
//	fir-wav -v input.wav output.wav           # progress and format logging
//	fir-wav -simd=false input.wav output.wav  # force the scalar path
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	firfilter "github.com/tphakala/go-fir-filter"
)

const (
	// Frames per processing block. Large blocks amortize I/O; the engine
	// splits them internally as its delay lines require.
	bufferFrames = 8192

	// Sample format constants
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	// Full-scale PCM values
	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	// CLI constants
	minRequiredArgs  = 2
	percentScale     = 100
	progressInterval = 10 // Print progress every N%

	// WAV audio format tag for PCM
	wavFormatPCM = 1
)

func main() {
	verbose := flag.Bool("v", false, "verbose output with progress reporting")
	simd := flag.Bool("simd", true, "use the vectorized convolution path")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav output.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s speaker.wav corrected.wav        # Apply compensation filter\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -v studio_96k.wav out.wav        # 96kHz material, with progress\n", os.Args[0])
	}
	flag.Parse()

	if flag.NArg() < minRequiredArgs {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(flag.Arg(0), flag.Arg(1), *simd, *verbose); err != nil {
		log.Fatal(err)
	}
}

func run(inputPath, outputPath string, simd, verbose bool) error {
	start := time.Now()

	input, err := openWAVInput(inputPath, verbose)
	if err != nil {
		return err
	}
	defer func() { _ = input.Close() }()

	// Offline tool: no real-time constraint, so skip the standing
	// pre-allocated swap pairs.
	engine, err := firfilter.New(&firfilter.Config{
		Channels:   input.channels,
		EnableSIMD: simd,
	})
	if err != nil {
		return fmt.Errorf("failed to create filter engine: %w", err)
	}

	effective := engine.SetRate(input.rate)
	if verbose {
		log.Printf("Filter: rate=%d Hz, order=%d, simd=%v", effective, engine.Order(), simd)
	}

	outputFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = outputFile.Close() }()

	encoder := wav.NewEncoder(outputFile, input.rate, input.bitDepth, input.channels, wavFormatPCM)

	if err := processStream(input, engine, encoder, verbose); err != nil {
		return err
	}

	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to finalize output WAV: %w", err)
	}

	if verbose {
		log.Printf("Done in %v", time.Since(start).Round(time.Millisecond))
	}
	return nil
}

// processStream pumps the input through the engine block by block.
func processStream(input *wavInput, engine *firfilter.Engine, encoder *wav.Encoder, verbose bool) error {
	intBuffer := &audio.IntBuffer{
		Data:   make([]int, bufferFrames*input.channels),
		Format: input.format,
	}

	inputs := make([][]float32, input.channels)
	outputs := make([][]float32, input.channels)
	for ch := range inputs {
		inputs[ch] = make([]float32, bufferFrames)
		outputs[ch] = make([]float32, bufferFrames)
	}
	outInts := make([]int, bufferFrames*input.channels)

	maxVal := maxSampleValue(input.bitDepth)
	invMax := 1.0 / maxVal
	progress := &progressTracker{totalFrames: input.totalFrames, verbose: verbose}

	var processedFrames int64
	for {
		n, err := input.decoder.PCMBuffer(intBuffer)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if n == 0 {
			return nil
		}

		frames := deinterleave(inputs, intBuffer.Data[:n], input.channels, invMax)

		ins := make([][]float32, input.channels)
		outs := make([][]float32, input.channels)
		for ch := range ins {
			ins[ch] = inputs[ch][:frames]
			outs[ch] = outputs[ch][:frames]
		}
		if err := engine.Process(ins, outs); err != nil {
			return fmt.Errorf("filtering failed: %w", err)
		}

		outBuffer := &audio.IntBuffer{
			Data:           interleave(outInts, outs, frames, maxVal),
			Format:         input.format,
			SourceBitDepth: input.bitDepth,
		}
		if err := encoder.Write(outBuffer); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}

		processedFrames += int64(frames)
		progress.reportIfNeeded(processedFrames)
	}
}

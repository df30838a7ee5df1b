// Command fir-play streams a WAV file through the compensation filter to
// the default audio device.
//
// It is the live demonstration of the engine's host contract: the audio
// library pulls fixed-size blocks from its playback goroutine, each pull
// runs one filter cycle, and the WAV's sample rate drives filter selection
// before streaming starts.
//
// Usage:
//
//	fir-play music.wav
//	fir-play -simd=false music.wav
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	firfilter "github.com/tphakala/go-fir-filter"
)

const (
	// Frames per filter cycle. Matches a typical host quantum.
	blockFrames = 1024

	// Playback sample format scale (oto stream is signed 16-bit).
	maxInt16 = 32767.0

	bytesPerInt16 = 2

	// Poll interval while waiting for playback to finish.
	pollInterval = 50 * time.Millisecond
)

func main() {
	simd := flag.Bool("simd", true, "use the vectorized convolution path")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(flag.Arg(0), *simd); err != nil {
		log.Fatal(err)
	}
}

func run(path string, simd bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = file.Close() }()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return fmt.Errorf("invalid WAV file: %s", path)
	}

	format := decoder.Format()
	rate := format.SampleRate
	channels := format.NumChannels
	bitDepth := int(decoder.BitDepth)

	engine, err := firfilter.New(&firfilter.Config{
		Channels:    channels,
		EnableSIMD:  simd,
		Preallocate: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create filter engine: %w", err)
	}
	engine.SetRate(rate)

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize audio output: %w", err)
	}
	<-ready

	stream := newFilterStream(decoder, engine, format, channels, bitDepth)
	player := ctx.NewPlayer(stream)
	defer func() { _ = player.Close() }()

	log.Printf("Playing %s (%d Hz, %d channels) through order-%d filter",
		path, rate, channels, engine.Order())
	player.Play()

	for player.IsPlaying() {
		time.Sleep(pollInterval)
	}
	return stream.err
}

// filterStream adapts the decode→filter→PCM pipeline to the io.Reader the
// playback library pulls from. Each refill decodes one block, runs one
// engine cycle, and marshals the filtered block as interleaved int16.
type filterStream struct {
	decoder  *wav.Decoder
	engine   *firfilter.Engine
	channels int
	invMax   float64

	intBuf  *audio.IntBuffer
	inputs  [][]float32
	outputs [][]float32
	pending []byte
	buf     []byte
	err     error
}

func newFilterStream(decoder *wav.Decoder, engine *firfilter.Engine, format *audio.Format, channels, bitDepth int) *filterStream {
	maxVal := math.Pow(2, float64(bitDepth-1)) - 1

	s := &filterStream{
		decoder:  decoder,
		engine:   engine,
		channels: channels,
		invMax:   1.0 / maxVal,
		intBuf: &audio.IntBuffer{
			Data:   make([]int, blockFrames*channels),
			Format: format,
		},
		inputs:  make([][]float32, channels),
		outputs: make([][]float32, channels),
		buf:     make([]byte, blockFrames*channels*bytesPerInt16),
	}
	for ch := 0; ch < channels; ch++ {
		s.inputs[ch] = make([]float32, blockFrames)
		s.outputs[ch] = make([]float32, blockFrames)
	}
	return s
}

func (s *filterStream) Read(p []byte) (int, error) {
	if len(s.pending) == 0 {
		if err := s.refill(); err != nil {
			if err != io.EOF {
				s.err = err
			}
			return 0, err
		}
	}

	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

// refill runs one processing cycle and stages its PCM bytes.
func (s *filterStream) refill() error {
	n, err := s.decoder.PCMBuffer(s.intBuf)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if n == 0 {
		return io.EOF
	}

	frames := n / s.channels
	ins := make([][]float32, s.channels)
	outs := make([][]float32, s.channels)
	for ch := 0; ch < s.channels; ch++ {
		in := s.inputs[ch][:frames]
		for i := 0; i < frames; i++ {
			in[i] = float32(float64(s.intBuf.Data[i*s.channels+ch]) * s.invMax)
		}
		ins[ch] = in
		outs[ch] = s.outputs[ch][:frames]
	}

	if err := s.engine.Process(ins, outs); err != nil {
		return fmt.Errorf("filtering failed: %w", err)
	}

	out := s.buf[:frames*s.channels*bytesPerInt16]
	for ch := 0; ch < s.channels; ch++ {
		for i := 0; i < frames; i++ {
			v := float64(outs[ch][i]) * maxInt16
			if v > maxInt16 {
				v = maxInt16
			} else if v < -maxInt16-1 {
				v = -maxInt16 - 1
			}
			binary.LittleEndian.PutUint16(
				out[(i*s.channels+ch)*bytesPerInt16:], uint16(int16(v)))
		}
	}
	s.pending = out
	return nil
}

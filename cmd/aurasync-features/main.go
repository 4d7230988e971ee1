// aurasync-features decodes a WAV file, frames it into the byte-valued
// frequency/waveform snapshots the analysis engine consumes, and emits
// one NDJSON AudioFeatureFrame per tick. It stands in for the live
// capture layer: the tick contract is identical, only the clock is the
// file position instead of a display refresh.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
	"github.com/mjibson/go-dsp/fft"

	"github.com/KyotoVania/aurasync-engine/algorithms/window"
	"github.com/KyotoVania/aurasync-engine/analysis"
	"github.com/KyotoVania/aurasync-engine/logging"
)

// Byte-magnitude dB mapping range, matching common analyser behavior
const (
	minDecibels = -100.0
	maxDecibels = -30.0
)

func main() {
	input := flag.String("input", "", "Input WAV file path")
	bufferSize := flag.Int("buffer-size", 2048, "Snapshot length N (power of two)")
	hop := flag.Int("hop", 1024, "Hop between ticks in samples")
	pitchMethod := flag.String("pitch", analysis.PitchMethodYIN, "Pitch strategy: yin or peak")
	tempoMethod := flag.String("tempo", analysis.TempoMethodHistogram, "Tempo strategy: histogram or autocorrelation")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: aurasync-features -input file.wav [flags]")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *verbose {
		logging.SetLevel(logging.DebugLevel)
	}

	samples, sampleRate, err := readWAVMono(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %q: %v\n", *input, err)
		os.Exit(1)
	}

	config := analysis.DefaultConfig(*bufferSize)
	config.PitchMethod = *pitchMethod
	config.TempoMethod = *tempoMethod

	engine, err := analysis.NewEngine(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating engine: %v\n", err)
		os.Exit(1)
	}

	feeder := newSnapshotFeeder(*bufferSize)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	enc := json.NewEncoder(out)

	ticks := 0
	fftSize := feeder.hann.Size()
	for start := 0; start+fftSize <= len(samples); start += *hop {
		magnitudes, waveform := feeder.snapshots(samples[start : start+fftSize])
		now := float64(start) / float64(sampleRate)

		frame, err := engine.Analyze(magnitudes, waveform, sampleRate, now)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error at t=%.3fs: %v\n", now, err)
			os.Exit(1)
		}

		if err := enc.Encode(frame); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing frame: %v\n", err)
			os.Exit(1)
		}
		ticks++
	}

	logging.Debug("analysis finished", logging.Fields{
		"ticks":       ticks,
		"sample_rate": sampleRate,
		"duration_s":  float64(len(samples)) / float64(sampleRate),
	})
}

// snapshotFeeder converts a block of 2N samples into the engine's two
// length-N byte snapshots: windowed FFT magnitudes mapped through the
// dB range, and the raw waveform centered at 128.
type snapshotFeeder struct {
	size    int
	hann    *window.Hann
	scratch []float64
	mag     []byte
	wave    []byte
}

func newSnapshotFeeder(size int) *snapshotFeeder {
	return &snapshotFeeder{
		size:    size,
		hann:    window.NewHann(2 * size),
		scratch: make([]float64, 2*size),
		mag:     make([]byte, size),
		wave:    make([]byte, size),
	}
}

func (sf *snapshotFeeder) snapshots(block []float64) ([]byte, []byte) {
	copy(sf.scratch, block)
	if err := sf.hann.ApplyInPlace(sf.scratch); err != nil {
		// Block length is fixed at construction; this cannot fail.
		panic(err)
	}

	spectrum := fft.FFTReal(sf.scratch)
	norm := 2.0 / float64(len(sf.scratch))
	for i := range sf.size {
		m := math.Hypot(real(spectrum[i]), imag(spectrum[i])) * norm

		db := minDecibels
		if m > 0 {
			db = 20.0 * math.Log10(m)
		}
		scaled := 255.0 * (db - minDecibels) / (maxDecibels - minDecibels)
		sf.mag[i] = byte(math.Round(math.Max(0, math.Min(255, scaled))))
	}

	for i := range sf.size {
		s := block[i]
		sf.wave[i] = byte(math.Round(math.Max(0, math.Min(255, 128.0+s*127.0))))
	}

	return sf.mag, sf.wave
}

// readWAVMono decodes a WAV file and downmixes it to one float channel
// in [-1,1].
func readWAVMono(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid wav file: %s", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, 0, fmt.Errorf("invalid wav buffer: %s", path)
	}

	return downmix(buf), buf.Format.SampleRate, nil
}

// downmix averages the interleaved channels into one float64 channel.
// The decoder already delivers normalized samples in [-1,1].
func downmix(buf *audio.Float32Buffer) []float64 {
	ch := buf.Format.NumChannels
	frames := len(buf.Data) / ch
	out := make([]float64, frames)
	for i := range frames {
		var sum float64
		for c := range ch {
			sum += float64(buf.Data[i*ch+c])
		}
		out[i] = sum / float64(ch)
	}
	return out
}

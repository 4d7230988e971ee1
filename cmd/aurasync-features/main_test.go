package main

import (
	"math"
	"testing"

	"github.com/go-audio/audio"
)

func TestDownmixAveragesChannels(t *testing.T) {
	buf := &audio.Float32Buffer{
		Format: &audio.Format{NumChannels: 2, SampleRate: 44100},
		Data:   []float32{0.5, -0.5, 1.0, 0.0, -0.25, -0.75},
	}

	out := downmix(buf)
	want := []float64{0.0, 0.5, -0.5}
	if len(out) != len(want) {
		t.Fatalf("frame count = %d, want %d", len(out), len(want))
	}
	for i, w := range want {
		if math.Abs(out[i]-w) > 1e-9 {
			t.Errorf("frame %d = %f, want %f", i, out[i], w)
		}
	}
}

func TestDownmixMonoPassthrough(t *testing.T) {
	buf := &audio.Float32Buffer{
		Format: &audio.Format{NumChannels: 1, SampleRate: 44100},
		Data:   []float32{0.25, -0.125},
	}

	out := downmix(buf)
	if len(out) != 2 || math.Abs(out[0]-0.25) > 1e-9 || math.Abs(out[1]+0.125) > 1e-9 {
		t.Fatalf("mono downmix = %v, want [0.25 -0.125]", out)
	}
}

func TestSnapshotsPeakBin(t *testing.T) {
	const (
		size       = 1024
		sampleRate = 44100
		freq       = 880.0
	)

	feeder := newSnapshotFeeder(size)
	block := make([]float64, 2*size)
	for i := range block {
		block[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
	}

	mags, wave := feeder.snapshots(block)
	if len(mags) != size || len(wave) != size {
		t.Fatalf("snapshot lengths = %d/%d, want %d", len(mags), len(wave), size)
	}

	peakBin := 0
	for i, m := range mags {
		if m > mags[peakBin] {
			peakBin = i
		}
	}
	wantBin := int(math.Round(freq / (float64(sampleRate) / 2 / size)))
	if peakBin < wantBin-1 || peakBin > wantBin+1 {
		t.Errorf("peak bin = %d, want ~%d", peakBin, wantBin)
	}

	// Waveform bytes stay centered at 128 with full-scale swing
	lo, hi := wave[0], wave[0]
	for _, s := range wave {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	if lo > 10 || hi < 245 {
		t.Errorf("waveform byte range [%d, %d], want near full scale", lo, hi)
	}
}

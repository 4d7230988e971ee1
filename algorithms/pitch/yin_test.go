package pitch

import (
	"math"
	"testing"
)

const testSampleRate = 44100

func sineFrame(freq float64, length int) Frame {
	wave := make([]float64, length)
	for i := range wave {
		wave[i] = math.Sin(2 * math.Pi * freq * float64(i) / testSampleRate)
	}
	return Frame{Waveform: wave, SampleRate: testSampleRate}
}

func TestYINTracksPureSine(t *testing.T) {
	yin, err := NewYIN(DefaultYINParams())
	if err != nil {
		t.Fatalf("NewYIN: %v", err)
	}

	cases := []float64{110, 220, 440, 880}
	for _, freq := range cases {
		got := yin.Estimate(sineFrame(freq, 2048))

		if math.Abs(got.Frequency-freq) > freq*0.01 {
			t.Fatalf("%gHz sine: estimated %f, want within 1%%", freq, got.Frequency)
		}
		if got.Probability <= 0.8 {
			t.Fatalf("%gHz sine: probability %f, want > 0.8", freq, got.Probability)
		}
	}
}

func TestYINRejectsSilence(t *testing.T) {
	yin, err := NewYIN(DefaultYINParams())
	if err != nil {
		t.Fatalf("NewYIN: %v", err)
	}

	got := yin.Estimate(Frame{Waveform: make([]float64, 2048), SampleRate: testSampleRate})
	if got.Frequency != 0 || got.Probability != 0 {
		t.Fatalf("silence estimated as %+v, want zero estimate", got)
	}
}

func TestYINRejectsShortFrame(t *testing.T) {
	yin, err := NewYIN(DefaultYINParams())
	if err != nil {
		t.Fatalf("NewYIN: %v", err)
	}

	got := yin.Estimate(sineFrame(440, 1024))
	if got.Frequency != 0 {
		t.Fatalf("short frame estimated as %+v, want zero estimate", got)
	}
}

func TestYINConstructionFailsFast(t *testing.T) {
	cases := []struct {
		name   string
		params YINParams
	}{
		{"non-power-of-two window", YINParams{WindowSize: 1000, Threshold: 0.15}},
		{"tiny window", YINParams{WindowSize: 32, Threshold: 0.15}},
		{"zero threshold", YINParams{WindowSize: 2048, Threshold: 0}},
		{"threshold above one", YINParams{WindowSize: 2048, Threshold: 1.5}},
	}

	for _, tc := range cases {
		if _, err := NewYIN(tc.params); err == nil {
			t.Fatalf("%s: expected construction error", tc.name)
		}
	}
}

func TestAdaptiveThresholdBounds(t *testing.T) {
	params := DefaultYINParams()
	params.AdaptThreshold = true
	yin, err := NewYIN(params)
	if err != nil {
		t.Fatalf("NewYIN: %v", err)
	}

	// Clean loud signal tightens, noisy signal loosens, both clamped
	clean := yin.threshold(Frame{Volume: 1.0, Flux: 0.0})
	noisy := yin.threshold(Frame{Volume: 0.1, Flux: 1.0})
	if clean >= noisy {
		t.Fatalf("clean threshold %f should sit below noisy threshold %f", clean, noisy)
	}
	if clean < 0.05 || noisy > 0.5 {
		t.Fatalf("thresholds escaped clamp: clean=%f noisy=%f", clean, noisy)
	}
}

func TestPeakEstimatorUsesSpectrum(t *testing.T) {
	pe := NewPeakEstimator()
	n := 2048
	freqPerBin := float64(testSampleRate) / 2.0 / float64(n)

	mag := make([]byte, n)
	bin := int(math.Round(440 / freqPerBin))
	mag[bin] = 230

	got := pe.Estimate(Frame{Magnitudes: mag, SampleRate: testSampleRate})
	if math.Abs(got.Frequency-440) > freqPerBin {
		t.Fatalf("peak estimator frequency = %f, want ~440", got.Frequency)
	}
	if got.Probability <= 0.8 {
		t.Fatalf("peak estimator probability = %f, want > 0.8", got.Probability)
	}

	if zero := pe.Estimate(Frame{Magnitudes: make([]byte, n), SampleRate: testSampleRate}); zero.Frequency != 0 {
		t.Fatalf("silent spectrum estimated as %+v, want zero", zero)
	}
}

package analysis

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/KyotoVania/aurasync-engine/algorithms/spectral"
)

const (
	testBufferSize = 2048
	testSampleRate = 44100
)

// toneSnapshots builds matching frequency and waveform snapshots for a
// single tone at the given amplitude in [0,1].
func toneSnapshots(freq, amp float64) (mags, wave []byte) {
	mags = make([]byte, testBufferSize)
	wave = make([]byte, testBufferSize)

	freqPerBin := float64(testSampleRate) / 2.0 / float64(testBufferSize)
	bin := int(math.Round(freq / freqPerBin))
	mags[bin] = byte(math.Round(200 * amp))
	mags[bin-1] = byte(math.Round(120 * amp))
	mags[bin+1] = byte(math.Round(120 * amp))

	for i := range wave {
		s := amp * math.Sin(2*math.Pi*freq*float64(i)/float64(testSampleRate))
		wave[i] = byte(math.Round(128 + 100*s))
	}
	return mags, wave
}

func silentSnapshots() (mags, wave []byte) {
	mags = make([]byte, testBufferSize)
	wave = make([]byte, testBufferSize)
	for i := range wave {
		wave[i] = 128
	}
	return mags, wave
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"peak pitch", func(c *Config) { c.PitchMethod = PitchMethodPeak }, ""},
		{"autocorrelation tempo", func(c *Config) { c.TempoMethod = TempoMethodAutocorrelation }, ""},
		{"non power of two", func(c *Config) { c.BufferSize = 1000 }, "power of two"},
		{"too small", func(c *Config) { c.BufferSize = 16 }, "power of two"},
		{"yin window exceeds buffer", func(c *Config) {
			c.BufferSize = 1024
			c.YIN.WindowSize = 2048
		}, "yin window"},
		{"unknown pitch method", func(c *Config) { c.PitchMethod = "cepstrum" }, "pitch method"},
		{"unknown tempo method", func(c *Config) { c.TempoMethod = "combfilter" }, "tempo method"},
		{"inverted bpm range", func(c *Config) {
			c.Rhythm.MinBPM = 200
			c.Rhythm.MaxBPM = 60
		}, "BPM range"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			config := DefaultConfig(testBufferSize)
			c.mutate(&config)
			err := config.Validate()
			if c.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), c.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, c.wantErr)
			}
		})
	}
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	config := DefaultConfig(1000)
	if _, err := NewEngine(config); err == nil {
		t.Fatal("expected construction to fail on invalid buffer size")
	}
}

func TestAnalyzeInputErrors(t *testing.T) {
	e, err := NewEngine(DefaultConfig(testBufferSize))
	if err != nil {
		t.Fatal(err)
	}
	mags, wave := silentSnapshots()

	if _, err := e.Analyze(mags[:100], wave, testSampleRate, 0); err == nil {
		t.Error("short magnitude snapshot accepted")
	}
	if _, err := e.Analyze(mags, wave[:100], testSampleRate, 0); err == nil {
		t.Error("short waveform snapshot accepted")
	}
	if _, err := e.Analyze(mags, wave, 0, 0); err == nil {
		t.Error("zero sample rate accepted")
	}
}

func TestAnalyzeSilentFrame(t *testing.T) {
	e, err := NewEngine(DefaultConfig(testBufferSize))
	if err != nil {
		t.Fatal(err)
	}

	mags, wave := silentSnapshots()
	frame, err := e.Analyze(mags, wave, testSampleRate, 0.5)
	if err != nil {
		t.Fatal(err)
	}

	if !frame.Silent {
		t.Fatal("all-zero spectrum not flagged silent")
	}
	if frame.Time != 0.5 {
		t.Errorf("time = %f, want 0.5", frame.Time)
	}
	if frame.Volume != 0 || frame.Energy != 0 || frame.NormalizedEnergy != 0 {
		t.Errorf("silent frame carries loudness: vol=%f energy=%f norm=%f",
			frame.Volume, frame.Energy, frame.NormalizedEnergy)
	}
	var zeroBands spectral.BandEnergies
	if frame.Bands != zeroBands || frame.RawBands != zeroBands {
		t.Errorf("silent frame carries band energy: %+v", frame.Bands)
	}
	if frame.Transients.Bass || frame.Transients.Mid || frame.Transients.Treble || frame.Transients.Overall {
		t.Errorf("silent frame carries transients: %+v", frame.Transients)
	}
	if frame.Melodic.DominantNote.MIDI != -1 {
		t.Errorf("silent frame dominant note MIDI = %d, want -1", frame.Melodic.DominantNote.MIDI)
	}
	if frame.Tonal.DominantChroma != -1 || frame.Tonal.Key.PitchClass != -1 {
		t.Errorf("silent frame tonal sentinels missing: %+v", frame.Tonal)
	}
}

func TestAnalyzeTone(t *testing.T) {
	e, err := NewEngine(DefaultConfig(testBufferSize))
	if err != nil {
		t.Fatal(err)
	}

	mags, wave := toneSnapshots(440, 1.0)
	frame, err := e.Analyze(mags, wave, testSampleRate, 0)
	if err != nil {
		t.Fatal(err)
	}

	if frame.Silent {
		t.Fatal("full-scale tone flagged silent")
	}
	if frame.Volume <= 0.3 {
		t.Errorf("tone volume = %f, want well above zero", frame.Volume)
	}
	for name, v := range map[string]float64{
		"bass":   frame.Bands.Bass,
		"mid":    frame.Bands.Mid,
		"treble": frame.Bands.Treble,
		"energy": frame.NormalizedEnergy,
	} {
		if v < 0 || v > 1 {
			t.Errorf("normalized %s = %f escaped [0,1]", name, v)
		}
	}
	if frame.Bands.Bass != 0 {
		t.Errorf("440 Hz tone produced bass energy %f", frame.RawBands.Bass)
	}
	if frame.RawBands.Mid <= 0 {
		t.Error("440 Hz tone produced no mid-band energy")
	}

	if frame.Melodic.DominantNote.Name != "A" || frame.Melodic.DominantNote.MIDI != 69 {
		t.Errorf("dominant note = %+v, want A4 (midi 69)", frame.Melodic.DominantNote)
	}
	if diff := math.Abs(frame.Pitch.Frequency - 440); diff > 4.4 {
		t.Errorf("pitch = %f Hz, want 440 within 1%%", frame.Pitch.Frequency)
	}
	if frame.Pitch.Probability <= 0.8 {
		t.Errorf("pitch probability = %f, want > 0.8", frame.Pitch.Probability)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	a, err := NewEngine(DefaultConfig(testBufferSize))
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewEngine(DefaultConfig(testBufferSize))
	if err != nil {
		t.Fatal(err)
	}

	for i := range 200 {
		now := float64(i) * 0.02

		var mags, wave []byte
		switch {
		case i%10 < 2:
			mags, wave = silentSnapshots()
		case i%10 < 6:
			mags, wave = toneSnapshots(440, 0.4+0.1*float64(i%4))
		default:
			mags, wave = toneSnapshots(880, 0.8)
		}

		fa, err := a.Analyze(mags, wave, testSampleRate, now)
		if err != nil {
			t.Fatal(err)
		}
		fb, err := b.Analyze(mags, wave, testSampleRate, now)
		if err != nil {
			t.Fatal(err)
		}

		if !reflect.DeepEqual(fa, fb) {
			t.Fatalf("tick %d: engines diverged:\n%+v\n%+v", i, fa, fb)
		}
	}
}

func TestResetRestoresFreshState(t *testing.T) {
	warmed, err := NewEngine(DefaultConfig(testBufferSize))
	if err != nil {
		t.Fatal(err)
	}
	fresh, err := NewEngine(DefaultConfig(testBufferSize))
	if err != nil {
		t.Fatal(err)
	}

	// Warm up the adaptive state, then wipe it
	for i := range 100 {
		mags, wave := toneSnapshots(880, 0.9)
		if _, err := warmed.Analyze(mags, wave, testSampleRate, float64(i)*0.02); err != nil {
			t.Fatal(err)
		}
	}
	warmed.Reset()

	for i := range 50 {
		now := float64(i) * 0.02
		mags, wave := toneSnapshots(440, 0.5)

		fw, err := warmed.Analyze(mags, wave, testSampleRate, now)
		if err != nil {
			t.Fatal(err)
		}
		ff, err := fresh.Analyze(mags, wave, testSampleRate, now)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(fw, ff) {
			t.Fatalf("tick %d: reset engine diverged from fresh engine:\n%+v\n%+v", i, fw, ff)
		}
	}
}

// Package melodic extracts pitch-related features from the magnitude
// spectrum: dominant frequency, the nearest musical note, a 12-bin
// chroma vector built from harmonics, and a harmonic-content ratio.
package melodic

import (
	"github.com/KyotoVania/aurasync-engine/algorithms/common"
)

// Features holds the per-frame melodic output. PitchClass always has 12
// entries; they sum to 1 when NoteConfidence > 0 and to 0 otherwise.
type Features struct {
	DominantFrequency float64     `json:"dominant_frequency"`
	DominantNote      Note        `json:"dominant_note"`
	NoteConfidence    float64     `json:"note_confidence"`
	HarmonicContent   float64     `json:"harmonic_content"`
	PitchClass        [12]float64 `json:"pitch_class"`
}

// Params contains the melodic search bounds and gates
type Params struct {
	// MinFreq and MaxFreq bound the dominant-peak search in Hz
	MinFreq float64 `json:"min_freq"`
	MaxFreq float64 `json:"max_freq"`
	// MinMagnitude is the raw peak magnitude (0-255) below which the
	// frame is considered unpitched
	MinMagnitude float64 `json:"min_magnitude"`
	// MaxHarmonic is the highest harmonic projected into the chroma
	// vector (the fundamental is harmonic 1)
	MaxHarmonic int `json:"max_harmonic"`
}

// DefaultParams returns the default melodic parameters
func DefaultParams() Params {
	return Params{
		MinFreq:      80.0,
		MaxFreq:      2000.0,
		MinMagnitude: 10.0,
		MaxHarmonic:  6,
	}
}

// Analyzer finds the dominant spectral peak with parabolic sub-bin
// refinement and projects its harmonics onto pitch classes. Stateless;
// each frame is analyzed independently.
type Analyzer struct {
	params Params
}

// NewAnalyzer creates a melodic analyzer with default parameters
func NewAnalyzer() *Analyzer {
	return NewAnalyzerWithParams(DefaultParams())
}

// NewAnalyzerWithParams creates a melodic analyzer
func NewAnalyzerWithParams(params Params) *Analyzer {
	return &Analyzer{params: params}
}

// Analyze extracts the melodic features for one frame.
func (a *Analyzer) Analyze(magnitudes []byte, sampleRate int) Features {
	n := len(magnitudes)
	if n < 3 || sampleRate <= 0 {
		return Features{DominantNote: Note{MIDI: -1, PitchClass: -1}}
	}

	nyquist := float64(sampleRate) / 2.0
	freqPerBin := nyquist / float64(n)

	loBin := int(a.params.MinFreq / freqPerBin)
	hiBin := int(a.params.MaxFreq / freqPerBin)
	if loBin < 1 {
		loBin = 1
	}
	if hiBin > n-2 {
		hiBin = n - 2
	}

	peakBin := -1
	peakMag := 0.0
	for i := loBin; i <= hiBin; i++ {
		if m := float64(magnitudes[i]); m > peakMag {
			peakMag = m
			peakBin = i
		}
	}

	if peakBin < 1 || peakMag < a.params.MinMagnitude {
		return Features{DominantNote: Note{MIDI: -1, PitchClass: -1}}
	}

	// Sub-bin precision from the 3 bins centered on the peak
	y1 := float64(magnitudes[peakBin-1])
	y2 := float64(magnitudes[peakBin])
	y3 := float64(magnitudes[peakBin+1])
	offset := common.ParabolicPeakOffset(y1, y2, y3)

	freq := (float64(peakBin) + offset) * freqPerBin
	confidence := peakMag / 255.0

	features := Features{
		DominantFrequency: freq,
		DominantNote:      FrequencyToNote(freq),
		NoteConfidence:    confidence,
	}

	features.PitchClass, features.HarmonicContent =
		a.harmonics(magnitudes, freq, confidence, freqPerBin, nyquist)

	return features
}

// harmonics projects the fundamental and its upper harmonics onto pitch
// classes (each harmonic weighted by 1/h) and measures how much energy
// the upper harmonics carry relative to the fundamental.
func (a *Analyzer) harmonics(magnitudes []byte, fundamental, confidence, freqPerBin, nyquist float64) ([12]float64, float64) {
	var chroma [12]float64
	harmonicEnergy := 0.0

	for h := 1; h <= a.params.MaxHarmonic; h++ {
		freq := fundamental * float64(h)
		if freq >= nyquist {
			break
		}

		bin := int(freq / freqPerBin)
		if bin < 1 || bin >= len(magnitudes) {
			continue
		}

		mag := float64(magnitudes[bin]) / 255.0
		midi := FrequencyToMIDI(freq)
		if midi < 0 {
			continue
		}

		pc := ((midi % 12) + 12) % 12
		chroma[pc] += mag / float64(h)

		if h >= 2 {
			harmonicEnergy += mag
		}
	}

	sum := 0.0
	for _, v := range chroma {
		sum += v
	}
	if sum > 0 {
		for i := range chroma {
			chroma[i] /= sum
		}
	}

	content := 0.0
	if confidence > 0 {
		content = harmonicEnergy / (confidence * 5.0)
		if content > 1.0 {
			content = 1.0
		}
	}

	return chroma, content
}

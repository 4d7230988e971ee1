// Package spectral computes the per-frame loudness, band-energy and
// spectral-shape features from byte-valued frequency/waveform snapshots.
package spectral

import (
	"math"
)

// Band frequency boundaries in Hz
const (
	BassCutoffHz = 250.0
	MidCutoffHz  = 4000.0
)

// BandEnergies holds the bass/mid/treble scalar energies in [0,1]
type BandEnergies struct {
	Bass   float64 `json:"bass"`
	Mid    float64 `json:"mid"`
	Treble float64 `json:"treble"`
}

// BasicsParams contains parameters for the basic spectral measurements
type BasicsParams struct {
	// SilenceFloor is the raw magnitude (0-255) below which a frame is
	// treated as silent when no bin exceeds it
	SilenceFloor float64 `json:"silence_floor"`
}

// DefaultBasicsParams returns the default basic-measurement parameters
func DefaultBasicsParams() BasicsParams {
	return BasicsParams{
		SilenceFloor: 5.0,
	}
}

// Basics computes volume, overall energy and perceptually weighted band
// energies from the raw snapshots. It is stateless; every measurement is
// a pure function of the current frame.
type Basics struct {
	params BasicsParams
}

// NewBasics creates a basic-measurement analyzer with default parameters
func NewBasics() *Basics {
	return NewBasicsWithParams(DefaultBasicsParams())
}

// NewBasicsWithParams creates a basic-measurement analyzer
func NewBasicsWithParams(params BasicsParams) *Basics {
	return &Basics{params: params}
}

// IsSilent reports whether no magnitude bin exceeds the silence floor.
// Silent frames short-circuit the adaptive estimators upstream.
func (b *Basics) IsSilent(magnitudes []byte) bool {
	for _, m := range magnitudes {
		if float64(m) >= b.params.SilenceFloor {
			return false
		}
	}
	return true
}

// Volume computes the RMS of the waveform snapshot with samples mapped
// from byte range (centered at 128) to [-1,1].
func (b *Basics) Volume(waveform []byte) float64 {
	if len(waveform) == 0 {
		return 0.0
	}

	sumSquares := 0.0
	for _, s := range waveform {
		v := (float64(s) - 128.0) / 128.0
		sumSquares += v * v
	}

	return math.Sqrt(sumSquares / float64(len(waveform)))
}

// Energy computes the RMS of the normalized magnitude bins. The DC bin
// and the Nyquist-adjacent top bin are excluded.
func (b *Basics) Energy(magnitudes []byte) float64 {
	if len(magnitudes) < 3 {
		return 0.0
	}

	sumSquares := 0.0
	count := 0
	for i := 1; i < len(magnitudes)-1; i++ {
		m := float64(magnitudes[i]) / 255.0
		sumSquares += m * m
		count++
	}

	if count == 0 {
		return 0.0
	}
	return math.Sqrt(sumSquares / float64(count))
}

// Bands splits the spectrum into bass/mid/treble energies, weighting each
// bin's contribution by the A-weighting curve at the bin frequency. Each
// band value is the weighted average of its normalized magnitudes.
func (b *Basics) Bands(magnitudes []byte, sampleRate int) BandEnergies {
	n := len(magnitudes)
	if n < 3 || sampleRate <= 0 {
		return BandEnergies{}
	}

	freqPerBin := float64(sampleRate) / 2.0 / float64(n)

	var sums, weights [3]float64
	for i := 1; i < n-1; i++ {
		freq := float64(i) * freqPerBin
		w := AWeight(freq)
		m := float64(magnitudes[i]) / 255.0

		var band int
		switch {
		case freq <= BassCutoffHz:
			band = 0
		case freq <= MidCutoffHz:
			band = 1
		default:
			band = 2
		}

		sums[band] += m * w
		weights[band] += w
	}

	bandValue := func(idx int) float64 {
		if weights[idx] <= 0 {
			return 0.0
		}
		return sums[idx] / weights[idx]
	}

	return BandEnergies{
		Bass:   bandValue(0),
		Mid:    bandValue(1),
		Treble: bandValue(2),
	}
}

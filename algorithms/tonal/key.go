// Package tonal derives timbre descriptors and the musical key/mode from
// the spectral-shape and melodic features of a frame.
package tonal

import (
	"gonum.org/v1/gonum/stat"

	"github.com/KyotoVania/aurasync-engine/algorithms/melodic"
)

// Mode is the detected key mode
type Mode int

const (
	ModeUnknown Mode = iota
	ModeMajor
	ModeMinor
)

func (m Mode) String() string {
	switch m {
	case ModeMajor:
		return "major"
	case ModeMinor:
		return "minor"
	default:
		return "unknown"
	}
}

// MarshalText renders the mode for JSON output
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Key is a key/mode detection result. Mode is ModeUnknown (and
// Confidence 0) when the best template correlation stays under the
// confidence floor.
type Key struct {
	PitchClass int     `json:"pitch_class"`
	Name       string  `json:"name"`
	Mode       Mode    `json:"mode"`
	Confidence float64 `json:"confidence"`
}

// Krumhansl-Schmuckler key profiles, empirically derived from listener
// probe-tone ratings. Index 0 corresponds to the tonic.
var (
	majorProfile = []float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88}
	minorProfile = []float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17}
)

// detectKey correlates the chroma vector against the 12 rotations of
// each mode profile (Pearson, via gonum) and returns the best pair.
func detectKey(chroma [12]float64, confidenceFloor float64) Key {
	sum := 0.0
	for _, v := range chroma {
		sum += v
	}
	if sum <= 0 {
		return Key{PitchClass: -1, Mode: ModeUnknown}
	}

	values := chroma[:]
	rotated := make([]float64, 12)

	best := Key{PitchClass: -1, Mode: ModeUnknown}
	bestCorr := -2.0

	for _, candidate := range []struct {
		mode    Mode
		profile []float64
	}{
		{ModeMajor, majorProfile},
		{ModeMinor, minorProfile},
	} {
		for tonic := range 12 {
			for i := range 12 {
				rotated[i] = candidate.profile[((i-tonic)%12+12)%12]
			}

			corr := stat.Correlation(values, rotated, nil)
			if corr > bestCorr {
				bestCorr = corr
				best = Key{
					PitchClass: tonic,
					Name:       melodic.PitchClassName(tonic),
					Mode:       candidate.mode,
					Confidence: corr,
				}
			}
		}
	}

	if bestCorr < confidenceFloor {
		return Key{PitchClass: -1, Mode: ModeUnknown}
	}
	return best
}

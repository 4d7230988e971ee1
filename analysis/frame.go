package analysis

import (
	"github.com/KyotoVania/aurasync-engine/algorithms/dynamics"
	"github.com/KyotoVania/aurasync-engine/algorithms/melodic"
	"github.com/KyotoVania/aurasync-engine/algorithms/pitch"
	"github.com/KyotoVania/aurasync-engine/algorithms/rhythm"
	"github.com/KyotoVania/aurasync-engine/algorithms/spectral"
	"github.com/KyotoVania/aurasync-engine/algorithms/tonal"
)

// AudioFeatureFrame is the engine's only externally visible artifact:
// one immutable bundle of features per analysis tick. All numeric fields
// are finite and range-bounded; PitchClass always has 12 entries.
type AudioFeatureFrame struct {
	// Time is the caller-supplied monotonic timestamp in seconds
	Time float64 `json:"time"`
	// Silent marks frames below the silence floor, emitted with zeroed
	// loudness features and decaying drop/rhythm state
	Silent bool `json:"silent"`

	// Volume is the RMS of the time-domain snapshot
	Volume float64 `json:"volume"`
	// Energy is the RMS of the normalized magnitude bins
	Energy float64 `json:"energy"`
	// NormalizedEnergy is Energy rescaled against its adaptive envelope
	NormalizedEnergy float64 `json:"normalized_energy"`

	// RawBands are the A-weighted band energies before normalization
	RawBands spectral.BandEnergies `json:"raw_bands"`
	// Bands are the band energies after dynamic-range normalization
	Bands spectral.BandEnergies `json:"bands"`

	Transients    dynamics.Transients    `json:"transients"`
	DropIntensity float64                `json:"drop_intensity"`
	Spectral      spectral.ShapeFeatures `json:"spectral"`
	Melodic       melodic.Features       `json:"melodic"`
	Pitch         pitch.Estimate         `json:"pitch"`
	Rhythm        rhythm.Features        `json:"rhythm"`
	Tonal         tonal.Features         `json:"tonal"`
}

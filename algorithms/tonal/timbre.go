package tonal

import (
	"github.com/KyotoVania/aurasync-engine/algorithms/common"
	"github.com/KyotoVania/aurasync-engine/algorithms/melodic"
	"github.com/KyotoVania/aurasync-engine/algorithms/spectral"
)

// Features holds the per-frame timbre descriptors and key detection.
// All scalar descriptors are in [0,1].
type Features struct {
	Brightness         float64 `json:"brightness"`
	Warmth             float64 `json:"warmth"`
	Richness           float64 `json:"richness"`
	Clarity            float64 `json:"clarity"`
	Attack             float64 `json:"attack"`
	DominantChroma     int     `json:"dominant_chroma"`
	HarmonicComplexity float64 `json:"harmonic_complexity"`
	Tension            float64 `json:"tension"`
	Key                Key     `json:"key"`
}

// Params contains the timbre/key analysis constants
type Params struct {
	// KeyConfidenceFloor is the minimum template correlation for a key
	// to be reported; below it the mode is unknown
	KeyConfidenceFloor float64 `json:"key_confidence_floor"`
}

// DefaultParams returns the default timbre/key parameters
func DefaultParams() Params {
	return Params{
		KeyConfidenceFloor: 0.6,
	}
}

// Analyzer derives timbre and key from the frame's spectral-shape and
// melodic outputs. It runs last in the per-frame pipeline. Stateless.
type Analyzer struct {
	params Params
}

// NewAnalyzer creates a timbre/key analyzer with default parameters
func NewAnalyzer() *Analyzer {
	return NewAnalyzerWithParams(DefaultParams())
}

// NewAnalyzerWithParams creates a timbre/key analyzer
func NewAnalyzerWithParams(params Params) *Analyzer {
	return &Analyzer{params: params}
}

// Analyze maps the upstream features to timbre descriptors and runs key
// detection on the chroma vector.
func (a *Analyzer) Analyze(shape spectral.ShapeFeatures, mel melodic.Features) Features {
	chroma := mel.PitchClass

	dominant := -1
	peak := 0.0
	for i, v := range chroma {
		if v > peak {
			peak = v
			dominant = i
		}
	}

	// Chroma variance scaled into [0,1]: 1/12 of the mass in every class
	// gives 0, all mass in one class approaches 1.
	complexity := common.Clamp(common.Variance(chroma[:])*12.0, 0.0, 1.0)

	features := Features{
		Brightness:         shape.Centroid,
		Warmth:             1.0 - shape.Centroid,
		Richness:           mel.HarmonicContent,
		Clarity:            common.Clamp(1.0-shape.Spread, 0.0, 1.0),
		Attack:             shape.Flux,
		DominantChroma:     dominant,
		HarmonicComplexity: complexity,
		Key:                detectKey(chroma, a.params.KeyConfidenceFloor),
	}

	features.Tension = a.tension(chroma, dominant, complexity)
	return features
}

// tension weighs the chroma energy at dissonant intervals from the
// dominant chroma (minor 2nd, tritone, minor 7th) and blends in the
// harmonic complexity: tension = clamp(0.7*3*dissonance + 0.3*complexity).
func (a *Analyzer) tension(chroma [12]float64, dominant int, complexity float64) float64 {
	if dominant < 0 {
		return 0.0
	}

	dissonance := chroma[(dominant+1)%12]*1.0 +
		chroma[(dominant+6)%12]*1.2 +
		chroma[(dominant+10)%12]*0.8

	return common.Clamp(0.7*dissonance*3.0+0.3*complexity, 0.0, 1.0)
}

package pitch

import (
	"github.com/KyotoVania/aurasync-engine/algorithms/melodic"
)

// PeakEstimator estimates pitch from the dominant magnitude-spectrum
// peak, reusing the melodic analyzer's parabolic peak refinement. Less
// precise than YIN at low frequencies but far cheaper per tick.
type PeakEstimator struct {
	analyzer *melodic.Analyzer
}

// NewPeakEstimator creates a spectral-peak pitch estimator
func NewPeakEstimator() *PeakEstimator {
	return &PeakEstimator{analyzer: melodic.NewAnalyzer()}
}

// NewPeakEstimatorWithParams creates a spectral-peak pitch estimator
// with custom search bounds
func NewPeakEstimatorWithParams(params melodic.Params) *PeakEstimator {
	return &PeakEstimator{analyzer: melodic.NewAnalyzerWithParams(params)}
}

// Estimate returns the dominant peak frequency and its magnitude-derived
// confidence.
func (pe *PeakEstimator) Estimate(frame Frame) Estimate {
	features := pe.analyzer.Analyze(frame.Magnitudes, frame.SampleRate)
	if features.DominantFrequency <= 0 {
		return Estimate{}
	}

	return Estimate{
		Frequency:   features.DominantFrequency,
		Probability: features.NoteConfidence,
	}
}

package spectral

import (
	"math"
)

// ShapeFeatures holds the spectral-shape descriptors, each in [0,1].
// Centroid, spread and rolloff are normalized by the Nyquist frequency.
type ShapeFeatures struct {
	Centroid float64 `json:"centroid"`
	Spread   float64 `json:"spread"`
	Flux     float64 `json:"flux"`
	Rolloff  float64 `json:"rolloff"`
}

// ShapeParams contains parameters for spectral-shape analysis
type ShapeParams struct {
	// FluxScale divides the summed positive magnitude growth before
	// clamping flux into [0,1]
	FluxScale float64 `json:"flux_scale"`
	// RolloffThreshold is the cumulative-energy fraction defining rolloff
	RolloffThreshold float64 `json:"rolloff_threshold"`
}

// DefaultShapeParams returns the default spectral-shape parameters
func DefaultShapeParams() ShapeParams {
	return ShapeParams{
		FluxScale:        10.0,
		RolloffThreshold: 0.85,
	}
}

// Shape computes centroid, spread, flux and rolloff from the magnitude
// spectrum. It owns the previous frame's normalized magnitudes for the
// flux computation: a one-frame lookback, overwritten on every call.
type Shape struct {
	params  ShapeParams
	prevMag []float64
}

// NewShape creates a spectral-shape analyzer with default parameters
func NewShape() *Shape {
	return NewShapeWithParams(DefaultShapeParams())
}

// NewShapeWithParams creates a spectral-shape analyzer
func NewShapeWithParams(params ShapeParams) *Shape {
	return &Shape{params: params}
}

// Compute derives the shape features for the current frame and records
// the frame as the lookback for the next flux computation.
func (s *Shape) Compute(magnitudes []byte, sampleRate int) ShapeFeatures {
	n := len(magnitudes)
	if n < 3 || sampleRate <= 0 {
		s.prevMag = nil
		return ShapeFeatures{}
	}

	nyquist := float64(sampleRate) / 2.0
	freqPerBin := nyquist / float64(n)

	mag := make([]float64, n)
	for i, m := range magnitudes {
		mag[i] = float64(m) / 255.0
	}
	mag[0] = 0 // DC discarded

	var magSum, weightedSum float64
	for i := 1; i < n; i++ {
		magSum += mag[i]
		weightedSum += mag[i] * float64(i) * freqPerBin
	}

	features := ShapeFeatures{}

	if magSum > 0 {
		centroidHz := weightedSum / magSum
		features.Centroid = centroidHz / nyquist

		variance := 0.0
		for i := 1; i < n; i++ {
			d := float64(i)*freqPerBin - centroidHz
			variance += mag[i] * d * d
		}
		features.Spread = math.Sqrt(variance/magSum) / nyquist

		features.Rolloff = s.rolloff(mag, magSum, freqPerBin, nyquist)
	}

	features.Flux = s.flux(mag)

	s.prevMag = mag
	return features
}

// Reset discards the one-frame lookback.
func (s *Shape) Reset() {
	s.prevMag = nil
}

// flux sums half-wave rectified magnitude growth against the previous
// frame: only positive spectral change counts.
func (s *Shape) flux(mag []float64) float64 {
	if len(s.prevMag) != len(mag) {
		return 0.0
	}

	sum := 0.0
	for i := 1; i < len(mag); i++ {
		diff := mag[i] - s.prevMag[i]
		if diff > 0 {
			sum += diff
		}
	}

	flux := sum / s.params.FluxScale
	if flux > 1.0 {
		flux = 1.0
	}
	return flux
}

// rolloff finds the normalized frequency under which the cumulative
// magnitude first reaches the configured fraction of the total.
func (s *Shape) rolloff(mag []float64, magSum, freqPerBin, nyquist float64) float64 {
	target := s.params.RolloffThreshold * magSum

	cumulative := 0.0
	for i := 1; i < len(mag); i++ {
		cumulative += mag[i]
		if cumulative >= target {
			return float64(i) * freqPerBin / nyquist
		}
	}
	return 1.0
}

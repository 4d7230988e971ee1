package pitch

import (
	"fmt"

	"github.com/KyotoVania/aurasync-engine/algorithms/common"
)

// fallbackBound accepts the global CMNDF minimum when no lag clears the
// configured threshold, as long as the dip is at least this pronounced
const fallbackBound = 0.8

// YINParams contains the YIN estimator configuration
type YINParams struct {
	// WindowSize is the number of time-domain samples analyzed per call.
	// Must be a power of two; 2048 gives usable tracking at 44.1 kHz.
	WindowSize int `json:"window_size"`
	// Threshold is the absolute CMNDF acceptance threshold
	Threshold float64 `json:"threshold"`
	// AdaptThreshold scales the threshold from signal quality: tighter
	// on loud, spectrally stable signal, looser on noisy signal
	AdaptThreshold bool `json:"adapt_threshold"`
}

// DefaultYINParams returns the default YIN configuration
func DefaultYINParams() YINParams {
	return YINParams{
		WindowSize:     2048,
		Threshold:      0.15,
		AdaptThreshold: false,
	}
}

// YIN implements the de Cheveigné & Kawahara (2002) fundamental
// frequency estimator: squared difference function, cumulative-mean
// normalization, absolute-threshold lag search and parabolic refinement.
// The difference function is O(window²) and dominates the tick cost.
type YIN struct {
	params YINParams
	diff   []float64
	cmndf  []float64
}

// NewYIN creates a YIN estimator, failing fast on invalid configuration.
func NewYIN(params YINParams) (*YIN, error) {
	if params.WindowSize < 64 || params.WindowSize&(params.WindowSize-1) != 0 {
		return nil, fmt.Errorf("yin: window size must be a power of two >= 64, got %d", params.WindowSize)
	}
	if params.Threshold <= 0 || params.Threshold >= 1 {
		return nil, fmt.Errorf("yin: threshold must be in (0,1), got %g", params.Threshold)
	}

	half := params.WindowSize / 2
	return &YIN{
		params: params,
		diff:   make([]float64, half),
		cmndf:  make([]float64, half),
	}, nil
}

// Estimate runs YIN over the first WindowSize samples of the frame.
// Frames shorter than the window, or with no acceptable CMNDF dip,
// yield a zero estimate.
func (y *YIN) Estimate(frame Frame) Estimate {
	w := y.params.WindowSize
	if len(frame.Waveform) < w || frame.SampleRate <= 0 {
		return Estimate{}
	}

	x := frame.Waveform[:w]
	half := w / 2

	for tau := range half {
		sum := 0.0
		for i := range half {
			delta := x[i] - x[i+tau]
			sum += delta * delta
		}
		y.diff[tau] = sum
	}

	y.cmndf[0] = 1.0
	runningSum := 0.0
	for tau := 1; tau < half; tau++ {
		runningSum += y.diff[tau]
		if runningSum > 0 {
			y.cmndf[tau] = y.diff[tau] * float64(tau) / runningSum
		} else {
			y.cmndf[tau] = 1.0
		}
	}

	tau := y.findLag(half, y.threshold(frame))
	if tau < 0 {
		return Estimate{}
	}

	refined := float64(tau)
	if tau > 0 && tau < half-1 {
		refined += common.ParabolicPeakOffset(y.cmndf[tau-1], y.cmndf[tau], y.cmndf[tau+1])
	}
	if refined <= 0 {
		return Estimate{}
	}

	return Estimate{
		Frequency:   float64(frame.SampleRate) / refined,
		Probability: common.Clamp(1.0-y.cmndf[tau], 0.0, 1.0),
	}
}

// threshold returns the effective CMNDF threshold for this frame.
// Quality adaptation: loud signal with little spectral change tightens
// the threshold, noisy signal loosens it.
func (y *YIN) threshold(frame Frame) float64 {
	if !y.params.AdaptThreshold {
		return y.params.Threshold
	}
	t := y.params.Threshold * (1.0 + 0.5*frame.Flux - 0.3*frame.Volume)
	return common.Clamp(t, 0.05, 0.5)
}

// findLag scans for the first lag under the threshold, settles on the
// local minimum by walking forward while strictly decreasing, and falls
// back to the global minimum only if it is below the laxer bound.
func (y *YIN) findLag(half int, threshold float64) int {
	for tau := 2; tau < half; tau++ {
		if y.cmndf[tau] < threshold {
			for tau+1 < half && y.cmndf[tau+1] < y.cmndf[tau] {
				tau++
			}
			return tau
		}
	}

	minTau := -1
	minVal := fallbackBound
	for tau := 2; tau < half; tau++ {
		if y.cmndf[tau] < minVal {
			minVal = y.cmndf[tau]
			minTau = tau
		}
	}
	return minTau
}

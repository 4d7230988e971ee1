// Package pitch provides interchangeable single-pitch estimation
// strategies: a time-domain YIN estimator for precise fundamental
// tracking and a magnitude-peak estimator reusing the melodic analysis.
package pitch

// Frame carries the per-tick signal views an estimator may consume.
// YIN reads the time-domain samples; the peak estimator reads the
// magnitude spectrum. Volume and Flux describe signal quality for
// estimators that adapt their detection threshold.
type Frame struct {
	Waveform   []float64
	Magnitudes []byte
	SampleRate int
	Volume     float64
	Flux       float64
}

// Estimate is a single-pitch result. Frequency and Probability are both
// zero when no pitch was detected.
type Estimate struct {
	Frequency   float64 `json:"frequency"`
	Probability float64 `json:"probability"`
}

// Estimator is the capability interface shared by the pitch strategies,
// selected at engine construction time.
type Estimator interface {
	Estimate(frame Frame) Estimate
}

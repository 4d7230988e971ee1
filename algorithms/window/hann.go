// Package window provides the analysis window applied before spectrum
// synthesis in the feeder tooling.
package window

import (
	"fmt"
	"math"
)

// Hann is a precomputed periodic Hann window
type Hann struct {
	size         int
	coefficients []float64
}

// NewHann creates a Hann window of the given size
func NewHann(size int) *Hann {
	h := &Hann{size: size, coefficients: make([]float64, size)}
	for i := range size {
		h.coefficients[i] = 0.5 * (1.0 - math.Cos(2*math.Pi*float64(i)/float64(size)))
	}
	return h
}

// ApplyInPlace multiplies the signal by the window coefficients
func (h *Hann) ApplyInPlace(signal []float64) error {
	if len(signal) != h.size {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), h.size)
	}

	for i := range signal {
		signal[i] *= h.coefficients[i]
	}
	return nil
}

// Size returns the window size
func (h *Hann) Size() int {
	return h.size
}

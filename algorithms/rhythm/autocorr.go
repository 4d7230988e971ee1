package rhythm

import (
	"math"

	"github.com/mjibson/go-dsp/fft"

	"github.com/KyotoVania/aurasync-engine/algorithms/common"
)

// autocorrBufferSize is the length of the onset-strength-function
// history analyzed by the autocorrelation strategy
const autocorrBufferSize = 256

// autocorrMinFill is the minimum number of observed ticks before an
// estimate is attempted
const autocorrMinFill = 64

// Autocorrelation is the alternate tempo strategy: it keeps a continuous
// onset-strength (flux) buffer and locates the periodicity as the
// best genuine local maximum of its autocorrelation inside the plausible
// BPM lag range. The autocorrelation is computed in the frequency domain
// (Wiener-Khinchin) with go-dsp's FFT.
type Autocorrelation struct {
	minBPM float64
	maxBPM float64
	flux   *common.Ring
	times  *common.Ring
}

// NewAutocorrelation creates the autocorrelation tempo strategy for the
// given plausible BPM range.
func NewAutocorrelation(minBPM, maxBPM float64) *Autocorrelation {
	return &Autocorrelation{
		minBPM: minBPM,
		maxBPM: maxBPM,
		flux:   common.NewRing(autocorrBufferSize),
		times:  common.NewRing(autocorrBufferSize),
	}
}

// Observe appends the tick's flux to the onset-strength buffer. Onset
// flags are not needed; the continuous function carries the periodicity.
func (ac *Autocorrelation) Observe(now, flux float64, onset bool, strength float64) {
	ac.flux.Push(flux)
	ac.times.Push(now)
}

// EstimateBPM autocorrelates the buffered onset-strength function and
// converts the winning peak lag to BPM. Tick spacing is taken as the
// mean timestamp delta, so irregular schedulers degrade smoothly.
func (ac *Autocorrelation) EstimateBPM() float64 {
	n := ac.flux.Len()
	if n < autocorrMinFill {
		return 0.0
	}

	times := ac.times.Values()
	dt := (times[n-1] - times[0]) / float64(n-1)
	if dt <= 0 {
		return 0.0
	}

	series := ac.flux.Values()
	mean := common.Mean(series)
	for i := range series {
		series[i] -= mean
	}

	// Zero-pad to the next power of two >= 2n to avoid circular wrap
	size := 1
	for size < 2*n {
		size <<= 1
	}
	padded := make([]float64, size)
	copy(padded, series)

	spectrum := fft.FFTReal(padded)
	for i, c := range spectrum {
		spectrum[i] = complex(real(c)*real(c)+imag(c)*imag(c), 0)
	}
	corr := fft.IFFT(spectrum)

	zeroLag := real(corr[0])
	if zeroLag <= 0 {
		return 0.0
	}

	lagMin := int(math.Round(60.0 / (ac.maxBPM * dt)))
	lagMax := int(math.Round(60.0 / (ac.minBPM * dt)))
	if lagMin < 1 {
		lagMin = 1
	}
	if lagMax > n-2 {
		lagMax = n - 2
	}
	if lagMin >= lagMax {
		return 0.0
	}

	bestLag := -1
	bestVal := 0.0
	for lag := lagMin; lag <= lagMax; lag++ {
		v := real(corr[lag]) / zeroLag
		prev := real(corr[lag-1]) / zeroLag
		next := real(corr[lag+1]) / zeroLag
		// Only genuine local maxima qualify
		if v > prev && v >= next && v > bestVal {
			bestVal = v
			bestLag = lag
		}
	}

	if bestLag < 0 {
		return 0.0
	}

	// Sub-lag refinement sharpens the period estimate
	offset := common.ParabolicPeakOffset(
		real(corr[bestLag-1])/zeroLag,
		real(corr[bestLag])/zeroLag,
		real(corr[bestLag+1])/zeroLag,
	)

	period := (float64(bestLag) + offset) * dt
	if period <= 0 {
		return 0.0
	}
	return 60.0 / period
}

// Reset clears the onset-strength buffer.
func (ac *Autocorrelation) Reset() {
	ac.flux.Clear()
	ac.times.Clear()
}

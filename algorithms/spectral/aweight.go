package spectral

import "math"

// AWeight evaluates the linear-scale A-weighting response R_A(f), the
// standard rational approximation of equal-loudness perception (IEC
// 61672). The curve peaks near 2.5 kHz and strongly attenuates very low
// and very high frequencies. Returns 0 for non-positive frequencies.
func AWeight(freq float64) float64 {
	if freq <= 0 {
		return 0.0
	}

	f2 := freq * freq
	const (
		c1 = 20.6 * 20.6
		c2 = 107.7 * 107.7
		c3 = 737.9 * 737.9
		c4 = 12194.0 * 12194.0
	)

	num := c4 * f2 * f2
	den := (f2 + c1) * math.Sqrt((f2+c2)*(f2+c3)) * (f2 + c4)
	if den == 0 {
		return 0.0
	}

	return num / den
}

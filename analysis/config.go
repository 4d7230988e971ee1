package analysis

import (
	"fmt"

	"github.com/KyotoVania/aurasync-engine/algorithms/dynamics"
	"github.com/KyotoVania/aurasync-engine/algorithms/melodic"
	"github.com/KyotoVania/aurasync-engine/algorithms/pitch"
	"github.com/KyotoVania/aurasync-engine/algorithms/rhythm"
	"github.com/KyotoVania/aurasync-engine/algorithms/spectral"
	"github.com/KyotoVania/aurasync-engine/algorithms/tonal"
)

// Pitch estimation strategies selectable at construction
const (
	PitchMethodYIN  = "yin"
	PitchMethodPeak = "peak"
)

// Tempo estimation strategies selectable at construction
const (
	TempoMethodHistogram       = "histogram"
	TempoMethodAutocorrelation = "autocorrelation"
)

// Config holds every construction-time tunable of the engine. All
// sub-parameter structs carry documented defaults; zero-value fields are
// not filled in automatically, use DefaultConfig as the starting point.
type Config struct {
	// BufferSize is the expected length N of both snapshots. Must be a
	// power of two; >=1024 recommended for band resolution, >=2048 for
	// usable pitch tracking. Smaller sizes degrade the bass band most.
	BufferSize int `json:"buffer_size"`

	// PitchMethod selects the pitch strategy: "yin" or "peak"
	PitchMethod string `json:"pitch_method"`
	// TempoMethod selects the tempo strategy: "histogram" (reference)
	// or "autocorrelation"
	TempoMethod string `json:"tempo_method"`

	Basics     spectral.BasicsParams     `json:"basics"`
	Shape      spectral.ShapeParams      `json:"shape"`
	Normalizer dynamics.NormalizerParams `json:"normalizer"`
	Transients dynamics.TransientParams  `json:"transients"`
	Drop       dynamics.DropParams       `json:"drop"`
	Melodic    melodic.Params            `json:"melodic"`
	YIN        pitch.YINParams           `json:"yin"`
	Rhythm     rhythm.Params             `json:"rhythm"`
	Tonal      tonal.Params              `json:"tonal"`
}

// DefaultConfig returns the engine defaults for the given snapshot size
func DefaultConfig(bufferSize int) Config {
	return Config{
		BufferSize:  bufferSize,
		PitchMethod: PitchMethodYIN,
		TempoMethod: TempoMethodHistogram,
		Basics:      spectral.DefaultBasicsParams(),
		Shape:       spectral.DefaultShapeParams(),
		Normalizer:  dynamics.DefaultNormalizerParams(),
		Transients:  dynamics.DefaultTransientParams(),
		Drop:        dynamics.DefaultDropParams(),
		Melodic:     melodic.DefaultParams(),
		YIN:         pitch.DefaultYINParams(),
		Rhythm:      rhythm.DefaultParams(),
		Tonal:       tonal.DefaultParams(),
	}
}

// Validate fails fast on programmer-error configuration. Steady-state
// input problems are handled at tick time by degrading, never here.
func (c Config) Validate() error {
	if c.BufferSize < 32 || c.BufferSize&(c.BufferSize-1) != 0 {
		return fmt.Errorf("analysis: buffer size must be a power of two >= 32, got %d", c.BufferSize)
	}

	switch c.PitchMethod {
	case PitchMethodYIN:
		if c.YIN.WindowSize > c.BufferSize {
			return fmt.Errorf("analysis: yin window (%d) exceeds buffer size (%d)",
				c.YIN.WindowSize, c.BufferSize)
		}
	case PitchMethodPeak:
	default:
		return fmt.Errorf("analysis: unknown pitch method %q", c.PitchMethod)
	}

	switch c.TempoMethod {
	case TempoMethodHistogram, TempoMethodAutocorrelation:
	default:
		return fmt.Errorf("analysis: unknown tempo method %q", c.TempoMethod)
	}

	if c.Rhythm.MinBPM <= 0 || c.Rhythm.MaxBPM <= c.Rhythm.MinBPM {
		return fmt.Errorf("analysis: invalid BPM range [%g, %g]", c.Rhythm.MinBPM, c.Rhythm.MaxBPM)
	}

	return nil
}

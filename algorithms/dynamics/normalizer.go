// Package dynamics contains the adaptive level trackers: dynamic-range
// normalization, transient detection and drop (energy surge) detection.
package dynamics

import (
	"github.com/KyotoVania/aurasync-engine/algorithms/common"
)

// Envelope holds the adaptive min/max bounds tracked per signal. After
// every update Max >= Min + 0.1 and Min stays in [0, 0.9].
type Envelope struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// NormalizerParams contains the envelope adaptation constants
type NormalizerParams struct {
	// AttackRate blends Max toward a value that exceeds it (fast attack)
	AttackRate float64 `json:"attack_rate"`
	// ReleaseDecay multiplies Max every frame the value stays below it
	// (slow release)
	ReleaseDecay float64 `json:"release_decay"`
	// MinRiseRate drifts Min upward while the value sits above it
	MinRiseRate float64 `json:"min_rise_rate"`
	// MinCreepRate pulls Min toward MinFloor otherwise, so the range
	// never collapses to a divide-by-near-zero
	MinCreepRate float64 `json:"min_creep_rate"`
	// MinFloor is the small positive resting point for Min
	MinFloor float64 `json:"min_floor"`
}

// DefaultNormalizerParams returns the default envelope constants
func DefaultNormalizerParams() NormalizerParams {
	return NormalizerParams{
		AttackRate:   0.30,
		ReleaseDecay: 0.9995,
		MinRiseRate:  0.002,
		MinCreepRate: 0.005,
		MinFloor:     0.01,
	}
}

// Normalizer maps a raw scalar to "how loud relative to recent history"
// in [0,1] using a per-signal adaptive envelope. One Envelope instance is
// kept per tracked signal (bass, mid, treble, overall energy).
type Normalizer struct {
	params NormalizerParams
}

// NewNormalizer creates a dynamic normalizer with default parameters
func NewNormalizer() *Normalizer {
	return NewNormalizerWithParams(DefaultNormalizerParams())
}

// NewNormalizerWithParams creates a dynamic normalizer
func NewNormalizerWithParams(params NormalizerParams) *Normalizer {
	return &Normalizer{params: params}
}

// NewEnvelope returns an envelope at its resting state
func (n *Normalizer) NewEnvelope() *Envelope {
	return &Envelope{Min: n.params.MinFloor, Max: n.params.MinFloor + 0.1}
}

// Normalize updates the envelope with the current value and returns the
// value rescaled into [0,1] against the tracked range. When the range is
// degenerate (< 0.01) the raw value passes through clamped.
func (n *Normalizer) Normalize(value float64, env *Envelope) float64 {
	if value > env.Max {
		env.Max += (value - env.Max) * n.params.AttackRate
	} else {
		env.Max *= n.params.ReleaseDecay
	}

	if value > env.Min {
		env.Min += (value - env.Min) * n.params.MinRiseRate
	} else {
		env.Min += (n.params.MinFloor - env.Min) * n.params.MinCreepRate
	}

	env.Min = common.Clamp(env.Min, 0.0, 0.9)
	env.Max = common.Clamp(env.Max, env.Min+0.1, 1.0)

	rng := env.Max - env.Min
	if rng < 0.01 {
		return common.Clamp(value, 0.0, 1.0)
	}

	return common.Clamp((value-env.Min)/rng, 0.0, 1.0)
}

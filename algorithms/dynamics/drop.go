package dynamics

// DropParams contains the surge-detection constants
type DropParams struct {
	// SurgeThreshold is the minimum one-frame rise in normalized energy
	// that qualifies as a drop
	SurgeThreshold float64 `json:"surge_threshold"`
	// Cooldown is the minimum time in seconds between triggers
	Cooldown float64 `json:"cooldown"`
	// Decay multiplies the intensity every tick, triggered or not
	Decay float64 `json:"decay"`
}

// DefaultDropParams returns the default surge-detection constants
func DefaultDropParams() DropParams {
	return DropParams{
		SurgeThreshold: 0.25,
		Cooldown:       1.5,
		Decay:          0.92,
	}
}

// DropDetector tracks sudden surges in normalized energy. On a qualifying
// surge outside the cooldown window the intensity is reassigned to the
// surge size (latest-wins), and every tick the intensity decays
// multiplicatively regardless of triggering, so the curve keeps falling
// across silent frames.
type DropDetector struct {
	params      DropParams
	prevEnergy  float64
	intensity   float64
	lastTrigger float64
	primed      bool
}

// NewDropDetector creates a drop detector with default parameters
func NewDropDetector() *DropDetector {
	return NewDropDetectorWithParams(DefaultDropParams())
}

// NewDropDetectorWithParams creates a drop detector
func NewDropDetectorWithParams(params DropParams) *DropDetector {
	return &DropDetector{
		params:      params,
		lastTrigger: -params.Cooldown,
	}
}

// Update advances the detector one tick and returns the current decaying
// drop intensity in [0,1].
func (dd *DropDetector) Update(normalizedEnergy, now float64) float64 {
	dd.intensity *= dd.params.Decay

	if dd.primed {
		surge := normalizedEnergy - dd.prevEnergy
		if surge > dd.params.SurgeThreshold && now-dd.lastTrigger >= dd.params.Cooldown {
			if surge > 1.0 {
				surge = 1.0
			}
			dd.intensity = surge
			dd.lastTrigger = now
		}
	}

	dd.prevEnergy = normalizedEnergy
	dd.primed = true

	return dd.intensity
}

// DecayOnly applies the per-tick decay without evaluating a surge, used
// for silent frames where the energy estimate carries no information.
func (dd *DropDetector) DecayOnly() float64 {
	dd.intensity *= dd.params.Decay
	dd.prevEnergy = 0
	dd.primed = false
	return dd.intensity
}

// Intensity returns the current intensity without advancing the decay.
func (dd *DropDetector) Intensity() float64 {
	return dd.intensity
}

// Reset clears all state.
func (dd *DropDetector) Reset() {
	dd.prevEnergy = 0
	dd.intensity = 0
	dd.lastTrigger = -dd.params.Cooldown
	dd.primed = false
}

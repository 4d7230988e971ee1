package dynamics

import (
	"github.com/KyotoVania/aurasync-engine/algorithms/common"
)

// Transients holds the per-band onset flags plus the aggregate flag
// derived from overall energy.
type Transients struct {
	Bass    bool `json:"bass"`
	Mid     bool `json:"mid"`
	Treble  bool `json:"treble"`
	Overall bool `json:"overall"`
}

// transientHistorySize is the length of each signal's ring history
const transientHistorySize = 10

// BandTransientParams tunes one tracked signal. Treble is the most
// sensitive and fastest-decaying, bass the least.
type BandTransientParams struct {
	// Threshold is the static floor the adaptive threshold never drops below
	Threshold float64 `json:"threshold"`
	// Multiplier scales both the history mean and the smoothed state
	Multiplier float64 `json:"multiplier"`
	// Decay is the exponential smoothing factor for the running state
	Decay float64 `json:"decay"`
}

// TransientParams contains the per-signal tunings
type TransientParams struct {
	Bass   BandTransientParams `json:"bass"`
	Mid    BandTransientParams `json:"mid"`
	Treble BandTransientParams `json:"treble"`
	Energy BandTransientParams `json:"energy"`
}

// DefaultTransientParams returns the default per-signal tunings
func DefaultTransientParams() TransientParams {
	return TransientParams{
		Bass:   BandTransientParams{Threshold: 0.15, Multiplier: 1.5, Decay: 0.85},
		Mid:    BandTransientParams{Threshold: 0.12, Multiplier: 1.4, Decay: 0.80},
		Treble: BandTransientParams{Threshold: 0.10, Multiplier: 1.3, Decay: 0.70},
		Energy: BandTransientParams{Threshold: 0.12, Multiplier: 1.4, Decay: 0.80},
	}
}

// transientState is the mutable per-signal state: an exponentially
// smoothed value and a short ring history feeding the adaptive threshold.
type transientState struct {
	params   BandTransientParams
	smoothed float64
	history  *common.Ring
}

func newTransientState(params BandTransientParams) *transientState {
	return &transientState{
		params:  params,
		history: common.NewRing(transientHistorySize),
	}
}

// update pushes the current value and reports whether a transient fired.
// A transient requires the value to clear both the adaptive threshold
// (max of the static floor and the history mean scaled by the
// multiplier) and the scaled smoothed state.
func (ts *transientState) update(value float64) bool {
	adaptive := ts.history.Mean() * ts.params.Multiplier
	if adaptive < ts.params.Threshold {
		adaptive = ts.params.Threshold
	}

	fired := value > adaptive && value > ts.smoothed*ts.params.Multiplier

	ts.history.Push(value)
	ts.smoothed = ts.smoothed*ts.params.Decay + value*(1.0-ts.params.Decay)

	return fired
}

func (ts *transientState) reset() {
	ts.smoothed = 0
	ts.history.Clear()
}

// TransientDetector runs one adaptive onset detector per tracked signal
// (bass, mid, treble, overall energy). The per-signal states persist for
// the life of the detector.
type TransientDetector struct {
	bass   *transientState
	mid    *transientState
	treble *transientState
	energy *transientState
}

// NewTransientDetector creates a transient detector with default tunings
func NewTransientDetector() *TransientDetector {
	return NewTransientDetectorWithParams(DefaultTransientParams())
}

// NewTransientDetectorWithParams creates a transient detector
func NewTransientDetectorWithParams(params TransientParams) *TransientDetector {
	return &TransientDetector{
		bass:   newTransientState(params.Bass),
		mid:    newTransientState(params.Mid),
		treble: newTransientState(params.Treble),
		energy: newTransientState(params.Energy),
	}
}

// Detect updates all four signals with the current frame and returns the
// fired flags.
func (td *TransientDetector) Detect(bass, mid, treble, energy float64) Transients {
	return Transients{
		Bass:    td.bass.update(bass),
		Mid:     td.mid.update(mid),
		Treble:  td.treble.update(treble),
		Overall: td.energy.update(energy),
	}
}

// Reset returns all per-signal state to construction values.
func (td *TransientDetector) Reset() {
	td.bass.reset()
	td.mid.reset()
	td.treble.reset()
	td.energy.reset()
}

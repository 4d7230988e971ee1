package rhythm

import (
	"github.com/KyotoVania/aurasync-engine/algorithms/common"
)

// Onset is one accepted onset event
type Onset struct {
	Time     float64 `json:"time"`
	Strength float64 `json:"strength"`
}

// OnsetParams contains the onset-detection constants
type OnsetParams struct {
	// Floor is the static threshold the adaptive threshold never drops below
	Floor float64 `json:"floor"`
	// Multiplier scales the moving average of recent flux
	Multiplier float64 `json:"multiplier"`
	// Cooldown is the minimum time in seconds between accepted onsets
	Cooldown float64 `json:"cooldown"`
	// HistorySize is the flux moving-average window length in frames
	HistorySize int `json:"history_size"`
}

// DefaultOnsetParams returns the default onset-detection constants
func DefaultOnsetParams() OnsetParams {
	return OnsetParams{
		Floor:       0.02,
		Multiplier:  1.5,
		Cooldown:    0.1,
		HistorySize: 43,
	}
}

// onsetDetector fires on spectral-flux peaks above an adaptive threshold,
// outside a short cooldown window.
type onsetDetector struct {
	params    OnsetParams
	flux      *common.Ring
	prevFlux  float64
	lastOnset float64
}

func newOnsetDetector(params OnsetParams) *onsetDetector {
	return &onsetDetector{
		params:    params,
		flux:      common.NewRing(params.HistorySize),
		lastOnset: -params.Cooldown,
	}
}

// update pushes the current flux and reports whether an onset fired.
// An onset needs the flux to clear the adaptive threshold, exceed the
// previous frame's flux, and fall outside the cooldown window.
func (od *onsetDetector) update(flux, now float64) bool {
	adaptive := od.flux.Mean() * od.params.Multiplier
	if adaptive < od.params.Floor {
		adaptive = od.params.Floor
	}

	fired := flux > adaptive &&
		flux > od.prevFlux &&
		now-od.lastOnset >= od.params.Cooldown

	od.flux.Push(flux)
	od.prevFlux = flux

	if fired {
		od.lastOnset = now
	}
	return fired
}

func (od *onsetDetector) reset() {
	od.flux.Clear()
	od.prevFlux = 0
	od.lastOnset = -od.params.Cooldown
}

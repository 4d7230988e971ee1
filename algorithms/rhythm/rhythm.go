package rhythm

import (
	"math"

	"github.com/KyotoVania/aurasync-engine/algorithms/common"
)

// Features holds the per-frame rhythmic output
type Features struct {
	Onset         bool    `json:"onset"`
	OnsetStrength float64 `json:"onset_strength"`
	BPM           float64 `json:"bpm"`
	BeatPhase     float64 `json:"beat_phase"`
	Confidence    float64 `json:"confidence"`
}

// Params contains the rhythm-engine configuration
type Params struct {
	Onset OnsetParams `json:"onset"`
	// MinBPM and MaxBPM bound the plausible tempo range
	MinBPM float64 `json:"min_bpm"`
	MaxBPM float64 `json:"max_bpm"`
	// BPMHistorySize is the ring length of recent tempo estimates the
	// reported BPM is the filtered median of
	BPMHistorySize int `json:"bpm_history_size"`
	// ConfidenceWindow is the median-filter length protecting the
	// confidence from single-frame collapse
	ConfidenceWindow int `json:"confidence_window"`
	// SilenceDecay multiplies the confidence on silent frames
	SilenceDecay float64 `json:"silence_decay"`
}

// DefaultParams returns the default rhythm configuration
func DefaultParams() Params {
	return Params{
		Onset:            DefaultOnsetParams(),
		MinBPM:           60.0,
		MaxBPM:           200.0,
		BPMHistorySize:   20,
		ConfidenceWindow: 5,
		SilenceDecay:     0.95,
	}
}

// Engine turns the per-frame spectral flux into onset flags, a tempo
// estimate, a beat phase and a confidence score. The reported BPM is
// always the filtered median of a bounded estimate history, never a
// single-interval guess: that suppresses octave jumps and noise jitter.
type Engine struct {
	params   Params
	onsets   *onsetDetector
	strategy TempoStrategy

	bpmHistory  *common.Ring
	confHistory *common.Ring
	lastBeat    float64
	hasBeat     bool
	confidence  float64
}

// NewEngine creates a rhythm engine with the interval-histogram tempo
// strategy and default parameters.
func NewEngine() *Engine {
	params := DefaultParams()
	return NewEngineWithStrategy(params, NewIntervalHistogram(params.MinBPM, params.MaxBPM))
}

// NewEngineWithStrategy creates a rhythm engine with the given tempo
// strategy.
func NewEngineWithStrategy(params Params, strategy TempoStrategy) *Engine {
	return &Engine{
		params:      params,
		onsets:      newOnsetDetector(params.Onset),
		strategy:    strategy,
		bpmHistory:  common.NewRing(params.BPMHistorySize),
		confHistory: common.NewRing(params.ConfidenceWindow),
	}
}

// ProcessFrame advances the engine one tick.
func (e *Engine) ProcessFrame(flux, now float64) Features {
	onset := e.onsets.update(flux, now)

	strength := 0.0
	if onset {
		strength = flux
		e.lastBeat = now
		e.hasBeat = true
	}

	e.strategy.Observe(now, flux, onset, strength)

	if onset {
		if estimate := e.strategy.EstimateBPM(); estimate > 0 {
			e.bpmHistory.Push(estimate)
		}
	}

	bpm := e.filteredBPM()
	e.confidence = e.updateConfidence()

	return Features{
		Onset:         onset,
		OnsetStrength: strength,
		BPM:           bpm,
		BeatPhase:     e.beatPhase(bpm, now),
		Confidence:    e.confidence,
	}
}

// ProcessSilentFrame decays the confidence without feeding the adaptive
// state, so silence never teaches the estimators anything.
func (e *Engine) ProcessSilentFrame(now float64) Features {
	e.confidence *= e.params.SilenceDecay

	bpm := e.filteredBPM()
	return Features{
		BPM:        bpm,
		BeatPhase:  e.beatPhase(bpm, now),
		Confidence: e.confidence,
	}
}

// filteredBPM reports the median of the estimate history after dropping
// entries beyond ±25% of that median, averaged over the survivors.
func (e *Engine) filteredBPM() float64 {
	if e.bpmHistory.Len() == 0 {
		return 0.0
	}

	median := e.bpmHistory.Median()
	if median <= 0 {
		return 0.0
	}

	sum := 0.0
	count := 0
	for _, v := range e.bpmHistory.Values() {
		if math.Abs(v-median) <= 0.25*median {
			sum += v
			count++
		}
	}
	if count == 0 {
		return median
	}
	return sum / float64(count)
}

// updateConfidence scores tempo-history stability as the inverse
// coefficient of variation, scaled by how full the history is, then
// median-filters the result over a short window.
func (e *Engine) updateConfidence() float64 {
	raw := 0.0
	values := e.bpmHistory.Values()
	if len(values) >= 2 {
		mean := common.Mean(values)
		if mean > 0 {
			cv := common.StandardDeviation(values) / mean
			raw = common.Clamp(1.0-cv/0.5, 0.0, 1.0)
		}
		raw *= float64(len(values)) / float64(e.bpmHistory.Cap())
	}

	e.confHistory.Push(raw)
	return e.confHistory.Median()
}

// beatPhase reports the position within the current beat in [0,1),
// 0 while the tempo is unknown.
func (e *Engine) beatPhase(bpm, now float64) float64 {
	if bpm <= 0 || !e.hasBeat {
		return 0.0
	}

	beatDuration := 60.0 / bpm
	phase := math.Mod(now-e.lastBeat, beatDuration) / beatDuration
	if phase < 0 {
		phase += 1.0
	}
	return phase
}

// Reset returns all state to construction values.
func (e *Engine) Reset() {
	e.onsets.reset()
	e.strategy.Reset()
	e.bpmHistory.Clear()
	e.confHistory.Clear()
	e.lastBeat = 0
	e.hasBeat = false
	e.confidence = 0
}

// Package analysis assembles the per-frame audio feature extraction
// pipeline: loudness and band energies, adaptive normalization,
// transient/drop detection, spectral shape, melodic features, pitch,
// rhythm and timbre/key. One Engine instance owns all mutable analysis
// state; it is driven by a strictly sequential external sampling loop
// and performs no I/O or locking.
package analysis

import (
	"fmt"

	"github.com/KyotoVania/aurasync-engine/algorithms/dynamics"
	"github.com/KyotoVania/aurasync-engine/algorithms/melodic"
	"github.com/KyotoVania/aurasync-engine/algorithms/pitch"
	"github.com/KyotoVania/aurasync-engine/algorithms/rhythm"
	"github.com/KyotoVania/aurasync-engine/algorithms/spectral"
	"github.com/KyotoVania/aurasync-engine/algorithms/tonal"
	"github.com/KyotoVania/aurasync-engine/logging"
)

// Engine extracts one AudioFeatureFrame per tick from a pair of
// byte-valued snapshots. All adaptive state (envelopes, histories,
// detectors, the one-frame spectrum lookback) lives on this aggregate;
// two engines fed identical tick sequences produce identical outputs.
type Engine struct {
	config Config
	logger logging.Logger

	basics     *spectral.Basics
	shape      *spectral.Shape
	normalizer *dynamics.Normalizer
	transients *dynamics.TransientDetector
	drop       *dynamics.DropDetector
	melodic    *melodic.Analyzer
	pitcher    pitch.Estimator
	rhythm     *rhythm.Engine
	tonal      *tonal.Analyzer

	// Per-signal adaptive envelopes
	envBass   *dynamics.Envelope
	envMid    *dynamics.Envelope
	envTreble *dynamics.Envelope
	envEnergy *dynamics.Envelope

	// Scratch buffer for the waveform in [-1,1], reused across ticks
	waveBuf []float64
}

// NewEngine creates an engine, failing fast on invalid configuration.
func NewEngine(config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger := logging.WithFields(logging.Fields{
		"component": "analysis_engine",
	})

	e := &Engine{
		config:     config,
		logger:     logger,
		basics:     spectral.NewBasicsWithParams(config.Basics),
		shape:      spectral.NewShapeWithParams(config.Shape),
		normalizer: dynamics.NewNormalizerWithParams(config.Normalizer),
		transients: dynamics.NewTransientDetectorWithParams(config.Transients),
		drop:       dynamics.NewDropDetectorWithParams(config.Drop),
		melodic:    melodic.NewAnalyzerWithParams(config.Melodic),
		tonal:      tonal.NewAnalyzerWithParams(config.Tonal),
		waveBuf:    make([]float64, config.BufferSize),
	}

	switch config.PitchMethod {
	case PitchMethodYIN:
		yin, err := pitch.NewYIN(config.YIN)
		if err != nil {
			return nil, err
		}
		e.pitcher = yin
	case PitchMethodPeak:
		e.pitcher = pitch.NewPeakEstimatorWithParams(config.Melodic)
	}

	var strategy rhythm.TempoStrategy
	switch config.TempoMethod {
	case TempoMethodHistogram:
		strategy = rhythm.NewIntervalHistogram(config.Rhythm.MinBPM, config.Rhythm.MaxBPM)
	case TempoMethodAutocorrelation:
		strategy = rhythm.NewAutocorrelation(config.Rhythm.MinBPM, config.Rhythm.MaxBPM)
	}
	e.rhythm = rhythm.NewEngineWithStrategy(config.Rhythm, strategy)

	e.envBass = e.normalizer.NewEnvelope()
	e.envMid = e.normalizer.NewEnvelope()
	e.envTreble = e.normalizer.NewEnvelope()
	e.envEnergy = e.normalizer.NewEnvelope()

	logger.Debug("engine created", logging.Fields{
		"buffer_size":  config.BufferSize,
		"pitch_method": config.PitchMethod,
		"tempo_method": config.TempoMethod,
	})

	return e, nil
}

// Analyze runs one tick. Both snapshots must have the configured buffer
// length and the sample rate must match the source that produced them;
// now must be monotonic across calls in seconds. Quiet frames degrade to
// a zeroed frame with decaying drop/rhythm state instead of feeding
// noise into the adaptive estimators.
func (e *Engine) Analyze(magnitudes, waveform []byte, sampleRate int, now float64) (*AudioFeatureFrame, error) {
	if len(magnitudes) != e.config.BufferSize {
		return nil, fmt.Errorf("analysis: magnitude snapshot length %d, want %d",
			len(magnitudes), e.config.BufferSize)
	}
	if len(waveform) != e.config.BufferSize {
		return nil, fmt.Errorf("analysis: waveform snapshot length %d, want %d",
			len(waveform), e.config.BufferSize)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("analysis: non-positive sample rate %d", sampleRate)
	}

	if e.basics.IsSilent(magnitudes) {
		return e.silentFrame(now), nil
	}

	frame := &AudioFeatureFrame{Time: now}

	frame.Volume = e.basics.Volume(waveform)
	frame.Energy = e.basics.Energy(magnitudes)
	frame.RawBands = e.basics.Bands(magnitudes, sampleRate)
	frame.Spectral = e.shape.Compute(magnitudes, sampleRate)

	frame.Bands = spectral.BandEnergies{
		Bass:   e.normalizer.Normalize(frame.RawBands.Bass, e.envBass),
		Mid:    e.normalizer.Normalize(frame.RawBands.Mid, e.envMid),
		Treble: e.normalizer.Normalize(frame.RawBands.Treble, e.envTreble),
	}
	frame.NormalizedEnergy = e.normalizer.Normalize(frame.Energy, e.envEnergy)

	frame.Transients = e.transients.Detect(
		frame.Bands.Bass, frame.Bands.Mid, frame.Bands.Treble, frame.NormalizedEnergy)
	frame.DropIntensity = e.drop.Update(frame.NormalizedEnergy, now)

	frame.Melodic = e.melodic.Analyze(magnitudes, sampleRate)

	for i, s := range waveform {
		e.waveBuf[i] = (float64(s) - 128.0) / 128.0
	}
	frame.Pitch = e.pitcher.Estimate(pitch.Frame{
		Waveform:   e.waveBuf,
		Magnitudes: magnitudes,
		SampleRate: sampleRate,
		Volume:     frame.Volume,
		Flux:       frame.Spectral.Flux,
	})

	frame.Rhythm = e.rhythm.ProcessFrame(frame.Spectral.Flux, now)
	frame.Tonal = e.tonal.Analyze(frame.Spectral, frame.Melodic)

	return frame, nil
}

// silentFrame emits the degraded frame for below-floor input: loudness,
// bands and transients all zero, drop intensity and rhythm confidence
// decaying multiplicatively.
func (e *Engine) silentFrame(now float64) *AudioFeatureFrame {
	frame := &AudioFeatureFrame{
		Time:   now,
		Silent: true,
	}
	frame.Melodic.DominantNote = melodic.Note{MIDI: -1, PitchClass: -1}
	frame.Tonal.DominantChroma = -1
	frame.Tonal.Key = tonal.Key{PitchClass: -1}
	frame.DropIntensity = e.drop.DecayOnly()
	frame.Rhythm = e.rhythm.ProcessSilentFrame(now)
	return frame
}

// Reset returns every adaptive estimator to its construction state.
func (e *Engine) Reset() {
	e.shape.Reset()
	e.transients.Reset()
	e.drop.Reset()
	e.rhythm.Reset()
	e.envBass = e.normalizer.NewEnvelope()
	e.envMid = e.normalizer.NewEnvelope()
	e.envTreble = e.normalizer.NewEnvelope()
	e.envEnergy = e.normalizer.NewEnvelope()
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

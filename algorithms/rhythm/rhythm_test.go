package rhythm

import (
	"math"
	"testing"
)

// clickTrain drives the engine with flux pulses at a fixed interval over
// a baseline, returning the last emitted features and the confidence
// trace sampled at every pulse.
func clickTrain(e *Engine, interval float64, ticks int, dt float64) (Features, []float64) {
	var last Features
	var confidences []float64

	nextPulse := interval
	for i := range ticks {
		now := float64(i) * dt

		flux := 0.02
		if now >= nextPulse {
			flux = 0.8
			nextPulse += interval
		}

		last = e.ProcessFrame(flux, now)
		if flux == 0.8 {
			confidences = append(confidences, last.Confidence)
		}
	}
	return last, confidences
}

func TestBPMConvergesOnClickTrain(t *testing.T) {
	e := NewEngine()

	// 500ms clicks = 120 BPM, ticked at 10ms for 15 seconds (~30 onsets)
	last, confidences := clickTrain(e, 0.5, 1500, 0.01)

	if math.Abs(last.BPM-120) > 2 {
		t.Fatalf("BPM after click train = %f, want 120 +/- 2", last.BPM)
	}
	if len(confidences) < 10 {
		t.Fatalf("expected at least 10 onsets, got %d", len(confidences))
	}

	// Confidence climbs toward history saturation
	early := confidences[4]
	late := confidences[len(confidences)-1]
	if late <= early {
		t.Fatalf("confidence should rise: early=%f late=%f", early, late)
	}
	if last.Confidence < 0.8 {
		t.Fatalf("confidence on a perfect click train = %f, want >= 0.8", last.Confidence)
	}
}

func TestBeatPhaseStaysInRange(t *testing.T) {
	e := NewEngine()

	for i := range 1500 {
		now := float64(i) * 0.01
		flux := 0.02
		if i%50 == 0 && i > 0 {
			flux = 0.8
		}
		features := e.ProcessFrame(flux, now)

		if features.BeatPhase < 0 || features.BeatPhase >= 1 {
			t.Fatalf("tick %d: beat phase %f escaped [0,1)", i, features.BeatPhase)
		}
		if features.BPM == 0 && features.BeatPhase != 0 {
			t.Fatalf("tick %d: phase %f reported with unknown tempo", i, features.BeatPhase)
		}
	}
}

func TestNoOnsetsMeansNoTempo(t *testing.T) {
	e := NewEngine()

	var last Features
	for i := range 500 {
		last = e.ProcessFrame(0.01, float64(i)*0.01)
	}

	if last.BPM != 0 || last.Confidence != 0 {
		t.Fatalf("flat flux produced bpm=%f confidence=%f, want zeros", last.BPM, last.Confidence)
	}
}

func TestSilentFramesDecayConfidence(t *testing.T) {
	e := NewEngine()
	clickTrain(e, 0.5, 1500, 0.01)

	before := e.confidence
	if before <= 0 {
		t.Fatal("expected positive confidence after click train")
	}

	var features Features
	for i := range 50 {
		features = e.ProcessSilentFrame(15.0 + float64(i)*0.01)
	}
	if features.Confidence >= before {
		t.Fatalf("confidence after silence = %f, want below %f", features.Confidence, before)
	}
	// Tempo memory survives silence
	if math.Abs(features.BPM-120) > 2 {
		t.Fatalf("BPM forgotten during silence: %f", features.BPM)
	}
}

func TestIntervalHistogramPrefersModalInterval(t *testing.T) {
	ih := NewIntervalHistogram(60, 200)

	// Eight onsets at 500ms plus one stray at an off interval
	now := 0.0
	for i := range 8 {
		now = float64(i) * 0.5
		ih.Observe(now, 0.8, true, 0.8)
	}
	ih.Observe(now+0.33, 0.3, true, 0.3)

	bpm := ih.EstimateBPM()
	if math.Abs(bpm-120) > 3 {
		t.Fatalf("modal interval BPM = %f, want ~120", bpm)
	}
}

func TestIntervalHistogramDropsWeakestWhenFull(t *testing.T) {
	ih := NewIntervalHistogram(60, 200)

	for i := range maxTrackedOnsets + 10 {
		strength := 0.5
		if i == 3 {
			strength = 0.01
		}
		ih.Observe(float64(i)*0.5, strength, true, strength)
	}

	if len(ih.onsets) != maxTrackedOnsets {
		t.Fatalf("onset history size = %d, want capped at %d", len(ih.onsets), maxTrackedOnsets)
	}
	for _, o := range ih.onsets {
		if o.Strength == 0.01 {
			t.Fatal("weakest onset should have been evicted first")
		}
	}
}

func TestAutocorrelationFindsClickPeriod(t *testing.T) {
	ac := NewAutocorrelation(60, 200)

	// 10ms ticks, pulse every 500ms, enough to fill the buffer
	for i := range 300 {
		now := float64(i) * 0.01
		flux := 0.02
		if i%50 == 0 {
			flux = 0.8
		}
		ac.Observe(now, flux, flux > 0.5, flux)
	}

	bpm := ac.EstimateBPM()
	if math.Abs(bpm-120) > 5 {
		t.Fatalf("autocorrelation BPM = %f, want ~120", bpm)
	}
}

func TestAutocorrelationNeedsFill(t *testing.T) {
	ac := NewAutocorrelation(60, 200)
	for i := range autocorrMinFill / 2 {
		ac.Observe(float64(i)*0.01, 0.5, false, 0)
	}
	if bpm := ac.EstimateBPM(); bpm != 0 {
		t.Fatalf("under-filled buffer estimated %f, want 0", bpm)
	}
}

func TestEngineWithAutocorrelationStrategy(t *testing.T) {
	params := DefaultParams()
	e := NewEngineWithStrategy(params, NewAutocorrelation(params.MinBPM, params.MaxBPM))

	last, _ := clickTrain(e, 0.5, 1500, 0.01)
	if math.Abs(last.BPM-120) > 5 {
		t.Fatalf("autocorrelation engine BPM = %f, want ~120", last.BPM)
	}
}

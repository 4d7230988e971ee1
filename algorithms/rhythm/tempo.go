// Package rhythm tracks onsets, tempo, beat phase and a stability-based
// confidence from the per-frame spectral flux.
package rhythm

import (
	"math"
	"sort"
)

// TempoStrategy is the capability interface for tempo estimation,
// selectable at engine construction. Observe is called once per tick;
// EstimateBPM returns 0 while the tempo is unknown.
type TempoStrategy interface {
	Observe(now, flux float64, onset bool, strength float64)
	EstimateBPM() float64
	Reset()
}

// intervalTolerance merges inter-onset intervals that sit within this
// many seconds of a histogram bucket's running mean
const intervalTolerance = 0.045

// maxTrackedOnsets bounds the onset history; beyond it the weakest
// onsets are dropped first
const maxTrackedOnsets = 32

// IntervalHistogram is the reference tempo strategy: inter-onset
// intervals feed a tolerance-banded histogram weighted by onset
// strength, and the modal bucket's interval converts to BPM.
type IntervalHistogram struct {
	minBPM float64
	maxBPM float64
	onsets []Onset
}

// NewIntervalHistogram creates the interval-histogram tempo strategy for
// the given plausible BPM range.
func NewIntervalHistogram(minBPM, maxBPM float64) *IntervalHistogram {
	return &IntervalHistogram{
		minBPM: minBPM,
		maxBPM: maxBPM,
		onsets: make([]Onset, 0, maxTrackedOnsets),
	}
}

// Observe records accepted onsets; non-onset ticks are ignored.
func (ih *IntervalHistogram) Observe(now, flux float64, onset bool, strength float64) {
	if !onset {
		return
	}

	ih.onsets = append(ih.onsets, Onset{Time: now, Strength: strength})
	if len(ih.onsets) > maxTrackedOnsets {
		ih.dropWeakest()
	}
}

// dropWeakest evicts the lowest-strength onset, keeping time order.
func (ih *IntervalHistogram) dropWeakest() {
	weakest := 0
	for i, o := range ih.onsets {
		if o.Strength < ih.onsets[weakest].Strength {
			weakest = i
		}
	}
	ih.onsets = append(ih.onsets[:weakest], ih.onsets[weakest+1:]...)
}

type intervalBucket struct {
	meanInterval float64
	weight       float64
	count        int
}

// EstimateBPM buckets consecutive inter-onset intervals and converts the
// modal bucket's mean interval to BPM.
func (ih *IntervalHistogram) EstimateBPM() float64 {
	if len(ih.onsets) < 2 {
		return 0.0
	}

	minInterval := 60.0 / ih.maxBPM
	maxInterval := 60.0 / ih.minBPM

	times := make([]Onset, len(ih.onsets))
	copy(times, ih.onsets)
	sort.Slice(times, func(i, j int) bool { return times[i].Time < times[j].Time })

	var buckets []intervalBucket
	for i := 1; i < len(times); i++ {
		interval := times[i].Time - times[i-1].Time
		if interval < minInterval || interval > maxInterval {
			continue
		}
		weight := (times[i].Strength + times[i-1].Strength) / 2.0

		merged := false
		for b := range buckets {
			if math.Abs(interval-buckets[b].meanInterval) <= intervalTolerance {
				total := buckets[b].weight + weight
				buckets[b].meanInterval = (buckets[b].meanInterval*buckets[b].weight + interval*weight) / total
				buckets[b].weight = total
				buckets[b].count++
				merged = true
				break
			}
		}
		if !merged {
			buckets = append(buckets, intervalBucket{meanInterval: interval, weight: weight, count: 1})
		}
	}

	if len(buckets) == 0 {
		return 0.0
	}

	best := 0
	for b := range buckets {
		if buckets[b].weight > buckets[best].weight {
			best = b
		}
	}

	return 60.0 / buckets[best].meanInterval
}

// Reset clears the onset history.
func (ih *IntervalHistogram) Reset() {
	ih.onsets = ih.onsets[:0]
}

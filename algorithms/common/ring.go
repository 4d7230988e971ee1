package common

// Ring is a fixed-capacity circular buffer of float64 values with O(1)
// push/evict. Once full, each push overwrites the oldest entry. It backs
// the short histories kept by the adaptive detectors (transient history,
// flux history, BPM history, confidence smoothing).
type Ring struct {
	buffer   []float64
	writePos int
	count    int
}

// NewRing creates a ring buffer holding at most capacity values.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{
		buffer: make([]float64, capacity),
	}
}

// Push appends a value, evicting the oldest once the buffer is full.
func (r *Ring) Push(value float64) {
	r.buffer[r.writePos] = value
	r.writePos = (r.writePos + 1) % len(r.buffer)
	if r.count < len(r.buffer) {
		r.count++
	}
}

// Len returns the number of stored values.
func (r *Ring) Len() int {
	return r.count
}

// Cap returns the buffer capacity.
func (r *Ring) Cap() int {
	return len(r.buffer)
}

// Full reports whether the buffer has reached capacity.
func (r *Ring) Full() bool {
	return r.count == len(r.buffer)
}

// Values returns the stored values oldest-first as a fresh slice.
func (r *Ring) Values() []float64 {
	out := make([]float64, r.count)
	start := r.writePos - r.count
	for i := range r.count {
		out[i] = r.buffer[(start+i+len(r.buffer))%len(r.buffer)]
	}
	return out
}

// Mean returns the arithmetic mean of the stored values (0 when empty).
func (r *Ring) Mean() float64 {
	if r.count == 0 {
		return 0.0
	}
	sum := 0.0
	for i := range r.count {
		sum += r.buffer[i]
	}
	// Values wrap but every slot in [0, count) has been written.
	return sum / float64(r.count)
}

// Median returns the median of the stored values (0 when empty).
func (r *Ring) Median() float64 {
	return Median(r.Values())
}

// Clear empties the buffer.
func (r *Ring) Clear() {
	r.writePos = 0
	r.count = 0
}

package eventlog

// ring is a fixed-capacity circular buffer of entries.
// Not safe for concurrent use; the caller synchronizes.
type ring struct {
	buf      []Entry
	capacity int
	head     int // next write position
	count    int
}

func newRing(capacity int) *ring {
	return &ring{
		buf:      make([]Entry, capacity),
		capacity: capacity,
	}
}

func (r *ring) push(e Entry) {
	// When full, head already points at the oldest entry.
	r.buf[r.head] = e
	r.head = (r.head + 1) % r.capacity
	if r.count < r.capacity {
		r.count++
	}
}

func (r *ring) snapshot() []Entry {
	result := make([]Entry, r.count)
	// Oldest item is at (head - count) mod capacity
	start := (r.head - r.count + r.capacity) % r.capacity
	for i := 0; i < r.count; i++ {
		result[i] = r.buf[(start+i)%r.capacity]
	}
	return result
}

func (r *ring) len() int {
	return r.count
}

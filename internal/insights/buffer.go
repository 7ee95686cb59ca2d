package insights

import "sync"

const (
	// bufferHighWater triggers a trim; bufferRetain is how many of the
	// newest anomalies survive it.
	bufferHighWater = 50
	bufferRetain    = 30
)

// Buffer is the bounded rolling window of anomalies the dashboard serves.
// Each monitoring cycle appends its detections, so alerts from earlier
// cycles stay visible; once the window grows past the high-water mark only
// the newest entries are retained.
type Buffer struct {
	mu        sync.RWMutex
	anomalies []Anomaly
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

func (b *Buffer) Add(anomalies ...Anomaly) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.anomalies = append(b.anomalies, anomalies...)
	if len(b.anomalies) > bufferHighWater {
		trimmed := make([]Anomaly, bufferRetain)
		copy(trimmed, b.anomalies[len(b.anomalies)-bufferRetain:])
		b.anomalies = trimmed
	}
}

// Snapshot returns a copy of the buffered anomalies, oldest first.
func (b *Buffer) Snapshot() []Anomaly {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Anomaly, len(b.anomalies))
	copy(out, b.anomalies)
	return out
}

func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.anomalies)
}

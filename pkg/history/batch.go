package history

import (
	"sync"
	"time"

	"github.com/op-bnbplace/opbnb-place-api/pkg/consumer"
)

// Pending couples a parsed row with the message it came from, so the
// offset can be committed once the row is durably archived.
type Pending struct {
	Row     PlacementRow
	Message consumer.Message
}

// Buffer accumulates pending rows until a size or time threshold is met.
type Buffer struct {
	mu        sync.Mutex
	pending   []Pending
	capacity  int
	lastFlush time.Time
}

// NewBuffer creates a Buffer that signals a flush at the given capacity.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{
		pending:   make([]Pending, 0, capacity),
		capacity:  capacity,
		lastFlush: time.Now(),
	}
}

// Add appends a pending row and reports whether the buffer is full.
func (b *Buffer) Add(p Pending) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pending = append(b.pending, p)
	return len(b.pending) >= b.capacity
}

// Drain returns the current batch and clears the buffer.
func (b *Buffer) Drain() []Pending {
	b.mu.Lock()
	defer b.mu.Unlock()

	batch := b.pending
	b.pending = make([]Pending, 0, b.capacity)
	b.lastFlush = time.Now()
	return batch
}

// Size returns the current number of buffered rows.
func (b *Buffer) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Stale reports whether a non-empty buffer has gone unflushed for at
// least the given interval.
func (b *Buffer) Stale(interval time.Duration) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.pending) == 0 {
		return false
	}

	return time.Since(b.lastFlush) >= interval
}

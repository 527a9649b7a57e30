package history

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestBufferProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("buffer fills to capacity before signalling", prop.ForAll(
		func(capacity int) bool {
			b := NewBuffer(capacity)
			for i := 0; i < capacity-1; i++ {
				if b.Add(Pending{}) {
					return false
				}
				if b.Size() != i+1 {
					return false
				}
			}
			return b.Add(Pending{}) && b.Size() == capacity
		},
		gen.IntRange(1, 1000),
	))

	properties.Property("drain empties the buffer and returns every row", prop.ForAll(
		func(count int) bool {
			b := NewBuffer(1000)
			for i := 0; i < count; i++ {
				b.Add(Pending{})
			}

			batch := b.Drain()
			return len(batch) == count && b.Size() == 0
		},
		gen.IntRange(0, 500),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestBufferStale(t *testing.T) {
	b := NewBuffer(100)

	assert.False(t, b.Stale(50*time.Millisecond), "empty buffer is never stale")

	b.Add(Pending{})
	assert.False(t, b.Stale(50*time.Millisecond))

	time.Sleep(60 * time.Millisecond)
	assert.True(t, b.Stale(50*time.Millisecond))
}

package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldUseCopy(t *testing.T) {
	a := &PGArchive{}

	small := make([]PlacementRow, copyThreshold-1)
	large := make([]PlacementRow, copyThreshold)

	assert.False(t, a.ShouldUseCopy(nil))
	assert.False(t, a.ShouldUseCopy(small))
	assert.True(t, a.ShouldUseCopy(large))
}

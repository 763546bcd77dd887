package scan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_LatestWins(t *testing.T) {
	t.Parallel()

	var b Buffer
	_, ok := b.Latest()
	assert.False(t, ok)

	b.Store(Scan{Distances: []float64{1}, Angles: []float64{0}, Unit: Radians})
	b.Store(Scan{Distances: []float64{2}, Angles: []float64{0}, Unit: Radians})

	got, ok := b.Latest()
	require.True(t, ok)
	assert.Equal(t, []float64{2}, got.Distances)
}

func TestBuffer_ConsumeDrainsUntilClose(t *testing.T) {
	t.Parallel()

	frames := make(chan Scan, 2)
	frames <- Scan{Distances: []float64{1}, Angles: []float64{0}, Unit: Radians}
	frames <- Scan{Distances: []float64{3}, Angles: []float64{0}, Unit: Radians}
	close(frames)

	var b Buffer
	b.Consume(context.Background(), frames)

	got, ok := b.Latest()
	require.True(t, ok)
	assert.Equal(t, []float64{3}, got.Distances)
}

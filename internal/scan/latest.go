package scan

import (
	"context"
	"sync"
)

// Buffer keeps the most recent sweep from an acquisition stream so that
// consumers polling at their own cadence always see the freshest frame.
type Buffer struct {
	mu    sync.Mutex
	sweep Scan
	have  bool
}

// Store replaces the buffered sweep.
func (b *Buffer) Store(s Scan) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sweep = s
	b.have = true
}

// Latest returns the buffered sweep and whether one has been stored.
func (b *Buffer) Latest() (Scan, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sweep, b.have
}

// Consume drains frames into the buffer until the channel closes or the
// context ends. Run it in its own goroutine alongside SerialSource.Monitor.
func (b *Buffer) Consume(ctx context.Context, frames <-chan Scan) {
	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				return
			}
			b.Store(frame)
		case <-ctx.Done():
			return
		}
	}
}

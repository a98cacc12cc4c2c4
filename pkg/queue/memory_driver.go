package queue

import (
	"context"
	"errors"
)

var ErrQueueFull = errors.New("queue: memory buffer full")

const memoryCapacity = 1000

// MemoryDriver keeps jobs in a buffered channel. Anything still queued is
// gone when the process exits, so production sets QUEUE_DRIVER=redis.
type MemoryDriver struct{ jobs chan []byte }

func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{jobs: make(chan []byte, memoryCapacity)}
}

// Push fails with ErrQueueFull rather than block the request goroutine.
func (d *MemoryDriver) Push(payload []byte) error {
	select {
	case d.jobs <- payload:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *MemoryDriver) Pop(ctx context.Context) ([]byte, error) {
	select {
	case payload := <-d.jobs:
		return payload, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (d *MemoryDriver) Len() int { return len(d.jobs) }

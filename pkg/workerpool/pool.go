// Package workerpool runs tasks on a fixed set of goroutines behind a short
// queue. The job queue dispatches through one and the image optimizer uses
// another to cap concurrent encodes.
//
//	pool := workerpool.New(4)
//	defer pool.Shutdown()
//
//	if err := pool.Submit(task); errors.Is(err, workerpool.ErrPoolFull) {
//	    // answer 503 or retry later
//	}
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/diamantrouge/maison/pkg/logger"
)

var (
	ErrPoolFull   = errors.New("workerpool: pool is full")
	ErrPoolClosed = errors.New("workerpool: pool is closed")
)

type Pool struct {
	queue chan func()
	quit  chan struct{}
	wg    sync.WaitGroup
	stop  sync.Once
	busy  atomic.Int64

	// gate is read-held by senders so Shutdown never closes queue under them.
	gate   sync.RWMutex
	closed bool
}

// New starts size workers (at least one) with room for 2*size waiting tasks.
func New(size int) *Pool {
	size = max(size, 1)
	p := &Pool{queue: make(chan func(), 2*size), quit: make(chan struct{})}
	p.wg.Add(size)
	for range size {
		go func() {
			defer p.wg.Done()
			for task := range p.queue {
				p.run(task)
			}
		}()
	}
	return p
}

// Submit queues task or fails at once with ErrPoolFull.
func (p *Pool) Submit(task func()) error { return p.send(context.Background(), task, false) }

// SubmitWait blocks until the task is queued or the pool closes.
func (p *Pool) SubmitWait(task func()) error { return p.send(context.Background(), task, true) }

// SubmitCtx blocks like SubmitWait but also gives up when ctx ends.
func (p *Pool) SubmitCtx(ctx context.Context, task func()) error { return p.send(ctx, task, true) }

func (p *Pool) send(ctx context.Context, task func(), wait bool) error {
	p.gate.RLock()
	defer p.gate.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	if !wait {
		select {
		case p.queue <- task:
			return nil
		default:
			return ErrPoolFull
		}
	}
	select {
	case p.queue <- task:
		return nil
	case <-p.quit:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn on a worker and returns its error, so no more than size calls
// of fn overlap. A panic in fn comes back as an error.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	out := make(chan error, 1)
	task := func() {
		defer func() {
			if r := recover(); r != nil {
				out <- fmt.Errorf("workerpool: task panicked: %v", r)
			}
		}()
		out <- fn()
	}
	if err := p.SubmitCtx(ctx, task); err != nil {
		return err
	}
	select {
	case err := <-out:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Active is the number of tasks executing now.
func (p *Pool) Active() int { return int(p.busy.Load()) }

// Shutdown refuses new tasks, drains the queue and waits for the workers.
// Later calls return immediately.
func (p *Pool) Shutdown() {
	p.stop.Do(func() {
		close(p.quit)
		p.gate.Lock()
		p.closed = true
		close(p.queue)
		p.gate.Unlock()
		p.wg.Wait()
	})
}

func (p *Pool) run(task func()) {
	p.busy.Add(1)
	defer func() {
		p.busy.Add(-1)
		if r := recover(); r != nil {
			logger.Error("workerpool: task panicked", "panic", fmt.Sprint(r))
		}
	}()
	task()
}

// Package queue runs background jobs (transactional mail, newsletter
// campaigns, reminders) off the request path.
//
//	type OrderStatusMail struct{ OrderID uint }
//	func (j *OrderStatusMail) Handle(ctx context.Context) error { ... }
//
//	queue.Register(func() queue.Job { return &OrderStatusMail{} })
//	queue.Dispatch(ctx, &OrderStatusMail{OrderID: 12})
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/diamantrouge/maison/pkg/logger"
	"github.com/diamantrouge/maison/pkg/metrics"
	"github.com/diamantrouge/maison/pkg/workerpool"
)

// Job is serialised to JSON when queued, so its state must live in
// exported fields.
type Job interface {
	Handle(ctx context.Context) error
}

// Named overrides the registry key, which is otherwise the Go type name.
type Named interface {
	JobName() string
}

// FailedJob is a job that used up its attempts in this process.
type FailedJob struct {
	Type     string
	Job      Job
	Err      error
	FailedAt time.Time
	Attempts int
}

type Driver interface {
	Push(payload []byte) error
	Pop(ctx context.Context) ([]byte, error)
}

// DelayedDriver stores a job until it is due.
type DelayedDriver interface {
	PushDelayed(payload []byte, delay time.Duration) error
}

// message is the wire form pushed to the driver.
type message struct {
	Kind     string          `json:"type"`
	Body     json.RawMessage `json:"payload"`
	QueuedAt time.Time       `json:"enqueuedAt"`
}

type broker struct {
	mu      sync.RWMutex
	driver  Driver
	kinds   map[string]func() Job
	failed  []FailedJob
	tries   int
	backoff time.Duration
	inline  bool
	store   *gorm.DB
}

var std = &broker{
	driver:  NewMemoryDriver(),
	kinds:   map[string]func() Job{},
	tries:   3,
	backoff: time.Second,
}

func SetDriver(d Driver) { std.mu.Lock(); std.driver = d; std.mu.Unlock() }

// SetMaxRetry sets how many attempts a job gets before it is recorded as
// failed.
func SetMaxRetry(n int) { std.mu.Lock(); std.tries = n; std.mu.Unlock() }

// SetBackoff sets the pause after the first failure; the nth failure waits
// n times as long.
func SetBackoff(d time.Duration) { std.mu.Lock(); std.backoff = d; std.mu.Unlock() }

// SetSync makes Dispatch run jobs in the caller's goroutine. Tests and
// one-shot CLI commands use it.
func SetSync(on bool) { std.mu.Lock(); std.inline = on; std.mu.Unlock() }

// Register makes a job type decodable by workers. Call it at boot.
func Register(factory func() Job) {
	kind := kindOf(factory())
	std.mu.Lock()
	std.kinds[kind] = factory
	std.mu.Unlock()
}

func kindOf(job Job) string {
	if n, ok := job.(Named); ok {
		return n.JobName()
	}
	return fmt.Sprintf("%T", job)
}

func (q *broker) current() (Driver, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.driver, q.inline
}

func Dispatch(ctx context.Context, job Job) error {
	driver, inline := std.current()
	if inline {
		std.attempt(ctx, job, kindOf(job))
		return nil
	}
	raw, err := pack(job)
	if err != nil {
		return err
	}
	return driver.Push(raw)
}

// DispatchAfter queues job once delay has passed. Drivers without
// DelayedDriver get an in-process timer, lost on restart.
func DispatchAfter(ctx context.Context, job Job, delay time.Duration) error {
	raw, err := pack(job)
	if err != nil {
		return err
	}
	driver, _ := std.current()
	if dd, ok := driver.(DelayedDriver); ok {
		return dd.PushDelayed(raw, delay)
	}
	time.AfterFunc(delay, func() {
		d, _ := std.current()
		if err := d.Push(raw); err != nil {
			logger.WithCtx(ctx).Error("queue: delayed push failed", "type", kindOf(job), "error", err)
		}
	})
	return nil
}

func pack(job Job) ([]byte, error) {
	kind := kindOf(job)
	body, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("queue: encode %s: %w", kind, err)
	}
	return json.Marshal(message{Kind: kind, Body: body, QueuedAt: time.Now()})
}

// unpack rebuilds the job a worker popped; ok is false for garbage or kinds
// this binary does not know.
func (q *broker) unpack(raw []byte) (job Job, kind string, ok bool) {
	var msg message
	if err := json.Unmarshal(raw, &msg); err != nil {
		logger.Error("queue: undecodable message", "error", err)
		return nil, "", false
	}
	q.mu.RLock()
	factory, known := q.kinds[msg.Kind]
	q.mu.RUnlock()
	if !known {
		logger.Warn("queue: unregistered job type", "type", msg.Kind)
		return nil, msg.Kind, false
	}
	job = factory()
	if err := json.Unmarshal(msg.Body, job); err != nil {
		logger.Error("queue: undecodable payload", "type", msg.Kind, "error", err)
		return nil, msg.Kind, false
	}
	return job, msg.Kind, true
}

// StartWorkers feeds popped jobs to n workers until ctx ends. The returned
// func blocks until running jobs finish.
func StartWorkers(ctx context.Context, n int) (wait func()) {
	pool := workerpool.New(n)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		std.consume(ctx, pool)
	}()
	logger.Info("queue: workers started", "count", n)
	return func() {
		<-stopped
		pool.Shutdown()
	}
}

func (q *broker) consume(ctx context.Context, pool *workerpool.Pool) {
	for ctx.Err() == nil {
		driver, _ := q.current()
		raw, err := driver.Pop(ctx)
		switch {
		case ctx.Err() != nil:
			return
		case err != nil:
			logger.Warn("queue: pop failed", "error", err)
			pause(ctx, 500*time.Millisecond)
			continue
		case raw == nil:
			continue
		}
		job, kind, ok := q.unpack(raw)
		if !ok {
			continue
		}
		if pool.SubmitCtx(ctx, func() { q.attempt(ctx, job, kind) }) != nil {
			return
		}
	}
}

// attempt runs job until it succeeds or its tries are spent, then records
// the outcome.
func (q *broker) attempt(ctx context.Context, job Job, kind string) {
	q.mu.RLock()
	tries, backoff := max(q.tries, 1), q.backoff
	q.mu.RUnlock()

	start := time.Now()
	var err error
	for n := 1; n <= tries; n++ {
		if err = handle(ctx, job); err == nil {
			metrics.RecordQueueJob(kind, "success", start)
			logger.Debug("queue: job done", "type", kind, "attempt", n)
			return
		}
		logger.Warn("queue: attempt failed", "type", kind, "attempt", n, "error", err)
		if n < tries && !pause(ctx, time.Duration(n)*backoff) {
			break
		}
	}
	metrics.RecordQueueJob(kind, "failed", start)
	q.fail(job, kind, err, tries)
	logger.Error("queue: job failed for good", "type", kind, "error", err)
}

func handle(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("queue: job panicked: %v", r)
		}
	}()
	return job.Handle(ctx)
}

// pause sleeps for d and reports false when ctx ended first.
func pause(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// FailedJobs lists the jobs that failed in this process since boot.
func FailedJobs() []FailedJob {
	std.mu.RLock()
	defer std.mu.RUnlock()
	return slices.Clone(std.failed)
}

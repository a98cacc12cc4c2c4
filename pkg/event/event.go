// Package event is an in-process publish/subscribe dispatcher. Listeners
// receive the publisher's context; async listeners get a context that
// survives the end of the request.
//
//	event.Listen(events.OrderPlaced, notifyAdmins)
//	event.FireAsync(ctx, events.OrderPlaced, order)
package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/diamantrouge/maison/pkg/logger"
)

// Handler receives an event payload.
type Handler func(ctx context.Context, payload any)

var (
	mu       sync.RWMutex
	handlers = map[string][]Handler{}
	wg       sync.WaitGroup
)

// Listen registers a handler for the given event name.
func Listen(event string, handler Handler) {
	mu.Lock()
	defer mu.Unlock()
	handlers[event] = append(handlers[event], handler)
}

func snapshot(event string) []Handler {
	mu.RLock()
	defer mu.RUnlock()
	hs := make([]Handler, len(handlers[event]))
	copy(hs, handlers[event])
	return hs
}

// Fire dispatches an event synchronously to all registered listeners.
func Fire(ctx context.Context, event string, payload any) {
	for _, h := range snapshot(event) {
		call(ctx, event, h, payload)
	}
}

// FireAsync dispatches the event to every listener in its own goroutine and
// returns immediately.
func FireAsync(ctx context.Context, event string, payload any) {
	detached := context.WithoutCancel(ctx)
	for _, h := range snapshot(event) {
		wg.Add(1)
		go func(h Handler) {
			defer wg.Done()
			call(detached, event, h, payload)
		}(h)
	}
}

// Wait blocks until every async listener has returned. Called on shutdown
// and by tests.
func Wait() { wg.Wait() }

func call(ctx context.Context, event string, h Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithCtx(ctx).Error("event: listener panicked", "event", event, "panic", fmt.Sprintf("%v", r))
		}
	}()
	h(ctx, payload)
}

// Flush removes all listeners (useful in tests).
func Flush() {
	mu.Lock()
	defer mu.Unlock()
	handlers = map[string][]Handler{}
}

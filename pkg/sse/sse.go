// Package sse provides Server-Sent Events streams and a fan-out broker.
// The admin back-office subscribes to the broker to see new orders live:
//
//	var Orders = sse.NewBroker()
//
//	admin.Get("/orders/stream", "admin.orders.stream", func(w http.ResponseWriter, r *http.Request) {
//	    Orders.Serve(w, r)
//	})
//
//	Orders.Publish("order.placed", orderSummary)
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Stream represents an active SSE connection to one client.
type Stream struct {
	w       http.ResponseWriter
	r       *http.Request
	flusher http.Flusher
	closed  bool
}

// New sets the SSE headers and returns a stream, or nil when the writer
// cannot flush.
func New(w http.ResponseWriter, r *http.Request) *Stream {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return nil
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &Stream{w: w, r: r, flusher: flusher}
}

// Send writes a named event with a JSON-encoded data payload.
func (s *Stream) Send(event string, data any) error {
	if s.IsClosed() {
		return nil
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: marshal: %w", err)
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		s.closed = true
		return err
	}
	s.flusher.Flush()
	return nil
}

// Comment writes an SSE comment, used as a keepalive heartbeat.
func (s *Stream) Comment(msg string) {
	if s.IsClosed() {
		return
	}
	fmt.Fprintf(s.w, ": %s\n\n", msg)
	s.flusher.Flush()
}

// IsClosed reports whether the client has disconnected.
func (s *Stream) IsClosed() bool {
	if s == nil {
		return true
	}
	select {
	case <-s.r.Context().Done():
		s.closed = true
	default:
	}
	return s.closed
}

// Event is one message fanned out by a Broker.
type Event struct {
	Name string
	Data any
}

// Broker fans events out to every subscribed stream. Slow subscribers drop
// events instead of blocking publishers.
type Broker struct {
	mu        sync.RWMutex
	subs      map[chan Event]struct{}
	Heartbeat time.Duration
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[chan Event]struct{}), Heartbeat: 25 * time.Second}
}

// Subscribe registers a new listener. Call the returned function to leave.
func (b *Broker) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
		})
	}
}

// Publish delivers an event to every subscriber.
func (b *Broker) Publish(name string, data any) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- Event{Name: name, Data: data}:
		default:
		}
	}
}

// Subscribers returns the number of connected listeners.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Serve streams broker events to one HTTP client until it disconnects.
func (b *Broker) Serve(w http.ResponseWriter, r *http.Request) {
	stream := New(w, r)
	if stream == nil {
		return
	}

	events, leave := b.Subscribe()
	defer leave()

	heartbeat := time.NewTicker(b.Heartbeat)
	defer heartbeat.Stop()

	_ = stream.Send("ready", map[string]any{"at": time.Now().UTC()})
	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			if err := stream.Send(ev.Name, ev.Data); err != nil {
				return
			}
		case <-heartbeat.C:
			stream.Comment("keepalive")
		}
	}
}

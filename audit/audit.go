// Package audit provides a structured audit trail for auth and access
// events in the console.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Action names emitted by the SDK.
const (
	ActionLogin        = "login"
	ActionLogout       = "logout"
	ActionRefresh      = "session_refresh"
	ActionAccessCheck  = "access_check"
	ActionRoleMutation = "role_permissions_save"
)

// Event records one auth or access decision.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"actor_id,omitempty"`
	OrgID     string    `json:"org_id,omitempty"`
	Action    string    `json:"action"`
	Module    string    `json:"module,omitempty"`
	Feature   string    `json:"feature,omitempty"`
	Result    string    `json:"result"` // success, failure, denied
	Error     string    `json:"error,omitempty"`
}

// Handler processes audit events. Implementations should not block.
type Handler func(event Event)

// Trail emits audit events to configured handlers, asynchronously through
// a buffered queue.
type Trail struct {
	handlers []Handler
	queue    chan Event
	done     chan struct{}
	wg       sync.WaitGroup
}

// Option configures Trail behavior.
type Option func(*Trail)

// WithStdoutHandler adds a handler that writes JSON events to stdout.
func WithStdoutHandler() Option {
	return func(t *Trail) {
		t.AddHandler(func(e Event) {
			data, _ := json.Marshal(e)
			fmt.Fprintf(os.Stdout, "%s\n", data)
		})
	}
}

// WithHandler adds a custom event handler.
func WithHandler(h Handler) Option {
	return func(t *Trail) {
		t.AddHandler(h)
	}
}

// New creates an audit trail with buffered async emission.
// bufferSize: event queue buffer size (default: 1000).
func New(bufferSize int, opts ...Option) *Trail {
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	t := &Trail{
		handlers: make([]Handler, 0),
		queue:    make(chan Event, bufferSize),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}

	t.wg.Add(1)
	go t.process()

	return t
}

// AddHandler adds a handler to receive audit events.
func (t *Trail) AddHandler(h Handler) {
	t.handlers = append(t.handlers, h)
}

// Record emits an audit event asynchronously. A nil trail drops events,
// so callers never need a guard.
func (t *Trail) Record(event Event) {
	if t == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case t.queue <- event:
	case <-t.done:
		// shutting down, event is dropped
	}
}

// process handles events from the queue.
func (t *Trail) process() {
	defer t.wg.Done()

	for {
		select {
		case event := <-t.queue:
			for _, h := range t.handlers {
				h(event)
			}
		case <-t.done:
			// drain remaining events
			for {
				select {
				case event := <-t.queue:
					for _, h := range t.handlers {
						h(event)
					}
				default:
					return
				}
			}
		}
	}
}

// Close flushes pending events and stops the trail.
func (t *Trail) Close() error {
	close(t.done)
	t.wg.Wait()
	return nil
}

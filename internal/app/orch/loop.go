package orch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

var ErrLoopStopped = errors.New("event loop stopped")

type event struct {
	name string
	fn   func()
}

// Loop runs events one at a time so handlers can mutate orchestrator
// state without locks. Each event finishes, sends included, before the
// next one starts.
type Loop struct {
	events   chan event
	stopping chan struct{}
	done     chan struct{}

	// mu orders Submit against shutdown: once stopped is set no event
	// enters the queue, so everything already queued can be drained.
	mu      sync.RWMutex
	stopped bool
}

func NewLoop(buffer int) *Loop {
	return &Loop{
		events:   make(chan event, buffer),
		stopping: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Submit queues fn and blocks while the queue is full. It reports false
// once the loop is stopping; an event it accepted always runs.
func (l *Loop) Submit(name string, fn func()) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.stopped {
		return false
	}
	select {
	case l.events <- event{name: name, fn: fn}:
		return true
	case <-l.stopping:
		return false
	}
}

// Call runs fn on the loop and waits for it to finish.
func (l *Loop) Call(ctx context.Context, name string, fn func()) error {
	finished := make(chan struct{})
	if !l.Submit(name, func() {
		defer close(finished)
		fn()
	}) {
		return ErrLoopStopped
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes events until ctx is done, then runs whatever was already
// accepted and returns.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			l.shutdown()
			return
		case ev := <-l.events:
			l.exec(ev)
		}
	}
}

func (l *Loop) shutdown() {
	close(l.stopping)
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()

	drained := 0
	for {
		select {
		case ev := <-l.events:
			l.exec(ev)
			drained++
		default:
			log.Info().Str("module", "orch.loop").Int("drained", drained).Msg("event loop stopped")
			return
		}
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} { return l.done }

// exec isolates a panicking handler to its own event.
func (l *Loop) exec(ev event) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "orch.loop").Str("event", ev.name).Err(fmt.Errorf("%v", r)).Msg("event handler panicked")
		}
	}()
	ev.fn()
}

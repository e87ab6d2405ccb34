// Package events is the in-process event bus that decouples producers
// (sales, payables, receivables, expenses) from the ledger's posting rules.
//
// Publish is fan-out-and-wait: every subscriber of the event runs, in
// subscription order, before Publish returns. A failing or panicking
// subscriber is logged and does not stop its siblings.
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/books/internal/logging"
)

// Handler reacts to one published event.
type Handler func(ctx context.Context, evt Event) error

// Outcome describes one handler invocation.
type Outcome struct {
	Event    string
	Handler  string
	Err      error
	Duration time.Duration
}

// Observer is told about every handler outcome. Observers must not fail.
type Observer func(ctx context.Context, evt Event, o Outcome)

type subscriber struct {
	name   string
	handle Handler
}

// Bus dispatches events to named subscribers.
type Bus struct {
	mu        sync.RWMutex
	subs      map[string][]subscriber
	observers []Observer
	logger    *logrus.Logger
	strict    bool
}

// Option configures a Bus.
type Option func(*Bus)

// WithStrict makes Publish return the joined handler errors instead of only
// logging them. The publisher's own state is never rolled back.
func WithStrict(strict bool) Option {
	return func(b *Bus) { b.strict = strict }
}

// WithObserver registers an observer for every handler outcome.
func WithObserver(o Observer) Option {
	return func(b *Bus) { b.observers = append(b.observers, o) }
}

// NewBus creates an empty bus.
func NewBus(logger *logrus.Logger, opts ...Option) *Bus {
	b := &Bus{subs: make(map[string][]subscriber), logger: logger}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers handler under name for one event type.
func (b *Bus) Subscribe(event, name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[event] = append(b.subs[event], subscriber{name: name, handle: h})
}

// Subscribers returns the handler names registered for event, in order.
func (b *Bus) Subscribers(event string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.subs[event]))
	for _, s := range b.subs[event] {
		names = append(names, s.name)
	}
	return names
}

// Publish runs every subscriber of evt and waits for all of them.
func (b *Bus) Publish(ctx context.Context, evt Event) error {
	b.mu.RLock()
	subs := append([]subscriber(nil), b.subs[evt.EventName()]...)
	observers := append([]Observer(nil), b.observers...)
	b.mu.RUnlock()

	var errs []error
	for _, s := range subs {
		start := time.Now()
		err := invoke(ctx, s.handle, evt)
		o := Outcome{Event: evt.EventName(), Handler: s.name, Err: err, Duration: time.Since(start)}

		if err != nil {
			logging.LogError(b.logger, "events", "Publish", s.name, evt.EventName(), err)
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
		for _, obs := range observers {
			obs(ctx, evt, o)
		}
	}

	if b.strict {
		return errors.Join(errs...)
	}
	return nil
}

func invoke(ctx context.Context, h Handler, evt Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, evt)
}

// Package eventbus provides the in-process pub/sub used to decouple the
// pipeline from listeners such as the scheduler and gateway.
package eventbus

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"oura-ai/internal/domain"
)

// Bus fans events out to registered handlers. Safe for concurrent use.
type Bus struct {
	mu       sync.RWMutex
	byType   map[domain.EventType]map[uint64]domain.EventHandler
	wildcard map[uint64]domain.EventHandler
	lastID   atomic.Uint64
	logger   *slog.Logger
	inflight sync.WaitGroup
	closed   atomic.Bool
}

func New(logger *slog.Logger) *Bus {
	return &Bus{
		byType:   make(map[domain.EventType]map[uint64]domain.EventHandler),
		wildcard: make(map[uint64]domain.EventHandler),
		logger:   logger,
	}
}

// Publish delivers event to every handler subscribed to its type plus every
// wildcard handler. Each handler runs on its own goroutine; a panic in one
// handler is logged and never reaches the publisher.
func (b *Bus) Publish(ctx context.Context, event domain.Event) {
	if b.closed.Load() {
		return
	}

	b.mu.RLock()
	targets := make([]domain.EventHandler, 0, len(b.byType[event.Type])+len(b.wildcard))
	for _, h := range b.byType[event.Type] {
		targets = append(targets, h)
	}
	for _, h := range b.wildcard {
		targets = append(targets, h)
	}
	b.mu.RUnlock()

	for _, h := range targets {
		b.inflight.Add(1)
		go b.run(ctx, event, h)
	}
}

func (b *Bus) run(ctx context.Context, event domain.Event, handler domain.EventHandler) {
	defer b.inflight.Done()
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				"event", string(event.Type),
				"panic", r,
			)
		}
	}()
	handler(ctx, event)
}

// Subscribe registers handler for one event type and returns its
// unsubscribe function.
func (b *Bus) Subscribe(eventType domain.EventType, handler domain.EventHandler) func() {
	id := b.lastID.Add(1)

	b.mu.Lock()
	if b.byType[eventType] == nil {
		b.byType[eventType] = make(map[uint64]domain.EventHandler)
	}
	b.byType[eventType][id] = handler
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.byType[eventType], id)
		b.mu.Unlock()
	}
}

// SubscribeAll registers handler for every event type and returns its
// unsubscribe function.
func (b *Bus) SubscribeAll(handler domain.EventHandler) func() {
	id := b.lastID.Add(1)

	b.mu.Lock()
	b.wildcard[id] = handler
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.wildcard, id)
		b.mu.Unlock()
	}
}

// Close stops accepting publishes and blocks until in-flight handlers
// return. Idempotent.
func (b *Bus) Close() {
	if b.closed.Swap(true) {
		return
	}
	b.inflight.Wait()
}

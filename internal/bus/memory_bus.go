package bus

import (
	"context"
	"log"
	"sync"

	"github.com/streetmarket/market/internal/envelope"
	"github.com/streetmarket/market/internal/topics"
)

// MemoryBus is an in-process Bus used by tests so they exercise the full
// publish/subscribe contract (including wildcard fan-out and per-producer
// ordering) without a running broker.
type MemoryBus struct {
	mu   sync.Mutex
	subs []memorySub
}

type memorySub struct {
	pattern string
	handler Handler
	ch      chan envelope.Envelope
}

// NewMemoryBus constructs a ready-to-use in-memory bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{}
}

// Connect is a no-op; the in-memory bus is always ready.
func (b *MemoryBus) Connect(ctx context.Context) error {
	return nil
}

// Publish queues env, in publish order, on every subscription whose pattern
// matches topic. Each subscription's own goroutine then runs its handler,
// so delivery is asynchronous to the caller.
func (b *MemoryBus) Publish(ctx context.Context, topic string, env envelope.Envelope) error {
	b.mu.Lock()
	var targets []memorySub
	for _, s := range b.subs {
		if matches(s.pattern, topic) {
			targets = append(targets, s)
		}
	}
	b.mu.Unlock()

	for _, s := range targets {
		s.ch <- env
	}
	return nil
}

// Subscribe registers handler for every delivery whose topic matches
// pattern, in arrival order.
func (b *MemoryBus) Subscribe(ctx context.Context, pattern string, handler Handler) error {
	ch := make(chan envelope.Envelope, 256)
	sub := memorySub{pattern: pattern, handler: handler, ch: ch}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case env := <-ch:
				if err := handler(env); err != nil {
					log.Printf("[memory-bus] handler error on %s: %v", env.Topic, err)
				}
			}
		}
	}()

	return nil
}

// Close is a no-op for the in-memory bus; subscriptions stop when their
// context is cancelled.
func (b *MemoryBus) Close() error {
	return nil
}

func matches(pattern, topic string) bool {
	return topics.MatchesPattern(pattern, topic)
}

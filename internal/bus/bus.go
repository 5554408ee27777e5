// Package bus provides the topic-addressed publish/subscribe client every
// service depends on. Bus is the seam every service programs against;
// KafkaBus is the production transport and MemoryBus is an in-process
// stand-in used by tests that does not require a running broker.
package bus

import (
	"context"

	"github.com/streetmarket/market/internal/envelope"
)

// Handler processes one delivered envelope. A handler that returns an error
// is logged and swallowed — the subscription continues.
type Handler func(envelope.Envelope) error

// Bus is the contract every service (World, Governor, Banker, Agent
// runtime) depends on. Implementations must serialise handler invocations
// for a single subscription in arrival order.
type Bus interface {
	// Connect establishes a persistent session, retrying with bounded
	// backoff on failure before returning a fatal error.
	Connect(ctx context.Context) error
	// Publish serialises env and sends it on topic.
	Publish(ctx context.Context, topic string, env envelope.Envelope) error
	// Subscribe registers handler for every canonical topic matching
	// pattern (which may end in the `/>` trailing wildcard).
	Subscribe(ctx context.Context, pattern string, handler Handler) error
	// Close drains outstanding deliveries and tears down subscriptions.
	Close() error
}

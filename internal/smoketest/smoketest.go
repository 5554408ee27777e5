// Package smoketest runs a minimal end-to-end scenario against a Bus: a
// farmer offers potatoes, a chef bids, the farmer accepts, and the
// scenario waits until all three messages have round-tripped. It exists
// to prove the bus and envelope plumbing work without standing up the
// full set of services.
package smoketest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/streetmarket/market/internal/bus"
	"github.com/streetmarket/market/internal/envelope"
	"github.com/streetmarket/market/internal/factory"
	"github.com/streetmarket/market/internal/topics"
	"github.com/streetmarket/market/internal/validate"
)

// Result reports what the scenario observed.
type Result struct {
	Received []envelope.Envelope
}

// Run publishes an offer, a bid, and an accept onto b's raw-goods topic and
// waits until all three have been observed back on the same subscription,
// or until timeout elapses.
func Run(ctx context.Context, b bus.Bus, timeout time.Duration) (Result, error) {
	if err := b.Connect(ctx); err != nil {
		return Result{}, fmt.Errorf("connect: %w", err)
	}

	var mu sync.Mutex
	var received []envelope.Envelope
	done := make(chan struct{})
	var once sync.Once

	err := b.Subscribe(ctx, topics.MarketRawGoods, func(env envelope.Envelope) error {
		mu.Lock()
		received = append(received, env)
		count := len(received)
		mu.Unlock()
		if count >= 3 {
			once.Do(func() { close(done) })
		}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("subscribe: %w", err)
	}

	time.Sleep(100 * time.Millisecond)

	expires := 150
	offer, err := factory.CreateMessage("farmer-01", topics.MarketRawGoods, 42, envelope.KindOffer, envelope.Offer{
		Item: "potato", Quantity: 10, PricePerUnit: 3.0, ExpiresTick: &expires,
	})
	if err != nil {
		return Result{}, err
	}
	if errs := validate.Message(offer); len(errs) > 0 {
		return Result{}, fmt.Errorf("offer validation failed: %v", errs)
	}
	if err := b.Publish(ctx, topics.MarketRawGoods, offer); err != nil {
		return Result{}, fmt.Errorf("publish offer: %w", err)
	}

	targetAgent := "farmer-01"
	bid, err := factory.CreateMessage("chef-01", topics.MarketRawGoods, 42, envelope.KindBid, envelope.Bid{
		Item: "potato", Quantity: 5, MaxPricePerUnit: 4.0, TargetAgent: &targetAgent,
	})
	if err != nil {
		return Result{}, err
	}
	if errs := validate.Message(bid); len(errs) > 0 {
		return Result{}, fmt.Errorf("bid validation failed: %v", errs)
	}
	if err := b.Publish(ctx, topics.MarketRawGoods, bid); err != nil {
		return Result{}, fmt.Errorf("publish bid: %w", err)
	}

	accept, err := factory.CreateMessage("farmer-01", topics.MarketRawGoods, 43, envelope.KindAccept, envelope.Accept{
		ReferenceMsgID: bid.ID, Quantity: 5,
	})
	if err != nil {
		return Result{}, err
	}
	if errs := validate.Message(accept); len(errs) > 0 {
		return Result{}, fmt.Errorf("accept validation failed: %v", errs)
	}
	if err := b.Publish(ctx, topics.MarketRawGoods, accept); err != nil {
		return Result{}, fmt.Errorf("publish accept: %w", err)
	}

	select {
	case <-done:
	case <-time.After(timeout):
		mu.Lock()
		n := len(received)
		mu.Unlock()
		return Result{Received: received}, fmt.Errorf("timed out waiting for messages, received %d/3", n)
	}

	mu.Lock()
	defer mu.Unlock()
	return Result{Received: received}, nil
}

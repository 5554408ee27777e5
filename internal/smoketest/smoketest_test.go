package smoketest

import (
	"context"
	"testing"
	"time"

	"github.com/streetmarket/market/internal/bus"
	"github.com/streetmarket/market/internal/envelope"
)

func TestSmokeScenario(t *testing.T) {
	b := bus.NewMemoryBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result, err := Run(ctx, b, 2*time.Second)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.Received) != 3 {
		t.Fatalf("expected 3 messages received, got %d", len(result.Received))
	}

	kinds := map[envelope.Kind]bool{}
	for _, env := range result.Received {
		kinds[env.Type] = true
	}
	for _, want := range []envelope.Kind{envelope.KindOffer, envelope.KindBid, envelope.KindAccept} {
		if !kinds[want] {
			t.Errorf("expected to observe a %s message", want)
		}
	}
}

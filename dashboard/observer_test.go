package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/streetmarket/market/internal/bus"
	"github.com/streetmarket/market/internal/envelope"
	"github.com/streetmarket/market/internal/factory"
	"github.com/streetmarket/market/internal/topics"
)

func TestObserverBroadcastsSettlement(t *testing.T) {
	b := bus.NewMemoryBus()
	h := newHub()
	go h.run()

	captured := make(chan frame, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	o := newObserver(b, h)
	if err := o.start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	registerCapture(h, captured)

	env, err := factory.CreateMessage("banker", topics.MarketBank, 1, envelope.KindSettlement, envelope.Settlement{
		ReferenceMsgID: "offer-1",
		Buyer:          "chef-01",
		Seller:         "farmer-01",
		Item:           "potato",
		Quantity:       5,
		TotalPrice:     10.0,
		Status:         "completed",
	})
	if err != nil {
		t.Fatalf("build settlement: %v", err)
	}
	if err := b.Publish(ctx, topics.MarketBank, env); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case f := <-captured:
		if f.Type != "settlement" {
			t.Fatalf("expected settlement frame, got %q", f.Type)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for broadcast frame")
	}
}

// registerCapture registers a fake client (no websocket connection) with
// the hub, so the hub's normal client fan-out loop delivers the next
// broadcast frame to it; that frame is decoded and sent on captured.
func registerCapture(h *hub, captured chan frame) {
	raw := make(chan []byte, 1)
	c := &fakeSink{ch: raw}
	h.register <- c.asClient(h)

	go func() {
		data := <-raw
		var f frame
		_ = json.Unmarshal(data, &f)
		captured <- f
	}()
}

type fakeSink struct {
	ch chan []byte
}

func (f *fakeSink) asClient(h *hub) *client {
	c := &client{send: f.ch, hub: h}
	return c
}

package main

import (
	"context"
	"sync/atomic"

	"github.com/streetmarket/market/internal/bus"
	"github.com/streetmarket/market/internal/envelope"
	"github.com/streetmarket/market/internal/factory"
	"github.com/streetmarket/market/internal/topics"
)

// observer subscribes to the topics a dashboard cares about and rebroadcasts
// every observed envelope as a typed frame. It never publishes back to the
// market — it is a pure sink.
type observer struct {
	bus bus.Bus
	hub *hub

	ticksSeen       int64
	settlementsSeen int64
}

func newObserver(b bus.Bus, h *hub) *observer {
	return &observer{bus: b, hub: h}
}

func (o *observer) start(ctx context.Context) error {
	if err := o.bus.Connect(ctx); err != nil {
		return err
	}
	atomic.StoreInt32(&busReady, 1)

	if err := o.bus.Subscribe(ctx, topics.SystemTick, o.onTick); err != nil {
		return err
	}
	if err := o.bus.Subscribe(ctx, topics.MarketBank, o.onBank); err != nil {
		return err
	}
	if err := o.bus.Subscribe(ctx, topics.WorldNature, o.onNature); err != nil {
		return err
	}
	return o.bus.Subscribe(ctx, topics.MarketGovernance, o.onGovernance)
}

func (o *observer) onTick(env envelope.Envelope) error {
	payload, err := factory.ParsePayload(env)
	if err != nil {
		return err
	}
	tick := payload.(*envelope.Tick)
	atomic.AddInt64(&o.ticksSeen, 1)
	o.hub.broadcastFrame("tick", tick)
	return nil
}

func (o *observer) onBank(env envelope.Envelope) error {
	payload, err := factory.ParsePayload(env)
	if err != nil {
		return err
	}
	settlement, ok := payload.(*envelope.Settlement)
	if !ok {
		return nil
	}
	atomic.AddInt64(&o.settlementsSeen, 1)
	o.hub.broadcastFrame("settlement", settlement)
	return nil
}

func (o *observer) onNature(env envelope.Envelope) error {
	if env.Type != envelope.KindGatherResult {
		return nil
	}
	payload, err := factory.ParsePayload(env)
	if err != nil {
		return err
	}
	o.hub.broadcastFrame("gather_result", payload.(*envelope.GatherResult))
	return nil
}

func (o *observer) onGovernance(env envelope.Envelope) error {
	payload, err := factory.ParsePayload(env)
	if err != nil {
		return err
	}
	if p, ok := payload.(*envelope.ValidationResult); ok {
		o.hub.broadcastFrame("validation_result", p)
	}
	return nil
}

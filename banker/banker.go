package main

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/streetmarket/market/internal/bus"
	"github.com/streetmarket/market/internal/envelope"
	"github.com/streetmarket/market/internal/factory"
	"github.com/streetmarket/market/internal/topics"
)

// AgentID is the Banker's own envelope.From identity.
const AgentID = "banker"

// metricsInterval is how often the Banker logs its running settlement
// count and traded volume. The dashboard observes settlements directly
// off the bus; this is purely for operator-facing logs.
const metricsInterval = 30 * time.Second

// Banker is the single source of truth for every agent's wallet and
// inventory, the order book, and all trade settlements.
type Banker struct {
	bus   bus.Bus
	state *State

	settlements      int64
	volumeMilliunits int64 // volume * 1000, kept integral for atomic accumulation
}

// NewBanker constructs a Banker on top of b.
func NewBanker(b bus.Bus) *Banker {
	return &Banker{bus: b, state: NewState()}
}

// State exposes the Banker's internal state for white-box testing.
func (bk *Banker) State() *State {
	return bk.state
}

// Start connects the bus and subscribes to market, world, and tick topics.
func (bk *Banker) Start(ctx context.Context) error {
	if err := bk.bus.Connect(ctx); err != nil {
		return err
	}
	if err := bk.bus.Subscribe(ctx, "/market/>", bk.onMarketMessage); err != nil {
		return err
	}
	if err := bk.bus.Subscribe(ctx, "/world/>", bk.onWorldMessage); err != nil {
		return err
	}
	if err := bk.bus.Subscribe(ctx, topics.SystemTick, bk.onTick); err != nil {
		return err
	}

	go bk.logMetricsPeriodically(ctx)
	return nil
}

func (bk *Banker) logMetricsPeriodically(ctx context.Context) {
	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			settlements := atomic.LoadInt64(&bk.settlements)
			volume := float64(atomic.LoadInt64(&bk.volumeMilliunits)) / 1000.0
			log.Printf("[banker] settlements=%d volume=%.2f", settlements, volume)
		}
	}
}

func (bk *Banker) onTick(env envelope.Envelope) error {
	payload, err := factory.ParsePayload(env)
	if err != nil {
		return err
	}
	tick := payload.(*envelope.Tick)
	bk.state.AdvanceTick(tick.TickNumber)
	bk.state.PurgeExpiredOrders()
	return nil
}

func (bk *Banker) onWorldMessage(env envelope.Envelope) error {
	if env.Type != envelope.KindGatherResult {
		return nil
	}
	payload, err := factory.ParsePayload(env)
	if err != nil {
		return err
	}
	processGatherResult(payload.(*envelope.GatherResult), bk.state)
	return nil
}

func (bk *Banker) onMarketMessage(env envelope.Envelope) error {
	if env.From == AgentID && env.Type == envelope.KindSettlement {
		return nil
	}

	payload, err := factory.ParsePayload(env)
	if err != nil {
		return nil // malformed payloads are the Governor's concern, not fatal here
	}

	switch p := payload.(type) {
	case *envelope.Join:
		agentID := p.AgentID
		if agentID == "" {
			agentID = env.From
		}
		processJoin(agentID, bk.state)
	case *envelope.Offer:
		processOffer(env.From, env, p, bk.state)
	case *envelope.Bid:
		processBid(env.From, env, p, bk.state)
	case *envelope.Accept:
		result := processAccept(env.From, p, bk.state)
		if len(result.Errors) == 0 {
			return bk.publishSettlement(result)
		}
	case *envelope.CraftStart:
		processCraftStart(env.From, p, bk.state)
	case *envelope.CraftComplete:
		agentID := p.Agent
		if agentID == "" {
			agentID = env.From
		}
		processCraftComplete(agentID, p, bk.state)
	}

	return nil
}

func (bk *Banker) publishSettlement(result TradeResult) error {
	env, err := factory.CreateMessage(AgentID, topics.MarketBank, bk.state.CurrentTick(), envelope.KindSettlement, envelope.Settlement{
		ReferenceMsgID: result.ReferenceMsgID,
		Buyer:          result.Buyer,
		Seller:         result.Seller,
		Item:           result.Item,
		Quantity:       result.Quantity,
		TotalPrice:     result.TotalPrice,
		Status:         "completed",
	})
	if err != nil {
		return err
	}

	atomic.AddInt64(&bk.settlements, 1)
	atomic.AddInt64(&bk.volumeMilliunits, int64(result.TotalPrice*1000))

	if err := bk.bus.Publish(context.Background(), topics.MarketBank, env); err != nil {
		log.Printf("[banker] publish settlement: %v", err)
		return err
	}
	return nil
}

package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/streetmarket/market/internal/envelope"
	"github.com/streetmarket/market/internal/factory"
	"github.com/streetmarket/market/internal/topics"

	"github.com/streetmarket/market/internal/bus"
)

// AgentID is the World Engine's own envelope.From identity, used to filter
// out its own publications from the gather handler.
const AgentID = "world"

// Engine drives the simulation clock and the FCFS gather protocol.
type Engine struct {
	bus          bus.Bus
	state        *State
	tickInterval time.Duration

	ticksPublished int64
	gathersHandled int64
}

// NewEngine constructs a World Engine reading its tick interval from
// WORLD_TICK_INTERVAL (seconds), defaulting to DefaultTickInterval.
func NewEngine(b bus.Bus) *Engine {
	interval := DefaultTickInterval
	if raw := os.Getenv("WORLD_TICK_INTERVAL"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			interval = v
		}
	}
	return &Engine{
		bus:          b,
		state:        NewState(),
		tickInterval: time.Duration(interval * float64(time.Second)),
	}
}

// State exposes the engine's internal state for white-box testing.
func (e *Engine) State() *State {
	return e.state
}

// Start connects the bus, subscribes to nature messages, and begins the
// tick loop. It returns once the initial subscription is registered; the
// tick loop itself runs until ctx is cancelled.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.bus.Connect(ctx); err != nil {
		return err
	}
	if err := e.bus.Subscribe(ctx, topics.WorldNature, e.onNature); err != nil {
		return err
	}

	go e.tickLoop(ctx)
	return nil
}

func (e *Engine) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.doTick(ctx)
		}
	}
}

func (e *Engine) doTick(ctx context.Context) {
	tick := e.state.AdvanceTick()
	pool := e.state.CreateSpawn()

	tickEnv, err := factory.CreateMessage(AgentID, topics.SystemTick, tick, envelope.KindTick, envelope.Tick{
		TickNumber: tick,
		Timestamp:  float64(time.Now().UnixNano()) / 1e9,
	})
	if err != nil {
		log.Printf("[world] build tick message: %v", err)
		return
	}
	if err := e.bus.Publish(ctx, topics.SystemTick, tickEnv); err != nil {
		log.Printf("[world] publish tick: %v", err)
	} else {
		atomic.AddInt64(&e.ticksPublished, 1)
	}

	spawnEnv, err := factory.CreateMessage(AgentID, topics.WorldNature, tick, envelope.KindSpawn, envelope.Spawn{
		SpawnID: pool.SpawnID,
		Tick:    pool.Tick,
		Items:   pool.Remaining,
	})
	if err != nil {
		log.Printf("[world] build spawn message: %v", err)
		return
	}
	if err := e.bus.Publish(ctx, topics.WorldNature, spawnEnv); err != nil {
		log.Printf("[world] publish spawn: %v", err)
	}

	log.Printf("[world] tick=%d spawn=%s", tick, pool.SpawnID)
}

func (e *Engine) onNature(env envelope.Envelope) error {
	if env.From == AgentID {
		return nil
	}
	if env.Type != envelope.KindGather {
		return nil
	}

	payload, err := factory.ParsePayload(env)
	if err != nil {
		return err
	}
	gather := payload.(*envelope.Gather)

	outcome := processGather(*gather, e.state)
	atomic.AddInt64(&e.gathersHandled, 1)

	var reasonPtr *string
	if outcome.Reason != "" {
		reasonPtr = &outcome.Reason
	}

	resultEnv, err := factory.CreateMessage(AgentID, topics.WorldNature, e.state.CurrentTick(), envelope.KindGatherResult, envelope.GatherResult{
		ReferenceMsgID: env.ID,
		SpawnID:        outcome.SpawnID,
		AgentID:        env.From,
		Item:           gather.Item,
		Quantity:       outcome.Granted,
		Success:        outcome.Success,
		Reason:         reasonPtr,
	})
	if err != nil {
		return err
	}

	return e.bus.Publish(context.Background(), topics.WorldNature, resultEnv)
}

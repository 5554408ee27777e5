package main

import (
	"context"
	"log"
	"strings"
	"sync/atomic"

	"github.com/streetmarket/market/internal/bus"
	"github.com/streetmarket/market/internal/envelope"
	"github.com/streetmarket/market/internal/factory"
	"github.com/streetmarket/market/internal/topics"
	"github.com/streetmarket/market/internal/validate"
)

// AgentID is the Governor's own envelope.From identity.
const AgentID = "governor"

// Governor is the admission-control gate: every market message is
// structurally and then business-rule validated before publishing an
// advisory ValidationResult. It never blocks delivery to the Banker.
type Governor struct {
	bus   bus.Bus
	state *State

	validated int64
	rejected  int64
}

// NewGovernor constructs a Governor on top of b.
func NewGovernor(b bus.Bus) *Governor {
	return &Governor{bus: b, state: NewState()}
}

// State exposes the Governor's internal state for white-box testing.
func (g *Governor) State() *State {
	return g.state
}

// Start connects the bus and subscribes to every market message and tick.
func (g *Governor) Start(ctx context.Context) error {
	if err := g.bus.Connect(ctx); err != nil {
		return err
	}
	if err := g.bus.Subscribe(ctx, "/market/>", g.onMarketMessage); err != nil {
		return err
	}
	return g.bus.Subscribe(ctx, topics.SystemTick, g.onTick)
}

func (g *Governor) onTick(env envelope.Envelope) error {
	payload, err := factory.ParsePayload(env)
	if err != nil {
		return err
	}
	tick := payload.(*envelope.Tick)
	g.state.AdvanceTick(tick.TickNumber)
	return nil
}

func (g *Governor) onMarketMessage(env envelope.Envelope) error {
	if env.From == AgentID && env.Type == envelope.KindValidationResult {
		return nil
	}

	structuralErrs := validate.Message(env)
	if len(structuralErrs) > 0 {
		g.state.RecordAction(env.From)
		atomic.AddInt64(&g.rejected, 1)
		return g.publishResult(env, false, strings.Join(structuralErrs, "; "))
	}

	payload, err := factory.ParsePayload(env)
	if err != nil {
		g.state.RecordAction(env.From)
		atomic.AddInt64(&g.rejected, 1)
		return g.publishResult(env, false, err.Error())
	}

	businessErrs := validateBusinessRules(env, payload, g.state)
	g.state.RecordAction(env.From)
	atomic.AddInt64(&g.validated, 1)

	if len(businessErrs) > 0 {
		atomic.AddInt64(&g.rejected, 1)
		return g.publishResult(env, false, strings.Join(businessErrs, "; "))
	}
	return g.publishResult(env, true, "")
}

func (g *Governor) publishResult(original envelope.Envelope, valid bool, reason string) error {
	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}
	action := string(original.Type)

	resultEnv, err := factory.CreateMessage(AgentID, topics.MarketGovernance, g.state.CurrentTick(), envelope.KindValidationResult, envelope.ValidationResult{
		ReferenceMsgID: original.ID,
		Valid:          valid,
		Reason:         reasonPtr,
		Action:         &action,
	})
	if err != nil {
		return err
	}

	if err := g.bus.Publish(context.Background(), topics.MarketGovernance, resultEnv); err != nil {
		log.Printf("[governor] publish validation result: %v", err)
		return err
	}
	return nil
}

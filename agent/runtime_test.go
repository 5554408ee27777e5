package agent

import (
	"context"
	"testing"

	"github.com/streetmarket/market/internal/bus"
	"github.com/streetmarket/market/internal/envelope"
	"github.com/streetmarket/market/internal/factory"
)

// recordingBus is a synchronous Bus test double: Publish appends directly
// to Published rather than fanning out through a goroutine, so tests can
// assert on runtime output without timing dependence.
type recordingBus struct {
	Published []envelope.Envelope
}

func (b *recordingBus) Connect(ctx context.Context) error { return nil }

func (b *recordingBus) Publish(ctx context.Context, topic string, env envelope.Envelope) error {
	b.Published = append(b.Published, env)
	return nil
}

func (b *recordingBus) Subscribe(ctx context.Context, pattern string, handler bus.Handler) error {
	return nil
}

func (b *recordingBus) Close() error { return nil }

func newTestRuntime(strategy Strategy) (*Runtime, *recordingBus) {
	rb := &recordingBus{}
	r := NewRuntime(rb, Identity{AgentID: "farmer-01", Name: "Farmer", Description: "grows things"}, strategy)
	return r, rb
}

func tickEnvelope(tick int) envelope.Envelope {
	env, _ := factory.CreateMessage("world", "/system/tick", tick, envelope.KindTick, envelope.Tick{TickNumber: tick})
	return env
}

func TestOnTickImplicitJoin(t *testing.T) {
	r, rb := newTestRuntime(func(s *State) []Action { return nil })

	if err := r.onTick(tickEnvelope(1)); err != nil {
		t.Fatalf("onTick: %v", err)
	}

	if !r.state.Joined {
		t.Fatalf("expected state to be joined after first tick")
	}
	if len(rb.Published) != 1 || rb.Published[0].Type != envelope.KindJoin {
		t.Fatalf("expected a single join envelope, got %+v", rb.Published)
	}
	if r.state.ActionsThisTick != 0 {
		t.Errorf("join must not count against the action budget, got %d", r.state.ActionsThisTick)
	}
}

func TestOnTickImplicitHeartbeat(t *testing.T) {
	r, rb := newTestRuntime(func(s *State) []Action { return nil })
	r.state.Joined = true
	r.state.LastHeartbeatTick = 0

	if err := r.onTick(tickEnvelope(5)); err != nil {
		t.Fatalf("onTick: %v", err)
	}

	if len(rb.Published) != 1 || rb.Published[0].Type != envelope.KindHeartbeat {
		t.Fatalf("expected a single heartbeat envelope, got %+v", rb.Published)
	}
	if r.state.ActionsThisTick != 1 {
		t.Errorf("heartbeat must count against the action budget, got %d", r.state.ActionsThisTick)
	}
}

func TestOnTickInvokesStrategyWithinBudget(t *testing.T) {
	calls := 0
	strategy := func(s *State) []Action {
		calls++
		return []Action{
			{Kind: KindGather, Params: map[string]interface{}{"spawn_id": "spawn-1", "item": "potato", "quantity": 3}},
			{Kind: KindGather, Params: map[string]interface{}{"spawn_id": "spawn-1", "item": "potato", "quantity": 3}},
		}
	}
	r, rb := newTestRuntime(strategy)
	r.state.Joined = true
	r.state.LastHeartbeatTick = 100

	if err := r.onTick(tickEnvelope(1)); err != nil {
		t.Fatalf("onTick: %v", err)
	}

	if calls != 1 {
		t.Fatalf("expected strategy invoked once, got %d", calls)
	}
	gatherCount := 0
	for _, env := range rb.Published {
		if env.Type == envelope.KindGather {
			gatherCount++
		}
	}
	if gatherCount != 2 {
		t.Fatalf("expected both gather actions published, got %d", gatherCount)
	}
}

func TestOnTickStopsAtBudget(t *testing.T) {
	actions := make([]Action, 0, 6)
	for i := 0; i < 6; i++ {
		actions = append(actions, Action{Kind: KindGather, Params: map[string]interface{}{"spawn_id": "spawn-1", "item": "potato", "quantity": 1}})
	}
	r, rb := newTestRuntime(func(s *State) []Action { return actions })
	r.state.Joined = true
	r.state.LastHeartbeatTick = 100

	if err := r.onTick(tickEnvelope(1)); err != nil {
		t.Fatalf("onTick: %v", err)
	}

	gatherCount := 0
	for _, env := range rb.Published {
		if env.Type == envelope.KindGather {
			gatherCount++
		}
	}
	if gatherCount != MaxActionsPerTick {
		t.Fatalf("expected gather actions capped at %d, got %d", MaxActionsPerTick, gatherCount)
	}
}

func TestOnTickImplicitCraftComplete(t *testing.T) {
	r, rb := newTestRuntime(func(s *State) []Action { return nil })
	r.state.Joined = true
	r.state.LastHeartbeatTick = 100
	r.state.ActiveCraft = &CraftingJob{Recipe: "soup", StartedTick: 0, DurationTicks: 2}

	if err := r.onTick(tickEnvelope(2)); err != nil {
		t.Fatalf("onTick: %v", err)
	}

	if r.state.ActiveCraft != nil {
		t.Fatalf("expected active craft to be cleared on completion")
	}
	if r.state.Inventory["soup"] != 1 {
		t.Errorf("expected soup credited locally, got %d", r.state.Inventory["soup"])
	}

	found := false
	for _, env := range rb.Published {
		if env.Type == envelope.KindCraftComplete {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected craft_complete published")
	}
}

func TestOnNatureUpdatesSpawn(t *testing.T) {
	r, _ := newTestRuntime(func(s *State) []Action { return nil })
	env, _ := factory.CreateMessage("world", "/world/nature", 1, envelope.KindSpawn, envelope.Spawn{
		SpawnID: "spawn-9",
		Tick:    1,
		Items:   map[string]int{"potato": 5},
	})

	if err := r.onNature(env); err != nil {
		t.Fatalf("onNature: %v", err)
	}
	if r.state.CurrentSpawnID != "spawn-9" {
		t.Fatalf("expected spawn id recorded, got %q", r.state.CurrentSpawnID)
	}
	if r.state.CurrentSpawnItems["potato"] != 5 {
		t.Fatalf("expected spawn items recorded")
	}
}

func TestOnNatureCreditsSuccessfulGatherResult(t *testing.T) {
	r, _ := newTestRuntime(func(s *State) []Action { return nil })
	env, _ := factory.CreateMessage("world", "/world/nature", 1, envelope.KindGatherResult, envelope.GatherResult{
		ReferenceMsgID: "gather-1",
		SpawnID:        "spawn-9",
		AgentID:        "farmer-01",
		Item:           "potato",
		Quantity:       7,
		Success:        true,
	})

	if err := r.onNature(env); err != nil {
		t.Fatalf("onNature: %v", err)
	}
	if got := r.state.InventoryCount("potato"); got != 7 {
		t.Fatalf("expected potato inventory credited to 7, got %d", got)
	}
}

func TestOnNatureIgnoresFailedGatherResult(t *testing.T) {
	r, _ := newTestRuntime(func(s *State) []Action { return nil })
	env, _ := factory.CreateMessage("world", "/world/nature", 1, envelope.KindGatherResult, envelope.GatherResult{
		ReferenceMsgID: "gather-1",
		SpawnID:        "spawn-9",
		AgentID:        "farmer-01",
		Item:           "potato",
		Quantity:       0,
		Success:        false,
	})

	if err := r.onNature(env); err != nil {
		t.Fatalf("onNature: %v", err)
	}
	if got := r.state.InventoryCount("potato"); got != 0 {
		t.Fatalf("expected no credit on failed gather, got %d", got)
	}
}

func TestOnNatureIgnoresGatherResultForOtherAgent(t *testing.T) {
	r, _ := newTestRuntime(func(s *State) []Action { return nil })
	env, _ := factory.CreateMessage("world", "/world/nature", 1, envelope.KindGatherResult, envelope.GatherResult{
		ReferenceMsgID: "gather-1",
		SpawnID:        "spawn-9",
		AgentID:        "chef-01",
		Item:           "potato",
		Quantity:       7,
		Success:        true,
	})

	if err := r.onNature(env); err != nil {
		t.Fatalf("onNature: %v", err)
	}
	if got := r.state.InventoryCount("potato"); got != 0 {
		t.Fatalf("expected no credit for another agent's gather, got %d", got)
	}
}

func TestOnMarketIgnoresOwnMessages(t *testing.T) {
	r, _ := newTestRuntime(func(s *State) []Action { return nil })
	env, _ := factory.CreateMessage("farmer-01", "/market/raw-goods", 1, envelope.KindOffer, envelope.Offer{Item: "potato", Quantity: 5, PricePerUnit: 2.0})

	if err := r.onMarket(env); err != nil {
		t.Fatalf("onMarket: %v", err)
	}
	if len(r.state.ObservedOffers) != 0 {
		t.Fatalf("expected own offer to be ignored, got %+v", r.state.ObservedOffers)
	}
}

func TestOnMarketObservesOffer(t *testing.T) {
	r, _ := newTestRuntime(func(s *State) []Action { return nil })
	env, _ := factory.CreateMessage("chef-01", "/market/raw-goods", 1, envelope.KindOffer, envelope.Offer{Item: "potato", Quantity: 5, PricePerUnit: 2.0})

	if err := r.onMarket(env); err != nil {
		t.Fatalf("onMarket: %v", err)
	}
	if len(r.state.ObservedOffers) != 1 || r.state.ObservedOffers[0].Item != "potato" {
		t.Fatalf("expected offer recorded, got %+v", r.state.ObservedOffers)
	}
}

func TestOnMarketReconcilesSettlementAsBuyer(t *testing.T) {
	r, _ := newTestRuntime(func(s *State) []Action { return nil })
	r.state.Wallet = 100
	r.state.PendingOffers["bid-1"] = PendingOffer{MsgID: "bid-1", Item: "potato", Quantity: 5, PricePerUnit: 2.0}

	env, _ := factory.CreateMessage("banker", "/market/bank", 1, envelope.KindSettlement, envelope.Settlement{
		ReferenceMsgID: "bid-1",
		Buyer:          "farmer-01",
		Seller:         "chef-01",
		Item:           "potato",
		Quantity:       5,
		TotalPrice:     10.0,
		Status:         "completed",
	})

	if err := r.onMarket(env); err != nil {
		t.Fatalf("onMarket: %v", err)
	}
	if r.state.Wallet != 90 {
		t.Errorf("expected wallet debited to 90, got %v", r.state.Wallet)
	}
	if r.state.Inventory["potato"] != 5 {
		t.Errorf("expected potato credited, got %d", r.state.Inventory["potato"])
	}
	if _, pending := r.state.PendingOffers["bid-1"]; pending {
		t.Errorf("expected pending offer cleared")
	}
}

func TestOnMarketReconcilesSettlementAsSeller(t *testing.T) {
	r, _ := newTestRuntime(func(s *State) []Action { return nil })
	r.identity.AgentID = "chef-01"
	r.state.Wallet = 100
	r.state.AddInventory("potato", 5)

	env, _ := factory.CreateMessage("banker", "/market/bank", 1, envelope.KindSettlement, envelope.Settlement{
		ReferenceMsgID: "offer-1",
		Buyer:          "farmer-01",
		Seller:         "chef-01",
		Item:           "potato",
		Quantity:       5,
		TotalPrice:     10.0,
		Status:         "completed",
	})

	if err := r.onMarket(env); err != nil {
		t.Fatalf("onMarket: %v", err)
	}
	if r.state.Wallet != 110 {
		t.Errorf("expected wallet credited to 110, got %v", r.state.Wallet)
	}
	if r.state.Inventory["potato"] != 0 {
		t.Errorf("expected potato debited, got %d", r.state.Inventory["potato"])
	}
}

func TestExecuteCraftStartDebitsLocalInventory(t *testing.T) {
	r, rb := newTestRuntime(func(s *State) []Action { return nil })
	r.state.AddInventory("potato", 2)
	r.state.AddInventory("onion", 1)

	r.executeAction(Action{Kind: KindCraftStart, Params: map[string]interface{}{"recipe": "soup"}})

	if r.state.Inventory["potato"] != 0 || r.state.Inventory["onion"] != 0 {
		t.Fatalf("expected inputs debited locally, got %+v", r.state.Inventory)
	}
	if r.state.ActiveCraft == nil || r.state.ActiveCraft.Recipe != "soup" {
		t.Fatalf("expected active craft recorded, got %+v", r.state.ActiveCraft)
	}
	if len(rb.Published) != 1 || rb.Published[0].Type != envelope.KindCraftStart {
		t.Fatalf("expected craft_start published, got %+v", rb.Published)
	}
}

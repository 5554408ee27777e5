package agent

import (
	"context"
	"log"

	"github.com/streetmarket/market/internal/bus"
	"github.com/streetmarket/market/internal/catalogue"
	"github.com/streetmarket/market/internal/envelope"
	"github.com/streetmarket/market/internal/factory"
	"github.com/streetmarket/market/internal/topics"
)

// Strategy is the seam a concrete agent implements: given the current
// local state, return the actions to attempt this tick, in priority
// order. The runtime truncates the list once the action budget runs out.
type Strategy func(state *State) []Action

// Identity describes a concrete agent's join payload.
type Identity struct {
	AgentID     string
	Name        string
	Description string
}

// Runtime drives one agent's tick loop: it advances the local mirror,
// executes implicit join/heartbeat/craft-complete actions, invokes the
// strategy, and translates returned actions into published envelopes.
type Runtime struct {
	bus      bus.Bus
	identity Identity
	strategy Strategy
	state    *State

	actionsPublished int64
}

// NewRuntime constructs a Runtime for identity, driven by strategy.
func NewRuntime(b bus.Bus, identity Identity, strategy Strategy) *Runtime {
	return &Runtime{
		bus:      b,
		identity: identity,
		strategy: strategy,
		state:    NewState(identity.AgentID),
	}
}

// State exposes the runtime's local mirror for white-box testing.
func (r *Runtime) State() *State {
	return r.state
}

// Start connects the bus and subscribes to every topic the runtime needs
// to observe: ticks, the world spawn/gather channel, all market traffic,
// and this agent's own inbox.
func (r *Runtime) Start(ctx context.Context) error {
	if err := r.bus.Connect(ctx); err != nil {
		return err
	}
	if err := r.bus.Subscribe(ctx, topics.SystemTick, r.onTick); err != nil {
		return err
	}
	if err := r.bus.Subscribe(ctx, topics.WorldNature, r.onNature); err != nil {
		return err
	}
	if err := r.bus.Subscribe(ctx, "/market/>", r.onMarket); err != nil {
		return err
	}
	return r.bus.Subscribe(ctx, topics.AgentInbox(r.identity.AgentID), r.onInbox)
}

func (r *Runtime) onTick(env envelope.Envelope) error {
	payload, err := factory.ParsePayload(env)
	if err != nil {
		return err
	}
	tick := payload.(*envelope.Tick).TickNumber
	r.state.AdvanceTick(tick)

	if !r.state.Joined {
		r.executeAction(Action{Kind: KindJoin})
	}
	if r.state.NeedsHeartbeat(HeartbeatInterval) {
		r.executeAction(Action{Kind: KindHeartbeat})
	}
	if r.state.ActiveCraft != nil && r.state.ActiveCraft.IsDone(tick) {
		job := *r.state.ActiveCraft
		r.executeAction(Action{Kind: KindCraftComplete, Params: map[string]interface{}{"job": job}})
	}

	for _, action := range r.strategy(r.state) {
		if r.state.RemainingActions(MaxActionsPerTick) <= 0 {
			break
		}
		r.executeAction(action)
	}
	return nil
}

func (r *Runtime) onNature(env envelope.Envelope) error {
	switch env.Type {
	case envelope.KindSpawn:
		payload, err := factory.ParsePayload(env)
		if err != nil {
			return err
		}
		spawn := payload.(*envelope.Spawn)
		r.state.CurrentSpawnID = spawn.SpawnID
		r.state.CurrentSpawnItems = spawn.Items
	case envelope.KindGatherResult:
		payload, err := factory.ParsePayload(env)
		if err != nil {
			return err
		}
		result := payload.(*envelope.GatherResult)
		if result.AgentID == r.identity.AgentID && result.Success {
			r.state.AddInventory(result.Item, result.Quantity)
		}
	}
	return nil
}

func (r *Runtime) onMarket(env envelope.Envelope) error {
	if env.From == r.identity.AgentID {
		return nil
	}

	switch env.Type {
	case envelope.KindOffer, envelope.KindBid:
		r.observeOfferOrBid(env)
	case envelope.KindSettlement:
		return r.reconcileSettlement(env)
	}
	return nil
}

func (r *Runtime) observeOfferOrBid(env envelope.Envelope) {
	payload, err := factory.ParsePayload(env)
	if err != nil {
		return
	}

	var obs ObservedOffer
	switch p := payload.(type) {
	case *envelope.Offer:
		obs = ObservedOffer{MsgID: env.ID, FromAgent: env.From, Item: p.Item, Quantity: p.Quantity, PricePerUnit: p.PricePerUnit, IsSell: true}
	case *envelope.Bid:
		obs = ObservedOffer{MsgID: env.ID, FromAgent: env.From, Item: p.Item, Quantity: p.Quantity, PricePerUnit: p.MaxPricePerUnit, IsSell: false}
	default:
		return
	}
	r.state.ObservedOffers = append(r.state.ObservedOffers, obs)
}

func (r *Runtime) reconcileSettlement(env envelope.Envelope) error {
	payload, err := factory.ParsePayload(env)
	if err != nil {
		return err
	}
	settlement := payload.(*envelope.Settlement)

	switch r.identity.AgentID {
	case settlement.Buyer:
		r.state.Wallet -= settlement.TotalPrice
		r.state.AddInventory(settlement.Item, settlement.Quantity)
		delete(r.state.PendingOffers, settlement.ReferenceMsgID)
	case settlement.Seller:
		r.state.Wallet += settlement.TotalPrice
		r.state.RemoveInventory(settlement.Item, settlement.Quantity)
		delete(r.state.PendingOffers, settlement.ReferenceMsgID)
	}
	return nil
}

func (r *Runtime) onInbox(env envelope.Envelope) error {
	log.Printf("[%s] inbox: %s from %s", r.identity.AgentID, env.Type, env.From)
	return nil
}

func (r *Runtime) executeAction(action Action) {
	switch action.Kind {
	case KindJoin:
		r.publishJoin()
	case KindHeartbeat:
		r.publishHeartbeat()
		r.state.ActionsThisTick++
	case KindGather:
		r.publishGather(action)
		r.state.ActionsThisTick++
	case KindOffer:
		r.publishOffer(action)
		r.state.ActionsThisTick++
	case KindBid:
		r.publishBid(action)
		r.state.ActionsThisTick++
	case KindAccept:
		r.publishAccept(action)
		r.state.ActionsThisTick++
	case KindCraftStart:
		r.publishCraftStart(action)
		r.state.ActionsThisTick++
	case KindCraftComplete:
		r.publishCraftComplete(action)
		r.state.ActionsThisTick++
	}
}

func (r *Runtime) publish(topic string, kind envelope.Kind, payload interface{}) {
	env, err := factory.CreateMessage(r.identity.AgentID, topic, r.state.CurrentTick, kind, payload)
	if err != nil {
		log.Printf("[%s] build %s: %v", r.identity.AgentID, kind, err)
		return
	}
	if err := r.bus.Publish(context.Background(), topic, env); err != nil {
		log.Printf("[%s] publish %s: %v", r.identity.AgentID, kind, err)
		return
	}
	r.actionsPublished++
}

func (r *Runtime) publishJoin() {
	r.publish(topics.MarketSquare, envelope.KindJoin, envelope.Join{
		AgentID:     r.identity.AgentID,
		Name:        r.identity.Name,
		Description: r.identity.Description,
	})
	r.state.Joined = true
	r.state.Wallet = StartingWallet
}

func (r *Runtime) publishHeartbeat() {
	r.publish(topics.MarketSquare, envelope.KindHeartbeat, envelope.Heartbeat{
		AgentID:        r.identity.AgentID,
		Wallet:         r.state.Wallet,
		InventoryCount: totalInventory(r.state.Inventory),
	})
	r.state.LastHeartbeatTick = r.state.CurrentTick
}

func (r *Runtime) publishGather(action Action) {
	spawnID, _ := action.Params["spawn_id"].(string)
	if spawnID == "" {
		spawnID = r.state.CurrentSpawnID
	}
	if spawnID == "" {
		log.Printf("[%s] gather requested with no active spawn", r.identity.AgentID)
		return
	}
	item, _ := action.Params["item"].(string)
	quantity, _ := action.Params["quantity"].(int)

	r.publish(topics.WorldNature, envelope.KindGather, envelope.Gather{
		SpawnID:  spawnID,
		Item:     item,
		Quantity: quantity,
	})
}

func (r *Runtime) publishOffer(action Action) {
	item, _ := action.Params["item"].(string)
	quantity, _ := action.Params["quantity"].(int)
	price, _ := action.Params["price_per_unit"].(float64)

	topic, err := topics.TopicForItem(item)
	if err != nil {
		log.Printf("[%s] offer for unroutable item %s: %v", r.identity.AgentID, item, err)
		return
	}

	env, err := factory.CreateMessage(r.identity.AgentID, topic, r.state.CurrentTick, envelope.KindOffer, envelope.Offer{
		Item:         item,
		Quantity:     quantity,
		PricePerUnit: price,
	})
	if err != nil {
		log.Printf("[%s] build offer: %v", r.identity.AgentID, err)
		return
	}
	if err := r.bus.Publish(context.Background(), topic, env); err != nil {
		log.Printf("[%s] publish offer: %v", r.identity.AgentID, err)
		return
	}
	r.state.PendingOffers[env.ID] = PendingOffer{MsgID: env.ID, Item: item, Quantity: quantity, PricePerUnit: price, Tick: r.state.CurrentTick, IsSell: true}
}

func (r *Runtime) publishBid(action Action) {
	item, _ := action.Params["item"].(string)
	quantity, _ := action.Params["quantity"].(int)
	price, _ := action.Params["max_price_per_unit"].(float64)

	topic, err := topics.TopicForItem(item)
	if err != nil {
		log.Printf("[%s] bid for unroutable item %s: %v", r.identity.AgentID, item, err)
		return
	}

	env, err := factory.CreateMessage(r.identity.AgentID, topic, r.state.CurrentTick, envelope.KindBid, envelope.Bid{
		Item:            item,
		Quantity:        quantity,
		MaxPricePerUnit: price,
	})
	if err != nil {
		log.Printf("[%s] build bid: %v", r.identity.AgentID, err)
		return
	}
	if err := r.bus.Publish(context.Background(), topic, env); err != nil {
		log.Printf("[%s] publish bid: %v", r.identity.AgentID, err)
		return
	}
	r.state.PendingOffers[env.ID] = PendingOffer{MsgID: env.ID, Item: item, Quantity: quantity, PricePerUnit: price, Tick: r.state.CurrentTick, IsSell: false}
}

func (r *Runtime) publishAccept(action Action) {
	referenceMsgID, _ := action.Params["reference_msg_id"].(string)
	quantity, _ := action.Params["quantity"].(int)
	topic, _ := action.Params["topic"].(string)
	if topic == "" {
		topic = topics.MarketSquare
	}

	r.publish(topic, envelope.KindAccept, envelope.Accept{
		ReferenceMsgID: referenceMsgID,
		Quantity:       quantity,
	})
}

func (r *Runtime) publishCraftStart(action Action) {
	recipeName, _ := action.Params["recipe"].(string)
	recipe, ok := catalogue.Recipes[recipeName]
	if !ok {
		log.Printf("[%s] craft_start for unknown recipe %s", r.identity.AgentID, recipeName)
		return
	}

	topic, err := topics.TopicForItem(recipe.Output)
	if err != nil {
		log.Printf("[%s] craft_start output unroutable: %v", r.identity.AgentID, err)
		return
	}

	for item, qty := range recipe.Inputs {
		r.state.RemoveInventory(item, qty)
	}

	r.publish(topic, envelope.KindCraftStart, envelope.CraftStart{
		Recipe:         recipeName,
		Inputs:         recipe.Inputs,
		EstimatedTicks: recipe.Ticks,
	})

	r.state.ActiveCraft = &CraftingJob{
		Recipe:        recipeName,
		StartedTick:   r.state.CurrentTick,
		DurationTicks: recipe.Ticks,
	}
}

func (r *Runtime) publishCraftComplete(action Action) {
	job, _ := action.Params["job"].(CraftingJob)
	if job.Recipe == "" && r.state.ActiveCraft != nil {
		job = *r.state.ActiveCraft
	}
	recipe, ok := catalogue.Recipes[job.Recipe]
	if !ok {
		return
	}

	topic, err := topics.TopicForItem(recipe.Output)
	if err != nil {
		log.Printf("[%s] craft_complete output unroutable: %v", r.identity.AgentID, err)
		return
	}

	r.publish(topic, envelope.KindCraftComplete, envelope.CraftComplete{
		Recipe: job.Recipe,
		Output: map[string]int{recipe.Output: recipe.OutputQty},
		Agent:  r.identity.AgentID,
	})

	r.state.AddInventory(recipe.Output, recipe.OutputQty)
	r.state.ActiveCraft = nil
}

func totalInventory(inv map[string]int) int {
	total := 0
	for _, qty := range inv {
		total += qty
	}
	return total
}

// StartingWallet mirrors the Banker's starting balance for the runtime's
// optimistic JOIN projection.
const StartingWallet = 100.0

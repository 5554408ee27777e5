package main

import (
	"fmt"

	"github.com/streetmarket/market/internal/envelope"
)

// TradeResult is the outcome of processing an Accept against the order
// book. Errors is non-empty on rejection, in which case no other field is
// meaningful and no state was mutated.
type TradeResult struct {
	Errors         []string
	Buyer          string
	Seller         string
	Item           string
	Quantity       int
	TotalPrice     float64
	ReferenceMsgID string
}

// processJoin idempotently creates agentID's account.
func processJoin(agentID string, state *State) {
	if !state.HasAccount(agentID) {
		state.CreateAccount(agentID, StartingWallet)
	}
}

// processOffer validates and, on success, books a resting sell order. No
// inventory is escrowed; settlement re-checks availability.
func processOffer(fromAgent string, env envelope.Envelope, p *envelope.Offer, state *State) []string {
	if !state.HasAccount(fromAgent) {
		return []string{"no account"}
	}
	if !state.HasInventory(fromAgent, p.Item, p.Quantity) {
		return []string{fmt.Sprintf("insufficient inventory of %s", p.Item)}
	}

	state.AddOrder(OrderEntry{
		MsgID:        env.ID,
		FromAgent:    fromAgent,
		Side:         SideOffer,
		Item:         p.Item,
		Quantity:     p.Quantity,
		PricePerUnit: p.PricePerUnit,
		Tick:         env.Tick,
		ExpiresTick:  p.ExpiresTick,
	})
	return nil
}

// processBid validates and, on success, books a resting buy order. No
// funds are escrowed; settlement re-checks wallet balance.
func processBid(fromAgent string, env envelope.Envelope, p *envelope.Bid, state *State) []string {
	if !state.HasAccount(fromAgent) {
		return []string{"no account"}
	}
	acc, _ := state.GetAccount(fromAgent)
	if acc.Wallet < float64(p.Quantity)*p.MaxPricePerUnit {
		return []string{"insufficient funds"}
	}

	state.AddOrder(OrderEntry{
		MsgID:        env.ID,
		FromAgent:    fromAgent,
		Side:         SideBid,
		Item:         p.Item,
		Quantity:     p.Quantity,
		PricePerUnit: p.MaxPricePerUnit,
		Tick:         env.Tick,
	})
	return nil
}

// processAccept resolves an Accept against the referenced order, applying
// partial fills and self-trade prevention exactly as specified. On any
// failure it leaves all state unchanged.
func processAccept(accepter string, p *envelope.Accept, state *State) TradeResult {
	order, ok := state.GetOrder(p.ReferenceMsgID)
	if !ok {
		return TradeResult{Errors: []string{"order not found"}}
	}

	var buyer, seller string
	if order.Side == SideOffer {
		buyer, seller = accepter, order.FromAgent
	} else {
		buyer, seller = order.FromAgent, accepter
	}

	if buyer == seller {
		return TradeResult{Errors: []string{"Self-trade not allowed"}}
	}

	tradeQty := p.Quantity
	if order.Quantity < tradeQty {
		tradeQty = order.Quantity
	}
	totalPrice := float64(tradeQty) * order.PricePerUnit

	if !state.HasAccount(buyer) {
		return TradeResult{Errors: []string{"buyer has no account"}}
	}
	if !state.HasAccount(seller) {
		return TradeResult{Errors: []string{"seller has no account"}}
	}
	buyerAcc, _ := state.GetAccount(buyer)
	if buyerAcc.Wallet < totalPrice {
		return TradeResult{Errors: []string{"insufficient funds"}}
	}
	if !state.HasInventory(seller, order.Item, tradeQty) {
		return TradeResult{Errors: []string{"insufficient inventory"}}
	}

	state.DebitWallet(buyer, totalPrice)
	state.CreditWallet(seller, totalPrice)
	state.DebitInventory(seller, order.Item, tradeQty)
	state.CreditInventory(buyer, order.Item, tradeQty)
	state.ReduceOrder(p.ReferenceMsgID, tradeQty)

	return TradeResult{
		Buyer:          buyer,
		Seller:         seller,
		Item:           order.Item,
		Quantity:       tradeQty,
		TotalPrice:     totalPrice,
		ReferenceMsgID: p.ReferenceMsgID,
	}
}

// processCraftStart validates that every recipe input is available before
// debiting any of them. On rejection no inventory is touched.
func processCraftStart(fromAgent string, p *envelope.CraftStart, state *State) []string {
	if !state.HasAccount(fromAgent) {
		return []string{"no account"}
	}

	var errs []string
	for item, qty := range p.Inputs {
		if !state.HasInventory(fromAgent, item, qty) {
			errs = append(errs, fmt.Sprintf("insufficient %s", item))
		}
	}
	if len(errs) > 0 {
		return errs
	}

	for item, qty := range p.Inputs {
		state.DebitInventory(fromAgent, item, qty)
	}
	return nil
}

// processCraftComplete credits every output item unconditionally. It does
// not verify that a prior CRAFT_START occurred for this agent — the
// Governor's crafting state machine is the guard against out-of-sequence
// completes, not the Banker.
func processCraftComplete(fromAgent string, p *envelope.CraftComplete, state *State) []string {
	if !state.HasAccount(fromAgent) {
		return []string{"no account"}
	}
	for item, qty := range p.Output {
		state.CreditInventory(fromAgent, item, qty)
	}
	return nil
}

// processGatherResult credits a successful gather to the agent's
// inventory, auto-creating the account if this is its first credit.
func processGatherResult(p *envelope.GatherResult, state *State) {
	if !p.Success || p.Quantity <= 0 || p.AgentID == "" {
		return
	}
	if !state.HasAccount(p.AgentID) {
		state.CreateAccount(p.AgentID, StartingWallet)
	}
	state.CreditInventory(p.AgentID, p.Item, p.Quantity)
}

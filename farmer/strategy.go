// Command farmer runs a gather-and-sell agent: it harvests potato and
// onion from the current spawn, accepts standing bids at or above base
// price, and offers its surplus.
package main

import (
	"github.com/streetmarket/market/agent"
	"github.com/streetmarket/market/internal/topics"
)

// gatherPlan is how much potato and onion the farmer tries to harvest
// from the current spawn each tick, in priority order.
var gatherPlan = []struct {
	Item     string
	Quantity int
}{
	{"potato", 10},
	{"onion", 8},
}

const (
	keepReserve       = 2
	sellMultiplier    = 1.2
	minAcceptFraction = 1.0
)

func decide(state *agent.State) []agent.Action {
	var actions []agent.Action
	budget := state.RemainingActions(agent.MaxActionsPerTick)

	if state.CurrentSpawnID != "" {
		for _, plan := range gatherPlan {
			if budget <= 0 {
				break
			}
			available := state.CurrentSpawnItems[plan.Item]
			if available <= 0 {
				continue
			}
			quantity := plan.Quantity
			if available < quantity {
				quantity = available
			}
			actions = append(actions, agent.Action{
				Kind: agent.KindGather,
				Params: map[string]interface{}{
					"spawn_id": state.CurrentSpawnID,
					"item":     plan.Item,
					"quantity": quantity,
				},
			})
			budget--
		}
	}

	for _, obs := range state.ObservedOffers {
		if budget <= 0 {
			break
		}
		if obs.IsSell {
			continue
		}
		if obs.Item != "potato" && obs.Item != "onion" {
			continue
		}
		base := agent.BasePriceOf(obs.Item)
		if obs.PricePerUnit >= base*minAcceptFraction {
			topic, err := topics.TopicForItem(obs.Item)
			if err != nil {
				continue
			}
			actions = append(actions, agent.Action{
				Kind: agent.KindAccept,
				Params: map[string]interface{}{
					"reference_msg_id": obs.MsgID,
					"quantity":         obs.Quantity,
					"topic":            topic,
				},
			})
			budget--
		}
	}

	for _, plan := range gatherPlan {
		if budget <= 0 {
			break
		}
		surplus := state.InventoryCount(plan.Item) - keepReserve
		if surplus <= 0 {
			continue
		}
		base := agent.BasePriceOf(plan.Item)
		actions = append(actions, agent.Action{
			Kind: agent.KindOffer,
			Params: map[string]interface{}{
				"item":           plan.Item,
				"quantity":       surplus,
				"price_per_unit": agent.Round2(base * sellMultiplier),
			},
		})
		budget--
	}

	return actions
}

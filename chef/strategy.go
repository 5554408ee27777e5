// Command chef runs a craft-and-sell agent: it buys potato and onion,
// crafts soup, and sells the output, bidding for ingredients when no
// seller is offering them.
package main

import (
	"sort"

	"github.com/streetmarket/market/agent"
	"github.com/streetmarket/market/internal/catalogue"
	"github.com/streetmarket/market/internal/topics"
)

var soupRecipe = catalogue.Recipes["soup"]

var ingredients = func() []string {
	names := make([]string, 0, len(soupRecipe.Inputs))
	for item := range soupRecipe.Inputs {
		names = append(names, item)
	}
	sort.Strings(names)
	return names
}()

const (
	maxBuyMultiplier = 1.5
	soupSellPrice    = 10.0
	bidMultiplier    = 1.3
)

func isIngredient(item string) bool {
	_, ok := soupRecipe.Inputs[item]
	return ok
}

func decide(state *agent.State) []agent.Action {
	var actions []agent.Action
	budget := state.RemainingActions(agent.MaxActionsPerTick)

	sellOffers := make([]agent.ObservedOffer, 0, len(state.ObservedOffers))
	for _, obs := range state.ObservedOffers {
		if obs.IsSell && isIngredient(obs.Item) {
			sellOffers = append(sellOffers, obs)
		}
	}
	sort.Slice(sellOffers, func(i, j int) bool {
		return sellOffers[i].PricePerUnit < sellOffers[j].PricePerUnit
	})

	for _, offer := range sellOffers {
		if budget <= 0 {
			break
		}
		base := agent.BasePriceOf(offer.Item)
		if offer.PricePerUnit <= base*maxBuyMultiplier {
			topic, err := topics.TopicForItem(offer.Item)
			if err != nil {
				continue
			}
			actions = append(actions, agent.Action{
				Kind: agent.KindAccept,
				Params: map[string]interface{}{
					"reference_msg_id": offer.MsgID,
					"quantity":         offer.Quantity,
					"topic":            topic,
				},
			})
			budget--
		}
	}

	if budget > 0 && !state.IsCrafting() && state.HasItems(soupRecipe.Inputs) {
		actions = append(actions, agent.Action{
			Kind:   agent.KindCraftStart,
			Params: map[string]interface{}{"recipe": "soup"},
		})
		budget--
	}

	if budget > 0 && state.InventoryCount("soup") > 0 {
		actions = append(actions, agent.Action{
			Kind: agent.KindOffer,
			Params: map[string]interface{}{
				"item":           "soup",
				"quantity":       state.InventoryCount("soup"),
				"price_per_unit": soupSellPrice,
			},
		})
		budget--
	}

	if budget > 0 && len(sellOffers) == 0 {
		for _, item := range ingredients {
			if budget <= 0 {
				break
			}
			needed := soupRecipe.Inputs[item]
			have := state.InventoryCount(item)
			if have < needed {
				base := agent.BasePriceOf(item)
				actions = append(actions, agent.Action{
					Kind: agent.KindBid,
					Params: map[string]interface{}{
						"item":               item,
						"quantity":           needed - have,
						"max_price_per_unit": agent.Round2(base * bidMultiplier),
					},
				})
				budget--
			}
		}
	}

	return actions
}

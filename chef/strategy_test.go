package main

import (
	"testing"

	"github.com/streetmarket/market/agent"
)

func TestDecideAcceptsCheapestIngredientFirst(t *testing.T) {
	s := agent.NewState("chef-01")
	s.ObservedOffers = []agent.ObservedOffer{
		{MsgID: "offer-expensive", Item: "potato", Quantity: 5, PricePerUnit: 2.5, IsSell: true},
		{MsgID: "offer-cheap", Item: "potato", Quantity: 5, PricePerUnit: 2.0, IsSell: true},
	}

	actions := decide(s)

	if len(actions) == 0 || actions[0].Kind != agent.KindAccept {
		t.Fatalf("expected first action to be an accept, got %+v", actions)
	}
	if actions[0].Params["reference_msg_id"] != "offer-cheap" {
		t.Fatalf("expected cheapest offer accepted first, got %v", actions[0].Params["reference_msg_id"])
	}
}

func TestDecideRejectsOverpricedIngredient(t *testing.T) {
	s := agent.NewState("chef-01")
	s.ObservedOffers = []agent.ObservedOffer{
		{MsgID: "offer-1", Item: "potato", Quantity: 5, PricePerUnit: 10.0, IsSell: true},
	}

	actions := decide(s)

	for _, a := range actions {
		if a.Kind == agent.KindAccept {
			t.Fatalf("expected no accept for an offer above the buy multiplier, got %+v", a)
		}
	}
}

func TestDecideStartsCraftWhenIngredientsAvailable(t *testing.T) {
	s := agent.NewState("chef-01")
	s.AddInventory("potato", 2)
	s.AddInventory("onion", 1)

	actions := decide(s)

	found := false
	for _, a := range actions {
		if a.Kind == agent.KindCraftStart && a.Params["recipe"] == "soup" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected craft_start for soup, got %+v", actions)
	}
}

func TestDecideSkipsCraftWhileAlreadyCrafting(t *testing.T) {
	s := agent.NewState("chef-01")
	s.AddInventory("potato", 2)
	s.AddInventory("onion", 1)
	s.ActiveCraft = &agent.CraftingJob{Recipe: "soup", StartedTick: 0, DurationTicks: 2}

	actions := decide(s)

	for _, a := range actions {
		if a.Kind == agent.KindCraftStart {
			t.Fatalf("expected no craft_start while already crafting, got %+v", a)
		}
	}
}

func TestDecideOffersSoupWhenHeld(t *testing.T) {
	s := agent.NewState("chef-01")
	s.AddInventory("soup", 3)

	actions := decide(s)

	found := false
	for _, a := range actions {
		if a.Kind == agent.KindOffer && a.Params["item"] == "soup" {
			found = true
			if a.Params["quantity"] != 3 {
				t.Errorf("expected offer quantity 3, got %v", a.Params["quantity"])
			}
			if a.Params["price_per_unit"] != soupSellPrice {
				t.Errorf("expected price %v, got %v", soupSellPrice, a.Params["price_per_unit"])
			}
		}
	}
	if !found {
		t.Fatalf("expected an offer for held soup, got %+v", actions)
	}
}

func TestDecideBidsForMissingIngredientsWhenNoOffersSeen(t *testing.T) {
	s := agent.NewState("chef-01")

	actions := decide(s)

	bidItems := map[string]bool{}
	for _, a := range actions {
		if a.Kind == agent.KindBid {
			bidItems[a.Params["item"].(string)] = true
		}
	}
	if !bidItems["potato"] || !bidItems["onion"] {
		t.Fatalf("expected bids for both missing ingredients, got %+v", actions)
	}
}

func TestDecideDoesNotBidWhenOffersAlreadySeen(t *testing.T) {
	s := agent.NewState("chef-01")
	s.ObservedOffers = []agent.ObservedOffer{
		{MsgID: "offer-1", Item: "potato", Quantity: 5, PricePerUnit: 2.0, IsSell: true},
	}

	actions := decide(s)

	for _, a := range actions {
		if a.Kind == agent.KindBid {
			t.Fatalf("expected no bids once sell offers are already in view, got %+v", a)
		}
	}
}

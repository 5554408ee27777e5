package main

import (
	"fmt"

	"github.com/streetmarket/market/internal/catalogue"
	"github.com/streetmarket/market/internal/envelope"
)

// validateBusinessRules evaluates the rate limit, liveness, and per-kind
// business rules for env against state, returning every violation found.
// The rate-limit check is evaluated first and, if it already trips, short
// circuits the rest of the checks exactly as specified.
func validateBusinessRules(env envelope.Envelope, payload interface{}, state *State) []string {
	if state.IsRateLimited(env.From) {
		return []string{fmt.Sprintf("Rate limited: %s exceeded max actions this tick", env.From)}
	}

	var errs []string
	if state.IsInactive(env.From) {
		errs = append(errs, fmt.Sprintf("%s is inactive", env.From))
	}

	switch p := payload.(type) {
	case *envelope.Offer:
		errs = append(errs, validateOfferOrBidItem(p.Item)...)
	case *envelope.Bid:
		errs = append(errs, validateOfferOrBidItem(p.Item)...)
	case *envelope.Accept:
		errs = append(errs, validateReference(p.ReferenceMsgID)...)
	case *envelope.Counter:
		errs = append(errs, validateReference(p.ReferenceMsgID)...)
	case *envelope.CraftStart:
		errs = append(errs, validateCraftStart(env.From, p, state)...)
	case *envelope.CraftComplete:
		errs = append(errs, validateCraftComplete(env.From, state)...)
	case *envelope.Join:
		agentID := p.AgentID
		if agentID == "" {
			agentID = env.From
		}
		state.RegisterAgent(agentID)
	case *envelope.Heartbeat:
		state.RecordHeartbeat(env.From)
	}

	return errs
}

func validateOfferOrBidItem(item string) []string {
	if !catalogue.IsValidItem(item) {
		return []string{fmt.Sprintf("unknown item: %s", item)}
	}
	return nil
}

func validateReference(referenceMsgID string) []string {
	if referenceMsgID == "" {
		return []string{"reference_msg_id must not be empty"}
	}
	return nil
}

func validateCraftStart(agentID string, p *envelope.CraftStart, state *State) []string {
	recipe, ok := catalogue.Recipes[p.Recipe]
	if !ok {
		return []string{fmt.Sprintf("unknown recipe: %s", p.Recipe)}
	}

	var errs []string
	if !equalInputs(p.Inputs, recipe.Inputs) {
		errs = append(errs, "craft_start inputs do not match recipe")
	}
	if p.EstimatedTicks != recipe.Ticks {
		errs = append(errs, "craft_start estimated_ticks does not match recipe")
	}
	if state.IsCrafting(agentID) {
		errs = append(errs, fmt.Sprintf("%s already has an active craft", agentID))
	}

	if len(errs) == 0 {
		state.StartCraft(agentID, p.Recipe, p.EstimatedTicks)
	}
	return errs
}

func validateCraftComplete(agentID string, state *State) []string {
	if !state.IsCrafting(agentID) {
		return []string{fmt.Sprintf("%s has no active craft to complete", agentID)}
	}
	state.CompleteCraft(agentID)
	return nil
}

func equalInputs(a, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

package main

import (
	"github.com/streetmarket/market/internal/envelope"
)

// GatherOutcome is the result of processing one Gather request against the
// active spawn pool.
type GatherOutcome struct {
	SpawnID  string
	Granted  int
	Success  bool
	Reason   string
}

// processGather validates and resolves a Gather payload against state,
// implementing the FCFS partial-fulfillment protocol exactly.
func processGather(payload envelope.Gather, state *State) GatherOutcome {
	if payload.SpawnID == "" {
		return GatherOutcome{Reason: "Missing spawn_id"}
	}
	if payload.Item == "" {
		return GatherOutcome{SpawnID: payload.SpawnID, Reason: "Missing item"}
	}
	if payload.Quantity <= 0 {
		return GatherOutcome{SpawnID: payload.SpawnID, Reason: "Quantity must be positive"}
	}

	granted, reason := state.TryGather(payload.SpawnID, payload.Item, payload.Quantity)

	return GatherOutcome{
		SpawnID: payload.SpawnID,
		Granted: granted,
		Success: granted > 0,
		Reason:  reason,
	}
}

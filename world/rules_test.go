package main

import (
	"testing"

	"github.com/streetmarket/market/internal/envelope"
)

func TestProcessGatherValidation(t *testing.T) {
	tests := []struct {
		name       string
		payload    envelope.Gather
		wantReason string
	}{
		{"missing spawn id", envelope.Gather{Item: "nails", Quantity: 1}, "Missing spawn_id"},
		{"missing item", envelope.Gather{SpawnID: "x", Quantity: 1}, "Missing item"},
		{"non-positive quantity", envelope.Gather{SpawnID: "x", Item: "nails", Quantity: 0}, "Quantity must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState()
			outcome := processGather(tt.payload, s)
			if outcome.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", outcome.Reason, tt.wantReason)
			}
			if outcome.Success {
				t.Errorf("expected rejection to be unsuccessful")
			}
		})
	}
}

func TestProcessGatherFCFSDepletion(t *testing.T) {
	s := NewState()
	s.AdvanceTick()
	id := s.CreateSpawn().SpawnID

	first := processGather(envelope.Gather{SpawnID: id, Item: "nails", Quantity: 10}, s)
	if !first.Success || first.Granted != 10 {
		t.Fatalf("agent A expected granted=10 success=true, got %+v", first)
	}

	second := processGather(envelope.Gather{SpawnID: id, Item: "nails", Quantity: 5}, s)
	if second.Success || second.Granted != 0 {
		t.Fatalf("agent B expected granted=0 success=false, got %+v", second)
	}
	if second.Reason != "No nails remaining in spawn" {
		t.Fatalf("agent B reason = %q", second.Reason)
	}
}

func TestProcessGatherExpiredSpawn(t *testing.T) {
	s := NewState()
	s.AdvanceTick()
	firstID := s.CreateSpawn().SpawnID

	s.AdvanceTick()
	s.CreateSpawn()

	outcome := processGather(envelope.Gather{SpawnID: firstID, Item: "nails", Quantity: 1}, s)
	if outcome.Success {
		t.Fatalf("expected stale spawn id to fail")
	}
	if outcome.Reason != "Spawn expired or not found" {
		t.Fatalf("reason = %q", outcome.Reason)
	}
}

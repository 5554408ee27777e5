package main

import "testing"

func TestRateLimit(t *testing.T) {
	s := NewState()
	for i := 0; i < MaxActionsPerTick; i++ {
		if s.IsRateLimited("farmer-01") {
			t.Fatalf("unexpectedly rate limited at action %d", i)
		}
		s.RecordAction("farmer-01")
	}
	if !s.IsRateLimited("farmer-01") {
		t.Fatalf("expected rate limit after %d actions", MaxActionsPerTick)
	}
}

func TestRateLimitResetsOnTick(t *testing.T) {
	s := NewState()
	for i := 0; i < MaxActionsPerTick; i++ {
		s.RecordAction("farmer-01")
	}
	if !s.IsRateLimited("farmer-01") {
		t.Fatalf("expected rate limited before tick")
	}

	s.AdvanceTick(1)
	if s.IsRateLimited("farmer-01") {
		t.Fatalf("expected rate limit to reset on tick advance")
	}
}

func TestHeartbeatLiveness(t *testing.T) {
	s := NewState()

	if s.IsInactive("chef-01") {
		t.Fatalf("agent that never heartbeated must not be inactive")
	}

	s.AdvanceTick(1)
	s.RecordHeartbeat("chef-01")

	s.AdvanceTick(1 + HeartbeatTimeoutTicks)
	if s.IsInactive("chef-01") {
		t.Fatalf("exactly at the timeout boundary should not yet be inactive")
	}

	s.AdvanceTick(1 + HeartbeatTimeoutTicks + 1)
	if !s.IsInactive("chef-01") {
		t.Fatalf("expected inactive once timeout is exceeded")
	}
}

func TestCraftLifecycle(t *testing.T) {
	s := NewState()
	if s.IsCrafting("chef-01") {
		t.Fatalf("should not be crafting initially")
	}

	s.StartCraft("chef-01", "soup", 2)
	if !s.IsCrafting("chef-01") {
		t.Fatalf("expected active craft after StartCraft")
	}

	craft, ok := s.GetActiveCraft("chef-01")
	if !ok || craft.Recipe != "soup" {
		t.Fatalf("expected active craft recipe 'soup', got %+v ok=%v", craft, ok)
	}

	s.CompleteCraft("chef-01")
	if s.IsCrafting("chef-01") {
		t.Fatalf("expected no active craft after CompleteCraft")
	}
}

package main

import "testing"

func TestAdvanceTick(t *testing.T) {
	s := NewState()

	for i, want := range []int{1, 2, 3} {
		got := s.AdvanceTick()
		if got != want {
			t.Fatalf("advance %d: got tick %d, want %d", i, got, want)
		}
	}
}

func TestCreateSpawnReplacesPrevious(t *testing.T) {
	s := NewState()
	s.AdvanceTick()

	first := s.CreateSpawn()
	if first.Remaining["potato"] != 20 {
		t.Fatalf("expected default potato count 20, got %d", first.Remaining["potato"])
	}

	s.AdvanceTick()
	second := s.CreateSpawn()
	if second.SpawnID == first.SpawnID {
		t.Fatalf("expected a fresh spawn id")
	}

	if active := s.ActiveSpawn(); active.SpawnID != second.SpawnID {
		t.Fatalf("active spawn should be the most recent one")
	}
}

func TestTryGather(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(s *State) string // returns the spawn id to query
		item        string
		quantity    int
		wantGranted int
		wantReason  string
	}{
		{
			name:        "no active spawn",
			setup:       func(s *State) string { return "missing-id" },
			item:        "nails",
			quantity:    5,
			wantGranted: 0,
			wantReason:  "No active spawn",
		},
		{
			name: "wrong spawn id",
			setup: func(s *State) string {
				s.AdvanceTick()
				s.CreateSpawn()
				return "stale-id"
			},
			item:        "nails",
			quantity:    5,
			wantGranted: 0,
			wantReason:  "Spawn expired or not found",
		},
		{
			name: "unknown item in spawn",
			setup: func(s *State) string {
				s.AdvanceTick()
				return s.CreateSpawn().SpawnID
			},
			item:        "gold",
			quantity:    1,
			wantGranted: 0,
			wantReason:  "No gold remaining in spawn",
		},
		{
			name: "full grant",
			setup: func(s *State) string {
				s.AdvanceTick()
				return s.CreateSpawn().SpawnID
			},
			item:        "nails",
			quantity:    10,
			wantGranted: 10,
			wantReason:  "",
		},
		{
			name: "partial grant",
			setup: func(s *State) string {
				s.AdvanceTick()
				return s.CreateSpawn().SpawnID
			},
			item:        "nails",
			quantity:    15,
			wantGranted: 10,
			wantReason:  "Partial: only 10 remaining",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState()
			id := tt.setup(s)

			granted, reason := s.TryGather(id, tt.item, tt.quantity)
			if granted != tt.wantGranted {
				t.Errorf("granted = %d, want %d", granted, tt.wantGranted)
			}
			if reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", reason, tt.wantReason)
			}
		})
	}
}

func TestTryGatherDepletesPool(t *testing.T) {
	s := NewState()
	s.AdvanceTick()
	id := s.CreateSpawn().SpawnID

	granted, _ := s.TryGather(id, "nails", 10)
	if granted != 10 {
		t.Fatalf("first gather: got %d, want 10", granted)
	}

	granted, reason := s.TryGather(id, "nails", 5)
	if granted != 0 {
		t.Fatalf("second gather: got %d, want 0", granted)
	}
	if reason != "No nails remaining in spawn" {
		t.Fatalf("second gather reason = %q", reason)
	}
}

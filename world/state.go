package main

import (
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/streetmarket/market/internal/catalogue"
)

// DefaultTickInterval is the World Engine's tick period in seconds, unless
// overridden by WORLD_TICK_INTERVAL.
const DefaultTickInterval = 5.0

// SpawnPool is the finite per-tick raw-material allowance gatherers race
// for on a first-come-first-served basis.
type SpawnPool struct {
	SpawnID   string
	Tick      int
	Remaining map[string]int
}

// State is the World Engine's entire mutable footprint: one tick counter
// and at most one active spawn pool.
type State struct {
	mu          sync.Mutex
	currentTick int
	spawnTable  map[string]int
	active      *SpawnPool
}

// NewState constructs World state seeded with the default spawn table.
func NewState() *State {
	table := make(map[string]int, len(catalogue.DefaultSpawnTable))
	for k, v := range catalogue.DefaultSpawnTable {
		table[k] = v
	}
	return &State{spawnTable: table}
}

// AdvanceTick increments and returns the new tick number.
func (s *State) AdvanceTick() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentTick++
	return s.currentTick
}

// CurrentTick returns the current tick number.
func (s *State) CurrentTick() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentTick
}

// CreateSpawn discards the previous pool and replaces it unconditionally,
// regardless of remaining contents.
func (s *State) CreateSpawn() *SpawnPool {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := make(map[string]int, len(s.spawnTable))
	for k, v := range s.spawnTable {
		remaining[k] = v
	}
	pool := &SpawnPool{
		SpawnID:   uuid.NewString(),
		Tick:      s.currentTick,
		Remaining: remaining,
	}
	s.active = pool
	return pool
}

// TryGather attempts to grant quantity of item from the active spawn pool
// identified by spawnID. Returns the granted amount (possibly less than
// requested, possibly zero) and a non-empty reason on any rejection or
// partial fill.
func (s *State) TryGather(spawnID, item string, quantity int) (granted int, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return 0, "No active spawn"
	}
	if s.active.SpawnID != spawnID {
		return 0, "Spawn expired or not found"
	}

	available := s.active.Remaining[item]
	if available == 0 {
		return 0, "No " + item + " remaining in spawn"
	}

	granted = quantity
	if available < granted {
		granted = available
	}
	s.active.Remaining[item] = available - granted

	if granted < quantity {
		return granted, "Partial: only " + strconv.Itoa(granted) + " remaining"
	}
	return granted, ""
}

// ActiveSpawn returns a snapshot of the currently active pool, or nil.
func (s *State) ActiveSpawn() *SpawnPool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil
	}
	cp := *s.active
	cp.Remaining = make(map[string]int, len(s.active.Remaining))
	for k, v := range s.active.Remaining {
		cp.Remaining[k] = v
	}
	return &cp
}

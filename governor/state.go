package main

import "sync"

const (
	// MaxActionsPerTick is the per-agent action budget the Governor
	// enforces on the bus side.
	MaxActionsPerTick = 5
	// HeartbeatTimeoutTicks is how many ticks may elapse since an agent's
	// last heartbeat before it is considered inactive.
	HeartbeatTimeoutTicks = 10
)

// ActiveCraft is the Governor's own record of an in-progress crafting job.
// The Banker keeps no such record: it debits inputs on craft_start and
// credits outputs on craft_complete without tracking the craft in between
// (see processCraftComplete in banker/rules.go).
type ActiveCraft struct {
	Recipe         string
	StartedTick    int
	EstimatedTicks int
}

// State is the Governor's entire in-memory footprint: rate-limit counters,
// heartbeat timestamps, active crafts, and known agents.
type State struct {
	mu sync.Mutex

	currentTick     int
	actionsThisTick map[string]int
	lastHeartbeat   map[string]int
	activeCrafts    map[string]ActiveCraft
	knownAgents     map[string]bool
}

// NewState constructs empty Governor state.
func NewState() *State {
	return &State{
		actionsThisTick: make(map[string]int),
		lastHeartbeat:   make(map[string]int),
		activeCrafts:    make(map[string]ActiveCraft),
		knownAgents:     make(map[string]bool),
	}
}

// AdvanceTick sets the current tick and clears every agent's per-tick
// action counter.
func (s *State) AdvanceTick(tick int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentTick = tick
	s.actionsThisTick = make(map[string]int)
}

// CurrentTick returns the Governor's current tick.
func (s *State) CurrentTick() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentTick
}

// RecordAction increments agentID's action counter for the current tick.
// The caller is responsible for invoking this exactly once per processed
// message regardless of that message's final validity.
func (s *State) RecordAction(agentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actionsThisTick[agentID]++
}

// ActionCount returns agentID's action count so far this tick.
func (s *State) ActionCount(agentID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actionsThisTick[agentID]
}

// IsRateLimited reports whether agentID has already reached the per-tick
// action budget before this message is processed.
func (s *State) IsRateLimited(agentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actionsThisTick[agentID] >= MaxActionsPerTick
}

// RecordHeartbeat stamps agentID's last-heartbeat tick to the current tick.
func (s *State) RecordHeartbeat(agentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastHeartbeat[agentID] = s.currentTick
}

// IsInactive reports whether agentID has sent a heartbeat before and more
// than HeartbeatTimeoutTicks have elapsed since. An agent that has never
// sent a heartbeat is never considered inactive.
func (s *State) IsInactive(agentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.lastHeartbeat[agentID]
	if !ok {
		return false
	}
	return s.currentTick-last > HeartbeatTimeoutTicks
}

// RegisterAgent records agentID as known (handles JOIN).
func (s *State) RegisterAgent(agentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.knownAgents[agentID] = true
}

// IsKnownAgent reports whether agentID has ever joined.
func (s *State) IsKnownAgent(agentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.knownAgents[agentID]
}

// StartCraft records a new active craft for agentID.
func (s *State) StartCraft(agentID, recipe string, estimatedTicks int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeCrafts[agentID] = ActiveCraft{
		Recipe:         recipe,
		StartedTick:    s.currentTick,
		EstimatedTicks: estimatedTicks,
	}
}

// CompleteCraft clears agentID's active craft, if any.
func (s *State) CompleteCraft(agentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.activeCrafts, agentID)
}

// IsCrafting reports whether agentID has an active craft.
func (s *State) IsCrafting(agentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.activeCrafts[agentID]
	return ok
}

// GetActiveCraft returns agentID's active craft and whether one exists.
func (s *State) GetActiveCraft(agentID string) (ActiveCraft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.activeCrafts[agentID]
	return c, ok
}

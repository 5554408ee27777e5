package agent

import "github.com/streetmarket/market/internal/catalogue"

// HeartbeatInterval is how many ticks may elapse between heartbeats before
// the runtime emits an implicit one.
const HeartbeatInterval = 5

// MaxActionsPerTick mirrors the Governor's own budget; the runtime
// self-enforces it so strategies never overshoot what the bus would
// accept.
const MaxActionsPerTick = 5

// CraftingJob is the runtime's local record of an in-progress craft.
type CraftingJob struct {
	Recipe         string
	StartedTick    int
	DurationTicks  int
}

// CompleteAtTick is the tick at which this job finishes.
func (j CraftingJob) CompleteAtTick() int {
	return j.StartedTick + j.DurationTicks
}

// IsDone reports whether currentTick has reached completion.
func (j CraftingJob) IsDone(currentTick int) bool {
	return currentTick >= j.CompleteAtTick()
}

// PendingOffer is a resting order this agent itself posted, tracked so the
// runtime can reconcile it once a Settlement arrives.
type PendingOffer struct {
	MsgID        string
	Item         string
	Quantity     int
	PricePerUnit float64
	Tick         int
	IsSell       bool
}

// ObservedOffer is another agent's OFFER or BID seen on the market this
// tick. The set is cleared at the start of every tick.
type ObservedOffer struct {
	MsgID        string
	FromAgent    string
	Item         string
	Quantity     int
	PricePerUnit float64
	IsSell       bool
}

// State is the agent runtime's optimistic local mirror of its own
// wallet/inventory plus the tick-scoped market observations a strategy
// reads from.
type State struct {
	AgentID string

	Joined bool
	Wallet float64

	Inventory map[string]int

	CurrentTick      int
	LastHeartbeatTick int

	CurrentSpawnID    string
	CurrentSpawnItems map[string]int

	ActiveCraft *CraftingJob

	PendingOffers  map[string]PendingOffer
	ObservedOffers []ObservedOffer

	ActionsThisTick int
}

// NewState constructs a fresh, unjoined agent state.
func NewState(agentID string) *State {
	return &State{
		AgentID:       agentID,
		Inventory:     make(map[string]int),
		PendingOffers: make(map[string]PendingOffer),
	}
}

// InventoryCount returns how many units of item this agent holds.
func (s *State) InventoryCount(item string) int {
	return s.Inventory[item]
}

// HasItems reports whether the agent holds at least the requirements
// specified by requirements.
func (s *State) HasItems(requirements map[string]int) bool {
	for item, qty := range requirements {
		if s.Inventory[item] < qty {
			return false
		}
	}
	return true
}

// IsCrafting reports whether the agent has an active crafting job.
func (s *State) IsCrafting() bool {
	return s.ActiveCraft != nil
}

// NeedsHeartbeat reports whether interval ticks have elapsed since the
// last heartbeat.
func (s *State) NeedsHeartbeat(interval int) bool {
	return s.CurrentTick-s.LastHeartbeatTick >= interval
}

// RemainingActions returns how many more actions the budget allows this
// tick.
func (s *State) RemainingActions(maxActions int) int {
	remaining := maxActions - s.ActionsThisTick
	if remaining < 0 {
		return 0
	}
	return remaining
}

// AddInventory credits quantity of item to the local mirror.
func (s *State) AddInventory(item string, quantity int) {
	s.Inventory[item] += quantity
}

// RemoveInventory debits quantity of item from the local mirror, deleting
// the key at zero. Returns false without mutating state if holdings are
// insufficient.
func (s *State) RemoveInventory(item string, quantity int) bool {
	if s.Inventory[item] < quantity {
		return false
	}
	remaining := s.Inventory[item] - quantity
	if remaining == 0 {
		delete(s.Inventory, item)
	} else {
		s.Inventory[item] = remaining
	}
	return true
}

// AdvanceTick moves the local tick counter forward and resets every
// tick-scoped field.
func (s *State) AdvanceTick(tick int) {
	s.CurrentTick = tick
	s.ActionsThisTick = 0
	s.ObservedOffers = nil
}

// BasePriceOf is a convenience lookup used by strategies pricing against
// the catalogue.
func BasePriceOf(item string) float64 {
	return catalogue.Items[item].BasePrice
}

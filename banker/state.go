package main

import "sync"

// StartingWallet is every new agent account's initial balance.
const StartingWallet = 100.0

// OrderSide distinguishes a resting offer from a resting bid.
type OrderSide string

const (
	SideOffer OrderSide = "offer"
	SideBid   OrderSide = "bid"
)

// Account is an agent's wallet and inventory, owned exclusively by the
// Banker.
type Account struct {
	Wallet    float64
	Inventory map[string]int
}

// OrderEntry is one resting offer or bid in the order book.
type OrderEntry struct {
	MsgID        string
	FromAgent    string
	Side         OrderSide
	Item         string
	Quantity     int
	PricePerUnit float64
	Tick         int
	ExpiresTick  *int
}

// State is the Banker's entire in-memory footprint: the account table and
// the order book, keyed by envelope id.
type State struct {
	mu          sync.Mutex
	currentTick int
	accounts    map[string]*Account
	orders      map[string]*OrderEntry
}

// NewState constructs empty Banker state.
func NewState() *State {
	return &State{
		accounts: make(map[string]*Account),
		orders:   make(map[string]*OrderEntry),
	}
}

// AdvanceTick sets the Banker's current tick.
func (s *State) AdvanceTick(tick int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentTick = tick
}

// CurrentTick returns the Banker's current tick.
func (s *State) CurrentTick() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentTick
}

// CreateAccount creates agentID's account with the given starting wallet if
// one does not already exist. Re-creation is a no-op (idempotent join).
func (s *State) CreateAccount(agentID string, wallet float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[agentID]; ok {
		return
	}
	s.accounts[agentID] = &Account{Wallet: wallet, Inventory: make(map[string]int)}
}

// HasAccount reports whether agentID has an account.
func (s *State) HasAccount(agentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.accounts[agentID]
	return ok
}

// GetAccount returns a copy of agentID's account and whether it exists.
func (s *State) GetAccount(agentID string) (Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[agentID]
	if !ok {
		return Account{}, false
	}
	cp := Account{Wallet: acc.Wallet, Inventory: make(map[string]int, len(acc.Inventory))}
	for k, v := range acc.Inventory {
		cp.Inventory[k] = v
	}
	return cp, true
}

// DebitWallet subtracts amount from agentID's wallet. Returns false without
// mutating state if the account is missing or funds are insufficient.
func (s *State) DebitWallet(agentID string, amount float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[agentID]
	if !ok || acc.Wallet < amount {
		return false
	}
	acc.Wallet -= amount
	return true
}

// CreditWallet adds amount to agentID's wallet. Returns false if the
// account is missing.
func (s *State) CreditWallet(agentID string, amount float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[agentID]
	if !ok {
		return false
	}
	acc.Wallet += amount
	return true
}

// HasInventory reports whether agentID has at least quantity of item.
func (s *State) HasInventory(agentID, item string, quantity int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[agentID]
	if !ok {
		return false
	}
	return acc.Inventory[item] >= quantity
}

// DebitInventory removes quantity of item from agentID's inventory,
// deleting the key once it reaches zero. Returns false without mutating
// state if the account is missing or holdings are insufficient.
func (s *State) DebitInventory(agentID, item string, quantity int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[agentID]
	if !ok || acc.Inventory[item] < quantity {
		return false
	}
	remaining := acc.Inventory[item] - quantity
	if remaining == 0 {
		delete(acc.Inventory, item)
	} else {
		acc.Inventory[item] = remaining
	}
	return true
}

// CreditInventory adds quantity of item to agentID's inventory. Returns
// false if the account is missing.
func (s *State) CreditInventory(agentID, item string, quantity int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[agentID]
	if !ok {
		return false
	}
	acc.Inventory[item] += quantity
	return true
}

// AddOrder inserts entry into the order book, keyed by its MsgID.
func (s *State) AddOrder(entry OrderEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := entry
	s.orders[entry.MsgID] = &e
}

// GetOrder returns a copy of the order keyed by msgID, and whether it
// exists.
func (s *State) GetOrder(msgID string) (OrderEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[msgID]
	if !ok {
		return OrderEntry{}, false
	}
	return *o, true
}

// RemoveOrder deletes the order keyed by msgID.
func (s *State) RemoveOrder(msgID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.orders, msgID)
}

// ReduceOrder decrements the order keyed by msgID by quantity, deleting it
// if the remaining quantity reaches zero.
func (s *State) ReduceOrder(msgID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[msgID]
	if !ok {
		return
	}
	o.Quantity -= quantity
	if o.Quantity <= 0 {
		delete(s.orders, msgID)
	}
}

// PurgeExpiredOrders removes and returns every order whose ExpiresTick is
// set and has elapsed as of the current tick.
func (s *State) PurgeExpiredOrders() []OrderEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []OrderEntry
	for id, o := range s.orders {
		if o.ExpiresTick != nil && *o.ExpiresTick <= s.currentTick {
			expired = append(expired, *o)
			delete(s.orders, id)
		}
	}
	return expired
}

// OrderCount returns the number of resting orders in the book.
func (s *State) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

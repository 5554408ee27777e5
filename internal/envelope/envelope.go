// Package envelope defines the wire unit exchanged over the market bus and
// the tagged payload variants carried inside it.
package envelope

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the tagged variant of an Envelope's payload.
type Kind string

const (
	KindOffer             Kind = "offer"
	KindBid               Kind = "bid"
	KindAccept            Kind = "accept"
	KindCounter           Kind = "counter"
	KindCraftStart        Kind = "craft_start"
	KindCraftComplete     Kind = "craft_complete"
	KindJoin              Kind = "join"
	KindHeartbeat         Kind = "heartbeat"
	KindTick              Kind = "tick"
	KindSpawn             Kind = "spawn"
	KindGather            Kind = "gather"
	KindGatherResult      Kind = "gather_result"
	KindSettlement        Kind = "settlement"
	KindValidationResult  Kind = "validation_result"
)

// knownKinds backs IsKnownKind without reconstructing a set on every call.
var knownKinds = map[Kind]bool{
	KindOffer:            true,
	KindBid:              true,
	KindAccept:           true,
	KindCounter:          true,
	KindCraftStart:       true,
	KindCraftComplete:    true,
	KindJoin:             true,
	KindHeartbeat:        true,
	KindTick:             true,
	KindSpawn:            true,
	KindGather:           true,
	KindGatherResult:     true,
	KindSettlement:       true,
	KindValidationResult: true,
}

// IsKnownKind reports whether k is one of the enumerated message kinds.
func IsKnownKind(k Kind) bool {
	return knownKinds[k]
}

// Envelope is the immutable wire unit. The "from" field name is fixed on
// the wire regardless of the Go identifier used to access it.
type Envelope struct {
	ID        string          `json:"id"`
	From      string          `json:"from"`
	Topic     string          `json:"topic"`
	Timestamp float64         `json:"timestamp"`
	Tick      int             `json:"tick"`
	Type      Kind            `json:"type"`
	Payload   json.RawMessage `json:"payload"`
}

// New constructs an Envelope, defaulting ID to a fresh UUIDv4 and Timestamp
// to the current wall time in seconds, matching the wire contract exactly.
func New(from, topic string, tick int, kind Kind, payload json.RawMessage) Envelope {
	return Envelope{
		ID:        uuid.NewString(),
		From:      from,
		Topic:     topic,
		Timestamp: float64(time.Now().UnixNano()) / 1e9,
		Tick:      tick,
		Type:      kind,
		Payload:   payload,
	}
}

// MarshalPayload encodes v as the Payload field of a new Envelope.
func MarshalPayload(v interface{}) (json.RawMessage, error) {
	return json.Marshal(v)
}

// Offer is the payload of a KindOffer message.
type Offer struct {
	Item         string  `json:"item"`
	Quantity     int     `json:"quantity"`
	PricePerUnit float64 `json:"price_per_unit"`
	ExpiresTick  *int    `json:"expires_tick,omitempty"`
}

// Bid is the payload of a KindBid message.
type Bid struct {
	Item            string  `json:"item"`
	Quantity        int     `json:"quantity"`
	MaxPricePerUnit float64 `json:"max_price_per_unit"`
	TargetAgent     *string `json:"target_agent,omitempty"`
}

// Accept is the payload of a KindAccept message.
type Accept struct {
	ReferenceMsgID string `json:"reference_msg_id"`
	Quantity       int    `json:"quantity"`
}

// Counter is the payload of a KindCounter message.
type Counter struct {
	ReferenceMsgID  string  `json:"reference_msg_id"`
	ProposedPrice   float64 `json:"proposed_price"`
	Quantity        int     `json:"quantity"`
}

// CraftStart is the payload of a KindCraftStart message.
type CraftStart struct {
	Recipe         string         `json:"recipe"`
	Inputs         map[string]int `json:"inputs"`
	EstimatedTicks int            `json:"estimated_ticks"`
}

// CraftComplete is the payload of a KindCraftComplete message.
type CraftComplete struct {
	Recipe string         `json:"recipe"`
	Output map[string]int `json:"output"`
	Agent  string         `json:"agent"`
}

// Join is the payload of a KindJoin message.
type Join struct {
	AgentID     string  `json:"agent_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	APIURL      *string `json:"api_url,omitempty"`
}

// Heartbeat is the payload of a KindHeartbeat message.
type Heartbeat struct {
	AgentID        string  `json:"agent_id"`
	Wallet         float64 `json:"wallet"`
	InventoryCount int     `json:"inventory_count"`
}

// Tick is the payload of a KindTick message.
type Tick struct {
	TickNumber int     `json:"tick_number"`
	Timestamp  float64 `json:"timestamp"`
}

// Spawn is the payload of a KindSpawn message.
type Spawn struct {
	SpawnID string         `json:"spawn_id"`
	Tick    int            `json:"tick"`
	Items   map[string]int `json:"items"`
}

// Gather is the payload of a KindGather message.
type Gather struct {
	SpawnID  string `json:"spawn_id"`
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// GatherResult is the payload of a KindGatherResult message.
type GatherResult struct {
	ReferenceMsgID string  `json:"reference_msg_id"`
	SpawnID        string  `json:"spawn_id"`
	AgentID        string  `json:"agent_id"`
	Item           string  `json:"item"`
	Quantity       int     `json:"quantity"`
	Success        bool    `json:"success"`
	Reason         *string `json:"reason,omitempty"`
}

// Settlement is the payload of a KindSettlement message.
type Settlement struct {
	ReferenceMsgID string  `json:"reference_msg_id"`
	Buyer          string  `json:"buyer"`
	Seller         string  `json:"seller"`
	Item           string  `json:"item"`
	Quantity       int     `json:"quantity"`
	TotalPrice     float64 `json:"total_price"`
	Status         string  `json:"status"`
}

// ValidationResult is the payload of a KindValidationResult message.
type ValidationResult struct {
	ReferenceMsgID string  `json:"reference_msg_id"`
	Valid          bool    `json:"valid"`
	Reason         *string `json:"reason,omitempty"`
	Action         *string `json:"action,omitempty"`
}

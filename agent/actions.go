// Package agent is the shared trading-agent runtime: a tick-driven local
// mirror of an agent's wallet/inventory, a per-tick action budget, and the
// decide(state) -> actions strategy seam concrete agents implement.
package agent

// Kind identifies the action a strategy wants the runtime to execute.
type Kind string

const (
	KindGather        Kind = "gather"
	KindOffer         Kind = "offer"
	KindBid           Kind = "bid"
	KindAccept        Kind = "accept"
	KindCraftStart    Kind = "craft_start"
	KindCraftComplete Kind = "craft_complete"
	KindHeartbeat     Kind = "heartbeat"
	KindJoin          Kind = "join"
)

// Action is one strategy-requested operation, with kind-specific
// parameters carried in Params.
type Action struct {
	Kind   Kind
	Params map[string]interface{}
}

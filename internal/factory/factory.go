// Package factory builds and parses envelopes, and resolves a kind to its
// typed payload — the discriminated-union seam the rest of the module
// depends on instead of touching raw JSON fields.
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/streetmarket/market/internal/envelope"
)

// CreateMessage builds a new Envelope with payload marshalled from v.
func CreateMessage(from, topic string, tick int, kind envelope.Kind, v interface{}) (envelope.Envelope, error) {
	raw, err := envelope.MarshalPayload(v)
	if err != nil {
		return envelope.Envelope{}, fmt.Errorf("marshal payload: %w", err)
	}
	return envelope.New(from, topic, tick, kind, raw), nil
}

// ParseMessage decodes data into an Envelope without interpreting its
// payload.
func ParseMessage(data []byte) (envelope.Envelope, error) {
	var env envelope.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return envelope.Envelope{}, fmt.Errorf("parse envelope: %w", err)
	}
	return env, nil
}

// ParsePayload unmarshals env.Payload into the typed struct registered for
// env.Type. Returns an error for an unrecognised kind.
func ParsePayload(env envelope.Envelope) (interface{}, error) {
	var v interface{}
	switch env.Type {
	case envelope.KindOffer:
		v = &envelope.Offer{}
	case envelope.KindBid:
		v = &envelope.Bid{}
	case envelope.KindAccept:
		v = &envelope.Accept{}
	case envelope.KindCounter:
		v = &envelope.Counter{}
	case envelope.KindCraftStart:
		v = &envelope.CraftStart{}
	case envelope.KindCraftComplete:
		v = &envelope.CraftComplete{}
	case envelope.KindJoin:
		v = &envelope.Join{}
	case envelope.KindHeartbeat:
		v = &envelope.Heartbeat{}
	case envelope.KindTick:
		v = &envelope.Tick{}
	case envelope.KindSpawn:
		v = &envelope.Spawn{}
	case envelope.KindGather:
		v = &envelope.Gather{}
	case envelope.KindGatherResult:
		v = &envelope.GatherResult{}
	case envelope.KindSettlement:
		v = &envelope.Settlement{}
	case envelope.KindValidationResult:
		v = &envelope.ValidationResult{}
	default:
		return nil, fmt.Errorf("unknown message kind: %s", env.Type)
	}
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return nil, fmt.Errorf("parse payload for %s: %w", env.Type, err)
	}
	return v, nil
}

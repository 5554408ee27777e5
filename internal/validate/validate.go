// Package validate implements structural validation of envelopes, shared by
// the Governor's admission checks and any other component that wants a
// cheap sanity check before acting on a message.
package validate

import (
	"fmt"
	"strings"

	"github.com/streetmarket/market/internal/envelope"
	"github.com/streetmarket/market/internal/factory"
)

// Message checks that env's envelope-level fields and payload are
// well-formed, returning a list of human-readable error strings (empty if
// valid). It never panics on malformed input.
func Message(env envelope.Envelope) []string {
	var errs []string

	if strings.TrimSpace(env.From) == "" {
		errs = append(errs, "from must not be empty")
	}
	if strings.TrimSpace(env.Topic) == "" {
		errs = append(errs, "topic must not be empty")
	}
	if !envelope.IsKnownKind(env.Type) {
		errs = append(errs, fmt.Sprintf("unknown message type: %s", env.Type))
		return errs
	}

	if _, err := factory.ParsePayload(env); err != nil {
		errs = append(errs, fmt.Sprintf("payload: %v", err))
	}

	return errs
}

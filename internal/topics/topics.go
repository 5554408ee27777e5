// Package topics names the canonical bus topics and the routing rules that
// map catalogue categories onto them.
package topics

import (
	"fmt"
	"strings"

	"github.com/streetmarket/market/internal/catalogue"
)

const (
	SystemTick       = "/system/tick"
	WorldNature      = "/world/nature"
	MarketSquare     = "/market/square"
	MarketGovernance = "/market/governance"
	MarketBank       = "/market/bank"
	MarketRawGoods   = "/market/raw-goods"
	MarketFood       = "/market/food"
	MarketMaterials  = "/market/materials"
	MarketHousing    = "/market/housing"
	MarketGeneral    = "/market/general"
)

// All lists every canonical topic this module ever publishes or subscribes
// to directly (excluding the per-agent inbox pattern, which is parametric).
// It is the static enumeration a wildcard-incapable bus transport fans a
// `>`-suffixed subscription pattern out across.
func All() []string {
	return []string{
		SystemTick,
		WorldNature,
		MarketSquare,
		MarketGovernance,
		MarketBank,
		MarketRawGoods,
		MarketFood,
		MarketMaterials,
		MarketHousing,
		MarketGeneral,
	}
}

// AgentInbox returns the per-agent inbox topic for agentID.
func AgentInbox(agentID string) string {
	return fmt.Sprintf("/agent/%s/inbox", agentID)
}

// ToBusSubject converts a user-visible `/`-separated topic path into the
// underlying transport's native `.`-separated subject name.
func ToBusSubject(topic string) string {
	trimmed := strings.Trim(topic, "/")
	return strings.ReplaceAll(trimmed, "/", ".")
}

// FromBusSubject is the inverse of ToBusSubject.
func FromBusSubject(subject string) string {
	return "/" + strings.ReplaceAll(subject, ".", "/")
}

var categoryTopic = map[catalogue.Category]string{
	catalogue.CategoryRaw:      MarketRawGoods,
	catalogue.CategoryFood:     MarketFood,
	catalogue.CategoryMaterial: MarketMaterials,
	catalogue.CategoryHousing:  MarketHousing,
}

// TopicForItem resolves the canonical market topic an item's offers and
// bids are published to, based on its catalogue category.
func TopicForItem(item string) (string, error) {
	entry, ok := catalogue.Items[item]
	if !ok {
		return "", fmt.Errorf("unknown item or category: %s", item)
	}
	topic, ok := categoryTopic[entry.Category]
	if !ok {
		return "", fmt.Errorf("unknown item or category: %s", item)
	}
	return topic, nil
}

// MatchesPattern reports whether topic is covered by pattern, where pattern
// may end in the `>` trailing wildcard matching one or more path segments.
func MatchesPattern(pattern, topic string) bool {
	if !strings.HasSuffix(pattern, "/>") {
		return pattern == topic
	}
	prefix := strings.TrimSuffix(pattern, "/>")
	if !strings.HasPrefix(topic, prefix+"/") {
		return false
	}
	rest := strings.TrimPrefix(topic, prefix+"/")
	return rest != ""
}

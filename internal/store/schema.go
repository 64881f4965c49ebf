package store

import "fmt"

// Redis key pattern helpers
//
// Published assignments are namespaced so several catalogs can share one
// Redis server.
//
// Key pattern: altar:{namespace}:{entity}[:{tier}]
//
// Each entity has its own prefix directly after the namespace, so a tier
// name containing ':' can never produce another entity's key.

// TiersKey returns the Redis key of the ordered tier list.
// Pattern: altar:{namespace}:tiers
func TiersKey(namespace string) string {
	return fmt.Sprintf("altar:%s:tiers", namespace)
}

// TierKey returns the Redis key of a tier's item → canonical key hash.
// Pattern: altar:{namespace}:tier:{tier}
func TierKey(namespace, tier string) string {
	return fmt.Sprintf("altar:%s:tier:%s", namespace, tier)
}

// TierOrderKey returns the Redis key of a tier's ordered item list.
// Pattern: altar:{namespace}:order:{tier}
func TierOrderKey(namespace, tier string) string {
	return fmt.Sprintf("altar:%s:order:%s", namespace, tier)
}

// AssignmentEventsChannel returns the Pub/Sub channel announcing saves.
// Pattern: altar:{namespace}:assignment_events
func AssignmentEventsChannel(namespace string) string {
	return fmt.Sprintf("altar:%s:assignment_events", namespace)
}

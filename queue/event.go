// Package queue publishes kitchen events to the message broker.
package queue

import (
	"encoding/json"
	"strings"
)

// KitchenEvent is published for every request change so that downstream
// consumers (printers, analytics) need not query the primary store.
type KitchenEvent struct {
	Event       string          `json:"event"`
	Payload     json.RawMessage `json:"payload"`
	PublishedAt string          `json:"published_at"`
}

// forKitchen reports whether an engine event belongs on the kitchen queue.
func forKitchen(event string) bool {
	return strings.HasPrefix(event, "request.")
}

package domain

import (
	"fmt"
	"strings"
	"time"
)

// EntityKind identifies which entity a change event is about.
type EntityKind string

// Entity kinds carried on the change feed.
const (
	KindTripItem EntityKind = "trip_item"
	KindBag      EntityKind = "bag"
	KindTrip     EntityKind = "trip"
)

// ChangeAction is the kind of change a feed event describes.
type ChangeAction string

// Change actions.
const (
	ActionCreated ChangeAction = "created"
	ActionUpdated ChangeAction = "updated"
	ActionDeleted ChangeAction = "deleted"
)

// ChangeEvent is one entity-change notification from the feed.
// Delivery is at-least-once, so application must be idempotent.
type ChangeEvent struct {
	Timestamp time.Time    `json:"timestamp"`
	Kind      EntityKind   `json:"-"` // derived from the SSE event name
	Action    ChangeAction `json:"-"` // derived from the SSE event name
	// ParentID scopes the event; for trip_item and bag events it is the
	// trip ID. The feed does not pre-filter, subscribers do.
	ParentID string `json:"trip_id"`
	EntityID string `json:"id"`
	// Item carries the full entity for trip_item created/updated events.
	Item *TripItem `json:"data,omitempty"`
}

// EventName returns the SSE event name, e.g. "trip_item.updated".
func (e ChangeEvent) EventName() string {
	return string(e.Kind) + "." + string(e.Action)
}

// ParseEventName splits an SSE event name into kind and action.
func ParseEventName(name string) (EntityKind, ChangeAction, error) {
	kindStr, actionStr, ok := strings.Cut(name, ".")
	if !ok {
		return "", "", fmt.Errorf("malformed event name %q", name)
	}

	var kind EntityKind
	switch EntityKind(kindStr) {
	case KindTripItem, KindBag, KindTrip:
		kind = EntityKind(kindStr)
	default:
		return "", "", fmt.Errorf("unknown entity kind %q", kindStr)
	}

	var action ChangeAction
	switch ChangeAction(actionStr) {
	case ActionCreated, ActionUpdated, ActionDeleted:
		action = ChangeAction(actionStr)
	default:
		return "", "", fmt.Errorf("unknown change action %q", actionStr)
	}

	return kind, action, nil
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventName_Valid(t *testing.T) {
	kind, action, err := ParseEventName("trip_item.updated")

	require.NoError(t, err)
	assert.Equal(t, KindTripItem, kind)
	assert.Equal(t, ActionUpdated, action)
}

func TestParseEventName_AllKindsAndActions(t *testing.T) {
	for _, kind := range []EntityKind{KindTripItem, KindBag, KindTrip} {
		for _, action := range []ChangeAction{ActionCreated, ActionUpdated, ActionDeleted} {
			name := ChangeEvent{Kind: kind, Action: action}.EventName()
			gotKind, gotAction, err := ParseEventName(name)

			require.NoError(t, err, name)
			assert.Equal(t, kind, gotKind)
			assert.Equal(t, action, gotAction)
		}
	}
}

func TestParseEventName_RejectsUnknownKind(t *testing.T) {
	_, _, err := ParseEventName("gremlin.updated")
	assert.Error(t, err)
}

func TestParseEventName_RejectsUnknownAction(t *testing.T) {
	_, _, err := ParseEventName("trip_item.exploded")
	assert.Error(t, err)
}

func TestParseEventName_RejectsMissingDot(t *testing.T) {
	_, _, err := ParseEventName("heartbeat")
	assert.Error(t, err)
}

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPriorityWeight(t *testing.T) {
	assert.Equal(t, 4, PriorityHighest.Weight())
	assert.Equal(t, 3, PriorityHigh.Weight())
	assert.Equal(t, 2, PriorityMedium.Weight())
	assert.Equal(t, 1, PriorityLow.Weight())
	assert.Equal(t, 0, Priority("Urgent").Weight())

	assert.True(t, PriorityHighest.Valid())
	assert.False(t, Priority("").Valid())
	assert.False(t, Priority("urgent").Valid())
}

func TestHasPlacement(t *testing.T) {
	n := Notification{Placements: []Placement{PlacementPush, PlacementDashboard}}
	assert.True(t, n.HasPlacement(PlacementPush))
	assert.True(t, n.HasPlacement(PlacementDashboard))
	assert.False(t, n.HasPlacement(PlacementPrerequisite))
}

func TestExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.False(t, Notification{}.Expired(now), "no expiry means never expired")
	assert.True(t, Notification{ExpiresAt: &past}.Expired(now))
	assert.False(t, Notification{ExpiresAt: &future}.Expired(now))
}

func TestInteractionTypeValid(t *testing.T) {
	assert.True(t, InteractionRead.Valid())
	assert.True(t, InteractionAcknowledged.Valid())
	assert.True(t, InteractionDismissed.Valid())
	assert.False(t, InteractionType("read").Valid())
	assert.False(t, InteractionType("").Valid())
}

package models

import "time"

// InteractionType is a recipient action against a notification.
type InteractionType string

const (
	InteractionRead         InteractionType = "Read"
	InteractionAcknowledged InteractionType = "Acknowledged"
	InteractionDismissed    InteractionType = "Dismissed"
)

// Valid reports whether t is a known interaction type.
func (t InteractionType) Valid() bool {
	switch t {
	case InteractionRead, InteractionAcknowledged, InteractionDismissed:
		return true
	}
	return false
}

// Interaction records a user's latest action on a notification. At most one
// row exists per (notificationId, userPsId) pair; a differing type replaces
// the previous row instead of accumulating history.
type Interaction struct {
	InteractionID   string          `bson:"interactionId" json:"interactionId"`
	NotificationID  string          `bson:"notificationId" json:"notificationId"`
	UserPsID        string          `bson:"userPsId" json:"userPsId"`
	InteractionType InteractionType `bson:"interactionType" json:"interactionType"`
	InteractedAt    time.Time       `bson:"interactedAt" json:"interactedAt"`
}

// InteractionRequest is the caller-facing input for NotificationInteraction.
type InteractionRequest struct {
	NotificationID  string          `json:"notificationId"`
	UserPsID        string          `json:"userPsId"`
	InteractionType InteractionType `json:"interactionType"`
}

package models

import "time"

// PushPayload is the provider-neutral push message shape. Data values must be
// strings; structured redirection params are JSON-encoded before they land
// here.
type PushPayload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// PushResult aggregates per-device outcomes for one recipient. Callers get
// token counts only; per-device error detail is logged, not returned.
type PushResult struct {
	SuccessTokens []string `json:"successTokens"`
	FailedTokens  []string `json:"failedTokens"`
}

// Delivery log statuses.
const (
	DeliveryStatusSent   = "Sent"
	DeliveryStatusFailed = "Failed"
)

// DeliveryLogEntry is one per-device send outcome, persisted only when the
// delivery log is enabled. Never authoritative.
type DeliveryLogEntry struct {
	EntryID        string    `json:"entryId"`
	NotificationID string    `json:"notificationId"`
	UserPsID       string    `json:"userPsId"`
	DeviceToken    string    `json:"deviceToken"`
	Status         string    `json:"status"`
	Error          string    `json:"error,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

package notification

import (
	"context"
	"errors"

	"workforce-notification-service/internal/models"
	"workforce-notification-service/internal/ws"
)

// Error texts are part of the contract: callers special-case the not-found
// message to fall back to a temporary holding entry, and the zero-token
// message distinguishes total delivery failure from partial failure.
var (
	ErrNotificationNotFound   = errors.New("Notification Not Found")
	ErrNoDeviceTokens         = errors.New("No device tokens available to push notifications")
	ErrInvalidInteractionType = errors.New("invalid interaction type")
)

// NotificationStore persists and queries logical notification records.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n models.Notification) error
	GetNotificationByID(ctx context.Context, notificationID string) (*models.Notification, error)
	FindNotifications(ctx context.Context, search string, opts models.QueryOptions) ([]models.Notification, error)
	FindUserNotifications(ctx context.Context, userPsID string, opts models.QueryOptions) ([]models.Notification, error)
	SoftDeleteNotification(ctx context.Context, notificationID string) error
	HardDeleteNotification(ctx context.Context, notificationID string) error
}

// InteractionStore keeps at most one interaction row per
// (notificationId, userPsId) pair.
type InteractionStore interface {
	GetInteraction(ctx context.Context, notificationID, userPsID string) (*models.Interaction, error)
	DeleteInteraction(ctx context.Context, notificationID, userPsID string) error
	InsertInteraction(ctx context.Context, in models.Interaction) error
	GetInteractionsByNotificationIDs(ctx context.Context, notificationIDs []string, userPsID string) ([]models.Interaction, error)
}

// EmployeeStore is the slice of the user store the core consumes: batch
// resolution of device endpoints and the denormalized top-alerts list.
type EmployeeStore interface {
	FindEmployeesByPsIDs(ctx context.Context, psIDs []string) ([]models.Employee, error)
	AddTopAlert(ctx context.Context, userPsID, notificationID string) error
	RemoveTopAlert(ctx context.Context, userPsID, notificationID string) error
}

// LocationStore validates branch targeting before anything is persisted.
type LocationStore interface {
	MissingBranchIDs(ctx context.Context, branchIDs []string) ([]string, error)
}

// QueueStore writes per-recipient queue entries for Dashboard and UserQueue
// placements.
type QueueStore interface {
	CreateUserQueueEntry(ctx context.Context, e models.UserQueueEntry) error
}

// PrerequisiteStore creates onboarding gating items for the Prerequisite
// placement.
type PrerequisiteStore interface {
	CreatePrerequisite(ctx context.Context, p models.Prerequisite) error
}

// Pusher is the delivery engine surface the orchestrator fans out through.
type Pusher interface {
	SendToDevices(ctx context.Context, txID, notificationID, userPsID string, tokens []string, payload models.PushPayload) models.PushResult
	NotifyBranchAndJobLevelByTopicName(ctx context.Context, txID, branchID string, jobLevel int, category string, payload models.PushPayload) bool
	NotifyEmployeeByTopicName(ctx context.Context, txID, userPsID string, jobLevel int, category string, payload models.PushPayload) bool
}

// TopicManager manages device-token topic membership at the provider.
type TopicManager interface {
	SubscribeToTopic(ctx context.Context, token, topic string) error
	UnsubscribeFromTopic(ctx context.Context, token, topic string) error
}

// DashboardNotifier pushes live frames to connected dashboard sessions.
type DashboardNotifier interface {
	SendToUser(userPsID string, frame ws.DashboardFrame)
}

package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce-notification-service/internal/models"
)

func seedNotification(f *serviceFixture, id string) {
	f.store.notifications[id] = models.Notification{
		NotificationID: id,
		Title:          "T",
		Body:           "B",
		Status:         models.NotificationStatusActive,
		CreatedAt:      time.Now(),
	}
}

func TestInteractionNotificationNotFound(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.NotificationInteraction(context.Background(), "tx", models.InteractionRequest{
		NotificationID:  "ntf-missing",
		UserPsID:        "P1",
		InteractionType: models.InteractionRead,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
	assert.EqualError(t, err, "Notification Not Found")
	assert.Zero(t, f.interactions.inserts)
}

func TestInteractionRejectsUnknownType(t *testing.T) {
	f := newServiceFixture()
	seedNotification(f, "ntf-1")

	_, err := f.svc.NotificationInteraction(context.Background(), "tx", models.InteractionRequest{
		NotificationID:  "ntf-1",
		UserPsID:        "P1",
		InteractionType: "Snoozed",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInteractionType)
}

func TestInteractionFirstRecording(t *testing.T) {
	f := newServiceFixture()
	seedNotification(f, "ntf-1")

	id, err := f.svc.NotificationInteraction(context.Background(), "tx", models.InteractionRequest{
		NotificationID:  "ntf-1",
		UserPsID:        "P1",
		InteractionType: models.InteractionAcknowledged,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	stored, err := f.interactions.GetInteraction(context.Background(), "ntf-1", "P1")
	require.NoError(t, err)
	assert.Equal(t, id, stored.InteractionID)
	assert.Equal(t, models.InteractionAcknowledged, stored.InteractionType)
}

func TestInteractionSameTypeIsIdempotent(t *testing.T) {
	f := newServiceFixture()
	seedNotification(f, "ntf-1")

	req := models.InteractionRequest{
		NotificationID:  "ntf-1",
		UserPsID:        "P1",
		InteractionType: models.InteractionAcknowledged,
	}
	first, err := f.svc.NotificationInteraction(context.Background(), "tx", req)
	require.NoError(t, err)
	second, err := f.svc.NotificationInteraction(context.Background(), "tx", req)
	require.NoError(t, err)

	assert.Equal(t, first, second, "repeat of the stored type must return the existing id")
	assert.Equal(t, 1, f.interactions.inserts)
	assert.Zero(t, f.interactions.deletes)
}

func TestInteractionDifferentTypeReplaces(t *testing.T) {
	f := newServiceFixture()
	seedNotification(f, "ntf-1")

	ackID, err := f.svc.NotificationInteraction(context.Background(), "tx", models.InteractionRequest{
		NotificationID:  "ntf-1",
		UserPsID:        "P1",
		InteractionType: models.InteractionAcknowledged,
	})
	require.NoError(t, err)

	dismissID, err := f.svc.NotificationInteraction(context.Background(), "tx", models.InteractionRequest{
		NotificationID:  "ntf-1",
		UserPsID:        "P1",
		InteractionType: models.InteractionDismissed,
	})
	require.NoError(t, err)
	assert.NotEqual(t, ackID, dismissID)

	// Only the latest row survives the replacement.
	assert.Len(t, f.interactions.rows, 1)
	stored, err := f.interactions.GetInteraction(context.Background(), "ntf-1", "P1")
	require.NoError(t, err)
	assert.Equal(t, models.InteractionDismissed, stored.InteractionType)
	assert.Equal(t, 1, f.interactions.deletes)
}

func TestInteractionReadClearsTopAlert(t *testing.T) {
	f := newServiceFixture()
	seedNotification(f, "ntf-1")

	_, err := f.svc.NotificationInteraction(context.Background(), "tx", models.InteractionRequest{
		NotificationID:  "ntf-1",
		UserPsID:        "P1",
		InteractionType: models.InteractionRead,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"P1/ntf-1"}, f.employees.removed)
}

func TestInteractionReadTopAlertFailurePropagates(t *testing.T) {
	f := newServiceFixture()
	seedNotification(f, "ntf-1")
	f.employees.removeErr = errors.New("write conflict")

	_, err := f.svc.NotificationInteraction(context.Background(), "tx", models.InteractionRequest{
		NotificationID:  "ntf-1",
		UserPsID:        "P1",
		InteractionType: models.InteractionRead,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clear top alert")
}

func TestInteractionNonReadLeavesTopAlerts(t *testing.T) {
	f := newServiceFixture()
	seedNotification(f, "ntf-1")

	_, err := f.svc.NotificationInteraction(context.Background(), "tx", models.InteractionRequest{
		NotificationID:  "ntf-1",
		UserPsID:        "P1",
		InteractionType: models.InteractionDismissed,
	})
	require.NoError(t, err)
	assert.Empty(t, f.employees.removed)
}

func TestGetInteractedNotificationsByIds(t *testing.T) {
	f := newServiceFixture()
	seedNotification(f, "ntf-1")
	seedNotification(f, "ntf-2")

	_, err := f.svc.NotificationInteraction(context.Background(), "tx", models.InteractionRequest{
		NotificationID:  "ntf-1",
		UserPsID:        "P1",
		InteractionType: models.InteractionAcknowledged,
	})
	require.NoError(t, err)

	results, err := f.svc.GetInteractedNotificationsByIds(context.Background(), "tx", []string{"ntf-1", "ntf-2"}, "P1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ntf-1", results[0].NotificationID)

	empty, err := f.svc.GetInteractedNotificationsByIds(context.Background(), "tx", nil, "P1")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = f.svc.GetInteractedNotificationsByIds(context.Background(), "tx", []string{"ntf-1"}, "")
	assert.Error(t, err)
}

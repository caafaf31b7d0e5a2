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

func audienceNotification(id string, level models.AudienceLevel) models.Notification {
	return models.Notification{
		NotificationID: id,
		AudienceLevel:  level,
		Title:          "T",
		Body:           "B",
		Status:         models.NotificationStatusActive,
		CreatedAt:      time.Now(),
	}
}

func TestGetNotificationsRequiresScoping(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.GetNotifications(context.Background(), "tx", models.NotificationFilters{}, models.QueryOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one of branchIds")
}

func TestGetNotificationsVisibility(t *testing.T) {
	national := audienceNotification("ntf-nat", models.AudienceNational)

	branch := audienceNotification("ntf-br", models.AudienceBranch)
	branch.BranchIDs = []string{"B1", "B2"}

	division := audienceNotification("ntf-div", models.AudienceDivision)
	division.DivisionIDs = []string{"D7"}

	province := audienceNotification("ntf-prov", models.AudienceProvince)
	province.ProvincialCodes = []string{"ON"}

	individual := audienceNotification("ntf-ind", models.AudienceIndividual)
	individual.UserPsIDs = []string{"P1"}

	f := newServiceFixture()
	f.store.findResults = []models.Notification{national, branch, division, province, individual}

	tests := []struct {
		name    string
		filters models.NotificationFilters
		wantIDs []string
	}{
		{
			name:    "branch overlap",
			filters: models.NotificationFilters{BranchIDs: []string{"B2"}},
			wantIDs: []string{"ntf-nat", "ntf-br"},
		},
		{
			name:    "no overlap sees only national",
			filters: models.NotificationFilters{BranchIDs: []string{"B9"}},
			wantIDs: []string{"ntf-nat"},
		},
		{
			name:    "division overlap",
			filters: models.NotificationFilters{DivisionIDs: []string{"D7"}},
			wantIDs: []string{"ntf-nat", "ntf-div"},
		},
		{
			name:    "wildcard branch matches regardless of targeting",
			filters: models.NotificationFilters{BranchIDs: []string{"*"}},
			wantIDs: []string{"ntf-nat", "ntf-br"},
		},
		{
			name: "wildcard everywhere still excludes individual",
			filters: models.NotificationFilters{
				BranchIDs:       []string{"*"},
				DivisionIDs:     []string{"*"},
				ProvincialCodes: []string{"*"},
			},
			wantIDs: []string{"ntf-nat", "ntf-br", "ntf-div", "ntf-prov"},
		},
		{
			name:    "province overlap",
			filters: models.NotificationFilters{ProvincialCodes: []string{"ON", "QC"}},
			wantIDs: []string{"ntf-nat", "ntf-prov"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := f.svc.GetNotifications(context.Background(), "tx", tt.filters, models.QueryOptions{})
			require.NoError(t, err)
			ids := make([]string, 0, len(results))
			for _, n := range results {
				ids = append(ids, n.NotificationID)
			}
			assert.ElementsMatch(t, tt.wantIDs, ids)
		})
	}
}

func TestGetNotificationsExcludesExpiredAndDeleted(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	expired := audienceNotification("ntf-expired", models.AudienceNational)
	expired.ExpiresAt = &past

	live := audienceNotification("ntf-live", models.AudienceNational)
	live.ExpiresAt = &future

	deleted := audienceNotification("ntf-deleted", models.AudienceNational)
	deleted.IsDeleted = true

	f := newServiceFixture()
	f.store.findResults = []models.Notification{expired, live, deleted}
	f.store.notifications["ntf-expired"] = expired

	results, err := f.svc.GetNotifications(context.Background(), "tx", models.NotificationFilters{BranchIDs: []string{"B1"}}, models.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ntf-live", results[0].NotificationID)

	// An expired record stays retrievable by id.
	got, err := f.svc.GetNotificationByID(context.Background(), "tx", "ntf-expired")
	require.NoError(t, err)
	assert.Equal(t, "ntf-expired", got.NotificationID)
}

func TestGetUserNotificationsFailsOpen(t *testing.T) {
	f := newServiceFixture()
	f.store.userErr = errors.New("index build in progress")

	results, err := f.svc.GetUserNotificationsByFilter(context.Background(), "tx", "P1", models.QueryOptions{})
	require.NoError(t, err, "inbox errors must not surface to the caller")
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestGetUserNotifications(t *testing.T) {
	f := newServiceFixture()
	f.store.userResults = []models.Notification{
		audienceNotification("ntf-1", models.AudienceIndividual),
		audienceNotification("ntf-2", models.AudienceIndividual),
	}

	results, err := f.svc.GetUserNotificationsByFilter(context.Background(), "tx", "P1", models.QueryOptions{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestGetNotificationByIDNotFound(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.GetNotificationByID(context.Background(), "tx", "ntf-missing")
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestSoftDeleteNotification(t *testing.T) {
	f := newServiceFixture()
	f.store.notifications["ntf-1"] = audienceNotification("ntf-1", models.AudienceNational)

	require.NoError(t, f.svc.SoftDeleteNotification(context.Background(), "tx", "ntf-1"))
	assert.True(t, f.store.notifications["ntf-1"].IsDeleted)

	err := f.svc.SoftDeleteNotification(context.Background(), "tx", "ntf-missing")
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestHardDeleteNotification(t *testing.T) {
	f := newServiceFixture()
	f.store.notifications["ntf-1"] = audienceNotification("ntf-1", models.AudienceNational)

	require.NoError(t, f.svc.HardDeleteNotification(context.Background(), "tx", "ntf-1"))
	assert.NotContains(t, f.store.notifications, "ntf-1")

	err := f.svc.HardDeleteNotification(context.Background(), "tx", "ntf-1")
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}

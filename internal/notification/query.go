package notification

import (
	"context"
	"errors"
	"fmt"

	"workforce-notification-service/internal/models"
	"workforce-notification-service/internal/mongodb"
)

// GetNotifications returns the audience-filtered notification list. The DB
// query excludes expired and deleted records and applies the optional search;
// the caller's branch/division/province membership is then checked in memory
// against each record's visibility tier. A "*" entry in a caller id list
// matches its tier universally.
func (s *Service) GetNotifications(ctx context.Context, txID string, filters models.NotificationFilters, opts models.QueryOptions) ([]models.Notification, error) {
	if len(filters.BranchIDs) == 0 && len(filters.DivisionIDs) == 0 && len(filters.ProvincialCodes) == 0 {
		return nil, errors.New("at least one of branchIds, divisionIds, or provincialCodes is required")
	}

	candidates, err := s.store.FindNotifications(ctx, filters.Search, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}

	// TODO: fold the visibility check into a compound DB query once the
	// targeting arrays are indexed; the matching semantics must not change.
	results := make([]models.Notification, 0, len(candidates))
	for _, n := range candidates {
		if matchesVisibility(n, filters) {
			results = append(results, n)
		}
	}
	s.logger.Debugf("[%s] notification list: %d of %d candidates visible", txID, len(results), len(candidates))
	return results, nil
}

// matchesVisibility applies the any-match rule across visibility tiers.
// National always matches; Branch/Division/Province match when the caller's
// corresponding id list contains "*" or overlaps the notification's
// targeting arrays. Individual-scoped records never surface here; they
// belong to the personal inbox.
func matchesVisibility(n models.Notification, f models.NotificationFilters) bool {
	switch n.AudienceLevel {
	case models.AudienceNational:
		return true
	case models.AudienceBranch:
		return tierMatches(f.BranchIDs, n.BranchIDs)
	case models.AudienceDivision:
		return tierMatches(f.DivisionIDs, n.DivisionIDs)
	case models.AudienceProvince:
		return tierMatches(f.ProvincialCodes, n.ProvincialCodes)
	default:
		return false
	}
}

// tierMatches reports whether the caller's id list contains "*" or overlaps
// the notification's targeting list. The wildcard matches regardless of the
// notification's own targeting.
func tierMatches(callerIDs, targetIDs []string) bool {
	for _, id := range callerIDs {
		if id == "*" {
			return true
		}
	}
	for _, id := range callerIDs {
		for _, target := range targetIDs {
			if id == target {
				return true
			}
		}
	}
	return false
}

// GetUserNotificationsByFilter returns a user's personal inbox, sorted by
// priority (Highest first) then by the requested or default createdAt-desc
// order. This path fails open: any query error yields an empty list, never
// an error to the caller.
func (s *Service) GetUserNotificationsByFilter(ctx context.Context, txID, userPsID string, opts models.QueryOptions) ([]models.Notification, error) {
	results, err := s.store.FindUserNotifications(ctx, userPsID, opts)
	if err != nil {
		s.logger.Errorf("[%s] user notification query failed for %s, returning empty list: %v", txID, userPsID, err)
		return []models.Notification{}, nil
	}
	return results, nil
}

// GetNotificationByID fetches a notification by id. Expired records are
// still returned; only listings exclude them.
func (s *Service) GetNotificationByID(ctx context.Context, txID, notificationID string) (*models.Notification, error) {
	n, err := s.store.GetNotificationByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return n, nil
}

// SoftDeleteNotification flags the record removed without deleting it.
func (s *Service) SoftDeleteNotification(ctx context.Context, txID, notificationID string) error {
	if err := s.store.SoftDeleteNotification(ctx, notificationID); err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	s.logger.Infof("[%s] soft deleted notification %s", txID, notificationID)
	return nil
}

// HardDeleteNotification removes the record permanently.
func (s *Service) HardDeleteNotification(ctx context.Context, txID, notificationID string) error {
	if err := s.store.HardDeleteNotification(ctx, notificationID); err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	s.logger.Infof("[%s] hard deleted notification %s", txID, notificationID)
	return nil
}

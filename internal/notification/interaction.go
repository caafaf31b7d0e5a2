package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"workforce-notification-service/internal/models"
	"workforce-notification-service/internal/mongodb"
)

// NotificationInteraction records a recipient action against a notification.
// A repeat of the stored type is an idempotent no-op returning the existing
// id; a differing type replaces the stored row (delete, then insert). A Read
// interaction also pulls the notification from the user's top-alerts list.
func (s *Service) NotificationInteraction(ctx context.Context, txID string, req models.InteractionRequest) (string, error) {
	if !req.InteractionType.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidInteractionType, req.InteractionType)
	}
	if req.NotificationID == "" || req.UserPsID == "" {
		return "", errors.New("notificationId and userPsId are required")
	}

	if _, err := s.store.GetNotificationByID(ctx, req.NotificationID); err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			return "", ErrNotificationNotFound
		}
		return "", fmt.Errorf("failed to look up notification %s: %w", req.NotificationID, err)
	}

	existing, err := s.interactions.GetInteraction(ctx, req.NotificationID, req.UserPsID)
	if err != nil && !errors.Is(err, mongodb.ErrNotFound) {
		return "", fmt.Errorf("failed to look up interaction: %w", err)
	}

	if existing != nil {
		if existing.InteractionType == req.InteractionType {
			s.logger.Debugf("[%s] interaction %s already recorded for %s/%s", txID, req.InteractionType, req.NotificationID, req.UserPsID)
			return existing.InteractionID, nil
		}
		// Replace, not append: only the latest interaction per pair survives.
		if err := s.interactions.DeleteInteraction(ctx, req.NotificationID, req.UserPsID); err != nil {
			return "", fmt.Errorf("failed to replace interaction: %w", err)
		}
	}

	in := models.Interaction{
		InteractionID:   uuid.NewString(),
		NotificationID:  req.NotificationID,
		UserPsID:        req.UserPsID,
		InteractionType: req.InteractionType,
		InteractedAt:    time.Now(),
	}
	if err := s.interactions.InsertInteraction(ctx, in); err != nil {
		return "", fmt.Errorf("failed to record interaction: %w", err)
	}

	if req.InteractionType == models.InteractionRead {
		// A Read always implies removal from the user's outstanding list.
		if err := s.employees.RemoveTopAlert(ctx, req.UserPsID, req.NotificationID); err != nil {
			s.logger.Errorf("[%s] failed to clear top alert %s for user %s: %v", txID, req.NotificationID, req.UserPsID, err)
			return "", fmt.Errorf("failed to clear top alert: %w", err)
		}
	}

	s.logger.Infof("[%s] recorded %s interaction %s for %s/%s", txID, req.InteractionType, in.InteractionID, req.NotificationID, req.UserPsID)
	return in.InteractionID, nil
}

// GetInteractedNotificationsByIds returns the user's interactions for the
// given notification ids.
func (s *Service) GetInteractedNotificationsByIds(ctx context.Context, txID string, notificationIDs []string, userPsID string) ([]models.Interaction, error) {
	if len(notificationIDs) == 0 {
		return []models.Interaction{}, nil
	}
	if userPsID == "" {
		return nil, errors.New("userPsId is required")
	}
	results, err := s.interactions.GetInteractionsByNotificationIDs(ctx, notificationIDs, userPsID)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	return results, nil
}

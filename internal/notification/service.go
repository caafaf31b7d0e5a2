package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"workforce-notification-service/internal/config"
	"workforce-notification-service/internal/logging"
	"workforce-notification-service/internal/models"
	"workforce-notification-service/internal/ws"
)

// Service is the notification fan-out core: it classifies a send request into
// delivery channels, persists the record before any fan-out, and runs each
// channel as an independent best-effort operation.
type Service struct {
	store        NotificationStore
	interactions InteractionStore
	employees    EmployeeStore
	locations    LocationStore
	queue        QueueStore
	prereqs      PrerequisiteStore
	pusher       Pusher
	topics       TopicManager
	dashboard    DashboardNotifier // nil when no live dashboard channel is wired
	logger       *logging.Logger

	deviceTokenBatchSize int
	fieldStaffJobLevel   int
}

// Deps bundles the collaborators the Service consumes.
type Deps struct {
	Store        NotificationStore
	Interactions InteractionStore
	Employees    EmployeeStore
	Locations    LocationStore
	Queue        QueueStore
	Prereqs      PrerequisiteStore
	Pusher       Pusher
	Topics       TopicManager
	Dashboard    DashboardNotifier
}

// New constructs the notification Service.
func New(deps Deps, cfg config.Config, logger *logging.Logger) *Service {
	return &Service{
		store:                deps.Store,
		interactions:         deps.Interactions,
		employees:            deps.Employees,
		locations:            deps.Locations,
		queue:                deps.Queue,
		prereqs:              deps.Prereqs,
		pusher:               deps.Pusher,
		topics:               deps.Topics,
		dashboard:            deps.Dashboard,
		logger:               logger,
		deviceTokenBatchSize: cfg.Notification.DeviceTokenBatchSize,
		fieldStaffJobLevel:   cfg.Notification.FieldStaffJobLevel,
	}
}

// SendNotification validates the request, persists the notification record,
// then fans out to the requested channels. The record is guaranteed to exist
// once a notificationId is returned; delivery is best-effort and channel
// failures surface only in logs. The one exception is a recipient set that
// resolves to zero device endpoints, which is returned as ErrNoDeviceTokens.
func (s *Service) SendNotification(ctx context.Context, txID string, req models.SendNotificationRequest) (string, error) {
	n, err := buildNotification(req)
	if err != nil {
		return "", err
	}

	if len(n.BranchIDs) > 0 {
		missing, err := s.locations.MissingBranchIDs(ctx, n.BranchIDs)
		if err != nil {
			return "", fmt.Errorf("failed to validate branch ids: %w", err)
		}
		if len(missing) > 0 {
			return "", fmt.Errorf("unknown branch ids: %s", strings.Join(missing, ", "))
		}
	}

	if err := s.store.CreateNotification(ctx, *n); err != nil {
		return "", fmt.Errorf("failed to persist notification: %w", err)
	}
	s.logger.Infof("[%s] persisted notification %s (placements: %v)", txID, n.NotificationID, n.Placements)

	payload := buildPushPayload(*n)

	var pushErr error
	if n.HasPlacement(models.PlacementPush) {
		switch {
		case len(n.UserPsIDs) > 0:
			pushErr = s.fanOutPush(ctx, txID, *n, payload)
		case len(n.BranchIDs) > 0:
			s.fanOutBranchBroadcast(ctx, txID, *n, payload)
		}
	}

	if n.HasPlacement(models.PlacementPrerequisite) && (len(n.UserPsIDs) > 0 || len(n.BranchIDs) > 0) {
		s.fanOutPrerequisite(ctx, txID, *n)
	}

	if (n.HasPlacement(models.PlacementDashboard) || n.HasPlacement(models.PlacementUserQueue)) && len(n.UserPsIDs) > 0 {
		s.fanOutUserQueue(ctx, txID, *n)
	}

	if pushErr != nil {
		return "", pushErr
	}
	return n.NotificationID, nil
}

// buildNotification validates the request and shapes the persisted record.
// All validation happens here, before anything is written.
func buildNotification(req models.SendNotificationRequest) (*models.Notification, error) {
	if len(req.Placements) == 0 {
		return nil, errors.New("at least one placement is required")
	}

	var missing []string
	if req.Type == "" {
		missing = append(missing, "type")
	}
	if req.Origin == "" {
		missing = append(missing, "origin")
	}
	if req.Title == "" {
		missing = append(missing, "title")
	}
	if req.Body == "" {
		missing = append(missing, "body")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	if req.HasPlacement(models.PlacementDashboard) || req.HasPlacement(models.PlacementUserQueue) {
		if !req.Priority.Valid() {
			return nil, errors.New("priority is required for Dashboard and UserQueue placements")
		}
		if req.AudienceLevel == "" {
			return nil, errors.New("audienceLevel is required for Dashboard and UserQueue placements")
		}
	}

	if len(req.UserPsIDs) == 0 && len(req.BranchIDs) == 0 && len(req.DivisionIDs) == 0 && len(req.ProvincialCodes) == 0 {
		return nil, errors.New("at least one targeting dimension is required")
	}

	var expiresAt *time.Time
	if req.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("invalid expiresAt %q: %w", req.ExpiresAt, err)
		}
		expiresAt = &t
	}

	notificationID := req.NotificationID
	if notificationID == "" {
		notificationID = uuid.NewString()
	}

	now := time.Now()
	n := &models.Notification{
		NotificationID:  notificationID,
		Priority:        req.Priority,
		Placements:      req.Placements,
		AudienceLevel:   req.AudienceLevel,
		Type:            req.Type,
		Origin:          req.Origin,
		Title:           req.Title,
		Body:            req.Body,
		UserPsIDs:       req.UserPsIDs,
		BranchIDs:       req.BranchIDs,
		DivisionIDs:     req.DivisionIDs,
		ProvincialCodes: req.ProvincialCodes,
		ExpiresAt:       expiresAt,
		IsClearable:     req.IsClearable,
		Status:          models.NotificationStatusActive,
		CreatedBy:       req.CreatedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.RedirectScreen != "" {
		n.Redirection = &models.Redirection{
			ScreenName:   req.RedirectScreen,
			ScreenParams: req.RedirectParams,
		}
	}
	return n, nil
}

// buildPushPayload shapes the provider-neutral push message. Structured
// redirection params are JSON-encoded since provider data values are strings.
func buildPushPayload(n models.Notification) models.PushPayload {
	data := map[string]string{"notificationId": n.NotificationID}
	if n.Redirection != nil {
		data["redirectScreen"] = n.Redirection.ScreenName
		if len(n.Redirection.ScreenParams) > 0 {
			if params, err := json.Marshal(n.Redirection.ScreenParams); err == nil {
				data["redirectParams"] = string(params)
			}
		}
	}
	return models.PushPayload{Title: n.Title, Body: n.Body, Data: data}
}

// fanOutPush resolves device endpoints and pushes per recipient. Only a
// fully-empty endpoint resolution is returned as an error; per-recipient and
// per-device failures aggregate into logs.
func (s *Service) fanOutPush(ctx context.Context, txID string, n models.Notification, payload models.PushPayload) error {
	resolved, err := s.resolveDeviceTokens(ctx, txID, n.UserPsIDs)
	if err != nil {
		if errors.Is(err, ErrNoDeviceTokens) {
			return err
		}
		s.logger.Errorf("[%s] push fan-out aborted for notification %s: %v", txID, n.NotificationID, err)
		return nil
	}

	recipients := make([]string, 0, len(resolved.tokens))
	for _, psID := range n.UserPsIDs {
		if _, ok := resolved.tokens[psID]; ok {
			recipients = append(recipients, psID)
		}
	}

	results := runSettled(ctx, recipients, s.deviceTokenBatchSize, func(ctx context.Context, psID string) error {
		result := s.pusher.SendToDevices(ctx, txID, n.NotificationID, psID, resolved.tokens[psID], payload)
		if len(result.SuccessTokens) == 0 && len(result.FailedTokens) > 0 {
			return fmt.Errorf("all %d device sends failed for user %s", len(result.FailedTokens), psID)
		}
		return nil
	})
	if failed := failedCount(results); failed > 0 {
		s.logger.Errorf("[%s] push fan-out for notification %s: %d/%d recipients fully failed", txID, n.NotificationID, failed, len(recipients))
	} else {
		s.logger.Infof("[%s] push fan-out for notification %s reached %d recipients", txID, n.NotificationID, len(recipients))
	}
	return nil
}

// fanOutBranchBroadcast sends one topic broadcast per targeted branch at the
// implicit field-staff job level. Broadcast failures never abort the loop.
func (s *Service) fanOutBranchBroadcast(ctx context.Context, txID string, n models.Notification, payload models.PushPayload) {
	results := runSettled(ctx, n.BranchIDs, s.deviceTokenBatchSize, func(ctx context.Context, branchID string) error {
		if !s.pusher.NotifyBranchAndJobLevelByTopicName(ctx, txID, branchID, s.fieldStaffJobLevel, "", payload) {
			return fmt.Errorf("broadcast to branch %s failed", branchID)
		}
		return nil
	})
	if failed := failedCount(results); failed > 0 {
		s.logger.Errorf("[%s] branch broadcast for notification %s: %d/%d branches failed", txID, n.NotificationID, failed, len(n.BranchIDs))
	}
}

// fanOutPrerequisite creates the onboarding gating item. Fire-and-forget
// relative to the send call's return value.
func (s *Service) fanOutPrerequisite(ctx context.Context, txID string, n models.Notification) {
	p := models.Prerequisite{
		PrerequisiteID: uuid.NewString(),
		NotificationID: n.NotificationID,
		Title:          n.Title,
		Body:           n.Body,
		UserPsIDs:      n.UserPsIDs,
		BranchIDs:      n.BranchIDs,
		Status:         "Pending",
		CreatedAt:      time.Now(),
	}
	if err := s.prereqs.CreatePrerequisite(ctx, p); err != nil {
		s.logger.Errorf("[%s] failed to create prerequisite for notification %s: %v", txID, n.NotificationID, err)
		return
	}
	s.logger.Infof("[%s] created prerequisite %s for notification %s", txID, p.PrerequisiteID, n.NotificationID)
}

// fanOutUserQueue writes one queue entry per recipient and maintains the
// per-user top-alerts list; Dashboard placements additionally push a live
// frame to connected sessions.
func (s *Service) fanOutUserQueue(ctx context.Context, txID string, n models.Notification) {
	placement := models.PlacementUserQueue
	if n.HasPlacement(models.PlacementDashboard) {
		placement = models.PlacementDashboard
	}

	results := runSettled(ctx, n.UserPsIDs, s.deviceTokenBatchSize, func(ctx context.Context, psID string) error {
		entry := models.UserQueueEntry{
			EntryID:        uuid.NewString(),
			NotificationID: n.NotificationID,
			UserPsID:       psID,
			Placement:      placement,
			Priority:       n.Priority,
			Status:         "Unread",
			CreatedAt:      time.Now(),
		}
		if err := s.queue.CreateUserQueueEntry(ctx, entry); err != nil {
			return err
		}
		if err := s.employees.AddTopAlert(ctx, psID, n.NotificationID); err != nil {
			return err
		}
		if placement == models.PlacementDashboard && s.dashboard != nil {
			s.dashboard.SendToUser(psID, ws.DashboardFrame{
				NotificationID: n.NotificationID,
				Priority:       n.Priority,
				Title:          n.Title,
				Body:           n.Body,
				Redirection:    n.Redirection,
			})
		}
		return nil
	})
	for _, r := range results {
		if r.Err != nil {
			s.logger.Errorf("[%s] queue entry failed for user %s notification %s: %v", txID, r.Item, n.NotificationID, r.Err)
		}
	}
}

// NotifyBranchAndJobLevelByTopicName re-exposes the branch broadcast for
// callers that address a topic directly (chat activity, job-level alerts).
func (s *Service) NotifyBranchAndJobLevelByTopicName(ctx context.Context, txID, branchID string, jobLevel int, category string, payload models.PushPayload) bool {
	return s.pusher.NotifyBranchAndJobLevelByTopicName(ctx, txID, branchID, jobLevel, category, payload)
}

// NotifyEmployeeByTopicName broadcasts to an employee's personal topic.
func (s *Service) NotifyEmployeeByTopicName(ctx context.Context, txID, userPsID string, jobLevel int, category string, payload models.PushPayload) bool {
	return s.pusher.NotifyEmployeeByTopicName(ctx, txID, userPsID, jobLevel, category, payload)
}

// SubscribeToTopic registers a device token on a topic.
func (s *Service) SubscribeToTopic(ctx context.Context, txID, token, topic string) error {
	if err := s.topics.SubscribeToTopic(ctx, token, topic); err != nil {
		s.logger.Errorf("[%s] failed to subscribe token to topic %s: %v", txID, topic, err)
		return err
	}
	s.logger.Infof("[%s] subscribed token to topic %s", txID, topic)
	return nil
}

// UnsubscribeFromTopic removes a device token from a topic.
func (s *Service) UnsubscribeFromTopic(ctx context.Context, txID, token, topic string) error {
	if err := s.topics.UnsubscribeFromTopic(ctx, token, topic); err != nil {
		s.logger.Errorf("[%s] failed to unsubscribe token from topic %s: %v", txID, topic, err)
		return err
	}
	s.logger.Infof("[%s] unsubscribed token from topic %s", txID, topic)
	return nil
}

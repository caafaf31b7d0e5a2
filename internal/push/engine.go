package push

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"workforce-notification-service/internal/logging"
	"workforce-notification-service/internal/models"
)

// Sender delivers one message per call to a device token or a topic.
// Implemented by Client; tests substitute fakes.
type Sender interface {
	SendToToken(ctx context.Context, token string, p models.PushPayload) error
	SendToTopic(ctx context.Context, topic string, p models.PushPayload) error
}

// DeliveryLogStore persists per-device send outcomes when auditing is on.
type DeliveryLogStore interface {
	InsertDeliveryLog(ctx context.Context, e models.DeliveryLogEntry) error
}

// Engine fans a push message out to one recipient's devices and broadcasts
// to topics. Delivery is best-effort and single-attempt.
type Engine struct {
	sender            Sender
	logs              DeliveryLogStore // nil when the delivery log is disabled
	maxDevicesPerPush int
	logger            *logging.Logger
}

// NewEngine builds the delivery engine. Pass a nil logs store to disable the
// audit trail; its absence never blocks delivery.
func NewEngine(sender Sender, logs DeliveryLogStore, maxDevicesPerPush int, logger *logging.Logger) *Engine {
	return &Engine{
		sender:            sender,
		logs:              logs,
		maxDevicesPerPush: maxDevicesPerPush,
		logger:            logger,
	}
}

// SendToDevices pushes to at most maxDevicesPerPush of the recipient's
// endpoints (first in list order; the remainder is neither contacted nor
// reported). Each endpoint send is independent; failures aggregate into the
// result instead of propagating.
func (e *Engine) SendToDevices(ctx context.Context, txID, notificationID, userPsID string, tokens []string, payload models.PushPayload) models.PushResult {
	if len(tokens) > e.maxDevicesPerPush {
		e.logger.Debugf("[%s] capping devices for user %s: %d registered, %d attempted", txID, userPsID, len(tokens), e.maxDevicesPerPush)
		tokens = tokens[:e.maxDevicesPerPush]
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result models.PushResult
	)
	result.SuccessTokens = []string{}
	result.FailedTokens = []string{}

	for _, token := range tokens {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			err := e.sender.SendToToken(ctx, token, payload)

			mu.Lock()
			if err != nil {
				result.FailedTokens = append(result.FailedTokens, token)
			} else {
				result.SuccessTokens = append(result.SuccessTokens, token)
			}
			mu.Unlock()

			if err != nil {
				e.logger.Errorf("[%s] push to device failed for user %s notification %s: %v (payload title=%q)", txID, userPsID, notificationID, err, payload.Title)
			}
			e.recordOutcome(ctx, txID, notificationID, userPsID, token, err)
		}(token)
	}
	wg.Wait()

	return result
}

// recordOutcome appends one audit row per device attempt when logging is
// enabled. Audit failures are logged and swallowed.
func (e *Engine) recordOutcome(ctx context.Context, txID, notificationID, userPsID, token string, sendErr error) {
	if e.logs == nil {
		return
	}
	entry := models.DeliveryLogEntry{
		EntryID:        uuid.NewString(),
		NotificationID: notificationID,
		UserPsID:       userPsID,
		DeviceToken:    token,
		Status:         models.DeliveryStatusSent,
		CreatedAt:      time.Now(),
	}
	if sendErr != nil {
		entry.Status = models.DeliveryStatusFailed
		entry.Error = sendErr.Error()
	}
	if err := e.logs.InsertDeliveryLog(ctx, entry); err != nil {
		e.logger.Errorf("[%s] failed to write delivery log entry %s: %v", txID, entry.EntryID, err)
	}
}

// TopicName composes the broadcast topic for a branch or user id. A category
// separates clinical from non-clinical audiences; without one the topic is
// the flat job-level suffix.
func TopicName(id, category string, jobLevel int) string {
	if category != "" {
		return fmt.Sprintf("%s_%s_%d", id, category, jobLevel)
	}
	return fmt.Sprintf("%s_%d", id, jobLevel)
}

// NotifyBranchAndJobLevelByTopicName broadcasts one message to the
// branch+job-level topic. Failures are logged and swallowed; the orchestrator
// invokes this inside fire-and-forget branch loops that must not abort.
func (e *Engine) NotifyBranchAndJobLevelByTopicName(ctx context.Context, txID, branchID string, jobLevel int, category string, payload models.PushPayload) bool {
	topic := TopicName(branchID, category, jobLevel)
	if err := e.sender.SendToTopic(ctx, topic, payload); err != nil {
		e.logger.Errorf("[%s] topic broadcast to %s failed: %v (payload title=%q)", txID, topic, err, payload.Title)
		return false
	}
	e.logger.Infof("[%s] topic broadcast sent to %s", txID, topic)
	return true
}

// NotifyEmployeeByTopicName broadcasts one message to an employee's personal
// topic. Same swallow-and-report-false contract as branch broadcasts.
func (e *Engine) NotifyEmployeeByTopicName(ctx context.Context, txID, userPsID string, jobLevel int, category string, payload models.PushPayload) bool {
	topic := TopicName(userPsID, category, jobLevel)
	if err := e.sender.SendToTopic(ctx, topic, payload); err != nil {
		e.logger.Errorf("[%s] topic broadcast to %s failed: %v (payload title=%q)", txID, topic, err, payload.Title)
		return false
	}
	e.logger.Infof("[%s] topic broadcast sent to %s", txID, topic)
	return true
}

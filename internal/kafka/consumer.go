package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"workforce-notification-service/internal/logging"
	"workforce-notification-service/internal/models"
	"workforce-notification-service/internal/notification"
)

// Envelope kinds accepted on the intake topic.
const (
	KindSend        = "send"
	KindInteraction = "interaction"
)

// Envelope is the intake message shape: a kind tag plus the matching payload.
type Envelope struct {
	Kind          string                          `json:"kind"`
	TransactionID string                          `json:"transactionId,omitempty"`
	Send          *models.SendNotificationRequest `json:"send,omitempty"`
	Interaction   *models.InteractionRequest      `json:"interaction,omitempty"`
}

// InteractionHolder parks interactions whose notification record is missing.
type InteractionHolder interface {
	HoldInteraction(ctx context.Context, in models.Interaction) error
}

// Consumer reads intake envelopes and dispatches them to the notification
// service. Malformed or failed messages are logged and skipped; the intake
// never blocks on a bad message.
type Consumer struct {
	reader  *kafka.Reader
	svc     *notification.Service
	holding InteractionHolder // nil disables the not-found fallback
	logger  *logging.Logger
}

func NewConsumer(brokers []string, topic, groupID string, svc *notification.Service, holding InteractionHolder, logger *logging.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  500 * time.Millisecond,
	})
	return &Consumer{reader: reader, svc: svc, holding: holding, logger: logger}
}

// Start consumes until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	c.logger.Infof("Kafka consumer started")
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				c.logger.Infof("Kafka consumer stopped")
				return
			}
			c.logger.Errorf("Read message failed: %v", err)
			continue
		}
		c.handle(ctx, msg.Value)
	}
}

func (c *Consumer) handle(ctx context.Context, value []byte) {
	var env Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		c.logger.Errorf("Unmarshal message failed: %v", err)
		return
	}
	txID := env.TransactionID
	if txID == "" {
		txID = uuid.NewString()
	}

	switch env.Kind {
	case KindSend:
		if env.Send == nil {
			c.logger.Errorf("[%s] send envelope missing payload", txID)
			return
		}
		notificationID, err := c.svc.SendNotification(ctx, txID, *env.Send)
		if err != nil {
			c.logger.Errorf("[%s] send failed: %v", txID, err)
			return
		}
		c.logger.Infof("[%s] processed send envelope, notification %s", txID, notificationID)

	case KindInteraction:
		if env.Interaction == nil {
			c.logger.Errorf("[%s] interaction envelope missing payload", txID)
			return
		}
		_, err := c.svc.NotificationInteraction(ctx, txID, *env.Interaction)
		if err == nil {
			return
		}
		// The record may not be visible yet; park the interaction so the
		// user's action is not lost.
		if errors.Is(err, notification.ErrNotificationNotFound) && c.holding != nil {
			held := models.Interaction{
				InteractionID:   uuid.NewString(),
				NotificationID:  env.Interaction.NotificationID,
				UserPsID:        env.Interaction.UserPsID,
				InteractionType: env.Interaction.InteractionType,
				InteractedAt:    time.Now(),
			}
			if holdErr := c.holding.HoldInteraction(ctx, held); holdErr != nil {
				c.logger.Errorf("[%s] failed to hold interaction for %s: %v", txID, env.Interaction.NotificationID, holdErr)
				return
			}
			c.logger.Warnf("[%s] notification %s not found, interaction parked in holding store", txID, env.Interaction.NotificationID)
			return
		}
		c.logger.Errorf("[%s] interaction failed: %v", txID, err)

	default:
		c.logger.Errorf("[%s] unknown envelope kind %q", txID, env.Kind)
	}
}

// Close shuts the underlying reader down.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

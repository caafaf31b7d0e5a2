package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"

	"workforce-notification-service/internal/logging"
	"workforce-notification-service/internal/models"
)

const (
	messagingScope = "https://www.googleapis.com/auth/firebase.messaging"

	defaultSendURL = "https://fcm.googleapis.com/v1/projects/%s/messages:send"
	defaultIIDURL  = "https://iid.googleapis.com/iid/v1"
)

// Client talks to the push provider's HTTPS API. One message per call,
// addressed to a single device token or a topic.
type Client struct {
	httpClient *http.Client
	projectID  string
	secrets    SecretStore
	limiter    *rate.Limiter
	logger     *logging.Logger

	// Overridable for tests.
	sendURL string
	iidURL  string
}

// NewClient builds a provider client with an explicit request timeout and a
// global rate limiter.
func NewClient(projectID string, secrets SecretStore, ratePerSecond int, logger *logging.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		projectID:  projectID,
		secrets:    secrets,
		limiter:    rate.NewLimiter(rate.Limit(float64(ratePerSecond)), ratePerSecond),
		logger:     logger,
		sendURL:    fmt.Sprintf(defaultSendURL, projectID),
		iidURL:     defaultIIDURL,
	}
}

// token exchanges the service-account credential for a short-lived bearer.
// The exchange happens on every call; the provider's token lifetime is
// unconfirmed, so nothing is cached.
func (c *Client) token(ctx context.Context) (string, error) {
	raw, err := c.secrets.ServiceAccountJSON(ctx)
	if err != nil {
		return "", err
	}
	jwtCfg, err := google.JWTConfigFromJSON(raw, messagingScope)
	if err != nil {
		return "", fmt.Errorf("invalid push service account credentials: %w", err)
	}
	tok, err := jwtCfg.TokenSource(ctx).Token()
	if err != nil {
		return "", fmt.Errorf("failed to obtain push bearer token: %w", err)
	}
	return tok.AccessToken, nil
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmMessage struct {
	Token        string            `json:"token,omitempty"`
	Topic        string            `json:"topic,omitempty"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

// SendToToken delivers one message to a single device endpoint.
func (c *Client) SendToToken(ctx context.Context, token string, p models.PushPayload) error {
	return c.send(ctx, fcmMessage{
		Token:        token,
		Notification: fcmNotification{Title: p.Title, Body: p.Body},
		Data:         p.Data,
	})
}

// SendToTopic delivers one message to a pre-aggregated topic. Subscriber-list
// management belongs to the provider.
func (c *Client) SendToTopic(ctx context.Context, topic string, p models.PushPayload) error {
	return c.send(ctx, fcmMessage{
		Topic:        topic,
		Notification: fcmNotification{Title: p.Title, Body: p.Body},
		Data:         p.Data,
	})
}

func (c *Client) send(ctx context.Context, msg fcmMessage) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("push rate limit exceeded: %w", err)
	}

	bearer, err := c.token(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]fcmMessage{"message": msg})
	if err != nil {
		return fmt.Errorf("failed to marshal push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sendURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("push provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push provider returned %d: %s", resp.StatusCode, string(detail))
	}
	return nil
}

// SubscribeToTopic registers a device token on a topic.
func (c *Client) SubscribeToTopic(ctx context.Context, token, topic string) error {
	url := fmt.Sprintf("%s/%s/rel/topics/%s", c.iidURL, token, topic)
	return c.iidPost(ctx, url, nil)
}

// UnsubscribeFromTopic removes a device token from a topic.
func (c *Client) UnsubscribeFromTopic(ctx context.Context, token, topic string) error {
	payload := map[string]interface{}{
		"to":                  "/topics/" + topic,
		"registration_tokens": []string{token},
	}
	return c.iidPost(ctx, c.iidURL+":batchRemove", payload)
}

func (c *Client) iidPost(ctx context.Context, url string, payload interface{}) error {
	bearer, err := c.token(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("access_token_auth", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("topic management request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("topic management returned %d: %s", resp.StatusCode, string(detail))
	}
	return nil
}

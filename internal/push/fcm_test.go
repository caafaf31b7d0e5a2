package push

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce-notification-service/internal/logging"
	"workforce-notification-service/internal/models"
)

type staticSecretStore struct {
	data []byte
}

func (s staticSecretStore) ServiceAccountJSON(_ context.Context) ([]byte, error) {
	return s.data, nil
}

// serviceAccountJSON builds a throwaway service-account credential whose
// token_uri points at the test server, so the bearer exchange stays local.
func serviceAccountJSON(t *testing.T, tokenURL string) []byte {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	raw, err := json.Marshal(map[string]string{
		"type":         "service_account",
		"project_id":   "wf-test",
		"client_email": "push@wf-test.iam.gserviceaccount.com",
		"private_key":  string(pemKey),
		"token_uri":    tokenURL,
	})
	require.NoError(t, err)
	return raw
}

type recordedRequest struct {
	Path   string
	Auth   string
	IIDHdr string
	Body   []byte
}

type providerFixture struct {
	client *Client

	mu             sync.Mutex
	tokenExchanges int
	sends          []recordedRequest
	iidCalls       []recordedRequest
	sendStatus     int
}

func newProviderFixture(t *testing.T) *providerFixture {
	t.Helper()
	f := &providerFixture{sendStatus: http.StatusOK}

	record := func(r *http.Request) recordedRequest {
		body, _ := io.ReadAll(r.Body)
		return recordedRequest{
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			IIDHdr: r.Header.Get("access_token_auth"),
			Body:   body,
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.tokenExchanges++
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "test-bearer",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/v1/messages:send", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.sends = append(f.sends, record(r))
		status := f.sendStatus
		f.mu.Unlock()
		w.WriteHeader(status)
	})
	iidHandler := func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.iidCalls = append(f.iidCalls, record(r))
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}
	mux.HandleFunc("/iid/", iidHandler)
	mux.HandleFunc("/iid:batchRemove", iidHandler)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	secrets := staticSecretStore{data: serviceAccountJSON(t, srv.URL+"/token")}
	f.client = NewClient("wf-test", secrets, 100, logging.NewNop())
	f.client.sendURL = srv.URL + "/v1/messages:send"
	f.client.iidURL = srv.URL + "/iid"

	return f
}

type sentEnvelope struct {
	Message struct {
		Token        string            `json:"token"`
		Topic        string            `json:"topic"`
		Notification fcmNotification   `json:"notification"`
		Data         map[string]string `json:"data"`
	} `json:"message"`
}

func TestSendToToken(t *testing.T) {
	f := newProviderFixture(t)

	p := models.PushPayload{Title: "T", Body: "B", Data: map[string]string{"notificationId": "ntf-1"}}
	require.NoError(t, f.client.SendToToken(context.Background(), "tok-1", p))

	require.Len(t, f.sends, 1)
	var envelope sentEnvelope
	require.NoError(t, json.Unmarshal(f.sends[0].Body, &envelope))
	assert.Equal(t, "tok-1", envelope.Message.Token)
	assert.Empty(t, envelope.Message.Topic)
	assert.Equal(t, "T", envelope.Message.Notification.Title)
	assert.Equal(t, "B", envelope.Message.Notification.Body)
	assert.Equal(t, "ntf-1", envelope.Message.Data["notificationId"])
	assert.Equal(t, "Bearer test-bearer", f.sends[0].Auth)
}

func TestSendToTopic(t *testing.T) {
	f := newProviderFixture(t)

	require.NoError(t, f.client.SendToTopic(context.Background(), "B1_1", models.PushPayload{Title: "T", Body: "B"}))

	require.Len(t, f.sends, 1)
	var envelope sentEnvelope
	require.NoError(t, json.Unmarshal(f.sends[0].Body, &envelope))
	assert.Equal(t, "B1_1", envelope.Message.Topic)
	assert.Empty(t, envelope.Message.Token)
}

func TestSendSurfacesProviderError(t *testing.T) {
	f := newProviderFixture(t)
	f.mu.Lock()
	f.sendStatus = http.StatusServiceUnavailable
	f.mu.Unlock()

	err := f.client.SendToToken(context.Background(), "tok-1", models.PushPayload{Title: "T", Body: "B"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestBearerExchangedPerCall(t *testing.T) {
	f := newProviderFixture(t)

	p := models.PushPayload{Title: "T", Body: "B"}
	require.NoError(t, f.client.SendToToken(context.Background(), "tok-1", p))
	require.NoError(t, f.client.SendToToken(context.Background(), "tok-2", p))

	assert.Equal(t, 2, f.tokenExchanges, "no bearer caching between calls")
}

func TestTopicSubscription(t *testing.T) {
	f := newProviderFixture(t)

	require.NoError(t, f.client.SubscribeToTopic(context.Background(), "tok-1", "B1_1"))
	require.NoError(t, f.client.UnsubscribeFromTopic(context.Background(), "tok-1", "B1_1"))

	require.Len(t, f.iidCalls, 2)
	sub := f.iidCalls[0]
	assert.Equal(t, "/iid/tok-1/rel/topics/B1_1", sub.Path)
	assert.Equal(t, "true", sub.IIDHdr)

	unsub := f.iidCalls[1]
	assert.Equal(t, "/iid:batchRemove", unsub.Path)
	var removal struct {
		To     string   `json:"to"`
		Tokens []string `json:"registration_tokens"`
	}
	require.NoError(t, json.Unmarshal(unsub.Body, &removal))
	assert.Equal(t, "/topics/B1_1", removal.To)
	assert.Equal(t, []string{"tok-1"}, removal.Tokens)
}

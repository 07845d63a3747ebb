package listener

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ecar.org/esign/internal/webhook"
)

const sentPayload = `{
  "event": "envelope-sent",
  "data": {
    "accountId": "acct-1",
    "envelopeId": "env-1",
    "envelopeSummary": {
      "status": "sent",
      "emailSubject": "Please sign",
      "customFields": {
        "textCustomFields": [{"name": "recipientTrackingId", "value": "trk-ann"}]
      }
    }
  }
}`

type memStore struct {
	notices []*webhook.Notice
	raw     [][]byte
}

func (m *memStore) SaveEvent(_ context.Context, n *webhook.Notice, raw []byte) (string, error) {
	m.notices = append(m.notices, n)
	m.raw = append(m.raw, raw)
	return "evt-1", nil
}

func TestWebhookAcceptsSignedPayload(t *testing.T) {
	secret := []byte("shared-secret")
	store := &memStore{}
	var notified *webhook.Notice
	api := New(ReadyProbe{}, "test",
		WithHMACSecret(secret),
		WithEventStore(store),
		WithNotifyFunc(func(n *webhook.Notice) { notified = n }))

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(sentPayload))
	req.Header.Set(SignatureHeader, webhook.ComputeHash(secret, []byte(sentPayload)))
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Status     string `json:"status"`
		EnvelopeID string `json:"envelopeId"`
		EventID    string `json:"eventId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "accepted" || resp.EnvelopeID != "env-1" || resp.EventID != "evt-1" {
		t.Fatalf("response = %+v", resp)
	}
	if len(store.notices) != 1 || store.notices[0].Fields["recipientTrackingId"] != "trk-ann" {
		t.Fatalf("stored notices = %+v", store.notices)
	}
	if !bytes.Equal(store.raw[0], []byte(sentPayload)) {
		t.Fatal("raw payload not stored verbatim")
	}
	if notified == nil || notified.EnvelopeID != "env-1" {
		t.Fatalf("notify callback not invoked: %+v", notified)
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	api := New(ReadyProbe{}, "test", WithHMACSecret([]byte("shared-secret")))

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(sentPayload))
	req.Header.Set(SignatureHeader, "bm90LXRoZS1yaWdodC1zaWduYXR1cmU=")
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestWebhookRejectsMalformedPayload(t *testing.T) {
	api := New(ReadyProbe{}, "test")

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"event":"envelope-sent","data":{}}`))
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestWebhookWorksWithoutSecretAndStore(t *testing.T) {
	api := New(ReadyProbe{}, "test")

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(sentPayload))
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	api := New(ReadyProbe{}, "1.2.3")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"1.2.3"`) {
		t.Fatalf("version missing from body: %s", rec.Body.String())
	}
}

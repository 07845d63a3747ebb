// Package listener is the inbound HTTP surface for Connect notifications:
// a webhook endpoint with optional HMAC validation and persistence, plus
// health, readiness, and metrics endpoints.
package listener

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"ecar.org/esign/internal/audit"
	"ecar.org/esign/internal/obs"
	"ecar.org/esign/internal/webhook"
)

// SignatureHeader is the first of Connect's HMAC signature headers. Up to
// 100 can be present when multiple secrets are configured; one match
// suffices.
const SignatureHeader = "X-DocuSign-Signature-1"

// EventStore persists parsed notifications.
type EventStore interface {
	SaveEvent(ctx context.Context, n *webhook.Notice, raw []byte) (string, error)
}

// ReadyProbe gates readiness, typically on a database ping.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	secret []byte
	events EventStore
	notify func(*webhook.Notice)
}

// Option configures the API.
type Option func(*API)

// WithHMACSecret enables signature validation on the webhook endpoint.
func WithHMACSecret(secret []byte) Option {
	return func(a *API) { a.secret = secret }
}

// WithEventStore enables notification persistence.
func WithEventStore(store EventStore) Option {
	return func(a *API) { a.events = store }
}

// WithNotifyFunc registers a callback invoked for every accepted notice,
// after persistence. The callback runs on the request goroutine.
func WithNotifyFunc(fn func(*webhook.Notice)) Option {
	return func(a *API) { a.notify = fn }
}

func New(rp ReadyProbe, version string, opts ...Option) *API {
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: rp,
		version:    version,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.mux.HandleFunc("GET /healthz", a.Healthz)
	a.mux.HandleFunc("GET /readyz", a.Ready)
	a.mux.HandleFunc("GET /v1/info", a.Info)
	a.mux.HandleFunc("POST /webhook", a.Webhook)

	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler wraps the mux with metrics instrumentation.
func (a *API) Handler() http.Handler {
	return obs.Instrument(a.mux)
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "esign-listener",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "esign-listener",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// Webhook accepts one Connect notification. The body is already capped by
// the MaxBodyBytes middleware.
func (a *API) Webhook(w http.ResponseWriter, r *http.Request) {
	ctx := audit.WithRequestID(r.Context(), uuid.NewString())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{"error": "payload too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unreadable body"})
		return
	}

	if len(a.secret) > 0 {
		sig := r.Header.Get(SignatureHeader)
		if sig == "" || !webhook.ValidSignature(a.secret, body, sig) {
			_ = audit.LogEvent(ctx, "webhook_rejected", map[string]any{"reason": "bad signature"})
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid signature"})
			return
		}
	}

	notice, err := webhook.ParsePayload(body)
	if err != nil {
		_ = audit.LogEvent(ctx, "webhook_rejected", map[string]any{"reason": err.Error()})
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "malformed payload"})
		return
	}
	ctx = audit.WithEnvelopeID(ctx, notice.EnvelopeID)

	var eventID string
	if a.events != nil {
		eventID, err = a.events.SaveEvent(ctx, notice, body)
		if err != nil {
			_ = audit.LogEvent(ctx, "webhook_store_failed", map[string]any{"error": err.Error()})
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "persistence failure"})
			return
		}
	}
	if a.notify != nil {
		a.notify(notice)
	}

	_ = audit.LogEvent(ctx, "webhook_accepted", map[string]any{
		"event":  notice.Event,
		"status": notice.Status,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "accepted",
		"envelopeId": notice.EnvelopeID,
		"eventId":    eventID,
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

package audit

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"ecar.org/esign/internal/obs"
)

type ctxKey string

const (
	requestIDKey  ctxKey = "audit_request_id"
	envelopeIDKey ctxKey = "audit_envelope_id"
)

// WithRequestID attaches the delivery request identifier to the context for
// audit logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithEnvelopeID attaches the envelope identifier to the context for audit
// logging.
func WithEnvelopeID(ctx context.Context, envelopeID string) context.Context {
	envelopeID = strings.TrimSpace(envelopeID)
	if envelopeID == "" {
		return ctx
	}
	return context.WithValue(ctx, envelopeIDKey, envelopeID)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

func envelopeIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(envelopeIDKey).(string); ok {
		return v
	}
	return ""
}

// LogEvent writes an audit log entry enriched with request and envelope
// context.
func LogEvent(ctx context.Context, event string, fields map[string]any) error {
	event = strings.TrimSpace(event)
	if event == "" {
		return errors.New("event name is required")
	}
	entry := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"type":  "audit",
		"event": event,
	}
	if rid := requestIDFromContext(ctx); rid != "" {
		entry["request_id"] = rid
	}
	if eid := envelopeIDFromContext(ctx); eid != "" {
		entry["envelope_id"] = eid
	}
	if len(fields) > 0 {
		copyFields := make(map[string]any, len(fields))
		for k, v := range fields {
			copyFields[k] = v
		}
		entry["fields"] = copyFields
	} else {
		entry["fields"] = map[string]any{}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	obs.Logger().Println(string(data))
	return nil
}

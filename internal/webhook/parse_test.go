package webhook

import (
	"reflect"
	"testing"
)

const completedPayload = `{
  "event": "envelope-completed",
  "data": {
    "accountId": "acct-1",
    "envelopeId": "env-1",
    "envelopeSummary": {
      "status": "completed",
      "emailSubject": "Please sign",
      "emailBlurb": "Thanks!",
      "sentDateTime": "2024-05-01T10:00:00.0000000Z",
      "completedDateTime": "2024-05-02T08:30:00.0000000Z",
      "expireEnabled": "true",
      "expireAfter": "120",
      "expireDateTime": "2024-08-29T10:00:00.0000000Z",
      "customFields": {
        "listCustomFields": [
          {"name": "region", "value": "west"},
          {"name": "channel", "value": "branch"}
        ],
        "textCustomFields": [
          {"name": "recipientTrackingId", "value": "trk-ann"},
          {"name": "region", "value": "east"}
        ]
      }
    }
  }
}`

func TestParsePayload(t *testing.T) {
	n, err := ParsePayload([]byte(completedPayload))
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if n.EnvelopeID != "env-1" || n.Status != "completed" || n.Event != "envelope-completed" {
		t.Fatalf("notice = %+v", n)
	}
	if n.CompletedDateTime != "2024-05-02T08:30:00.0000000Z" {
		t.Fatalf("timestamp mangled: %q", n.CompletedDateTime)
	}
	if n.ExpireAfter != "120" || n.ExpireEnabled != "true" {
		t.Fatalf("expiration fields = %q / %q", n.ExpireEnabled, n.ExpireAfter)
	}
	want := map[string]string{
		"region":              "east",
		"channel":             "branch",
		"recipientTrackingId": "trk-ann",
	}
	if !reflect.DeepEqual(n.Fields, want) {
		t.Fatalf("fields = %v, want %v", n.Fields, want)
	}
}

func TestParsePayloadIsIdempotent(t *testing.T) {
	a, err := ParsePayload([]byte(completedPayload))
	if err != nil {
		t.Fatalf("first parse: %v", err)
	}
	b, err := ParsePayload([]byte(completedPayload))
	if err != nil {
		t.Fatalf("second parse: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("parses differ:\n%+v\n%+v", a, b)
	}
}

func TestParsePayloadRejectsMissingEnvelope(t *testing.T) {
	if _, err := ParsePayload([]byte(`{"event":"envelope-sent","data":{}}`)); err == nil {
		t.Fatal("expected error for payload without envelope id")
	}
}

func TestValidSignature(t *testing.T) {
	secret := []byte("shared-secret")
	payload := []byte(completedPayload)
	sig := ComputeHash(secret, payload)

	if !ValidSignature(secret, payload, sig) {
		t.Fatal("signature should validate")
	}
	if ValidSignature([]byte("other-secret"), payload, sig) {
		t.Fatal("signature must not validate under a different secret")
	}
	if ValidSignature(secret, append(payload, '!'), sig) {
		t.Fatal("signature must not validate for altered payload")
	}
}

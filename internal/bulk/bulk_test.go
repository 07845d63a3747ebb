package bulk

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"ecar.org/esign/internal/auth"
	"ecar.org/esign/internal/config"
	"ecar.org/esign/internal/envelope"
	"ecar.org/esign/internal/rest"
	"ecar.org/esign/internal/template"
)

func testKeyPEM(t *testing.T) []byte {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
}

// upstream fakes the three bulk endpoints plus template search, capturing
// the submitted payloads.
type upstream struct {
	srv      *httptest.Server
	requests int64

	lists     []sendingList
	envelopes []envelope.Definition
	sends     []sendRequest
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v2.1/accounts/acct-1/templates", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"resultSetSize":"1","envelopeTemplates":[{"templateId":"tmpl-123","name":%q}]}`,
			r.URL.Query().Get("search_text"))
	})
	mux.HandleFunc("POST /v2.1/accounts/acct-1/bulk_send_lists", func(w http.ResponseWriter, r *http.Request) {
		var list sendingList
		if err := json.NewDecoder(r.Body).Decode(&list); err != nil {
			t.Errorf("bad sending list payload: %v", err)
		}
		u.lists = append(u.lists, list)
		fmt.Fprint(w, `{"listId":"list-1","name":"spring-batch"}`)
	})
	mux.HandleFunc("POST /v2.1/accounts/acct-1/envelopes", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var def envelope.Definition
		if err := json.Unmarshal(body, &def); err != nil {
			t.Errorf("bad envelope payload: %v", err)
		}
		u.envelopes = append(u.envelopes, def)
		fmt.Fprint(w, `{"envelopeId":"env-9","status":"created"}`)
	})
	mux.HandleFunc("POST /v2.1/accounts/acct-1/bulk_send_lists/list-1/send", func(w http.ResponseWriter, r *http.Request) {
		var sr sendRequest
		if err := json.NewDecoder(r.Body).Decode(&sr); err != nil {
			t.Errorf("bad send payload: %v", err)
		}
		u.sends = append(u.sends, sr)
		fmt.Fprint(w, `{"batchId":"batch-1","batchName":"spring-batch","batchSize":"2"}`)
	})
	mux.HandleFunc("GET /v2.1/accounts/acct-1/bulk_send_batch/batch-1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"batchId":"batch-1","batchSize":"2","queued":"0","sent":"2","failed":"0","mailingListId":"list-1"}`)
	})
	counting := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&u.requests, 1)
		mux.ServeHTTP(w, r)
	})
	u.srv = httptest.NewServer(counting)
	t.Cleanup(u.srv.Close)
	return u
}

func newService(t *testing.T, u *upstream) *Service {
	t.Helper()
	cfg := &config.Config{
		AccountID:  "acct-1",
		ClientID:   "client-1",
		UserID:     "user-1",
		PrivateKey: testKeyPEM(t),
	}
	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/token":
			fmt.Fprint(w, `{"access_token":"tok","expires_in":3600}`)
		case "/oauth/userinfo":
			fmt.Fprint(w, `{"accounts":[{"account_id":"acct-1","base_uri":"https://unused.example"}]}`)
		}
	}))
	t.Cleanup(idp.Close)
	cfg.AuthServer = idp.URL

	api := rest.New(cfg, auth.New(cfg), rest.WithBaseURL(u.srv.URL))
	return NewService(api, envelope.NewService(api, template.NewResolver(api)))
}

func twoRecipients() []Recipient {
	return []Recipient{
		SingleRecipient{
			SignerName:  "Ann Ames",
			SignerEmail: "ann@example.com",
			SignerID:    "trk-ann",
			RoleName:    "Member",
			PresetFields: []envelope.Preset{
				{Label: "MEMBER_DOB", Type: envelope.PresetDate, Value: "2/2/1992"},
			},
		},
		SingleRecipient{
			SignerName:  "Bob Breen",
			SignerEmail: "bob@example.com",
			SignerID:    "trk-bob",
			RoleName:    "Member",
		},
	}
}

func TestSendThreePhases(t *testing.T) {
	u := newUpstream(t)
	svc := newService(t, u)

	req := &Request{
		BatchName:    "spring-batch",
		EmailSubject: "Please sign",
		TemplateName: "Consent Form",
		Recipients:   twoRecipients(),
	}
	if err := svc.Send(context.Background(), req, nil); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if req.ListID != "list-1" || req.BatchID != "batch-1" {
		t.Fatalf("identifiers not recorded: list=%q batch=%q", req.ListID, req.BatchID)
	}

	if len(u.lists) != 1 {
		t.Fatalf("expected one sending list, got %d", len(u.lists))
	}
	list := u.lists[0]
	if len(list.BulkCopies) != 2 {
		t.Fatalf("expected two copies, got %d", len(list.BulkCopies))
	}
	first := list.BulkCopies[0]
	if len(first.CustomFields) != 1 || first.CustomFields[0].Name != trackingFieldName || first.CustomFields[0].Value != "trk-ann" {
		t.Fatalf("copy custom fields = %+v", first.CustomFields)
	}
	if first.Recipients[0].ClientUserID != "trk-ann" {
		t.Fatalf("copy client user id = %q", first.Recipients[0].ClientUserID)
	}
	if len(first.Recipients[0].Tabs) != 1 || first.Recipients[0].Tabs[0].InitialValue != "2/2/1992" {
		t.Fatalf("copy tabs = %+v", first.Recipients[0].Tabs)
	}

	if len(u.envelopes) != 1 {
		t.Fatalf("expected one envelope, got %d", len(u.envelopes))
	}
	def := u.envelopes[0]
	if def.Status != "created" {
		t.Fatalf("envelope status = %q, want created", def.Status)
	}
	signer := def.CompositeTemplates[0].InlineTemplates[0].Recipients.Signers[0]
	if !strings.HasPrefix(signer.Name, "Multi Bulk Recipient::") {
		t.Fatalf("placeholder name = %q", signer.Name)
	}
	if signer.Email != "multiBulkRecipients-Member@docusign.com" {
		t.Fatalf("placeholder email = %q", signer.Email)
	}
	if def.CustomFields == nil {
		t.Fatal("envelope custom fields missing")
	}
	var sawList, sawRef bool
	for _, f := range def.CustomFields.TextCustomFields {
		switch f.Name {
		case mailingListFieldName:
			sawList = f.Value == "list-1"
		case batchRefFieldName:
			sawRef = f.Value != ""
		}
	}
	if !sawList || !sawRef {
		t.Fatalf("envelope custom fields = %+v", def.CustomFields.TextCustomFields)
	}

	if len(u.sends) != 1 || u.sends[0].EnvelopeOrTemplateID != "env-9" {
		t.Fatalf("send payloads = %+v", u.sends)
	}
}

func TestSendRejectsEmptyTrackingIDBeforeNetwork(t *testing.T) {
	u := newUpstream(t)
	svc := newService(t, u)

	req := &Request{
		BatchName:    "spring-batch",
		TemplateName: "Consent Form",
		Recipients: []Recipient{
			SingleRecipient{SignerName: "Ann Ames", SignerEmail: "ann@example.com"},
		},
	}
	err := svc.Send(context.Background(), req, nil)
	var verr *envelope.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if n := atomic.LoadInt64(&u.requests); n != 0 {
		t.Fatalf("expected no upstream calls, got %d", n)
	}
}

func TestBatchStatus(t *testing.T) {
	u := newUpstream(t)
	svc := newService(t, u)

	st, err := svc.Status(context.Background(), "batch-1")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Sent != "2" || st.Failed != "0" || st.MailingListID != "list-1" {
		t.Fatalf("status = %+v", st)
	}
}

func TestBuildSendingListSubjectOverride(t *testing.T) {
	list, err := BuildSendingList(&Request{
		BatchName: "b",
		Recipients: []Recipient{
			SingleRecipient{
				SignerName:   "Ann Ames",
				SignerEmail:  "ann@example.com",
				SignerID:     "trk-ann",
				EmailSubject: "Your copy",
			},
		},
	})
	if err != nil {
		t.Fatalf("BuildSendingList: %v", err)
	}
	if list.BulkCopies[0].EmailSubject != "Your copy" {
		t.Fatalf("copy subject = %q", list.BulkCopies[0].EmailSubject)
	}
}

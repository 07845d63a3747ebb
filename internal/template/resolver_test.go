package template

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"ecar.org/esign/internal/auth"
	"ecar.org/esign/internal/config"
	"ecar.org/esign/internal/rest"
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

func resolverAgainst(t *testing.T, searches *int64, payload string) *Resolver {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(searches, 1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, payload)
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		AccountID:  "acct-1",
		ClientID:   "client-1",
		UserID:     "user-1",
		PrivateKey: testKeyPEM(t),
	}
	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/oauth/token":
			fmt.Fprint(w, `{"access_token":"tok","expires_in":3600}`)
		case "/oauth/userinfo":
			fmt.Fprint(w, `{"accounts":[{"account_id":"acct-1","base_uri":"https://unused.example"}]}`)
		}
	}))
	t.Cleanup(idp.Close)
	cfg.AuthServer = idp.URL

	api := rest.New(cfg, auth.New(cfg), rest.WithBaseURL(srv.URL))
	return NewResolver(api)
}

func TestResolveCachesFirstMatch(t *testing.T) {
	var searches int64
	r := resolverAgainst(t, &searches,
		`{"resultSetSize":"2","envelopeTemplates":[{"templateId":"tmpl-123","name":"Consent Form"},{"templateId":"tmpl-999","name":"Consent Form"}]}`)

	ctx := context.Background()
	id, err := r.Resolve(ctx, "Consent Form")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id != "tmpl-123" {
		t.Fatalf("id = %q, want first match tmpl-123", id)
	}

	id2, err := r.Resolve(ctx, "Consent Form")
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if id2 != id {
		t.Fatalf("cached id = %q, want %q", id2, id)
	}
	if n := atomic.LoadInt64(&searches); n != 1 {
		t.Fatalf("expected one upstream search, got %d", n)
	}
}

func TestResolveNotFound(t *testing.T) {
	var searches int64
	r := resolverAgainst(t, &searches, `{"resultSetSize":"0","envelopeTemplates":[]}`)

	_, err := r.Resolve(context.Background(), "Missing Form")
	if err == nil {
		t.Fatal("expected error")
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %T: %v", err, err)
	}
	if nf.Name != "Missing Form" {
		t.Fatalf("error should carry the template name, got %q", nf.Name)
	}
}

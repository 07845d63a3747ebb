package rest

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ecar.org/esign/internal/auth"
	"ecar.org/esign/internal/config"
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

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		AccountID:  "acct-1",
		ClientID:   "client-1",
		UserID:     "user-1",
		AuthServer: "account-d.docusign.com",
		PrivateKey: testKeyPEM(t),
	}
	a := authWithToken(t, cfg)
	return New(cfg, a, WithBaseURL(srv.URL)), srv
}

// authWithToken builds an Authenticator whose identity calls hit a stub
// server returning a fixed token.
func authWithToken(t *testing.T, cfg *config.Config) *auth.Authenticator {
	t.Helper()
	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/oauth/token":
			fmt.Fprint(w, `{"access_token":"tok-x","token_type":"Bearer","expires_in":3600}`)
		case "/oauth/userinfo":
			fmt.Fprint(w, `{"accounts":[{"account_id":"acct-1","base_uri":"https://unused.example"}]}`)
		}
	}))
	t.Cleanup(idp.Close)
	cfg.AuthServer = idp.URL
	return auth.New(cfg)
}

func TestDoDecodesResponse(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if want := "/v2.1/accounts/acct-1/envelopes/env-1"; r.URL.Path != want {
			t.Errorf("path = %s, want %s", r.URL.Path, want)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-x" {
			t.Errorf("auth header = %q", got)
		}
		fmt.Fprint(w, `{"status":"sent"}`)
	})

	var out struct {
		Status string `json:"status"`
	}
	if err := c.Do(context.Background(), "envelope.get", http.MethodGet, "/envelopes/env-1", nil, &out); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if out.Status != "sent" {
		t.Fatalf("status = %q", out.Status)
	}
}

func TestDoMapsUpstreamError(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"errorCode":"ENVELOPE_DOES_NOT_EXIST","message":"The envelope specified either does not exist or you have no rights to it."}`)
	})

	err := c.Do(context.Background(), "envelope.get", http.MethodGet, "/envelopes/nope", nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Code != "ENVELOPE_DOES_NOT_EXIST" {
		t.Fatalf("unexpected APIError: %+v", apiErr)
	}
}

func TestDoRequiresConfig(t *testing.T) {
	cfg := &config.Config{}
	c := New(cfg, auth.New(cfg))
	if err := c.Do(context.Background(), "op", http.MethodGet, "/x", nil, nil); err != config.ErrNotConfigured {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

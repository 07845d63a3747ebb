package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ecar.org/esign/internal/config"
)

const (
	grantType    = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	tokenScope   = "signature impersonation"
	assertionTTL = time.Hour
)

// ErrConsentRequired indicates the impersonated user has not granted consent
// to the integration key. Consent is a one-time browser step outside this
// library.
var ErrConsentRequired = errors.New("auth: user consent required for the integration key")

// Authenticator obtains and caches a bearer token via the OAuth JWT grant.
// It also records the account base path returned by the identity endpoint,
// which every entity operation needs. Safe for concurrent use.
type Authenticator struct {
	cfg    *config.Config
	client *http.Client
	now    func() time.Time

	mu      sync.Mutex
	token   string
	expiry  time.Time
	baseURI string
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithHTTPClient overrides the HTTP client used for identity calls.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Authenticator) {
		if c != nil {
			a.client = c
		}
	}
}

// WithClock overrides the time source; test use only.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) {
		if now != nil {
			a.now = now
		}
	}
}

// New constructs an Authenticator over the given credentials.
func New(cfg *config.Config, opts ...Option) *Authenticator {
	a := &Authenticator{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Token returns a valid access token, refreshing it only when the cached one
// is empty or expires within the configured grace window.
func (a *Authenticator) Token(ctx context.Context) (string, error) {
	if err := a.cfg.CheckReady(); err != nil {
		return "", err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.token != "" && a.now().Add(a.cfg.Grace()).Before(a.expiry) {
		return a.token, nil
	}
	if err := a.refreshLocked(ctx); err != nil {
		return "", err
	}
	return a.token, nil
}

// AccountBase returns the account-specific REST API root
// ("{base_uri}/restapi"), fetching the identity record first when needed.
func (a *Authenticator) AccountBase(ctx context.Context) (string, error) {
	if err := a.cfg.CheckReady(); err != nil {
		return "", err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.baseURI == "" || a.token == "" || !a.now().Add(a.cfg.Grace()).Before(a.expiry) {
		if err := a.refreshLocked(ctx); err != nil {
			return "", err
		}
	}
	return a.baseURI + "/restapi", nil
}

// Invalidate drops the cached token so the next call re-authenticates.
func (a *Authenticator) Invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = ""
	a.expiry = time.Time{}
}

// refreshLocked performs the JWT grant and userinfo calls. Caller holds a.mu.
func (a *Authenticator) refreshLocked(ctx context.Context) error {
	assertion, err := a.signAssertion()
	if err != nil {
		return err
	}

	form := url.Values{
		"grant_type": {grantType},
		"assertion":  {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.cfg.AuthBaseURL()+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("auth: token request: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("auth: read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if strings.Contains(string(body), "consent_required") {
			return ErrConsentRequired
		}
		// Surface the identity provider's message verbatim.
		return fmt.Errorf("auth: token request failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var token accessToken
	if err := json.Unmarshal(body, &token); err != nil {
		return fmt.Errorf("auth: decode token response: %w", err)
	}
	if token.Token == "" {
		return fmt.Errorf("auth: empty access token in response: %s", strings.TrimSpace(string(body)))
	}

	a.token = token.Token
	a.expiry = a.now().Add(time.Duration(token.Expiry) * time.Second)

	return a.loadUserInfoLocked(ctx)
}

// signAssertion builds the RS256-signed JWT assertion for the grant.
func (a *Authenticator) signAssertion() (string, error) {
	now := a.now()
	claims := jwt.MapClaims{
		"iss":   a.cfg.ClientID,
		"sub":   a.cfg.UserID,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionTTL).Unix(),
		"aud":   a.cfg.AuthServer,
		"scope": tokenScope,
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(a.cfg.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("auth: parse private key: %w", err)
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("auth: sign assertion: %w", err)
	}
	return signed, nil
}

// loadUserInfoLocked resolves the account base URI for the configured account.
func (a *Authenticator) loadUserInfoLocked(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.AuthBaseURL()+"/oauth/userinfo", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+a.token)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("auth: userinfo request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("auth: userinfo failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return fmt.Errorf("auth: decode userinfo: %w", err)
	}
	for _, acct := range info.Accounts {
		if strings.EqualFold(acct.AccountID, a.cfg.AccountID) {
			a.baseURI = strings.TrimRight(acct.BaseURI, "/")
			return nil
		}
	}
	return fmt.Errorf("auth: account %s not present in userinfo response", a.cfg.AccountID)
}

type accessToken struct {
	Token  string `json:"access_token"`
	Type   string `json:"token_type"`
	Expiry int    `json:"expires_in"`
}

type userInfo struct {
	Sub      string `json:"sub"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Accounts []struct {
		AccountID   string `json:"account_id"`
		IsDefault   bool   `json:"is_default"`
		AccountName string `json:"account_name"`
		BaseURI     string `json:"base_uri"`
	} `json:"accounts"`
}

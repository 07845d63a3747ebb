package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"ecar.org/esign/internal/auth"
	"ecar.org/esign/internal/config"
	"ecar.org/esign/internal/obs"
)

const apiVersion = "v2.1"

// Client is the low-level JSON client for account-scoped eSignature calls.
// Every path it accepts is relative to
// "{base_uri}/restapi/v2.1/accounts/{accountId}". Safe for concurrent use.
type Client struct {
	cfg     *config.Config
	auth    *auth.Authenticator
	httpc   *http.Client
	limiter *rate.Limiter

	// baseOverride skips the identity lookup; test use only.
	baseOverride string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpc = c
		}
	}
}

// WithLimiter overrides the client-side token bucket. DocuSign meters burst
// traffic per integration key, so the default stays conservative.
func WithLimiter(l *rate.Limiter) Option {
	return func(cl *Client) {
		if l != nil {
			cl.limiter = l
		}
	}
}

// WithBaseURL pins the API root, bypassing the identity endpoint.
func WithBaseURL(base string) Option {
	return func(cl *Client) {
		cl.baseOverride = strings.TrimRight(base, "/")
	}
}

// New constructs a Client.
func New(cfg *config.Config, a *auth.Authenticator, opts ...Option) *Client {
	c := &Client{
		cfg:     cfg,
		auth:    a,
		httpc:   &http.Client{Timeout: 60 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(10), 20),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do performs one account-scoped API call. A non-nil body is sent as JSON; a
// non-nil out receives the decoded JSON response. The operation name labels
// metrics only.
func (c *Client) Do(ctx context.Context, operation, method, path string, body, out any) error {
	raw, err := c.roundTrip(ctx, operation, method, path, body, "")
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", operation, err)
	}
	return nil
}

// DoRaw performs one account-scoped GET and returns the raw body, for
// non-JSON payloads such as document downloads.
func (c *Client) DoRaw(ctx context.Context, operation, path, accept string) ([]byte, error) {
	return c.roundTrip(ctx, operation, http.MethodGet, path, nil, accept)
}

func (c *Client) roundTrip(ctx context.Context, operation, method, path string, body any, accept string) ([]byte, error) {
	if err := c.cfg.CheckReady(); err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	token, err := c.auth.Token(ctx)
	if err != nil {
		return nil, err
	}
	base := c.baseOverride
	if base == "" {
		base, err = c.auth.AccountBase(ctx)
		if err != nil {
			return nil, err
		}
	}
	url := base + "/" + apiVersion + "/accounts/" + c.cfg.AccountID + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", operation, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		obs.ObserveAPICall(operation, 0, time.Since(start))
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	obs.ObserveAPICall(operation, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", operation, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(operation, resp.StatusCode, raw)
	}
	return raw, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Environment variables understood by FromEnv. The private key may be passed
// inline (PEM) or as a file path.
const (
	envAccountID      = "ESIGN_ACCOUNT_ID"
	envClientID       = "ESIGN_CLIENT_ID"
	envUserID         = "ESIGN_USER_ID"
	envAuthServer     = "ESIGN_AUTH_SERVER"
	envPrivateKey     = "ESIGN_PRIVATE_KEY"
	envPrivateKeyFile = "ESIGN_PRIVATE_KEY_FILE"
)

const defaultTokenGrace = 5 * time.Second

// ErrNotConfigured is returned by any operation attempted before all five
// required credential fields are present.
var ErrNotConfigured = errors.New("config: account credentials are not configured")

// Config holds the DocuSign integration credentials. An embedding application
// fills it once before first use; the library never mutates it.
type Config struct {
	// AccountID is the DocuSign API account GUID.
	AccountID string
	// ClientID is the integration key of the JWT-grant application.
	ClientID string
	// UserID is the GUID of the impersonated user.
	UserID string
	// AuthServer is the OAuth host, e.g. "account-d.docusign.com". A full
	// URL with scheme is also accepted.
	AuthServer string
	// PrivateKey is the RSA private key (PEM) paired with the integration
	// key.
	PrivateKey []byte

	// TokenGrace is the safety margin before token expiry at which a cached
	// access token is considered stale. Zero means the 5s default.
	TokenGrace time.Duration
}

// Ready reports whether every required credential field is present.
func (c *Config) Ready() bool {
	if c == nil {
		return false
	}
	return c.AccountID != "" &&
		c.ClientID != "" &&
		c.UserID != "" &&
		c.AuthServer != "" &&
		len(c.PrivateKey) > 0
}

// CheckReady returns ErrNotConfigured when any required field is missing.
func (c *Config) CheckReady() error {
	if !c.Ready() {
		return ErrNotConfigured
	}
	return nil
}

// Grace returns the effective token refresh safety margin.
func (c *Config) Grace() time.Duration {
	if c == nil || c.TokenGrace <= 0 {
		return defaultTokenGrace
	}
	return c.TokenGrace
}

// AuthBaseURL returns the OAuth server base URL with a scheme.
func (c *Config) AuthBaseURL() string {
	host := strings.TrimRight(c.AuthServer, "/")
	if strings.Contains(host, "://") {
		return host
	}
	return "https://" + host
}

// FromEnv builds a Config from the ESIGN_* environment variables.
func FromEnv() (*Config, error) {
	cfg := &Config{
		AccountID:  strings.TrimSpace(os.Getenv(envAccountID)),
		ClientID:   strings.TrimSpace(os.Getenv(envClientID)),
		UserID:     strings.TrimSpace(os.Getenv(envUserID)),
		AuthServer: strings.TrimSpace(os.Getenv(envAuthServer)),
	}
	if pem := os.Getenv(envPrivateKey); pem != "" {
		cfg.PrivateKey = []byte(pem)
	} else if path := strings.TrimSpace(os.Getenv(envPrivateKeyFile)); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read private key %s: %w", path, err)
		}
		cfg.PrivateKey = data
	}
	if err := cfg.CheckReady(); err != nil {
		return nil, err
	}
	return cfg, nil
}

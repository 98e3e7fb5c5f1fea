package msgraph

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	// DefaultEndpoint is the Graph v1.0 base URL.
	DefaultEndpoint = "https://graph.microsoft.com/v1.0"

	// DefaultAuthorityHost is the Microsoft identity platform host.
	DefaultAuthorityHost = "https://login.microsoftonline.com"

	// DefaultScope requests every application permission granted to the app.
	DefaultScope = "https://graph.microsoft.com/.default"

	// DefaultTimeout bounds a single Graph round trip.
	DefaultTimeout = 30 * time.Second
)

// Environment variables read by ConfigFromEnv.
const (
	EnvAPIEndpoint   = "MS_API_ENDPOINT"
	EnvAuthorityHost = "MS_AUTHORITY_HOST"
	EnvAccountID     = "MS_ACCOUNT_ID"
	EnvClientID      = "MS_CLIENT_ID"
	EnvClientSecret  = "MS_CLIENT_SECRET"
)

// ErrMissingCredentials is returned by Validate when any of the app
// credentials is empty.
var ErrMissingCredentials = errors.New("msgraph: account id, client id and client secret are required")

// Config holds the endpoint and app registration used to talk to Graph.
type Config struct {
	// Endpoint is the Graph base URL (default DefaultEndpoint).
	Endpoint string

	// AuthorityHost is the identity platform host (default DefaultAuthorityHost).
	AuthorityHost string

	// AccountID is the directory (tenant) id.
	AccountID string

	// ClientID and ClientSecret identify the app registration.
	ClientID     string
	ClientSecret string

	// Scopes requested for the app token (default DefaultScope).
	Scopes []string

	// Timeout for each HTTP round trip (default DefaultTimeout).
	Timeout time.Duration
}

// ConfigFromEnv builds a Config from MS_* environment variables.
func ConfigFromEnv() Config {
	return Config{
		Endpoint:      os.Getenv(EnvAPIEndpoint),
		AuthorityHost: os.Getenv(EnvAuthorityHost),
		AccountID:     os.Getenv(EnvAccountID),
		ClientID:      os.Getenv(EnvClientID),
		ClientSecret:  os.Getenv(EnvClientSecret),
	}
}

// Validate checks that the app credentials are present.
func (c Config) Validate() error {
	if c.AccountID == "" || c.ClientID == "" || c.ClientSecret == "" {
		return ErrMissingCredentials
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	c.Endpoint = strings.TrimRight(c.Endpoint, "/")
	if c.AuthorityHost == "" {
		c.AuthorityHost = DefaultAuthorityHost
	}
	c.AuthorityHost = strings.TrimRight(c.AuthorityHost, "/")
	if len(c.Scopes) == 0 {
		c.Scopes = []string{DefaultScope}
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// HTTPClient returns an HTTP client bounded by the configured timeout.
func (c Config) HTTPClient() *http.Client {
	c = c.withDefaults()
	return &http.Client{Timeout: c.Timeout}
}

// TokenURL returns the v2.0 token endpoint for the configured tenant.
func (c Config) TokenURL() string {
	c = c.withDefaults()
	return c.AuthorityHost + "/" + c.AccountID + "/oauth2/v2.0/token"
}

package msgraph

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/teemow/msmeetings/internal/instrumentation"
	"github.com/teemow/msmeetings/internal/logging"
)

// TokenProvider supplies the bearer token attached to every Graph request.
type TokenProvider interface {
	Token(ctx context.Context) (*oauth2.Token, error)
}

// ClientCredentialsProvider acquires app-only tokens with the OAuth2
// client-credentials grant. A token is reused until shortly before expiry.
// It is safe for concurrent use; at most one fetch is in flight.
type ClientCredentialsProvider struct {
	config     *clientcredentials.Config
	httpClient *http.Client
	metrics    *instrumentation.Metrics
	logger     logging.Logger
	tenant     string

	// sem guards tok and serializes fetches.
	sem chan struct{}
	tok *oauth2.Token
}

// NewClientCredentialsProvider builds a provider for cfg's app registration.
// httpClient is used for token requests; nil means cfg.HTTPClient().
func NewClientCredentialsProvider(cfg Config, httpClient *http.Client, metrics *instrumentation.Metrics, logger logging.Logger) (*ClientCredentialsProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	if httpClient == nil {
		httpClient = cfg.HTTPClient()
	}

	return &ClientCredentialsProvider{
		config: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL(),
			Scopes:       cfg.Scopes,
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		httpClient: httpClient,
		metrics:    metrics,
		logger:     logger,
		tenant:     cfg.AccountID,
		sem:        make(chan struct{}, 1),
	}, nil
}

// Token returns a valid access token, fetching a new one if needed.
// Cancellation of ctx is honored both while waiting for another caller's
// fetch and during the token request itself, which is also bounded by the
// HTTP client timeout.
func (p *ClientCredentialsProvider) Token(ctx context.Context) (*oauth2.Token, error) {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to acquire graph token: %w", ctx.Err())
	}
	defer func() { <-p.sem }()

	if p.tok.Valid() {
		return p.tok, nil
	}

	tok, err := p.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire graph token: %w", err)
	}
	p.tok = tok
	return tok, nil
}

// fetch performs the token request and records its outcome.
func (p *ClientCredentialsProvider) fetch(ctx context.Context) (*oauth2.Token, error) {
	tok, err := p.config.Token(context.WithValue(ctx, oauth2.HTTPClient, p.httpClient))
	if err != nil {
		p.metrics.RecordTokenAcquisition(ctx, instrumentation.TokenResultFailure)
		p.logger.Warn("token acquisition failed",
			logging.Tenant(p.tenant),
			logging.Err(err))
		return nil, err
	}
	p.metrics.RecordTokenAcquisition(ctx, instrumentation.TokenResultSuccess)
	p.logger.Debug("acquired graph token",
		logging.Tenant(p.tenant),
		"token", logging.SanitizeToken(tok.AccessToken),
		"expiry", tok.Expiry)
	return tok, nil
}

// StaticTokenProvider always returns the same token. Useful for tokens
// acquired out of band and in tests.
type StaticTokenProvider struct {
	AccessToken string
}

// Token returns the static token.
func (p StaticTokenProvider) Token(ctx context.Context) (*oauth2.Token, error) {
	if p.AccessToken == "" {
		return nil, errors.New("msgraph: static token is empty")
	}
	return &oauth2.Token{AccessToken: p.AccessToken, TokenType: "Bearer"}, nil
}

package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/msmeetings/internal/events"
	"github.com/teemow/msmeetings/internal/instrumentation"
	"github.com/teemow/msmeetings/internal/logging"
	"github.com/teemow/msmeetings/internal/msgraph"
)

// Zoom lookup strategies accepted by --zoom-lookup.
const (
	zoomLookupProperty = "extended-property"
	zoomLookupSubject  = "subject"
)

// graphOptions holds the persistent Graph flags shared by every command.
type graphOptions struct {
	endpoint      string
	authorityHost string
	accountID     string
	clientID      string
	clientSecret  string
	zoomLookup    string
	debug         bool
}

func addGraphFlags(cmd *cobra.Command, o *graphOptions) {
	f := cmd.PersistentFlags()
	f.StringVar(&o.endpoint, "endpoint", "", "Graph API base URL. Can also use "+msgraph.EnvAPIEndpoint+" env var. Default: "+msgraph.DefaultEndpoint)
	f.StringVar(&o.authorityHost, "authority-host", "", "Identity platform host. Can also use "+msgraph.EnvAuthorityHost+" env var. Default: "+msgraph.DefaultAuthorityHost)
	f.StringVar(&o.accountID, "account-id", "", "Directory (tenant) id. Can also use "+msgraph.EnvAccountID+" env var.")
	f.StringVar(&o.clientID, "client-id", "", "App registration client id. Can also use "+msgraph.EnvClientID+" env var.")
	f.StringVar(&o.clientSecret, "client-secret", "", "App registration client secret. Can also use "+msgraph.EnvClientSecret+" env var.")
	f.StringVar(&o.zoomLookup, "zoom-lookup", zoomLookupProperty, "How events are found by Zoom id: extended-property or subject")
	f.BoolVar(&o.debug, "debug", false, "Enable debug logging")
}

// graphConfig merges the flags over the environment.
func (o graphOptions) graphConfig() msgraph.Config {
	cfg := msgraph.ConfigFromEnv()
	if o.endpoint != "" {
		cfg.Endpoint = o.endpoint
	}
	if o.authorityHost != "" {
		cfg.AuthorityHost = o.authorityHost
	}
	if o.accountID != "" {
		cfg.AccountID = o.accountID
	}
	if o.clientID != "" {
		cfg.ClientID = o.clientID
	}
	if o.clientSecret != "" {
		cfg.ClientSecret = o.clientSecret
	}
	return cfg
}

func (o graphOptions) zoomFilter() (events.ZoomFilter, error) {
	switch o.zoomLookup {
	case "", zoomLookupProperty:
		return events.ExtendedPropertyFilter, nil
	case zoomLookupSubject:
		return events.SubjectFilter, nil
	default:
		return nil, fmt.Errorf("unsupported zoom lookup %q (supported: %s, %s)", o.zoomLookup, zoomLookupProperty, zoomLookupSubject)
	}
}

// newLogger writes to stderr so stdout stays free for results and the
// stdio transport.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// graphStack is the Graph client and events component built from the flags.
type graphStack struct {
	httpClient *http.Client
	tokens     msgraph.TokenProvider
	client     *msgraph.Client
	component  *events.Component
}

func newGraphStack(o graphOptions, logger *slog.Logger, metrics *instrumentation.Metrics) (*graphStack, error) {
	cfg := o.graphConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid graph configuration: %w", err)
	}
	filter, err := o.zoomFilter()
	if err != nil {
		return nil, err
	}

	adapter := logging.NewSlogAdapter(logger)
	// Token and Graph requests share one client so both are bounded by cfg.Timeout.
	httpClient := cfg.HTTPClient()
	tokens, err := msgraph.NewClientCredentialsProvider(cfg, httpClient, metrics, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create token provider: %w", err)
	}
	client, err := msgraph.NewClient(cfg,
		msgraph.WithHTTPClient(httpClient),
		msgraph.WithTokenProvider(tokens),
		msgraph.WithMetrics(metrics),
		msgraph.WithLogger(adapter),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph client: %w", err)
	}

	component := events.NewComponent(client,
		events.WithLogger(adapter),
		events.WithMetrics(metrics),
		events.WithZoomFilter(filter),
	)
	return &graphStack{httpClient: httpClient, tokens: tokens, client: client, component: component}, nil
}

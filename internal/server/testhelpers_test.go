package server

import (
	"context"
	"testing"

	"github.com/teemow/msmeetings/internal/events"
	"github.com/teemow/msmeetings/internal/instrumentation"
	"github.com/teemow/msmeetings/internal/logging"
	"github.com/teemow/msmeetings/internal/msgraph"
)

func newTestServerContext(t *testing.T) *ServerContext {
	t.Helper()
	client, err := msgraph.NewClient(msgraph.Config{Endpoint: "http://127.0.0.1:1/v1.0"},
		msgraph.WithTokenProvider(msgraph.StaticTokenProvider{AccessToken: "test"}))
	if err != nil {
		t.Fatalf("failed to create graph client: %v", err)
	}
	component := events.NewComponent(client, events.WithLogger(logging.Discard()))

	sc, err := NewServerContext(context.Background(), component, logging.Discard().Logger())
	if err != nil {
		t.Fatalf("failed to create server context: %v", err)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func createTestProvider(t *testing.T) *instrumentation.Provider {
	t.Helper()
	ctx := context.Background()
	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: "prometheus",
		TracingExporter: "none",
	})
	if err != nil {
		t.Fatalf("failed to create test provider: %v", err)
	}
	t.Cleanup(func() {
		_ = provider.Shutdown(ctx)
	})
	return provider
}

func createDisabledProvider(t *testing.T) *instrumentation.Provider {
	t.Helper()
	ctx := context.Background()
	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        false,
	})
	if err != nil {
		t.Fatalf("failed to create disabled provider: %v", err)
	}
	return provider
}

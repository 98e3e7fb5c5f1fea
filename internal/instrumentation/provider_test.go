package instrumentation

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{
		ServiceName: "test-service",
		Enabled:     false,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if provider.Enabled() {
		t.Error("expected provider to be disabled")
	}
	if provider.Metrics() == nil {
		t.Error("expected metrics to be non-nil even when disabled")
	}
	if provider.PrometheusHandler() != nil {
		t.Error("expected no prometheus handler when disabled")
	}
	if provider.Tracer("test") == nil {
		t.Error("expected a no-op tracer")
	}
	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("expected no error on shutdown, got %v", err)
	}
}

func TestNewProvider_PrometheusExporter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	if !provider.Enabled() {
		t.Error("expected provider to be enabled")
	}

	provider.Metrics().RecordZoomLookup(ctx, LookupFound)

	handler := provider.PrometheusHandler()
	if handler == nil {
		t.Fatal("expected PrometheusHandler to be non-nil for prometheus exporter")
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "zoom_lookups_total") {
		t.Errorf("scrape output does not contain zoom_lookups_total:\n%s", body)
	}
}

func TestNewProvider_TwoPrometheusProviders(t *testing.T) {
	ctx := context.Background()
	cfg := Config{ServiceName: "a", Enabled: true, MetricsExporter: ExporterPrometheus, TracingExporter: ExporterNone}

	first, err := NewProvider(ctx, cfg)
	if err != nil {
		t.Fatalf("first provider: %v", err)
	}
	defer func() { _ = first.Shutdown(ctx) }()

	second, err := NewProvider(ctx, cfg)
	if err != nil {
		t.Fatalf("second provider should not collide on registration: %v", err)
	}
	defer func() { _ = second.Shutdown(ctx) }()
}

func TestNewProvider_StdoutTracing(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, Config{
		ServiceName:       "test-service",
		Enabled:           true,
		MetricsExporter:   ExporterPrometheus,
		TracingExporter:   ExporterStdout,
		TraceSamplingRate: 1.0,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := provider.Shutdown(ctx); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestNewProvider_UnsupportedExporters(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"metrics", Config{Enabled: true, MetricsExporter: "graphite", TracingExporter: ExporterNone}},
		{"tracing", Config{Enabled: true, MetricsExporter: ExporterPrometheus, TracingExporter: "zipkin"}},
		{"otlp without endpoint", Config{Enabled: true, MetricsExporter: ExporterOTLP}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewProvider(context.Background(), tt.config); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

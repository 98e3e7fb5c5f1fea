package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// MCPEndpointPath is where the streamable HTTP transport is mounted.
const MCPEndpointPath = "/mcp"

// HTTPServerConfig configures the streamable HTTP transport.
type HTTPServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// DisableStreaming makes the server answer with plain JSON instead of SSE.
	DisableStreaming bool

	// HealthChecker, when set, serves /healthz, /readyz and /healthz/detailed.
	HealthChecker *HealthChecker
}

// HTTPServer serves an MCP server over the streamable HTTP transport.
// Requests are traced with otelhttp.
type HTTPServer struct {
	config  HTTPServerConfig
	handler http.Handler

	mu         sync.Mutex
	httpServer *http.Server
	listenAddr string
}

// NewHTTPServer creates the HTTP transport for mcpSrv.
func NewHTTPServer(mcpSrv *mcpserver.MCPServer, config HTTPServerConfig) (*HTTPServer, error) {
	if mcpSrv == nil {
		return nil, fmt.Errorf("MCP server is required")
	}
	if config.Addr == "" {
		config.Addr = ":8080"
	}

	opts := []mcpserver.StreamableHTTPOption{
		mcpserver.WithEndpointPath(MCPEndpointPath),
	}
	if config.DisableStreaming {
		opts = append(opts, mcpserver.WithDisableStreaming(true))
	}
	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv, opts...)

	mux := http.NewServeMux()
	mux.Handle(MCPEndpointPath, otelhttp.NewHandler(streamable, "mcp"))
	if config.HealthChecker != nil {
		config.HealthChecker.RegisterHealthEndpoints(mux)
	}

	return &HTTPServer{
		config:  config,
		handler: mux,
	}, nil
}

// Handler returns the root handler, for tests and embedding.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured address and blocks until the server stops.
func (s *HTTPServer) Start() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.mu.Lock()
	s.httpServer = srv
	s.listenAddr = ln.Addr().String()
	s.mu.Unlock()

	slog.Info("starting MCP HTTP server", "addr", ln.Addr().String(), "endpoint", MCPEndpointPath)
	return srv.Serve(ln)
}

// Shutdown gracefully shuts down the server
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.config.HealthChecker != nil {
		s.config.HealthChecker.SetReady(false)
	}

	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}

// ListenAddr returns the bound address once the server has started.
func (s *HTTPServer) ListenAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listenAddr
}

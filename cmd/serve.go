package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/msmeetings/internal/instrumentation"
	"github.com/teemow/msmeetings/internal/server"
	"github.com/teemow/msmeetings/internal/tools/event_tools"
)

// Supported MCP transports.
const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

// serveConfig collects the serve flags.
type serveConfig struct {
	transport        string
	httpAddr         string
	yolo             bool
	disableStreaming bool
	metrics          MetricsConfig
}

func newServeCmd(opts *graphOptions) *cobra.Command {
	var cfg serveConfig

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide calendar event
tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport, with /healthz and /readyz

Safety Mode:
  By default, the server operates in read-only mode, providing only list and
  get tools. Use --yolo to enable create, update and delete.

Graph Credentials:
  --account-id, --client-id and --client-secret flags
  OR MS_ACCOUNT_ID, MS_CLIENT_ID and MS_CLIENT_SECRET env vars.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("metrics-enabled") {
				if v := os.Getenv("METRICS_ENABLED"); v != "" {
					cfg.metrics.Enabled = v == "true"
				}
			}
			if !cmd.Flags().Changed("metrics-addr") {
				if addr := os.Getenv("METRICS_ADDR"); addr != "" {
					cfg.metrics.Addr = addr
				}
			}
			return runServe(cfg, *opts)
		},
	}

	cmd.Flags().StringVar(&cfg.transport, "transport", transportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&cfg.httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&cfg.yolo, "yolo", false, "Enable write operations (create, update, delete). Default is read-only mode.")
	cmd.Flags().BoolVar(&cfg.disableStreaming, "disable-streaming", false, "Disable streaming for HTTP transport (for compatibility with certain clients)")

	// Metrics server flags
	cmd.Flags().BoolVar(&cfg.metrics.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&cfg.metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(cfg serveConfig, opts graphOptions) error {
	if cfg.transport != transportStdio && cfg.transport != transportStreamableHTTP {
		return fmt.Errorf("unsupported transport type: %s (supported: %s, %s)", cfg.transport, transportStdio, transportStreamableHTTP)
	}

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := newLogger(opts.debug)

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Warn("Error during instrumentation shutdown", "error", err)
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if cfg.transport != transportStdio && cfg.metrics.Enabled && provider.Enabled() {
		metricsServer, err = startMetricsServer(cfg.metrics, provider, logger)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("Error during metrics server shutdown", "error", err)
			}
		}()
	}

	stack, err := newGraphStack(opts, logger, provider.Metrics())
	if err != nil {
		return err
	}

	serverContext, err := server.NewServerContext(shutdownCtx, stack.component, logger)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging))
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("Error during server context shutdown", "error", err)
		}
	}()

	mcpSrv := mcpserver.NewMCPServer("msmeetings", version,
		mcpserver.WithToolCapabilities(true),
	)

	// readOnly is the inverse of yolo
	readOnly := !cfg.yolo
	if cfg.transport != transportStdio {
		if readOnly {
			logger.Info("Starting server in READ-ONLY mode (use --yolo to enable write operations)")
		} else {
			logger.Info("Starting server with WRITE operations enabled (--yolo flag is set)")
		}
	}

	if err := event_tools.RegisterEventTools(mcpSrv, serverContext, readOnly); err != nil {
		return fmt.Errorf("failed to register event tools: %w", err)
	}

	switch cfg.transport {
	case transportStdio:
		return runStdioServer(mcpSrv)
	default:
		health := server.NewHealthChecker(serverContext)
		health.AddCheck("graph_token", func(ctx context.Context) error {
			_, err := stack.tokens.Token(ctx)
			return err
		})
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, cfg, health, logger)
	}
}

func startMetricsServer(cfg MetricsConfig, provider *instrumentation.Provider, logger *slog.Logger) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    cfg.Addr,
		Enabled:                 true,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	// Use ready channel to confirm metrics server started successfully
	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && !errors.Is(err, http.ErrServerClosed) {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case <-metricsReady:
		logger.Info("Metrics server started", "addr", metricsServer.Addr())
		return metricsServer, nil
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("metrics server startup timed out")
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, cfg serveConfig, health *server.HealthChecker, logger *slog.Logger) error {
	httpServer, err := server.NewHTTPServer(mcpSrv, server.HTTPServerConfig{
		Addr:             cfg.httpAddr,
		DisableStreaming: cfg.disableStreaming,
		HealthChecker:    health,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
		return nil
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		return nil
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"widgetd/internal/domain"
	"widgetd/internal/infra/catalog"
	"widgetd/internal/infra/config"
	"widgetd/internal/infra/executor"
	"widgetd/internal/infra/server"
	"widgetd/internal/infra/store"
	"widgetd/internal/infra/telemetry"
	"widgetd/internal/infra/widget"
)

type serveOptions struct {
	configPath string
	transport  string
	httpAddr   string
	bundlePath string
	logger     *zap.Logger
}

func main() {
	opts := serveOptions{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "widgetd",
		Short: "MCP server for the portfolio project editing widget",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg := zap.NewProductionConfig()
			log, err := cfg.Build()
			if err != nil {
				return err
			}
			opts.logger = log
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = opts.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()
			return run(ctx, cmd.Flags(), opts)
		},
	}

	flags := root.Flags()
	flags.StringVar(&opts.configPath, "config", "", "path to widgetd YAML config")
	flags.StringVar(&opts.transport, "transport", "", "transport: stdio or streamable-http")
	flags.StringVar(&opts.httpAddr, "http-addr", "", "listen address for streamable-http")
	flags.StringVar(&opts.bundlePath, "bundle", "", "path to the built widget bundle")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, flags *pflag.FlagSet, opts serveOptions) error {
	logger := opts.logger

	cfg, err := config.Load(opts.configPath, logger)
	if err != nil {
		return err
	}
	if flags.Changed("transport") {
		cfg.Transport.Type = opts.transport
	}
	if flags.Changed("http-addr") {
		cfg.Transport.HTTPAddr = opts.httpAddr
	}
	if flags.Changed("bundle") {
		cfg.BundlePath = opts.bundlePath
	}

	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)
	bundle := widget.NewBundleCache(cfg.BundlePath, logger)
	cat := catalog.Default()
	exec := executor.NewExecutor(st, logger)

	newServer := func() (*server.ProtocolServer, error) {
		return server.New(server.Options{
			Catalog:  cat,
			Session:  domain.NewSessionState(uuid.NewString(), domain.NewProject()),
			Executor: exec,
			Bundle:   bundle,
			Widget: server.WidgetInfo{
				URI:         cfg.Widget.URI,
				Name:        cfg.Widget.Name,
				Description: cfg.Widget.Description,
				MIMEType:    domain.WidgetMIMEType,
			},
			Capability: cfg.Capability(),
			Metrics:    metrics,
			Logger:     logger,
		})
	}

	if cfg.Observability.Enabled {
		go func() {
			if err := telemetry.StartHTTPServer(ctx, telemetry.HTTPServerOptions{
				Addr: cfg.Observability.ListenAddress,
			}, logger); err != nil {
				logger.Warn("observability server exited", zap.Error(err))
			}
		}()
	}

	switch cfg.Transport.Type {
	case config.TransportStdio:
		ps, err := newServer()
		if err != nil {
			return err
		}
		return ps.Run(ctx, &mcp.StdioTransport{})
	case config.TransportStreamableHTTP:
		return serveStreamableHTTP(ctx, cfg, newServer, logger)
	default:
		return fmt.Errorf("unknown transport type %q", cfg.Transport.Type)
	}
}

// serveStreamableHTTP constructs a fresh ProtocolServer per MCP
// session, so each connected host edits its own independent project.
func serveStreamableHTTP(ctx context.Context, cfg config.Config, newServer func() (*server.ProtocolServer, error), logger *zap.Logger) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		ps, err := newServer()
		if err != nil {
			logger.Error("session server construction failed", zap.Error(err))
			return nil
		}
		return ps.MCPServer()
	}, nil)

	mux := http.NewServeMux()
	mux.Handle(cfg.Transport.HTTPPath, handler)

	srv := &http.Server{
		Addr:    cfg.Transport.HTTPAddr,
		Handler: mux,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("mcp http server listening",
			zap.String("addr", cfg.Transport.HTTPAddr),
			zap.String("path", cfg.Transport.HTTPPath),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func signalAwareContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

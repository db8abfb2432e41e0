package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/sensorboard/internal/adapters/http/api"
	"github.com/okian/sensorboard/internal/adapters/http/site"
	"github.com/okian/sensorboard/internal/adapters/http/swagger"
	app "github.com/okian/sensorboard/internal/app"
	"github.com/okian/sensorboard/internal/config"
	"github.com/okian/sensorboard/pkg/logger"
	"github.com/okian/sensorboard/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	systemMetricsInterval  = 10 * time.Second
	serviceMetricsInterval = 5 * time.Second
	snapshotTimeout        = 30 * time.Second
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "sensorboard",
		Short:        "Sensor status dashboard for the SDMM backend",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (overrides "+config.EnvConfigFile+")")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard, its JSON API and metrics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup(configPath)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	var out, format string
	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch the status summary once and write the pie chart to a file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup(configPath)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if format != "" {
				cfg.ChartFormat = format
			}
			if out == "" {
				out = "sensor-status." + cfg.ChartFormat
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), snapshotTimeout)
			defer cancel()
			return snapshot(ctx, cfg, out)
		},
	}
	snapshotCmd.Flags().StringVarP(&out, "out", "o", "", "output file (default sensor-status.<format>)")
	snapshotCmd.Flags().StringVarP(&format, "format", "f", "", "chart format: svg or png")

	root.AddCommand(serveCmd, snapshotCmd)
	return root
}

// setup loads configuration and initializes logging from it.
func setup(configPath string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(context.Background())
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(logger.WithJSON(cfg.LogJSON)); err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	// Fall back to info on an unknown level.
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(context.Background(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}

// newService builds the dashboard service from configuration.
func newService(cfg *config.Config, opts ...app.Option) *app.Service {
	base := []app.Option{
		app.WithLogger(logger.Get()),
		app.WithBaseURL(cfg.APIBaseURL),
		app.WithRequestTimeout(cfg.RequestTimeout()),
		app.WithRefreshInterval(cfg.RefreshInterval()),
		app.WithAutoRefresh(cfg.AutoRefresh),
		app.WithChart(cfg.ChartFormat, cfg.ChartWidth, cfg.ChartHeight),
	}
	return app.New(append(base, opts...)...)
}

// newMux mounts the API, the HTML pages and the API docs for a started service.
func newMux(svc *app.Service) (*http.ServeMux, error) {
	mux := http.NewServeMux()

	api.NewServer(svc.Controller(), svc.Surface(), svc).Register(mux)

	pages, err := site.NewHandler(svc.Backend(), svc.Controller())
	if err != nil {
		return nil, fmt.Errorf("site handler: %w", err)
	}
	if err := site.Register(mux, pages); err != nil {
		return nil, err
	}
	if err := swagger.Register(mux); err != nil {
		return nil, err
	}
	return mux, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	svc := newService(cfg)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	mux, err := newMux(svc)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

func snapshot(ctx context.Context, cfg *config.Config, out string) error {
	frame, err := newService(cfg).Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := os.WriteFile(out, frame.Data, 0o644); err != nil { //nolint:gosec // chart images are not secret
		return fmt.Errorf("write %s: %w", out, err)
	}
	logger.Get().Info(ctx, "chart written",
		logger.String("path", out),
		logger.String("contentType", frame.ContentType),
		logger.Int("sensors", frame.Dataset.Total()),
	)
	return nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater refreshes the controller gauges from the service stats.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = svc.GetStats()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}

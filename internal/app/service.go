// Package service wires the backend client, chart renderer and refresh controller
// into the dashboard the HTTP layer serves.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/okian/sensorboard/internal/adapters/backend"
	"github.com/okian/sensorboard/internal/adapters/chart"
	"github.com/okian/sensorboard/internal/refresh"
	"github.com/okian/sensorboard/pkg/logger"
	"github.com/okian/sensorboard/pkg/metrics"
)

// Service owns the dashboard components for the life of the process.
type Service struct {
	mu sync.RWMutex

	// Core components
	client     *backend.Client
	surface    *chart.Surface
	renderer   *chart.PieRenderer
	controller *refresh.Controller

	// Configuration
	baseURL        string
	requestTimeout time.Duration
	interval       time.Duration
	autoRefresh    bool
	chartFormat    string
	chartWidth     int
	chartHeight    int
	httpClient     *http.Client
	refreshOpts    []refresh.Option

	// State
	started   bool
	startedAt time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithBaseURL sets the backend root, including the /api prefix.
func WithBaseURL(u string) Option {
	return func(s *Service) {
		if u != "" {
			s.baseURL = u
		}
	}
}

// WithRequestTimeout bounds every backend request.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// WithRefreshInterval sets the auto-refresh cadence.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithAutoRefresh decides whether the refresh session starts with the service.
func WithAutoRefresh(enabled bool) Option {
	return func(s *Service) {
		s.autoRefresh = enabled
	}
}

// WithChart sets the chart output format and size.
func WithChart(format string, width, height int) Option {
	return func(s *Service) {
		if format != "" {
			s.chartFormat = format
		}
		if width > 0 && height > 0 {
			s.chartWidth, s.chartHeight = width, height
		}
	}
}

// WithHTTPClient replaces the client used to reach the backend.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Service) {
		s.httpClient = hc
	}
}

// WithRefreshOptions passes extra options to the refresh controller.
func WithRefreshOptions(opts ...refresh.Option) Option {
	return func(s *Service) {
		s.refreshOpts = append(s.refreshOpts, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		baseURL:        "http://localhost:5000/api",
		requestTimeout: 5 * time.Second,
		interval:       refresh.DefaultInterval,
		autoRefresh:    true,
		chartFormat:    chart.FormatSVG,
		chartWidth:     480,
		chartHeight:    480,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the components and mounts the chart. A backend that is down at
// startup is logged, not fatal: the refresh session retries on every tick.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting dashboard service...", logger.String("backend", s.baseURL))

	client, surface, renderer, ctrl, err := s.build()
	if err != nil {
		return err
	}

	if err := ctrl.Mount(ctx, s.autoRefresh); err != nil {
		if errors.Is(err, refresh.ErrDisposed) {
			return fmt.Errorf("mount chart: %w", err)
		}
		s.logger.Warn(ctx, "initial status fetch failed", logger.Error(err))
	}

	s.client, s.surface, s.renderer, s.controller = client, surface, renderer, ctrl
	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "dashboard service started",
		logger.Bool("autoRefresh", s.autoRefresh),
		logger.Duration("interval", s.interval),
		logger.String("chartFormat", s.chartFormat),
	)
	return nil
}

func (s *Service) build() (*backend.Client, *chart.Surface, *chart.PieRenderer, *refresh.Controller, error) {
	clientOpts := []backend.Option{
		backend.WithTimeout(s.requestTimeout),
		backend.WithLogger(s.logger.Named("backend")),
	}
	if s.httpClient != nil {
		clientOpts = append(clientOpts, backend.WithHTTPClient(s.httpClient))
	}
	client, err := backend.New(s.baseURL, clientOpts...)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("backend client: %w", err)
	}

	surface := chart.NewSurface()
	renderer, err := chart.NewPieRenderer(surface,
		chart.WithFormat(s.chartFormat),
		chart.WithSize(s.chartWidth, s.chartHeight),
	)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("chart renderer: %w", err)
	}

	opts := append([]refresh.Option{
		refresh.WithInterval(s.interval),
		refresh.WithLogger(s.logger.Named("refresh")),
	}, s.refreshOpts...)
	ctrl, err := refresh.New(client, renderer, opts...)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("refresh controller: %w", err)
	}
	return client, surface, renderer, ctrl, nil
}

// Stop disposes the controller. The service cannot be restarted afterwards
// with the same chart; Start builds a fresh one.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(context.Background(), "stopping dashboard service...")
	if err := s.controller.Dispose(); err != nil {
		s.logger.Error(context.Background(), "dispose chart controller", logger.Error(err))
	}
	s.started = false
	s.logger.Info(context.Background(), "dashboard service stopped")
}

// Snapshot fetches the status once and returns the drawn chart without
// starting a refresh session.
func (s *Service) Snapshot(ctx context.Context) (chart.Frame, error) {
	s.mu.Lock()
	if s.logger == nil {
		s.logger = logger.Get()
	}
	_, surface, _, ctrl, err := s.build()
	s.mu.Unlock()
	if err != nil {
		return chart.Frame{}, err
	}
	defer func() { _ = ctrl.Dispose() }()

	if err := ctrl.FetchAndRender(ctx); err != nil {
		return chart.Frame{}, err
	}
	f, ok := surface.Frame()
	if !ok {
		return chart.Frame{}, chart.ErrRender
	}
	return f, nil
}

// Controller returns the running chart controller, or nil before Start.
func (s *Service) Controller() *refresh.Controller {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.controller
}

// Backend returns the backend client, or nil before Start.
func (s *Service) Backend() *backend.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

// Surface returns the surface the chart is drawn on, or nil before Start.
func (s *Service) Surface() *chart.Surface {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.surface
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":     s.started,
		"backend":     s.baseURL,
		"intervalMs":  s.interval.Milliseconds(),
		"chartFormat": s.chartFormat,
	}
	if s.controller == nil {
		return stats
	}

	sessions := s.controller.ActiveSessions()
	hasChart := s.controller.HasChart()
	stats["state"] = s.controller.State().String()
	stats["sessions"] = sessions
	stats["autoRefresh"] = sessions > 0
	stats["hasChart"] = hasChart
	if s.started {
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
	}
	if snap, at, ok := s.controller.Latest(); ok {
		stats["snapshot"] = snap
		stats["total"] = snap.Total()
		stats["updatedAt"] = at.UTC().Format(time.RFC3339)
	}

	metrics.UpdateRefreshSessions(sessions)
	if hasChart {
		metrics.UpdateChartHandles(1)
	} else {
		metrics.UpdateChartHandles(0)
	}
	return stats
}

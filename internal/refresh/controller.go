// Package refresh keeps the sensor status chart in sync with the backend,
// optionally re-fetching on a fixed cadence.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/sensorboard/internal/adapters/backend"
	"github.com/okian/sensorboard/internal/adapters/chart"
	"github.com/okian/sensorboard/internal/domain/status"
	"github.com/okian/sensorboard/pkg/logger"
	"github.com/okian/sensorboard/pkg/metrics"
)

// DefaultInterval is the auto-refresh cadence.
const DefaultInterval = 3000 * time.Millisecond

// StatusSource provides status snapshots.
type StatusSource interface {
	GetSensorStatusSummary(ctx context.Context) (status.Snapshot, error)
}

// State is the controller lifecycle state.
type State int

// Controller states. Disposed is terminal.
const (
	Idle State = iota
	Refreshing
	Disposed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Refreshing:
		return "refreshing"
	case Disposed:
		return "disposed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// session is the live timer behind auto-refresh.
type session struct {
	id     string
	ticker Ticker
	stop   chan struct{}
}

// Controller owns one chart handle and at most one refresh session.
// It is safe for concurrent use.
type Controller struct {
	source   StatusSource
	renderer chart.Renderer
	interval time.Duration
	clock    Clock
	logger   logger.Logger
	onError  func(error)

	// ctx outlives callers and is cancelled by Dispose only.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	state     State
	token     uint64
	session   *session
	handle    chart.Handle
	latest    status.Snapshot
	latestAt  time.Time
	hasLatest bool
}

// New creates an idle controller. The renderer carries the surface it draws on.
func New(source StatusSource, renderer chart.Renderer, opts ...Option) (*Controller, error) {
	if source == nil {
		return nil, ErrNilSource
	}
	if renderer == nil {
		return nil, ErrNilRenderer
	}
	c := &Controller{
		source:   source,
		renderer: renderer,
		interval: DefaultInterval,
		clock:    realClock{},
		logger:   logger.Get().Named("refresh"),
		state:    Idle,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c, nil
}

// Mount draws the first chart and then applies autoRefresh.
// A failed first fetch is returned but does not prevent the session from starting.
func (c *Controller) Mount(ctx context.Context, autoRefresh bool) error {
	fetchErr := c.FetchAndRender(ctx)
	if errors.Is(fetchErr, ErrDisposed) {
		return fetchErr
	}
	if err := c.SetAutoRefresh(autoRefresh); err != nil {
		return err
	}
	return fetchErr
}

// FetchAndRender fetches a snapshot and redraws the chart with it.
// Only the most recently issued request may touch the chart; older ones
// return ErrSuperseded without side effects.
func (c *Controller) FetchAndRender(ctx context.Context) error {
	c.mu.Lock()
	if c.state == Disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	c.token++
	token := c.token
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	start := time.Now()
	snap, err := c.source.GetSensorStatusSummary(ctx)
	if err == nil {
		if verr := snap.Validate(); verr != nil {
			err = &backend.MalformedResponseError{Op: "refresh.validate", Err: verr}
		}
	}
	fetchLatency := time.Since(start)

	c.mu.Lock()
	switch {
	case c.state == Disposed:
		c.mu.Unlock()
		return ErrDisposed
	case token != c.token:
		c.mu.Unlock()
		_ = metrics.RecordFetch(metrics.OutcomeSuperseded, fetchLatency)
		c.logger.Debug(ctx, "dropping stale response",
			logger.Uint64("token", token),
			logger.Bool("failed", err != nil),
		)
		return fmt.Errorf("request %d: %w", token, ErrSuperseded)
	case err != nil:
		c.mu.Unlock()
		c.report(ctx, token, fetchLatency, err)
		return err
	}

	renderErr := c.applyLocked(ctx, token, snap)
	c.mu.Unlock()

	if renderErr != nil {
		c.report(ctx, token, fetchLatency, renderErr)
		return renderErr
	}
	_ = metrics.RecordFetch(metrics.OutcomeApplied, fetchLatency)
	return nil
}

// applyLocked replaces the chart handle with one drawn from snap. c.mu must be held.
func (c *Controller) applyLocked(ctx context.Context, token uint64, snap status.Snapshot) error {
	c.latest = snap
	c.latestAt = c.clock.Now()
	c.hasLatest = true
	for _, cat := range status.Categories {
		n, _ := snap.Count(cat)
		_ = metrics.UpdateSensorStatus(cat, n)
	}
	metrics.UpdateLastSnapshot(c.latestAt)

	c.destroyHandleLocked(ctx)

	// Drawn on the controller context: a caller that went away after the
	// fetch must not leave the surface blank.
	start := time.Now()
	h, err := c.renderer.Render(c.ctx, status.DatasetFrom(snap))
	if err != nil {
		return &RenderError{Token: token, Err: err}
	}
	metrics.RecordRender(time.Since(start))
	c.handle = h
	metrics.UpdateChartHandles(1)
	return nil
}

func (c *Controller) destroyHandleLocked(ctx context.Context) {
	if c.handle == nil {
		return
	}
	if err := c.handle.Destroy(); err != nil {
		c.logger.Warn(ctx, "chart destroy failed", logger.Error(err))
	}
	c.handle = nil
	metrics.UpdateChartHandles(0)
}

// report classifies a failed request and hands it to the error handler.
func (c *Controller) report(ctx context.Context, token uint64, latency time.Duration, err error) {
	outcome := metrics.OutcomeNetwork
	var renderErr *RenderError
	switch {
	case errors.As(err, &renderErr):
		outcome = metrics.OutcomeRender
	case errors.Is(err, backend.ErrMalformedResponse):
		outcome = metrics.OutcomeMalformed
	}
	_ = metrics.RecordFetch(outcome, latency)
	metrics.RecordErrorByComponent("refresh", outcome)

	fields := []logger.Field{logger.Uint64("token", token), logger.String("outcome", outcome), logger.Error(err)}
	if outcome == metrics.OutcomeRender {
		metrics.RecordErrorByType(outcome, "high")
		c.logger.Error(ctx, "chart render failed", fields...)
	} else {
		metrics.RecordErrorByType(outcome, "medium")
		c.logger.Warn(ctx, "status fetch failed", fields...)
	}

	if c.onError != nil {
		c.onError(err)
	}
}

// SetAutoRefresh starts or stops the refresh session. Repeated calls with the
// same value are no-ops.
func (c *Controller) SetAutoRefresh(enabled bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Disposed {
		return ErrDisposed
	}
	switch {
	case enabled && c.session == nil:
		c.startSessionLocked()
	case !enabled && c.session != nil:
		c.stopSessionLocked()
	}
	return nil
}

func (c *Controller) startSessionLocked() {
	s := &session{
		id:     uuid.NewString(),
		ticker: c.clock.NewTicker(c.interval),
		stop:   make(chan struct{}),
	}
	c.session = s
	c.state = Refreshing
	metrics.UpdateRefreshSessions(1)
	c.logger.Info(c.ctx, "auto-refresh enabled",
		logger.String("session", s.id),
		logger.Duration("interval", c.interval),
	)

	c.wg.Add(1)
	go c.run(s)
}

// stopSessionLocked stops future ticks. A fetch already running finishes on its own.
func (c *Controller) stopSessionLocked() {
	s := c.session
	s.ticker.Stop()
	close(s.stop)
	c.session = nil
	if c.state == Refreshing {
		c.state = Idle
	}
	metrics.UpdateRefreshSessions(0)
	c.logger.Info(c.ctx, "auto-refresh disabled", logger.String("session", s.id))
}

func (c *Controller) run(s *session) {
	defer c.wg.Done()
	for {
		select {
		case <-s.stop:
			return
		case <-c.ctx.Done():
			return
		case <-s.ticker.C():
			select {
			case <-s.stop:
				return
			default:
			}
			// Failures are reported inside; the session keeps ticking.
			if err := c.FetchAndRender(c.ctx); errors.Is(err, ErrDisposed) {
				return
			}
		}
	}
}

// Dispose stops the session and releases the chart. It is terminal and idempotent.
// It waits for the session goroutine, so it must not be called from the error handler.
func (c *Controller) Dispose() error {
	c.mu.Lock()
	if c.state == Disposed {
		c.mu.Unlock()
		return nil
	}
	if c.session != nil {
		c.stopSessionLocked()
	}
	c.destroyHandleLocked(c.ctx)
	c.state = Disposed
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
	c.logger.Info(context.Background(), "chart controller disposed")
	return nil
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ActiveSessions is 1 while auto-refresh is on, else 0.
func (c *Controller) ActiveSessions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return 1
	}
	return 0
}

// HasChart reports whether a chart handle is live.
func (c *Controller) HasChart() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle != nil
}

// Chart returns the dataset of the live chart.
func (c *Controller) Chart() (status.Dataset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle == nil {
		return status.Dataset{}, false
	}
	return c.handle.Dataset(), true
}

// Latest returns the last applied snapshot and when it was applied.
func (c *Controller) Latest() (status.Snapshot, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest, c.latestAt, c.hasLatest
}

// Interval returns the auto-refresh cadence.
func (c *Controller) Interval() time.Duration { return c.interval }

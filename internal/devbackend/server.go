// Package devbackend is an in-memory stand-in for the SDMM backend.
// It serves the endpoints the dashboard reads, with sensor statuses that drift over time.
package devbackend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/okian/sensorboard/internal/adapters/backend"
	"github.com/okian/sensorboard/internal/domain/status"
	"github.com/okian/sensorboard/pkg/logger"
)

// HTTP server timeouts.
const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Backend holds the generated fleet. It is safe for concurrent use.
type Backend struct {
	cfg    Config
	logger logger.Logger

	mu            sync.RWMutex
	sensors       []backend.Sensor
	subscriptions []backend.Subscription
	alerts        []backend.Alert
	requests      map[string]int
}

// New generates a fleet of cfg.Sensors sensors.
func New(cfg Config) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	b := &Backend{
		cfg:      cfg,
		logger:   logger.Get().Named("devbackend"),
		requests: make(map[string]int),
	}
	for i := range cfg.Sensors {
		s := generateSensor(i, now)
		b.sensors = append(b.sensors, s)
		b.subscriptions = append(b.subscriptions, generateSubscription(s))
		if s.Status != status.Normal {
			b.alerts = append(b.alerts, generateAlert(s, now))
		}
	}
	return b, nil
}

// Summary counts sensors per status category.
func (b *Backend) Summary() status.Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.summaryLocked()
}

func (b *Backend) summaryLocked() status.Snapshot {
	var s status.Snapshot
	for _, sensor := range b.sensors {
		switch sensor.Status {
		case status.Normal:
			s.Normal++
		case status.Warning:
			s.Warning++
		case status.Offline:
			s.Offline++
		case status.Disabled:
			s.Disabled++
		}
	}
	return s
}

// Requests returns how often each route was served.
func (b *Backend) Requests(route string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.requests[route]
}

// Drift re-rolls the status of roughly DriftRate of the fleet and refreshes readings.
// It returns how many sensors changed status.
func (b *Backend) Drift(now time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	changed := 0
	for i := range b.sensors {
		s := &b.sensors[i]
		s.Data = generateReadings()
		if getRandomFloat() >= b.cfg.DriftRate {
			continue
		}
		next := randomStatus()
		if next == s.Status {
			continue
		}
		s.Status = next
		s.UpdatedAt = now.UTC().Format(time.RFC3339)
		changed++
		if next != status.Normal {
			b.alerts = append(b.alerts, generateAlert(*s, now))
		}
	}
	return changed
}

// Handler serves the backend routes under /api.
func (b *Backend) Handler() http.Handler {
	mux := http.NewServeMux()
	b.route(mux, "GET /api/dashboard/sensor-status-summary", b.handleSummary)
	b.route(mux, "GET /api/sensor_board/sensors", b.handleSensors)
	b.route(mux, "GET /api/sensor_board/{id}/status", b.handleSensorStatus)
	b.route(mux, "GET /api/sensors/{id}", b.handleSensor)
	b.route(mux, "GET /api/subscriptions", b.handleSubscriptions)
	b.route(mux, "GET /api/subscriptions/download", b.handleDownload)
	b.route(mux, "GET /api/alerts", b.handleAlerts)
	b.route(mux, "PUT /api/alerts/{id}/acknowledge", b.handleAlertState("acknowledged"))
	b.route(mux, "PUT /api/alerts/{id}/resolve", b.handleAlertState("resolved"))
	b.route(mux, "DELETE /api/alerts/clear", b.handleClearAlerts)
	b.route(mux, "DELETE /api/alerts/{id}", b.handleDeleteAlert)
	return mux
}

func (b *Backend) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests[pattern]++
		b.mu.Unlock()
		if b.cfg.Verbose {
			b.logger.Info(r.Context(), "request", logger.String("method", r.Method), logger.String("path", r.URL.Path))
		}
		if b.cfg.Latency > 0 {
			select {
			case <-time.After(b.cfg.Latency):
			case <-r.Context().Done():
				return
			}
		}
		h(w, r)
	})
}

func (b *Backend) handleSummary(w http.ResponseWriter, _ *http.Request) {
	if b.cfg.FailRate > 0 && getRandomFloat() < b.cfg.FailRate {
		writeError(w, http.StatusInternalServerError, errors.New("simulated failure"))
		return
	}
	writeJSON(w, http.StatusOK, b.Summary())
}

func (b *Backend) handleSensors(w http.ResponseWriter, _ *http.Request) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	writeJSON(w, http.StatusOK, b.sensors)
}

func (b *Backend) handleSensor(w http.ResponseWriter, r *http.Request) {
	s, err := b.findSensor(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (b *Backend) handleSensorStatus(w http.ResponseWriter, r *http.Request) {
	s, err := b.findSensor(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": s.Status})
}

func (b *Backend) findSensor(id string) (backend.Sensor, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.sensors {
		if s.SensorID == id {
			return s, nil
		}
	}
	return backend.Sensor{}, fmt.Errorf("sensor %s: %w", id, ErrNotFound)
}

func (b *Backend) handleSubscriptions(w http.ResponseWriter, _ *http.Request) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	writeJSON(w, http.StatusOK, b.subscriptions)
}

func (b *Backend) handleDownload(w http.ResponseWriter, _ *http.Request) {
	b.mu.RLock()
	doc := struct {
		Subscriptions []backend.Subscription `yaml:"subscriptions"`
	}{Subscriptions: b.subscriptions}
	data, err := yaml.Marshal(doc)
	b.mu.RUnlock()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/x-yaml")
	w.Header().Set("Content-Disposition", `attachment; filename="subscriptions.yaml"`)
	_, _ = w.Write(data)
}

func (b *Backend) handleAlerts(w http.ResponseWriter, _ *http.Request) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	writeJSON(w, http.StatusOK, b.alerts)
}

func (b *Backend) handleAlertState(next string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		a := b.alertLocked(r.PathValue("id"))
		switch {
		case a == nil:
			writeError(w, http.StatusNotFound, ErrNotFound)
		case a.Status == "resolved":
			writeJSON(w, http.StatusConflict, map[string]string{"message": "Alert been resolved"})
		default:
			a.Status = next
			writeJSON(w, http.StatusOK, map[string]string{"message": "Alert " + next})
		}
	}
}

func (b *Backend) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a := b.alertLocked(r.PathValue("id"))
	if a == nil {
		writeError(w, http.StatusNotFound, ErrNotFound)
		return
	}
	a.IsDeleted = true
	writeJSON(w, http.StatusOK, map[string]string{"message": "Alert deleted"})
}

func (b *Backend) handleClearAlerts(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.alerts {
		b.alerts[i].IsDeleted = true
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "All alerts cleared"})
}

func (b *Backend) alertLocked(id string) *backend.Alert {
	for i := range b.alerts {
		if b.alerts[i].AlertID == id && !b.alerts[i].IsDeleted {
			return &b.alerts[i]
		}
	}
	return nil
}

// Run serves the backend on cfg.Addr and drifts statuses until ctx is done.
func (b *Backend) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              b.cfg.Addr,
		Handler:           b.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	if b.cfg.DriftInterval > 0 {
		go b.driftLoop(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		b.logger.Info(ctx, "dev backend listening",
			logger.String("addr", b.cfg.Addr),
			logger.Int("sensors", b.cfg.Sensors),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("dev backend: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("dev backend shutdown: %w", err)
	}
	return nil
}

func (b *Backend) driftLoop(ctx context.Context) {
	ticker := time.NewTicker(b.cfg.DriftInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := b.Drift(now); n > 0 {
				b.logger.Debug(ctx, "sensor statuses drifted", logger.Int("changed", n))
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

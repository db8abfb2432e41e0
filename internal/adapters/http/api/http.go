// Package api serves the dashboard's JSON endpoints and the rendered chart.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/okian/sensorboard/internal/adapters/chart"
	"github.com/okian/sensorboard/internal/domain/status"
	"github.com/okian/sensorboard/internal/refresh"
)

// Controller is the slice of the chart controller the handlers drive.
type Controller interface {
	FetchAndRender(ctx context.Context) error
	SetAutoRefresh(enabled bool) error
	State() refresh.State
	ActiveSessions() int
	Latest() (status.Snapshot, time.Time, bool)
}

// FrameSource exposes the chart currently drawn.
type FrameSource interface {
	Frame() (chart.Frame, bool)
}

// Server wires HTTP routes for the dashboard API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	statusHandler  *StatusHandler
	chartHandler   *ChartHandler
	refreshHandler *RefreshHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(ctrl Controller, frames FrameSource, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		statusHandler:  NewStatusHandler(ctrl),
		chartHandler:   NewChartHandler(frames),
		refreshHandler: NewRefreshHandler(ctrl),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/status-summary", MetricsMiddleware(s.statusHandler.HandleGetSummary, "status_summary"))
	mux.HandleFunc("/api/chart", MetricsMiddleware(s.chartHandler.HandleGetChart, "chart"))
	mux.HandleFunc("/api/refresh", MetricsMiddleware(s.refreshHandler.HandleRefresh, "refresh"))
	mux.HandleFunc("/api/auto-refresh", MetricsMiddleware(s.refreshHandler.HandleAutoRefresh, "auto_refresh"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// allowMethod answers 405 unless r uses method.
func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
	return false
}

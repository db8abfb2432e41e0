// Package site serves the dashboard's four named views.
package site

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/okian/sensorboard/internal/adapters/backend"
	"github.com/okian/sensorboard/internal/domain/status"
	"github.com/okian/sensorboard/internal/refresh"
	"github.com/okian/sensorboard/pkg/logger"
)

// Error constants.
var (
	ErrTemplate = errors.New("site template failed")
	ErrNilMux   = errors.New("nil mux")
)

// Route maps a named view to its path.
type Route struct {
	Name     string
	Path     string
	Title    string
	template string
}

// Routes returns the view table in navigation order.
func Routes() []Route {
	return []Route{
		{Name: "Dashboard", Path: "/", Title: "Dashboard", template: "dashboard.html"},
		{Name: "Sensors", Path: "/sensors", Title: "Sensors", template: "sensors.html"},
		{Name: "Subscriptions", Path: "/subscriptions", Title: "Subscriptions", template: "subscriptions.html"},
		{Name: "Alerts", Path: "/alerts", Title: "Alerts", template: "alerts.html"},
	}
}

// Backend is what the data views read.
type Backend interface {
	GetActiveSensors(ctx context.Context) ([]backend.Sensor, error)
	GetSubscriptions(ctx context.Context) ([]backend.Subscription, error)
	GetAlerts(ctx context.Context) ([]backend.Alert, error)
}

// Chart is what the dashboard view reads from the controller.
type Chart interface {
	State() refresh.State
	ActiveSessions() int
	Latest() (status.Snapshot, time.Time, bool)
	Interval() time.Duration
}

// Register mounts every route on mux plus the static assets under /static/.
func Register(mux *http.ServeMux, h *Handler) error {
	if mux == nil {
		return ErrNilMux
	}
	for _, r := range Routes() {
		pattern := "GET " + r.Path
		if r.Path == "/" {
			pattern = "GET /{$}"
		}
		mux.HandleFunc(pattern, h.view(r))
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS())))
	return nil
}

// Handler renders views.
type Handler struct {
	backend Backend
	chart   Chart
	pages   *pages
	logger  logger.Logger
}

// NewHandler parses the embedded templates.
func NewHandler(b Backend, c Chart) (*Handler, error) {
	p, err := parsePages(Routes())
	if err != nil {
		return nil, err
	}
	return &Handler{
		backend: b,
		chart:   c,
		pages:   p,
		logger:  logger.Get().Named("site"),
	}, nil
}

// page is the data every template receives.
type page struct {
	Title  string
	Active string
	Routes []Route
	Error  string
	Data   any
}

type dashboardData struct {
	State       string
	AutoRefresh bool
	IntervalMS  int64
	HasData     bool
	Snapshot    status.Snapshot
	Dataset     status.Dataset
	UpdatedAt   time.Time
}

func (h *Handler) view(r Route) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		p := page{Title: r.Title, Active: r.Name, Routes: Routes()}
		code := http.StatusOK

		data, err := h.load(req.Context(), r.Name)
		if err != nil {
			h.logger.Warn(req.Context(), "view data unavailable",
				logger.String("view", r.Name),
				logger.Error(err),
			)
			p.Error = err.Error()
			code = http.StatusBadGateway
		}
		p.Data = data

		if err := h.pages.render(w, code, r.template, p); err != nil {
			h.logger.Error(req.Context(), "render view", logger.String("view", r.Name), logger.Error(err))
		}
	}
}

func (h *Handler) load(ctx context.Context, name string) (any, error) {
	switch name {
	case "Sensors":
		return h.backend.GetActiveSensors(ctx)
	case "Subscriptions":
		return h.backend.GetSubscriptions(ctx)
	case "Alerts":
		return h.backend.GetAlerts(ctx)
	}
	d := dashboardData{
		State:       h.chart.State().String(),
		AutoRefresh: h.chart.ActiveSessions() > 0,
		IntervalMS:  h.chart.Interval().Milliseconds(),
	}
	if snap, at, ok := h.chart.Latest(); ok {
		d.HasData = true
		d.Snapshot = snap
		d.Dataset = status.DatasetFrom(snap)
		d.UpdatedAt = at
	}
	return d, nil
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/sensorboard/internal/adapters/backend"
	"github.com/okian/sensorboard/internal/domain/status"
	"github.com/okian/sensorboard/internal/refresh"
)

// RefreshHandler triggers fetches and toggles auto-refresh.
type RefreshHandler struct {
	ctrl Controller
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(ctrl Controller) *RefreshHandler {
	return &RefreshHandler{ctrl: ctrl}
}

type refreshResponse struct {
	Status   string           `json:"status"`
	Snapshot *status.Snapshot `json:"snapshot,omitempty"`
}

type autoRefreshRequest struct {
	Enabled *bool `json:"enabled"`
}

type autoRefreshResponse struct {
	Enabled  bool   `json:"enabled"`
	State    string `json:"state"`
	Sessions int    `json:"sessions"`
}

// HandleRefresh handles POST /api/refresh requests.
func (h *RefreshHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	err := h.ctrl.FetchAndRender(r.Context())
	switch {
	case err == nil:
		resp := refreshResponse{Status: "applied"}
		if snap, _, ok := h.ctrl.Latest(); ok {
			resp.Snapshot = &snap
		}
		writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, refresh.ErrSuperseded):
		// A newer request owns the chart; this one is still a success for the caller.
		writeJSON(w, http.StatusOK, refreshResponse{Status: "superseded"})
	default:
		code, kind := classify(err)
		writeError(w, code, kind, err)
	}
}

// HandleAutoRefresh handles PUT /api/auto-refresh requests.
func (h *RefreshHandler) HandleAutoRefresh(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPut) {
		return
	}
	var req autoRefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: missing enabled", ErrBadRequest))
		return
	}
	if err := h.ctrl.SetAutoRefresh(*req.Enabled); err != nil {
		code, kind := classify(err)
		writeError(w, code, kind, err)
		return
	}
	writeJSON(w, http.StatusOK, autoRefreshResponse{
		Enabled:  h.ctrl.ActiveSessions() > 0,
		State:    h.ctrl.State().String(),
		Sessions: h.ctrl.ActiveSessions(),
	})
}

// classify maps controller errors to an HTTP status and error code.
func classify(err error) (int, string) {
	var renderErr *refresh.RenderError
	switch {
	case errors.Is(err, refresh.ErrDisposed):
		return http.StatusConflict, "disposed"
	case errors.As(err, &renderErr):
		return http.StatusInternalServerError, "render_error"
	case errors.Is(err, backend.ErrMalformedResponse):
		return http.StatusBadGateway, "malformed_response"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, backend.ErrNetwork):
		return http.StatusBadGateway, "network_error"
	}
	return http.StatusInternalServerError, "internal_error"
}

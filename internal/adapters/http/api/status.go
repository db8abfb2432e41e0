package api

import (
	"net/http"
	"time"

	"github.com/okian/sensorboard/internal/domain/status"
)

// StatusHandler serves the last applied status snapshot.
type StatusHandler struct {
	ctrl Controller
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(ctrl Controller) *StatusHandler {
	return &StatusHandler{ctrl: ctrl}
}

type summaryResponse struct {
	Snapshot  status.Snapshot `json:"snapshot"`
	Total     int             `json:"total"`
	Dataset   status.Dataset  `json:"dataset"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// HandleGetSummary handles GET /api/status-summary requests.
func (h *StatusHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	snap, at, ok := h.ctrl.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, "no_data", ErrNoData)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		Snapshot:  snap,
		Total:     snap.Total(),
		Dataset:   status.DatasetFrom(snap),
		UpdatedAt: at.UTC(),
	})
}

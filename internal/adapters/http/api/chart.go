package api

import (
	"net/http"
	"strconv"
)

// ChartHandler serves the chart image currently on the surface.
type ChartHandler struct {
	frames FrameSource
}

// NewChartHandler creates a new chart handler.
func NewChartHandler(frames FrameSource) *ChartHandler {
	return &ChartHandler{frames: frames}
}

// HandleGetChart handles GET /api/chart requests.
// The frame version doubles as the ETag.
func (h *ChartHandler) HandleGetChart(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	f, ok := h.frames.Frame()
	if !ok {
		writeError(w, http.StatusNotFound, "no_chart", ErrNoChart)
		return
	}
	version := strconv.FormatUint(f.Version, 10)
	etag := `"` + version + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("X-Chart-Version", version)
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(f.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(f.Data)
}

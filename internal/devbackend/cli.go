package devbackend

import "os"

// ShowHelp prints usage information for the dev backend.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`SDMM dev backend
================

Serves the sensor-monitoring endpoints the dashboard reads, from memory.
Sensor statuses drift over time so the status chart has something to show.

Usage:
  go run ./cmd/dev-backend [options]

Options:
  -addr string
        Listen address (default ":5000")
  -sensors int
        Number of generated sensors (default 24)
  -drift duration
        Interval between status changes, 0 disables drift (default 2s)
  -drift-rate float
        Share of sensors that may change status per drift (default 0.2)
  -fail-rate float
        Share of status summary requests answered with 500 (default 0)
  -latency duration
        Delay added to every response (default 0)
  -verbose
        Log every request
  -help
        Show this help message

Example:
  go run ./cmd/dev-backend -sensors 100 -fail-rate 0.1 -latency 200ms
  SENSORBOARD_API_BASE_URL=http://localhost:5000/api go run ./cmd serve
`)
}

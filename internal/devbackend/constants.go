package devbackend

import (
	"errors"
	"time"
)

// Generator defaults.
const (
	defaultSensors       = 24
	defaultDriftInterval = 2 * time.Second
	defaultDriftRate     = 0.2
	randomFloatDivisor   = 1_000_000
	readingPrecision     = 10
)

// Sentinel kinds for dev backend errors.
var (
	ErrInvalidConfig = errors.New("invalid dev backend config")
	ErrNotFound      = errors.New("not found")
)

// statusWeights skews the initial fleet towards healthy sensors.
var statusWeights = []struct { //nolint:gochecknoglobals // fixed distribution
	status string
	weight float64
}{
	{"normal", 0.7},
	{"warning", 0.15},
	{"offline", 0.1},
	{"disabled", 0.05},
}

var locations = []string{"greenhouse", "warehouse", "office", "lab", "server room", "roof"} //nolint:gochecknoglobals // name pool

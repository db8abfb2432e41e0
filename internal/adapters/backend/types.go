package backend

import (
	"fmt"
	"strings"

	"github.com/okian/sensorboard/internal/domain/status"
)

// Sensor is a sensor record as returned by /sensors/{id} and /sensor_board/sensors.
// Data is only present on the sensor board listing.
type Sensor struct {
	SensorID  string             `json:"sensor_id"`
	Name      string             `json:"name"`
	Location  string             `json:"location"`
	Status    string             `json:"status"`
	CreatedAt string             `json:"created_at,omitempty"`
	UpdatedAt string             `json:"updated_at,omitempty"`
	DeletedAt string             `json:"deleted_at,omitempty"`
	Data      map[string]float64 `json:"data,omitempty"`
}

// Thresholds are the per-sensor alert limits stored as sensor metadata.
type Thresholds struct {
	SensorID   string         `json:"sensor_id"`
	Thresholds map[string]any `json:"thresholds"`
}

// Point is one historical reading.
type Point struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
}

// History groups historical readings by measurement type.
type History struct {
	Temperature []Point `json:"temperature"`
	Humidity    []Point `json:"humidity"`
	CO2         []Point `json:"co2"`
}

// Subscription describes an MQTT topic the backend ingests sensor data from.
type Subscription struct {
	BrokerAddress string         `json:"broker_address" yaml:"broker_address"`
	BrokerPort    int            `json:"broker_port" yaml:"broker_port"`
	Topic         string         `json:"topic" yaml:"topic"`
	Username      string         `json:"username,omitempty" yaml:"username,omitempty"`
	Password      string         `json:"password,omitempty" yaml:"password,omitempty"`
	SensorTypes   []string       `json:"sensor_types" yaml:"sensor_types"`
	SensorName    string         `json:"sensor_name" yaml:"sensor_name"`
	Metadata      map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// subscriptionFile is the YAML document the backend stores subscriptions in.
type subscriptionFile struct {
	Subscriptions []Subscription `yaml:"subscriptions"`
}

// Alert is a raised sensor alert.
type Alert struct {
	AlertID   string `json:"alert_id"`
	SensorID  string `json:"sensor_id"`
	AlertType string `json:"alert_type"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at,omitempty"`
	IsDeleted bool   `json:"is_deleted"`
	Status    string `json:"status"`
}

// errorBody is the {"error": "..."} shape the backend uses for failures.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// summaryBody is the wire form of the status summary. Every count is required.
type summaryBody struct {
	Normal   *int `json:"normal"`
	Warning  *int `json:"warning"`
	Offline  *int `json:"offline"`
	Disabled *int `json:"disabled"`
}

func (b summaryBody) snapshot() (status.Snapshot, error) {
	var missing []string
	for _, f := range []struct {
		name string
		v    *int
	}{
		{"normal", b.Normal},
		{"warning", b.Warning},
		{"offline", b.Offline},
		{"disabled", b.Disabled},
	} {
		if f.v == nil {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return status.Snapshot{}, fmt.Errorf("%w: %s", ErrMissingCount, strings.Join(missing, ", "))
	}
	return status.Snapshot{Normal: *b.Normal, Warning: *b.Warning, Offline: *b.Offline, Disabled: *b.Disabled}, nil
}

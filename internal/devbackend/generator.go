package devbackend

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/okian/sensorboard/internal/adapters/backend"
	"github.com/okian/sensorboard/internal/domain/status"
)

// getRandomFloat returns a random float64 in [0, 1) using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// randomStatus draws a status category using statusWeights.
func randomStatus() string {
	r := getRandomFloat()
	for _, w := range statusWeights {
		if r < w.weight {
			return w.status
		}
		r -= w.weight
	}
	return status.Normal
}

func reading(lo, span float64) float64 {
	v := lo + getRandomFloat()*span
	return float64(int(v*readingPrecision)) / readingPrecision
}

// generateSensor creates one sensor with a uuid ID and fresh readings.
func generateSensor(index int, now time.Time) backend.Sensor {
	loc := locations[index%len(locations)]
	return backend.Sensor{
		SensorID:  uuid.NewString(),
		Name:      fmt.Sprintf("%s-%02d", loc, index+1),
		Location:  loc,
		Status:    randomStatus(),
		CreatedAt: now.UTC().Format(time.RFC3339),
		UpdatedAt: now.UTC().Format(time.RFC3339),
		Data:      generateReadings(),
	}
}

func generateReadings() map[string]float64 {
	return map[string]float64{
		"temperature": reading(15, 15),
		"humidity":    reading(30, 40),
		"co2":         reading(350, 600),
	}
}

// generateSubscription mirrors the MQTT subscription a sensor would be ingested from.
func generateSubscription(s backend.Sensor) backend.Subscription {
	return backend.Subscription{
		BrokerAddress: "localhost",
		BrokerPort:    1883,
		Topic:         "sensors/" + s.Name,
		SensorTypes:   []string{"temperature", "humidity", "co2"},
		SensorName:    s.Name,
	}
}

// generateAlert raises an alert for a sensor that just left the normal state.
func generateAlert(s backend.Sensor, now time.Time) backend.Alert {
	return backend.Alert{
		AlertID:   uuid.NewString(),
		SensorID:  s.SensorID,
		AlertType: "status change",
		Message:   fmt.Sprintf("%s is %s", s.Name, s.Status),
		CreatedAt: now.UTC().Format(time.RFC3339),
		Status:    "new",
	}
}

// Package chart draws the sensor status pie onto an injected display surface.
package chart

import (
	"context"

	"github.com/okian/sensorboard/internal/domain/status"
)

// Renderer turns a dataset into a live chart handle on its surface.
type Renderer interface {
	Render(ctx context.Context, ds status.Dataset) (Handle, error)
}

// Handle is an exclusively owned chart drawn on a surface.
// Destroy removes it from the surface and may be called more than once.
type Handle interface {
	Dataset() status.Dataset
	Destroy() error
}

package chart

import "errors"

// Sentinel kinds for chart errors.
var (
	ErrRender            = errors.New("chart render failed")
	ErrUnsupportedFormat = errors.New("unsupported chart format")
	ErrInvalidDataset    = errors.New("invalid chart dataset")
	ErrNilSurface        = errors.New("nil chart surface")
)

package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrNoData           = errors.New("no status data yet")
	ErrNoChart          = errors.New("no chart drawn yet")
	ErrNoStats          = errors.New("stats unavailable")
)

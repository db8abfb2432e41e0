package metrics

import (
	"errors"
)

// Label values outside the fixed sets are refused so series cardinality stays bounded.
var (
	ErrUnknownStatus  = errors.New("unknown sensor status label")
	ErrUnknownOutcome = errors.New("unknown fetch outcome label")
)

package status

import "errors"

// Sentinel kinds for status errors.
var (
	ErrNegativeCount   = errors.New("negative sensor count")
	ErrUnknownCategory = errors.New("unknown status category")
)

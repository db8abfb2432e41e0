package config

import (
	"errors"
	"fmt"
)

// Error kinds returned by Load, LoadFile and Validate.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")

	// ErrConfigFile marks a failure in the YAML file layer; it also matches ErrLoadConfig.
	ErrConfigFile = fmt.Errorf("%w: config file", ErrLoadConfig)
)

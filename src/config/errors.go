package config

import "errors"

// Sentinel error kinds for this package. These allow errors.Is from callers.
var (
	ErrMissingConfig = errors.New("required environment value is not set")
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

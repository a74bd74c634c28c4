package config

import (
	"errors"
)

// Sentinel error kinds for this package. Load and Validate wrap them so
// callers can tell a broken source from a bad value.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

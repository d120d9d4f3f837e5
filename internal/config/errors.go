package config

import "errors"

// Error variables for configuration loading.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrDataFileEmpty      = errors.New("data-file cannot be empty")
	ErrUnknownLogLevel    = errors.New("unknown log level")
	ErrLockTimeout        = errors.New("lock_timeout must be a positive duration")
)

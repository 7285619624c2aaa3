package config

import "errors"

// ErrInvalidConfig marks a setting that failed Validate.
var ErrInvalidConfig = errors.New("invalid config")

// ErrLoadConfig marks a failure reading the file or environment sources.
var ErrLoadConfig = errors.New("load config failed")

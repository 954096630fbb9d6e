package config

import "errors"

// ErrInvalidConfig wraps every validation failure; ErrLoadConfig wraps
// provider and decode failures.
var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrLoadConfig    = errors.New("load configuration")
)

package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted         = errors.New("service not started")
	ErrNoLoader           = errors.New("no table loader configured")
	ErrInvalidTarget      = errors.New("invalid lookup target")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

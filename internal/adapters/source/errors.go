package source

import "errors"

// Sentinel kinds for table loading errors.
var (
	ErrTableNotFound = errors.New("profile table not found")
	ErrSchema        = errors.New("profile table schema mismatch")
	ErrMalformedRow  = errors.New("malformed profile row")
	ErrUnknownSource = errors.New("unknown source kind")
)

package timeofday

import "errors"

// ErrInvalidBand marks a band whose low edge is not below its high edge.
var ErrInvalidBand = errors.New("invalid time-of-day band")

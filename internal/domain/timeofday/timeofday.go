// Package timeofday classifies cycle start times against the configured
// local-midnight and local-noon bands.
package timeofday

import (
	"encoding/json"
	"fmt"
	"time"
)

// Band is a time-of-day range expressed as offsets from UTC midnight.
// The edge policy is chosen by the caller: ContainsOpen or ContainsClosed.
type Band struct {
	Lo time.Duration `json:"lo"`
	Hi time.Duration `json:"hi"`
}

// NewBand builds a band from whole minutes since UTC midnight.
func NewBand(loMinutes, hiMinutes int) Band {
	return Band{Lo: time.Duration(loMinutes) * time.Minute, Hi: time.Duration(hiMinutes) * time.Minute}
}

// ContainsOpen reports Lo < d < Hi.
func (b Band) ContainsOpen(d time.Duration) bool { return d > b.Lo && d < b.Hi }

// ContainsClosed reports Lo <= d <= Hi.
func (b Band) ContainsClosed(d time.Duration) bool { return d >= b.Lo && d <= b.Hi }

func (b Band) String() string { return fmt.Sprintf("(%s, %s)", b.Lo, b.Hi) }

// Bands pairs the midnight and noon bands of one deployment.
type Bands struct {
	Midnight Band `json:"midnight"`
	Noon     Band `json:"noon"`
}

// DefaultBands returns the Oregon Slope Base schedule in UTC:
// midnight 07:10–07:34, noon 20:30–20:54.
func DefaultBands() Bands {
	return Bands{
		Midnight: NewBand(7*60+10, 7*60+34),
		Noon:     NewBand(20*60+30, 20*60+54),
	}
}

// Validate rejects empty or inverted bands.
func (b Bands) Validate() error {
	if b.Midnight.Lo >= b.Midnight.Hi {
		return fmt.Errorf("%w: midnight %s", ErrInvalidBand, b.Midnight)
	}
	if b.Noon.Lo >= b.Noon.Hi {
		return fmt.Errorf("%w: noon %s", ErrInvalidBand, b.Noon)
	}
	return nil
}

// Classification is the outcome of Classify.
type Classification int

const (
	Unclassified Classification = iota
	Midnight
	Noon
)

func (c Classification) String() string {
	switch c {
	case Midnight:
		return "midnight"
	case Noon:
		return "noon"
	default:
		return "unclassified"
	}
}

// MarshalJSON renders the classification by name.
func (c Classification) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// Classify places d, a duration since UTC midnight, in the midnight band, the
// noon band, or neither. Both bands are open intervals: a value equal to an
// edge is Unclassified. Midnight is tested first.
func Classify(d time.Duration, bands Bands) Classification {
	switch {
	case bands.Midnight.ContainsOpen(d):
		return Midnight
	case bands.Noon.ContainsOpen(d):
		return Noon
	default:
		return Unclassified
	}
}

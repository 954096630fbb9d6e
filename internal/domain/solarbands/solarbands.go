// Package solarbands proposes midnight and noon bands for a deployment from
// the solar position at the site. The result is only a starting point for
// configuration; classification always uses the configured bands.
package solarbands

import (
	"time"

	"github.com/sj14/astral/pkg/astral"

	"github.com/okian/profilemeta/internal/domain/calendar"
	"github.com/okian/profilemeta/internal/domain/timeofday"
)

// DefaultHalfWidth gives 24-minute bands, the width used by the Oregon
// Slope Base schedule.
const DefaultHalfWidth = 12 * time.Minute

// Suggestion is a proposed band set together with the solar events it was
// centred on.
type Suggestion struct {
	Bands          timeofday.Bands `json:"bands"`
	SolarNoon      time.Time       `json:"solar_noon"`
	SolarMidnight  time.Time       `json:"solar_midnight"`
	NoonOffset     time.Duration   `json:"noon_offset"`
	MidnightOffset time.Duration   `json:"midnight_offset"`
}

// Suggest centres a band of ±halfWidth on solar midnight and on solar noon
// at (lat, lon) for the UTC day of date. Offsets are UTC time-of-day; a band
// that would cross midnight is clipped at the day boundary because the
// window arithmetic does not wrap.
func Suggest(lat, lon float64, date time.Time, halfWidth time.Duration) Suggestion {
	if halfWidth <= 0 {
		halfWidth = DefaultHalfWidth
	}
	obs := astral.Observer{Latitude: lat, Longitude: lon}
	day := calendar.FloorToDay(date)

	noon := astral.Noon(obs, day).UTC()
	midnight := astral.Midnight(obs, day).UTC()

	noonOff := calendar.TimeOfDay(noon)
	midOff := calendar.TimeOfDay(midnight)

	return Suggestion{
		Bands: timeofday.Bands{
			Midnight: around(midOff, halfWidth),
			Noon:     around(noonOff, halfWidth),
		},
		SolarNoon:      noon,
		SolarMidnight:  midnight,
		NoonOffset:     noonOff,
		MidnightOffset: midOff,
	}
}

func around(center, half time.Duration) timeofday.Band {
	lo, hi := center-half, center+half
	if lo < 0 {
		lo = 0
	}
	if hi > calendar.Day {
		hi = calendar.Day
	}
	return timeofday.Band{Lo: lo, Hi: hi}
}

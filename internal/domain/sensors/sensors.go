// Package sensors is the data dictionary of profiler sensors: what each one
// measures, which instrument carries it and when it samples.
package sensors

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Schedule says when a sensor samples.
type Schedule string

const (
	Continuous          Schedule = "continuous"
	MidnightNoonAscent  Schedule = "midnight_noon_ascent"
	MidnightNoonDescent Schedule = "midnight_noon_descent"
)

// ErrUnknownSensor is returned by Lookup for a code not in the catalog.
var ErrUnknownSensor = errors.New("unknown sensor")

// Sensor is one catalog entry. Range is the nominal [lo, hi] of the
// measurement and may be empty.
type Sensor struct {
	Code       string    `yaml:"code" json:"code"`
	Name       string    `yaml:"name" json:"name"`
	Variable   string    `yaml:"variable" json:"variable"`
	Instrument string    `yaml:"instrument" json:"instrument"`
	Schedule   Schedule  `yaml:"schedule" json:"schedule"`
	Range      []float64 `yaml:"range,omitempty" json:"range,omitempty"`
}

// ScheduledOnProfiles reports whether the sensor only samples during the
// midnight and noon excursions.
func (s Sensor) ScheduledOnProfiles() bool {
	return s.Schedule == MidnightNoonAscent || s.Schedule == MidnightNoonDescent
}

// Catalog is an immutable set of sensors keyed by code.
type Catalog struct {
	byCode map[string]Sensor
	codes  []string
}

type catalogFile struct {
	Sensors []Sensor `yaml:"sensors"`
}

// Default returns the embedded shallow-profiler catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse builds a catalog from YAML.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse sensor catalog: %w", err)
	}
	c := &Catalog{byCode: make(map[string]Sensor, len(f.Sensors))}
	for _, s := range f.Sensors {
		code := strings.ToUpper(strings.TrimSpace(s.Code))
		if code == "" {
			return nil, fmt.Errorf("parse sensor catalog: sensor %q has no code", s.Name)
		}
		if _, dup := c.byCode[code]; dup {
			return nil, fmt.Errorf("parse sensor catalog: duplicate code %q", code)
		}
		if len(s.Range) != 0 && len(s.Range) != 2 {
			return nil, fmt.Errorf("parse sensor catalog: sensor %q range must have two values", code)
		}
		switch s.Schedule {
		case Continuous, MidnightNoonAscent, MidnightNoonDescent:
		default:
			return nil, fmt.Errorf("parse sensor catalog: sensor %q has schedule %q", code, s.Schedule)
		}
		s.Code = code
		c.byCode[code] = s
		c.codes = append(c.codes, code)
	}
	sort.Strings(c.codes)
	return c, nil
}

// Lookup returns the sensor with the given short code (case-insensitive).
func (c *Catalog) Lookup(code string) (Sensor, error) {
	s, ok := c.byCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Sensor{}, fmt.Errorf("%w: %q", ErrUnknownSensor, code)
	}
	return s, nil
}

// All returns every sensor ordered by code.
func (c *Catalog) All() []Sensor {
	out := make([]Sensor, 0, len(c.codes))
	for _, code := range c.codes {
		out = append(out, c.byCode[code])
	}
	return out
}

// BySchedule returns the sensors with the given schedule, ordered by code.
func (c *Catalog) BySchedule(s Schedule) []Sensor {
	var out []Sensor
	for _, code := range c.codes {
		if c.byCode[code].Schedule == s {
			out = append(out, c.byCode[code])
		}
	}
	return out
}

// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - Band edges and thresholds are configured in minutes and converted to
//     domain types through accessor methods.
//   - External errors are wrapped with this package's sentinels.
package config

import (
	"fmt"
	"time"

	"github.com/okian/profilemeta/internal/domain/evaluation"
	"github.com/okian/profilemeta/internal/domain/timeofday"
)

// Source kinds.
const (
	SourceCSV    = "csv"
	SourceSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Source selects the metadata table backend: csv or sqlite.
	Source string `koanf:"source"`

	// ProfilesDir holds <site><year>.csv files for the csv source.
	ProfilesDir string `koanf:"profiles_dir"`

	// SQLitePath is the database file for the sqlite source.
	SQLitePath string `koanf:"sqlite_path"`

	// CacheTTLSeconds enables the read-through table cache when > 0.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// Band edges in minutes since UTC midnight. Classification is strict on
	// both edges.
	MidnightLoMin int `koanf:"midnight_lo_min"`
	MidnightHiMin int `koanf:"midnight_hi_min"`
	NoonLoMin     int `koanf:"noon_lo_min"`
	NoonHiMin     int `koanf:"noon_hi_min"`

	// LongDescentMin is the minimum descent, in minutes, of a midnight or
	// noon profile.
	LongDescentMin int `koanf:"long_descent_min"`

	// CyclesPerDay is the nominal profiling schedule.
	CyclesPerDay int `koanf:"cycles_per_day"`
}

// New returns a Config populated with the Oregon Slope Base defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		Source:          SourceCSV,
		ProfilesDir:     "./Profiles",
		SQLitePath:      "./profiles.db",
		CacheTTLSeconds: 300,
		MidnightLoMin:   7*60 + 10,
		MidnightHiMin:   7*60 + 34,
		NoonLoMin:       20*60 + 30,
		NoonHiMin:       20*60 + 54,
		LongDescentMin:  int(evaluation.DefaultLongDescent / time.Minute),
		CyclesPerDay:    evaluation.DefaultCyclesPerDay,
	}
}

// Bands converts the configured edges into classifier bands.
func (c *Config) Bands() timeofday.Bands {
	return timeofday.Bands{
		Midnight: timeofday.NewBand(c.MidnightLoMin, c.MidnightHiMin),
		Noon:     timeofday.NewBand(c.NoonLoMin, c.NoonHiMin),
	}
}

// LongDescent returns the long-descent threshold as a duration.
func (c *Config) LongDescent() time.Duration {
	return time.Duration(c.LongDescentMin) * time.Minute
}

// CacheTTL returns the table cache lifetime; zero disables caching.
func (c *Config) CacheTTL() time.Duration {
	if c.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// EvaluatorOptions returns the evaluator configuration derived from c.
func (c *Config) EvaluatorOptions() []evaluation.Option {
	return []evaluation.Option{
		evaluation.WithBands(c.Bands()),
		evaluation.WithLongDescent(c.LongDescent()),
		evaluation.WithCyclesPerDay(c.CyclesPerDay),
	}
}

// Validate checks field consistency.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.Source {
	case SourceCSV:
		if c.ProfilesDir == "" {
			return fmt.Errorf("%w: profiles_dir must not be empty", ErrInvalidConfig)
		}
	case SourceSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite_path must not be empty", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown source %q", ErrInvalidConfig, c.Source)
	}
	if err := c.Bands().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.LongDescentMin <= 0 {
		return fmt.Errorf("%w: long_descent_min must be positive", ErrInvalidConfig)
	}
	if c.CyclesPerDay <= 0 {
		return fmt.Errorf("%w: cycles_per_day must be positive", ErrInvalidConfig)
	}
	return nil
}

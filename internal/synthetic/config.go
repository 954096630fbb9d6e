package synthetic

import (
	"time"

	"github.com/okian/profilemeta/internal/domain/timeofday"
)

// Schedule constants for a shallow profiler.
const (
	DefaultCyclesPerDay = 9
	DefaultJitter       = 2 * time.Minute
	AscentDuration      = 50 * time.Minute
	ShortDescent        = 20 * time.Minute
	LongDescent         = 70 * time.Minute
	RestDuration        = 15 * time.Minute

	// AnomalyShift is the minimum shift of an out-of-band long descent; wider
	// bands shift further.
	AnomalyShift = 25 * time.Minute
)

// Config holds configuration for a generation run.
type Config struct {
	Site        string          // Site code, e.g. "osb"
	Year        int             // Year of the generated table
	Start       time.Time       // First day; defaults to Jan 1 of Year
	Days        int             // Number of days to generate
	Seed        int64           // Seed for jitter and anomalies
	Jitter      time.Duration   // Max absolute start-time jitter
	AnomalyRate float64         // Probability that a long descent is shifted out of band
	Bands       timeofday.Bands // Bands the long descents are centred on

	OutputDir  string        // Directory for <site><year>.csv; empty skips the file
	SQLitePath string        // Optional database to import into
	BaseURL    string        // Optional running service to verify against
	Timeout    time.Duration // HTTP request timeout
}

// Stats holds generation statistics.
type Stats struct {
	Cycles    int
	Midnight  int
	Noon      int
	Anomalies int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

func (c *Config) normalize() {
	if c.Site == "" {
		c.Site = "osb"
	}
	if c.Year == 0 {
		c.Year = time.Now().UTC().Year()
	}
	if c.Start.IsZero() {
		c.Start = time.Date(c.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	if c.Days <= 0 {
		c.Days = 1
	}
	if c.Jitter < 0 {
		c.Jitter = 0
	}
	if c.Bands == (timeofday.Bands{}) {
		c.Bands = timeofday.DefaultBands()
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
}

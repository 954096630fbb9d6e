package synthetic

import "os"

// ShowHelp prints usage information for the generator.
func ShowHelp() {
	os.Stdout.WriteString(`gen-cycles
==========

Generates a synthetic shallow-profiler site-year table in the 12-column CSV
export layout, optionally imports it into SQLite, and checks the midnight and
noon counts with the profile evaluator.

Usage:
  go run ./cmd/gen-cycles [options]

Options:
  -site string        Site code (default "osb")
  -year int           Year (default current year)
  -days int           Number of days (default 30)
  -seed int           Random seed (default 1)
  -jitter duration    Max start-time jitter (default 2m)
  -anomalies float    Probability a long descent is shifted out of band
  -out string         Output directory for <site><year>.csv (default "./Profiles")
  -sqlite string      Also import into this SQLite database
  -url string         Verify against a running service at this base URL
  -timeout duration   HTTP request timeout (default 10s)
  -help               Show this help message

Examples:
  # A month of clean data
  go run ./cmd/gen-cycles -year 2021 -days 31

  # A year with 2% anomalies, imported and verified against the service
  go run ./cmd/gen-cycles -year 2021 -days 365 -anomalies 0.02 \
      -sqlite ./profiles.db -url http://localhost:9080
`)
}

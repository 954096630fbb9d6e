package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/profilemeta/internal/synthetic"
	"github.com/okian/profilemeta/pkg/logger"
)

// Default configuration constants.
const (
	defaultDays    = 30
	defaultTimeout = 10 * time.Second
	defaultRunTime = 5 * time.Minute
)

func main() {
	var (
		site      = flag.String("site", "osb", "Site code")
		year      = flag.Int("year", time.Now().UTC().Year(), "Year of the generated table")
		days      = flag.Int("days", defaultDays, "Number of days to generate")
		seed      = flag.Int64("seed", 1, "Random seed")
		jitter    = flag.Duration("jitter", synthetic.DefaultJitter, "Max start-time jitter")
		anomalies = flag.Float64("anomalies", 0, "Probability a long descent is shifted out of band")
		outDir    = flag.String("out", "./Profiles", "Output directory for <site><year>.csv")
		sqlite    = flag.String("sqlite", "", "Also import into this SQLite database")
		baseURL   = flag.String("url", "", "Verify against a running service at this base URL")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose   = flag.Bool("verbose", false, "Enable debug logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		synthetic.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTime)
	defer cancel()

	cfg := &synthetic.Config{
		Site:        *site,
		Year:        *year,
		Days:        *days,
		Seed:        *seed,
		Jitter:      *jitter,
		AnomalyRate: *anomalies,
		OutputDir:   *outDir,
		SQLitePath:  *sqlite,
		BaseURL:     *baseURL,
		Timeout:     *timeout,
	}

	if _, err := synthetic.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Generation failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}

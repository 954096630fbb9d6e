package synthetic

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/okian/profilemeta/internal/adapters/source"
	"github.com/okian/profilemeta/internal/domain/model"
	"github.com/okian/profilemeta/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
)

// Run generates a table, writes and imports it as configured, and verifies
// the evaluator counts locally and, when BaseURL is set, against a running
// service.
func Run(ctx context.Context, cfg *Config) (Stats, error) {
	cfg.normalize()
	log := logger.Get().Named("gen-cycles")

	log.Info(ctx, "generating synthetic cycles",
		logger.String("site", cfg.Site),
		logger.Int("year", cfg.Year),
		logger.Int("days", cfg.Days),
		logger.Float64("anomalyRate", cfg.AnomalyRate),
	)

	t, stats := Generate(*cfg)

	if cfg.OutputDir != "" {
		path, err := writeTable(cfg.OutputDir, t)
		if err != nil {
			return stats, fmt.Errorf("write csv: %w", err)
		}
		log.Info(ctx, "table written", logger.String("path", path))
	}

	if cfg.SQLitePath != "" {
		if err := importTable(ctx, cfg.SQLitePath, t); err != nil {
			return stats, fmt.Errorf("import sqlite: %w", err)
		}
		log.Info(ctx, "table imported", logger.String("db", cfg.SQLitePath))
	}

	if _, err := Verify(ctx, *cfg, t, stats); err != nil {
		return stats, err
	}

	if cfg.BaseURL != "" {
		r, err := fetchRemoteReport(ctx, *cfg, t.At(0).AscentStart, t.At(t.Len()-1).AscentStart)
		if err != nil {
			return stats, fmt.Errorf("remote verification: %w", err)
		}
		if err := compare(r, stats); err != nil {
			return stats, fmt.Errorf("remote verification: %w", err)
		}
	}

	displayFinalStats(ctx, stats)
	return stats, nil
}

func writeTable(dir string, t *model.Table) (string, error) {
	if err := os.MkdirAll(dir, directoryPermission); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	path := source.NewCSVSource(dir).Path(t.Site(), t.Year())
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if err := source.WriteCSV(f, t); err != nil {
		_ = f.Close()
		return "", err
	}
	return path, f.Close()
}

func importTable(ctx context.Context, path string, t *model.Table) error {
	db, err := source.OpenSQLite(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return db.Import(ctx, t)
}

// displayFinalStats logs the final generation statistics.
func displayFinalStats(ctx context.Context, stats Stats) {
	logger.Get().Info(ctx, "final statistics",
		logger.String("cycles", humanize.Comma(int64(stats.Cycles))),
		logger.Int("midnight", stats.Midnight),
		logger.Int("noon", stats.Noon),
		logger.Int("anomalies", stats.Anomalies),
		logger.String("duration", stats.Duration.Round(time.Microsecond).String()),
	)
}

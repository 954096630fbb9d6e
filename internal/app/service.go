// Package service wires table loading to the window selector and profile
// evaluator and provides the operations used by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/profilemeta/internal/adapters/source"
	"github.com/okian/profilemeta/internal/domain/calendar"
	"github.com/okian/profilemeta/internal/domain/evaluation"
	"github.com/okian/profilemeta/internal/domain/model"
	"github.com/okian/profilemeta/internal/domain/selector"
	"github.com/okian/profilemeta/internal/domain/sensors"
	"github.com/okian/profilemeta/internal/domain/solarbands"
	"github.com/okian/profilemeta/pkg/logger"
	"github.com/okian/profilemeta/pkg/metrics"
)

// Service answers window, evaluation and lookup queries over site-year
// tables.
type Service struct {
	mu sync.RWMutex

	loader    source.Loader
	evaluator *evaluation.Evaluator
	catalog   *sensors.Catalog

	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLoader sets the table loader.
func WithLoader(l source.Loader) Option {
	return func(s *Service) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithEvaluator sets the profile evaluator.
func WithEvaluator(e *evaluation.Evaluator) Option {
	return func(s *Service) {
		if e != nil {
			s.evaluator = e
		}
	}
}

// WithCatalog sets the sensor catalog.
func WithCatalog(c *sensors.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. The evaluator defaults to the Oregon Slope Base
// bands.
func New(opts ...Option) *Service {
	s := &Service{
		evaluator: evaluation.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start validates dependencies and loads the sensor catalog.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.loader == nil {
		return ErrNoLoader
	}
	if s.catalog == nil {
		c, err := sensors.Default()
		if err != nil {
			return fmt.Errorf("load sensor catalog: %w", err)
		}
		s.catalog = c
	}

	bands := s.evaluator.Bands()
	s.started = true
	s.logger.Info(ctx, "profile metadata service started",
		logger.String("midnight", bands.Midnight.String()),
		logger.String("noon", bands.Noon.String()),
		logger.Int("sensors", len(s.catalog.All())),
	)
	return nil
}

// Stop releases the loader.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if err := source.Close(s.loader); err != nil {
		s.logger.Warn(context.Background(), "close loader", logger.Error(err))
	}
	s.started = false
	s.logger.Info(context.Background(), "profile metadata service stopped")
}

// Table loads the table of one site-year.
func (s *Service) Table(ctx context.Context, site string, year int) (*model.Table, error) {
	s.mu.RLock()
	started, l := s.started, s.loader
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}
	t, err := l.Load(ctx, site, year)
	if err != nil {
		metrics.RecordError("loader", errorType(err))
		return nil, fmt.Errorf("load %s%d: %w", site, year, err)
	}
	return t, nil
}

// SelectWindow returns the indices of cycles in w. An inverted window is not
// an error; it matches nothing.
func (s *Service) SelectWindow(ctx context.Context, site string, year int, w selector.Window) ([]int, *model.Table, error) {
	t, err := s.Table(ctx, site, year)
	if err != nil {
		return nil, nil, err
	}
	idx := w.Select(t)
	metrics.RecordSelection("window", len(idx))
	s.logger.Debug(ctx, "window selected",
		logger.String("site", site),
		logger.Int("year", year),
		logger.Int("matched", len(idx)),
	)
	return idx, t, nil
}

// Evaluate classifies the long descents of cycles with ascent start in
// [t0, t1]. Every anomaly is logged at warn level. An inverted range yields
// an empty report.
func (s *Service) Evaluate(ctx context.Context, site string, year int, t0, t1 time.Time) (evaluation.Report, error) {
	t, err := s.Table(ctx, site, year)
	if err != nil {
		return evaluation.Report{}, err
	}
	r := s.evaluator.Evaluate(t, t0, t1)
	for _, a := range r.Anomalies {
		s.logger.Warn(ctx, "long descent outside midnight and noon bands",
			logger.String("site", site),
			logger.Int("index", a.Index),
			logger.Time("ascent_start", a.AscentStart),
			logger.Duration("day_time", a.DayTime),
			logger.Duration("descent", a.Descent),
		)
	}
	metrics.RecordEvaluation(r.Midnight, r.Noon, r.Total-r.LongDescents, len(r.Anomalies))
	s.logger.Info(ctx, "profiles evaluated",
		logger.String("site", site),
		logger.Int("total", r.Total),
		logger.Int("midnight", r.Midnight),
		logger.Int("noon", r.Noon),
		logger.Int("anomalies", len(r.Anomalies)),
	)
	return r, nil
}

// FindNearest returns the cycles whose ascent start lies on the target's date
// within ±windowMinutes of its time of day. target is "YYYY-MM-DDTHH:MM"; any
// trailing seconds are ignored. The minute window is not wrapped, so a target
// near midnight misses cycles just across the day boundary, and a negative
// window matches nothing.
func (s *Service) FindNearest(ctx context.Context, site string, year int, target string, windowMinutes int) ([]int, *model.Table, error) {
	tg, err := calendar.ParseTarget(target)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}
	t, err := s.Table(ctx, site, year)
	if err != nil {
		return nil, nil, err
	}
	lo, hi := tg.Span(windowMinutes)
	idx := selector.SelectWindowIndices(t, tg.Date, tg.Date, lo, hi)
	metrics.RecordSelection("nearest", len(idx))
	return idx, t, nil
}

// SuggestBands proposes bands centred on solar midnight and noon at the site.
func (s *Service) SuggestBands(lat, lon float64, date time.Time, halfWidth time.Duration) (solarbands.Suggestion, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return solarbands.Suggestion{}, fmt.Errorf("%w: (%g, %g)", ErrInvalidCoordinates, lat, lon)
	}
	return solarbands.Suggest(lat, lon, date, halfWidth), nil
}

// Sensors returns the sensor catalog ordered by code.
func (s *Service) Sensors() ([]sensors.Sensor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.catalog == nil {
		return nil, ErrNotStarted
	}
	return s.catalog.All(), nil
}

// Sensor looks up one sensor by code.
func (s *Service) Sensor(code string) (sensors.Sensor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.catalog == nil {
		return sensors.Sensor{}, ErrNotStarted
	}
	return s.catalog.Lookup(code)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bands := s.evaluator.Bands()
	stats := map[string]interface{}{
		"started":       s.started,
		"midnight_band": bands.Midnight.String(),
		"noon_band":     bands.Noon.String(),
	}
	if c, ok := s.loader.(interface{ Stats() source.CacheStats }); ok {
		stats["cache"] = c.Stats()
	}
	return stats
}

func errorType(err error) string {
	switch {
	case errors.Is(err, source.ErrTableNotFound):
		return "not_found"
	case errors.Is(err, source.ErrSchema):
		return "schema"
	case errors.Is(err, source.ErrMalformedRow):
		return "malformed"
	default:
		return "other"
	}
}

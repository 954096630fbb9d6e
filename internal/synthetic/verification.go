package synthetic

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/profilemeta/internal/domain/evaluation"
	"github.com/okian/profilemeta/internal/domain/model"
	"github.com/okian/profilemeta/pkg/logger"
)

// ErrVerification reports a mismatch between what was generated and what the
// evaluator counts.
var ErrVerification = errors.New("synthetic table verification failed")

// Verify evaluates the whole table with cfg's bands and checks the midnight,
// noon and anomaly counts against stats.
func Verify(ctx context.Context, cfg Config, t *model.Table, stats Stats) (evaluation.Report, error) {
	cfg.normalize()
	if t.Len() == 0 {
		return evaluation.Report{}, fmt.Errorf("%w: empty table", ErrVerification)
	}
	ev := evaluation.New(
		evaluation.WithBands(cfg.Bands),
		evaluation.WithLongDescent(evaluation.DefaultLongDescent),
		evaluation.WithCyclesPerDay(DefaultCyclesPerDay),
	)
	r := ev.Evaluate(t, t.At(0).AscentStart, t.At(t.Len()-1).AscentStart)
	if err := compare(r, stats); err != nil {
		return r, err
	}
	logger.Get().Info(ctx, "synthetic table verified",
		logger.Int("total", r.Total),
		logger.Int("midnight", r.Midnight),
		logger.Int("noon", r.Noon),
		logger.Int("anomalies", len(r.Anomalies)),
	)
	return r, nil
}

func compare(r evaluation.Report, stats Stats) error {
	switch {
	case r.Total != stats.Cycles:
		return fmt.Errorf("%w: total %d, generated %d", ErrVerification, r.Total, stats.Cycles)
	case r.Midnight != stats.Midnight:
		return fmt.Errorf("%w: midnight %d, generated %d", ErrVerification, r.Midnight, stats.Midnight)
	case r.Noon != stats.Noon:
		return fmt.Errorf("%w: noon %d, generated %d", ErrVerification, r.Noon, stats.Noon)
	case len(r.Anomalies) != stats.Anomalies:
		return fmt.Errorf("%w: anomalies %d, generated %d", ErrVerification, len(r.Anomalies), stats.Anomalies)
	}
	return nil
}

// Package synthetic generates site-year cycle tables that follow a shallow
// profiler schedule, for demos and end-to-end checks of the query service.
package synthetic

import (
	"math/rand"
	"time"

	"github.com/okian/profilemeta/internal/domain/calendar"
	"github.com/okian/profilemeta/internal/domain/model"
	"github.com/okian/profilemeta/internal/domain/timeofday"
)

// slotSpacing places DefaultCyclesPerDay evenly over a day.
const slotSpacing = calendar.Day / DefaultCyclesPerDay

// Generate builds a table of cfg.Days days with DefaultCyclesPerDay cycles per
// day. The first slot of each day starts at the centre of the midnight band,
// the slot closest to the noon band centre is moved onto it, and those two
// carry a long descent. Start times are jittered by up to cfg.Jitter. With
// probability cfg.AnomalyRate a long-descent cycle is shifted past the upper
// edge of its band (see anomalyShift).
func Generate(cfg Config) (*model.Table, Stats) {
	cfg.normalize()
	stats := Stats{StartTime: time.Now()}
	rng := rand.New(rand.NewSource(cfg.Seed))

	midnight := centre(cfg.Bands.Midnight.Lo, cfg.Bands.Midnight.Hi)
	noon := centre(cfg.Bands.Noon.Lo, cfg.Bands.Noon.Hi)
	noonSlot := nearestSlot(midnight, noon)

	// Jitter stays inside half the narrower band so scheduled profiles remain
	// classifiable.
	maxJitter := cfg.Jitter
	if lim := minDuration(cfg.Bands.Midnight.Hi-cfg.Bands.Midnight.Lo, cfg.Bands.Noon.Hi-cfg.Bands.Noon.Lo) / 2; maxJitter >= lim {
		maxJitter = lim - time.Minute
	}

	midnightShift := anomalyShift(cfg.Bands.Midnight, maxJitter)
	noonShift := anomalyShift(cfg.Bands.Noon, maxJitter)

	records := make([]model.CycleRecord, 0, cfg.Days*DefaultCyclesPerDay)
	day := calendar.FloorToDay(cfg.Start)
	for d := 0; d < cfg.Days; d++ {
		for slot := 0; slot < DefaultCyclesPerDay; slot++ {
			offset := midnight + time.Duration(slot)*slotSpacing
			long := slot == 0 || slot == noonSlot
			if slot == noonSlot {
				offset = noon
			}
			offset += jitter(rng, maxJitter)

			if long && cfg.AnomalyRate > 0 && rng.Float64() < cfg.AnomalyRate {
				if slot == 0 {
					offset += midnightShift
				} else {
					offset += noonShift
				}
				stats.Anomalies++
			} else if slot == 0 {
				stats.Midnight++
			} else if long {
				stats.Noon++
			}

			descent := ShortDescent
			if long {
				descent = LongDescent
			}
			records = append(records, newCycle(day.Add(offset), descent))
		}
		day = day.Add(calendar.Day)
	}

	stats.Cycles = len(records)
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	return model.NewTable(cfg.Site, cfg.Year, records), stats
}

func newCycle(start time.Time, descent time.Duration) model.CycleRecord {
	ascentEnd := start.Add(AscentDuration)
	descentEnd := ascentEnd.Add(descent)
	return model.CycleRecord{
		AscentStart:  start,
		AscentEnd:    ascentEnd,
		DescentStart: ascentEnd,
		DescentEnd:   descentEnd,
		RestStart:    descentEnd,
		RestEnd:      descentEnd.Add(RestDuration),
	}
}

// anomalyShift moves a band-centred start with up to maxJitter of jitter
// strictly past b.Hi. It is never less than AnomalyShift.
func anomalyShift(b timeofday.Band, maxJitter time.Duration) time.Duration {
	if maxJitter < 0 {
		maxJitter = 0
	}
	shift := (b.Hi-b.Lo)/2 + maxJitter + time.Minute
	if shift < AnomalyShift {
		shift = AnomalyShift
	}
	return shift
}

func centre(lo, hi time.Duration) time.Duration {
	return lo + (hi-lo)/2
}

// nearestSlot returns the slot index, counted from the midnight slot, whose
// regular start is closest to noon.
func nearestSlot(midnight, noon time.Duration) int {
	diff := noon - midnight
	if diff < 0 {
		diff += calendar.Day
	}
	slot := int((diff + slotSpacing/2) / slotSpacing)
	if slot <= 0 {
		slot = 1
	}
	if slot >= DefaultCyclesPerDay {
		slot = DefaultCyclesPerDay - 1
	}
	return slot
}

func jitter(rng *rand.Rand, limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	return time.Duration(rng.Int63n(int64(2*limit)+1)) - limit
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

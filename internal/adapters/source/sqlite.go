package source

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/okian/profilemeta/internal/domain/model"
	"github.com/okian/profilemeta/pkg/metrics"
)

const cyclesSchema = `
create table if not exists profile_cycles (
	site text not null,
	year integer not null,
	seq integer not null,
	ascent_start integer not null,
	ascent_end integer not null,
	descent_start integer not null,
	descent_end integer not null,
	rest_start integer not null,
	rest_end integer not null,
	primary key (site, year, seq)
);
`

var cyclesColumns = []string{
	"site", "year", "seq",
	"ascent_start", "ascent_end",
	"descent_start", "descent_end",
	"rest_start", "rest_end",
}

// SQLiteSource stores site-year tables in a single profile_cycles table with
// timestamps as unix nanoseconds.
type SQLiteSource struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteSource, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, `pragma journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, cyclesSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteSource{db: db}, nil
}

// Close closes the database.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// Load implements Loader. Rows come back in seq order.
func (s *SQLiteSource) Load(ctx context.Context, site string, year int) (*model.Table, error) {
	start := time.Now()
	t, err := s.load(ctx, site, year)
	metrics.RecordTableLoad("sqlite", loadResult(err), float64(time.Since(start).Milliseconds()))
	if err == nil {
		metrics.ObserveTableRows(t.Len())
	}
	return t, err
}

func (s *SQLiteSource) load(ctx context.Context, site string, year int) (*model.Table, error) {
	if err := s.checkSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		select ascent_start, ascent_end, descent_start, descent_end, rest_start, rest_end
		from profile_cycles where site = ? and year = ? order by seq`, site, year)
	if err != nil {
		return nil, fmt.Errorf("query %s%d: %w", site, year, err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.CycleRecord
	for rows.Next() {
		var ns [6]int64
		if err := rows.Scan(&ns[0], &ns[1], &ns[2], &ns[3], &ns[4], &ns[5]); err != nil {
			return nil, fmt.Errorf("%w: %s%d row %d: %w", ErrMalformedRow, site, year, len(out), err)
		}
		out = append(out, model.CycleRecord{
			AscentStart:  fromNanos(ns[0]),
			AscentEnd:    fromNanos(ns[1]),
			DescentStart: fromNanos(ns[2]),
			DescentEnd:   fromNanos(ns[3]),
			RestStart:    fromNanos(ns[4]),
			RestEnd:      fromNanos(ns[5]),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s%d: %w", site, year, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s%d", ErrTableNotFound, site, year)
	}
	return model.NewTable(site, year, out), nil
}

// Import replaces the stored rows of t's site-year in one transaction.
func (s *SQLiteSource) Import(ctx context.Context, t *model.Table) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `delete from profile_cycles where site = ? and year = ?`, t.Site(), t.Year()); err != nil {
		return fmt.Errorf("clear %s%d: %w", t.Site(), t.Year(), err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		insert into profile_cycles (site, year, seq, ascent_start, ascent_end, descent_start, descent_end, rest_start, rest_end)
		values (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare import: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range t.Records() {
		if _, err = stmt.ExecContext(ctx, t.Site(), t.Year(), i,
			r.AscentStart.UnixNano(), r.AscentEnd.UnixNano(),
			r.DescentStart.UnixNano(), r.DescentEnd.UnixNano(),
			r.RestStart.UnixNano(), r.RestEnd.UnixNano(),
		); err != nil {
			return fmt.Errorf("insert %s%d row %d: %w", t.Site(), t.Year(), i, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

func (s *SQLiteSource) checkSchema(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `pragma table_info(profile_cycles);`)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSchema, err)
	}
	defer func() { _ = rows.Close() }()
	cols := make(map[string]struct{})
	for rows.Next() {
		var cid, notnull, pk int
		var name, ctype string
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return fmt.Errorf("%w: %w", ErrSchema, err)
		}
		cols[strings.ToLower(name)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrSchema, err)
	}
	for _, c := range cyclesColumns {
		if _, ok := cols[c]; !ok {
			return fmt.Errorf("%w: profile_cycles missing column %q", ErrSchema, c)
		}
	}
	return nil
}

func fromNanos(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}

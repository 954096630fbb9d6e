package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/okian/profilemeta/internal/domain/model"
	"github.com/okian/profilemeta/pkg/metrics"
)

// timestampColumns are the header names holding the six phase boundaries, in
// CycleRecord field order. The even columns of the export carry sample
// indices and are not read.
var timestampColumns = [6]string{"1", "3", "5", "7", "9", "11"}

const csvColumns = 12

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
}

// CSVSource reads <dir>/<site><year>.csv files.
type CSVSource struct {
	dir string
}

// NewCSVSource returns a loader rooted at dir.
func NewCSVSource(dir string) *CSVSource {
	return &CSVSource{dir: dir}
}

// Path returns the file a site-year is read from.
func (s *CSVSource) Path(site string, year int) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s%d.csv", site, year))
}

// Load implements Loader.
func (s *CSVSource) Load(ctx context.Context, site string, year int) (*model.Table, error) {
	start := time.Now()
	t, err := s.load(ctx, site, year)
	metrics.RecordTableLoad("csv", loadResult(err), float64(time.Since(start).Milliseconds()))
	if err == nil {
		metrics.ObserveTableRows(t.Len())
	}
	return t, err
}

func (s *CSVSource) load(ctx context.Context, site string, year int) (*model.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.Path(site, year)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTableNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	records, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return model.NewTable(site, year, records), nil
}

// ReadCSV decodes a profile export. The first row is the header; the columns
// named "1","3","5","7","9","11" must be present.
func ReadCSV(r io.Reader) ([]model.CycleRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrSchema)
		}
		return nil, fmt.Errorf("%w: header: %w", ErrSchema, err)
	}
	var pos [6]int
	for i, name := range timestampColumns {
		pos[i] = -1
		for j, h := range header {
			if strings.TrimSpace(h) == name {
				pos[i] = j
				break
			}
		}
		if pos[i] < 0 {
			return nil, fmt.Errorf("%w: missing column %q", ErrSchema, name)
		}
	}

	var out []model.CycleRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedRow, line, err)
		}
		var ts [6]time.Time
		for i, p := range pos {
			if p >= len(row) {
				return nil, fmt.Errorf("%w: line %d: missing column %q", ErrMalformedRow, line, timestampColumns[i])
			}
			t, err := parseTimestamp(row[p])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %q: %w", ErrMalformedRow, line, timestampColumns[i], err)
			}
			ts[i] = t
		}
		out = append(out, model.CycleRecord{
			AscentStart:  ts[0],
			AscentEnd:    ts[1],
			DescentStart: ts[2],
			DescentEnd:   ts[3],
			RestStart:    ts[4],
			RestEnd:      ts[5],
		})
	}
	return out, nil
}

// WriteCSV encodes t in the 12-column export layout read by ReadCSV. Even
// columns carry the running sample index of each phase boundary.
func WriteCSV(w io.Writer, t *model.Table) error {
	cw := csv.NewWriter(w)
	header := make([]string, csvColumns)
	for i := range header {
		header[i] = strconv.Itoa(i)
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	row := make([]string, csvColumns)
	for i, r := range t.Records() {
		ts := [6]time.Time{r.AscentStart, r.AscentEnd, r.DescentStart, r.DescentEnd, r.RestStart, r.RestEnd}
		for j, v := range ts {
			row[2*j] = strconv.Itoa(i*6 + j)
			row[2*j+1] = v.UTC().Format(timestampLayouts[0])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

func loadResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTableNotFound):
		return "not_found"
	case errors.Is(err, ErrSchema):
		return "schema"
	case errors.Is(err, ErrMalformedRow):
		return "malformed"
	default:
		return "error"
	}
}

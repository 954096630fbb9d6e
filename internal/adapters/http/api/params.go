package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/profilemeta/internal/domain/calendar"
)

func required(q url.Values, name string) (string, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingParam, name)
	}
	return v, nil
}

// siteYear reads the site and year parameters shared by table queries.
func siteYear(q url.Values) (string, int, error) {
	site, err := required(q, "site")
	if err != nil {
		return "", 0, err
	}
	ys, err := required(q, "year")
	if err != nil {
		return "", 0, err
	}
	year, err := strconv.Atoi(ys)
	if err != nil {
		return "", 0, fmt.Errorf("%w: year %q", ErrBadRequest, ys)
	}
	return site, year, nil
}

func dateParam(q url.Values, name string) (time.Time, error) {
	v, err := required(q, name)
	if err != nil {
		return time.Time{}, err
	}
	d, err := calendar.ParseDate(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %w", ErrBadRequest, name, err)
	}
	return d, nil
}

func minutesParam(q url.Values, name string) (time.Duration, error) {
	v, err := required(q, name)
	if err != nil {
		return 0, err
	}
	d, err := calendar.ParseMinutes(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrBadRequest, name, err)
	}
	return d, nil
}

// instantParam accepts RFC 3339 or a bare YYYY-MM-DD (midnight UTC).
func instantParam(q url.Values, name string) (time.Time, error) {
	v, err := required(q, name)
	if err != nil {
		return time.Time{}, err
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	d, err := calendar.ParseDate(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be RFC3339 or YYYY-MM-DD", ErrBadRequest, name)
	}
	return d, nil
}

func floatParam(q url.Values, name string) (float64, error) {
	v, err := required(q, name)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrBadRequest, name, v)
	}
	return f, nil
}

func intParamDefault(q url.Values, name string, def int) (int, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrBadRequest, name, v)
	}
	return n, nil
}

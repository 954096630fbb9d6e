// Package source loads per-site, per-year profile metadata tables from
// persistent storage.
package source

import (
	"context"
	"fmt"

	"github.com/okian/profilemeta/internal/config"
	"github.com/okian/profilemeta/internal/domain/model"
)

// Loader returns the immutable table for one site-year.
type Loader interface {
	Load(ctx context.Context, site string, year int) (*model.Table, error)
}

// Closer is implemented by loaders that hold resources.
type Closer interface {
	Close() error
}

// New builds the loader selected by cfg, wrapped in a read-through cache
// when a cache TTL is configured.
func New(ctx context.Context, cfg *config.Config) (Loader, error) {
	var base Loader
	switch cfg.Source {
	case config.SourceCSV:
		base = NewCSVSource(cfg.ProfilesDir)
	case config.SourceSQLite:
		s, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		base = s
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Source)
	}
	if ttl := cfg.CacheTTL(); ttl > 0 {
		return NewCachedSource(base, WithTTL(ttl)), nil
	}
	return base, nil
}

// Close releases the resources of l if it holds any.
func Close(l Loader) error {
	if c, ok := l.(Closer); ok {
		return c.Close()
	}
	return nil
}

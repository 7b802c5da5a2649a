package registry

import (
	"context"
	"fmt"
)

// Source kinds.
const (
	KindManifest = "manifest"
	KindDatabase = "database"
)

// SourceConfig selects and configures a metadata source.
type SourceConfig struct {
	Kind     string `mapstructure:"kind"`
	Manifest string `mapstructure:"manifest"`
	Driver   string `mapstructure:"driver"`
	DSN      string `mapstructure:"dsn"`
}

// Open opens the configured source. The returned close function is never nil.
func Open(ctx context.Context, cfg SourceConfig) (Source, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Kind {
	case "", KindManifest:
		if cfg.Manifest == "" {
			return nil, noop, fmt.Errorf("manifest source requires a manifest path")
		}
		mem, err := LoadManifest(cfg.Manifest)
		if err != nil {
			return nil, noop, err
		}
		return mem, noop, nil

	case KindDatabase:
		src, err := OpenDatabase(ctx, cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, noop, err
		}
		return src, src.Close, nil

	default:
		return nil, noop, fmt.Errorf("%w: %q (expected %q or %q)", ErrUnknownSourceKind, cfg.Kind, KindManifest, KindDatabase)
	}
}

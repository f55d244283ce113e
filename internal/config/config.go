// Package config loads runtime configuration from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
)

// Config holds the server's runtime settings. Catalogs themselves are not
// configuration knobs: a standard version is a file (or the embedded
// default), loaded once and immutable.
type Config struct {
	// DataDir holds the SQLite database. Empty means ~/.recert.
	DataDir string `env:"RECERT_DATA_DIR"`
	// CatalogPath points at a catalog YAML. Empty means the embedded
	// default catalog.
	CatalogPath string `env:"RECERT_CATALOG_PATH"`
	// DebounceWindow coalesces bursts of answer-driven recomputation before
	// persisting. Purely a performance knob; recomputation is idempotent.
	DebounceWindow time.Duration `env:"RECERT_DEBOUNCE_WINDOW" envDefault:"500ms"`
	// LogJSON switches stderr logging to JSON.
	LogJSON bool `env:"RECERT_LOG_JSON"`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "parsing environment")
	}
	return cfg, nil
}

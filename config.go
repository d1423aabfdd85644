package cache

import (
	"io"
	"time"

	"github.com/jmgilman/go/errors"
	"gopkg.in/yaml.v3"
)

// Defaults for a cache sized for a moderate number of rendered images/documents.
const (
	DefaultMaxEntries    = 1000
	DefaultTTL           = time.Hour
	DefaultMaxEntryBytes = 100 << 20 // 100 MiB
	DefaultSweepInterval = time.Minute
)

// Config is fixed for the cache's lifetime.
type Config struct {
	// MaxEntries bounds the entry count.
	MaxEntries int `yaml:"max_entries"`

	// TTL is measured from insertion. Reads never extend it.
	TTL time.Duration `yaml:"ttl"`

	// MaxEntryBytes is the Size Guard limit for a single payload.
	MaxEntryBytes int64 `yaml:"max_entry_bytes"`

	// MaxTotalBytes bounds the sum of resident payloads. 0 means unbounded
	// (tracked for MemoryUsage only).
	MaxTotalBytes int64 `yaml:"max_total_bytes"`

	// SweepInterval is the period of the background expiry sweep.
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	return Config{
		MaxEntries:    DefaultMaxEntries,
		TTL:           DefaultTTL,
		MaxEntryBytes: DefaultMaxEntryBytes,
		SweepInterval: DefaultSweepInterval,
	}
}

// Validate checks every field and returns an INVALID_CONFIGURATION error for the first bad one.
func (c Config) Validate() error {
	switch {
	case c.MaxEntries <= 0:
		return invalidConfig("max_entries", c.MaxEntries, "must be positive")
	case c.TTL <= 0:
		return invalidConfig("ttl", c.TTL.String(), "must be positive")
	case c.MaxEntryBytes <= 0:
		return invalidConfig("max_entry_bytes", c.MaxEntryBytes, "must be positive")
	case c.MaxTotalBytes < 0:
		return invalidConfig("max_total_bytes", c.MaxTotalBytes, "must not be negative")
	case c.SweepInterval <= 0:
		return invalidConfig("sweep_interval", c.SweepInterval.String(), "must be positive")
	}
	return nil
}

// LoadConfig decodes YAML over DefaultConfig, so omitted fields keep their defaults.
// Durations use Go syntax ("90s", "1h").
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrap(err, errors.CodeInvalidConfig, "failed to decode cache config")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

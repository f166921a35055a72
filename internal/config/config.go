// Package config loads runtime tuning parameters from a TOML file into a
// flat settings struct.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config holds the tunable thresholds that govern detection, dictionary
// admission, and concurrency.
type Config struct {
	CtxFallbackThreshold float64 `toml:"ctx_fallback_threshold"`
	HashmapThreshold     int     `toml:"hashmap_threshold"`
	MinPatternLength     int     `toml:"min_pattern_length"`
	MaxRangeExpansion    int64   `toml:"max_range_expansion"`
	MaxDictionaryEntries int     `toml:"max_dictionary_entries"`
	MaxInputSize         int64   `toml:"max_input_size"`
	EnumMaxCardinality   int     `toml:"enum_max_cardinality"`
	ParallelThreshold    int     `toml:"parallel_threshold"`

	// Pretty and Lenient are CLI/parser behaviors, not compression
	// thresholds. The compress command reads Pretty; Lenient is loaded but
	// not read anywhere (the CLI parses with parse.DefaultOptions()).
	Pretty  bool `toml:"pretty"`
	Lenient bool `toml:"lenient"`
}

// Default returns the built-in defaults applied before any TOML overlay.
func Default() Config {
	return Config{
		CtxFallbackThreshold: 0.95,
		HashmapThreshold:     64,
		MinPatternLength:     3,
		MaxRangeExpansion:    1_000_000_000,
		MaxDictionaryEntries: 65536,
		MaxInputSize:         1 << 30, // 1 GiB
		EnumMaxCardinality:   16,
		ParallelThreshold:    10_000,
	}
}

// Load reads a TOML file at path and overlays it on top of Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("loading config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects zero/negative thresholds (parallel_threshold may be 0)
// and contradictory settings.
func (c Config) Validate() error {
	if c.CtxFallbackThreshold <= 0 {
		return fmt.Errorf("ctx_fallback_threshold must be positive, got %v", c.CtxFallbackThreshold)
	}
	if c.HashmapThreshold <= 0 {
		return fmt.Errorf("hashmap_threshold must be positive, got %d", c.HashmapThreshold)
	}
	if c.MinPatternLength < 1 {
		return fmt.Errorf("min_pattern_length must be >= 1, got %d", c.MinPatternLength)
	}
	if c.MaxRangeExpansion <= 0 {
		return fmt.Errorf("max_range_expansion must be positive, got %d", c.MaxRangeExpansion)
	}
	if c.MaxDictionaryEntries <= 0 {
		return fmt.Errorf("max_dictionary_entries must be positive, got %d", c.MaxDictionaryEntries)
	}
	if c.MaxInputSize <= 0 {
		return fmt.Errorf("max_input_size must be positive, got %d", c.MaxInputSize)
	}
	if c.EnumMaxCardinality < 1 {
		return fmt.Errorf("enum_max_cardinality must be >= 1, got %d", c.EnumMaxCardinality)
	}
	if c.MaxDictionaryEntries < c.EnumMaxCardinality {
		return fmt.Errorf("max_dictionary_entries (%d) must be >= enum_max_cardinality (%d)", c.MaxDictionaryEntries, c.EnumMaxCardinality)
	}
	if c.ParallelThreshold < 0 {
		return fmt.Errorf("parallel_threshold must be >= 0, got %d", c.ParallelThreshold)
	}
	return nil
}

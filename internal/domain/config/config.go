// Package config provides the engine-facing WorkloadConfig schema: a
// builder-constructed, typed parameter bag with parse-on-access accessors
// and diagnostic validation.
// Implements: spec.md §6 (Workload configuration)
package config

import (
	"fmt"
	"strconv"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultIterations is used when a builder omits Iterations.
	DefaultIterations = 1000
	// DefaultWarmupIterations is used when a builder omits WarmupIterations.
	DefaultWarmupIterations = 100
	// RequiredConcurrency is the only value Concurrency is currently
	// allowed to take - spec.md §4.7, "must be 1 in this release".
	RequiredConcurrency = 1
)

// WorkloadConfig is the engine-facing configuration for one workload run.
// Construct via NewWorkloadConfig, which applies the documented defaults;
// Validate before use.
type WorkloadConfig struct {
	Name             string
	Iterations       int
	WarmupIterations int
	Seed             *int64
	Concurrency      int
	Params           map[string]string
}

// NewWorkloadConfig returns a WorkloadConfig for name with spec.md's
// documented defaults (iterations=1000, warmup_iterations=100,
// concurrency=1) and an empty parameter map.
func NewWorkloadConfig(name string) WorkloadConfig {
	return WorkloadConfig{
		Name:             name,
		Iterations:       DefaultIterations,
		WarmupIterations: DefaultWarmupIterations,
		Concurrency:      RequiredConcurrency,
		Params:           make(map[string]string),
	}
}

// WithSeed returns a copy of c with an explicit 64-bit seed set.
func (c WorkloadConfig) WithSeed(seed int64) WorkloadConfig {
	c.Seed = &seed
	return c
}

// WithParam returns a copy of c with key set to value in its parameter
// map, preserving the other entries.
func (c WorkloadConfig) WithParam(key, value string) WorkloadConfig {
	cp := make(map[string]string, len(c.Params)+1)
	for k, v := range c.Params {
		cp[k] = v
	}
	cp[key] = value
	c.Params = cp
	return c
}

// Validate reports human-readable diagnostic strings; an empty slice
// means the configuration is valid. Entries prefixed "warning: " are
// advisory only and do not make the configuration invalid
// (Orchestrator.Run logs them and proceeds). Matches the teacher's
// diagnostics-list convention rather than a single error.
func (c WorkloadConfig) Validate() []string {
	var diags []string
	if c.Name == "" {
		diags = append(diags, "name must not be blank")
	}
	if c.Iterations <= 0 {
		diags = append(diags, "iterations must be positive")
	}
	if c.WarmupIterations < 0 {
		diags = append(diags, "warmup_iterations must not be negative")
	}
	if c.WarmupIterations > c.Iterations {
		// Soft warning per spec.md §6, not a hard validation failure;
		// still surfaced as a diagnostic string for visibility.
		diags = append(diags, "warning: warmup_iterations exceeds iterations")
	}
	if c.Concurrency != RequiredConcurrency {
		diags = append(diags, fmt.Sprintf("concurrency must be %d in this release, got %d", RequiredConcurrency, c.Concurrency))
	}
	return diags
}

// IntParam parses Params[key] as an int, returning ok=false if the key is
// absent or unparsable.
func (c WorkloadConfig) IntParam(key string) (int, bool) {
	raw, ok := c.Params[key]
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// IntParamOrDefault is IntParam with a fallback default.
func (c WorkloadConfig) IntParamOrDefault(key string, def int) int {
	if v, ok := c.IntParam(key); ok {
		return v
	}
	return def
}

// StringParam returns Params[key] and whether it was present.
func (c WorkloadConfig) StringParam(key string) (string, bool) {
	v, ok := c.Params[key]
	return v, ok
}

// StringParamOrDefault is StringParam with a fallback default.
func (c WorkloadConfig) StringParamOrDefault(key, def string) string {
	if v, ok := c.StringParam(key); ok {
		return v
	}
	return def
}

// FloatParam parses Params[key] as a float64.
func (c WorkloadConfig) FloatParam(key string) (float64, bool) {
	raw, ok := c.Params[key]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FloatParamOrDefault is FloatParam with a fallback default.
func (c WorkloadConfig) FloatParamOrDefault(key string, def float64) float64 {
	if v, ok := c.FloatParam(key); ok {
		return v
	}
	return def
}

// BoolParam parses Params[key] as a bool.
func (c WorkloadConfig) BoolParam(key string) (bool, bool) {
	raw, ok := c.Params[key]
	if !ok {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// BoolParamOrDefault is BoolParam with a fallback default.
func (c WorkloadConfig) BoolParamOrDefault(key string, def bool) bool {
	if v, ok := c.BoolParam(key); ok {
		return v
	}
	return def
}

// ListParam splits Params[key] on commas; an absent key returns ok=false.
func (c WorkloadConfig) ListParam(key string) ([]string, bool) {
	raw, ok := c.Params[key]
	if !ok {
		return nil, false
	}
	return splitNonEmpty(raw, ','), true
}

// ListParamOrDefault is ListParam with a fallback default.
func (c WorkloadConfig) ListParamOrDefault(key string, def []string) []string {
	if v, ok := c.ListParam(key); ok {
		return v
	}
	return def
}

func splitNonEmpty(s string, sep byte) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

// tomlWorkloadConfig mirrors WorkloadConfig's shape for TOML decoding,
// since the engine type uses a pointer Seed field and a flat Params map
// that do not map directly onto TOML's type system.
type tomlWorkloadConfig struct {
	Name             string            `toml:"name"`
	Iterations       int               `toml:"iterations"`
	WarmupIterations int               `toml:"warmup_iterations"`
	Seed             int64             `toml:"seed"`
	Concurrency      int               `toml:"concurrency"`
	Params           map[string]string `toml:"params"`
}

// DecodeTOML parses a TOML document into a WorkloadConfig, applying
// NewWorkloadConfig's defaults for any field the document omits. Treats
// the teacher pack's TOML-as-settings-format convention as applicable
// here even though config *file loading* is out of scope (spec.md §1);
// this is a parsing convenience for already-read bytes, not a loader.
func DecodeTOML(data []byte) (WorkloadConfig, error) {
	var raw tomlWorkloadConfig
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return WorkloadConfig{}, fmt.Errorf("config: decoding TOML: %w", err)
	}

	cfg := NewWorkloadConfig(raw.Name)
	if md.IsDefined("iterations") {
		cfg.Iterations = raw.Iterations
	}
	if md.IsDefined("warmup_iterations") {
		cfg.WarmupIterations = raw.WarmupIterations
	}
	if md.IsDefined("seed") {
		cfg = cfg.WithSeed(raw.Seed)
	}
	if md.IsDefined("concurrency") {
		cfg.Concurrency = raw.Concurrency
	}
	for k, v := range raw.Params {
		cfg = cfg.WithParam(k, v)
	}
	return cfg, nil
}

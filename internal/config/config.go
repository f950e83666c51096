// Package config holds the typed memory configuration and the CLI
// application settings.
package config

import (
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/rcliao/agent-recall/internal/lang"
)

// Strategy selects how working memory overflow is resolved.
type Strategy string

const (
	TruncateOld Strategy = "truncate_old"
	TruncateNew Strategy = "truncate_new"
	Reject      Strategy = "reject"
	Compress    Strategy = "compress"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case TruncateOld, TruncateNew, Reject, Compress:
		return true
	}
	return false
}

// Defaults for Memory.
const (
	DefaultMemoryLimit = 2000
	DefaultMaxVersions = 3
)

// Memory is the per-call configuration of a profile's memory.
type Memory struct {
	MemoryLimit     int      `mapstructure:"memory_limit" yaml:"memory_limit" validate:"gt=0"`
	AutoCleanup     bool     `mapstructure:"auto_cleanup" yaml:"auto_cleanup"`
	CleanupStrategy Strategy `mapstructure:"cleanup_strategy" yaml:"cleanup_strategy"`

	// Accepted for compatibility; versioning is not performed.
	EnableVersioning bool `mapstructure:"enable_versioning" yaml:"enable_versioning"`
	MaxVersions      int  `mapstructure:"max_versions" yaml:"max_versions" validate:"gte=0"`

	Languages map[string]lang.Override `mapstructure:"languages" yaml:"languages,omitempty"`
}

// DefaultMemory returns the configuration used when a key is absent.
func DefaultMemory() Memory {
	return Memory{
		MemoryLimit:     DefaultMemoryLimit,
		AutoCleanup:     true,
		CleanupStrategy: TruncateOld,
		MaxVersions:     DefaultMaxVersions,
	}
}

var validate = validator.New()

// Validate checks field constraints.
func (m Memory) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("invalid memory config: %w", err)
	}
	return nil
}

// normalize replaces an unknown strategy with TruncateOld.
func (m *Memory) normalize(logger *slog.Logger) {
	if m.CleanupStrategy == "" {
		m.CleanupStrategy = TruncateOld
		return
	}
	if !m.CleanupStrategy.Valid() {
		logger.Warn("unknown cleanup strategy, using truncate_old", "strategy", string(m.CleanupStrategy))
		m.CleanupStrategy = TruncateOld
	}
}

// FromMap decodes a plain key/value map on top of DefaultMemory.
// Values are weakly typed, so "2000" and 2000 are both accepted for memory_limit.
func FromMap(raw map[string]any) (Memory, error) {
	m := DefaultMemory()
	if len(raw) > 0 {
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &m,
		})
		if err != nil {
			return Memory{}, fmt.Errorf("build decoder: %w", err)
		}
		if err := dec.Decode(raw); err != nil {
			return Memory{}, fmt.Errorf("decode memory config: %w", err)
		}
	}
	m.normalize(slog.Default())
	if err := m.Validate(); err != nil {
		return Memory{}, err
	}
	return m, nil
}

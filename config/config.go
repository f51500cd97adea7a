package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/code4ward/JSOI/template"
	"github.com/code4ward/JSOI/tree"
)

// EnvPrefix starts every environment variable read by LoadFromEnv.
const EnvPrefix = "JSOI_"

// Config holds interpolation settings.
type Config struct {
	// TrackEnclosures keeps "}}" inside single-brace groups from closing a tag.
	TrackEnclosures bool `json:"track_enclosures" yaml:"track_enclosures" toml:"track_enclosures" mapstructure:"track_enclosures" jsonschema:"default=true"`

	// PreserveTypes lets a value made of exactly one tag take the native
	// type of what it resolved to.
	PreserveTypes bool `json:"preserve_types" yaml:"preserve_types" toml:"preserve_types" mapstructure:"preserve_types" jsonschema:"default=true"`

	// NotFound is the policy for unknown keys: "none", "delete" or "throw".
	NotFound string `json:"not_found" yaml:"not_found" toml:"not_found" mapstructure:"not_found" jsonschema:"enum=none,enum=delete,enum=throw,default=none"`

	// Duplicate deep-copies a tree before interpolating it.
	Duplicate bool `json:"duplicate" yaml:"duplicate" toml:"duplicate" mapstructure:"duplicate"`

	// Separator turns sibling lookups into path queries split on it.
	// Empty means flat lookups.
	Separator string `json:"separator" yaml:"separator" toml:"separator" mapstructure:"separator"`

	// StrictQuoting rejects bare identifiers as function arguments.
	StrictQuoting bool `json:"strict_quoting" yaml:"strict_quoting" toml:"strict_quoting" mapstructure:"strict_quoting"`

	// MaxRounds bounds repeated tree walks when converging.
	MaxRounds int `json:"max_rounds" yaml:"max_rounds" toml:"max_rounds" mapstructure:"max_rounds" jsonschema:"minimum=0,default=10"`

	// LogLevel is "debug", "info", "warn" or "error".
	LogLevel string `json:"log_level" yaml:"log_level" toml:"log_level" mapstructure:"log_level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,default=info"`

	// SettleTimeout bounds the wait for one batch of deferred values.
	// 0 waits as long as the caller's context allows.
	SettleTimeout time.Duration `json:"settle_timeout" yaml:"settle_timeout" toml:"settle_timeout" mapstructure:"settle_timeout"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		TrackEnclosures: true,
		PreserveTypes:   true,
		NotFound:        tree.ActionNone.String(),
		MaxRounds:       tree.DefaultMaxRounds,
		LogLevel:        "info",
	}
}

// LoadFromEnv overrides fields from JSOI_ environment variables. Values
// that fail to parse are ignored; Validate reports the rest.
//
// Supported variables:
//   - JSOI_TRACK_ENCLOSURES, JSOI_PRESERVE_TYPES, JSOI_DUPLICATE,
//     JSOI_STRICT_QUOTING: booleans
//   - JSOI_NOT_FOUND: none, delete or throw
//   - JSOI_SEPARATOR: query path separator
//   - JSOI_MAX_ROUNDS: integer
//   - JSOI_LOG_LEVEL: debug, info, warn or error
//   - JSOI_SETTLE_TIMEOUT: duration (e.g., "5s")
func (c *Config) LoadFromEnv() {
	envBool("TRACK_ENCLOSURES", &c.TrackEnclosures)
	envBool("PRESERVE_TYPES", &c.PreserveTypes)
	envBool("DUPLICATE", &c.Duplicate)
	envBool("STRICT_QUOTING", &c.StrictQuoting)
	if v := os.Getenv(EnvPrefix + "NOT_FOUND"); v != "" {
		c.NotFound = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "SEPARATOR"); ok {
		c.Separator = v
	}
	if v := os.Getenv(EnvPrefix + "MAX_ROUNDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRounds = n
		}
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvPrefix + "SETTLE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.SettleTimeout = d
		}
	}
}

func envBool(name string, dst *bool) {
	if v := os.Getenv(EnvPrefix + name); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// FromEnv returns Default overridden by the environment.
func FromEnv() Config {
	cfg := Default()
	cfg.LoadFromEnv()
	return cfg
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if _, err := tree.ParseAction(c.NotFound); err != nil {
		return fmt.Errorf("%w: not_found: %w", ErrInvalid, err)
	}
	if c.MaxRounds < 0 {
		return fmt.Errorf("%w: max_rounds must be >= 0, got %d", ErrInvalid, c.MaxRounds)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrInvalid, err)
	}
	if c.SettleTimeout < 0 {
		return fmt.Errorf("%w: settle_timeout must be >= 0, got %v", ErrInvalid, c.SettleTimeout)
	}
	return nil
}

// Action returns the not-found policy. Invalid values yield ActionNone.
func (c *Config) Action() tree.Action {
	a, _ := tree.ParseAction(c.NotFound)
	return a
}

// Level returns the log level. Invalid values yield slog.LevelInfo.
func (c *Config) Level() slog.Level {
	l, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	err := l.UnmarshalText([]byte(strings.TrimSpace(s)))
	return l, err
}

// TreeOptions converts the configuration to tree options. extra options
// are appended and win.
func (c *Config) TreeOptions(extra ...tree.Option) []tree.Option {
	opts := []tree.Option{
		tree.WithEnclosureTracking(c.TrackEnclosures),
		tree.WithTypePreservation(c.PreserveTypes),
		tree.WithNotFoundAction(c.Action()),
		tree.WithDuplicate(c.Duplicate),
		tree.WithSeparator(c.Separator),
		tree.WithStrictQuoting(c.StrictQuoting),
		tree.WithSettleTimeout(c.SettleTimeout),
	}
	return append(opts, extra...)
}

// TemplateOptions converts the configuration to string engine options.
// extra options are appended and win.
func (c *Config) TemplateOptions(extra ...template.Option) []template.Option {
	opts := []template.Option{
		template.WithEnclosureTracking(c.TrackEnclosures),
		template.WithTypePreservation(c.PreserveTypes),
		template.WithStrictQuoting(c.StrictQuoting),
		template.WithSettleTimeout(c.SettleTimeout),
	}
	return append(opts, extra...)
}

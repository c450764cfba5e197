// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package config resolves fileex settings from defaults, an optional YAML
// file and environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/jongio/fileex/fileutil"
	"github.com/jongio/fileex/logutil"
	"github.com/jongio/fileex/security"
)

// Environment variable names.
const (
	EnvReadLimit   = "FILEEX_READ_LIMIT"
	EnvLogFormat   = "FILEEX_LOG_FORMAT"
	EnvLogLevel    = "FILEEX_LOG_LEVEL"
	EnvAllowedDirs = "FILEEX_ALLOWED_DIRS"
)

const (
	// ConfigDir is the directory name under the user config directory.
	ConfigDir = "fileex"
	// ConfigFile is the config file name.
	ConfigFile = "config.yaml"

	// maxConfigSize bounds the config file read.
	maxConfigSize = 1 << 20
)

// Log formats.
const (
	LogFormatText = logutil.FormatText
	LogFormatJSON = logutil.FormatJSON
)

var (
	// ErrInvalidConfig is wrapped by every validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config holds all settings.
type Config struct {
	// ReadLimit is the largest file a read accepts.
	ReadLimit ByteSize `yaml:"read_limit"`
	// WriteSync flushes writes to stable storage before returning.
	WriteSync bool `yaml:"write_sync"`
	// Debug forces debug logging regardless of LogLevel.
	Debug     bool   `yaml:"debug"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	MCP       MCP    `yaml:"mcp"`
}

// MCP holds settings for the MCP tool server.
type MCP struct {
	// AllowedDirs confines tool paths. Empty means unrestricted.
	AllowedDirs []string `yaml:"allowed_dirs"`
	// RateLimit is the sustained tool calls per second; Burst the bucket size.
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`
	// BreakerFailures consecutive I/O failures open the circuit for BreakerTimeout.
	BreakerFailures uint32        `yaml:"breaker_failures"`
	BreakerTimeout  time.Duration `yaml:"breaker_timeout"`
	// MetricsPort serves /metrics when non-zero.
	MetricsPort int `yaml:"metrics_port"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ReadLimit: ByteSize(fileutil.DefaultReadLimit),
		LogLevel:  "info",
		LogFormat: LogFormatText,
		MCP: MCP{
			RateLimit:       10,
			Burst:           20,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
	}
}

// DefaultPath returns the default config file location
// (e.g. ~/.config/fileex/config.yaml on Linux).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, ConfigDir, ConfigFile), nil
}

// Load builds the configuration. Values from the YAML file at path override
// defaults, and environment variables override the file.
//
// An empty path means DefaultPath; a missing default file is not an error,
// a missing explicit file is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			logutil.Debug("no default config path", "error", err)
		}
		path = p
	}

	if path != "" {
		if err := cfg.loadFile(path, explicit); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string, explicit bool) error {
	data, err := fileutil.ReadBinaryFile(path, fileutil.WithReadLimit(maxConfigSize))
	if err != nil {
		if !explicit && errors.Is(err, fileutil.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := security.ValidateFilePermissions(path); errors.Is(err, security.ErrInsecureFilePermissions) {
		logutil.Warn("config file is writable by other users", "path", path)
	}

	// Present keys overwrite defaults, missing keys leave them untouched.
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	logutil.Debug("loaded config file", "path", path)
	return nil
}

// applyEnv overlays environment variables using lookup (os.LookupEnv in production).
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvReadLimit); ok && v != "" {
		size, err := ParseByteSize(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvReadLimit, err)
		}
		c.ReadLimit = size
	}
	if v, ok := lookup(logutil.EnvDebug); ok && v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %q is not a boolean", ErrInvalidConfig, logutil.EnvDebug, v)
		}
		c.Debug = debug
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.LogFormat = strings.ToLower(v)
	}
	if v, ok := lookup(EnvAllowedDirs); ok && v != "" {
		c.MCP.AllowedDirs = filepath.SplitList(v)
	}
	return nil
}

// Validate checks the configuration for values no component can run with.
func (c *Config) Validate() error {
	if c.ReadLimit <= 0 {
		return fmt.Errorf("%w: read_limit must be positive", ErrInvalidConfig)
	}
	if _, err := logutil.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrInvalidConfig, err)
	}
	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("%w: log_format %q (valid options: text, json)", ErrInvalidConfig, c.LogFormat)
	}
	if c.MCP.RateLimit <= 0 {
		return fmt.Errorf("%w: mcp.rate_limit must be positive", ErrInvalidConfig)
	}
	if c.MCP.Burst < 1 {
		return fmt.Errorf("%w: mcp.burst must be at least 1", ErrInvalidConfig)
	}
	if c.MCP.BreakerFailures == 0 {
		return fmt.Errorf("%w: mcp.breaker_failures must be at least 1", ErrInvalidConfig)
	}
	if c.MCP.MetricsPort < 0 || c.MCP.MetricsPort > 65535 {
		return fmt.Errorf("%w: mcp.metrics_port %d out of range", ErrInvalidConfig, c.MCP.MetricsPort)
	}
	return nil
}

// Level returns the log level to run with. Debug wins over LogLevel.
// Call it on a validated config.
func (c *Config) Level() slog.Level {
	if c.Debug {
		return slog.LevelDebug
	}
	level, _ := logutil.ParseLevel(c.LogLevel)
	return level
}

// ReadOptions returns the fileutil options for reads.
func (c *Config) ReadOptions() []fileutil.Option {
	return []fileutil.Option{fileutil.WithReadLimit(int64(c.ReadLimit))}
}

// WriteOptions returns the fileutil options for writes.
func (c *Config) WriteOptions() []fileutil.Option {
	if c.WriteSync {
		return []fileutil.Option{fileutil.WithSync()}
	}
	return nil
}

// ByteSize is a byte count that unmarshals from "64MiB", "1GB" or a plain integer.
type ByteSize int64

// ParseByteSize parses a human-readable size.
func ParseByteSize(s string) (ByteSize, error) {
	n, err := humanize.ParseBytes(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: size %q: %w", ErrInvalidConfig, s, err)
	}
	if n > uint64(1<<62) {
		return 0, fmt.Errorf("%w: size %q is too large", ErrInvalidConfig, s)
	}
	return ByteSize(n), nil
}

// String formats the size with IEC units, e.g. "32 MiB".
func (b ByteSize) String() string {
	if b < 0 {
		return strconv.FormatInt(int64(b), 10)
	}
	return humanize.IBytes(uint64(b))
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *ByteSize) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	size, err := ParseByteSize(s)
	if err != nil {
		return err
	}
	*b = size
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (b ByteSize) MarshalYAML() (interface{}, error) {
	return b.String(), nil
}

// Package config handles ebsconn configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/erpsync/ebsconn/internal/diag"
	"github.com/erpsync/ebsconn/internal/store"
)

// Environment variables that override the config file.
const (
	EnvDSN      = "EBSCONN_DSN"
	EnvDriver   = "EBSCONN_DRIVER"
	EnvLogLevel = "EBSCONN_LOG_LEVEL"
)

// Config represents the connector configuration.
type Config struct {
	Database  DatabaseConfig  `toml:"database"`
	Connector ConnectorConfig `toml:"connector"`
	Log       LogConfig       `toml:"log"`
	Audit     AuditConfig     `toml:"audit"`
	UI        UIConfig        `toml:"ui"`
}

// DatabaseConfig locates the ERP database.
type DatabaseConfig struct {
	// Driver is the database/sql driver name: "sqlite" or "postgres".
	Driver string `toml:"driver"`

	DSN string `toml:"dsn"`

	// Dialect selects SQL generation ("sqlite", "postgres", "oracle").
	// Defaults to the driver name.
	Dialect string `toml:"dialect"`
}

// ConnectorConfig controls how objects are resolved.
type ConnectorConfig struct {
	// NewResponsibilityViews reads the split direct/indirect assignment views
	// instead of the combined legacy table.
	NewResponsibilityViews bool `toml:"new_responsibility_views"`

	// ActiveOnly is the default for searches that do not set --active-only.
	ActiveOnly bool `toml:"active_only"`

	// SchemaFile is an optional YAML schema overlay.
	SchemaFile string `toml:"schema_file"`
}

// LogConfig configures the diagnostic logger.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// AuditConfig controls the append-only record of connector reads.
type AuditConfig struct {
	Enabled bool `toml:"enabled"`

	// Path of the JSONL log. Defaults to audit.log next to the config file.
	Path string `toml:"path"`
}

// AuditPath returns the audit log location for a config loaded from
// configPath, or "" when auditing is off.
func (c *Config) AuditPath(configPath string) string {
	if !c.Audit.Enabled {
		return ""
	}
	if c.Audit.Path != "" {
		return c.Audit.Path
	}
	return filepath.Join(filepath.Dir(configPath), "audit.log")
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an optional accent color: ANSI code ("0" to "255") or "#RRGGBB".
	Accent string `toml:"accent"`

	// CodeTheme sets the Glamour/Chroma theme used for rendered markdown.
	CodeTheme string `toml:"code_theme"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Driver: "sqlite"},
		Log:      LogConfig{Level: "info", Format: diag.FormatText},
	}
}

// Load loads the configuration from the default location.
// Returns a default config if the file doesn't exist.
func Load() (*Config, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Default(), nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from a specific path. Unset keys keep
// their defaults.
func LoadFrom(path string) (*Config, error) {
	config := Default()
	md, err := toml.DecodeFile(path, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys in config %s: %s", path, strings.Join(keys, ", "))
	}

	// Relative file settings are relative to the config file.
	if sf := config.Connector.SchemaFile; sf != "" && !filepath.IsAbs(sf) {
		config.Connector.SchemaFile = filepath.Join(filepath.Dir(path), sf)
	}
	if ap := config.Audit.Path; ap != "" && !filepath.IsAbs(ap) {
		config.Audit.Path = filepath.Join(filepath.Dir(path), ap)
	}
	return config, nil
}

// LoadEnv loads .env files into the process environment, then applies the
// environment overrides to c. Missing .env files are ignored; variables
// already set in the environment win over the files.
func (c *Config) LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	c.ApplyEnv(os.LookupEnv)
	return nil
}

// ApplyEnv overrides settings from environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvDSN); ok && v != "" {
		c.Database.DSN = v
	}
	if v, ok := lookup(EnvDriver); ok && v != "" {
		c.Database.Driver = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
}

// Dialect returns the SQL dialect for the configured database.
func (c *Config) Dialect() (store.Dialect, error) {
	name := c.Database.Dialect
	if name == "" {
		name = c.Database.Driver
	}
	return store.DialectFor(name)
}

// Validate checks that the database settings are usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("no database configured: set [database] dsn or %s", EnvDSN)
	}
	supported := false
	for _, d := range store.Drivers {
		if c.Database.Driver == d {
			supported = true
		}
	}
	if !supported {
		return fmt.Errorf("unsupported database driver %q (want one of %s)", c.Database.Driver, strings.Join(store.Drivers, ", "))
	}
	if _, err := c.Dialect(); err != nil {
		return err
	}
	return nil
}

// DefaultPath returns the default config file path.
// Checks ~/.config/ebsconn/config.toml first (XDG style),
// then falls back to OS-specific location.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "ebsconn", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "ebsconn", "config.toml")
	}

	return filepath.Join(".", "config.toml")
}

// ResolvePath returns explicit when set, else the default config path.
func ResolvePath(explicit string) string {
	if strings.TrimSpace(explicit) != "" {
		return explicit
	}
	return DefaultPath()
}

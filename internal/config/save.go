package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/erpsync/ebsconn/internal/atomicfile"
)

type persistedConfig struct {
	Database  *persistedDatabase  `toml:"database,omitempty"`
	Connector *persistedConnector `toml:"connector,omitempty"`
	Log       *persistedLog       `toml:"log,omitempty"`
	Audit     *persistedAudit     `toml:"audit,omitempty"`
	UI        *persistedUI        `toml:"ui,omitempty"`
}

type persistedDatabase struct {
	Driver  *string `toml:"driver,omitempty"`
	DSN     *string `toml:"dsn,omitempty"`
	Dialect *string `toml:"dialect,omitempty"`
}

type persistedConnector struct {
	NewResponsibilityViews bool    `toml:"new_responsibility_views"`
	ActiveOnly             bool    `toml:"active_only"`
	SchemaFile             *string `toml:"schema_file,omitempty"`
}

type persistedLog struct {
	Level  *string `toml:"level,omitempty"`
	Format *string `toml:"format,omitempty"`
}

type persistedAudit struct {
	Enabled bool    `toml:"enabled"`
	Path    *string `toml:"path,omitempty"`
}

type persistedUI struct {
	Accent    *string `toml:"accent,omitempty"`
	CodeTheme *string `toml:"code_theme,omitempty"`
}

func nonEmptyPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// SaveTo writes cfg to path atomically. Empty settings are omitted.
func SaveTo(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path is required")
	}
	if cfg == nil {
		cfg = Default()
	}

	out := persistedConfig{
		Database: &persistedDatabase{
			Driver:  nonEmptyPtr(cfg.Database.Driver),
			DSN:     nonEmptyPtr(cfg.Database.DSN),
			Dialect: nonEmptyPtr(cfg.Database.Dialect),
		},
		Connector: &persistedConnector{
			NewResponsibilityViews: cfg.Connector.NewResponsibilityViews,
			ActiveOnly:             cfg.Connector.ActiveOnly,
			SchemaFile:             nonEmptyPtr(cfg.Connector.SchemaFile),
		},
	}

	level, format := nonEmptyPtr(cfg.Log.Level), nonEmptyPtr(cfg.Log.Format)
	if level != nil || format != nil {
		out.Log = &persistedLog{Level: level, Format: format}
	}

	if cfg.Audit.Enabled || cfg.Audit.Path != "" {
		out.Audit = &persistedAudit{Enabled: cfg.Audit.Enabled, Path: nonEmptyPtr(cfg.Audit.Path)}
	}

	accent, codeTheme := nonEmptyPtr(cfg.UI.Accent), nonEmptyPtr(cfg.UI.CodeTheme)
	if accent != nil || codeTheme != nil {
		out.UI = &persistedUI{Accent: accent, CodeTheme: codeTheme}
	}

	var buf bytes.Buffer
	buf.WriteString("# ebsconn configuration\n\n")
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}

	return nil
}

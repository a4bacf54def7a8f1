// Package cli implements the command-line interface.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erpsync/ebsconn/internal/audit"
	"github.com/erpsync/ebsconn/internal/config"
	"github.com/erpsync/ebsconn/internal/diag"
	"github.com/erpsync/ebsconn/internal/schema"
	"github.com/erpsync/ebsconn/internal/store"
	"github.com/erpsync/ebsconn/internal/ui"
)

var (
	// Global flags
	configPath string
	envFiles   []string
	verbose    bool

	// Resolved values
	resolvedConfigPath string
	cfg                *config.Config
	logger             *slog.Logger
	auditLog           *audit.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ebsconn",
	Short: "ebsconn - ERP identity connector",
	Long: `ebsconn reads users, responsibility assignments and responsibility
access trees out of an ERP database.

Filters are pushed down to SQL when they can be expressed natively and are
evaluated on assembled entities otherwise.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch cmd.Name() {
		case "completion", "help", "version", "init":
			return nil
		}

		var err error
		cfg, resolvedConfigPath, err = loadConfigWithPath()
		if err != nil {
			return handleError(ErrConfigInvalid, fmt.Errorf("failed to load config: %w", err), "Check the file passed with --config")
		}
		if err := cfg.LoadEnv(envFiles...); err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}
		if verbose {
			cfg.Log.Level = "debug"
		}

		logger, err = diag.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return handleError(ErrConfigInvalid, err, "Set [log] format to text or json")
		}
		auditLog = audit.New(cfg.AuditPath(resolvedConfigPath))
		ui.ConfigureTheme(cfg.UI.Accent)
		ui.ConfigureMarkdownCodeTheme(cfg.UI.CodeTheme)
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Environment files to load (default .env)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false, "Log at debug level")
}

func loadConfigWithPath() (*config.Config, string, error) {
	resolvedPath := config.ResolvePath(configPath)

	var loaded *config.Config
	var err error
	if strings.TrimSpace(configPath) != "" {
		loaded, err = config.LoadFrom(configPath)
	} else {
		loaded, err = config.Load()
	}
	if err != nil {
		return nil, "", err
	}
	return loaded, resolvedPath, nil
}

// getConfig returns the loaded config.
func getConfig() *config.Config {
	if cfg == nil {
		return config.Default()
	}
	return cfg
}

func getLogger() *slog.Logger {
	return diag.OrDiscard(logger)
}

// recordAudit appends e to the audit log. Failures are logged, not returned.
func recordAudit(e audit.Entry, err error) {
	if err != nil {
		e.Error = err.Error()
	}
	if lerr := auditLog.Log(e); lerr != nil {
		getLogger().Warn("audit log write failed", "err", lerr)
	}
}

// loadSchema returns the configured schema, trimmed to what the configured
// assignment views can serve.
func loadSchema() (*schema.Schema, error) {
	c := getConfig()
	sc, err := schema.Load(c.Connector.SchemaFile)
	if err != nil {
		return nil, err
	}
	if !c.Connector.NewResponsibilityViews {
		sc = sc.ForLegacyViews()
	}
	return sc, nil
}

// openDatabase validates the database settings and opens a handle.
func openDatabase(ctx context.Context) (*sql.DB, store.Dialect, error) {
	c := getConfig()
	if err := c.Validate(); err != nil {
		return nil, store.Dialect{}, err
	}
	dialect, err := c.Dialect()
	if err != nil {
		return nil, store.Dialect{}, err
	}
	db, err := store.Open(ctx, c.Database.Driver, c.Database.DSN)
	if err != nil {
		return nil, store.Dialect{}, err
	}
	return db, dialect, nil
}

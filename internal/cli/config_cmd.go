package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/erpsync/ebsconn/internal/config"
	"github.com/erpsync/ebsconn/internal/ui"
)

var (
	initDSN      string
	initDriver   string
	initNewViews bool
	initForce    bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the ebsconn config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file",
	Example: `  ebsconn config init --driver postgres --dsn "postgres://apps@erp/ebs?sslmode=disable"
  ebsconn config init --config ./ebsconn.toml --driver sqlite --dsn ./erp.db --new-views`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.ResolvePath(configPath)
	if _, err := os.Stat(path); err == nil && !initForce {
		return handleErrorMsg(ErrInvalidInput,
			fmt.Sprintf("config file %s already exists", path),
			"Pass --force to overwrite it")
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return handleError(ErrConfigInvalid, err, "")
	}

	c := config.Default()
	c.Database.Driver = initDriver
	c.Database.DSN = initDSN
	c.Connector.NewResponsibilityViews = initNewViews
	if _, err := c.Dialect(); err != nil {
		return handleError(ErrInvalidInput, err, "Use --driver sqlite or --driver postgres")
	}

	if err := config.SaveTo(path, c); err != nil {
		return handleError(ErrFileWriteError, err, "")
	}

	if isJSONOutput() {
		outputSuccess(map[string]any{"path": path}, nil)
		return nil
	}
	printf("%s\n", ui.Success("wrote "+path))
	if initDSN == "" {
		printf("%s\n", ui.Hint("No DSN set; add one under [database] or export "+config.EnvDSN))
	}
	return nil
}

type configView struct {
	Path      string `json:"path"`
	Driver    string `json:"driver"`
	Dialect   string `json:"dialect"`
	DSNSet    bool   `json:"dsn_set"`
	NewViews  bool   `json:"new_responsibility_views"`
	Active    bool   `json:"active_only"`
	Schema    string `json:"schema_file,omitempty"`
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	c := getConfig()
	view := configView{
		Path:      resolvedConfigPath,
		Driver:    c.Database.Driver,
		DSNSet:    c.Database.DSN != "",
		NewViews:  c.Connector.NewResponsibilityViews,
		Active:    c.Connector.ActiveOnly,
		Schema:    c.Connector.SchemaFile,
		LogLevel:  c.Log.Level,
		LogFormat: c.Log.Format,
	}
	if d, err := c.Dialect(); err == nil {
		view.Dialect = d.Name
	}

	if isJSONOutput() {
		outputSuccess(view, nil)
		return nil
	}

	tbl := ui.NewTable(ui.NewDisplayContext().TermWidth)
	tbl.SetHeader("SETTING", "VALUE")
	tbl.AddRow("config", view.Path)
	tbl.AddRow("driver", view.Driver)
	tbl.AddRow("dialect", view.Dialect)
	tbl.AddRow("dsn", fmt.Sprintf("%t", view.DSNSet))
	tbl.AddRow("new_responsibility_views", fmt.Sprintf("%t", view.NewViews))
	tbl.AddRow("active_only", fmt.Sprintf("%t", view.Active))
	if view.Schema != "" {
		tbl.AddRow("schema_file", view.Schema)
	}
	tbl.AddRow("log", view.LogLevel+" ("+view.LogFormat+")")
	printf("%s", tbl.String())
	return nil
}

func init() {
	configInitCmd.Flags().StringVar(&initDSN, "dsn", "", "Database connection string")
	configInitCmd.Flags().StringVar(&initDriver, "driver", "sqlite", "Database driver (sqlite or postgres)")
	configInitCmd.Flags().BoolVar(&initNewViews, "new-views", false, "Use the split direct/indirect assignment views")
	configInitCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

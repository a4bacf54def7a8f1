package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erpsync/ebsconn/internal/testutil"
)

// resetFlags restores every flag of cmd and its subcommands to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if !strings.HasSuffix(f.Value.Type(), "Slice") {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// captureStdout runs fn with command output redirected to a buffer.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	fn()
	stdout = prev
	return buf.String()
}

// runCLI executes the root command in JSON mode and decodes the envelope.
func runCLI(t *testing.T, args ...string) *testutil.CLIResult {
	t.Helper()
	t.Setenv("EBSCONN_DSN", "")
	t.Setenv("EBSCONN_DRIVER", "")
	t.Setenv("EBSCONN_LOG_LEVEL", "")

	resetFlags(rootCmd)
	envFiles, searchAttrs, auditorAttrs = nil, nil, nil
	cfg, logger, auditLog, resolvedConfigPath = nil, nil, nil, ""
	t.Cleanup(func() {
		resetFlags(rootCmd)
		envFiles, searchAttrs, auditorAttrs = nil, nil, nil
		cfg, logger, auditLog = nil, nil, nil
	})

	out := captureStdout(t, func() {
		rootCmd.SetArgs(append([]string{"--json"}, args...))
		require.NoError(t, rootCmd.Execute())
	})
	return testutil.ParseCLIResult([]byte(out))
}

func TestRootFlags(t *testing.T) {
	f := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, f)
	assert.Equal(t, "V", f.Shorthand)

	attrs := searchCmd.Flags().Lookup("attrs")
	require.NotNil(t, attrs)
	assert.Equal(t, "stringSlice", attrs.Value.Type())
}

func TestSearchCommand(t *testing.T) {
	erp := testutil.NewERP(t)
	cfgPath := erp.WriteConfig(true)

	t.Run("native filter", func(t *testing.T) {
		r := runCLI(t, "--config", cfgPath, "search", "account", `__NAME__ == "JDOE"`).MustSucceed(t)
		entities := r.DataList("entities")
		require.Len(t, entities, 1)
		assert.Equal(t, "JDOE", entities[0].(map[string]interface{})["name"])
		assert.Equal(t, true, r.Data["native"])
		require.NotNil(t, r.Meta)
		assert.Equal(t, 1, r.Meta.Count)
		assert.NotEmpty(t, r.Meta.SearchID)
	})

	t.Run("limit stops early", func(t *testing.T) {
		r := runCLI(t, "--config", cfgPath, "search", "account", "--limit", "2").MustSucceed(t)
		assert.Len(t, r.DataList("entities"), 2)
		require.Len(t, r.Warnings, 1)
		assert.Equal(t, "LIMIT_REACHED", r.Warnings[0].Code)
	})

	t.Run("active only", func(t *testing.T) {
		r := runCLI(t, "--config", cfgPath, "search", "account", "--active-only").MustSucceed(t)
		assert.Len(t, r.DataList("entities"), 3)
	})

	t.Run("save writes export file", func(t *testing.T) {
		dir := t.TempDir()
		runCLI(t, "--config", cfgPath, "search", "responsibilityNames", "--save", dir).MustSucceed(t)
		_, err := os.Stat(filepath.Join(dir, "responsibilitynames-all.json"))
		assert.NoError(t, err)
	})

	t.Run("unknown kind", func(t *testing.T) {
		runCLI(t, "--config", cfgPath, "search", "widgets").MustFail(t, ErrUnknownKind)
	})

	t.Run("bad filter", func(t *testing.T) {
		runCLI(t, "--config", cfgPath, "search", "account", `user_name ==`).MustFail(t, ErrQueryInvalid)
	})
}

func TestSearchLegacyViewsRejectsIndirect(t *testing.T) {
	erp := testutil.NewERP(t)
	cfgPath := erp.WriteConfig(false)

	runCLI(t, "--config", cfgPath, "search", "indirectResponsibilities").MustFail(t, ErrUnsupportedKind)
}

func TestSearchWithoutDatabase(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[log]\nlevel = \"error\"\n"), 0o600))

	runCLI(t, "--config", cfgPath, "search", "account").MustFailWithMessage(t, "EBSCONN_DSN")
}

func TestRespsCommand(t *testing.T) {
	erp := testutil.NewERP(t)

	r := runCLI(t, "--config", erp.WriteConfig(false), "resps", "JDOE").MustSucceed(t)
	assert.Equal(t, []interface{}{
		"GL Inquiry||General Ledger||Standard||2001-01-01||null",
		"System Administrator||System Administration||Standard||2001-01-01||null",
	}, r.DataList("responsibilities"))
	assert.Equal(t, 2, r.Meta.Count)

	runCLI(t, "--config", erp.WriteConfig(false), "resps", "JDOE", "--kind", "indirectResponsibilities").
		MustFail(t, ErrUnsupportedKind)
}

func TestAuditorCommand(t *testing.T) {
	erp := testutil.NewERP(t)
	cfgPath := erp.WriteConfig(true)

	r := runCLI(t, "--config", cfgPath, "auditor", "System Administrator", "--attrs", "menuIds").MustSucceed(t)
	assert.Equal(t, "System Administrator", r.DataString("name"))
	attrs, ok := r.Data["attributes"].([]interface{})
	require.True(t, ok)
	require.Len(t, attrs, 1)
	assert.Equal(t, "menuIds", attrs[0].(map[string]interface{})["name"])

	runCLI(t, "--config", cfgPath, "auditor", "No Such Responsibility").MustFail(t, ErrObjectNotFound)
}

func TestTranslateCommand(t *testing.T) {
	erp := testutil.NewERP(t)
	cfgPath := erp.WriteConfig(true)

	r := runCLI(t, "--config", cfgPath, "translate", "account", `__NAME__ == "JDOE"`).MustSucceed(t)
	assert.Equal(t, "sqlite", r.DataString("dialect"))
	assert.Contains(t, r.DataString("sql"), "user_name = ?")
	assert.Equal(t, true, r.Data["native"])
	assert.Equal(t, []interface{}{"JDOE"}, r.DataList("args"))
}

func TestSchemaCommand(t *testing.T) {
	erp := testutil.NewERP(t)

	r := runCLI(t, "--config", erp.WriteConfig(true), "schema").MustSucceed(t)
	assert.Len(t, r.DataList("kinds"), 6)

	r = runCLI(t, "--config", erp.WriteConfig(false), "schema").MustSucceed(t)
	assert.Len(t, r.DataList("kinds"), 5)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ebsconn.toml")

	r := runCLI(t, "--config", path, "config", "init", "--dsn", "erp.db", "--new-views").MustSucceed(t)
	assert.Equal(t, path, r.DataString("path"))

	r = runCLI(t, "--config", path, "config", "show").MustSucceed(t)
	assert.Equal(t, true, r.Data["dsn_set"])
	assert.Equal(t, true, r.Data["new_responsibility_views"])

	runCLI(t, "--config", path, "config", "init").MustFail(t, ErrInvalidInput)
}

func TestAuditCommand(t *testing.T) {
	erp := testutil.NewERP(t)
	cfgPath := erp.WriteConfig(true)

	runCLI(t, "--config", cfgPath, "audit").MustFail(t, ErrConfigInvalid)

	f, err := os.OpenFile(cfgPath, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.WriteString("\n[audit]\nenabled = true\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	search := runCLI(t, "--config", cfgPath, "search", "account", "--limit", "1").MustSucceed(t)
	runCLI(t, "--config", cfgPath, "resps", "JDOE").MustSucceed(t)

	r := runCLI(t, "--config", cfgPath, "audit", "--since", "1h").MustSucceed(t)
	entries := r.DataList("entries")
	require.Len(t, entries, 2)

	first := entries[0].(map[string]interface{})
	assert.Equal(t, "search", first["op"])
	assert.Equal(t, "account", first["kind"])
	assert.Equal(t, search.Meta.SearchID, first["search_id"])
	assert.Equal(t, float64(1), first["count"])

	second := entries[1].(map[string]interface{})
	assert.Equal(t, "resps", second["op"])
	assert.Equal(t, "JDOE", second["target"])

	_, err = os.Stat(filepath.Join(filepath.Dir(cfgPath), "audit.log"))
	assert.NoError(t, err)
}

func TestParseSince(t *testing.T) {
	now := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)

	got, err := parseSince("2h", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-2*time.Hour), got)

	got, err = parseSince("yesterday", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), got)

	got, err = parseSince("2026-01-15", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), got)

	_, err = parseSince("last week", now)
	assert.Error(t, err)
}

package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/erpsync/ebsconn/internal/audit"
	"github.com/erpsync/ebsconn/internal/dates"
	"github.com/erpsync/ebsconn/internal/ui"
)

var auditSince string

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recorded connector reads",
	Long: `Audit lists the searches and lookups recorded in the audit log.
Enable the log with [audit] enabled = true in the config file.`,
	Example: `  ebsconn audit --since today
  ebsconn audit --since 2h --json`,
	Args: cobra.NoArgs,
	RunE: runAudit,
}

// parseSince accepts a duration ("2h"), a relative day ("yesterday"), a
// date or a datetime.
func parseSince(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(-d), nil
	}
	if t, ok := dates.Relative(s, now); ok {
		return t, nil
	}
	if t, err := dates.ParseDate(s); err == nil {
		return t, nil
	}
	if t, err := dates.ParseDatetime(s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid --since %q: use a duration, today/yesterday, or YYYY-MM-DD", s)
}

func runAudit(cmd *cobra.Command, args []string) error {
	if !auditLog.Enabled() {
		return handleErrorMsg(ErrConfigInvalid, "audit log is disabled", "Set enabled = true under [audit] in the config file")
	}

	var entries []audit.Entry
	var err error
	if auditSince != "" {
		since, perr := parseSince(auditSince, time.Now())
		if perr != nil {
			return handleError(ErrInvalidInput, perr, "")
		}
		entries, err = auditLog.ReadSince(since)
	} else {
		entries, err = auditLog.Read()
	}
	if err != nil {
		return handleError(ErrInternal, err, "")
	}
	if entries == nil {
		entries = []audit.Entry{}
	}

	if isJSONOutput() {
		outputSuccess(map[string]any{"entries": entries}, &Meta{Count: len(entries)})
		return nil
	}

	if len(entries) == 0 {
		printf("%s\n", ui.Hint("No audit entries."))
		return nil
	}
	tbl := ui.NewTable(ui.NewDisplayContext().TermWidth)
	tbl.SetHeader("TIME", "OP", "KIND", "TARGET", "COUNT", "MS", "ERROR")
	for _, e := range entries {
		target := e.Target
		if target == "" {
			target = e.Filter
		}
		failure := ""
		if e.Error != "" {
			failure = ui.Error(e.Error)
		}
		tbl.AddRow(
			e.Timestamp.Local().Format(dates.DatetimeLayout),
			e.Operation,
			e.Kind,
			target,
			strconv.Itoa(e.Count),
			strconv.FormatInt(e.DurationMs, 10),
			failure,
		)
	}
	printf("%s", tbl.String())
	return nil
}

func init() {
	auditCmd.Flags().StringVar(&auditSince, "since", "", "Only entries at or after this time (duration, today/yesterday, or date)")
	rootCmd.AddCommand(auditCmd)
}

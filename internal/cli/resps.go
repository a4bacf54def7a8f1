package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/erpsync/ebsconn/internal/audit"
	"github.com/erpsync/ebsconn/internal/model"
	"github.com/erpsync/ebsconn/internal/query"
	"github.com/erpsync/ebsconn/internal/resp"
	"github.com/erpsync/ebsconn/internal/store"
	"github.com/erpsync/ebsconn/internal/ui"
)

var (
	respsKind       string
	respsActiveOnly bool
	auditorAttrs    []string
)

var respsCmd = &cobra.Command{
	Use:   "resps <user>",
	Short: "List the responsibilities assigned to a user",
	Long: `Resps lists a user's responsibilities as
name||application||security group||start||end strings, merged across the
assignment views of the chosen kind.`,
	Example: `  ebsconn resps JDOE
  ebsconn resps JDOE --kind indirectResponsibilities --active-only`,
	Args: cobra.ExactArgs(1),
	RunE: runResps,
}

var auditorCmd = &cobra.Command{
	Use:   "auditor <responsibility>",
	Short: "Show the menus, functions and forms a responsibility grants",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditor,
}

// withTx opens the configured database and runs fn in a transaction that
// fn's operation is responsible for ending.
func withTx(cmd *cobra.Command, fn func(ctx context.Context, tx *store.Tx, ops *resp.Operations) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	db, dialect, err := openDatabase(ctx)
	if err != nil {
		return handleError(ErrDatabaseError, err, "Set [database] in the config file or EBSCONN_DSN")
	}
	defer db.Close()

	tx, err := store.Begin(ctx, db, dialect)
	if err != nil {
		return handleError(ErrDatabaseError, err, "")
	}
	ops := resp.NewOperations(resp.Config{
		NewViews: getConfig().Connector.NewResponsibilityViews,
		Dialect:  dialect,
	}, getLogger())
	return fn(ctx, tx, ops)
}

func runResps(cmd *cobra.Command, args []string) error {
	kind, err := model.ParseKind(respsKind)
	if err != nil {
		return handleError(ErrUnknownKind, err, "")
	}
	activeOnly := getConfig().Connector.ActiveOnly
	if cmd.Flags().Changed("active-only") {
		activeOnly = respsActiveOnly
	}
	user := args[0]

	return withTx(cmd, func(ctx context.Context, tx *store.Tx, ops *resp.Operations) error {
		start := time.Now()
		values, err := ops.UserResponsibilities(ctx, tx, user, kind, activeOnly)
		recordAudit(audit.Entry{
			Operation:  audit.OpResps,
			Kind:       string(kind),
			Target:     user,
			Count:      len(values),
			DurationMs: time.Since(start).Milliseconds(),
		}, err)
		if err != nil {
			return handleError(errorCode(err), err, "")
		}
		if values == nil {
			values = []string{}
		}

		if isJSONOutput() {
			outputSuccess(map[string]any{
				"user":             user,
				"kind":             kind,
				"responsibilities": values,
			}, &Meta{Count: len(values)})
			return nil
		}

		if len(values) == 0 {
			printf("%s\n", ui.Hint("No responsibilities for "+user+"."))
			return nil
		}
		for _, v := range values {
			printf("%s\n", v)
		}
		printf("\n%s\n", ui.Hint(ui.Count(len(values), "responsibility", "responsibilities")))
		return nil
	})
}

func runAuditor(cmd *cobra.Command, args []string) error {
	name := args[0]
	var attrs []string
	if cmd.Flags().Changed("attrs") {
		attrs = cleanNames(auditorAttrs)
	}

	return withTx(cmd, func(ctx context.Context, tx *store.Tx, ops *resp.Operations) error {
		start := time.Now()
		e, err := ops.Auditor(ctx, tx, name, attrs)
		count := 0
		if err == nil {
			count = 1
		}
		recordAudit(audit.Entry{
			Operation:  audit.OpAuditor,
			Kind:       string(model.KindAuditorResps),
			Target:     name,
			Count:      count,
			DurationMs: time.Since(start).Milliseconds(),
		}, err)
		if errors.Is(err, resp.ErrNotFound) {
			return handleError(ErrObjectNotFound, err, "Run 'ebsconn search responsibilityNames' to list responsibilities")
		}
		if err != nil {
			return handleError(errorCode(err), err, "")
		}

		if isJSONOutput() {
			outputSuccess(e, nil)
			return nil
		}

		printf("%s\n", ui.Header(e.Name))
		for _, a := range e.Attributes {
			printf("\n%s %s\n", a.Name, ui.Hint("("+ui.Count(len(a.Values), "value", "values")+")"))
			for _, v := range a.Values {
				printf("  %s\n", query.ValueString(v))
			}
		}
		return nil
	})
}

func init() {
	respsCmd.Flags().StringVar(&respsKind, "kind", string(model.KindResponsibilities), "Assignment kind: responsibilities, directResponsibilities or indirectResponsibilities")
	respsCmd.Flags().BoolVar(&respsActiveOnly, "active-only", false, "Only assignments whose validity window contains the current time")
	auditorCmd.Flags().StringSliceVar(&auditorAttrs, "attrs", nil, "Attributes to return (comma-separated; default: all)")
	rootCmd.AddCommand(respsCmd)
	rootCmd.AddCommand(auditorCmd)
}

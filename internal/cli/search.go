package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/erpsync/ebsconn/internal/atomicfile"
	"github.com/erpsync/ebsconn/internal/audit"
	"github.com/erpsync/ebsconn/internal/model"
	"github.com/erpsync/ebsconn/internal/query"
	"github.com/erpsync/ebsconn/internal/search"
	"github.com/erpsync/ebsconn/internal/slugs"
	"github.com/erpsync/ebsconn/internal/store"
	"github.com/erpsync/ebsconn/internal/ui"
)

var (
	searchAttrs      []string
	searchActiveOnly bool
	searchID         string
	searchLimit      int
	searchSaveDir    string
)

var searchCmd = &cobra.Command{
	Use:   "search <kind> [filter]",
	Short: "Search objects of one kind",
	Long: `Search streams objects of one kind out of the ERP database.

Kinds: account, responsibilities, directResponsibilities,
indirectResponsibilities, responsibilityNames, auditorResps.

Filter syntax:
  attr == value            equality (also =, !=, <, >, <=, >=)
  a == x & b == y          and (a space also means and)
  a == x | b == y          or
  !(expr)                  not
  present(attr)            attribute has a value
  contains(attr, "text")   case-insensitive substring
  startswith / endswith    prefix / suffix
  all(attr, "a", "b")      multi-valued attribute holds every value

__NAME__ and __UID__ refer to the object's identity.`,
	Example: `  ebsconn search account '__NAME__ == "JDOE"'
  ebsconn search responsibilities 'application_name == "General Ledger"' --active-only
  ebsconn search auditorResps --id "GL Inquiry" --attrs readOnlyFormNames --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

// searchResult is the JSON payload of a search.
type searchResult struct {
	Kind     model.Kind     `json:"kind"`
	Filter   string         `json:"filter,omitempty"`
	Native   bool           `json:"native"`
	Entities []model.Entity `json:"entities"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	kind, err := model.ParseKind(args[0])
	if err != nil {
		return handleError(ErrUnknownKind, err, "Run 'ebsconn schema' to list object kinds")
	}
	filterText := strings.TrimSpace(strings.Join(args[1:], " "))
	filter, err := query.Parse(filterText)
	if err != nil {
		return handleError(ErrQueryInvalid, err, "Run 'ebsconn search --help' for the filter syntax")
	}
	if searchLimit < 0 {
		return handleErrorMsg(ErrInvalidInput, "--limit must not be negative", "")
	}

	c := getConfig()
	opts := search.Options{ActiveOnly: c.Connector.ActiveOnly, ID: searchID}
	if cmd.Flags().Changed("active-only") {
		opts.ActiveOnly = searchActiveOnly
	}
	if cmd.Flags().Changed("attrs") {
		opts.AttributesToGet = cleanNames(searchAttrs)
	}

	sc, err := loadSchema()
	if err != nil {
		return handleError(ErrSchemaInvalid, err, "")
	}

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

	d := search.New(tx, search.Config{Schema: sc, NewViews: c.Connector.NewResponsibilityViews, Logger: getLogger()})
	plan, err := search.Prepare(kind, filter, opts, sc, c.Connector.NewResponsibilityViews, dialect)
	if err != nil {
		_ = tx.Rollback()
		return handleError(errorCode(err), err, "")
	}

	start := time.Now()
	var entities []model.Entity
	limited := false
	err = d.Search(ctx, kind, filter, opts, func(e model.Entity) bool {
		entities = append(entities, e)
		if searchLimit > 0 && len(entities) >= searchLimit {
			limited = true
			return false
		}
		return true
	})
	elapsed := time.Since(start).Milliseconds()
	recordAudit(audit.Entry{
		Operation:  audit.OpSearch,
		Kind:       string(kind),
		Filter:     filterText,
		Target:     searchID,
		SearchID:   d.SearchID(),
		Count:      len(entities),
		DurationMs: elapsed,
	}, err)
	if err != nil {
		return handleError(errorCode(err), err, "")
	}

	result := searchResult{Kind: kind, Filter: filterText, Native: plan.Native(), Entities: entities}
	if result.Entities == nil {
		result.Entities = []model.Entity{}
	}

	var warnings []Warning
	if limited {
		warnings = append(warnings, Warning{
			Code:    "LIMIT_REACHED",
			Message: fmt.Sprintf("stopped after %d results", searchLimit),
		})
	}

	var savedTo string
	if searchSaveDir != "" {
		savedTo = filepath.Join(searchSaveDir, slugs.ExportName(string(kind), filterText))
		if err := atomicfile.WriteJSON(savedTo, result, 0o644); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}
	}

	meta := &Meta{Count: len(entities), QueryTimeMs: elapsed, SearchID: d.SearchID()}
	if isJSONOutput() {
		outputSuccessWithWarnings(result, warnings, meta)
		return nil
	}

	printEntities(entities, plan.Requested)
	summary := ui.Count(len(entities), "result", "results")
	if !plan.Native() && filter != nil {
		summary += " (filter applied after fetch)"
	}
	printf("\n%s\n", ui.Hint(summary))
	for _, w := range warnings {
		printf("%s\n", ui.Warning(w.Message))
	}
	if savedTo != "" {
		printf("%s\n", ui.Success("saved to "+savedTo))
	}
	return nil
}

// printEntities renders entities as a table with one column per attribute.
func printEntities(entities []model.Entity, requested []string) {
	if len(entities) == 0 {
		printf("%s\n", ui.Hint("No results."))
		return
	}

	columns := attributeColumns(entities, requested)
	display := ui.NewDisplayContext()
	tbl := ui.NewTable(display.TermWidth)
	tbl.SetHeader(append([]string{"NAME"}, columns...)...)
	for _, e := range entities {
		row := []string{e.Name}
		for _, col := range columns {
			row = append(row, formatValues(e, col))
		}
		tbl.AddRow(row...)
	}
	printf("%s", tbl.String())
}

// attributeColumns lists requested attributes first, then any others the
// entities carry, in first-seen order.
func attributeColumns(entities []model.Entity, requested []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		key := strings.ToLower(name)
		if !seen[key] {
			seen[key] = true
			out = append(out, name)
		}
	}
	present := make(map[string]bool)
	for _, e := range entities {
		for _, a := range e.Attributes {
			present[strings.ToLower(a.Name)] = true
		}
	}
	for _, name := range requested {
		if present[strings.ToLower(name)] {
			add(name)
		}
	}
	for _, e := range entities {
		for _, a := range e.Attributes {
			add(a.Name)
		}
	}
	return out
}

func formatValues(e model.Entity, attr string) string {
	a, ok := e.Attr(attr)
	if !ok || len(a.Values) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(a.Values))
	for _, v := range a.Values {
		parts = append(parts, query.ValueString(v))
	}
	return strings.Join(parts, ", ")
}

// cleanNames trims names and drops empty ones.
func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func init() {
	searchCmd.Flags().StringSliceVar(&searchAttrs, "attrs", nil, "Attributes to return (comma-separated; default: the kind's default set)")
	searchCmd.Flags().BoolVar(&searchActiveOnly, "active-only", false, "Only objects whose validity window contains the current time")
	searchCmd.Flags().StringVar(&searchID, "id", "", "Restrict to the object with this identity")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Stop after this many results (0 = no limit)")
	searchCmd.Flags().StringVar(&searchSaveDir, "save", "", "Also write the results as JSON into this directory")
	rootCmd.AddCommand(searchCmd)
}

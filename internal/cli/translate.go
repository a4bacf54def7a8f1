package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/erpsync/ebsconn/internal/model"
	"github.com/erpsync/ebsconn/internal/query"
	"github.com/erpsync/ebsconn/internal/search"
	"github.com/erpsync/ebsconn/internal/ui"
)

var (
	translateActiveOnly bool
	translateID         string
)

var translateCmd = &cobra.Command{
	Use:   "translate <kind> [filter]",
	Short: "Show the SQL a search would run",
	Long: `Translate prints the statement and bind arguments a search would run,
without connecting to the database. Filters that cannot be pushed down are
reported as evaluated after fetch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTranslate,
}

type translateResult struct {
	Kind       model.Kind `json:"kind"`
	Dialect    string     `json:"dialect"`
	SQL        string     `json:"sql"`
	Args       []string   `json:"args"`
	Native     bool       `json:"native"`
	PostFilter string     `json:"post_filter,omitempty"`
	Attributes []string   `json:"attributes"`
}

func runTranslate(cmd *cobra.Command, args []string) error {
	kind, err := model.ParseKind(args[0])
	if err != nil {
		return handleError(ErrUnknownKind, err, "Run 'ebsconn schema' to list object kinds")
	}
	filter, err := query.Parse(strings.Join(args[1:], " "))
	if err != nil {
		return handleError(ErrQueryInvalid, err, "")
	}

	c := getConfig()
	dialect, err := c.Dialect()
	if err != nil {
		return handleError(ErrConfigInvalid, err, "")
	}
	sc, err := loadSchema()
	if err != nil {
		return handleError(ErrSchemaInvalid, err, "")
	}

	opts := search.Options{ActiveOnly: c.Connector.ActiveOnly, ID: translateID}
	if cmd.Flags().Changed("active-only") {
		opts.ActiveOnly = translateActiveOnly
	}
	plan, err := search.Prepare(kind, filter, opts, sc, c.Connector.NewResponsibilityViews, dialect)
	if err != nil {
		return handleError(errorCode(err), err, "")
	}

	result := translateResult{
		Kind:       kind,
		Dialect:    dialect.Name,
		SQL:        dialect.Rebind(plan.SQL),
		Args:       make([]string, 0, len(plan.Args)),
		Native:     plan.Native(),
		Attributes: plan.Requested,
	}
	for _, a := range plan.Args {
		result.Args = append(result.Args, query.ValueString(a))
	}
	if plan.PostFilter != nil {
		result.PostFilter = plan.PostFilter.String()
	}

	if isJSONOutput() {
		outputSuccess(result, nil)
		return nil
	}

	printf("%s\n%s\n", ui.Header("SQL ("+result.Dialect+")"), result.SQL)
	if len(result.Args) > 0 {
		printf("\n%s\n", ui.Header("Arguments"))
		for i, a := range result.Args {
			printf("  %d: %q\n", i+1, a)
		}
	}
	if result.Native {
		printf("\n%s\n", ui.Hint("filter runs in the database"))
	} else {
		printf("\n%s %s\n", ui.Warning("evaluated after fetch:"), result.PostFilter)
	}
	return nil
}

func init() {
	translateCmd.Flags().BoolVar(&translateActiveOnly, "active-only", false, "Only objects whose validity window contains the current time")
	translateCmd.Flags().StringVar(&translateID, "id", "", "Restrict to the object with this identity")
	rootCmd.AddCommand(translateCmd)
}

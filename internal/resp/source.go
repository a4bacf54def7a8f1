package resp

import (
	"context"
	"fmt"
	"strings"

	"github.com/erpsync/ebsconn/internal/connerr"
	"github.com/erpsync/ebsconn/internal/merge"
	"github.com/erpsync/ebsconn/internal/model"
	"github.com/erpsync/ebsconn/internal/query"
	"github.com/erpsync/ebsconn/internal/resolver"
	"github.com/erpsync/ebsconn/internal/sqlutil"
	"github.com/erpsync/ebsconn/internal/store"
)

// Options scope a base query.
type Options struct {
	// ActiveOnly keeps rows whose validity window contains the current time.
	ActiveOnly bool
	// ID restricts the query to one object by its identity column.
	ID string
}

// Config selects how sources read the ERP schema.
type Config struct {
	NewViews bool
	Dialect  store.Dialect
}

// Source produces the entities of one object kind in two phases: a base
// query streamed row by row, and an optional per-entity detail fetch that
// merges more values into the entity's builder.
type Source interface {
	Kind() model.Kind
	// Columns are the base query's output columns a native predicate may use.
	Columns() []string
	IdentityColumn() string
	// Base returns the base query and its bind arguments. A non-empty pred is
	// applied to the base query's output columns.
	Base(pred *query.NativePredicate, opts Options) (string, []any)
	// Assemble adds one base row to b and returns the entity's identity.
	Assemble(row sqlutil.Row, columns []string, b *merge.Builder) (uid, name string, err error)
	Detail(ctx context.Context, conn store.Conn, name string, opts Options, b *merge.Builder) error
}

// SourceFor returns the source for kind.
func SourceFor(kind model.Kind, cfg Config) (Source, error) {
	switch kind {
	case model.KindAccount:
		return &AccountSource{cfg: cfg}, nil
	case model.KindResponsibilities, model.KindDirectResponsibilities, model.KindIndirectResponsibilities:
		views, err := ViewsFor(kind, cfg.NewViews)
		if err != nil {
			return nil, err
		}
		return &AssignmentSource{kind: kind, views: views, cfg: cfg}, nil
	case model.KindResponsibilityNames:
		return &NameSource{cfg: cfg}, nil
	case model.KindAuditorResps:
		return &AuditorSource{NameSource{cfg: cfg}}, nil
	}
	return nil, fmt.Errorf("%s: %w", kind, connerr.ErrUnsupportedKind)
}

// wrap applies pred to inner's output columns and orders the result.
func wrap(inner string, args []any, pred *query.NativePredicate, orderBy string) (string, []any) {
	if pred.Empty() {
		return inner + "\nORDER BY " + orderBy, args
	}
	sql := "SELECT * FROM (\n" + inner + "\n) q\nWHERE " + pred.SQL + "\nORDER BY " + orderBy
	return sql, append(args, pred.Args...)
}

func where(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return "\nWHERE " + strings.Join(conds, " AND ")
}

// addColumns adds every column of row to b under its attribute name.
func addColumns(r resolver.NameResolver, row sqlutil.Row, columns []string, b *merge.Builder) error {
	for _, col := range columns {
		col = strings.ToLower(col)
		if err := b.AddValue(r.AttributeNameFor(col), row[col]); err != nil {
			return err
		}
	}
	return nil
}

// identify adds the identity attributes for name and uid to b.
func identify(b *merge.Builder, uid, name string) error {
	if name == "" {
		return connerr.NewInvalidState("row has no identity value")
	}
	if err := b.AddValue(model.AttrName, name); err != nil {
		return err
	}
	return b.AddValue(model.AttrUID, uid)
}

// queryAll runs one detail query to completion.
func queryAll(ctx context.Context, conn store.Conn, sql string, args ...any) ([]sqlutil.Row, error) {
	stmt, err := conn.Prepare(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	rows, err := stmt.Query(ctx, args...)
	if err != nil {
		return nil, err
	}
	return sqlutil.ScanRows(rows, func(r sqlutil.Row) (sqlutil.Row, error) { return r, nil })
}

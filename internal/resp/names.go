package resp

import (
	"context"

	"github.com/erpsync/ebsconn/internal/merge"
	"github.com/erpsync/ebsconn/internal/model"
	"github.com/erpsync/ebsconn/internal/query"
	"github.com/erpsync/ebsconn/internal/resolver"
	"github.com/erpsync/ebsconn/internal/sqlutil"
	"github.com/erpsync/ebsconn/internal/store"
)

var responsibilityColumns = []string{
	"responsibility_id",
	"responsibility_name",
	"responsibility_key",
	"application_name",
	"description",
	"start_date",
	"end_date",
}

const responsibilitySelect = `SELECT r.responsibility_id, r.responsibility_name, r.responsibility_key,
	a.application_name, r.description, r.start_date, r.end_date
FROM fnd_responsibility_vl r
JOIN fnd_application_vl a ON a.application_id = r.application_id`

// NameSource yields responsibility definitions by name.
type NameSource struct {
	cfg Config
}

func (s *NameSource) Kind() model.Kind       { return model.KindResponsibilityNames }
func (s *NameSource) Columns() []string      { return responsibilityColumns }
func (s *NameSource) IdentityColumn() string { return resolver.ColumnResponsibilityName }

func (s *NameSource) Base(pred *query.NativePredicate, opts Options) (string, []any) {
	var conds []string
	var args []any
	if opts.ActiveOnly {
		conds = append(conds, ActiveClause("r", s.cfg.Dialect.Now))
	}
	if opts.ID != "" {
		conds = append(conds, "r.responsibility_name = ?")
		args = append(args, opts.ID)
	}
	return wrap(responsibilitySelect+where(conds), args, pred, "responsibility_name, application_name")
}

func (s *NameSource) Assemble(row sqlutil.Row, columns []string, b *merge.Builder) (string, string, error) {
	r := resolver.Basic{IdentityColumn: resolver.ColumnResponsibilityName}
	if err := addColumns(r, row, columns, b); err != nil {
		return "", "", err
	}
	name := row.String("responsibility_name")
	return name, name, identify(b, name, name)
}

func (s *NameSource) Detail(context.Context, store.Conn, string, Options, *merge.Builder) error {
	return nil
}

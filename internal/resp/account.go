package resp

import (
	"context"
	"fmt"

	"github.com/erpsync/ebsconn/internal/merge"
	"github.com/erpsync/ebsconn/internal/model"
	"github.com/erpsync/ebsconn/internal/query"
	"github.com/erpsync/ebsconn/internal/resolver"
	"github.com/erpsync/ebsconn/internal/sqlutil"
	"github.com/erpsync/ebsconn/internal/store"
)

var accountColumns = []string{
	"user_id",
	"user_name",
	"description",
	"email_address",
	"fax",
	"start_date",
	"end_date",
	"last_logon_date",
	"password_date",
	"employee_id",
	"full_name",
	"employee_number",
	"npw_number",
}

const accountSelect = `SELECT u.user_id, u.user_name, u.description, u.email_address, u.fax,
	u.start_date, u.end_date, u.last_logon_date, u.password_date, u.employee_id,
	p.full_name, p.employee_number, p.npw_number
FROM fnd_user u
LEFT JOIN per_all_people_f p ON p.person_id = u.employee_id`

// AccountSource yields application users. Responsibility attributes are
// fetched per user in the detail phase, and only when requested.
type AccountSource struct {
	cfg Config
}

func (s *AccountSource) Kind() model.Kind       { return model.KindAccount }
func (s *AccountSource) Columns() []string      { return accountColumns }
func (s *AccountSource) IdentityColumn() string { return resolver.ColumnUserName }

func (s *AccountSource) Base(pred *query.NativePredicate, opts Options) (string, []any) {
	var conds []string
	var args []any
	if opts.ActiveOnly {
		conds = append(conds, ActiveClause("u", s.cfg.Dialect.Now))
	}
	if opts.ID != "" {
		conds = append(conds, "u.user_name = ?")
		args = append(args, opts.ID)
	}
	return wrap(accountSelect+where(conds), args, pred, "user_name")
}

func (s *AccountSource) Assemble(row sqlutil.Row, columns []string, b *merge.Builder) (string, string, error) {
	if err := addColumns(resolver.NewAccount(), row, columns, b); err != nil {
		return "", "", err
	}
	name := row.String("user_name")
	return name, name, identify(b, name, name)
}

// Detail merges the requested responsibility attributes of user into b. Kinds
// the configured views cannot serve are skipped.
func (s *AccountSource) Detail(ctx context.Context, conn store.Conn, user string, opts Options, b *merge.Builder) error {
	for _, attr := range []string{
		model.AttrResponsibilities,
		model.AttrDirectResponsibilities,
		model.AttrIndirectResponsibilities,
	} {
		if !b.Wants(attr) {
			continue
		}
		kind, _ := model.ResponsibilityAttrKind(attr)
		views, err := ViewsFor(kind, s.cfg.NewViews)
		if err != nil {
			continue
		}
		if err := b.AddAttribute(attr, nil); err != nil {
			return err
		}
		for _, view := range views {
			values, err := userResponsibilities(ctx, conn, s.cfg.Dialect, view, user, opts.ActiveOnly)
			if err != nil {
				return fmt.Errorf("fetch %s for %s: %w", attr, user, err)
			}
			if err := b.AddAttribute(attr, values); err != nil {
				return err
			}
		}
	}
	return nil
}

// userResponsibilities returns the formatted assignments of user in one view.
func userResponsibilities(ctx context.Context, conn store.Conn, d store.Dialect, view, user string, activeOnly bool) ([]any, error) {
	conds := []string{"u.user_name = ?"}
	if activeOnly {
		conds = append(conds, ActiveClause("g", d.Now))
	}
	sql := assignmentSelect(view) + where(conds) + "\nORDER BY r.responsibility_name, a.application_name"

	rows, err := queryAll(ctx, conn, sql, user)
	if err != nil {
		return nil, err
	}
	values := make([]any, 0, len(rows))
	for _, row := range rows {
		values = append(values, formatRow(row))
	}
	return values, nil
}

package resp

import (
	"context"
	"strings"

	"github.com/erpsync/ebsconn/internal/merge"
	"github.com/erpsync/ebsconn/internal/model"
	"github.com/erpsync/ebsconn/internal/query"
	"github.com/erpsync/ebsconn/internal/resolver"
	"github.com/erpsync/ebsconn/internal/sqlutil"
	"github.com/erpsync/ebsconn/internal/store"
)

var assignmentColumns = []string{
	"user_name",
	"responsibility_name",
	"responsibility_key",
	"application_name",
	"security_group_name",
	"description",
	"start_date",
	"end_date",
	"assignment_type",
}

// AssignmentSource yields one entity per user-to-responsibility assignment.
type AssignmentSource struct {
	kind  model.Kind
	views []string
	cfg   Config
}

func (s *AssignmentSource) Kind() model.Kind       { return s.kind }
func (s *AssignmentSource) Columns() []string      { return assignmentColumns }
func (s *AssignmentSource) IdentityColumn() string { return resolver.ColumnUserName }
func (s *AssignmentSource) resolver() resolver.Basic {
	return resolver.Basic{IdentityColumn: resolver.ColumnUserName}
}

// Base unions the assignment views. The scope conditions are repeated in each
// branch so every view is filtered before the union.
func (s *AssignmentSource) Base(pred *query.NativePredicate, opts Options) (string, []any) {
	parts := make([]string, 0, len(s.views))
	var args []any
	for _, view := range s.views {
		var conds []string
		if opts.ActiveOnly {
			conds = append(conds, ActiveClause("g", s.cfg.Dialect.Now))
		}
		if opts.ID != "" {
			conds = append(conds, "u.user_name = ?")
			args = append(args, opts.ID)
		}
		parts = append(parts, assignmentSelect(view)+where(conds))
	}
	inner := strings.Join(parts, "\nUNION ALL\n")
	return wrap(inner, args, pred, "user_name, responsibility_name, application_name, assignment_type")
}

func assignmentSelect(view string) string {
	return `SELECT u.user_name, r.responsibility_name, r.responsibility_key, a.application_name,
	s.security_group_name, g.description, g.start_date, g.end_date, '` + assignmentType(view) + `' AS assignment_type
FROM ` + view + ` g
JOIN fnd_user u ON u.user_id = g.user_id
JOIN fnd_responsibility_vl r ON r.responsibility_id = g.responsibility_id AND r.application_id = g.responsibility_application_id
JOIN fnd_application_vl a ON a.application_id = r.application_id
LEFT JOIN fnd_security_groups_vl s ON s.security_group_id = g.security_group_id`
}

// Assemble adds the row's columns and the formatted responsibility value.
// The entity is named by its user; the uid also carries the assignment.
func (s *AssignmentSource) Assemble(row sqlutil.Row, columns []string, b *merge.Builder) (string, string, error) {
	if err := addColumns(s.resolver(), row, columns, b); err != nil {
		return "", "", err
	}
	formatted := formatRow(row)
	if err := b.AddValue(AttrResponsibility, formatted); err != nil {
		return "", "", err
	}

	name := row.String("user_name")
	uid := name + ":" + formatted + ":" + row.String("assignment_type")
	return uid, name, identify(b, uid, name)
}

// Detail is a no-op: the base row carries the whole assignment.
func (s *AssignmentSource) Detail(context.Context, store.Conn, string, Options, *merge.Builder) error {
	return nil
}

func formatRow(row sqlutil.Row) string {
	return FormatResponsibility(
		row.String("responsibility_name"),
		row.String("application_name"),
		row.String("security_group_name"),
		row["start_date"],
		row["end_date"],
	)
}

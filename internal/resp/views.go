// Package resp resolves responsibility, responsibility-name and auditor
// objects from the ERP assignment views.
package resp

import (
	"fmt"
	"strings"
	"time"

	"github.com/erpsync/ebsconn/internal/connerr"
	"github.com/erpsync/ebsconn/internal/model"
)

// Assignment tables and views.
const (
	ViewLegacy   = "fnd_user_resp_groups"
	ViewDirect   = "fnd_user_resp_groups_direct"
	ViewIndirect = "fnd_user_resp_groups_indirect"
)

// ViewsFor returns the assignment views backing kind. Legacy schemas only
// have the combined table, which serves direct and all-responsibility lookups.
func ViewsFor(kind model.Kind, newViews bool) ([]string, error) {
	if !newViews {
		switch kind {
		case model.KindResponsibilities, model.KindDirectResponsibilities:
			return []string{ViewLegacy}, nil
		}
		return nil, fmt.Errorf("%s with legacy views: %w", kind, connerr.ErrUnsupportedKind)
	}

	switch kind {
	case model.KindDirectResponsibilities:
		return []string{ViewDirect}, nil
	case model.KindIndirectResponsibilities:
		return []string{ViewIndirect}, nil
	case model.KindResponsibilities:
		return []string{ViewDirect, ViewIndirect}, nil
	}
	return nil, fmt.Errorf("%s: %w", kind, connerr.ErrUnsupportedKind)
}

// assignmentType labels rows by the view they came from.
func assignmentType(view string) string {
	switch view {
	case ViewDirect:
		return "direct"
	case ViewIndirect:
		return "indirect"
	default:
		return "legacy"
	}
}

// ActiveClause restricts alias to rows whose validity window contains the
// database's current time: started, and not yet ended.
func ActiveClause(alias, now string) string {
	return fmt.Sprintf("%[1]s.start_date <= %[2]s AND (%[1]s.end_date IS NULL OR %[1]s.end_date > %[2]s)", alias, now)
}

// AttrResponsibility holds the formatted value of an assignment.
const AttrResponsibility = "responsibility"

// Separator joins the parts of a formatted responsibility value.
const Separator = "||"

// FormatResponsibility renders an assignment as
// name||application||security group||start||end with dates as YYYY-MM-DD
// and an open end date as "null".
func FormatResponsibility(name, application, securityGroup string, start, end any) string {
	return strings.Join([]string{name, application, securityGroup, FormatDate(start), FormatDate(end)}, Separator)
}

// FormatDate renders a date column value as YYYY-MM-DD, or "null".
func FormatDate(v any) string {
	switch d := v.(type) {
	case nil:
		return "null"
	case time.Time:
		return d.Format("2006-01-02")
	case []byte:
		return FormatDate(string(d))
	case string:
		if d == "" {
			return "null"
		}
		if len(d) >= 10 {
			if _, err := time.Parse("2006-01-02", d[:10]); err == nil {
				return d[:10]
			}
		}
		return d
	default:
		return fmt.Sprint(d)
	}
}

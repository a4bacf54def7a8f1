package query

import (
	"time"

	"github.com/erpsync/ebsconn/internal/dates"
)

// ResolveDates rewrites relative date keywords and datetime literals in
// ordered comparisons to their canonical text form, so "end_date < today"
// compares against a concrete date both in SQL and after fetch. Other
// nodes are returned unchanged.
func ResolveDates(f Filter, now time.Time) Filter {
	switch n := f.(type) {
	case CompareFilter:
		if s, ok := n.Value.(string); ok {
			if canonical, ok := dates.Canonical(s, now); ok {
				n.Value = canonical
			}
		}
		return n
	case AndFilter:
		return AndFilter{Left: ResolveDates(n.Left, now), Right: ResolveDates(n.Right, now)}
	case OrFilter:
		return OrFilter{Left: ResolveDates(n.Left, now), Right: ResolveDates(n.Right, now)}
	case NotFilter:
		return NotFilter{Inner: ResolveDates(n.Inner, now)}
	}
	return f
}

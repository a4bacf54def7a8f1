package store

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect captures the SQL differences between supported databases.
type Dialect struct {
	Name string
	// Now is the database's current time expression.
	Now string
	// SingleCursor marks drivers that cannot run a query on a connection
	// while another result set on it is still open.
	SingleCursor bool
	// cycleClause marks databases that need an explicit CYCLE clause to stop
	// a recursive query on cyclic data.
	cycleClause bool
	// placeholder renders the n-th (1-based) bind parameter; nil keeps "?".
	placeholder func(n int) string
}

var (
	SQLite = Dialect{Name: "sqlite", Now: "CURRENT_TIMESTAMP"}

	Postgres = Dialect{
		Name:         "postgres",
		Now:          "CURRENT_TIMESTAMP",
		SingleCursor: true,
		placeholder:  func(n int) string { return "$" + strconv.Itoa(n) },
	}

	Oracle = Dialect{
		Name:        "oracle",
		Now:         "SYSDATE",
		cycleClause: true,
		placeholder: func(n int) string { return ":" + strconv.Itoa(n) },
	}
)

// DialectFor returns the dialect with the given name.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlite":
		return SQLite, nil
	case "postgres", "postgresql":
		return Postgres, nil
	case "oracle":
		return Oracle, nil
	}
	return Dialect{}, fmt.Errorf("unknown SQL dialect %q", name)
}

// RecursiveCTE renders a single-column recursive common table expression.
// The result terminates on cyclic data: SQLite and Postgres discard repeated
// rows through UNION, Oracle marks them with a CYCLE clause.
func (d Dialect) RecursiveCTE(name, column, anchor, step string) string {
	if d.cycleClause {
		return fmt.Sprintf("WITH %s (%s) AS (\n%s\nUNION ALL\n%s\n) CYCLE %s SET is_cycle TO 'Y' DEFAULT 'N'",
			name, column, anchor, step, column)
	}
	return fmt.Sprintf("WITH RECURSIVE %s (%s) AS (\n%s\nUNION\n%s\n)", name, column, anchor, step)
}

// Rebind rewrites "?" placeholders outside string literals into the dialect's
// positional form.
func (d Dialect) Rebind(query string) string {
	if d.placeholder == nil {
		return query
	}

	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	inString := false
	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case ch == '\'':
			inString = !inString
			sb.WriteByte(ch)
		case ch == '?' && !inString:
			n++
			sb.WriteString(d.placeholder(n))
		default:
			sb.WriteByte(ch)
		}
	}
	return sb.String()
}

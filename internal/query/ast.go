// Package query implements the connector's filter tree, the filter expression
// parser, and the translation of filters into native SQL predicates.
package query

import (
	"fmt"
	"strings"
)

// Filter is a node of an attribute-based filter tree.
type Filter interface {
	filterNode()
	String() string
}

// CompareOp represents an ordering comparison operator.
type CompareOp int

const (
	CompareLt  CompareOp = iota // <
	CompareGt                   // >
	CompareLte                  // <=
	CompareGte                  // >=
)

func (op CompareOp) String() string {
	switch op {
	case CompareGt:
		return ">"
	case CompareLte:
		return "<="
	case CompareGte:
		return ">="
	default:
		return "<"
	}
}

// StringOp represents a substring match.
type StringOp int

const (
	StringContains StringOp = iota
	StringStartsWith
	StringEndsWith
)

func (op StringOp) String() string {
	switch op {
	case StringStartsWith:
		return "startswith"
	case StringEndsWith:
		return "endswith"
	default:
		return "contains"
	}
}

// EqualsFilter matches entities whose attribute equals the given values.
// Only a single value is translatable to a native predicate.
// Syntax: attr==value
type EqualsFilter struct {
	Attr   string
	Values []any
}

func (EqualsFilter) filterNode() {}

func (f EqualsFilter) String() string {
	return fmt.Sprintf("%s==%s", f.Attr, formatValues(f.Values))
}

// CompareFilter orders an attribute against a literal.
// Syntax: attr<value, attr>=value
type CompareFilter struct {
	Attr  string
	Op    CompareOp
	Value any
}

func (CompareFilter) filterNode() {}

func (f CompareFilter) String() string {
	return fmt.Sprintf("%s%s%s", f.Attr, f.Op, formatValue(f.Value))
}

// StringFilter matches a substring of a string attribute.
// Syntax: contains(attr, value), startswith(attr, value), endswith(attr, value)
type StringFilter struct {
	Attr  string
	Op    StringOp
	Value string
}

func (StringFilter) filterNode() {}

func (f StringFilter) String() string {
	return fmt.Sprintf("%s(%s, %s)", f.Op, f.Attr, formatValue(f.Value))
}

// ContainsAllFilter matches multi-valued attributes holding every value.
// Syntax: all(attr, v1, v2, ...)
type ContainsAllFilter struct {
	Attr   string
	Values []any
}

func (ContainsAllFilter) filterNode() {}

func (f ContainsAllFilter) String() string {
	parts := make([]string, len(f.Values))
	for i, v := range f.Values {
		parts[i] = formatValue(v)
	}
	return fmt.Sprintf("all(%s, %s)", f.Attr, strings.Join(parts, ", "))
}

// PresenceFilter matches entities with at least one value for the attribute.
// Syntax: present(attr)
type PresenceFilter struct {
	Attr string
}

func (PresenceFilter) filterNode() {}

func (f PresenceFilter) String() string { return fmt.Sprintf("present(%s)", f.Attr) }

// AndFilter matches when both sides match.
type AndFilter struct {
	Left, Right Filter
}

func (AndFilter) filterNode() {}

func (f AndFilter) String() string { return fmt.Sprintf("(%s & %s)", f.Left, f.Right) }

// OrFilter matches when either side matches.
// Syntax: (a | b)
type OrFilter struct {
	Left, Right Filter
}

func (OrFilter) filterNode() {}

func (f OrFilter) String() string { return fmt.Sprintf("(%s | %s)", f.Left, f.Right) }

// NotFilter negates its operand.
type NotFilter struct {
	Inner Filter
}

func (NotFilter) filterNode() {}

func (f NotFilter) String() string { return "!" + f.Inner.String() }

// Equals is a shorthand for a single-valued EqualsFilter.
func Equals(attr string, value any) EqualsFilter {
	return EqualsFilter{Attr: attr, Values: []any{value}}
}

// And folds filters into a left-deep AndFilter. Nil filters are skipped.
func And(filters ...Filter) Filter {
	var out Filter
	for _, f := range filters {
		if f == nil {
			continue
		}
		if out == nil {
			out = f
			continue
		}
		out = AndFilter{Left: out, Right: f}
	}
	return out
}

// Attributes returns the distinct attribute names referenced by f, in order.
func Attributes(f Filter) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(name string) {
		key := strings.ToLower(name)
		if !seen[key] {
			seen[key] = true
			out = append(out, name)
		}
	}
	var walk func(Filter)
	walk = func(f Filter) {
		switch n := f.(type) {
		case EqualsFilter:
			add(n.Attr)
		case CompareFilter:
			add(n.Attr)
		case StringFilter:
			add(n.Attr)
		case ContainsAllFilter:
			add(n.Attr)
		case PresenceFilter:
			add(n.Attr)
		case AndFilter:
			walk(n.Left)
			walk(n.Right)
		case OrFilter:
			walk(n.Left)
			walk(n.Right)
		case NotFilter:
			walk(n.Inner)
		}
	}
	if f != nil {
		walk(f)
	}
	return out
}

func formatValues(values []any) string {
	if len(values) == 1 {
		return formatValue(values[0])
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatValue(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", v)
}

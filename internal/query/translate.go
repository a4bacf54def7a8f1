package query

import (
	"fmt"
	"strings"

	"github.com/erpsync/ebsconn/internal/connerr"
	"github.com/erpsync/ebsconn/internal/model"
	"github.com/erpsync/ebsconn/internal/resolver"
)

// NativePredicate is a SQL fragment with positional "?" parameters.
// An empty SQL string matches every row.
type NativePredicate struct {
	SQL  string
	Args []any
}

// Empty reports whether the predicate restricts nothing.
func (p *NativePredicate) Empty() bool {
	return p == nil || p.SQL == ""
}

// Translator converts filter trees into native predicates over the columns a
// base query selects.
type Translator struct {
	resolver    resolver.NameResolver
	supported   map[string]bool
	multiValued map[string]bool
}

// NewTranslator creates a translator. supportedColumns are the columns the
// underlying query selects; multiValued names attributes that never translate.
func NewTranslator(r resolver.NameResolver, supportedColumns, multiValued []string) *Translator {
	t := &Translator{
		resolver:    r,
		supported:   make(map[string]bool, len(supportedColumns)),
		multiValued: make(map[string]bool, len(multiValued)),
	}
	for _, c := range supportedColumns {
		t.supported[strings.ToLower(c)] = true
	}
	for _, a := range multiValued {
		t.multiValued[strings.ToLower(a)] = true
	}
	return t
}

// Translate returns the native predicate for f. The second result is false
// when any part of f has no native form; the caller must then filter at the
// framework level and must not use a partial predicate.
func (t *Translator) Translate(f Filter) (*NativePredicate, bool) {
	if f == nil {
		return &NativePredicate{}, true
	}
	sql, args, err := t.translate(f)
	if err != nil {
		return nil, false
	}
	return &NativePredicate{SQL: sql, Args: args}, true
}

func (t *Translator) translate(f Filter) (string, []any, error) {
	switch n := f.(type) {
	case EqualsFilter:
		return t.translateEquals(n)
	case AndFilter:
		return t.translateBinary(n.Left, n.Right, "AND")
	case OrFilter:
		return t.translateBinary(n.Left, n.Right, "OR")
	default:
		// NOT, ordering, substring, containment and presence filters are
		// evaluated by the framework.
		return "", nil, fmt.Errorf("%T: %w", f, connerr.ErrUnsupportedTranslation)
	}
}

func (t *Translator) translateEquals(f EqualsFilter) (string, []any, error) {
	if len(f.Values) != 1 || f.Values[0] == nil {
		return "", nil, fmt.Errorf("%s: %w", f.Attr, connerr.ErrUnsupportedTranslation)
	}
	if t.multiValued[strings.ToLower(f.Attr)] {
		return "", nil, fmt.Errorf("%s is multi-valued: %w", f.Attr, connerr.ErrUnsupportedTranslation)
	}
	col := t.resolver.ColumnNameFor(f.Attr)
	if !t.supported[strings.ToLower(col)] {
		return "", nil, fmt.Errorf("column %s not selected: %w", col, connerr.ErrUnsupportedTranslation)
	}
	return strings.ToLower(col) + " = ?", []any{f.Values[0]}, nil
}

func (t *Translator) translateBinary(left, right Filter, op string) (string, []any, error) {
	leftCond, leftArgs, err := t.translate(left)
	if err != nil {
		return "", nil, err
	}
	rightCond, rightArgs, err := t.translate(right)
	if err != nil {
		return "", nil, err
	}
	args := append(leftArgs, rightArgs...)
	return fmt.Sprintf("(%s %s %s)", leftCond, op, rightCond), args, nil
}

// TranslateFilter translates f for kind using the kind's name resolver.
func TranslateFilter(f Filter, kind model.Kind, supportedColumns []string) (*NativePredicate, bool) {
	return NewTranslator(resolver.For(kind), supportedColumns, nil).Translate(f)
}

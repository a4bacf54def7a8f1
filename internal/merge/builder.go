// Package merge accumulates attribute values contributed by several queries
// into one deduplicated attribute set per entity.
package merge

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/erpsync/ebsconn/internal/connerr"
	"github.com/erpsync/ebsconn/internal/model"
)

// Builder owns the attribute set of one entity under construction.
// It is not safe for concurrent use.
type Builder struct {
	interest map[string]string // lower-cased name to caller spelling; nil accepts everything
	order    []string          // lower-cased names in first-seen order
	attrs    map[string]*entry
	built    bool
}

type entry struct {
	name   string
	values []any
	seen   map[any]struct{}
}

// New creates a builder restricted to the given attributes of interest.
// A nil slice accepts every attribute. Built attributes carry the spelling
// used in attrsOfInterest; without interest the first contribution's
// spelling is kept.
func New(attrsOfInterest []string) *Builder {
	b := &Builder{attrs: make(map[string]*entry)}
	if attrsOfInterest != nil {
		b.interest = make(map[string]string, len(attrsOfInterest))
		for _, name := range attrsOfInterest {
			key := strings.ToLower(name)
			if _, dup := b.interest[key]; !dup {
				b.interest[key] = name
			}
		}
	}
	return b
}

// Wants reports whether name is an attribute of interest.
func (b *Builder) Wants(name string) bool {
	if b.interest == nil {
		return true
	}
	_, ok := b.interest[strings.ToLower(name)]
	return ok
}

// AddAttribute merges values into the named attribute.
//
// The first contribution records the attribute even when values is empty, so an
// explicitly empty attribute differs from one never mentioned. Later
// contributions append only values not already present. A nil contribution
// never erases earlier values.
func (b *Builder) AddAttribute(name string, values []any) error {
	if b.built {
		return connerr.NewInvalidState("attribute set already built")
	}
	if !b.Wants(name) {
		return nil
	}

	key := strings.ToLower(name)
	e, ok := b.attrs[key]
	if !ok {
		if spelled, ok := b.interest[key]; ok {
			name = spelled
		}
		e = &entry{name: name, seen: make(map[any]struct{})}
		b.attrs[key] = e
		b.order = append(b.order, key)
	}
	for _, v := range values {
		if v == nil {
			continue
		}
		k := valueKey(v)
		if _, dup := e.seen[k]; dup {
			continue
		}
		e.seen[k] = struct{}{}
		e.values = append(e.values, v)
	}
	return nil
}

// AddValue is AddAttribute for a single value. A nil value still records the
// attribute as present.
func (b *Builder) AddValue(name string, value any) error {
	if value == nil {
		return b.AddAttribute(name, nil)
	}
	return b.AddAttribute(name, []any{value})
}

// AddAttributes merges whole attributes.
func (b *Builder) AddAttributes(attrs ...model.Attribute) error {
	for _, a := range attrs {
		if err := b.AddAttribute(a.Name, a.Values); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of distinct attributes accumulated so far.
func (b *Builder) Len() int { return len(b.order) }

// Build returns the accumulated attributes in first-seen order and consumes
// the builder.
func (b *Builder) Build() ([]model.Attribute, error) {
	if b.built {
		return nil, connerr.NewInvalidState("attribute set already built")
	}
	if len(b.order) == 0 {
		return nil, connerr.NewInvalidState("no attributes were merged")
	}
	b.built = true

	out := make([]model.Attribute, 0, len(b.order))
	for _, key := range b.order {
		e := b.attrs[key]
		values := make([]any, len(e.values))
		copy(values, e.values)
		out = append(out, model.Attribute{Name: e.name, Values: values})
	}
	b.attrs = nil
	return out, nil
}

type timeKey int64

// valueKey returns a comparable key so equal values from different drivers
// collapse: []byte and string compare as text, integers as int64.
func valueKey(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case time.Time:
		return timeKey(x.UnixNano())
	default:
		if !reflect.TypeOf(v).Comparable() {
			return fmt.Sprintf("%T:%v", v, v)
		}
		return v
	}
}

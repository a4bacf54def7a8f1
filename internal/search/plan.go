// Package search streams entities of one object kind out of the ERP
// database, one transaction per search.
package search

import (
	"strings"
	"time"

	"github.com/erpsync/ebsconn/internal/model"
	"github.com/erpsync/ebsconn/internal/query"
	"github.com/erpsync/ebsconn/internal/resolver"
	"github.com/erpsync/ebsconn/internal/resp"
	"github.com/erpsync/ebsconn/internal/schema"
	"github.com/erpsync/ebsconn/internal/store"
)

// Options shape a single search.
type Options struct {
	// AttributesToGet lists the attributes returned on each entity. Nil
	// selects the kind's returned-by-default attributes.
	AttributesToGet []string
	ActiveOnly      bool
	// ID restricts the search to the object with this identity value.
	ID string
	// AsOf anchors relative dates such as "today" in the filter. Zero means
	// the current time.
	AsOf time.Time
}

// Plan is the translated form of a search request.
type Plan struct {
	Kind   model.Kind
	Source resp.Source

	// Predicate is the native form of the filter; nil when the filter is
	// applied to assembled entities instead.
	Predicate  *query.NativePredicate
	PostFilter query.Filter

	// Requested are the attributes kept on returned entities.
	Requested []string
	// Interest are the attributes merged while assembling an entity.
	Interest []string
	// Unmapped are requested attributes the schema does not define; they pass
	// through to the sources unchanged.
	Unmapped []string

	SQL  string
	Args []any
}

// Native reports whether the whole filter runs in the database.
func (p *Plan) Native() bool { return p.PostFilter == nil }

// Prepare translates a search request into a plan for the given schema and
// dialect. It touches no connection.
func Prepare(kind model.Kind, filter query.Filter, opts Options, sc *schema.Schema, newViews bool, dialect store.Dialect) (*Plan, error) {
	src, err := resp.SourceFor(kind, resp.Config{NewViews: newViews, Dialect: dialect})
	if err != nil {
		return nil, err
	}

	p := &Plan{Kind: kind, Source: src}

	asOf := opts.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}
	filter = query.ResolveDates(filter, asOf)

	tr := query.NewTranslator(resolver.For(kind), src.Columns(), sc.MultiValued(kind))
	if pred, ok := tr.Translate(filter); ok {
		p.Predicate = pred
	} else {
		p.PostFilter = filter
	}

	if opts.AttributesToGet != nil {
		p.Requested = append([]string{}, opts.AttributesToGet...)
	} else {
		p.Requested = append([]string{}, sc.DefaultAttributes(kind)...)
	}

	for _, name := range p.Requested {
		if model.IsIdentity(name) {
			continue
		}
		if _, ok := sc.Attribute(kind, name); !ok {
			p.Unmapped = append(p.Unmapped, name)
		}
	}

	p.Interest = union([]string{model.AttrName, model.AttrUID}, p.Requested)
	if p.PostFilter != nil {
		p.Interest = union(p.Interest, query.Attributes(p.PostFilter))
	}

	p.SQL, p.Args = src.Base(p.Predicate, resp.Options{ActiveOnly: opts.ActiveOnly, ID: opts.ID})
	return p, nil
}

// union appends the names of b missing from a, comparing case-insensitively.
func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, name := range list {
			key := strings.ToLower(name)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, name)
		}
	}
	return out
}

package model

import "strings"

// Attribute is a named, possibly multi-valued piece of entity data.
// Values keep first-seen order and hold no duplicates.
type Attribute struct {
	Name   string `json:"name"`
	Values []any  `json:"values"`
}

// Is reports whether the attribute has the given name (case-insensitive).
func (a Attribute) Is(name string) bool {
	return strings.EqualFold(a.Name, name)
}

// IsIdentity reports whether name is one of the identity aliases __NAME__ or
// __UID__.
func IsIdentity(name string) bool {
	return strings.EqualFold(name, AttrName) || strings.EqualFold(name, AttrUID)
}

// First returns the first value, or nil for an attribute without values.
func (a Attribute) First() any {
	if len(a.Values) == 0 {
		return nil
	}
	return a.Values[0]
}

// Entity is one logical object produced by a search.
type Entity struct {
	Kind       Kind        `json:"kind"`
	UID        string      `json:"uid"`
	Name       string      `json:"name"`
	Attributes []Attribute `json:"attributes"`
}

// Attr returns the attribute with the given name.
func (e Entity) Attr(name string) (Attribute, bool) {
	switch {
	case strings.EqualFold(name, AttrName):
		return Attribute{Name: AttrName, Values: []any{e.Name}}, true
	case strings.EqualFold(name, AttrUID):
		return Attribute{Name: AttrUID, Values: []any{e.UID}}, true
	}
	for _, a := range e.Attributes {
		if a.Is(name) {
			return a, true
		}
	}
	return Attribute{}, false
}

// Value returns the first value of the named attribute, or nil.
func (e Entity) Value(name string) any {
	a, ok := e.Attr(name)
	if !ok {
		return nil
	}
	return a.First()
}

// Retain drops every attribute whose name is not in names. The identity
// attributes are kept on the entity itself and are never dropped.
// A nil names slice keeps everything.
func (e *Entity) Retain(names []string) {
	if names == nil {
		return
	}
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[strings.ToLower(n)] = true
	}
	out := e.Attributes[:0]
	for _, a := range e.Attributes {
		if keep[strings.ToLower(a.Name)] {
			out = append(out, a)
		}
	}
	e.Attributes = out
}

// SplitIdentity removes the __UID__ and __NAME__ attributes from attrs and
// returns their first values as strings.
func SplitIdentity(attrs []Attribute) (uid, name string, rest []Attribute) {
	rest = make([]Attribute, 0, len(attrs))
	for _, a := range attrs {
		switch {
		case a.Is(AttrUID):
			uid = firstString(a)
		case a.Is(AttrName):
			name = firstString(a)
		default:
			rest = append(rest, a)
		}
	}
	return uid, name, rest
}

func firstString(a Attribute) string {
	s, _ := a.First().(string)
	return s
}

// Package schema describes the attributes each object kind exposes.
package schema

import (
	"sort"
	"strings"

	"github.com/erpsync/ebsconn/internal/model"
)

// CurrentSchemaVersion is the latest schema format version.
const CurrentSchemaVersion = 1

// Schema is the attribute catalog, keyed by object kind name.
type Schema struct {
	Version int                        `yaml:"version,omitempty"`
	Kinds   map[string]*KindDefinition `yaml:"kinds"`
}

// KindDefinition lists the attributes of one object kind.
type KindDefinition struct {
	Description string                          `yaml:"description,omitempty"`
	Attributes  map[string]*AttributeDefinition `yaml:"attributes"`
}

// AttributeDefinition describes one logical attribute.
type AttributeDefinition struct {
	Type        AttributeType `yaml:"type"`
	Required    bool          `yaml:"required,omitempty"`
	MultiValued bool          `yaml:"multi_valued,omitempty"`
	// ReturnedByDefault is nil when unset, which means true.
	ReturnedByDefault *bool `yaml:"returned_by_default,omitempty"`
}

// IsReturnedByDefault reports whether the attribute is fetched when the caller
// names no attributes.
func (a *AttributeDefinition) IsReturnedByDefault() bool {
	return a.ReturnedByDefault == nil || *a.ReturnedByDefault
}

// AttributeType represents the value type of an attribute.
type AttributeType string

const (
	TypeString   AttributeType = "string"
	TypeNumber   AttributeType = "number"
	TypeDate     AttributeType = "date"
	TypeDatetime AttributeType = "datetime"
	TypeBool     AttributeType = "bool"
)

// Valid reports whether t is a known attribute type.
func (t AttributeType) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeDate, TypeDatetime, TypeBool:
		return true
	}
	return false
}

// Kind returns the definition of kind.
func (s *Schema) Kind(kind model.Kind) (*KindDefinition, bool) {
	if s == nil || s.Kinds == nil {
		return nil, false
	}
	for name, def := range s.Kinds {
		if strings.EqualFold(name, string(kind)) {
			return def, true
		}
	}
	return nil, false
}

// Attribute looks up an attribute of kind case-insensitively.
func (s *Schema) Attribute(kind model.Kind, name string) (*AttributeDefinition, bool) {
	def, ok := s.Kind(kind)
	if !ok {
		return nil, false
	}
	for attr, ad := range def.Attributes {
		if strings.EqualFold(attr, name) {
			return ad, true
		}
	}
	return nil, false
}

// MultiValued returns the sorted multi-valued attribute names of kind.
func (s *Schema) MultiValued(kind model.Kind) []string {
	return s.attributes(kind, func(a *AttributeDefinition) bool { return a.MultiValued })
}

// DefaultAttributes returns the sorted attributes fetched when the caller
// requests none explicitly.
func (s *Schema) DefaultAttributes(kind model.Kind) []string {
	return s.attributes(kind, func(a *AttributeDefinition) bool { return a.IsReturnedByDefault() })
}

// AttributeNames returns every attribute name of kind, sorted.
func (s *Schema) AttributeNames(kind model.Kind) []string {
	return s.attributes(kind, func(*AttributeDefinition) bool { return true })
}

func (s *Schema) attributes(kind model.Kind, keep func(*AttributeDefinition) bool) []string {
	def, ok := s.Kind(kind)
	if !ok {
		return nil
	}
	var out []string
	for name, ad := range def.Attributes {
		if keep(ad) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// DefinedKinds returns the defined kinds in model display order; unknown names are skipped.
func (s *Schema) DefinedKinds() []model.Kind {
	var out []model.Kind
	for _, k := range model.Kinds {
		if _, ok := s.Kind(k); ok {
			out = append(out, k)
		}
	}
	return out
}

// ForLegacyViews returns a copy of s without the data that only the split
// direct/indirect assignment views provide.
func (s *Schema) ForLegacyViews() *Schema {
	out := &Schema{Version: s.Version, Kinds: make(map[string]*KindDefinition, len(s.Kinds))}
	for name, def := range s.Kinds {
		if strings.EqualFold(name, string(model.KindIndirectResponsibilities)) {
			continue
		}
		cp := &KindDefinition{Description: def.Description, Attributes: make(map[string]*AttributeDefinition, len(def.Attributes))}
		for attr, ad := range def.Attributes {
			if strings.EqualFold(attr, model.AttrIndirectResponsibilities) {
				continue
			}
			cp.Attributes[attr] = ad
		}
		out.Kinds[name] = cp
	}
	return out
}

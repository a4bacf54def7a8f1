package schema

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/erpsync/ebsconn/internal/model"
)

// Load reads a schema file and overlays it onto the built-in schema.
// Returns the default schema if path is empty or the file doesn't exist.
func Load(path string) (*Schema, error) {
	base := Default()
	if path == "" {
		return base, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}

	var overlay Schema
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse schema file %s: %w", path, err)
	}
	if err := overlay.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema file %s: %w", path, err)
	}

	base.merge(&overlay)
	return base, nil
}

// Validate checks kind names and attribute types.
func (s *Schema) Validate() error {
	if s.Version > CurrentSchemaVersion {
		return fmt.Errorf("schema version %d is newer than supported version %d", s.Version, CurrentSchemaVersion)
	}
	for name, def := range s.Kinds {
		if _, err := model.ParseKind(name); err != nil {
			return err
		}
		if def == nil {
			continue
		}
		for attr, ad := range def.Attributes {
			if strings.TrimSpace(attr) == "" {
				return fmt.Errorf("kind %s: empty attribute name", name)
			}
			if ad == nil {
				return fmt.Errorf("kind %s: attribute %s has no definition", name, attr)
			}
			if !ad.Type.Valid() {
				return fmt.Errorf("kind %s: attribute %s has unknown type %q", name, attr, ad.Type)
			}
		}
	}
	return nil
}

// merge overlays o onto s. Attributes in o replace same-named ones in s.
func (s *Schema) merge(o *Schema) {
	for name, def := range o.Kinds {
		kind, _ := model.ParseKind(name)
		target, ok := s.Kind(kind)
		if !ok {
			target = &KindDefinition{Attributes: make(map[string]*AttributeDefinition)}
			s.Kinds[string(kind)] = target
		}
		if def == nil {
			continue
		}
		if def.Description != "" {
			target.Description = def.Description
		}
		for attr, ad := range def.Attributes {
			for existing := range target.Attributes {
				if strings.EqualFold(existing, attr) {
					delete(target.Attributes, existing)
				}
			}
			target.Attributes[attr] = ad
		}
	}
}

package schema

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/erpsync/ebsconn/internal/model"
)

func TestLoad(t *testing.T) {
	t.Run("default schema when no file", func(t *testing.T) {
		s, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(s.DefinedKinds()) != len(model.Kinds) {
			t.Errorf("expected %d kinds, got %v", len(model.Kinds), s.DefinedKinds())
		}
	})

	t.Run("overlay adds and replaces attributes", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schema.yaml")
		content := `
version: 1
kinds:
  Account:
    attributes:
      customer_id:
        type: number
      EMAIL_ADDRESS:
        type: string
        required: true
      responsibilities:
        type: string
        multi_valued: true
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write schema: %v", err)
		}

		s, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, ok := s.Attribute(model.KindAccount, "customer_id"); !ok {
			t.Error("expected customer_id to be added")
		}
		email, ok := s.Attribute(model.KindAccount, "email_address")
		if !ok || !email.Required {
			t.Errorf("expected email_address to be replaced with a required attribute, got %+v", email)
		}
		resp, _ := s.Attribute(model.KindAccount, "responsibilities")
		if !resp.IsReturnedByDefault() {
			t.Error("overlay without returned_by_default should default to returned")
		}
		if _, ok := s.Attribute(model.KindAccount, "fax"); !ok {
			t.Error("expected built-in attributes to survive the overlay")
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schema.yaml")
		if err := os.WriteFile(path, []byte("kinds:\n  groups:\n    attributes: {}\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Error("expected error for unknown kind")
		}
	})

	t.Run("bad attribute type", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schema.yaml")
		if err := os.WriteFile(path, []byte("kinds:\n  account:\n    attributes:\n      x:\n        type: blob\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Error("expected error for unknown attribute type")
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schema.yaml")
		if err := os.WriteFile(path, []byte("kinds: [\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestDefaultAttributeSets(t *testing.T) {
	s := Default()

	mv := s.MultiValued(model.KindAccount)
	want := []string{"directResponsibilities", "indirectResponsibilities", "responsibilities"}
	if !reflect.DeepEqual(mv, want) {
		t.Errorf("MultiValued(account) = %v, want %v", mv, want)
	}

	for _, name := range s.DefaultAttributes(model.KindAccount) {
		if name == model.AttrResponsibilities {
			t.Error("responsibilities should only be fetched on request")
		}
	}

	if got := len(s.MultiValued(model.KindAuditorResps)); got != 19 {
		t.Errorf("expected 19 auditor attributes, got %d", got)
	}
}

func TestForLegacyViews(t *testing.T) {
	s := Default().ForLegacyViews()

	if _, ok := s.Kind(model.KindIndirectResponsibilities); ok {
		t.Error("legacy schema should not expose indirect responsibilities")
	}
	if _, ok := s.Attribute(model.KindAccount, model.AttrIndirectResponsibilities); ok {
		t.Error("legacy schema should not expose the indirect account attribute")
	}
	if _, ok := s.Attribute(model.KindAccount, model.AttrDirectResponsibilities); !ok {
		t.Error("legacy schema keeps direct responsibilities")
	}
	if _, ok := Default().Kind(model.KindIndirectResponsibilities); !ok {
		t.Error("ForLegacyViews must not modify the receiver")
	}
}

package slugs

import (
	"strings"
	"testing"
)

func TestComponentSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"System Administrator", "system-administrator"},
		{"GL Inquiry: read only", "gl-inquiry-read-only"},
		{"", "all"},
		{"   ", "all"},
	}
	for _, tt := range tests {
		if got := ComponentSlug(tt.in); got != tt.want {
			t.Errorf("ComponentSlug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestComponentSlugLength(t *testing.T) {
	got := ComponentSlug(strings.Repeat("responsibility ", 20))
	if len(got) > maxLength {
		t.Errorf("slug longer than %d: %d", maxLength, len(got))
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("slug ends with a dash: %q", got)
	}
}

func TestExportName(t *testing.T) {
	if got := ExportName("auditorResps", ""); got != "auditorresps-all.json" {
		t.Errorf("unexpected export name %q", got)
	}
}

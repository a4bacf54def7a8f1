package ui

import (
	"strings"
	"testing"
)

func TestTruncateWithEllipsis(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"System Administrator", 8, "System …"},
		{"abc", 1, "…"},
		{"abc", 0, ""},
	}
	for _, c := range cases {
		if got := TruncateWithEllipsis(c.in, c.max); got != c.want {
			t.Errorf("TruncateWithEllipsis(%q, %d) = %q, want %q", c.in, c.max, got, c.want)
		}
	}
}

func TestTableAlignsColumns(t *testing.T) {
	tbl := NewTable(0)
	tbl.AddRow("JDOE", "jdoe@example.com")
	tbl.AddRow("ASMITH", "asmith@example.com")

	lines := strings.Split(strings.TrimRight(tbl.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "JDOE    jdoe@example.com" {
		t.Errorf("unexpected first line %q", lines[0])
	}
}

func TestTableFitsWidth(t *testing.T) {
	tbl := NewTable(30)
	tbl.AddRow("JDOE", strings.Repeat("x", 60))

	for _, line := range strings.Split(strings.TrimRight(tbl.String(), "\n"), "\n") {
		if w := len([]rune(line)); w > 30 {
			t.Errorf("line wider than 30: %d", w)
		}
	}
}

package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders rows aligned in columns without borders. The first row added
// with SetHeader is styled as a header.
type Table struct {
	header     []string
	rows       [][]string
	colPadding int
	maxWidth   int
}

// NewTable creates a new table. A positive maxWidth truncates the widest
// column so each line fits.
func NewTable(maxWidth int) *Table {
	return &Table{colPadding: 2, maxWidth: maxWidth}
}

// SetHeader sets the header cells.
func (t *Table) SetHeader(cells ...string) {
	t.header = cells
}

// AddRow adds a row to the table
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

func (t *Table) widths() []int {
	var widths []int
	measure := func(row []string) {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(t.header)
	for _, row := range t.rows {
		measure(row)
	}

	if t.maxWidth <= 0 || len(widths) == 0 {
		return widths
	}
	total := t.colPadding * (len(widths) - 1)
	widest := 0
	for i, w := range widths {
		total += w
		if w > widths[widest] {
			widest = i
		}
	}
	if over := total - t.maxWidth; over > 0 {
		widths[widest] = max(widths[widest]-over, 8)
	}
	return widths
}

// String renders the table as a string
func (t *Table) String() string {
	if len(t.rows) == 0 && len(t.header) == 0 {
		return ""
	}

	widths := t.widths()
	padding := strings.Repeat(" ", t.colPadding)

	var sb strings.Builder
	writeRow := func(row []string, style *lipgloss.Style) {
		for i, cell := range row {
			if i > 0 {
				sb.WriteString(padding)
			}
			cell = TruncateWithEllipsis(cell, widths[i])
			gap := widths[i] - lipgloss.Width(cell)
			if style != nil {
				cell = style.Render(cell)
			}
			sb.WriteString(cell)
			if i < len(row)-1 {
				sb.WriteString(strings.Repeat(" ", gap))
			}
		}
		sb.WriteString("\n")
	}

	if len(t.header) > 0 {
		writeRow(t.header, &AccentBold)
	}
	for _, row := range t.rows {
		writeRow(row, nil)
	}
	return sb.String()
}

// TruncateWithEllipsis shortens s to maxLen runes, marking the cut with "…".
func TruncateWithEllipsis(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen == 1 {
		return "…"
	}
	return string(runes[:maxLen-1]) + "…"
}

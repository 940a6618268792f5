package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders aligned rows of session data. Cells may contain styled
// text; widths are measured on the visible characters.
type Table struct {
	headers  []string
	rows     [][]string
	widths   []int
	right    []bool
	maxWidth []int
}

// NewTable creates a new table with the given column headers.
func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = visualLen(h)
	}
	return &Table{
		headers:  headers,
		widths:   widths,
		right:    make([]bool, len(headers)),
		maxWidth: make([]int, len(headers)),
	}
}

// AlignRight right-aligns the given columns, for counts and minutes.
// Out of range indexes are ignored.
func (t *Table) AlignRight(cols ...int) *Table {
	for _, c := range cols {
		if c >= 0 && c < len(t.right) {
			t.right[c] = true
		}
	}
	return t
}

// MaxWidth truncates cells in col to width visible characters, marking
// the cut with an ellipsis. Call before adding rows.
func (t *Table) MaxWidth(col, width int) *Table {
	if col >= 0 && col < len(t.maxWidth) && width > 1 {
		t.maxWidth[col] = width
		if t.widths[col] > width {
			t.widths[col] = width
		}
	}
	return t
}

// AddRow adds a row of values to the table. Missing values render empty;
// extra values are dropped.
func (t *Table) AddRow(values ...string) {
	row := make([]string, len(t.headers))
	for i := range t.headers {
		if i < len(values) {
			row[i] = values[i]
		}
		if m := t.maxWidth[i]; m > 0 && visualLen(row[i]) > m {
			row[i] = truncate(row[i], m)
		}
		if w := visualLen(row[i]); w > t.widths[i] {
			t.widths[i] = w
		}
	}
	t.rows = append(t.rows, row)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render returns the formatted table as a string.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	var sb strings.Builder

	for i, h := range t.headers {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(StyleHeader.Render(t.align(i, h)))
	}
	sb.WriteString("\n")

	for i, w := range t.widths {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(StyleMuted.Render(strings.Repeat("─", w)))
	}
	sb.WriteString("\n")

	for _, row := range t.rows {
		for i, cell := range row {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(t.align(i, cell))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// String implements fmt.Stringer.
func (t *Table) String() string {
	return t.Render()
}

// Print writes the table to stdout.
func (t *Table) Print() {
	fmt.Print(t.Render())
}

func (t *Table) align(col int, s string) string {
	if t.right[col] {
		return padLeft(s, t.widths[col])
	}
	return pad(s, t.widths[col])
}

// visualLen returns the printed width of s, ignoring ANSI escapes.
func visualLen(s string) int {
	return lipgloss.Width(s)
}

// pad right-pads a string to the given visual width.
func pad(s string, width int) string {
	n := visualLen(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// padLeft left-pads a string to the given visual width.
func padLeft(s string, width int) string {
	n := visualLen(s)
	if n >= width {
		return s
	}
	return strings.Repeat(" ", width-n) + s
}

// truncate shortens plain text to width runes, the last being an ellipsis.
// Styled cells should not be truncated.
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

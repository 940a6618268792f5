package output

import (
	"strings"
	"testing"
)

func TestVisualLen_PlainText(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"hello", 5},
		{"", 0},
		{"abc def", 7},
	}

	for _, tc := range tests {
		got := visualLen(tc.input)
		if got != tc.want {
			t.Errorf("visualLen(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestVisualLen_StripsANSI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{
			name:  "bold",
			input: "\x1b[1mhello\x1b[0m",
			want:  5,
		},
		{
			name:  "color",
			input: "\x1b[31mred\x1b[0m",
			want:  3,
		},
		{
			name:  "multiple sequences",
			input: "\x1b[1m\x1b[34mblue bold\x1b[0m",
			want:  9,
		},
		{
			name:  "no ansi",
			input: "plain text",
			want:  10,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := visualLen(tc.input)
			if got != tc.want {
				t.Errorf("visualLen() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestPad(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  int // expected length of output
	}{
		{"needs padding", "hi", 10, 10},
		{"exact width", "hello", 5, 5},
		{"over width", "toolong", 3, 7}, // no truncation
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := pad(tc.input, tc.width)
			if len(got) != tc.want {
				t.Errorf("pad(%q, %d) len = %d, want %d", tc.input, tc.width, len(got), tc.want)
			}
		})
	}
}

func TestPadLeft(t *testing.T) {
	if got := padLeft("25", 5); got != "   25" {
		t.Errorf("padLeft = %q, want %q", got, "   25")
	}
	if got := padLeft("toolong", 3); got != "toolong" {
		t.Errorf("padLeft should not truncate, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"suggestion_accepted", 10, "suggestio…"},
		{"pause café break", 12, "pause café …"},
	}
	for _, tc := range tests {
		if got := truncate(tc.in, tc.width); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}

func TestTable_Render(t *testing.T) {
	// Disable color so we get predictable output.
	SetNoColor(true)
	defer SetNoColor(false)

	tbl := NewTable("Status", "Planned")
	tbl.AddRow("completed", "25m")
	tbl.AddRow("abandoned", "30m")

	output := tbl.Render()

	for _, want := range []string{"Status", "Planned", "completed", "abandoned", "─"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output", want)
		}
	}

	// header + separator + 2 data rows
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) != 4 {
		t.Errorf("expected 4 lines, got %d", len(lines))
	}
}

func TestTable_EmptyHeaders(t *testing.T) {
	tbl := NewTable()
	if output := tbl.Render(); output != "" {
		t.Errorf("expected empty output for empty table, got %q", output)
	}
}

func TestTable_AlignRight(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	tbl := NewTable("Date", "Sessions").AlignRight(1, 7)
	tbl.AddRow("2026-04-15", "3")
	tbl.AddRow("2026-04-16", "12")

	lines := strings.Split(strings.TrimRight(tbl.Render(), "\n"), "\n")
	if !strings.HasSuffix(lines[2], "       3") {
		t.Errorf("row %q should end with a right-aligned 3", lines[2])
	}
	if !strings.HasSuffix(lines[3], "      12") {
		t.Errorf("row %q should end with a right-aligned 12", lines[3])
	}
}

func TestTable_MaxWidth(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	tbl := NewTable("Action", "Description").MaxWidth(1, 12)
	tbl.AddRow("nudge_sent", "reminded the user to start a session")

	out := tbl.Render()
	if !strings.Contains(out, "reminded th…") {
		t.Errorf("expected truncated description, got:\n%s", out)
	}
	if tbl.widths[1] != 12 {
		t.Errorf("width = %d, want 12", tbl.widths[1])
	}
}

func TestTable_String(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	tbl := NewTable("Col1")
	tbl.AddRow("Val1")

	if tbl.String() != tbl.Render() {
		t.Error("String() != Render()")
	}
}

func TestTable_PadsStyledCells(t *testing.T) {
	tbl := NewTable("Status", "Min")
	tbl.AddRow("\x1b[32mcompleted\x1b[0m", "25")
	tbl.AddRow("abandoned", "12")

	if tbl.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tbl.Len())
	}
	if tbl.widths[0] != len("completed") {
		t.Errorf("width = %d, want %d (escapes must not count)", tbl.widths[0], len("completed"))
	}
}

func TestSetNoColor(t *testing.T) {
	SetNoColor(true)
	rendered := StyleHeader.Render("test")
	if strings.Contains(rendered, "\x1b[") {
		t.Error("expected no ANSI codes after SetNoColor(true)")
	}
	if !IsNoColor() {
		t.Error("IsNoColor() = false after SetNoColor(true)")
	}

	SetNoColor(false)
	if IsNoColor() {
		t.Error("IsNoColor() = true after SetNoColor(false)")
	}
}

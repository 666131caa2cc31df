package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestOptionCellsSameWidth(t *testing.T) {
	cells := optionCells([]string{"RED", "YELLOW", "JOY"}, func(i int) string { return string(rune('1' + i)) })
	if len(cells) != 3 {
		t.Fatalf("expected 3 cells, got %d", len(cells))
	}
	for _, c := range cells {
		if c.width != len("[2] YELLOW") {
			t.Fatalf("expected padded width %d, got %d", len("[2] YELLOW"), c.width)
		}
	}
}

func TestWrapCellsBreaksRows(t *testing.T) {
	plain := lipgloss.NewStyle()
	cells := []cell{newCell("aaaa", plain), newCell("bbbb", plain), newCell("cccc", plain)}

	out := wrapCells(cells, 10, 2)
	rows := strings.Split(out, "\n")
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d: %q", len(rows), out)
	}
	if !strings.Contains(rows[0], "aaaa  bbbb") {
		t.Fatalf("unexpected first row %q", rows[0])
	}
	if !strings.Contains(rows[1], "cccc") {
		t.Fatalf("unexpected second row %q", rows[1])
	}
}

func TestWrapCellsNoWidth(t *testing.T) {
	plain := lipgloss.NewStyle()
	out := wrapCells([]cell{newCell("a", plain), newCell("b", plain)}, 0, 1)
	if strings.Contains(out, "\n") {
		t.Fatalf("expected a single row, got %q", out)
	}
	if wrapCells(nil, 10, 1) != "" {
		t.Fatalf("expected empty output for no cells")
	}
}

func TestCenterText(t *testing.T) {
	if got := centerText("ab", 6); got != "  ab  " {
		t.Fatalf("unexpected centering %q", got)
	}
	if got := centerText("abcdef", 3); got != "abcdef" {
		t.Fatalf("text wider than width must be kept, got %q", got)
	}
	if got := spaced("RED"); got != "R E D" {
		t.Fatalf("unexpected spacing %q", got)
	}
}

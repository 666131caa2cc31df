package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// textTable lays out plain-text columns. Cells are padded by display width
// so color names and headers line up in any terminal.
type textTable struct {
	headers []string
	rows    [][]string
	right   map[int]bool
}

func newTextTable(headers ...string) *textTable {
	return &textTable{headers: headers, right: map[int]bool{}}
}

func (t *textTable) alignRight(cols ...int) *textTable {
	for _, c := range cols {
		t.right[c] = true
	}
	return t
}

func (t *textTable) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *textTable) lines() []string {
	widths := make([]int, len(t.headers))
	measure := func(row []string) {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(t.headers)
	for _, row := range t.rows {
		measure(row)
	}
	if len(widths) == 0 {
		return nil
	}

	out := make([]string, 0, len(t.rows)+1)
	if len(t.headers) > 0 {
		out = append(out, t.format(t.headers, widths))
	}
	for _, row := range t.rows {
		out = append(out, t.format(row, widths))
	}
	return out
}

func (t *textTable) format(row []string, widths []int) string {
	cells := make([]string, len(widths))
	for i, width := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		pad := strings.Repeat(" ", max(width-runewidth.StringWidth(cell), 0))
		if t.right[i] {
			cells[i] = pad + cell
		} else {
			cells[i] = cell + pad
		}
	}
	return strings.TrimRight(strings.Join(cells, "  "), " ")
}

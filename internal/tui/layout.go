package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// cell is a pre-rendered piece of text together with its display width,
// which lipgloss escape sequences would otherwise hide.
type cell struct {
	s     string
	width int
}

func newCell(text string, style lipgloss.Style) cell {
	return cell{s: style.Render(text), width: runewidth.StringWidth(text)}
}

// optionCells renders the response options as equally wide labels.
func optionCells(options []string, keyFor func(int) string) []cell {
	labels := make([]string, len(options))
	widest := 0
	for i, opt := range options {
		labels[i] = "[" + keyFor(i) + "] " + opt
		widest = max(widest, runewidth.StringWidth(labels[i]))
	}
	cells := make([]cell, len(labels))
	for i, label := range labels {
		cells[i] = newCell(runewidth.FillRight(label, widest), optionStyle)
	}
	return cells
}

// wrapCells lays cells out left to right, breaking to a new row before a
// cell that would overflow width. Rows are joined with newlines.
func wrapCells(cells []cell, width, gap int) string {
	if len(cells) == 0 {
		return ""
	}
	sep := strings.Repeat(" ", gap)
	var out strings.Builder
	lineWidth := 0
	for i, c := range cells {
		if i > 0 {
			if width > 0 && lineWidth+gap+c.width > width {
				out.WriteRune('\n')
				lineWidth = 0
			} else {
				out.WriteString(sep)
				lineWidth += gap
			}
		}
		out.WriteString(c.s)
		lineWidth += c.width
	}
	return out.String()
}

// centerText pads text on both sides to width display columns.
func centerText(text string, width int) string {
	w := runewidth.StringWidth(text)
	if w >= width {
		return text
	}
	left := (width - w) / 2
	return strings.Repeat(" ", left) + runewidth.FillRight(text, width-left)
}

// spaced inserts a blank between the letters of a stimulus word.
func spaced(word string) string {
	runes := []rune(word)
	parts := make([]string, len(runes))
	for i, r := range runes {
		parts[i] = string(r)
	}
	return strings.Join(parts, " ")
}

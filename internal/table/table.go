// Package table renders rows of text as an ASCII box table. Cell widths
// ignore ANSI color codes and account for wide runes.
package table

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Alignment of text within a column.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripAnsi(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

func displayWidth(s string) int {
	return runewidth.StringWidth(stripAnsi(s))
}

// Table accumulates a header and rows and writes them with Render.
type Table struct {
	w           io.Writer
	header      []string
	rows        [][]string
	columnAlign []Alignment
	headerAlign []Alignment
}

// NewTable returns an empty table that renders to w.
func NewTable(w io.Writer) *Table {
	return &Table{w: w}
}

func (t *Table) WithHeader(header []string) *Table {
	t.header = header
	return t
}

func (t *Table) WithColumnAlignment(align []Alignment) *Table {
	t.columnAlign = align
	return t
}

func (t *Table) WithHeaderAlignment(align []Alignment) *Table {
	t.headerAlign = align
	return t
}

func (t *Table) WithRows(rows [][]string) *Table {
	t.rows = append(t.rows, rows...)
	return t
}

// Append adds a row.
func (t *Table) Append(row []string) *Table {
	t.rows = append(t.rows, row)
	return t
}

// Render writes the table. Rows shorter than the header are padded with
// empty cells.
func (t *Table) Render() {
	columns := len(t.header)
	for _, row := range t.rows {
		columns = max(columns, len(row))
	}
	if columns == 0 {
		return
	}

	widths := make([]int, columns)
	for i, h := range t.header {
		widths[i] = displayWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], displayWidth(cell))
		}
	}

	var border strings.Builder
	border.WriteString("+")
	for _, width := range widths {
		border.WriteString(strings.Repeat("-", width+2))
		border.WriteString("+")
	}

	fmt.Fprintln(t.w, border.String())
	if len(t.header) > 0 {
		t.writeRow(t.header, widths, t.headerAlign)
		fmt.Fprintln(t.w, border.String())
	}
	for _, row := range t.rows {
		t.writeRow(row, widths, t.columnAlign)
	}
	fmt.Fprintln(t.w, border.String())
}

func (t *Table) writeRow(row []string, widths []int, align []Alignment) {
	var line strings.Builder
	line.WriteString("|")
	for i, width := range widths {
		var cell string
		if i < len(row) {
			cell = row[i]
		}
		a := AlignLeft
		if i < len(align) {
			a = align[i]
		}
		line.WriteString(" ")
		line.WriteString(pad(cell, width, a))
		line.WriteString(" |")
	}
	fmt.Fprintln(t.w, line.String())
}

func pad(s string, width int, align Alignment) string {
	gap := width - displayWidth(s)
	if gap <= 0 {
		return s
	}
	switch align {
	case AlignRight:
		return strings.Repeat(" ", gap) + s
	case AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return s + strings.Repeat(" ", gap)
	}
}

// Package table provides the display table every tool returns alongside its
// typed result. Cells are pre-formatted strings so transcripts and API
// responses render without knowing column semantics.
package table

import (
	"fmt"
	"strings"
)

// Table is an ordered set of named columns with formatted string cells.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// New creates an empty table with the given columns.
func New(columns ...string) *Table {
	return &Table{Columns: columns}
}

// Append adds a row. Short rows are padded with empty cells.
func (t *Table) Append(cells ...string) {
	for len(cells) < len(t.Columns) {
		cells = append(cells, "")
	}
	t.Rows = append(t.Rows, cells)
}

// Empty reports whether the table has no data rows.
func (t *Table) Empty() bool { return t == nil || len(t.Rows) == 0 }

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// String renders a plain-text fixed-width table for logs and CLI output.
func (t *Table) String() string {
	if t == nil || len(t.Columns) == 0 {
		return ""
	}
	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = len(c)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	var b strings.Builder
	writeRow := func(cells []string) {
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			fmt.Fprintf(&b, "%-*s", w, cell)
			if i < len(widths)-1 {
				b.WriteString("  ")
			}
		}
		b.WriteByte('\n')
	}
	writeRow(t.Columns)
	for _, row := range t.Rows {
		writeRow(row)
	}
	return b.String()
}

// Money formats a value as whole dollars with thousands separators.
func Money(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := group(fmt.Sprintf("%.0f", v))
	if neg {
		return "-$" + s
	}
	return "$" + s
}

// Count formats a value as a whole number with thousands separators.
func Count(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := group(fmt.Sprintf("%.0f", v))
	if neg {
		return "-" + s
	}
	return s
}

// Pct formats a percentage with one decimal, e.g. "34.5%".
func Pct(v float64) string { return fmt.Sprintf("%.1f%%", v) }

// SignedPct formats a percentage with an explicit sign, e.g. "+12.3%".
func SignedPct(v float64) string { return fmt.Sprintf("%+.1f%%", v) }

// SignedCount formats a signed whole number with separators, e.g. "+20,000".
func SignedCount(v float64) string {
	if v < 0 {
		return "-" + group(fmt.Sprintf("%.0f", -v))
	}
	return "+" + group(fmt.Sprintf("%.0f", v))
}

func group(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	rem := n % 3
	if rem > 0 {
		b.WriteString(digits[:rem])
	}
	for i := rem; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

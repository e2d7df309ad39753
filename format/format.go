// Package format renders query result sets through interchangeable
// formatters: aligned columns, comma-separated values, NUL-delimited
// records, and an auto-grouping layout that collapses repeated leading
// values to minimize printed screen area.
package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/ashlog/ash/histdb"
)

// Separator is the fixed column separator; its width also sets the indent
// step used by the auto-grouping formatter.
const Separator = "   "

// maxColumnWidth caps the measured width of a column. Values longer than
// the cap still print in full; only the computed alignment is bounded.
const maxColumnWidth = 80

// A Formatter renders a result set to an output stream. Print must not
// mutate the result set, and must omit the headings entirely (not blank
// them) when showHeadings is false. A nil result set prints nothing.
type Formatter interface {
	Name() string
	Description() string
	Print(w io.Writer, rs *histdb.ResultSet, showHeadings bool) error
}

// formatters holds every available formatter, ordered by name.
var formatters = []Formatter{
	Aligned{},
	Grouped{},
	CSV{},
	Null{},
}

// Lookup returns the formatter with the given name.
func Lookup(name string) (Formatter, bool) {
	for _, f := range formatters {
		if f.Name() == name {
			return f, true
		}
	}
	return nil, false
}

// List returns the available formatters as a (Format, Description) result
// set, ready for the aligned formatter.
func List() *histdb.ResultSet {
	rs := &histdb.ResultSet{Headings: []string{"Format", "Description"}}
	for _, f := range formatters {
		rs.Rows = append(rs.Rows, []any{f.Name(), f.Description()})
	}
	return rs
}

// columnWidths computes, per column, the minimum width needed across all
// rows actually printed, capped at maxColumnWidth. Headings count only when
// they will be shown.
func columnWidths(rs *histdb.ResultSet, showHeadings bool) []int {
	widths := make([]int, len(rs.Headings))
	if showHeadings {
		for i, h := range rs.Headings {
			widths[i] = min(maxColumnWidth, len(h))
		}
	}
	for _, row := range rs.Rows {
		for i, v := range row {
			if v == nil {
				continue
			}
			if n := min(maxColumnWidth, len(histdb.Text(v))); n > widths[i] {
				widths[i] = n
			}
		}
	}
	return widths
}

// textRow coerces a data row to its printed strings.
func textRow(row []any) []string {
	cells := make([]string, len(row))
	for i, v := range row {
		cells[i] = histdb.Text(v)
	}
	return cells
}

// writeAligned writes cells separated by Separator, left-justifying every
// column but the last to its width. The last column is never padded, so
// lines carry no trailing spaces.
func writeAligned(b *strings.Builder, cells []string, widths []int) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteString(Separator)
		}
		if i < len(cells)-1 {
			fmt.Fprintf(b, "%-*s", widths[i], cell)
		} else {
			b.WriteString(cell)
		}
	}
	b.WriteByte('\n')
}

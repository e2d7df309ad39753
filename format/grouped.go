package format

import (
	"io"
	"strings"

	"github.com/ashlog/ash/histdb"
)

// Grouped renders a result set as a hierarchical outline, collapsing
// consecutive repeated values in leading columns so each prints only when
// it changes. The number of grouped columns is chosen automatically to
// minimize the total printed screen area (rows times width).
type Grouped struct{}

func (Grouped) Name() string { return "auto" }

func (Grouped) Description() string {
	return "Redundant values are automatically grouped."
}

// groupedLevels determines how many leading columns to group.
//
// Columns are examined left to right, simulating how much screen area
// grouping each additional column would save. Grouping column c merges
// consecutive duplicate values into one printed occurrence, so the line
// count grows by the number of value changes while the width shrinks to
// the wider of the grouped column and the remainder, plus the indent.
// The simulated area of every prefix length is recorded, and among all
// prefixes achieving the minimum area the longest one wins.
//
// For example, with simulated areas of
//
//	[100, 90, 92, 90, 140, 281]
//
// depths 1 and 3 tie at 90 and the result is 3.
func groupedLevels(rs *histdb.ResultSet, widths []int) int {
	rows := rs.Rows
	if len(rows) == 0 || len(widths) == 0 {
		return 0
	}

	sep := len(Separator)
	width := sep * (len(widths) - 1)
	for _, w := range widths {
		width += w
	}
	length := len(rows)
	minArea := length * width

	areas := make([]int, len(widths))
	for i := range areas {
		areas[i] = minArea
	}

	for c := range widths {
		// Count the lines the grouped column would produce: one per value
		// change scanning top to bottom. The first row always counts.
		prev, prevSet := "", false
		for _, row := range rows {
			v := histdb.Text(row[c])
			if !prevSet || v != prev {
				length++
				prev, prevSet = v, true
			}
		}

		// The new width is the wider of the grouped column and what
		// remains, plus the indent introduced by this grouping level.
		rest := width - widths[c]
		if rest < widths[c] {
			rest = widths[c]
		}
		width = rest + sep*(c+1)

		if area := length * width; area < minArea {
			minArea = area
		}
		if c < len(widths)-1 {
			areas[c+1] = width * length
		}
	}

	// The rightmost prefix achieving the minimum area wins.
	for c := len(widths); c > 0; c-- {
		if areas[c-1] == minArea {
			return c - 1
		}
	}
	return 0
}

func (Grouped) Print(w io.Writer, rs *histdb.ResultSet, showHeadings bool) error {
	if rs == nil {
		return nil
	}
	widths := columnWidths(rs, showHeadings)
	levels := groupedLevels(rs, widths)
	cols := len(rs.Headings)

	var b strings.Builder

	// Grouped headings print one per line with increasing indent; the rest
	// print as a normal aligned row.
	if showHeadings {
		for c := 0; c < cols; c++ {
			if c < levels {
				b.WriteString(rs.Headings[c])
				b.WriteByte('\n')
				b.WriteString(strings.Repeat(Separator, c+1))
				continue
			}
			writeAligned(&b, rs.Headings[c:], widths[c:])
			break
		}
	}

	// A grouped value prints only when it differs from the previously
	// printed value at its level; printing one resets the memory of every
	// deeper level.
	prev := make([]string, levels)
	prevSet := make([]bool, levels)
	for _, row := range rs.Rows {
		for c := 0; c < cols; c++ {
			if c >= levels {
				writeAligned(&b, textRow(row)[c:], widths[c:])
				break
			}
			v := histdb.Text(row[c])
			if prevSet[c] && v == prev[c] {
				// Grouped away: only the indent step prints.
				b.WriteString(Separator)
				continue
			}
			b.WriteString(v)
			if c < cols-1 {
				b.WriteByte('\n')
				b.WriteString(strings.Repeat(Separator, c+1))
				for x := c; x < levels; x++ {
					prevSet[x] = false
				}
			}
			prev[c], prevSet[c] = v, true
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

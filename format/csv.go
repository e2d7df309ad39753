package format

import (
	"io"
	"strings"

	"github.com/ashlog/ash/histdb"
)

// CSV renders comma-separated values. Numeric values print bare; every
// other value is quoted whether or not quoting is strictly necessary,
// matching the reference tool's output.
type CSV struct{}

func (CSV) Name() string { return "csv" }

func (CSV) Description() string {
	return "Columns are comma separated with strings quoted."
}

func (CSV) Print(w io.Writer, rs *histdb.ResultSet, showHeadings bool) error {
	if rs == nil {
		return nil
	}
	var b strings.Builder
	if showHeadings {
		for i, h := range rs.Headings {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quote(h))
		}
		b.WriteByte('\n')
	}
	for _, row := range rs.Rows {
		for i, v := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			if histdb.IsNumeric(v) {
				b.WriteString(histdb.Text(v))
			} else {
				b.WriteString(quote(histdb.Text(v)))
			}
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// quote wraps s in double quotes, doubling any embedded quote.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

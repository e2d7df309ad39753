package format

import (
	"io"
	"strings"

	"github.com/ashlog/ash/histdb"
)

// Null renders one record per line with fields joined by the NUL character,
// values coerced to text, no quoting. Suited to xargs -0 style consumers.
type Null struct{}

func (Null) Name() string { return "null" }

func (Null) Description() string {
	return "Columns are null separated with strings unquoted."
}

func (Null) Print(w io.Writer, rs *histdb.ResultSet, showHeadings bool) error {
	if rs == nil {
		return nil
	}
	var b strings.Builder
	if showHeadings {
		b.WriteString(strings.Join(rs.Headings, "\x00"))
		b.WriteByte('\n')
	}
	for _, row := range rs.Rows {
		b.WriteString(strings.Join(textRow(row), "\x00"))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

package format

import (
	"io"
	"strings"

	"github.com/ashlog/ash/histdb"
)

// Aligned renders columns left-justified to their measured widths.
type Aligned struct{}

func (Aligned) Name() string { return "aligned" }

func (Aligned) Description() string {
	return "Columns are aligned and separated with spaces."
}

func (Aligned) Print(w io.Writer, rs *histdb.ResultSet, showHeadings bool) error {
	if rs == nil {
		return nil
	}
	widths := columnWidths(rs, showHeadings)

	var b strings.Builder
	if showHeadings {
		writeAligned(&b, rs.Headings, widths)
	}
	for _, row := range rs.Rows {
		writeAligned(&b, textRow(row), widths)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

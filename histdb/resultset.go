package histdb

import (
	"fmt"
	"strconv"
)

// ResultSet holds the ordered rows returned by a query plus the column
// headings of the executed statement. Headings are a distinct field and are
// never commingled with data rows. Every row has exactly len(Headings)
// values; row order is the store's return order.
//
// Values are the scalars SQLite produces: string, int64, float64, or nil.
type ResultSet struct {
	Headings []string
	Rows     [][]any
}

// Reverse reverses the order of the data rows in place.
func (rs *ResultSet) Reverse() {
	for i, j := 0, len(rs.Rows)-1; i < j; i, j = i+1, j-1 {
		rs.Rows[i], rs.Rows[j] = rs.Rows[j], rs.Rows[i]
	}
}

// Text coerces a result value to its printed form. NULL prints as the
// empty string.
func Text(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// IsNumeric reports whether a result value is an integer or real, the two
// types the CSV formatter leaves unquoted.
func IsNumeric(v any) bool {
	switch v.(type) {
	case int64, float64:
		return true
	}
	return false
}

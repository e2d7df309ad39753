package histdb

// CompleteStatement reports whether query is a syntactically complete SQL
// statement: non-empty and terminated by a semicolon that sits outside any
// string literal or comment. It mirrors sqlite3_complete closely enough to
// reject prepared-but-unfinished template text before it ever reaches the
// database.
func CompleteStatement(query string) bool {
	var last byte
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch c {
		case '\'', '"', '`':
			// Skip the quoted literal, honoring doubled quote escapes.
			quote := c
			for i++; i < len(query); i++ {
				if query[i] != quote {
					continue
				}
				if i+1 < len(query) && query[i+1] == quote {
					i++
					continue
				}
				break
			}
			if i >= len(query) {
				return false // unterminated literal
			}
			last = quote
		case '-':
			if i+1 < len(query) && query[i+1] == '-' {
				for i++; i < len(query) && query[i] != '\n'; i++ {
				}
				continue
			}
			last = c
		case '/':
			if i+1 < len(query) && query[i+1] == '*' {
				i += 2
				for ; i+1 < len(query); i++ {
					if query[i] == '*' && query[i+1] == '/' {
						i++
						break
					}
				}
				continue
			}
			last = c
		case ' ', '\t', '\n', '\r', '\v', '\f':
			// Whitespace never updates the last meaningful byte.
		default:
			last = c
		}
	}
	return last == ';'
}

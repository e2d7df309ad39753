package query

import "strings"

// Expand rewrites every ${VAR} and ${VAR:-default} reference in s using the
// given variable lookup. A plain ${VAR} resolves to the empty string when
// VAR is unset. ${VAR:-default} substitutes the default only when VAR is
// unset: a variable set to the empty string resolves to "". Text outside
// ${...} tokens, including bare $ characters, passes through untouched.
func Expand(s string, lookup func(string) (string, bool)) string {
	var b strings.Builder
	for {
		i := strings.Index(s, "${")
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		j := strings.IndexByte(s[i+2:], '}')
		if j < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		b.WriteString(expandToken(s[i+2:i+2+j], lookup))
		s = s[i+2+j+1:]
	}
}

func expandToken(token string, lookup func(string) (string, bool)) string {
	name, def, hasDefault := strings.Cut(token, ":-")
	if v, ok := lookup(name); ok {
		return v
	}
	if hasDefault {
		return def
	}
	return ""
}

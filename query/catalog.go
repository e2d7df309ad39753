// Package query loads named SQL query definitions and resolves the
// shell-style variable references embedded in their templates.
//
// Definitions are parsed from plain-text sources holding blocks of the form
//
//	name: {
//	  description: "text"
//	  sql: {
//	    SELECT ... ;
//	  }
//	}
//
// Lines beginning with # are comments. Sources are loaded in priority
// order; a later definition of the same name overwrites an earlier one.
package query

import (
	_ "embed"
	"os"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ashlog/ash/histdb"
)

// defaultQueries ships a stock query set, mirroring the queries file the
// tool installs system-wide. It is loaded first so any file source can
// override it.
//
//go:embed default_queries
var defaultQueries string

// blockRe matches one query definition block. The sql body may contain
// ${...} expansion tokens, whose braces must not terminate the body; any
// other closing brace ends it.
var blockRe = regexp.MustCompile(
	`([A-Za-z0-9_-]+)\s*:\s*\{\s*` +
		`description\s*:\s*"((?:[^"]|\\")*)"\s*` +
		`sql\s*:\s*\{((?:\$\{[^}]*\}|[^}])*)\}\s*` +
		`\}`)

// Definition is one named query: an immutable description plus SQL
// template, possibly containing ${VAR} or ${VAR:-default} references.
type Definition struct {
	Name        string
	Description string
	SQL         string
}

// Catalog holds the merged query definitions from all loaded sources.
type Catalog struct {
	defs map[string]Definition
	log  *zap.Logger
}

// New returns an empty catalog.
func New(log *zap.Logger) *Catalog {
	return &Catalog{defs: make(map[string]Definition), log: log}
}

// Load builds a catalog from the embedded defaults plus the given sources,
// in order. Missing or unreadable sources are skipped; malformed blocks
// within a source are dropped without affecting the rest.
func Load(sources []string, log *zap.Logger) *Catalog {
	c := New(log)
	c.LoadString(defaultQueries)
	for _, path := range sources {
		c.LoadFile(path)
	}
	return c
}

// LoadFile parses one query definition file into the catalog. A missing
// file is not an error: that source is simply skipped.
func (c *Catalog) LoadFile(path string) {
	if path == "" {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		c.log.Debug("skipping query source", zap.String("path", path), zap.Error(err))
		return
	}
	c.log.Debug("loading query source", zap.String("path", path))
	c.LoadString(string(data))
}

// LoadString parses query definition text into the catalog. Later matches
// overwrite earlier definitions of the same name. Anything that does not
// match the block grammar is ignored.
func (c *Catalog) LoadString(data string) {
	for _, m := range blockRe.FindAllStringSubmatch(stripComments(data), -1) {
		c.defs[m[1]] = Definition{
			Name:        m[1],
			Description: m[2],
			SQL:         m[3],
		}
	}
}

// stripComments removes full-line comments (lines whose first byte is '#')
// and blank lines, preserving the newlines between the remaining lines.
func stripComments(data string) string {
	var b strings.Builder
	for _, line := range strings.Split(data, "\n") {
		if line == "" || line[0] == '#' {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// Get returns the named definition.
func (c *Catalog) Get(name string) (Definition, bool) {
	def, ok := c.defs[name]
	return def, ok
}

// Names returns all defined query names in alphabetical order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.defs))
	for name := range c.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns the catalog as a (Query, Description) result set sorted by
// name, ready for the aligned formatter.
func (c *Catalog) List() *histdb.ResultSet {
	rs := &histdb.ResultSet{Headings: []string{"Query", "Description"}}
	for _, name := range c.Names() {
		rs.Rows = append(rs.Rows, []any{name, c.defs[name].Description})
	}
	return rs
}

// Resolve looks up the named query and expands its template against the
// given variable lookup. It returns both the unresolved template and the
// resolved SQL so callers can tell whether any rewriting happened (raw
// equals resolved when the template had no expansions). Resolution is
// deliberately deferred to call time: the same template can yield different
// SQL as the environment changes.
func (c *Catalog) Resolve(name string, lookup func(string) (string, bool)) (raw, resolved string, ok bool) {
	def, ok := c.defs[name]
	if !ok {
		return "", "", false
	}
	return def.SQL, Expand(def.SQL, lookup), true
}

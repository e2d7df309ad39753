package query_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ashlog/ash/query"
)

const sampleQueries = `
# A comment line that must be ignored.
recent: {
  description: "last 5 commands"
  sql: {
    SELECT command FROM commands ORDER BY start_time DESC LIMIT 5;
  }
}

by_dir: {
  description: "commands for the current directory"
  sql: {
    SELECT command FROM commands WHERE cwd = '${PWD}';
  }
}
`

func TestLoadStringParsesBlocks(t *testing.T) {
	c := query.New(zap.NewNop())
	c.LoadString(sampleQueries)

	def, ok := c.Get("recent")
	require.True(t, ok)
	require.Equal(t, "last 5 commands", def.Description)
	require.Contains(t, def.SQL, "ORDER BY start_time DESC LIMIT 5;")

	def, ok = c.Get("by_dir")
	require.True(t, ok)
	require.Contains(t, def.SQL, "${PWD}")

	_, ok = c.Get("missing")
	require.False(t, ok)
}

func TestLaterDefinitionWins(t *testing.T) {
	c := query.New(zap.NewNop())

	// Within one source, the later match wins.
	c.LoadString(`
dup: { description: "first" sql: { SELECT 1; } }
dup: { description: "second" sql: { SELECT 2; } }
`)
	def, ok := c.Get("dup")
	require.True(t, ok)
	require.Equal(t, "second", def.Description)

	// Across sources, the later source wins, as a total overwrite.
	c.LoadString(`dup: { description: "third" sql: { SELECT 3; } }`)
	def, _ = c.Get("dup")
	require.Equal(t, "third", def.Description)
	require.Contains(t, def.SQL, "SELECT 3;")
}

func TestMalformedBlocksAreSkipped(t *testing.T) {
	c := query.New(zap.NewNop())
	c.LoadString(`
broken: { description: missing quotes sql: { SELECT 1; } }

ok: { description: "fine" sql: { SELECT 2; } }
`)
	_, found := c.Get("broken")
	require.False(t, found)

	_, found = c.Get("ok")
	require.True(t, found)
}

func TestCommentLinesAreStripped(t *testing.T) {
	c := query.New(zap.NewNop())
	// The block is split by full-line comments; the remaining lines still
	// form one parseable definition.
	c.LoadString(`
q: {
# interior comment
  description: "works"
# another
  sql: { SELECT 1; }
}
`)
	def, ok := c.Get("q")
	require.True(t, ok)
	require.Equal(t, "works", def.Description)
}

func TestLoadFileSkipsMissing(t *testing.T) {
	c := query.New(zap.NewNop())
	c.LoadFile(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Empty(t, c.Names())
}

func TestLoadFileReadsQueries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries")
	require.NoError(t, os.WriteFile(path, []byte(sampleQueries), 0o644))

	c := query.New(zap.NewNop())
	c.LoadFile(path)
	require.Equal(t, []string{"by_dir", "recent"}, c.Names())
}

func TestListIsSortedWithHeadings(t *testing.T) {
	c := query.New(zap.NewNop())
	c.LoadString(sampleQueries)

	rs := c.List()
	require.Equal(t, []string{"Query", "Description"}, rs.Headings)
	require.Equal(t, "by_dir", rs.Rows[0][0])
	require.Equal(t, "recent", rs.Rows[1][0])
}

func TestDefaultQueriesAreLoaded(t *testing.T) {
	c := query.Load(nil, zap.NewNop())
	for _, name := range []string{"RECENT", "CWD", "SESSIONS", "HISTORY", "SLOW"} {
		if _, ok := c.Get(name); !ok {
			t.Errorf("stock query %s missing from catalog", name)
		}
	}
}

func TestUserSourceOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries")
	require.NoError(t, os.WriteFile(path,
		[]byte(`RECENT: { description: "mine" sql: { SELECT 1; } }`), 0o644))

	c := query.Load([]string{path}, zap.NewNop())
	def, ok := c.Get("RECENT")
	require.True(t, ok)
	require.Equal(t, "mine", def.Description)
}

func TestResolve(t *testing.T) {
	c := query.New(zap.NewNop())
	c.LoadString(sampleQueries)

	env := func(name string) (string, bool) {
		if name == "PWD" {
			return "/work", true
		}
		return "", false
	}

	raw, resolved, ok := c.Resolve("recent", env)
	require.True(t, ok)
	require.Equal(t, raw, resolved, "no expansions: raw must equal resolved")

	raw, resolved, ok = c.Resolve("by_dir", env)
	require.True(t, ok)
	require.NotEqual(t, raw, resolved)
	require.Contains(t, resolved, "cwd = '/work'")
	require.Contains(t, raw, "${PWD}")

	_, _, ok = c.Resolve("missing", env)
	require.False(t, ok)
}

// Resolution is deferred to call time, so the same template follows the
// environment.
func TestResolveFollowsEnvironment(t *testing.T) {
	c := query.New(zap.NewNop())
	c.LoadString(sampleQueries)

	dir := "/first"
	env := func(name string) (string, bool) { return dir, name == "PWD" }

	_, first, _ := c.Resolve("by_dir", env)
	dir = "/second"
	_, second, _ := c.Resolve("by_dir", env)

	require.Contains(t, first, "/first")
	require.Contains(t, second, "/second")
}

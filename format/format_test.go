package format_test

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ashlog/ash/format"
	"github.com/ashlog/ash/histdb"
)

func sample() *histdb.ResultSet {
	return &histdb.ResultSet{
		Headings: []string{"a", "bb"},
		Rows: [][]any{
			{"x", "y"},
			{"long", "z"},
		},
	}
}

func TestAlignedOutput(t *testing.T) {
	var b strings.Builder
	require.NoError(t, format.Aligned{}.Print(&b, sample(), true))

	// Columns pad to the widest value, except the last which is written
	// as-is so no line carries trailing spaces.
	want := "a      bb\n" +
		"x      y\n" +
		"long   z\n"
	require.Equal(t, want, b.String())
}

func TestAlignedHiddenHeadings(t *testing.T) {
	var b strings.Builder
	require.NoError(t, format.Aligned{}.Print(&b, sample(), false))
	require.Equal(t, "x      y\nlong   z\n", b.String())
}

func TestAlignedHeadingsCountOnlyWhenShown(t *testing.T) {
	rs := &histdb.ResultSet{
		Headings: []string{"very_long_heading", "b"},
		Rows:     [][]any{{"x", "y"}},
	}

	var b strings.Builder
	require.NoError(t, format.Aligned{}.Print(&b, rs, false))
	require.Equal(t, "x   y\n", b.String(), "hidden headings must not widen columns")
}

func TestAlignedWidthCap(t *testing.T) {
	long := strings.Repeat("q", 120)
	rs := &histdb.ResultSet{
		Headings: []string{"a", "b"},
		Rows: [][]any{
			{long, "y"},
			{"x", "z"},
		},
	}

	var b strings.Builder
	require.NoError(t, format.Aligned{}.Print(&b, rs, true))
	lines := strings.Split(b.String(), "\n")

	// The long value itself is never truncated, but alignment is computed
	// from the capped width of 80.
	require.Contains(t, lines[1], long)
	require.Equal(t, "x"+strings.Repeat(" ", 79)+format.Separator+"z", lines[2])
}

func TestAlignedNilValues(t *testing.T) {
	rs := &histdb.ResultSet{
		Headings: []string{"a", "b"},
		Rows:     [][]any{{nil, int64(3)}},
	}

	var b strings.Builder
	require.NoError(t, format.Aligned{}.Print(&b, rs, true))
	require.Equal(t, "a   b\n    3\n", b.String())
}

func TestNilResultSetPrintsNothing(t *testing.T) {
	for _, name := range []string{"aligned", "auto", "csv", "null"} {
		f, ok := format.Lookup(name)
		require.True(t, ok)

		var b strings.Builder
		require.NoError(t, f.Print(&b, nil, true))
		require.Empty(t, b.String(), name)
	}
}

func TestCSVOutput(t *testing.T) {
	rs := &histdb.ResultSet{
		Headings: []string{"cmd", "count"},
		Rows: [][]any{
			{`say "hi"`, int64(3)},
			{"ls", 1.5},
			{nil, int64(0)},
		},
	}

	var b strings.Builder
	require.NoError(t, format.CSV{}.Print(&b, rs, true))

	// Strings always quoted with embedded quotes doubled, numbers bare,
	// NULL as an empty quoted string.
	want := `"cmd","count"` + "\n" +
		`"say ""hi""",3` + "\n" +
		`"ls",1.5` + "\n" +
		`"",0` + "\n"
	require.Equal(t, want, b.String())

	// A standard CSV reader must get the original values back.
	records, err := csv.NewReader(strings.NewReader(b.String())).ReadAll()
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"cmd", "count"},
		{`say "hi"`, "3"},
		{"ls", "1.5"},
		{"", "0"},
	}, records)
}

func TestNullOutput(t *testing.T) {
	rs := &histdb.ResultSet{
		Headings: []string{"a", "b"},
		Rows:     [][]any{{"x y", int64(2)}},
	}

	var b strings.Builder
	require.NoError(t, format.Null{}.Print(&b, rs, true))
	require.Equal(t, "a\x00b\nx y\x002\n", b.String())

	b.Reset()
	require.NoError(t, format.Null{}.Print(&b, rs, false))
	require.Equal(t, "x y\x002\n", b.String())
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"aligned", "auto", "csv", "null"} {
		f, ok := format.Lookup(name)
		require.True(t, ok, name)
		require.Equal(t, name, f.Name())
	}

	_, ok := format.Lookup("json")
	require.False(t, ok)
}

func TestList(t *testing.T) {
	rs := format.List()
	require.Equal(t, []string{"Format", "Description"}, rs.Headings)
	require.Len(t, rs.Rows, 4)
	require.Equal(t, "aligned", rs.Rows[0][0])
}

package params

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatements(t *testing.T) {
	text := `
temp:transform = "interpolate";
temp:range = -40, 50;
rh:qc_bad = 1;
`
	stmts, err := Parse(text, nil)
	require.NoError(t, err)
	require.Len(t, stmts, 3)
	assert.Equal(t, Statement{"temp", "transform", "interpolate"}, stmts[0])
	assert.Equal(t, Statement{"temp", "range", "-40, 50"}, stmts[1])
	assert.Equal(t, Statement{"rh", "qc_bad", "1"}, stmts[2])
}

func TestParseMultilineValue(t *testing.T) {
	stmts, err := Parse("coeffs:vals = 1,\n2;", nil)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, "1,\n2", stmts[0].Value)
}

func TestParseComments(t *testing.T) {
	text := `
# leading comment
temp:transform = "interpolate"; # trailing comment
# a:b = ignored;
tag:color = "#fff";
`
	stmts, err := Parse(text, nil)
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Equal(t, "interpolate", stmts[0].Value)
	// '#' inside a quoted value is not a comment.
	assert.Equal(t, "#fff", stmts[1].Value)
}

func TestParseQuotedSemicolon(t *testing.T) {
	stmts, err := Parse(`note:text = "a;b";`, nil)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, "a;b", stmts[0].Value)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"missing semicolon", "a:b = 1", "missing terminating ';'"},
		{"unterminated string", `a:b = "open;`, "unterminated string"},
		{"missing equals", "just words;", "missing '='"},
		{"missing colon", "param = 1;", "missing ':'"},
		{"blank name", ": x = 1;", "bad parameter name"},
		{"space in param", "a:b c = 1;", "bad parameter name"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse(c.text, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), c.want)
		})
	}
}

func TestParseErrorLineNumbers(t *testing.T) {
	_, err := Parse("a:b = 1;\n\nbroken statement;\n", nil)
	require.Error(t, err)
	// The failure is attributed to the line the statement starts on.
	assert.Contains(t, err.Error(), "line 3")
}

func TestParseInclude(t *testing.T) {
	files := map[string]string{
		"base":  `a:x = 1; @include "extra";`,
		"extra": "b:y = 2;",
	}
	resolver := ResolverFunc(func(name string) (string, error) {
		if s, ok := files[name]; ok {
			return s, nil
		}
		return "", os.ErrNotExist
	})

	stmts, err := Parse(`@include "base"; c:z = 3;`, resolver)
	require.NoError(t, err)
	require.Len(t, stmts, 3)
	assert.Equal(t, Statement{"a", "x", "1"}, stmts[0])
	assert.Equal(t, Statement{"b", "y", "2"}, stmts[1])
	assert.Equal(t, Statement{"c", "z", "3"}, stmts[2])

	_, err = Parse(`@include "nope";`, resolver)
	require.Error(t, err)

	_, err = Parse(`@include "base";`, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no include resolver")
}

func TestParseIncludeCycle(t *testing.T) {
	files := map[string]string{
		"a": `@include "b";`,
		"b": `@include "a";`,
	}
	resolver := ResolverFunc(func(name string) (string, error) {
		return files[name], nil
	})
	_, err := Parse(`@include "a";`, resolver)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestDirResolver(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shared.params"), []byte("a:x = 1;"), 0o644))

	stmts, err := Parse(`@include "shared.params";`, DirResolver(dir))
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, Statement{"a", "x", "1"}, stmts[0])

	// Path escapes are confined to the directory.
	_, err = Parse(`@include "../outside";`, DirResolver(dir))
	require.Error(t, err)
}

// ABOUTME: Tests for line classification, assignment, and interpolation
// ABOUTME: Covers word boundaries, single-pass substitution, and edge inputs

package interp

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/coven-vars/internal/vars"
)

// setupProcessor creates a processor over a temp-backed store.
func setupProcessor(t *testing.T) (*Processor, *vars.Store) {
	t.Helper()
	store := vars.Open(filepath.Join(t.TempDir(), vars.StoreFileName))
	return New(store), store
}

func TestProcess_StringAssignment(t *testing.T) {
	p, store := setupProcessor(t)

	res := p.Process("name=John")
	assert.True(t, res.Assigned)
	assert.Equal(t, "name", res.Name)
	assert.Equal(t, "Variable 'name' set to: John", res.Text)

	v, ok := store.Get("name")
	require.True(t, ok)
	assert.Equal(t, "John", v.Render())
}

func TestProcess_TypedAssignments(t *testing.T) {
	p, store := setupProcessor(t)

	cases := []struct {
		line string
		name string
		kind vars.Kind
	}{
		{"age=25", "age", vars.KindNumber},
		{"ratio=0.5", "ratio", vars.KindNumber},
		{"active=true", "active", vars.KindBool},
		{"nothing=null", "nothing", vars.KindNull},
		{`items=["apple", "banana"]`, "items", vars.KindArray},
		{`user={"name": "Alice", "age": 30}`, "user", vars.KindObject},
	}
	for _, tc := range cases {
		res := p.Process(tc.line)
		assert.True(t, res.Assigned, "line %q", tc.line)

		v, ok := store.Get(tc.name)
		require.True(t, ok, "line %q", tc.line)
		assert.Equal(t, tc.kind, v.Kind(), "line %q", tc.line)
	}
}

func TestProcess_ValueMayContainEquals(t *testing.T) {
	p, store := setupProcessor(t)

	res := p.Process("equation=x=y+1")
	assert.True(t, res.Assigned)

	v, ok := store.Get("equation")
	require.True(t, ok)
	assert.Equal(t, "x=y+1", v.Render())
}

func TestProcess_EmptyLiteralAssignsEmptyString(t *testing.T) {
	p, store := setupProcessor(t)

	res := p.Process("empty=")
	assert.True(t, res.Assigned)

	v, ok := store.Get("empty")
	require.True(t, ok)
	assert.Equal(t, vars.KindString, v.Kind())
	assert.Equal(t, "", v.Render())
}

func TestProcess_NonIdentifierNamesAreAccepted(t *testing.T) {
	p, store := setupProcessor(t)

	assert.True(t, p.Process("123=value").Assigned)
	assert.True(t, p.Process("-name=value").Assigned)

	_, ok := store.Get("123")
	assert.True(t, ok)
	_, ok = store.Get("-name")
	assert.True(t, ok)
}

func TestProcess_LeadingEqualsIsNotAssignment(t *testing.T) {
	p, _ := setupProcessor(t)

	res := p.Process("=value")
	assert.False(t, res.Assigned)
	assert.Equal(t, "=value", res.Text)
}

func TestProcess_WhitespaceBeforeEqualsIsNotAssignment(t *testing.T) {
	p, store := setupProcessor(t)

	res := p.Process("city = Paris")
	assert.False(t, res.Assigned)
	assert.Equal(t, 0, store.Len())
}

func TestProcess_InvalidJSONLiteralStoredAsString(t *testing.T) {
	p, store := setupProcessor(t)

	res := p.Process(`invalid={"incomplete": json`)
	assert.True(t, res.Assigned)

	v, ok := store.Get("invalid")
	require.True(t, ok)
	assert.Equal(t, vars.KindString, v.Kind())
	assert.Equal(t, `{"incomplete": json`, v.Render())
}

func TestProcess_Interpolation(t *testing.T) {
	p, _ := setupProcessor(t)
	p.Process("name=Alice")
	p.Process("age=25")

	res := p.Process("Hello name, you are age years old")
	assert.False(t, res.Assigned)
	assert.Equal(t, "Hello Alice, you are 25 years old", res.Text)
}

func TestProcess_PlainTextPassesThrough(t *testing.T) {
	p, _ := setupProcessor(t)

	res := p.Process("Just plain text")
	assert.False(t, res.Assigned)
	assert.Equal(t, "Just plain text", res.Text)
}

func TestInterpolate_WordBoundaries(t *testing.T) {
	p, _ := setupProcessor(t)
	p.Process("var=X")

	// Substrings of larger words are left alone; the standalone word still hits.
	assert.Equal(t, "variable X vars", p.Interpolate("variable var vars"))
	assert.Equal(t, "X at start", p.Interpolate("var at start"))
	assert.Equal(t, "ends with X", p.Interpolate("ends with var"))
	assert.Equal(t, "(X)", p.Interpolate("(var)"))
}

func TestInterpolate_CaseSensitive(t *testing.T) {
	p, _ := setupProcessor(t)
	p.Process("name=lowercase")
	p.Process("Name=titlecase")
	p.Process("NAME=uppercase")

	assert.Equal(t, "lowercase titlecase uppercase",
		p.Interpolate("name Name NAME"))
}

func TestInterpolate_SinglePassNoRescan(t *testing.T) {
	p, _ := setupProcessor(t)
	p.Process("a=b")
	p.Process("b=a")

	// The substituted "b" is not itself re-substituted.
	assert.Equal(t, "Value is b", p.Interpolate("Value is a"))
}

func TestInterpolate_LongestNameWins(t *testing.T) {
	p, _ := setupProcessor(t)
	p.Process("user=short")
	p.Process("user_name=long")

	assert.Equal(t, "long and short", p.Interpolate("user_name and user"))
}

func TestInterpolate_UnderscoredNames(t *testing.T) {
	p, _ := setupProcessor(t)
	p.Process("user_name=john_doe")
	p.Process("api_key=secret123")

	assert.Equal(t, "User john_doe with key secret123",
		p.Interpolate("User user_name with key api_key"))
}

func TestInterpolate_RendersContainersAsCompactJSON(t *testing.T) {
	p, _ := setupProcessor(t)
	p.Process(`items=[1, 2, 3]`)

	assert.Equal(t, "the list [1,2,3] here", p.Interpolate("the list items here"))
}

func TestInterpolate_MultipleOccurrences(t *testing.T) {
	p, _ := setupProcessor(t)
	p.Process("x=7")

	assert.Equal(t, "7 + 7 = 7", p.Interpolate("x + x = x"))
}

func TestInterpolate_UnicodeNeighborsAreWordRunes(t *testing.T) {
	p, _ := setupProcessor(t)
	p.Process("name=Alice")

	// A letter rune directly adjacent blocks the match, ASCII or not.
	assert.Equal(t, "héname stays", p.Interpolate("héname stays"))
	assert.Equal(t, "ünameü stays", p.Interpolate("ünameü stays"))
}

func TestInterpolate_EmptyNameNeverMatches(t *testing.T) {
	p, store := setupProcessor(t)
	require.NoError(t, store.Set("", vars.Coerce("ghost")))

	assert.Equal(t, "unchanged text", p.Interpolate("unchanged text"))
}

// ABOUTME: Tests for Value coercion, rendering, and JSON round-trips
// ABOUTME: Covers scalar literals, containers, and plain-string fallback

package vars

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce_PlainWord(t *testing.T) {
	v := Coerce("Alice")
	assert.Equal(t, KindString, v.Kind())
	assert.Equal(t, "Alice", v.Render())
}

func TestCoerce_Integer(t *testing.T) {
	v := Coerce("25")
	assert.Equal(t, KindNumber, v.Kind())
	assert.Equal(t, "25", v.Render())
}

func TestCoerce_Float(t *testing.T) {
	v := Coerce("3.14")
	assert.Equal(t, KindNumber, v.Kind())
	assert.Equal(t, "3.14", v.Render())
}

func TestCoerce_FloatKeepsLiteralText(t *testing.T) {
	v := Coerce("1.50")
	require.Equal(t, KindNumber, v.Kind())

	// The literal digits survive, not a shortest-form re-encoding.
	assert.Equal(t, "1.50", v.Render())

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, "1.50", string(data))
}

func TestCoerce_Booleans(t *testing.T) {
	assert.Equal(t, KindBool, Coerce("true").Kind())
	assert.Equal(t, "true", Coerce("true").Render())
	assert.Equal(t, "false", Coerce("false").Render())
}

func TestCoerce_Null(t *testing.T) {
	v := Coerce("null")
	assert.Equal(t, KindNull, v.Kind())
	assert.Equal(t, "null", v.Render())
}

func TestCoerce_EmptyLiteralIsEmptyString(t *testing.T) {
	v := Coerce("")
	assert.Equal(t, KindString, v.Kind())
	assert.Equal(t, "", v.Render())
}

func TestCoerce_QuotedString(t *testing.T) {
	v := Coerce(`"hello world"`)
	require.Equal(t, KindString, v.Kind())
	assert.Equal(t, "hello world", v.Render())
}

func TestCoerce_Array(t *testing.T) {
	v := Coerce(`["apple", "banana", "cherry"]`)
	require.Equal(t, KindArray, v.Kind())
	assert.Equal(t, `["apple","banana","cherry"]`, v.Render())
}

func TestCoerce_NestedObject(t *testing.T) {
	v := Coerce(`{"name": "Alice", "age": 30, "tags": ["a", "b"]}`)
	require.Equal(t, KindObject, v.Kind())

	want := Object(map[string]Value{
		"name": String("Alice"),
		"age":  Number("30"),
		"tags": Array(String("a"), String("b")),
	})
	assert.True(t, v.Equal(want))
}

func TestCoerce_InvalidJSONFallsBackToString(t *testing.T) {
	cases := []string{
		`{"incomplete": json`,
		"x=y+1",
		"@#$%^&*()",
		"25abc",
		"héllo wörld 🌍",
	}
	for _, literal := range cases {
		v := Coerce(literal)
		assert.Equal(t, KindString, v.Kind(), "literal %q", literal)
		assert.Equal(t, literal, v.Render(), "literal %q", literal)
	}
}

func TestRender_Containers(t *testing.T) {
	v := Object(map[string]Value{
		"active": Bool(false),
		"value":  Null(),
	})
	assert.Equal(t, `{"active":false,"value":null}`, v.Render())

	a := Array(Number("1"), Number("2"), Number("3"))
	assert.Equal(t, "[1,2,3]", a.Render())
}

func TestCoerceRender_RoundTripScalars(t *testing.T) {
	cases := []string{"25", "3.14", "true", "false", "null", "-7"}
	for _, literal := range cases {
		v := Coerce(literal)
		again := Coerce(v.Render())
		assert.True(t, v.Equal(again), "literal %q", literal)
	}
}

func TestValue_JSONRoundTrip(t *testing.T) {
	literals := []string{
		`"text"`,
		`42`,
		`-0.5`,
		`true`,
		`null`,
		`[1,"two",{"three":3}]`,
		`{"nested":{"deep":[null,false]}}`,
	}
	for _, literal := range literals {
		v := Coerce(literal)

		data, err := json.Marshal(v)
		require.NoError(t, err, "literal %q", literal)

		var back Value
		require.NoError(t, json.Unmarshal(data, &back), "literal %q", literal)
		assert.True(t, v.Equal(back), "literal %q", literal)
	}
}

func TestValue_EqualDistinguishesNumberText(t *testing.T) {
	assert.False(t, Coerce("1").Equal(Coerce("1.0")))
	assert.True(t, Coerce("1.0").Equal(Coerce("1.0")))
}

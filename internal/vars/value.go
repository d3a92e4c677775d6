// ABOUTME: Tagged-union Value type mirroring the grammar of a JSON literal
// ABOUTME: Provides coercion from literal text and rendering back to text

package vars

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Kind identifies which member of the Value union is populated.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the kind name for logging and error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a tagged union over the JSON literal types:
// null, bool, number, string, array, object.
//
// Numbers keep their literal text (json.Number) so values like 1.50
// survive a save/load cycle byte-exact.
type Value struct {
	kind Kind
	b    bool
	num  json.Number
	str  string
	arr  []Value
	obj  map[string]Value
}

// Null returns the null Value.
func Null() Value {
	return Value{kind: KindNull}
}

// Bool returns a boolean Value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Number returns a numeric Value carrying the given literal text.
func Number(n json.Number) Value {
	return Value{kind: KindNumber, num: n}
}

// String returns a string Value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Array returns an array Value over the given elements.
func Array(elems ...Value) Value {
	return Value{kind: KindArray, arr: elems}
}

// Object returns an object Value over the given members.
func Object(members map[string]Value) Value {
	return Value{kind: KindObject, obj: members}
}

// Kind reports which member of the union is populated.
func (v Value) Kind() Kind {
	return v.kind
}

// Coerce converts a literal string into a typed Value. If the literal
// parses as a JSON value the typed result is kept; otherwise the literal
// is preserved verbatim as a plain string. The empty literal becomes the
// empty string, not null. Coerce never fails.
func Coerce(literal string) Value {
	data := []byte(literal)
	if !json.Valid(data) {
		return String(literal)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return String(literal)
	}
	return fromAny(raw)
}

// fromAny converts the result of a UseNumber JSON decode into a Value.
func fromAny(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(x)
	case json.Number:
		return Number(x)
	case string:
		return String(x)
	case []any:
		elems := make([]Value, len(x))
		for i, e := range x {
			elems[i] = fromAny(e)
		}
		return Array(elems...)
	case map[string]any:
		members := make(map[string]Value, len(x))
		for k, e := range x {
			members[k] = fromAny(e)
		}
		return Object(members)
	default:
		// Unreachable for UseNumber decodes; keep the text form.
		return String(fmt.Sprint(x))
	}
}

// Render returns the text form used when a value is substituted into
// free text. Strings render as their raw content with no added quotes,
// scalars as their canonical literal, containers as compact JSON.
func (v Value) Render() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		return v.num.String()
	case KindString:
		return v.str
	default:
		data, err := v.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// MarshalJSON encodes the value as its JSON literal.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		if v.b {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case KindNumber:
		if v.num == "" {
			return []byte("0"), nil
		}
		return []byte(v.num), nil
	case KindString:
		return json.Marshal(v.str)
	case KindArray:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			data, err := e.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(data)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case KindObject:
		keys := make([]string, 0, len(v.obj))
		for k := range v.obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kdata, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf.Write(kdata)
			buf.WriteByte(':')
			vdata, err := v.obj[k].MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(vdata)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("marshaling value: unknown kind %v", v.kind)
	}
}

// UnmarshalJSON decodes a JSON literal into the value.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("unmarshaling value: %w", err)
	}
	*v = fromAny(raw)
	return nil
}

// Equal reports deep semantic equality between two values. Numbers
// compare by literal text, so 1.0 and 1 are distinct.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindNumber:
		return v.num == other.num
	case KindString:
		return v.str == other.str
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for k, e := range v.obj {
			oe, ok := other.obj[k]
			if !ok || !e.Equal(oe) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// clone returns a deep copy with no aliasing into the receiver.
func (v Value) clone() Value {
	switch v.kind {
	case KindArray:
		elems := make([]Value, len(v.arr))
		for i, e := range v.arr {
			elems[i] = e.clone()
		}
		return Array(elems...)
	case KindObject:
		members := make(map[string]Value, len(v.obj))
		for k, e := range v.obj {
			members[k] = e.clone()
		}
		return Object(members)
	default:
		return v
	}
}

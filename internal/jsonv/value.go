// Package jsonv provides an ordered, closed JSON value type.
//
// encoding/json decodes objects into maps, which loses key order. The viewer
// renders objects in the order they were written, so values are decoded into
// Value instead.
package jsonv

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Kind is the JSON type of a Value.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	}
	return "invalid"
}

// Member is one key/value pair of an object.
type Member struct {
	Key   string
	Value Value
}

// Value is an immutable JSON value. The zero Value is null.
type Value struct {
	kind    Kind
	str     string // string contents or number literal
	boolean bool
	elems   []Value
	members []Member
}

// Constructors, mostly used by tests and by code building synthetic values.

func NewNull() Value { return Value{} }
func NewBool(b bool) Value { return Value{kind: Bool, boolean: b} }
func NewString(s string) Value { return Value{kind: String, str: s} }
func NewArray(v ...Value) Value { return Value{kind: Array, elems: v} }
func NewObject(m ...Member) Value { return Value{kind: Object, members: m} }

// NewNumber returns a number value for the given literal. The literal is not
// validated.
func NewNumber(lit string) Value { return Value{kind: Number, str: lit} }

// NewInt returns a number value for n.
func NewInt(n int64) Value { return NewNumber(strconv.FormatInt(n, 10)) }

// M is shorthand for building a Member.
func M(key string, v Value) Member { return Member{Key: key, Value: v} }

// Kind returns the JSON type of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is JSON null.
func (v Value) IsNull() bool { return v.kind == Null }

// IsScalar reports whether v is neither an array nor an object.
func (v Value) IsScalar() bool { return v.kind != Array && v.kind != Object }

// Str returns the string contents of a string value, or "" and false.
func (v Value) Str() (string, bool) {
	if v.kind != String {
		return "", false
	}
	return v.str, true
}

// Bool returns the boolean of a bool value.
func (v Value) Bool() (bool, bool) {
	if v.kind != Bool {
		return false, false
	}
	return v.boolean, true
}

// Number returns the literal of a number value.
func (v Value) Number() (string, bool) {
	if v.kind != Number {
		return "", false
	}
	return v.str, true
}

// Int returns a number value as an int64 when it is integral.
func (v Value) Int() (int64, bool) {
	if v.kind != Number {
		return 0, false
	}
	n, err := strconv.ParseInt(v.str, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(v.str, 64)
		if ferr != nil || f != float64(int64(f)) {
			return 0, false
		}
		return int64(f), true
	}
	return n, true
}

// Elems returns the elements of an array value.
func (v Value) Elems() []Value {
	if v.kind != Array {
		return nil
	}
	return v.elems
}

// Members returns the members of an object value in source order.
func (v Value) Members() []Member {
	if v.kind != Object {
		return nil
	}
	return v.members
}

// Len returns the number of elements or members, or 0 for scalars.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.elems)
	case Object:
		return len(v.members)
	}
	return 0
}

// Keys returns the keys of an object value in source order.
func (v Value) Keys() []string {
	if v.kind != Object {
		return nil
	}
	keys := make([]string, len(v.members))
	for i, m := range v.members {
		keys[i] = m.Key
	}
	return keys
}

// Get returns the value stored under key in an object value.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.Members() {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// GetString returns the string stored under key, or "".
func (v Value) GetString(key string) string {
	f, _ := v.Get(key)
	s, _ := f.Str()
	return s
}

// Without returns a copy of an object value with the given keys removed.
// Non-object values are returned unchanged.
func (v Value) Without(keys ...string) Value {
	if v.kind != Object {
		return v
	}
	out := make([]Member, 0, len(v.members))
	for _, m := range v.members {
		drop := false
		for _, k := range keys {
			if m.Key == k {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, m)
		}
	}
	return Value{kind: Object, members: out}
}

// Scalars counts the scalar leaves of v.
func (v Value) Scalars() int {
	switch v.kind {
	case Array:
		n := 0
		for _, e := range v.elems {
			n += e.Scalars()
		}
		return n
	case Object:
		n := 0
		for _, m := range v.members {
			n += m.Value.Scalars()
		}
		return n
	}
	return 1
}

// Text renders a scalar the way it is displayed: strings unquoted, numbers by
// their literal, booleans as true/false and null as "null".
func (v Value) Text() string {
	switch v.kind {
	case Null:
		return "null"
	case Bool:
		return strconv.FormatBool(v.boolean)
	case Number, String:
		return v.str
	}
	b, _ := v.MarshalJSON()
	return string(b)
}

// ErrTrailingData is returned by Parse when input continues after the value.
var ErrTrailingData = errors.New("jsonv: trailing data after value")

// Parse decodes exactly one JSON value from data.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decode(dec)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, ErrTrailingData
	}
	return v, nil
}

// ParseString is Parse for strings.
func ParseString(s string) (Value, error) { return Parse([]byte(s)) }

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Value {
	v, err := ParseString(s)
	if err != nil {
		panic(fmt.Sprintf("jsonv: MustParse(%q): %v", s, err))
	}
	return v
}

func decode(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Value{}, nil
	case bool:
		return NewBool(t), nil
	case json.Number:
		return NewNumber(t.String()), nil
	case string:
		return NewString(t), nil
	case json.Delim:
		switch t {
		case '[':
			elems := []Value{}
			for dec.More() {
				e, err := decode(dec)
				if err != nil {
					return Value{}, err
				}
				elems = append(elems, e)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Value{kind: Array, elems: elems}, nil
		case '{':
			members := []Member{}
			index := map[string]int{}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := kt.(string)
				if !ok {
					return Value{}, fmt.Errorf("jsonv: object key is %T", kt)
				}
				val, err := decode(dec)
				if err != nil {
					return Value{}, err
				}
				if i, dup := index[key]; dup {
					members[i].Value = val
					continue
				}
				index[key] = len(members)
				members = append(members, Member{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Value{kind: Object, members: members}, nil
		}
	}
	return Value{}, fmt.Errorf("jsonv: unexpected token %v", tok)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalJSON implements json.Marshaler, keeping object key order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(v.boolean))
	case Number:
		buf.WriteString(v.str)
	case String:
		return encodeString(buf, v.str)
	case Array:
		buf.WriteByte('[')
		for i, e := range v.elems {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeString(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

func encodeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode appends a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// Indent returns v as indented JSON.
func (v Value) Indent() string {
	raw, err := v.MarshalJSON()
	if err != nil {
		return v.Text()
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return string(raw)
	}
	return out.String()
}

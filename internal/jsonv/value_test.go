package jsonv

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeepsKeyOrder(t *testing.T) {
	v, err := ParseString(`{"zeta":1,"alpha":{"y":true,"x":null},"mid":[1,"two"]}`)
	require.NoError(t, err)

	assert.Equal(t, Object, v.Kind())
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, v.Keys())

	alpha, ok := v.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, []string{"y", "x"}, alpha.Keys())

	out, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":{"y":true,"x":null},"mid":[1,"two"]}`, string(out))
}

func TestParseScalars(t *testing.T) {
	tests := []struct {
		in   string
		kind Kind
		text string
	}{
		{`null`, Null, "null"},
		{`true`, Bool, "true"},
		{`12.50`, Number, "12.50"},
		{`"a\nb"`, String, "a\nb"},
		{`""`, String, ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := ParseString(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, v.Kind())
			assert.True(t, v.IsScalar())
			assert.Equal(t, tt.text, v.Text())
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{``, `{`, `{"a":1} {"b":2}`, `[1,]`, `nope`} {
		_, err := ParseString(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestDuplicateKeysKeepFirstPositionLastValue(t *testing.T) {
	v := MustParse(`{"a":1,"b":2,"a":3}`)
	assert.Equal(t, []string{"a", "b"}, v.Keys())
	a, _ := v.Get("a")
	assert.Equal(t, "3", a.Text())
}

func TestWithoutAndScalars(t *testing.T) {
	v := MustParse(`{"type":"x","a":[1,2,{"b":null}],"c":{}}`)
	// empty containers contribute no leaves
	assert.Equal(t, 4, v.Scalars())

	rest := v.Without("type")
	assert.Equal(t, []string{"a", "c"}, rest.Keys())
	assert.Equal(t, 3, rest.Scalars())
	// the original is untouched
	assert.Equal(t, 3, v.Len())
}

func TestIntAndGetString(t *testing.T) {
	v := MustParse(`{"exit_code":0,"ratio":1.5,"name":"shell"}`)
	code, _ := v.Get("exit_code")
	n, ok := code.Int()
	assert.True(t, ok)
	assert.Equal(t, int64(0), n)

	ratio, _ := v.Get("ratio")
	_, ok = ratio.Int()
	assert.False(t, ok)

	assert.Equal(t, "shell", v.GetString("name"))
	assert.Equal(t, "", v.GetString("missing"))
}

func TestValueInsideEncodingJSON(t *testing.T) {
	var holder struct {
		Payload Value `json:"payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"payload":{"b":1,"a":"x"}}`), &holder))
	assert.Equal(t, []string{"b", "a"}, holder.Payload.Keys())

	out, err := json.Marshal(holder)
	require.NoError(t, err)
	assert.Equal(t, `{"payload":{"b":1,"a":"x"}}`, string(out))
}

func TestIndent(t *testing.T) {
	v := MustParse(`{"a":[1]}`)
	assert.Equal(t, "{\n  \"a\": [\n    1\n  ]\n}", v.Indent())
}

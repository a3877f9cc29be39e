package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeys(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{
		"zeta":  int32(1),
		"alpha": "a",
		"mid":   []any{true, false, int64(-3)},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":"a","mid":[true,false,-3],"zeta":1}`, string(got))
}

func TestMarshalCanonical_NestedObjects(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{
		"b": map[string]any{"y": 2, "x": 1},
		"a": []string{"p", "q"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":["p","q"],"b":{"x":1,"y":2}}`, string(got))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	got, err := MarshalCanonical("<a&b>")
	require.NoError(t, err)
	assert.Equal(t, `"<a&b>"`, string(got))
}

func TestMarshalCanonical_EscapesControlCharacters(t *testing.T) {
	got, err := MarshalCanonical("q\"b\\n\n\x01")
	require.NoError(t, err)
	assert.Equal(t, `"q\"b\\n\n\u0001"`, string(got))
}

func TestMarshalCanonical_LineSeparatorsStayLiteral(t *testing.T) {
	got, err := MarshalCanonical("a\u2028b\u2029c")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(got))
}

func TestMarshalCanonical_NFCNormalizes(t *testing.T) {
	decomposed := "e\u0301" // e + combining acute
	got, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(got))
}

func TestMarshalCanonical_UTF16KeyOrder(t *testing.T) {
	// U+FF61 sorts before U+1F600 in UTF-8 byte order but after it in
	// UTF-16 code unit order (0xFF61 > 0xD83D).
	got, err := MarshalCanonical(map[string]any{
		"\uff61":     1,
		"\U0001F600": 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":2,\"\uff61\":1}", string(got))
}

func TestMarshalCanonical_RejectsFloatsAndNull(t *testing.T) {
	_, err := MarshalCanonical(1.5)
	assert.ErrorContains(t, err, "floats are forbidden")

	_, err = MarshalCanonical(nil)
	assert.ErrorContains(t, err, "null is forbidden")

	_, err = MarshalCanonical(map[string]any{"k": []any{nil}})
	assert.ErrorContains(t, err, `object["k"]: array[0]`)

	_, err = MarshalCanonical(struct{}{})
	assert.ErrorContains(t, err, "unsupported type")
}

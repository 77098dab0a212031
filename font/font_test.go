/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package font

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDict is a minimal in-memory Dict for tests, avoiding any dependency
// on internal/pdfobj.
type fakeDict map[string]Value

func (d fakeDict) Lookup(key string) (Value, bool) {
	v, ok := d[key]
	return v, ok
}

func name(s string) Value   { return Value{Kind: KindName, Str: s} }
func str(s string) Value    { return Value{Kind: KindString, Str: s} }
func number(n float64) Value { return Value{Kind: KindNumber, Num: n} }
func array(vs ...Value) Value { return Value{Kind: KindArray, Arr: vs} }
func dictVal(d Dict) Value  { return Value{Kind: KindDict, DictV: d} }

func TestNewFromDictSimpleType1(t *testing.T) {
	dict := fakeDict{
		"Subtype":   name("Type1"),
		"FirstChar": number(65),
		"Widths":    array(number(600), number(600), number(600)),
		"Encoding":  name("WinAnsiEncoding"),
	}
	f, err := NewFromDict(dict)
	require.NoError(t, err)
	assert.Equal(t, "Type1", f.Subtype())
	assert.Equal(t, WritingHorizontal, f.WritingMode())

	codes := f.Decode([]byte("AB"))
	require.Len(t, codes, 2)
	assert.Equal(t, "A", codes[0].Text)
	assert.Equal(t, 600.0, codes[0].Width)
	assert.Equal(t, "B", codes[1].Text)
}

func TestNewFromDictSimpleFontDifferencesOverlay(t *testing.T) {
	encDict := fakeDict{
		"BaseEncoding": name("WinAnsiEncoding"),
		"Differences": array(number(65), name("eacute")),
	}
	dict := fakeDict{
		"Subtype":  name("TrueType"),
		"Encoding": dictVal(encDict),
	}
	f, err := NewFromDict(dict)
	require.NoError(t, err)
	codes := f.Decode([]byte{0x41})
	require.Len(t, codes, 1)
	assert.Equal(t, "é", codes[0].Text)
}

func TestNewFromDictType0Identity(t *testing.T) {
	descendant := fakeDict{
		"DW": number(1000),
		"W":  array(number(3), array(number(500), number(750))),
	}
	dict := fakeDict{
		"Subtype":          name("Type0"),
		"Encoding":         name("Identity-H"),
		"DescendantFonts":  array(dictVal(descendant)),
	}
	f, err := NewFromDict(dict)
	require.NoError(t, err)
	assert.Equal(t, "Type0", f.Subtype())

	codes := f.Decode([]byte{0x00, 0x03, 0x00, 0x04})
	require.Len(t, codes, 2)
	assert.EqualValues(t, 3, codes[0].Code)
	assert.Equal(t, 500.0, codes[0].Width)
	assert.Equal(t, 750.0, codes[1].Width)
}

func TestNewFromDictType0WithToUnicode(t *testing.T) {
	toUnicode := `
1 begincodespacerange
<0000> <FFFF>
endcodespacerange
1 beginbfchar
<0003> <0041>
endbfchar
`
	dict := fakeDict{
		"Subtype":  name("Type0"),
		"Encoding": name("Identity-H"),
		"ToUnicode": Value{Kind: KindStream, Stream: StreamValue{Bytes: []byte(toUnicode)}},
	}
	f, err := NewFromDict(dict)
	require.NoError(t, err)
	codes := f.Decode([]byte{0x00, 0x03})
	require.Len(t, codes, 1)
	assert.Equal(t, "A", codes[0].Text)
}

func TestNewFromDictType3UsesFontMatrix(t *testing.T) {
	dict := fakeDict{
		"Subtype":    name("Type3"),
		"FontMatrix": array(number(0.001), number(0), number(0), number(0.001), number(0), number(0)),
		"FirstChar":  number(65),
		"Widths":     array(number(750)),
		"Encoding":   name("StandardEncoding"),
	}
	f, err := NewFromDict(dict)
	require.NoError(t, err)
	codes := f.Decode([]byte{0x41})
	require.Len(t, codes, 1)
	assert.InDelta(t, 750.0, codes[0].Width, 0.001)
}

func TestNewFromDictUnknownSubtypeFallsBackToSimple(t *testing.T) {
	dict := fakeDict{"Subtype": name("WeirdSubtype")}
	f, err := NewFromDict(dict)
	require.NoError(t, err)
	codes := f.Decode([]byte("Z"))
	require.Len(t, codes, 1)
	assert.Equal(t, "Z", codes[0].Text)
}

func TestFontCacheReusesAndEvicts(t *testing.T) {
	c := NewCache()
	builds := 0
	build := func() (*Font, error) {
		builds++
		return NewFromDict(fakeDict{"Subtype": name("Type1")})
	}
	_, err := c.Get("F1", build)
	require.NoError(t, err)
	_, err = c.Get("F1", build)
	require.NoError(t, err)
	assert.Equal(t, 1, builds)

	for i := 0; i < maxFontCache; i++ {
		_, err := c.Get(string(rune('A'+i)), build)
		require.NoError(t, err)
	}
	assert.LessOrEqual(t, len(c.entries), maxFontCache)
}

/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package pdfobj

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValuePrimitives(t *testing.T) {
	cases := []struct {
		in   string
		kind ObjectKind
	}{
		{"/Name", KindName},
		{"(lit string)", KindString},
		{"<48656c6c6f>", KindString},
		{"[1 2 3]", KindArray},
		{"<< /Key /Value >>", KindDict},
		{"42", KindInt},
		{"3.14", KindFloat},
		{"true", KindBool},
		{"null", KindNull},
	}
	for _, c := range cases {
		p := newParser([]byte(c.in))
		obj, err := p.parseObject()
		require.NoError(t, err, c.in)
		assert.Equal(t, c.kind, obj.Kind, c.in)
	}
}

func TestParseObjectRecognisesReference(t *testing.T) {
	p := newParser([]byte("12 0 R"))
	obj, err := p.parseObject()
	require.NoError(t, err)
	require.Equal(t, KindRef, obj.Kind)
	assert.Equal(t, 12, obj.Ref.Num)
	assert.Equal(t, 0, obj.Ref.Gen)
}

func TestParseIndirectObjectWithStream(t *testing.T) {
	buf := []byte("5 0 obj\n<< /Length 11 >>\nstream\nhello world\nendstream\nendobj\n")
	p := newParser(buf)
	obj, err := p.parseIndirectObjectAt(0)
	require.NoError(t, err)
	require.Equal(t, KindStream, obj.Kind)
	assert.Equal(t, "hello world", string(obj.Stream.Raw))
}

func TestParseDictNestedArray(t *testing.T) {
	p := newParser([]byte("<< /MediaBox [0 0 612 792] /Rotate 90 >>"))
	obj, err := p.parseObject()
	require.NoError(t, err)
	require.Equal(t, KindDict, obj.Kind)
	mb, ok := obj.Dict.Get("MediaBox")
	require.True(t, ok)
	require.Len(t, mb.Arr, 4)
	n, _ := mb.Arr[2].Number()
	assert.Equal(t, 612.0, n)
}

func TestLiteralStringEscapes(t *testing.T) {
	p := newParser([]byte(`(line1\nline2\(paren\))`))
	obj, err := p.parseObject()
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2(paren)", obj.Str)
}

func TestNameHexEscape(t *testing.T) {
	p := newParser([]byte("/A#20B"))
	obj, err := p.parseObject()
	require.NoError(t, err)
	assert.Equal(t, "A B", obj.Str)
}

/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package pdfobj

import (
	"bytes"
	"compress/zlib"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flateCompress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDecodeStreamFlate(t *testing.T) {
	raw := flateCompress(t, []byte("BT /F1 12 Tf (Hi) Tj ET"))
	dict := NewDictionary()
	dict.Set("Filter", Object{Kind: KindName, Str: "FlateDecode"})
	p := newParser(nil)
	out, err := p.DecodeStream(&Stream{Dict: dict, Raw: raw})
	require.NoError(t, err)
	assert.Equal(t, "BT /F1 12 Tf (Hi) Tj ET", string(out))
}

func TestDecodeStreamFlateWithPNGUpPredictor(t *testing.T) {
	// Two 3-byte rows, PNG "up" filter (tag=2): row0 raw, row1 delta vs row0.
	row0 := []byte{10, 20, 30}
	row1delta := []byte{1, 1, 1}
	raw := append([]byte{0}, row0...)
	raw = append(raw, 2)
	raw = append(raw, row1delta...)
	compressed := flateCompress(t, raw)

	parm := NewDictionary()
	parm.Set("Predictor", NumberObject(15))
	parm.Set("Columns", NumberObject(3))
	parm.Set("Colors", NumberObject(1))
	parm.Set("BitsPerComponent", NumberObject(8))

	dict := NewDictionary()
	dict.Set("Filter", Object{Kind: KindName, Str: "FlateDecode"})
	dict.Set("DecodeParms", Object{Kind: KindDict, Dict: parm})

	p := newParser(nil)
	out, err := p.DecodeStream(&Stream{Dict: dict, Raw: compressed})
	require.NoError(t, err)
	assert.Equal(t, []byte{10, 20, 30, 11, 21, 31}, out)
}

func TestDecodeStreamASCIIHex(t *testing.T) {
	dict := NewDictionary()
	dict.Set("Filter", Object{Kind: KindName, Str: "ASCIIHexDecode"})
	p := newParser(nil)
	out, err := p.DecodeStream(&Stream{Dict: dict, Raw: []byte("48656c6c6f>")})
	require.NoError(t, err)
	assert.Equal(t, "Hello", string(out))
}

func TestDecodeStreamASCII85(t *testing.T) {
	dict := NewDictionary()
	dict.Set("Filter", Object{Kind: KindName, Str: "ASCII85Decode"})
	p := newParser(nil)
	out, err := p.DecodeStream(&Stream{Dict: dict, Raw: []byte("87cURDZ~>")})
	require.NoError(t, err)
	assert.Equal(t, "Hello", string(out))
}

func TestDecodeStreamRunLength(t *testing.T) {
	dict := NewDictionary()
	dict.Set("Filter", Object{Kind: KindName, Str: "RunLengthDecode"})
	p := newParser(nil)
	// Literal run of 3 bytes "abc", then a repeat run of 'x' x4, then EOD.
	raw := []byte{2, 'a', 'b', 'c', byte(257 - 4), 'x', 128}
	out, err := p.DecodeStream(&Stream{Dict: dict, Raw: raw})
	require.NoError(t, err)
	assert.Equal(t, "abcxxxx", string(out))
}

func TestDecodeStreamUnsupportedFilter(t *testing.T) {
	dict := NewDictionary()
	dict.Set("Filter", Object{Kind: KindName, Str: "JBIG2Decode"})
	p := newParser(nil)
	_, err := p.DecodeStream(&Stream{Dict: dict, Raw: []byte("x")})
	assert.Error(t, err)
}

func TestDecodeStreamNoFilterIsPassthrough(t *testing.T) {
	dict := NewDictionary()
	p := newParser(nil)
	out, err := p.DecodeStream(&Stream{Dict: dict, Raw: []byte("raw bytes")})
	require.NoError(t, err)
	assert.Equal(t, "raw bytes", string(out))
}

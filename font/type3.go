/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package font

import (
	"github.com/bbqsrc/pdf-strings/internal/cmap"
	"github.com/bbqsrc/pdf-strings/internal/encoding"
	"github.com/bbqsrc/pdf-strings/internal/transform"
)

// type3Font decodes Type 3 fonts: glyphs are tiny content-stream procedures
// rather than outlines, so text extraction only needs the font's own
// /Encoding (Type3 fonts always carry Differences against StandardEncoding,
// per PDF32000 9.6.5.2) and its /FontMatrix, used to convert glyph-space
// widths into text-space units.
type type3Font struct {
	widths      simpleWidths
	toUnicode   *cmap.CMap
	cmapDamaged bool
	encoder     *encoding.SimpleEncoder
	fontMatrix  transform.Matrix
}

func newType3Font(dict Dict) (*type3Font, error) {
	f := &type3Font{
		widths:     newSimpleWidths(dict),
		encoder:    buildSimpleEncoder(dict),
		fontMatrix: transform.NewMatrix(0.001, 0, 0, 0.001, 0, 0),
	}
	f.toUnicode, f.cmapDamaged = loadToUnicode(dict)
	if arr, ok := lookupArray(dict, "FontMatrix"); ok && len(arr) == 6 {
		vals := make([]float64, 6)
		for i, v := range arr {
			vals[i], _ = v.AsNumber()
		}
		f.fontMatrix = transform.NewMatrix(vals[0], vals[1], vals[2], vals[3], vals[4], vals[5])
	}
	return f, nil
}

// GlyphSpaceScale reports the x-scale of the font matrix, used by
// Decode to convert Type3 /Widths (defined in glyph space, not the
// usual 1/1000 em) into text-space advances.
func (f *type3Font) GlyphSpaceScale() float64 {
	return f.fontMatrix.ScalingFactorX() * 1000
}

func (f *type3Font) Decode(data []byte) []DecodedCode {
	out := make([]DecodedCode, 0, len(data))
	scale := f.GlyphSpaceScale()
	if scale == 0 {
		scale = 1
	}
	for _, b := range data {
		code := uint32(b)
		text, ok := "", false
		if f.toUnicode != nil {
			text, ok = f.toUnicode.LookupUnicode(code)
		}
		if !ok {
			text, _ = f.encoder.Decode(b)
		}
		out = append(out, DecodedCode{
			Code:    code,
			Text:    text,
			Width:   f.widths.Width(b) * scale,
			IsSpace: b == 0x20,
		})
	}
	return out
}

func (f *type3Font) WritingMode() WritingMode { return WritingHorizontal }

func (f *type3Font) Lossy() bool { return f.encoder.Lossy() }

func (f *type3Font) CMapDamaged() bool { return f.cmapDamaged }

func (f *type3Font) UnknownEncoding() bool { return f.encoder.UnknownBase() }

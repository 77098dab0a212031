/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package font

import (
	"github.com/bbqsrc/pdf-strings/internal/cmap"
	"github.com/bbqsrc/pdf-strings/internal/encoding"
)

// simpleFont decodes Type1/TrueType/MMType1 fonts: one byte per code,
// resolved to Unicode text via ToUnicode first, else the font's encoding
// (base encoding + Differences, resolved through the Adobe Glyph List),
// else the replacement character.
type simpleFont struct {
	widths      simpleWidths
	toUnicode   *cmap.CMap
	cmapDamaged bool
	encoder     *encoding.SimpleEncoder
	ttMetrics   *truetypeMetrics // nil unless an embedded TrueType program supplies fallback widths
}

func newSimpleFont(dict Dict) (*simpleFont, error) {
	f := &simpleFont{
		widths:  newSimpleWidths(dict),
		encoder: buildSimpleEncoder(dict),
	}
	f.toUnicode, f.cmapDamaged = loadToUnicode(dict)
	if desc, ok := lookupDict(dict, "FontDescriptor"); ok {
		if sv, ok := lookupStream(desc, "FontFile2"); ok {
			if m, err := parseTrueTypeMetrics(sv.Bytes); err == nil {
				f.ttMetrics = m
			}
		}
	}
	return f, nil
}

// buildSimpleEncoder reads /Encoding, which is either a bare name (a
// predefined base encoding) or a dictionary naming a /BaseEncoding plus a
// /Differences array overlay (PDF32000 9.6.6).
func buildSimpleEncoder(dict Dict) *encoding.SimpleEncoder {
	base := "StandardEncoding"
	var diffs map[byte]string

	if v, ok := dict.Lookup("Encoding"); ok {
		switch v.Kind {
		case KindName:
			base = v.Str
		case KindDict, KindStream:
			if encDict, ok := v.AsDict(); ok {
				if name, ok := lookupName(encDict, "BaseEncoding"); ok {
					base = name
				}
				if arr, ok := lookupArray(encDict, "Differences"); ok {
					diffs = parseDifferences(arr)
				}
			}
		}
	}
	return encoding.NewSimpleEncoder(base, diffs)
}

// parseDifferences expands a /Differences array ([code name name name code
// name ...]) into a code -> glyph-name map.
func parseDifferences(arr []Value) map[byte]string {
	out := map[byte]string{}
	code := 0
	for _, v := range arr {
		if n, ok := v.AsNumber(); ok {
			code = int(n)
			continue
		}
		if name, ok := v.AsName(); ok {
			if code >= 0 && code <= 255 {
				out[byte(code)] = name
			}
			code++
		}
	}
	return out
}

func (f *simpleFont) Decode(data []byte) []DecodedCode {
	out := make([]DecodedCode, 0, len(data))
	for _, b := range data {
		code := uint32(b)
		text, ok := "", false
		if f.toUnicode != nil {
			text, ok = f.toUnicode.LookupUnicode(code)
		}
		if !ok {
			text, _ = f.encoder.Decode(b)
		}
		w := f.widths.Width(b)
		if w == 0 && f.ttMetrics != nil {
			if mw, ok := f.ttMetrics.Advance(b); ok {
				w = mw
			}
		}
		out = append(out, DecodedCode{
			Code:    code,
			Text:    text,
			Width:   w,
			IsSpace: b == 0x20,
		})
	}
	return out
}

func (f *simpleFont) WritingMode() WritingMode { return WritingHorizontal }

func (f *simpleFont) Lossy() bool { return f.encoder.Lossy() }

func (f *simpleFont) CMapDamaged() bool { return f.cmapDamaged }

func (f *simpleFont) UnknownEncoding() bool { return f.encoder.UnknownBase() }

/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package encoding

import (
	"github.com/bbqsrc/pdf-strings/internal/glyphlist"
)

// SimpleEncoder maps a single input byte to Unicode text for a Type1,
// TrueType or Type3 simple font: base encoding, overlaid by Differences,
// resolved via the Adobe Glyph List.
type SimpleEncoder struct {
	base        BaseName
	unknownBase bool            // the named base encoding wasn't recognised
	differences map[byte]string // code -> glyph name, from the font's /Differences array
	lossy       bool            // one-shot: a code had no mapping anywhere
}

// NewSimpleEncoder builds a SimpleEncoder from base encoding name base
// (unrecognised names are treated as StandardEncoding) and an optional
// Differences overlay.
func NewSimpleEncoder(base string, differences map[byte]string) *SimpleEncoder {
	b := BaseName(base)
	unknown := false
	switch b {
	case StandardEncoding, WinAnsiEncoding, MacRomanEncoding, MacExpertEncoding,
		SymbolEncoding, ZapfDingbatsEncoding:
	default:
		b = StandardEncoding
		unknown = true
	}
	return &SimpleEncoder{base: b, unknownBase: unknown, differences: differences}
}

// Decode resolves code to its Unicode text and reports whether the mapping
// succeeded. On failure it returns the replacement character and marks the
// encoder lossy.
func (e *SimpleEncoder) Decode(code byte) (string, bool) {
	if e.differences != nil {
		if name, ok := e.differences[code]; ok {
			if s, ok := glyphlist.ToRune(name); ok {
				return s, true
			}
		}
	}
	if name, ok := GlyphName(e.base, code); ok {
		if s, ok := glyphlist.ToRune(name); ok {
			return s, true
		}
	}
	if r, ok := DecodeRune(e.base, code); ok {
		return string(r), true
	}
	e.lossy = true
	return "�", false
}

// Lossy reports whether any code decoded by this encoder has failed to
// map, backing the one-shot-per-font warning.
func (e *SimpleEncoder) Lossy() bool {
	return e.lossy
}

// UnknownBase reports whether the font named a base encoding this package
// doesn't recognise and fell back to StandardEncoding.
func (e *SimpleEncoder) UnknownBase() bool {
	return e.unknownBase
}

/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package font

import (
	"github.com/bbqsrc/pdf-strings/internal/common"
)

// WritingMode distinguishes horizontal from vertical CID fonts; it governs
// how the glyph emitter advances the text matrix.
type WritingMode int

const (
	WritingHorizontal WritingMode = iota
	WritingVertical
)

// DecodedCode is one decoded unit from a show-text string: the raw code, its
// resolved Unicode text (possibly empty, possibly multi-rune for a
// ligature), and its advance width in glyph-space units (1/1000 em, as PDF
// widths are defined).
type DecodedCode struct {
	Code    uint32
	Text    string
	Width   float64 // glyph-space units, typically 0-1000+
	IsSpace bool    // single-byte code 0x20, which Tw word spacing applies to
}

// Decoder turns show-text operand bytes into decoded codes.
type Decoder interface {
	Decode(data []byte) []DecodedCode
	WritingMode() WritingMode
}

// Font is the tagged-variant font the content interpreter asks for: Type1,
// TrueType and Type3 are simple (1-byte code) fonts; Type0 is the composite
// (CID) font.
type Font struct {
	decoder Decoder
	subtype string
}

func (f *Font) Decode(data []byte) []DecodedCode { return f.decoder.Decode(data) }
func (f *Font) WritingMode() WritingMode         { return f.decoder.WritingMode() }
func (f *Font) Subtype() string                  { return f.subtype }

// lossyReporter is implemented by decoders that track whether any code
// failed to map to Unicode, backing the one-shot-per-font warning.
type lossyReporter interface {
	Lossy() bool
}

// Lossy reports whether this font has emitted the replacement character for
// at least one code.
func (f *Font) Lossy() bool {
	if r, ok := f.decoder.(lossyReporter); ok {
		return r.Lossy()
	}
	return false
}

// CMapDamaged reports whether a CMap attached to this font (ToUnicode or an
// embedded encoding CMap) was present but failed to parse.
func (f *Font) CMapDamaged() bool {
	if r, ok := f.decoder.(interface{ CMapDamaged() bool }); ok {
		return r.CMapDamaged()
	}
	return false
}

// UnknownEncoding reports whether the font named a base encoding that
// wasn't recognised and decoding fell back to StandardEncoding.
func (f *Font) UnknownEncoding() bool {
	if r, ok := f.decoder.(interface{ UnknownEncoding() bool }); ok {
		return r.UnknownEncoding()
	}
	return false
}

// NewFromDict builds a Font from a PDF font dictionary, dispatching on
// /Subtype. Unrecognised subtypes are treated as simple fonts with
// StandardEncoding and the replacement-character fallback, since every PDF
// font dictionary at minimum names a code range and (usually) a Widths
// array extraction can still make use of.
func NewFromDict(dict Dict) (*Font, error) {
	subtype, _ := lookupName(dict, "Subtype")
	switch subtype {
	case "Type0":
		d, err := newType0Font(dict)
		if err != nil {
			return nil, err
		}
		return &Font{decoder: d, subtype: subtype}, nil
	case "Type3":
		d, err := newType3Font(dict)
		if err != nil {
			return nil, err
		}
		return &Font{decoder: d, subtype: subtype}, nil
	case "Type1", "TrueType", "MMType1":
		d, err := newSimpleFont(dict)
		if err != nil {
			return nil, err
		}
		return &Font{decoder: d, subtype: subtype}, nil
	default:
		common.Log.Debug("font: unrecognised Subtype %q, treating as simple", subtype)
		d, err := newSimpleFont(dict)
		if err != nil {
			return nil, err
		}
		return &Font{decoder: d, subtype: subtype}, nil
	}
}

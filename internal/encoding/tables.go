/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package encoding implements the simple (1-byte) font encodings: the
// predefined base encodings (StandardEncoding,
// MacRomanEncoding, WinAnsiEncoding, MacExpertEncoding), overlaid by a
// font's Differences array, resolved to Unicode via internal/glyphlist.
//
// WinAnsi and MacRoman are delegated to golang.org/x/text/encoding/charmap
// (Windows1252 and Macintosh respectively) rather than hand-rolled
// 256-entry tables.
package encoding

import (
	"golang.org/x/text/encoding/charmap"
)

// BaseName identifies one of the predefined 1-byte encodings.
type BaseName string

const (
	StandardEncoding     BaseName = "StandardEncoding"
	WinAnsiEncoding      BaseName = "WinAnsiEncoding"
	MacRomanEncoding     BaseName = "MacRomanEncoding"
	MacExpertEncoding    BaseName = "MacExpertEncoding"
	SymbolEncoding       BaseName = "Symbol"
	ZapfDingbatsEncoding BaseName = "ZapfDingbats"
)

// standardHighGlyphNames gives the glyph names of codes 0xA1-0xFF in Adobe's
// StandardEncoding. Codes 0x20-0x7E follow ASCII/AGL single-letter & named
// punctuation glyph names (handled generically, see asciiGlyphNames and GlyphName); codes outside
// this map and outside ASCII have no glyph in StandardEncoding.
var standardHighGlyphNames = map[byte]string{
	0xA1: "exclamdown", 0xA2: "cent", 0xA3: "sterling", 0xA4: "fraction",
	0xA5: "yen", 0xA6: "florin", 0xA7: "section", 0xA8: "currency",
	0xA9: "quotesingle", 0xAA: "quotedblleft", 0xAB: "guillemotleft",
	0xAC: "guilsinglleft", 0xAD: "guilsinglright", 0xAE: "fi", 0xAF: "fl",
	0xB1: "endash", 0xB2: "dagger", 0xB3: "daggerdbl", 0xB4: "periodcentered",
	0xB6: "paragraph", 0xB7: "bullet", 0xB8: "quotesinglbase",
	0xB9: "quotedblbase", 0xBA: "quotedblright", 0xBB: "guillemotright",
	0xBC: "ellipsis", 0xBD: "perthousand", 0xBF: "questiondown",
	0xC1: "grave", 0xC2: "acute", 0xC3: "circumflex", 0xC4: "tilde",
	0xC5: "macron", 0xC6: "breve", 0xC7: "dotaccent", 0xC8: "dieresis",
	0xCA: "ring", 0xCB: "cedilla", 0xCD: "hungarumlaut", 0xCE: "ogonek",
	0xCF: "caron", 0xD0: "emdash",
	0xE1: "AE", 0xE3: "ordfeminine", 0xE8: "Lslash", 0xE9: "Oslash",
	0xEA: "OE", 0xEB: "ordmasculine",
	0xF1: "ae", 0xF5: "dotlessi", 0xF8: "lslash", 0xF9: "oslash",
	0xFA: "oe", 0xFB: "germandbls",
}

// asciiGlyphNames gives the glyph names of codes 0x20-0x7E, shared by every
// predefined encoding.
var asciiGlyphNames = map[byte]string{
	0x20: "space", 0x21: "exclam", 0x22: "quotedbl", 0x23: "numbersign",
	0x24: "dollar", 0x25: "percent", 0x26: "ampersand", 0x27: "quoteright",
	0x28: "parenleft", 0x29: "parenright", 0x2A: "asterisk", 0x2B: "plus",
	0x2C: "comma", 0x2D: "hyphen", 0x2E: "period", 0x2F: "slash",
	0x3A: "colon", 0x3B: "semicolon", 0x3C: "less", 0x3D: "equal",
	0x3E: "greater", 0x3F: "question", 0x40: "at",
	0x5B: "bracketleft", 0x5C: "backslash", 0x5D: "bracketright",
	0x5E: "asciicircum", 0x5F: "underscore", 0x60: "quoteleft",
	0x7B: "braceleft", 0x7C: "bar", 0x7D: "braceright", 0x7E: "asciitilde",
}

func init() {
	for c := byte('0'); c <= '9'; c++ {
		names := []string{"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine"}
		asciiGlyphNames[c] = names[c-'0']
	}
	for c := byte('A'); c <= 'Z'; c++ {
		asciiGlyphNames[c] = string(c)
	}
	for c := byte('a'); c <= 'z'; c++ {
		asciiGlyphNames[c] = string(c)
	}
}

// GlyphName returns the glyph name assigned to code in the predefined
// encoding base, if any.
func GlyphName(base BaseName, code byte) (string, bool) {
	if name, ok := asciiGlyphNames[code]; ok && code < 0x80 {
		if base == WinAnsiEncoding && code == 0x27 {
			return "quotesingle", true // WinAnsi differs from Standard/MacRoman here
		}
		if base == WinAnsiEncoding && code == 0x60 {
			return "grave", true
		}
		return name, true
	}
	switch base {
	case StandardEncoding:
		name, ok := standardHighGlyphNames[code]
		return name, ok
	case WinAnsiEncoding, MacRomanEncoding:
		// Delegate the high byte range to the matching code page; the
		// glyph *name* isn't needed here because DecodeRune below resolves
		// these encodings straight to Unicode without going through AGL.
		return "", false
	default:
		return "", false
	}
}

// DecodeRune resolves code directly to a rune for the byte-oriented
// encodings (WinAnsi -> CP1252, MacRoman -> Macintosh code page), without
// going through a glyph name. Returns ok=false for codes the code page
// leaves undefined.
func DecodeRune(base BaseName, code byte) (rune, bool) {
	switch base {
	case WinAnsiEncoding:
		r := charmap.Windows1252.DecodeByte(code)
		if r == 0 && code != 0 {
			return 0, false
		}
		return r, true
	case MacRomanEncoding:
		r := charmap.Macintosh.DecodeByte(code)
		if r == 0 && code != 0 {
			return 0, false
		}
		return r, true
	}
	return 0, false
}

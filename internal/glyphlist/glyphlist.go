/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package glyphlist resolves PDF glyph names (as used in Differences arrays
// and Type1/TrueType base encodings) to Unicode runes, per the Adobe Glyph
// List convention.
//
// The table below is a curated subset of the ~4,300 entry AGL: Latin-1,
// common punctuation/typography, the common ligatures, and a broad slice of
// Latin Extended-A. Names outside the table still resolve via the
// "uniXXXX"/"uXXXXXX" literal-codepoint convention, which covers anything a
// font subsetter emits for glyphs the curated table doesn't carry a name
// for. A process-wide sync.Once seeds the table lazily.
package glyphlist

import (
	"strconv"
	"strings"
	"sync"
)

var (
	once  sync.Once
	table map[string]string // glyph name -> UTF-8 unicode fragment (usually 1 rune, sometimes a ligature)
)

func initTable() {
	table = map[string]string{
		"A": "A", "B": "B", "C": "C", "D": "D", "E": "E", "F": "F", "G": "G",
		"H": "H", "I": "I", "J": "J", "K": "K", "L": "L", "M": "M", "N": "N",
		"O": "O", "P": "P", "Q": "Q", "R": "R", "S": "S", "T": "T", "U": "U",
		"V": "V", "W": "W", "X": "X", "Y": "Y", "Z": "Z",
		"a": "a", "b": "b", "c": "c", "d": "d", "e": "e", "f": "f", "g": "g",
		"h": "h", "i": "i", "j": "j", "k": "k", "l": "l", "m": "m", "n": "n",
		"o": "o", "p": "p", "q": "q", "r": "r", "s": "s", "t": "t", "u": "u",
		"v": "v", "w": "w", "x": "x", "y": "y", "z": "z",
		"space": " ", "exclam": "!", "quotedbl": "\"", "numbersign": "#",
		"dollar": "$", "percent": "%", "ampersand": "&", "quotesingle": "'",
		"parenleft": "(", "parenright": ")", "asterisk": "*", "plus": "+",
		"comma": ",", "hyphen": "-", "period": ".", "slash": "/",
		"zero": "0", "one": "1", "two": "2", "three": "3", "four": "4",
		"five": "5", "six": "6", "seven": "7", "eight": "8", "nine": "9",
		"colon": ":", "semicolon": ";", "less": "<", "equal": "=", "greater": ">",
		"question": "?", "at": "@",
		"bracketleft": "[", "backslash": "\\", "bracketright": "]",
		"asciicircum": "^", "underscore": "_", "grave": "`",
		"braceleft": "{", "bar": "|", "braceright": "}", "asciitilde": "~",
		"exclamdown": "¡", "cent": "¢", "sterling": "£", "currency": "¤",
		"yen": "¥", "brokenbar": "¦", "section": "§", "dieresis": "¨",
		"copyright": "©", "ordfeminine": "ª", "guillemotleft": "«",
		"logicalnot": "¬", "registered": "®", "macron": "¯", "degree": "°",
		"plusminus": "±", "twosuperior": "²", "threesuperior": "³",
		"acute": "´", "mu": "µ", "paragraph": "¶", "periodcentered": "·",
		"cedilla": "¸", "onesuperior": "¹", "ordmasculine": "º",
		"guillemotright": "»", "onequarter": "¼", "onehalf": "½",
		"threequarters": "¾", "questiondown": "¿",
		"Agrave": "À", "Aacute": "Á", "Acircumflex": "Â", "Atilde": "Ã",
		"Adieresis": "Ä", "Aring": "Å", "AE": "Æ", "Ccedilla": "Ç",
		"Egrave": "È", "Eacute": "É", "Ecircumflex": "Ê", "Edieresis": "Ë",
		"Igrave": "Ì", "Iacute": "Í", "Icircumflex": "Î", "Idieresis": "Ï",
		"Eth": "Ð", "Ntilde": "Ñ", "Ograve": "Ò", "Oacute": "Ó",
		"Ocircumflex": "Ô", "Otilde": "Õ", "Odieresis": "Ö", "multiply": "×",
		"Oslash": "Ø", "Ugrave": "Ù", "Uacute": "Ú", "Ucircumflex": "Û",
		"Udieresis": "Ü", "Yacute": "Ý", "Thorn": "Þ", "germandbls": "ß",
		"agrave": "à", "aacute": "á", "acircumflex": "â", "atilde": "ã",
		"adieresis": "ä", "aring": "å", "ae": "æ", "ccedilla": "ç",
		"egrave": "è", "eacute": "é", "ecircumflex": "ê", "edieresis": "ë",
		"igrave": "ì", "iacute": "í", "icircumflex": "î", "idieresis": "ï",
		"eth": "ð", "ntilde": "ñ", "ograve": "ò", "oacute": "ó",
		"ocircumflex": "ô", "otilde": "õ", "odieresis": "ö", "divide": "÷",
		"oslash": "ø", "ugrave": "ù", "uacute": "ú", "ucircumflex": "û",
		"udieresis": "ü", "yacute": "ý", "thorn": "þ", "ydieresis": "ÿ",

		"Amacron": "Ā", "amacron": "ā", "Abreve": "Ă", "abreve": "ă",
		"Aogonek": "Ą", "aogonek": "ą", "Cacute": "Ć", "cacute": "ć",
		"Ccaron": "Č", "ccaron": "č", "Dcaron": "Ď", "dcaron": "ď",
		"Dcroat": "Đ", "dcroat": "đ", "Emacron": "Ē", "emacron": "ē",
		"Eogonek": "Ę", "eogonek": "ę", "Ecaron": "Ě", "ecaron": "ě",
		"Gbreve": "Ğ", "gbreve": "ğ", "Lacute": "Ĺ", "lacute": "ĺ",
		"Lcaron": "Ľ", "lcaron": "ľ", "Lslash": "Ł", "lslash": "ł",
		"Nacute": "Ń", "nacute": "ń", "Ncaron": "Ň", "ncaron": "ň",
		"Omacron": "Ō", "omacron": "ō", "Odblacute": "Ő", "odblacute": "ő",
		"OE": "Œ", "oe": "œ", "Racute": "Ŕ", "racute": "ŕ",
		"Rcaron": "Ř", "rcaron": "ř", "Sacute": "Ś", "sacute": "ś",
		"Scaron": "Š", "scaron": "š", "Scedilla": "Ş", "scedilla": "ş",
		"Tcaron": "Ť", "tcaron": "ť", "Umacron": "Ū", "umacron": "ū",
		"Uring": "Ů", "uring": "ů", "Udblacute": "Ű", "udblacute": "ű",
		"Uogonek": "Ų", "uogonek": "ų", "Wcircumflex": "Ŵ", "wcircumflex": "ŵ",
		"Ycircumflex": "Ŷ", "ycircumflex": "ŷ", "Ydieresis": "Ÿ",
		"Zacute": "Ź", "zacute": "ź", "Zdotaccent": "Ż", "zdotaccent": "ż",
		"Zcaron": "Ž", "zcaron": "ž",

		"fi": "fi", "fl": "fl", "ffi": "ffi", "ffl": "ffl", "ff": "ff",
		"quoteleft": "‘", "quoteright": "’", "quotesinglbase": "‚",
		"quotedblleft": "“", "quotedblright": "”", "quotedblbase": "„",
		"dagger": "†", "daggerdbl": "‡", "bullet": "•", "ellipsis": "…",
		"perthousand": "‰", "guilsinglleft": "‹", "guilsinglright": "›",
		"fraction": "⁄", "Euro": "€", "trademark": "™", "emdash": "—",
		"endash": "–", "minus": "−", "florin": "ƒ", "circumflex": "ˆ",
		"tilde": "˜", "breve": "˘", "dotaccent": "˙", "ring": "˚",
		"ogonek": "˛", "caron": "ˇ", "hungarumlaut": "˝",
		"nbspace": " ", "space_alt": " ",
	}
}

// ToRune resolves name to its Unicode text. Handles uniXXXX (one or more
// 4-hex-digit groups) and uXXXXXX (4-6 hex digits) literal forms directly,
// falling back to the curated table otherwise.
func ToRune(name string) (string, bool) {
	once.Do(initTable)

	// Differences entries sometimes carry a dotted suffix (e.g. "A.sc" or
	// "a.smcp"); the AGL convention is to resolve on the part before the dot.
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}

	if s, ok := uniLiteral(name); ok {
		return s, true
	}
	s, ok := table[name]
	return s, ok
}

// uniLiteral decodes the "uniXXXX" (one or more groups of 4 hex digits,
// concatenated for ligature glyph names like "uni00660069") and "uXXXXXX"
// (4 to 6 hex digits) literal-codepoint glyph name conventions.
func uniLiteral(name string) (string, bool) {
	switch {
	case strings.HasPrefix(name, "uni") && len(name) >= 7 && (len(name)-3)%4 == 0:
		hex := name[3:]
		var b strings.Builder
		for i := 0; i < len(hex); i += 4 {
			v, err := strconv.ParseInt(hex[i:i+4], 16, 32)
			if err != nil {
				return "", false
			}
			b.WriteRune(rune(v))
		}
		return b.String(), true
	case strings.HasPrefix(name, "u") && len(name) >= 5 && len(name) <= 7:
		v, err := strconv.ParseInt(name[1:], 16, 32)
		if err != nil {
			return "", false
		}
		return string(rune(v)), true
	}
	return "", false
}

/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package cmap

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"strconv"
)

// tokenKind classifies a CMap program token.
type tokenKind int

const (
	tokNumber tokenKind = iota
	tokHexString
	tokName
	tokArrayStart
	tokArrayEnd
	tokKeyword // bare word: begincodespacerange, endcidrange, usecmap, etc.
)

type token struct {
	kind tokenKind
	raw  []byte // for hex strings: the decoded bytes; for numbers/keywords/names: the literal text
}

// Parse parses a CMap program (PostScript-like syntax) into a CMap. Parse
// failures are non-fatal: they're reported once (by the
// caller, which has the font context for the message) and Parse returns
// whatever was successfully parsed before the error, which may be an empty
// map signalling "use identity mapping".
func Parse(data []byte) (*CMap, error) {
	cm := newCMap()
	toks, err := tokenize(data)
	if err != nil {
		return cm, err
	}
	i := 0
	for i < len(toks) {
		t := toks[i]
		if t.kind != tokKeyword {
			i++
			continue
		}
		switch string(t.raw) {
		case "begincodespacerange":
			i = parseCodespaceRanges(cm, toks, i+1)
		case "begincidrange":
			i = parseCIDRanges(cm, toks, i+1)
		case "begincidchar":
			i = parseCIDChars(cm, toks, i+1)
		case "beginbfrange":
			i = parseBFRanges(cm, toks, i+1)
		case "beginbfchar":
			i = parseBFChars(cm, toks, i+1)
		default:
			i++
		}
	}
	return cm, nil
}

func parseCodespaceRanges(cm *CMap, toks []token, i int) int {
	for i+1 < len(toks) {
		if toks[i].kind == tokKeyword && string(toks[i].raw) == "endcodespacerange" {
			return i + 1
		}
		if toks[i].kind != tokHexString || toks[i+1].kind != tokHexString {
			return i + 1
		}
		cm.codespaces = append(cm.codespaces, codespaceRange{Lo: toks[i].raw, Hi: toks[i+1].raw})
		i += 2
	}
	return len(toks)
}

func parseCIDRanges(cm *CMap, toks []token, i int) int {
	for i+2 < len(toks) {
		if toks[i].kind == tokKeyword && string(toks[i].raw) == "endcidrange" {
			return i + 1
		}
		if toks[i].kind != tokHexString || toks[i+1].kind != tokHexString || toks[i+2].kind != tokNumber {
			return i + 1
		}
		lo := bytesToUint32(toks[i].raw)
		hi := bytesToUint32(toks[i+1].raw)
		cidLo, _ := strconv.ParseUint(string(toks[i+2].raw), 10, 32)
		cm.cidRanges = append(cm.cidRanges, cidRange{Lo: lo, Hi: hi, CIDLo: uint32(cidLo)})
		i += 3
	}
	return len(toks)
}

func parseCIDChars(cm *CMap, toks []token, i int) int {
	for i+1 < len(toks) {
		if toks[i].kind == tokKeyword && string(toks[i].raw) == "endcidchar" {
			return i + 1
		}
		if toks[i].kind != tokHexString || toks[i+1].kind != tokNumber {
			return i + 1
		}
		code := bytesToUint32(toks[i].raw)
		cid, _ := strconv.ParseUint(string(toks[i+1].raw), 10, 32)
		cm.cidChars[code] = uint32(cid)
		i += 2
	}
	return len(toks)
}

func parseBFChars(cm *CMap, toks []token, i int) int {
	for i+1 < len(toks) {
		if toks[i].kind == tokKeyword && string(toks[i].raw) == "endbfchar" {
			return i + 1
		}
		if toks[i].kind != tokHexString || toks[i+1].kind != tokHexString {
			return i + 1
		}
		code := bytesToUint32(toks[i].raw)
		cm.bfChars[code] = decodeUTF16BE(toks[i+1].raw)
		i += 2
	}
	return len(toks)
}

func parseBFRanges(cm *CMap, toks []token, i int) int {
	for i+2 < len(toks) {
		if toks[i].kind == tokKeyword && string(toks[i].raw) == "endbfrange" {
			return i + 1
		}
		if toks[i].kind != tokHexString || toks[i+1].kind != tokHexString {
			return i + 1
		}
		lo := bytesToUint32(toks[i].raw)
		hi := bytesToUint32(toks[i+1].raw)
		switch toks[i+2].kind {
		case tokHexString:
			cm.bfRanges = append(cm.bfRanges, bfRange{Lo: lo, Hi: hi, Dst: decodeUTF16BE(toks[i+2].raw)})
			i += 3
		case tokArrayStart:
			j := i + 3
			var dsts []string
			for j < len(toks) && toks[j].kind != tokArrayEnd {
				if toks[j].kind == tokHexString {
					dsts = append(dsts, decodeUTF16BE(toks[j].raw))
				}
				j++
			}
			cm.bfRanges = append(cm.bfRanges, bfRange{Lo: lo, Hi: hi, Dsts: dsts})
			i = j + 1
		default:
			i += 3
		}
	}
	return len(toks)
}

func bytesToUint32(b []byte) uint32 {
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v
}

// decodeUTF16BE decodes a ToUnicode destination string, which is UTF-16BE
// (possibly a surrogate pair, possibly several codepoints for a ligature
// like "fi").
func decodeUTF16BE(b []byte) string {
	if len(b)%2 != 0 {
		b = b[:len(b)-1]
	}
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
	}
	runes := make([]rune, 0, len(units))
	for i := 0; i < len(units); i++ {
		u := units[i]
		if u >= 0xD800 && u <= 0xDBFF && i+1 < len(units) {
			lo := units[i+1]
			if lo >= 0xDC00 && lo <= 0xDFFF {
				r := (rune(u-0xD800)<<10 | rune(lo-0xDC00)) + 0x10000
				runes = append(runes, r)
				i++
				continue
			}
		}
		runes = append(runes, rune(u))
	}
	return string(runes)
}

// tokenize scans a CMap program into tokens. Strings that are arrays of
// bytes in <...> form are hex-decoded; bare words become keywords/names.
func tokenize(data []byte) ([]token, error) {
	var toks []token
	r := bufio.NewReader(bytes.NewReader(data))
	for {
		b, err := r.ReadByte()
		if err != nil {
			break
		}
		switch {
		case isSpace(b):
			continue
		case b == '%':
			for {
				c, err := r.ReadByte()
				if err != nil || c == '\n' {
					break
				}
			}
		case b == '<':
			peek, err := r.Peek(1)
			if err == nil && len(peek) > 0 && peek[0] == '<' {
				// "<<...>>" dictionary: skip to matching ">>" (CMaps only
				// use dicts for CIDSystemInfo, which this parser doesn't
				// need).
				r.ReadByte()
				depth := 1
				for depth > 0 {
					c, err := r.ReadByte()
					if err != nil {
						return toks, nil
					}
					if c == '<' {
						if p, _ := r.Peek(1); len(p) > 0 && p[0] == '<' {
							r.ReadByte()
							depth++
						}
					} else if c == '>' {
						if p, _ := r.Peek(1); len(p) > 0 && p[0] == '>' {
							r.ReadByte()
							depth--
						}
					}
				}
				continue
			}
			var hexDigits []byte
			for {
				c, err := r.ReadByte()
				if err != nil || c == '>' {
					break
				}
				if isHexDigit(c) {
					hexDigits = append(hexDigits, c)
				}
			}
			if len(hexDigits)%2 == 1 {
				hexDigits = append(hexDigits, '0')
			}
			decoded := make([]byte, hex.DecodedLen(len(hexDigits)))
			n, _ := hex.Decode(decoded, hexDigits)
			toks = append(toks, token{kind: tokHexString, raw: decoded[:n]})
		case b == '/':
			var name []byte
			for {
				p, err := r.Peek(1)
				if err != nil || isSpace(p[0]) || isDelim(p[0]) {
					break
				}
				c, _ := r.ReadByte()
				name = append(name, c)
			}
			toks = append(toks, token{kind: tokName, raw: name})
		case b == '[':
			toks = append(toks, token{kind: tokArrayStart})
		case b == ']':
			toks = append(toks, token{kind: tokArrayEnd})
		case b == '(':
			// Literal string, e.g. inside usecmap or comments; skip balanced parens.
			depth := 1
			for depth > 0 {
				c, err := r.ReadByte()
				if err != nil {
					break
				}
				if c == '\\' {
					r.ReadByte()
					continue
				}
				if c == '(' {
					depth++
				} else if c == ')' {
					depth--
				}
			}
		case isNumberStart(b):
			word := []byte{b}
			for {
				p, err := r.Peek(1)
				if err != nil || isSpace(p[0]) || isDelim(p[0]) {
					break
				}
				c, _ := r.ReadByte()
				word = append(word, c)
			}
			toks = append(toks, token{kind: tokNumber, raw: word})
		default:
			word := []byte{b}
			for {
				p, err := r.Peek(1)
				if err != nil || isSpace(p[0]) || isDelim(p[0]) {
					break
				}
				c, _ := r.ReadByte()
				word = append(word, c)
			}
			toks = append(toks, token{kind: tokKeyword, raw: word})
		}
	}
	return toks, nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == '\f' || b == 0
}

func isDelim(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isNumberStart(b byte) bool {
	return (b >= '0' && b <= '9') || b == '-' || b == '+' || b == '.'
}

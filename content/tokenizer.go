/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package content

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"errors"
	"io"
	"strconv"

	"github.com/bbqsrc/pdf-strings/font"
)

// Operation is one content-stream instruction: an operator keyword plus its
// preceding operands, e.g. "1 0 0 1 72 720 Tm" -> Operator "Tm", Operands
// [1 0 0 1 72 720].
type Operation struct {
	Operator string
	Operands []font.Value
}

// tokenizer scans a content stream into Operations: a bufio.Reader-based
// Peek/Discard/ReadByte scanner that accumulates operands until it hits a
// bare keyword, which it reports as the operator closing that operation.
type tokenizer struct {
	r *bufio.Reader
}

func newTokenizer(data []byte) *tokenizer {
	return &tokenizer{r: bufio.NewReader(bytes.NewReader(data))}
}

// Next returns the next operation, or io.EOF when the stream is exhausted.
// Inline images (BI...ID...EI) are recognized and their binary data
// discarded; image decoding is out of scope for text extraction.
func (t *tokenizer) Next() (Operation, error) {
	var op Operation
	for {
		v, isOperator, err := t.parseObject()
		if err != nil {
			return op, err
		}
		if isOperator {
			op.Operator = v.Str
			if op.Operator == "BI" {
				if err := t.skipInlineImage(); err != nil {
					return op, err
				}
			}
			return op, nil
		}
		op.Operands = append(op.Operands, v)
	}
}

// parseObject returns the next object. If the token is a bare keyword (not
// a recognized PDF literal syntax), isOperator is true and v.Str holds the
// keyword text.
func (t *tokenizer) parseObject() (v font.Value, isOperator bool, err error) {
	if err := t.skipSpacesAndComments(); err != nil {
		return v, false, err
	}
	b, err := t.r.Peek(1)
	if err != nil {
		return v, false, err
	}
	switch {
	case b[0] == '/':
		name, err := t.parseName()
		return font.Value{Kind: font.KindName, Str: name}, false, err
	case b[0] == '(':
		s, err := t.parseLiteralString()
		return font.Value{Kind: font.KindString, Str: s}, false, err
	case b[0] == '<':
		peek2, _ := t.r.Peek(2)
		if len(peek2) == 2 && peek2[1] == '<' {
			d, err := t.parseDict()
			return d, false, err
		}
		s, err := t.parseHexString()
		return font.Value{Kind: font.KindString, Str: s}, false, err
	case b[0] == '[':
		arr, err := t.parseArray()
		return arr, false, err
	case b[0] == '-' || b[0] == '+' || b[0] == '.' || (b[0] >= '0' && b[0] <= '9'):
		n, err := t.parseNumber()
		return font.Value{Kind: font.KindNumber, Num: n}, false, err
	default:
		word, err := t.parseKeyword()
		if err != nil {
			return v, false, err
		}
		switch word {
		case "true":
			return font.Value{Kind: font.KindBool, Bool: true}, false, nil
		case "false":
			return font.Value{Kind: font.KindBool, Bool: false}, false, nil
		case "null":
			return font.Value{Kind: font.KindNull}, false, nil
		}
		return font.Value{Str: word}, true, nil
	}
}

func (t *tokenizer) skipSpacesAndComments() error {
	for {
		b, err := t.r.Peek(1)
		if err != nil {
			return err
		}
		if isWhitespace(b[0]) {
			t.r.ReadByte()
			continue
		}
		if b[0] == '%' {
			for {
				c, err := t.r.ReadByte()
				if err != nil || c == '\n' || c == '\r' {
					break
				}
			}
			continue
		}
		return nil
	}
}

func (t *tokenizer) parseName() (string, error) {
	t.r.ReadByte() // consume '/'
	var buf bytes.Buffer
	for {
		b, err := t.r.Peek(1)
		if err != nil {
			break
		}
		if isWhitespace(b[0]) || isDelimiter(b[0]) {
			break
		}
		if b[0] == '#' {
			hx, err := t.r.Peek(3)
			if err == nil && len(hx) == 3 {
				if code, derr := hex.DecodeString(string(hx[1:3])); derr == nil {
					t.r.Discard(3)
					buf.Write(code)
					continue
				}
			}
		}
		c, _ := t.r.ReadByte()
		buf.WriteByte(c)
	}
	return buf.String(), nil
}

func (t *tokenizer) parseKeyword() (string, error) {
	var buf bytes.Buffer
	for {
		b, err := t.r.Peek(1)
		if err != nil || isWhitespace(b[0]) || isDelimiter(b[0]) {
			break
		}
		c, _ := t.r.ReadByte()
		buf.WriteByte(c)
	}
	if buf.Len() == 0 {
		c, err := t.r.ReadByte()
		if err != nil {
			return "", err
		}
		return string(c), nil
	}
	return buf.String(), nil
}

func (t *tokenizer) parseNumber() (float64, error) {
	var buf bytes.Buffer
	for {
		b, err := t.r.Peek(1)
		if err != nil {
			break
		}
		c := b[0]
		if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E' {
			t.r.ReadByte()
			buf.WriteByte(c)
			continue
		}
		break
	}
	n, err := strconv.ParseFloat(buf.String(), 64)
	if err != nil {
		return 0, nil // malformed numeric operand sanitises to 0 rather than aborting the stream
	}
	return n, nil
}

func (t *tokenizer) parseLiteralString() (string, error) {
	t.r.ReadByte() // consume '('
	var buf bytes.Buffer
	depth := 1
	for depth > 0 {
		c, err := t.r.ReadByte()
		if err != nil {
			return buf.String(), err
		}
		switch c {
		case '\\':
			esc, err := t.r.ReadByte()
			if err != nil {
				return buf.String(), err
			}
			switch esc {
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case 'b':
				buf.WriteByte('\b')
			case 'f':
				buf.WriteByte('\f')
			case '(', ')', '\\':
				buf.WriteByte(esc)
			case '\r', '\n':
				// Line continuation: escaped newline contributes nothing.
			default:
				if esc >= '0' && esc <= '7' {
					octal := []byte{esc}
					for i := 0; i < 2; i++ {
						p, err := t.r.Peek(1)
						if err != nil || p[0] < '0' || p[0] > '7' {
							break
						}
						c2, _ := t.r.ReadByte()
						octal = append(octal, c2)
					}
					v, _ := strconv.ParseInt(string(octal), 8, 32)
					buf.WriteByte(byte(v))
				} else {
					buf.WriteByte(esc)
				}
			}
		case '(':
			depth++
			buf.WriteByte(c)
		case ')':
			depth--
			if depth > 0 {
				buf.WriteByte(c)
			}
		default:
			buf.WriteByte(c)
		}
	}
	return buf.String(), nil
}

func (t *tokenizer) parseHexString() (string, error) {
	t.r.ReadByte() // consume '<'
	var hexDigits []byte
	for {
		c, err := t.r.ReadByte()
		if err != nil {
			return "", err
		}
		if c == '>' {
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
	return string(decoded[:n]), nil
}

func (t *tokenizer) parseArray() (font.Value, error) {
	t.r.ReadByte() // consume '['
	var arr []font.Value
	for {
		if err := t.skipSpacesAndComments(); err != nil {
			return font.Value{}, err
		}
		b, err := t.r.Peek(1)
		if err != nil {
			return font.Value{}, err
		}
		if b[0] == ']' {
			t.r.ReadByte()
			break
		}
		v, isOperator, err := t.parseObject()
		if err != nil {
			return font.Value{}, err
		}
		if isOperator {
			continue // stray keyword inside an array: ignore
		}
		arr = append(arr, v)
	}
	return font.Value{Kind: font.KindArray, Arr: arr}, nil
}

// parseDict parses a "<<...>>" dictionary. Content streams rarely carry
// dicts outside of BDC/DP marked-content operands and inline-image
// parameter dicts (handled separately); this exists so such operands don't
// desynchronize the parser.
func (t *tokenizer) parseDict() (font.Value, error) {
	t.r.ReadByte()
	t.r.ReadByte() // consume "<<"
	d := dictValue{entries: map[string]font.Value{}}
	for {
		if err := t.skipSpacesAndComments(); err != nil {
			return font.Value{}, err
		}
		peek, err := t.r.Peek(2)
		if err != nil {
			return font.Value{}, err
		}
		if peek[0] == '>' && peek[1] == '>' {
			t.r.Discard(2)
			break
		}
		keyVal, isOperator, err := t.parseObject()
		if err != nil || isOperator || keyVal.Kind != font.KindName {
			return font.Value{}, errors.New("content: malformed dictionary")
		}
		val, isOperator, err := t.parseObject()
		if err != nil {
			return font.Value{}, err
		}
		if isOperator {
			return font.Value{}, errors.New("content: malformed dictionary value")
		}
		d.entries[keyVal.Str] = val
	}
	return font.Value{Kind: font.KindDict, DictV: d}, nil
}

// dictValue is the tokenizer's own trivial font.Dict implementation for
// inline dictionary operands (BDC property lists, inline-image parameter
// dicts); it never needs indirect-reference resolution since content
// streams don't carry references inline.
type dictValue struct {
	entries map[string]font.Value
}

func (d dictValue) Lookup(key string) (font.Value, bool) {
	v, ok := d.entries[key]
	return v, ok
}

// skipInlineImage consumes a BI ... ID <binary> EI block without attempting
// to decode the image: it scans for the shortest "EI" preceded by
// whitespace, the usual conservative heuristic, since inline image data
// has no declared length in the common case.
func (t *tokenizer) skipInlineImage() error {
	// Skip the parameter dictionary entries up to "ID".
	for {
		if err := t.skipSpacesAndComments(); err != nil {
			return err
		}
		word, err := t.peekWord()
		if err != nil {
			return err
		}
		if word == "ID" {
			t.parseKeyword()
			break
		}
		if _, _, err := t.parseObject(); err != nil {
			return err
		}
	}
	// A single whitespace byte separates "ID" from the binary data.
	t.r.ReadByte()
	prevSpace := true
	for {
		b, err := t.r.ReadByte()
		if err != nil {
			return io.EOF
		}
		if b == 'E' && prevSpace {
			next, err := t.r.Peek(1)
			if err == nil && next[0] == 'I' {
				t.r.ReadByte()
				return nil
			}
		}
		prevSpace = isWhitespace(b)
	}
}

func (t *tokenizer) peekWord() (string, error) {
	const maxPeek = 32
	b, err := t.r.Peek(maxPeek)
	if err != nil && len(b) == 0 {
		return "", err
	}
	end := 0
	for end < len(b) && !isWhitespace(b[end]) && !isDelimiter(b[end]) {
		end++
	}
	return string(b[:end]), nil
}

func isWhitespace(b byte) bool {
	switch b {
	case 0x00, 0x09, 0x0A, 0x0C, 0x0D, 0x20:
		return true
	}
	return false
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package pdfobj

import (
	"bytes"
	"encoding/hex"
	"strconv"
)

// scanner is a cursor over the whole file buffer. Unlike content.tokenizer
// (a one-shot bufio.Reader stream), pdfobj needs random access: xref
// entries point at arbitrary byte offsets, so objects are read by seeking
// the cursor rather than by consuming a forward-only stream.
type scanner struct {
	buf []byte
	pos int
}

func newScanner(buf []byte) *scanner {
	return &scanner{buf: buf}
}

func (s *scanner) seek(off int64) {
	if off < 0 {
		off = 0
	}
	if int(off) > len(s.buf) {
		off = int64(len(s.buf))
	}
	s.pos = int(off)
}

func (s *scanner) offset() int64 { return int64(s.pos) }

func (s *scanner) eof() bool { return s.pos >= len(s.buf) }

func (s *scanner) peekByte() (byte, bool) {
	if s.eof() {
		return 0, false
	}
	return s.buf[s.pos], true
}

func (s *scanner) peekN(n int) []byte {
	end := s.pos + n
	if end > len(s.buf) {
		end = len(s.buf)
	}
	if s.pos >= end {
		return nil
	}
	return s.buf[s.pos:end]
}

func (s *scanner) readByte() (byte, bool) {
	b, ok := s.peekByte()
	if ok {
		s.pos++
	}
	return b, ok
}

func (s *scanner) skipSpacesAndComments() {
	for {
		b, ok := s.peekByte()
		if !ok {
			return
		}
		if isWhitespace(b) {
			s.pos++
			continue
		}
		if b == '%' {
			for {
				c, ok := s.readByte()
				if !ok || c == '\n' || c == '\r' {
					break
				}
			}
			continue
		}
		return
	}
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

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// readRegularWord reads a bare keyword (obj, endobj, stream, xref, R, true,
// false, null, or an operator-shaped word found in malformed input).
func (s *scanner) readRegularWord() string {
	start := s.pos
	for {
		b, ok := s.peekByte()
		if !ok || isWhitespace(b) || isDelimiter(b) {
			break
		}
		s.pos++
	}
	if s.pos == start {
		// A single delimiter byte that doesn't start any recognised
		// construct (parseObject handles those before calling this).
		b, ok := s.readByte()
		if !ok {
			return ""
		}
		return string(b)
	}
	return string(s.buf[start:s.pos])
}

func (s *scanner) readName() string {
	s.pos++ // consume '/'
	var buf bytes.Buffer
	for {
		b, ok := s.peekByte()
		if !ok || isWhitespace(b) || isDelimiter(b) {
			break
		}
		if b == '#' {
			hx := s.peekN(3)
			if len(hx) == 3 && isHexDigit(hx[1]) && isHexDigit(hx[2]) {
				if code, err := hex.DecodeString(string(hx[1:3])); err == nil {
					buf.Write(code)
					s.pos += 3
					continue
				}
			}
		}
		buf.WriteByte(b)
		s.pos++
	}
	return buf.String()
}

func (s *scanner) readNumber() (float64, bool) {
	start := s.pos
	for {
		b, ok := s.peekByte()
		if !ok {
			break
		}
		if isDigit(b) || b == '.' || b == '-' || b == '+' || b == 'e' || b == 'E' {
			s.pos++
			continue
		}
		break
	}
	n, err := strconv.ParseFloat(string(s.buf[start:s.pos]), 64)
	return n, err == nil
}

func (s *scanner) readLiteralString() string {
	s.pos++ // consume '('
	var buf bytes.Buffer
	depth := 1
	for depth > 0 {
		c, ok := s.readByte()
		if !ok {
			break
		}
		switch c {
		case '\\':
			esc, ok := s.readByte()
			if !ok {
				break
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
			case '\r':
				if b, ok := s.peekByte(); ok && b == '\n' {
					s.pos++
				}
			case '\n':
				// line continuation
			default:
				if esc >= '0' && esc <= '7' {
					octal := []byte{esc}
					for i := 0; i < 2; i++ {
						p, ok := s.peekByte()
						if !ok || p < '0' || p > '7' {
							break
						}
						octal = append(octal, p)
						s.pos++
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
	return buf.String()
}

func (s *scanner) readHexString() string {
	s.pos++ // consume '<'
	var digits []byte
	for {
		c, ok := s.readByte()
		if !ok || c == '>' {
			break
		}
		if isHexDigit(c) {
			digits = append(digits, c)
		}
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	decoded := make([]byte, hex.DecodedLen(len(digits)))
	n, _ := hex.Decode(decoded, digits)
	return string(decoded[:n])
}

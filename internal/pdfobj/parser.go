/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package pdfobj

import (
	"fmt"

	"github.com/bbqsrc/pdf-strings/internal/common"
)

// Parser reads objects directly out of the file buffer at arbitrary
// offsets, resolving indirect references through the xref table and
// caching decoded objects.
type Parser struct {
	s          *scanner
	xref       *xrefTable
	cache      map[int]Object
	objStreams map[int]*objStreamInfo
	crypter    *crypter // nil unless OpenBytes installs one for an encrypted document, for object-stream/stream decryption
}

func newParser(buf []byte) *Parser {
	return &Parser{s: newScanner(buf), cache: map[int]Object{}}
}

// parseObjectAt parses a single object (not an "N G obj" wrapper) starting
// at byte offset off, used for trailer dictionaries and any place the
// caller already knows it isn't an indirect object.
func (p *Parser) parseObjectAt(off int64) (Object, error) {
	p.s.seek(off)
	return p.parseObject()
}

// parseIndirectObjectAt parses "N G obj ... endobj" (or "... stream ...
// endstream endobj") at off and returns the contained object.
func (p *Parser) parseIndirectObjectAt(off int64) (Object, error) {
	p.s.seek(off)
	p.s.skipSpacesAndComments()
	if _, ok := p.s.readNumber(); !ok {
		return Object{}, fmt.Errorf("pdfobj: expected object number at offset %d", off)
	}
	p.s.skipSpacesAndComments()
	if _, ok := p.s.readNumber(); !ok {
		return Object{}, fmt.Errorf("pdfobj: expected generation number at offset %d", off)
	}
	p.s.skipSpacesAndComments()
	if kw := p.s.readRegularWord(); kw != "obj" {
		return Object{}, fmt.Errorf("pdfobj: expected 'obj' keyword at offset %d, got %q", off, kw)
	}
	return p.parseObject()
}

// parseObject parses the object starting at the scanner's current
// position, handling the stream-keyword suffix and the "N G R" reference
// lookahead that a bare parseValue can't resolve on its own.
func (p *Parser) parseObject() (Object, error) {
	p.s.skipSpacesAndComments()
	obj, err := p.parseValue()
	if err != nil {
		return obj, err
	}
	if obj.Kind == KindDict {
		// A dictionary immediately followed by "stream" is a stream object.
		save := p.s.pos
		p.s.skipSpacesAndComments()
		if word := p.peekWord(); word == "stream" {
			p.s.readRegularWord()
			raw, err := p.readStreamData(obj.Dict)
			if err != nil {
				return obj, err
			}
			return Object{Kind: KindStream, Stream: &Stream{Dict: obj.Dict, Raw: raw}}, nil
		}
		p.s.pos = save
	}
	if obj.Kind == KindInt {
		// Could be the start of "N G R".
		save := p.s.pos
		p.s.skipSpacesAndComments()
		if gen, ok := p.s.readNumber(); ok {
			p.s.skipSpacesAndComments()
			if word := p.peekWord(); word == "R" {
				p.s.readRegularWord()
				return Object{Kind: KindRef, Ref: Reference{Num: int(obj.Int), Gen: int(gen)}}, nil
			}
		}
		p.s.pos = save
	}
	return obj, nil
}

func (p *Parser) peekWord() string {
	save := p.s.pos
	w := p.s.readRegularWord()
	p.s.pos = save
	return w
}

// parseValue parses one PDF primitive with no reference/stream lookahead.
func (p *Parser) parseValue() (Object, error) {
	p.s.skipSpacesAndComments()
	b, ok := p.s.peekByte()
	if !ok {
		return Object{}, fmt.Errorf("pdfobj: unexpected end of input")
	}
	switch {
	case b == '/':
		return Object{Kind: KindName, Str: p.s.readName()}, nil
	case b == '(':
		return Object{Kind: KindString, Str: p.s.readLiteralString()}, nil
	case b == '<':
		if peek := p.s.peekN(2); len(peek) == 2 && peek[1] == '<' {
			return p.parseDict()
		}
		return Object{Kind: KindString, Str: p.s.readHexString()}, nil
	case b == '[':
		return p.parseArray()
	case isDigit(b) || b == '-' || b == '+' || b == '.':
		n, ok := p.s.readNumber()
		if !ok {
			return Object{}, fmt.Errorf("pdfobj: malformed number")
		}
		return NumberObject(n), nil
	default:
		word := p.s.readRegularWord()
		switch word {
		case "true":
			return Object{Kind: KindBool, Bool: true}, nil
		case "false":
			return Object{Kind: KindBool, Bool: false}, nil
		case "null":
			return Object{Kind: KindNull}, nil
		}
		return Object{}, fmt.Errorf("pdfobj: unexpected keyword %q", word)
	}
}

func (p *Parser) parseArray() (Object, error) {
	p.s.pos++ // consume '['
	var arr []Object
	for {
		p.s.skipSpacesAndComments()
		b, ok := p.s.peekByte()
		if !ok {
			return Object{}, fmt.Errorf("pdfobj: unterminated array")
		}
		if b == ']' {
			p.s.pos++
			break
		}
		v, err := p.parseObject()
		if err != nil {
			return Object{}, err
		}
		arr = append(arr, v)
	}
	return Object{Kind: KindArray, Arr: arr}, nil
}

func (p *Parser) parseDict() (Object, error) {
	p.s.pos += 2 // consume "<<"
	d := NewDictionary()
	for {
		p.s.skipSpacesAndComments()
		peek := p.s.peekN(2)
		if len(peek) == 2 && peek[0] == '>' && peek[1] == '>' {
			p.s.pos += 2
			break
		}
		key, err := p.parseValue()
		if err != nil {
			return Object{}, err
		}
		if key.Kind != KindName {
			common.Log.Debug("pdfobj: dictionary key is not a name, skipping entry")
			return Object{Kind: KindDict, Dict: d}, nil
		}
		val, err := p.parseObject()
		if err != nil {
			return Object{}, err
		}
		d.Set(key.Str, val)
	}
	return Object{Kind: KindDict, Dict: d}, nil
}

// readStreamData reads the raw bytes between "stream" and "endstream",
// using /Length when it's a direct integer (resolving it via xref when it's
// an indirect reference), and falling back to scanning for "endstream"
// when /Length is missing or wrong, a common in-the-wild producer bug.
func (p *Parser) readStreamData(dict *Dictionary) ([]byte, error) {
	// A single CRLF or LF (never bare CR) follows the "stream" keyword.
	if b, ok := p.s.peekByte(); ok && b == '\r' {
		p.s.pos++
	}
	if b, ok := p.s.peekByte(); ok && b == '\n' {
		p.s.pos++
	}
	start := p.s.pos

	length := -1
	if lv, ok := dict.Get("Length"); ok {
		switch lv.Kind {
		case KindInt:
			length = int(lv.Int)
		case KindRef:
			if p.xref != nil {
				if resolved, err := p.Resolve(lv); err == nil {
					if n, ok := resolved.Number(); ok {
						length = int(n)
					}
				}
			}
		}
	}

	if length >= 0 && start+length <= len(p.s.buf) {
		end := start + length
		p.s.pos = end
		p.s.skipSpacesAndComments()
		if word := p.peekWord(); word == "endstream" {
			p.s.readRegularWord()
			return p.s.buf[start:end], nil
		}
	}

	// /Length was wrong or absent: scan forward for "endstream".
	idx := indexOf(p.s.buf, start, "endstream")
	if idx < 0 {
		return nil, fmt.Errorf("pdfobj: stream missing endstream marker")
	}
	end := idx
	for end > start && isWhitespace(p.s.buf[end-1]) {
		end--
	}
	p.s.pos = idx + len("endstream")
	return p.s.buf[start:end], nil
}

func indexOf(buf []byte, from int, needle string) int {
	for i := from; i+len(needle) <= len(buf); i++ {
		if string(buf[i:i+len(needle)]) == needle {
			return i
		}
	}
	return -1
}

// Resolve follows a KindRef to its underlying object, recursively
// (an indirect object may itself resolve through another reference, though
// real-world files essentially never nest these), and caches the result.
func (p *Parser) Resolve(v Object) (Object, error) {
	for v.Kind == KindRef {
		if cached, ok := p.cache[v.Ref.Num]; ok {
			return cached, nil
		}
		if p.xref == nil {
			return Object{}, fmt.Errorf("pdfobj: no cross-reference table to resolve %d %d R", v.Ref.Num, v.Ref.Gen)
		}
		entry, ok := p.xref.entries[v.Ref.Num]
		if !ok {
			return Object{Kind: KindNull}, nil
		}
		var resolved Object
		var err error
		if entry.InStream {
			resolved, err = p.objectFromObjectStream(entry.StreamNum, entry.Index, v.Ref.Num)
		} else {
			resolved, err = p.parseIndirectObjectAt(entry.Offset)
		}
		if err != nil {
			return Object{}, err
		}
		if resolved.Kind == KindStream && p.crypter != nil {
			resolved.Stream.Raw = p.crypter.decryptStream(v.Ref.Num, v.Ref.Gen, resolved.Stream)
		}
		if resolved.Kind == KindString && p.crypter != nil {
			resolved.Str = string(p.crypter.decryptBytes(v.Ref.Num, v.Ref.Gen, []byte(resolved.Str)))
		}
		p.cache[v.Ref.Num] = resolved
		v = resolved
		if v.Kind != KindRef {
			return v, nil
		}
	}
	return v, nil
}

// ResolveDict resolves v and type-asserts it to a dictionary (direct dict
// or stream dict).
func (p *Parser) ResolveDict(v Object) (*Dictionary, bool) {
	rv, err := p.Resolve(v)
	if err != nil {
		return nil, false
	}
	switch rv.Kind {
	case KindDict:
		return rv.Dict, true
	case KindStream:
		return rv.Stream.Dict, true
	}
	return nil, false
}

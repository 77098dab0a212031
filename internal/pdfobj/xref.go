/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package pdfobj

import (
	"fmt"

	"github.com/bbqsrc/pdf-strings/internal/common"
)

// xrefEntry is one cross-reference table entry: either a byte offset of an
// "N G obj" in the file, or a (stream object number, index) pair into a
// compressed object stream.
type xrefEntry struct {
	InStream  bool
	Offset    int64
	StreamNum int
	Index     int
}

type xrefTable struct {
	entries map[int]xrefEntry
}

// objStreamInfo caches a parsed object stream's offset table so repeated
// lookups of siblings in the same stream don't re-decode it.
type objStreamInfo struct {
	decoded []byte
	offsets map[int]int64 // object number -> offset within decoded
}

// objectFromObjectStream resolves object objNum out of compressed object
// stream streamNum (7.5.7), caching the decoded stream.
func (p *Parser) objectFromObjectStream(streamNum, index, objNum int) (Object, error) {
	if p.objStreams == nil {
		p.objStreams = map[int]*objStreamInfo{}
	}
	info, ok := p.objStreams[streamNum]
	if !ok {
		soObj, err := p.Resolve(Object{Kind: KindRef, Ref: Reference{Num: streamNum}})
		if err != nil || soObj.Kind != KindStream {
			return Object{}, fmt.Errorf("pdfobj: object stream %d not found", streamNum)
		}
		decoded, err := p.DecodeStream(soObj.Stream)
		if err != nil {
			return Object{}, err
		}
		n, _ := intField(soObj.Stream.Dict, "N")
		first, _ := intField(soObj.Stream.Dict, "First")

		sub := newParser(decoded)
		offsets := map[int]int64{}
		for i := 0; i < n; i++ {
			sub.s.skipSpacesAndComments()
			num, ok := sub.s.readNumber()
			if !ok {
				break
			}
			sub.s.skipSpacesAndComments()
			off, ok := sub.s.readNumber()
			if !ok {
				break
			}
			offsets[int(num)] = int64(first) + int64(off)
		}
		info = &objStreamInfo{decoded: decoded, offsets: offsets}
		p.objStreams[streamNum] = info
	}
	off, ok := info.offsets[objNum]
	if !ok {
		return Object{}, fmt.Errorf("pdfobj: object %d not present in object stream %d", objNum, streamNum)
	}
	sub := newParser(info.decoded)
	sub.xref = p.xref
	sub.objStreams = p.objStreams
	return sub.parseObjectAt(off)
}

func intField(d *Dictionary, key string) (int, bool) {
	v, ok := d.Get(key)
	if !ok {
		return 0, false
	}
	n, ok := v.Number()
	return int(n), ok
}

// loadXref parses the cross-reference chain starting at the "startxref"
// offset found near the end of the file, following /Prev (and, for hybrid
// files, /XRefStm) links back to earlier sections, merging entries so the
// newest section for a given object number wins.
func (p *Parser) loadXref(buf []byte) (*Dictionary, error) {
	startOff, err := findStartXref(buf)
	if err != nil {
		return nil, err
	}

	table := &xrefTable{entries: map[int]xrefEntry{}}
	var trailer *Dictionary
	visited := map[int64]bool{}
	off := startOff

	for off >= 0 {
		if visited[off] {
			break
		}
		visited[off] = true

		p.s.seek(off)
		p.s.skipSpacesAndComments()
		word := p.peekWord()

		var sectionTrailer *Dictionary
		var prev int64 = -1

		if word == "xref" {
			sectionTrailer, prev, err = p.parseClassicXrefSection(table)
		} else {
			sectionTrailer, prev, err = p.parseXrefStreamSection(table, off)
		}
		if err != nil {
			return nil, err
		}
		if trailer == nil {
			trailer = sectionTrailer
		}
		if sectionTrailer != nil {
			if hybrid, ok := sectionTrailer.Get("XRefStm"); ok {
				if n, ok := hybrid.Number(); ok {
					if _, _, herr := p.parseXrefStreamSection(table, int64(n)); herr != nil {
						common.Log.Debug("pdfobj: hybrid XRefStm at %d failed: %v", int64(n), herr)
					}
				}
			}
		}
		off = prev
	}

	if trailer == nil {
		return nil, fmt.Errorf("pdfobj: no trailer found")
	}
	p.xref = table
	return trailer, nil
}

func findStartXref(buf []byte) (int64, error) {
	tailLen := 2048
	if tailLen > len(buf) {
		tailLen = len(buf)
	}
	tail := buf[len(buf)-tailLen:]
	idx := lastIndexOf(tail, "startxref")
	if idx < 0 {
		return 0, fmt.Errorf("pdfobj: startxref not found")
	}
	s := newScanner(tail[idx+len("startxref"):])
	s.skipSpacesAndComments()
	n, ok := s.readNumber()
	if !ok {
		return 0, fmt.Errorf("pdfobj: malformed startxref offset")
	}
	return int64(n), nil
}

func lastIndexOf(buf []byte, needle string) int {
	for i := len(buf) - len(needle); i >= 0; i-- {
		if string(buf[i:i+len(needle)]) == needle {
			return i
		}
	}
	return -1
}

// parseClassicXrefSection parses a "xref\n<subsections>\ntrailer<<...>>"
// block, returning its trailer dictionary and /Prev offset (-1 if absent).
func (p *Parser) parseClassicXrefSection(table *xrefTable) (*Dictionary, int64, error) {
	p.s.readRegularWord() // "xref"
	for {
		p.s.skipSpacesAndComments()
		if p.peekWord() == "trailer" {
			p.s.readRegularWord()
			break
		}
		startNum, ok := p.s.readNumber()
		if !ok {
			return nil, -1, fmt.Errorf("pdfobj: malformed xref subsection header")
		}
		p.s.skipSpacesAndComments()
		count, ok := p.s.readNumber()
		if !ok {
			return nil, -1, fmt.Errorf("pdfobj: malformed xref subsection count")
		}
		for i := 0; i < int(count); i++ {
			p.s.skipSpacesAndComments()
			offset, _ := p.s.readNumber()
			p.s.skipSpacesAndComments()
			p.s.readNumber() // generation, unused: this module doesn't support incremental-update generation matching
			p.s.skipSpacesAndComments()
			kind := p.s.readRegularWord()
			objNum := int(startNum) + i
			if kind == "n" {
				if _, exists := table.entries[objNum]; !exists {
					table.entries[objNum] = xrefEntry{Offset: int64(offset)}
				}
			}
		}
	}
	p.s.skipSpacesAndComments()
	trailerObj, err := p.parseValue()
	if err != nil || trailerObj.Kind != KindDict {
		return nil, -1, fmt.Errorf("pdfobj: malformed trailer dictionary")
	}
	prev := int64(-1)
	if v, ok := trailerObj.Dict.Get("Prev"); ok {
		if n, ok := v.Number(); ok {
			prev = int64(n)
		}
	}
	return trailerObj.Dict, prev, nil
}

// parseXrefStreamSection parses a cross-reference stream object (7.5.8),
// whose own dictionary doubles as the section's trailer.
func (p *Parser) parseXrefStreamSection(table *xrefTable, off int64) (*Dictionary, int64, error) {
	obj, err := p.parseIndirectObjectAt(off)
	if err != nil || obj.Kind != KindStream {
		return nil, -1, fmt.Errorf("pdfobj: expected cross-reference stream at offset %d", off)
	}
	dict := obj.Stream.Dict
	decoded, err := p.DecodeStream(obj.Stream)
	if err != nil {
		return nil, -1, err
	}

	wArr, ok := dict.Get("W")
	if !ok || wArr.Kind != KindArray || len(wArr.Arr) != 3 {
		return nil, -1, fmt.Errorf("pdfobj: cross-reference stream missing /W")
	}
	w := [3]int{}
	for i := 0; i < 3; i++ {
		n, _ := wArr.Arr[i].Number()
		w[i] = int(n)
	}

	var index []int
	if idxObj, ok := dict.Get("Index"); ok && idxObj.Kind == KindArray {
		for _, v := range idxObj.Arr {
			n, _ := v.Number()
			index = append(index, int(n))
		}
	} else {
		size, _ := intField(dict, "Size")
		index = []int{0, size}
	}

	rowLen := w[0] + w[1] + w[2]
	pos := 0
	for i := 0; i+1 < len(index); i += 2 {
		startNum := index[i]
		count := index[i+1]
		for j := 0; j < count; j++ {
			if pos+rowLen > len(decoded) {
				break
			}
			row := decoded[pos : pos+rowLen]
			pos += rowLen
			objNum := startNum + j
			fType := 1
			if w[0] > 0 {
				fType = int(beUint(row[:w[0]]))
			}
			f2 := beUint(row[w[0] : w[0]+w[1]])
			f3 := beUint(row[w[0]+w[1] : rowLen])
			if _, exists := table.entries[objNum]; exists {
				continue
			}
			switch fType {
			case 0:
				// free entry
			case 1:
				table.entries[objNum] = xrefEntry{Offset: int64(f2)}
			case 2:
				table.entries[objNum] = xrefEntry{InStream: true, StreamNum: int(f2), Index: int(f3)}
			}
		}
	}

	prev := int64(-1)
	if v, ok := dict.Get("Prev"); ok {
		if n, ok := v.Number(); ok {
			prev = int64(n)
		}
	}
	return dict, prev, nil
}

func beUint(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

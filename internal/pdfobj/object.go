/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package pdfobj is a trimmed PDF object-model reader: just enough of the
// classic/cross-reference-stream xref machinery, object-stream decoding,
// stream filters and the standard security handler to back the
// content.PageSource / content.ResourceDict / font.Dict contracts that the
// core packages (content, font, layout) consume. It has no writer and no
// annotation or form support; incrementally updated files are read by
// following the whole /Prev xref chain.
package pdfobj

import "fmt"

// ObjectKind tags the variant held by an Object: a single tagged union
// over the PDF object kinds instead of an interface hierarchy, since this
// package never needs a polymorphic write side
// (no writer is in scope).
type ObjectKind int

const (
	KindNull ObjectKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindName
	KindArray
	KindDict
	KindRef
	KindStream
)

// Reference is an indirect object reference (obj gen R).
type Reference struct {
	Num, Gen int
}

// Object is one parsed PDF primitive. Indirect objects are resolved by the
// document before a caller ever sees a Value derived from them, except
// where KindRef is returned deliberately (array/dict entries are resolved
// lazily, on lookup, to avoid pulling in a whole document graph eagerly).
type Object struct {
	Kind   ObjectKind
	Bool   bool
	Int    int64
	Float  float64
	Str    string // literal/hex string content, or name text (without leading '/')
	Arr    []Object
	Dict   *Dictionary
	Ref    Reference
	Stream *Stream
}

// Dictionary preserves insertion order (keys slice alongside the map).
// Order rarely matters for reading, but Differences-style arrays and
// resource dictionaries are easier to debug when dumped in source order.
type Dictionary struct {
	keys   []string
	values map[string]Object
}

func NewDictionary() *Dictionary {
	return &Dictionary{values: map[string]Object{}}
}

func (d *Dictionary) Set(key string, v Object) {
	if _, exists := d.values[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

func (d *Dictionary) Get(key string) (Object, bool) {
	if d == nil {
		return Object{}, false
	}
	v, ok := d.values[key]
	return v, ok
}

func (d *Dictionary) Keys() []string {
	if d == nil {
		return nil
	}
	return d.keys
}

// Stream is a stream object: its dictionary plus the raw (still encoded)
// bytes as they appear in the file. Filters are applied on demand by
// Parser.DecodeStream.
type Stream struct {
	Dict *Dictionary
	Raw  []byte
}

func NumberObject(n float64) Object {
	if n == float64(int64(n)) {
		return Object{Kind: KindInt, Int: int64(n), Float: n}
	}
	return Object{Kind: KindFloat, Float: n}
}

// Number reports the numeric value of an Int or Float object.
func (o Object) Number() (float64, bool) {
	switch o.Kind {
	case KindInt:
		return float64(o.Int), true
	case KindFloat:
		return o.Float, true
	}
	return 0, false
}

func (o Object) String() string {
	switch o.Kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%v", o.Bool)
	case KindInt:
		return fmt.Sprintf("%d", o.Int)
	case KindFloat:
		return fmt.Sprintf("%g", o.Float)
	case KindString:
		return fmt.Sprintf("(%s)", o.Str)
	case KindName:
		return "/" + o.Str
	case KindArray:
		return fmt.Sprintf("%v", o.Arr)
	case KindDict:
		return fmt.Sprintf("<<%v>>", o.Dict.keys)
	case KindRef:
		return fmt.Sprintf("%d %d R", o.Ref.Num, o.Ref.Gen)
	case KindStream:
		return fmt.Sprintf("stream<<%v>>", o.Stream.Dict.keys)
	}
	return "?"
}

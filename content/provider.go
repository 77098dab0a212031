/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package content implements the content-stream interpreter: it tokenizes
// and executes PDF content-stream operators against a GraphicsState/
// TextState pair, emitting positioned glyphs to a Sink.
package content

import "github.com/bbqsrc/pdf-strings/font"

// Rect is an axis-aligned rectangle in default user space, used for a
// page's MediaBox and a Form XObject's BBox.
type Rect struct {
	LLX, LLY, URX, URY float64
}

// FontDict is the dictionary contract the font package consumes; content
// never inspects a font dictionary itself, only passes it through to
// font.NewFromDict.
type FontDict = font.Dict

// PageSource is the provider contract a concrete PDF reader (internal/pdfobj)
// implements: enough to drive the interpreter over every page without the
// interpreter ever depending on the object model directly.
type PageSource interface {
	PageCount() int
	PageContent(pageIndex int) (contentBytes []byte, resources ResourceDict, mediaBox Rect, rotation int, err error)
}

// ResourceDict resolves the named entries of a page (or Form XObject's)
// /Resources dictionary that the interpreter needs: fonts and nested forms.
type ResourceDict interface {
	Font(name string) (FontDict, bool)
	XObjectForm(name string) (contentBytes []byte, resources ResourceDict, matrix [6]float64, bbox Rect, ok bool)
}

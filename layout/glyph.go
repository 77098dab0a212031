/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package layout implements the glyph emitter and layout reconstructor: it
// buffers the positioned glyphs a content.Interpreter emits for one page,
// groups them into lines of spans, computes bounding boxes, and rasterises
// the document onto a character grid for to_string_pretty.
package layout

import (
	"math"

	"github.com/bbqsrc/pdf-strings/content"
	"github.com/bbqsrc/pdf-strings/internal/transform"
)

// Glyph is one positioned, decoded character: its text, its device-space
// origin (native PDF page space — y grows upward from the page's bottom
// edge, per the interpreter's Trm-derived coordinates), its advance
// vector, and its font size in device space: everything the layout stage
// needs once a page's content stream has been fully interpreted.
type Glyph struct {
	Text     string
	X, Y     float64 // origin, native page space (y-up)
	AdvanceX float64
	AdvanceY float64
	FontSize float64
	Page     int
	// Angle is the glyph's device-space text-rendering angle in degrees,
	// [0, 360). BuildLines snaps this to the nearest cardinal direction to
	// decide which axis a line advances along, so rotated and
	// vertical-writing-mode text groups into lines correctly instead of
	// assuming horizontal advance.
	Angle float64
}

// Buffer implements content.Sink, accumulating one page's glyphs in
// content-stream order.
type Buffer struct {
	page      int
	glyphs    []Glyph
	nonFinite bool
}

// NewBuffer starts a glyph buffer for page (0-based).
func NewBuffer(page int) *Buffer {
	return &Buffer{page: page}
}

// EmitGlyph implements content.Sink. NaN/Inf are clamped to
// zero. Glyphs with empty decoded text are dropped, and so are glyphs
// with zero advance and zero size whatever their text (they carry no
// visible content and would otherwise pollute line grouping with
// spurious zero-area spans).
func (b *Buffer) EmitGlyph(g content.GlyphEvent) {
	if g.Text == "" {
		return
	}
	x := transform.SanitizeFloat(g.X)
	y := transform.SanitizeFloat(g.Y)
	advX := transform.SanitizeFloat(g.AdvanceX)
	advY := transform.SanitizeFloat(g.AdvanceY)
	size := transform.SanitizeFloat(g.FontSize)
	if x != g.X || y != g.Y || advX != g.AdvanceX || advY != g.AdvanceY || size != g.FontSize {
		b.nonFinite = true
	}

	if advX == 0 && advY == 0 && size == 0 {
		return
	}

	// Vertical writing mode reads top-to-bottom regardless of the text
	// matrix's own rotation, so fold it into the effective angle here:
	// layout only ever needs the combined reading direction.
	angle := transform.SanitizeFloat(g.Angle)
	if g.WritingMode == 1 {
		angle = math.Mod(angle+270, 360)
	}

	b.glyphs = append(b.glyphs, Glyph{
		Text:     g.Text,
		X:        x,
		Y:        y,
		AdvanceX: advX,
		AdvanceY: advY,
		FontSize: size,
		Page:     b.page,
		Angle:    angle,
	})
}

// Glyphs returns the page's accumulated glyphs in content-stream order.
func (b *Buffer) Glyphs() []Glyph { return b.glyphs }

// SawNonFinite reports whether any emitted glyph carried a NaN or infinite
// coordinate that was clamped to zero.
func (b *Buffer) SawNonFinite() bool { return b.nonFinite }

// bbox is an axis-aligned rectangle in native PDF page space (y-up),
// matching the public (top, right, bottom, left) convention directly:
// top == MaxY, bottom == MinY.
type bbox struct {
	MinX, MinY, MaxX, MaxY float64
	set                    bool
}

func unionBBox(a, b bbox) bbox {
	if !a.set {
		return b
	}
	if !b.set {
		return a
	}
	return bbox{
		MinX: math.Min(a.MinX, b.MinX),
		MinY: math.Min(a.MinY, b.MinY),
		MaxX: math.Max(a.MaxX, b.MaxX),
		MaxY: math.Max(a.MaxY, b.MaxY),
		set:  true,
	}
}

// glyphBBox computes one glyph's bounding box using
// font-size-derived ascent/descent fallbacks (size, 0.2*size), since
// content.GlyphEvent doesn't carry font-metric ascent/descent (see
// DESIGN.md): top = origin.y + ascent, bottom = origin.y - descent, so the
// top > bottom well-formedness invariant holds directly in native
// y-up page space.
func glyphBBox(g Glyph) bbox {
	ascent := g.FontSize
	descent := 0.2 * g.FontSize
	x0, x1 := g.X, g.X+g.AdvanceX
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	// Vertical advances extend the box along y; for horizontal text
	// AdvanceY is zero and this reduces to origin.y +/- ascent/descent.
	y0, y1 := g.Y, g.Y+g.AdvanceY
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	return bbox{
		MinX: x0,
		MaxX: x1,
		MinY: y0 - descent,
		MaxY: y1 + ascent,
		set:  true,
	}
}

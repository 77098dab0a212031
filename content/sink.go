/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package content

// Sink receives one positioned glyph at a time from the interpreter, in
// content-stream order. layout.Buffer implements this to feed the
// layout reconstructor.
type Sink interface {
	EmitGlyph(g GlyphEvent)
}

// GlyphEvent is everything the glyph emitter needs to place one decoded
// character: its text, its device-space origin (the text-rendering matrix
// applied to the glyph origin), the device-space font size (the operator
// norm of Trm's linear part), and its device-space advance
// width, used to compute the glyph's bounding box without re-deriving it
// from font metrics downstream.
type GlyphEvent struct {
	Text        string
	X, Y        float64
	FontSize    float64
	AdvanceX    float64
	AdvanceY    float64
	Mode        RenderMode
	WritingMode int // 0 horizontal, 1 vertical — mirrors font.WritingMode without importing font here
	// Angle is the text-rendering matrix's rotation in device space,
	// degrees in [0, 360) (Trm.Angle()). Rotated and vertical-writing-mode
	// lines advance along an axis other than device-space X, so the layout
	// stage needs this to bucket/measure gaps along the line's own axis
	// instead of assuming horizontal text.
	Angle float64
}

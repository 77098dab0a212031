/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package content

import (
	"github.com/bbqsrc/pdf-strings/font"
	"github.com/bbqsrc/pdf-strings/internal/transform"
)

// RenderMode is the text rendering mode set by Tr (PDF32000 9.3.6), used to
// suppress invisible text (mode 3) from extraction output.
type RenderMode int

const (
	RenderModeFill RenderMode = iota
	RenderModeStroke
	RenderModeFillStroke
	RenderModeInvisible
	RenderModeFillClip
	RenderModeStrokeClip
	RenderModeFillStrokeClip
	RenderModeClip
)

// Invisible reports whether mode renders no visible marks, per PDF32000
// table 106 (only mode 3, "Neither fill nor stroke text (invisible)").
func (m RenderMode) Invisible() bool { return m == RenderModeInvisible }

// GraphicsState holds the q/Q-stacked graphics parameters the interpreter
// tracks, trimmed to the subset text extraction needs. FillColor is kept
// current (g/rg/k) but not exposed on the public output surface; it rides
// along so a future span-color extension doesn't need interpreter changes.
type GraphicsState struct {
	CTM       transform.Matrix
	FillColor [3]float64 // normalised RGB, black by default
}

// TextState holds the text-object-scoped parameters set by Tc/Tw/Tz/TL/Tf/
// Tr/Ts and PDF32000 9.3.
type TextState struct {
	Tc    float64 // character spacing
	Tw    float64 // word spacing
	Th    float64 // horizontal scaling, percent (100 = unscaled)
	TL    float64 // leading
	Tfs   float64 // font size
	Tmode RenderMode
	Trise float64
	Font  *font.Font
}

func newTextState() TextState {
	return TextState{Th: 100, Tmode: RenderModeFill}
}

// savedState is one q/Q snapshot of the graphics and text state.
type savedState struct {
	gs   GraphicsState
	text TextState
}

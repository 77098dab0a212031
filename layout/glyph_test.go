/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbqsrc/pdf-strings/content"
)

func TestBufferEmitGlyphDropsEmptyText(t *testing.T) {
	b := NewBuffer(0)
	b.EmitGlyph(content.GlyphEvent{Text: "", X: 1, Y: 1, FontSize: 10, AdvanceX: 5})
	assert.Len(t, b.Glyphs(), 0)
}

func TestBufferEmitGlyphDropsZeroAdvanceZeroSize(t *testing.T) {
	b := NewBuffer(0)
	b.EmitGlyph(content.GlyphEvent{Text: "x", X: 1, Y: 1})
	assert.Len(t, b.Glyphs(), 0)
}

func TestBufferEmitGlyphSanitizesNaNAndInf(t *testing.T) {
	b := NewBuffer(2)
	b.EmitGlyph(content.GlyphEvent{
		Text:     "x",
		X:        math.NaN(),
		Y:        math.Inf(1),
		FontSize: 10,
		AdvanceX: 5,
	})
	require.Len(t, b.Glyphs(), 1)
	g := b.Glyphs()[0]
	assert.Equal(t, 0.0, g.X)
	assert.Equal(t, 0.0, g.Y)
	assert.Equal(t, 2, g.Page)
}

func TestBufferEmitGlyphKeepsContentStreamOrder(t *testing.T) {
	b := NewBuffer(0)
	b.EmitGlyph(content.GlyphEvent{Text: "a", AdvanceX: 1, FontSize: 1})
	b.EmitGlyph(content.GlyphEvent{Text: "b", AdvanceX: 1, FontSize: 1})
	glyphs := b.Glyphs()
	require.Len(t, glyphs, 2)
	assert.Equal(t, "a", glyphs[0].Text)
	assert.Equal(t, "b", glyphs[1].Text)
}

func TestUnionBBoxWithUnsetOperand(t *testing.T) {
	a := bbox{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10, set: true}
	var b bbox
	u := unionBBox(a, b)
	assert.Equal(t, a, u)
	u2 := unionBBox(b, a)
	assert.Equal(t, a, u2)
}

/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package font

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// truetypeMetrics recovers glyph advance widths from an embedded TrueType
// program's hmtx table, used only when a simple TrueType font's /Widths
// array doesn't cover a code and /MissingWidth is absent or zero.
type truetypeMetrics struct {
	f *sfnt.Font
}

func parseTrueTypeMetrics(data []byte) (*truetypeMetrics, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, err
	}
	return &truetypeMetrics{f: f}, nil
}

// Advance returns code's advance width in PDF's 1000-unit glyph space,
// assuming code indexes the font's cmap as a Latin-1 codepoint (true for
// the common case this fallback covers: simple TrueType fonts with an
// implicit WinAnsi-ish encoding and no explicit width). Requesting the
// advance at ppem 1000 makes sfnt scale font units straight into
// thousandths of an em.
func (m *truetypeMetrics) Advance(code byte) (float64, bool) {
	var buf sfnt.Buffer
	gid, err := m.f.GlyphIndex(&buf, rune(code))
	if err != nil || gid == 0 {
		return 0, false
	}
	adv, err := m.f.GlyphAdvance(&buf, gid, fixed.I(1000), font.HintingNone)
	if err != nil {
		return 0, false
	}
	return float64(adv) / 64.0, true
}

/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package layout

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// BBox is the public shape a span's bounding box is exposed in: PDF-point
// space, native y-up, top >= bottom and right >= left after normalisation
// for a negative-determinant CTM.
type BBox struct {
	Top, Right, Bottom, Left float64
}

func (b bbox) public() BBox {
	return BBox{Top: b.MaxY, Right: b.MaxX, Bottom: b.MinY, Left: b.MinX}
}

// Span is a maximal run of glyphs sharing a baseline, font size and close
// horizontal spacing.
type Span struct {
	Text     string
	BBox     BBox
	FontSize float64
	Page     int
}

// Line is an ordered, left-to-right sequence of spans sharing a baseline
// bucket.
type Line struct {
	Spans []Span
	Page  int
	y     float64 // representative baseline y, for cross-page/line ordering
}

// spaceThresholdFactor and sizeChangeFactor are the span-splitting
// thresholds, as fractions of the current font size.
const (
	spaceThresholdFactor = 0.3
	sizeChangeFactor     = 0.05
	baselineQuantum      = 1.0 // q = 1pt
)

// orientation is a glyph's reading direction snapped to the nearest
// cardinal: 0 rightward, 1 upward (90 degrees), 2 leftward, 3 downward.
type orientation int

func orient(g Glyph) orientation {
	return orientation(int(math.Round(g.Angle/90))%4) & 3
}

// along returns g's coordinate in the line's reading direction, increasing
// toward later text.
func (o orientation) along(g Glyph) float64 {
	switch o {
	case 1:
		return g.Y
	case 2:
		return -g.X
	case 3:
		return -g.Y
	default:
		return g.X
	}
}

// advance returns g's advance along the reading direction.
func (o orientation) advance(g Glyph) float64 {
	switch o {
	case 1:
		return g.AdvanceY
	case 2:
		return -g.AdvanceX
	case 3:
		return -g.AdvanceY
	default:
		return g.AdvanceX
	}
}

// cross returns g's coordinate across the reading direction: the value that
// stays (nearly) constant along one baseline.
func (o orientation) cross(g Glyph) float64 {
	if o == 1 || o == 3 {
		return g.X
	}
	return g.Y
}

// BuildLines groups one page's glyph stream into lines of spans:
// quantised-baseline bucketing, then gap/size-change span splitting.
// Rotated and vertical-writing glyphs are grouped along their own reading
// axis, so a 90-degree line comes out as one tall line instead of a stack
// of single-glyph ones. Glyphs must already be in content-stream order (as
// Buffer.Glyphs provides); the function does its own sort for grouping
// purposes.
func BuildLines(glyphs []Glyph) []Line {
	if len(glyphs) == 0 {
		return nil
	}

	byOrient := map[orientation][]Glyph{}
	for _, g := range glyphs {
		o := orient(g)
		byOrient[o] = append(byOrient[o], g)
	}

	var lines []Line
	for o := orientation(0); o < 4; o++ {
		group, ok := byOrient[o]
		if !ok {
			continue
		}
		lines = append(lines, buildOrientedLines(group, o)...)
	}

	// Top-to-bottom across all orientations on the page.
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].y > lines[j].y })
	return lines
}

func buildOrientedLines(glyphs []Glyph, o orientation) []Line {
	type bucket struct {
		quant  float64
		size   float64 // representative (mean) font size, for the merge tolerance test
		y      float64 // representative (mean) cross coordinate, for the merge tolerance test
		glyphs []Glyph
	}

	buckets := map[float64]*bucket{}
	var order []float64
	for _, g := range glyphs {
		q := math.Round(o.cross(g)/baselineQuantum) * baselineQuantum
		bk, ok := buckets[q]
		if !ok {
			bk = &bucket{quant: q}
			buckets[q] = bk
			order = append(order, q)
		}
		bk.glyphs = append(bk.glyphs, g)
	}
	for _, q := range order {
		bk := buckets[q]
		var crossSum, sizeSum float64
		for _, g := range bk.glyphs {
			crossSum += o.cross(g)
			sizeSum += g.FontSize
		}
		n := float64(len(bk.glyphs))
		bk.y = crossSum / n
		bk.size = sizeSum / n
	}

	// Descending cross coordinate: for horizontal text, top of page first.
	sort.Slice(order, func(i, j int) bool { return order[i] > order[j] })

	var lineGroups [][]Glyph
	cur := buckets[order[0]]
	curGlyphs := append([]Glyph(nil), cur.glyphs...)
	curY, curSize := cur.y, cur.size

	for i := 1; i < len(order); i++ {
		bk := buckets[order[i]]
		tol := 0.5 * math.Min(curSize, bk.size)
		if curSize == 0 || bk.size == 0 {
			tol = 0.5 * math.Max(curSize, bk.size)
		}
		if math.Abs(curY-bk.y) <= tol {
			curGlyphs = append(curGlyphs, bk.glyphs...)
			// Recompute the running representative so a long chain of
			// gradually drifting buckets doesn't anchor to the first one.
			n := float64(len(curGlyphs))
			var crossSum, sizeSum float64
			for _, g := range curGlyphs {
				crossSum += o.cross(g)
				sizeSum += g.FontSize
			}
			curY, curSize = crossSum/n, sizeSum/n
			continue
		}
		lineGroups = append(lineGroups, curGlyphs)
		curGlyphs = append([]Glyph(nil), bk.glyphs...)
		curY, curSize = bk.y, bk.size
	}
	lineGroups = append(lineGroups, curGlyphs)

	lines := make([]Line, 0, len(lineGroups))
	for _, group := range lineGroups {
		sort.SliceStable(group, func(i, j int) bool { return o.along(group[i]) < o.along(group[j]) })
		spans := buildSpans(group, o)
		if len(spans) == 0 {
			continue
		}
		var ySum float64
		for _, g := range group {
			ySum += g.Y
		}
		lines = append(lines, Line{Spans: spans, Page: group[0].Page, y: ySum / float64(len(group))})
	}
	return lines
}

// buildSpans splits one line's reading-order-sorted glyphs into spans.
func buildSpans(glyphs []Glyph, o orientation) []Span {
	var spans []Span
	start := 0
	flush := func(end int) {
		sp := spanFromGlyphs(glyphs[start:end])
		if sp.Text != "" {
			spans = append(spans, sp)
		}
	}
	for i := 1; i < len(glyphs); i++ {
		prev, next := glyphs[i-1], glyphs[i]
		gap := o.along(next) - (o.along(prev) + o.advance(prev))
		threshold := spaceThresholdFactor * prev.FontSize
		gapSplit := gap > threshold
		sizeSplit := sizeChanged(prev.FontSize, next.FontSize)
		if gapSplit || sizeSplit {
			flush(i)
			start = i
		}
	}
	flush(len(glyphs))
	return spans
}

func sizeChanged(a, b float64) bool {
	if a == 0 {
		return b != 0
	}
	return math.Abs(b-a)/a > sizeChangeFactor
}

func spanFromGlyphs(glyphs []Glyph) Span {
	if len(glyphs) == 0 {
		return Span{}
	}
	var sb strings.Builder
	var box bbox
	var sizeSum float64
	for _, g := range glyphs {
		sb.WriteString(g.Text)
		box = unionBBox(box, glyphBBox(g))
		sizeSum += g.FontSize
	}
	text := strings.TrimFunc(sb.String(), unicode.IsSpace)
	if text == "" {
		return Span{}
	}
	return Span{
		Text:     text,
		BBox:     box.public(),
		FontSize: sizeSum / float64(len(glyphs)),
		Page:     glyphs[0].Page,
	}
}

/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package layout

import (
	"math"
	"sort"
	"strings"
)

// PageBounds anchors one page's pretty-grid to its media box: columns are
// measured from MinX, rows down from MaxY.
type PageBounds struct {
	MinX, MaxY float64
}

// RenderPretty rasterises a document's pages onto a character grid
// (to_string_pretty). pages holds each page's raw glyph stream in
// content-stream order (Buffer.Glyphs' order, not line/span order — the
// conflict-resolution rule depends on emission order). Pages are rendered
// independently and joined by a single blank line.
func RenderPretty(pages [][]Glyph, bounds []PageBounds) string {
	cellWidth := medianAdvance(pages)
	cellHeight := medianLineHeight(pages)

	var out []string
	for i, glyphs := range pages {
		b := PageBounds{}
		if i < len(bounds) {
			b = bounds[i]
		} else if len(glyphs) > 0 {
			b = inferredBounds(glyphs)
		}
		out = append(out, renderPage(glyphs, b, cellWidth, cellHeight))
	}
	return strings.Join(out, "\n\n")
}

func inferredBounds(glyphs []Glyph) PageBounds {
	minX, maxY := glyphs[0].X, glyphs[0].Y
	for _, g := range glyphs {
		if g.X < minX {
			minX = g.X
		}
		if g.Y > maxY {
			maxY = g.Y
		}
	}
	return PageBounds{MinX: minX, MaxY: maxY}
}

func medianAdvance(pages [][]Glyph) float64 {
	var vals []float64
	for _, glyphs := range pages {
		for _, g := range glyphs {
			if g.AdvanceX > 0 {
				vals = append(vals, g.AdvanceX)
			}
		}
	}
	return math.Max(1, math.Floor(median(vals)))
}

func medianLineHeight(pages [][]Glyph) float64 {
	var vals []float64
	for _, glyphs := range pages {
		for _, line := range BuildLines(glyphs) {
			h := lineHeight(line)
			if h > 0 {
				vals = append(vals, h)
			}
		}
	}
	return math.Max(1, math.Floor(median(vals)))
}

func lineHeight(l Line) float64 {
	var top, bottom float64
	set := false
	for _, sp := range l.Spans {
		if !set {
			top, bottom = sp.BBox.Top, sp.BBox.Bottom
			set = true
			continue
		}
		if sp.BBox.Top > top {
			top = sp.BBox.Top
		}
		if sp.BBox.Bottom < bottom {
			bottom = sp.BBox.Bottom
		}
	}
	return top - bottom
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 1
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func renderPage(glyphs []Glyph, b PageBounds, cellWidth, cellHeight float64) string {
	if len(glyphs) == 0 {
		return ""
	}
	rows := map[int]map[int]rune{}
	maxRow := 0
	for _, g := range glyphs {
		r := []rune(g.Text)
		if len(r) == 0 {
			continue
		}
		row := int(math.Round((b.MaxY - g.Y) / cellHeight))
		if row < 0 {
			row = 0
		}
		col := int(math.Round((g.X - b.MinX) / cellWidth))
		if col < 0 {
			col = 0
		}
		rowCells, ok := rows[row]
		if !ok {
			rowCells = map[int]rune{}
			rows[row] = rowCells
		}
		for {
			if _, occupied := rowCells[col]; !occupied {
				rowCells[col] = r[0]
				break
			}
			col++
		}
		if row > maxRow {
			maxRow = row
		}
	}

	lines := make([]string, 0, maxRow+1)
	for row := 0; row <= maxRow; row++ {
		rowCells, ok := rows[row]
		if !ok {
			lines = append(lines, "")
			continue
		}
		maxCol := 0
		for col := range rowCells {
			if col > maxCol {
				maxCol = col
			}
		}
		buf := make([]rune, maxCol+1)
		for i := range buf {
			buf[i] = ' '
		}
		for col, ch := range rowCells {
			buf[col] = ch
		}
		lines = append(lines, strings.TrimRight(string(buf), " "))
	}
	return strings.Join(lines, "\n")
}

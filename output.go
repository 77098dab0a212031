/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package pdfstrings

import (
	"fmt"
	"strings"

	"github.com/bbqsrc/pdf-strings/layout"
)

// BoundingBox is a span's axis-aligned extent in PDF points, native y-up
// page space: top >= bottom, right >= left.
type BoundingBox struct {
	Top, Right, Bottom, Left float64
}

// String renders the bbox as "(top, right, bottom, left)".
func (b BoundingBox) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", b.Top, b.Right, b.Bottom, b.Left)
}

// GoString renders the bbox with field names, for %#v debugging output.
func (b BoundingBox) GoString() string {
	return fmt.Sprintf("BoundingBox{Top: %g, Right: %g, Bottom: %g, Left: %g}", b.Top, b.Right, b.Bottom, b.Left)
}

// TextSpan is one reconstructed run of text sharing a baseline, font size
// and tight horizontal spacing.
type TextSpan struct {
	Text     string
	BBox     BoundingBox
	FontSize float64
	Page     int
}

// Line is an ordered, left-to-right sequence of spans sharing a line.
type Line struct {
	Spans []TextSpan
	Page  int
}

// WarningKind classifies a non-fatal condition accumulated during
// extraction, for de-duplication by (kind, page, font)
type WarningKind string

// Warning kinds recognised across the pipeline.
const (
	WarningUnmappableGlyph   WarningKind = "unmappable_glyph"
	WarningUnknownEncoding   WarningKind = "unknown_encoding"
	WarningCMapParseError    WarningKind = "cmap_parse_error"
	WarningMalformedOperands WarningKind = "malformed_operands"
	WarningStackUnderflow    WarningKind = "stack_underflow"
	WarningNonFiniteNumber   WarningKind = "non_finite_number"
	WarningPageUnparseable   WarningKind = "page_unparseable"
	WarningResourceMissing   WarningKind = "resource_missing"
	WarningOperatorBudget    WarningKind = "operator_budget_exceeded"
	WarningUnsupportedFilter WarningKind = "unsupported_filter"
)

// Warning is one page-fatal or soft condition surfaced alongside a
// successful extraction.
type Warning struct {
	Kind    WarningKind
	Page    int
	Font    string
	Message string
}

func (w Warning) dedupeKey() string {
	return string(w.Kind) + "\x00" + fmt.Sprint(w.Page) + "\x00" + w.Font
}

// TextOutput is the public result of FromPath/FromBytes: the ordered text
// of every page plus any accumulated warnings.
type TextOutput struct {
	pageLines  [][]Line
	rawGlyphs  [][]layout.Glyph
	pageBounds []layout.PageBounds
	warnings   []Warning
	seen       map[string]bool
}

func newTextOutput() *TextOutput {
	return &TextOutput{seen: map[string]bool{}}
}

func (o *TextOutput) addWarning(w Warning) {
	key := w.dedupeKey()
	if o.seen[key] {
		return
	}
	o.seen[key] = true
	o.warnings = append(o.warnings, w)
}

func (o *TextOutput) addPage(lines []Line, glyphs []layout.Glyph, bounds layout.PageBounds) {
	o.pageLines = append(o.pageLines, lines)
	o.rawGlyphs = append(o.rawGlyphs, glyphs)
	o.pageBounds = append(o.pageBounds, bounds)
}

// Lines returns the ordered sequence of lines across all pages, in page
// then top-to-bottom order.
func (o *TextOutput) Lines() []Line {
	var all []Line
	for _, lines := range o.pageLines {
		all = append(all, lines...)
	}
	return all
}

// Warnings returns every accumulated non-fatal condition, order-preserved
// and de-duplicated by (kind, page, font).
func (o *TextOutput) Warnings() []Warning {
	return o.warnings
}

// ToString concatenates every span's text: spans joined by a single space,
// lines joined by a single newline, pages separated by a single newline, no
// trailing newline.
func (o *TextOutput) ToString() string {
	var pages []string
	for _, lines := range o.pageLines {
		var lineStrs []string
		for _, line := range lines {
			var parts []string
			for _, sp := range line.Spans {
				parts = append(parts, sp.Text)
			}
			lineStrs = append(lineStrs, strings.Join(parts, " "))
		}
		pages = append(pages, strings.Join(lineStrs, "\n"))
	}
	return strings.Join(pages, "\n")
}

// ToStringPretty rasterises the document onto a character grid preserving
// approximate layout.
func (o *TextOutput) ToStringPretty() string {
	return layout.RenderPretty(o.rawGlyphs, o.pageBounds)
}

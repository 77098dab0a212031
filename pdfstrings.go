/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package pdfstrings extracts text, with per-span bounding boxes and font
// sizes, from PDF documents.
package pdfstrings

import (
	"errors"
	"os"
	"runtime"
	"sync"

	"github.com/bbqsrc/pdf-strings/content"
	"github.com/bbqsrc/pdf-strings/font"
	"github.com/bbqsrc/pdf-strings/internal/common"
	"github.com/bbqsrc/pdf-strings/internal/pdfobj"
	"github.com/bbqsrc/pdf-strings/internal/transform"
	"github.com/bbqsrc/pdf-strings/layout"
)

// Option configures an extraction call.
type Option func(*options)

type options struct {
	logger         common.Logger
	operatorBudget int
	maxWorkers     int
}

func defaultOptions() *options {
	return &options{
		logger:         common.DummyLogger{},
		operatorBudget: 10_000_000,
		maxWorkers:     runtime.NumCPU(),
	}
}

// WithLogger routes the module's diagnostic logging (font fallbacks,
// recovered xref entries, dropped streams) to logger instead of discarding
// it.
func WithLogger(logger common.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithOperatorBudget overrides the default 10-million-operator-per-page
// abort threshold.
func WithOperatorBudget(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.operatorBudget = n
		}
	}
}

// WithMaxWorkers bounds how many pages are interpreted concurrently. The
// default is runtime.NumCPU(); page order in the result is unaffected by
// worker count.
func WithMaxWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxWorkers = n
		}
	}
}

// FromPath opens the PDF file at path and extracts its text.
func FromPath(path string, password string, opts ...Option) (*TextOutput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ioErr(err)
	}
	return FromBytes(data, password, opts...)
}

// FromBytes extracts text from an in-memory PDF buffer.
func FromBytes(data []byte, password string, opts ...Option) (*TextOutput, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger != nil {
		common.SetLogger(o.logger)
	}

	doc, err := pdfobj.OpenBytes(data, password)
	if err != nil {
		switch {
		case errors.Is(err, pdfobj.ErrEncryptedNoPassword):
			return nil, ErrEncryptedPdfNoPassword
		case errors.Is(err, pdfobj.ErrWrongPassword):
			return nil, ErrWrongPassword
		default:
			return nil, ErrInvalidPdf
		}
	}

	out := newTextOutput()
	n := doc.PageCount()
	pageLines := make([][]Line, n)
	pageGlyphs := make([][]layout.Glyph, n)
	pageBounds := make([]layout.PageBounds, n)
	pageWarnings := make([][]Warning, n)

	sem := make(chan struct{}, o.maxWorkers)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			lines, glyphs, bounds, warnings := extractPage(doc, idx, o)
			pageLines[idx] = lines
			pageGlyphs[idx] = glyphs
			pageBounds[idx] = bounds
			pageWarnings[idx] = warnings
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		out.addPage(pageLines[i], pageGlyphs[i], pageBounds[i])
		for _, w := range pageWarnings[i] {
			out.addWarning(w)
		}
	}
	return out, nil
}

// extractPage runs the content-stream interpreter and layout reconstructor
// for one page. Errors here are page-fatal: they produce a warning and an
// empty page rather than aborting the whole document.
func extractPage(doc *pdfobj.Document, idx int, o *options) ([]Line, []layout.Glyph, layout.PageBounds, []Warning) {
	var warnings []Warning

	data, resources, mediaBox, rotation, err := doc.PageContent(idx)
	if err != nil {
		kind := WarningResourceMissing
		if errors.Is(err, pdfobj.ErrUnsupportedFilter) {
			kind = WarningUnsupportedFilter
		}
		warnings = append(warnings, Warning{Kind: kind, Page: idx, Message: err.Error()})
		return nil, nil, layout.PageBounds{}, warnings
	}

	ctm := initialCTM(mediaBox, rotation)
	buf := layout.NewBuffer(idx)
	ip := content.NewInterpreter(resources, buf).
		WithInitialCTM(ctm).
		WithOperatorBudget(o.operatorBudget)

	if runErr := ip.Run(data); runErr != nil {
		warnings = append(warnings, Warning{Kind: WarningPageUnparseable, Page: idx, Message: runErr.Error()})
	}
	if ip.Aborted() {
		warnings = append(warnings, Warning{Kind: WarningOperatorBudget, Page: idx, Message: "operator budget exceeded"})
	}
	if ip.Underflowed() {
		warnings = append(warnings, Warning{Kind: WarningStackUnderflow, Page: idx, Message: "graphics state stack underflow"})
	}
	if ip.MalformedOperands() {
		warnings = append(warnings, Warning{Kind: WarningMalformedOperands, Page: idx, Message: "operator skipped due to malformed operands"})
	}
	if buf.SawNonFinite() {
		warnings = append(warnings, Warning{Kind: WarningNonFiniteNumber, Page: idx, Message: "non-finite coordinate clamped to zero"})
	}
	ip.Fonts().Each(func(name string, f *font.Font) {
		if f.Lossy() {
			warnings = append(warnings, Warning{
				Kind:    WarningUnmappableGlyph,
				Page:    idx,
				Font:    name,
				Message: "one or more codes had no Unicode mapping",
			})
		}
		if f.CMapDamaged() {
			warnings = append(warnings, Warning{
				Kind:    WarningCMapParseError,
				Page:    idx,
				Font:    name,
				Message: "malformed CMap, fell back to identity mapping",
			})
		}
		if f.UnknownEncoding() {
			warnings = append(warnings, Warning{
				Kind:    WarningUnknownEncoding,
				Page:    idx,
				Font:    name,
				Message: "unrecognised base encoding, treated as StandardEncoding",
			})
		}
	})

	glyphs := buf.Glyphs()
	lines := convertLines(layout.BuildLines(glyphs))
	bounds := deviceBounds(mediaBox, ctm)
	return lines, glyphs, bounds, warnings
}

// deviceBounds transforms the page's MediaBox corners through ctm (the same
// transform applied to every glyph origin) to find the device-space extent
// the pretty-grid renderer anchors its columns/rows to. Using the raw
// MediaBox here would mis-anchor the grid whenever the box has a non-zero
// origin, or whenever a /Rotate of 90/270 swaps width and height.
func deviceBounds(mediaBox content.Rect, ctm transform.Matrix) layout.PageBounds {
	corners := [4][2]float64{
		{mediaBox.LLX, mediaBox.LLY},
		{mediaBox.URX, mediaBox.LLY},
		{mediaBox.URX, mediaBox.URY},
		{mediaBox.LLX, mediaBox.URY},
	}
	minX, maxY := ctm.Transform(corners[0][0], corners[0][1])
	for _, c := range corners[1:] {
		x, y := ctm.Transform(c[0], c[1])
		if x < minX {
			minX = x
		}
		if y > maxY {
			maxY = y
		}
	}
	return layout.PageBounds{MinX: minX, MaxY: maxY}
}

func convertLines(lines []layout.Line) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		spans := make([]TextSpan, 0, len(l.Spans))
		for _, sp := range l.Spans {
			spans = append(spans, TextSpan{
				Text:     sp.Text,
				BBox:     BoundingBox{Top: sp.BBox.Top, Right: sp.BBox.Right, Bottom: sp.BBox.Bottom, Left: sp.BBox.Left},
				FontSize: sp.FontSize,
				Page:     sp.Page,
			})
		}
		out = append(out, Line{Spans: spans, Page: l.Page})
	}
	return out
}

// initialCTM folds the page's MediaBox origin and /Rotate into the
// interpreter's starting transform, so device-space coordinates always have
// their origin at the page's visible top-left-independent lower-left
// corner, pre-rotation normalised, mirroring the matrix pdf.js computes for
// its page viewport.
func initialCTM(mediaBox content.Rect, rotation int) transform.Matrix {
	width := mediaBox.URX - mediaBox.LLX
	height := mediaBox.URY - mediaBox.LLY

	var rot transform.Matrix
	switch rotation {
	case 90:
		rot = transform.NewMatrix(0, 1, -1, 0, height, 0)
	case 180:
		rot = transform.NewMatrix(-1, 0, 0, -1, width, height)
	case 270:
		rot = transform.NewMatrix(0, -1, 1, 0, 0, width)
	default:
		rot = transform.IdentityMatrix()
	}
	rot.Concat(transform.TranslationMatrix(-mediaBox.LLX, -mediaBox.LLY))
	return rot
}

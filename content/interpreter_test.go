/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbqsrc/pdf-strings/font"
)

// fakeDict/fakeResources give the interpreter tests a minimal resource
// dictionary without depending on internal/pdfobj, mirroring the font
// package's own fakeDict test helper.
type fakeDict map[string]font.Value

func (d fakeDict) Lookup(key string) (font.Value, bool) {
	v, ok := d[key]
	return v, ok
}

func name(s string) font.Value    { return font.Value{Kind: font.KindName, Str: s} }
func str(s string) font.Value     { return font.Value{Kind: font.KindString, Str: s} }
func number(n float64) font.Value { return font.Value{Kind: font.KindNumber, Num: n} }
func array(vs ...font.Value) font.Value {
	return font.Value{Kind: font.KindArray, Arr: vs}
}

type fakeForm struct {
	bytes     []byte
	resources ResourceDict
	matrix    [6]float64
	bbox      Rect
}

type fakeResources struct {
	fonts map[string]FontDict
	forms map[string]fakeForm
}

func (r *fakeResources) Font(n string) (FontDict, bool) {
	d, ok := r.fonts[n]
	return d, ok
}

func (r *fakeResources) XObjectForm(n string) ([]byte, ResourceDict, [6]float64, Rect, bool) {
	f, ok := r.forms[n]
	if !ok {
		return nil, nil, [6]float64{}, Rect{}, false
	}
	return f.bytes, f.resources, f.matrix, f.bbox, true
}

// recordingSink captures every emitted glyph in order, for assertions.
type recordingSink struct {
	events []GlyphEvent
}

func (s *recordingSink) EmitGlyph(g GlyphEvent) {
	s.events = append(s.events, g)
}

func simpleTimesFont() FontDict {
	return fakeDict{
		"Subtype":   name("Type1"),
		"FirstChar": number(65),
		"Widths":    array(number(722), number(667)),
		"Encoding":  name("WinAnsiEncoding"),
	}
}

func TestInterpreterShowsTextAtExpectedOrigin(t *testing.T) {
	res := &fakeResources{fonts: map[string]FontDict{"F1": simpleTimesFont()}}
	sink := &recordingSink{}
	ip := NewInterpreter(res, sink)

	err := ip.Run([]byte(`BT /F1 12 Tf 100 700 Td (AB) Tj ET`))
	require.NoError(t, err)
	require.Len(t, sink.events, 2)

	assert.Equal(t, "A", sink.events[0].Text)
	assert.InDelta(t, 100, sink.events[0].X, 1e-9)
	assert.InDelta(t, 700, sink.events[0].Y, 1e-9)
	assert.InDelta(t, 12, sink.events[0].FontSize, 1e-9)

	// Second glyph's origin is offset by the first glyph's device-space
	// advance: (722/1000)*12 = 8.664pt.
	assert.Equal(t, "B", sink.events[1].Text)
	assert.InDelta(t, 100+8.664, sink.events[1].X, 1e-6)
}

func TestInterpreterInvisibleTextModeSuppressesGlyphs(t *testing.T) {
	res := &fakeResources{fonts: map[string]FontDict{"F1": simpleTimesFont()}}
	sink := &recordingSink{}
	ip := NewInterpreter(res, sink)

	err := ip.Run([]byte(`BT /F1 12 Tf 3 Tr 100 700 Td (A) Tj ET`))
	require.NoError(t, err)
	assert.Empty(t, sink.events)
}

func TestInterpreterTJAdjustsAdvance(t *testing.T) {
	res := &fakeResources{fonts: map[string]FontDict{"F1": simpleTimesFont()}}
	sink := &recordingSink{}
	ip := NewInterpreter(res, sink)

	err := ip.Run([]byte(`BT /F1 10 Tf 0 0 Td [(A) -250 (A)] TJ ET`))
	require.NoError(t, err)
	require.Len(t, sink.events, 2)

	// Base advance for "A" at size 10 is (722/1000)*10 = 7.22pt; the
	// -250 TJ adjustment adds (250/1000)*10 = 2.5pt on top.
	assert.InDelta(t, 0.0, sink.events[0].X, 1e-9)
	assert.InDelta(t, 7.22+2.5, sink.events[1].X, 1e-6)
}

func TestInterpreterGraphicsStateStackPushPop(t *testing.T) {
	res := &fakeResources{fonts: map[string]FontDict{"F1": simpleTimesFont()}}
	sink := &recordingSink{}
	ip := NewInterpreter(res, sink)

	// cm inside q/Q must not leak out: the second "A" should land back at
	// the un-translated origin.
	err := ip.Run([]byte(`q 1 0 0 1 500 0 cm Q BT /F1 12 Tf 0 0 Td (A) Tj ET`))
	require.NoError(t, err)
	require.Len(t, sink.events, 1)
	assert.InDelta(t, 0, sink.events[0].X, 1e-9)
}

func TestInterpreterUnbalancedQDoesNotUnderflow(t *testing.T) {
	res := &fakeResources{fonts: map[string]FontDict{"F1": simpleTimesFont()}}
	sink := &recordingSink{}
	ip := NewInterpreter(res, sink)

	// A stray Q with nothing pushed must leave state unchanged rather than
	// panicking.
	err := ip.Run([]byte(`Q BT /F1 12 Tf 0 0 Td (A) Tj ET`))
	require.NoError(t, err)
	require.Len(t, sink.events, 1)
	assert.True(t, ip.Underflowed())
}

func TestInterpreterDoRecursesIntoFormXObject(t *testing.T) {
	formRes := &fakeResources{fonts: map[string]FontDict{"F1": simpleTimesFont()}}
	outerRes := &fakeResources{
		forms: map[string]fakeForm{
			"Fm1": {
				bytes:     []byte(`BT /F1 12 Tf 0 0 Td (A) Tj ET`),
				resources: formRes,
				matrix:    [6]float64{1, 0, 0, 1, 50, 0},
			},
		},
	}
	sink := &recordingSink{}
	ip := NewInterpreter(outerRes, sink)

	err := ip.Run([]byte(`q 1 0 0 1 10 0 cm /Fm1 Do Q`))
	require.NoError(t, err)
	require.Len(t, sink.events, 1)
	// Form matrix (translate 50) composed with the outer cm (translate 10).
	assert.InDelta(t, 60, sink.events[0].X, 1e-9)
}

func TestInterpreterDoGuardsAgainstRecursionDepth(t *testing.T) {
	res := &fakeResources{}
	selfForm := fakeForm{
		bytes:  []byte(`/Fm1 Do`),
		matrix: [6]float64{1, 0, 0, 1, 0, 0},
	}
	selfForm.resources = res
	res.forms = map[string]fakeForm{"Fm1": selfForm}

	sink := &recordingSink{}
	ip := NewInterpreter(res, sink)

	// A self-referencing Form must stop (the Do call-chain visited set
	// skips the re-entry) rather than recursing forever.
	err := ip.Run([]byte(`/Fm1 Do`))
	require.NoError(t, err)
}

func TestInterpreterOperatorBudgetAborts(t *testing.T) {
	res := &fakeResources{}
	sink := &recordingSink{}
	ip := NewInterpreter(res, sink).WithOperatorBudget(3)

	err := ip.Run([]byte(`q Q q Q q Q q Q`))
	require.NoError(t, err)
	assert.True(t, ip.Aborted())
}

func TestInterpreterUnknownFontResourceIsIgnored(t *testing.T) {
	res := &fakeResources{}
	sink := &recordingSink{}
	ip := NewInterpreter(res, sink)

	err := ip.Run([]byte(`BT /Missing 12 Tf (A) Tj ET`))
	require.NoError(t, err)
	assert.Empty(t, sink.events)
}

/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package pdfstrings

import (
	"bytes"
	"crypto/md5"
	"crypto/rc4"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pdfBuilder assembles a small single-page PDF with a classic xref table,
// tracking object offsets as bodies are appended so fixtures stay valid
// when a test tweaks an object.
type pdfBuilder struct {
	buf     bytes.Buffer
	offsets map[int]int
	maxNum  int
	trailer string
}

func newPDFBuilder() *pdfBuilder {
	b := &pdfBuilder{offsets: map[int]int{}}
	b.buf.WriteString("%PDF-1.7\n")
	return b
}

func (b *pdfBuilder) object(num int, body string) {
	b.offsets[num] = b.buf.Len()
	fmt.Fprintf(&b.buf, "%d 0 obj\n%s\nendobj\n", num, body)
	if num > b.maxNum {
		b.maxNum = num
	}
}

func (b *pdfBuilder) streamObject(num int, dict string, data []byte) {
	b.offsets[num] = b.buf.Len()
	fmt.Fprintf(&b.buf, "%d 0 obj\n%s\nstream\n", num, dict)
	b.buf.Write(data)
	b.buf.WriteString("\nendstream\nendobj\n")
	if num > b.maxNum {
		b.maxNum = num
	}
}

func (b *pdfBuilder) build(extraTrailer string) []byte {
	xrefOff := b.buf.Len()
	size := b.maxNum + 1
	fmt.Fprintf(&b.buf, "xref\n0 %d\n", size)
	b.buf.WriteString("0000000000 65535 f \n")
	for i := 1; i < size; i++ {
		fmt.Fprintf(&b.buf, "%010d 00000 n \n", b.offsets[i])
	}
	fmt.Fprintf(&b.buf, "trailer\n<< /Size %d /Root 1 0 R %s >>\n", size, extraTrailer)
	fmt.Fprintf(&b.buf, "startxref\n%d\n%%%%EOF", xrefOff)
	return b.buf.Bytes()
}

// uniformWidths renders a /Widths array giving every code from 32 to 126
// the same width, so glyph advances in fixtures are predictable.
func uniformWidths(w int) string {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 32; i <= 126; i++ {
		fmt.Fprintf(&sb, " %d", w)
	}
	sb.WriteString(" ]")
	return sb.String()
}

func helveticaObject() string {
	return "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica" +
		" /FirstChar 32 /Widths " + uniformWidths(500) +
		" /Encoding /WinAnsiEncoding >>"
}

func singlePagePDF(t *testing.T, content string) []byte {
	t.Helper()
	b := newPDFBuilder()
	b.object(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.object(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	b.object(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792]"+
		" /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>")
	b.object(4, helveticaObject())
	b.streamObject(5, fmt.Sprintf("<< /Length %d >>", len(content)), []byte(content))
	return b.build("")
}

func TestFromBytesSimpleDocument(t *testing.T) {
	data := singlePagePDF(t, `BT /F1 12 Tf 72 720 Td (This is a small demonstration .pdf file) Tj ET`)
	out, err := FromBytes(data, "")
	require.NoError(t, err)
	assert.Contains(t, out.ToString(), "This is a small demonstration .pdf file")
}

func TestFromBytesTwoColumnsShareOneLine(t *testing.T) {
	// "Alpha" at x=72 and "Beta" at x=400 sit on the same baseline with a
	// gap far beyond 0.3*12pt, so they become two spans of one line and a
	// single space in ToString.
	data := singlePagePDF(t,
		`BT /F1 12 Tf 72 720 Td (Alpha) Tj ET`+
			` BT /F1 12 Tf 400 720 Td (Beta) Tj ET`)
	out, err := FromBytes(data, "")
	require.NoError(t, err)

	lines := out.Lines()
	require.Len(t, lines, 1)
	require.Len(t, lines[0].Spans, 2)
	assert.Equal(t, "Alpha", lines[0].Spans[0].Text)
	assert.Equal(t, "Beta", lines[0].Spans[1].Text)
	assert.Less(t, lines[0].Spans[0].BBox.Left, lines[0].Spans[1].BBox.Left)
	assert.Equal(t, "Alpha Beta", out.ToString())
}

func TestFromBytesLigatureToUnicode(t *testing.T) {
	toUnicode := `/CIDInit /ProcSet findresource begin
begincmap
1 begincodespacerange
<00> <FF>
endcodespacerange
1 beginbfchar
<41> <00660069>
endbfchar
endcmap
end`
	b := newPDFBuilder()
	b.object(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.object(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	b.object(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792]"+
		" /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>")
	b.object(4, "<< /Type /Font /Subtype /Type1 /BaseFont /Custom"+
		" /FirstChar 32 /Widths "+uniformWidths(500)+
		" /Encoding /WinAnsiEncoding /ToUnicode 6 0 R >>")
	content := `BT /F1 12 Tf 72 720 Td (A) Tj ET`
	b.streamObject(5, fmt.Sprintf("<< /Length %d >>", len(content)), []byte(content))
	b.streamObject(6, fmt.Sprintf("<< /Length %d >>", len(toUnicode)), []byte(toUnicode))
	data := b.build("")

	out, err := FromBytes(data, "")
	require.NoError(t, err)
	got := out.ToString()
	assert.Contains(t, got, "fi")
	assert.Equal(t, 2, len([]rune(got)))
}

func TestFromBytesRotatedTextGroupsIntoTallLine(t *testing.T) {
	// 90-degree text matrix: the line advances up the page. The glyphs must
	// still group into a single line reading "Hello", with a bounding box
	// taller than it is wide.
	data := singlePagePDF(t, `BT /F1 12 Tf 0 1 -1 0 300 100 Tm (Hello) Tj ET`)
	out, err := FromBytes(data, "")
	require.NoError(t, err)

	lines := out.Lines()
	require.Len(t, lines, 1)
	require.Len(t, lines[0].Spans, 1)
	sp := lines[0].Spans[0]
	assert.Equal(t, "Hello", sp.Text)
	assert.Greater(t, sp.BBox.Top-sp.BBox.Bottom, sp.BBox.Right-sp.BBox.Left)
}

func TestFromBytesCIDIdentityHWithToUnicode(t *testing.T) {
	toUnicode := `1 begincodespacerange
<0000> <FFFF>
endcodespacerange
2 beginbfchar
<0003> <4F60>
<0004> <597D>
endbfchar`
	b := newPDFBuilder()
	b.object(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.object(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	b.object(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792]"+
		" /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>")
	b.object(4, "<< /Type /Font /Subtype /Type0 /BaseFont /CJK"+
		" /Encoding /Identity-H /DescendantFonts [7 0 R] /ToUnicode 6 0 R >>")
	content := `BT /F1 12 Tf 72 720 Td <00030004> Tj ET`
	b.streamObject(5, fmt.Sprintf("<< /Length %d >>", len(content)), []byte(content))
	b.streamObject(6, fmt.Sprintf("<< /Length %d >>", len(toUnicode)), []byte(toUnicode))
	b.object(7, "<< /Type /Font /Subtype /CIDFontType2 /DW 1000 >>")
	data := b.build("")

	out, err := FromBytes(data, "")
	require.NoError(t, err)
	assert.Contains(t, out.ToString(), "你好")
}

func TestFromBytesInvisibleTextOmitted(t *testing.T) {
	data := singlePagePDF(t,
		`BT /F1 12 Tf 72 720 Td (visible) Tj ET`+
			` BT /F1 12 Tf 3 Tr 72 700 Td (hidden) Tj ET`)
	out, err := FromBytes(data, "")
	require.NoError(t, err)
	assert.Contains(t, out.ToString(), "visible")
	assert.NotContains(t, out.ToString(), "hidden")
}

func TestFromBytesDeterministic(t *testing.T) {
	data := singlePagePDF(t, `BT /F1 12 Tf 72 720 Td (Same every time) Tj ET`)
	a, err := FromBytes(data, "")
	require.NoError(t, err)
	b, err := FromBytes(data, "")
	require.NoError(t, err)
	assert.Equal(t, a.ToString(), b.ToString())
	assert.Equal(t, a.ToStringPretty(), b.ToStringPretty())
	assert.Equal(t, a.Lines(), b.Lines())
}

func TestFromPathMatchesFromBytes(t *testing.T) {
	data := singlePagePDF(t, `BT /F1 12 Tf 72 720 Td (Round trip) Tj ET`)
	path := filepath.Join(t.TempDir(), "roundtrip.pdf")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	fromPath, err := FromPath(path, "")
	require.NoError(t, err)
	fromBytes, err := FromBytes(data, "")
	require.NoError(t, err)
	assert.Equal(t, fromBytes.ToString(), fromPath.ToString())
	assert.Equal(t, fromBytes.Lines(), fromPath.Lines())
}

func TestFromPathMissingFileReturnsIoError(t *testing.T) {
	_, err := FromPath(filepath.Join(t.TempDir(), "nope.pdf"), "")
	require.Error(t, err)
	var ioErr *IoError
	assert.ErrorAs(t, err, &ioErr)
}

func TestFromBytesGarbageReturnsInvalidPdf(t *testing.T) {
	_, err := FromBytes([]byte("definitely not a pdf"), "")
	assert.ErrorIs(t, err, ErrInvalidPdf)
}

// rc4EncryptedPDF builds an R2/V1 standard-security-handler document whose
// content stream is RC4-encrypted under password "secret", computing the
// /U entry the same way a conforming writer does (algorithm 4).
func rc4EncryptedPDF(t *testing.T, password, content string) []byte {
	t.Helper()

	padding := []byte{
		0x28, 0xBF, 0x4E, 0x5E, 0x4E, 0x75, 0x8A, 0x41, 0x64, 0x00, 0x4E, 0x56, 0xFF,
		0xFA, 0x01, 0x08, 0x2E, 0x2E, 0x00, 0xB6, 0xD0, 0x68, 0x3E, 0x80, 0x2F, 0x0C,
		0xA9, 0xFE, 0x64, 0x53, 0x69, 0x7A,
	}
	pad := func(pass []byte) []byte {
		out := make([]byte, 32)
		n := copy(out, pass)
		copy(out[n:], padding)
		return out
	}

	oEntry := bytes.Repeat([]byte{0xAB}, 32) // opaque: only its bytes feed the key hash
	id0 := bytes.Repeat([]byte{0x42}, 16)
	p := int32(-1)

	// Algorithm 2: 40-bit file key from the padded user password.
	h := md5.New()
	h.Write(pad([]byte(password)))
	h.Write(oEntry)
	h.Write([]byte{byte(p), byte(p >> 8), byte(p >> 16), byte(p >> 24)})
	h.Write(id0)
	key := h.Sum(nil)[:5]

	// Algorithm 4 (R2): U = RC4(key, padding).
	uEntry := make([]byte, 32)
	ciph, err := rc4.NewCipher(key)
	require.NoError(t, err)
	ciph.XORKeyStream(uEntry, padding)

	// Algorithm 1: per-object key for the content stream (object 5 gen 0).
	objKeyInput := append(append([]byte{}, key...), 5, 0, 0, 0, 0)
	objKeySum := md5.Sum(objKeyInput)
	objKey := objKeySum[:10]
	encContent := make([]byte, len(content))
	ciph, err = rc4.NewCipher(objKey)
	require.NoError(t, err)
	ciph.XORKeyStream(encContent, []byte(content))

	b := newPDFBuilder()
	b.object(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.object(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	b.object(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792]"+
		" /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>")
	b.object(4, helveticaObject())
	b.streamObject(5, fmt.Sprintf("<< /Length %d >>", len(encContent)), encContent)

	trailer := fmt.Sprintf(
		"/Encrypt << /Filter /Standard /V 1 /R 2 /Length 40 /P -1 /O <%X> /U <%X> >> /ID [<%X> <%X>]",
		oEntry, uEntry, id0, id0)
	return b.build(trailer)
}

func TestFromBytesEncryptedWithPassword(t *testing.T) {
	data := rc4EncryptedPDF(t, "secret", `BT /F1 12 Tf 72 720 Td (Confidential) Tj ET`)

	out, err := FromBytes(data, "secret")
	require.NoError(t, err)
	assert.Contains(t, out.ToString(), "Confidential")
}

func TestFromBytesEncryptedWithoutPassword(t *testing.T) {
	data := rc4EncryptedPDF(t, "secret", `BT /F1 12 Tf 72 720 Td (Confidential) Tj ET`)
	_, err := FromBytes(data, "")
	assert.ErrorIs(t, err, ErrEncryptedPdfNoPassword)
}

func TestFromBytesEncryptedWrongPassword(t *testing.T) {
	data := rc4EncryptedPDF(t, "secret", `BT /F1 12 Tf 72 720 Td (Confidential) Tj ET`)
	_, err := FromBytes(data, "hunter2")
	assert.ErrorIs(t, err, ErrWrongPassword)
}

/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package pdfobj

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildMinimalPDF assembles a one-page PDF with a classic xref table,
// tracking each object's byte offset as it's appended rather than
// hand-computing them, so the fixture stays correct if any object body
// changes shape.
func buildMinimalPDF() []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")

	offsets := make([]int, 6) // index 1..5 used

	write := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	content := "BT /F1 12 Tf 10 100 Td (Hello) Tj ET"

	write(1, "<< /Type /Catalog /Pages 2 0 R >>")
	write(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	write(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 200 200] "+
		"/Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>")
	write(4, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	write(5, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))

	xrefOff := buf.Len()
	buf.WriteString("xref\n0 6\n")
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	buf.WriteString("trailer\n<< /Size 6 /Root 1 0 R >>\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF", xrefOff)

	return buf.Bytes()
}

func TestOpenBytesMinimalDocument(t *testing.T) {
	doc, err := OpenBytes(buildMinimalPDF(), "")
	require.NoError(t, err)
	require.Equal(t, 1, doc.PageCount())

	data, resources, mediaBox, rotation, err := doc.PageContent(0)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Hello")
	assert.Equal(t, 0, rotation)
	assert.Equal(t, 200.0, mediaBox.URX)

	fontDict, ok := resources.Font("F1")
	require.True(t, ok)
	subtype, ok := fontDict.Lookup("Subtype")
	require.True(t, ok)
	name, ok := subtype.AsName()
	require.True(t, ok)
	assert.Equal(t, "Type1", name)
}

func TestOpenBytesPageOutOfRange(t *testing.T) {
	doc, err := OpenBytes(buildMinimalPDF(), "")
	require.NoError(t, err)
	_, _, _, _, err = doc.PageContent(5)
	assert.Error(t, err)
}

func TestOpenBytesRejectsGarbage(t *testing.T) {
	_, err := OpenBytes([]byte("not a pdf"), "")
	assert.Error(t, err)
}

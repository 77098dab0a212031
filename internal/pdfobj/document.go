/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package pdfobj

import (
	"errors"
	"fmt"
	"os"

	"github.com/bbqsrc/pdf-strings/content"
	"github.com/bbqsrc/pdf-strings/internal/common"
)

// Sentinel errors the façade (pdfstrings.go) maps onto its public error
// values; kept here rather than importing the root package, which would
// create an import cycle.
var (
	ErrInvalidPdf          = errors.New("pdfobj: invalid PDF")
	ErrEncryptedNoPassword = errors.New("pdfobj: encrypted, no password supplied")
	ErrWrongPassword       = errors.New("pdfobj: wrong password")
)

// Document is the concrete content.PageSource this module builds on top of
// the object model: resolved page tree (with inherited Resources/MediaBox/
// Rotate), decrypted streams, decoded filters, stripped to the read-only
// surface content.PageSource needs.
type Document struct {
	parser *Parser
	pages  []*pageNode
}

type pageNode struct {
	dict      *Dictionary
	resources *Dictionary
	mediaBox  content.Rect
	rotation  int
}

// Open reads and parses the PDF file at path.
func Open(path string, password string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return OpenBytes(data, password)
}

// OpenBytes parses an in-memory PDF buffer.
func OpenBytes(data []byte, password string) (*Document, error) {
	p := newParser(data)
	trailer, err := p.loadXref(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPdf, err)
	}

	if encObj, ok := trailer.Get("Encrypt"); ok {
		encDict, ok := p.ResolveDict(encObj)
		if !ok {
			return nil, fmt.Errorf("%w: malformed /Encrypt", ErrInvalidPdf)
		}
		c, cerr := newCrypter(encDict, trailer, []byte(password))
		if cerr != nil {
			if errors.Is(cerr, errWrongPassword) {
				if password == "" {
					return nil, ErrEncryptedNoPassword
				}
				return nil, ErrWrongPassword
			}
			return nil, fmt.Errorf("%w: %v", ErrInvalidPdf, cerr)
		}
		p.crypter = c
	}

	rootObj, ok := trailer.Get("Root")
	if !ok {
		return nil, fmt.Errorf("%w: trailer missing /Root", ErrInvalidPdf)
	}
	root, ok := p.ResolveDict(rootObj)
	if !ok {
		return nil, fmt.Errorf("%w: unresolvable /Root", ErrInvalidPdf)
	}
	pagesObj, ok := root.Get("Pages")
	if !ok {
		return nil, fmt.Errorf("%w: /Root missing /Pages", ErrInvalidPdf)
	}
	pagesDict, ok := p.ResolveDict(pagesObj)
	if !ok {
		return nil, fmt.Errorf("%w: unresolvable /Pages", ErrInvalidPdf)
	}

	doc := &Document{parser: p}
	seen := map[*Dictionary]bool{}
	doc.collectPages(pagesDict, content.Rect{LLX: 0, LLY: 0, URX: 612, URY: 792}, 0, nil, seen)
	return doc, nil
}

func (doc *Document) collectPages(node *Dictionary, mediaBox content.Rect, rotation int, resources *Dictionary, seen map[*Dictionary]bool) {
	if node == nil || seen[node] {
		return
	}
	seen[node] = true

	if mb, ok := node.Get("MediaBox"); ok && mb.Kind == KindArray && len(mb.Arr) == 4 {
		mediaBox = rectFromArray(mb.Arr)
	}
	if rot, ok := node.Get("Rotate"); ok {
		if n, ok := rot.Number(); ok {
			rotation = ((int(n) % 360) + 360) % 360
		}
	}
	if res, ok := node.Get("Resources"); ok {
		if rd, ok := doc.parser.ResolveDict(res); ok {
			resources = rd
		}
	}

	typeName, _ := node.Get("Type")
	if typeName.Kind == KindName && typeName.Str == "Page" {
		doc.pages = append(doc.pages, &pageNode{dict: node, resources: resources, mediaBox: mediaBox, rotation: rotation})
		return
	}

	kidsObj, ok := node.Get("Kids")
	if !ok || kidsObj.Kind != KindArray {
		// A leaf without /Type /Page and without /Kids: treat as a page
		// anyway, since some producers omit /Type.
		doc.pages = append(doc.pages, &pageNode{dict: node, resources: resources, mediaBox: mediaBox, rotation: rotation})
		return
	}
	for _, kid := range kidsObj.Arr {
		kidDict, ok := doc.parser.ResolveDict(kid)
		if !ok {
			common.Log.Debug("pdfobj: unresolvable page-tree kid, skipping")
			continue
		}
		doc.collectPages(kidDict, mediaBox, rotation, resources, seen)
	}
}

func rectFromArray(arr []Object) content.Rect {
	vals := make([]float64, 4)
	for i := 0; i < 4 && i < len(arr); i++ {
		vals[i], _ = arr[i].Number()
	}
	return content.Rect{
		LLX: minF(vals[0], vals[2]), LLY: minF(vals[1], vals[3]),
		URX: maxF(vals[0], vals[2]), URY: maxF(vals[1], vals[3]),
	}
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// PageCount implements content.PageSource.
func (doc *Document) PageCount() int { return len(doc.pages) }

// PageContent implements content.PageSource: resolves and decodes the
// page's content stream (concatenating an array of streams with a space,
// per PDF32000 7.8.2) and exposes its resource dictionary.
func (doc *Document) PageContent(pageIndex int) ([]byte, content.ResourceDict, content.Rect, int, error) {
	if pageIndex < 0 || pageIndex >= len(doc.pages) {
		return nil, nil, content.Rect{}, 0, fmt.Errorf("pdfobj: page index %d out of range", pageIndex)
	}
	page := doc.pages[pageIndex]

	contentObj, ok := page.dict.Get("Contents")
	if !ok {
		return nil, docResourceDict{doc, page.resources}, page.mediaBox, page.rotation, nil
	}
	resolved, err := doc.parser.Resolve(contentObj)
	if err != nil {
		return nil, nil, content.Rect{}, 0, err
	}

	var buf []byte
	switch resolved.Kind {
	case KindStream:
		decoded, err := doc.parser.DecodeStream(resolved.Stream)
		if err != nil {
			return nil, nil, content.Rect{}, 0, err
		}
		buf = decoded
	case KindArray:
		for i, el := range resolved.Arr {
			streamObj, err := doc.parser.Resolve(el)
			if err != nil || streamObj.Kind != KindStream {
				continue
			}
			decoded, err := doc.parser.DecodeStream(streamObj.Stream)
			if err != nil {
				common.Log.Debug("pdfobj: page %d content stream %d undecodable: %v", pageIndex, i, err)
				continue
			}
			buf = append(buf, decoded...)
			buf = append(buf, ' ')
		}
	default:
		return nil, nil, content.Rect{}, 0, fmt.Errorf("pdfobj: page %d /Contents is neither stream nor array", pageIndex)
	}

	return buf, docResourceDict{doc, page.resources}, page.mediaBox, page.rotation, nil
}

// docResourceDict implements content.ResourceDict over a page or Form
// XObject's /Resources dictionary.
type docResourceDict struct {
	doc       *Document
	resources *Dictionary
}

func (r docResourceDict) Font(name string) (content.FontDict, bool) {
	if r.resources == nil {
		return nil, false
	}
	fontsObj, ok := r.resources.Get("Font")
	if !ok {
		return nil, false
	}
	fontsDict, ok := r.doc.parser.ResolveDict(fontsObj)
	if !ok {
		return nil, false
	}
	entry, ok := fontsDict.Get(name)
	if !ok {
		return nil, false
	}
	dict, ok := r.doc.parser.ResolveDict(entry)
	if !ok {
		return nil, false
	}
	return resolvingDict{p: r.doc.parser, d: dict}, true
}

func (r docResourceDict) XObjectForm(name string) ([]byte, content.ResourceDict, [6]float64, content.Rect, bool) {
	identity := [6]float64{1, 0, 0, 1, 0, 0}
	if r.resources == nil {
		return nil, nil, identity, content.Rect{}, false
	}
	xobjsObj, ok := r.resources.Get("XObject")
	if !ok {
		return nil, nil, identity, content.Rect{}, false
	}
	xobjsDict, ok := r.doc.parser.ResolveDict(xobjsObj)
	if !ok {
		return nil, nil, identity, content.Rect{}, false
	}
	entry, ok := xobjsDict.Get(name)
	if !ok {
		return nil, nil, identity, content.Rect{}, false
	}
	streamObj, err := r.doc.parser.Resolve(entry)
	if err != nil || streamObj.Kind != KindStream {
		return nil, nil, identity, content.Rect{}, false
	}
	subtype, _ := streamObj.Stream.Dict.Get("Subtype")
	if subtype.Kind != KindName || subtype.Str != "Form" {
		return nil, nil, identity, content.Rect{}, false
	}

	decoded, err := r.doc.parser.DecodeStream(streamObj.Stream)
	if err != nil {
		common.Log.Debug("pdfobj: Form XObject %q undecodable: %v", name, err)
		return nil, nil, identity, content.Rect{}, false
	}

	matrix := identity
	if m, ok := streamObj.Stream.Dict.Get("Matrix"); ok && m.Kind == KindArray && len(m.Arr) == 6 {
		for i := 0; i < 6; i++ {
			matrix[i], _ = m.Arr[i].Number()
		}
	}

	var bbox content.Rect
	if b, ok := streamObj.Stream.Dict.Get("BBox"); ok && b.Kind == KindArray && len(b.Arr) == 4 {
		bbox = rectFromArray(b.Arr)
	}

	formResources := r.resources
	if resObj, ok := streamObj.Stream.Dict.Get("Resources"); ok {
		if rd, ok := r.doc.parser.ResolveDict(resObj); ok {
			formResources = rd
		}
	}

	return decoded, docResourceDict{r.doc, formResources}, matrix, bbox, true
}

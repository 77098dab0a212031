/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package font

import (
	"github.com/bbqsrc/pdf-strings/internal/cmap"
	"github.com/bbqsrc/pdf-strings/internal/common"
)

// type0Font decodes Type0 (composite/CID) fonts: a multi-byte /Encoding
// CMap maps show-text code sequences to CIDs, and the descendant font's
// /W array (or /DW) gives each CID's advance width. Unicode text comes from
// the font's own /ToUnicode if present; without one, a code-as-Unicode
// guess is wrong often enough that the decoder instead emits the
// replacement character and flags the font lossy.
type type0Font struct {
	encodingCMap *cmap.CMap
	isIdentity   bool
	toUnicode    *cmap.CMap
	cmapDamaged  bool
	widths       cidWidths
	writingMode  WritingMode
	lossy        bool
}

// Lossy reports whether any code decoded by this font had no ToUnicode
// mapping and fell back to the replacement character.
func (f *type0Font) Lossy() bool { return f.lossy }

func newType0Font(dict Dict) (*type0Font, error) {
	f := &type0Font{}
	f.toUnicode, f.cmapDamaged = loadToUnicode(dict)

	encodingName := ""
	if v, ok := dict.Lookup("Encoding"); ok {
		switch v.Kind {
		case KindName:
			encodingName = v.Str
			if cm, ok := cmap.Predefined(encodingName); ok {
				f.encodingCMap = cm
				f.isIdentity = true
			}
		case KindStream:
			if sv, ok := v.AsStream(); ok {
				cm, err := cmap.Parse(sv.Bytes)
				if err != nil {
					common.Log.Debug("font: malformed embedded CMap: %v", err)
					f.cmapDamaged = true
				} else if !cm.IsEmpty() {
					f.encodingCMap = cm
				}
			}
		}
	}
	if f.encodingCMap == nil && encodingName != "" && cmap.IsKnownUnsupportedCJK(encodingName) {
		common.Log.Debug("font: unsupported predefined CJK CMap %q, falling back to identity", encodingName)
	}
	if encodingName == cmap.IdentityV {
		f.writingMode = WritingVertical
	}

	descendants, _ := lookupArray(dict, "DescendantFonts")
	if len(descendants) > 0 {
		if desc, ok := descendants[0].AsDict(); ok {
			f.widths = newCIDWidths(desc)
		}
	}
	return f, nil
}

func (f *type0Font) codeToCID(code uint32) uint32 {
	if f.isIdentity || f.encodingCMap == nil {
		return code
	}
	if cid, ok := f.encodingCMap.LookupCID(code); ok {
		return cid
	}
	return code
}

func (f *type0Font) Decode(data []byte) []DecodedCode {
	var out []DecodedCode
	i := 0
	for i < len(data) {
		n := 2
		if f.encodingCMap != nil {
			n = f.encodingCMap.CodeLength(data[i:])
		}
		if n <= 0 || i+n > len(data) {
			n = len(data) - i
			if n <= 0 {
				break
			}
		}
		var code uint32
		for _, b := range data[i : i+n] {
			code = code<<8 | uint32(b)
		}
		cid := f.codeToCID(code)

		text := ""
		ok := false
		if f.toUnicode != nil {
			text, ok = f.toUnicode.LookupUnicode(code)
		}
		if !ok {
			text = "�"
			f.lossy = true
		}

		out = append(out, DecodedCode{
			Code:    code,
			Text:    text,
			Width:   f.widths.Width(cid),
			IsSpace: n == 1 && code == 0x20,
		})
		i += n
	}
	return out
}

func (f *type0Font) WritingMode() WritingMode { return f.writingMode }

func (f *type0Font) CMapDamaged() bool { return f.cmapDamaged }

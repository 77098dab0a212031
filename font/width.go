/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package font

// defaultMissingWidth is used when a font descriptor supplies no
// /MissingWidth and no Widths entry covers a code. An absent width is
// treated as 0 rather than a guessed glyph metric; layout drops
// zero-advance empty glyphs anyway.
const defaultMissingWidth = 0

// simpleWidths resolves the /Widths array (indexed from /FirstChar to
// /LastChar) plus a descriptor's /MissingWidth, for simple (1-byte) fonts.
type simpleWidths struct {
	firstChar    int
	widths       []float64
	missingWidth float64
}

func newSimpleWidths(dict Dict) simpleWidths {
	sw := simpleWidths{missingWidth: defaultMissingWidth}
	if first, ok := dict.Lookup("FirstChar"); ok {
		if n, ok := first.AsInt(); ok {
			sw.firstChar = n
		}
	}
	if arr, ok := lookupArray(dict, "Widths"); ok {
		sw.widths = make([]float64, len(arr))
		for i, v := range arr {
			if n, ok := v.AsNumber(); ok {
				sw.widths[i] = n
			}
		}
	}
	if desc, ok := lookupDict(dict, "FontDescriptor"); ok {
		sw.missingWidth = lookupNumber(desc, "MissingWidth", defaultMissingWidth)
	}
	return sw
}

func (sw simpleWidths) Width(code byte) float64 {
	idx := int(code) - sw.firstChar
	if idx >= 0 && idx < len(sw.widths) {
		return sw.widths[idx]
	}
	return sw.missingWidth
}

// cidWidths resolves a Type0 font's /DW (default width) and /W (sparse
// per-CID or per-range width array), per PDF32000 9.7.4.3.
type cidWidths struct {
	defaultWidth float64
	single       map[uint32]float64
	ranges       []cidWidthRange
}

type cidWidthRange struct {
	lo, hi uint32
	w      float64
}

func newCIDWidths(descendant Dict) cidWidths {
	cw := cidWidths{defaultWidth: 1000, single: map[uint32]float64{}}
	if dw, ok := descendant.Lookup("DW"); ok {
		if n, ok := dw.AsNumber(); ok {
			cw.defaultWidth = n
		}
	}
	arr, ok := lookupArray(descendant, "W")
	if !ok {
		return cw
	}
	i := 0
	for i < len(arr) {
		first, ok := arr[i].AsInt()
		if !ok {
			i++
			continue
		}
		i++
		if i >= len(arr) {
			break
		}
		if sub, ok := arr[i].AsArray(); ok {
			// c [w1 w2 ... wn] form: consecutive CIDs starting at `first`.
			for j, wv := range sub {
				if w, ok := wv.AsNumber(); ok {
					cw.single[uint32(first+j)] = w
				}
			}
			i++
			continue
		}
		last, ok := arr[i].AsInt()
		if !ok {
			i++
			continue
		}
		i++
		if i >= len(arr) {
			break
		}
		w, ok := arr[i].AsNumber()
		i++
		if !ok {
			continue
		}
		// c_first c_last w form: a range sharing one width.
		cw.ranges = append(cw.ranges, cidWidthRange{lo: uint32(first), hi: uint32(last), w: w})
	}
	return cw
}

func (cw cidWidths) Width(cid uint32) float64 {
	if w, ok := cw.single[cid]; ok {
		return w
	}
	for _, r := range cw.ranges {
		if cid >= r.lo && cid <= r.hi {
			return r.w
		}
	}
	return cw.defaultWidth
}

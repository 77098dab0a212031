/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package pdfobj

import (
	"bytes"
	"compress/zlib"
	"encoding/ascii85"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// ErrUnsupportedFilter marks a stream whose /Filter chain names a filter
// this module doesn't implement, so the caller can skip the page with a
// specific warning instead of a generic parse failure.
var ErrUnsupportedFilter = errors.New("pdfobj: unsupported filter")

// DecodeStream decodes s.Raw according to its dictionary's /Filter (name or
// array of names, applied in order) and /DecodeParms:
// FlateDecode (with PNG/TIFF predictors), ASCIIHexDecode, ASCII85Decode and
// RunLengthDecode. Any other filter (LZWDecode, CCITTFaxDecode, DCTDecode,
// JBIG2Decode, JPXDecode) returns an error, which callers surface as an
// "unknown filter" warning; those are image-compression filters a
// text-only module has no use for even if it implemented them.
func (p *Parser) DecodeStream(s *Stream) ([]byte, error) {
	names, parms := filterChain(s.Dict)
	data := s.Raw
	for i, name := range names {
		var parm *Dictionary
		if i < len(parms) {
			parm = parms[i]
		}
		var err error
		data, err = decodeOne(name, data, parm)
		if err != nil {
			return nil, fmt.Errorf("pdfobj: filter %s: %w", name, err)
		}
	}
	return data, nil
}

func filterChain(dict *Dictionary) (names []string, parms []*Dictionary) {
	filterObj, ok := dict.Get("Filter")
	if !ok {
		return nil, nil
	}
	parmsObj, _ := dict.Get("DecodeParms")
	switch filterObj.Kind {
	case KindName:
		names = []string{filterObj.Str}
		if parmsObj.Kind == KindDict {
			parms = []*Dictionary{parmsObj.Dict}
		} else {
			parms = []*Dictionary{nil}
		}
	case KindArray:
		for _, f := range filterObj.Arr {
			if f.Kind == KindName {
				names = append(names, f.Str)
			}
		}
		if parmsObj.Kind == KindArray {
			for _, pm := range parmsObj.Arr {
				if pm.Kind == KindDict {
					parms = append(parms, pm.Dict)
				} else {
					parms = append(parms, nil)
				}
			}
		}
	}
	return names, parms
}

func decodeOne(name string, data []byte, parm *Dictionary) ([]byte, error) {
	switch name {
	case "FlateDecode", "Fl":
		return flateDecode(data, parm)
	case "ASCIIHexDecode", "AHx":
		return asciiHexDecode(data)
	case "ASCII85Decode", "A85":
		return ascii85Decode(data)
	case "RunLengthDecode", "RL":
		return runLengthDecode(data)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedFilter, name)
	}
}

func flateDecode(data []byte, parm *Dictionary) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil && len(out) == 0 {
		return nil, err
	}
	return applyPredictor(out, parm)
}

func applyPredictor(data []byte, parm *Dictionary) ([]byte, error) {
	if parm == nil {
		return data, nil
	}
	predictor, _ := intField(parm, "Predictor")
	if predictor <= 1 {
		return data, nil
	}
	columns, ok := intField(parm, "Columns")
	if !ok || columns <= 0 {
		columns = 1
	}
	colors, ok := intField(parm, "Colors")
	if !ok || colors <= 0 {
		colors = 1
	}
	bpc, ok := intField(parm, "BitsPerComponent")
	if !ok || bpc <= 0 {
		bpc = 8
	}
	bytesPerPixel := (colors*bpc + 7) / 8
	if bytesPerPixel < 1 {
		bytesPerPixel = 1
	}

	if predictor == 2 {
		rowLen := columns * colors
		if rowLen < 1 || len(data)%rowLen != 0 {
			return data, nil
		}
		out := append([]byte(nil), data...)
		rows := len(out) / rowLen
		for i := 0; i < rows; i++ {
			row := out[rowLen*i : rowLen*(i+1)]
			for j := colors; j < rowLen; j++ {
				row[j] += row[j-colors]
			}
		}
		return out, nil
	}

	// PNG predictors (10-15): each row is prefixed by a 1-byte filter tag.
	rowLen := columns*bytesPerPixel + 1
	if rowLen <= 1 || len(data)%rowLen != 0 {
		return data, nil
	}
	rows := len(data) / rowLen
	out := make([]byte, 0, rows*(rowLen-1))
	prev := make([]byte, rowLen-1)
	for i := 0; i < rows; i++ {
		row := append([]byte(nil), data[rowLen*i:rowLen*(i+1)]...)
		tag := row[0]
		cur := row[1:]
		switch tag {
		case 0: // none
		case 1: // sub
			for j := bytesPerPixel; j < len(cur); j++ {
				cur[j] += cur[j-bytesPerPixel]
			}
		case 2: // up
			for j := range cur {
				cur[j] += prev[j]
			}
		case 3: // average
			for j := range cur {
				var left byte
				if j >= bytesPerPixel {
					left = cur[j-bytesPerPixel]
				}
				cur[j] += byte((int(left) + int(prev[j])) / 2)
			}
		case 4: // paeth
			for j := range cur {
				var a, c byte
				b := prev[j]
				if j >= bytesPerPixel {
					a = cur[j-bytesPerPixel]
					c = prev[j-bytesPerPixel]
				}
				cur[j] += paethPredictor(a, b, c)
			}
		}
		out = append(out, cur...)
		prev = cur
	}
	return out, nil
}

func paethPredictor(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func asciiHexDecode(data []byte) ([]byte, error) {
	var clean bytes.Buffer
	for _, b := range data {
		if b == '>' {
			break
		}
		if isHexDigit(b) {
			clean.WriteByte(b)
		}
	}
	hexStr := clean.Bytes()
	if len(hexStr)%2 == 1 {
		hexStr = append(hexStr, '0')
	}
	out := make([]byte, hex.DecodedLen(len(hexStr)))
	n, err := hex.Decode(out, hexStr)
	return out[:n], err
}

func ascii85Decode(data []byte) ([]byte, error) {
	data = bytes.TrimSuffix(bytes.TrimSpace(data), []byte("~>"))
	out := make([]byte, 4*len(data)+4)
	n, _, err := ascii85.Decode(out, data, true)
	return out[:n], err
}

func runLengthDecode(data []byte) ([]byte, error) {
	var out bytes.Buffer
	i := 0
	for i < len(data) {
		length := data[i]
		i++
		switch {
		case length == 128:
			return out.Bytes(), nil
		case length < 128:
			n := int(length) + 1
			if i+n > len(data) {
				n = len(data) - i
			}
			out.Write(data[i : i+n])
			i += n
		default:
			if i >= len(data) {
				break
			}
			b := data[i]
			i++
			for j := 0; j < 257-int(length); j++ {
				out.WriteByte(b)
			}
		}
	}
	return out.Bytes(), nil
}

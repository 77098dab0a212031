/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package pdfobj

import "github.com/bbqsrc/pdf-strings/font"

// resolvingDict adapts a pdfobj.Dictionary into font.Dict, resolving
// indirect references through the owning Parser on each lookup. This is
// the single bridge between the concrete object model and the minimal
// tagged union (font.Value/font.Dict) the font/content packages consume.
type resolvingDict struct {
	p *Parser
	d *Dictionary
}

func (r resolvingDict) Lookup(key string) (font.Value, bool) {
	v, ok := r.d.Get(key)
	if !ok {
		return font.Value{}, false
	}
	resolved, err := r.p.Resolve(v)
	if err != nil {
		return font.Value{}, false
	}
	return r.p.toFontValue(resolved), true
}

func (p *Parser) toFontValue(o Object) font.Value {
	switch o.Kind {
	case KindBool:
		return font.Value{Kind: font.KindBool, Bool: o.Bool}
	case KindInt, KindFloat:
		n, _ := o.Number()
		return font.Value{Kind: font.KindNumber, Num: n}
	case KindString:
		return font.Value{Kind: font.KindString, Str: o.Str}
	case KindName:
		return font.Value{Kind: font.KindName, Str: o.Str}
	case KindArray:
		arr := make([]font.Value, 0, len(o.Arr))
		for _, el := range o.Arr {
			resolved, err := p.Resolve(el)
			if err != nil {
				continue
			}
			arr = append(arr, p.toFontValue(resolved))
		}
		return font.Value{Kind: font.KindArray, Arr: arr}
	case KindDict:
		return font.Value{Kind: font.KindDict, DictV: resolvingDict{p: p, d: o.Dict}}
	case KindStream:
		decoded, err := p.DecodeStream(o.Stream)
		if err != nil {
			decoded = nil
		}
		return font.Value{
			Kind: font.KindStream,
			Stream: font.StreamValue{
				Dict:  resolvingDict{p: p, d: o.Stream.Dict},
				Bytes: decoded,
			},
		}
	default:
		return font.Value{Kind: font.KindNull}
	}
}

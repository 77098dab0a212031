/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package content

import (
	"io"

	"github.com/bbqsrc/pdf-strings/font"
	"github.com/bbqsrc/pdf-strings/internal/common"
	"github.com/bbqsrc/pdf-strings/internal/transform"
)

// maxFormDepth bounds Form XObject (Do) recursion: forms may reference each
// other, so the depth guard doubles as cycle protection.
const maxFormDepth = 32

// maxOperators aborts a content stream (page-fatal, non-fatal warning)
// after this many operators, guarding against pathological or adversarial
// input.
const maxOperators = 10_000_000

const glyphTextRatio = 1.0 / 1000.0

// Interpreter drives a page's (or Form XObject's) content-stream operators
// against a GraphicsState/TextState pair, emitting glyphs to a Sink.
type Interpreter struct {
	resources ResourceDict
	fonts     *font.Cache
	sink      Sink

	gs    GraphicsState
	text  TextState
	stack []savedState

	tm, tlm transform.Matrix
	inText  bool

	formDepth int
	visiting  map[string]bool // Form XObject names on the current Do chain
	opCount   int
	opBudget  int
	aborted   bool

	underflowed  bool
	malformedOps bool
}

// Aborted reports whether Run stopped early because the operator budget
// was exceeded, so the caller can surface a page-fatal warning.
func (ip *Interpreter) Aborted() bool { return ip.aborted }

// Underflowed reports whether a Q popped an empty graphics-state stack at
// any point; state is left unchanged when that happens.
func (ip *Interpreter) Underflowed() bool { return ip.underflowed }

// MalformedOperands reports whether any operator arrived with operands of
// the wrong shape (e.g. a cm with fewer than six numbers) and was skipped.
func (ip *Interpreter) MalformedOperands() bool { return ip.malformedOps }

// Fonts returns the page's font cache, so a caller can inspect which fonts
// ended up lossy (fell back to the replacement character) once Run
// completes.
func (ip *Interpreter) Fonts() *font.Cache { return ip.fonts }

// NewInterpreter builds an interpreter seeded with the identity CTM (the
// caller is expected to have already folded in the page's rotation/MediaBox
// offset, if any, into the initial CTM it passes via WithInitialCTM).
func NewInterpreter(resources ResourceDict, sink Sink) *Interpreter {
	return &Interpreter{
		resources: resources,
		fonts:     font.NewCache(),
		sink:      sink,
		gs:        GraphicsState{CTM: transform.IdentityMatrix()},
		text:      newTextState(),
		opBudget:  maxOperators,
	}
}

// WithInitialCTM overrides the interpreter's starting CTM, e.g. to bake in
// a page rotation.
func (ip *Interpreter) WithInitialCTM(m transform.Matrix) *Interpreter {
	ip.gs.CTM = m
	return ip
}

// WithOperatorBudget overrides the default 10-million-operator abort
// threshold.
func (ip *Interpreter) WithOperatorBudget(n int) *Interpreter {
	ip.opBudget = n
	return ip
}

// Run executes every operator in data. A non-fatal error here means the
// page stopped early on an unrecoverable tokenizer or parse error; glyphs
// emitted before the error remain valid. When the operator budget is
// exceeded Run stops and returns nil, and Aborted reports it.
func (ip *Interpreter) Run(data []byte) error {
	tok := newTokenizer(data)
	for {
		op, err := tok.Next()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		ip.opCount++
		if ip.opCount > ip.opBudget {
			common.Log.Debug("content: operator budget exceeded, aborting stream")
			ip.aborted = true
			return nil
		}
		ip.execute(op)
	}
}

func (ip *Interpreter) execute(op Operation) {
	switch op.Operator {
	case "q":
		ip.stack = append(ip.stack, savedState{gs: ip.gs, text: ip.text})
	case "Q":
		if n := len(ip.stack); n > 0 {
			s := ip.stack[n-1]
			ip.stack = ip.stack[:n-1]
			ip.gs, ip.text = s.gs, s.text
		} else {
			ip.underflowed = true
		}
	case "cm":
		if m, ok := matrixOperand(op.Operands); ok {
			ip.gs.CTM.Concat(m)
		} else {
			ip.malformedOps = true
		}
	case "BT":
		ip.inText = true
		ip.tm = transform.IdentityMatrix()
		ip.tlm = transform.IdentityMatrix()
	case "ET":
		ip.inText = false
	case "Tc":
		ip.text.Tc = num(op.Operands, 0)
	case "Tw":
		ip.text.Tw = num(op.Operands, 0)
	case "Tz":
		ip.text.Th = num(op.Operands, 0)
	case "TL":
		ip.text.TL = num(op.Operands, 0)
	case "Ts":
		ip.text.Trise = num(op.Operands, 0)
	case "Tr":
		ip.text.Tmode = RenderMode(int(num(op.Operands, 0)))
	case "Tf":
		ip.opTf(op.Operands)
	case "Td":
		ip.opTd(num(op.Operands, 0), num(op.Operands, 1))
	case "TD":
		ty := num(op.Operands, 1)
		ip.text.TL = -ty
		ip.opTd(num(op.Operands, 0), ty)
	case "Tm":
		if m, ok := matrixOperand(op.Operands); ok {
			ip.tm = m
			ip.tlm = m
		} else {
			ip.malformedOps = true
		}
	case "T*":
		ip.opTd(0, -ip.text.TL)
	case "Tj":
		if len(op.Operands) > 0 {
			ip.showText(op.Operands[0].Str)
		}
	case "'":
		ip.opTd(0, -ip.text.TL)
		if len(op.Operands) > 0 {
			ip.showText(op.Operands[0].Str)
		}
	case `"`:
		if len(op.Operands) >= 3 {
			ip.text.Tw = num(op.Operands, 0)
			ip.text.Tc = num(op.Operands, 1)
			ip.opTd(0, -ip.text.TL)
			ip.showText(op.Operands[2].Str)
		}
	case "TJ":
		ip.opTJ(op.Operands)
	case "g":
		v := num(op.Operands, 0)
		ip.gs.FillColor = [3]float64{v, v, v}
	case "rg":
		if len(op.Operands) >= 3 {
			ip.gs.FillColor = [3]float64{num(op.Operands, 0), num(op.Operands, 1), num(op.Operands, 2)}
		}
	case "k":
		if len(op.Operands) >= 4 {
			c, m, y, k := num(op.Operands, 0), num(op.Operands, 1), num(op.Operands, 2), num(op.Operands, 3)
			ip.gs.FillColor = [3]float64{(1 - c) * (1 - k), (1 - m) * (1 - k), (1 - y) * (1 - k)}
		}
	case "Do":
		ip.opDo(op.Operands)
	default:
		// Path construction/painting, color, clipping, shading and
		// marked-content operators are recognized-and-ignored: they don't
		// affect extracted text.
	}
}

func (ip *Interpreter) opTf(operands []font.Value) {
	if len(operands) < 2 {
		return
	}
	name, _ := operands[0].AsName()
	size, _ := operands[1].AsNumber()
	ip.text.Tfs = size
	if ip.resources == nil {
		return
	}
	dict, ok := ip.resources.Font(name)
	if !ok {
		common.Log.Debug("content: font resource %q not found", name)
		return
	}
	f, err := ip.fonts.Get(name, func() (*font.Font, error) { return font.NewFromDict(dict) })
	if err != nil {
		common.Log.Debug("content: failed to load font %q: %v", name, err)
		return
	}
	ip.text.Font = f
}

func (ip *Interpreter) opTd(tx, ty float64) {
	m := transform.TranslationMatrix(tx, ty)
	ip.tlm.Concat(m)
	ip.tm = ip.tlm
}

func (ip *Interpreter) opTJ(operands []font.Value) {
	if len(operands) == 0 {
		return
	}
	arr, ok := operands[0].AsArray()
	if !ok {
		return
	}
	for _, el := range arr {
		if s, ok := el.AsString(); ok {
			ip.showText(s)
			continue
		}
		if n, ok := el.AsNumber(); ok {
			// A number between strings is a glyph-space adjustment,
			// subtracted from the advance (PDF32000 9.4.3).
			adj := -n / 1000 * ip.text.Tfs * (ip.text.Th / 100)
			ip.tm.Concat(transform.TranslationMatrix(adj, 0))
		}
	}
}

func (ip *Interpreter) opDo(operands []font.Value) {
	if len(operands) == 0 || ip.resources == nil {
		return
	}
	name, ok := operands[0].AsName()
	if !ok {
		return
	}
	contentBytes, resources, matrix, _, ok := ip.resources.XObjectForm(name)
	if !ok {
		return
	}
	if ip.formDepth >= maxFormDepth {
		common.Log.Debug("content: Form XObject recursion depth exceeded, skipping %q", name)
		return
	}
	if ip.visiting[name] {
		common.Log.Debug("content: Form XObject cycle through %q, skipping", name)
		return
	}
	if ip.visiting == nil {
		ip.visiting = map[string]bool{}
	}
	ip.visiting[name] = true
	defer delete(ip.visiting, name)

	sub := &Interpreter{
		resources: resources,
		fonts:     ip.fonts,
		sink:      ip.sink,
		gs:        ip.gs,
		text:      ip.text,
		formDepth: ip.formDepth + 1,
		visiting:  ip.visiting,
		opCount:   ip.opCount,
		opBudget:  ip.opBudget,
	}
	sub.gs.CTM.Concat(transform.NewMatrix(matrix[0], matrix[1], matrix[2], matrix[3], matrix[4], matrix[5]))
	sub.Run(contentBytes)
	ip.opCount = sub.opCount
	if sub.aborted {
		ip.aborted = true
	}
	if sub.underflowed {
		ip.underflowed = true
	}
	if sub.malformedOps {
		ip.malformedOps = true
	}
}

// showText decodes and positions one show-text operand: for each decoded
// code it computes the text rendering matrix Trm = stateMatrix x Tm x CTM,
// emits a glyph there, then advances Tm by the code's device-space
// displacement.
func (ip *Interpreter) showText(data string) {
	if ip.text.Font == nil {
		return
	}
	codes := ip.text.Font.Decode([]byte(data))
	th := ip.text.Th / 100
	stateMatrix := transform.NewMatrix(ip.text.Tfs*th, 0, 0, ip.text.Tfs, 0, ip.text.Trise)
	vertical := ip.text.Font.WritingMode() == font.WritingVertical

	for _, code := range codes {
		trm := ip.gs.CTM.Mult(ip.tm).Mult(stateMatrix)

		w := 0.0
		if code.IsSpace {
			w = ip.text.Tw
		}

		// Vertical writing mode swaps the advance onto the y axis and
		// drops the horizontal-scale factor that only applies to the
		// horizontal writing direction (PDF32000 9.4.3); character and
		// word spacing still apply.
		var dx, dy float64
		if vertical {
			dy = -(code.Width*glyphTextRatio*ip.text.Tfs + ip.text.Tc + w)
		} else {
			c := code.Width * glyphTextRatio
			dx = (c*ip.text.Tfs + ip.text.Tc + w) * th
		}

		if !ip.text.Tmode.Invisible() && code.Text != "" {
			x, y := trm.Translation()
			adv := ip.gs.CTM.Mult(ip.tm)
			advX, advY := adv.TransformVector(dx, dy)
			wm := 0
			if vertical {
				wm = 1
			}
			ip.sink.EmitGlyph(GlyphEvent{
				Text:        code.Text,
				X:           transform.SanitizeFloat(x),
				Y:           transform.SanitizeFloat(y),
				FontSize:    transform.SanitizeFloat(trm.Norm()),
				AdvanceX:    transform.SanitizeFloat(advX),
				AdvanceY:    transform.SanitizeFloat(advY),
				Mode:        ip.text.Tmode,
				WritingMode: wm,
				Angle:       transform.SanitizeFloat(trm.Angle()),
			})
		}

		ip.tm.Concat(transform.TranslationMatrix(dx, dy))
	}
}

func num(operands []font.Value, idx int) float64 {
	if idx < 0 || idx >= len(operands) {
		return 0
	}
	n, _ := operands[idx].AsNumber()
	return n
}

func matrixOperand(operands []font.Value) (transform.Matrix, bool) {
	if len(operands) < 6 {
		return transform.Matrix{}, false
	}
	vals := make([]float64, 6)
	for i := 0; i < 6; i++ {
		vals[i], _ = operands[len(operands)-6+i].AsNumber()
	}
	return transform.NewMatrix(vals[0], vals[1], vals[2], vals[3], vals[4], vals[5]), true
}

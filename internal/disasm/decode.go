package disasm

import (
	"fmt"

	"pdis/internal/memory"
	"pdis/internal/pcode"
)

// Class is the semantic class of a decoded operand.
type Class int

const (
	ClassNone Class = iota
	ClassLiteral
	ClassLocal
	ClassGlobal
	ClassIntermediate
	ClassConst
	ClassProc
	ClassLocalProc
	ClassGlobalProc
	ClassSegment
	ClassCode
	ClassCase
)

// Operand is one value-bearing token of an instruction.
type Operand struct {
	Class Class
	Value int
	// Target is the absolute segment byte offset of a code-relative
	// branch, or the segment word offset of a case table.
	Target int
	// Text is the rendered operand; empty for case tables, which are
	// listed where they lie.
	Text string
}

// Inst is a decoded instruction.
type Inst struct {
	Offset   int // segment-relative byte offset of the opcode
	Opcode   byte
	Mnemonic string
	Raw      []byte
	Operands []Operand
}

// Len is the number of bytes the instruction occupies.
func (i *Inst) Len() int { return len(i.Raw) }

// End is the byte offset following the instruction.
func (i *Inst) End() int { return i.Offset + len(i.Raw) }

// Texts returns the rendered operands, skipping those without text.
func (i *Inst) Texts() []string {
	var out []string
	for _, o := range i.Operands {
		if o.Text != "" {
			out = append(out, o.Text)
		}
	}
	return out
}

type flagSet uint32

func (f *flagSet) set(k pcode.TokenKind) { *f |= 1 << k }

func (f flagSet) has(k pcode.TokenKind) bool { return f&(1<<k) != 0 }

// class resolves the accumulated flags for one operand.
func (f flagSet) class() Class {
	switch {
	case f.has(pcode.FlagCase):
		return ClassCase
	case f.has(pcode.FlagSegment):
		return ClassSegment
	case f.has(pcode.FlagCode):
		return ClassCode
	case f.has(pcode.FlagIntermediate):
		return ClassIntermediate
	case f.has(pcode.FlagProc) && f.has(pcode.FlagGlobal):
		return ClassGlobalProc
	case f.has(pcode.FlagProc) && f.has(pcode.FlagLocal):
		return ClassLocalProc
	case f.has(pcode.FlagProc):
		return ClassProc
	case f.has(pcode.FlagGlobal):
		return ClassGlobal
	case f.has(pcode.FlagLocal):
		return ClassLocal
	case f.has(pcode.FlagConst):
		return ClassConst
	case f.has(pcode.FlagLiteral):
		return ClassLiteral
	}
	return ClassNone
}

// segByte reads the byte at off within s. Bytes beyond the segment or
// outside the loaded image are truncated input.
func (c *Context) segByte(s *segWalk, off int) (byte, error) {
	if off < 0 || off>>1 >= s.limit {
		addr, _ := memory.ByteAddr(s.base, off)
		return 0, &memory.TruncatedError{Addr: addr, What: "instruction"}
	}
	return c.mem.ReadByte(s.base, off)
}

// decode reads the instruction at byte offset off of procedure p.
func (c *Context) decode(p *procWalk, off int) (*Inst, error) {
	s := p.seg
	op, err := c.segByte(s, off)
	if err != nil {
		return nil, fmt.Errorf("%s.%s at +%04x: %w", s.name, p.name, off, err)
	}
	d := c.lookup(op)
	in := &Inst{Offset: off, Opcode: op, Mnemonic: d.Mnemonic, Raw: []byte{op}}

	next := func() (int, error) {
		b, err := c.segByte(s, off+len(in.Raw))
		if err != nil {
			return 0, err
		}
		in.Raw = append(in.Raw, b)
		return int(b), nil
	}

	var flags flagSet
	for _, t := range d.Tokens {
		if t.Kind.IsFlag() {
			flags.set(t.Kind)
			continue
		}

		var v int
		switch t.Kind {
		case pcode.Literal:
			v = int(t.Value)
		case pcode.UByte, pcode.DByte:
			v, err = next()
		case pcode.SByte:
			v, err = next()
			v = int(int8(v))
		case pcode.Word:
			var lo, hi int
			if lo, err = next(); err == nil {
				hi, err = next()
			}
			v = int(int16(uint16(hi<<8 | lo)))
		case pcode.VarByte:
			v, err = next()
			if err == nil && v >= 128 {
				var lo int
				lo, err = next()
				v = (v-128)<<8 + lo
			}
		default:
			return nil, fmt.Errorf("%w: opcode %02x (%s) has token %s", pcode.ErrInvalidTableEntry, op, d.Mnemonic, t.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("%s.%s %s at +%04x: %w", s.name, p.name, d.Mnemonic, off, err)
		}

		in.Operands = append(in.Operands, Operand{Class: flags.class(), Value: v})
		flags = 0
	}

	end := in.End()
	for i := range in.Operands {
		c.renderOperand(p, &in.Operands[i], end)
	}
	return in, nil
}

// renderOperand fills in o.Text. end is the byte offset following the
// instruction, the base for branches and case tables.
func (c *Context) renderOperand(p *procWalk, o *Operand, end int) {
	switch o.Class {
	case ClassCase:
		o.Target = o.Value
		c.caseTable(p, p.seg.base+uint16(o.Value), end)
	case ClassSegment:
		o.Text = fmt.Sprintf("seg%d", o.Value)
	case ClassCode:
		o.Target = end + o.Value
		o.Text = c.label(p, o.Target)
	case ClassIntermediate:
		o.Text = fmt.Sprintf("lev%d", o.Value)
	case ClassGlobalProc:
		o.Text = fmt.Sprintf("gproc%d", o.Value)
	case ClassLocalProc:
		o.Text = fmt.Sprintf("lproc%d", o.Value)
	case ClassProc:
		o.Text = fmt.Sprintf("proc%d", o.Value)
	case ClassGlobal:
		o.Text = fmt.Sprintf("G%d", o.Value)
	case ClassLocal:
		o.Text = fmt.Sprintf("L%d", o.Value)
	case ClassConst:
		o.Text = fmt.Sprintf("C%d", o.Value)
	default:
		o.Text = fmt.Sprintf("%d", o.Value)
	}
}

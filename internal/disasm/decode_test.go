package disasm

import (
	"errors"
	"testing"

	"pdis/internal/memory"
	"pdis/internal/pcode"
)

// decodeAt decodes one instruction from code placed at byte 0 of a
// segment at base 0x200, padding the rest of the segment with fill.
func decodeAt(t *testing.T, code []byte, fill byte) (*Inst, error) {
	t.Helper()
	const n = 16
	buf := make([]byte, n*2)
	for i := range buf {
		buf[i] = fill
	}
	copy(buf, code)
	mem := memory.New()
	if _, err := mem.Load(0x200, buf); err != nil {
		t.Fatal(err)
	}
	c := New(mem)
	c.pass = Discover
	s := &segWalk{base: 0x200, name: "s", length: n, limit: n}
	return c.decode(&procWalk{seg: s, ordinal: 1, name: "p"}, 0)
}

func TestDecodeConsumesMinLen(t *testing.T) {
	for op := 0; op < 256; op++ {
		in, err := decodeAt(t, []byte{byte(op)}, 0x01)
		if err != nil {
			t.Errorf("opcode %02x: %v", op, err)
			continue
		}
		if want := pcode.Lookup(byte(op)).MinLen(); in.Len() != want {
			t.Errorf("opcode %02x (%s) consumed %d bytes, want %d", op, in.Mnemonic, in.Len(), want)
		}
	}
}

func TestUndefinedOpcode(t *testing.T) {
	var op byte
	for i := 0; i < 256; i++ {
		if !pcode.Defined(byte(i)) {
			op = byte(i)
			break
		}
	}
	in, err := decodeAt(t, []byte{op, 0x84, 5}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if in.Mnemonic != pcode.Undefined || in.Len() != 1 || len(in.Operands) != 0 {
		t.Errorf("undefined opcode %02x decoded as %+v", op, in)
	}
}

func TestDecodeOperands(t *testing.T) {
	tests := []struct {
		name     string
		code     []byte
		length   int
		mnemonic string
		texts    []string
		classes  []Class
	}{
		{"short varbyte", []byte{0x84, 5}, 2, "lla", []string{"L5"}, []Class{ClassLocal}},
		{"long varbyte", []byte{0x84, 0x80, 0xc8}, 3, "lla", []string{"L200"}, []Class{ClassLocal}},
		{"long varbyte high", []byte{0x85, 0x81, 0x02}, 3, "ldo", []string{"G258"}, []Class{ClassGlobal}},
		{"word", []byte{0x81, 0x34, 0x12}, 3, "ldci", []string{"4660"}, []Class{ClassLiteral}},
		{"negative word", []byte{0x81, 0xff, 0xff}, 3, "ldci", []string{"-1"}, []Class{ClassLiteral}},
		{"short constant", []byte{0x1f}, 1, "sldc", []string{"31"}, []Class{ClassLiteral}},
		{"intermediate", []byte{0x89, 2, 7}, 3, "lod", []string{"lev2", "7"}, []Class{ClassIntermediate, ClassNone}},
		{"local proc", []byte{0x90, 3}, 2, "cpl", []string{"lproc3"}, []Class{ClassLocalProc}},
		{"global proc", []byte{0x91, 4}, 2, "cpg", []string{"gproc4"}, []Class{ClassGlobalProc}},
		{"external call", []byte{0x94, 2, 5}, 3, "cxg", []string{"seg2", "5"}, []Class{ClassSegment, ClassNone}},
		{"const area", []byte{0x83, 6, 3}, 3, "ldc", []string{"C6", "3"}, []Class{ClassConst, ClassLiteral}},
		{"no operands", []byte{0x8c}, 1, "mpi", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := decodeAt(t, tt.code, 0)
			if err != nil {
				t.Fatal(err)
			}
			if in.Mnemonic != tt.mnemonic || in.Len() != tt.length {
				t.Fatalf("decoded %s/%d bytes, want %s/%d", in.Mnemonic, in.Len(), tt.mnemonic, tt.length)
			}
			texts := in.Texts()
			if len(texts) != len(tt.texts) {
				t.Fatalf("operands = %v, want %v", texts, tt.texts)
			}
			for i := range texts {
				if texts[i] != tt.texts[i] {
					t.Errorf("operand %d = %q, want %q", i, texts[i], tt.texts[i])
				}
				if in.Operands[i].Class != tt.classes[i] {
					t.Errorf("operand %d class = %d, want %d", i, in.Operands[i].Class, tt.classes[i])
				}
			}
		})
	}
}

func TestBranchTarget(t *testing.T) {
	in, err := decodeAt(t, []byte{0x8a, 0xfe}, 0)
	if err != nil {
		t.Fatal(err)
	}
	op := in.Operands[0]
	if op.Class != ClassCode || op.Target != 0 {
		t.Errorf("operand = %+v, want a code reference to +0000", op)
	}
	if op.Text != "s.p.00" {
		t.Errorf("label = %q, want s.p.00", op.Text)
	}
}

func TestDecodeTruncated(t *testing.T) {
	mem := memory.New()
	mem.LoadWords(0, []uint16{0x0581})
	c := New(mem)
	c.pass = Discover
	s := &segWalk{base: 0, name: "s", length: 1, limit: 1}
	_, err := c.decode(&procWalk{seg: s, name: "p"}, 0)
	if !errors.Is(err, memory.ErrTruncated) {
		t.Fatalf("decode() error = %v, want ErrTruncated", err)
	}
}

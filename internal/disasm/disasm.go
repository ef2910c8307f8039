// Package disasm decodes p-code memory images into listing lines.
//
// Decoding runs in two passes over one image. The discovery pass walks
// from the entry points, classifying every structure it meets and naming
// branch and case targets. The render pass then walks the classified
// address space in ascending order and produces Lines, so forward
// references already have their labels when they are printed.
package disasm

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// LineKind tags a listing line.
type LineKind int

const (
	LineBlank LineKind = iota
	LineWord
	LineByte
	LineInst
	LineDiag
)

var lineKindNames = [...]string{
	LineBlank: "blank",
	LineWord:  "word",
	LineByte:  "byte",
	LineInst:  "inst",
	LineDiag:  "diag",
}

func (k LineKind) String() string {
	if k >= 0 && int(k) < len(lineKindNames) {
		return lineKindNames[k]
	}
	return fmt.Sprintf("LineKind(%d)", int(k))
}

func (k LineKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Bytes is raw instruction bytes; it marshals as hex.
type Bytes []byte

func (b Bytes) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(b)), nil
}

// Line is one row of a listing. Word and byte lines carry a structure
// field (Name is its dotted path); instruction lines carry the decoded
// instruction; diagnostic lines carry Text.
type Line struct {
	Kind     LineKind `json:"kind"`
	Addr     uint16   `json:"addr"`
	High     bool     `json:"high,omitempty"`
	Value    uint16   `json:"value,omitempty"`
	Name     string   `json:"name,omitempty"`
	Ref      string   `json:"ref,omitempty"`
	Segment  string   `json:"segment,omitempty"`
	Proc     string   `json:"proc,omitempty"`
	Offset   int      `json:"offset,omitempty"`
	Raw      Bytes    `json:"raw,omitempty"`
	Label    string   `json:"label,omitempty"`
	Mnemonic string   `json:"mnemonic,omitempty"`
	Operands []string `json:"operands,omitempty"`
	Text     string   `json:"text,omitempty"`
}

// rawColumns is the number of instruction bytes shown per line.
const rawColumns = 4

func half(high bool) string {
	if high {
		return "H"
	}
	return "L"
}

// String formats the line in fixed columns. It returns plain text;
// colouring is applied by the caller.
func (l Line) String() string {
	switch l.Kind {
	case LineWord:
		s := fmt.Sprintf("%04x:  %04x  %s", l.Addr, l.Value, l.Name)
		if l.Ref != "" {
			s += " -> " + l.Ref
		}
		return s
	case LineByte:
		return fmt.Sprintf("%04x%s: %02x    %s", l.Addr, half(l.High), l.Value, l.Name)
	case LineInst:
		var b strings.Builder
		fmt.Fprintf(&b, "%04x%s %s+%04x %s:", l.Addr, half(l.High), l.Segment, l.Offset, l.Proc)
		for i := 0; i < rawColumns; i++ {
			if i < len(l.Raw) {
				fmt.Fprintf(&b, " %02x", l.Raw[i])
			} else {
				b.WriteString("   ")
			}
		}
		label := ""
		if l.Label != "" {
			label = l.Label + ":"
		}
		fmt.Fprintf(&b, " %-16s %-8s", label, l.Mnemonic)
		if len(l.Operands) > 0 {
			b.WriteString(" ")
			b.WriteString(strings.Join(l.Operands, " "))
		}
		return strings.TrimRight(b.String(), " ")
	case LineDiag:
		return "; " + l.Text
	}
	return ""
}

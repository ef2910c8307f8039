// Package pcode describes the p-code instruction set. Every opcode byte
// maps to a descriptor: a mnemonic plus an ordered list of operand tokens
// that tell the decoder how many bytes to consume and how to classify
// each value it reads.
package pcode

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidTableEntry reports a descriptor that names a token kind the
// decoder does not understand. It is a defect in the table, never in the
// image being decoded.
var ErrInvalidTableEntry = errors.New("invalid opcode table entry")

// Undefined is the mnemonic reported for opcodes without a descriptor.
const Undefined = "undefined"

// TokenKind is one element of a descriptor's operand list.
type TokenKind uint8

const (
	tokInvalid TokenKind = iota

	// Literal is a constant embedded in the opcode itself (Token.Value).
	Literal

	// Flags consume no bytes. They classify the next value-bearing token.
	FlagLiteral
	FlagLocal
	FlagGlobal
	FlagIntermediate
	FlagConst
	FlagProc
	FlagSegment
	FlagCode
	FlagCase

	// Byte-consuming encodings.
	VarByte // one byte, or two when the first is >= 128
	Word    // little-endian signed word
	UByte   // unsigned byte
	DByte   // unsigned byte used as a lexical level
	SByte   // signed byte

	numTokenKinds
)

var tokenNames = [...]string{
	tokInvalid:       "invalid",
	Literal:          "literal-value",
	FlagLiteral:      "literal",
	FlagLocal:        "local",
	FlagGlobal:       "global",
	FlagIntermediate: "intermediate",
	FlagConst:        "const",
	FlagProc:         "proc",
	FlagSegment:      "segment",
	FlagCode:         "code",
	FlagCase:         "case",
	VarByte:          "b",
	Word:             "w",
	UByte:            "ub",
	DByte:            "db",
	SByte:            "sb",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenNames) {
		return tokenNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", uint8(k))
}

// IsFlag reports whether k only classifies the following operand.
func (k TokenKind) IsFlag() bool {
	return k >= FlagLiteral && k <= FlagCase
}

// Valid reports whether k belongs to the token vocabulary.
func (k TokenKind) Valid() bool {
	return k > tokInvalid && k < numTokenKinds
}

// Token is a single entry of a descriptor. Value is only meaningful for
// Literal tokens.
type Token struct {
	Kind  TokenKind
	Value uint8
}

// Desc is an instruction descriptor.
type Desc struct {
	Mnemonic string
	Tokens   []Token
}

// Validate checks that every token of d is part of the vocabulary.
func (d Desc) Validate() error {
	for i, t := range d.Tokens {
		if !t.Kind.Valid() {
			return fmt.Errorf("%w: %s token %d has kind %s", ErrInvalidTableEntry, d.Mnemonic, i, t.Kind)
		}
	}
	return nil
}

// MinLen is the number of bytes d occupies when every variable-width
// operand takes its short form.
func (d Desc) MinLen() int {
	n := 1
	for _, t := range d.Tokens {
		switch t.Kind {
		case VarByte, UByte, DByte, SByte:
			n++
		case Word:
			n += 2
		}
	}
	return n
}

var table [256]*Desc

// Lookup returns the descriptor for op. Opcodes without an entry decode
// as a one-byte Undefined instruction.
func Lookup(op byte) Desc {
	if d := table[op]; d != nil {
		return *d
	}
	return Desc{Mnemonic: Undefined}
}

// Defined reports whether op has a descriptor.
func Defined(op byte) bool {
	return table[op] != nil
}

// Mnemonics returns every defined mnemonic once, sorted.
func Mnemonics() []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range table {
		if d == nil || seen[d.Mnemonic] {
			continue
		}
		seen[d.Mnemonic] = true
		out = append(out, d.Mnemonic)
	}
	sort.Strings(out)
	return out
}

func def(op byte, mnemonic string, tokens ...Token) {
	d := &Desc{Mnemonic: mnemonic, Tokens: tokens}
	if err := d.Validate(); err != nil {
		panic(err)
	}
	table[op] = d
}

func lit(v int) Token { return Token{Kind: Literal, Value: uint8(v)} }

var (
	literal      = Token{Kind: FlagLiteral}
	local        = Token{Kind: FlagLocal}
	global       = Token{Kind: FlagGlobal}
	intermediate = Token{Kind: FlagIntermediate}
	constant     = Token{Kind: FlagConst}
	proc         = Token{Kind: FlagProc}
	segment      = Token{Kind: FlagSegment}
	code         = Token{Kind: FlagCode}
	caseTable    = Token{Kind: FlagCase}

	b  = Token{Kind: VarByte}
	w  = Token{Kind: Word}
	ub = Token{Kind: UByte}
	db = Token{Kind: DByte}
	sb = Token{Kind: SByte}
)

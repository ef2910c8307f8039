// Package memory models the word-addressed store of the p-machine: 64K
// sixteen-bit words whose low and high bytes form the byte stream the
// interpreter executes.
package memory

import (
	"errors"
	"fmt"
)

// Size is the number of words in an image.
const Size = 65536

// ErrTruncated reports that input or an instruction ends before a
// complete word or operand could be read.
var ErrTruncated = errors.New("truncated input")

// TruncatedError carries the word address reached when data ran out.
type TruncatedError struct {
	Addr uint16
	What string
}

func (e *TruncatedError) Error() string {
	if e.What == "" {
		return fmt.Sprintf("truncated input at %04x", e.Addr)
	}
	return fmt.Sprintf("truncated %s at %04x", e.What, e.Addr)
}

func (e *TruncatedError) Is(target error) bool { return target == ErrTruncated }

// Image is a 64K-word memory image. The zero value is empty; use Load to
// place data in it.
type Image struct {
	words  [Size]uint16
	loaded [Size / 64]uint64
}

// New returns an empty image.
func New() *Image {
	return &Image{}
}

// Load stores data as consecutive little-endian words starting at base and
// returns the number of words written. A trailing odd byte is dropped and
// reported as truncated at the word it would have filled.
func (m *Image) Load(base uint16, data []byte) (int, error) {
	n := len(data) / 2
	if int(base)+n > Size {
		return 0, &TruncatedError{Addr: uint16(Size - 1), What: fmt.Sprintf("image of %d words at %04x", n, base)}
	}
	for i := 0; i < n; i++ {
		m.set(base+uint16(i), uint16(data[2*i])|uint16(data[2*i+1])<<8)
	}
	if len(data)%2 != 0 {
		return n, &TruncatedError{Addr: base + uint16(n), What: "word"}
	}
	return n, nil
}

// LoadWords stores words starting at base.
func (m *Image) LoadWords(base uint16, words []uint16) {
	for i, w := range words {
		m.set(base+uint16(i), w)
	}
}

func (m *Image) set(addr, w uint16) {
	m.words[addr] = w
	m.loaded[addr/64] |= 1 << (addr % 64)
}

// Loaded reports whether addr was written by Load or LoadWords.
func (m *Image) Loaded(addr uint16) bool {
	return m.loaded[addr/64]&(1<<(addr%64)) != 0
}

// Word returns the word at addr.
func (m *Image) Word(addr uint16) uint16 {
	return m.words[addr]
}

// Byte returns the low or high half of the word at addr.
func (m *Image) Byte(addr uint16, high bool) byte {
	w := m.words[addr]
	if high {
		return byte(w >> 8)
	}
	return byte(w)
}

// ByteAddr splits a byte offset from a word base into the word holding it
// and the half selector.
func ByteAddr(base uint16, off int) (addr uint16, high bool) {
	return base + uint16(off>>1), off&1 != 0
}

// ReadByte returns the byte at byte offset off from base. Bytes in words
// never loaded are reported as truncated input.
func (m *Image) ReadByte(base uint16, off int) (byte, error) {
	addr, high := ByteAddr(base, off)
	if !m.Loaded(addr) {
		return 0, &TruncatedError{Addr: addr}
	}
	return m.Byte(addr, high), nil
}

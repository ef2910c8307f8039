// Package region records what each word of a memory image means. Every
// address is classified at most once; later attempts at the same address
// either read back the stored region or fail with a conflict.
package region

import (
	"errors"
	"fmt"
	"sort"
)

// Kind is the tag of a region.
type Kind int

const (
	Unclassified Kind = iota
	BootParamPointer
	BootParams
	ThreadControlBlock
	SibVector
	Sib
	Segment
	CaseTable
)

var kindNames = [...]string{
	Unclassified:       "unclassified",
	BootParamPointer:   "boot-pointer",
	BootParams:         "boot-params",
	ThreadControlBlock: "tib",
	SibVector:          "sib-vector",
	Sib:                "sib",
	Segment:            "segment",
	CaseTable:          "case-table",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Region is one classified address range. Implementations are the
// pointer types declared in this package.
type Region interface {
	Kind() Kind
	// Len is the number of words the region covers.
	Len() int
}

// ErrConflict reports that a word was classified twice with different
// kinds, or by two regions that overlap.
var ErrConflict = errors.New("region conflict")

// ConflictError describes a classification that disagrees with the
// region already covering Addr. Start is where that region begins; it
// differs from Addr when the new region starts inside or runs into it.
type ConflictError struct {
	Addr  uint16
	Start uint16
	Have  Kind
	Want  Kind
}

func (e *ConflictError) Error() string {
	if e.Start != e.Addr {
		return fmt.Sprintf("region conflict at %04x: overlaps %s at %04x, now %s", e.Addr, e.Have, e.Start, e.Want)
	}
	return fmt.Sprintf("region conflict at %04x: classified as %s, now %s", e.Addr, e.Have, e.Want)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// nests reports whether a region of kind inner may lie inside one of kind
// outer. Case tables sit in the gaps of their segment; nothing else
// shares words.
func nests(inner, outer Kind) bool {
	return (inner == CaseTable && outer == Segment) || (inner == Segment && outer == CaseTable)
}

// Overlay maps word addresses to regions. Every word of a region's range
// records the region's start, so overlapping classifications are caught
// wherever they begin. Segment words are kept apart from the rest so
// case tables can nest in them.
type Overlay struct {
	regions  map[uint16]Region
	words    map[uint16]uint16
	segments map[uint16]uint16
}

// NewOverlay returns an empty overlay.
func NewOverlay() *Overlay {
	return &Overlay{
		regions:  make(map[uint16]Region),
		words:    make(map[uint16]uint16),
		segments: make(map[uint16]uint16),
	}
}

// Classify stores r at addr if its words are unclassified and returns it.
// If addr already holds a region of r's kind the stored region is
// returned unchanged; any other kind, or an overlap with another region,
// is a *ConflictError.
func (o *Overlay) Classify(addr uint16, r Region) (Region, error) {
	return o.Resolve(addr, r.Kind(), func() (Region, error) { return r, nil })
}

// Resolve is Classify for regions whose metadata must be read from the
// image. build runs only when addr is unclassified, so metadata fixed on
// first visit is never derived again.
func (o *Overlay) Resolve(addr uint16, kind Kind, build func() (Region, error)) (Region, error) {
	if have, ok := o.regions[addr]; ok {
		if have.Kind() != kind {
			return have, &ConflictError{Addr: addr, Start: addr, Have: have.Kind(), Want: kind}
		}
		return have, nil
	}
	if err := o.overlap(addr, 1, kind); err != nil {
		return nil, err
	}
	r, err := build()
	if err != nil {
		return nil, err
	}
	if r.Kind() != kind {
		return nil, fmt.Errorf("region at %04x: built %s for %s", addr, r.Kind(), kind)
	}
	n := span(addr, r.Len())
	if err := o.overlap(addr, n, kind); err != nil {
		return nil, err
	}

	o.regions[addr] = r
	owners := o.words
	if kind == Segment {
		owners = o.segments
	}
	for i := 0; i < n; i++ {
		owners[addr+uint16(i)] = addr
	}
	return r, nil
}

// span is the number of words of a region of length n at addr that lie
// in memory. Every region covers at least its first word.
func span(addr uint16, n int) int {
	return min(max(n, 1), 0x10000-int(addr))
}

// overlap returns a *ConflictError if any of the n words at addr belongs
// to another region that a region of kind may not share words with.
func (o *Overlay) overlap(addr uint16, n int, kind Kind) error {
	for i := 0; i < n; i++ {
		w := addr + uint16(i)
		for _, owners := range []map[uint16]uint16{o.words, o.segments} {
			start, ok := owners[w]
			if !ok {
				continue
			}
			have := o.regions[start].Kind()
			if nests(kind, have) {
				continue
			}
			return &ConflictError{Addr: addr, Start: start, Have: have, Want: kind}
		}
	}
	return nil
}

// Lookup returns the region starting at addr.
func (o *Overlay) Lookup(addr uint16) (Region, bool) {
	r, ok := o.regions[addr]
	return r, ok
}

// Owner returns the start and region of the innermost region covering
// addr.
func (o *Overlay) Owner(addr uint16) (uint16, Region, bool) {
	for _, owners := range []map[uint16]uint16{o.words, o.segments} {
		if start, ok := owners[addr]; ok {
			return start, o.regions[start], true
		}
	}
	return 0, nil, false
}

// KindAt returns the kind of the innermost region covering addr, or
// Unclassified.
func (o *Overlay) KindAt(addr uint16) Kind {
	if _, r, ok := o.Owner(addr); ok {
		return r.Kind()
	}
	return Unclassified
}

// Addrs returns the start address of every region in ascending order.
func (o *Overlay) Addrs() []uint16 {
	out := make([]uint16, 0, len(o.regions))
	for a := range o.regions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of classified regions.
func (o *Overlay) Len() int {
	return len(o.regions)
}

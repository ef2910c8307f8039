package image

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"pdis/internal/disasm"
	"pdis/internal/memory"
)

// Code file directory layout. The directory fills the first block and
// describes up to DirEntries segments in parallel arrays.
const (
	BlockSize  = 512
	DirEntries = 16

	dirExtents   = 0   // (block, length in words) pairs
	dirNames     = 64  // 8-byte names
	dirKinds     = 192 // segment kinds
	dirLoadAddrs = 224 // load addresses
	dirSegInfo   = 256 // segment number, machine type, version
	dirNext      = 288 // continuation directory block
	nameLen      = 8
)

// SegKind is the kind of a code-file segment.
type SegKind int

const (
	Linked SegKind = iota
	HostSeg
	SegProc
	UnitSeg
	SeparateSeg
	UnlinkedIntrinsic
	LinkedIntrinsic
	DataSeg
)

var segKindNames = [...]string{
	Linked:            "linked",
	HostSeg:           "hostseg",
	SegProc:           "segproc",
	UnitSeg:           "unitseg",
	SeparateSeg:       "seprtseg",
	UnlinkedIntrinsic: "unlinked-intrins",
	LinkedIntrinsic:   "linked-intrins",
	DataSeg:           "dataseg",
}

func (k SegKind) String() string {
	if k >= 0 && int(k) < len(segKindNames) {
		return segKindNames[k]
	}
	return fmt.Sprintf("SegKind(%d)", int(k))
}

// DirEntry is one code-file directory record.
type DirEntry struct {
	Index       int
	Block       int
	Length      int // words
	Name        string
	Kind        SegKind
	LoadAddr    uint16
	Number      int
	MachineType int
	Version     int
}

// Empty reports an unused directory slot.
func (d DirEntry) Empty() bool {
	return d.Block == 0 && d.Length == 0
}

// SegmentName is the name used for the segment's labels: its directory
// name, or seg<N> when the name is blank.
func (d DirEntry) SegmentName() string {
	if name := strings.ToLower(d.Name); name != "" {
		return name
	}
	return fmt.Sprintf("seg%d", d.Number)
}

// ParseDirectory decodes the directory block at the start of data and
// returns its records and the continuation block number.
func ParseDirectory(data []byte) ([]DirEntry, int, error) {
	if len(data) < BlockSize {
		return nil, 0, &memory.TruncatedError{Addr: uint16(len(data) / 2), What: "code file directory"}
	}
	le := binary.LittleEndian
	entries := make([]DirEntry, DirEntries)
	for i := range entries {
		info := le.Uint16(data[dirSegInfo+2*i:])
		name := data[dirNames+nameLen*i : dirNames+nameLen*(i+1)]
		entries[i] = DirEntry{
			Index:       i,
			Block:       int(le.Uint16(data[dirExtents+4*i:])),
			Length:      int(le.Uint16(data[dirExtents+4*i+2:])),
			Name:        strings.TrimRight(string(name), " \x00"),
			Kind:        SegKind(le.Uint16(data[dirKinds+2*i:])),
			LoadAddr:    le.Uint16(data[dirLoadAddrs+2*i:]),
			Number:      int(info & 0xff),
			MachineType: int(info>>8) & 0xf,
			Version:     int(info>>13) & 0x7,
		}
	}
	return entries, int(le.Uint16(data[dirNext:])), nil
}

// plausibleDirectory reports whether data starts with a directory whose
// extents and kinds are consistent with the rest of the file.
func plausibleDirectory(data []byte) bool {
	entries, _, err := ParseDirectory(data)
	if err != nil {
		return false
	}
	used := 0
	for _, e := range entries {
		if e.Empty() {
			continue
		}
		if e.Block == 0 || e.Kind > DataSeg {
			return false
		}
		if e.Kind != DataSeg && e.Block*BlockSize+e.Length*2 > len(data)+BlockSize-1 {
			return false
		}
		used++
	}
	return used > 0
}

func readCodeFile(f *File, data []byte) (*File, error) {
	entries, next, err := ParseDirectory(data)
	if err != nil {
		return nil, err
	}
	if next != 0 {
		f.Notes = append(f.Notes, (&UnsupportedError{
			Reason: fmt.Sprintf("continuation directory at block %d; only the first %d segments are listed", next, DirEntries),
		}).Error())
	}

	var segs []DirEntry
	for _, e := range entries {
		if !e.Empty() {
			segs = append(segs, e)
		}
	}
	sort.SliceStable(segs, func(i, j int) bool { return segs[i].Number < segs[j].Number })

	for _, e := range segs {
		u := &Unit{Name: e.SegmentName(), Dir: &e, Mem: memory.New()}
		f.Units = append(f.Units, u)
		slog.Debug("Code file segment", "index", e.Index, "name", e.Name, "kind", e.Kind,
			"number", e.Number, "block", e.Block, "length", e.Length)

		switch {
		case e.Kind > DataSeg:
			u.Notes = append(u.Notes, (&UnsupportedError{Segment: u.Name, Reason: fmt.Sprintf("segment kind %d", int(e.Kind))}).Error())
			continue
		case e.Kind == DataSeg:
			u.Notes = append(u.Notes, fmt.Sprintf("%s is a data segment of %d words; it holds no code", u.Name, e.Length))
			continue
		}

		start := e.Block * BlockSize
		end := start + e.Length*2
		if start > len(data) {
			start = len(data)
		}
		if end > len(data) {
			u.Notes = append(u.Notes, (&memory.TruncatedError{
				Addr: uint16((len(data) - start) / 2),
				What: fmt.Sprintf("segment %s (%d of %d words present)", u.Name, (len(data)-start)/2, e.Length),
			}).Error())
			end = len(data)
		}
		n, err := u.Mem.Load(0, data[start:end])
		if err != nil {
			u.Notes = append(u.Notes, err.Error())
		}
		u.Entries = []disasm.Entry{disasm.Segment{Base: 0, Length: n, Name: u.Name, Number: e.Number}}
	}
	return f, nil
}

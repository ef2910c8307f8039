// Package image turns raw p-system files into memory images and the
// entry points that decode them: boot ROM dumps, boot tracks, single code
// segments and multi-segment code files.
package image

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"pdis/internal/disasm"
	"pdis/internal/memory"
)

// ROMBase is the word address a boot ROM is mapped at.
const ROMBase = 0xf400

// Format names an input layout.
type Format int

const (
	FormatAuto Format = iota
	FormatROM
	FormatBoot
	FormatSegment
	FormatCodeFile
)

var formatNames = [...]string{
	FormatAuto:     "auto",
	FormatROM:      "rom",
	FormatBoot:     "boot",
	FormatSegment:  "segment",
	FormatCodeFile: "codefile",
}

func (f Format) String() string {
	if f >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Formats lists the accepted format names.
func Formats() []string {
	return formatNames[:]
}

// ParseFormat returns the format named s.
func ParseFormat(s string) (Format, error) {
	for i, name := range formatNames {
		if strings.EqualFold(s, name) {
			return Format(i), nil
		}
	}
	return FormatAuto, fmt.Errorf("unknown format %q (want one of %s)", s, strings.Join(formatNames[:], ", "))
}

// ErrUnsupportedVariant reports an input layout the decoder does not model.
var ErrUnsupportedVariant = errors.New("unsupported image variant")

// UnsupportedError names the segment, if any, whose layout is not modelled.
type UnsupportedError struct {
	Segment string
	Reason  string
}

func (e *UnsupportedError) Error() string {
	if e.Segment == "" {
		return "unsupported image variant: " + e.Reason
	}
	return fmt.Sprintf("unsupported image variant in %s: %s", e.Segment, e.Reason)
}

func (e *UnsupportedError) Is(target error) bool { return target == ErrUnsupportedVariant }

// Unit is one independently decoded memory image.
type Unit struct {
	Name    string
	Mem     *memory.Image
	Entries []disasm.Entry
	// Notes are problems found while reading the unit; they head its
	// listing.
	Notes []string
	// Dir is the directory record of a code-file segment.
	Dir *DirEntry
}

// File is the result of reading one input.
type File struct {
	Name   string
	Format Format
	Units  []*Unit
	// Notes apply to the file as a whole.
	Notes []string
}

// Options controls how an input is read.
type Options struct {
	Format Format
	// Base overrides the load address of ROM, boot and segment images.
	Base *uint16
	// SibCount is the length of the SIB vector of boot images.
	SibCount int
	// SegmentName names a single-segment image.
	SegmentName string
}

func (o Options) base(def uint16) uint16 {
	if o.Base != nil {
		return *o.Base
	}
	return def
}

func (o Options) segmentName() string {
	if o.SegmentName == "" {
		return "seg"
	}
	return o.SegmentName
}

// Read reads the input in r. Compressed containers are unwrapped first;
// with FormatAuto the layout is detected from name and contents.
func Read(name string, r io.Reader, opts Options) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	data, err = Unwrap(data, name)
	if err != nil {
		return nil, fmt.Errorf("unwrap %s: %w", name, err)
	}

	format := opts.Format
	if format == FormatAuto {
		format = Detect(name, data)
		slog.Debug("Detected image format", "file", name, "format", format)
	}

	f := &File{Name: name, Format: format}
	var u *Unit
	switch format {
	case FormatROM:
		u, err = loadBoot(data, opts.base(ROMBase), opts.SibCount)
	case FormatBoot:
		u, err = loadBoot(data, opts.base(0), opts.SibCount)
	case FormatSegment:
		u, err = loadSegment(data, opts.base(0), opts.segmentName())
	case FormatCodeFile:
		return readCodeFile(f, data)
	default:
		return nil, fmt.Errorf("%s: unknown format %s", name, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if u.Name == "" {
		u.Name = name
	}
	f.Units = []*Unit{u}
	return f, nil
}

// ReadROM reads a boot ROM dump mapped at ROMBase.
func ReadROM(r io.Reader) (*Unit, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return loadBoot(data, ROMBase, disasm.DefaultSibCount)
}

// ReadBootTrack reads a boot track loaded at address zero.
func ReadBootTrack(r io.Reader) (*Unit, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return loadBoot(data, 0, disasm.DefaultSibCount)
}

// ReadSegment reads a single code segment loaded at address zero.
func ReadSegment(r io.Reader, name string) (*Unit, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return loadSegment(data, 0, name)
}

// ReadCodeFile reads a code file: a directory block followed by the
// segments it describes. Each segment becomes its own unit.
func ReadCodeFile(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return readCodeFile(&File{Format: FormatCodeFile}, data)
}

// load places data at base. A trailing odd byte becomes a note; data that
// does not fit in memory is an error.
func load(data []byte, base uint16) (*memory.Image, int, []string, error) {
	mem := memory.New()
	n, err := mem.Load(base, data)
	if err == nil {
		return mem, n, nil, nil
	}
	if len(data)%2 == 0 || n != len(data)/2 || !errors.Is(err, memory.ErrTruncated) {
		return nil, 0, nil, err
	}
	return mem, n, []string{err.Error()}, nil
}

func loadBoot(data []byte, base uint16, sibCount int) (*Unit, error) {
	mem, _, notes, err := load(data, base)
	if err != nil {
		return nil, err
	}
	return &Unit{
		Mem:     mem,
		Entries: []disasm.Entry{disasm.Boot{Base: base, SibCount: sibCount}},
		Notes:   notes,
	}, nil
}

func loadSegment(data []byte, base uint16, name string) (*Unit, error) {
	mem, n, notes, err := load(data, base)
	if err != nil {
		return nil, err
	}
	return &Unit{
		Name:    name,
		Mem:     mem,
		Entries: []disasm.Entry{disasm.Segment{Base: base, Length: n, Name: name}},
		Notes:   notes,
	}, nil
}

// Detect guesses the layout of data. The file extension wins when it is
// recognised; otherwise a plausible code-file directory, then the shape of
// the first word decide.
func Detect(name string, data []byte) Format {
	name = strings.TrimSuffix(strings.TrimSuffix(strings.ToLower(name), ".gz"), ".zip")
	switch filepath.Ext(name) {
	case ".rom":
		return FormatROM
	case ".code", ".cod":
		return FormatCodeFile
	case ".seg":
		return FormatSegment
	case ".boot", ".trk":
		return FormatBoot
	}

	if plausibleDirectory(data) {
		return FormatCodeFile
	}
	words := len(data) / 2
	if words == 0 {
		return FormatROM
	}
	first := int(data[0]) | int(data[1])<<8
	switch {
	case first >= ROMBase && first < ROMBase+words:
		return FormatROM
	case first == words-1:
		return FormatSegment
	case first > 0 && first < words:
		return FormatBoot
	}
	return FormatROM
}

func hasPrefix(data []byte, magic ...byte) bool {
	return bytes.HasPrefix(data, magic)
}

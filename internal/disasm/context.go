package disasm

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"pdis/internal/memory"
	"pdis/internal/pcode"
	"pdis/internal/region"
)

// Pass identifies which of the two decoding passes is running.
type Pass int

const (
	Discover Pass = iota + 1
	Render
)

// Entry is a starting point for the discovery pass.
type Entry interface {
	discover(c *Context)
}

// Result is the output of a completed run.
type Result struct {
	Lines   []Line
	Summary Summary
	Regions *region.Overlay
	Labels  *Labels
}

// Context holds the state shared by every component while one image is
// decoded: the memory image, the region overlay and the label table.
// It is used for exactly one Run; decode another image with a new one.
type Context struct {
	mem     *memory.Image
	regions *region.Overlay
	labels  *Labels
	lookup  func(byte) pcode.Desc
	log     *log.Logger

	pass      Pass
	inSegment bool
	notes     []string
	lines     []Line
	summary   Summary
	cur       *SegmentSummary
	listed    map[uint16]bool
	fatal     error
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the logger used for discovery-pass events.
func WithLogger(l *log.Logger) Option {
	return func(c *Context) {
		if l != nil {
			c.log = l
		}
	}
}

// WithNotes seeds diagnostics that head the listing, such as problems
// found while reading the image.
func WithNotes(notes ...string) Option {
	return func(c *Context) {
		c.notes = append(c.notes, notes...)
	}
}

// New returns a Context over mem with empty region and label tables.
func New(mem *memory.Image, opts ...Option) *Context {
	c := &Context{
		mem:     mem,
		regions: region.NewOverlay(),
		labels:  newLabels(),
		lookup:  pcode.Lookup,
		log:     log.New(io.Discard),
		listed:  make(map[uint16]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Disassemble decodes mem from entries in a fresh Context.
func Disassemble(mem *memory.Image, entries []Entry, opts ...Option) (*Result, error) {
	return New(mem, opts...).Run(entries...)
}

// Run performs the discovery pass from each entry and then the render
// pass. Structural problems in the image become diagnostic lines; the
// returned error is reserved for defects that make the output
// meaningless, such as a bad opcode table.
func (c *Context) Run(entries ...Entry) (*Result, error) {
	if c.pass != 0 {
		return nil, errors.New("disasm: context already used")
	}

	c.pass = Discover
	for _, e := range entries {
		e.discover(c)
		if c.fatal != nil {
			return nil, c.fatal
		}
	}
	c.log.Debug("Discovery complete", "regions", c.regions.Len(), "labels", c.labels.Len())

	c.pass = Render
	for _, n := range c.notes {
		c.lines = append(c.lines, Line{Kind: LineDiag, Text: n})
	}
	if len(c.notes) > 0 {
		c.blank()
	}
	c.render()
	if c.fatal != nil {
		return nil, c.fatal
	}

	return &Result{
		Lines:   c.lines,
		Summary: c.summary,
		Regions: c.regions,
		Labels:  c.labels,
	}, nil
}

// render lists every classified region in ascending address order.
// Regions nested inside an already listed range were printed by it; a
// nested region that its container could not place, such as a case table
// inside a procedure body, is reported instead.
func (c *Context) render() {
	next := 0
	var outer uint16
	for _, addr := range c.regions.Addrs() {
		if int(addr) < next {
			if !c.listed[addr] {
				r, _ := c.regions.Lookup(addr)
				o, _ := c.regions.Lookup(outer)
				c.diag("%s at %04x lies inside %s at %04x and is not listed", r.Kind(), addr, o.Kind(), outer)
				c.blank()
			}
			continue
		}
		r, _ := c.regions.Lookup(addr)
		n := c.renderRegion(addr, r)
		c.blank()
		outer, next = addr, int(addr)+max(n, 1)
		if c.fatal != nil {
			return
		}
	}
}

// problem records a non-fatal error as a diagnostic. An invalid opcode
// table stops the run.
func (c *Context) problem(err error) {
	if errors.Is(err, pcode.ErrInvalidTableEntry) {
		if c.fatal == nil {
			c.fatal = err
		}
		return
	}
	c.diag("%v", err)
}

// diag reports a condition in the image. Discovery-pass diagnostics
// raised inside a segment are raised again when the segment is rendered;
// the rest are kept and printed at the top of the listing.
func (c *Context) diag(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	switch c.pass {
	case Discover:
		c.log.Warn(msg)
		if !c.inSegment {
			c.notes = append(c.notes, msg)
		}
	case Render:
		c.lines = append(c.lines, Line{Kind: LineDiag, Text: msg})
	}
}

func (c *Context) emit(l Line) {
	if c.pass == Render {
		c.lines = append(c.lines, l)
	}
}

func (c *Context) blank() {
	c.emit(Line{Kind: LineBlank})
}

// word reads the word at addr, listing it under name.
func (c *Context) word(addr uint16, name string) uint16 {
	w := c.mem.Word(addr)
	c.emitWord(addr, w, name)
	return w
}

func (c *Context) emitWord(addr, value uint16, name string) {
	c.emit(Line{Kind: LineWord, Addr: addr, Value: value, Name: name})
}

// byteField reads one half of the word at addr, listing it under name.
func (c *Context) byteField(addr uint16, high bool, name string) uint8 {
	b := c.mem.Byte(addr, high)
	c.emitByte(addr, high, b, name)
	return b
}

func (c *Context) emitByte(addr uint16, high bool, value uint8, name string) {
	c.emit(Line{Kind: LineByte, Addr: addr, High: high, Value: uint16(value), Name: name})
}

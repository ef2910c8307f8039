package disasm

import (
	"fmt"
	"sort"

	"pdis/internal/memory"
	"pdis/internal/region"
)

// Segment is an entry point for a code segment at Base of Length words.
type Segment struct {
	Base   uint16
	Length int
	Name   string
	Number int
}

func (e Segment) discover(c *Context) {
	c.walkSegment(e.Base, e.Length, e.Name, e.Number)
}

type segWalk struct {
	base   uint16
	name   string
	number int
	length int
	// limit is the number of words instructions may be read from: the
	// declared length or the procedure directory, whichever reaches
	// further.
	limit int
}

type procWalk struct {
	seg     *segWalk
	ordinal int
	name    string
	seq     int
}

// walkSegment classifies and walks the segment at base. It returns the
// number of words it attributed.
func (c *Context) walkSegment(base uint16, length int, name string, number int) int {
	r, err := c.regions.Classify(base, &region.Seg{Number: number, Name: name, Length: length})
	if err != nil {
		c.problem(fmt.Errorf("segment %s at %04x: %w", name, base, err))
		return 1
	}
	seg := r.(*region.Seg)
	if c.pass == Discover {
		c.log.Debug("Segment", "name", seg.Name, "base", fmt.Sprintf("%04x", base), "length", seg.Length)
	}

	c.inSegment = true
	defer func() { c.inSegment = false }()
	return c.navigate(&segWalk{base: base, name: seg.Name, number: seg.Number, length: seg.Length})
}

type procEntry struct {
	ordinal int
	start   int
}

// navigate walks the procedures of s in ascending start order, listing
// the words between them as gap data, then the procedure directory.
func (c *Context) navigate(s *segWalk) int {
	if c.pass == Render {
		c.cur = &SegmentSummary{Name: s.name, Number: s.number, Base: s.base, Length: s.length, Line: len(c.lines)}
		defer func() {
			c.summary.Segments = append(c.summary.Segments, *c.cur)
			c.cur = nil
		}()
	}

	dirOff := int(c.word(s.base, s.name+".procdir"))
	c.blank()
	if dirOff != s.length-1 {
		c.diag("segment length %04x, proc dir offset %04x", s.length, dirOff)
	}
	s.limit = max(s.length, dirOff+1)
	if int(s.base)+s.limit > memory.Size {
		c.diag("segment %s at %04x extends past the end of memory", s.name, s.base)
		s.limit = memory.Size - int(s.base)
	}

	dir := s.base + uint16(dirOff)
	segNum := int8(c.mem.Byte(dir, false))
	numProc := int(c.mem.Byte(dir, true))
	dirStart := dirOff - numProc
	if c.cur != nil {
		c.cur.DirOffset = dirOff
		c.cur.DirNumber = int(segNum)
	}

	var procs []procEntry
	byStart := make(map[int]int)
	for i := 1; i <= numProc; i++ {
		start := int(c.mem.Word(dir - uint16(i)))
		if prev, dup := byStart[start]; dup {
			c.problem(fmt.Errorf("%w: %s.proc%d and %s.proc%d both start at %04x; keeping proc%d",
				region.ErrConflict, s.name, prev, s.name, i, start, prev))
			continue
		}
		if start < 2 || start >= s.limit {
			c.diag("%s.proc%d start %04x lies outside the segment", s.name, i, start)
			continue
		}
		byStart[start] = i
		procs = append(procs, procEntry{ordinal: i, start: start})
	}
	sort.Slice(procs, func(i, j int) bool { return procs[i].start < procs[j].start })

	cursor := 1
	for _, pe := range procs {
		if pe.start-1 > cursor {
			c.gap(s, cursor, pe.start-1)
		} else if pe.start-1 < cursor {
			c.diag("%s.proc%d at %04x overlaps the region ending at %04x", s.name, pe.ordinal, pe.start, cursor)
		}
		cursor = max(cursor, c.procedure(s, pe.ordinal, pe.start))
		if c.fatal != nil {
			return cursor
		}
	}
	if cursor < dirStart {
		c.gap(s, cursor, dirStart)
	}

	for i := numProc; i >= 1; i-- {
		c.word(dir-uint16(i), fmt.Sprintf("%s.proc%d_offset", s.name, i))
	}
	c.byteField(dir, false, s.name+".segnum")
	c.byteField(dir, true, s.name+".numproc")

	end := dirOff + 1
	if last := min(s.length, s.limit); end < last {
		c.blank()
		c.gap(s, end, last)
		end = last
	}
	return end
}

// procedure decodes one procedure and returns the segment word offset
// following it. Procedures are padded to a word boundary.
func (c *Context) procedure(s *segWalk, ordinal, start int) int {
	p := &procWalk{seg: s, ordinal: ordinal, name: fmt.Sprintf("proc%d", ordinal)}
	prefix := s.name + "." + p.name
	firstLine := len(c.lines)
	endOff := int(c.word(s.base+uint16(start-1), prefix+".endoffset"))
	localSize := c.word(s.base+uint16(start), prefix+".localsize")

	off := start*2 + 2
	insts := 0
	for off <= endOff {
		in, err := c.decode(p, off)
		if err != nil {
			c.problem(err)
			c.blank()
			return (off + 1) / 2
		}
		c.emitInst(p, in)
		off += in.Len()
		insts++
	}
	if off&1 != 0 {
		if b, err := c.segByte(s, off); err == nil {
			addr, high := memory.ByteAddr(s.base, off)
			c.emitByte(addr, high, b, prefix+".align")
		}
		off++
	}
	c.blank()

	if c.cur != nil {
		c.cur.Procedures = append(c.cur.Procedures, ProcSummary{
			Name:      p.name,
			Ordinal:   ordinal,
			Start:     start,
			End:       endOff,
			LocalSize: localSize,
			Insts:     insts,
			Labels:    c.countLabels(s, start*2+2, off),
			Line:      firstLine,
		})
	}
	return off / 2
}

func (c *Context) emitInst(p *procWalk, in *Inst) {
	if c.pass != Render {
		return
	}
	addr, high := memory.ByteAddr(p.seg.base, in.Offset)
	label, _ := c.labels.Lookup(p.seg.base, in.Offset)
	c.emit(Line{
		Kind:     LineInst,
		Addr:     addr,
		High:     high,
		Segment:  p.seg.name,
		Proc:     p.name,
		Offset:   in.Offset,
		Raw:      Bytes(in.Raw),
		Label:    label,
		Mnemonic: in.Mnemonic,
		Operands: in.Texts(),
	})
}

// gap lists the words [from, to) of s that belong to no procedure. A
// region registered inside the gap, typically a case table, is listed
// in place; anything else is opaque data.
func (c *Context) gap(s *segWalk, from, to int) {
	if c.pass != Render {
		return
	}
	for w := from; w < to; {
		addr := s.base + uint16(w)
		if r, ok := c.regions.Lookup(addr); ok && r.Kind() != region.Segment {
			n := max(c.renderRegion(addr, r), 1)
			if w+n > to {
				c.diag("%s at %04x runs %d words past the gap ending at %04x", r.Kind(), addr, w+n-to, s.base+uint16(to))
			}
			w += n
			continue
		}
		c.emitWord(addr, c.mem.Word(addr), fmt.Sprintf("%s.word[%04x]", s.name, w))
		w++
	}
}

func (c *Context) countLabels(s *segWalk, from, to int) int {
	n := 0
	for off := from; off < to; off++ {
		if _, ok := c.labels.Lookup(s.base, off); ok {
			n++
		}
	}
	return n
}

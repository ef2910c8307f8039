package disasm

import (
	"fmt"

	"pdis/internal/memory"
	"pdis/internal/region"
)

// caseTable resolves the case table at addr referenced by an instruction
// of p ending at jumpBase. The first visit fixes the table's bounds and
// owner and names every target; later visits read the stored table.
func (c *Context) caseTable(p *procWalk, addr uint16, jumpBase int) {
	created := false
	r, err := c.regions.Resolve(addr, region.CaseTable, func() (region.Region, error) {
		t := &region.Cases{
			SegBase:  p.seg.base,
			Segment:  p.seg.name,
			Proc:     p.name,
			Group:    fmt.Sprintf("%s.%s.case%04x", p.seg.name, p.name, addr-p.seg.base),
			JumpBase: jumpBase,
			Min:      int16(c.mem.Word(addr)),
			Max:      int16(c.mem.Word(addr + 1)),
		}
		end := int(addr) + t.Len()
		if end > memory.Size {
			return nil, &memory.TruncatedError{Addr: memory.Size - 1, What: "case table"}
		}
		for a := int(addr); a < end; a++ {
			if !c.mem.Loaded(uint16(a)) {
				return nil, &memory.TruncatedError{Addr: uint16(a), What: "case table"}
			}
		}
		created = true
		return t, nil
	})
	if err != nil {
		c.problem(fmt.Errorf("case table at %04x for %s.%s: %w", addr, p.seg.name, p.name, err))
		return
	}
	if !created {
		return
	}

	t := r.(*region.Cases)
	c.log.Debug("Case table", "addr", fmt.Sprintf("%04x", addr), "group", t.Group, "min", t.Min, "max", t.Max)
	for i := 0; i < t.Count(); i++ {
		entry := int16(c.mem.Word(addr + 2 + uint16(i)))
		c.label(p, t.JumpBase+int(entry))
	}
}

// renderCases lists a case table: its bounds, then one entry per
// selector value with the label of its target.
func (c *Context) renderCases(addr uint16, t *region.Cases) int {
	c.emitWord(addr, uint16(t.Min), t.Group+".min")
	c.emitWord(addr+1, uint16(t.Max), t.Group+".max")
	for i := 0; i < t.Count(); i++ {
		a := addr + 2 + uint16(i)
		e := c.mem.Word(a)
		target := t.JumpBase + int(int16(e))
		ref, ok := c.labels.Lookup(t.SegBase, target)
		if !ok {
			ref = fmt.Sprintf("%s+%04x", t.Segment, target)
		}
		c.emit(Line{
			Kind:  LineWord,
			Addr:  a,
			Value: e,
			Name:  fmt.Sprintf("%s[%d]", t.Group, int(t.Min)+i),
			Ref:   ref,
		})
	}
	if c.cur != nil {
		c.cur.CaseTables++
	}
	return t.Len()
}

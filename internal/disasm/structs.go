package disasm

import (
	"fmt"

	"pdis/internal/memory"
	"pdis/internal/region"
)

// Nil is the machine's nil pointer; SIB vector entries holding it, or
// zero, name no segment.
const Nil = 0xfc00

// DefaultSibCount is the number of system segments listed in the SIB
// vector of a boot image.
const DefaultSibCount = 2

// Boot is an entry point for a boot image whose first word, at Base,
// points to the boot parameter block.
type Boot struct {
	Base     uint16
	SibCount int
}

func (e Boot) discover(c *Context) {
	n := e.SibCount
	if n <= 0 {
		n = DefaultSibCount
	}

	r, err := c.regions.Resolve(e.Base, region.BootParamPointer, func() (region.Region, error) {
		if err := c.loaded(e.Base, 1, "boot pointer"); err != nil {
			return nil, err
		}
		return &region.BootPointer{Target: c.mem.Word(e.Base)}, nil
	})
	if err != nil {
		c.problem(fmt.Errorf("boot pointer at %04x: %w", e.Base, err))
		return
	}
	ptr := r.(*region.BootPointer)

	r, err = c.regions.Resolve(ptr.Target, region.BootParams, func() (region.Region, error) {
		return c.readBoot(ptr.Target)
	})
	if err != nil {
		c.problem(fmt.Errorf("boot parameters at %04x: %w", ptr.Target, err))
		return
	}
	boot := r.(*region.Boot)

	if _, err := c.regions.Resolve(boot.CTP, region.ThreadControlBlock, func() (region.Region, error) {
		return c.readTIB(boot.CTP)
	}); err != nil {
		c.problem(fmt.Errorf("tib at %04x: %w", boot.CTP, err))
	}

	r, err = c.regions.Resolve(boot.SDP, region.SibVector, func() (region.Region, error) {
		return c.readVector(boot.SDP, n)
	})
	if err != nil {
		c.problem(fmt.Errorf("sib vector at %04x: %w", boot.SDP, err))
		return
	}
	vec := r.(*region.Vector)

	for i, p := range vec.Entries {
		if p == 0 || p == Nil {
			continue
		}
		r, err := c.regions.Resolve(p, region.Sib, func() (region.Region, error) {
			return c.readSIB(p, i)
		})
		if err != nil {
			c.problem(fmt.Errorf("sib%d at %04x: %w", i, p, err))
			continue
		}
		sib := r.(*region.SIB)
		c.walkSegment(sib.SegBase, int(sib.SegLeng), fmt.Sprintf("seg%d", i), i)
		if c.fatal != nil {
			return
		}
	}
}

// loaded reports truncated input if any of the n words at addr lies
// outside the image.
func (c *Context) loaded(addr uint16, n int, what string) error {
	for i := 0; i < n; i++ {
		a := int(addr) + i
		if a >= memory.Size {
			return &memory.TruncatedError{Addr: memory.Size - 1, What: what}
		}
		if !c.mem.Loaded(uint16(a)) {
			return &memory.TruncatedError{Addr: uint16(a), What: what}
		}
	}
	return nil
}

func (c *Context) readBoot(addr uint16) (*region.Boot, error) {
	if err := c.loaded(addr, region.BootParamsLen, "boot parameters"); err != nil {
		return nil, err
	}
	return &region.Boot{
		CTP: c.mem.Word(addr),
		SDP: c.mem.Word(addr + 1),
		RQP: c.mem.Word(addr + 2),
	}, nil
}

func (c *Context) readTIB(addr uint16) (*region.TIB, error) {
	if err := c.loaded(addr, region.TIBLen, "tib"); err != nil {
		return nil, err
	}
	w := func(i uint16) uint16 { return c.mem.Word(addr + i) }
	return &region.TIB{
		WaitQ:   w(0),
		Prior:   c.mem.Byte(addr+1, false),
		Flags:   c.mem.Byte(addr+1, true),
		SPLow:   w(2),
		SPUpr:   w(3),
		SP:      w(4),
		MP:      w(5),
		BP:      w(6),
		IPC:     w(7),
		SegB:    w(8),
		HangP:   w(9),
		IORslt:  w(10),
		SibsVec: w(11),
	}, nil
}

func (c *Context) readVector(addr uint16, n int) (*region.Vector, error) {
	if err := c.loaded(addr, n, "sib vector"); err != nil {
		return nil, err
	}
	v := &region.Vector{Entries: make([]uint16, n)}
	for i := range v.Entries {
		v.Entries[i] = c.mem.Word(addr + uint16(i))
	}
	return v, nil
}

func (c *Context) readSIB(addr uint16, index int) (*region.SIB, error) {
	if err := c.loaded(addr, region.SIBLen, "sib"); err != nil {
		return nil, err
	}
	return &region.SIB{
		Index:   index,
		SegBase: c.mem.Word(addr),
		SegLeng: c.mem.Word(addr + 1),
		SegRefs: c.mem.Word(addr + 2),
		SegAddr: c.mem.Word(addr + 3),
		SegUnit: c.mem.Word(addr + 4),
		PrevSP:  c.mem.Word(addr + 5),
	}, nil
}

// renderRegion lists the region at addr and returns the number of words
// it covers.
func (c *Context) renderRegion(addr uint16, r region.Region) int {
	c.listed[addr] = true
	switch r := r.(type) {
	case *region.BootPointer:
		c.emit(Line{Kind: LineWord, Addr: addr, Value: r.Target, Name: "boot"})
	case *region.Boot:
		c.emitWord(addr, r.CTP, "boot.ctp")
		c.emitWord(addr+1, r.SDP, "boot.sdp")
		c.emitWord(addr+2, r.RQP, "boot.rqp")
	case *region.TIB:
		c.emitWord(addr, r.WaitQ, "tib.waitq")
		c.emitByte(addr+1, false, r.Prior, "tib.prior")
		c.emitByte(addr+1, true, r.Flags, "tib.flags")
		for i, f := range []struct {
			v    uint16
			name string
		}{
			{r.SPLow, "tib.splow"},
			{r.SPUpr, "tib.spupr"},
			{r.SP, "tib.sp"},
			{r.MP, "tib.mp"},
			{r.BP, "tib.bp"},
			{r.IPC, "tib.ipc"},
			{r.SegB, "tib.segb"},
			{r.HangP, "tib.hangp"},
			{r.IORslt, "tib.iorslt"},
			{r.SibsVec, "tib.sibsvec"},
		} {
			c.emitWord(addr+2+uint16(i), f.v, f.name)
		}
	case *region.Vector:
		for i, p := range r.Entries {
			c.emitWord(addr+uint16(i), p, fmt.Sprintf("sdp[%d]", i))
		}
	case *region.SIB:
		name := fmt.Sprintf("sib%d", r.Index)
		c.emitWord(addr, r.SegBase, name+".segbase")
		c.emitWord(addr+1, r.SegLeng, name+".segleng")
		c.emitWord(addr+2, r.SegRefs, name+".segrefs")
		c.emitWord(addr+3, r.SegAddr, name+".segaddr")
		c.emitWord(addr+4, r.SegUnit, name+".segunit")
		c.emitWord(addr+5, r.PrevSP, name+".prevsp")
	case *region.Seg:
		return c.walkSegment(addr, r.Length, r.Name, r.Number)
	case *region.Cases:
		return c.renderCases(addr, r)
	default:
		c.diag("unhandled %s region at %04x", r.Kind(), addr)
		return 1
	}
	return r.Len()
}

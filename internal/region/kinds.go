package region

// Words occupied by the fixed-layout records.
const (
	BootParamsLen = 3
	TIBLen        = 12
	SIBLen        = 6
)

// BootPointer is the word at the start of a boot image naming the boot
// parameter block.
type BootPointer struct {
	Target uint16
}

func (*BootPointer) Kind() Kind { return BootParamPointer }
func (*BootPointer) Len() int   { return 1 }

// Boot is the boot parameter block.
type Boot struct {
	CTP uint16 // current thread
	SDP uint16 // segment dictionary (SIB vector)
	RQP uint16 // ready queue
}

func (*Boot) Kind() Kind { return BootParams }
func (*Boot) Len() int   { return BootParamsLen }

// TIB is a thread information block.
type TIB struct {
	WaitQ   uint16
	Prior   uint8
	Flags   uint8
	SPLow   uint16
	SPUpr   uint16
	SP      uint16
	MP      uint16
	BP      uint16
	IPC     uint16
	SegB    uint16
	HangP   uint16
	IORslt  uint16
	SibsVec uint16
}

func (*TIB) Kind() Kind { return ThreadControlBlock }
func (*TIB) Len() int   { return TIBLen }

// Vector is the SIB vector: one pointer per system segment.
type Vector struct {
	Entries []uint16
}

func (*Vector) Kind() Kind { return SibVector }
func (v *Vector) Len() int { return len(v.Entries) }

// SIB is a segment information block.
type SIB struct {
	Index   int
	SegBase uint16
	SegLeng uint16
	SegRefs uint16
	SegAddr uint16
	SegUnit uint16
	PrevSP  uint16
}

func (*SIB) Kind() Kind { return Sib }
func (*SIB) Len() int   { return SIBLen }

// Seg is a code segment. Length is the declared length in words.
type Seg struct {
	Number int
	Name   string
	Length int
}

func (*Seg) Kind() Kind { return Segment }
func (s *Seg) Len() int { return s.Length }

// Cases is a case-jump table. Targets are byte offsets JumpBase+entry
// within the segment at SegBase. Group prefixes the names of the
// table's listed fields and is unique within the segment.
type Cases struct {
	SegBase  uint16
	Segment  string
	Proc     string
	Group    string
	JumpBase int
	Min      int16
	Max      int16
}

func (*Cases) Kind() Kind { return CaseTable }

// Len is the two bound words plus one word per selector value.
func (c *Cases) Len() int { return c.Count() + 2 }

// Count is the number of entries. An inverted range has none.
func (c *Cases) Count() int {
	if c.Max < c.Min {
		return 0
	}
	return int(c.Max) - int(c.Min) + 1
}

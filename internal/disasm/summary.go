package disasm

// Summary describes the structure found by the render pass.
type Summary struct {
	Segments []SegmentSummary `json:"segments"`
}

// SegmentSummary describes one listed segment. Line is the index of its
// first listing line.
type SegmentSummary struct {
	Name       string        `json:"name"`
	Number     int           `json:"number"`
	DirNumber  int           `json:"dir_number"`
	Base       uint16        `json:"base"`
	Length     int           `json:"length"`
	DirOffset  int           `json:"dir_offset"`
	Procedures []ProcSummary `json:"procedures"`
	CaseTables int           `json:"case_tables"`
	Line       int           `json:"line"`
}

// ProcSummary describes one decoded procedure.
type ProcSummary struct {
	Name      string `json:"name"`
	Ordinal   int    `json:"ordinal"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
	LocalSize uint16 `json:"local_size"`
	Insts     int    `json:"insts"`
	Labels    int    `json:"labels"`
	Line      int    `json:"line"`
}

// Procedures returns the number of procedures across every segment.
func (s Summary) Procedures() int {
	n := 0
	for _, seg := range s.Segments {
		n += len(seg.Procedures)
	}
	return n
}

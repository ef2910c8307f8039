package region

import (
	"errors"
	"reflect"
	"testing"
)

func TestClassifyIdempotent(t *testing.T) {
	o := NewOverlay()
	first, err := o.Classify(0x100, &Seg{Number: 1, Name: "seg1", Length: 40})
	if err != nil {
		t.Fatalf("first Classify failed: %v", err)
	}
	second, err := o.Classify(0x100, &Seg{Number: 1, Name: "seg1", Length: 40})
	if err != nil {
		t.Fatalf("second Classify failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Classify returned %+v then %+v", first, second)
	}
	if first != second {
		t.Error("second Classify did not return the stored region")
	}
	if o.Len() != 1 {
		t.Errorf("Len() = %d, want 1", o.Len())
	}
}

func TestClassifyConflict(t *testing.T) {
	kinds := []Region{
		&BootPointer{},
		&Boot{},
		&TIB{},
		&Vector{Entries: []uint16{1, 2}},
		&SIB{},
		&Cases{Min: 0, Max: 1},
	}
	for _, r := range kinds {
		t.Run(r.Kind().String(), func(t *testing.T) {
			o := NewOverlay()
			if _, err := o.Classify(0x20, &Seg{Length: 8}); err != nil {
				t.Fatal(err)
			}
			_, err := o.Classify(0x20, r)
			if !errors.Is(err, ErrConflict) {
				t.Fatalf("Classify(%s) over segment = %v, want ErrConflict", r.Kind(), err)
			}
			var ce *ConflictError
			if !errors.As(err, &ce) {
				t.Fatalf("error %T is not *ConflictError", err)
			}
			if ce.Addr != 0x20 || ce.Have != Segment || ce.Want != r.Kind() {
				t.Errorf("conflict = %+v", ce)
			}
			if o.KindAt(0x20) != Segment {
				t.Errorf("stored kind changed to %s", o.KindAt(0x20))
			}
		})
	}
}

func TestResolveBuildsOnce(t *testing.T) {
	o := NewOverlay()
	calls := 0
	build := func() (Region, error) {
		calls++
		return &Cases{Min: 5, Max: int16(4 + calls*3)}, nil
	}

	r1, err := o.Resolve(0x40, CaseTable, build)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := o.Resolve(0x40, CaseTable, build)
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("build called %d times, want 1", calls)
	}
	if r1.Len() != 5 || r2.Len() != 5 {
		t.Errorf("Len() = %d then %d, want 5 both times", r1.Len(), r2.Len())
	}
}

func TestResolveBuildError(t *testing.T) {
	o := NewOverlay()
	boom := errors.New("boom")
	if _, err := o.Resolve(1, Sib, func() (Region, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("Resolve = %v, want boom", err)
	}
	if _, ok := o.Lookup(1); ok {
		t.Error("failed build stored a region")
	}
}

func TestAddrsSorted(t *testing.T) {
	o := NewOverlay()
	for _, a := range []uint16{0xf400, 0x0010, 0x8000, 0x0001} {
		if _, err := o.Classify(a, &BootPointer{}); err != nil {
			t.Fatal(err)
		}
	}
	got := o.Addrs()
	want := []uint16{0x0001, 0x0010, 0x8000, 0xf400}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Addrs() = %04x, want %04x", got, want)
	}
}

func TestCaseTableLen(t *testing.T) {
	tests := []struct {
		min, max int16
		want     int
	}{
		{5, 7, 5},
		{0, 0, 3},
		{3, 2, 2},
		{-2, 1, 6},
	}
	for _, tt := range tests {
		c := &Cases{Min: tt.min, Max: tt.max}
		if c.Len() != tt.want {
			t.Errorf("Cases{%d..%d}.Len() = %d, want %d", tt.min, tt.max, c.Len(), tt.want)
		}
	}
}

func TestClassifyOverlap(t *testing.T) {
	tests := []struct {
		name  string
		first Region
		at    uint16
		next  Region
		start uint16
		have  Kind
	}{
		{"vector inside tib", &TIB{}, 0x104, &Vector{Entries: []uint16{1, 2}}, 0x100, ThreadControlBlock},
		{"sib over tib tail", &TIB{}, 0x10b, &SIB{}, 0x100, ThreadControlBlock},
		{"tib running into boot params", &Boot{}, 0xfe, &TIB{}, 0x100, BootParams},
		{"segment over tib", &TIB{}, 0xf8, &Seg{Length: 16}, 0x100, ThreadControlBlock},
		{"tib inside segment", &Seg{Length: 16}, 0x108, &TIB{}, 0x100, Segment},
		{"overlapping segments", &Seg{Length: 16}, 0x10f, &Seg{Length: 4}, 0x100, Segment},
		{"overlapping case tables", &Cases{Min: 0, Max: 3}, 0x102, &Cases{Min: 0, Max: 0}, 0x100, CaseTable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOverlay()
			first := uint16(0x100)
			if _, err := o.Classify(first, tt.first); err != nil {
				t.Fatal(err)
			}
			_, err := o.Classify(tt.at, tt.next)
			var ce *ConflictError
			if !errors.As(err, &ce) {
				t.Fatalf("Classify(%04x, %s) = %v, want *ConflictError", tt.at, tt.next.Kind(), err)
			}
			if !errors.Is(err, ErrConflict) {
				t.Error("conflict does not match ErrConflict")
			}
			if ce.Addr != tt.at || ce.Start != tt.start || ce.Have != tt.have || ce.Want != tt.next.Kind() {
				t.Errorf("conflict = %+v", ce)
			}
			if _, ok := o.Lookup(tt.at); ok {
				t.Errorf("%04x registered despite the conflict", tt.at)
			}
			if o.Len() != 1 {
				t.Errorf("Len() = %d, want 1", o.Len())
			}
		})
	}
}

func TestCaseTableNestsInSegment(t *testing.T) {
	o := NewOverlay()
	if _, err := o.Classify(0x100, &Seg{Length: 32}); err != nil {
		t.Fatal(err)
	}
	if _, err := o.Classify(0x110, &Cases{Min: 1, Max: 3}); err != nil {
		t.Fatalf("case table inside segment: %v", err)
	}
	tests := []struct {
		addr  uint16
		start uint16
		kind  Kind
	}{
		{0x100, 0x100, Segment},
		{0x10f, 0x100, Segment},
		{0x110, 0x110, CaseTable},
		{0x114, 0x110, CaseTable},
		{0x115, 0x100, Segment},
		{0x120, 0, Unclassified},
	}
	for _, tt := range tests {
		if got := o.KindAt(tt.addr); got != tt.kind {
			t.Errorf("KindAt(%04x) = %s, want %s", tt.addr, got, tt.kind)
		}
		start, _, ok := o.Owner(tt.addr)
		if ok != (tt.kind != Unclassified) || start != tt.start {
			t.Errorf("Owner(%04x) = %04x, %v", tt.addr, start, ok)
		}
	}

	// a segment classified after its case table contains it
	o = NewOverlay()
	if _, err := o.Classify(0x210, &Cases{Min: 0, Max: 0}); err != nil {
		t.Fatal(err)
	}
	if _, err := o.Classify(0x200, &Seg{Length: 32}); err != nil {
		t.Errorf("segment around case table: %v", err)
	}
}

func TestRegionAtEndOfMemory(t *testing.T) {
	o := NewOverlay()
	if _, err := o.Classify(0xfffa, &TIB{}); err != nil {
		t.Fatalf("tib at fffa: %v", err)
	}
	if got := o.KindAt(0xffff); got != ThreadControlBlock {
		t.Errorf("KindAt(ffff) = %s", got)
	}
	if got := o.KindAt(0x0000); got != Unclassified {
		t.Errorf("region wrapped to 0000: %s", got)
	}
}

func TestConflictErrorText(t *testing.T) {
	tests := []struct {
		err  *ConflictError
		want string
	}{
		{&ConflictError{Addr: 0xf404, Start: 0xf404, Have: ThreadControlBlock, Want: SibVector},
			"region conflict at f404: classified as tib, now sib-vector"},
		{&ConflictError{Addr: 0xf408, Start: 0xf404, Have: ThreadControlBlock, Want: SibVector},
			"region conflict at f408: overlaps tib at f404, now sib-vector"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

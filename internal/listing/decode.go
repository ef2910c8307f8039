package listing

import (
	"fmt"

	"pdis/internal/disasm"
	"pdis/internal/image"
)

// Decode disassembles every unit of f, each in its own context. Reader
// notes head the unit's lines.
func Decode(f *image.File, opts ...disasm.Option) (*Document, error) {
	doc := &Document{File: f.Name, Format: f.Format.String(), Notes: f.Notes}
	for _, u := range f.Units {
		unitOpts := append(opts[:len(opts):len(opts)], disasm.WithNotes(u.Notes...))
		res, err := disasm.Disassemble(u.Mem, u.Entries, unitOpts...)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", u.Name, err)
		}
		doc.Units = append(doc.Units, Unit{Name: u.Name, Lines: res.Lines, Summary: res.Summary})
	}
	return doc, nil
}

// Package listing writes decoded images as text, JSON or a markdown
// summary.
package listing

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"pdis/internal/disasm"
	"pdis/internal/ui/colorize"
)

// Document is everything decoded from one input file.
type Document struct {
	File   string   `json:"file"`
	Format string   `json:"format"`
	Notes  []string `json:"notes,omitempty"`
	Units  []Unit   `json:"units"`
}

// Unit is the listing of one independently decoded image.
type Unit struct {
	Name    string         `json:"name"`
	Lines   []disasm.Line  `json:"lines"`
	Summary disasm.Summary `json:"summary"`
}

// Options controls text output.
type Options struct {
	// Color highlights lines with the p-code lexer.
	Color bool
	// Headers prefixes each unit with a comment naming it. It is implied
	// when the document has more than one unit.
	Headers bool
}

// Render returns the listing lines of doc and the index of each unit's
// first line among them.
func Render(doc *Document, opts Options) ([]string, []int) {
	var out []string
	put := func(s string) {
		if opts.Color && s != "" {
			s = colorize.Line(s)
		}
		out = append(out, s)
	}

	for _, n := range doc.Notes {
		put("; " + n)
	}
	if len(doc.Notes) > 0 {
		put("")
	}

	headers := opts.Headers || len(doc.Units) > 1
	starts := make([]int, len(doc.Units))
	for i, u := range doc.Units {
		if headers {
			if i > 0 {
				put("")
			}
			put(fmt.Sprintf("; unit %s", u.Name))
			put("")
		}
		starts[i] = len(out)
		for _, l := range u.Lines {
			put(l.String())
		}
	}
	return out, starts
}

// WriteText writes the listing in fixed columns, one line per record.
func WriteText(w io.Writer, doc *Document, opts Options) error {
	bw := bufio.NewWriter(w)
	lines, _ := Render(doc, opts)
	for _, l := range lines {
		bw.WriteString(l)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteJSON writes the document as indented JSON.
func WriteJSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

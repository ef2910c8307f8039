package listing

import (
	"fmt"
	"io"
	"strings"

	"pdis/internal/pdis/styles"
)

// Markdown describes the structure of doc: a table of segments per unit
// and a table of procedures per segment.
func Markdown(doc *Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", doc.File)
	fmt.Fprintf(&b, "Format: `%s`, %d unit(s)\n", doc.Format, len(doc.Units))
	for _, n := range doc.Notes {
		fmt.Fprintf(&b, "\n> %s\n", n)
	}

	for _, u := range doc.Units {
		fmt.Fprintf(&b, "\n## %s\n\n", u.Name)
		if len(u.Summary.Segments) == 0 {
			b.WriteString("No code segments.\n")
			continue
		}
		b.WriteString("| Segment | Number | Base | Words | Procedures | Case tables |\n")
		b.WriteString("|---|---:|---:|---:|---:|---:|\n")
		for _, s := range u.Summary.Segments {
			fmt.Fprintf(&b, "| %s | %d | %04x | %d | %d | %d |\n",
				s.Name, s.DirNumber, s.Base, s.Length, len(s.Procedures), s.CaseTables)
		}

		for _, s := range u.Summary.Segments {
			if len(s.Procedures) == 0 {
				continue
			}
			fmt.Fprintf(&b, "\n### %s\n\n", s.Name)
			b.WriteString("| Procedure | Start | End | Locals | Instructions | Labels |\n")
			b.WriteString("|---|---:|---:|---:|---:|---:|\n")
			for _, p := range s.Procedures {
				fmt.Fprintf(&b, "| %s | %04x | %04x | %d | %d | %d |\n",
					p.Name, p.Start, p.End, p.LocalSize, p.Insts, p.Labels)
			}
		}
	}
	return b.String()
}

// WriteSummary writes the markdown summary of doc. With color it is
// rendered for the terminal at the given width.
func WriteSummary(w io.Writer, doc *Document, width int, color bool) error {
	md := Markdown(doc)
	if !color {
		_, err := io.WriteString(w, md)
		return err
	}
	if width <= 2 {
		width = 80
	}
	r, err := styles.GetMarkdownRenderer(width - 2)
	if err != nil {
		return fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("render summary: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

package disasm

import (
	"fmt"
	"sort"
)

// Labels maps byte positions in the image to generated names. A name is
// written once, when its target is first discovered.
type Labels struct {
	names map[int]string
}

func newLabels() *Labels {
	return &Labels{names: make(map[int]string)}
}

func labelKey(base uint16, off int) int {
	return int(base)*2 + off
}

// Lookup returns the label at byte offset off of the segment at base.
func (l *Labels) Lookup(base uint16, off int) (string, bool) {
	name, ok := l.names[labelKey(base, off)]
	return name, ok
}

// Len returns the number of labels.
func (l *Labels) Len() int {
	return len(l.names)
}

// Names returns every label, ordered by position.
func (l *Labels) Names() []string {
	keys := make([]int, 0, len(l.names))
	for k := range l.names {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = l.names[k]
	}
	return out
}

// label returns the name of the branch target at byte offset target in
// p's segment, creating <segment>.<procedure>.<NN> on first discovery.
// The render pass never creates labels.
func (c *Context) label(p *procWalk, target int) string {
	if name, ok := c.labels.Lookup(p.seg.base, target); ok {
		return name
	}
	if c.pass != Discover {
		return fmt.Sprintf("%s+%04x", p.seg.name, target)
	}
	name := fmt.Sprintf("%s.%s.%02d", p.seg.name, p.name, p.seq)
	p.seq++
	c.labels.names[labelKey(p.seg.base, target)] = name
	return name
}

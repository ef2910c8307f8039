package cmd

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"

	"pdis/internal/config"
)

func decodedModel(t *testing.T) model {
	t.Helper()
	cfg := config.Default()
	cfg.NoColor = true
	cfg.SegmentName = "seg1"
	path := writeImage(t, "prog.seg", segment...)

	m := NewModel(path, cfg)
	if !m.loading {
		t.Fatal("new model is not loading")
	}
	msg := decodeCmd(path, cfg)()
	next, _ := m.Update(msg)
	return next.(model)
}

func press(m model, key tea.KeyPressMsg) model {
	next, _ := m.Update(key)
	return next.(model)
}

func TestViewProcedureIndex(t *testing.T) {
	m := decodedModel(t)
	if m.loading || m.err != nil {
		t.Fatalf("decode: loading=%v err=%v", m.loading, m.err)
	}

	items := m.procs.Items()
	if len(items) != 1 {
		t.Fatalf("index has %d items, want 1", len(items))
	}
	item := items[0].(procItem)
	if item.Title() != "seg1.proc1" {
		t.Errorf("item = %q", item.Title())
	}
	if !strings.Contains(m.lines[item.line], "seg1.proc1.endoffset") {
		t.Errorf("item points at %q, want the procedure header", m.lines[item.line])
	}

	m = press(m, tea.KeyPressMsg{Code: 'p', Text: "p"})
	if m.mode != viewProcedures {
		t.Fatalf("mode = %d after p, want procedures", m.mode)
	}
	m = press(m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.mode != viewListing {
		t.Errorf("mode = %d after enter, want listing", m.mode)
	}
}

func TestViewCycle(t *testing.T) {
	m := decodedModel(t)
	want := []viewMode{viewProcedures, viewInfo, viewListing}
	for _, w := range want {
		m = press(m, tea.KeyPressMsg{Code: tea.KeyTab})
		if m.mode != w {
			t.Fatalf("mode = %d, want %d", m.mode, w)
		}
	}
	if !strings.Contains(m.View(), "P: procedures") {
		t.Errorf("listing menu missing procedures key:\n%s", m.View())
	}
}

func TestViewDecodeError(t *testing.T) {
	m := NewModel("missing", config.Default())
	next, _ := m.Update(decodedMsg{err: errors.New("file not found: missing")})
	m = next.(model)

	// With no procedures the index is skipped.
	m = press(m, tea.KeyPressMsg{Code: tea.KeyTab})
	if m.mode != viewInfo {
		t.Errorf("mode = %d, want info", m.mode)
	}
	if !strings.Contains(m.View(), "file not found") {
		t.Errorf("view does not show the error:\n%s", m.View())
	}
}

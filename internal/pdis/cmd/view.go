package cmd

import (
	"fmt"
	"io"
	"log/slog"
	pathpkg "path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/spf13/cobra"

	"pdis/internal/config"
	"pdis/internal/listing"
	"pdis/internal/pdis/styles"
)

var viewCmd = &cobra.Command{
	Use:   "view [image]",
	Short: "Browse a listing interactively",
	Long: `View decodes an image and pages through its listing. The procedure
index jumps to any decoded procedure; the info pane summarises segments.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		program := tea.NewProgram(
			NewModel(args[0], cfg),
			tea.WithAltScreen(),
			tea.WithContext(cmd.Context()),
		)
		if _, err := program.Run(); err != nil {
			slog.Error("TUI run error", "error", err)
			return fmt.Errorf("TUI error: %v", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

type viewMode int

const (
	viewListing viewMode = iota
	viewProcedures
	viewInfo
)

// procItem is one entry of the procedure index.
type procItem struct {
	unit    string
	segment string
	name    string
	start   int
	insts   int
	line    int // listing line of the procedure's first field
}

func (i procItem) Title() string {
	return fmt.Sprintf("%s.%s", i.segment, i.name)
}

func (i procItem) FilterValue() string {
	return fmt.Sprintf("%s %s.%s %04x", i.unit, i.segment, i.name, i.start)
}

func (i procItem) Description() string { return "" }

type procDelegate struct{}

func (d procDelegate) Height() int                               { return 1 }
func (d procDelegate) Spacing() int                              { return 0 }
func (d procDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d procDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(procItem)
	if !ok {
		return
	}

	indicator := " "
	offStyle := styles.Muted
	if index == m.Index() {
		indicator = ">"
		offStyle = styles.Selected
	}

	fmt.Fprintf(w, " %s  %s  %s  %s",
		indicator,
		offStyle.Render(fmt.Sprintf("%04x", i.start)),
		styles.Name.Render(i.Title()),
		styles.Count.Render(fmt.Sprintf("%d insts", i.insts)))
}

type model struct {
	listing viewport.Model
	procs   list.Model
	info    viewport.Model
	spinner spinner.Model
	mode    viewMode
	path    string
	cfg     config.Config
	doc     *listing.Document
	lines   []string
	err     error
	loading bool
	width   int
	height  int
}

type decodedMsg struct {
	doc *listing.Document
	err error
}

func decodeCmd(path string, cfg config.Config) tea.Cmd {
	return func() tea.Msg {
		doc, err := decodeFile(path, cfg)
		return decodedMsg{doc: doc, err: err}
	}
}

func NewModel(path string, cfg config.Config) model {
	vp := viewport.New()
	vp.SetWidth(80)
	vp.SetHeight(24)

	procs := list.New([]list.Item{}, procDelegate{}, 80, 24)
	procs.SetShowStatusBar(false)
	procs.SetFilteringEnabled(true)
	procs.Title = "Procedures"
	procs.Styles.Title = styles.Title
	procs.SetShowHelp(true)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Selected

	info := viewport.New()
	info.SetWidth(80)
	info.SetHeight(24)

	m := model{
		listing: vp,
		procs:   procs,
		info:    info,
		spinner: s,
		mode:    viewListing,
		path:    path,
		cfg:     cfg,
		loading: true,
		width:   80,
		height:  24,
	}
	m.updateContent()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		decodeCmd(m.path, m.cfg),
		m.spinner.Tick,
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case decodedMsg:
		m.loading = false
		m.doc, m.err = msg.doc, msg.err
		if m.err == nil {
			m.lines, _ = listing.Render(m.doc, listing.Options{Color: !m.cfg.NoColor})
			m.updateProcedures()
		}
		m.updateContent()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		m.updateContent()
		return m, cmd

	case tea.WindowSizeMsg:
		if msg.Width != m.width || msg.Height != m.height {
			m.width = msg.Width
			m.height = msg.Height
			m.listing.SetWidth(msg.Width)
			m.listing.SetHeight(msg.Height - 2)
			m.procs.SetWidth(msg.Width)
			m.procs.SetHeight(msg.Height - 2)
			m.info.SetWidth(msg.Width)
			m.info.SetHeight(msg.Height - 2)
			m.updateContent()
		}

	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" {
			return m, tea.Quit
		}
		// While filtering, the index owns every other key.
		if m.mode == viewProcedures && m.procs.FilterState() == list.Filtering {
			break
		}
		switch key {
		case "q":
			return m, tea.Quit
		case "l":
			m.mode = viewListing
			return m, nil
		case "p":
			if len(m.procs.Items()) > 0 {
				m.mode = viewProcedures
			}
			return m, nil
		case "i":
			m.mode = viewInfo
			return m, nil
		case "enter":
			if m.mode == viewProcedures {
				if item, ok := m.procs.SelectedItem().(procItem); ok {
					m.mode = viewListing
					m.listing.SetYOffset(item.line)
				}
				return m, nil
			}
		case "tab":
			m.mode = m.nextMode(1)
			return m, nil
		case "shift+tab":
			m.mode = m.nextMode(-1)
			return m, nil
		}
	}

	switch m.mode {
	case viewProcedures:
		m.procs, cmd = m.procs.Update(msg)
	case viewInfo:
		m.info, cmd = m.info.Update(msg)
	default:
		m.listing, cmd = m.listing.Update(msg)
	}
	return m, cmd
}

// nextMode cycles through the panes, skipping the index when there is
// nothing in it.
func (m model) nextMode(step int) viewMode {
	mode := m.mode
	for range 3 {
		mode = (mode + viewMode(step) + 3) % 3
		if mode != viewProcedures || len(m.procs.Items()) > 0 {
			return mode
		}
	}
	return m.mode
}

func (m model) View() string {
	var content, menu string
	switch m.mode {
	case viewProcedures:
		content = m.procs.View()
		menu = " Enter: go to procedure • /: filter • L: listing • I: info • Tab: cycle • Q: quit "
	case viewInfo:
		content = m.info.View()
		menu = " L: listing • P: procedures • Tab: cycle • Q: quit "
	default:
		content = m.listing.View()
		if len(m.procs.Items()) > 0 {
			menu = " P: procedures • I: info • Tab: cycle • Q: quit "
		} else {
			menu = " I: info • Q: quit "
		}
	}

	return content + "\n" + styles.MenuBar.Width(m.width).Render(menu)
}

func (m *model) updateProcedures() {
	_, starts := listing.Render(m.doc, listing.Options{})
	var items []list.Item
	for u, unit := range m.doc.Units {
		for _, seg := range unit.Summary.Segments {
			for _, p := range seg.Procedures {
				items = append(items, procItem{
					unit:    unit.Name,
					segment: seg.Name,
					name:    p.Name,
					start:   p.Start,
					insts:   p.Insts,
					line:    starts[u] + p.Line,
				})
			}
		}
	}
	m.procs.SetItems(items)
	m.procs.Title = fmt.Sprintf("Procedures (%d total)", len(items))
}

func (m *model) updateContent() {
	width := m.width
	if width == 0 {
		width = 80
	}

	switch {
	case m.loading:
		m.listing.SetContent(fmt.Sprintf("%s Decoding %s...", m.spinner.View(), pathpkg.Base(m.path)))
		return
	case m.err != nil:
		m.listing.SetContent(styles.Warning.Render("; " + m.err.Error()))
		m.info.SetContent(m.err.Error())
		return
	}

	m.listing.SetContent(strings.Join(m.lines, "\n"))

	md := listing.Markdown(m.doc)
	if r, err := styles.GetMarkdownRenderer(width - 2); err == nil {
		if rendered, err := r.Render(md); err == nil {
			md = strings.TrimSuffix(rendered, "\n")
		}
	}
	m.info.SetContent(lipgloss.NewStyle().Width(width).Render(md))
}

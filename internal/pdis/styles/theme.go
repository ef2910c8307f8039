package styles

import (
	"github.com/charmbracelet/lipgloss/v2"
)

// Listing palette, shared by the markdown style and the browser.
const (
	Foreground = "#D4D4D4"
	Dim        = "#858585"
	Label      = "#FFD700"
	Heading    = "#569CD6"
	Number     = "#B5CEA8"
	Diagnostic = "#EBC2ED"
)

var (
	// MenuBar is the key help line at the bottom of the browser.
	MenuBar = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("252")).
		Padding(0, 1)

	// Title heads the procedure index.
	Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		MarginLeft(2)

	Selected = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	Muted    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	Name     = lipgloss.NewStyle().Foreground(lipgloss.Color(Label))
	Count    = lipgloss.NewStyle().Foreground(lipgloss.Color(Number))
	Warning  = lipgloss.NewStyle().Foreground(lipgloss.Color(Diagnostic))
)

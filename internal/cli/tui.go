package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// formatInfo describes an output format offered by the picker.
type formatInfo struct {
	Name        string
	Description string
}

// dotFormats are the common output formats of the Graphviz dot renderer.
var dotFormats = []formatInfo{
	{"png", "Portable Network Graphics"},
	{"svg", "Scalable Vector Graphics"},
	{"pdf", "Portable Document Format"},
	{"jpg", "JPEG image"},
	{"gif", "GIF image"},
	{"ps", "PostScript"},
	{"json", "Layout as JSON"},
	{"xdot", "DOT with layout attributes"},
	{"plain", "Simple text layout"},
}

// embeddedFormats are the formats the built-in renderer can produce.
var embeddedFormats = []formatInfo{
	{"png", "Portable Network Graphics"},
	{"svg", "Scalable Vector Graphics"},
	{"pdf", "Portable Document Format (needs rsvg-convert)"},
	{"jpg", "JPEG image"},
	{"xdot", "DOT with layout attributes"},
	{"dot", "DOT with layout attributes"},
}

// =============================================================================
// FormatListModel - Interactive output format selection
// =============================================================================

// FormatListModel is the bubbletea model for interactive format selection.
type FormatListModel struct {
	Formats  []formatInfo
	Cursor   int
	Selected *formatInfo
}

// NewFormatListModel creates a format list with the cursor on current, if present.
func NewFormatListModel(formats []formatInfo, current string) FormatListModel {
	m := FormatListModel{Formats: formats}
	for i, f := range formats {
		if f.Name == current {
			m.Cursor = i
			break
		}
	}
	return m
}

func (m FormatListModel) Init() tea.Cmd {
	return nil
}

func (m FormatListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Formats)-1 {
				m.Cursor++
			}
		case "enter":
			if len(m.Formats) == 0 {
				return m, tea.Quit
			}
			m.Selected = &m.Formats[m.Cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m FormatListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Output Format"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	rows := make([][]string, 0, len(m.Formats))
	for i, f := range m.Formats {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, f.Name, f.Description})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Format", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row == m.Cursor {
				return listSelectedStyle
			}
			if col == 2 {
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Formats))))

	return b.String()
}

// pickFormat runs the format picker. It returns "" when the user quits
// without choosing.
func pickFormat(formats []formatInfo, current string) (string, error) {
	p := tea.NewProgram(NewFormatListModel(formats, current))
	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	fm, ok := finalModel.(FormatListModel)
	if !ok || fm.Selected == nil {
		return "", nil
	}
	return fm.Selected.Name, nil
}

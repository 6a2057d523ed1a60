package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/archviews/pkg/model"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ElementListModel - Interactive seed element selection
// =============================================================================

// ElementListModel is the bubbletea model for picking the seed of a view.
// Typing "/" starts a filter on element names.
type ElementListModel struct {
	Elements  []*model.Element
	Visible   []*model.Element
	Cursor    int
	Selected  *model.Element
	Height    int
	Offset    int
	Filter    string
	Filtering bool
}

// NewElementListModel creates a new element list model.
func NewElementListModel(elems []*model.Element) ElementListModel {
	return ElementListModel{
		Elements: elems,
		Visible:  elems,
		Height:   15,
	}
}

func (m ElementListModel) Init() tea.Cmd {
	return nil
}

func (m ElementListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Filtering {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "/":
			m.Filtering = true
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "enter":
			if len(m.Visible) > 0 {
				m.Selected = m.Visible[m.Cursor]
				return m, tea.Quit
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m ElementListModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEnter, tea.KeyEsc:
		m.Filtering = false
		return m, nil
	case tea.KeyBackspace:
		if r := []rune(m.Filter); len(r) > 0 {
			m.Filter = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.Filter += string(msg.Runes)
	default:
		return m, nil
	}
	m.applyFilter()
	return m, nil
}

func (m *ElementListModel) applyFilter() {
	needle := strings.ToLower(m.Filter)
	m.Visible = m.Visible[:0:0]
	for _, e := range m.Elements {
		if strings.Contains(strings.ToLower(e.Name), needle) {
			m.Visible = append(m.Visible, e)
		}
	}
	m.Cursor, m.Offset = 0, 0
}

func (m *ElementListModel) move(delta int) {
	next := m.Cursor + delta
	if next < 0 || next >= len(m.Visible) {
		return
	}
	m.Cursor = next
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m ElementListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Seed Element"))
	b.WriteString("\n")
	if m.Filtering || m.Filter != "" {
		b.WriteString(StyleHighlight.Render("/" + m.Filter))
		if m.Filtering {
			b.WriteString(listDimStyle.Render("▏"))
		}
	} else {
		b.WriteString(listDimStyle.Render("↑/↓ navigate  / filter  ⏎ select  q quit"))
	}
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Visible))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		e := m.Visible[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, e.Name, string(e.Kind()), parentName(e)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Element", "Kind", "Parent").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			if col >= 2 {
				return listDimStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	if len(m.Visible) == 0 {
		b.WriteString(listDimStyle.Render("  no matching elements"))
	} else {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Visible))))
	}

	return b.String()
}

// pickElement runs the picker over the elements of m and returns the choice,
// or nil if the user quit.
func pickElement(m *model.Model) (*model.Element, error) {
	if m.Len() == 0 {
		return nil, nil
	}
	final, err := tea.NewProgram(NewElementListModel(m.Elements())).Run()
	if err != nil {
		return nil, fmt.Errorf("element picker: %w", err)
	}
	return final.(ElementListModel).Selected, nil
}

func parentName(e *model.Element) string {
	if p := e.Parent(); p != nil {
		return p.Name
	}
	return "—"
}

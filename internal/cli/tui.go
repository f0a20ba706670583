package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	derrors "github.com/matzehuels/diagrammer/pkg/errors"
	"github.com/matzehuels/diagrammer/pkg/forms"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PickerModel - Interactive node/edge selection
// =============================================================================

// PickerModel is the bubbletea model for choosing one entry of a selection list.
type PickerModel struct {
	Title    string
	Options  []forms.Option
	Cursor   int
	Selected *forms.Option
	Height   int
	Offset   int
}

// NewPickerModel creates a picker over opts.
func NewPickerModel(title string, opts []forms.Option) PickerModel {
	return PickerModel{
		Title:   title,
		Options: opts,
		Height:  15,
	}
}

func (m PickerModel) Init() tea.Cmd {
	return nil
}

func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Options)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Options) == 0 {
				return m, tea.Quit
			}
			opt := m.Options[m.Cursor]
			m.Selected = &opt
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m PickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	if len(m.Options) == 0 {
		b.WriteString(listDimStyle.Render("  nothing to select"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Options))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		id, label, _ := strings.Cut(m.Options[i].Label, ": ")
		rows = append(rows, []string{cursor, id, label})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Label").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			if col == 1 {
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Options))))

	return b.String()
}

// pick shows a picker and returns the chosen value. Quitting without a choice
// is NO_SELECTION.
func (c *CLI) pick(ctx context.Context, title string, opts []forms.Option) (string, error) {
	p := tea.NewProgram(NewPickerModel(title, opts),
		tea.WithContext(ctx),
		tea.WithInput(c.in),
		tea.WithOutput(os.Stderr),
	)
	final, err := p.Run()
	if err != nil {
		return "", err
	}
	if m, ok := final.(PickerModel); ok && m.Selected != nil {
		return m.Selected.Value, nil
	}
	return "", derrors.New(derrors.ErrCodeNoSelection, "nothing selected")
}

// selectID returns args[0], or asks the user to pick one of opts when no
// argument was given on a terminal.
func (c *CLI) selectID(ctx context.Context, args []string, title string, opts []forms.Option) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if !c.interactive() {
		return "", derrors.New(derrors.ErrCodeNoSelection, "no id given")
	}
	return c.pick(ctx, title, opts)
}

package screen

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chmouel/lazycommit/internal/theme"
)

// ListScreen lets the user pick one option from a short list.
type ListScreen struct {
	Title   string
	Options []string
	Cursor  int
	Thm     *theme.Theme

	// Callbacks
	OnSelect func(index int) tea.Cmd
	OnCancel func() tea.Cmd
}

// NewListScreen builds a single-choice list screen.
func NewListScreen(title string, options []string, thm *theme.Theme) *ListScreen {
	cursor := 0
	if len(options) == 0 {
		cursor = -1
	}
	return &ListScreen{
		Title:   title,
		Options: options,
		Cursor:  cursor,
		Thm:     thm,
	}
}

// Type returns the screen type.
func (s *ListScreen) Type() Type {
	return TypeList
}

// Update handles keyboard input and returns nil to signal the screen
// should close.
func (s *ListScreen) Update(msg tea.KeyMsg) (Screen, tea.Cmd) {
	switch msg.String() {
	case "up", "k", "ctrl+k":
		if s.Cursor > 0 {
			s.Cursor--
		}
		return s, nil
	case "down", "j", "ctrl+j":
		if s.Cursor < len(s.Options)-1 {
			s.Cursor++
		}
		return s, nil
	case keyEnter:
		if s.OnSelect != nil && s.Cursor >= 0 {
			return nil, s.OnSelect(s.Cursor)
		}
		return nil, nil
	case keyEsc, keyQ, keyCtrlC:
		if s.OnCancel != nil {
			return nil, s.OnCancel()
		}
		return nil, nil
	}
	return s, nil
}

// View renders the list screen.
func (s *ListScreen) View() string {
	width := 60

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.Thm.Accent).
		Width(width).
		Padding(0)

	titleStyle := lipgloss.NewStyle().
		Foreground(s.Thm.Accent).
		Bold(true).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(s.Thm.BorderDim).
		Width(width-2).
		Padding(0, 1).
		Render(s.Title)

	itemStyle := lipgloss.NewStyle().
		Padding(0, 1).
		Width(width - 2)

	selectedStyle := lipgloss.NewStyle().
		Padding(0, 1).
		Width(width - 2).
		Background(s.Thm.Accent).
		Foreground(s.Thm.AccentFg).
		Bold(true)

	itemViews := make([]string, 0, len(s.Options))
	for i, opt := range s.Options {
		if i == s.Cursor {
			itemViews = append(itemViews, selectedStyle.Render(opt))
		} else {
			itemViews = append(itemViews, itemStyle.Render(opt))
		}
	}

	footerStyle := lipgloss.NewStyle().
		Foreground(s.Thm.MutedFg).
		Align(lipgloss.Right).
		Width(width - 2).
		PaddingTop(1)
	footer := footerStyle.Render("j/k to move • Enter to select • Esc to cancel")

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle,
		strings.Join(itemViews, "\n"),
		footer,
	)

	return boxStyle.Render(content)
}

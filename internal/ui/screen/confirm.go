package screen

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/chmouel/lazycommit/internal/theme"
)

// Key constants for navigation.
const (
	keyEnter    = "enter"
	keyEsc      = "esc"
	keyTab      = "tab"
	keyShiftTab = "shift+tab"
	keyQ        = "q"
	keyCtrlC    = "ctrl+c"
)

// ConfirmScreen displays a modal yes/no question with Yes/No buttons.
type ConfirmScreen struct {
	Message        string
	SelectedButton int // 0 = Yes, 1 = No
	Thm            *theme.Theme

	// Callbacks
	OnYes func() tea.Cmd
	OnNo  func() tea.Cmd
}

// NewConfirmScreen creates a confirm screen. defaultYes decides which
// button starts focused, so a plain Enter gives the expected answer.
func NewConfirmScreen(message string, defaultYes bool, thm *theme.Theme) *ConfirmScreen {
	selected := 0
	if !defaultYes {
		selected = 1
	}
	return &ConfirmScreen{
		Message:        message,
		SelectedButton: selected,
		Thm:            thm,
	}
}

// Type returns the screen type.
func (s *ConfirmScreen) Type() Type {
	return TypeConfirm
}

// Update processes keyboard events for the confirmation dialog.
// Returns nil to signal that the screen should be closed.
func (s *ConfirmScreen) Update(msg tea.KeyMsg) (Screen, tea.Cmd) {
	key := msg.String()
	switch key {
	case keyTab, "right", "l":
		s.SelectedButton = (s.SelectedButton + 1) % 2
	case keyShiftTab, "left", "h":
		s.SelectedButton = (s.SelectedButton - 1 + 2) % 2
	case "y", "Y":
		if s.OnYes != nil {
			return nil, s.OnYes()
		}
		return nil, nil
	case "n", "N":
		if s.OnNo != nil {
			return nil, s.OnNo()
		}
		return nil, nil
	case keyEnter:
		if s.SelectedButton == 0 {
			if s.OnYes != nil {
				return nil, s.OnYes()
			}
		} else {
			if s.OnNo != nil {
				return nil, s.OnNo()
			}
		}
		return nil, nil
	case keyEsc, keyQ, keyCtrlC:
		if s.OnNo != nil {
			return nil, s.OnNo()
		}
		return nil, nil
	}
	return s, nil
}

// View renders the confirmation box with focused button highlighting.
func (s *ConfirmScreen) View() string {
	width := 60
	height := 9

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.Thm.Accent).
		Padding(1, 2).
		Width(width).
		Height(height)

	messageStyle := lipgloss.NewStyle().
		Width(width-4).
		Height(height-6).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(s.Thm.TextFg)

	focusedStyle := lipgloss.NewStyle().
		Width((width-6)/2).
		Align(lipgloss.Center).
		Padding(0, 2).
		Foreground(s.Thm.AccentFg).
		Background(s.Thm.Accent).
		Bold(true)

	unfocusedStyle := lipgloss.NewStyle().
		Width((width-6)/2).
		Align(lipgloss.Center).
		Padding(0, 2).
		Foreground(s.Thm.MutedFg).
		Background(s.Thm.BorderDim)

	var yesButton, noButton string
	if s.SelectedButton == 0 {
		yesButton = focusedStyle.Render("[Yes]")
		noButton = unfocusedStyle.Render("[No]")
	} else {
		yesButton = unfocusedStyle.Render("[Yes]")
		noButton = focusedStyle.Render("[No]")
	}

	content := fmt.Sprintf("%s\n\n%s  %s",
		messageStyle.Render(s.Message),
		yesButton,
		noButton,
	)

	return boxStyle.Render(content)
}

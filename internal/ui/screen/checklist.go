package screen

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chmouel/lazycommit/internal/theme"
)

// ChecklistItem represents a single item with a checkbox state.
type ChecklistItem struct {
	ID          string
	Label       string
	Description string
	Checked     bool
}

// ChecklistScreen lets the user select multiple items via checkboxes.
// Typing filters the list; space toggles, a/n select all/none.
type ChecklistScreen struct {
	Items    []ChecklistItem
	Filtered []ChecklistItem

	FilterInput  textinput.Model
	Cursor       int
	ScrollOffset int
	Width        int
	Height       int
	Title        string
	NoResults    string
	Thm          *theme.Theme

	// Callbacks
	OnSubmit func([]ChecklistItem) tea.Cmd
	OnCancel func() tea.Cmd
}

// NewChecklistScreen builds a checklist screen sized to 80% of the
// terminal, with floor sizes for small windows.
func NewChecklistScreen(items []ChecklistItem, title string, maxWidth, maxHeight int, thm *theme.Theme) *ChecklistScreen {
	width := int(float64(maxWidth) * 0.8)
	height := int(float64(maxHeight) * 0.8)
	if width < 60 {
		width = 60
	}
	if height < 20 {
		height = 20
	}

	ti := textinput.New()
	ti.Placeholder = "Filter..."
	ti.CharLimit = 100
	ti.Prompt = "> "
	ti.Focus()
	ti.Width = width - 4

	cursor := 0
	if len(items) == 0 {
		cursor = -1
	}

	return &ChecklistScreen{
		Items:       items,
		Filtered:    items,
		FilterInput: ti,
		Cursor:      cursor,
		Width:       width,
		Height:      height,
		Title:       title,
		NoResults:   "No files match.",
		Thm:         thm,
	}
}

// Type returns the screen type.
func (s *ChecklistScreen) Type() Type {
	return TypeChecklist
}

// SetSize resizes the screen to fit a new terminal size.
func (s *ChecklistScreen) SetSize(maxWidth, maxHeight int) {
	width := int(float64(maxWidth) * 0.8)
	height := int(float64(maxHeight) * 0.8)
	if width < 60 {
		width = 60
	}
	if height < 20 {
		height = 20
	}
	s.Width = width
	s.Height = height
	s.FilterInput.Width = width - 4
}

// Update handles keyboard input for the checklist screen.
// Returns nil to signal the screen should close.
func (s *ChecklistScreen) Update(msg tea.KeyMsg) (Screen, tea.Cmd) {
	var cmd tea.Cmd
	maxVisible := s.maxVisible()

	switch msg.String() {
	case keyEnter:
		if s.OnSubmit != nil {
			return nil, s.OnSubmit(s.SelectedItems())
		}
		return nil, nil
	case keyEsc, keyCtrlC:
		for i := range s.Items {
			s.Items[i].Checked = false
		}
		s.applyFilter()
		if s.OnCancel != nil {
			return nil, s.OnCancel()
		}
		return nil, nil
	case "up", "k", "ctrl+k":
		if s.Cursor > 0 {
			s.Cursor--
			if s.Cursor < s.ScrollOffset {
				s.ScrollOffset = s.Cursor
			}
		}
		return s, nil
	case "down", "j", "ctrl+j":
		if s.Cursor < len(s.Filtered)-1 {
			s.Cursor++
			if s.Cursor >= s.ScrollOffset+maxVisible {
				s.ScrollOffset = s.Cursor - maxVisible + 1
			}
		}
		return s, nil
	case " ":
		if s.Cursor >= 0 && s.Cursor < len(s.Filtered) {
			id := s.Filtered[s.Cursor].ID
			for i := range s.Items {
				if s.Items[i].ID == id {
					s.Items[i].Checked = !s.Items[i].Checked
					break
				}
			}
			s.applyFilter()
		}
		return s, nil
	case "a":
		s.setFiltered(true)
		return s, nil
	case "n":
		s.setFiltered(false)
		return s, nil
	}

	s.FilterInput, cmd = s.FilterInput.Update(msg)
	s.applyFilter()
	return s, cmd
}

// setFiltered checks or unchecks every currently visible item.
func (s *ChecklistScreen) setFiltered(checked bool) {
	for _, f := range s.Filtered {
		for i := range s.Items {
			if s.Items[i].ID == f.ID {
				s.Items[i].Checked = checked
				break
			}
		}
	}
	s.applyFilter()
}

func (s *ChecklistScreen) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(s.FilterInput.Value()))
	if query == "" {
		s.Filtered = make([]ChecklistItem, len(s.Items))
		copy(s.Filtered, s.Items)
	} else {
		s.Filtered = []ChecklistItem{}
		for _, item := range s.Items {
			labelLower := strings.ToLower(item.Label)
			descLower := strings.ToLower(item.Description)
			idLower := strings.ToLower(item.ID)
			if strings.Contains(labelLower, query) || strings.Contains(descLower, query) || strings.Contains(idLower, query) {
				s.Filtered = append(s.Filtered, item)
			}
		}
	}

	if len(s.Filtered) == 0 {
		s.Cursor = -1
	} else if s.Cursor >= len(s.Filtered) || s.Cursor < 0 {
		s.Cursor = 0
	}
	s.ScrollOffset = 0
}

// SelectedItems returns all checked items.
func (s *ChecklistScreen) SelectedItems() []ChecklistItem {
	var selected []ChecklistItem
	for _, item := range s.Items {
		if item.Checked {
			selected = append(selected, item)
		}
	}
	return selected
}

func (s *ChecklistScreen) maxVisible() int {
	// Header, input, separator and footer take six lines.
	visible := s.Height - 6
	if visible < 1 {
		visible = 1
	}
	return visible
}

// View renders the checklist screen.
func (s *ChecklistScreen) View() string {
	maxVisible := s.maxVisible()

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.Thm.Accent).
		Width(s.Width).
		Padding(0)

	titleStyle := lipgloss.NewStyle().
		Foreground(s.Thm.Accent).
		Bold(true).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(s.Thm.BorderDim).
		Width(s.Width-2).
		Padding(0, 1).
		Render(s.Title)

	inputStyle := lipgloss.NewStyle().
		Padding(0, 1).
		Width(s.Width - 2).
		Foreground(s.Thm.TextFg)

	itemStyle := lipgloss.NewStyle().
		Padding(0, 1).
		Width(s.Width - 2)

	selectedStyle := lipgloss.NewStyle().
		Padding(0, 1).
		Width(s.Width - 2).
		Background(s.Thm.Accent).
		Foreground(s.Thm.AccentFg).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(s.Thm.MutedFg)

	noResultsStyle := lipgloss.NewStyle().
		Padding(0, 1).
		Width(s.Width - 2).
		Foreground(s.Thm.MutedFg).
		Italic(true)

	inputView := inputStyle.Render(s.FilterInput.View())

	var itemViews []string
	end := min(s.ScrollOffset+maxVisible, len(s.Filtered))
	start := s.ScrollOffset
	if start > end {
		start = end
	}

	for i := start; i < end; i++ {
		item := s.Filtered[i]

		checkbox := "[ ] "
		if item.Checked {
			checkbox = "[x] "
		}

		label := checkbox + item.Label
		if item.Description != "" {
			label += "  " + descStyle.Render(item.Description)
		}
		if i == s.Cursor {
			itemViews = append(itemViews, selectedStyle.Render(checkbox+item.Label+"  "+item.Description))
		} else {
			itemViews = append(itemViews, itemStyle.Render(label))
		}
	}

	if len(s.Filtered) == 0 {
		itemViews = append(itemViews, noResultsStyle.Render(s.NoResults))
	}

	separator := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(s.Thm.BorderDim).
		Width(s.Width - 2).
		Render("")

	selectedCount := 0
	for _, item := range s.Items {
		if item.Checked {
			selectedCount++
		}
	}

	footerStyle := lipgloss.NewStyle().
		Foreground(s.Thm.MutedFg).
		Align(lipgloss.Right).
		Width(s.Width - 2).
		PaddingTop(1)
	footer := footerStyle.Render(fmt.Sprintf("%d selected • Space toggle • a/n all/none • Enter confirm • Esc cancel", selectedCount))

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle,
		inputView,
		separator,
		strings.Join(itemViews, "\n"),
		footer,
	)

	return boxStyle.Render(content)
}

// Package ui implements the TUI prompter. Each question runs a short-lived
// bubbletea program hosting a single modal screen, so the commit pipeline
// can interleave terminal output with full-screen prompts.
package ui

import (
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chmouel/lazycommit/internal/models"
	"github.com/chmouel/lazycommit/internal/theme"
	"github.com/chmouel/lazycommit/internal/ui/screen"
)

// Prompter asks questions through modal bubbletea screens.
type Prompter struct {
	thm   *theme.Theme
	icons bool
}

// NewPrompter creates a TUI prompter using the given theme. icons enables
// devicon file markers in file lists.
func NewPrompter(thm *theme.Theme, icons bool) *Prompter {
	return &Prompter{thm: thm, icons: icons}
}

// session hosts one modal screen for the duration of one prompt.
type session struct {
	scr screen.Screen
}

func (m *session) Init() tea.Cmd { return nil }

func (m *session) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if sizable, ok := m.scr.(interface{ SetSize(int, int) }); ok {
			sizable.SetSize(msg.Width, msg.Height)
		}
		return m, nil
	case tea.KeyMsg:
		next, cmd := m.scr.Update(msg)
		if next == nil {
			return m, tea.Quit
		}
		m.scr = next
		return m, cmd
	}
	return m, nil
}

func (m *session) View() string { return m.scr.View() }

func (p *Prompter) run(scr screen.Screen) error {
	prog := tea.NewProgram(&session{scr: scr}, tea.WithAltScreen())
	_, err := prog.Run()
	return err
}

// Confirm asks a yes/no question. Esc and q count as no.
func (p *Prompter) Confirm(prompt string, defaultYes bool) (bool, error) {
	result := false
	scr := screen.NewConfirmScreen(prompt, defaultYes, p.thm)
	scr.OnYes = func() tea.Cmd {
		result = true
		return nil
	}
	if err := p.run(scr); err != nil {
		return false, err
	}
	return result, nil
}

// Input reads one line. Cancelling or submitting empty input returns the
// placeholder, which doubles as the default value.
func (p *Prompter) Input(prompt, placeholder string) (string, error) {
	value := placeholder
	scr := screen.NewInputScreen(prompt, placeholder, p.thm)
	scr.OnSubmit = func(v string) tea.Cmd {
		value = v
		return nil
	}
	if err := p.run(scr); err != nil {
		return placeholder, err
	}
	return value, nil
}

// PickOne shows a single-choice list. Cancelling returns -1.
func (p *Prompter) PickOne(title string, options []string) (int, error) {
	choice := -1
	scr := screen.NewListScreen(title, options, p.thm)
	scr.OnSelect = func(index int) tea.Cmd {
		choice = index
		return nil
	}
	if err := p.run(scr); err != nil {
		return -1, err
	}
	return choice, nil
}

// PickMany shows a checklist. Cancelling or submitting nothing returns an
// empty selection.
func (p *Prompter) PickMany(title string, options []string) ([]int, error) {
	items := make([]screen.ChecklistItem, len(options))
	for i, opt := range options {
		label := opt
		if p.icons {
			// Options are status-prefixed paths; the last field carries
			// the file name for the icon lookup.
			if icon := deviconForName(lastField(opt), false); icon != "" {
				label = iconWithSpace(icon) + opt
			}
		}
		items[i] = screen.ChecklistItem{ID: strconv.Itoa(i), Label: label}
	}

	var picked []int
	scr := screen.NewChecklistScreen(items, title, 0, 0, p.thm)
	scr.OnSubmit = func(selected []screen.ChecklistItem) tea.Cmd {
		for _, item := range selected {
			if idx, err := strconv.Atoi(item.ID); err == nil {
				picked = append(picked, idx)
			}
		}
		return nil
	}
	if err := p.run(scr); err != nil {
		return nil, err
	}
	return picked, nil
}

// EditMessage opens the commit message in a multiline editor. ok is false
// when the edit was abandoned.
func (p *Prompter) EditMessage(subject, body string) (models.PipelineMessage, bool, error) {
	initial := subject
	if body != "" {
		initial += "\n\n" + body
	}

	var msg models.PipelineMessage
	ok := false
	scr := screen.NewMessageScreen("Edit commit message", initial, 0, 0, p.thm)
	scr.Validate = func(value string) string {
		if strings.TrimSpace(strings.SplitN(value, "\n", 2)[0]) == "" {
			return "Subject must not be empty."
		}
		return ""
	}
	scr.OnSubmit = func(value string) tea.Cmd {
		msg = splitMessage(value)
		ok = true
		return nil
	}
	if err := p.run(scr); err != nil {
		return models.PipelineMessage{}, false, err
	}
	return msg, ok, nil
}

// splitMessage splits edited text into subject (first line) and body.
func splitMessage(value string) models.PipelineMessage {
	value = strings.ReplaceAll(value, "\r\n", "\n")
	lines := strings.Split(value, "\n")
	msg := models.PipelineMessage{Subject: strings.TrimSpace(lines[0])}
	if len(lines) > 1 {
		msg.Body = strings.TrimSpace(strings.Join(lines[1:], "\n"))
	}
	return msg
}

func lastField(option string) string {
	fields := strings.Fields(option)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

type progressTickMsg struct{}

type progressDoneMsg struct{ err error }

// progressModel animates the loading screen until the work reports back.
type progressModel struct {
	scr *screen.LoadingScreen
	err error
}

func progressTick() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}

func (m *progressModel) Init() tea.Cmd { return progressTick() }

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressTickMsg:
		m.scr.Tick()
		return m, progressTick()
	case progressDoneMsg:
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m *progressModel) View() string { return m.scr.View() }

// Progress displays a spinner while fn runs and returns fn's error.
func (p *Prompter) Progress(label string, fn func() error) error {
	model := &progressModel{scr: screen.NewLoadingScreen(label, p.thm)}
	prog := tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		prog.Send(progressDoneMsg{err: fn()})
	}()

	final, err := prog.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(*progressModel); ok {
		return m.err
	}
	return nil
}

package screen

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/chmouel/lazycommit/internal/theme"
)

func TestInputScreenEnterSubmitsTypedValue(t *testing.T) {
	s := NewInputScreen("Model", "gpt-4o-mini", theme.Dracula())
	var got string
	s.OnSubmit = func(value string) tea.Cmd {
		got = value
		return nil
	}

	var next Screen = s
	for _, r := range "gpt-5" {
		next, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if next != nil {
		t.Fatal("expected screen to close on enter")
	}
	if got != "gpt-5" {
		t.Fatalf("expected %q, got %q", "gpt-5", got)
	}
}

func TestInputScreenEmptySubmitYieldsPlaceholder(t *testing.T) {
	s := NewInputScreen("Model", "gpt-4o-mini", theme.Dracula())
	var got string
	s.OnSubmit = func(value string) tea.Cmd {
		got = value
		return nil
	}

	next, _ := s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if next != nil {
		t.Fatal("expected screen to close on enter")
	}
	if got != "gpt-4o-mini" {
		t.Fatalf("expected placeholder fallback, got %q", got)
	}
}

func TestInputScreenValidationKeepsScreenOpen(t *testing.T) {
	s := NewInputScreen("API key", "", theme.Dracula())
	s.Validate = func(value string) string {
		if value == "" {
			return "An API key is required."
		}
		return ""
	}

	next, _ := s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	scr, ok := next.(*InputScreen)
	if !ok || scr == nil {
		t.Fatal("expected screen to stay open for invalid value")
	}
	if scr.ErrorMsg != "An API key is required." {
		t.Fatalf("expected validation error, got %q", scr.ErrorMsg)
	}
}

func TestInputScreenEscCancels(t *testing.T) {
	s := NewInputScreen("Model", "gpt-4o-mini", theme.Dracula())
	cancelled := false
	s.OnCancel = func() tea.Cmd {
		cancelled = true
		return nil
	}

	next, _ := s.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if next != nil {
		t.Fatal("expected screen to close on esc")
	}
	if !cancelled {
		t.Fatal("expected cancel callback to be called")
	}
}

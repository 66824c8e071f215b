package screen

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/chmouel/lazycommit/internal/theme"
)

func TestMessageScreenType(t *testing.T) {
	s := NewMessageScreen("Edit commit message", "feat: add parser", 120, 40, theme.Dracula())
	if s.Type() != TypeMessage {
		t.Fatalf("expected TypeMessage, got %v", s.Type())
	}
}

func TestMessageScreenCtrlSSubmit(t *testing.T) {
	s := NewMessageScreen("Edit commit message", "feat: add parser", 120, 40, theme.Dracula())
	called := false
	var gotValue string
	s.OnSubmit = func(value string) tea.Cmd {
		called = true
		gotValue = value
		return nil
	}

	next, _ := s.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if next != nil {
		t.Fatal("expected screen to close on Ctrl+S")
	}
	if !called {
		t.Fatal("expected submit callback to be called")
	}
	if gotValue != "feat: add parser" {
		t.Fatalf("expected value %q, got %q", "feat: add parser", gotValue)
	}
}

func TestMessageScreenValidationBlocksSubmit(t *testing.T) {
	s := NewMessageScreen("Edit commit message", "", 120, 40, theme.Dracula())
	s.Validate = func(value string) string {
		if strings.TrimSpace(value) == "" {
			return "Subject must not be empty."
		}
		return ""
	}
	s.OnSubmit = func(string) tea.Cmd {
		t.Fatal("submit callback should not run for invalid value")
		return nil
	}

	next, _ := s.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	scr, ok := next.(*MessageScreen)
	if !ok || scr == nil {
		t.Fatal("expected screen to stay open for invalid value")
	}
	if scr.ErrorMsg != "Subject must not be empty." {
		t.Fatalf("expected validation error, got %q", scr.ErrorMsg)
	}
}

func TestMessageScreenEnterAddsNewLine(t *testing.T) {
	s := NewMessageScreen("Edit commit message", "feat: add parser", 120, 40, theme.Dracula())

	next, _ := s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if next == nil {
		t.Fatal("expected screen to stay open on Enter")
	}

	updated := next.(*MessageScreen)
	if updated.Input.Value() != "feat: add parser\n" {
		t.Fatalf("expected newline to be inserted, got %q", updated.Input.Value())
	}
}

func TestMessageScreenEscCancels(t *testing.T) {
	s := NewMessageScreen("Edit commit message", "feat: add parser", 120, 40, theme.Dracula())
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

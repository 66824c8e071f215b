// Package screen provides the modal screens the TUI prompter displays:
// confirmation, line input, option lists, file checklists, message editing
// and a loading spinner.
package screen

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Screen is a modal overlay that handles input and renders itself.
type Screen interface {
	// Update processes a key message and returns the updated screen and any
	// command. Returning nil for the Screen signals that this screen should
	// be closed.
	Update(msg tea.KeyMsg) (Screen, tea.Cmd)

	// View renders the screen's content.
	View() string

	// Type returns the screen's type identifier.
	Type() Type
}

// Type identifies the kind of screen being displayed.
type Type int

// Screen type constants.
const (
	TypeNone Type = iota
	TypeConfirm
	TypeInput
	TypeList
	TypeChecklist
	TypeMessage
	TypeLoading
)

// String returns a human-readable name for the screen type.
func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeConfirm:
		return "confirm"
	case TypeInput:
		return "input"
	case TypeList:
		return "list"
	case TypeChecklist:
		return "checklist"
	case TypeMessage:
		return "message"
	case TypeLoading:
		return "loading"
	default:
		return "unknown"
	}
}

package screen

import (
	"math/rand/v2"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chmouel/lazycommit/internal/theme"
)

// LoadingTips is a list of helpful tips shown while waiting on the
// generation service.
var LoadingTips = []string{
	"Use --amend to rewrite the last commit's message.",
	"Pass --mode ai to split a large changeset into commit groups.",
	"Use --mode manual to hand-pick the files for each commit.",
	"--hunks stages interactively so a commit only contains what you pick.",
	"--dry-run previews messages without committing anything.",
	"--auto accepts every message unprompted; good for scripts.",
	"Set lc.model in a repository's git config to pin a model there.",
	"--scope <name> forces the scope in generated subjects.",
	"A .lazycommit.yaml in the repo root maps directories to scopes.",
	"Identical diffs reuse cached messages and never hit the service twice.",
	"Run 'lazycommit cache clear' to empty the message cache.",
	"--watch keeps running and commits as files change.",
	"Set language in the config to get messages in your language.",
	"Generate shell completions with: lazycommit completion bash.",
}

// LoadingScreen displays a modal with a spinner and a random tip.
type LoadingScreen struct {
	Message        string
	FrameIdx       int
	BorderColorIdx int
	Tip            string
	Thm            *theme.Theme
	SpinnerFrames  []string
}

// DefaultSpinnerFrames returns the text-only spinner frames.
func DefaultSpinnerFrames() []string {
	return []string{"...", ".. ", ".  "}
}

// NewLoadingScreen creates a loading modal with the given message.
func NewLoadingScreen(message string, thm *theme.Theme) *LoadingScreen {
	// Cryptographic randomness is not needed for UI tips.
	tip := LoadingTips[rand.IntN(len(LoadingTips))] //nolint:gosec

	return &LoadingScreen{
		Message:       message,
		Tip:           tip,
		Thm:           thm,
		SpinnerFrames: DefaultSpinnerFrames(),
	}
}

// Type returns the screen type.
func (s *LoadingScreen) Type() Type {
	return TypeLoading
}

// Update ignores key input; the loading screen closes on its own when the
// work finishes.
func (s *LoadingScreen) Update(_ tea.KeyMsg) (Screen, tea.Cmd) {
	return s, nil
}

func (s *LoadingScreen) loadingBorderColors() []lipgloss.Color {
	return []lipgloss.Color{
		s.Thm.Accent,
		s.Thm.SuccessFg,
		s.Thm.WarnFg,
		s.Thm.Accent,
	}
}

// Tick advances the loading animation (spinner frame and border colour).
func (s *LoadingScreen) Tick() {
	s.FrameIdx = (s.FrameIdx + 1) % len(s.SpinnerFrames)
	colours := s.loadingBorderColors()
	s.BorderColorIdx = (s.BorderColorIdx + 1) % len(colours)
}

// View renders the loading modal with spinner, message, and a random tip.
func (s *LoadingScreen) View() string {
	width := 60
	height := 9

	colours := s.loadingBorderColors()
	borderColour := colours[s.BorderColorIdx%len(colours)]

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColour).
		Padding(1, 2).
		Width(width).
		Height(height)

	spinnerFrame := s.SpinnerFrames[s.FrameIdx%len(s.SpinnerFrames)]
	spinnerStyle := lipgloss.NewStyle().
		Foreground(s.Thm.Accent).
		Bold(true)

	messageStyle := lipgloss.NewStyle().
		Foreground(s.Thm.TextFg).
		Bold(true)

	separatorStyle := lipgloss.NewStyle().
		Foreground(s.Thm.BorderDim)
	separator := separatorStyle.Render(strings.Repeat("-", width-6))

	// Truncate the tip to fit on one line.
	tipText := s.Tip
	maxTipLen := width - 12
	if len(tipText) > maxTipLen {
		tipText = tipText[:maxTipLen-3] + "..."
	}
	tipStyle := lipgloss.NewStyle().
		Foreground(s.Thm.MutedFg).
		Italic(true)

	content := lipgloss.JoinVertical(lipgloss.Center,
		spinnerStyle.Render(spinnerFrame),
		"",
		messageStyle.Render(s.Message),
		separator,
		tipStyle.Render("Tip: "+tipText),
	)

	return boxStyle.Render(content)
}

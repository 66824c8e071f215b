package cli

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chmouel/lazycommit/internal/models"
)

func newTestPrompter(input string) (*Prompter, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return NewPrompter(strings.NewReader(input), out), out
}

func TestConfirmDefaults(t *testing.T) {
	p, _ := newTestPrompter("\n")
	got, err := p.Confirm("Commit?", true)
	require.NoError(t, err)
	assert.True(t, got)

	p, _ = newTestPrompter("\n")
	got, err = p.Confirm("Commit?", false)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestConfirmAnswers(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"n\n", false},
		{"no\n", false},
		{"NO\n", false},
	}
	for _, tt := range tests {
		p, _ := newTestPrompter(tt.input)
		got, err := p.Confirm("Commit?", !tt.want)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestConfirmRetriesOnInvalidAnswer(t *testing.T) {
	p, out := newTestPrompter("maybe\ny\n")
	got, err := p.Confirm("Commit?", false)
	require.NoError(t, err)
	assert.True(t, got)
	assert.Contains(t, out.String(), "Please answer y or n.")
}

func TestConfirmHintFollowsDefault(t *testing.T) {
	p, out := newTestPrompter("y\n")
	_, err := p.Confirm("Commit?", true)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "[Y/n]")

	p, out = newTestPrompter("y\n")
	_, err = p.Confirm("Commit?", false)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "[y/N]")
}

func TestConfirmEOFIsNo(t *testing.T) {
	p, _ := newTestPrompter("")
	got, err := p.Confirm("Commit?", true)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestInput(t *testing.T) {
	p, out := newTestPrompter("gpt-5-mini\n")
	got, err := p.Input("Model", "gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "gpt-5-mini", got)
	assert.Contains(t, out.String(), "Model [gpt-4o]: ")
}

func TestInputEmptyTakesPlaceholder(t *testing.T) {
	p, _ := newTestPrompter("\n")
	got, err := p.Input("Model", "gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", got)
}

func TestInputEOFTakesPlaceholder(t *testing.T) {
	p, _ := newTestPrompter("")
	got, err := p.Input("Model", "gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", got)
}

func TestPickOne(t *testing.T) {
	p, out := newTestPrompter("2\n")
	got, err := p.PickOne("Apply this commit message?", []string{"Accept", "Edit", "Cancel"})
	require.NoError(t, err)
	assert.Equal(t, 1, got)
	assert.Contains(t, out.String(), "  [1] Accept\n")
	assert.Contains(t, out.String(), "  [3] Cancel\n")
	assert.Contains(t, out.String(), "Select [1-3, empty cancels]: ")
}

func TestPickOneEmptyCancels(t *testing.T) {
	p, _ := newTestPrompter("\n")
	got, err := p.PickOne("Pick", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, -1, got)
}

func TestPickOneEOFCancels(t *testing.T) {
	p, _ := newTestPrompter("")
	got, err := p.PickOne("Pick", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, -1, got)
}

func TestPickOneRetriesOnInvalidSelection(t *testing.T) {
	p, out := newTestPrompter("9\nx\n1\n")
	got, err := p.PickOne("Pick", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 0, got)
	assert.Contains(t, out.String(), `Invalid selection: "9"`)
	assert.Contains(t, out.String(), `Invalid selection: "x"`)
}

func TestPickMany(t *testing.T) {
	p, _ := newTestPrompter("1 3\n")
	got, err := p.PickMany("Pick files", []string{"a.go", "b.go", "c.go"})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, got)
}

func TestPickManyCommaSeparated(t *testing.T) {
	p, _ := newTestPrompter("2,3\n")
	got, err := p.PickMany("Pick files", []string{"a.go", "b.go", "c.go"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, got)
}

func TestPickManyAllShortcut(t *testing.T) {
	for _, input := range []string{"a\n", "A\n", "all\n"} {
		p, _ := newTestPrompter(input)
		got, err := p.PickMany("Pick files", []string{"a.go", "b.go", "c.go"})
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2}, got, "input %q", input)
	}
}

func TestPickManyDeduplicates(t *testing.T) {
	p, _ := newTestPrompter("1 1 2\n")
	got, err := p.PickMany("Pick files", []string{"a.go", "b.go"})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, got)
}

func TestPickManyEmptyCancels(t *testing.T) {
	p, _ := newTestPrompter("\n")
	got, err := p.PickMany("Pick files", []string{"a.go"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPickManyRetriesOnInvalidSelection(t *testing.T) {
	p, out := newTestPrompter("1 9\n2\n")
	got, err := p.PickMany("Pick files", []string{"a.go", "b.go"})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, got)
	assert.Contains(t, out.String(), `Invalid selection: "9"`)
}

func stubEditor(t *testing.T, editor string, run func(editor, path string) error) {
	t.Helper()
	origLookup := lookupEditor
	origRun := runEditor
	lookupEditor = func() string { return editor }
	runEditor = run
	t.Cleanup(func() {
		lookupEditor = origLookup
		runEditor = origRun
	})
}

func TestEditMessageUsesEditor(t *testing.T) {
	var seenPath, seenInitial string
	stubEditor(t, "vi", func(_, path string) error {
		seenPath = path
		data, err := os.ReadFile(path) // #nosec G304 -- test temp file
		if err != nil {
			return err
		}
		seenInitial = string(data)
		return os.WriteFile(path, []byte("fix: resolve race\n\nGuard the map with a mutex.\n"), 0o600)
	})

	p, _ := newTestPrompter("")
	msg, ok, err := p.EditMessage("feat: add thing", "Some body.")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "fix: resolve race", msg.Subject)
	assert.Equal(t, "Guard the map with a mutex.", msg.Body)
	assert.Equal(t, "feat: add thing\n\nSome body.\n", seenInitial)
	assert.Contains(t, seenPath, "lazycommit-")
	assert.NoFileExists(t, seenPath)
}

func TestEditMessageAbandonedOnEmptySubject(t *testing.T) {
	stubEditor(t, "vi", func(_, path string) error {
		return os.WriteFile(path, []byte("\n\n\n"), 0o600)
	})

	p, _ := newTestPrompter("")
	_, ok, err := p.EditMessage("feat: add thing", "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEditMessageEditorFailure(t *testing.T) {
	stubEditor(t, "broken-editor", func(_, _ string) error {
		return errors.New("exit status 1")
	})

	p, _ := newTestPrompter("")
	_, _, err := p.EditMessage("feat: add thing", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken-editor")
}

func TestEditMessageInlineFallback(t *testing.T) {
	stubEditor(t, "", func(_, _ string) error {
		t.Fatal("runEditor should not be called without an editor")
		return nil
	})

	p, _ := newTestPrompter("fix: new subject\n-\n")
	msg, ok, err := p.EditMessage("feat: old subject", "old body")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "fix: new subject", msg.Subject)
	assert.Empty(t, msg.Body)
}

func TestEditMessageInlineKeepsDefaults(t *testing.T) {
	stubEditor(t, "", nil)

	p, _ := newTestPrompter("\n\n")
	msg, ok, err := p.EditMessage("feat: old subject", "old body")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "feat: old subject", msg.Subject)
	assert.Equal(t, "old body", msg.Body)
}

func TestParseEditedMessage(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    models.PipelineMessage
		wantOK  bool
	}{
		{
			name:    "subject only",
			content: "feat: add parser\n",
			want:    models.PipelineMessage{Subject: "feat: add parser"},
			wantOK:  true,
		},
		{
			name:    "subject and body",
			content: "feat: add parser\n\nHandles nested blocks.\nAnd comments.\n",
			want:    models.PipelineMessage{Subject: "feat: add parser", Body: "Handles nested blocks.\nAnd comments."},
			wantOK:  true,
		},
		{
			name:    "crlf line endings",
			content: "fix: windows\r\n\r\nBody line.\r\n",
			want:    models.PipelineMessage{Subject: "fix: windows", Body: "Body line."},
			wantOK:  true,
		},
		{
			name:    "blank file abandons",
			content: "   \n\n",
			wantOK:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseEditedMessage(tt.content)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	p, out := newTestPrompter("")
	ran := false
	err := p.Progress("Generating commit message", func() error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Contains(t, out.String(), "Generating commit message...\n")
}

func TestProgressPropagatesError(t *testing.T) {
	p, _ := newTestPrompter("")
	wantErr := errors.New("service down")
	err := p.Progress("Generating commit message", func() error { return wantErr })
	assert.ErrorIs(t, err, wantErr)
}

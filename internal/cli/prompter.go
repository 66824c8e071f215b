// Package cli implements the plain prompter: numbered menus and y/n
// questions on stderr, answers read line by line from stdin, $EDITOR on a
// temp file for message editing. It serves non-TTY runs and the --plain
// and --auto flags.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/chmouel/lazycommit/internal/models"
)

// lookupEditor returns the user's configured editor, empty when none is
// set. Package-level so tests can replace it.
var lookupEditor = func() string {
	for _, name := range []string{"VISUAL", "EDITOR"} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// runEditor opens path in the editor with the terminal attached.
// Package-level so tests can replace it.
var runEditor = func(editor, path string) error {
	parts := strings.Fields(editor)
	args := append(parts[1:], path)
	//nolint:gosec // the editor is the user's own configured command
	cmd := exec.Command(parts[0], args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Prompter asks on stderr and reads answers from stdin. One scanner is
// kept for the lifetime of the prompter so buffered input survives
// across questions.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewPrompter(stdin io.Reader, stderr io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(stdin), out: stderr}
}

// NewStdioPrompter is a convenience wrapper using os.Stdin/os.Stderr.
func NewStdioPrompter() *Prompter {
	return NewPrompter(os.Stdin, os.Stderr)
}

// readLine returns the next trimmed input line; ok is false on EOF.
func (p *Prompter) readLine() (string, bool) {
	if !p.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.in.Text()), true
}

// Confirm asks a yes/no question. Empty input takes the default; EOF
// counts as no.
func (p *Prompter) Confirm(prompt string, defaultYes bool) (bool, error) {
	hint := "Y/n"
	if !defaultYes {
		hint = "y/N"
	}
	for {
		fmt.Fprintf(p.out, "%s [%s]: ", prompt, hint)
		line, ok := p.readLine()
		if !ok {
			return false, nil
		}
		switch strings.ToLower(line) {
		case "":
			return defaultYes, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "Please answer y or n.")
	}
}

// Input reads one line. Empty input returns placeholder, which doubles
// as the default value.
func (p *Prompter) Input(prompt, placeholder string) (string, error) {
	if placeholder != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", prompt, placeholder)
	} else {
		fmt.Fprintf(p.out, "%s: ", prompt)
	}
	line, ok := p.readLine()
	if !ok || line == "" {
		return placeholder, nil
	}
	return line, nil
}

// PickOne displays a numbered list and reads the user's choice. Empty
// input or EOF cancels with -1.
func (p *Prompter) PickOne(title string, options []string) (int, error) {
	fmt.Fprintf(p.out, "\n%s\n\n", title)
	for i, opt := range options {
		fmt.Fprintf(p.out, "  [%d] %s\n", i+1, opt)
	}
	for {
		fmt.Fprintf(p.out, "\nSelect [1-%d, empty cancels]: ", len(options))
		line, ok := p.readLine()
		if !ok || line == "" {
			return -1, nil
		}
		idx, err := strconv.Atoi(line)
		if err != nil || idx < 1 || idx > len(options) {
			fmt.Fprintf(p.out, "Invalid selection: %q\n", line)
			continue
		}
		return idx - 1, nil
	}
}

// PickMany displays a numbered list and reads a space- or
// comma-separated selection. "a" selects everything; empty input or EOF
// cancels with an empty selection.
func (p *Prompter) PickMany(title string, options []string) ([]int, error) {
	fmt.Fprintf(p.out, "\n%s\n\n", title)
	for i, opt := range options {
		fmt.Fprintf(p.out, "  [%d] %s\n", i+1, opt)
	}
	for {
		fmt.Fprintf(p.out, "\nSelect numbers (e.g. 1 3, a = all, empty cancels): ")
		line, ok := p.readLine()
		if !ok || line == "" {
			return nil, nil
		}
		if strings.EqualFold(line, "a") || strings.EqualFold(line, "all") {
			all := make([]int, len(options))
			for i := range options {
				all[i] = i
			}
			return all, nil
		}

		fields := strings.FieldsFunc(line, func(r rune) bool { return r == ' ' || r == ',' })
		picked := make([]int, 0, len(fields))
		seen := make(map[int]bool)
		valid := true
		for _, field := range fields {
			idx, err := strconv.Atoi(field)
			if err != nil || idx < 1 || idx > len(options) {
				fmt.Fprintf(p.out, "Invalid selection: %q\n", field)
				valid = false
				break
			}
			if !seen[idx-1] {
				seen[idx-1] = true
				picked = append(picked, idx-1)
			}
		}
		if valid {
			return picked, nil
		}
	}
}

// EditMessage opens subject and body in $EDITOR via a temp file; without
// an editor it falls back to inline prompts. ok is false when the edit
// was abandoned.
func (p *Prompter) EditMessage(subject, body string) (models.PipelineMessage, bool, error) {
	editor := lookupEditor()
	if strings.TrimSpace(editor) == "" {
		return p.editInline(subject, body)
	}

	tmp, err := os.CreateTemp("", "lazycommit-*.txt")
	if err != nil {
		return models.PipelineMessage{}, false, err
	}
	path := tmp.Name()
	defer func() { _ = os.Remove(path) }()

	content := subject + "\n"
	if body != "" {
		content += "\n" + body + "\n"
	}
	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		return models.PipelineMessage{}, false, err
	}
	if err := tmp.Close(); err != nil {
		return models.PipelineMessage{}, false, err
	}

	if err := runEditor(editor, path); err != nil {
		return models.PipelineMessage{}, false, fmt.Errorf("editor %q: %w", editor, err)
	}

	edited, err := os.ReadFile(path) // #nosec G304 -- our own temp file
	if err != nil {
		return models.PipelineMessage{}, false, err
	}
	msg, ok := parseEditedMessage(string(edited))
	return msg, ok, nil
}

func (p *Prompter) editInline(subject, body string) (models.PipelineMessage, bool, error) {
	newSubject, err := p.Input("Subject", subject)
	if err != nil {
		return models.PipelineMessage{}, false, err
	}
	if newSubject == "" {
		return models.PipelineMessage{}, false, nil
	}
	newBody, err := p.Input(`Body ("-" clears)`, body)
	if err != nil {
		return models.PipelineMessage{}, false, err
	}
	if newBody == "-" {
		newBody = ""
	}
	return models.PipelineMessage{Subject: newSubject, Body: newBody}, true, nil
}

// parseEditedMessage splits an edited file into subject (first line) and
// body (the rest). An empty subject abandons the edit.
func parseEditedMessage(content string) (models.PipelineMessage, bool) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")
	subject := strings.TrimSpace(lines[0])
	if subject == "" {
		return models.PipelineMessage{}, false
	}
	body := ""
	if len(lines) > 1 {
		body = strings.TrimSpace(strings.Join(lines[1:], "\n"))
	}
	return models.PipelineMessage{Subject: subject, Body: body}, true
}

// Progress prints a single status line and runs fn to completion.
func (p *Prompter) Progress(label string, fn func() error) error {
	fmt.Fprintf(p.out, "%s...\n", label)
	return fn()
}

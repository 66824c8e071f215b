package grouping

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chmouel/lazycommit/internal/models"
)

type stubSender struct {
	replies      []string
	errs         []error
	calls        int
	payloads     []string
	instructions []string
}

func (s *stubSender) Send(_ context.Context, instruction, payload string) (string, error) {
	i := s.calls
	s.calls++
	s.instructions = append(s.instructions, instruction)
	s.payloads = append(s.payloads, payload)

	var reply string
	if i < len(s.replies) {
		reply = s.replies[i]
	}
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return reply, err
}

func entriesFor(paths ...string) []models.ChangeEntry {
	entries := make([]models.ChangeEntry, 0, len(paths))
	for _, p := range paths {
		entries = append(entries, models.ChangeEntry{Path: p, Status: " M"})
	}
	return entries
}

func TestStructural(t *testing.T) {
	entries := entriesFor(
		"internal/git/service.go",
		"README.md",
		"internal/git/service_test.go",
		"cmd/app/main.go",
		"Makefile",
	)

	groups := Structural(entries)
	require.Len(t, groups, 3)
	assert.Equal(t, models.Group{Name: "internal", Files: []string{"internal/git/service.go", "internal/git/service_test.go"}}, groups[0])
	assert.Equal(t, models.Group{Name: "misc", Files: []string{"README.md", "Makefile"}}, groups[1])
	assert.Equal(t, models.Group{Name: "cmd", Files: []string{"cmd/app/main.go"}}, groups[2])
}

func TestSanitize(t *testing.T) {
	allowed := map[string]bool{
		"api/server.go": true,
		"api/routes.go": true,
		"docs/usage.md": true,
	}
	groups := sanitize([]models.Group{
		{Name: "api", Files: []string{"api/server.go", "api/invented.go", "api/routes.go"}},
		{Name: "docs", Files: []string{"docs/usage.md", "api/server.go"}},
		{Name: "empty", Files: []string{"not/allowed.go"}},
	}, allowed)

	require.Len(t, groups, 2)
	assert.Equal(t, []string{"api/server.go", "api/routes.go"}, groups[0].Files)
	assert.Equal(t, []string{"docs/usage.md"}, groups[1].Files)

	// Disjointness and containment over the sanitized output.
	seen := map[string]bool{}
	for _, g := range groups {
		for _, f := range g.Files {
			assert.False(t, seen[f], "file %s appears twice", f)
			assert.True(t, allowed[f], "file %s not in allowed set", f)
			seen[f] = true
		}
	}
}

func TestSanitizeDefaultsMissingNames(t *testing.T) {
	allowed := map[string]bool{
		"api/a.go": true, "api/b.go": true,
		"web/c.go": true, "docs/d.md": true,
		"root.go": true,
	}

	groups := sanitize([]models.Group{
		{Files: []string{"api/a.go", "api/b.go"}},
		{Name: "  ", Files: []string{"web/c.go", "docs/d.md"}},
		{Files: []string{"root.go"}},
	}, allowed)

	require.Len(t, groups, 3)
	assert.Equal(t, "api", groups[0].Name)
	assert.Equal(t, "misc", groups[1].Name)
	assert.Equal(t, "misc", groups[2].Name)
}

func TestGroupUsesServiceReply(t *testing.T) {
	stub := &stubSender{replies: []string{
		"Here you go:\n[{\"name\":\"git\",\"files\":[\"internal/git/service.go\"]},{\"name\":\"docs\",\"files\":[\"README.md\"]}]\nAnything else?",
	}}
	g := NewGrouper(stub, nil)

	groups := g.Group(context.Background(), entriesFor("internal/git/service.go", "README.md"), "stat")
	require.Len(t, groups, 2)
	assert.Equal(t, "git", groups[0].Name)
	assert.Equal(t, "docs", groups[1].Name)
	assert.Equal(t, 1, stub.calls)
	assert.Contains(t, stub.payloads[0], "Diffstat:\nstat")
	assert.Contains(t, stub.instructions[0], "strict JSON")
}

func TestGroupFallsBackOnServiceError(t *testing.T) {
	stub := &stubSender{errs: []error{errors.New("service down")}}
	g := NewGrouper(stub, nil)

	groups := g.Group(context.Background(), entriesFor("a/x.go", "b/y.go"), "")
	require.Len(t, groups, 2)
	assert.Equal(t, "a", groups[0].Name)
	assert.Equal(t, "b", groups[1].Name)
}

func TestGroupFallsBackOnUnusableReplies(t *testing.T) {
	for name, reply := range map[string]string{
		"empty list":    "[]",
		"no array":      "I grouped them mentally.",
		"invalid json":  "[{name: unquoted}]",
		"only unknowns": `[{"name":"x","files":["not/yours.go"]}]`,
		"empty reply":   "",
		"object reply":  `{"name":"x","files":["a/x.go"]}`,
	} {
		t.Run(name, func(t *testing.T) {
			stub := &stubSender{replies: []string{reply}}
			g := NewGrouper(stub, nil)

			groups := g.Group(context.Background(), entriesFor("a/x.go", "b/y.go"), "")
			require.Len(t, groups, 2)
			assert.Equal(t, "a", groups[0].Name)
		})
	}
}

func TestGroupEmptyChangeset(t *testing.T) {
	g := NewGrouper(&stubSender{}, nil)
	assert.Nil(t, g.Group(context.Background(), nil, ""))
}

func TestGroupBatchedResubmitsOversizedStructuralGroups(t *testing.T) {
	var entries []models.ChangeEntry
	for i := 0; i < 10; i++ {
		entries = append(entries, models.ChangeEntry{Path: fmt.Sprintf("alpha/f%d.go", i), Status: " M"})
	}
	for i := 0; i < 4; i++ {
		entries = append(entries, models.ChangeEntry{Path: fmt.Sprintf("beta/f%d.go", i), Status: "A "})
	}
	for i := 0; i < 16; i++ {
		entries = append(entries, models.ChangeEntry{Path: fmt.Sprintf("gamma/f%d.go", i), Status: " M"})
	}

	alphaReply := `[{"name":"alpha-core","files":["alpha/f0.go","alpha/f1.go","alpha/f2.go","alpha/f3.go","alpha/f4.go"]},` +
		`{"name":"alpha-tests","files":["alpha/f5.go","alpha/f6.go","alpha/f7.go","alpha/f8.go","alpha/f9.go"]}]`
	stub := &stubSender{
		replies: []string{alphaReply, ""},
		errs:    []error{nil, errors.New("service down")},
	}
	g := NewGrouper(stub, nil)

	groups := g.Group(context.Background(), entries, "ignored for batched requests")
	require.Len(t, groups, 4)
	assert.Equal(t, "alpha-core", groups[0].Name)
	assert.Equal(t, "alpha-tests", groups[1].Name)
	assert.Equal(t, "beta", groups[2].Name)
	assert.Len(t, groups[2].Files, 4)
	assert.Equal(t, "gamma", groups[3].Name)
	assert.Len(t, groups[3].Files, 16)

	require.Equal(t, 2, stub.calls)
	assert.Contains(t, stub.payloads[0], "alpha/f0.go")
	assert.NotContains(t, stub.payloads[0], "beta/")
	assert.NotContains(t, stub.payloads[0], "gamma/")
}

func TestGroupForceBatchSkipsServiceForSmallGroups(t *testing.T) {
	stub := &stubSender{}
	g := NewGrouper(stub, nil)
	g.ForceBatch = true

	groups := g.Group(context.Background(), entriesFor("a/x.go", "a/y.go", "b/z.go"), "")
	require.Len(t, groups, 2)
	assert.Equal(t, "a", groups[0].Name)
	assert.Equal(t, "b", groups[1].Name)
	assert.Zero(t, stub.calls)
}

func TestGroupTokenEstimateWarning(t *testing.T) {
	stub := &stubSender{replies: []string{`[{"name":"a","files":["a/x.go"]}]`}}
	var warnings []string
	g := NewGrouper(stub, func(msg string) { warnings = append(warnings, msg) })

	groups := g.Group(context.Background(), entriesFor("a/x.go"), strings.Repeat("x", 90000))
	require.Len(t, groups, 1)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "22,5")
	assert.Equal(t, 1, stub.calls)
}

func TestGroupNoWarningForSmallPayload(t *testing.T) {
	stub := &stubSender{replies: []string{`[{"name":"a","files":["a/x.go"]}]`}}
	var warnings []string
	g := NewGrouper(stub, func(msg string) { warnings = append(warnings, msg) })

	g.Group(context.Background(), entriesFor("a/x.go"), "short stat")
	assert.Empty(t, warnings)
}

func TestBuildPayload(t *testing.T) {
	payload := buildPayload([]models.ChangeEntry{
		{Path: "a/x.go", Status: " M"},
		{Path: "b/new.go", Status: "??"},
	}, "2 files changed\n")

	assert.Equal(t, "Changed files:\n M a/x.go\n?? b/new.go\n\nDiffstat:\n2 files changed\n", payload)
}

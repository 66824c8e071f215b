// Package payload builds the bounded textual description of a change that
// is sent to the generation service. The output is deterministic for
// identical inputs: the cache key is derived from this exact text.
package payload

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/chmouel/lazycommit/internal/git"
	"github.com/chmouel/lazycommit/internal/log"
	"github.com/chmouel/lazycommit/internal/models"
)

// differ provides the diff output embedded in the payload.
type differ interface {
	DiffStat(ctx context.Context, staged bool, paths []string) (string, error)
	Diff(ctx context.Context, staged bool, paths []string) (string, error)
}

var _ differ = (*git.Service)(nil)

// maxIgnoredNames caps how many excluded paths are listed by name.
const maxIgnoredNames = 5

// Extensions whose diffs never help a language model: binaries, media,
// archives and lock files.
var denyExtensions = map[string]struct{}{
	".lock": {}, ".bin": {}, ".exe": {}, ".dll": {}, ".so": {}, ".dylib": {},
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".ico": {}, ".webp": {},
	".svg": {}, ".pdf": {}, ".zip": {}, ".tar": {}, ".gz": {}, ".bz2": {},
	".xz": {}, ".7z": {}, ".jar": {}, ".woff": {}, ".woff2": {}, ".ttf": {},
	".eot": {}, ".otf": {}, ".mp3": {}, ".mp4": {}, ".avi": {}, ".mov": {},
	".webm": {}, ".wasm": {},
}

// Generated dependency manifests, matched by file name.
var denyFilenames = map[string]struct{}{
	"package-lock.json": {}, "pnpm-lock.yaml": {}, "go.sum": {},
	"composer.lock": {}, "Gemfile.lock": {}, "poetry.lock": {}, "uv.lock": {},
}

// Path segments marking vendored or generated trees.
var denySegments = map[string]struct{}{
	"vendor": {}, "node_modules": {}, "dist": {}, "third_party": {},
}

// Assembler partitions a changeset into text and ignored paths and renders
// the payload sections in a fixed order.
type Assembler struct {
	vc            differ
	extraSegments map[string]struct{}
	extraSuffixes []string
}

// NewAssembler returns an Assembler using vc for diff output. extraIgnores
// come from the repository hints file: "*.suffix" entries match on file
// name, anything else is treated as a path segment.
func NewAssembler(vc differ, extraIgnores []string) *Assembler {
	a := &Assembler{
		vc:            vc,
		extraSegments: map[string]struct{}{},
	}
	for _, entry := range extraIgnores {
		if suffix, ok := strings.CutPrefix(entry, "*"); ok {
			a.extraSuffixes = append(a.extraSuffixes, suffix)
			continue
		}
		a.extraSegments[entry] = struct{}{}
	}
	return a
}

// Request describes one payload to assemble.
type Request struct {
	Entries       []models.ChangeEntry
	Staged        bool
	MaxDiffChars  int
	RecentCommits []string
}

// Build renders the payload: recent history, file summary, ignored-files
// note, diffstat, then the patch (possibly truncated or omitted).
func (a *Assembler) Build(ctx context.Context, req Request) (string, error) {
	textPaths, ignoredPaths := a.partition(req.Entries)
	allPaths := entryPaths(req.Entries)

	var sections []string

	if len(req.RecentCommits) > 0 {
		var b strings.Builder
		b.WriteString("Recent commit subjects (style reference):\n")
		for _, subject := range req.RecentCommits {
			fmt.Fprintf(&b, "- %s\n", subject)
		}
		sections = append(sections, strings.TrimRight(b.String(), "\n"))
	}

	var files strings.Builder
	files.WriteString("Files in this change:\n")
	for _, entry := range req.Entries {
		fmt.Fprintf(&files, "%s %s\n", entry.Status, entry.Path)
	}
	sections = append(sections, strings.TrimRight(files.String(), "\n"))

	if len(ignoredPaths) > 0 {
		sections = append(sections, ignoredNote(ignoredPaths))
	}

	stat, err := a.vc.DiffStat(ctx, req.Staged, allPaths)
	if err != nil {
		return "", err
	}
	if stat != "" {
		sections = append(sections, "Diffstat:\n"+stat)
	}

	patch, err := a.patchSection(ctx, req, textPaths)
	if err != nil {
		return "", err
	}
	if patch != "" {
		sections = append(sections, patch)
	}

	return strings.Join(sections, "\n\n") + "\n", nil
}

func (a *Assembler) patchSection(ctx context.Context, req Request, textPaths []string) (string, error) {
	if len(textPaths) == 0 {
		return "No text diff available for these paths.", nil
	}

	diff, err := a.vc.Diff(ctx, req.Staged, textPaths)
	if err != nil {
		return "", err
	}
	if diff == "" {
		return "No text diff available for these paths.", nil
	}

	limit := req.MaxDiffChars
	if limit <= 0 {
		limit = 1
	}

	// A diff beyond twice the budget would dominate the payload even after
	// truncation, so it is dropped entirely in favor of the diffstat.
	if len(diff) > 2*limit {
		log.Printf("payload: diff of %d chars omitted (budget %d)", len(diff), limit)
		return fmt.Sprintf("Diff omitted: %d chars exceeds twice the %d-char budget; refer to the diffstat above.", len(diff), limit), nil
	}

	if len(diff) > limit {
		log.Printf("payload: diff truncated from %d to %d chars", len(diff), limit)
		return diff[:limit] + fmt.Sprintf("\n[diff truncated at %d chars]", limit), nil
	}
	return diff, nil
}

// partition splits entries into diffable paths and ignored paths, keeping
// the input order.
func (a *Assembler) partition(entries []models.ChangeEntry) (textPaths, ignoredPaths []string) {
	for _, entry := range entries {
		if a.ignored(entry.Path) {
			ignoredPaths = append(ignoredPaths, entry.Path)
			continue
		}
		textPaths = append(textPaths, entry.Path)
	}
	return textPaths, ignoredPaths
}

func (a *Assembler) ignored(p string) bool {
	base := path.Base(p)
	if _, ok := denyFilenames[base]; ok {
		return true
	}
	if strings.Contains(base, ".min.") {
		return true
	}

	ext := strings.ToLower(path.Ext(base))
	if _, ok := denyExtensions[ext]; ok {
		return true
	}
	for _, suffix := range a.extraSuffixes {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}

	for _, segment := range strings.Split(path.Dir(p), "/") {
		if _, ok := denySegments[segment]; ok {
			return true
		}
		if _, ok := a.extraSegments[segment]; ok {
			return true
		}
	}
	return false
}

func ignoredNote(ignoredPaths []string) string {
	shown := ignoredPaths
	remainder := 0
	if len(shown) > maxIgnoredNames {
		remainder = len(shown) - maxIgnoredNames
		shown = shown[:maxIgnoredNames]
	}
	note := "Binary or vendored paths excluded from the diff: " + strings.Join(shown, ", ")
	if remainder > 0 {
		note += fmt.Sprintf(" (and %d more)", remainder)
	}
	return note
}

func entryPaths(entries []models.ChangeEntry) []string {
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		paths = append(paths, entry.Path)
	}
	return paths
}

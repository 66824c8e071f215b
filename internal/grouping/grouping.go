// Package grouping partitions a changeset into independently-committable
// groups, either by asking the generation service or by a structural
// top-level-directory split. A structural result is always available, so
// the caller never sees a grouping failure.
package grouping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/chmouel/lazycommit/internal/llm"
	"github.com/chmouel/lazycommit/internal/log"
	"github.com/chmouel/lazycommit/internal/models"
)

const (
	// batchThreshold is the changeset size above which the Grouper splits
	// structurally first instead of sending everything in one request.
	batchThreshold = 25
	// smallGroupSize is the structural group size accepted as-is when
	// batching; larger structural groups are re-submitted for sub-grouping.
	smallGroupSize = 5
	// tokenWarnThreshold triggers an advisory warning on the estimated
	// token count of a grouping request. The request proceeds regardless.
	tokenWarnThreshold = 20000
)

const groupInstruction = `You are organizing a set of changed files into independent commits.

Rules:
- Reply with strict JSON of the form [{"name": "...", "files": ["..."]}] and nothing else: no markdown fences, no prose around it.
- Each group must be a coherent unit a reviewer would accept as one commit.
- Use each file at most once and only files from the list.
- name: a short lower-case label, typically the component or directory.`

type sender interface {
	Send(ctx context.Context, instruction, payload string) (string, error)
}

var _ sender = (*llm.Client)(nil)

// Grouper proposes commit groups for a changeset.
type Grouper struct {
	client sender
	warn   func(msg string)

	// ForceBatch applies the structural-first batching path regardless of
	// changeset size (the --batch flag).
	ForceBatch bool
}

// NewGrouper wraps client. warn receives advisory messages (may be nil).
func NewGrouper(client sender, warn func(msg string)) *Grouper {
	return &Grouper{client: client, warn: warn}
}

// Group partitions entries into commit groups. Above the batching
// threshold the changeset is split structurally and only oversized
// structural groups are sent for sub-grouping; below it a single service
// request covers the whole changeset. Service failures degrade to the
// structural partition.
func (g *Grouper) Group(ctx context.Context, entries []models.ChangeEntry, diffStat string) []models.Group {
	if len(entries) == 0 {
		return nil
	}
	if g.ForceBatch || len(entries) > batchThreshold {
		log.Printf("grouping: batching %d entries structurally first", len(entries))
		return g.groupBatched(ctx, entries)
	}

	groups, err := g.remote(ctx, entries, diffStat)
	if err != nil {
		log.Printf("grouping: falling back to structural partition: %v", err)
		return Structural(entries)
	}
	return groups
}

func (g *Grouper) groupBatched(ctx context.Context, entries []models.ChangeEntry) []models.Group {
	byPath := make(map[string]models.ChangeEntry, len(entries))
	for _, e := range entries {
		byPath[e.Path] = e
	}

	var out []models.Group
	for _, structural := range Structural(entries) {
		if len(structural.Files) <= smallGroupSize {
			out = append(out, structural)
			continue
		}

		subset := make([]models.ChangeEntry, 0, len(structural.Files))
		for _, f := range structural.Files {
			subset = append(subset, byPath[f])
		}
		sub, err := g.remote(ctx, subset, "")
		if err != nil {
			log.Printf("grouping: keeping structural group %q: %v", structural.Name, err)
			out = append(out, structural)
			continue
		}
		out = append(out, sub...)
	}
	return out
}

func (g *Grouper) remote(ctx context.Context, entries []models.ChangeEntry, diffStat string) ([]models.Group, error) {
	payload := buildPayload(entries, diffStat)
	if estimate := len(payload) / 4; estimate > tokenWarnThreshold {
		g.warnf("grouping request is roughly %s tokens; the service may truncate it", humanize.Comma(int64(estimate)))
	}

	raw, err := g.client.Send(ctx, groupInstruction, payload)
	if err != nil {
		return nil, err
	}

	allowed := make(map[string]bool, len(entries))
	for _, e := range entries {
		allowed[e.Path] = true
	}
	groups := parseGroups(raw, allowed)
	if len(groups) == 0 {
		return nil, errors.New("no usable groups in service reply")
	}
	return groups, nil
}

func (g *Grouper) warnf(format string, args ...any) {
	if g.warn != nil {
		g.warn(fmt.Sprintf(format, args...))
	}
}

func buildPayload(entries []models.ChangeEntry, diffStat string) string {
	var b strings.Builder
	b.WriteString("Changed files:\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "%s %s\n", e.Status, e.Path)
	}
	if diffStat != "" {
		b.WriteString("\nDiffstat:\n")
		b.WriteString(strings.TrimRight(diffStat, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

// parseGroups extracts the JSON array between the first [ and the last ]
// of raw, then sanitizes it. A missing or undecodable array yields nil.
func parseGroups(raw string, allowed map[string]bool) []models.Group {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end <= start {
		log.Printf("grouping: reply without JSON array: %.200q", raw)
		return nil
	}

	var reply []struct {
		Name  string   `json:"name"`
		Files []string `json:"files"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &reply); err != nil {
		log.Printf("grouping: undecodable reply array: %v", err)
		return nil
	}

	groups := make([]models.Group, 0, len(reply))
	for _, r := range reply {
		groups = append(groups, models.Group{Name: r.Name, Files: r.Files})
	}
	return sanitize(groups, allowed)
}

// sanitize drops files outside allowed, deduplicates files across groups
// by first-seen order, drops groups left empty and defaults missing
// names. Output groups are pairwise disjoint and their union is a subset
// of allowed.
func sanitize(groups []models.Group, allowed map[string]bool) []models.Group {
	seen := make(map[string]bool)
	out := make([]models.Group, 0, len(groups))
	for _, g := range groups {
		files := make([]string, 0, len(g.Files))
		for _, f := range g.Files {
			if !allowed[f] || seen[f] {
				continue
			}
			seen[f] = true
			files = append(files, f)
		}
		if len(files) == 0 {
			continue
		}
		name := strings.TrimSpace(g.Name)
		if name == "" {
			name = defaultName(files)
		}
		out = append(out, models.Group{Name: name, Files: files})
	}
	return out
}

// Structural partitions entries by top-level path segment, in first-seen
// order. Root-level files share a single "misc" group.
func Structural(entries []models.ChangeEntry) []models.Group {
	var order []string
	buckets := make(map[string][]string)
	for _, e := range entries {
		name := topSegment(e.Path)
		if name == "" {
			name = "misc"
		}
		if _, ok := buckets[name]; !ok {
			order = append(order, name)
		}
		buckets[name] = append(buckets[name], e.Path)
	}

	groups := make([]models.Group, 0, len(order))
	for _, name := range order {
		groups = append(groups, models.Group{Name: name, Files: buckets[name]})
	}
	return groups
}

func defaultName(files []string) string {
	name := ""
	for _, f := range files {
		seg := topSegment(f)
		if seg == "" || (name != "" && name != seg) {
			return "misc"
		}
		name = seg
	}
	if name == "" {
		return "misc"
	}
	return name
}

func topSegment(path string) string {
	if i := strings.Index(path, "/"); i > 0 {
		return path[:i]
	}
	return ""
}

// Package pipeline drives the commit flow: pick a group of changed files,
// stage it, obtain a message (cache or generation service), validate it,
// let the human decide, then commit or roll back. One group is processed
// at a time; the session loops until the changeset is exhausted or every
// remaining file has been skipped.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/chmouel/lazycommit/internal/cache"
	"github.com/chmouel/lazycommit/internal/config"
	"github.com/chmouel/lazycommit/internal/convention"
	"github.com/chmouel/lazycommit/internal/git"
	"github.com/chmouel/lazycommit/internal/grouping"
	"github.com/chmouel/lazycommit/internal/llm"
	"github.com/chmouel/lazycommit/internal/log"
	"github.com/chmouel/lazycommit/internal/models"
	"github.com/chmouel/lazycommit/internal/payload"
)

// recentCommitCount is how many recent subjects prime the generation
// request for style.
const recentCommitCount = 5

type gitService interface {
	Status(ctx context.Context) ([]models.ChangeEntry, error)
	DiffStat(ctx context.Context, staged bool, paths []string) (string, error)
	Stage(ctx context.Context, paths []string) error
	StageInteractive(ctx context.Context, paths []string) error
	HasStagedChanges(ctx context.Context, paths []string) (bool, error)
	Unstage(ctx context.Context, paths []string) error
	Commit(ctx context.Context, paths []string, subject, body string) error
	Amend(ctx context.Context, subject, body string) error
	RecentCommits(ctx context.Context, n int) ([]string, error)
	LastCommitMessage(ctx context.Context) (string, error)
}

type payloadBuilder interface {
	Build(ctx context.Context, req payload.Request) (string, error)
}

type messageCache interface {
	Get(key string) *models.CachedMessage
	Put(key string, msg models.PipelineMessage) error
}

type messageGenerator interface {
	Generate(ctx context.Context, payload, scope string) (models.PipelineMessage, error)
}

type changeGrouper interface {
	Group(ctx context.Context, entries []models.ChangeEntry, diffStat string) []models.Group
}

var (
	_ gitService       = (*git.Service)(nil)
	_ payloadBuilder   = (*payload.Assembler)(nil)
	_ messageCache     = (*cache.ContentCache)(nil)
	_ messageGenerator = (*llm.Generator)(nil)
	_ changeGrouper    = (*grouping.Grouper)(nil)
)

// Prompter is the human collaborator. The TUI and stdio implementations
// both satisfy it; the pipeline never cares which one it got. Cancel is
// reported in-band: false from Confirm, -1 from PickOne, an empty slice
// from PickMany, ok=false from EditMessage.
type Prompter interface {
	Confirm(prompt string, defaultYes bool) (bool, error)
	Input(prompt, placeholder string) (string, error)
	PickOne(title string, options []string) (int, error)
	PickMany(title string, options []string) ([]int, error)
	EditMessage(subject, body string) (models.PipelineMessage, bool, error)
	Progress(label string, fn func() error) error
}

// Orchestrator wires the collaborators for one invocation. All fields
// except Output must be set before Run.
type Orchestrator struct {
	Git       gitService
	Assembler payloadBuilder
	Cache     messageCache
	Generator messageGenerator
	Grouper   changeGrouper
	Prompter  Prompter
	Hints     *config.RepoHints
	Opts      models.CommitOptions
	Output    io.Writer
}

type groupOutcome int

const (
	outcomeCommitted groupOutcome = iota
	// outcomeSkipped leaves the group's files in the changeset but out of
	// this session, so the loop cannot revisit them.
	outcomeSkipped
)

// Run executes the session loop. It returns nil on a clean finish or a
// clean cancel; any other outcome is an error for the CLI layer to report.
func (o *Orchestrator) Run(ctx context.Context) error {
	if o.Opts.Amend {
		return o.runAmend(ctx)
	}

	skipped := make(map[string]bool)
	committed := 0
	for {
		entries, err := o.Git.Status(ctx)
		if err != nil {
			return err
		}
		entries = dropSkipped(entries, skipped)
		if len(entries) == 0 {
			switch {
			case committed == 0 && len(skipped) == 0:
				fmt.Fprintln(o.out(), "Nothing to commit: working tree is clean.")
			case len(skipped) > 0:
				fmt.Fprintf(o.out(), "Done: %d file(s) left uncommitted.\n", len(skipped))
			}
			return nil
		}

		group, ok, err := o.nextGroup(ctx, entries)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		outcome, err := o.processGroup(ctx, group, entriesByPath(entries))
		if err != nil {
			return err
		}
		switch outcome {
		case outcomeCommitted:
			committed++
		case outcomeSkipped:
			for _, f := range group.Files {
				skipped[f] = true
			}
		}
	}
}

// nextGroup picks the group to process in this pass. Mode single takes
// the whole changeset; manual asks the user; ai consults the Grouper and
// takes its first proposal, leaving the rest to later passes over the
// recomputed changeset.
func (o *Orchestrator) nextGroup(ctx context.Context, entries []models.ChangeEntry) (models.Group, bool, error) {
	switch o.Opts.Mode {
	case models.ModeSingle:
		return models.Group{Name: "all changes", Files: entryPaths(entries)}, true, nil

	case models.ModeManual:
		options := make([]string, len(entries))
		for i, e := range entries {
			options[i] = fmt.Sprintf("%s %s", e.Status, e.Path)
		}
		picked, err := o.Prompter.PickMany("Select the files for this commit", options)
		if err != nil {
			return models.Group{}, false, err
		}
		if len(picked) == 0 {
			return models.Group{}, false, nil
		}
		files := make([]string, 0, len(picked))
		for _, idx := range picked {
			if idx >= 0 && idx < len(entries) {
				files = append(files, entries[idx].Path)
			}
		}
		return models.Group{Name: "selection", Files: files}, true, nil

	default: // models.ModeAI
		stat, err := o.Git.DiffStat(ctx, false, entryPaths(entries))
		if err != nil {
			return models.Group{}, false, err
		}
		var groups []models.Group
		err = o.withProgress("Proposing commit groups", func() error {
			groups = o.Grouper.Group(ctx, entries, stat)
			return nil
		})
		if err != nil || len(groups) == 0 {
			return models.Group{}, false, err
		}
		log.Printf("pipeline: %d group(s) proposed, processing %q", len(groups), groups[0].Name)
		return groups[0], true, nil
	}
}

// processGroup runs one group through staging, generation, validation,
// review and commit. A generation failure after staging rolls the staged
// files back before the error propagates.
func (o *Orchestrator) processGroup(ctx context.Context, group models.Group, byPath map[string]models.ChangeEntry) (groupOutcome, error) {
	staged := false
	if !o.Opts.DryRun {
		if o.Opts.Hunks {
			if err := o.Git.StageInteractive(ctx, group.Files); err != nil {
				return 0, err
			}
			ok, err := o.Git.HasStagedChanges(ctx, group.Files)
			if err != nil {
				return 0, err
			}
			if !ok {
				fmt.Fprintln(o.out(), "No hunks staged; skipping this group.")
				return outcomeSkipped, nil
			}
		} else {
			if err := o.Git.Stage(ctx, group.Files); err != nil {
				return 0, err
			}
		}
		staged = true
	}

	msg, err := o.resolveMessage(ctx, group, byPath, staged)
	if err != nil {
		if staged {
			o.rollback(ctx, group.Files)
		}
		return 0, err
	}

	problems := convention.Check(msg.Subject)
	o.printGroup(group)
	o.printMessage(msg, problems)

	if !o.Opts.Auto {
		accepted := false
		msg, accepted, err = o.review(msg)
		if err != nil {
			return 0, err
		}
		if !accepted {
			return o.cancelGroup(ctx, group.Files, staged)
		}
	}

	if o.Opts.DryRun {
		fmt.Fprintln(o.out(), "Dry run: no commit made.")
		return outcomeSkipped, nil
	}

	if !o.Opts.Auto {
		ok, err := o.Prompter.Confirm(fmt.Sprintf("Commit %d file(s) with this message?", len(group.Files)), true)
		if err != nil {
			return 0, err
		}
		if !ok {
			return o.cancelGroup(ctx, group.Files, staged)
		}
	}

	if err := o.Git.Commit(ctx, group.Files, msg.Subject, msg.Body); err != nil {
		return 0, err
	}
	fmt.Fprintf(o.out(), "Committed %q (%d files).\n", msg.Subject, len(group.Files))
	return outcomeCommitted, nil
}

// resolveMessage assembles the payload, consults the cache unless a scope
// override is in effect, and calls the generation service on a miss. The
// cache write afterwards is best-effort.
func (o *Orchestrator) resolveMessage(ctx context.Context, group models.Group, byPath map[string]models.ChangeEntry, staged bool) (models.PipelineMessage, error) {
	recent, err := o.Git.RecentCommits(ctx, recentCommitCount)
	if err != nil {
		return models.PipelineMessage{}, err
	}

	text, err := o.Assembler.Build(ctx, payload.Request{
		Entries:       o.groupEntriesFor(group, byPath),
		Staged:        staged,
		MaxDiffChars:  o.Opts.MaxDiffChars,
		RecentCommits: recent,
	})
	if err != nil {
		return models.PipelineMessage{}, err
	}

	useCache := o.Cache != nil && o.Opts.Scope == ""
	key := cache.Fingerprint(text)
	if useCache {
		if hit := o.Cache.Get(key); hit != nil {
			fmt.Fprintln(o.out(), "Reusing cached message for this change.")
			return models.PipelineMessage{Subject: hit.Subject, Body: hit.Body}, nil
		}
	}

	scope := o.Opts.Scope
	if scope == "" {
		scope = o.Hints.ScopeFor(group.Files)
	}

	var msg models.PipelineMessage
	err = o.withProgress("Generating commit message", func() error {
		var genErr error
		msg, genErr = o.Generator.Generate(ctx, text, scope)
		return genErr
	})
	if err != nil {
		return models.PipelineMessage{}, err
	}

	if useCache {
		if err := o.Cache.Put(key, msg); err != nil {
			log.Printf("pipeline: cache write skipped: %v", err)
		}
	}
	return msg, nil
}

func (o *Orchestrator) groupEntriesFor(group models.Group, byPath map[string]models.ChangeEntry) []models.ChangeEntry {
	entries := make([]models.ChangeEntry, 0, len(group.Files))
	for _, f := range group.Files {
		if e, ok := byPath[f]; ok {
			entries = append(entries, e)
		} else {
			entries = append(entries, models.ChangeEntry{Path: f, Status: " M"})
		}
	}
	return entries
}

// cancelGroup finishes a cancelled group: if anything was staged, ask
// whether to unstage it so no unexplained staged state is left behind.
func (o *Orchestrator) cancelGroup(ctx context.Context, files []string, staged bool) (groupOutcome, error) {
	if staged {
		unstage, err := o.Prompter.Confirm("Unstage these files again?", true)
		if err != nil {
			return 0, err
		}
		if unstage {
			if err := o.Git.Unstage(ctx, files); err != nil {
				return 0, err
			}
		}
	}
	return outcomeSkipped, nil
}

// rollback unstages files after a failed generation. Best-effort: the
// original failure is the one worth reporting.
func (o *Orchestrator) rollback(ctx context.Context, files []string) {
	if err := o.Git.Unstage(ctx, files); err != nil {
		fmt.Fprintf(o.out(), "Warning: could not unstage %d file(s): %v\n", len(files), err)
	}
}

func (o *Orchestrator) withProgress(label string, fn func() error) error {
	if o.Prompter == nil {
		return fn()
	}
	return o.Prompter.Progress(label, fn)
}

func (o *Orchestrator) out() io.Writer {
	if o.Output != nil {
		return o.Output
	}
	return os.Stdout
}

func entryPaths(entries []models.ChangeEntry) []string {
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	return paths
}

func entriesByPath(entries []models.ChangeEntry) map[string]models.ChangeEntry {
	byPath := make(map[string]models.ChangeEntry, len(entries))
	for _, e := range entries {
		byPath[e.Path] = e
	}
	return byPath
}

func dropSkipped(entries []models.ChangeEntry, skipped map[string]bool) []models.ChangeEntry {
	if len(skipped) == 0 {
		return entries
	}
	kept := make([]models.ChangeEntry, 0, len(entries))
	for _, e := range entries {
		if !skipped[e.Path] {
			kept = append(kept, e)
		}
	}
	return kept
}

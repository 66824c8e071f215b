package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/chmouel/lazycommit/internal/convention"
	"github.com/chmouel/lazycommit/internal/models"
	"github.com/chmouel/lazycommit/internal/payload"
)

// runAmend regenerates the last commit's message from its current text
// plus the unstaged diff, then rewrites the commit in place. Nothing is
// staged and the cache is not consulted: the commit text in the context
// is not covered by the payload fingerprint contract.
func (o *Orchestrator) runAmend(ctx context.Context) error {
	last, err := o.Git.LastCommitMessage(ctx)
	if err != nil {
		return err
	}
	entries, err := o.Git.Status(ctx)
	if err != nil {
		return err
	}
	recent, err := o.Git.RecentCommits(ctx, recentCommitCount)
	if err != nil {
		return err
	}

	text, err := o.Assembler.Build(ctx, payload.Request{
		Entries:       entries,
		Staged:        false,
		MaxDiffChars:  o.Opts.MaxDiffChars,
		RecentCommits: recent,
	})
	if err != nil {
		return err
	}
	amendPayload := "Current commit message to replace:\n" + strings.TrimSpace(last) + "\n\n" + text

	var msg models.PipelineMessage
	err = o.withProgress("Generating replacement message", func() error {
		var genErr error
		msg, genErr = o.Generator.Generate(ctx, amendPayload, o.Opts.Scope)
		return genErr
	})
	if err != nil {
		return err
	}

	problems := convention.Check(msg.Subject)
	fmt.Fprintln(o.out(), "\nAmending the last commit.")
	o.printMessage(msg, problems)

	if !o.Opts.Auto {
		accepted := false
		msg, accepted, err = o.review(msg)
		if err != nil {
			return err
		}
		if !accepted {
			return nil
		}
	}

	if o.Opts.DryRun {
		fmt.Fprintln(o.out(), "Dry run: commit left unchanged.")
		return nil
	}

	if !o.Opts.Auto {
		ok, err := o.Prompter.Confirm("Rewrite the last commit with this message?", true)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	if err := o.Git.Amend(ctx, msg.Subject, msg.Body); err != nil {
		return err
	}
	fmt.Fprintf(o.out(), "Amended last commit: %q\n", msg.Subject)
	return nil
}

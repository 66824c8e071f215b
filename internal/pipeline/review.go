package pipeline

import (
	"fmt"

	"github.com/muesli/reflow/wordwrap"

	"github.com/chmouel/lazycommit/internal/convention"
	"github.com/chmouel/lazycommit/internal/models"
)

// messageWrapWidth is the display width for commit message bodies. The
// committed body keeps its original line breaks.
const messageWrapWidth = 72

// review presents accept/edit/cancel until a decision is reached. An
// edited subject is re-validated; if problems remain the user must
// explicitly continue anyway, defaulting to no.
func (o *Orchestrator) review(msg models.PipelineMessage) (models.PipelineMessage, bool, error) {
	for {
		choice, err := o.Prompter.PickOne("Apply this commit message?", []string{"Accept", "Edit", "Cancel"})
		if err != nil {
			return msg, false, err
		}

		switch choice {
		case 0:
			return msg, true, nil

		case 1:
			edited, ok, err := o.Prompter.EditMessage(msg.Subject, msg.Body)
			if err != nil {
				return msg, false, err
			}
			if !ok {
				continue
			}
			problems := convention.Check(edited.Subject)
			o.printMessage(edited, problems)
			if len(problems) > 0 {
				cont, err := o.Prompter.Confirm("The edited subject still has warnings. Continue anyway?", false)
				if err != nil {
					return msg, false, err
				}
				if !cont {
					return msg, false, nil
				}
			}
			return edited, true, nil

		default:
			return msg, false, nil
		}
	}
}

func (o *Orchestrator) printGroup(group models.Group) {
	fmt.Fprintf(o.out(), "\nGroup %q (%d files):\n", group.Name, len(group.Files))
	for _, f := range group.Files {
		fmt.Fprintf(o.out(), "  %s\n", f)
	}
}

func (o *Orchestrator) printMessage(msg models.PipelineMessage, problems []string) {
	display := msg
	display.Body = wordwrap.String(msg.Body, messageWrapWidth)
	fmt.Fprintf(o.out(), "\n%s\n", renderMessage(display))
	for _, p := range problems {
		fmt.Fprintf(o.out(), "warning: %s\n", p)
	}
}

func renderMessage(msg models.PipelineMessage) string {
	if msg.Body == "" {
		return msg.Subject
	}
	return msg.Subject + "\n\n" + msg.Body
}

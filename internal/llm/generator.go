package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chmouel/lazycommit/internal/log"
	"github.com/chmouel/lazycommit/internal/models"
)

const generatorInstruction = `You are an expert developer writing a conventional commit message for the change described below.

Rules:
- Reply with strict JSON of the form {"subject": "...", "body": "..."} and nothing else: no markdown fences, no prose around it.
- subject: conventional commit format type(scope): description, at most 72 characters, imperative mood, no trailing period.
- Allowed types: feat, fix, docs, style, refactor, perf, test, build, ci, chore, revert.
- body: optional; a few short lines on what changed and why. Use "" when the subject says it all.`

// ParseError reports a service reply that did not contain the requested
// JSON shape, or contained one without a subject.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("no commit message in service reply: %.120q", e.Raw)
}

type sender interface {
	Send(ctx context.Context, instruction, payload string) (string, error)
}

var _ sender = (*Client)(nil)

// Generator prompts the generation service for a commit message and
// decodes the structured reply. The subject constraints are requested
// here and re-checked by the convention validator; the service is not
// trusted to comply.
type Generator struct {
	client   sender
	language string
}

// NewGenerator wraps client. When language is non-empty the instruction
// asks for the message in that language.
func NewGenerator(client sender, language string) *Generator {
	return &Generator{client: client, language: language}
}

// Generate requests a message for payload. A non-empty scope is passed on
// to the service as the scope to use in the subject.
func (g *Generator) Generate(ctx context.Context, payload, scope string) (models.PipelineMessage, error) {
	raw, err := g.client.Send(ctx, g.instruction(scope), payload)
	if err != nil {
		return models.PipelineMessage{}, err
	}
	return parseMessage(raw)
}

func (g *Generator) instruction(scope string) string {
	var b strings.Builder
	b.WriteString(generatorInstruction)
	if g.language != "" {
		fmt.Fprintf(&b, "\n- Write the message in %s.", g.language)
	}
	if scope != "" {
		fmt.Fprintf(&b, "\n- Use the scope %q in the subject.", scope)
	}
	return b.String()
}

// parseMessage extracts the JSON object between the first { and the last }
// of raw. Models occasionally wrap the object in prose despite the
// instruction; everything outside the braces is discarded.
func parseMessage(raw string) (models.PipelineMessage, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		log.Printf("llm: reply without JSON object: %.200q", raw)
		return models.PipelineMessage{}, &ParseError{Raw: raw}
	}

	var reply struct {
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &reply); err != nil {
		log.Printf("llm: undecodable reply object: %v", err)
		return models.PipelineMessage{}, &ParseError{Raw: raw}
	}

	subject := strings.TrimSpace(reply.Subject)
	if subject == "" {
		return models.PipelineMessage{}, &ParseError{Raw: raw}
	}
	return models.PipelineMessage{
		Subject: subject,
		Body:    strings.TrimSpace(reply.Body),
	}, nil
}

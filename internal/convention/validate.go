// Package convention checks commit subjects against the conventional
// commit grammar `type(scope)?!?: description`. Findings are advisory;
// callers decide whether to block on them.
package convention

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxSubjectLength = 72

var allowedTypes = []string{
	"feat", "fix", "docs", "style", "refactor", "perf",
	"test", "build", "ci", "chore", "revert",
}

var subjectPattern = regexp.MustCompile(`^([A-Za-z]+)(\(([^)]*)\))?(!)?: (.*)$`)

// Check validates subject and returns human-readable problems. An empty
// slice means the subject conforms. A subject that does not match the
// grammar at all yields a single format error and no finer-grained
// findings.
func Check(subject string) []string {
	m := subjectPattern.FindStringSubmatch(subject)
	if m == nil {
		return []string{`subject does not match "type(scope): description"`}
	}
	commitType, description := m[1], m[5]

	var problems []string
	if !slices.Contains(allowedTypes, commitType) {
		problems = append(problems,
			fmt.Sprintf("unknown type %q (expected one of %s)", commitType, strings.Join(allowedTypes, ", ")))
	}
	if n := utf8.RuneCountInString(subject); n > maxSubjectLength {
		problems = append(problems,
			fmt.Sprintf("subject is %d characters, the limit is %d", n, maxSubjectLength))
	}
	if description == "" {
		problems = append(problems, "description is empty")
	} else if r, _ := utf8.DecodeRuneInString(description); unicode.ToLower(r) != r {
		problems = append(problems, "description starts with an upper-case letter; use the imperative lower-case form")
	}
	if strings.HasSuffix(subject, ".") {
		problems = append(problems, "subject ends with a period")
	}
	return problems
}

package auditor

import (
	"fmt"
	"strings"
)

// Rubric enumerates what an acceptable reply looks like. Supplied at auditor
// construction and never mutated at runtime; safe to share across audits.
type Rubric struct {
	MustNotContain        []string
	ForbiddenPromises     []string
	ForbiddenTones        []string
	RequiredTone          string
	RequiresDisclaimerFor []string
	MinLength             int
	MaxLength             int
}

func DefaultRubric() *Rubric {
	return &Rubric{
		MustNotContain: []string{
			"I don't care",
			"That's not my problem",
			"You're wrong",
			"stupid",
			"idiot",
		},
		ForbiddenPromises: []string{
			"we guarantee",
			"100% refund",
			"definitely will",
			"I promise",
			"absolutely certain",
		},
		ForbiddenTones: []string{
			"dismissive",
			"condescending",
			"aggressive",
			"sarcastic",
		},
		RequiredTone: "professional and friendly",
		RequiresDisclaimerFor: []string{
			"refund",
			"warranty",
			"legal",
			"guarantee",
		},
		MinLength: 20,
		MaxLength: 1500,
	}
}

func (r *Rubric) promptText() string {
	return fmt.Sprintf(`
QUALITY RUBRIC:

Must NOT contain these phrases: %s

Forbidden promises: %s

Forbidden tones: %s

Required tone: %s

Topics requiring disclaimer: %s

Length limits: %d - %d characters
`,
		strings.Join(r.MustNotContain, ", "),
		strings.Join(r.ForbiddenPromises, ", "),
		strings.Join(r.ForbiddenTones, ", "),
		r.RequiredTone,
		strings.Join(r.RequiresDisclaimerFor, ", "),
		r.MinLength, r.MaxLength)
}

// precheck runs the deterministic rubric checks. Violations are collected,
// not rejected; they steer the audit toward the full path.
func (r *Rubric) precheck(draft string) []string {
	var issues []string
	draftLower := strings.ToLower(draft)

	for _, phrase := range r.MustNotContain {
		if strings.Contains(draftLower, strings.ToLower(phrase)) {
			issues = append(issues, fmt.Sprintf("Contains forbidden phrase: '%s'", phrase))
		}
	}
	for _, promise := range r.ForbiddenPromises {
		if strings.Contains(draftLower, strings.ToLower(promise)) {
			issues = append(issues, fmt.Sprintf("Contains forbidden promise: '%s'", promise))
		}
	}
	if len(draft) < r.MinLength {
		issues = append(issues, fmt.Sprintf("Response too short (%d chars, min %d)", len(draft), r.MinLength))
	}
	if len(draft) > r.MaxLength {
		issues = append(issues, fmt.Sprintf("Response too long (%d chars, max %d)", len(draft), r.MaxLength))
	}
	return issues
}

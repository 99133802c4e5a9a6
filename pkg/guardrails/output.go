package guardrails

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"repsafe/pkg/models"
)

type piiRule struct {
	pattern     *regexp.Regexp
	replacement string
}

type disclaimerRule struct {
	trigger string
	suffix  string
}

// OutputGuardrail enforces deterministic constraints on composed replies.
// Unlike the input side it never blocks: a finished reply is repaired in
// place, since rejecting it has no fallback beyond the pipeline retry path.
type OutputGuardrail struct {
	BlockedTerms []string
	MaxLength    int

	piiRules        []piiRule
	disclaimerRules []disclaimerRule
}

var defaultBlockedTerms = []string{
	"competitor_brand_name",
	"confidential",
	"internal only",
	"secret",
}

var defaultDisclaimers = []disclaimerRule{
	{"refund", "\n\n_Note: Refund policies are subject to our terms and conditions._"},
	{"warranty", "\n\n_Note: Warranty coverage varies by product. Check product documentation for details._"},
	{"price guarantee", "\n\n_Note: Prices and promotions are subject to change._"},
}

const truncationNotice = "\n\n[Response truncated for brevity]"

func NewOutputGuardrail(maxLength int) *OutputGuardrail {
	if maxLength <= 0 {
		maxLength = 2000
	}
	return &OutputGuardrail{
		BlockedTerms: defaultBlockedTerms,
		MaxLength:    maxLength,
		piiRules: []piiRule{
			{regexp.MustCompile(`\b\d{11}\b`), "[REDACTED_ID]"},
			{regexp.MustCompile(`\b\d{16}\b`), "[REDACTED_CARD]"},
			{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), "[REDACTED_EMAIL]"},
		},
		disclaimerRules: defaultDisclaimers,
	}
}

// Check applies every transformation in fixed order, accumulating flags.
// Returns ActionModify with the working copy when anything fired, otherwise
// ActionAllow.
func (g *OutputGuardrail) Check(output string) *models.GuardrailVerdict {
	modified := output
	var flags []string
	changed := false

	for _, term := range g.BlockedTerms {
		if strings.Contains(strings.ToLower(modified), strings.ToLower(term)) {
			pattern := regexp.MustCompile("(?i)" + regexp.QuoteMeta(term))
			modified = pattern.ReplaceAllString(modified, "[REMOVED]")
			flags = append(flags, fmt.Sprintf("removed_term:%s", term))
			changed = true
		}
	}

	for _, rule := range g.piiRules {
		if rule.pattern.MatchString(modified) {
			modified = rule.pattern.ReplaceAllString(modified, rule.replacement)
			flags = append(flags, "pii_redacted")
			changed = true
		}
	}

	// Presence check keeps this idempotent: re-running on modified text
	// never appends a second copy of the same disclaimer.
	for _, rule := range g.disclaimerRules {
		if strings.Contains(strings.ToLower(modified), rule.trigger) &&
			!strings.Contains(modified, rule.suffix) {
			modified += rule.suffix
			flags = append(flags, fmt.Sprintf("disclaimer_added:%s", rule.trigger))
			changed = true
		}
	}

	if len(modified) > g.MaxLength {
		keep := g.MaxLength - 100
		if keep < 0 {
			keep = 0
		}
		// Back off to a rune boundary so truncation never splits a character.
		for keep > 0 && !utf8.RuneStart(modified[keep]) {
			keep--
		}
		modified = modified[:keep] + truncationNotice
		flags = append(flags, "truncated")
		changed = true
	}

	if changed {
		return &models.GuardrailVerdict{
			Action:       models.ActionModify,
			OriginalText: output,
			ModifiedText: modified,
			Reason:       "Output modified by guardrails",
			Flags:        flags,
		}
	}

	return &models.GuardrailVerdict{
		Action:       models.ActionAllow,
		OriginalText: output,
	}
}

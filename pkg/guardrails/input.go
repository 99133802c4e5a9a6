package guardrails

import (
	"fmt"
	"regexp"
	"strings"

	"repsafe/pkg/models"
)

// InputGuardrail screens user messages before any model call. Checks are
// pure pattern matches over the lower-cased text: same input, same verdict,
// no external calls.
type InputGuardrail struct {
	blockedPatterns []*regexp.Regexp
	abusePatterns   []*regexp.Regexp
	highRiskIntents []string
}

var defaultBlockedPatterns = []string{
	`ignore\s+(previous|all)\s+instructions`,
	`you\s+are\s+now\s+`,
	`pretend\s+to\s+be`,
	`act\s+as\s+if`,
	`system\s*:\s*`,
	`<\s*system\s*>`,
}

var defaultAbusePatterns = []string{
	`\b(idiot|stupid|dumb)\b`,
	`(threat|kill|harm)`,
}

var defaultHighRiskIntents = []string{
	"legal action",
	"sue",
	"lawyer",
	"attorney",
	"lawsuit",
}

func NewInputGuardrail() *InputGuardrail {
	g := &InputGuardrail{highRiskIntents: defaultHighRiskIntents}
	for _, p := range defaultBlockedPatterns {
		g.blockedPatterns = append(g.blockedPatterns, regexp.MustCompile(p))
	}
	for _, p := range defaultAbusePatterns {
		g.abusePatterns = append(g.abusePatterns, regexp.MustCompile(p))
	}
	return g
}

// Check evaluates the three pattern classes in priority order, short-
// circuiting on the first match: injection blocks, abuse and high-risk
// intents flag, anything else is allowed through.
func (g *InputGuardrail) Check(userInput string) *models.GuardrailVerdict {
	inputLower := strings.ToLower(userInput)

	for _, pattern := range g.blockedPatterns {
		if pattern.MatchString(inputLower) {
			return &models.GuardrailVerdict{
				Action:       models.ActionBlock,
				OriginalText: userInput,
				Reason:       "Potential prompt injection detected",
				Flags:        []string{"prompt_injection"},
			}
		}
	}

	for _, pattern := range g.abusePatterns {
		if pattern.MatchString(inputLower) {
			return &models.GuardrailVerdict{
				Action:       models.ActionFlag,
				OriginalText: userInput,
				Reason:       "Potentially abusive content detected",
				Flags:        []string{"abuse"},
			}
		}
	}

	for _, intent := range g.highRiskIntents {
		if strings.Contains(inputLower, intent) {
			return &models.GuardrailVerdict{
				Action:       models.ActionFlag,
				OriginalText: userInput,
				Reason:       fmt.Sprintf("High-risk intent detected: %s", intent),
				Flags:        []string{"high_risk", "legal"},
			}
		}
	}

	return &models.GuardrailVerdict{
		Action:       models.ActionAllow,
		OriginalText: userInput,
	}
}

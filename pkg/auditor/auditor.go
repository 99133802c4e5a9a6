// Package auditor reviews draft replies before delivery. The auditor runs
// context-isolated: it receives only the draft text, never the user message
// or conversation history, which keeps instructions smuggled through
// upstream text out of its prompt.
package auditor

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"repsafe/pkg/llm"
	"repsafe/pkg/models"
)

const auditorSystemPrompt = `You are a Quality Assurance Auditor for customer service responses.

Your job is to review a draft response and ensure it meets quality standards.

You will ONLY see the draft response - you have no context about what the customer asked.
This is intentional for security reasons.

Your tasks:
1. Check if the response is professional and on-brand
2. Remove any inappropriate content
3. Ensure claims are appropriately hedged (no over-promising)
4. Add required disclaimers if needed
5. Fix any tone issues

Output Format:
Return a JSON object with:
{
    "is_acceptable": true/false,
    "issues_found": ["list of issues if any"],
    "corrected_response": "the corrected response text",
    "changes_made": ["list of changes made"],
    "requires_retry": false (only true if response is fundamentally broken)
}

If the response is acceptable, return it unchanged in corrected_response.
Only make necessary changes - don't over-edit.`

// Config carries the audit thresholds. Both knobs are product choices under
// review, hence configurable rather than constants: LightweightBelow gates
// the cheap single-judgment path, FailOpen decides what an unparsable review
// means for the draft.
type Config struct {
	LightweightBelow int
	FailOpen         bool
}

func DefaultConfig() Config {
	return Config{LightweightBelow: 800, FailOpen: true}
}

// Auditor reviews and corrects drafts against its rubric.
type Auditor struct {
	generator llm.Generator
	rubric    *Rubric
	cfg       Config
	logger    *zap.Logger
}

func New(generator llm.Generator, rubric *Rubric, cfg Config, logger *zap.Logger) *Auditor {
	if rubric == nil {
		rubric = DefaultRubric()
	}
	if cfg.LightweightBelow == 0 {
		cfg.LightweightBelow = DefaultConfig().LightweightBelow
	}
	return &Auditor{generator: generator, rubric: rubric, cfg: cfg, logger: logger}
}

// Audit reviews a draft and returns the approved or corrected version.
// Accepted is true only when the review judged the draft acceptable and did
// not demand a retry. A review that cannot be obtained or parsed never
// blocks the pipeline; with FailOpen it approves the draft as-is.
func (a *Auditor) Audit(ctx context.Context, draft string) *models.DraftResponse {
	preIssues := a.rubric.precheck(draft)

	if len(preIssues) == 0 && len(draft) < a.cfg.LightweightBelow {
		return a.lightweightAudit(ctx, draft)
	}
	return a.fullAudit(ctx, draft, preIssues)
}

// lightweightAudit asks for a single accept/reject judgment. Anything judged
// not OK escalates to the full audit carrying the stated issue.
func (a *Auditor) lightweightAudit(ctx context.Context, draft string) *models.DraftResponse {
	prompt := fmt.Sprintf(`Quick review of this response:

%s

Is this response professional and appropriate? Answer with JSON:
{"is_ok": true/false, "issue": "brief issue if any"}`, draft)

	raw, err := a.generator.Generate(ctx, llm.Request{
		Prompt:      prompt,
		Instruction: "You are a quick QA checker. Only flag obvious issues.",
		Temperature: 0.1,
		WantJSON:    true,
	})
	if err != nil {
		return a.failOpen(draft, "lightweight", err)
	}

	parsed, err := llm.DecodeStructured(raw)
	if err != nil {
		return a.failOpen(draft, "lightweight", err)
	}

	if parsed.Get("is_ok").Bool() {
		return &models.DraftResponse{
			Content:  draft,
			Agent:    models.AgentAuditor,
			Accepted: true,
			Metadata: map[string]any{"audit_type": "lightweight", "passed": true},
		}
	}

	issue := parsed.Get("issue").String()
	if issue == "" {
		issue = "Flagged in lightweight audit"
	}
	return a.fullAudit(ctx, draft, []string{issue})
}

// fullAudit requests a structured verdict with corrections.
func (a *Auditor) fullAudit(ctx context.Context, draft string, preIssues []string) *models.DraftResponse {
	prompt := fmt.Sprintf(`Review this customer service response for quality:

---DRAFT RESPONSE START---
%s
---DRAFT RESPONSE END---

%s

Analyze the response and return your assessment as JSON.`, draft, a.rubric.promptText())

	if len(preIssues) > 0 {
		prompt += "\n\nPre-identified issues: " + strings.Join(preIssues, ", ")
	}

	raw, err := a.generator.Generate(ctx, llm.Request{
		Prompt:      prompt,
		Instruction: auditorSystemPrompt,
		Temperature: 0.2,
		WantJSON:    true,
	})
	if err != nil {
		return a.failOpen(draft, "full", err)
	}

	parsed, err := llm.DecodeStructured(raw)
	if err != nil {
		return a.failOpen(draft, "full", err)
	}

	isAcceptable := true
	if parsed.Get("is_acceptable").Exists() {
		isAcceptable = parsed.Get("is_acceptable").Bool()
	}
	corrected := parsed.Get("corrected_response").String()
	if corrected == "" {
		corrected = draft
	}
	requiresRetry := parsed.Get("requires_retry").Bool()

	var issues []string
	for _, issue := range parsed.Get("issues_found").Array() {
		issues = append(issues, issue.String())
	}
	var changes []string
	for _, change := range parsed.Get("changes_made").Array() {
		changes = append(changes, change.String())
	}

	return &models.DraftResponse{
		Content:  corrected,
		Agent:    models.AgentAuditor,
		Accepted: isAcceptable && !requiresRetry,
		Issues:   issues,
		Metadata: map[string]any{
			"audit_type":          "full",
			"original_acceptable": isAcceptable,
			"changes_made":        changes,
			"requires_retry":      requiresRetry,
		},
	}
}

// failOpen handles an unobtainable or unparsable review. Blocking the user
// on a broken review is worse than delivering an unreviewed draft, so the
// default is to approve with an annotation; FailOpen=false demands a retry
// instead.
func (a *Auditor) failOpen(draft, auditType string, cause error) *models.DraftResponse {
	a.logger.Warn("audit unusable", zap.String("audit_type", auditType), zap.Error(cause))

	if !a.cfg.FailOpen {
		return &models.DraftResponse{
			Content:  draft,
			Agent:    models.AgentAuditor,
			Accepted: false,
			Issues:   []string{"Audit parse error"},
			Metadata: map[string]any{"audit_type": auditType, "parse_error": true, "requires_retry": true},
		}
	}

	return &models.DraftResponse{
		Content:  draft,
		Agent:    models.AgentAuditor,
		Accepted: true,
		Issues:   []string{"Audit parse error - using original"},
		Metadata: map[string]any{"audit_type": auditType, "parse_error": true},
	}
}

// FallbackText is the fixed safe reply used when the pipeline exhausts its
// retries without an accepted draft.
func (a *Auditor) FallbackText() string {
	return "I apologize, but I'm having trouble processing your request right now. " +
		"Please try again, or contact our support team for immediate assistance." +
		"\n\nYou can reach us at support@techstore.com or call +90 212 555 0123."
}
